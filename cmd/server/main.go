package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	// Swagger imports
	_ "ideomatch/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ideomatch/backend/internal/account"
	"ideomatch/backend/internal/changefeed"
	"ideomatch/backend/internal/config"
	"ideomatch/backend/internal/database"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/handler"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/matcher"
	"ideomatch/backend/internal/matchmaking"
	"ideomatch/backend/internal/messaging"
	"ideomatch/backend/internal/metrics"
	"ideomatch/backend/internal/repository"
	"ideomatch/backend/internal/repository/memory"
	"ideomatch/backend/internal/stream"
	"ideomatch/backend/internal/topics"
)

const shutdownTimeout = 10 * time.Second

// store is everything the services need from persistence. Both the gorm
// repository and the in-memory store provide it.
type store interface {
	graph.Store
	account.Store
	matcher.Users
	matchmaking.Messages
	matchmaking.Users
	messaging.Store
	stream.Messages
}

// @title           Ideomatch API
// @version         1.0
// @description     Relationship and real-time conversation API.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Ideomatch API server",
	Long: `Ideomatch matches users by ideology, hobbies, gender preferences and
distance, and streams their conversations in real time.

Running without a subcommand is the same as "server serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Storage != config.StoragePostgres {
			return fmt.Errorf("migrate needs STORAGE=%s", config.StoragePostgres)
		}
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		return database.Migrate(db)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-dir", ".", "Directory holding the .env file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("env-dir")
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	return cfg, nil
}

// openStore returns the configured persistence. Writes to messages are
// published on pub in both cases.
func openStore(cfg *config.Config, pub changefeed.Publisher) (store, error) {
	if cfg.Storage == config.StorageMemory {
		return memory.New(pub), nil
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := repository.RegisterChangeFeed(db, pub); err != nil {
		return nil, fmt.Errorf("registering change feed: %w", err)
	}
	return repository.New(db), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithComponent("server")
	gin.SetMode(cfg.GinMode)

	broker := changefeed.NewBroker()
	broker.Start()
	defer broker.Stop()

	st, err := openStore(cfg, broker)
	if err != nil {
		return err
	}

	g := graph.New(st)
	topicGen := topics.New(st, g)
	match := matcher.New(st, g, matcher.WithTopics(topicGen, cfg.TopicTimeout))
	streams := stream.NewRegistry(st, g, broker, stream.Config{
		Heartbeat: cfg.StreamHeartbeat,
		Buffer:    cfg.StreamBuffer,
	})

	h := handler.New(handler.Services{
		Accounts:    account.New(st, g, account.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}),
		Graph:       g,
		Matcher:     match,
		Matchmaking: matchmaking.New(g, st, st),
		Messaging:   messaging.New(st, g),
		Topics:      topicGen,
		Streams:     streams,
	}, handler.Options{JWTSecret: cfg.JWTSecret, InitialCount: cfg.StreamInitialCount})

	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger(logger.WithComponent("http")))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h.Register(router)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	streamCtx, stopStreams := context.WithCancel(context.Background())
	streamsDone := make(chan struct{})
	go func() {
		defer close(streamsDone)
		if err := streams.Run(streamCtx); err != nil {
			log.Error().Err(err).Msg("Stream registry stopped")
		}
	}()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	log.Info().Str("addr", cfg.Addr()).Str("storage", cfg.Storage).Msg("Server started")
	log.Info().Msgf("Swagger UI is available at http://localhost%s/swagger/index.html", cfg.Addr())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	log.Info().Msg("Shutting down server...")

	// Open streams hold their requests; closing them first lets Shutdown
	// drain.
	stopStreams()
	<-streamsDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	match.Wait()

	log.Info().Msg("Server exited")
	return runErr
}
