package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/account"
	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/auth"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/matcher"
	"ideomatch/backend/internal/matchmaking"
	"ideomatch/backend/internal/messaging"
	"ideomatch/backend/internal/stream"
	"ideomatch/backend/internal/topics"
)

// region --- Wiring ---

// Services are the components the handlers call into.
type Services struct {
	Accounts    *account.Service
	Graph       *graph.Graph
	Matcher     *matcher.Matcher
	Matchmaking *matchmaking.Service
	Messaging   *messaging.Service
	Topics      *topics.Generator
	Streams     *stream.Registry
}

// Options tune request handling.
type Options struct {
	JWTSecret string
	// InitialCount is the default size of a stream's first batch.
	InitialCount int
}

// Handler serves the HTTP API.
type Handler struct {
	svc  Services
	opts Options
	log  zerolog.Logger
}

func New(svc Services, opts Options) *Handler {
	if opts.InitialCount <= 0 {
		opts.InitialCount = 100
	}
	return &Handler{svc: svc, opts: opts, log: logger.WithComponent("http")}
}

// Register mounts every API route on router.
func (h *Handler) Register(router gin.IRouter) {
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
			authRoutes.POST("/refresh", auth.AuthMiddleware(h.opts.JWTSecret), h.RefreshToken)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/user")
		userRoutes.Use(auth.AuthMiddleware(h.opts.JWTSecret))
		{
			userRoutes.GET("", h.GetMe)
			userRoutes.PATCH("", h.UpdateMe)
			userRoutes.GET("/public/:id", h.GetPublicUser)
			userRoutes.POST("/block/:id", h.BlockUser)
			userRoutes.GET("/find", h.FindContact)
			userRoutes.GET("/chats", h.GetChats)
			userRoutes.GET("/canMatchmake/:id", h.CanMatchmake)
			userRoutes.POST("/matchmake/:id", h.Matchmake)
		}

		settingsRoutes := apiV1.Group("/settings")
		settingsRoutes.Use(auth.AuthMiddleware(h.opts.JWTSecret))
		{
			settingsRoutes.GET("", h.GetSettings)
			settingsRoutes.PATCH("", h.UpdateSettings)
		}

		interestsRoutes := apiV1.Group("/interests")
		interestsRoutes.Use(auth.AuthMiddleware(h.opts.JWTSecret))
		{
			interestsRoutes.GET("", h.GetInterests)
			interestsRoutes.PATCH("", h.UpdateInterests)
		}

		messageRoutes := apiV1.Group("/messages")
		{
			protected := messageRoutes.Group("")
			protected.Use(auth.AuthMiddleware(h.opts.JWTSecret))
			protected.POST("/send/:id", h.SendMessage)
			protected.POST("/topic/:id", h.GenerateTopic)
			protected.GET("/history/:id", h.GetHistory)

			// Stream clients cannot always set headers.
			messageRoutes.GET("/conversation/stream/:id/:token", auth.StreamAuthMiddleware(h.opts.JWTSecret), h.StreamConversation)
			messageRoutes.GET("/conversation/ws/:id", auth.StreamAuthMiddleware(h.opts.JWTSecret), h.ConversationSocket)
		}
	}
}

// endregion

// region --- Helpers ---

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// TokenResponse carries a freshly issued token.
type TokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
}

func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(kind.Status(), gin.H{"error": apperr.Message(err)})
}

func currentUser(c *gin.Context) uuid.UUID {
	id, _ := auth.UserID(c)
	return id
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}
	return id, true
}

// endregion
