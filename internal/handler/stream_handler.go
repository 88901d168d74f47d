package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/messaging"
	"ideomatch/backend/internal/stream"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 1 << 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients authenticate with the token, not with cookies.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// region --- DTOs ---

// SocketInbound is a frame sent by a websocket client.
type SocketInbound struct {
	Text string     `json:"text"`
	Time *time.Time `json:"time,omitempty"`
}

// SocketEvent is a frame pushed to a websocket client. Type is one of
// initial, increment, heartbeat or error.
type SocketEvent struct {
	Type     string                   `json:"type"`
	Messages []stream.OutboundMessage `json:"messages,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// endregion

// openStream parses the peer and batch size and registers the stream.
// It writes the error response itself and returns nil on failure.
func (h *Handler) openStream(c *gin.Context) *stream.Handle {
	peerID, ok := parseIDParam(c)
	if !ok {
		return nil
	}
	count := h.opts.InitialCount
	if q := c.Query("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
			return nil
		}
		count = n
	}

	handle, err := h.svc.Streams.Open(c.Request.Context(), currentUser(c), peerID, count)
	if err != nil {
		h.respondError(c, err)
		return nil
	}
	return handle
}

// StreamConversation godoc
// @Summary      Stream a conversation
// @Description  Server-sent events. The first event carries the latest messages in ascending order, later events carry new messages, and an empty heartbeat event is sent periodically.
// @Tags         messages
// @Produce      text/event-stream
// @Param        id     path   string  true   "Peer ID"
// @Param        token  path   string  true   "JWT"
// @Param        count  query  int     false  "Size of the first batch" default(100)
// @Success      200  {array}   stream.OutboundMessage
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /messages/conversation/stream/{id}/{token} [get]
func (h *Handler) StreamConversation(c *gin.Context) {
	handle := h.openStream(c)
	if handle == nil {
		return
	}
	defer handle.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case batch, ok := <-handle.C:
			if !ok {
				return false
			}
			c.SSEvent(batch.Kind, batch.Messages)
			return true
		}
	})
}

// ConversationSocket godoc
// @Summary      Conversation over websocket
// @Description  Pushes the same batches as the event stream and accepts {"text": "..."} frames to send messages.
// @Tags         messages
// @Param        id     path   string  true   "Peer ID"
// @Param        token  query  string  false  "JWT, when no Authorization header can be set"
// @Param        count  query  int     false  "Size of the first batch" default(100)
// @Success      101
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /messages/conversation/ws/{id} [get]
func (h *Handler) ConversationSocket(c *gin.Context) {
	handle := h.openStream(c)
	if handle == nil {
		return
	}
	defer handle.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("stream", handle.ID.String()).Msg("websocket upgrade failed")
		return
	}

	failures := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.socketWriter(conn, handle, failures)
	}()

	h.socketReader(c, conn, handle, failures)
	handle.Close()
	<-done
}

// socketReader turns inbound frames into messages until the connection
// fails. Send errors are reported back through failures.
func (h *Handler) socketReader(c *gin.Context, conn *websocket.Conn, handle *stream.Handle, failures chan<- string) {
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	report := func(msg string) {
		select {
		case failures <- msg:
		default:
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("stream", handle.ID.String()).Msg("websocket read failed")
			}
			return
		}

		var in SocketInbound
		if err := json.Unmarshal(payload, &in); err != nil {
			report("Invalid message format")
			continue
		}
		req := messaging.SendRequest{SenderID: handle.User, ReceiverID: handle.Peer, Text: in.Text}
		if in.Time != nil {
			req.Time = *in.Time
		}
		if _, err := h.svc.Messaging.Send(c.Request.Context(), req); err != nil {
			if apperr.KindOf(err) == apperr.Internal {
				h.log.Error().Err(err).Str("stream", handle.ID.String()).Msg("websocket send failed")
			}
			report(apperr.Message(err))
		}
	}
}

// socketWriter owns every write on conn. It returns once the stream is
// closed or a write fails.
func (h *Handler) socketWriter(conn *websocket.Conn, handle *stream.Handle, failures <-chan string) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case batch, ok := <-handle.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(SocketEvent{Type: batch.Kind, Messages: batch.Messages}); err != nil {
				return
			}
		case msg := <-failures:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(SocketEvent{Type: "error", Error: msg}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
