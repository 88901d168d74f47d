package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ideomatch/backend/internal/messaging"
)

// region --- DTOs ---

// SendMessageInput is the body of a message submission.
type SendMessageInput struct {
	Text string `json:"text" binding:"required" example:"Hello there"`
	// Time is optional; the server clock is used when omitted.
	Time *time.Time `json:"time,omitempty"`
}

// endregion

// SendMessage godoc
// @Summary      Send a message
// @Description  Sends a message to a contact or match.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string            true  "Receiver ID"
// @Param        input body  SendMessageInput  true  "Message"
// @Success      201  {object}  models.MessageView
// @Failure      400  {object}  ErrorResponse "Empty text, self message or blocked by you"
// @Failure      403  {object}  ErrorResponse "Blocked or not in contacts"
// @Router       /messages/send/{id} [post]
func (h *Handler) SendMessage(c *gin.Context) {
	receiverID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := messaging.SendRequest{
		SenderID:   currentUser(c),
		ReceiverID: receiverID,
		Text:       input.Text,
	}
	if input.Time != nil {
		req.Time = *input.Time
	}
	msg, err := h.svc.Messaging.Send(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg.View())
}

// GenerateTopic godoc
// @Summary      Generate a conversation topic
// @Description  Picks a random prompt and posts it into the conversation as a topic message.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Peer ID"
// @Success      201  {object}  models.MessageView
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /messages/topic/{id} [post]
func (h *Handler) GenerateTopic(c *gin.Context) {
	peerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	msg, err := h.svc.Topics.Generate(c.Request.Context(), currentUser(c), peerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg.View())
}

// GetHistory godoc
// @Summary      Get conversation history
// @Description  Returns one page of the conversation, newest first.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   string  true   "Peer ID"
// @Param        page   query  int     false  "Page number" default(1)
// @Param        limit  query  int     false  "Items per page" default(50)
// @Success      200  {object}  repository.Page[models.MessageView]
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /messages/history/{id} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	peerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	history, err := h.svc.Messaging.History(c.Request.Context(), currentUser(c), peerID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
