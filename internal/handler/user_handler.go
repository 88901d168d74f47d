package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ideomatch/backend/internal/account"
)

// CanMatchmakeResponse reports whether a match request is allowed.
type CanMatchmakeResponse struct {
	CanMatchmake bool   `json:"can_matchmake" example:"false"`
	Reason       string `json:"reason,omitempty" example:"Not enough messages exchanged"`
}

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Fetches the profile, settings and interests of the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  account.Profile
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user [get]
func (h *Handler) GetMe(c *gin.Context) {
	profile, err := h.svc.Accounts.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary      Update current user's profile
// @Description  Changes username, password, gender or location. Omitted fields are kept.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body account.UpdateRequest true "Profile changes"
// @Success      200  {object}  account.Profile
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /user [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var input account.UpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.svc.Accounts.Update(c.Request.Context(), currentUser(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetPublicUser godoc
// @Summary      Get a user's public profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  models.PublicUser
// @Failure      400  {object}  ErrorResponse "Invalid ID or blocked"
// @Failure      404  {object}  ErrorResponse
// @Router       /user/public/{id} [get]
func (h *Handler) GetPublicUser(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.svc.Accounts.PublicProfile(c.Request.Context(), currentUser(c), targetID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// BlockUser godoc
// @Summary      Block a user
// @Description  Blocks the user in both directions and removes any contact or match between the two.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Self block or already blocked"
// @Failure      404  {object}  ErrorResponse
// @Router       /user/block/{id} [post]
func (h *Handler) BlockUser(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := currentUser(c)

	if err := h.svc.Graph.Block(c.Request.Context(), userID, targetID); err != nil {
		h.respondError(c, err)
		return
	}
	h.svc.Streams.CloseFor(userID, targetID)
	h.svc.Streams.CloseFor(targetID, userID)
	c.Status(http.StatusNoContent)
}

// FindContact godoc
// @Summary      Find a new contact
// @Description  Picks a random compatible user and makes them a contact.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.PublicUser
// @Failure      400  {object}  ErrorResponse "Not discoverable or no candidates"
// @Router       /user/find [get]
func (h *Handler) FindContact(c *gin.Context) {
	contact, err := h.svc.Matcher.FindNewContact(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// GetChats godoc
// @Summary      List chats
// @Description  Lists contacts and matches with their last message, most recent first.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   matchmaking.Chat
// @Router       /user/chats [get]
func (h *Handler) GetChats(c *gin.Context) {
	chats, err := h.svc.Matchmaking.GetChats(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// CanMatchmake godoc
// @Summary      Check whether a match request is allowed
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  CanMatchmakeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user/canMatchmake/{id} [get]
func (h *Handler) CanMatchmake(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Matchmaking.CanMatchmake(c.Request.Context(), currentUser(c), targetID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CanMatchmakeResponse{CanMatchmake: true})
}

// Matchmake godoc
// @Summary      Send a match request
// @Description  Records a match request towards the user. The pair is matched once both sides asked.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not contacts, blocked, already matched or too few messages"
// @Failure      404  {object}  ErrorResponse
// @Router       /user/matchmake/{id} [post]
func (h *Handler) Matchmake(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Matchmaking.Matchmake(c.Request.Context(), currentUser(c), targetID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
