package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ideomatch/backend/internal/account"
)

// GetSettings godoc
// @Summary      Get current user's settings
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  account.SettingsView
// @Failure      404  {object}  ErrorResponse
// @Router       /settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Accounts.Settings(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Update current user's settings
// @Description  Only the fields present in the body are changed.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body account.SettingsPatch true "Settings changes"
// @Success      200  {object}  account.SettingsView
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /settings [patch]
func (h *Handler) UpdateSettings(c *gin.Context) {
	var input account.SettingsPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.svc.Accounts.UpdateSettings(c.Request.Context(), currentUser(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetInterests godoc
// @Summary      Get current user's interests
// @Tags         interests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  account.InterestsView
// @Failure      404  {object}  ErrorResponse
// @Router       /interests [get]
func (h *Handler) GetInterests(c *gin.Context) {
	interests, err := h.svc.Accounts.Interests(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interests)
}

// UpdateInterests godoc
// @Summary      Update current user's interests
// @Description  Changing any political score re-derives the ideology unless one is given explicitly.
// @Tags         interests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body account.InterestsPatch true "Interests changes"
// @Success      200  {object}  account.InterestsView
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /interests [patch]
func (h *Handler) UpdateInterests(c *gin.Context) {
	var input account.InterestsPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interests, err := h.svc.Accounts.UpdateInterests(c.Request.Context(), currentUser(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interests)
}
