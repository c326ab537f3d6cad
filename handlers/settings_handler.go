package handlers

import (
	"zhiyi-cms/helper"
	"zhiyi-cms/models"
	"zhiyi-cms/services"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService services.SettingsService
	Helper          *helper.HTTPHelper
}

func NewSettingsHandler(settingsService services.SettingsService, h *helper.HTTPHelper) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, Helper: h}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Settings loaded", settings)
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.APISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Settings saved", settings)
}

// TestConnection tests the posted settings, or the stored ones when the body is empty.
// A failed test is still a 200; the result carries success=false.
func (h *SettingsHandler) TestConnection(c *gin.Context) {
	var req *models.APISettingsRequest
	if c.Request.ContentLength > 0 {
		req = &models.APISettingsRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	result := h.settingsService.TestConnection(c.Request.Context(), req)
	h.Helper.SendSuccess(c, result.Message, result)
}
