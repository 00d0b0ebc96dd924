package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ra-autohaus/tracker/internal/adapters"
	"github.com/ra-autohaus/tracker/internal/models"
)

// Webhook handlers return HTTP 200 with success=false for domain failures
// (missing fields, no FIN). Upstream automation platforms retry on non-2xx,
// and a payload that failed conversion once will fail every retry.

// @Summary Zapier webhook
// @Description Accepts an automation-platform event with loosely named fields
// @Tags integration
// @Accept json
// @Produce json
// @Success 200 {object} models.Outcome
// @Failure 400 {object} map[string]any
// @Router /integration/zapier/webhook [post]
func (h *Handler) ZapierWebhook(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_JSON", "Malformed JSON body", err.Error())
		return
	}

	event, err := adapters.ConvertZapier(payload)
	if err != nil {
		h.conversionFailure(c, models.QuelleZapier, err)
		return
	}
	c.JSON(http.StatusOK, h.Engine.Process(c.Request.Context(), event))
}

// @Summary E-Mail webhook
// @Description Accepts a parsed inbound e-mail (subject plus body)
// @Tags integration
// @Accept json
// @Produce json
// @Success 200 {object} models.Outcome
// @Failure 400 {object} map[string]any
// @Router /integration/email/webhook [post]
func (h *Handler) EmailWebhook(c *gin.Context) {
	var in adapters.EmailInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_JSON", "Malformed JSON body", err.Error())
		return
	}

	event, err := adapters.ConvertEmail(in)
	if err != nil {
		h.conversionFailure(c, models.QuelleEmail, err)
		return
	}
	c.JSON(http.StatusOK, h.Engine.Process(c.Request.Context(), event))
}

// @Summary Flowers webhook
// @Description Accepts a legacy workflow-system event keyed by fahrzeug_id
// @Tags integration
// @Accept json
// @Produce json
// @Success 200 {object} models.Outcome
// @Failure 400 {object} map[string]any
// @Router /integration/flowers/webhook [post]
func (h *Handler) FlowersWebhook(c *gin.Context) {
	var in adapters.FlowersInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_JSON", "Malformed JSON body", err.Error())
		return
	}

	event, err := adapters.ConvertFlowers(in)
	if err != nil {
		h.conversionFailure(c, models.QuelleFlowersWebhook, err)
		return
	}
	c.JSON(http.StatusOK, h.Engine.Process(c.Request.Context(), event))
}

func (h *Handler) conversionFailure(c *gin.Context, quelle string, err error) {
	h.Logger.Warn().Err(err).Str("quelle", quelle).Msg("event conversion failed")
	c.JSON(http.StatusOK, models.Outcome{
		Success: false,
		Message: err.Error(),
		Quelle:  quelle,
	})
}
