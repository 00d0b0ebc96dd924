package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/vin"
	"github.com/ra-autohaus/tracker/internal/warehouse"
)

type ProcessInput struct {
	FIN         string                    `json:"fin" validate:"required"`
	ProzessTyp  string                    `json:"prozess_typ" validate:"required"`
	Status      string                    `json:"status" validate:"required"`
	Bearbeiter  string                    `json:"bearbeiter"`
	Prioritaet  *int                      `json:"prioritaet"`
	Notizen     string                    `json:"notizen"`
	Timestamp   *time.Time                `json:"timestamp"`
	Fahrzeug    *models.VehicleAttributes `json:"fahrzeug"`
	ZusatzDaten map[string]any            `json:"zusatz_daten"`
}

type StatusUpdateInput struct {
	Status     string `json:"status" validate:"required"`
	Bearbeiter string `json:"bearbeiter"`
	Notizen    string `json:"notizen"`
}

// @Summary Create a process event
// @Description Direct API entry into the unification pipeline
// @Tags processes
// @Accept json
// @Produce json
// @Param process body ProcessInput true "process event"
// @Success 200 {object} models.Outcome
// @Failure 400 {object} map[string]any
// @Router /api/processes [post]
func (h *Handler) ProcessCreate(c *gin.Context) {
	var in ProcessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_JSON", "Malformed JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing required fields", err.Error())
		return
	}

	fin := vin.Normalize(in.FIN)
	if !vin.Valid(fin) {
		writeError(c, http.StatusBadRequest, "INVALID_FIN", "FIN must be 17 valid VIN characters", in.FIN)
		return
	}

	prioritaet := models.PrioritaetDefault
	if in.Prioritaet != nil {
		prioritaet = *in.Prioritaet
	}
	event := models.ProcessEvent{
		FIN:               fin,
		ProzessTypRaw:     in.ProzessTyp,
		StatusRaw:         in.Status,
		BearbeiterRaw:     in.Bearbeiter,
		Prioritaet:        prioritaet,
		Notizen:           in.Notizen,
		Quelle:            models.QuelleDirectAPI,
		ExternalTimestamp: in.Timestamp,
		Fahrzeug:          in.Fahrzeug,
		ZusatzDaten:       in.ZusatzDaten,
	}
	c.JSON(http.StatusOK, h.Engine.Process(c.Request.Context(), event))
}

// @Summary Update process status
// @Tags processes
// @Accept json
// @Produce json
// @Param id path string true "process id"
// @Param update body StatusUpdateInput true "status update"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/processes/{id}/status [patch]
func (h *Handler) ProcessStatusUpdate(c *gin.Context) {
	prozessID := c.Param("id")

	var in StatusUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_JSON", "Malformed JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(&in); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required", err.Error())
		return
	}

	err := h.Engine.UpdateStatus(c.Request.Context(), prozessID, in.Status, in.Bearbeiter, in.Notizen)
	if errors.Is(err, warehouse.ErrProcessNotFound) || errors.Is(err, pgx.ErrNoRows) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Unknown process id", prozessID)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update process", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prozess_id": prozessID, "status": in.Status})
}
