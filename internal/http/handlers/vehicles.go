package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ra-autohaus/tracker/internal/vin"
)

// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Param limit query int false "max rows (default 100)"
// @Success 200 {object} map[string]any
// @Router /api/vehicles [get]
func (h *Handler) VehiclesList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	vehicles, err := h.Store.ListVehicles(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list vehicles", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "count": len(vehicles)})
}

// @Summary Vehicle details
// @Tags vehicles
// @Produce json
// @Param fin path string true "FIN"
// @Success 200 {object} models.Vehicle
// @Failure 404 {object} map[string]any
// @Router /api/vehicles/{fin} [get]
func (h *Handler) VehicleDetails(c *gin.Context) {
	fin := vin.Normalize(c.Param("fin"))
	vehicle, err := h.Store.GetVehicle(c.Request.Context(), fin)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load vehicle", err.Error())
		return
	}
	if vehicle == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Unknown FIN", fin)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// @Summary Process history of a vehicle
// @Description Processes most recently updated first, annotated with SLA status
// @Tags vehicles
// @Produce json
// @Param fin path string true "FIN"
// @Success 200 {object} map[string]any
// @Router /api/vehicles/{fin}/processes [get]
func (h *Handler) VehicleProcesses(c *gin.Context) {
	fin := vin.Normalize(c.Param("fin"))
	processes, err := h.Engine.ProcessesForVehicle(c.Request.Context(), fin)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load processes", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"fin": fin, "processes": processes, "count": len(processes)})
}
