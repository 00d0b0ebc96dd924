package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/service"
)

// @Summary Dealership KPIs
// @Tags dashboard
// @Produce json
// @Success 200 {object} warehouse.KPIReport
// @Router /api/dashboard/kpis [get]
func (h *Handler) DashboardKPIs(c *gin.Context) {
	report, err := h.Store.KPIs(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute KPIs", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary SLA overview
// @Description Open processes whose SLA deadline is near or passed
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dashboard/sla [get]
func (h *Handler) DashboardSLA(c *gin.Context) {
	now := time.Now().UTC()
	processes, err := h.Store.SLAOverview(c.Request.Context(), now)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load SLA overview", err.Error())
		return
	}

	type slaItem struct {
		ProzessID   string     `json:"prozess_id"`
		FIN         string     `json:"fin"`
		ProzessTyp  string     `json:"prozess_typ"`
		Status      string     `json:"status"`
		Bearbeiter  string     `json:"bearbeiter,omitempty"`
		SLADeadline *time.Time `json:"sla_deadline,omitempty"`
		SLAStatus   string     `json:"sla_status"`
	}
	items := make([]slaItem, 0, len(processes))
	critical := 0
	for _, p := range processes {
		status := service.SLAStatusFor(p, now)
		if status == service.SLAStatusKritisch {
			critical++
		}
		items = append(items, slaItem{
			ProzessID:   p.ProzessID,
			FIN:         p.FIN,
			ProzessTyp:  p.ProzessTyp,
			Status:      p.Status,
			Bearbeiter:  p.Bearbeiter,
			SLADeadline: p.SLADeadline,
			SLAStatus:   status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"processes": items, "count": len(items), "critical": critical})
}

// @Summary Queues per process type
// @Description Open processes grouped by canonical type, highest priority first
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dashboard/warteschlangen [get]
func (h *Handler) DashboardWarteschlangen(c *gin.Context) {
	now := time.Now().UTC()
	items, err := h.Store.Warteschlangen(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load queues", err.Error())
		return
	}

	type queueEntry struct {
		FIN                string `json:"fin"`
		Fahrzeug           string `json:"fahrzeug"`
		Status             string `json:"status"`
		Bearbeiter         string `json:"bearbeiter,omitempty"`
		Prioritaet         int    `json:"prioritaet"`
		WartendSeitStunden int    `json:"wartend_seit_stunden"`
		SLAStatus          string `json:"sla_status,omitempty"`
	}
	queues := map[string][]queueEntry{
		models.ProzessEinkauf:      {},
		models.ProzessAnlieferung:  {},
		models.ProzessAufbereitung: {},
		models.ProzessFoto:         {},
		models.ProzessWerkstatt:    {},
		models.ProzessVerkauf:      {},
	}
	for _, item := range items {
		queue, ok := queues[item.ProzessTyp]
		if !ok {
			continue
		}
		since := item.ErstelltAm
		if item.StartTimestamp != nil {
			since = *item.StartTimestamp
		}
		fahrzeug := strings.TrimSpace(item.Marke + " " + item.Modell)
		if item.Baujahr != nil {
			fahrzeug = fmt.Sprintf("%s (%d)", fahrzeug, *item.Baujahr)
		}
		queues[item.ProzessTyp] = append(queue, queueEntry{
			FIN:                item.FIN,
			Fahrzeug:           fahrzeug,
			Status:             item.Status,
			Bearbeiter:         item.Bearbeiter,
			Prioritaet:         item.Prioritaet,
			WartendSeitStunden: int(now.Sub(since).Hours()),
			SLAStatus:          service.SLAStatusFor(item.Process, now),
		})
	}
	c.JSON(http.StatusOK, gin.H{"warteschlangen": queues})
}

// @Summary Workload per worker
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dashboard/workload [get]
func (h *Handler) DashboardWorkload(c *gin.Context) {
	load, err := h.Store.Workload(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute workload", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"workload": load, "count": len(load)})
}
