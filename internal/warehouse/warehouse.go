// Package warehouse is the persistence boundary for vehicle master data and
// process records. The analytical store is consumed through the Warehouse
// interface; a Postgres implementation backs production and a mutex-guarded
// in-memory implementation backs development mode and tests.
package warehouse

import (
	"context"
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
)

type Warehouse interface {
	Ping(ctx context.Context) error
	Close()

	VehicleExists(ctx context.Context, fin string) (bool, error)
	CreateVehicle(ctx context.Context, v models.Vehicle) error
	GetVehicle(ctx context.Context, fin string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, limit int) ([]models.Vehicle, error)

	CreateProcess(ctx context.Context, p models.Process) error
	UpdateProcess(ctx context.Context, prozessID string, upd ProcessUpdate) error
	// QueryProcesses returns the process rows for a FIN ordered most
	// recently updated first; reporting derives "current" from the head.
	QueryProcesses(ctx context.Context, fin string) ([]models.Process, error)

	KPIs(ctx context.Context) (KPIReport, error)
	SLAOverview(ctx context.Context, now time.Time) ([]models.Process, error)
	Workload(ctx context.Context) ([]BearbeiterLoad, error)
	// Warteschlangen returns all open processes joined with their vehicle
	// master data, highest priority first, oldest first within a priority.
	Warteschlangen(ctx context.Context) ([]QueueItem, error)
}

// QueueItem is an open process together with the vehicle fields the queue
// view displays.
type QueueItem struct {
	models.Process
	Marke   string `json:"marke,omitempty"`
	Modell  string `json:"modell,omitempty"`
	Baujahr *int   `json:"baujahr,omitempty"`
}

// ProcessUpdate carries the mutable fields of a process row; nil means
// leave unchanged.
type ProcessUpdate struct {
	Status        *string
	Bearbeiter    *string
	Notizen       *string
	EndeTimestamp *time.Time
}

type KPIReport struct {
	FahrzeugeGesamt int            `json:"fahrzeuge_gesamt"`
	ProzesseGesamt  int            `json:"prozesse_gesamt"`
	ProzesseProTyp  map[string]int `json:"prozesse_pro_typ"`
}

type BearbeiterLoad struct {
	Bearbeiter string `json:"bearbeiter"`
	Prozesse   int    `json:"prozesse"`
	Offen      int    `json:"offen"`
}

// Statuses that end a process; everything else counts as open.
func IsTerminalStatus(status string) bool {
	switch status {
	case "abgeschlossen", "abgebrochen", "fertig", "completed", "done":
		return true
	}
	return false
}
