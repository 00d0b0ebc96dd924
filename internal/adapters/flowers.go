package adapters

import (
	"fmt"
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/vin"
)

// FlowersInput is the legacy software's direct webhook payload. The vehicle
// reference is its own free-text id; the FIN is often only embedded there.
type FlowersInput struct {
	FahrzeugID  string         `json:"fahrzeug_id" binding:"required"`
	FIN         string         `json:"fin"`
	Prozess     string         `json:"prozess" binding:"required"`
	Status      string         `json:"status" binding:"required"`
	Bearbeiter  string         `json:"bearbeiter"`
	Timestamp   *time.Time     `json:"timestamp"`
	ZusatzDaten map[string]any `json:"zusatz_daten"`
}

// ConvertFlowers maps a legacy webhook payload onto the canonical event,
// falling back to extraction from the vehicle-reference text when the FIN
// field is empty.
func ConvertFlowers(in FlowersInput) (models.ProcessEvent, error) {
	fin := vin.Normalize(in.FIN)
	if fin == "" {
		fin = vin.Extract(in.FahrzeugID)
	}
	if fin == "" || !vin.Valid(fin) {
		return models.ProcessEvent{}, fmt.Errorf("fahrzeug_id %q: %w", in.FahrzeugID, ErrFINNotFound)
	}

	var missing []string
	if in.Prozess == "" {
		missing = append(missing, "prozess")
	}
	if in.Status == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return models.ProcessEvent{}, &MissingFieldsError{Fields: missing}
	}

	return models.ProcessEvent{
		FIN:               fin,
		ProzessTypRaw:     in.Prozess,
		StatusRaw:         in.Status,
		BearbeiterRaw:     in.Bearbeiter,
		Prioritaet:        models.PrioritaetDefault,
		Quelle:            models.QuelleFlowersWebhook,
		ExternalTimestamp: in.Timestamp,
		ZusatzDaten:       in.ZusatzDaten,
	}, nil
}
