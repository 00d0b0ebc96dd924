// Package service holds the unification engine: the single code path every
// source funnels through so the same business rules apply regardless of
// where an event came from.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/vocab"
	"github.com/ra-autohaus/tracker/internal/warehouse"
)

// Repository is the persistence surface the engine consumes.
type Repository interface {
	VehicleExists(ctx context.Context, fin string) (bool, error)
	CreateVehicle(ctx context.Context, v models.Vehicle) error
	CreateProcess(ctx context.Context, p models.Process) error
	UpdateProcess(ctx context.Context, prozessID string, upd warehouse.ProcessUpdate) error
	QueryProcesses(ctx context.Context, fin string) ([]models.Process, error)
}

// Status tokens recognized across the German and English source systems.
var (
	completedTokens = []string{"abgeschlossen", "fertig", "erledigt", "beendet", "completed", "done"}
	startedTokens   = []string{"gestartet", "in_bearbeitung", "in bearbeitung", "begonnen", "started"}
)

type Engine struct {
	repo   Repository
	vocab  *vocab.Normalizer
	logger zerolog.Logger
	now    func() time.Time
}

func NewEngine(repo Repository, n *vocab.Normalizer, logger zerolog.Logger) *Engine {
	return &Engine{repo: repo, vocab: n, logger: logger, now: time.Now}
}

// Process runs a canonical event through normalization, vehicle creation
// and process persistence. It never returns an error for expected domain
// conditions; repository failures come back as a failed outcome.
func (e *Engine) Process(ctx context.Context, event models.ProcessEvent) models.Outcome {
	warnings := append([]string(nil), event.Warnings...)

	prozessTyp, remapped := e.vocab.NormalizeProzessTyp(event.ProzessTypRaw)
	if remapped {
		warnings = append(warnings, fmt.Sprintf("Prozesstyp %q wurde auf %q abgebildet", event.ProzessTypRaw, prozessTyp))
	}

	bearbeiter, remapped := e.vocab.ResolveBearbeiter(event.BearbeiterRaw)
	if remapped {
		warnings = append(warnings, fmt.Sprintf("Bearbeiter %q wurde auf %q abgebildet", event.BearbeiterRaw, bearbeiter))
	}

	prioritaet := event.Prioritaet
	if prioritaet < models.PrioritaetMin || prioritaet > models.PrioritaetMax {
		warnings = append(warnings, fmt.Sprintf("Priorität %d außerhalb 1-10, Default %d verwendet", prioritaet, models.PrioritaetDefault))
		prioritaet = models.PrioritaetDefault
	}

	vehicleCreated := false
	if event.Fahrzeug.HasStammdaten() {
		created, err := e.ensureVehicle(ctx, event)
		if err != nil {
			return e.failure(event, prozessTyp, err)
		}
		vehicleCreated = created
	}

	now := e.now().UTC()
	process := models.Process{
		ProzessID:      generateProzessID(prozessTyp, event.FIN, now),
		FIN:            event.FIN,
		ProzessTyp:     prozessTyp,
		Status:         event.StatusRaw,
		Bearbeiter:     bearbeiter,
		Prioritaet:     prioritaet,
		Notizen:        buildNotizen(event),
		Datenquelle:    event.Quelle,
		ErstelltAm:     now,
		AktualisiertAm: now,
	}

	eventTime := now
	if event.ExternalTimestamp != nil {
		eventTime = event.ExternalTimestamp.UTC()
	}
	switch {
	case matchesToken(event.StatusRaw, completedTokens):
		process.EndeTimestamp = &eventTime
	case matchesToken(event.StatusRaw, startedTokens):
		process.StartTimestamp = &eventTime
	}

	slaStart := now
	if process.StartTimestamp != nil {
		slaStart = *process.StartTimestamp
	}
	if sla, ok := ComputeSLA(prozessTyp, slaStart, now); ok {
		process.SLAStunden = &sla.Stunden
		process.SLADeadline = &sla.Deadline
	}

	if err := e.repo.CreateProcess(ctx, process); err != nil {
		return e.failure(event, prozessTyp, err)
	}

	e.logger.Info().
		Str("fin", event.FIN).
		Str("prozess_typ", prozessTyp).
		Str("status", event.StatusRaw).
		Str("prozess_id", process.ProzessID).
		Str("quelle", event.Quelle).
		Bool("vehicle_created", vehicleCreated).
		Msg("event processed")

	return models.Outcome{
		Success:        true,
		Message:        "Ereignis verarbeitet",
		FIN:            event.FIN,
		ProzessTyp:     prozessTyp,
		Status:         event.StatusRaw,
		ProzessID:      process.ProzessID,
		VehicleCreated: vehicleCreated,
		Bearbeiter:     bearbeiter,
		Warnings:       warnings,
		Quelle:         event.Quelle,
	}
}

// UpdateStatus appends a status change to an existing process row. Terminal
// statuses close the process.
func (e *Engine) UpdateStatus(ctx context.Context, prozessID, status, bearbeiterRaw, notizen string) error {
	upd := warehouse.ProcessUpdate{Status: &status}
	if bearbeiterRaw != "" {
		resolved, _ := e.vocab.ResolveBearbeiter(bearbeiterRaw)
		upd.Bearbeiter = &resolved
	}
	if notizen != "" {
		upd.Notizen = &notizen
	}
	if matchesToken(status, completedTokens) {
		ende := e.now().UTC()
		upd.EndeTimestamp = &ende
	}
	return e.repo.UpdateProcess(ctx, prozessID, upd)
}

// ProcessWithSLA is a process row annotated with its current SLA standing.
type ProcessWithSLA struct {
	models.Process
	SLAStatus string `json:"sla_status,omitempty"`
}

// ProcessesForVehicle returns the process history for a FIN, most recently
// updated first, annotated with SLA status.
func (e *Engine) ProcessesForVehicle(ctx context.Context, fin string) ([]ProcessWithSLA, error) {
	rows, err := e.repo.QueryProcesses(ctx, fin)
	if err != nil {
		return nil, err
	}
	now := e.now().UTC()
	out := make([]ProcessWithSLA, 0, len(rows))
	for _, p := range rows {
		out = append(out, ProcessWithSLA{Process: p, SLAStatus: SLAStatusFor(p, now)})
	}
	return out, nil
}

// ensureVehicle creates the master record on first sight of a FIN. Existing
// records are never touched: stammdata updates do not ride on process
// events.
func (e *Engine) ensureVehicle(ctx context.Context, event models.ProcessEvent) (bool, error) {
	exists, err := e.repo.VehicleExists(ctx, event.FIN)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	attrs := event.Fahrzeug
	now := e.now().UTC()
	vehicle := models.Vehicle{
		FIN:                      event.FIN,
		Marke:                    orUnbekannt(attrs.Marke),
		Modell:                   orUnbekannt(attrs.Modell),
		Antriebsart:              orUnbekannt(attrs.Antriebsart),
		Farbe:                    orUnbekannt(attrs.Farbe),
		Baujahr:                  attrs.Baujahr,
		DatumErstzulassung:       attrs.DatumErstzulassung,
		KWLeistung:               attrs.KWLeistung,
		KMStand:                  attrs.KMStand,
		AnzahlFahrzeugschluessel: attrs.AnzahlFahrzeugschluessel,
		Bereifungsart:            orUnbekannt(attrs.Bereifungsart),
		AnzahlVorhalter:          attrs.AnzahlVorhalter,
		EKNetto:                  attrs.EKNetto,
		Besteuerungsart:          orUnbekannt(attrs.Besteuerungsart),
		ErstelltAusEmail:         event.Quelle == models.QuelleEmail,
		Datenquelle:              event.Quelle,
		ErstelltAm:               now,
		AktualisiertAm:           now,
		Aktiv:                    true,
	}
	if err := e.repo.CreateVehicle(ctx, vehicle); err != nil {
		return false, err
	}
	e.logger.Info().Str("fin", event.FIN).Str("quelle", event.Quelle).Msg("vehicle created")
	return true, nil
}

func (e *Engine) failure(event models.ProcessEvent, prozessTyp string, err error) models.Outcome {
	e.logger.Error().Err(err).
		Str("fin", event.FIN).
		Str("prozess_typ", prozessTyp).
		Str("quelle", event.Quelle).
		Msg("event processing failed")

	return models.Outcome{
		Success:    false,
		Message:    err.Error(),
		FIN:        event.FIN,
		ProzessTyp: prozessTyp,
		Status:     event.StatusRaw,
		Quelle:     event.Quelle,
	}
}

// Process ids stay human-scannable: type prefix, FIN tail, timestamp, plus
// a short random tail so two events in the same second cannot collide.
func generateProzessID(prozessTyp, fin string, now time.Time) string {
	prefixRunes := []rune(strings.ToUpper(prozessTyp))
	if len(prefixRunes) > 3 {
		prefixRunes = prefixRunes[:3]
	}
	prefix := string(prefixRunes)
	finTail := fin
	if len(finTail) > 6 {
		finTail = finTail[len(finTail)-6:]
	}
	return fmt.Sprintf("%s_%s_%s_%s", prefix, finTail, now.Format("20060102_150405"), uuid.NewString()[:8])
}

func buildNotizen(event models.ProcessEvent) string {
	notizen := event.Notizen
	if len(event.ZusatzDaten) > 0 {
		// No structured storage for extra data; it rides along in the notes.
		parts := make([]string, 0, len(event.ZusatzDaten))
		for k, v := range event.ZusatzDaten {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(parts)
		notizen = strings.TrimSpace(notizen + " | Zusatzdaten: " + strings.Join(parts, ", "))
	}
	return notizen
}

func matchesToken(status string, tokens []string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, t := range tokens {
		if s == t {
			return true
		}
	}
	return false
}

func orUnbekannt(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.Unbekannt
	}
	return s
}
