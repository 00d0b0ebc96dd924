package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/vocab"
	"github.com/ra-autohaus/tracker/internal/warehouse"
)

const testFIN = "WAUZZZ8V5KA123456"

func newTestEngine(repo Repository) *Engine {
	e := NewEngine(repo, vocab.NewDefault(), zerolog.Nop())
	e.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return e
}

func baseEvent() models.ProcessEvent {
	return models.ProcessEvent{
		FIN:           testFIN,
		ProzessTypRaw: "aufbereitung",
		StatusRaw:     "gestartet",
		BearbeiterRaw: "Max R.",
		Prioritaet:    5,
		Quelle:        models.QuelleZapier,
	}
}

func TestProcessSuccess(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	out := e.Process(context.Background(), baseEvent())
	if !out.Success {
		t.Fatalf("expected success, got message %q", out.Message)
	}
	if out.ProzessTyp != models.ProzessAufbereitung {
		t.Errorf("prozess_typ = %q, want %q", out.ProzessTyp, models.ProzessAufbereitung)
	}
	if out.Bearbeiter != "Maximilian Reinhardt" {
		t.Errorf("bearbeiter = %q, want resolved full name", out.Bearbeiter)
	}
	if !strings.HasPrefix(out.ProzessID, "AUF_123456_20250310_090000") {
		t.Errorf("unexpected prozess id %q", out.ProzessID)
	}

	rows, err := mem.QueryProcesses(context.Background(), testFIN)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 process row, got %d", len(rows))
	}
	p := rows[0]
	if p.StartTimestamp == nil {
		t.Error("started status should set start timestamp")
	}
	if p.EndeTimestamp != nil {
		t.Error("started status should not set end timestamp")
	}
	if p.SLAStunden == nil || *p.SLAStunden != 72 {
		t.Errorf("sla hours = %v, want 72", p.SLAStunden)
	}
	if p.SLADeadline == nil || !p.SLADeadline.Equal(e.now().Add(72*time.Hour)) {
		t.Errorf("sla deadline = %v", p.SLADeadline)
	}
}

func TestProcessCreatesVehicleOnce(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.Fahrzeug = &models.VehicleAttributes{Marke: "Audi", Modell: "Q5"}

	first := e.Process(context.Background(), ev)
	if !first.VehicleCreated {
		t.Error("first event with stammdaten should create the vehicle")
	}
	second := e.Process(context.Background(), ev)
	if second.VehicleCreated {
		t.Error("second event must not report vehicle creation")
	}

	v, err := mem.GetVehicle(context.Background(), testFIN)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil {
		t.Fatal("vehicle not found")
	}
	if v.Marke != "Audi" || v.Modell != "Q5" {
		t.Errorf("vehicle stammdaten = %q/%q", v.Marke, v.Modell)
	}
	if v.Farbe != models.Unbekannt {
		t.Errorf("missing color should default to %q, got %q", models.Unbekannt, v.Farbe)
	}
	if v.ErstelltAusEmail {
		t.Error("zapier-sourced vehicle flagged as email-created")
	}
}

func TestProcessNoVehicleWithoutStammdaten(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.Fahrzeug = &models.VehicleAttributes{Farbe: "Schwarz"} // no marke/modell

	out := e.Process(context.Background(), ev)
	if out.VehicleCreated {
		t.Error("attributes without marke and modell must not create a vehicle")
	}
	v, _ := mem.GetVehicle(context.Background(), testFIN)
	if v != nil {
		t.Error("vehicle row should not exist")
	}
}

func TestProcessClampsPriority(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.Prioritaet = 15

	out := e.Process(context.Background(), ev)
	if !out.Success {
		t.Fatalf("unexpected failure: %s", out.Message)
	}
	found := false
	for _, w := range out.Warnings {
		if strings.Contains(w, "Priorität") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected priority warning, got %v", out.Warnings)
	}
	rows, _ := mem.QueryProcesses(context.Background(), testFIN)
	if rows[0].Prioritaet != models.PrioritaetDefault {
		t.Errorf("prioritaet = %d, want default %d", rows[0].Prioritaet, models.PrioritaetDefault)
	}
}

func TestProcessCompletedStatusSetsEndTimestamp(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ext := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	ev := baseEvent()
	ev.StatusRaw = "abgeschlossen"
	ev.ExternalTimestamp = &ext

	out := e.Process(context.Background(), ev)
	if !out.Success {
		t.Fatalf("unexpected failure: %s", out.Message)
	}
	rows, _ := mem.QueryProcesses(context.Background(), testFIN)
	p := rows[0]
	if p.StartTimestamp != nil {
		t.Error("completed status should not set start timestamp")
	}
	if p.EndeTimestamp == nil || !p.EndeTimestamp.Equal(ext) {
		t.Errorf("ende_timestamp = %v, want %v", p.EndeTimestamp, ext)
	}
}

func TestProcessUnknownTypeWarnsAndPersists(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.ProzessTypRaw = "sonderprozess"

	out := e.Process(context.Background(), ev)
	if !out.Success {
		t.Fatalf("unexpected failure: %s", out.Message)
	}
	if out.ProzessTyp != "Sonderprozess" {
		t.Errorf("prozess_typ = %q, want title-cased pass-through", out.ProzessTyp)
	}
	rows, _ := mem.QueryProcesses(context.Background(), testFIN)
	if rows[0].SLAStunden != nil {
		t.Error("unknown process type must not get an SLA window")
	}
}

func TestProzessIDUmlautTypePrefix(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.ProzessTypRaw = "überführung" // passes through title-cased

	out := e.Process(context.Background(), ev)
	if !out.Success {
		t.Fatalf("unexpected failure: %s", out.Message)
	}
	if !utf8.ValidString(out.ProzessID) {
		t.Fatalf("prozess id is not valid UTF-8: %q", out.ProzessID)
	}
	if !strings.HasPrefix(out.ProzessID, "ÜBE_") {
		t.Errorf("prozess id = %q, want ÜBE_ prefix", out.ProzessID)
	}
}

func TestProcessRepositoryFailure(t *testing.T) {
	mem := warehouse.NewMemory()
	mem.FailWrites = errors.New("warehouse unavailable")
	e := newTestEngine(mem)

	out := e.Process(context.Background(), baseEvent())
	if out.Success {
		t.Fatal("expected failed outcome")
	}
	if !strings.Contains(out.Message, "warehouse unavailable") {
		t.Errorf("message = %q, want cause included", out.Message)
	}
	if out.ProzessID != "" {
		t.Errorf("failed outcome should carry no prozess id, got %q", out.ProzessID)
	}
}

func TestProcessSourceConsistency(t *testing.T) {
	for _, quelle := range []string{models.QuelleZapier, models.QuelleEmail, models.QuelleFlowersWebhook} {
		mem := warehouse.NewMemory()
		e := newTestEngine(mem)

		ev := baseEvent()
		ev.Quelle = quelle
		ev.ProzessTypRaw = "gwa"
		ev.BearbeiterRaw = "Thomas Küfner"

		out := e.Process(context.Background(), ev)
		if !out.Success {
			t.Fatalf("%s: unexpected failure: %s", quelle, out.Message)
		}
		rows, _ := mem.QueryProcesses(context.Background(), testFIN)
		p := rows[0]
		if p.ProzessTyp != models.ProzessAufbereitung {
			t.Errorf("%s: prozess_typ = %q", quelle, p.ProzessTyp)
		}
		if p.Bearbeiter != "Thomas Küfner" {
			t.Errorf("%s: bearbeiter = %q", quelle, p.Bearbeiter)
		}
		if p.Datenquelle != quelle {
			t.Errorf("datenquelle = %q, want %q", p.Datenquelle, quelle)
		}
	}
}

func TestProcessZusatzDatenInNotizen(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.Notizen = "Eingang"
	ev.ZusatzDaten = map[string]any{"halle": "B2", "platz": 7}

	out := e.Process(context.Background(), ev)
	if !out.Success {
		t.Fatalf("unexpected failure: %s", out.Message)
	}
	rows, _ := mem.QueryProcesses(context.Background(), testFIN)
	notizen := rows[0].Notizen
	if !strings.Contains(notizen, "Eingang") || !strings.Contains(notizen, "halle=B2") || !strings.Contains(notizen, "platz=7") {
		t.Errorf("notizen = %q", notizen)
	}
}

func TestUpdateStatusTerminalClosesProcess(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	out := e.Process(context.Background(), baseEvent())
	if err := e.UpdateStatus(context.Background(), out.ProzessID, "abgeschlossen", "Max R.", "fertig geprüft"); err != nil {
		t.Fatal(err)
	}
	rows, _ := mem.QueryProcesses(context.Background(), testFIN)
	p := rows[0]
	if p.Status != "abgeschlossen" {
		t.Errorf("status = %q", p.Status)
	}
	if p.EndeTimestamp == nil {
		t.Error("terminal status should set ende_timestamp")
	}
	if p.Bearbeiter != "Maximilian Reinhardt" {
		t.Errorf("bearbeiter = %q, want resolved alias", p.Bearbeiter)
	}
}

func TestUpdateStatusUnknownProcess(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	err := e.UpdateStatus(context.Background(), "AUF_000000_20250101_000000_deadbeef", "pausiert", "", "")
	if !errors.Is(err, warehouse.ErrProcessNotFound) {
		t.Errorf("err = %v, want ErrProcessNotFound", err)
	}
}

func TestProcessesForVehicleAnnotatesSLA(t *testing.T) {
	mem := warehouse.NewMemory()
	e := newTestEngine(mem)

	ev := baseEvent()
	ev.ProzessTypRaw = "foto" // 4h window
	if out := e.Process(context.Background(), ev); !out.Success {
		t.Fatalf("unexpected failure: %s", out.Message)
	}

	// Jump past the deadline; the open process is now critical.
	e.now = func() time.Time { return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) }
	rows, err := e.ProcessesForVehicle(context.Background(), testFIN)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].SLAStatus != SLAStatusKritisch {
		t.Errorf("sla_status = %q, want %q", rows[0].SLAStatus, SLAStatusKritisch)
	}
}
