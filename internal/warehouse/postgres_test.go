package warehouse

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
)

func TestPostgresRoundTripIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	fin := "WAUZZZ8V5KA999999"
	now := time.Now().UTC().Truncate(time.Second)
	vehicle := models.Vehicle{
		FIN:             fin,
		Marke:           "Audi",
		Modell:          "A4",
		Antriebsart:     models.Unbekannt,
		Farbe:           models.Unbekannt,
		Bereifungsart:   models.Unbekannt,
		Besteuerungsart: models.Unbekannt,
		Datenquelle:     models.QuelleDirectAPI,
		ErstelltAm:      now,
		AktualisiertAm:  now,
		Aktiv:           true,
	}
	if err := store.CreateVehicle(ctx, vehicle); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	// Second insert hits the conflict path and must be a no-op.
	if err := store.CreateVehicle(ctx, vehicle); err != nil {
		t.Fatalf("duplicate create vehicle: %v", err)
	}

	exists, err := store.VehicleExists(ctx, fin)
	if err != nil || !exists {
		t.Fatalf("exists = %v, %v", exists, err)
	}

	process := models.Process{
		ProzessID:      "EIN_999999_test",
		FIN:            fin,
		ProzessTyp:     models.ProzessEinkauf,
		Status:         "gestartet",
		Prioritaet:     models.PrioritaetDefault,
		Datenquelle:    models.QuelleDirectAPI,
		ErstelltAm:     now,
		AktualisiertAm: now,
	}
	if err := store.CreateProcess(ctx, process); err != nil {
		t.Fatalf("create process: %v", err)
	}

	status := "abgeschlossen"
	ende := now.Add(time.Hour)
	err = store.UpdateProcess(ctx, process.ProzessID, ProcessUpdate{Status: &status, EndeTimestamp: &ende})
	if err != nil {
		t.Fatalf("update process: %v", err)
	}

	rows, err := store.QueryProcesses(ctx, fin)
	if err != nil {
		t.Fatalf("query processes: %v", err)
	}
	if len(rows) == 0 || rows[0].Status != status {
		t.Fatalf("rows = %+v", rows)
	}
}
