package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ra-autohaus/tracker/internal/warehouse"
)

func TestProcessCreateDirectAPI(t *testing.T) {
	mem := warehouse.NewMemory()
	r := newTestRouter(mem)

	body := map[string]any{
		"fin":         testFIN,
		"prozess_typ": "einkauf",
		"status":      "gestartet",
		"bearbeiter":  "Max R.",
		"prioritaet":  3,
	}
	w := doJSON(t, r, http.MethodPost, "/api/processes", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	out := decodeOutcome(t, w)
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if out.Quelle != "direct_api" {
		t.Errorf("quelle = %q", out.Quelle)
	}
}

func TestProcessCreateInvalidFIN(t *testing.T) {
	r := newTestRouter(warehouse.NewMemory())

	body := map[string]any{
		"fin":         "TOOSHORT",
		"prozess_typ": "einkauf",
		"status":      "gestartet",
	}
	w := doJSON(t, r, http.MethodPost, "/api/processes", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcessCreateMissingFields(t *testing.T) {
	r := newTestRouter(warehouse.NewMemory())

	w := doJSON(t, r, http.MethodPost, "/api/processes", map[string]any{"fin": testFIN})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcessStatusUpdateFlow(t *testing.T) {
	mem := warehouse.NewMemory()
	r := newTestRouter(mem)

	body := map[string]any{
		"fin":         testFIN,
		"prozess_typ": "werkstatt",
		"status":      "gestartet",
	}
	w := doJSON(t, r, http.MethodPost, "/api/processes", body)
	out := decodeOutcome(t, w)
	if !out.Success {
		t.Fatalf("setup failed: %s", out.Message)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/processes/"+out.ProzessID+"/status", map[string]any{
		"status": "abgeschlossen",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	rows, _ := mem.QueryProcesses(context.Background(), testFIN)
	if rows[0].Status != "abgeschlossen" {
		t.Errorf("status = %q", rows[0].Status)
	}
	if rows[0].EndeTimestamp == nil {
		t.Error("terminal status should close the process")
	}
}

func TestProcessStatusUpdateUnknownID(t *testing.T) {
	r := newTestRouter(warehouse.NewMemory())

	w := doJSON(t, r, http.MethodPatch, "/api/processes/NOPE/status", map[string]any{"status": "pausiert"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	mem := warehouse.NewMemory()
	r := newTestRouter(mem)

	for _, typ := range []string{"einkauf", "foto"} {
		w := doJSON(t, r, http.MethodPost, "/api/processes", map[string]any{
			"fin":         testFIN,
			"prozess_typ": typ,
			"status":      "gestartet",
			"bearbeiter":  "Max R.",
			"fahrzeug":    map[string]any{"marke": "Audi", "modell": "Q5"},
		})
		if out := decodeOutcome(t, w); !out.Success {
			t.Fatalf("setup failed: %s", out.Message)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/dashboard/kpis", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("kpis: expected 200, got %d", w.Code)
	}
	var kpis warehouse.KPIReport
	if err := json.Unmarshal(w.Body.Bytes(), &kpis); err != nil {
		t.Fatal(err)
	}
	if kpis.FahrzeugeGesamt != 1 || kpis.ProzesseGesamt != 2 {
		t.Errorf("kpis = %+v", kpis)
	}

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/sla", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sla: expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/warteschlangen", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("warteschlangen: expected 200, got %d", w.Code)
	}
	var queues struct {
		Warteschlangen map[string][]struct {
			FIN      string `json:"fin"`
			Fahrzeug string `json:"fahrzeug"`
		} `json:"warteschlangen"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &queues); err != nil {
		t.Fatal(err)
	}
	if len(queues.Warteschlangen) != 6 {
		t.Errorf("expected all six queues present, got %d", len(queues.Warteschlangen))
	}
	einkauf := queues.Warteschlangen["Einkauf"]
	if len(einkauf) != 1 || einkauf[0].FIN != testFIN {
		t.Errorf("Einkauf queue = %+v", einkauf)
	}
	if einkauf[0].Fahrzeug != "Audi Q5" {
		t.Errorf("fahrzeug label = %q", einkauf[0].Fahrzeug)
	}
	if len(queues.Warteschlangen["Werkstatt"]) != 0 {
		t.Errorf("Werkstatt queue should be empty")
	}

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/workload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("workload: expected 200, got %d", w.Code)
	}
	var load struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &load); err != nil {
		t.Fatal(err)
	}
	if load.Count != 1 {
		t.Errorf("workload rows = %d, want 1", load.Count)
	}
}
