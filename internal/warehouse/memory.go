package warehouse

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
)

var ErrProcessNotFound = errors.New("process not found")

// Memory is the warehouse used when no DATABASE_URL is configured, and the
// test double. Behavior mirrors the Postgres store, including the
// create-once guarantee on vehicles.
type Memory struct {
	mu        sync.RWMutex
	vehicles  map[string]models.Vehicle
	processes []models.Process

	// FailWrites makes every write return an error, for failure-path tests.
	FailWrites error
}

var _ Warehouse = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{vehicles: make(map[string]models.Vehicle)}
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close()                     {}

func (m *Memory) VehicleExists(_ context.Context, fin string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vehicles[fin]
	return ok, nil
}

func (m *Memory) CreateVehicle(_ context.Context, v models.Vehicle) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.FIN]; ok {
		return nil // conflict is a no-op, as in the Postgres store
	}
	m.vehicles[v.FIN] = v
	return nil
}

func (m *Memory) GetVehicle(_ context.Context, fin string) (*models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vehicles[fin]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *Memory) ListVehicles(_ context.Context, limit int) ([]models.Vehicle, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ErstelltAm.After(out[j].ErstelltAm) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateProcess(_ context.Context, p models.Process) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processes = append(m.processes, p)
	return nil
}

func (m *Memory) UpdateProcess(_ context.Context, prozessID string, upd ProcessUpdate) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.processes {
		if m.processes[i].ProzessID != prozessID {
			continue
		}
		p := &m.processes[i]
		if upd.Status != nil {
			p.Status = *upd.Status
		}
		if upd.Bearbeiter != nil {
			p.Bearbeiter = *upd.Bearbeiter
		}
		if upd.Notizen != nil {
			p.Notizen = *upd.Notizen
		}
		if upd.EndeTimestamp != nil {
			p.EndeTimestamp = upd.EndeTimestamp
		}
		p.AktualisiertAm = time.Now().UTC()
		return nil
	}
	return ErrProcessNotFound
}

func (m *Memory) QueryProcesses(_ context.Context, fin string) ([]models.Process, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Process
	for _, p := range m.processes {
		if p.FIN == fin {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AktualisiertAm.After(out[j].AktualisiertAm) })
	return out, nil
}

func (m *Memory) KPIs(context.Context) (KPIReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report := KPIReport{
		FahrzeugeGesamt: len(m.vehicles),
		ProzesseGesamt:  len(m.processes),
		ProzesseProTyp:  map[string]int{},
	}
	for _, p := range m.processes {
		report.ProzesseProTyp[p.ProzessTyp]++
	}
	return report, nil
}

func (m *Memory) SLAOverview(_ context.Context, now time.Time) ([]models.Process, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := now.Add(24 * time.Hour)
	var out []models.Process
	for _, p := range m.processes {
		if p.EndeTimestamp == nil && p.SLADeadline != nil && !p.SLADeadline.After(cutoff) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SLADeadline.Before(*out[j].SLADeadline) })
	return out, nil
}

func (m *Memory) Warteschlangen(context.Context) ([]QueueItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []QueueItem
	for _, p := range m.processes {
		if p.EndeTimestamp != nil {
			continue
		}
		item := QueueItem{Process: p}
		if v, ok := m.vehicles[p.FIN]; ok {
			item.Marke = v.Marke
			item.Modell = v.Modell
			item.Baujahr = v.Baujahr
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Prioritaet == out[j].Prioritaet {
			return out[i].ErstelltAm.Before(out[j].ErstelltAm)
		}
		return out[i].Prioritaet < out[j].Prioritaet
	})
	return out, nil
}

func (m *Memory) Workload(context.Context) ([]BearbeiterLoad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byName := map[string]*BearbeiterLoad{}
	for _, p := range m.processes {
		if p.Bearbeiter == "" {
			continue
		}
		l, ok := byName[p.Bearbeiter]
		if !ok {
			l = &BearbeiterLoad{Bearbeiter: p.Bearbeiter}
			byName[p.Bearbeiter] = l
		}
		l.Prozesse++
		if p.EndeTimestamp == nil {
			l.Offen++
		}
	}
	out := make([]BearbeiterLoad, 0, len(byName))
	for _, l := range byName {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Offen == out[j].Offen {
			return out[i].Bearbeiter < out[j].Bearbeiter
		}
		return out[i].Offen > out[j].Offen
	})
	return out, nil
}
