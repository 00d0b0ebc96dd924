package service

import (
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
)

// SLA status values reported to the dashboard.
const (
	SLAStatusOk       = "ok"
	SLAStatusWarnung  = "warning"
	SLAStatusKritisch = "critical"
)

// Expected duration per canonical process type. Verkauf is an outer bound
// for marketing, not a hard target, but it is tracked the same way.
var slaStunden = map[string]int{
	models.ProzessEinkauf:      8,
	models.ProzessAnlieferung:  24,
	models.ProzessAufbereitung: 72,
	models.ProzessFoto:         4,
	models.ProzessWerkstatt:    168,
	models.ProzessVerkauf:      720,
}

// SLAHours returns the expected duration for a canonical process type.
// Pass-through types have no SLA.
func SLAHours(prozessTyp string) (int, bool) {
	h, ok := slaStunden[prozessTyp]
	return h, ok
}

type SLAInfo struct {
	Stunden  int
	Deadline time.Time
	Status   string
}

// ComputeSLA derives deadline and threshold status for a process started at
// start. Remaining time below zero is critical; below 20% of the window is
// a warning.
func ComputeSLA(prozessTyp string, start, now time.Time) (SLAInfo, bool) {
	hours, ok := slaStunden[prozessTyp]
	if !ok {
		return SLAInfo{}, false
	}
	window := time.Duration(hours) * time.Hour
	deadline := start.Add(window)
	remaining := deadline.Sub(now)

	status := SLAStatusOk
	switch {
	case remaining < 0:
		status = SLAStatusKritisch
	case remaining < window/5:
		status = SLAStatusWarnung
	}
	return SLAInfo{Stunden: hours, Deadline: deadline, Status: status}, true
}

// SLAStatusFor classifies a persisted process row against its deadline.
// Closed processes are judged by when they finished, not by the clock.
func SLAStatusFor(p models.Process, now time.Time) string {
	if p.SLADeadline == nil || p.SLAStunden == nil {
		return ""
	}
	ref := now
	if p.EndeTimestamp != nil {
		ref = *p.EndeTimestamp
	}
	window := time.Duration(*p.SLAStunden) * time.Hour
	remaining := p.SLADeadline.Sub(ref)
	switch {
	case remaining < 0:
		return SLAStatusKritisch
	case remaining < window/5:
		return SLAStatusWarnung
	}
	return SLAStatusOk
}
