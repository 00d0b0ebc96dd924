package adapters

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/vin"
)

// EmailInput is the already-retrieved email handed over by the mail
// endpoint; IMAP polling and MIME decoding happen upstream.
type EmailInput struct {
	Betreff     string     `json:"betreff" binding:"required"`
	Inhalt      string     `json:"inhalt" binding:"required"`
	Absender    string     `json:"absender"`
	EmpfangenAm *time.Time `json:"empfangen_am"`
}

// Subject grammar: "<prozess> <statuswort>", e.g. "GWA gestartet" or
// "Foto abgeschlossen".
var emailSubjectPattern = regexp.MustCompile(`(?i)^([A-Za-z0-9_\-\s]+)\s+(gestartet|abgeschlossen|pausiert|warteschlange|fertig|completed)$`)

// Labeled body fields as Flowers renders them.
var emailBodyPatterns = map[string]*regexp.Regexp{
	"fin":        regexp.MustCompile(`(?i)FIN:\s*([A-Z0-9]{15,17})`),
	"marke":      regexp.MustCompile(`(?i)Marke:\s*([^\n\r]+)`),
	"farbe":      regexp.MustCompile(`(?i)Farbe:\s*([^\n\r]+)`),
	"bearbeiter": regexp.MustCompile(`(?i)Bearbeiter:\s*([^\n\r]+)`),
	"modell":     regexp.MustCompile(`(?i)Modell:\s*([^\n\r]+)`),
	"prioritaet": regexp.MustCompile(`(?i)Priorität:\s*([1-9]|10)\b`),
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// ConvertEmail parses subject and body into a canonical event. Email has no
// other path to recover the required fields, so a missing FIN, process name
// or status is fatal here.
func ConvertEmail(in EmailInput) (models.ProcessEvent, error) {
	prozess, status := parseSubject(in.Betreff)
	body := parseBody(in.Inhalt)

	if body["fin"] == "" {
		return models.ProcessEvent{}, fmt.Errorf("keine FIN in E-Mail gefunden: %w", ErrFINNotFound)
	}
	var missing []string
	if prozess == "" {
		missing = append(missing, "prozess_typ")
	}
	if status == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return models.ProcessEvent{}, &MissingFieldsError{Fields: missing}
	}

	event := models.ProcessEvent{
		FIN:               strings.ToUpper(body["fin"]),
		ProzessTypRaw:     prozess,
		StatusRaw:         status,
		BearbeiterRaw:     body["bearbeiter"],
		Prioritaet:        models.PrioritaetDefault,
		Notizen:           "E-Mail: " + in.Betreff,
		Quelle:            models.QuelleEmail,
		ExternalTimestamp: in.EmpfangenAm,
	}
	if raw := body["prioritaet"]; raw != "" {
		if n, ok := parseIntField(raw); ok {
			event.Prioritaet = n
		}
	}

	// Older Flowers mails carry 15-character identifiers; those are
	// accepted but flagged so the short key is visible downstream.
	if !vin.Valid(event.FIN) {
		event.Warnings = append(event.Warnings, fmt.Sprintf("FIN %q ist keine 17-stellige FIN", event.FIN))
	}

	if body["marke"] != "" || body["modell"] != "" || body["farbe"] != "" {
		event.Fahrzeug = &models.VehicleAttributes{
			Marke:  body["marke"],
			Modell: body["modell"],
			Farbe:  body["farbe"],
		}
	}

	return event, nil
}

func parseSubject(subject string) (prozess, status string) {
	m := emailSubjectPattern.FindStringSubmatch(strings.TrimSpace(subject))
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

func parseBody(body string) map[string]string {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<body>") {
		body = htmlTagPattern.ReplaceAllString(body, " ")
	}

	fields := make(map[string]string, len(emailBodyPatterns))
	for name, pattern := range emailBodyPatterns {
		if m := pattern.FindStringSubmatch(body); m != nil {
			fields[name] = strings.TrimSpace(m[1])
		}
	}
	return fields
}
