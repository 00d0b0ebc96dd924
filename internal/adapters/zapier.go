package adapters

import (
	"fmt"
	"time"

	"github.com/ra-autohaus/tracker/internal/models"
	"github.com/ra-autohaus/tracker/internal/vin"
)

// Ordered alias lists for the logical fields. Zapier zaps built at
// different times send different spellings; first non-empty wins.
var (
	zapierFINKeys        = []string{"fin", "fahrzeug_fin", "vehicle_fin", "FIN"}
	zapierProzessKeys    = []string{"prozess_typ", "prozess_name", "prozess", "process_name"}
	zapierStatusKeys     = []string{"status", "neuer_status", "new_status"}
	zapierBearbeiterKeys = []string{"bearbeiter", "bearbeiter_name"}
)

// ConvertZapier maps an arbitrarily-shaped automation-platform payload onto
// the canonical event. Unknown extra fields are ignored; an unparseable
// registration date is a warning, not a rejection.
func ConvertZapier(payload map[string]any) (models.ProcessEvent, error) {
	fin := vin.Normalize(firstString(payload, zapierFINKeys...))
	prozess := firstString(payload, zapierProzessKeys...)
	status := firstString(payload, zapierStatusKeys...)

	var missing []string
	if fin == "" || !vin.Valid(fin) {
		missing = append(missing, "fin")
	}
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
		FIN:           fin,
		ProzessTypRaw: prozess,
		StatusRaw:     status,
		BearbeiterRaw: firstString(payload, zapierBearbeiterKeys...),
		Prioritaet:    models.PrioritaetDefault,
		Notizen:       firstString(payload, "notizen"),
		Quelle:        models.QuelleZapier,
	}

	if raw := firstString(payload, "prioritaet", "priority"); raw != "" {
		if n, ok := parseIntField(raw); ok {
			event.Prioritaet = n
		} else {
			event.Warnings = append(event.Warnings, fmt.Sprintf("Priorität %q nicht lesbar, Default %d verwendet", raw, models.PrioritaetDefault))
		}
	}

	if ts := firstString(payload, "timestamp", "original_timestamp"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			event.ExternalTimestamp = &parsed
		} else {
			event.Warnings = append(event.Warnings, fmt.Sprintf("Zeitstempel %q nicht lesbar", ts))
		}
	}

	event.Fahrzeug = zapierVehicleAttributes(payload, &event)

	if extra, ok := payload["zusatz_daten"].(map[string]any); ok && len(extra) > 0 {
		event.ZusatzDaten = extra
	}

	return event, nil
}

func zapierVehicleAttributes(payload map[string]any, event *models.ProcessEvent) *models.VehicleAttributes {
	attrs := &models.VehicleAttributes{
		Marke:           firstString(payload, "marke"),
		Modell:          firstString(payload, "modell"),
		Antriebsart:     firstString(payload, "antriebsart"),
		Farbe:           firstString(payload, "farbe"),
		Bereifungsart:   firstString(payload, "bereifungsart"),
		Besteuerungsart: firstString(payload, "besteuerungsart"),
	}

	present := attrs.Marke != "" || attrs.Modell != "" || attrs.Antriebsart != "" ||
		attrs.Farbe != "" || attrs.Bereifungsart != "" || attrs.Besteuerungsart != ""

	for key, dst := range map[string]**int{
		"baujahr":                   &attrs.Baujahr,
		"kw_leistung":               &attrs.KWLeistung,
		"km_stand":                  &attrs.KMStand,
		"anzahl_fahrzeugschluessel": &attrs.AnzahlFahrzeugschluessel,
		"anzahl_vorhalter":          &attrs.AnzahlVorhalter,
	} {
		if raw := firstString(payload, key); raw != "" {
			if n, ok := parseIntField(raw); ok {
				v := n
				*dst = &v
				present = true
			} else {
				event.Warnings = append(event.Warnings, fmt.Sprintf("Feld %s: Wert %q nicht lesbar", key, raw))
			}
		}
	}

	if raw := firstString(payload, "ek_netto"); raw != "" {
		var f float64
		if _, err := fmt.Sscanf(raw, "%g", &f); err == nil {
			attrs.EKNetto = &f
			present = true
		} else {
			event.Warnings = append(event.Warnings, fmt.Sprintf("Feld ek_netto: Wert %q nicht lesbar", raw))
		}
	}

	// Registration dates arrive in German DD.MM.YYYY form.
	if raw := firstString(payload, "datum_erstzulassung"); raw != "" {
		if d, err := time.Parse("02.01.2006", raw); err == nil {
			attrs.DatumErstzulassung = &d
			present = true
		} else {
			event.Warnings = append(event.Warnings, fmt.Sprintf("Datum %q nicht lesbar, Feld bleibt leer", raw))
		}
	}

	if !present {
		return nil
	}
	return attrs
}
