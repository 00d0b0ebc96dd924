package models

import "time"

// Canonical process types. Source-specific labels are mapped onto these six
// values; the German spellings are what the dealership's reporting uses.
const (
	ProzessEinkauf      = "Einkauf"
	ProzessAnlieferung  = "Anlieferung"
	ProzessAufbereitung = "Aufbereitung"
	ProzessFoto         = "Foto"
	ProzessWerkstatt    = "Werkstatt"
	ProzessVerkauf      = "Verkauf"
)

// Event sources.
const (
	QuelleZapier         = "zapier"
	QuelleEmail          = "email"
	QuelleFlowersWebhook = "flowers_webhook"
	QuelleDirectAPI      = "direct_api"
)

const (
	PrioritaetDefault = 5
	PrioritaetMin     = 1
	PrioritaetMax     = 10
)

// Unbekannt is persisted for vehicle attribute strings the source did not
// carry, so dashboard queries never have to deal with NULLs.
const Unbekannt = "Unbekannt"

// VehicleAttributes is the partial master-data payload a source may carry
// alongside a process event (typically a new-purchase notification).
type VehicleAttributes struct {
	Marke                    string     `json:"marke,omitempty"`
	Modell                   string     `json:"modell,omitempty"`
	Antriebsart              string     `json:"antriebsart,omitempty"`
	Farbe                    string     `json:"farbe,omitempty"`
	Baujahr                  *int       `json:"baujahr,omitempty"`
	DatumErstzulassung       *time.Time `json:"datum_erstzulassung,omitempty"`
	KWLeistung               *int       `json:"kw_leistung,omitempty"`
	KMStand                  *int       `json:"km_stand,omitempty"`
	AnzahlFahrzeugschluessel *int       `json:"anzahl_fahrzeugschluessel,omitempty"`
	Bereifungsart            string     `json:"bereifungsart,omitempty"`
	AnzahlVorhalter          *int       `json:"anzahl_vorhalter,omitempty"`
	EKNetto                  *float64   `json:"ek_netto,omitempty"`
	Besteuerungsart          string     `json:"besteuerungsart,omitempty"`
}

// ProcessEvent is the canonical event shape every source adapter emits and
// the unification engine consumes.
type ProcessEvent struct {
	FIN               string             `json:"fin"`
	ProzessTypRaw     string             `json:"prozess_typ_raw"`
	StatusRaw         string             `json:"status_raw"`
	BearbeiterRaw     string             `json:"bearbeiter_raw,omitempty"`
	Prioritaet        int                `json:"prioritaet"`
	Notizen           string             `json:"notizen,omitempty"`
	Quelle            string             `json:"quelle"`
	ExternalTimestamp *time.Time         `json:"external_timestamp,omitempty"`
	Fahrzeug          *VehicleAttributes `json:"fahrzeug,omitempty"`
	ZusatzDaten       map[string]any     `json:"zusatz_daten,omitempty"`
	// Warnings collected during conversion (e.g. an unparseable date).
	Warnings []string `json:"warnings,omitempty"`
}

// Vehicle is the master record, keyed by FIN and created at most once.
type Vehicle struct {
	FIN                      string     `json:"fin"`
	Marke                    string     `json:"marke"`
	Modell                   string     `json:"modell"`
	Antriebsart              string     `json:"antriebsart"`
	Farbe                    string     `json:"farbe"`
	Baujahr                  *int       `json:"baujahr,omitempty"`
	DatumErstzulassung       *time.Time `json:"datum_erstzulassung,omitempty"`
	KWLeistung               *int       `json:"kw_leistung,omitempty"`
	KMStand                  *int       `json:"km_stand,omitempty"`
	AnzahlFahrzeugschluessel *int       `json:"anzahl_fahrzeugschluessel,omitempty"`
	Bereifungsart            string     `json:"bereifungsart"`
	AnzahlVorhalter          *int       `json:"anzahl_vorhalter,omitempty"`
	EKNetto                  *float64   `json:"ek_netto,omitempty"`
	Besteuerungsart          string     `json:"besteuerungsart"`
	ErstelltAusEmail         bool       `json:"erstellt_aus_email"`
	Datenquelle              string     `json:"datenquelle"`
	ErstelltAm               time.Time  `json:"erstellt_am"`
	AktualisiertAm           time.Time  `json:"aktualisiert_am"`
	Aktiv                    bool       `json:"aktiv"`
}

// Process is one append-only process row. The "current" process for a FIN is
// derived by recency, not tracked as mutable state.
type Process struct {
	ProzessID      string     `json:"prozess_id"`
	FIN            string     `json:"fin"`
	ProzessTyp     string     `json:"prozess_typ"`
	Status         string     `json:"status"`
	Bearbeiter     string     `json:"bearbeiter,omitempty"`
	Prioritaet     int        `json:"prioritaet"`
	SLAStunden     *int       `json:"sla_stunden,omitempty"`
	SLADeadline    *time.Time `json:"sla_deadline,omitempty"`
	StartTimestamp *time.Time `json:"start_timestamp,omitempty"`
	EndeTimestamp  *time.Time `json:"ende_timestamp,omitempty"`
	Notizen        string     `json:"notizen,omitempty"`
	Datenquelle    string     `json:"datenquelle"`
	ErstelltAm     time.Time  `json:"erstellt_am"`
	AktualisiertAm time.Time  `json:"aktualisiert_am"`
}

// Outcome is the standardized envelope returned for every processed event,
// success or not.
type Outcome struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	FIN            string   `json:"fin,omitempty"`
	ProzessTyp     string   `json:"prozess_typ,omitempty"`
	Status         string   `json:"status,omitempty"`
	ProzessID      string   `json:"prozess_id,omitempty"`
	VehicleCreated bool     `json:"vehicle_created"`
	Bearbeiter     string   `json:"bearbeiter,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	Quelle         string   `json:"quelle,omitempty"`
}

// HasStammdaten reports whether the attributes are substantial enough to
// justify creating a master record (make and model at minimum).
func (v *VehicleAttributes) HasStammdaten() bool {
	return v != nil && v.Marke != "" && v.Modell != ""
}
