package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ra-autohaus/tracker/internal/models"
)

// Store is the Postgres-backed warehouse.
type Store struct {
	Pool *pgxpool.Pool
}

var _ Warehouse = (*Store)(nil)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) VehicleExists(ctx context.Context, fin string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM fahrzeuge_stamm WHERE fin = $1 AND aktiv)`, fin,
	).Scan(&exists)
	return exists, err
}

// CreateVehicle inserts a master record. ON CONFLICT DO NOTHING guards the
// race where two events for a brand-new FIN both pass the existence check:
// the loser becomes a no-op instead of overwriting the first write.
func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO fahrzeuge_stamm (
			fin, marke, modell, antriebsart, farbe, baujahr, datum_erstzulassung,
			kw_leistung, km_stand, anzahl_fahrzeugschluessel, bereifungsart,
			anzahl_vorhalter, ek_netto, besteuerungsart, erstellt_aus_email,
			datenquelle, erstellt_am, aktualisiert_am, aktiv
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (fin) DO NOTHING
	`, v.FIN, v.Marke, v.Modell, v.Antriebsart, v.Farbe, v.Baujahr, v.DatumErstzulassung,
		v.KWLeistung, v.KMStand, v.AnzahlFahrzeugschluessel, v.Bereifungsart,
		v.AnzahlVorhalter, v.EKNetto, v.Besteuerungsart, v.ErstelltAusEmail,
		v.Datenquelle, v.ErstelltAm, v.AktualisiertAm, v.Aktiv)
	return err
}

const vehicleColumns = `fin, marke, modell, antriebsart, farbe, baujahr, datum_erstzulassung,
	kw_leistung, km_stand, anzahl_fahrzeugschluessel, bereifungsart,
	anzahl_vorhalter, ek_netto, besteuerungsart, erstellt_aus_email,
	datenquelle, erstellt_am, aktualisiert_am, aktiv`

func scanVehicle(row pgx.Row) (models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.FIN, &v.Marke, &v.Modell, &v.Antriebsart, &v.Farbe, &v.Baujahr,
		&v.DatumErstzulassung, &v.KWLeistung, &v.KMStand, &v.AnzahlFahrzeugschluessel,
		&v.Bereifungsart, &v.AnzahlVorhalter, &v.EKNetto, &v.Besteuerungsart,
		&v.ErstelltAusEmail, &v.Datenquelle, &v.ErstelltAm, &v.AktualisiertAm, &v.Aktiv)
	return v, err
}

func (s *Store) GetVehicle(ctx context.Context, fin string) (*models.Vehicle, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM fahrzeuge_stamm WHERE fin = $1 AND aktiv`, fin)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListVehicles(ctx context.Context, limit int) ([]models.Vehicle, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+vehicleColumns+` FROM fahrzeuge_stamm WHERE aktiv ORDER BY erstellt_am DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) CreateProcess(ctx context.Context, p models.Process) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO fahrzeug_prozesse (
			prozess_id, fin, prozess_typ, status, bearbeiter, prioritaet,
			sla_stunden, sla_deadline, start_timestamp, ende_timestamp,
			notizen, datenquelle, erstellt_am, aktualisiert_am
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, p.ProzessID, p.FIN, p.ProzessTyp, p.Status, p.Bearbeiter, p.Prioritaet,
		p.SLAStunden, p.SLADeadline, p.StartTimestamp, p.EndeTimestamp,
		p.Notizen, p.Datenquelle, p.ErstelltAm, p.AktualisiertAm)
	return err
}

func (s *Store) UpdateProcess(ctx context.Context, prozessID string, upd ProcessUpdate) error {
	sets := []string{"aktualisiert_am = NOW()"}
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Bearbeiter != nil {
		add("bearbeiter", *upd.Bearbeiter)
	}
	if upd.Notizen != nil {
		add("notizen", *upd.Notizen)
	}
	if upd.EndeTimestamp != nil {
		add("ende_timestamp", *upd.EndeTimestamp)
	}

	args = append(args, prozessID)
	query := fmt.Sprintf(`UPDATE fahrzeug_prozesse SET %s WHERE prozess_id = $%d`,
		strings.Join(sets, ", "), len(args))

	tag, err := s.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const processColumns = `prozess_id, fin, prozess_typ, status, bearbeiter, prioritaet,
	sla_stunden, sla_deadline, start_timestamp, ende_timestamp,
	notizen, datenquelle, erstellt_am, aktualisiert_am`

func scanProcess(rows pgx.Rows) (models.Process, error) {
	var p models.Process
	err := rows.Scan(&p.ProzessID, &p.FIN, &p.ProzessTyp, &p.Status, &p.Bearbeiter,
		&p.Prioritaet, &p.SLAStunden, &p.SLADeadline, &p.StartTimestamp,
		&p.EndeTimestamp, &p.Notizen, &p.Datenquelle, &p.ErstelltAm, &p.AktualisiertAm)
	return p, err
}

func (s *Store) QueryProcesses(ctx context.Context, fin string) ([]models.Process, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM fahrzeug_prozesse WHERE fin = $1 ORDER BY aktualisiert_am DESC`, fin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Process
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) KPIs(ctx context.Context) (KPIReport, error) {
	report := KPIReport{ProzesseProTyp: map[string]int{}}

	if err := s.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM fahrzeuge_stamm WHERE aktiv`).Scan(&report.FahrzeugeGesamt); err != nil {
		return report, err
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT prozess_typ, COUNT(*) FROM fahrzeug_prozesse GROUP BY prozess_typ`)
	if err != nil {
		return report, err
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return report, err
		}
		report.ProzesseProTyp[typ] = count
		report.ProzesseGesamt += count
	}
	return report, rows.Err()
}

// SLAOverview returns open processes whose deadline has passed or falls
// within the next 24 hours.
func (s *Store) SLAOverview(ctx context.Context, now time.Time) ([]models.Process, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+processColumns+` FROM fahrzeug_prozesse
		WHERE ende_timestamp IS NULL
		  AND sla_deadline IS NOT NULL
		  AND sla_deadline <= $1
		ORDER BY sla_deadline ASC
	`, now.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Process
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Warteschlangen(ctx context.Context) ([]QueueItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT p.prozess_id, p.fin, p.prozess_typ, p.status, p.bearbeiter, p.prioritaet,
		       p.sla_stunden, p.sla_deadline, p.start_timestamp, p.ende_timestamp,
		       p.notizen, p.datenquelle, p.erstellt_am, p.aktualisiert_am,
		       COALESCE(f.marke, ''), COALESCE(f.modell, ''), f.baujahr
		FROM fahrzeug_prozesse p
		LEFT JOIN fahrzeuge_stamm f ON p.fin = f.fin
		WHERE p.ende_timestamp IS NULL
		ORDER BY p.prioritaet ASC, p.erstellt_am ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QueueItem
	for rows.Next() {
		var item QueueItem
		p := &item.Process
		err := rows.Scan(&p.ProzessID, &p.FIN, &p.ProzessTyp, &p.Status, &p.Bearbeiter,
			&p.Prioritaet, &p.SLAStunden, &p.SLADeadline, &p.StartTimestamp,
			&p.EndeTimestamp, &p.Notizen, &p.Datenquelle, &p.ErstelltAm, &p.AktualisiertAm,
			&item.Marke, &item.Modell, &item.Baujahr)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) Workload(ctx context.Context) ([]BearbeiterLoad, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT bearbeiter,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE ende_timestamp IS NULL)
		FROM fahrzeug_prozesse
		WHERE bearbeiter <> ''
		GROUP BY bearbeiter
		ORDER BY 3 DESC, bearbeiter ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BearbeiterLoad
	for rows.Next() {
		var l BearbeiterLoad
		if err := rows.Scan(&l.Bearbeiter, &l.Prozesse, &l.Offen); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
