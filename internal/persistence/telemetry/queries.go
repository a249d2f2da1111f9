package telemetry

import "time"

type StatusRow struct {
	Tick         uint64
	At           time.Time
	PilotMode    string
	Mode         string
	TargetType   string
	TargetKey    string
	Label        string
	Distance     float64
	ETASeconds   float64
	TurnProgress float64
	TurnTarget   float64
}

type VisitRow struct {
	ID         int64
	Tick       uint64
	At         time.Time
	TargetType string
	TargetKey  string
	Label      string
}

type SnapshotRow struct {
	Tick    uint64
	Path    string
	Seed    int64
	SimDays float64
	Mode    string
}

// RecentStatuses returns the newest emitted statuses, newest first.
func (s *SQLiteTelemetry) RecentStatuses(limit int) ([]StatusRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT tick, at, pilot_mode, mode, target_type, target_key, label,
		       distance, eta_seconds, turn_progress, turn_target
		FROM statuses ORDER BY tick DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusRow
	for rows.Next() {
		var r StatusRow
		var at string
		if err := rows.Scan(&r.Tick, &at, &r.PilotMode, &r.Mode, &r.TargetType, &r.TargetKey, &r.Label,
			&r.Distance, &r.ETASeconds, &r.TurnProgress, &r.TurnTarget); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Visits returns completed arrivals, newest first.
func (s *SQLiteTelemetry) Visits(limit int) ([]VisitRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, tick, at, target_type, target_key, label
		FROM visits ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VisitRow
	for rows.Next() {
		var r VisitRow
		var at string
		if err := rows.Scan(&r.ID, &r.Tick, &at, &r.TargetType, &r.TargetKey, &r.Label); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Snapshots returns recorded session snapshots, newest first.
func (s *SQLiteTelemetry) Snapshots(limit int) ([]SnapshotRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT tick, path, seed, sim_days, mode
		FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.Tick, &r.Path, &r.Seed, &r.SimDays, &r.Mode); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
