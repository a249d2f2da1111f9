// Package telemetry is the queryable secondary index of a running scene:
// emitted statuses, completed visits, written snapshots, and cached
// ephemeris blobs land in one sqlite file. Writes go through a single
// async goroutine so the sim loop never blocks on disk.
package telemetry

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"solarpilot.ai/internal/persistence/snapshot"
	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/scene"
	"solarpilot.ai/internal/sim/tuning"
)

type SQLiteTelemetry struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqStatus reqKind = iota + 1
	reqSnapshot
	reqEphem
)

type req struct {
	kind reqKind

	status   scene.StatusEntry
	snapshot snapshotRow
	ephem    ephemRow
}

type snapshotRow struct {
	Tick    uint64
	Path    string
	Seed    int64
	SimDays float64
	Mode    string
}

type ephemRow struct {
	Epoch     string
	Blob      []byte
	FetchedAt string
}

func OpenSQLite(path string) (*SQLiteTelemetry, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteTelemetry{
		db: db,
		ch: make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS statuses (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			at TEXT NOT NULL,
			pilot_mode TEXT NOT NULL,
			mode TEXT NOT NULL,
			target_type TEXT,
			target_key TEXT,
			label TEXT,
			distance REAL NOT NULL,
			eta_seconds REAL NOT NULL,
			turn_progress REAL NOT NULL,
			turn_target REAL NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_statuses_target ON statuses(target_key, tick);`,
		`CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			at TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_key TEXT,
			label TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_visits_tick ON visits(tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			sim_days REAL NOT NULL,
			mode TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ephem (
			epoch TEXT PRIMARY KEY,
			blob BLOB NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteTelemetry) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteStatus implements scene.StatusLogger. Dropped entries are fine; the
// tour log remains the source of truth.
func (s *SQLiteTelemetry) WriteStatus(entry scene.StatusEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqStatus, status: entry}:
	default:
	}
	return nil
}

func (s *SQLiteTelemetry) RecordSnapshot(path string, snap snapshot.SessionV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:    snap.Header.Tick,
		Path:    path,
		Seed:    snap.Seed,
		SimDays: snap.SimDays,
		Mode:    snap.Mode,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

// PutSnapshot implements ephem.Store.
func (s *SQLiteTelemetry) PutSnapshot(epoch string, blob []byte) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	r := ephemRow{
		Epoch:     epoch,
		Blob:      blob,
		FetchedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqEphem, ephem: r}:
	default:
	}
	return nil
}

// LatestSnapshot implements ephem.Store.
func (s *SQLiteTelemetry) LatestSnapshot() (string, []byte, error) {
	if s == nil {
		return "", nil, nil
	}
	var epoch string
	var blob []byte
	err := s.db.QueryRow(`SELECT epoch, blob FROM ephem ORDER BY epoch DESC LIMIT 1`).Scan(&epoch, &blob)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return epoch, blob, nil
}

// UpsertCatalog records the body catalog and applied tuning, keyed by
// digest so config drift across restarts is visible after the fact.
func (s *SQLiteTelemetry) UpsertCatalog(cat *catalog.Catalog, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b, _ := json.Marshal(cat.Bodies); len(b) > 0 {
		rows = append(rows, kv{name: "bodies", digest: cat.Digest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteTelemetry) loop() {
	ctx := context.Background()

	insertStatus, _ := s.db.Prepare(`INSERT OR REPLACE INTO statuses(tick,seq,at,pilot_mode,mode,target_type,target_key,label,distance,eta_seconds,turn_progress,turn_target,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertVisit, _ := s.db.Prepare(`INSERT INTO visits(tick,at,target_type,target_key,label) VALUES(?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,sim_days,mode) VALUES(?,?,?,?,?)`)
	insertEphem, _ := s.db.Prepare(`INSERT OR REPLACE INTO ephem(epoch,blob,fetched_at) VALUES(?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertStatus, insertVisit, insertSnapshot, insertEphem} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second

		lastStatusTick uint64
		statusSeq      int

		// Visit detection: a new orbit target means the tour arrived
		// somewhere. Field visits have no key, so track the label too.
		lastOrbit string
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqStatus:
			e := r.status
			if e.Tick != lastStatusTick {
				lastStatusTick = e.Tick
				statusSeq = 0
			}
			seq := statusSeq
			statusSeq++
			raw, _ := json.Marshal(e)
			if insertStatus != nil {
				if _, err := tx.Stmt(insertStatus).Exec(
					int64(e.Tick),
					seq,
					e.At.UTC().Format(time.RFC3339Nano),
					e.Mode,
					e.S.Mode,
					e.S.TargetType,
					e.S.TargetKey,
					e.S.Label,
					e.S.Distance,
					e.S.ETASeconds,
					e.S.TurnProgress,
					e.S.TurnTarget,
					string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			if e.S.Mode == "orbit" && insertVisit != nil {
				key := e.S.TargetKey + "|" + e.S.Label
				if key != lastOrbit {
					lastOrbit = key
					if _, err := tx.Stmt(insertVisit).Exec(
						int64(e.Tick),
						e.At.UTC().Format(time.RFC3339Nano),
						e.S.TargetType,
						e.S.TargetKey,
						e.S.Label,
					); err != nil {
						rollback()
						continue
					}
					opCount++
				}
			} else if e.S.Mode == "travel" || e.S.Mode == "acquiring" {
				lastOrbit = ""
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(
					int64(sn.Tick),
					sn.Path,
					sn.Seed,
					sn.SimDays,
					sn.Mode,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqEphem:
			er := r.ephem
			if insertEphem != nil {
				if _, err := tx.Stmt(insertEphem).Exec(er.Epoch, er.Blob, er.FetchedAt); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
