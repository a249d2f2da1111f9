package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"solarpilot.ai/internal/persistence/snapshot"
	"solarpilot.ai/internal/persistence/telemetry"
	"solarpilot.ai/internal/persistence/tourlog"
	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/ephem"
	"solarpilot.ai/internal/sim/pose"
	"solarpilot.ai/internal/sim/scene"
	"solarpilot.ai/internal/sim/tuning"
	"solarpilot.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "tour rng seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		bodiesPath = flag.String("bodies", "", "path to bodies.yaml (default: <configs>/bodies.yaml; built-in catalog if absent)")
		disableDB  = flag.Bool("disable_db", false, "disable the telemetry index")

		ephemURL  = flag.String("ephem_url", "", "Horizons-style ephemeris endpoint (empty: skip live positions)")
		vsopDir   = flag.String("vsop87", "", "VSOP87 data directory for the analytic fallback (empty: skip)")
		snapEvery = flag.Int("snapshot_every_ticks", 3000, "session snapshot cadence in ticks (0 disables)")

		snapPath   = flag.String("snapshot", "", "path to session snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "resume from latest session snapshot if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	bp := strings.TrimSpace(*bodiesPath)
	if bp == "" {
		bp = filepath.Join(*configDir, "bodies.yaml")
	}
	var cat *catalog.Catalog
	if _, statErr := os.Stat(bp); statErr == nil {
		cat, err = catalog.Load(bp)
		if err != nil {
			logger.Fatalf("load bodies: %v", err)
		}
	} else {
		logger.Printf("bodies not found (%s); using built-in catalog", bp)
		cat = catalog.Default()
	}
	logger.Printf("catalog loaded: %d bodies digest=%s", len(cat.Bodies), cat.Digest)

	_ = os.MkdirAll(*dataDir, 0o755)

	var tele *telemetry.SQLiteTelemetry
	if !*disableDB {
		tele, err = telemetry.OpenSQLite(filepath.Join(*dataDir, "telemetry.db"))
		if err != nil {
			logger.Fatalf("open telemetry: %v", err)
		}
		defer tele.Close()
		if err := tele.UpsertCatalog(cat, tune); err != nil {
			logger.Printf("telemetry: upsert catalog: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Solve initial body phases: live ephemeris, then analytic series, then
	// the deterministic fallback inside the solver.
	var store ephem.Store
	if tele != nil {
		store = tele
	}
	svc := ephem.NewService(strings.TrimSpace(*ephemURL), store, logger)
	fetchCtx, fetchCancel := context.WithTimeout(ctx, 30*time.Second)
	snap := svc.Current(fetchCtx, bodyNames(cat))
	fetchCancel()
	if snap != nil {
		logger.Printf("ephemeris snapshot: %d bodies epoch=%s", len(snap.Bodies), snap.Epoch.Format(time.RFC3339))
	} else {
		logger.Printf("no ephemeris snapshot; solver falls back per body")
	}

	solver := pose.New(strings.TrimSpace(*vsopDir), nil, rand.New(rand.NewSource(*seed)), logger)
	phases := solver.Solve(cat, snap)

	sc := scene.New(cat, tune, scene.Options{
		Seed:               *seed,
		SnapshotEveryTicks: *snapEvery,
	}, phases, log.New(os.Stdout, "[scene] ", log.LstdFlags|log.Lmicroseconds), nil)

	// Resume.
	sessionDir := filepath.Join(*dataDir, "session")
	toLoad := strings.TrimSpace(*snapPath)
	if toLoad == "" && *loadLatest {
		toLoad = latestSession(sessionDir)
	}
	if toLoad != "" {
		sess, err := snapshot.ReadSession(toLoad)
		if err != nil {
			logger.Fatalf("read session snapshot: %v", err)
		}
		if sess.CatalogDigest != "" && sess.CatalogDigest != cat.Digest {
			logger.Printf("session snapshot has a different catalog digest; resuming camera only")
		}
		sc.RestoreSession(sess)
		logger.Printf("resumed from session=%s tick=%d mode=%s", filepath.Base(toLoad), sess.Header.Tick, sess.Mode)
	}

	// Status sinks: compressed tour log plus the queryable index.
	statusLog := tourlog.NewStatusLogger(*dataDir)
	defer statusLog.Close()
	sc.SetStatusLogger(multiStatusLogger{a: statusLog, b: tele})

	// Session snapshot writer (off the sim loop).
	snapCh := make(chan snapshot.SessionV1, 2)
	sc.SetSnapshotSink(snapCh)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case sess := <-snapCh:
				path := filepath.Join(sessionDir, fmt.Sprintf("%06d.snap.zst", sess.Header.Tick))
				if err := snapshot.WriteSession(path, sess); err != nil {
					logger.Printf("session snapshot write: %v", err)
					continue
				}
				if tele != nil {
					tele.RecordSnapshot(path, sess)
				}
			}
		}
	})

	g.Go(func() error {
		if err := sc.Run(gctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := sc.Metrics()

		fmt.Fprintf(rw, "# HELP solarpilot_scene_tick Current scene tick.\n")
		fmt.Fprintf(rw, "# TYPE solarpilot_scene_tick gauge\n")
		fmt.Fprintf(rw, "solarpilot_scene_tick %d\n", m.Tick)

		fmt.Fprintf(rw, "# HELP solarpilot_scene_clients Connected clients.\n")
		fmt.Fprintf(rw, "# TYPE solarpilot_scene_clients gauge\n")
		fmt.Fprintf(rw, "solarpilot_scene_clients %d\n", m.Clients)

		fmt.Fprintf(rw, "# HELP solarpilot_scene_mode Active pilot mode (value is always 1).\n")
		fmt.Fprintf(rw, "# TYPE solarpilot_scene_mode gauge\n")
		fmt.Fprintf(rw, "solarpilot_scene_mode{mode=%q} 1\n", m.Mode)

		fmt.Fprintf(rw, "# HELP solarpilot_scene_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE solarpilot_scene_step_ms gauge\n")
		fmt.Fprintf(rw, "solarpilot_scene_step_ms %.3f\n", m.StepMS)

		fmt.Fprintf(rw, "# HELP solarpilot_scene_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE solarpilot_scene_queue_depth gauge\n")
		fmt.Fprintf(rw, "solarpilot_scene_queue_depth{queue=%q} %d\n", "inbox", m.Queues.Inbox)
		fmt.Fprintf(rw, "solarpilot_scene_queue_depth{queue=%q} %d\n", "join", m.Queues.Join)
		fmt.Fprintf(rw, "solarpilot_scene_queue_depth{queue=%q} %d\n", "leave", m.Queues.Leave)
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			Tick    uint64        `json:"tick"`
			Metrics scene.Metrics `json:"metrics"`
		}{
			Tick:    sc.CurrentTick(),
			Metrics: sc.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	if envBool("SP_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(sc, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		<-gctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
		return nil
	})

	g.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

func bodyNames(cat *catalog.Catalog) []string {
	var names []string
	for i := range cat.Bodies {
		if cat.Bodies[i].Kind == catalog.KindField {
			continue
		}
		names = append(names, cat.Bodies[i].Name)
	}
	return names
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSession(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

type multiStatusLogger struct {
	a scene.StatusLogger
	b *telemetry.SQLiteTelemetry
}

func (m multiStatusLogger) WriteStatus(entry scene.StatusEntry) error {
	if m.a != nil {
		_ = m.a.WriteStatus(entry)
	}
	if m.b != nil {
		_ = m.b.WriteStatus(entry)
	}
	return nil
}
