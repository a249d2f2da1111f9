// Command admin inspects a scene server's on-disk state: the telemetry
// index, session snapshots, and the live admin endpoint.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"solarpilot.ai/internal/persistence/snapshot"
	"solarpilot.ai/internal/persistence/telemetry"
)

func main() {
	logger := log.New(os.Stderr, "[admin] ", log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "statuses":
		err = cmdStatuses(os.Args[2:])
	case "visits":
		err = cmdVisits(os.Args[2:])
	case "snapshots":
		err = cmdSnapshots(os.Args[2:])
	case "session":
		err = cmdSession(os.Args[2:])
	case "state":
		err = cmdState(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: admin <command> [flags]

commands:
  statuses   recent status entries from the telemetry index
  visits     derived body visits from the telemetry index
  snapshots  recorded session snapshots from the telemetry index
  session    decode one session snapshot file
  state      query a running server's /admin/v1/state`)
}

func openDB(path string) (*telemetry.SQLiteTelemetry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("telemetry db %s: %w", path, err)
	}
	return telemetry.OpenSQLite(path)
}

func cmdStatuses(args []string) error {
	fs := flag.NewFlagSet("statuses", flag.ExitOnError)
	db := fs.String("db", "./data/telemetry.db", "telemetry db path")
	limit := fs.Int("limit", 50, "max rows")
	_ = fs.Parse(args)

	t, err := openDB(*db)
	if err != nil {
		return err
	}
	defer t.Close()

	rows, err := t.RecentStatuses(*limit)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("%-12d %-28s %-10s %-12s %-20s dist=%.1f eta=%.1f\n",
			r.Tick, r.At.Format(time.RFC3339), r.Mode, r.TargetKey, r.Label, r.Distance, r.ETASeconds)
	}
	return nil
}

func cmdVisits(args []string) error {
	fs := flag.NewFlagSet("visits", flag.ExitOnError)
	db := fs.String("db", "./data/telemetry.db", "telemetry db path")
	limit := fs.Int("limit", 50, "max rows")
	_ = fs.Parse(args)

	t, err := openDB(*db)
	if err != nil {
		return err
	}
	defer t.Close()

	rows, err := t.Visits(*limit)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("%-6d tick=%-12d %-28s %-12s %s\n", r.ID, r.Tick, r.At.Format(time.RFC3339), r.TargetKey, r.Label)
	}
	return nil
}

func cmdSnapshots(args []string) error {
	fs := flag.NewFlagSet("snapshots", flag.ExitOnError)
	db := fs.String("db", "./data/telemetry.db", "telemetry db path")
	limit := fs.Int("limit", 20, "max rows")
	_ = fs.Parse(args)

	t, err := openDB(*db)
	if err != nil {
		return err
	}
	defer t.Close()

	rows, err := t.Snapshots(*limit)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("tick=%-12d seed=%-10d mode=%-12s sim_days=%-10.2f %s\n",
			r.Tick, r.Seed, r.Mode, r.SimDays, r.Path)
	}
	return nil
}

func cmdSession(args []string) error {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	path := fs.String("path", "", "session snapshot file (.snap.zst)")
	full := fs.Bool("full", false, "dump the full decoded session as JSON")
	_ = fs.Parse(args)
	if *path == "" {
		return fmt.Errorf("-path is required")
	}

	sess, err := snapshot.ReadSession(*path)
	if err != nil {
		return err
	}
	if *full {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	}
	fmt.Printf("tick=%d saved_at=%s mode=%s sim_days=%.2f bodies=%d\n",
		sess.Header.Tick, sess.SavedAt.Format(time.RFC3339), sess.Mode, sess.SimDays, len(sess.Bodies))
	fmt.Printf("camera pos=%.1f,%.1f,%.1f yaw=%.3f pitch=%.3f\n",
		sess.Camera.Pos[0], sess.Camera.Pos[1], sess.Camera.Pos[2], sess.Camera.Yaw, sess.Camera.Pitch)
	if sess.Roam.TargetKey != "" {
		fmt.Printf("tour phase=%s target=%s (%s)\n", sess.Roam.Phase, sess.Roam.TargetKey, sess.Roam.TargetType)
	}
	return nil
}

func cmdState(args []string) error {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "server base url")
	_ = fs.Parse(args)

	resp, err := http.Get(*addr + "/admin/v1/state")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, b)
	}
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}
