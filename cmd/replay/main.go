// Command replay reads compressed tour logs and either prints every
// status entry or summarizes the tour (time per mode, bodies visited).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"solarpilot.ai/internal/persistence/tourlog"
	"solarpilot.ai/internal/sim/scene"
)

func main() {
	var (
		dir     = flag.String("dir", "./data/tour", "tour log directory")
		summary = flag.Bool("summary", false, "print a tour summary instead of every entry")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	if *summary {
		if err := printSummary(*dir); err != nil {
			logger.Fatalf("summary: %v", err)
		}
		return
	}

	err := tourlog.ReadDir(*dir, func(e scene.StatusEntry) error {
		fmt.Printf("%-28s tick=%-12d %-12s %-10s %-12s %-20s dist=%.1f eta=%.1f turn=%.2f/%.2f\n",
			e.At.Format(time.RFC3339), e.Tick, e.Mode, e.S.Mode, e.S.TargetKey, e.S.Label,
			e.S.Distance, e.S.ETASeconds, e.S.TurnProgress, e.S.TurnTarget)
		return nil
	})
	if err != nil {
		logger.Fatalf("read: %v", err)
	}
}

func printSummary(dir string) error {
	var (
		total       int
		first, last time.Time
		perMode     = map[string]int{}
		visits      []string
		lastOrbit   string
	)

	err := tourlog.ReadDir(dir, func(e scene.StatusEntry) error {
		if total == 0 {
			first = e.At
		}
		last = e.At
		total++
		perMode[e.S.Mode]++

		switch e.S.Mode {
		case "orbit":
			key := e.S.TargetKey + "|" + e.S.Label
			if key != lastOrbit {
				lastOrbit = key
				label := e.S.Label
				if label == "" {
					label = e.S.TargetKey
				}
				visits = append(visits, label)
			}
		case "travel", "acquiring":
			lastOrbit = ""
		}
		return nil
	})
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("no entries")
		return nil
	}

	fmt.Printf("entries=%d span=%s (%s .. %s)\n",
		total, last.Sub(first).Round(time.Second), first.Format(time.RFC3339), last.Format(time.RFC3339))

	modes := make([]string, 0, len(perMode))
	for m := range perMode {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	for _, m := range modes {
		fmt.Printf("  %-10s %d\n", m, perMode[m])
	}

	fmt.Printf("visits=%d\n", len(visits))
	for i, v := range visits {
		fmt.Printf("  %3d. %s\n", i+1, v)
	}
	return nil
}
