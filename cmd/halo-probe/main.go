// Command halo-probe runs the halo automaton headless at a fixed cadence
// and reports per-tick diagnostic aggregates. The pacer only re-arms after
// a tick resolves, so a slow extraction delays the schedule instead of
// overlapping it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"halo-ca/internal/core"
	"halo-ca/internal/device"
	"halo-ca/internal/sims/halo"
)

func main() {
	width := flag.Int("w", 128, "grid width in cells")
	height := flag.Int("h", 128, "grid height in cells")
	steps := flag.Int("steps", 50, "ticks to simulate")
	interval := flag.Duration("interval", 200*time.Millisecond, "tick interval")
	seed := flag.Int64("seed", 1337, "seed for the random generation buffer")
	workers := flag.Int("workers", 0, "device worker count (0 = GOMAXPROCS)")
	every := flag.Int("every", 10, "print a summary every N ticks")
	extractTimeout := flag.Duration("extract-timeout", time.Second, "bounded wait for diagnostic readback")
	flag.Parse()

	cfg := halo.DefaultConfig()
	cfg.Width = *width
	cfg.Height = *height
	cfg.Seed = *seed
	cfg.Workers = *workers
	cfg.ExtractTimeout = *extractTimeout

	world, err := halo.NewWithConfig(cfg)
	if err != nil {
		log.Fatalf("initializing simulation: %v", err)
	}
	defer world.Close()

	fmt.Printf("halo %dx%d radius=%d seed=%d interval=%s\n",
		cfg.Width, cfg.Height, cfg.Params.Radius, cfg.Seed, *interval)

	pacer := core.NewPacer(*interval)
	start := time.Now()
	for i := 0; i < *steps; i++ {
		pacer.Wait()
		if err := world.Step(); err != nil {
			if !errors.Is(err, device.ErrReadbackTimeout) {
				log.Fatalf("tick %d: %v", i, err)
			}
			log.Printf("tick %d: extraction timed out, retrying", i)
			if err := world.AwaitDiagnostics(); err != nil {
				log.Fatalf("tick %d: extraction did not recover: %v", i, err)
			}
		}

		records := world.Diagnostics()
		if err := halo.VerifyCounts(records, cfg.Params.Radius); err != nil {
			log.Fatalf("tick %d: %v", i, err)
		}
		if *every > 0 && (i+1)%*every == 0 {
			s := halo.Summarize(records)
			fmt.Printf("tick %4d  active %5.1f%%  inner %.4f  outer %.4f\n",
				world.Generation(), 100*world.ActiveFraction(), s.MeanInnerNorm, s.MeanOuterNorm)
		}
	}
	fmt.Printf("completed %d ticks in %s\n", *steps, time.Since(start).Round(time.Millisecond))
}
