//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"halo-ca/internal/app"
	"halo-ca/internal/core"
	_ "halo-ca/internal/sims/halo"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q", cfg.Sim)
	}

	sim, err := factory(cfg.SimConfig())
	if err != nil {
		log.Fatalf("initializing %q: %v", cfg.Sim, err)
	}

	if cfg.TPS <= 0 {
		cfg.TPS = 5
	}
	// The window runs at ebiten's default frame rate; the simulation is
	// paced separately so a slow tick delays the next one instead of
	// stacking up behind the display loop.
	interval := time.Second / time.Duration(cfg.TPS)
	game := app.New(sim, cfg.Scale, cfg.Seed, interval)
	size := sim.Size()

	ebiten.SetWindowTitle("halo-ca — " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
