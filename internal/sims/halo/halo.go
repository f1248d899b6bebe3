// Package halo implements a toroidal two-tier weighted-neighborhood
// cellular automaton. Every cell classifies its (2R+1)^2 window into an
// inner 3x3 kernel and an outer halo, normalizes both sums and applies
// asymmetric thresholds; state lives in two device-resident generation
// buffers that swap roles each tick, and each tick emits one diagnostic
// record per cell.
package halo

import (
	"fmt"

	"halo-ca/internal/core"
	"halo-ca/internal/device"
)

// World wires the device, generation state and simulation loop into the
// core.Sim contract.
type World struct {
	cfg   Config
	dev   *device.Device
	state *State
	loop  *Loop

	last []CellInfo
}

// New creates a World with default parameters and the given dimensions.
func New(w, h int) (*World, error) {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig creates the device, buffers and loop for the given
// configuration and seeds the two generation buffers with the named
// startup distributions.
func NewWithConfig(cfg Config) (*World, error) {
	if cfg.Params.Radius < 1 {
		return nil, fmt.Errorf("halo: radius %d out of range", cfg.Params.Radius)
	}
	span := 2*cfg.Params.Radius + 1
	if cfg.Width < span || cfg.Height < span {
		return nil, fmt.Errorf("halo: grid %dx%d smaller than kernel window %dx%d",
			cfg.Width, cfg.Height, span, span)
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = DefaultConfig().ExtractTimeout
	}

	dev, err := device.New(cfg.Workers)
	if err != nil {
		return nil, err
	}
	st, err := newState(dev, cfg.Width, cfg.Height)
	if err != nil {
		dev.Close()
		return nil, err
	}
	cells := cfg.Width * cfg.Height
	diag, err := dev.CreateBuffer("diagnostics", cells*RecordSize)
	if err != nil {
		dev.Close()
		return nil, err
	}
	ext, err := newExtractor(dev, diag, cells, cfg.ExtractTimeout)
	if err != nil {
		dev.Close()
		return nil, err
	}

	w := &World{
		cfg:   cfg,
		dev:   dev,
		state: st,
		loop:  newLoop(dev, st, diag, ext, cfg.Params),
	}
	if err := w.loop.Reset(cfg.Seed); err != nil {
		dev.Close()
		return nil, err
	}
	return w, nil
}

// Name identifies the simulation.
func (w *World) Name() string { return "halo" }

// Size returns the grid dimensions.
func (w *World) Size() core.Size { return w.state.Size() }

// Cells exposes the most recent generation for display. Read-only.
func (w *World) Cells() []uint8 { return w.loop.Cells() }

// Generation returns the tick counter.
func (w *World) Generation() uint64 { return w.loop.Generation() }

// Diagnostics returns the records extracted by the last completed tick.
// The slice is overwritten by the next successful Step.
func (w *World) Diagnostics() []CellInfo { return w.last }

// Reset reseeds both generation buffers and rewinds the tick counter.
func (w *World) Reset(seed int64) {
	if err := w.loop.Reset(seed); err != nil {
		// Only possible mid-tick; the caller's tick still owns the state.
		return
	}
	w.last = nil
}

// Step advances the automaton by one tick and captures its diagnostics.
// It surfaces ErrTickInFlight and extraction timeouts to the caller
// instead of overlapping work on the single-buffered diagnostics.
func (w *World) Step() error {
	records, err := w.loop.Tick()
	if err != nil {
		return err
	}
	w.last = records
	return nil
}

// AwaitDiagnostics retries extraction after Step returned a readback
// timeout, without re-dispatching the kernel.
func (w *World) AwaitDiagnostics() error {
	records, err := w.loop.AwaitDiagnostics()
	if err != nil {
		return err
	}
	w.last = records
	return nil
}

// ActiveFraction reports the share of active cells in the most recent
// generation.
func (w *World) ActiveFraction() float64 {
	cells := w.Cells()
	if len(cells) == 0 {
		return 0
	}
	active := 0
	for _, c := range cells {
		if c != 0 {
			active++
		}
	}
	return float64(active) / float64(len(cells))
}

// Close releases the compute device.
func (w *World) Close() { w.dev.Close() }

func init() {
	core.Register("halo", func(cfg map[string]string) (core.Sim, error) {
		return NewWithConfig(FromMap(cfg))
	})
}
