//go:build ebiten

package ui

import (
	"fmt"
	"image/color"

	"halo-ca/internal/core"
	"halo-ca/internal/render"
	"halo-ca/internal/sims/halo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// diagnosticsProvider is implemented by sims that expose per-tick records.
type diagnosticsProvider interface {
	Diagnostics() []halo.CellInfo
	Generation() uint64
	ActiveFraction() float64
}

// Overlay draws optional diagnostic visuals on top of the base simulation.
type Overlay struct {
	sim   core.Sim
	scale int

	showStats bool
	showHeat  bool

	heat *render.GridPainter
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showStats: true}
	size := sim.Size()
	o.heat = render.NewGridPainter(size.W, size.H)
	return o
}

// Update processes overlay toggle keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		o.showStats = !o.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showHeat = !o.showHeat
	}
}

// Draw renders the enabled overlay layers.
func (o *Overlay) Draw(screen *ebiten.Image) {
	dp, ok := o.sim.(diagnosticsProvider)
	if !ok {
		return
	}
	records := dp.Diagnostics()

	if o.showHeat && len(records) > 0 {
		o.heat.BlitHeat(screen, records, o.scale)
	}
	if o.showStats {
		s := halo.Summarize(records)
		line := fmt.Sprintf("tick %d  active %.1f%%  inner %.3f  outer %.3f",
			dp.Generation(), 100*dp.ActiveFraction(), s.MeanInnerNorm, s.MeanOuterNorm)
		text.Draw(screen, line, basicfont.Face7x13, 4, 14, color.RGBA{R: 0, G: 255, B: 128, A: 255})
	}
}
