//go:build ebiten

package app

import (
	"errors"
	"image/color"
	"log"
	"time"

	"halo-ca/internal/core"
	"halo-ca/internal/device"
	"halo-ca/internal/render"
	"halo-ca/internal/sims/halo"
	"halo-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a core simulation to the ebiten.Game interface. The render
// pass only reads the current generation; it never mutates simulation state.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	pacer   *core.Pacer

	onColor  color.Color
	offColor color.Color

	scale    int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation. The frame loop polls
// the pacer each update, so the simulation ticks at the given interval
// independent of the display rate; a missed interval is dropped, not queued.
func New(sim core.Sim, scale int, seed int64, interval time.Duration) *Game {
	gp := render.NewGridPainter(sim.Size().W, sim.Size().H)
	return &Game{
		sim:      sim,
		painter:  gp,
		overlay:  ui.NewOverlay(sim, scale),
		pacer:    core.NewPacer(interval),
		onColor:  color.White,
		offColor: color.Black,
		scale:    scale,
		seed:     seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	if g.overlay != nil {
		g.overlay.Update()
	}

	if (!g.paused && g.pacer.Due()) || g.tickOnce {
		g.tickOnce = false
		if err := g.sim.Step(); err != nil {
			// Busy and timeout are retryable: drop this frame's tick and
			// try to resolve the in-flight extraction instead. The pacer
			// is only re-armed once the tick resolves.
			if errors.Is(err, halo.ErrTickInFlight) || errors.Is(err, device.ErrReadbackTimeout) {
				if aw, ok := g.sim.(interface{ AwaitDiagnostics() error }); ok {
					if err := aw.AwaitDiagnostics(); err != nil {
						log.Printf("extraction still pending: %v", err)
						return nil
					}
				}
			} else {
				return err
			}
		}
		g.pacer.Mark()
	}
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.onColor, g.offColor, g.scale)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W * g.scale, s.H * g.scale
}
