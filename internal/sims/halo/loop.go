package halo

import (
	"errors"
	"fmt"
	"sync"

	"halo-ca/internal/device"
)

// Loop drives the tick pipeline: kernel dispatch over the parity-selected
// binding, diagnostic copy, counter advance, extraction. It is a two-state
// machine, idle or tick-in-flight, and refuses to start a tick while one is
// in flight. Diagnostics are single-buffered, so a second dispatch before
// the first extraction's copy has run would overwrite records mid-read;
// the gate is what makes a fixed-interval caller safe.
type Loop struct {
	dev      *device.Device
	state    *State
	bindings bindingSet
	kern     kernel
	ext      *extractor

	mu       sync.Mutex
	inFlight bool
	tick     uint64
}

func newLoop(dev *device.Device, st *State, diag *device.Buffer, ext *extractor, p Params) *Loop {
	return &Loop{
		dev:      dev,
		state:    st,
		bindings: newBindingSet(st, diag),
		kern:     kernel{p: p},
		ext:      ext,
	}
}

// Tick runs one generation: dispatch the kernel, enqueue the diagnostic
// copy and readback, advance the counter, then block until extraction
// resolves. A call while a tick is in flight returns ErrTickInFlight
// without dispatching anything. On ErrReadbackTimeout the tick stays in
// flight and AwaitDiagnostics retries the extraction.
func (l *Loop) Tick() ([]CellInfo, error) {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return nil, ErrTickInFlight
	}
	l.inFlight = true
	b := l.bindings.forTick(l.tick)
	l.tick++
	l.mu.Unlock()

	if err := l.kern.dispatch(l.dev, b); err != nil {
		l.abort()
		return nil, err
	}
	if err := l.ext.enqueue(); err != nil {
		l.abort()
		return nil, err
	}

	return l.AwaitDiagnostics()
}

// AwaitDiagnostics collects the in-flight tick's records. It is the retry
// path after an extraction timeout; the kernel is not re-dispatched.
func (l *Loop) AwaitDiagnostics() ([]CellInfo, error) {
	l.mu.Lock()
	if !l.inFlight {
		l.mu.Unlock()
		return nil, fmt.Errorf("halo: no tick in flight")
	}
	l.mu.Unlock()

	records, err := l.ext.collect()
	if errors.Is(err, device.ErrReadbackTimeout) {
		return nil, err
	}
	l.mu.Lock()
	l.inFlight = false
	l.mu.Unlock()
	return records, err
}

func (l *Loop) abort() {
	l.mu.Lock()
	l.tick--
	l.inFlight = false
	l.mu.Unlock()
}

// Generation returns the number of completed or in-flight ticks.
func (l *Loop) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Cells returns the most recent completed generation: the buffer the last
// resolved tick wrote, or the seeded read buffer before the first tick.
// While a tick is in flight its write buffer is still mutating, so Cells
// hands out the in-flight tick's frozen read buffer instead; a render that
// runs during the extraction-retry window therefore never observes a
// partially written generation. The slice must be treated as read-only and
// not retained across ticks.
func (l *Loop) Cells() []uint8 {
	l.mu.Lock()
	tick := l.tick
	if l.inFlight {
		tick--
	}
	parity := int(tick % 2)
	l.mu.Unlock()
	return l.state.Generation(parity).Bytes()
}

// Reset drains the device queue, reseeds both generation buffers and
// rewinds the tick counter. It fails while a tick is in flight.
func (l *Loop) Reset(seed int64) error {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return ErrTickInFlight
	}
	l.mu.Unlock()

	if err := l.dev.Sync(); err != nil {
		return err
	}
	if err := l.state.Seed(0, SeedRandom, seed); err != nil {
		return err
	}
	if err := l.state.Seed(1, SeedParity, seed); err != nil {
		return err
	}
	l.mu.Lock()
	l.tick = 0
	l.mu.Unlock()
	return nil
}
