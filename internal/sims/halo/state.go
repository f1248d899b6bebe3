package halo

import (
	"encoding/binary"
	"fmt"
	"math"

	"halo-ca/internal/core"
	"halo-ca/internal/device"
)

// Seed distribution names accepted by State.Seed.
const (
	SeedRandom = "random-0.4"
	SeedParity = "alternating-parity"
)

const bernoulliP = 0.4

// State owns the two generation buffers and the read-only dimension
// descriptor. Buffer contents mutate only through kernel dispatch after
// seeding; State itself never rewrites them.
type State struct {
	w, h int
	gen  [2]*device.Buffer
	dims *device.Buffer
}

func newState(dev *device.Device, w, h int) (*State, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("halo: invalid grid %dx%d", w, h)
	}
	s := &State{w: w, h: h}

	var err error
	if s.gen[0], err = dev.CreateBuffer("generation-a", w*h); err != nil {
		return nil, err
	}
	if s.gen[1], err = dev.CreateBuffer("generation-b", w*h); err != nil {
		return nil, err
	}
	if s.dims, err = dev.CreateBuffer("grid-dims", 8); err != nil {
		return nil, err
	}

	// The descriptor carries (W, H) as two little-endian float32 values
	// and is never rewritten for the process lifetime.
	d := s.dims.Bytes()
	binary.LittleEndian.PutUint32(d[0:4], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(d[4:8], math.Float32bits(float32(h)))
	return s, nil
}

// Size returns the grid dimensions.
func (s *State) Size() core.Size { return core.Size{W: s.w, H: s.h} }

// Dims exposes the dimension descriptor buffer.
func (s *State) Dims() *device.Buffer { return s.dims }

// Generation returns one of the two generation buffers by index.
func (s *State) Generation(index int) *device.Buffer { return s.gen[index&1] }

// Seed fills one generation buffer with a named initial distribution.
// "random-0.4" activates each cell independently with probability 0.4;
// "alternating-parity" activates cell i iff i is odd.
func (s *State) Seed(index int, distribution string, seed int64) error {
	buf := s.gen[index&1].Bytes()
	switch distribution {
	case SeedRandom:
		core.FillBernoulli(core.NewRNG(seed).Source(), buf, bernoulliP)
	case SeedParity:
		core.FillParity(buf)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSeed, distribution)
	}
	return nil
}
