package halo

import (
	"strconv"
	"time"
)

// Params holds the transition-rule tunables. The defaults are the tuned
// reference thresholds; they are deliberately asymmetric between the
// survive and birth branches and must not be rounded to Life-style values.
type Params struct {
	Radius int

	SurviveInnerMin float32
	SurviveOuterMin float32
	SurviveOuterMax float32

	BirthInnerMax float32
	BirthOuterMin float32
	BirthOuterMax float32
}

// Config controls the halo simulation dimensions and runtime knobs.
type Config struct {
	Width  int
	Height int

	Seed int64

	// Workers sizes the device dispatch pool; zero selects GOMAXPROCS.
	Workers int

	// ExtractTimeout bounds the wait for a tick's diagnostic readback.
	ExtractTimeout time.Duration

	Params Params
}

// DefaultParams returns the reference rule parameters.
func DefaultParams() Params {
	return Params{
		Radius:          4,
		SurviveInnerMin: 0.5,
		SurviveOuterMin: 0.22,
		SurviveOuterMax: 0.46,
		BirthInnerMax:   0.5,
		BirthOuterMin:   0.27,
		BirthOuterMax:   0.36,
	}
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:          128,
		Height:         128,
		Seed:           1337,
		ExtractTimeout: time.Second,
		Params:         DefaultParams(),
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 {
			c.Params.Radius = parsed
		}
	}
	if v, ok := cfg["extract_timeout_ms"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.ExtractTimeout = time.Duration(parsed) * time.Millisecond
		}
	}
	return c
}
