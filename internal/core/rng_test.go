package core

import (
	"slices"
	"testing"
)

func TestFillBernoulliDeterministic(t *testing.T) {
	a := make([]uint8, 4096)
	b := make([]uint8, 4096)
	FillBernoulli(NewRNG(7).Source(), a, 0.4)
	FillBernoulli(NewRNG(7).Source(), b, 0.4)
	if !slices.Equal(a, b) {
		t.Fatal("identical seeds must fill identically")
	}

	active := 0
	for _, c := range a {
		if c == 1 {
			active++
		}
	}
	frac := float64(active) / float64(len(a))
	if frac < 0.34 || frac > 0.46 {
		t.Fatalf("activation fraction %.3f, expected about 0.4", frac)
	}
}

func TestFillParity(t *testing.T) {
	buf := make([]uint8, 64)
	FillParity(buf)
	for i, c := range buf {
		if want := uint8(i & 1); c != want {
			t.Fatalf("cell %d = %d, expected %d", i, c, want)
		}
	}
}
