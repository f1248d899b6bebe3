package halo

import "fmt"

// Summary aggregates one tick's diagnostic records for display and probing.
type Summary struct {
	Records       int
	MeanInnerNorm float64
	MeanOuterNorm float64
}

// Summarize reduces a tick's records to their mean normalized sums.
func Summarize(records []CellInfo) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}
	var inner, outer float64
	for _, r := range records {
		inner += float64(r.InnerNorm)
		outer += float64(r.OuterNorm)
	}
	s.MeanInnerNorm = inner / float64(len(records))
	s.MeanOuterNorm = outer / float64(len(records))
	return s
}

// VerifyCounts checks the constant-count invariant: every record must carry
// an inner count of 9 and an outer count of (2R+1)^2-9, regardless of grid
// size or tick.
func VerifyCounts(records []CellInfo, radius int) error {
	span := 2*radius + 1
	wantInner := uint32(9)
	wantOuter := uint32(span*span - 9)
	for i, r := range records {
		if r.InnerCount != wantInner || r.OuterCount != wantOuter {
			return fmt.Errorf("halo: record %d at (%d,%d) has counts %d/%d, want %d/%d",
				i, r.X, r.Y, r.InnerCount, r.OuterCount, wantInner, wantOuter)
		}
	}
	return nil
}
