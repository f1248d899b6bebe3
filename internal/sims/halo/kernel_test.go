package halo

import (
	"testing"
	"time"

	"halo-ca/internal/device"
)

// testRig assembles a device, state and bindings around an engineered read
// buffer so individual kernel dispatches can be inspected.
type testRig struct {
	dev   *device.Device
	state *State
	diag  *device.Buffer
	set   bindingSet
	w, h  int
}

func newTestRig(t *testing.T, w, h int) *testRig {
	t.Helper()
	dev, err := device.New(2)
	if err != nil {
		t.Fatalf("device.New: %v", err)
	}
	t.Cleanup(dev.Close)
	st, err := newState(dev, w, h)
	if err != nil {
		t.Fatalf("newState: %v", err)
	}
	diag, err := dev.CreateBuffer("diagnostics", w*h*RecordSize)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	return &testRig{dev: dev, state: st, diag: diag, set: newBindingSet(st, diag), w: w, h: h}
}

// run dispatches one kernel pass over binding 0 (read A, write B) and
// returns the decoded diagnostics.
func (r *testRig) run(t *testing.T, p Params) []CellInfo {
	t.Helper()
	k := kernel{p: p}
	if err := k.dispatch(r.dev, r.set.forTick(0)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	staging, err := r.dev.CreateBuffer("staging", r.diag.Size())
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if err := r.dev.CopyBuffer(r.diag, staging); err != nil {
		t.Fatalf("CopyBuffer: %v", err)
	}
	rb, err := r.dev.ReadAsync(staging)
	if err != nil {
		t.Fatalf("ReadAsync: %v", err)
	}
	data, err := rb.Await(5 * time.Second)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	records, err := DecodeRecords(data, r.w*r.h)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	return records
}

func (r *testRig) read() []uint8  { return r.state.Generation(0).Bytes() }
func (r *testRig) write() []uint8 { return r.state.Generation(1).Bytes() }

func TestToroidalWrapReachesOppositeCorner(t *testing.T) {
	rig := newTestRig(t, 4, 4)
	p := DefaultParams()
	p.Radius = 1

	// Only the far corner is active; with wrap in both axes it sits in the
	// inner neighborhood of (0,0).
	rig.read()[3*4+3] = 1

	records := rig.run(t, p)
	origin := records[0]
	if origin.X != 0 || origin.Y != 0 {
		t.Fatalf("record 0 is for (%d,%d), expected (0,0)", origin.X, origin.Y)
	}
	if origin.InnerSum != 1 {
		t.Fatalf("inner sum at (0,0) = %d, expected 1 from wrapped neighbor (3,3)", origin.InnerSum)
	}
}

func TestConstantKernelCounts(t *testing.T) {
	rig := newTestRig(t, 16, 12)
	buf := rig.read()
	for i := range buf {
		buf[i] = uint8(i % 2)
	}

	records := rig.run(t, DefaultParams())
	if err := VerifyCounts(records, 4); err != nil {
		t.Fatal(err)
	}
}

// paint activates the given cells on an otherwise empty read buffer.
func paint(buf []uint8, w int, cells [][2]int) {
	for i := range buf {
		buf[i] = 0
	}
	for _, c := range cells {
		buf[c[1]*w+c[0]] = 1
	}
}

// outerFill returns 22 distinct outer-window cells around (8,8) for R=4,
// giving an outer norm of 22/72 ~ 0.3056.
func outerFill() [][2]int {
	var cells [][2]int
	for x := 4; x <= 12; x++ {
		cells = append(cells, [2]int{x, 4}, [2]int{x, 5})
	}
	for x := 4; x <= 7; x++ {
		cells = append(cells, [2]int{x, 6})
	}
	return cells
}

func TestRuleSurviveBranch(t *testing.T) {
	rig := newTestRig(t, 16, 16)
	// Center active plus four inner neighbors: inner norm 5/9 > 0.5.
	cells := append(outerFill(),
		[2]int{8, 8}, [2]int{7, 8}, [2]int{9, 8}, [2]int{8, 7}, [2]int{8, 9})
	paint(rig.read(), 16, cells)

	records := rig.run(t, DefaultParams())
	center := records[8*16+8]
	if center.InnerSum != 5 || center.OuterSum != 22 {
		t.Fatalf("engineered sums inner=%d outer=%d, expected 5/22", center.InnerSum, center.OuterSum)
	}
	if got := rig.write()[8*16+8]; got != 1 {
		t.Fatalf("survive branch wrote %d, expected 1", got)
	}
}

func TestRuleBirthBranch(t *testing.T) {
	rig := newTestRig(t, 16, 16)
	// Center inactive, two inner neighbors: inner norm 2/9 < 0.5 and the
	// outer norm 22/72 falls inside the birth band.
	cells := append(outerFill(), [2]int{7, 8}, [2]int{9, 8})
	paint(rig.read(), 16, cells)

	records := rig.run(t, DefaultParams())
	center := records[8*16+8]
	if center.InnerSum != 2 || center.OuterSum != 22 {
		t.Fatalf("engineered sums inner=%d outer=%d, expected 2/22", center.InnerSum, center.OuterSum)
	}
	if got := rig.write()[8*16+8]; got != 1 {
		t.Fatalf("birth branch wrote %d, expected 1", got)
	}
}

func TestRuleRejectsWhenNoBranchMatches(t *testing.T) {
	rig := newTestRig(t, 16, 16)
	// Center inactive but inner norm 5/9 > 0.5: too crowded for birth,
	// not alive for survival.
	cells := append(outerFill(),
		[2]int{7, 8}, [2]int{9, 8}, [2]int{8, 7}, [2]int{8, 9}, [2]int{7, 7})
	paint(rig.read(), 16, cells)

	records := rig.run(t, DefaultParams())
	center := records[8*16+8]
	if center.InnerSum != 5 {
		t.Fatalf("engineered inner sum = %d, expected 5", center.InnerSum)
	}
	if got := rig.write()[8*16+8]; got != 0 {
		t.Fatalf("dead cell with crowded inner kernel wrote %d, expected 0", got)
	}
}

func TestRecordPositionsAreRowMajor(t *testing.T) {
	rig := newTestRig(t, 10, 9)
	records := rig.run(t, DefaultParams())
	for i, r := range records {
		if int(r.X) != i%10 || int(r.Y) != i/10 {
			t.Fatalf("record %d carries position (%d,%d)", i, r.X, r.Y)
		}
	}
}
