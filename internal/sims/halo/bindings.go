package halo

import "halo-ca/internal/device"

// binding pairs the four resources one kernel dispatch touches. A binding
// is read-only after construction; rebinding mid-run is not supported.
type binding struct {
	dims  *device.Buffer
	read  *device.Buffer
	write *device.Buffer
	diag  *device.Buffer
}

// bindingSet holds the two precomputed binding configurations. Ticks with
// even parity read generation A and write generation B; odd parity reverses
// the roles. The kernel therefore never writes the buffer it is reading,
// which is the sole mechanism keeping concurrent workers race-free. No
// allocation happens per tick.
type bindingSet [2]binding

func newBindingSet(st *State, diag *device.Buffer) bindingSet {
	return bindingSet{
		{dims: st.Dims(), read: st.Generation(0), write: st.Generation(1), diag: diag},
		{dims: st.Dims(), read: st.Generation(1), write: st.Generation(0), diag: diag},
	}
}

// forTick selects the binding configuration for the given tick parity.
func (b *bindingSet) forTick(tick uint64) binding {
	return b[tick%2]
}
