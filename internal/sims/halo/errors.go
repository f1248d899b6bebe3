package halo

import "errors"

var (
	// ErrTickInFlight reports a tick started while the previous tick's
	// diagnostics were still being extracted. The caller may retry once
	// the in-flight tick resolves.
	ErrTickInFlight = errors.New("halo: tick already in flight")

	// ErrDiagnosticSize reports a diagnostic buffer whose length does not
	// match width*height records. Such a buffer is never decoded.
	ErrDiagnosticSize = errors.New("halo: diagnostic buffer size mismatch")

	// ErrUnknownSeed reports an unrecognized seed distribution name.
	ErrUnknownSeed = errors.New("halo: unknown seed distribution")
)
