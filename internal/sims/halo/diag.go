package halo

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"halo-ca/internal/device"
)

// RecordSize is the encoded size of one CellInfo: eight 4-byte fields,
// little-endian.
const RecordSize = 32

// CellInfo is the per-cell diagnostic record the kernel emits every tick.
// For the reference radius InnerCount is always 9 and OuterCount always 72,
// which makes both useful as sanity invariants.
type CellInfo struct {
	X, Y       uint32
	InnerCount uint32
	InnerSum   uint32
	InnerNorm  float32
	OuterCount uint32
	OuterSum   uint32
	OuterNorm  float32
}

// encode writes the 32-byte little-endian layout into dst.
func (ci CellInfo) encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], ci.X)
	binary.LittleEndian.PutUint32(dst[4:8], ci.Y)
	binary.LittleEndian.PutUint32(dst[8:12], ci.InnerCount)
	binary.LittleEndian.PutUint32(dst[12:16], ci.InnerSum)
	binary.LittleEndian.PutUint32(dst[16:20], math.Float32bits(ci.InnerNorm))
	binary.LittleEndian.PutUint32(dst[20:24], ci.OuterCount)
	binary.LittleEndian.PutUint32(dst[24:28], ci.OuterSum)
	binary.LittleEndian.PutUint32(dst[28:32], math.Float32bits(ci.OuterNorm))
}

func decodeRecord(src []byte) CellInfo {
	return CellInfo{
		X:          binary.LittleEndian.Uint32(src[0:4]),
		Y:          binary.LittleEndian.Uint32(src[4:8]),
		InnerCount: binary.LittleEndian.Uint32(src[8:12]),
		InnerSum:   binary.LittleEndian.Uint32(src[12:16]),
		InnerNorm:  math.Float32frombits(binary.LittleEndian.Uint32(src[16:20])),
		OuterCount: binary.LittleEndian.Uint32(src[20:24]),
		OuterSum:   binary.LittleEndian.Uint32(src[24:28]),
		OuterNorm:  math.Float32frombits(binary.LittleEndian.Uint32(src[28:32])),
	}
}

// DecodeRecords decodes a diagnostic snapshot into row-major CellInfo
// records. A snapshot whose length is not exactly cells*RecordSize is
// rejected without decoding.
func DecodeRecords(data []byte, cells int) ([]CellInfo, error) {
	if len(data) != cells*RecordSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrDiagnosticSize, len(data), cells*RecordSize)
	}
	records := make([]CellInfo, cells)
	for i := range records {
		records[i] = decodeRecord(data[i*RecordSize:])
	}
	return records, nil
}

// extractor moves the single-buffered diagnostics off the device. The copy
// into staging must be enqueued after the tick's dispatch and before any
// later dispatch reuses the diagnostic buffer, or the snapshot would mix
// old and new records; the device's in-order queue provides that ordering.
type extractor struct {
	dev     *device.Device
	diag    *device.Buffer
	staging *device.Buffer
	cells   int
	timeout time.Duration

	pending *device.Readback
}

func newExtractor(dev *device.Device, diag *device.Buffer, cells int, timeout time.Duration) (*extractor, error) {
	staging, err := dev.CreateBuffer("diag-staging", diag.Size())
	if err != nil {
		return nil, err
	}
	return &extractor{dev: dev, diag: diag, staging: staging, cells: cells, timeout: timeout}, nil
}

// enqueue schedules the device-to-device copy and the asynchronous host
// readback for the tick that just dispatched.
func (e *extractor) enqueue() error {
	if err := e.dev.CopyBuffer(e.diag, e.staging); err != nil {
		return err
	}
	rb, err := e.dev.ReadAsync(e.staging)
	if err != nil {
		return err
	}
	e.pending = rb
	return nil
}

// collect waits for the pending readback and decodes it. On timeout the
// readback stays pending and collect may be called again; nothing is
// re-dispatched.
func (e *extractor) collect() ([]CellInfo, error) {
	if e.pending == nil {
		return nil, fmt.Errorf("halo: no extraction pending")
	}
	data, err := e.pending.Await(e.timeout)
	if err != nil {
		return nil, err
	}
	e.pending = nil
	return DecodeRecords(data, e.cells)
}
