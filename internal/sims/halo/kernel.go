package halo

import (
	"encoding/binary"
	"math"

	"halo-ca/internal/device"
)

// TileSize is the edge length of one worker tile. Cells are dispatched in
// 8x8 groups to match the device's scheduling granularity.
const TileSize = 8

// kernel evaluates the two-tier weighted-neighborhood transition rule for
// every cell of a dispatch. Each invocation reads only the frozen read
// buffer and writes only its own next-state and diagnostic slots, so cells
// need no synchronization beyond the enclosing dispatch.
type kernel struct {
	p Params
}

// dispatch enqueues one full-grid kernel pass over the given binding.
func (k kernel) dispatch(dev *device.Device, b binding) error {
	w, h := decodeDims(b.dims)
	tilesX := (w + TileSize - 1) / TileSize
	tilesY := (h + TileSize - 1) / TileSize
	return dev.Dispatch(tilesX, tilesY, func(tx, ty int) {
		k.tile(b, w, h, tx, ty)
	})
}

// decodeDims reads the two float32 values of the dimension descriptor and
// truncates them back to integer grid dimensions.
func decodeDims(dims *device.Buffer) (int, int) {
	d := dims.Bytes()
	w := math.Float32frombits(binary.LittleEndian.Uint32(d[0:4]))
	h := math.Float32frombits(binary.LittleEndian.Uint32(d[4:8]))
	return int(w), int(h)
}

func (k kernel) tile(b binding, w, h, tx, ty int) {
	x0, y0 := tx*TileSize, ty*TileSize
	x1, y1 := x0+TileSize, y0+TileSize
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	read := b.read.Bytes()
	write := b.write.Bytes()
	diag := b.diag.Bytes()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			k.cell(read, write, diag, w, h, x, y)
		}
	}
}

func (k kernel) cell(read, write, diag []byte, w, h, x, y int) {
	r := k.p.Radius
	var innerCount, innerSum, outerCount, outerSum uint32
	for dy := -r; dy <= r; dy++ {
		ny := (y + dy + h) % h
		row := ny * w
		for dx := -r; dx <= r; dx++ {
			nx := (x + dx + w) % w
			s := uint32(read[row+nx])
			// Inner kernel is the Chebyshev-distance<=1 block, center
			// included; it is counted once, never again in the outer set.
			if dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 {
				innerCount++
				innerSum += s
			} else {
				outerCount++
				outerSum += s
			}
		}
	}

	innerNorm := float32(innerSum) / float32(innerCount)
	var outerNorm float32
	if outerCount > 0 {
		// Radius 1 leaves the outer set empty; keep the norm finite.
		outerNorm = float32(outerSum) / float32(outerCount)
	}

	var next uint8
	switch {
	case read[y*w+x] == 1 &&
		innerNorm > k.p.SurviveInnerMin &&
		outerNorm > k.p.SurviveOuterMin && outerNorm < k.p.SurviveOuterMax:
		next = 1
	case read[y*w+x] == 0 &&
		innerNorm < k.p.BirthInnerMax &&
		outerNorm > k.p.BirthOuterMin && outerNorm < k.p.BirthOuterMax:
		next = 1
	}

	idx := y*w + x
	write[idx] = next
	CellInfo{
		X:          uint32(x),
		Y:          uint32(y),
		InnerCount: innerCount,
		InnerSum:   innerSum,
		InnerNorm:  innerNorm,
		OuterCount: outerCount,
		OuterSum:   outerSum,
		OuterNorm:  outerNorm,
	}.encode(diag[idx*RecordSize:])
}
