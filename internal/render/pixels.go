package render

import (
	"image/color"

	"halo-ca/internal/sims/halo"
)

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// fillHeatRGBA paints one semi-transparent heat pixel per diagnostic record,
// mapping the outer-kernel norm onto a blue-to-red ramp. Records are
// row-major, matching the pixel buffer.
func fillHeatRGBA(buf []byte, records []halo.CellInfo) {
	for i, rec := range records {
		t := rec.OuterNorm
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		base := i * 4
		buf[base+0] = uint8(255 * t)
		buf[base+1] = 0
		buf[base+2] = uint8(255 * (1 - t))
		buf[base+3] = 160
	}
}
