package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// light computes the headlight Blinn-Phong scalar of §4.6: the view vector
// doubles as the light direction, so only the interpolated camera-space
// position and normal are needed.
func light(p, normal math3d.Vec3) float64 {
	point := p.Normalize().Negate()
	n := normal.Normalize()
	halfway := point.Add(n).Normalize()
	return halfway.Dot(n)
}

// clampByte truncates a float lighting/color product to a uint8 channel,
// matching §4.6's "clamp output channels implicitly via uint8 truncation."
func clampByte(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint32(v)
}

// packRGB packs three 0-255 channel values into the 0x00RRGGBB word format
// of §4.6/§6.
func packRGB(r, g, b float64) uint32 {
	return clampByte(r)<<16 | clampByte(g)<<8 | clampByte(b)
}

// nextPow2 rounds v up to the next power of two.
func nextPow2(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// mipExtent turns the raw level value of §4.6 into a clamped,
// power-of-two-rounded block size in [1, 256].
func mipExtent(level float64) int {
	if math.IsNaN(level) || level < 1 {
		level = 1
	}
	if level > 256 {
		level = 256
	}
	return nextPow2(int(math.Ceil(level)))
}

// sampleAtlas fetches a texel from the fixed 512x512 mipmap-pyramid atlas
// of §4.6 for texture texIndex, at mapped coordinate m with screen-space
// derivative extents Lx, Ly already selected.
func sampleAtlas(atlas []uint32, texIndex uint32, m math3d.Vec2, lx, ly int) (r, g, b float64) {
	frac := m.Frac()
	x := int(frac.X*float64(lx)) + (511 &^ (2*lx - 1))
	y := int(frac.Y*float64(ly)) + (511 &^ (2*ly - 1))
	base := int(texIndex) << 18
	word := atlas[base+x+(y<<9)]
	return float64((word >> 16) & 0xFF), float64((word >> 8) & 0xFF), float64(word & 0xFF)
}
