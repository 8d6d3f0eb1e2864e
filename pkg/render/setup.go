package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// edge computes the edge function of §4.4/§4.5: the signed twice-area of
// triangle (a, b, c), used both as the back-face/degenerate-area test and,
// per corner, as an unnormalized barycentric coordinate.
func edge(a, b, c RasterVertex) float64 {
	return (c.X-a.X)*(a.Y-b.Y) + (c.Y-a.Y)*(b.X-a.X)
}

// minAreaThreshold (§4.4 step 3) simultaneously culls back-faces (negative
// area) and sub-pixel triangles.
const minAreaThreshold = 10

// setupAndScan performs triangle setup and culling (§4.4) and, for
// surviving triangles, dispatches to the scan converter specialized for
// the triangle's shading variant (§4.5, §4.6, §9 "per-triangle shader
// closure").
func (r *Renderer) setupAndScan(vi, ai [3]uint32, rv [3]RasterVertex) {
	rvMaxX := math.Max(rv[0].X, math.Max(rv[1].X, rv[2].X))
	rvMaxY := math.Max(rv[0].Y, math.Max(rv[1].Y, rv[2].Y))
	rvMinX := math.Min(rv[0].X, math.Min(rv[1].X, rv[2].X))
	rvMinY := math.Min(rv[0].Y, math.Min(rv[1].Y, rv[2].Y))

	if rvMaxX < 0 || rvMaxY < 0 || rvMinX >= float64(r.width) || rvMinY >= float64(r.height) {
		return
	}

	area := edge(rv[0], rv[1], rv[2])
	if area < minAreaThreshold {
		return
	}
	oneOverArea := 1 / area

	xmin := int(math.Floor(rvMinX))
	if xmin < 0 {
		xmin = 0
	}
	xmax := int(math.Floor(rvMaxX))
	if xmax > r.width-1 {
		xmax = r.width - 1
	}
	ymin := int(math.Floor(rvMinY))
	if ymin < 0 {
		ymin = 0
	}
	ymax := int(math.Floor(rvMaxY))
	if ymax > r.height-1 {
		ymax = r.height - 1
	}
	if xmin > xmax || ymin > ymax {
		return
	}

	rvz := [3]float64{1 / rv[0].Z, 1 / rv[1].Z, 1 / rv[2].Z}

	attrs := r.arena.Attributes
	disc := attrs[ai[0]].Disc

	var p [3]math3d.Vec3
	var n [3]math3d.Vec3
	for k := 0; k < 3; k++ {
		p[k] = r.camVerts[vi[k]].Scale(rvz[k])
		n[k] = r.normals[ai[k]].Scale(rvz[k])
	}

	dx := [3]float64{
		(rv[1].Y - rv[2].Y) * oneOverArea,
		(rv[2].Y - rv[0].Y) * oneOverArea,
		(rv[0].Y - rv[1].Y) * oneOverArea,
	}
	dy := [3]float64{
		(rv[2].X - rv[1].X) * oneOverArea,
		(rv[0].X - rv[2].X) * oneOverArea,
		(rv[1].X - rv[0].X) * oneOverArea,
	}

	bounds := scanBounds{xmin: xmin, xmax: xmax, ymin: ymin, ymax: ymax, oneOverArea: oneOverArea}

	switch disc {
	case scene.DiscTexture:
		var uv [3]math3d.Vec2
		for k := 0; k < 3; k++ {
			uv[k] = attrs[ai[k]].UV.Scale(rvz[k])
		}
		r.scanTextured(rv, rvz, p, n, uv, attrs[ai[0]].TexIndex, dx, dy, bounds)
	default:
		var cc [3]math3d.Vec3
		for k := 0; k < 3; k++ {
			cc[k] = attrs[ai[k]].Color.Scale(rvz[k])
		}
		r.scanColor(rv, rvz, p, n, cc, dx, dy, bounds)
	}
}

// scanBounds bundles the pixel bounding box and inverse area shared by
// both scan-converter variants.
type scanBounds struct {
	xmin, xmax, ymin, ymax int
	oneOverArea            float64
}
