package render

import "github.com/taigrr/scanline/pkg/math3d"

// scanColor is the edge-function incremental scan converter of §4.5
// specialized for the interpolated-color shading variant (§9: specialize
// the inner loop per variant rather than dispatch through a per-pixel
// closure).
func (r *Renderer) scanColor(rv [3]RasterVertex, rvz [3]float64, p, n, cc [3]math3d.Vec3, dx, dy [3]float64, b scanBounds) {
	px := float64(b.xmin) + 0.5
	py := float64(b.ymin) + 0.5

	w0Row := edge(rv[1], rv[2], RasterVertex{X: px, Y: py}) * b.oneOverArea
	w1Row := edge(rv[2], rv[0], RasterVertex{X: px, Y: py}) * b.oneOverArea
	w2Row := edge(rv[0], rv[1], RasterVertex{X: px, Y: py}) * b.oneOverArea

	for y := b.ymin; y <= b.ymax; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowBase := y * r.width
		for x := b.xmin; x <= b.xmax; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				z := rvz[0]*w0 + rvz[1]*w1 + rvz[2]*w2
				idx := rowBase + x
				if z > r.depth[idx] {
					r.depth[idx] = z
					wp0, wp1, wp2 := w0/z, w1/z, w2/z

					pos := p[0].Scale(wp0).Add(p[1].Scale(wp1)).Add(p[2].Scale(wp2))
					normal := n[0].Scale(wp0).Add(n[1].Scale(wp1)).Add(n[2].Scale(wp2))
					col := cc[0].Scale(wp0).Add(cc[1].Scale(wp1)).Add(cc[2].Scale(wp2))

					l := light(pos, normal)
					r.pixels.Set(x, y, packRGB(l*col.X*255, l*col.Y*255, l*col.Z*255))
				}
			}
			w0 += dx[0]
			w1 += dx[1]
			w2 += dx[2]
		}
		w0Row += dy[0]
		w1Row += dy[1]
		w2Row += dy[2]
	}
}

// scanTextured is the edge-function incremental scan converter specialized
// for the textured shading variant: it additionally precomputes the
// per-triangle screen-space UV derivatives of §4.6 once, outside the pixel
// loop, then selects a mip level per covered pixel.
func (r *Renderer) scanTextured(rv [3]RasterVertex, rvz [3]float64, p, n [3]math3d.Vec3, uv [3]math3d.Vec2, texIndex uint32, dx, dy [3]float64, b scanBounds) {
	tppDX := uv[0].Scale(dx[0]).Add(uv[1].Scale(dx[1])).Add(uv[2].Scale(dx[2]))
	tppDY := uv[0].Scale(dy[0]).Add(uv[1].Scale(dy[1])).Add(uv[2].Scale(dy[2]))
	dzX := rvz[0]*dx[0] + rvz[1]*dx[1] + rvz[2]*dx[2]
	dzY := rvz[0]*dy[0] + rvz[1]*dy[1] + rvz[2]*dy[2]

	px := float64(b.xmin) + 0.5
	py := float64(b.ymin) + 0.5

	w0Row := edge(rv[1], rv[2], RasterVertex{X: px, Y: py}) * b.oneOverArea
	w1Row := edge(rv[2], rv[0], RasterVertex{X: px, Y: py}) * b.oneOverArea
	w2Row := edge(rv[0], rv[1], RasterVertex{X: px, Y: py}) * b.oneOverArea

	for y := b.ymin; y <= b.ymax; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowBase := y * r.width
		for x := b.xmin; x <= b.xmax; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				z := rvz[0]*w0 + rvz[1]*w1 + rvz[2]*w2
				idx := rowBase + x
				if z > r.depth[idx] {
					r.depth[idx] = z
					wp0, wp1, wp2 := w0/z, w1/z, w2/z

					pos := p[0].Scale(wp0).Add(p[1].Scale(wp1)).Add(p[2].Scale(wp2))
					normal := n[0].Scale(wp0).Add(n[1].Scale(wp1)).Add(n[2].Scale(wp2))
					m := uv[0].Scale(wp0).Add(uv[1].Scale(wp1)).Add(uv[2].Scale(wp2))

					levelX := z / tppDX.Sub(m.Scale(dzX)).Len()
					levelY := z / tppDY.Sub(m.Scale(dzY)).Len()
					lx, ly := mipExtent(levelX), mipExtent(levelY)

					tr, tg, tb := sampleAtlas(r.arena.Textures, texIndex, m, lx, ly)

					l := light(pos, normal)
					r.pixels.Set(x, y, packRGB(l*tr, l*tg, l*tb))
				}
			}
			w0 += dx[0]
			w1 += dx[1]
			w2 += dx[2]
		}
		w0Row += dy[0]
		w1Row += dy[1]
		w2Row += dy[2]
	}
}
