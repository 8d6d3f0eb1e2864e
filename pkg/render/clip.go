package render

import (
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// synthResult holds an intersection vertex synthesized by the near-plane
// clipper: its camera-space position, its raster position (recomputed from
// that camera-space position with z pinned to Near), and its lerped
// attribute.
type synthResult struct {
	camPos math3d.Vec3
	rv     RasterVertex
	attr   scene.VertexAttribute
}

// synthesize computes the intersection of the directed edge (from, to)
// with the near plane, per §4.3: linear interpolation of camera-space
// position, normal and color-or-UV, then a raster position recomputed from
// the interpolated camera-space position with z pinned to Near.
func (r *Renderer) synthesize(vFrom, vTo, aFrom, aTo uint32) synthResult {
	rvFrom, rvTo := r.rasterVerts[vFrom], r.rasterVerts[vTo]
	a := (Near - rvFrom.Z) / (rvTo.Z - rvFrom.Z)

	camPos := r.camVerts[vFrom].Lerp(r.camVerts[vTo], a)
	camPos.Z = -Near
	rv := Project(camPos, r.factor, r.width, r.height)

	src := r.arena.Attributes
	from := scene.VertexAttribute{
		Normal: r.normals[aFrom], Disc: src[aFrom].Disc,
		Color: src[aFrom].Color, TexIndex: src[aFrom].TexIndex, UV: src[aFrom].UV,
	}
	to := scene.VertexAttribute{
		Normal: r.normals[aTo], Disc: src[aTo].Disc,
		Color: src[aTo].Color, TexIndex: src[aTo].TexIndex, UV: src[aTo].UV,
	}
	attr := from.Lerp(to, a)

	return synthResult{camPos: camPos, rv: rv, attr: attr}
}

// appendSynth appends a synthesized vertex/attribute pair into the arena
// and the parallel per-frame scratch, returning its new global
// vertex/attribute ids.
func (r *Renderer) appendSynth(s synthResult) (vIdx, aIdx uint32) {
	vIdx = r.arena.AppendVertex(math3d.Zero3())
	r.camVerts[vIdx] = s.camPos
	r.rasterVerts[vIdx] = s.rv

	aIdx = r.arena.AppendAttribute(s.attr)
	r.normals[aIdx] = s.attr.Normal
	return vIdx, aIdx
}

// overwriteSynth overwrites the existing vertex/attribute slot vIdx/aIdx in
// place with a synthesized intersection (the "two vertices clipped away, no
// arena growth" case of §4.3).
func (r *Renderer) overwriteSynth(vIdx, aIdx uint32, s synthResult) {
	r.camVerts[vIdx] = s.camPos
	r.rasterVerts[vIdx] = s.rv
	r.arena.OverwriteAttribute(aIdx, s.attr)
	r.normals[aIdx] = s.attr.Normal
}

// clip implements the near-plane clipper of §4.3 for a triangle straddling
// z = Near. It returns the (possibly modified) vertex/attribute indices and
// raster vertices for the triangle that now occupies slot base — the
// original triangle in the two-vertices-clipped case, or the
// in-front-half of the original quad in the one-vertex-clipped case, which
// also appends a second triangle to the arena.
func (r *Renderer) clip(base int, vi, ai [3]uint32, rv [3]RasterVertex) ([3]uint32, [3]uint32, [3]RasterVertex) {
	inFront := [3]bool{rv[0].Z >= Near, rv[1].Z >= Near, rv[2].Z >= Near}

	var cur, nxt, prec int
	for e := 0; e < 3; e++ {
		i, j := e, (e+1)%3
		if inFront[i] == inFront[j] {
			cur, nxt, prec = i, j, (e+2)%3
			break
		}
	}
	newTriangle := inFront[cur]

	sNextPreceding := r.synthesize(vi[nxt], vi[prec], ai[nxt], ai[prec])
	sPrecedingCurrent := r.synthesize(vi[prec], vi[cur], ai[prec], ai[cur])

	if newTriangle {
		newVIdx, newAIdx := r.appendSynth(sNextPreceding)
		farVIdx, farAIdx := r.appendSynth(sPrecedingCurrent)

		r.arena.VertexIndices[base+prec] = newVIdx
		r.arena.AttributeIndices[base+prec] = newAIdx

		r.arena.AppendTriangle(
			[3]uint32{vi[cur], newVIdx, farVIdx},
			[3]uint32{ai[cur], newAIdx, farAIdx},
		)

		vi[prec], ai[prec] = newVIdx, newAIdx
		rv[prec] = sNextPreceding.rv
		return vi, ai, rv
	}

	r.overwriteSynth(vi[cur], ai[cur], sPrecedingCurrent)
	r.overwriteSynth(vi[nxt], ai[nxt], sNextPreceding)
	rv[cur] = sPrecedingCurrent.rv
	rv[nxt] = sNextPreceding.rv
	return vi, ai, rv
}
