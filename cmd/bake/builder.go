package main

import (
	"math"
	"math/rand"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// builder accumulates vertices, indices, attributes and textures into the
// shared arrays that the binary writer flattens into the five sections of
// the scene file. Shape generators append into it; nothing is removed once
// added.
type builder struct {
	vertices         []math3d.Vec3
	vertexIndices    []uint32
	attributes       []scene.VertexAttribute
	attributeIndices []uint32
	textures         [][]uint32 // one 512x512 atlas block per baked texture
}

func newBuilder() *builder {
	return &builder{}
}

// addTexture appends a pre-baked atlas block and returns its texture index.
func (b *builder) addTexture(atlas []uint32) uint32 {
	b.textures = append(b.textures, atlas)
	return uint32(len(b.textures) - 1)
}

// faceNormal computes the normal of the triangle (v[a], v[b], v[c]),
// matching original_source/data-generator's normal(v, a, b, c) helper.
func faceNormal(v []math3d.Vec3, a, b, c int) math3d.Vec3 {
	return v[c].Sub(v[a]).Cross(v[b].Sub(v[a]))
}

// randomUnitAxis returns a random orthonormal basis, ported from
// simd_float3.randomUnitAxis: pick a random point on the unit sphere for x,
// then a second independent random point, orthogonalize it against x for y,
// and cross for z.
func randomUnitAxis(rng *rand.Rand) (x, y, z math3d.Vec3) {
	randomUnitSpherePoint := func() math3d.Vec3 {
		cz := rng.Float64()*2 - 1
		angle := rng.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - cz*cz)
		return math3d.V3(math.Cos(angle)*r, math.Sin(angle)*r, cz)
	}
	x = randomUnitSpherePoint()
	var q math3d.Vec3
	for {
		q = randomUnitSpherePoint()
		if q != x && q != x.Negate() {
			break
		}
	}
	y = x.Cross(q).Normalize()
	z = x.Cross(y)
	return x, y, z
}

// addTriangle appends a single textured triangle pointing at texIndex,
// ported from original_source/data-generator's addTriangle.
func (b *builder) addTriangle(center math3d.Vec3, radius float64, texIndex uint32) {
	v := []math3d.Vec3{
		math3d.V3(-math.Sqrt(3)/2, -0.5, 0),
		math3d.V3(0, 1, 0),
		math3d.V3(math.Sqrt(3)/2, -0.5, 0),
	}
	for i := range v {
		v[i] = v[i].Scale(radius).Add(center)
	}

	base := uint32(len(b.vertices))
	b.vertices = append(b.vertices, v...)
	b.vertexIndices = append(b.vertexIndices, base, base+1, base+2)

	n := faceNormal(v, 0, 1, 2)
	uvs := []math3d.Vec2{
		math3d.V2(0, math.Sqrt(3)/2),
		math3d.V2(0.5, 0),
		math3d.V2(1, math.Sqrt(3)/2),
	}
	attrBase := uint32(len(b.attributes))
	for _, uv := range uvs {
		b.attributes = append(b.attributes, scene.VertexAttribute{
			Normal:   n,
			Disc:     scene.DiscTexture,
			TexIndex: texIndex,
			UV:       uv,
		})
	}
	b.attributeIndices = append(b.attributeIndices, attrBase, attrBase+1, attrBase+2)
}

// Color attributes are stored in [0,1] per channel; scanColor multiplies by
// 255 at shading time.
var (
	orange = math3d.V3(1, 0.647, 0)
	red    = math3d.V3(1, 0, 0)
	blue   = math3d.V3(0, 0, 1)
)

// addTetrahedron appends a randomly oriented, flat-colored tetrahedron,
// ported from original_source/data-generator's addTetrahedron.
func (b *builder) addTetrahedron(rng *rand.Rand, center math3d.Vec3, radius float64) {
	x, y, z := randomUnitAxis(rng)
	const (
		k1 = 0.9428090415820634 // sqrt(8/9)
		k2 = 0.4714045207910317 // sqrt(2/9)
		k3 = 0.816496580927726  // sqrt(2/3)
	)
	v := []math3d.Vec3{
		z,
		x.Scale(k1).Sub(z.Scale(1.0 / 3)),
		x.Scale(-k2).Add(y.Scale(k3)).Sub(z.Scale(1.0 / 3)),
		x.Scale(-k2).Sub(y.Scale(k3)).Sub(z.Scale(1.0 / 3)),
	}
	for i := range v {
		v[i] = v[i].Scale(radius).Add(center)
	}

	i := uint32(len(b.vertices))
	b.vertices = append(b.vertices, v...)
	b.vertexIndices = append(b.vertexIndices,
		i, i+2, i+1,
		i, i+3, i+2,
		i, i+1, i+3,
		i+1, i+2, i+3,
	)

	faces := [][4]int{{0, 2, 1, 0}, {0, 3, 2, 1}, {0, 1, 3, 2}, {1, 2, 3, 3}}
	colors := [][3]math3d.Vec3{
		{orange, orange, orange},
		{red, orange, orange},
		{orange, orange, blue},
		{orange, orange, orange},
	}
	j := uint32(len(b.attributes))
	for fi, f := range faces {
		n := faceNormal(v, f[0], f[1], f[2])
		for _, c := range colors[fi] {
			b.attributes = append(b.attributes, scene.VertexAttribute{Normal: n, Disc: scene.DiscColor, Color: c})
		}
	}
	b.attributeIndices = append(b.attributeIndices, j, j+1, j+2, j+3, j+4, j+5, j+6, j+7, j+8, j+9, j+10, j+11)
}

// icosahedronFaces is the fixed 20-triangle index pattern of a regular
// icosahedron built from the 12-vertex layout below, ported from
// original_source/data-generator's addIcosahedron.
var icosahedronFaces = [20][3]int{
	{0, 1, 4}, {4, 8, 0}, {0, 8, 9}, {9, 6, 0}, {0, 6, 1},
	{1, 10, 4}, {4, 10, 5}, {5, 8, 4}, {5, 2, 8}, {8, 2, 9},
	{9, 2, 7}, {7, 6, 9}, {7, 11, 6}, {6, 11, 1}, {1, 11, 10},
	{3, 5, 10}, {10, 11, 3}, {3, 11, 7}, {7, 2, 3}, {3, 2, 5},
}

// icosahedronAccents holds the handful of per-corner color overrides from
// original_source/data-generator's addIcosahedron: face 3's first corner is
// red, face 8's first corner is blue and third is red, and face 15's first
// corner is red. Every other corner is orange.
var icosahedronAccents = map[[2]int]math3d.Vec3{
	{3, 0}:  red,
	{8, 0}:  blue,
	{8, 2}:  red,
	{15, 0}: red,
}

// addIcosahedron appends a randomly oriented, flat-colored icosahedron,
// ported from original_source/data-generator's addIcosahedron. Most corners
// are orange; a handful are picked out in red/blue per icosahedronAccents,
// matching the reference generator's accent pattern.
func (b *builder) addIcosahedron(rng *rand.Rand, center math3d.Vec3, radius float64) {
	x, y, z := randomUnitAxis(rng)
	const phi = 1.618033988749895 // (sqrt(5)+1)/2
	l := 1 / math.Sqrt(phi+2)
	k := phi * l

	v := []math3d.Vec3{
		x.Scale(k).Add(y.Scale(l)),
		x.Scale(k).Sub(y.Scale(l)),
		x.Scale(-k).Add(y.Scale(l)),
		x.Scale(-k).Sub(y.Scale(l)),
		x.Scale(l).Add(z.Scale(k)),
		x.Scale(-l).Add(z.Scale(k)),
		x.Scale(l).Sub(z.Scale(k)),
		x.Scale(-l).Sub(z.Scale(k)),
		y.Scale(k).Add(z.Scale(l)),
		y.Scale(k).Sub(z.Scale(l)),
		y.Scale(-k).Add(z.Scale(l)),
		y.Scale(-k).Sub(z.Scale(l)),
	}
	for i := range v {
		v[i] = v[i].Scale(radius).Add(center)
	}

	i := uint32(len(b.vertices))
	b.vertices = append(b.vertices, v...)
	j := uint32(len(b.attributes))
	for fi, f := range icosahedronFaces {
		b.vertexIndices = append(b.vertexIndices, i+uint32(f[0]), i+uint32(f[1]), i+uint32(f[2]))
		n := faceNormal(v, f[0], f[1], f[2])
		for corner := 0; corner < 3; corner++ {
			c := orange
			if accent, ok := icosahedronAccents[[2]int{fi, corner}]; ok {
				c = accent
			}
			b.attributes = append(b.attributes, scene.VertexAttribute{Normal: n, Disc: scene.DiscColor, Color: c})
		}
		b.attributeIndices = append(b.attributeIndices, j, j+1, j+2)
		j += 3
	}
}
