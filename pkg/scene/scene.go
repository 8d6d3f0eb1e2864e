// Package scene holds the loaded 3D scene: the parallel vertex/index/
// attribute arrays the rasterizer walks each frame, plus the pre-baked
// mipmap-pyramid texture atlas. Storage is arrays of stable integer IDs,
// never an object graph, so the near-plane clipper can append
// clip-generated vertices/attributes/triangles in place during a frame.
package scene

import "github.com/taigrr/scanline/pkg/math3d"

// Discriminator tags which variant of VertexAttribute's color union is
// active.
type Discriminator uint32

const (
	// DiscColor marks an attribute carrying an interpolated RGB color.
	DiscColor Discriminator = 0
	// DiscTexture marks an attribute carrying a texture index and UV.
	DiscTexture Discriminator = 1
)

// VertexAttribute is the tagged union of per-corner shading data: a normal
// plus either an RGB color or a texture index and UV coordinate.
type VertexAttribute struct {
	Normal   math3d.Vec3
	Disc     Discriminator
	Color    math3d.Vec3 // valid iff Disc == DiscColor
	TexIndex uint32      // valid iff Disc == DiscTexture
	UV       math3d.Vec2 // valid iff Disc == DiscTexture
}

// Lerp linearly interpolates between two attributes sharing a discriminator.
// The caller is responsible for ensuring a and b share Disc; the texture
// variant keeps a's TexIndex per the near-plane clipper's rule (§4.3: "keep
// index from endpoint i").
func (a VertexAttribute) Lerp(b VertexAttribute, t float64) VertexAttribute {
	out := VertexAttribute{
		Normal: a.Normal.Lerp(b.Normal, t),
		Disc:   a.Disc,
	}
	switch a.Disc {
	case DiscColor:
		out.Color = a.Color.Lerp(b.Color, t)
	case DiscTexture:
		out.TexIndex = a.TexIndex
		out.UV = a.UV.Lerp(b.UV, t)
	}
	return out
}

// AtlasWordsPerTexture is the fixed word count of one texture's mip-pyramid
// atlas block: a 512x512 grid of packed 0x00RRGGBB words (§4.6).
const AtlasWordsPerTexture = 1 << 18 // 512 * 512

// AtlasSide is the fixed side length, in texels, of one texture's atlas
// block.
const AtlasSide = 512

// Arena owns every geometry and texture buffer for one loaded scene. Vertex,
// index and attribute slices are allocated at twice the loaded ("source")
// count so the near-plane clipper can append synthesized entries without
// reallocating mid-frame (§3 "Arena sizing"). ResetFrame must be called once
// per frame before the render pass walks the arras, restoring the "in use"
// counts to the source counts and discarding the previous frame's
// clip-generated entries.
type Arena struct {
	Vertices         []math3d.Vec3     // len == cap == 2*srcVertexCount
	VertexIndices    []uint32          // len == cap == 2*srcIndexCount
	Attributes       []VertexAttribute // len == cap == 2*srcAttrCount
	AttributeIndices []uint32          // len == cap == 2*srcIndexCount
	Textures         []uint32          // AtlasWordsPerTexture words per texture

	srcVertexCount int
	srcIndexCount  int
	srcAttrCount   int

	// VertexCount, IndexCount and AttrCount are the number of entries "in
	// use" this frame. They start at the source counts each frame and grow
	// as the near-plane clipper appends.
	VertexCount int
	IndexCount  int
	AttrCount   int
}

// NewArena builds an Arena from loaded source geometry, reserving 2x
// capacity in every array that the clipper may grow.
func NewArena(vertices []math3d.Vec3, vertexIndices []uint32, attributes []VertexAttribute, attributeIndices []uint32, textures []uint32) *Arena {
	a := &Arena{
		srcVertexCount: len(vertices),
		srcIndexCount:  len(vertexIndices),
		srcAttrCount:   len(attributes),
		Textures:       textures,
	}
	a.Vertices = make([]math3d.Vec3, 2*len(vertices))
	copy(a.Vertices, vertices)
	a.VertexIndices = make([]uint32, 2*len(vertexIndices))
	copy(a.VertexIndices, vertexIndices)
	a.Attributes = make([]VertexAttribute, 2*len(attributes))
	copy(a.Attributes, attributes)
	a.AttributeIndices = make([]uint32, 2*len(attributeIndices))
	copy(a.AttributeIndices, attributeIndices)
	a.ResetFrame()
	return a
}

// ResetFrame restores the in-use counts to the loaded source counts,
// discarding any vertices/attributes/triangles the clipper appended last
// frame.
func (a *Arena) ResetFrame() {
	a.VertexCount = a.srcVertexCount
	a.IndexCount = a.srcIndexCount
	a.AttrCount = a.srcAttrCount
}

// TriangleCount returns the number of triangles currently in use (source
// plus clip-generated so far this frame).
func (a *Arena) TriangleCount() int {
	return a.IndexCount / 3
}

// ArenaExhausted is raised via panic when the clipper tries to grow past the
// reserved 2x capacity; nothing in the render path recovers it. §9 requires
// failing loudly rather than silently truncating or reallocating mid-frame.
type ArenaExhausted struct {
	What string
}

func (e ArenaExhausted) Error() string {
	return "scene: arena capacity exhausted appending " + e.What
}

// AppendVertex appends a clip-generated vertex, returning its index.
func (a *Arena) AppendVertex(v math3d.Vec3) uint32 {
	if a.VertexCount >= len(a.Vertices) {
		panic(ArenaExhausted{"vertex"})
	}
	idx := a.VertexCount
	a.Vertices[idx] = v
	a.VertexCount++
	return uint32(idx)
}

// AppendAttribute appends a clip-generated attribute, returning its index.
func (a *Arena) AppendAttribute(attr VertexAttribute) uint32 {
	if a.AttrCount >= len(a.Attributes) {
		panic(ArenaExhausted{"attribute"})
	}
	idx := a.AttrCount
	a.Attributes[idx] = attr
	a.AttrCount++
	return uint32(idx)
}

// AppendTriangle appends a clip-generated triangle's three vertex indices
// and three attribute indices, growing IndexCount by 3.
func (a *Arena) AppendTriangle(vi [3]uint32, ai [3]uint32) {
	if a.IndexCount+3 > len(a.VertexIndices) || a.IndexCount+3 > len(a.AttributeIndices) {
		panic(ArenaExhausted{"triangle"})
	}
	base := a.IndexCount
	copy(a.VertexIndices[base:base+3], vi[:])
	copy(a.AttributeIndices[base:base+3], ai[:])
	a.IndexCount += 3
}

// OverwriteVertex replaces vertex slot idx in place. The clipper does not
// call it: it overwrites a corner only in the renderer's per-frame
// camera-space and raster-space scratch.
func (a *Arena) OverwriteVertex(idx uint32, v math3d.Vec3) {
	a.Vertices[idx] = v
}

// OverwriteAttribute replaces attribute slot idx in place.
func (a *Arena) OverwriteAttribute(idx uint32, attr VertexAttribute) {
	a.Attributes[idx] = attr
}
