package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// RasterVertex is a vertex in raster space: (X, Y) are pixel coordinates,
// Z is camera-space depth (distance in front of the camera), not NDC z
// (§3, §4.2).
type RasterVertex struct {
	X, Y, Z float64
}

// Project applies the raster-space projection formula of §4.2 to a
// camera-space point.
func Project(c math3d.Vec3, factor float64, width, height int) RasterVertex {
	return RasterVertex{
		X: c.X*factor/-c.Z + float64(width)/2,
		Y: -c.Y*factor/-c.Z + float64(height)/2,
		Z: -c.Z,
	}
}

// Renderer is the single-threaded, synchronous core render pipeline of
// §2/§5/§9: one value owning the camera, depth buffer, scene arena and its
// per-frame scratch, constructed once and driven by repeated calls to
// Render. There is no package-level mutable state.
type Renderer struct {
	arena  *scene.Arena
	camera *Camera

	width, height int
	factor        float64

	depth []float64 // 1/z, larger wins, cleared to 0 (§4.5, §9)

	// camVerts/rasterVerts are indexed by vertex id (global, across the
	// whole 2x-capacity Vertices array); normals is indexed by attribute
	// id the same way. All three are per-frame scratch that the vertex and
	// attribute passes repopulate for loaded entries, and that the clipper
	// populates directly for clip-generated entries (§3, §4.3).
	camVerts    []math3d.Vec3
	rasterVerts []RasterVertex
	normals     []math3d.Vec3

	// pixels is valid only for the duration of a Render call; the scan
	// converter writes through it.
	pixels *PixelData
}

// New constructs a Renderer for the given scene and camera. The pixel
// buffer size is established lazily on the first Render call (and whenever
// it changes), per §5's resize-on-demand resource lifecycle.
func New(arena *scene.Arena, camera *Camera) *Renderer {
	return &Renderer{
		arena:       arena,
		camera:      camera,
		camVerts:    make([]math3d.Vec3, len(arena.Vertices)),
		rasterVerts: make([]RasterVertex, len(arena.Vertices)),
		normals:     make([]math3d.Vec3, len(arena.Attributes)),
	}
}

// resize matches the depth buffer and projection factor to the caller's
// current pixel buffer dimensions. The scratch arrays are grown separately
// in Render.
func (r *Renderer) resize(width, height int) {
	if width == r.width && height == r.height && r.depth != nil {
		return
	}
	r.width, r.height = width, height
	r.factor = Near * float64(height) / (2 * Scale)
	r.depth = make([]float64, width*height)
}

// Render executes one frame: camera update, resize check, vertex and
// attribute transform passes, then the per-triangle clip/setup/scan-convert
// loop of §4.3-§4.6, writing into pixels and the core-owned depth buffer.
func (r *Renderer) Render(pixels *PixelData, input Input) {
	r.camera.Update(input)
	r.resize(pixels.Width, pixels.Height)
	r.pixels = pixels

	pixels.Clear(Background)
	for i := range r.depth {
		r.depth[i] = 0
	}

	r.arena.ResetFrame()
	if len(r.camVerts) < len(r.arena.Vertices) {
		r.camVerts = make([]math3d.Vec3, len(r.arena.Vertices))
		r.rasterVerts = make([]RasterVertex, len(r.arena.Vertices))
	}
	if len(r.normals) < len(r.arena.Attributes) {
		r.normals = make([]math3d.Vec3, len(r.arena.Attributes))
	}

	for i := 0; i < r.arena.VertexCount; i++ {
		c := r.camera.ToCameraSpace(r.arena.Vertices[i])
		r.camVerts[i] = c
		r.rasterVerts[i] = Project(c, r.factor, r.width, r.height)
	}
	for i := 0; i < r.arena.AttrCount; i++ {
		r.normals[i] = r.camera.ToCameraSpaceDir(r.arena.Attributes[i].Normal)
	}

	// The per-triangle loop's upper bound grows when the clipper appends a
	// new triangle; re-read IndexCount every iteration (§5).
	triIdx := 0
	for triIdx < r.arena.TriangleCount() {
		r.processTriangle(triIdx * 3)
		triIdx++
	}
}

// processTriangle runs one triangle (possibly clip-generated) through the
// near-plane reject/clip, setup, and scan-conversion stages.
func (r *Renderer) processTriangle(base int) {
	vi := [3]uint32{
		r.arena.VertexIndices[base],
		r.arena.VertexIndices[base+1],
		r.arena.VertexIndices[base+2],
	}
	ai := [3]uint32{
		r.arena.AttributeIndices[base],
		r.arena.AttributeIndices[base+1],
		r.arena.AttributeIndices[base+2],
	}
	rv := [3]RasterVertex{
		r.rasterVerts[vi[0]],
		r.rasterVerts[vi[1]],
		r.rasterVerts[vi[2]],
	}

	maxZ := math.Max(rv[0].Z, math.Max(rv[1].Z, rv[2].Z))
	if !(maxZ > Near) {
		// All three vertices are behind the near plane, or one of their
		// depths is NaN: skip entirely (§4.3, §7).
		return
	}
	minZ := math.Min(rv[0].Z, math.Min(rv[1].Z, rv[2].Z))
	if minZ < Near {
		vi, ai, rv = r.clip(base, vi, ai, rv)
	}

	r.setupAndScan(vi, ai, rv)
}
