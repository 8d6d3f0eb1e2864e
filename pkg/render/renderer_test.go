package render

import (
	"math"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// singleColorTriangleArena builds a one-triangle scene with a single flat
// color and normal, using the given vertex winding order. Scenarios S1, S2
// and S6 below share the same (-1,-1),(1,-1),(0,1) footprint at a
// uniform Z; order [0,2,1] winds it front-facing under this renderer's
// edge-function sign convention, order [0,1,2] winds it back-facing (§8
// scenarios S1/S6 share one footprint, distinguished only by winding).
func singleColorTriangleArena(positions [3]math3d.Vec3, color math3d.Vec3, order [3]int) *scene.Arena {
	attrs := []scene.VertexAttribute{
		{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: color},
		{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: color},
		{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: color},
	}
	vi := []uint32{uint32(order[0]), uint32(order[1]), uint32(order[2])}
	ai := []uint32{uint32(order[0]), uint32(order[1]), uint32(order[2])}
	return scene.NewArena(positions[:], vi, attrs, ai, nil)
}

func newTestPixels(size int) *PixelData {
	return NewPixelData(size, size)
}

func countNonBackground(pixels *PixelData) int {
	n := 0
	for _, w := range pixels.Buffer {
		if w != Background {
			n++
		}
	}
	return n
}

// TestS1_SingleTriangleFrontFacing exercises boundary scenario S1: a
// centered, front-facing, untextured triangle lit by the headlight
// Blinn-Phong shader should produce a grey silhouette with R=G=B and a
// lighting value above 0x80.
func TestS1_SingleTriangleFrontFacing(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -2),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 2, 1})
	r := New(arena, NewCamera())
	pixels := newTestPixels(100)

	r.Render(pixels, Input{})

	if countNonBackground(pixels) == 0 {
		t.Fatal("S1: expected a rendered triangle silhouette, got no pixels")
	}
	for y := 0; y < pixels.Height; y++ {
		for x := 0; x < pixels.Width; x++ {
			w := pixels.At(x, y)
			if w == Background {
				continue
			}
			rr, gg, bb := (w>>16)&0xFF, (w>>8)&0xFF, w&0xFF
			if rr != gg || gg != bb {
				t.Fatalf("S1: pixel (%d,%d) = %#06x is not neutral grey", x, y, w)
			}
			if rr <= 0x80 {
				t.Fatalf("S1: pixel (%d,%d) lighting value %#x, want > 0x80", x, y, rr)
			}
		}
	}
}

// TestS2_TriangleBehindCamera exercises boundary scenario S2: translating
// the camera behind the triangle's depth moves it entirely behind the near
// plane, producing zero pixel writes.
func TestS2_TriangleBehindCamera(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -2),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 2, 1})
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, -10))
	r := New(arena, cam)
	pixels := newTestPixels(100)

	r.Render(pixels, Input{})

	if n := countNonBackground(pixels); n != 0 {
		t.Errorf("S2: expected zero pixel writes with the triangle behind the camera, got %d", n)
	}
}

// TestS3_NearPlaneBisection exercises boundary scenario S3: a triangle
// straddling the near plane must be clipped so only the in-front portion
// draws, and no stored depth may exceed 1/near.
func TestS3_NearPlaneBisection(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -0.05),
		math3d.V3(1, -1, -0.05),
		math3d.V3(0, 1, -2),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 2, 1})
	r := New(arena, NewCamera())
	pixels := newTestPixels(100)

	r.Render(pixels, Input{})

	if countNonBackground(pixels) == 0 {
		t.Fatal("S3: expected the clipper to leave a visible in-front portion")
	}
	maxAllowed := 1 / Near
	for i, z := range r.depth {
		if z == 0 {
			continue // untouched background pixel
		}
		if z > maxAllowed+1e-9 {
			t.Fatalf("S3: depth[%d] = %v exceeds 1/near = %v", i, z, maxAllowed)
		}
	}
}

// TestS4_DepthTestPicksNearerRegardlessOfOrder exercises boundary scenario
// S4: two overlapping triangles at different depths must resolve to the
// nearer one's color no matter which comes first in the index buffer.
func TestS4_DepthTestPicksNearerRegardlessOfOrder(t *testing.T) {
	near := [3]math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -2),
	}
	// Scaled by 1.5x at 1.5x the depth: c.X/-c.Z is preserved, so this
	// projects to the exact same screen footprint as `near`.
	far := [3]math3d.Vec3{
		math3d.V3(-1.5, -1.5, -3),
		math3d.V3(1.5, -1.5, -3),
		math3d.V3(0, 1.5, -3),
	}

	render := func(vertices []math3d.Vec3, colors [2]math3d.Vec3, nearFirst bool) *PixelData {
		attrs := []scene.VertexAttribute{
			{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: colors[0]},
			{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: colors[0]},
			{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: colors[0]},
			{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: colors[1]},
			{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: colors[1]},
			{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscColor, Color: colors[1]},
		}
		var vi, ai []uint32
		if nearFirst {
			vi = []uint32{0, 2, 1, 3, 5, 4}
		} else {
			vi = []uint32{3, 5, 4, 0, 2, 1}
		}
		ai = vi
		arena := scene.NewArena(vertices, vi, attrs, ai, nil)
		r := New(arena, NewCamera())
		pixels := newTestPixels(100)
		r.Render(pixels, Input{})
		return pixels
	}

	vertices := append(append([]math3d.Vec3{}, near[:]...), far[:]...)
	red, blue := math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)

	firstOrder := render(vertices, [2]math3d.Vec3{red, blue}, true)
	secondOrder := render(vertices, [2]math3d.Vec3{red, blue}, false)

	center := 50
	w1 := firstOrder.At(center, center)
	w2 := secondOrder.At(center, center)
	if w1 != w2 {
		t.Fatalf("S4: draw order changed the result: %#06x vs %#06x", w1, w2)
	}
	r1, b1 := (w1>>16)&0xFF, w1&0xFF
	if r1 == 0 || b1 != 0 {
		t.Fatalf("S4: center pixel %#06x should be red (nearer triangle), not blue", w1)
	}
}

// TestS6_BackfaceCulled exercises boundary scenario S6: the same footprint
// as S1, wound the other way, must not draw any pixels.
func TestS6_BackfaceCulled(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -2),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 1, 2})
	r := New(arena, NewCamera())
	pixels := newTestPixels(100)

	r.Render(pixels, Input{})

	if n := countNonBackground(pixels); n != 0 {
		t.Errorf("S6: back-facing triangle should be culled, got %d pixels", n)
	}
}

// TestRenderDeterministic exercises §8 invariant 5: re-rasterizing the
// same scene with no camera change produces a bit-identical image.
func TestRenderDeterministic(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -2),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(0.4, 0.7, 0.2), [3]int{0, 2, 1})
	r := New(arena, NewCamera())
	pixels := newTestPixels(64)

	r.Render(pixels, Input{})
	first := append([]uint32(nil), pixels.Buffer...)

	r.Render(pixels, Input{})
	second := pixels.Buffer

	if len(first) != len(second) {
		t.Fatalf("buffer length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("pixel %d changed across identical frames: %#06x vs %#06x", i, first[i], second[i])
		}
	}
}

// TestScanConverterStaysInBounds exercises §8 invariant 4: no write lands
// outside [0,W)x[0,H) even for a triangle whose bounding box extends far
// past the screen.
func TestScanConverterStaysInBounds(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-50, -50, -1),
		math3d.V3(50, -50, -1),
		math3d.V3(0, 50, -1),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 2, 1})
	r := New(arena, NewCamera())
	pixels := newTestPixels(20)

	// PixelData.Set does not bounds-check, so a write past either end of
	// the buffer panics here, which the test runner reports as a failure.
	r.Render(pixels, Input{})

	if countNonBackground(pixels) == 0 {
		t.Fatal("expected the oversized triangle to still cover the screen")
	}
}

// TestClipperOneVertexBehindGrowsArena exercises §8 scenario 9: a triangle
// with exactly one vertex behind near produces two sub-triangles, which
// requires the clipper to append into the arena.
func TestClipperOneVertexBehindGrowsArena(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -0.05), // only this vertex is behind near
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 2, 1})
	r := New(arena, NewCamera())
	pixels := newTestPixels(100)

	r.Render(pixels, Input{})

	if arena.TriangleCount() != 2 {
		t.Fatalf("one-vertex-behind clip should append a second triangle, TriangleCount() = %d", arena.TriangleCount())
	}
	if arena.VertexCount != 5 {
		t.Fatalf("one-vertex-behind clip should append 2 vertices, VertexCount = %d, want 5", arena.VertexCount)
	}
	for i := 0; i < arena.TriangleCount(); i++ {
		for k := 0; k < 3; k++ {
			vidx := arena.VertexIndices[i*3+k]
			z := r.rasterVerts[vidx].Z
			if z < Near-1e-9 {
				t.Errorf("triangle %d vertex %d has rv.Z = %v, want >= near (%v)", i, k, z, Near)
			}
		}
	}
}

// TestClipperTwoVerticesBehindNoGrowth exercises §8 scenario 10: two
// vertices behind near overwrites the existing triangle in place with no
// arena growth.
func TestClipperTwoVerticesBehindNoGrowth(t *testing.T) {
	positions := [3]math3d.Vec3{
		math3d.V3(-1, -1, -0.05),
		math3d.V3(1, -1, -0.05),
		math3d.V3(0, 1, -2),
	}
	arena := singleColorTriangleArena(positions, math3d.V3(1, 1, 1), [3]int{0, 2, 1})
	r := New(arena, NewCamera())
	pixels := newTestPixels(100)

	r.Render(pixels, Input{})

	if arena.TriangleCount() != 1 {
		t.Fatalf("two-vertices-behind clip should not grow the triangle count, got %d", arena.TriangleCount())
	}
	if arena.VertexCount != 3 {
		t.Fatalf("two-vertices-behind clip should not append vertices, VertexCount = %d, want 3", arena.VertexCount)
	}
	for k := 0; k < 3; k++ {
		vidx := arena.VertexIndices[k]
		if z := r.rasterVerts[vidx].Z; z < Near-1e-9 {
			t.Errorf("vertex %d has rv.Z = %v, want >= near (%v)", k, z, Near)
		}
	}
}

// TestProjectMatchesFormula pins down §4.2's raster-space projection
// formula directly.
func TestProjectMatchesFormula(t *testing.T) {
	c := math3d.V3(2, -1, -4)
	factor := 120.0
	rv := Project(c, factor, 200, 100)

	wantX := c.X*factor/-c.Z + 100
	wantY := -c.Y*factor/-c.Z + 50
	wantZ := 4.0

	if math.Abs(rv.X-wantX) > 1e-9 || math.Abs(rv.Y-wantY) > 1e-9 || math.Abs(rv.Z-wantZ) > 1e-9 {
		t.Errorf("Project(%v) = %+v, want (%v, %v, %v)", c, rv, wantX, wantY, wantZ)
	}
}

// buildMipMarkerAtlas fills the level-256 and level-4 mip blocks of a
// single-texture atlas with solid, easily distinguished marker colors
// (§4.6's mip-pyramid layout), leaving every other level zeroed.
func buildMipMarkerAtlas() []uint32 {
	atlas := make([]uint32, scene.AtlasWordsPerTexture)
	fill := func(side int, color uint32) {
		offset := 511 &^ (2*side - 1)
		for y := 0; y < side; y++ {
			row := (offset + y) << 9
			for x := 0; x < side; x++ {
				atlas[row+offset+x] = color
			}
		}
	}
	fill(256, 0x0000FF00) // pure green marks the full-resolution block
	fill(4, 0x00FF00FF)   // pure magenta marks the heavily minified block
	return atlas
}

// textureTriangleWithScreenLeg builds a single textured right triangle
// (right angle at (-1,-1), legs along +X to (1,-1) and +Y to (-1,1), UV
// (0,0)/(1,0)/(0,1) at the matching corners) placed at whatever camera-space
// depth makes its two screen-space legs exactly legScreen pixels long, for
// the given square viewport height. Because the triangle lies in a plane of
// constant camera-space depth, its UV varies affinely in screen space, so
// this gives exact control over the mip-level input (§4.6) rather than an
// incidental one.
func textureTriangleWithScreenLeg(height int, legScreen float64, atlas []uint32) *scene.Arena {
	factor := Near * float64(height) / (2 * Scale)
	z := -2 * factor / legScreen

	positions := []math3d.Vec3{
		math3d.V3(-1, -1, z),
		math3d.V3(1, -1, z),
		math3d.V3(-1, 1, z),
	}
	attrs := []scene.VertexAttribute{
		{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscTexture, TexIndex: 0, UV: math3d.V2(0, 0)},
		{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscTexture, TexIndex: 0, UV: math3d.V2(1, 0)},
		{Normal: math3d.V3(0, 0, 1), Disc: scene.DiscTexture, TexIndex: 0, UV: math3d.V2(0, 1)},
	}
	vi := []uint32{0, 2, 1}
	ai := []uint32{0, 2, 1}
	return scene.NewArena(positions, vi, attrs, ai, atlas)
}

// TestS5_MipLevelTracksScreenFootprint exercises boundary scenario S5
// end-to-end through Renderer.Render (not just the shader helpers tested in
// isolation in shader_test.go): a textured triangle with an on-screen
// footprint of about 256x256 pixels must sample the 256 mip block, and
// shrinking the same triangle to about 4x4 pixels must drop the sampled
// block down to the 4 level.
func TestS5_MipLevelTracksScreenFootprint(t *testing.T) {
	const height = 300
	atlas := buildMipMarkerAtlas()

	// The centroid of the right triangle described above projects to
	// (W/2 - f/3, H/2 + f/3), where f is half the screen-space leg length;
	// sampling there stays well inside the triangle for any leg size used
	// below and avoids the atlas's block-edge pixels.
	sampleCentroid := func(legScreen float64) uint32 {
		arena := textureTriangleWithScreenLeg(height, legScreen, atlas)
		r := New(arena, NewCamera())
		pixels := newTestPixels(height)
		r.Render(pixels, Input{})

		f := legScreen / 2
		cx := float64(height)/2 - f/3
		cy := float64(height)/2 + f/3
		return pixels.At(int(cx), int(cy))
	}

	big := sampleCentroid(260)
	rBig, gBig, bBig := (big>>16)&0xFF, (big>>8)&0xFF, big&0xFF
	if rBig != 0 || gBig == 0 || bBig != 0 {
		t.Fatalf("S5: 256-footprint centroid = %#06x, want lit green (level-256 marker)", big)
	}

	small := sampleCentroid(4)
	rSmall, gSmall, bSmall := (small>>16)&0xFF, (small>>8)&0xFF, small&0xFF
	if rSmall == 0 || gSmall != 0 || bSmall == 0 {
		t.Fatalf("S5: 4x4-footprint centroid = %#06x, want lit magenta (level-4 marker)", small)
	}
}
