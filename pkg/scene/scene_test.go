package scene

import (
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

func triArena() *Arena {
	vertices := []math3d.Vec3{
		math3d.V3(-1, -1, -2),
		math3d.V3(1, -1, -2),
		math3d.V3(0, 1, -2),
	}
	attrs := []VertexAttribute{
		{Normal: math3d.V3(0, 0, 1), Disc: DiscColor, Color: math3d.V3(1, 1, 1)},
		{Normal: math3d.V3(0, 0, 1), Disc: DiscColor, Color: math3d.V3(1, 1, 1)},
		{Normal: math3d.V3(0, 0, 1), Disc: DiscColor, Color: math3d.V3(1, 1, 1)},
	}
	vi := []uint32{0, 1, 2}
	ai := []uint32{0, 1, 2}
	return NewArena(vertices, vi, attrs, ai, nil)
}

func TestNewArenaSizing(t *testing.T) {
	a := triArena()

	if len(a.Vertices) != 6 {
		t.Errorf("Vertices cap = %d, want 6 (2x source count)", len(a.Vertices))
	}
	if len(a.VertexIndices) != 6 {
		t.Errorf("VertexIndices cap = %d, want 6", len(a.VertexIndices))
	}
	if len(a.Attributes) != 6 {
		t.Errorf("Attributes cap = %d, want 6", len(a.Attributes))
	}
	if a.VertexCount != 3 || a.IndexCount != 3 || a.AttrCount != 3 {
		t.Errorf("in-use counts after construction = (%d,%d,%d), want (3,3,3)",
			a.VertexCount, a.IndexCount, a.AttrCount)
	}
	if a.TriangleCount() != 1 {
		t.Errorf("TriangleCount() = %d, want 1", a.TriangleCount())
	}
}

func TestArenaResetFrameDiscardsGrowth(t *testing.T) {
	a := triArena()

	a.AppendVertex(math3d.V3(9, 9, 9))
	a.AppendAttribute(VertexAttribute{Disc: DiscColor})
	a.AppendTriangle([3]uint32{0, 1, 3}, [3]uint32{0, 1, 3})

	if a.VertexCount != 4 || a.AttrCount != 4 || a.IndexCount != 6 {
		t.Fatalf("counts after growth = (%d,%d,%d), want (4,4,6)", a.VertexCount, a.AttrCount, a.IndexCount)
	}

	a.ResetFrame()
	if a.VertexCount != 3 || a.AttrCount != 3 || a.IndexCount != 3 {
		t.Errorf("counts after ResetFrame = (%d,%d,%d), want (3,3,3)", a.VertexCount, a.AttrCount, a.IndexCount)
	}
	if a.TriangleCount() != 1 {
		t.Errorf("TriangleCount() after reset = %d, want 1", a.TriangleCount())
	}
}

func TestArenaAppendExhaustionPanics(t *testing.T) {
	a := triArena() // capacity 6 vertices, 3 already in use

	a.AppendVertex(math3d.Zero3())
	a.AppendVertex(math3d.Zero3())
	if a.VertexCount != 5 {
		t.Fatalf("VertexCount = %d, want 5", a.VertexCount)
	}
	a.AppendVertex(math3d.Zero3()) // fills the 6th and last slot
	if a.VertexCount != 6 {
		t.Fatalf("VertexCount = %d, want 6", a.VertexCount)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("AppendVertex past capacity should panic")
		}
		if _, ok := r.(ArenaExhausted); !ok {
			t.Errorf("panic value = %#v, want ArenaExhausted", r)
		}
	}()
	a.AppendVertex(math3d.Zero3())
}

func TestVertexAttributeLerpColor(t *testing.T) {
	a := VertexAttribute{Normal: math3d.V3(0, 0, 1), Disc: DiscColor, Color: math3d.V3(0, 0, 0)}
	b := VertexAttribute{Normal: math3d.V3(0, 0, 1), Disc: DiscColor, Color: math3d.V3(1, 1, 1)}

	mid := a.Lerp(b, 0.5)
	if mid.Disc != DiscColor {
		t.Fatalf("Lerp result discriminator = %v, want DiscColor", mid.Disc)
	}
	want := math3d.V3(0.5, 0.5, 0.5)
	if mid.Color != want {
		t.Errorf("Lerp(0.5).Color = %v, want %v", mid.Color, want)
	}
}

func TestVertexAttributeLerpTextureKeepsFromIndex(t *testing.T) {
	a := VertexAttribute{Disc: DiscTexture, TexIndex: 3, UV: math3d.V2(0, 0)}
	b := VertexAttribute{Disc: DiscTexture, TexIndex: 7, UV: math3d.V2(1, 1)}

	mid := a.Lerp(b, 0.25)
	if mid.TexIndex != 3 {
		t.Errorf("Lerp keeps from-endpoint TexIndex = %d, want 3 (§4.3: keep index from endpoint i)", mid.TexIndex)
	}
	want := math3d.V2(0.25, 0.25)
	if mid.UV != want {
		t.Errorf("Lerp(0.25).UV = %v, want %v", mid.UV, want)
	}
}
