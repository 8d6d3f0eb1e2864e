package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// writeScene emits the five little-endian sections of §6, in order, with
// even-padding on the two index sections.
func writeScene(path string, b *builder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bake: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	writeVertices(w, b.vertices)
	writeIndices(w, b.vertexIndices)
	writeAttributes(w, b.attributes)
	writeIndices(w, b.attributeIndices)
	writeTextures(w, b.textures)

	return w.Flush()
}

func u64(w *bufio.Writer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func u32(w *bufio.Writer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func f32(w *bufio.Writer, v float64) {
	u32(w, math.Float32bits(float32(v)))
}

// writeVertices emits section 1: vertex count, padding, then (x,y,z,1) per
// vertex.
func writeVertices(w *bufio.Writer, vertices []math3d.Vec3) {
	u64(w, uint64(len(vertices)))
	u64(w, 0)
	for _, v := range vertices {
		f32(w, v.X)
		f32(w, v.Y)
		f32(w, v.Z)
		f32(w, 1)
	}
}

func writeTextures(w *bufio.Writer, textures [][]uint32) {
	total := 0
	for _, t := range textures {
		total += len(t)
	}
	u64(w, uint64(total))
	u64(w, 0)
	for _, t := range textures {
		for _, word := range t {
			u32(w, word)
		}
	}
}

// writeIndices emits an index section (2 or 4): the element count rounded
// up to even, padding, the indices themselves as u64, then zero-padding to
// the rounded count.
func writeIndices(w *bufio.Writer, indices []uint32) {
	n := len(indices)
	padded := n
	if padded%2 != 0 {
		padded++
	}
	u64(w, uint64(padded))
	u64(w, 0)
	for _, idx := range indices {
		u64(w, uint64(idx))
	}
	for i := n; i < padded; i++ {
		u64(w, 0)
	}
}

// writeAttributes emits section 3: attribute count, padding, then per
// attribute a 16-byte normal, a 12-byte union, 4 bytes of padding, and a
// 4-byte discriminator.
func writeAttributes(w *bufio.Writer, attrs []scene.VertexAttribute) {
	u64(w, uint64(len(attrs)))
	u64(w, 0)
	for _, a := range attrs {
		f32(w, a.Normal.X)
		f32(w, a.Normal.Y)
		f32(w, a.Normal.Z)
		f32(w, 0) // normal.w, unused

		switch a.Disc {
		case scene.DiscColor:
			f32(w, a.Color.X)
			f32(w, a.Color.Y)
			f32(w, a.Color.Z)
		case scene.DiscTexture:
			u32(w, a.TexIndex)
			f32(w, a.UV.X)
			f32(w, a.UV.Y)
		}
		u32(w, 0) // padding after the 12-byte union
		u32(w, uint32(a.Disc))
	}
}
