package main

import (
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/scene"
)

// addGLTF lowers an external glTF/GLB mesh's positions/normals/UVs/indices
// into the builder's shared accumulators (§13). If the asset yields a
// texture (embedded or referenced by URI), it is baked into a new atlas slot and referenced by
// every face; otherwise each face falls back to its glTF material's base
// color, or flat gray if the face has no material.
func (b *builder) addGLTF(path string, transform func(math3d.Vec3) math3d.Vec3) error {
	mesh, texImg, err := models.LoadGLBWithTexture(path)
	if err != nil {
		return fmt.Errorf("bake: load gltf %s: %w", path, err)
	}

	hasTexture := texImg != nil
	var texIndex uint32
	if hasTexture {
		texIndex = b.addTexture(bakeAtlas(texImg))
	}

	base := uint32(len(b.vertices))
	for _, mv := range mesh.Vertices {
		pos := mv.Position
		if transform != nil {
			pos = transform(pos)
		}
		b.vertices = append(b.vertices, pos)
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		vi := [3]uint32{base + uint32(face[0]), base + uint32(face[1]), base + uint32(face[2])}
		b.vertexIndices = append(b.vertexIndices, vi[0], vi[1], vi[2])

		fallback := math3d.V3(0.7, 0.7, 0.7)
		if mat := mesh.GetMaterial(mesh.GetFaceMaterial(i)); mat != nil {
			fallback = math3d.V3(mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2])
		}

		attrBase := uint32(len(b.attributes))
		for _, vIdx := range face {
			mv := mesh.Vertices[vIdx]
			attr := scene.VertexAttribute{Normal: mv.Normal}
			if hasTexture {
				attr.Disc = scene.DiscTexture
				attr.TexIndex = texIndex
				attr.UV = mv.UV
			} else {
				attr.Disc = scene.DiscColor
				attr.Color = fallback
			}
			b.attributes = append(b.attributes, attr)
		}
		b.attributeIndices = append(b.attributeIndices, attrBase, attrBase+1, attrBase+2)
	}

	bakeLogger.Printf("gltf %s: %d materials", path, mesh.MaterialCount())
	return nil
}
