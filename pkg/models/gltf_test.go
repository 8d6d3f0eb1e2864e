package models

import (
	"testing"

	"github.com/qmuntal/gltf"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

// TestProcessMaterials verifies glTF PBR material factors land in the
// mesh's material table, and that a material with no PBR block at all
// falls back to opaque white.
func TestProcessMaterials(t *testing.T) {
	metallic := float64(0.25)
	roughness := float64(0.75)
	baseColor := [4]float64{0.2, 0.4, 0.6, 1}

	doc := &gltf.Document{
		Materials: []*gltf.Material{
			{
				Name: "hull",
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
					BaseColorFactor: &baseColor,
					MetallicFactor:  &metallic,
					RoughnessFactor: &roughness,
				},
			},
			{Name: "bare"},
		},
	}

	mesh := NewMesh("test")
	processMaterials(doc, mesh)

	if mesh.MaterialCount() != 2 {
		t.Fatalf("MaterialCount() = %d, want 2", mesh.MaterialCount())
	}

	hull := mesh.GetMaterial(0)
	if hull.Name != "hull" {
		t.Errorf("hull.Name = %q, want %q", hull.Name, "hull")
	}
	if hull.BaseColor != [4]float64{0.2, 0.4, 0.6, 1} {
		t.Errorf("hull.BaseColor = %v, want {0.2, 0.4, 0.6, 1}", hull.BaseColor)
	}
	if hull.Metallic != 0.25 || hull.Roughness != 0.75 {
		t.Errorf("hull metallic/roughness = %v/%v, want 0.25/0.75", hull.Metallic, hull.Roughness)
	}

	bare := mesh.GetMaterial(1)
	if bare.BaseColor != [4]float64{1, 1, 1, 1} {
		t.Errorf("bare.BaseColor = %v, want opaque white default", bare.BaseColor)
	}
	if bare.Metallic != 1 || bare.Roughness != 1 {
		t.Errorf("bare metallic/roughness = %v/%v, want 1/1 defaults", bare.Metallic, bare.Roughness)
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Error("NewGLTFLoader returned nil")
		return
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
}
