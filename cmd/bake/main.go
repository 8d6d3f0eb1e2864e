// bake produces the binary scene format §6 describes: vertices, indexed
// triangles, per-vertex attributes, and a texture atlas, either generated
// procedurally or imported from a glTF asset.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/scanline/pkg/math3d"
)

var bakeLogger = log.New(os.Stderr, "bake: ", log.LstdFlags)

func main() {
	var (
		shapes      []string
		texturePath string
		gltfPath    string
		out         string
		seed        int64
	)

	root := &cobra.Command{
		Use:   "bake",
		Short: "Generate a scanline scene binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return bake(shapes, texturePath, gltfPath, out, seed)
		},
	}
	root.Flags().StringSliceVar(&shapes, "shape", []string{"triangle"}, "procedural shapes to add: triangle, tetrahedron, icosahedron (repeatable)")
	root.Flags().StringVar(&texturePath, "texture", "", "texture image for the triangle shape (PNG/JPEG)")
	root.Flags().StringVar(&gltfPath, "gltf", "", "optional glTF/GLB asset to import alongside the procedural shapes")
	root.Flags().StringVar(&out, "out", "data.bin", "output scene file path")
	root.Flags().Int64Var(&seed, "seed", 1, "random seed for tetrahedron/icosahedron orientation")

	if err := root.Execute(); err != nil {
		bakeLogger.Fatalf("%v", err)
	}
}

func bake(shapes []string, texturePath, gltfPath, out string, seed int64) error {
	b := newBuilder()
	rng := rand.New(rand.NewSource(seed))

	for _, shape := range shapes {
		switch shape {
		case "triangle":
			texIndex := uint32(0)
			if texturePath != "" {
				img, err := loadTexture(texturePath)
				if err != nil {
					return err
				}
				texIndex = b.addTexture(bakeAtlas(img))
			} else {
				texIndex = b.addTexture(checkerAtlas())
			}
			b.addTriangle(math3d.V3(0, 0, -5), 1, texIndex)
		case "tetrahedron":
			b.addTetrahedron(rng, math3d.V3(0, 0, -50), 2)
		case "icosahedron":
			b.addIcosahedron(rng, math3d.V3(0, 0, -50), 2)
		default:
			return fmt.Errorf("bake: unknown shape %q", shape)
		}
	}

	if gltfPath != "" {
		if err := b.addGLTF(gltfPath, nil); err != nil {
			return err
		}
	}

	if len(b.vertices) == 0 {
		return fmt.Errorf("bake: nothing to write, add at least one shape or --gltf")
	}

	if err := writeScene(out, b); err != nil {
		return err
	}
	bakeLogger.Printf("wrote %s: %d vertices, %d triangles, %d textures", out, len(b.vertices), len(b.vertexIndices)/3, len(b.textures))
	return nil
}
