package scene

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/scanline/pkg/math3d"
	"golang.org/x/sys/unix"
)

// SearchPaths returns the ordered list of paths to try for the scene file
// next to execPath (typically os.Args[0]), per §6: colocated data.bin
// first, then ../data-generator/data.bin relative to it for CLI runs.
func SearchPaths(execPath string) []string {
	dir := filepath.Dir(execPath)
	return []string{
		filepath.Join(dir, "data.bin"),
		filepath.Join(dir, "..", "data-generator", "data.bin"),
	}
}

// Load searches the given paths in order and decodes the first one that
// opens successfully. It returns ErrSceneNotFound if none do.
func Load(paths []string) (*Arena, error) {
	var data []byte
	var closer func()
	var lastErr error
	for _, p := range paths {
		d, c, err := mapFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		data, closer = d, c
		break
	}
	if data == nil {
		if lastErr == nil {
			lastErr = ErrSceneNotFound
		}
		return nil, ErrSceneNotFound
	}
	defer closer()
	return Decode(data)
}

// mapFile mmaps path read-only. When the mmap call fails it falls back to a
// plain read into a heap buffer, so the decoder always sees the same []byte
// shape regardless of path taken.
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size() == 0 {
		return nil, nil, fmt.Errorf("scene: %s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		// Fall back to a heap read; some filesystems (overlayfs variants,
		// certain container mounts) reject mmap on regular files.
		buf, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, nil, rerr
		}
		return buf, func() {}, nil
	}
	return data, func() { _ = unix.Munmap(data) }, nil
}

// cursor is a forward-only little-endian byte reader over a memory-mapped
// (or heap) scene file.
type cursor struct {
	data []byte
	pos  int64
}

func (c *cursor) u64() uint64 {
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v
}

func (c *cursor) u32() uint32 {
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v
}

func (c *cursor) f32() float32 {
	bits := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return math.Float32frombits(bits)
}

func (c *cursor) skip(n int64) {
	c.pos += n
}

// Decode parses the five little-endian sections of §6 out of a raw scene
// buffer (as produced by mmap or ReadFile) into an Arena.
func Decode(data []byte) (*Arena, error) {
	c := &cursor{data: data}

	// Section 1: vertices.
	vertexCount := int(c.u64())
	c.u64() // padding
	vertices := make([]math3d.Vec3, vertexCount)
	for i := range vertices {
		x, y, z := float64(c.f32()), float64(c.f32()), float64(c.f32())
		c.f32() // w, always 1
		vertices[i] = math3d.V3(x, y, z)
	}

	// Section 2: vertex indices.
	viWordCount := int(c.u64())
	c.u64() // padding
	viTriCount := viWordCount / 3
	viCount := viTriCount * 3
	vertexIndices := make([]uint32, viCount)
	for i := 0; i < viCount; i++ {
		vertexIndices[i] = uint32(c.u64())
	}
	c.skip(int64(viWordCount-viCount) * 8)

	// Section 3: attributes.
	attrCount := int(c.u64())
	c.u64() // padding
	attributes := make([]VertexAttribute, attrCount)
	for i := range attributes {
		offset := c.pos
		nx, ny, nz := float64(c.f32()), float64(c.f32()), float64(c.f32())
		c.f32() // normal.w, unused
		var attr VertexAttribute
		attr.Normal = math3d.V3(nx, ny, nz)

		// Read the union as if color first, then possibly reinterpret once
		// the discriminator (at the end of the record) is known.
		u0, u1, u2 := c.u32(), c.u32(), c.u32()
		c.u32() // 4 bytes padding after the 12-byte union
		disc := c.u32()

		switch Discriminator(disc) {
		case DiscColor:
			attr.Disc = DiscColor
			attr.Color = math3d.V3(
				float64(math.Float32frombits(u0)),
				float64(math.Float32frombits(u1)),
				float64(math.Float32frombits(u2)),
			)
		case DiscTexture:
			attr.Disc = DiscTexture
			attr.TexIndex = u0
			attr.UV = math3d.V2(
				float64(math.Float32frombits(u1)),
				float64(math.Float32frombits(u2)),
			)
		default:
			return nil, &MalformedScene{
				Reason:        "unknown attribute discriminator",
				Discriminator: disc,
				AttributeIdx:  i,
				ByteOffset:    offset,
			}
		}
		attributes[i] = attr
	}

	// Section 4: attribute indices.
	aiWordCount := int(c.u64())
	c.u64() // padding
	aiTriCount := aiWordCount / 3
	aiCount := aiTriCount * 3
	attributeIndices := make([]uint32, aiCount)
	for i := 0; i < aiCount; i++ {
		attributeIndices[i] = uint32(c.u64())
	}
	c.skip(int64(aiWordCount-aiCount) * 8)

	// Section 5: texture atlas words.
	texWordCount := int(c.u64())
	c.u64() // padding
	textures := make([]uint32, texWordCount)
	for i := range textures {
		textures[i] = c.u32()
	}

	triCount := viTriCount
	if aiTriCount < triCount {
		triCount = aiTriCount
	}
	vertexIndices = vertexIndices[:triCount*3]
	attributeIndices = attributeIndices[:triCount*3]

	return NewArena(vertices, vertexIndices, attributes, attributeIndices, textures), nil
}
