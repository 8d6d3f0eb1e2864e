package render

// PixelData is the caller-owned destination buffer of §6: a flat array of
// W*H 32-bit words in 0x00RRGGBB order (BGRX byte order on a little-endian
// machine), mirroring the render.hpp PixelData struct this pipeline is
// specified against. The caller allocates and owns Buffer; the core only
// overwrites it.
type PixelData struct {
	Buffer        []uint32
	Width, Height int
}

// NewPixelData allocates a caller-owned pixel buffer of the given
// dimensions.
func NewPixelData(width, height int) *PixelData {
	return &PixelData{Buffer: make([]uint32, width*height), Width: width, Height: height}
}

// BytesPerPixel is always 4: one packed 0x00RRGGBB word per pixel.
func (p *PixelData) BytesPerPixel() int { return 4 }

// BufferSize is the buffer's size in bytes, matching render.hpp's
// bufferSize field.
func (p *PixelData) BufferSize() int { return p.Width * p.Height * 4 }

// Resize grows or shrinks Buffer to match new dimensions, reusing the
// existing backing array when it is already large enough.
func (p *PixelData) Resize(width, height int) {
	p.Width, p.Height = width, height
	n := width * height
	if cap(p.Buffer) < n {
		p.Buffer = make([]uint32, n)
		return
	}
	p.Buffer = p.Buffer[:n]
}

// Clear fills the buffer with a packed 0x00RRGGBB color.
func (p *PixelData) Clear(color uint32) {
	for i := range p.Buffer {
		p.Buffer[i] = color
	}
}

// Set writes a packed color at (x, y). The scan converter never calls this
// out of bounds (§8 invariant 4); Set does not bounds-check on the hot
// path.
func (p *PixelData) Set(x, y int, color uint32) {
	p.Buffer[y*p.Width+x] = color
}

// At reads back the packed color at (x, y).
func (p *PixelData) At(x, y int) uint32 {
	return p.Buffer[y*p.Width+x]
}
