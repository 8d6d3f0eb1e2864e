package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/taigrr/scanline/pkg/scene"
)

const baseMipSide = 256

// loadTexture decodes a source image via the standard image codecs. Only
// PNG and JPEG decoders are registered; other formats fail to decode.
func loadTexture(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bake: open texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("bake: decode texture %s: %w", path, err)
	}
	return img, nil
}

// bakeAtlas builds the fixed 512x512 mip-pyramid atlas block of §4.6 for one
// source texture: resize to the 256x256 finest level, then repeatedly
// box-filter downsample by half down to 1x1, packing each level into its
// fixed position in the word buffer.
func bakeAtlas(src image.Image) []uint32 {
	level := resizeTo(src, baseMipSide)
	atlas := make([]uint32, scene.AtlasWordsPerTexture)

	for side := baseMipSide; side >= 1; side /= 2 {
		placeLevel(atlas, level, side)
		if side == 1 {
			break
		}
		level = boxDownsample(level, side/2)
	}
	return atlas
}

// resizeTo scales src down (or up) to an side x side RGBA image using a
// bilinear filter.
func resizeTo(src image.Image, side int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// boxDownsample halves img's side length by averaging each 2x2 block,
// grounded on the box-filter mip-halving idiom used elsewhere in this
// domain's renderers.
func boxDownsample(img *image.RGBA, side int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			var r, g, b uint32
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					c := img.RGBAAt(x*2+dx, y*2+dy)
					r += uint32(c.R)
					g += uint32(c.G)
					b += uint32(c.B)
				}
			}
			dst.SetRGBA(x, y, color.RGBA{R: uint8(r / 4), G: uint8(g / 4), B: uint8(b / 4), A: 255})
		}
	}
	return dst
}

// checkerAtlas builds a baked atlas for an 8x8 black/white checkerboard,
// used as the fallback texture when no --texture path is given.
func checkerAtlas() []uint32 {
	base := image.NewRGBA(image.Rect(0, 0, baseMipSide, baseMipSide))
	const cell = baseMipSide / 8
	for y := 0; y < baseMipSide; y++ {
		for x := 0; x < baseMipSide; x++ {
			c := color.RGBA{A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c.R, c.G, c.B = 220, 220, 220
			} else {
				c.R, c.G, c.B = 40, 40, 40
			}
			base.SetRGBA(x, y, c)
		}
	}
	return bakeAtlas(base)
}

// placeLevel writes one square mip level into its fixed atlas slot, using
// the same "511 AND NOT (2*side-1)" block-origin formula the fragment
// shader's sampleAtlas uses to fetch it back (§4.6).
func placeLevel(atlas []uint32, img *image.RGBA, side int) {
	offset := 511 &^ (2*side - 1)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			c := img.RGBAAt(x, y)
			word := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			atlas[(offset+x)+((offset+y)<<9)] = word
		}
	}
}
