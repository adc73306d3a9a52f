package render

import (
	"image"
	"image/color"

	wad "github.com/stuarthighley/wadrender"
)

// Surface is the frame buffer the drawers write to. Exactly one of Pix8 and
// Pix32 is in use, depending on Is8Bit. Pitch is in pixels.
type Surface interface {
	Width() int
	Height() int
	Pitch() int
	Is8Bit() bool
	Pix8() []byte
	Pix32() []uint32

	// Palette maps palette indices to 0xAARRGGBB colors for 32-bit
	// surfaces and for blending on 8-bit ones.
	Palette() *[256]uint32
}

// Canvas is an in-memory Surface.
type Canvas struct {
	width, height, pitch int
	is8Bit               bool
	pix8                 []byte
	pix32                []uint32
	palette              [256]uint32
}

// NewCanvas allocates a width x height canvas. Palettized canvases hold one
// byte per pixel, the others one 0xAARRGGBB word. The palette starts as a
// grey ramp.
func NewCanvas(width, height int, is8Bit bool) *Canvas {
	c := &Canvas{width: width, height: height, pitch: width, is8Bit: is8Bit}
	if is8Bit {
		c.pix8 = make([]byte, width*height)
	} else {
		c.pix32 = make([]uint32, width*height)
	}
	for i := range c.palette {
		v := uint32(i)
		c.palette[i] = 0xff000000 | v<<16 | v<<8 | v
	}
	return c
}

func (c *Canvas) Width() int            { return c.width }
func (c *Canvas) Height() int           { return c.height }
func (c *Canvas) Pitch() int            { return c.pitch }
func (c *Canvas) Is8Bit() bool          { return c.is8Bit }
func (c *Canvas) Pix8() []byte          { return c.pix8 }
func (c *Canvas) Pix32() []uint32       { return c.pix32 }
func (c *Canvas) Palette() *[256]uint32 { return &c.palette }

// SetPalette loads a PLAYPAL palette.
func (c *Canvas) SetPalette(p *wad.Palette) {
	for i, rgb := range p {
		c.palette[i] = 0xff000000 | uint32(rgb.Red)<<16 | uint32(rgb.Green)<<8 | uint32(rgb.Blue)
	}
}

// Offset returns the index of pixel (x, y) in the pixel slice.
func (c *Canvas) Offset(x, y int) int {
	return y*c.pitch + x
}

// Clear fills the canvas with palette index idx.
func (c *Canvas) Clear(idx byte) {
	if c.is8Bit {
		for i := range c.pix8 {
			c.pix8[i] = idx
		}
		return
	}
	for i := range c.pix32 {
		c.pix32[i] = c.palette[idx]
	}
}

// At returns the raw pixel at (x, y): a palette index on 8-bit canvases,
// a 0xAARRGGBB color otherwise.
func (c *Canvas) At(x, y int) uint32 {
	if c.is8Bit {
		return uint32(c.pix8[c.Offset(x, y)])
	}
	return c.pix32[c.Offset(x, y)]
}

// Image returns a copy of the canvas as an image.
func (c *Canvas) Image() image.Image {
	rect := image.Rect(0, 0, c.width, c.height)
	if c.is8Bit {
		pal := make(color.Palette, len(c.palette))
		for i, v := range c.palette {
			pal[i] = argb(v)
		}
		img := image.NewPaletted(rect, pal)
		for y := range c.height {
			copy(img.Pix[y*img.Stride:], c.pix8[y*c.pitch:y*c.pitch+c.width])
		}
		return img
	}
	img := image.NewRGBA(rect)
	for y := range c.height {
		for x := range c.width {
			img.SetRGBA(x, y, argb(c.pix32[c.Offset(x, y)]))
		}
	}
	return img
}

func argb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
}
