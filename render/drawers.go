package render

import (
	"github.com/stuarthighley/wadrender/fixed"
)

// ColumnMode says how a column's texels are combined with the surface.
type ColumnMode int

const (
	ColumnNormal      ColumnMode = iota
	ColumnTranslucent            // blended with the surface by TransLevel
	ColumnTranslated             // remapped through Translation first
	ColumnFuzz                   // darkened copy of nearby surface pixels
)

// ColumnParams describe one vertical run of pixels.
type ColumnParams struct {
	X, YL, YH int // inclusive rows

	Source        []byte      // texels, top to bottom
	TextureHeight int         // rows before Source repeats; 0 clamps at the ends
	TextureFrac   fixed.Fixed // texel row of pixel YL
	IScale        fixed.Fixed // texel rows per pixel

	Colormap    []byte      // 256 entry light map
	Translation []byte      // 256 entry remap for ColumnTranslated
	TransLevel  fixed.Fixed // source weight for ColumnTranslucent
	Color       byte        // palette index for FillColumn
}

// SpanParams describe one horizontal run of a 64x64 flat.
type SpanParams struct {
	Y, X1, X2 int // inclusive columns

	Source       []byte // 4096 texels, row-major
	XFrac, YFrac fixed.Fixed
	XStep, YStep fixed.Fixed
	Colormap     []byte
	Color        byte // palette index for FillSpan
}

// BatchSlot is the draw state of one column of a batch.
type BatchSlot struct {
	Mode        ColumnMode
	Colormap    []byte
	Translation []byte
	TransLevel  fixed.Fixed
}

// BatchParams describe four adjacent columns rendered into an interleaved
// buffer: row y of slot i is Texels[y*4+i], and is present when bit i of
// Mask[y] is set.
type BatchParams struct {
	X          int
	MinY, MaxY int
	Texels     []byte
	Mask       []uint8
	Slots      [4]BatchSlot
}

// Drawers is the set of pixel writers for one surface. The renderer only
// ever calls these; which implementation sits behind them is chosen once by
// NewDrawers.
type Drawers struct {
	DrawColumn            func(*ColumnParams)
	DrawFuzzColumn        func(*ColumnParams)
	DrawTranslucentColumn func(*ColumnParams)
	DrawTranslatedColumn  func(*ColumnParams)
	FillColumn            func(*ColumnParams)
	DrawSpan              func(*SpanParams)
	FillSpan              func(*SpanParams)

	// DrawColumnTexels writes unlit texels of a column into dst, one every
	// pitch bytes starting at dst[0] for row YL.
	DrawColumnTexels func(p *ColumnParams, dst []byte, pitch int)

	// DrawBatch lights a batch and copies it to the surface.
	DrawBatch func(*BatchParams)
}

// column returns the drawer for mode.
func (d *Drawers) column(mode ColumnMode) func(*ColumnParams) {
	switch mode {
	case ColumnTranslucent:
		return d.DrawTranslucentColumn
	case ColumnTranslated:
		return d.DrawTranslatedColumn
	case ColumnFuzz:
		return d.DrawFuzzColumn
	}
	return d.DrawColumn
}

// NewDrawers selects the drawers for s: palettized or direct color, scalar
// or wide.
func NewDrawers(s Surface, caps Capabilities) Drawers {
	if s.Is8Bit() {
		d := &drawers8{s: s, texels: make([]byte, s.Height())}
		if caps.Wide {
			return d.wideSet()
		}
		return d.scalarSet()
	}
	d := &drawers32{s: s, texels: make([]byte, s.Height())}
	if caps.Wide {
		return d.wideSet()
	}
	return d.scalarSet()
}

// fetchTexels samples len(dst) texels of a column, stepping IScale per row.
func fetchTexels(p *ColumnParams, dst []byte) {
	src := p.Source
	if len(src) == 0 {
		clear(dst)
		return
	}
	h := min(p.TextureHeight, len(src))
	frac, step := p.TextureFrac, p.IScale
	switch {
	case h > 0 && h&(h-1) == 0:
		mask := h - 1
		for i := range dst {
			dst[i] = src[int(frac>>fixed.FracBits)&mask]
			frac += step
		}
	case h > 0:
		hf := int64(h) << fixed.FracBits
		f := int64(frac) % hf
		if f < 0 {
			f += hf
		}
		st := int64(step) % hf
		if st < 0 {
			st += hf
		}
		for i := range dst {
			dst[i] = src[f>>fixed.FracBits]
			f += st
			if f >= hf {
				f -= hf
			}
		}
	default:
		last := len(src) - 1
		for i := range dst {
			dst[i] = src[fixed.Clamp(int(frac>>fixed.FracBits), 0, last)]
			frac += step
		}
	}
}

// fetchTexelsWide is fetchTexels with the power of two case unrolled.
func fetchTexelsWide(p *ColumnParams, dst []byte) {
	h := min(p.TextureHeight, len(p.Source))
	if h <= 0 || h&(h-1) != 0 {
		fetchTexels(p, dst)
		return
	}
	src, mask := p.Source, h-1
	frac, step := p.TextureFrac, p.IScale
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] = src[int(frac>>fixed.FracBits)&mask]
		dst[i+1] = src[int((frac+step)>>fixed.FracBits)&mask]
		dst[i+2] = src[int((frac+2*step)>>fixed.FracBits)&mask]
		dst[i+3] = src[int((frac+3*step)>>fixed.FracBits)&mask]
		frac += 4 * step
	}
	for ; i < len(dst); i++ {
		dst[i] = src[int(frac>>fixed.FracBits)&mask]
		frac += step
	}
}

// columnSpan clips p to the surface and returns the row count.
func columnSpan(p *ColumnParams, s Surface) int {
	if p.X < 0 || p.X >= s.Width() {
		return 0
	}
	if p.YL < 0 {
		p.TextureFrac += p.IScale * fixed.Fixed(-p.YL)
		p.YL = 0
	}
	p.YH = min(p.YH, s.Height()-1)
	return p.YH - p.YL + 1
}

func spanClip(p *SpanParams, s Surface) int {
	if p.Y < 0 || p.Y >= s.Height() {
		return 0
	}
	if p.X1 < 0 {
		p.XFrac += p.XStep * fixed.Fixed(-p.X1)
		p.YFrac += p.YStep * fixed.Fixed(-p.X1)
		p.X1 = 0
	}
	p.X2 = min(p.X2, s.Width()-1)
	return p.X2 - p.X1 + 1
}

// flatSpot returns the texel index of a flat at (xfrac, yfrac).
func flatSpot(xfrac, yfrac fixed.Fixed) int {
	return int((yfrac>>(fixed.FracBits-6))&(63*64)) + int((xfrac>>fixed.FracBits)&63)
}

// fuzzOffsets is the vanilla fuzz pattern, in rows.
var fuzzOffsets = [...]int{
	1, -1, 1, -1, 1, 1, -1,
	1, 1, -1, 1, 1, 1, -1,
	1, 1, 1, -1, -1, -1, -1,
	1, -1, -1, 1, 1, 1, 1, -1,
	1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, -1, -1, 1, 1,
	1, 1, -1, 1, 1, -1, 1,
}

// blendARGB mixes two colors, a being the weight of src.
func blendARGB(src, dst uint32, a fixed.Fixed) uint32 {
	wa := uint32(fixed.Clamp(a, 0, fixed.FracUnit))
	wb := uint32(fixed.FracUnit) - wa
	mix := func(shift uint32) uint32 {
		s := (src >> shift) & 0xff
		d := (dst >> shift) & 0xff
		return ((s*wa + d*wb) >> fixed.FracBits) & 0xff
	}
	return 0xff000000 | mix(16)<<16 | mix(8)<<8 | mix(0)
}
