package render

import (
	"encoding/binary"

	"github.com/stuarthighley/wadrender/fixed"
)

// drawers8 writes palette indices to an 8-bit surface.
type drawers8 struct {
	s       Surface
	texels  []byte
	fuzzPos int
	rgb     *[1 << 15]byte // 5:5:5 color to nearest palette index
}

func (d *drawers8) scalarSet() Drawers {
	return Drawers{
		DrawColumn:            d.drawColumn,
		DrawFuzzColumn:        d.drawFuzzColumn,
		DrawTranslucentColumn: d.drawTranslucentColumn,
		DrawTranslatedColumn:  d.drawTranslatedColumn,
		FillColumn:            d.fillColumn,
		DrawSpan:              d.drawSpan,
		FillSpan:              d.fillSpan,
		DrawColumnTexels:      d.drawColumnTexels,
		DrawBatch:             d.drawBatch,
	}
}

func (d *drawers8) wideSet() Drawers {
	set := d.scalarSet()
	set.DrawColumn = d.drawColumnWide
	set.DrawColumnTexels = d.drawColumnTexelsWide
	set.DrawBatch = d.drawBatchWide
	return set
}

func (d *drawers8) fetch(p *ColumnParams) []byte {
	n := columnSpan(p, d.s)
	if n <= 0 {
		return nil
	}
	t := d.texels[:n]
	fetchTexels(p, t)
	return t
}

func (d *drawers8) drawColumn(p *ColumnParams) {
	t := d.fetch(p)
	pix, pitch := d.s.Pix8(), d.s.Pitch()
	off := p.YL*pitch + p.X
	for _, v := range t {
		pix[off] = p.Colormap[v]
		off += pitch
	}
}

func (d *drawers8) drawColumnWide(p *ColumnParams) {
	n := columnSpan(p, d.s)
	if n <= 0 {
		return
	}
	t := d.texels[:n]
	fetchTexelsWide(p, t)
	pix, pitch, cm := d.s.Pix8(), d.s.Pitch(), p.Colormap
	off := p.YL*pitch + p.X
	i := 0
	for ; i+4 <= n; i += 4 {
		pix[off] = cm[t[i]]
		pix[off+pitch] = cm[t[i+1]]
		pix[off+2*pitch] = cm[t[i+2]]
		pix[off+3*pitch] = cm[t[i+3]]
		off += 4 * pitch
	}
	for ; i < n; i++ {
		pix[off] = cm[t[i]]
		off += pitch
	}
}

func (d *drawers8) drawTranslatedColumn(p *ColumnParams) {
	t := d.fetch(p)
	pix, pitch := d.s.Pix8(), d.s.Pitch()
	off := p.YL*pitch + p.X
	for _, v := range t {
		pix[off] = p.Colormap[p.Translation[v]]
		off += pitch
	}
}

func (d *drawers8) drawTranslucentColumn(p *ColumnParams) {
	t := d.fetch(p)
	pix, pitch := d.s.Pix8(), d.s.Pitch()
	off := p.YL*pitch + p.X
	for _, v := range t {
		pix[off] = d.blend(p.Colormap[v], pix[off], p.TransLevel)
		off += pitch
	}
}

func (d *drawers8) drawFuzzColumn(p *ColumnParams) {
	// The pattern reads one row above and below, so keep off the edges.
	p.YL = max(p.YL, 1)
	p.YH = min(p.YH, d.s.Height()-2)
	if p.X < 0 || p.X >= d.s.Width() || p.YL > p.YH {
		return
	}
	pix, pitch := d.s.Pix8(), d.s.Pitch()
	off := p.YL*pitch + p.X
	for range p.YH - p.YL + 1 {
		pix[off] = p.Colormap[pix[off+fuzzOffsets[d.fuzzPos]*pitch]]
		d.fuzzPos = (d.fuzzPos + 1) % len(fuzzOffsets)
		off += pitch
	}
}

func (d *drawers8) fillColumn(p *ColumnParams) {
	n := columnSpan(p, d.s)
	pix, pitch := d.s.Pix8(), d.s.Pitch()
	off := p.YL*pitch + p.X
	for range max(n, 0) {
		pix[off] = p.Color
		off += pitch
	}
}

func (d *drawers8) drawSpan(p *SpanParams) {
	n := spanClip(p, d.s)
	if n <= 0 {
		return
	}
	row := d.s.Pix8()[p.Y*d.s.Pitch()+p.X1:]
	xfrac, yfrac := p.XFrac, p.YFrac
	for i := range n {
		row[i] = p.Colormap[p.Source[flatSpot(xfrac, yfrac)]]
		xfrac += p.XStep
		yfrac += p.YStep
	}
}

func (d *drawers8) fillSpan(p *SpanParams) {
	n := spanClip(p, d.s)
	if n <= 0 {
		return
	}
	row := d.s.Pix8()[p.Y*d.s.Pitch()+p.X1:]
	for i := range n {
		row[i] = p.Color
	}
}

func (d *drawers8) drawColumnTexels(p *ColumnParams, dst []byte, pitch int) {
	n := p.YH - p.YL + 1
	if n <= 0 {
		return
	}
	t := d.texels[:n]
	fetchTexels(p, t)
	for i, v := range t {
		dst[i*pitch] = v
	}
}

func (d *drawers8) drawColumnTexelsWide(p *ColumnParams, dst []byte, pitch int) {
	n := p.YH - p.YL + 1
	if n <= 0 {
		return
	}
	t := d.texels[:n]
	fetchTexelsWide(p, t)
	for i, v := range t {
		dst[i*pitch] = v
	}
}

// put writes one texel of a batch slot.
func (d *drawers8) put(off int, v byte, s *BatchSlot) {
	pix := d.s.Pix8()
	switch s.Mode {
	case ColumnTranslated:
		pix[off] = s.Colormap[s.Translation[v]]
	case ColumnTranslucent:
		pix[off] = d.blend(s.Colormap[v], pix[off], s.TransLevel)
	default:
		pix[off] = s.Colormap[v]
	}
}

func (d *drawers8) drawBatch(b *BatchParams) {
	pitch := d.s.Pitch()
	for y := b.MinY; y <= b.MaxY; y++ {
		m := b.Mask[y]
		if m == 0 {
			continue
		}
		row := b.Texels[y*4 : y*4+4]
		off := y*pitch + b.X
		for i := range 4 {
			if m&(1<<i) != 0 {
				d.put(off+i, row[i], &b.Slots[i])
			}
		}
	}
}

// drawBatchWide stores fully covered rows of plain slots as one word.
func (d *drawers8) drawBatchWide(b *BatchParams) {
	plain := true
	for i := range b.Slots {
		plain = plain && b.Slots[i].Mode == ColumnNormal
	}
	if !plain {
		d.drawBatch(b)
		return
	}
	pix, pitch := d.s.Pix8(), d.s.Pitch()
	c0, c1, c2, c3 := b.Slots[0].Colormap, b.Slots[1].Colormap, b.Slots[2].Colormap, b.Slots[3].Colormap
	for y := b.MinY; y <= b.MaxY; y++ {
		m := b.Mask[y]
		if m == 0 {
			continue
		}
		row := b.Texels[y*4 : y*4+4]
		off := y*pitch + b.X
		if m == 0xf {
			w := uint32(c0[row[0]]) | uint32(c1[row[1]])<<8 | uint32(c2[row[2]])<<16 | uint32(c3[row[3]])<<24
			binary.LittleEndian.PutUint32(pix[off:off+4], w)
			continue
		}
		for i := range 4 {
			if m&(1<<i) != 0 {
				pix[off+i] = b.Slots[i].Colormap[row[i]]
			}
		}
	}
}

// blend mixes two palette entries and maps the result back to the palette.
func (d *drawers8) blend(src, dst byte, a fixed.Fixed) byte {
	if d.rgb == nil {
		d.rgb = buildRGBTable(d.s.Palette())
	}
	pal := d.s.Palette()
	c := blendARGB(pal[src], pal[dst], a)
	return d.rgb[(c>>9)&0x7c00|(c>>6)&0x3e0|(c>>3)&0x1f]
}

// buildRGBTable finds the nearest palette entry for every 5:5:5 color.
func buildRGBTable(pal *[256]uint32) *[1 << 15]byte {
	t := new([1 << 15]byte)
	for i := range t {
		r := (i >> 10 & 0x1f) << 3
		g := (i >> 5 & 0x1f) << 3
		b := (i & 0x1f) << 3
		best, bestDist := 0, 1<<30
		for j, c := range pal {
			dr := int(c>>16&0xff) - r
			dg := int(c>>8&0xff) - g
			db := int(c&0xff) - b
			if dist := dr*dr + dg*dg + db*db; dist < bestDist {
				best, bestDist = j, dist
				if dist == 0 {
					break
				}
			}
		}
		t[i] = byte(best)
	}
	return t
}
