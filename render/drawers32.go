package render

// drawers32 writes 0xAARRGGBB colors, looking palette indices up at the
// last moment.
type drawers32 struct {
	s       Surface
	texels  []byte
	fuzzPos int
}

func (d *drawers32) scalarSet() Drawers {
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

func (d *drawers32) wideSet() Drawers {
	set := d.scalarSet()
	set.DrawColumn = d.drawColumnWide
	set.DrawColumnTexels = d.drawColumnTexelsWide
	set.DrawBatch = d.drawBatchWide
	return set
}

func (d *drawers32) fetch(p *ColumnParams) []byte {
	n := columnSpan(p, d.s)
	if n <= 0 {
		return nil
	}
	t := d.texels[:n]
	fetchTexels(p, t)
	return t
}

func (d *drawers32) drawColumn(p *ColumnParams) {
	t := d.fetch(p)
	pix, pitch, pal := d.s.Pix32(), d.s.Pitch(), d.s.Palette()
	off := p.YL*pitch + p.X
	for _, v := range t {
		pix[off] = pal[p.Colormap[v]]
		off += pitch
	}
}

func (d *drawers32) drawColumnWide(p *ColumnParams) {
	n := columnSpan(p, d.s)
	if n <= 0 {
		return
	}
	t := d.texels[:n]
	fetchTexelsWide(p, t)
	pix, pitch, pal, cm := d.s.Pix32(), d.s.Pitch(), d.s.Palette(), p.Colormap
	off := p.YL*pitch + p.X
	i := 0
	for ; i+4 <= n; i += 4 {
		pix[off] = pal[cm[t[i]]]
		pix[off+pitch] = pal[cm[t[i+1]]]
		pix[off+2*pitch] = pal[cm[t[i+2]]]
		pix[off+3*pitch] = pal[cm[t[i+3]]]
		off += 4 * pitch
	}
	for ; i < n; i++ {
		pix[off] = pal[cm[t[i]]]
		off += pitch
	}
}

func (d *drawers32) drawTranslatedColumn(p *ColumnParams) {
	t := d.fetch(p)
	pix, pitch, pal := d.s.Pix32(), d.s.Pitch(), d.s.Palette()
	off := p.YL*pitch + p.X
	for _, v := range t {
		pix[off] = pal[p.Colormap[p.Translation[v]]]
		off += pitch
	}
}

func (d *drawers32) drawTranslucentColumn(p *ColumnParams) {
	t := d.fetch(p)
	pix, pitch, pal := d.s.Pix32(), d.s.Pitch(), d.s.Palette()
	off := p.YL*pitch + p.X
	for _, v := range t {
		pix[off] = blendARGB(pal[p.Colormap[v]], pix[off], p.TransLevel)
		off += pitch
	}
}

// drawFuzzColumn darkens a copy of the pixel one row away. There is no
// colormap for direct color, so the darkening matches colormap 6.
func (d *drawers32) drawFuzzColumn(p *ColumnParams) {
	p.YL = max(p.YL, 1)
	p.YH = min(p.YH, d.s.Height()-2)
	if p.X < 0 || p.X >= d.s.Width() || p.YL > p.YH {
		return
	}
	pix, pitch := d.s.Pix32(), d.s.Pitch()
	off := p.YL*pitch + p.X
	for range p.YH - p.YL + 1 {
		c := pix[off+fuzzOffsets[d.fuzzPos]*pitch]
		pix[off] = 0xff000000 | dim(c, 16)<<16 | dim(c, 8)<<8 | dim(c, 0)
		d.fuzzPos = (d.fuzzPos + 1) % len(fuzzOffsets)
		off += pitch
	}
}

func dim(c uint32, shift uint) uint32 {
	return (c >> shift & 0xff) * (NumColormaps - 6) / NumColormaps
}

func (d *drawers32) fillColumn(p *ColumnParams) {
	n := columnSpan(p, d.s)
	pix, pitch := d.s.Pix32(), d.s.Pitch()
	c := d.s.Palette()[p.Color]
	off := p.YL*pitch + p.X
	for range max(n, 0) {
		pix[off] = c
		off += pitch
	}
}

func (d *drawers32) drawSpan(p *SpanParams) {
	n := spanClip(p, d.s)
	if n <= 0 {
		return
	}
	row := d.s.Pix32()[p.Y*d.s.Pitch()+p.X1:]
	pal := d.s.Palette()
	xfrac, yfrac := p.XFrac, p.YFrac
	for i := range n {
		row[i] = pal[p.Colormap[p.Source[flatSpot(xfrac, yfrac)]]]
		xfrac += p.XStep
		yfrac += p.YStep
	}
}

func (d *drawers32) fillSpan(p *SpanParams) {
	n := spanClip(p, d.s)
	if n <= 0 {
		return
	}
	row := d.s.Pix32()[p.Y*d.s.Pitch()+p.X1:]
	c := d.s.Palette()[p.Color]
	for i := range n {
		row[i] = c
	}
}

func (d *drawers32) drawColumnTexels(p *ColumnParams, dst []byte, pitch int) {
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

func (d *drawers32) drawColumnTexelsWide(p *ColumnParams, dst []byte, pitch int) {
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

func (d *drawers32) put(off int, v byte, s *BatchSlot) {
	pix, pal := d.s.Pix32(), d.s.Palette()
	switch s.Mode {
	case ColumnTranslated:
		pix[off] = pal[s.Colormap[s.Translation[v]]]
	case ColumnTranslucent:
		pix[off] = blendARGB(pal[s.Colormap[v]], pix[off], s.TransLevel)
	default:
		pix[off] = pal[s.Colormap[v]]
	}
}

func (d *drawers32) drawBatch(b *BatchParams) {
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

func (d *drawers32) drawBatchWide(b *BatchParams) {
	for i := range b.Slots {
		if b.Slots[i].Mode != ColumnNormal {
			d.drawBatch(b)
			return
		}
	}
	pix, pitch, pal := d.s.Pix32(), d.s.Pitch(), d.s.Palette()
	c0, c1, c2, c3 := b.Slots[0].Colormap, b.Slots[1].Colormap, b.Slots[2].Colormap, b.Slots[3].Colormap
	for y := b.MinY; y <= b.MaxY; y++ {
		m := b.Mask[y]
		if m == 0 {
			continue
		}
		row := b.Texels[y*4 : y*4+4]
		off := y*pitch + b.X
		if m == 0xf {
			out := pix[off : off+4]
			out[0] = pal[c0[row[0]]]
			out[1] = pal[c1[row[1]]]
			out[2] = pal[c2[row[2]]]
			out[3] = pal[c3[row[3]]]
			continue
		}
		for i := range 4 {
			if m&(1<<i) != 0 {
				pix[off+i] = pal[b.Slots[i].Colormap[row[i]]]
			}
		}
	}
}
