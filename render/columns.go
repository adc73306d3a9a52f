package render

// columnBatch is the interleaved scratch of the batched column method: four
// adjacent columns rendered unlit, one byte each per row, then lit and
// copied to the surface a row at a time.
type columnBatch struct {
	active bool
	height int
	params BatchParams
}

func (b *columnBatch) init(height int) {
	b.height = height
	b.params.Texels = make([]byte, height*4)
	b.params.Mask = make([]uint8, height)
}

func (b *columnBatch) begin(x int) {
	b.active = true
	b.params.X = x
	b.params.MinY, b.params.MaxY = b.height, -1
	b.params.Slots = [4]BatchSlot{}
}

// batchColumn renders p into its slot of the open batch. p is clipped exactly as the direct drawers
// clip it.
func (r *Renderer) batchColumn(p *ColumnParams, mode ColumnMode) {
	b := &r.batch.params
	n := columnSpan(p, r.surface)
	if n <= 0 {
		return
	}
	slot := p.X - b.X
	r.drawers.DrawColumnTexels(p, b.Texels[p.YL*4+slot:], 4)
	bit := uint8(1) << slot
	for y := p.YL; y <= p.YH; y++ {
		b.Mask[y] |= bit
	}
	b.MinY = min(b.MinY, p.YL)
	b.MaxY = max(b.MaxY, p.YH)
	b.Slots[slot] = BatchSlot{
		Mode:        mode,
		Colormap:    p.Colormap,
		Translation: p.Translation,
		TransLevel:  p.TransLevel,
	}
}

// flushBatch writes the batch to the surface and empties it.
func (r *Renderer) flushBatch() {
	b := &r.batch
	if b.params.MinY <= b.params.MaxY {
		r.drawers.DrawBatch(&b.params)
		clear(b.params.Mask[b.params.MinY : b.params.MaxY+1])
	}
	b.active = false
}

// emit hands one column to the drawers, or to the open batch.
func (r *Renderer) emit(p *ColumnParams, mode ColumnMode) {
	if r.batch.active && mode != ColumnFuzz {
		r.batchColumn(p, mode)
		return
	}
	r.drawers.column(mode)(p)
}

// renderColumnRange runs blast for every column in [start, stop]. relight,
// if not nil, picks the colormap of a column first. In batched mode whole
// groups of four columns from start go through the batch and the rest are
// drawn directly; the pixels are the same either way.
func (r *Renderer) renderColumnRange(start, stop int, batched bool, blast, relight func(x int)) {
	x := start
	if batched {
		for ; x+3 <= stop; x += 4 {
			r.batch.begin(x)
			for i := range 4 {
				if relight != nil {
					relight(x + i)
				}
				blast(x + i)
			}
			r.flushBatch()
		}
	}
	for ; x <= stop; x++ {
		if relight != nil {
			relight(x)
		}
		blast(x)
	}
}

// batched reports whether the configured column method batches.
func (r *Renderer) batched() bool {
	return r.cfg.ColumnMethod == ColumnsBatched
}
