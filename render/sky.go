package render

import (
	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// Sky constants.
const (
	// SkyBufferCapacity is the most texels a composite sky column holds.
	SkyBufferCapacity = 512

	// DefaultSkyShift turns a view angle into a 1024-column sky circle.
	DefaultSkyShift = 22 - fixed.FracBits

	// DefaultSkyMid puts the horizon of a 128-high sky at its bottom.
	DefaultSkyMid = 100 << fixed.FracBits

	// transferredSkyMid lowers skies transferred from a linedef so that row
	// offset 0 lines up with the normal sky.
	transferredSkyMid = 28 << fixed.FracBits
)

// Sky describes the default sky. With Back set, Front is drawn over it and
// texels of index 0 in Front let Back show through.
type Sky struct {
	Front, Back             int         // texture numbers; Back is NoTexture for one layer
	FrontOffset, BackOffset fixed.Fixed // horizontal scroll, in angle units
	FrontShift, BackShift   uint        // 0 means DefaultSkyShift
	Mid                     fixed.Fixed // texture row at the horizon; 0 means DefaultSkyMid
	Stretch                 bool        // halve the step so short skies cover more rows
}

// skyColumn is the texel source of one screen column of sky.
type skyColumn struct {
	data   []byte
	height int
}

// skyState holds the composite buffers and the context of the sky range
// being drawn.
type skyState struct {
	buffers  []wad.Column
	cols     []skyColumn
	pl       *Visplane
	mid      fixed.Fixed
	iscale   fixed.Fixed
	colormap []byte
}

func (s *skyState) init(width int) {
	s.buffers = make([]wad.Column, width)
	s.cols = make([]skyColumn, width)
}

// skyColumnNum maps screen column x to a sky texture column.
func (r *Renderer) skyColumnNum(x int, flip fixed.Angle, shift uint, offset fixed.Fixed) int {
	a := (r.view.Angle + r.xToViewAngle[x]) ^ flip
	return int((uint32(a)>>shift + uint32(offset)) >> fixed.FracBits)
}

// validTexture reports whether tex names a real texture.
func (r *Renderer) validTexture(tex int) bool {
	return tex > wad.NoTexture && tex < r.textures.Len() && r.textures.TextureHeight(tex) > 0
}

// renderSkyRange draws the sky into the marked columns of pl.
func (r *Renderer) renderSkyRange(pl *Visplane) {
	if pl == nil || pl.MinX > pl.MaxX {
		return
	}
	sky := r.sky
	mid := sky.Mid
	if mid == 0 {
		mid = DefaultSkyMid
	}
	flip := fixed.Angle(0)
	if l := pl.SkyLine; l != nil && l.Front != nil {
		sky = Sky{
			Front:       l.Front.Top,
			FrontOffset: -l.Front.TextureOffset >> 6,
			Stretch:     sky.Stretch,
		}
		mid = l.Front.RowOffset - transferredSkyMid
		if !l.DontFlipSky {
			flip = ^fixed.Angle(0)
		}
	}
	frontShift, backShift := sky.FrontShift, sky.BackShift
	if frontShift == 0 {
		frontShift = DefaultSkyShift
	}
	if backShift == 0 {
		backShift = DefaultSkyShift
	}
	if sky.Back != wad.NoTexture && !r.validTexture(sky.Back) {
		logger.Printf("Invalid back sky texture %d, drawing one layer", sky.Back)
		sky.Back = wad.NoTexture
	}

	frontHeight := r.textures.TextureHeight(sky.Front)
	s := &r.skyState
	s.pl = pl
	s.mid = mid
	s.iscale = r.skyIScale
	if (sky.Stretch || r.cfg.SkyStretch) && frontHeight <= 128 {
		s.iscale >>= 1
	}
	switch {
	case r.cfg.FixedLightLevel >= 0:
		s.colormap = r.colormap(0, r.cfg.FixedLightLevel)
	case r.cfg.FixedColormap >= 0 && r.cfg.SkyPalette:
		s.colormap = r.colormap(0, r.cfg.FixedColormap)
	default:
		s.colormap = r.colormap(0, 0)
	}

	if sky.Back == wad.NoTexture {
		for x := pl.MinX; x <= pl.MaxX; x++ {
			col := r.skyColumnNum(x, flip, frontShift, sky.FrontOffset)
			s.cols[x] = skyColumn{data: r.textures.TextureColumnData(sky.Front, col), height: frontHeight}
		}
	} else {
		backHeight := r.textures.TextureHeight(sky.Back)
		if min(frontHeight, backHeight) > SkyBufferCapacity {
			logger.Printf("Sky %dx%d taller than %d texels, truncating", frontHeight, backHeight, SkyBufferCapacity)
		}
		for x := pl.MinX; x <= pl.MaxX; x++ {
			fc := r.skyColumnNum(x, flip, frontShift, sky.FrontOffset)
			bc := r.skyColumnNum(x, flip, backShift, sky.BackOffset)
			s.buffers[x] = compositeSkyColumn(s.buffers[x],
				r.textures.TextureColumn(sky.Front, fc), frontHeight,
				r.textures.TextureColumn(sky.Back, bc), backHeight)
			post, _ := s.buffers[x].First()
			s.cols[x] = skyColumn{data: post.Data, height: post.Length()}
		}
	}
	r.renderColumnRange(pl.MinX, pl.MaxX, r.batched(), r.blastSkyColumn, nil)
}

// blastSkyColumn draws the marked rows of the sky plane at x.
func (r *Renderer) blastSkyColumn(x int) {
	s := &r.skyState
	yl, yh := s.pl.Top[x], s.pl.Bottom[x]
	if yl == Unmarked || s.cols[x].height == 0 {
		return
	}
	yl, yh = max(yl, 0), min(yh, r.height-1)
	if yl > yh {
		return
	}
	p := &r.col
	*p = ColumnParams{
		X:             x,
		YL:            yl,
		YH:            yh,
		Source:        s.cols[x].data,
		TextureHeight: s.cols[x].height,
		TextureFrac:   s.mid + fixed.Fixed(yl-r.centerY+1)*s.iscale,
		IScale:        s.iscale,
		Colormap:      s.colormap,
	}
	r.emit(p, ColumnNormal)
}

// compositeSkyColumn merges a front and a back sky column into dst as one
// post at row 0 followed by the sentinel. The post is min(frontHeight,
// backHeight, SkyBufferCapacity) texels long. Front texels win, except
// where the front has a gap or a texel of index 0, which show the back
// texel of the same row; rows neither column covers are 0.
func compositeSkyColumn(dst, front wad.Column, frontHeight int, back wad.Column, backHeight int) wad.Column {
	n := max(min(frontHeight, backHeight, SkyBufferCapacity), 0)
	var buf [SkyBufferCapacity]byte
	texels := buf[:n]
	for p := range back.Posts() {
		if p.TopDelta >= n {
			break
		}
		copy(texels[p.TopDelta:], p.Data)
	}
	for p := range front.Posts() {
		if p.TopDelta >= n {
			break
		}
		for i, v := range p.Data[:min(p.Length(), n-p.TopDelta)] {
			if v != 0 {
				texels[p.TopDelta+i] = v
			}
		}
	}
	dst = wad.AppendPost(dst[:0], 0, texels)
	return wad.EndColumn(dst)
}
