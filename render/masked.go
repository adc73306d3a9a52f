package render

import (
	"github.com/stuarthighley/wadrender/fixed"
)

// Translucency starts below this lucency.
const opaqueLucency = 240

// maskedState is the context of the masked range being drawn.
type maskedState struct {
	ds         *DrawSeg
	tex        int
	texHeight  int
	mid        fixed.Fixed
	mode       ColumnMode
	transLevel fixed.Fixed
	lightLevel int
	colormap   []byte
}

// renderMaskedSegRange draws the masked middle texture of ds over columns
// [x1, x2], skipping columns already drawn.
func (r *Renderer) renderMaskedSegRange(ds *DrawSeg, x1, x2 int) {
	seg := ds.Seg
	front, back, line := seg.Front, seg.Back, seg.Line
	if back == nil || ds.MaskedTextureCol == nil {
		return
	}
	x1, x2 = max(x1, ds.X1), min(x2, ds.X2)
	m := &r.masked
	*m = maskedState{
		ds:         ds,
		tex:        seg.Side.Mid,
		texHeight:  r.textures.TextureHeight(seg.Side.Mid),
		mode:       ColumnNormal,
		lightLevel: lightLevel(front.LightLevel, r.cfg.ExtraLight, orthogonalAdjust(line, r.cfg.EvenLighting)),
	}
	if line.Lucency < opaqueLucency {
		m.mode = ColumnTranslucent
		m.transLevel = fixed.Fixed(line.Lucency) << 8
	}
	if line.LowerUnpegged {
		m.mid = max(r.planeZ(front.Floor, seg), r.planeZ(back.Floor, seg)) + fixed.FromInt(m.texHeight)
	} else {
		m.mid = min(r.planeZ(front.Ceiling, seg), r.planeZ(back.Ceiling, seg))
	}
	m.mid += seg.Side.RowOffset - r.view.Z

	relight := r.relightMasked
	if cm, ok := r.fixedColormap(front.Colormap); ok {
		m.colormap = cm
		relight = nil
	}
	r.renderColumnRange(x1, x2, r.batched(), r.blastMaskedColumn, relight)
}

func (r *Renderer) relightMasked(x int) {
	m := &r.masked
	scale := m.ds.Scales[x-m.ds.X1]
	m.colormap = r.colormap(m.ds.Seg.Front.Colormap, r.lights.WallMap(m.lightLevel, scale))
}

// blastMaskedColumn draws every post of the masked column at x between the
// sprite clips saved with the drawseg, then marks the column done. Columns
// that map entirely off screen are left for a later pass.
func (r *Renderer) blastMaskedColumn(x int) {
	m := &r.masked
	ds := m.ds
	i := x - ds.X1
	col := ds.MaskedTextureCol[i]
	scale := ds.Scales[i]
	if col == maskedDone || scale <= 0 {
		return
	}

	// Skip columns whose texture maps entirely off screen.
	t := int64(r.centerYFrac)<<fixed.FracBits - int64(m.mid)*int64(scale)
	if t+int64(m.texHeight)*int64(scale)<<fixed.FracBits < 0 || t >= int64(r.height)<<(2*fixed.FracBits) {
		return
	}
	topScreen := t >> fixed.FracBits
	iscale := inverseScale(scale)
	topClip, bottomClip := ds.SprTopClip[i], ds.SprBottomClip[i]

	for post := range r.textures.TextureColumn(m.tex, col).Posts() {
		n := post.Length()
		if n == 0 {
			continue
		}
		top := topScreen + int64(scale)*int64(post.TopDelta) + 1
		yl := int((top + int64(fixed.FracUnit)) >> fixed.FracBits)
		yh := int((top + int64(scale)*int64(n)) >> fixed.FracBits)
		yh = min(yh, bottomClip-1)
		yl = max(yl, topClip+1)

		frac := m.mid - fixed.FromInt(post.TopDelta) + fixed.Fixed(yl)*iscale -
			fixed.Mul(r.centerYFrac-fixed.FracUnit, iscale)
		if frac < 0 {
			cnt := int((fixed.Div(-frac, iscale) + fixed.FracUnit - 1) >> fixed.FracBits)
			yl += cnt
			frac += fixed.Fixed(cnt) * iscale
		}
		endFrac := frac + fixed.Fixed(yh-yl)*iscale
		maxFrac := fixed.FromInt(n)
		if endFrac >= maxFrac {
			cnt := int((fixed.Div(endFrac-maxFrac-1, iscale) + fixed.FracUnit - 1) >> fixed.FracBits)
			yh -= cnt
		}
		if yl < 0 || yh >= r.height || yl > yh {
			continue
		}
		p := &r.col
		*p = ColumnParams{
			X:           x,
			YL:          yl,
			YH:          yh,
			Source:      post.Data,
			TextureFrac: frac,
			IScale:      iscale,
			Colormap:    m.colormap,
			TransLevel:  m.transLevel,
		}
		r.emit(p, m.mode)
	}
	ds.MaskedTextureCol[i] = maskedDone
}
