package render

import (
	"math"

	"github.com/stuarthighley/wadrender/fixed"
)

// Wall rows carry HeightBits fractional bits.
const (
	HeightBits = 12
	HeightUnit = 1 << HeightBits

	// rowLimit keeps rows of walls right next to the view representable.
	rowLimit = 1 << 30
)

// nearClip is the closest depth a projected seg may reach, in map units.
const nearClip = 1.0 / 16

// wallState holds the per-column arrays of the wall range being stored.
// Every array is indexed by screen column.
type wallState struct {
	scale     []fixed.Fixed
	texOffset []fixed.Fixed // distance along the linedef, in map units

	topF, bottomF []fixed.Fixed // front ceiling and floor rows
	topB, bottomB []fixed.Fixed // back ceiling and floor rows

	// Plane heights at the clipped ends of the seg.
	fc, ff, bc, bf [2]fixed.Fixed

	seg         *Seg
	start, stop int
	closed      bool // one-sided: the range ends every column
	hasTop      bool
	hasBottom   bool
	midTex      int
	topTex      int
	bottomTex   int
	midMid      fixed.Fixed // texture row at the view height, per tier
	topMid      fixed.Fixed
	bottomMid   fixed.Fixed
	maskedCol   []int // masked texture column per x-start, or nil
	markFloor   bool
	markCeiling bool
	lightLevel  int
	colormap    []byte
}

func (w *wallState) init(width int) {
	w.scale = make([]fixed.Fixed, width)
	w.texOffset = make([]fixed.Fixed, width)
	w.topF = make([]fixed.Fixed, width)
	w.bottomF = make([]fixed.Fixed, width)
	w.topB = make([]fixed.Fixed, width)
	w.bottomB = make([]fixed.Fixed, width)
}

// prepWall fills the wall arrays for columns [start, stop] of seg. Depth and
// texture position are interpolated as 1/z and u/z between the clipped ends,
// which is exact under perspective. It returns false when the seg reaches
// behind the view or its scale collapses.
func (r *Renderer) prepWall(seg *Seg, start, stop int, clip1, clip2 fixed.Fixed) bool {
	w := &r.wall
	ax, ay := seg.V1.X.Float(), seg.V1.Y.Float()
	dx, dy := seg.V2.X.Float()-ax, seg.V2.Y.Float()-ay
	t1, t2 := clip1.Float(), 1-clip2.Float()
	x1, y1 := ax+dx*t1, ay+dy*t1
	x2, y2 := ax+dx*t2, ay+dy*t2

	z1, l1 := r.toView(x1, y1)
	z2, l2 := r.toView(x2, y2)
	if z1 <= 0 || z2 <= 0 {
		return false
	}
	iz1, iz2 := 1/z1, 1/z2
	if fixed.FromFloat(r.focal*iz1) <= 0 || fixed.FromFloat(r.focal*iz2) <= 0 {
		return false
	}
	sx1, sx2 := r.screenX(z1, l1), r.screenX(z2, l2)

	length := math.Hypot(dx, dy)
	u1 := seg.Offset.Float() + length*t1
	u2 := seg.Offset.Float() + length*t2

	front, back := seg.Front, seg.Back
	fc1, fc2 := front.Ceiling.zAtFloat(x1, y1), front.Ceiling.zAtFloat(x2, y2)
	ff1, ff2 := front.Floor.zAtFloat(x1, y1), front.Floor.zAtFloat(x2, y2)
	w.fc = [2]fixed.Fixed{fixed.FromFloat(fc1), fixed.FromFloat(fc2)}
	w.ff = [2]fixed.Fixed{fixed.FromFloat(ff1), fixed.FromFloat(ff2)}
	var bc1, bc2, bf1, bf2 float64
	if back != nil {
		bc1, bc2 = back.Ceiling.zAtFloat(x1, y1), back.Ceiling.zAtFloat(x2, y2)
		bf1, bf2 = back.Floor.zAtFloat(x1, y1), back.Floor.zAtFloat(x2, y2)
		w.bc = [2]fixed.Fixed{fixed.FromFloat(bc1), fixed.FromFloat(bc2)}
		w.bf = [2]fixed.Fixed{fixed.FromFloat(bf1), fixed.FromFloat(bf2)}
	}

	span := sx2 - sx1
	for x := start; x <= stop; x++ {
		t := 0.0
		if span > 1e-9 {
			t = fixed.Clamp((float64(x)-sx1)/span, 0, 1)
		}
		iz := iz1 + (iz2-iz1)*t
		z := 1 / iz
		scale := fixed.FromFloat(r.focal * iz)
		w.scale[x] = scale
		w.texOffset[x] = fixed.FromFloat(lerp(u1*iz1, u2*iz2, t) * z)
		w.topF[x] = r.heightRow(lerp(fc1*iz1, fc2*iz2, t)*z, scale)
		w.bottomF[x] = r.heightRow(lerp(ff1*iz1, ff2*iz2, t)*z, scale)
		if back != nil {
			w.topB[x] = r.heightRow(lerp(bc1*iz1, bc2*iz2, t)*z, scale)
			w.bottomB[x] = r.heightRow(lerp(bf1*iz1, bf2*iz2, t)*z, scale)
		}
	}
	return true
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// heightRow projects a map height to a screen row in HeightBits units.
func (r *Renderer) heightRow(h float64, scale fixed.Fixed) fixed.Fixed {
	rel := int64(fixed.FromFloat(h)-r.view.Z) >> (fixed.FracBits - HeightBits)
	row := int64(r.centerYFrac>>(fixed.FracBits-HeightBits)) - (rel*int64(scale))>>fixed.FracBits
	return fixed.Fixed(fixed.Clamp(row, -rowLimit, rowLimit))
}

// projectSeg clips seg against the near plane and the screen edges and
// returns the columns it covers. Everything is done in view space, where
// the three constraints are linear along the seg.
func (r *Renderer) projectSeg(seg *Seg) (start, stop int, clip1, clip2 fixed.Fixed, ok bool) {
	z1, l1 := r.toView(seg.V1.X.Float(), seg.V1.Y.Float())
	z2, l2 := r.toView(seg.V2.X.Float(), seg.V2.Y.Float())

	left := float64(r.centerX + 1)
	right := float64(r.width + 1 - r.centerX)
	t0, t1 := 0.0, 1.0
	clip := func(f0, f1 float64) bool {
		switch {
		case f0 < 0 && f1 < 0:
			return false
		case f0 >= 0 && f1 >= 0:
			return true
		}
		t := f0 / (f0 - f1)
		if f0 < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		return t0 <= t1
	}
	if !clip(z1-nearClip, z2-nearClip) ||
		!clip(left*z1+r.focal*l1, left*z2+r.focal*l2) ||
		!clip(right*z1-r.focal*l1, right*z2-r.focal*l2) {
		return 0, -1, 0, 0, false
	}

	cz1, cl1 := lerp(z1, z2, t0), lerp(l1, l2, t0)
	cz2, cl2 := lerp(z1, z2, t1), lerp(l1, l2, t1)
	sx1, sx2 := r.screenX(cz1, cl1), r.screenX(cz2, cl2)
	if sx1 >= sx2 {
		return 0, -1, 0, 0, false
	}
	start = max(int(math.Ceil(sx1)), 0)
	stop = min(int(math.Ceil(sx2))-1, r.width-1)
	if start > stop {
		return 0, -1, 0, 0, false
	}
	return start, stop, fixed.FromFloat(t0), fixed.FromFloat(1 - t1), true
}
