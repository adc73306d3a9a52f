package render

import (
	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// planeState is the context of the visplane being drawn.
type planeState struct {
	pl           *Visplane
	height       fixed.Fixed // distance of the plane from the view height
	xOffs, yOffs fixed.Fixed
	lightLevel   int
	source       []byte // nil to fill with a flat color
	colormap     []byte // forced colormap, or nil
	span         SpanParams
}

// drawPlane fills a floor or ceiling visplane with horizontal spans.
// Sloped planes are drawn level at their height under the view.
func (r *Renderer) drawPlane(pl *Visplane) {
	s := &r.plane
	s.pl = pl
	s.height = pl.Height.ZAt(r.view.X, r.view.Y) - r.view.Z
	if s.height < 0 {
		s.height = -s.height
	}
	s.xOffs, s.yOffs = pl.XOffs, pl.YOffs
	s.lightLevel = lightLevel(pl.LightLevel, r.cfg.ExtraLight, 0)
	s.source = nil
	if r.flats != nil {
		if data := r.flats.FlatData(pl.Picnum); len(data) >= wad.FlatWidth*wad.FlatHeight {
			s.source = data
		}
	}
	s.colormap = nil
	if cm, ok := r.fixedColormap(pl.Colormap); ok {
		s.colormap = cm
	}

	top := func(x int) (int, int) {
		if x < pl.MinX || x > pl.MaxX {
			return Unmarked, -1
		}
		return pl.Top[x], pl.Bottom[x]
	}
	for x := pl.MinX; x <= pl.MaxX+1; x++ {
		t1, b1 := top(x - 1)
		t2, b2 := top(x)
		r.makeSpans(x, t1, b1, t2, b2)
	}
}

// makeSpans closes the spans that end at column x-1 and opens the ones that
// start at x, given the plane's rows in both columns.
func (r *Renderer) makeSpans(x, t1, b1, t2, b2 int) {
	for t1 < t2 && t1 <= b1 {
		r.mapPlane(t1, r.spanStart[t1], x-1)
		t1++
	}
	for b1 > b2 && b1 >= t1 {
		r.mapPlane(b1, r.spanStart[b1], x-1)
		b1--
	}
	for t2 < t1 && t2 <= b2 {
		r.spanStart[t2] = x
		t2++
	}
	for b2 > b1 && b2 >= t2 {
		r.spanStart[b2] = x
		b2--
	}
}

// mapPlane draws row y of the current plane from x1 to x2.
func (r *Renderer) mapPlane(y, x1, x2 int) {
	s := &r.plane
	distance := fixed.Mul(s.height, r.yslope[y])
	length := fixed.Mul(distance, r.distScale[x1])
	angle := (r.view.Angle + r.xToViewAngle[x1]).Fine()

	p := &s.span
	*p = SpanParams{
		Y:      y,
		X1:     x1,
		X2:     x2,
		Source: s.source,
		XFrac:  r.view.X + fixed.Mul(fixed.FineCosine[angle], length) + s.xOffs,
		YFrac:  -r.view.Y - fixed.Mul(fixed.FineSine[angle], length) + s.yOffs,
		XStep:  fixed.Mul(distance, r.baseXScale),
		YStep:  fixed.Mul(distance, r.baseYScale),
		Color:  byte(s.pl.Picnum),
	}
	if s.colormap != nil {
		p.Colormap = s.colormap
	} else {
		p.Colormap = r.colormap(s.pl.Colormap, r.lights.PlaneMap(s.lightLevel, distance))
	}
	if s.source == nil {
		r.drawers.FillSpan(p)
		return
	}
	r.drawers.DrawSpan(p)
}
