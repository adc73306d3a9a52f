package render

import (
	"math"

	"github.com/stuarthighley/wadrender/fixed"
)

// Unmarked is the Top value of a visplane column nothing has claimed.
const Unmarked = math.MaxInt32

// Visplane collects the screen area of one floor or ceiling look: the same
// plane, flat, light, offsets and colormap. Top and Bottom hold the
// inclusive rows per column; columns outside [MinX, MaxX] or with Top equal
// to Unmarked are empty.
type Visplane struct {
	Height       Plane
	Picnum       int
	LightLevel   int
	XOffs, YOffs fixed.Fixed
	Colormap     int
	SkyLine      *Line // sky transferred from a linedef, or nil

	MinX, MaxX  int
	Top, Bottom []int
}

func (pl *Visplane) same(height Plane, picnum, light int, xoffs, yoffs fixed.Fixed, colormap int, skyLine *Line) bool {
	return pl.Height == height && pl.Picnum == picnum && pl.LightLevel == light &&
		pl.XOffs == xoffs && pl.YOffs == yoffs && pl.Colormap == colormap && pl.SkyLine == skyLine
}

func (pl *Visplane) reset(minX, maxX int) {
	pl.MinX, pl.MaxX = minX, maxX
	for x := range pl.Top {
		pl.Top[x] = Unmarked
		pl.Bottom[x] = -1
	}
}

// Visplanes is the per-frame registry of visplanes. Planes are recycled
// between frames.
type Visplanes struct {
	// SkyFlat is the flat number of sky ceilings. All sky planes share one
	// height and light.
	SkyFlat int

	width  int
	planes []*Visplane
	free   []*Visplane
}

// NewVisplanes returns a registry for a view width columns wide.
func NewVisplanes(width int) *Visplanes {
	return &Visplanes{SkyFlat: -1, width: width}
}

// Clear releases every plane for reuse.
func (v *Visplanes) Clear() {
	v.free = append(v.free, v.planes...)
	v.planes = v.planes[:0]
}

// All returns the planes of the frame in creation order.
func (v *Visplanes) All() []*Visplane {
	return v.planes
}

func (v *Visplanes) alloc() *Visplane {
	var pl *Visplane
	if n := len(v.free); n > 0 {
		pl = v.free[n-1]
		v.free = v.free[:n-1]
	} else {
		pl = &Visplane{Top: make([]int, v.width), Bottom: make([]int, v.width)}
	}
	v.planes = append(v.planes, pl)
	return pl
}

// IsSky reports whether picnum is the sky flat. Negative numbers, which
// stand for missing flats, never are.
func (v *Visplanes) IsSky(picnum int) bool {
	return picnum >= 0 && picnum == v.SkyFlat
}

// Find returns a plane with the given look, opening an empty one if none
// exists yet.
func (v *Visplanes) Find(height Plane, picnum, light int, xoffs, yoffs fixed.Fixed, colormap int, skyLine *Line) *Visplane {
	if v.IsSky(picnum) {
		height = Plane{}
		light = 0
		xoffs, yoffs = 0, 0
	} else {
		skyLine = nil
	}
	for _, pl := range v.planes {
		if pl.same(height, picnum, light, xoffs, yoffs, colormap, skyLine) {
			return pl
		}
	}
	pl := v.alloc()
	pl.Height, pl.Picnum, pl.LightLevel = height, picnum, light
	pl.XOffs, pl.YOffs, pl.Colormap, pl.SkyLine = xoffs, yoffs, colormap, skyLine
	pl.reset(v.width, -1)
	return pl
}

// Check makes pl ready to take marks in [start, stop]. If none of those
// columns is marked yet pl is widened and returned; otherwise a new plane
// with the same look is opened for the range.
func (v *Visplanes) Check(pl *Visplane, start, stop int) *Visplane {
	intrl, unionl := start, pl.MinX
	if start < pl.MinX {
		intrl, unionl = pl.MinX, start
	}
	intrh, unionh := stop, pl.MaxX
	if stop > pl.MaxX {
		intrh, unionh = pl.MaxX, stop
	}
	x := intrl
	for x <= intrh && pl.Top[x] == Unmarked {
		x++
	}
	if x > intrh {
		pl.MinX, pl.MaxX = unionl, unionh
		return pl
	}
	np := v.alloc()
	np.Height, np.Picnum, np.LightLevel = pl.Height, pl.Picnum, pl.LightLevel
	np.XOffs, np.YOffs, np.Colormap, np.SkyLine = pl.XOffs, pl.YOffs, pl.Colormap, pl.SkyLine
	np.reset(start, stop)
	return np
}
