// Package render draws the walls, skies and masked middle textures of a
// Doom map one screen column at a time.
//
// A Renderer owns everything that lives for a frame: the clip arrays, the
// visplanes and the drawsegs. BeginFrame hands out a Frame token; the BSP
// walker then feeds it wall ranges in front to back order with
// StoreWallRange, draws the planes and skies, and finishes with DrawMasked.
// Calls through a token from an earlier frame fail with ErrStaleFrame.
package render

import (
	"fmt"
	"math"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// TextureSource supplies wall and sky texture columns. Column numbers wrap
// around the texture width. *wad.TextureSet implements it.
type TextureSource interface {
	TextureColumn(tex, col int) wad.Column // opaque posts
	TextureColumnData(tex, col int) []byte // every texel of the column
	TextureHeight(tex int) int
	TextureWidth(tex int) int
	Len() int
}

// FlatSource supplies the 64x64 texels of floor and ceiling flats. *wad.WAD
// implements it.
type FlatSource interface {
	FlatData(n int) []byte
}

// FrameID numbers frames. It only ever increases.
type FrameID uint64

// Renderer draws frames onto one surface. It is not safe for concurrent use.
type Renderer struct {
	cfg       Config
	surface   Surface
	textures  TextureSource
	flats     FlatSource
	drawers   Drawers
	lights    *LightTable
	colormaps []*wad.ColorMaps
	sky       Sky

	width, height            int
	centerX, centerY         int
	centerXFrac, centerYFrac fixed.Fixed
	focal                    float64
	focalFrac                fixed.Fixed
	xToViewAngle             []fixed.Angle
	yslope                   []fixed.Fixed
	distScale                []fixed.Fixed
	skyIScale                fixed.Fixed

	frame                  FrameID
	view                   View
	viewSin, viewCos       float64
	baseXScale, baseYScale fixed.Fixed

	ceilingClip, floorClip   []int
	solid                    []bool
	drawSegs                 []*DrawSeg
	visplanes                *Visplanes
	floorPlane, ceilingPlane *Visplane

	wall      wallState
	masked    maskedState
	skyState  skyState
	plane     planeState
	batch     columnBatch
	col       ColumnParams
	spanStart []int
}

// NewRenderer returns a renderer for cfg drawing onto s. The surface must
// be at least cfg.Width by cfg.Height.
func NewRenderer(cfg Config, s Surface, textures TextureSource) (*Renderer, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.Width() < cfg.Width || s.Height() < cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d view on a %dx%d surface",
			ErrBadConfig, cfg.Width, cfg.Height, s.Width(), s.Height())
	}
	caps := DetectCapabilities()
	if cfg.Capabilities != nil {
		caps = *cfg.Capabilities
	}
	logger.Printf("Using %v drawers on a %v surface", caps.Name, depthName(s))

	r := &Renderer{
		cfg:       cfg,
		surface:   s,
		textures:  textures,
		drawers:   NewDrawers(s, caps),
		lights:    NewLightTable(cfg.Width),
		colormaps: []*wad.ColorMaps{IdentityColorMaps()},
		width:     cfg.Width,
		height:    cfg.Height,
		visplanes: NewVisplanes(cfg.Width),
	}
	r.initView()
	r.ceilingClip = make([]int, r.width)
	r.floorClip = make([]int, r.width)
	r.solid = make([]bool, r.width)
	r.spanStart = make([]int, r.height)
	r.wall.init(r.width)
	r.batch.init(r.height)
	r.skyState.init(r.width)
	return r, nil
}

func depthName(s Surface) string {
	if s.Is8Bit() {
		return "8-bit"
	}
	return "32-bit"
}

// initView builds the projection tables.
func (r *Renderer) initView() {
	r.centerX, r.centerY = r.width/2, r.height/2
	r.centerXFrac, r.centerYFrac = fixed.FromInt(r.centerX), fixed.FromInt(r.centerY)
	halfFOV := float64(r.cfg.FieldOfView) * math.Pi / 360
	r.focal = float64(r.centerX) / math.Tan(halfFOV)
	r.focalFrac = fixed.FromFloat(r.focal)

	r.xToViewAngle = make([]fixed.Angle, r.width)
	r.distScale = make([]fixed.Fixed, r.width)
	for x := range r.width {
		a := math.Atan(float64(r.centerX-x) / r.focal)
		r.xToViewAngle[x] = fixed.AngleFromRadians(a)
		r.distScale[x] = fixed.FromFloat(1 / math.Abs(math.Cos(a)))
	}
	r.yslope = make([]fixed.Fixed, r.height)
	for y := range r.height {
		dy := fixed.FromInt(y-r.centerY) + fixed.FracUnit/2
		if dy < 0 {
			dy = -dy
		}
		r.yslope[y] = fixed.Div(r.focalFrac, dy)
	}
	r.skyIScale = fixed.FromInt(200) / fixed.Fixed(r.height)
	r.skyIScale = fixed.Mul(r.skyIScale, fixed.Div(fixed.FromInt(r.cfg.FieldOfView), fixed.FromInt(90)))
}

// Config returns the configuration the renderer was built with.
func (r *Renderer) Config() Config {
	return r.cfg
}

// SetColormaps installs colormap sets. Set 0 is the WAD's COLORMAP; sectors
// pick others by their Colormap field. Without a call every set is the
// identity.
func (r *Renderer) SetColormaps(sets ...*wad.ColorMaps) {
	if len(sets) == 0 {
		sets = []*wad.ColorMaps{IdentityColorMaps()}
	}
	r.colormaps = sets
}

// SetFlats installs the flat source used by DrawPlanes.
func (r *Renderer) SetFlats(f FlatSource) {
	r.flats = f
}

// SetSkyFlat sets the flat number that marks sky ceilings.
func (r *Renderer) SetSkyFlat(picnum int) {
	r.visplanes.SkyFlat = picnum
}

// SkyFlat returns the sky flat number, -1 if unset.
func (r *Renderer) SkyFlat() int {
	return r.visplanes.SkyFlat
}

// SetSky sets the default sky.
func (r *Renderer) SetSky(s Sky) {
	r.sky = s
}

// SetDrawers replaces the drawer set.
func (r *Renderer) SetDrawers(d Drawers) {
	r.drawers = d
}

// Visplanes returns the plane registry of the current frame.
func (r *Renderer) Visplanes() *Visplanes {
	return r.visplanes
}

// IdentityColorMaps returns colormap sets that map every index to itself.
func IdentityColorMaps() *wad.ColorMaps {
	cm := new(wad.ColorMaps)
	for i := range cm {
		for j := range cm[i] {
			cm[i][j] = byte(j)
		}
	}
	return cm
}

// colormap returns map n of colormap set set.
func (r *Renderer) colormap(set, n int) []byte {
	if set < 0 || set >= len(r.colormaps) {
		set = 0
	}
	n = fixed.Clamp(n, 0, numColorMaps-1)
	return r.colormaps[set][n][:]
}

// fixedColormap returns the forced colormap for sectors using set, if any.
// A fixed light level wins over a fixed colormap.
func (r *Renderer) fixedColormap(set int) ([]byte, bool) {
	switch {
	case r.cfg.FixedLightLevel >= 0:
		return r.colormap(set, r.cfg.FixedLightLevel), true
	case r.cfg.FixedColormap >= 0:
		return r.colormap(0, r.cfg.FixedColormap), true
	}
	return nil, false
}

// BeginFrame starts a frame seen from v. Clip arrays, visplanes and
// drawsegs are reset; the Frame of the previous call goes stale.
func (r *Renderer) BeginFrame(v View) *Frame {
	r.frame++
	r.view = v
	a := v.Angle.Radians()
	r.viewSin, r.viewCos = math.Sin(a), math.Cos(a)
	planeAngle := (v.Angle - fixed.Ang90).Fine()
	r.baseXScale = fixed.Div(fixed.FineCosine[planeAngle], r.focalFrac)
	r.baseYScale = -fixed.Div(fixed.FineSine[planeAngle], r.focalFrac)

	for x := range r.width {
		r.ceilingClip[x] = -1
		r.floorClip[x] = r.height
		r.solid[x] = false
	}
	r.drawSegs = nil
	r.visplanes.Clear()
	r.floorPlane, r.ceilingPlane = nil, nil
	return &Frame{r: r, id: r.frame}
}

// toView turns a map point into depth along the view direction and lateral
// distance, positive to the right.
func (r *Renderer) toView(x, y float64) (z, l float64) {
	dx := x - r.view.X.Float()
	dy := y - r.view.Y.Float()
	return dx*r.viewCos + dy*r.viewSin, dx*r.viewSin - dy*r.viewCos
}

// screenX projects a view space point onto the screen.
func (r *Renderer) screenX(z, l float64) float64 {
	return float64(r.centerX) + r.focal*l/z
}
