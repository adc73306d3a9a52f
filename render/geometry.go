package render

import (
	"github.com/stuarthighley/wadrender/fixed"
)

// Vertex is a map point in world units.
type Vertex struct {
	X, Y fixed.Fixed
}

// Plane is a floor or ceiling. Its height at (x, y) is Z + DZDX*x + DZDY*y;
// level planes have both slopes zero.
type Plane struct {
	Z, DZDX, DZDY fixed.Fixed
}

// LevelPlane returns a flat plane at height z.
func LevelPlane(z fixed.Fixed) Plane {
	return Plane{Z: z}
}

// IsLevel reports whether p has no slope.
func (p Plane) IsLevel() bool {
	return p.DZDX == 0 && p.DZDY == 0
}

// ZAt returns the plane height at (x, y).
func (p Plane) ZAt(x, y fixed.Fixed) fixed.Fixed {
	if p.IsLevel() {
		return p.Z
	}
	return p.Z + fixed.Mul(p.DZDX, x) + fixed.Mul(p.DZDY, y)
}

func (p Plane) zAtFloat(x, y float64) float64 {
	if p.IsLevel() {
		return p.Z.Float()
	}
	return p.Z.Float() + p.DZDX.Float()*x + p.DZDY.Float()*y
}

// Sector is a floor region as the renderer sees it.
type Sector struct {
	Floor, Ceiling         Plane
	FloorPic, CeilingPic   int // flat numbers; the sky flat selects the sky
	LightLevel             int // 0..255
	FloorXOffs, FloorYOffs fixed.Fixed
	CeilXOffs, CeilYOffs   fixed.Fixed
	Colormap               int   // colormap set, 0 is the WAD's COLORMAP
	SkyLine                *Line // sky transferred from a linedef, or nil
}

// Line carries the linedef properties that affect drawing.
type Line struct {
	UpperUnpegged bool
	LowerUnpegged bool
	Horizon       bool  // extend the front planes to the horizon
	Lucency       uint8 // 255 is opaque; below 240 the middle texture is blended
	DontFlipSky   bool  // transferred sky is not mirrored
	SlopeType     SlopeType
	Front         *Side // first sidedef, source of transferred skies
}

// SlopeType classifies a line's direction for the orthogonal light fake.
type SlopeType int

const (
	SlopeHorizontal SlopeType = iota
	SlopeVertical
	SlopePositive
	SlopeNegative
)

// Side is a sidedef. Texture numbers index the renderer's TextureSource;
// zero means no texture.
type Side struct {
	TextureOffset fixed.Fixed
	RowOffset     fixed.Fixed
	Top, Mid      int
	Bottom        int
}

// Seg is the visible part of a linedef, seen from one side.
type Seg struct {
	V1, V2 Vertex
	Offset fixed.Fixed // distance along the linedef to V1
	Line   *Line
	Side   *Side
	Front  *Sector
	Back   *Sector // nil for one-sided lines
}

// View is the camera of one frame.
type View struct {
	X, Y, Z fixed.Fixed
	Angle   fixed.Angle
}
