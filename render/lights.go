package render

import (
	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// Lighting table dimensions, as in Doom.
const (
	LightLevels     = 16 // sector light is quantised to this many levels
	LightSegShift   = 4  // sector light >> LightSegShift gives the level
	MaxLightScale   = 48 // wall distance steps
	LightScaleShift = 12 // wall scale >> LightScaleShift gives the step
	MaxLightZ       = 128
	LightZShift     = 20
	NumColormaps    = 32 // light maps in a colormap set
	DistMap         = 2

	numColorMaps = len(wad.ColorMaps{})
)

// LightTable maps a light level and a distance to a colormap number.
type LightTable struct {
	Scale [LightLevels][MaxLightScale]int // walls, indexed by scale
	Z     [LightLevels][MaxLightZ]int     // planes, indexed by distance
}

// NewLightTable builds the tables for a view viewWidth columns wide.
func NewLightTable(viewWidth int) *LightTable {
	t := new(LightTable)
	for i := range LightLevels {
		startMap := ((LightLevels - 1 - i) * 2) * NumColormaps / LightLevels
		for j := range MaxLightScale {
			level := startMap - j*320/(viewWidth*DistMap)
			t.Scale[i][j] = fixed.Clamp(level, 0, NumColormaps-1)
		}
		for j := range MaxLightZ {
			scale := fixed.Div(fixed.FromInt(160), fixed.Fixed((j+1)<<LightZShift))
			scale >>= LightScaleShift
			level := startMap - int(scale)/DistMap
			t.Z[i][j] = fixed.Clamp(level, 0, NumColormaps-1)
		}
	}
	return t
}

// lightLevel turns a sector light into a table row, with extra light and
// the orthogonal wall adjustment already added.
func lightLevel(sectorLight, extra, adjust int) int {
	return fixed.Clamp((sectorLight>>LightSegShift)+extra+adjust, 0, LightLevels-1)
}

// WallMap returns the colormap number for a wall column at the given scale.
func (t *LightTable) WallMap(level int, scale fixed.Fixed) int {
	idx := int(scale >> LightScaleShift)
	return t.Scale[level][fixed.Clamp(idx, 0, MaxLightScale-1)]
}

// PlaneMap returns the colormap number for a plane span at distance.
func (t *LightTable) PlaneMap(level int, distance fixed.Fixed) int {
	idx := int(distance >> LightZShift)
	return t.Z[level][fixed.Clamp(idx, 0, MaxLightZ-1)]
}

// orthogonalAdjust is the fake contrast that makes walls along the map axes
// slightly brighter or darker.
func orthogonalAdjust(l *Line, even bool) int {
	if even || l == nil {
		return 0
	}
	switch l.SlopeType {
	case SlopeHorizontal:
		return -1
	case SlopeVertical:
		return 1
	}
	return 0
}
