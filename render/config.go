package render

import (
	"fmt"
)

// ColumnMethod selects how wall, sky and masked columns reach the surface.
type ColumnMethod int

const (
	// ColumnsDirect draws every column straight to the surface.
	ColumnsDirect ColumnMethod = iota

	// ColumnsBatched renders four adjacent columns into a small interleaved
	// buffer and copies them out row by row. The output is identical.
	ColumnsBatched
)

func (m ColumnMethod) String() string {
	switch m {
	case ColumnsDirect:
		return "direct"
	case ColumnsBatched:
		return "batched"
	}
	return fmt.Sprintf("ColumnMethod(%d)", int(m))
}

// Screen size limits.
const (
	MaxWidth  = 4096
	MaxHeight = 2048
)

// Config holds the renderer settings that stay fixed for its lifetime.
type Config struct {
	Width, Height int
	FieldOfView   int // horizontal, in degrees
	ColumnMethod  ColumnMethod

	// Strict makes out-of-view column ranges an error instead of clamping
	// them.
	Strict bool

	// FixedColormap forces one colormap for everything, ignoring sector
	// colormaps and distance. Negative disables it.
	FixedColormap int

	// FixedLightLevel forces one light map inside each sector's colormap set.
	// Negative disables it.
	FixedLightLevel int

	// SkyPalette lets FixedColormap tint the sky too. Without it the sky
	// keeps its full bright map, as vanilla does under invulnerability.
	SkyPalette bool

	ExtraLight   int  // added to every sector light, in light levels
	EvenLighting bool // disable the brighter/darker fake for axis-aligned walls
	SkyStretch   bool // stretch short skies to cover freelook

	// Capabilities selects the drawer family. Nil detects the CPU.
	Capabilities *Capabilities
}

// DefaultConfig returns a 320x200 configuration with a 90 degree view.
func DefaultConfig() Config {
	return Config{
		Width:           320,
		Height:          200,
		FieldOfView:     90,
		ColumnMethod:    ColumnsDirect,
		FixedColormap:   -1,
		FixedLightLevel: -1,
	}
}

// Validate checks c for values the renderer cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Width < 4 || c.Width > MaxWidth:
		return fmt.Errorf("%w: width %d not in [4, %d]", ErrBadConfig, c.Width, MaxWidth)
	case c.Height < 2 || c.Height > MaxHeight:
		return fmt.Errorf("%w: height %d not in [2, %d]", ErrBadConfig, c.Height, MaxHeight)
	case c.FieldOfView < 1 || c.FieldOfView > 179:
		return fmt.Errorf("%w: field of view %d not in [1, 179]", ErrBadConfig, c.FieldOfView)
	case c.ColumnMethod != ColumnsDirect && c.ColumnMethod != ColumnsBatched:
		return fmt.Errorf("%w: unknown column method %d", ErrBadConfig, int(c.ColumnMethod))
	case c.FixedColormap >= numColorMaps:
		return fmt.Errorf("%w: fixed colormap %d out of range", ErrBadConfig, c.FixedColormap)
	case c.FixedLightLevel >= NumColormaps:
		return fmt.Errorf("%w: fixed light level %d out of range", ErrBadConfig, c.FixedLightLevel)
	}
	return nil
}
