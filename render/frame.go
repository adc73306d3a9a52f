package render

import (
	"github.com/stuarthighley/wadrender/fixed"
)

// Frame is the token for one frame of a Renderer. Every entry point checks
// that it still belongs to the renderer's current frame.
type Frame struct {
	r  *Renderer
	id FrameID
}

// ID returns the frame number.
func (f *Frame) ID() FrameID {
	return f.id
}

func (f *Frame) check() error {
	if f.r.frame != f.id {
		return ErrStaleFrame
	}
	return nil
}

// View returns the camera of the frame, or the zero View once stale.
func (f *Frame) View() View {
	if f.check() != nil {
		return View{}
	}
	return f.r.view
}

// StoreWallRange draws columns [start, stop] of seg and records the clip
// state it leaves behind. clip1 and clip2 are the fractions of the seg cut
// off its V1 and V2 ends by the caller, as returned by ProjectSeg.
func (f *Frame) StoreWallRange(seg *Seg, start, stop int, clip1, clip2 fixed.Fixed) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.r.storeWallRange(seg, start, stop, clip1, clip2)
}

// RenderSkyRange draws the sky into the columns marked in pl.
func (f *Frame) RenderSkyRange(pl *Visplane) error {
	if err := f.check(); err != nil {
		return err
	}
	f.r.renderSkyRange(pl)
	return nil
}

// DrawPlanes draws every visplane of the frame: skies with RenderSkyRange
// and the rest as flat spans.
func (f *Frame) DrawPlanes() error {
	if err := f.check(); err != nil {
		return err
	}
	for _, pl := range f.r.visplanes.All() {
		if pl.MinX > pl.MaxX {
			continue
		}
		if f.r.visplanes.IsSky(pl.Picnum) {
			f.r.renderSkyRange(pl)
			continue
		}
		f.r.drawPlane(pl)
	}
	return nil
}

// DrawMasked draws the masked middle textures of the frame, farthest first.
// It is the last consumer of the frame's drawsegs.
func (f *Frame) DrawMasked() error {
	if err := f.check(); err != nil {
		return err
	}
	for i := len(f.r.drawSegs) - 1; i >= 0; i-- {
		ds := f.r.drawSegs[i]
		if ds.MaskedTextureCol != nil {
			f.r.renderMaskedSegRange(ds, ds.X1, ds.X2)
		}
	}
	return nil
}

// SetPlanes sets the floor and ceiling visplanes that following wall ranges
// mark. Either may be nil.
func (f *Frame) SetPlanes(floor, ceiling *Visplane) error {
	if err := f.check(); err != nil {
		return err
	}
	f.r.floorPlane, f.r.ceilingPlane = floor, ceiling
	return nil
}

// EnterSector finds the visplanes of sec as seen from the frame's view and
// makes them current. Planes on the far side of the view height are left
// out, except sky ceilings.
func (f *Frame) EnterSector(sec *Sector) error {
	if err := f.check(); err != nil {
		return err
	}
	r := f.r
	r.floorPlane, r.ceilingPlane = nil, nil
	v := r.view
	if sec.Floor.ZAt(v.X, v.Y) < v.Z {
		r.floorPlane = r.visplanes.Find(sec.Floor, sec.FloorPic, sec.LightLevel,
			sec.FloorXOffs, sec.FloorYOffs, sec.Colormap, nil)
	}
	if sec.Ceiling.ZAt(v.X, v.Y) > v.Z || r.visplanes.IsSky(sec.CeilingPic) {
		r.ceilingPlane = r.visplanes.Find(sec.Ceiling, sec.CeilingPic, sec.LightLevel,
			sec.CeilXOffs, sec.CeilYOffs, sec.Colormap, sec.SkyLine)
	}
	return nil
}

// ProjectSeg clips seg to the view and returns the screen columns it covers
// with the fractions cut off each end. ok is false for segs that are behind
// the view, outside it or facing away.
func (f *Frame) ProjectSeg(seg *Seg) (start, stop int, clip1, clip2 fixed.Fixed, ok bool) {
	if f.check() != nil {
		return 0, -1, 0, 0, false
	}
	return f.r.projectSeg(seg)
}

// DrawSegs returns the drawsegs stored so far, nearest first. A stale
// frame has none.
func (f *Frame) DrawSegs() []*DrawSeg {
	if f.check() != nil {
		return nil
	}
	return f.r.drawSegs
}

// Solid reports whether column x is fully occluded. It is false for every
// column of a stale frame.
func (f *Frame) Solid(x int) bool {
	if f.check() != nil {
		return false
	}
	return x >= 0 && x < len(f.r.solid) && f.r.solid[x]
}

// CeilingClip returns the lowest covered row above the open part of each
// column. The slice is live until the next call; a stale frame returns nil.
func (f *Frame) CeilingClip() []int {
	if f.check() != nil {
		return nil
	}
	return f.r.ceilingClip
}

// FloorClip returns the highest covered row below the open part of each
// column. The slice is live until the next call; a stale frame returns nil.
func (f *Frame) FloorClip() []int {
	if f.check() != nil {
		return nil
	}
	return f.r.floorClip
}
