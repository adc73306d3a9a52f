package render

import (
	"fmt"
	"math"
	"slices"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// Silhouette says which sprite clip arrays of a DrawSeg are meaningful.
type Silhouette uint8

const (
	SilNone   Silhouette = 0
	SilBottom Silhouette = 1
	SilTop    Silhouette = 2
	SilBoth   Silhouette = SilBottom | SilTop
)

// maskedDone marks a masked texture column that has been drawn.
const maskedDone = math.MaxInt32

// DrawSeg records one stored wall range for sprite clipping and the masked
// pass. Per-column slices are indexed by x-X1.
type DrawSeg struct {
	Seg    *Seg
	X1, X2 int

	Scale1, Scale2, ScaleStep fixed.Fixed
	Light, LightStep          fixed.Fixed // light source, the scale at X1
	Scales                    []fixed.Fixed

	Silhouette Silhouette
	BSilHeight fixed.Fixed // sprites lower than this are behind the bottom
	TSilHeight fixed.Fixed // sprites higher than this are behind the top

	// Copies of the clip arrays as the range left them. Nil when the
	// silhouette does not need them.
	SprTopClip, SprBottomClip []int

	// Texture column per x for the masked middle texture, maskedDone once
	// drawn. Nil without one.
	MaskedTextureCol []int

	Frame FrameID
}

// storeWallRange is the body of Frame.StoreWallRange.
func (r *Renderer) storeWallRange(seg *Seg, start, stop int, clip1, clip2 fixed.Fixed) error {
	if start > stop {
		return nil
	}
	if start < 0 || stop >= r.width {
		if r.cfg.Strict {
			return fmt.Errorf("%w: [%d, %d] outside [0, %d)", ErrBadRange, start, stop, r.width)
		}
		start, stop = max(start, 0), min(stop, r.width-1)
		if start > stop {
			return nil
		}
	}
	if seg == nil || seg.Front == nil || seg.Side == nil || seg.Line == nil {
		return ErrBadSeg
	}
	if !r.prepWall(seg, start, stop, clip1, clip2) {
		logger.Printf("Skipping seg behind view at [%d, %d]", start, stop)
		return nil
	}

	w := &r.wall
	w.seg, w.start, w.stop = seg, start, stop
	front, back, side, line := seg.Front, seg.Back, seg.Side, seg.Line
	viewZ := r.view.Z

	ds := &DrawSeg{
		Seg:    seg,
		X1:     start,
		X2:     stop,
		Scale1: w.scale[start],
		Scale2: w.scale[stop],
		Frame:  r.frame,
	}
	if stop > start {
		ds.ScaleStep = (ds.Scale2 - ds.Scale1) / fixed.Fixed(stop-start)
	}

	w.closed, w.hasTop, w.hasBottom = false, false, false
	w.midTex, w.topTex, w.bottomTex = wad.NoTexture, wad.NoTexture, wad.NoTexture
	w.maskedCol = nil
	maskedTex := wad.NoTexture

	if back == nil {
		// A one-sided line is terminal, so it marks both planes.
		w.closed = true
		w.midTex = side.Mid
		w.markFloor, w.markCeiling = true, true
		if line.LowerUnpegged {
			w.midMid = r.planeZ(front.Floor, seg) + r.texHeight(side.Mid) - viewZ
		} else {
			w.midMid = r.planeZ(front.Ceiling, seg) - viewZ
		}
		w.midMid += side.RowOffset
		ds.Silhouette = SilBoth
		ds.BSilHeight, ds.TSilHeight = fixed.MaxFixed, fixed.MinFixed
	} else {
		bothSky := r.visplanes.IsSky(front.CeilingPic) && r.visplanes.IsSky(back.CeilingPic)
		closed := !bothSky && r.doorClosed()
		if closed {
			ds.Silhouette = SilBoth
			ds.BSilHeight, ds.TSilHeight = fixed.MaxFixed, fixed.MinFixed
		} else {
			r.silhouettes(ds)
		}

		if bothSky {
			copy(w.topF[start:stop+1], w.topB[start:stop+1])
		}

		w.markFloor = back.Floor != front.Floor ||
			back.LightLevel != front.LightLevel ||
			back.FloorPic != front.FloorPic ||
			back.FloorXOffs != front.FloorXOffs ||
			back.FloorYOffs != front.FloorYOffs ||
			back.Colormap != front.Colormap
		w.markCeiling = back.Ceiling != front.Ceiling ||
			back.LightLevel != front.LightLevel ||
			back.CeilingPic != front.CeilingPic ||
			back.CeilXOffs != front.CeilXOffs ||
			back.CeilYOffs != front.CeilYOffs ||
			back.Colormap != front.Colormap ||
			back.SkyLine != front.SkyLine
		w.markCeiling = w.markCeiling && !bothSky
		if closed {
			w.markFloor, w.markCeiling = true, true
		}

		if w.bc[0] < w.fc[0] || w.bc[1] < w.fc[1] {
			w.hasTop = true
			w.topTex = side.Top
			if line.UpperUnpegged {
				w.topMid = r.planeZ(front.Ceiling, seg) - viewZ
			} else {
				w.topMid = r.planeZ(back.Ceiling, seg) + r.texHeight(side.Top) - viewZ
			}
			w.topMid += side.RowOffset
		}
		if w.bf[0] > w.ff[0] || w.bf[1] > w.ff[1] {
			w.hasBottom = true
			w.bottomTex = side.Bottom
			if line.LowerUnpegged {
				w.bottomMid = r.planeZ(front.Ceiling, seg) - viewZ
			} else {
				w.bottomMid = r.planeZ(back.Floor, seg) - viewZ
			}
			w.bottomMid += side.RowOffset
		}
		if side.Mid != wad.NoTexture {
			maskedTex = side.Mid
			w.maskedCol = make([]int, stop-start+1)
			ds.MaskedTextureCol = w.maskedCol
		}
	}

	if line.Horizon {
		clear(w.scale[start : stop+1])
		ds.Scale1, ds.Scale2, ds.ScaleStep = 0, 0, 0
		w.midTex, w.topTex, w.bottomTex = wad.NoTexture, wad.NoTexture, wad.NoTexture
		w.closed, w.hasTop, w.hasBottom = false, false, false
		w.maskedCol, ds.MaskedTextureCol, maskedTex = nil, nil, wad.NoTexture
		horizon := r.centerYFrac >> (fixed.FracBits - HeightBits)
		for x := start; x <= stop; x++ {
			w.topF[x], w.bottomF[x] = horizon, horizon
		}
	}
	ds.Scales = slices.Clone(w.scale[start : stop+1])
	ds.Light, ds.LightStep = ds.Scale1, ds.ScaleStep

	// Planes on the far side of the view height cannot be seen.
	if front.Floor.ZAt(r.view.X, r.view.Y) >= viewZ {
		w.markFloor = false
	}
	if front.Ceiling.ZAt(r.view.X, r.view.Y) <= viewZ && !r.visplanes.IsSky(front.CeilingPic) {
		w.markCeiling = false
	}
	if w.markCeiling && r.ceilingPlane != nil {
		r.ceilingPlane = r.visplanes.Check(r.ceilingPlane, start, stop)
	} else {
		w.markCeiling = false
	}
	if w.markFloor && r.floorPlane != nil {
		r.floorPlane = r.visplanes.Check(r.floorPlane, start, stop)
	} else {
		w.markFloor = false
	}

	w.lightLevel = lightLevel(front.LightLevel, r.cfg.ExtraLight, orthogonalAdjust(line, r.cfg.EvenLighting))
	relight := r.relightWall
	if cm, ok := r.fixedColormap(front.Colormap); ok {
		w.colormap = cm
		relight = nil
	}
	r.renderColumnRange(start, stop, r.batched(), r.blastWallColumn, relight)

	// Save sprite clipping.
	if ds.Silhouette&SilTop != 0 || maskedTex != wad.NoTexture {
		ds.SprTopClip = slices.Clone(r.ceilingClip[start : stop+1])
	}
	if ds.Silhouette&SilBottom != 0 || maskedTex != wad.NoTexture {
		ds.SprBottomClip = slices.Clone(r.floorClip[start : stop+1])
	}
	if maskedTex != wad.NoTexture {
		ds.Silhouette = SilBoth
	}
	r.drawSegs = append(r.drawSegs, ds)
	return nil
}

// doorClosed reports whether the back sector of the current two-sided seg
// leaves no gap to see through.
func (r *Renderer) doorClosed() bool {
	w := &r.wall
	for i := range 2 {
		if !(w.bc[i] <= w.bf[i] || w.bc[i] <= w.ff[i] || w.bf[i] >= w.fc[i]) {
			return false
		}
	}
	return true
}

// silhouettes sets the sprite clipping silhouette of an open two-sided seg.
func (r *Renderer) silhouettes(ds *DrawSeg) {
	w := &r.wall
	back := w.seg.Back
	viewZ := r.view.Z
	if w.ff[0] > w.bf[0] || w.ff[1] > w.bf[1] || w.bf[0] > viewZ || w.bf[1] > viewZ || !back.Floor.IsLevel() {
		ds.Silhouette |= SilBottom
		ds.BSilHeight = fixed.MaxFixed
		if w.ff[0] > w.bf[0] && w.ff[1] > w.bf[1] {
			ds.BSilHeight = max(w.ff[0], w.ff[1])
		}
	}
	if w.fc[0] < w.bc[0] || w.fc[1] < w.bc[1] || w.bc[0] < viewZ || w.bc[1] < viewZ || !back.Ceiling.IsLevel() {
		ds.Silhouette |= SilTop
		ds.TSilHeight = fixed.MinFixed
		if w.fc[0] < w.bc[0] && w.fc[1] < w.bc[1] {
			ds.TSilHeight = min(w.fc[0], w.fc[1])
		}
	}
}

// planeZ returns the height of p where seg starts.
func (r *Renderer) planeZ(p Plane, seg *Seg) fixed.Fixed {
	return p.ZAt(seg.V1.X, seg.V1.Y)
}

func (r *Renderer) texHeight(tex int) fixed.Fixed {
	return fixed.FromInt(r.textures.TextureHeight(tex))
}

// relightWall picks the colormap of column x from its scale.
func (r *Renderer) relightWall(x int) {
	w := &r.wall
	r.wall.colormap = r.colormap(w.seg.Front.Colormap, r.lights.WallMap(w.lightLevel, w.scale[x]))
}

// blastWallColumn draws the solid tiers of column x, marks the planes
// around them and tightens the clip arrays.
func (r *Renderer) blastWallColumn(x int) {
	w := &r.wall
	ceilingClip, floorClip := r.ceilingClip[x], r.floorClip[x]

	yl := int((int64(w.topF[x]) + HeightUnit - 1) >> HeightBits)
	yl = max(yl, ceilingClip+1)
	if w.markCeiling {
		top, bottom := ceilingClip+1, min(yl-1, floorClip-1)
		if top <= bottom {
			r.ceilingPlane.Top[x], r.ceilingPlane.Bottom[x] = top, bottom
		}
	}

	yh := int(w.bottomF[x] >> HeightBits)
	yh = min(yh, floorClip-1)
	if w.markFloor {
		top, bottom := max(yh+1, ceilingClip+1), floorClip-1
		if top <= bottom {
			r.floorPlane.Top[x], r.floorPlane.Bottom[x] = top, bottom
		}
	}

	col := int((w.texOffset[x] + w.seg.Side.TextureOffset) >> fixed.FracBits)

	switch {
	case w.closed:
		r.drawTier(x, yl, yh, w.midTex, w.midMid, col)
		r.ceilingClip[x], r.floorClip[x] = r.height, r.height

	default:
		if w.hasTop {
			mid := int(w.topB[x] >> HeightBits)
			mid = min(mid, floorClip-1)
			if mid >= yl {
				r.drawTier(x, yl, mid, w.topTex, w.topMid, col)
				r.ceilingClip[x] = mid
			} else {
				r.ceilingClip[x] = yl - 1
			}
		} else if w.markCeiling {
			r.ceilingClip[x] = yl - 1
		}

		if w.hasBottom {
			mid := int((int64(w.bottomB[x]) + HeightUnit - 1) >> HeightBits)
			mid = max(mid, r.ceilingClip[x]+1)
			if mid <= yh {
				r.drawTier(x, mid, yh, w.bottomTex, w.bottomMid, col)
				r.floorClip[x] = mid
			} else {
				r.floorClip[x] = yh + 1
			}
		} else if w.markFloor {
			r.floorClip[x] = yh + 1
		}

		if w.maskedCol != nil {
			w.maskedCol[x-w.start] = col
		}
	}

	if r.ceilingClip[x] > r.floorClip[x] {
		r.ceilingClip[x], r.floorClip[x] = r.height, r.height
	}
	if r.ceilingClip[x]+1 >= r.floorClip[x] {
		r.solid[x] = true
	}
}

// drawTier draws rows [yl, yh] of texture column col.
func (r *Renderer) drawTier(x, yl, yh, tex int, mid fixed.Fixed, col int) {
	w := &r.wall
	scale := w.scale[x]
	if yl > yh || tex == wad.NoTexture || scale <= 0 {
		return
	}
	iscale := inverseScale(scale)
	p := &r.col
	*p = ColumnParams{
		X:             x,
		YL:            yl,
		YH:            yh,
		Source:        r.textures.TextureColumnData(tex, col),
		TextureHeight: r.textures.TextureHeight(tex),
		TextureFrac:   mid + fixed.Fixed(yl-r.centerY)*iscale,
		IScale:        iscale,
		Colormap:      w.colormap,
	}
	r.emit(p, ColumnNormal)
}

// inverseScale returns texels per pixel for a positive scale.
func inverseScale(scale fixed.Fixed) fixed.Fixed {
	return fixed.Fixed(min(0xffffffff/uint32(scale), math.MaxInt32))
}
