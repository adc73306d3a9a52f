package render

import (
	"math"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// BBox is an axis aligned box in map units.
type BBox struct {
	Top, Bottom, Left, Right fixed.Fixed
}

// Node is a BSP partition line from (X, Y) along (DX, DY). Side 0 is the
// right of the line. Children[side] indexes Level.Nodes, or Level.Subsectors
// when Leaf[side] is set.
type Node struct {
	X, Y, DX, DY fixed.Fixed
	BBox         [2]BBox
	Children     [2]int
	Leaf         [2]bool
}

// Subsector is a convex run of Level.Segs facing into one sector.
type Subsector struct {
	FirstSeg, NumSegs int
}

// pointSide returns the side of n that (x, y) is on. Points on the line
// are on side 1.
func (n *Node) pointSide(x, y fixed.Fixed) int {
	dx, dy := int64(x-n.X), int64(y-n.Y)
	if dy*int64(n.DX) < int64(n.DY)*dx {
		return 0
	}
	return 1
}

func bboxFromWAD(b wad.BoundBox) BBox {
	return BBox{
		Top:    fixed.FromFloat(b.Top),
		Bottom: fixed.FromFloat(b.Bottom),
		Left:   fixed.FromFloat(b.Left),
		Right:  fixed.FromFloat(b.Right),
	}
}

// bspChild turns a WAD node child number into an index and leaf flag.
func bspChild(num, nodes, subsectors int) (int, bool, bool) {
	if num < 0 {
		n := num & math.MaxInt16
		return n, true, n < subsectors
	}
	return num, false, num < nodes
}

// renderBSPNode draws the subtree under child num front to back, skipping
// the far side of a node when its box is hidden.
func (f *Frame) renderBSPNode(lv *Level, num int, leaf bool) error {
	if leaf {
		return f.renderSubsector(lv, &lv.Subsectors[num])
	}
	n := &lv.Nodes[num]
	v := f.r.view
	side := n.pointSide(v.X, v.Y)
	if err := f.renderBSPNode(lv, n.Children[side], n.Leaf[side]); err != nil {
		return err
	}
	if !f.r.checkBBox(&n.BBox[side^1]) {
		return nil
	}
	return f.renderBSPNode(lv, n.Children[side^1], n.Leaf[side^1])
}

// renderSubsector makes the planes of the subsector's sector current and
// draws its segs.
func (f *Frame) renderSubsector(lv *Level, ss *Subsector) error {
	if ss.NumSegs == 0 {
		return nil
	}
	segs := lv.Segs[ss.FirstSeg : ss.FirstSeg+ss.NumSegs]
	if err := f.EnterSector(segs[0].Front); err != nil {
		return err
	}
	for i := range segs {
		if err := f.addSeg(&segs[i]); err != nil {
			return err
		}
	}
	return nil
}

// addSeg stores seg over the columns of its projection that are not yet
// solid.
func (f *Frame) addSeg(seg *Seg) error {
	start, stop, clip1, clip2, ok := f.r.projectSeg(seg)
	if !ok {
		return nil
	}
	solid := f.r.solid
	for x := start; x <= stop; {
		for x <= stop && solid[x] {
			x++
		}
		first := x
		for x <= stop && !solid[x] {
			x++
		}
		if first < x {
			if err := f.StoreWallRange(seg, first, x-1, clip1, clip2); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkBBox reports whether any part of b could be visible: the box is
// clipped to the near plane, projected, and its columns tested against
// the solid columns.
func (r *Renderer) checkBBox(b *BBox) bool {
	vx, vy := r.view.X, r.view.Y
	if vx >= b.Left && vx <= b.Right && vy >= b.Bottom && vy <= b.Top {
		return true
	}

	type point struct{ z, l float64 }
	var corners [4]point
	for i, c := range [4][2]fixed.Fixed{
		{b.Left, b.Top}, {b.Right, b.Top}, {b.Right, b.Bottom}, {b.Left, b.Bottom},
	} {
		corners[i].z, corners[i].l = r.toView(c[0].Float(), c[1].Float())
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	add := func(p point) {
		sx := r.screenX(p.z, p.l)
		lo, hi = min(lo, sx), max(hi, sx)
	}
	for i, p := range corners {
		q := corners[(i+1)%4]
		if p.z >= nearClip {
			add(p)
		}
		if (p.z >= nearClip) != (q.z >= nearClip) {
			t := (nearClip - p.z) / (q.z - p.z)
			add(point{nearClip, lerp(p.l, q.l, t)})
		}
	}
	if lo > hi {
		return false
	}

	start := max(int(math.Floor(lo)), 0)
	stop := min(int(math.Ceil(hi)), r.width-1)
	for x := start; x <= stop; x++ {
		if !r.solid[x] {
			return true
		}
	}
	return false
}
