package render

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

// Translucent middle textures drawn by line special 260.
const boomLucency = 128

// viewHeight is the height of the player's eyes above the floor.
const viewHeight = 41

// Level is a WAD level converted to render geometry.
type Level struct {
	Name    string
	Sectors []Sector
	Lines   []Line
	Sides   []Side
	Segs    []Seg
	SkyFlat int
	Start   View // first player start, eyes above the floor

	// BSP tree; the root is the last node. Empty for hand-built levels.
	Nodes      []Node
	Subsectors []Subsector

	src *wad.Level
}

// NewLevel converts l. w resolves flat numbers and may be nil, in which
// case every flat is -1.
func NewLevel(l *wad.Level, w *wad.WAD) (*Level, error) {
	flatNum := func(name string) int {
		if w == nil {
			return -1
		}
		return w.FlatNum(name)
	}
	lv := &Level{
		Name:    l.Name,
		Sectors: make([]Sector, len(l.Sectors)),
		Lines:   make([]Line, len(l.Lines)),
		Sides:   make([]Side, len(l.Sides)),
		Segs:    make([]Seg, 0, len(l.LineSegments)),
		SkyFlat: flatNum(wad.SkyFlatName),
		src:     l,
	}

	for i, s := range l.Sectors {
		lv.Sectors[i] = Sector{
			Floor:      LevelPlane(fixed.FromFloat(s.FloorHeight)),
			Ceiling:    LevelPlane(fixed.FromFloat(s.CeilingHeight)),
			FloorPic:   flatNum(s.FloorTextureName),
			CeilingPic: flatNum(s.CeilingTextureName),
			LightLevel: s.LightLevel,
		}
	}
	for i, s := range l.Sides {
		lv.Sides[i] = Side{
			TextureOffset: fixed.FromFloat(s.XOffset),
			RowOffset:     fixed.FromFloat(s.YOffset),
			Top:           s.UpperTexture,
			Mid:           s.MiddleTexture,
			Bottom:        s.LowerTexture,
		}
	}
	for i := range l.Lines {
		li := &l.Lines[i]
		line := &lv.Lines[i]
		*line = Line{
			UpperUnpegged: li.UpperTextureUnpegged,
			LowerUnpegged: li.LowerTextureUnpegged,
			Lucency:       255,
			SlopeType:     slopeType(li.SlopeType),
			DontFlipSky:   li.Type == wad.LineTypeSkyTransferNoFlip,
		}
		if li.SideRNum >= 0 && li.SideRNum < len(lv.Sides) {
			line.Front = &lv.Sides[li.SideRNum]
		}
	}

	// Specials that change how other lines and sectors are drawn.
	for i := range l.Lines {
		li := &l.Lines[i]
		switch {
		case li.Type == wad.LineTypeTranslucent:
			if li.SectorTagNum == 0 {
				lv.Lines[i].Lucency = boomLucency
				continue
			}
			for j := range l.Lines {
				if l.Lines[j].SectorTagNum == li.SectorTagNum {
					lv.Lines[j].Lucency = boomLucency
				}
			}
		case li.Type.IsSkyTransfer():
			for _, s := range li.TaggedSectors {
				lv.Sectors[s.Index].SkyLine = &lv.Lines[i]
			}
		}
	}

	for i := range l.LineSegments {
		s := &l.LineSegments[i]
		if s.LineNum < 0 || s.LineNum >= len(l.Lines) {
			return nil, fmt.Errorf("seg %v: bad line %v", i, s.LineNum)
		}
		li := &l.Lines[s.LineNum]
		sideNum, backNum := li.SideRNum, li.SideLNum
		if s.IsSideL {
			sideNum, backNum = backNum, sideNum
		}
		if sideNum < 0 || sideNum >= len(lv.Sides) {
			return nil, fmt.Errorf("seg %v: no side", i)
		}
		if sec := l.Sides[sideNum].SectorNum; sec < 0 || sec >= len(lv.Sectors) {
			return nil, fmt.Errorf("seg %v: bad sector %v", i, sec)
		}
		seg := Seg{
			V1:     Vertex{fixed.FromFloat(s.V1.X), fixed.FromFloat(s.V1.Y)},
			V2:     Vertex{fixed.FromFloat(s.V2.X), fixed.FromFloat(s.V2.Y)},
			Offset: fixed.FromFloat(s.Offset),
			Line:   &lv.Lines[s.LineNum],
			Side:   &lv.Sides[sideNum],
			Front:  &lv.Sectors[l.Sides[sideNum].SectorNum],
		}
		if li.TwoSided && backNum >= 0 && backNum < len(lv.Sides) &&
			l.Sides[backNum].SectorNum >= 0 && l.Sides[backNum].SectorNum < len(lv.Sectors) {
			seg.Back = &lv.Sectors[l.Sides[backNum].SectorNum]
		}
		lv.Segs = append(lv.Segs, seg)
	}

	for i, ss := range l.SubSectors {
		if ss.StartLineSegment < 0 || ss.NumLineSegments < 0 || ss.StartLineSegment+ss.NumLineSegments > len(lv.Segs) {
			return nil, fmt.Errorf("subsector %v: bad segs", i)
		}
		lv.Subsectors = append(lv.Subsectors, Subsector{FirstSeg: ss.StartLineSegment, NumSegs: ss.NumLineSegments})
	}
	for i := range l.Nodes {
		n := &l.Nodes[i]
		node := Node{
			X:    fixed.FromFloat(n.X),
			Y:    fixed.FromFloat(n.Y),
			DX:   fixed.FromFloat(n.DX),
			DY:   fixed.FromFloat(n.DY),
			BBox: [2]BBox{bboxFromWAD(n.BBoxR), bboxFromWAD(n.BBoxL)},
		}
		for side, num := range [2]int{n.ChildNumR, n.ChildNumL} {
			var ok bool
			node.Children[side], node.Leaf[side], ok = bspChild(num, len(l.Nodes), len(lv.Subsectors))
			if !ok {
				return nil, fmt.Errorf("node %v: bad child %v", i, num)
			}
		}
		lv.Nodes = append(lv.Nodes, node)
	}

	for _, t := range l.Things {
		if t.Type != wad.ThingPlayer1Start {
			continue
		}
		x, y := float64(t.X), float64(t.Y)
		lv.Start = View{
			X:     fixed.FromFloat(x),
			Y:     fixed.FromFloat(y),
			Angle: fixed.AngleFromRadians(t.Angle),
		}
		if sec := lv.SectorAt(x, y); sec != nil {
			lv.Start.Z = sec.Floor.ZAt(lv.Start.X, lv.Start.Y) + fixed.FromInt(viewHeight)
		}
		break
	}
	return lv, nil
}

func slopeType(t wad.SlopeType) SlopeType {
	switch t {
	case wad.SlopeTypeHorizontal:
		return SlopeHorizontal
	case wad.SlopeTypeVertical:
		return SlopeVertical
	case wad.SlopeTypePositive:
		return SlopePositive
	}
	return SlopeNegative
}

// SectorAt returns the sector containing map point (x, y), found by
// counting crossings of its boundary lines, or nil.
func (lv *Level) SectorAt(x, y float64) *Sector {
	if lv.src == nil {
		return nil
	}
	for i := range lv.src.Sectors {
		inside := false
		for _, li := range lv.src.Sectors[i].Lines {
			a, b := li.V1, li.V2
			if (a.Y > y) != (b.Y > y) && x < a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y) {
				inside = !inside
			}
		}
		if inside {
			return &lv.Sectors[i]
		}
	}
	return nil
}

// DrawLevel renders a whole frame of lv: segs are stored front to back
// over the columns that are not yet solid, then planes, skies and masked
// textures are drawn. The BSP tree gives the order; levels without one
// fall back to sorting segs by the distance of their midpoints, which is
// not exact and may overdraw.
func (f *Frame) DrawLevel(lv *Level) error {
	if err := f.check(); err != nil {
		return err
	}
	var err error
	switch {
	case len(lv.Nodes) > 0:
		err = f.renderBSPNode(lv, len(lv.Nodes)-1, false)
	case len(lv.Subsectors) > 0:
		err = f.renderBSPNode(lv, 0, true)
	default:
		err = f.drawSegsByDistance(lv)
	}
	if err != nil {
		return err
	}
	if err := f.DrawPlanes(); err != nil {
		return err
	}
	return f.DrawMasked()
}

func (f *Frame) drawSegsByDistance(lv *Level) error {
	v := f.r.view
	vx, vy := v.X.Float(), v.Y.Float()
	order := make([]int, len(lv.Segs))
	dist := make([]float64, len(lv.Segs))
	for i := range lv.Segs {
		s := &lv.Segs[i]
		mx := (s.V1.X.Float() + s.V2.X.Float()) / 2
		my := (s.V1.Y.Float() + s.V2.Y.Float()) / 2
		order[i], dist[i] = i, math.Hypot(mx-vx, my-vy)
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(dist[a], dist[b])
	})

	for _, i := range order {
		seg := &lv.Segs[i]
		if _, _, _, _, ok := f.r.projectSeg(seg); !ok {
			continue
		}
		if err := f.EnterSector(seg.Front); err != nil {
			return err
		}
		if err := f.addSeg(seg); err != nil {
			return err
		}
	}
	return nil
}
