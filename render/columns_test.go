package render

import (
	"fmt"
	"math/rand/v2"
	"testing"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

const sceneSkyFlat = 99

// testFlats serves a distinct pattern for every flat number.
type testFlats struct{}

func (testFlats) FlatData(n int) []byte {
	if n < 0 {
		return nil
	}
	b := make([]byte, wad.FlatWidth*wad.FlatHeight)
	for i := range b {
		b[i] = byte(n*7 + i*13)
	}
	return b
}

// shadedColorMaps darkens by four indices per light map.
func shadedColorMaps() *wad.ColorMaps {
	cm := new(wad.ColorMaps)
	for i := range cm {
		for j := range cm[i] {
			cm[i][j] = byte(max(j-i*4, 0))
		}
	}
	return cm
}

// buildScene fills ts with a few textures and returns a level of random
// walls in front of the origin, plus its sky.
func buildScene(ts *wad.TextureSet) (*Level, Sky) {
	rng := rand.New(rand.NewPCG(7, 11))
	wall := ts.Add(wad.NewTexture("WALL", 64, 128, randomTexels(rng, 64*128)))
	odd := ts.Add(wad.NewTexture("ODD", 48, 72, randomTexels(rng, 48*72)))

	grate := randomTexels(rng, 32*64)
	for i := range grate {
		if rng.IntN(3) == 0 {
			grate[i] = 0
		}
	}
	grateTex := ts.Add(wad.NewMaskedTexture("GRATE", 32, 64, grate, 0))

	clouds := randomTexels(rng, 256*128)
	for i := range clouds {
		if i%128 > 80 {
			clouds[i] = 0
		}
	}
	front := ts.Add(wad.NewTexture("SKY1", 256, 128, clouds))
	back := ts.Add(wad.NewTexture("SKY2", 256, 128, randomTexels(rng, 256*128)))

	const n = 48
	lv := &Level{
		Sectors: make([]Sector, n*2),
		Lines:   make([]Line, n),
		Sides:   make([]Side, n),
		Segs:    make([]Seg, n),
		SkyFlat: sceneSkyFlat,
	}
	textures := []int{wall, odd}
	for i := range lv.Sectors {
		s := &lv.Sectors[i]
		s.Floor = LevelPlane(fixed.FromInt(rng.IntN(48) - 16))
		s.Ceiling = LevelPlane(fixed.FromInt(72 + rng.IntN(128)))
		s.FloorPic = 1 + rng.IntN(5)
		s.CeilingPic = 1 + rng.IntN(5)
		if rng.IntN(3) == 0 {
			s.CeilingPic = sceneSkyFlat
		}
		s.LightLevel = 64 + rng.IntN(192)
		s.FloorXOffs = fixed.FromInt(rng.IntN(64))
	}
	for i := range n {
		twoSided := rng.IntN(2) == 0
		side := &lv.Sides[i]
		*side = Side{
			TextureOffset: fixed.FromInt(rng.IntN(64)),
			RowOffset:     fixed.FromInt(rng.IntN(32)),
			Top:           textures[rng.IntN(2)],
			Bottom:        textures[rng.IntN(2)],
			Mid:           textures[rng.IntN(2)],
		}
		line := &lv.Lines[i]
		*line = Line{
			UpperUnpegged: rng.IntN(2) == 0,
			LowerUnpegged: rng.IntN(2) == 0,
			Lucency:       255,
			SlopeType:     SlopeType(rng.IntN(4)),
		}
		if twoSided {
			side.Mid = wad.NoTexture
			if rng.IntN(2) == 0 {
				side.Mid = grateTex
				if rng.IntN(2) == 0 {
					line.Lucency = 100
				}
			}
		}

		// V1 is left of V2 as seen from the origin, so every seg faces it.
		d := 48 + rng.Float64()*560
		y := rng.Float64()*800 - 400
		length := 16 + rng.Float64()*240
		skew := rng.Float64()*120 - 60
		seg := &lv.Segs[i]
		*seg = Seg{
			V1:     vertex(d+skew, y+length),
			V2:     vertex(d-skew, y),
			Offset: fixed.FromInt(rng.IntN(128)),
			Line:   line,
			Side:   side,
			Front:  &lv.Sectors[2*i],
		}
		if twoSided {
			seg.Back = &lv.Sectors[2*i+1]
		}
	}
	return lv, Sky{Front: front, Back: back, FrontOffset: fixed.FromInt(17)}
}

func renderScene(t *testing.T, is8Bit bool, method ColumnMethod, caps Capabilities) *Canvas {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ColumnMethod = method
	cfg.Capabilities = &caps
	r, c, ts := newTestRenderer(t, cfg, is8Bit)
	lv, sky := buildScene(ts)
	r.SetFlats(testFlats{})
	r.SetColormaps(shadedColorMaps())
	r.SetSkyFlat(lv.SkyFlat)
	r.SetSky(sky)

	for _, angle := range []fixed.Angle{0, fixed.Ang45 / 3, fixed.Ang270 + fixed.Ang45} {
		f := r.BeginFrame(View{Z: fixed.FromInt(41), Angle: angle})
		if err := f.DrawLevel(lv); err != nil {
			t.Fatalf("DrawLevel: %v", err)
		}
	}
	return c
}

func compareCanvases(t *testing.T, want, got *Canvas) {
	t.Helper()
	diffs := 0
	for y := range want.Height() {
		for x := range want.Width() {
			if a, b := want.At(x, y), got.At(x, y); a != b {
				if diffs < 5 {
					t.Errorf("pixel (%d, %d) = %#x, want %#x", x, y, b, a)
				}
				diffs++
			}
		}
	}
	if diffs > 0 {
		t.Errorf("%d pixels differ", diffs)
	}
}

func TestBatchedMatchesDirect(t *testing.T) {
	for _, is8Bit := range []bool{true, false} {
		for _, caps := range []Capabilities{{Name: "scalar"}, {Wide: true, Name: "wide"}} {
			t.Run(fmt.Sprintf("%v/%v", depthName(NewCanvas(4, 2, is8Bit)), caps.Name), func(t *testing.T) {
				direct := renderScene(t, is8Bit, ColumnsDirect, caps)
				batched := renderScene(t, is8Bit, ColumnsBatched, caps)
				compareCanvases(t, direct, batched)
			})
		}
	}
}

func TestWideMatchesScalar(t *testing.T) {
	for _, is8Bit := range []bool{true, false} {
		for _, method := range []ColumnMethod{ColumnsDirect, ColumnsBatched} {
			t.Run(fmt.Sprintf("%v/%v", depthName(NewCanvas(4, 2, is8Bit)), method), func(t *testing.T) {
				scalar := renderScene(t, is8Bit, method, Capabilities{Name: "scalar"})
				wide := renderScene(t, is8Bit, method, Capabilities{Wide: true, Name: "wide"})
				compareCanvases(t, scalar, wide)
			})
		}
	}
}

func TestRenderColumnRangeGroups(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnMethod = ColumnsBatched
	r, _, _ := newTestRenderer(t, cfg, true)
	var batches []int
	d := r.drawers
	d.DrawBatch = func(b *BatchParams) { batches = append(batches, b.X) }
	r.SetDrawers(d)

	var order []int
	blast := func(x int) {
		order = append(order, x)
		r.col = ColumnParams{X: x, YL: 10, YH: 20, Source: []byte{1}, TextureHeight: 1, Colormap: r.colormap(0, 0)}
		r.emit(&r.col, ColumnNormal)
	}
	r.renderColumnRange(5, 15, true, blast, nil)

	if len(order) != 11 || order[0] != 5 || order[10] != 15 {
		t.Errorf("blast order = %v", order)
	}
	if want := []int{5, 9}; fmt.Sprint(batches) != fmt.Sprint(want) {
		t.Errorf("batches at %v, want %v", batches, want)
	}
}
