package render

import (
	"errors"
	"math/rand/v2"
	"testing"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
)

func newTestRenderer(t *testing.T, cfg Config, is8Bit bool) (*Renderer, *Canvas, *wad.TextureSet) {
	t.Helper()
	if cfg.Capabilities == nil {
		cfg.Capabilities = &Capabilities{Name: "scalar"}
	}
	c := NewCanvas(cfg.Width, cfg.Height, is8Bit)
	ts := wad.NewTextureSet()
	r, err := NewRenderer(cfg, c, ts)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, c, ts
}

// randomTexels returns n texels that are never 0.
func randomTexels(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(1 + rng.IntN(255))
	}
	return b
}

func vertex(x, y float64) Vertex {
	return Vertex{fixed.FromFloat(x), fixed.FromFloat(y)}
}

func room(floor, ceiling int) *Sector {
	return &Sector{
		Floor:      LevelPlane(fixed.FromInt(floor)),
		Ceiling:    LevelPlane(fixed.FromInt(ceiling)),
		LightLevel: 255,
	}
}

// facingWall is a seg across the view axis at x = 160, seen from the origin,
// covering screen columns 100 to 140 of a 320 wide view.
func facingWall(side *Side, front, back *Sector) *Seg {
	return &Seg{
		V1:    vertex(160, 60),
		V2:    vertex(160, 19),
		Line:  &Line{Lucency: 255},
		Side:  side,
		Front: front,
		Back:  back,
	}
}

var eyeLevel = View{Z: fixed.FromInt(64)}

// columnLog records what the direct drawers were asked to draw.
type columnLog struct {
	calls []ColumnParams
}

func (l *columnLog) drawers() Drawers {
	rec := func(p *ColumnParams) { l.calls = append(l.calls, *p) }
	return Drawers{
		DrawColumn:            rec,
		DrawFuzzColumn:        rec,
		DrawTranslucentColumn: rec,
		DrawTranslatedColumn:  rec,
		FillColumn:            rec,
		DrawSpan:              func(*SpanParams) {},
		FillSpan:              func(*SpanParams) {},
	}
}

func TestProjectSeg(t *testing.T) {
	r, _, _ := newTestRenderer(t, DefaultConfig(), true)
	f := r.BeginFrame(eyeLevel)

	tests := []struct {
		name        string
		v1, v2      Vertex
		start, stop int
		ok          bool
	}{
		{"facing", vertex(160, 60), vertex(160, 19), 100, 140, true},
		{"backface", vertex(160, 19), vertex(160, 60), 0, -1, false},
		{"behind", vertex(-160, 19), vertex(-160, 60), 0, -1, false},
		{"left of view", vertex(10, 200), vertex(20, 100), 0, -1, false},
		{"through the near plane", vertex(-50, 100), vertex(100, -100), 0, 319, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := &Seg{V1: tt.v1, V2: tt.v2}
			start, stop, _, _, ok := f.ProjectSeg(seg)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (start != tt.start || stop != tt.stop) {
				t.Errorf("columns = [%d, %d], want [%d, %d]", start, stop, tt.start, tt.stop)
			}
		})
	}
}

func TestProjectSegClipFractions(t *testing.T) {
	r, _, _ := newTestRenderer(t, DefaultConfig(), true)
	f := r.BeginFrame(eyeLevel)

	// Half of this seg lies behind the view.
	seg := &Seg{V1: vertex(-100, 150), V2: vertex(100, -50)}
	_, _, clip1, clip2, ok := f.ProjectSeg(seg)
	if !ok {
		t.Fatal("seg not visible")
	}
	if clip1 < fixed.FracUnit/2 || clip1 >= fixed.FracUnit {
		t.Errorf("clip1 = %v, want at least half the seg", clip1.Float())
	}
	if clip2 < 0 || clip1+clip2 >= fixed.FracUnit {
		t.Errorf("clip1 + clip2 = %v, nothing left to draw", (clip1 + clip2).Float())
	}
}

func TestStoreWallRangeOneSided(t *testing.T) {
	r, c, ts := newTestRenderer(t, DefaultConfig(), true)
	rng := rand.New(rand.NewPCG(1, 2))
	texels := randomTexels(rng, 64*128)
	tex := ts.Add(wad.NewTexture("WALL", 64, 128, texels))

	seg := facingWall(&Side{Mid: tex}, room(0, 128), nil)
	f := r.BeginFrame(eyeLevel)
	start, stop, clip1, clip2, ok := f.ProjectSeg(seg)
	if !ok || start != 100 || stop != 140 {
		t.Fatalf("ProjectSeg = [%d, %d] %v, want [100, 140] true", start, stop, ok)
	}
	if err := f.StoreWallRange(seg, start, stop, clip1, clip2); err != nil {
		t.Fatalf("StoreWallRange: %v", err)
	}

	if got, want := r.wall.topF[120], fixed.Fixed(36<<HeightBits); got != want {
		t.Errorf("top row = %v, want %v", got, want)
	}
	if got, want := r.wall.bottomF[120], fixed.Fixed(164<<HeightBits); got != want {
		t.Errorf("bottom row = %v, want %v", got, want)
	}

	// The texel at u = 20 is column 20; rows 36 and 164 show texel rows 0
	// and 127.
	if got, want := c.At(120, 36), uint32(texels[20*128]); got != want {
		t.Errorf("pixel (120, 36) = %d, want %d", got, want)
	}
	if got, want := c.At(120, 164), uint32(texels[20*128+127]); got != want {
		t.Errorf("pixel (120, 164) = %d, want %d", got, want)
	}
	if c.At(120, 35) != 0 || c.At(120, 165) != 0 {
		t.Errorf("wall drawn outside rows [36, 164]")
	}

	for x := range r.width {
		inside := x >= start && x <= stop
		if f.Solid(x) != inside {
			t.Errorf("Solid(%d) = %v, want %v", x, f.Solid(x), inside)
		}
		if inside && (f.CeilingClip()[x] != r.height || f.FloorClip()[x] != r.height) {
			t.Errorf("column %d clips = (%d, %d), want closed", x, f.CeilingClip()[x], f.FloorClip()[x])
		}
	}

	segs := f.DrawSegs()
	if len(segs) != 1 {
		t.Fatalf("%d drawsegs, want 1", len(segs))
	}
	ds := segs[0]
	if ds.X1 != start || ds.X2 != stop || ds.Silhouette != SilBoth {
		t.Errorf("drawseg = [%d, %d] silhouette %d", ds.X1, ds.X2, ds.Silhouette)
	}
	for x := start; x <= stop; x++ {
		i := x - start
		if ds.SprTopClip[i] != f.CeilingClip()[x] || ds.SprBottomClip[i] != f.FloorClip()[x] {
			t.Fatalf("sprite clips at %d = (%d, %d), want (%d, %d)", x,
				ds.SprTopClip[i], ds.SprBottomClip[i], f.CeilingClip()[x], f.FloorClip()[x])
		}
	}
}

func TestStoreWallRangeMarksPlanes(t *testing.T) {
	r, _, ts := newTestRenderer(t, DefaultConfig(), true)
	tex := ts.Add(wad.NewTexture("WALL", 64, 128, make([]byte, 64*128)))
	sec := room(0, 128)
	sec.FloorPic, sec.CeilingPic = 1, 2
	seg := facingWall(&Side{Mid: tex}, sec, nil)

	f := r.BeginFrame(eyeLevel)
	if err := f.EnterSector(sec); err != nil {
		t.Fatal(err)
	}
	if err := f.StoreWallRange(seg, 100, 140, 0, 0); err != nil {
		t.Fatal(err)
	}

	planes := r.Visplanes().All()
	if len(planes) != 2 {
		t.Fatalf("%d visplanes, want 2", len(planes))
	}
	for _, pl := range planes {
		if pl.MinX != 100 || pl.MaxX != 140 {
			t.Errorf("plane %d spans [%d, %d], want [100, 140]", pl.Picnum, pl.MinX, pl.MaxX)
		}
		top, bottom := 165, 199
		if pl.Picnum == 2 {
			top, bottom = 0, 35
		}
		if pl.Top[120] != top || pl.Bottom[120] != bottom {
			t.Errorf("plane %d rows at 120 = [%d, %d], want [%d, %d]",
				pl.Picnum, pl.Top[120], pl.Bottom[120], top, bottom)
		}
		if pl.Top[99] != Unmarked {
			t.Errorf("plane %d marked outside the wall", pl.Picnum)
		}
	}
}

func TestStoreWallRangeStep(t *testing.T) {
	r, _, ts := newTestRenderer(t, DefaultConfig(), true)
	tex := ts.Add(wad.NewTexture("STEP", 64, 64, make([]byte, 64*64)))
	var log columnLog
	r.SetDrawers(log.drawers())

	seg := facingWall(&Side{Bottom: tex}, room(0, 128), room(24, 128))
	f := r.BeginFrame(eyeLevel)
	if err := f.StoreWallRange(seg, 100, 140, 0, 0); err != nil {
		t.Fatal(err)
	}

	if len(log.calls) != 41 {
		t.Fatalf("%d columns drawn, want 41", len(log.calls))
	}
	for _, p := range log.calls {
		if p.YL != 140 || p.YH != 164 {
			t.Errorf("column %d rows = [%d, %d], want [140, 164]", p.X, p.YL, p.YH)
		}
	}
	for x := 100; x <= 140; x++ {
		if got := f.FloorClip()[x]; got != 140 {
			t.Errorf("floor clip %d = %d, want 140", x, got)
		}
		if got := f.CeilingClip()[x]; got != -1 {
			t.Errorf("ceiling clip %d = %d, want -1", x, got)
		}
		if f.Solid(x) {
			t.Errorf("column %d solid behind a step", x)
		}
	}
	// A step up hides nothing behind it from sprites.
	ds := f.DrawSegs()[0]
	if ds.Silhouette != SilNone {
		t.Errorf("silhouette = %d, want none", ds.Silhouette)
	}
	if ds.SprTopClip != nil || ds.SprBottomClip != nil {
		t.Errorf("sprite clips saved without a silhouette")
	}
}

func TestStoreWallRangeClosedDoor(t *testing.T) {
	r, _, _ := newTestRenderer(t, DefaultConfig(), true)
	seg := facingWall(&Side{}, room(0, 128), room(0, 0))
	f := r.BeginFrame(eyeLevel)
	if err := f.StoreWallRange(seg, 100, 140, 0, 0); err != nil {
		t.Fatal(err)
	}
	for x := 100; x <= 140; x++ {
		if !f.Solid(x) {
			t.Fatalf("column %d open behind a closed door", x)
		}
	}
	if ds := f.DrawSegs()[0]; ds.Silhouette != SilBoth {
		t.Errorf("silhouette = %d, want both", ds.Silhouette)
	}
}

func TestScaleFallsWithDepth(t *testing.T) {
	r, _, ts := newTestRenderer(t, DefaultConfig(), true)
	tex := ts.Add(wad.NewTexture("WALL", 64, 128, make([]byte, 64*128)))
	seg := &Seg{
		V1:    vertex(64, 64),
		V2:    vertex(512, -256),
		Line:  &Line{Lucency: 255},
		Side:  &Side{Mid: tex},
		Front: room(0, 128),
	}
	f := r.BeginFrame(View{Z: fixed.FromInt(41)})
	start, stop, clip1, clip2, ok := f.ProjectSeg(seg)
	if !ok {
		t.Fatal("seg not visible")
	}
	if err := f.StoreWallRange(seg, start, stop, clip1, clip2); err != nil {
		t.Fatal(err)
	}
	w := &r.wall
	for x := start; x < stop; x++ {
		if w.scale[x] < w.scale[x+1] {
			t.Fatalf("scale grows from %d to %d: %v < %v", x, x+1, w.scale[x], w.scale[x+1])
		}
		if w.topF[x] > w.topF[x+1] || w.bottomF[x] < w.bottomF[x+1] {
			t.Fatalf("wall grows from %d to %d", x, x+1)
		}
	}
	ds := f.DrawSegs()[0]
	if ds.Scale1 < ds.Scale2 || ds.ScaleStep > 0 {
		t.Errorf("drawseg scales %v..%v step %v", ds.Scale1, ds.Scale2, ds.ScaleStep)
	}
}

func TestClipArraysStayOrdered(t *testing.T) {
	r, _, ts := newTestRenderer(t, DefaultConfig(), true)
	rng := rand.New(rand.NewPCG(3, 4))
	tex := ts.Add(wad.NewTexture("WALL", 64, 64, randomTexels(rng, 64*64)))

	for frame := range 20 {
		f := r.BeginFrame(View{Z: fixed.FromInt(41), Angle: fixed.Angle(rng.Uint32())})
		for i := range 40 {
			front := room(rng.IntN(80)-40, rng.IntN(160)-20)
			var back *Sector
			if rng.IntN(3) > 0 {
				back = room(rng.IntN(80)-40, rng.IntN(160)-20)
			}
			seg := &Seg{
				V1:    vertex(rng.Float64()*1024-512, rng.Float64()*1024-512),
				V2:    vertex(rng.Float64()*1024-512, rng.Float64()*1024-512),
				Line:  &Line{Lucency: 255},
				Side:  &Side{Top: tex, Mid: tex, Bottom: tex},
				Front: front,
				Back:  back,
			}
			start, stop, clip1, clip2, ok := f.ProjectSeg(seg)
			if !ok {
				continue
			}
			if err := f.StoreWallRange(seg, start, stop, clip1, clip2); err != nil {
				t.Fatalf("frame %d seg %d: %v", frame, i, err)
			}
			for x := range r.width {
				top, bottom := f.CeilingClip()[x], f.FloorClip()[x]
				if top < -1 || top > bottom || bottom > r.height {
					t.Fatalf("frame %d seg %d column %d: clips (%d, %d)", frame, i, x, top, bottom)
				}
				if f.Solid(x) && top+1 < bottom {
					t.Fatalf("frame %d seg %d column %d: solid with a gap (%d, %d)", frame, i, x, top, bottom)
				}
			}
		}
	}
}

func TestStoreWallRangeBounds(t *testing.T) {
	seg := facingWall(&Side{}, room(0, 128), nil)

	t.Run("strict", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strict = true
		r, _, _ := newTestRenderer(t, cfg, true)
		f := r.BeginFrame(eyeLevel)
		if err := f.StoreWallRange(seg, -5, 140, 0, 0); !errors.Is(err, ErrBadRange) {
			t.Errorf("err = %v, want ErrBadRange", err)
		}
		if err := f.StoreWallRange(seg, 100, 320, 0, 0); !errors.Is(err, ErrBadRange) {
			t.Errorf("err = %v, want ErrBadRange", err)
		}
		if len(f.DrawSegs()) != 0 {
			t.Errorf("drawseg stored for a rejected range")
		}
	})

	t.Run("clamped", func(t *testing.T) {
		r, _, _ := newTestRenderer(t, DefaultConfig(), true)
		f := r.BeginFrame(eyeLevel)
		if err := f.StoreWallRange(seg, 90, 400, 0, 0); err != nil {
			t.Fatal(err)
		}
		ds := f.DrawSegs()[0]
		if ds.X1 != 90 || ds.X2 != 319 {
			t.Errorf("drawseg = [%d, %d], want [90, 319]", ds.X1, ds.X2)
		}
	})

	t.Run("empty", func(t *testing.T) {
		r, _, _ := newTestRenderer(t, DefaultConfig(), true)
		f := r.BeginFrame(eyeLevel)
		if err := f.StoreWallRange(seg, 120, 119, 0, 0); err != nil {
			t.Fatal(err)
		}
		if len(f.DrawSegs()) != 0 {
			t.Errorf("drawseg stored for an empty range")
		}
	})

	t.Run("incomplete seg", func(t *testing.T) {
		r, _, _ := newTestRenderer(t, DefaultConfig(), true)
		f := r.BeginFrame(eyeLevel)
		if err := f.StoreWallRange(&Seg{}, 100, 140, 0, 0); !errors.Is(err, ErrBadSeg) {
			t.Errorf("err = %v, want ErrBadSeg", err)
		}
	})
}

func TestStaleFrame(t *testing.T) {
	r, _, _ := newTestRenderer(t, DefaultConfig(), true)
	old := r.BeginFrame(eyeLevel)
	cur := r.BeginFrame(eyeLevel)
	if cur.ID() <= old.ID() {
		t.Errorf("frame ids %d then %d", old.ID(), cur.ID())
	}

	seg := facingWall(&Side{}, room(0, 128), nil)
	if err := old.StoreWallRange(seg, 100, 140, 0, 0); !errors.Is(err, ErrStaleFrame) {
		t.Errorf("StoreWallRange err = %v, want ErrStaleFrame", err)
	}
	if err := old.DrawPlanes(); !errors.Is(err, ErrStaleFrame) {
		t.Errorf("DrawPlanes err = %v, want ErrStaleFrame", err)
	}
	if err := old.RenderSkyRange(nil); !errors.Is(err, ErrStaleFrame) {
		t.Errorf("RenderSkyRange err = %v, want ErrStaleFrame", err)
	}
	if _, _, _, _, ok := old.ProjectSeg(seg); ok {
		t.Errorf("stale frame projected a seg")
	}
	if err := cur.StoreWallRange(seg, 100, 140, 0, 0); err != nil {
		t.Errorf("current frame: %v", err)
	}

	if !cur.Solid(120) || len(cur.DrawSegs()) != 1 || cur.View() != eyeLevel {
		t.Errorf("current frame lost its state")
	}
	if old.Solid(120) {
		t.Errorf("stale frame reports a solid column")
	}
	if old.DrawSegs() != nil || old.CeilingClip() != nil || old.FloorClip() != nil {
		t.Errorf("stale frame exposes the current frame's arrays")
	}
	if old.View() != (View{}) {
		t.Errorf("stale frame view = %+v, want zero", old.View())
	}
}

func TestDrawMasked(t *testing.T) {
	r, c, ts := newTestRenderer(t, DefaultConfig(), true)

	// Top half opaque, bottom half see-through.
	pix := make([]byte, 64*128)
	for x := range 64 {
		for y := range 64 {
			pix[x*128+y] = 9
		}
	}
	grate := ts.Add(wad.NewMaskedTexture("GRATE", 64, 128, pix, 0))

	seg := facingWall(&Side{Mid: grate}, room(0, 128), room(0, 128))
	f := r.BeginFrame(eyeLevel)
	if err := f.StoreWallRange(seg, 100, 140, 0, 0); err != nil {
		t.Fatal(err)
	}
	if c.At(120, 50) != 0 {
		t.Fatal("masked texture drawn before DrawMasked")
	}
	if err := f.DrawMasked(); err != nil {
		t.Fatal(err)
	}
	if got := c.At(120, 50); got != 9 {
		t.Errorf("pixel (120, 50) = %d, want 9", got)
	}
	if got := c.At(120, 120); got != 0 {
		t.Errorf("pixel (120, 120) = %d, want the gap", got)
	}
	for i, col := range f.DrawSegs()[0].MaskedTextureCol {
		if col != maskedDone {
			t.Errorf("column %d not marked done", 100+i)
		}
	}
}

func TestNewRendererErrors(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewRenderer(cfg, nil, wad.NewTextureSet()); !errors.Is(err, ErrNoSurface) {
		t.Errorf("nil surface: err = %v, want ErrNoSurface", err)
	}
	if _, err := NewRenderer(cfg, NewCanvas(100, 100, true), wad.NewTextureSet()); !errors.Is(err, ErrBadConfig) {
		t.Errorf("small surface: err = %v, want ErrBadConfig", err)
	}
	cfg.FieldOfView = 0
	if _, err := NewRenderer(cfg, NewCanvas(320, 200, true), wad.NewTextureSet()); !errors.Is(err, ErrBadConfig) {
		t.Errorf("bad config: err = %v, want ErrBadConfig", err)
	}
}
