package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"math"
	"os"

	wad "github.com/stuarthighley/wadrender"
	"github.com/stuarthighley/wadrender/fixed"
	"github.com/stuarthighley/wadrender/render"
	"golang.org/x/image/draw"
)

func main() {
	wadFile := flag.String("wad", "", "WAD file to load; empty renders a built-in room")
	mapName := flag.String("map", "", "level to render; defaults to the first level in the WAD")
	out := flag.String("out", "frame.png", "PNG file to write")
	width := flag.Int("width", 320, "view width")
	height := flag.Int("height", 200, "view height")
	fov := flag.Int("fov", 90, "horizontal field of view in degrees")
	batched := flag.Bool("batched", false, "draw walls in batches of four columns")
	depth := flag.Int("depth", 8, "surface depth, 8 or 32")
	scale := flag.Int("scale", 1, "scale the PNG by this factor")
	angle := flag.Float64("angle", math.NaN(), "view angle in degrees; defaults to the player start")
	verbose := flag.Bool("v", false, "log progress to stderr")
	tree := flag.Bool("tree", false, "print the level's BSP tree to stdout")
	flag.Parse()

	log.Println("Starting")

	// Set loggers
	if *verbose {
		l := log.New(os.Stderr, "", log.LstdFlags)
		wad.SetLogger(l)
		render.SetLogger(l)
	}

	if *depth != 8 && *depth != 32 {
		log.Fatalln("depth must be 8 or 32")
	}
	if *scale < 1 {
		log.Fatalln("scale must be at least 1")
	}

	cfg := render.DefaultConfig()
	cfg.Width, cfg.Height, cfg.FieldOfView = *width, *height, *fov
	if *batched {
		cfg.ColumnMethod = render.ColumnsBatched
	}
	canvas := render.NewCanvas(cfg.Width, cfg.Height, *depth == 8)

	var (
		r   *render.Renderer
		lv  *render.Level
		err error
	)
	if *wadFile == "" {
		r, lv, err = roomScene(cfg, canvas)
	} else {
		var treeOut io.Writer
		if *tree {
			treeOut = os.Stdout
		}
		r, lv, err = wadScene(cfg, canvas, *wadFile, *mapName, treeOut)
	}
	if err != nil {
		log.Fatalln(err)
	}

	view := lv.Start
	if !math.IsNaN(*angle) {
		view.Angle = fixed.AngleFromRadians(*angle * math.Pi / 180)
	}
	f := r.BeginFrame(view)
	if err := f.DrawLevel(lv); err != nil {
		log.Fatalln(err)
	}
	log.Printf("Rendered %v with %v columns, %v drawsegs, %v visplanes",
		lv.Name, cfg.ColumnMethod, len(f.DrawSegs()), len(r.Visplanes().All()))

	if err := writePNG(*out, canvas.Image(), *scale); err != nil {
		log.Fatalln(err)
	}
}

// wadScene loads a level and its textures, flats, palette and colormaps
// from a WAD file. The level's BSP tree is printed to tree unless it is nil.
func wadScene(cfg render.Config, canvas *render.Canvas, filename, mapName string, tree io.Writer) (*render.Renderer, *render.Level, error) {
	w, err := wad.NewWAD(filename)
	if err != nil {
		return nil, nil, err
	}
	defer w.Close()

	if mapName == "" {
		names := w.LevelNames()
		if len(names) == 0 {
			return nil, nil, fmt.Errorf("%v: no levels", filename)
		}
		mapName = names[0]
	}
	l, err := w.ReadLevel(mapName)
	if err != nil {
		return nil, nil, err
	}
	if tree != nil {
		if err := wad.PrintTree(tree, l.RootNode); err != nil {
			return nil, nil, err
		}
	}
	lv, err := render.NewLevel(l, w)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", mapName, err)
	}

	r, err := render.NewRenderer(cfg, canvas, w.Textures)
	if err != nil {
		return nil, nil, err
	}
	r.SetFlats(w)
	r.SetColormaps(w.ColorMaps)
	r.SetSkyFlat(lv.SkyFlat)
	canvas.SetPalette(&w.Palettes[0])

	skyName := skyTextureName(l.Name)
	sky, ok := w.Textures.TextureNum(skyName)
	if !ok {
		log.Printf("%v: no sky texture %v", l.Name, skyName)
	}
	r.SetSky(render.Sky{Front: sky})
	return r, lv, nil
}

// skyTextureName picks the sky the way the game does: by episode for ExMy
// levels and by level number for MAPxx.
func skyTextureName(mapName string) string {
	var episode, level int
	if _, err := fmt.Sscanf(mapName, "E%dM%d", &episode, &level); err == nil {
		return fmt.Sprintf("SKY%d", min(max(episode, 1), 4))
	}
	if _, err := fmt.Sscanf(mapName, "MAP%d", &level); err == nil {
		switch {
		case level < 12:
			return "SKY1"
		case level < 21:
			return "SKY2"
		}
		return "SKY3"
	}
	return "SKY1"
}

// roomFlats are two 64x64 checkerboards, floor then ceiling.
type roomFlats [2][]byte

func (f roomFlats) FlatData(n int) []byte {
	if n < 0 || n >= len(f) {
		return nil
	}
	return f[n]
}

func checker(size, a, b int) []byte {
	pix := make([]byte, size*size)
	for i := range pix {
		x, y := i%size, i/size
		if (x/8+y/8)%2 == 0 {
			pix[i] = byte(a)
		} else {
			pix[i] = byte(b)
		}
	}
	return pix
}

// roomScene builds a square room with a pillar and a window in a grate,
// drawn with a grey palette.
func roomScene(cfg render.Config, canvas *render.Canvas) (*render.Renderer, *render.Level, error) {
	textures := wad.NewTextureSet()
	wallPix := make([]byte, 64*128)
	for x := range 64 {
		for y := range 128 {
			wallPix[x*128+y] = byte(96 + (x/16+y/16)%2*96)
		}
	}
	wall := textures.Add(wad.NewTexture("WALL", 64, 128, wallPix))

	gratePix := make([]byte, 32*64)
	for x := range 32 {
		for y := range 64 {
			if x%8 < 2 || y%8 < 2 {
				gratePix[x*64+y] = 250
			}
		}
	}
	grate := textures.Add(wad.NewMaskedTexture("GRATE", 32, 64, gratePix, 0))

	skyPix := make([]byte, 256*128)
	for x := range 256 {
		for y := range 128 {
			skyPix[x*128+y] = byte(1 + y + int(16*math.Sin(float64(x)*math.Pi/32)+16))
		}
	}
	sky := textures.Add(wad.NewTexture("SKY1", 256, 128, skyPix))

	l := roomLevel(wall, grate)
	lv, err := render.NewLevel(l, nil)
	if err != nil {
		return nil, nil, err
	}
	// Flat numbers come from roomFlats; the sky flat is number 2.
	for i := range lv.Sectors {
		lv.Sectors[i].FloorPic, lv.Sectors[i].CeilingPic = 0, 1
	}
	lv.Sectors[0].CeilingPic = 2
	lv.SkyFlat = 2

	r, err := render.NewRenderer(cfg, canvas, textures)
	if err != nil {
		return nil, nil, err
	}
	r.SetFlats(roomFlats{checker(64, 64, 80), checker(64, 150, 170)})
	r.SetSkyFlat(lv.SkyFlat)
	r.SetSky(render.Sky{Front: sky})
	return r, lv, nil
}

// roomLevel lays out a 512 unit square room open to the sky, with a
// raised 64 unit pillar sector in the middle and a grate across one corner.
func roomLevel(wall, grate int) *wad.Level {
	l := &wad.Level{
		Name: "ROOM",
		Sectors: []wad.Sector{
			{Index: 0, FloorHeight: 0, CeilingHeight: 192, LightLevel: 208},
			{Index: 1, FloorHeight: 32, CeilingHeight: 128, LightLevel: 160},
			{Index: 2, FloorHeight: 0, CeilingHeight: 192, LightLevel: 208},
		},
		Things: []wad.Thing{{X: 64, Y: 64, Angle: math.Pi / 4, Type: wad.ThingPlayer1Start}},
	}

	addLine := func(v1, v2 wad.Vertex, front, back int, side wad.Side) {
		side.SectorNum = front
		l.Sides = append(l.Sides, side)
		li := wad.Line{V1: v1, V2: v2, SideRNum: len(l.Sides) - 1, SideLNum: -1}
		if back >= 0 {
			l.Sides = append(l.Sides, wad.Side{SectorNum: back})
			li.SideLNum = len(l.Sides) - 1
			li.TwoSided = true
		}
		l.Lines = append(l.Lines, li)
		l.LineSegments = append(l.LineSegments, wad.LineSegment{
			V1: v1, V2: v2, LineNum: len(l.Lines) - 1,
		})
		if back >= 0 {
			l.LineSegments = append(l.LineSegments, wad.LineSegment{
				V1: v2, V2: v1, LineNum: len(l.Lines) - 1, IsSideL: true,
			})
		}
	}

	// Outer walls, clockwise so the room is on their right.
	outer := []wad.Vertex{{X: 0, Y: 0}, {X: 0, Y: 512}, {X: 512, Y: 512}, {X: 512, Y: 0}}
	for i := range outer {
		addLine(outer[i], outer[(i+1)%4], 0, -1, wad.Side{MiddleTexture: wall})
	}

	// Pillar: the room sees its upper and lower walls.
	pillar := []wad.Vertex{{X: 224, Y: 224}, {X: 224, Y: 288}, {X: 288, Y: 288}, {X: 288, Y: 224}}
	for i := range pillar {
		v1, v2 := pillar[(i+1)%4], pillar[i]
		addLine(v1, v2, 0, 1, wad.Side{UpperTexture: wall, LowerTexture: wall})
	}

	// Grate across the far corner, into a sector of its own.
	addLine(wad.Vertex{X: 384, Y: 512}, wad.Vertex{X: 512, Y: 384}, 0, 2, wad.Side{MiddleTexture: grate})
	l.Lines[len(l.Lines)-1].Type = wad.LineTypeTranslucent

	for i := range l.Lines {
		li := &l.Lines[i]
		sec := &l.Sectors[l.Sides[li.SideRNum].SectorNum]
		sec.Lines = append(sec.Lines, li)
	}
	return l
}

// writePNG encodes img, scaled up by factor with nearest neighbour sampling.
func writePNG(filename string, img image.Image, factor int) error {
	if factor > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
