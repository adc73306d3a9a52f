package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stuarthighley/wadrender/render"
)

func TestSkyTextureName(t *testing.T) {
	tests := map[string]string{
		"E1M1":  "SKY1",
		"E3M9":  "SKY3",
		"E4M2":  "SKY4",
		"MAP01": "SKY1",
		"MAP11": "SKY1",
		"MAP12": "SKY2",
		"MAP20": "SKY2",
		"MAP21": "SKY3",
		"ROOM":  "SKY1",
	}
	for name, want := range tests {
		if got := skyTextureName(name); got != want {
			t.Errorf("skyTextureName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestRoomScene(t *testing.T) {
	for _, method := range []render.ColumnMethod{render.ColumnsDirect, render.ColumnsBatched} {
		cfg := render.DefaultConfig()
		cfg.ColumnMethod = method
		canvas := render.NewCanvas(cfg.Width, cfg.Height, true)
		r, lv, err := roomScene(cfg, canvas)
		if err != nil {
			t.Fatal(err)
		}
		if lv.Start.Z == 0 {
			t.Errorf("%v: player start not placed in the room", method)
		}
		f := r.BeginFrame(lv.Start)
		if err := f.DrawLevel(lv); err != nil {
			t.Fatal(err)
		}
		for x := range cfg.Width {
			if !f.Solid(x) {
				t.Errorf("%v: column %d left open", method, x)
				break
			}
		}
	}
}

func TestWritePNG(t *testing.T) {
	canvas := render.NewCanvas(16, 10, false)
	canvas.Clear(200)
	name := filepath.Join(t.TempDir(), "out.png")
	if err := writePNG(name, canvas.Image(), 3); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 30 {
		t.Errorf("image is %dx%d, want 48x30", b.Dx(), b.Dy())
	}
	if r, _, _, _ := img.At(47, 29).RGBA(); r>>8 != 200 {
		t.Errorf("corner pixel red = %d, want 200", r>>8)
	}
}
