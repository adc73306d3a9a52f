package wad

import (
	"bytes"
	"testing"
)

func TestComposeTexture(t *testing.T) {
	pic, err := DecodePicture("WALLPAT", patchLump(2, 4, [][]rawPost{
		{{0, []byte{1, 2, 3, 4}}},
		{{1, []byte{5, 6}}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	tex := ComposeTexture("walltex", 5, 4, []Patch{
		{XOffset: 0, Picture: pic},
		{XOffset: 2, YOffset: 1, Picture: pic},
		{XOffset: 4, Picture: nil},
	})
	if tex.Name != "WALLTEX" {
		t.Errorf("name = %q", tex.Name)
	}
	if !tex.IsMasked {
		t.Errorf("texture with gaps not masked")
	}
	want := [][]byte{
		{1, 2, 3, 4},
		{0, 5, 6, 0},
		{0, 1, 2, 3}, // shifted down, last row cut off
		{0, 0, 5, 6},
		{0, 0, 0, 0},
	}
	for x, col := range want {
		if got := tex.Pixels[x*4 : (x+1)*4]; !bytes.Equal(got, col) {
			t.Errorf("column %d = %v, want %v", x, got, col)
		}
	}
	if _, ok := tex.Columns[4].First(); ok {
		t.Errorf("uncovered column has posts")
	}
	p, _ := tex.Columns[3].First()
	if p.TopDelta != 2 || p.Length() != 2 {
		t.Errorf("column 3 post = %d+%d, want 2+2", p.TopDelta, p.Length())
	}
}

func TestNewMaskedTexture(t *testing.T) {
	tex := NewMaskedTexture("GRATE", 2, 2, []byte{0, 1, 2, 3}, 0)
	if !tex.IsMasked {
		t.Errorf("IsMasked = false")
	}
	if NewTexture("SOLID", 2, 2, []byte{0, 1, 2, 3}).IsMasked {
		t.Errorf("opaque texture masked")
	}
}

func TestTextureSet(t *testing.T) {
	s := NewTextureSet()
	if s.Len() != 1 || s.Texture(NoTexture).Name != "-" {
		t.Fatalf("new set does not hold the placeholder")
	}
	a := s.Add(NewTexture("STARTAN", 3, 2, []byte{1, 2, 3, 4, 5, 6}))
	b := s.Add(NewTexture("BIGDOOR", 4, 1, []byte{7, 8, 9, 10}))
	if a != 1 || b != 2 || s.Len() != 3 {
		t.Fatalf("numbers %d, %d of %d", a, b, s.Len())
	}
	if n, ok := s.TextureNum("startan"); !ok || n != a {
		t.Errorf("TextureNum(startan) = %d, %v", n, ok)
	}
	if n, ok := s.TextureNum("NOSUCH"); ok || n != NoTexture {
		t.Errorf("TextureNum(NOSUCH) = %d, %v", n, ok)
	}
	if s.Texture(9) != nil || s.Texture(-1) != nil {
		t.Errorf("Texture out of range not nil")
	}

	tests := []struct {
		tex, col int
		want     []byte
	}{
		{a, 0, []byte{1, 2}},
		{a, 4, []byte{3, 4}}, // odd width wraps by modulo
		{a, -1, []byte{5, 6}},
		{b, 6, []byte{9}}, // power of two wraps by mask
		{b, -3, []byte{8}},
		{99, 5, []byte{0}}, // unknown numbers read the placeholder
	}
	for _, tt := range tests {
		if got := s.TextureColumnData(tt.tex, tt.col); !bytes.Equal(got, tt.want) {
			t.Errorf("TextureColumnData(%d, %d) = %v, want %v", tt.tex, tt.col, got, tt.want)
		}
		p, _ := s.TextureColumn(tt.tex, tt.col).First()
		if tt.tex != 99 && !bytes.Equal(p.Data, tt.want) {
			t.Errorf("TextureColumn(%d, %d) = %v, want %v", tt.tex, tt.col, p.Data, tt.want)
		}
	}
	if s.TextureHeight(a) != 2 || s.TextureWidth(b) != 4 {
		t.Errorf("size of textures wrong")
	}
}
