package wad

import "strings"

// NoTexture is the texture number of "-" in sidedefs.
const NoTexture = 0

type Texture struct {
	Name          string   // Texture name and index into texture set
	Index         int      // Texture number
	IsMasked      bool     // true if any column has transparent gaps
	Width, Height int      // total width and height of the map texture
	Patches       []Patch  // List of component Patches
	Pixels        []byte   // Column-major composite, Width*Height texels
	Columns       []Column // Composite as posts, one per column
}

type Patch struct {
	XOffset int // horizontal offset of patch relative to upper-left of texture
	YOffset int // vertical offset of patch relative to upper-left of texture
	Picture *Picture
}

// NewTexture builds a fully opaque texture from column-major texels.
func NewTexture(name string, width, height int, pixels []byte) *Texture {
	opaque := make([]bool, width*height)
	for i := range opaque {
		opaque[i] = true
	}
	return newTexture(name, width, height, pixels, opaque)
}

// NewMaskedTexture builds a texture from column-major texels where every
// texel equal to transparent is a gap.
func NewMaskedTexture(name string, width, height int, pixels []byte, transparent byte) *Texture {
	opaque := make([]bool, width*height)
	for i, p := range pixels[:width*height] {
		opaque[i] = p != transparent
	}
	return newTexture(name, width, height, pixels, opaque)
}

// ComposeTexture draws the patches of a TEXTUREx entry into a composite,
// the way the engine builds multi-patch columns before rendering.
func ComposeTexture(name string, width, height int, patches []Patch) *Texture {
	pixels := make([]byte, width*height)
	opaque := make([]bool, width*height)
	for _, p := range patches {
		if p.Picture == nil {
			continue
		}
		for px, col := range p.Picture.Columns {
			x := p.XOffset + px
			if x < 0 || x >= width {
				continue
			}
			for post := range col.Posts() {
				for i, texel := range post.Data {
					y := p.YOffset + post.TopDelta + i
					if y < 0 || y >= height {
						continue
					}
					pixels[x*height+y] = texel
					opaque[x*height+y] = true
				}
			}
		}
	}
	t := newTexture(name, width, height, pixels, opaque)
	t.Patches = patches
	return t
}

func newTexture(name string, width, height int, pixels []byte, opaque []bool) *Texture {
	t := &Texture{
		Name:    strings.ToUpper(name),
		Width:   width,
		Height:  height,
		Pixels:  pixels[:width*height],
		Columns: make([]Column, width),
	}
	for x := range width {
		strip := opaque[x*height : (x+1)*height]
		t.Columns[x] = EncodeMasked(t.Pixels[x*height:(x+1)*height], strip)
		for _, o := range strip {
			if !o {
				t.IsMasked = true
				break
			}
		}
	}
	return t
}

// TextureSet numbers textures for the renderer. Number 0 is reserved for
// NoTexture so that sidedefs can use it to mean "nothing here".
type TextureSet struct {
	list  []*Texture
	names map[string]int
}

// NewTextureSet returns a set holding only the NoTexture placeholder.
func NewTextureSet() *TextureSet {
	s := &TextureSet{names: make(map[string]int)}
	s.Add(NewTexture("-", 1, 1, []byte{0}))
	return s
}

// Add numbers t and returns its texture number. A texture with the same name
// replaces the earlier one in name lookups.
func (s *TextureSet) Add(t *Texture) int {
	t.Index = len(s.list)
	s.list = append(s.list, t)
	s.names[t.Name] = t.Index
	return t.Index
}

// Len returns the number of textures including the placeholder.
func (s *TextureSet) Len() int {
	return len(s.list)
}

// Texture returns texture number n, or nil.
func (s *TextureSet) Texture(n int) *Texture {
	if n < 0 || n >= len(s.list) {
		return nil
	}
	return s.list[n]
}

// TextureNum looks a texture up by name. Unknown names and "-" map to
// NoTexture with ok reporting whether the name was found.
func (s *TextureSet) TextureNum(name string) (int, bool) {
	n, ok := s.names[strings.ToUpper(name)]
	if !ok {
		return NoTexture, false
	}
	return n, true
}

func (s *TextureSet) get(n int) *Texture {
	if n < 0 || n >= len(s.list) {
		return s.list[NoTexture]
	}
	return s.list[n]
}

// wrapColumn maps any column number onto the texture, tiling horizontally.
func (t *Texture) wrapColumn(col int) int {
	if t.Width&(t.Width-1) == 0 {
		return col & (t.Width - 1)
	}
	col %= t.Width
	if col < 0 {
		col += t.Width
	}
	return col
}

// TextureColumn returns column col of texture tex as posts.
func (s *TextureSet) TextureColumn(tex, col int) Column {
	t := s.get(tex)
	return t.Columns[t.wrapColumn(col)]
}

// TextureColumnData returns the full-height composite texels of a column.
func (s *TextureSet) TextureColumnData(tex, col int) []byte {
	t := s.get(tex)
	x := t.wrapColumn(col)
	return t.Pixels[x*t.Height : (x+1)*t.Height]
}

// TextureHeight returns the height of tex in texels.
func (s *TextureSet) TextureHeight(tex int) int {
	return s.get(tex).Height
}

// TextureWidth returns the width of tex in texels.
func (s *TextureSet) TextureWidth(tex int) int {
	return s.get(tex).Width
}
