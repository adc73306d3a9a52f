package wad

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeColumn(t *testing.T) {
	col := EncodeColumn([]byte{0, 3, 4, 0, 0, 5, 0}, 0)
	var posts []Post
	for p := range col.Posts() {
		posts = append(posts, p)
	}
	if len(posts) != 2 {
		t.Fatalf("%d posts, want 2", len(posts))
	}
	if posts[0].TopDelta != 1 || !bytes.Equal(posts[0].Data, []byte{3, 4}) || posts[0].End() != 3 {
		t.Errorf("first post = %+v", posts[0])
	}
	if posts[1].TopDelta != 5 || posts[1].Length() != 1 {
		t.Errorf("second post = %+v", posts[1])
	}
	if got := DecodeColumn(col, 7, 9); !bytes.Equal(got, []byte{9, 3, 4, 9, 9, 5, 9}) {
		t.Errorf("DecodeColumn = %v", got)
	}
	if got := DecodeColumn(col, 2, 0); !bytes.Equal(got, []byte{0, 3}) {
		t.Errorf("DecodeColumn cut short = %v", got)
	}
}

func TestEmptyColumn(t *testing.T) {
	col := EncodeColumn([]byte{0, 0}, 0)
	if _, ok := col.First(); ok {
		t.Errorf("transparent column has a post")
	}
	if len(col) != postHeaderSize || binary.LittleEndian.Uint16(col) != PostEnd {
		t.Errorf("column %v is not a bare sentinel", col)
	}
}

func TestTallPosts(t *testing.T) {
	pixels := make([]byte, 700)
	for i := range pixels {
		pixels[i] = byte(i%250 + 1)
	}
	col := EncodeColumn(pixels, 0)
	p, ok := col.First()
	if !ok || p.TopDelta != 0 || p.Length() != 700 {
		t.Fatalf("first post = %d+%d, want one post of 700", p.TopDelta, p.Length())
	}
	if !bytes.Equal(DecodeColumn(col, 700, 0), pixels) {
		t.Errorf("tall column did not survive encoding")
	}
}

func TestPostIteratorStopsAtEndOfData(t *testing.T) {
	col := AppendPost(nil, 2, []byte{7, 7, 7})
	col = AppendPost(col, 10, []byte{8, 8})
	// No sentinel and a body cut short.
	col = col[:len(col)-1]

	it := col.Iter()
	p, ok := it.Next()
	if !ok || p.TopDelta != 2 {
		t.Fatalf("first post = %+v, %v", p, ok)
	}
	if p, ok := it.Next(); ok {
		t.Errorf("truncated post returned: %+v", p)
	}
	if _, ok := it.Next(); ok {
		t.Errorf("iterator restarted after the end")
	}

	// The post slice must not reach into the next header.
	p, _ = col.First()
	if cap(p.Data) != 3 {
		t.Errorf("post capacity %d, want 3", cap(p.Data))
	}
}

func TestPostsStopsEarly(t *testing.T) {
	col := EncodeColumn([]byte{1, 0, 2, 0, 3}, 0)
	n := 0
	for range col.Posts() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("ranged over %d posts", n)
	}
}

// rawPost is a post as stored in a patch lump.
type rawPost struct {
	top  byte
	data []byte
}

// patchLump encodes a picture in the patch lump format.
func patchLump(width, height int, columns [][]rawPost) []byte {
	var body bytes.Buffer
	offsets := make([]int32, width)
	base := 8 + 4*width
	for x, posts := range columns {
		offsets[x] = int32(base + body.Len())
		for _, p := range posts {
			body.WriteByte(p.top)
			body.WriteByte(byte(len(p.data)))
			body.WriteByte(0)
			body.Write(p.data)
			body.WriteByte(0)
		}
		body.WriteByte(0xFF)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, binPatchImageHeader{int16(width), int16(height), 3, 5})
	binary.Write(&buf, binary.LittleEndian, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestDecodePicture(t *testing.T) {
	lump := patchLump(2, 4, [][]rawPost{
		{{0, []byte{1, 2, 3, 4}}},
		{{1, []byte{5, 6}}},
	})
	pic, err := DecodePicture("WALLPAT", lump)
	if err != nil {
		t.Fatal(err)
	}
	if pic.Width != 2 || pic.Height != 4 || pic.LeftOffset != 3 || pic.TopOffset != 5 {
		t.Errorf("picture header = %+v", pic)
	}
	if got := DecodeColumn(pic.Columns[1], 4, 0); !bytes.Equal(got, []byte{0, 5, 6, 0}) {
		t.Errorf("column 1 = %v", got)
	}
}

func TestDecodePictureTallPatch(t *testing.T) {
	// A top delta not below the previous one continues from it.
	lump := patchLump(1, 301, [][]rawPost{
		{{200, []byte{1}}, {100, []byte{2}}},
	})
	pic, err := DecodePicture("TALL", lump)
	if err != nil {
		t.Fatal(err)
	}
	var tops []int
	for p := range pic.Columns[0].Posts() {
		tops = append(tops, p.TopDelta)
	}
	if len(tops) != 2 || tops[0] != 200 || tops[1] != 300 {
		t.Errorf("top deltas = %v, want [200 300]", tops)
	}
}

func TestDecodePictureErrors(t *testing.T) {
	good := patchLump(1, 4, [][]rawPost{{{0, []byte{1, 2, 3, 4}}}})
	tests := []struct {
		name string
		lump []byte
	}{
		{"empty", nil},
		{"no size", patchLump(0, 4, nil)},
		{"truncated post", good[:len(good)-4]},
		{"no end marker", good[:len(good)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePicture(tt.name, tt.lump); err == nil {
				t.Errorf("DecodePicture accepted a broken lump")
			}
		})
	}
}
