package wad

import (
	"encoding/binary"
	"iter"
)

// PostEnd is the top delta of the sentinel post that closes a Column.
const PostEnd = 0xFFFF

// Every post starts with a little-endian uint16 top delta and uint16 length.
const postHeaderSize = 4

// A Post is one opaque vertical run of texels inside a Column. Transparent
// gaps between posts are implicit.
type Post struct {
	TopDelta int    // row of the first texel
	Data     []byte // texels, len(Data) rows long
}

// Length returns the number of texels in the post.
func (p Post) Length() int {
	return len(p.Data)
}

// End returns the row just below the post.
func (p Post) End() int {
	return p.TopDelta + len(p.Data)
}

// Column is a run-length encoded texture column: a sequence of tall posts in
// increasing, non-overlapping TopDelta order, closed by a post whose top
// delta is PostEnd.
//
// Tall posts use 16-bit top deltas and lengths, so unlike the one-byte posts
// of patch lumps they can describe textures taller than 254 rows.
type Column []byte

// PostIterator walks the posts of a Column. It never trusts the in-band
// sentinel alone: a header or body running past the end of the column ends
// the walk as well.
type PostIterator struct {
	col Column
	off int
}

// Iter returns an iterator positioned before the first post.
func (c Column) Iter() PostIterator {
	return PostIterator{col: c}
}

// Next returns the next post, or false once the sentinel or the end of the
// column data is reached.
func (it *PostIterator) Next() (Post, bool) {
	if it.off+postHeaderSize > len(it.col) {
		it.off = len(it.col)
		return Post{}, false
	}
	top := binary.LittleEndian.Uint16(it.col[it.off:])
	if top == PostEnd {
		it.off = len(it.col)
		return Post{}, false
	}
	n := int(binary.LittleEndian.Uint16(it.col[it.off+2:]))
	start := it.off + postHeaderSize
	if start+n > len(it.col) {
		it.off = len(it.col)
		return Post{}, false
	}
	it.off = start + n
	return Post{TopDelta: int(top), Data: it.col[start : start+n : start+n]}, true
}

// Posts ranges over the posts of c.
func (c Column) Posts() iter.Seq[Post] {
	return func(yield func(Post) bool) {
		it := c.Iter()
		for {
			p, ok := it.Next()
			if !ok || !yield(p) {
				return
			}
		}
	}
}

// First returns the first post of c, if any.
func (c Column) First() (Post, bool) {
	it := c.Iter()
	return it.Next()
}

// AppendPost appends one post header and its texels to c. Posts must be
// appended in increasing top delta order; runs longer than a post can hold
// are split.
func AppendPost(c Column, topDelta int, data []byte) Column {
	for len(data) > 0 && topDelta < PostEnd {
		n := min(len(data), PostEnd-1)
		c = binary.LittleEndian.AppendUint16(c, uint16(topDelta))
		c = binary.LittleEndian.AppendUint16(c, uint16(n))
		c = append(c, data[:n]...)
		topDelta += n
		data = data[n:]
	}
	return c
}

// EndColumn appends the sentinel post.
func EndColumn(c Column) Column {
	c = binary.LittleEndian.AppendUint16(c, PostEnd)
	return binary.LittleEndian.AppendUint16(c, 0)
}

// EncodeMasked builds a Column from a strip of texels and a parallel opacity
// mask. Each maximal run of opaque texels becomes one post.
func EncodeMasked(pixels []byte, opaque []bool) Column {
	var c Column
	for y := 0; y < len(pixels); {
		if !opaque[y] {
			y++
			continue
		}
		start := y
		for y < len(pixels) && opaque[y] {
			y++
		}
		c = AppendPost(c, start, pixels[start:y])
	}
	return EndColumn(c)
}

// EncodeColumn builds a Column from a strip of texels, treating every texel
// equal to transparent as a gap.
func EncodeColumn(pixels []byte, transparent byte) Column {
	opaque := make([]bool, len(pixels))
	for i, p := range pixels {
		opaque[i] = p != transparent
	}
	return EncodeMasked(pixels, opaque)
}

// DecodeColumn expands c into height texels, filling gaps with fill. Texels of
// posts reaching past height are dropped.
func DecodeColumn(c Column, height int, fill byte) []byte {
	out := make([]byte, height)
	for i := range out {
		out[i] = fill
	}
	for p := range c.Posts() {
		if p.TopDelta >= height {
			break
		}
		copy(out[p.TopDelta:], p.Data)
	}
	return out
}
