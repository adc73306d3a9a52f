package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

type binPatchImageHeader struct {
	Width, Height, LeftOffset, TopOffset int16
}

// The doom picture (image) format. Sometimes called a patch, but this code considers a patch to
// be a parent entity that makes up part of a texture, and points to a picture
type Picture struct {
	Name                  string // Useful for debugging
	Width, Height         int
	LeftOffset, TopOffset int // Allows soulspheres, weapons and keys to float
	Columns               []Column
}

// Read a picture lump
func (w *WAD) GetPicture(name string) (*Picture, error) {
	name = strings.ToUpper(name)

	// If cache hit, return it
	if w.Pictures == nil {
		w.Pictures = make(map[string]*Picture)
	} else if p, ok := w.Pictures[name]; ok {
		return p, nil
	}

	lumpNum, ok := w.lumpNums[name]
	if !ok {
		return nil, fmt.Errorf("%v lump not found", name)
	}
	lumpInfo := w.lumpInfos[lumpNum]
	lump, err := w.readLump(&lumpInfo)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}

	pic, err := DecodePicture(name, lump)
	if err != nil {
		return nil, err
	}
	w.Pictures[name] = pic
	return pic, nil
}

// DecodePicture converts a patch lump into a Picture of tall-post columns.
// Patch posts carry one-byte top deltas terminated by 0xFF; DeePsea tall
// patches, where a top delta not below the previous one is relative, are
// accepted as well.
func DecodePicture(name string, lump []byte) (*Picture, error) {
	reader := bytes.NewReader(lump)
	var header binPatchImageHeader
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("%v: bad picture size %vx%v", name, header.Width, header.Height)
	}

	// Read column offsets
	offsets := make([]int32, header.Width)
	if err := binary.Read(reader, binary.LittleEndian, offsets); err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}

	pic := &Picture{
		Name:       name,
		Width:      int(header.Width),
		Height:     int(header.Height),
		LeftOffset: int(header.LeftOffset),
		TopOffset:  int(header.TopOffset),
		Columns:    make([]Column, header.Width),
	}

	// For each column offset, re-encode the posts as tall posts
	for columnIndex, offset := range offsets {
		var col Column
		off := int(offset)
		topDelta := -1
		for {
			if off < 0 || off >= len(lump) {
				return nil, fmt.Errorf("%v: column %v runs past end of lump", name, columnIndex)
			}
			delta := int(lump[off])
			if delta == 0xFF {
				break
			}
			if off+3 > len(lump) {
				return nil, fmt.Errorf("%v: truncated post in column %v", name, columnIndex)
			}
			if delta <= topDelta {
				delta += topDelta
			}
			topDelta = delta
			numPixels := int(lump[off+1])
			start := off + 3 // Skip padding byte
			if start+numPixels > len(lump) {
				return nil, fmt.Errorf("%v: truncated post in column %v", name, columnIndex)
			}
			col = AppendPost(col, delta, lump[start:start+numPixels])
			off = start + numPixels + 1 // Skip padding byte
		}
		pic.Columns[columnIndex] = EndColumn(col)
	}

	return pic, nil
}
