package wad

import (
	"fmt"
	"io"
)

// PrintTree writes the BSP tree under root to w, one member per line,
// right children before left.
func PrintTree(w io.Writer, root BSPMember) error {
	var printRecursive func(BSPMember, string) error
	printRecursive = func(member BSPMember, prefix string) error {
		switch v := member.(type) {
		case *SubSector:
			if v == nil {
				break
			}
			sector := -1
			if v.Sector != nil {
				sector = v.Sector.Index
			}
			_, err := fmt.Fprintf(w, "%v- subsector segs %v+%v sector %v\n",
				prefix, v.StartLineSegment, v.NumLineSegments, sector)
			return err
		case *Node:
			if v == nil {
				break
			}
			if _, err := fmt.Fprintf(w, "%v- node (%v,%v) d(%v,%v)\n", prefix, v.X, v.Y, v.DX, v.DY); err != nil {
				return err
			}
			if err := printRecursive(v.ChildR, prefix+"   "); err != nil {
				return err
			}
			return printRecursive(v.ChildL, prefix+"   ")
		}
		_, err := fmt.Fprintln(w, prefix+"- null")
		return err
	}

	return printRecursive(root, "")
}
