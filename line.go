package wad

type binLine struct {
	VertexStart, VertexEnd int16
	Flags                  int16
	Type                   int16
	SectorTag              int16
	SideR, SideL           int16
}

type Line struct {
	V1Num                  int
	V2Num                  int
	BlockPlayerAndMonsters bool
	BlockMonsters          bool
	TwoSided               bool
	UpperTextureUnpegged   bool
	LowerTextureUnpegged   bool
	Secret                 bool
	BlocksSound            bool
	NeverMap               bool
	AlwaysMap              bool
	Type                   LineType
	SectorTagNum           int
	SideRNum, SideLNum     int

	// References
	V1, V2                  Vertex
	DX, DY                  float64 // Precalculated VertexEnd-VertexStart for side checking
	TaggedSectors           []*Sector
	SideR, SideL            *Side     // SideL is nil for one-sided lines
	BoundingBox             BoundBox  // For the extent of the LineDef
	SlopeType               SlopeType // Horizontal and vertical walls are lit differently
	FrontSector, BackSector *Sector
}

type SlopeType int

const (
	SlopeTypeHorizontal SlopeType = iota
	SlopeTypeVertical
	SlopeTypePositive
	SlopeTypeNegative
)

type BoundBox struct {
	Top, Bottom, Left, Right float64
}

// LineType is the special of a linedef. Only the specials that change how a
// line or its tagged sectors are drawn have names here; the full list is in
// the Doom and Boom specs.
type LineType int

const (
	LineTypeNone              LineType = 0
	LineTypeScrollLeft        LineType = 48  // Scrolling wall left
	LineTypeScrollRight       LineType = 85  // Boom: scrolling wall right
	LineTypeTranslucent       LineType = 260 // Boom: translucent middle texture on tagged lines
	LineTypeSkyTransfer       LineType = 271 // MBF: tagged sectors use this line's upper texture as sky
	LineTypeSkyTransferNoFlip LineType = 272 // MBF: same, not flipped horizontally
)

// IsSkyTransfer reports whether t hands its upper texture to tagged sky sectors.
func (t LineType) IsSkyTransfer() bool {
	return t == LineTypeSkyTransfer || t == LineTypeSkyTransferNoFlip
}
