// Package wad provides access to Doom's data archives also known as WAD files.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html
//
// Besides the lump directory the package decodes what a column renderer
// needs: palettes, colormaps, patches re-encoded as tall posts, composed
// wall textures numbered in a TextureSet, flats and level geometry.
package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// WAD is a struct that represents Doom's data archive that contains graphics and level data. The
// data is organized as named lumps.
type WAD struct {
	header     *Header
	r          io.ReadSeeker
	closer     io.Closer
	lumpInfos  []LumpInfo
	lumpNums   map[string]int
	Palettes   *Palettes
	ColorMaps  *ColorMaps
	patchNames []string
	Pictures   map[string]*Picture
	Textures   *TextureSet
	Flats      map[string]*Flat
	FlatsList  []*Flat
	levels     map[string]int
}

var (
	ErrBadMagic     = errors.New("not a WAD archive")
	ErrLumpNotFound = errors.New("lump not found")
)

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type Header struct {
	Magic        string // IWAD or PWAD
	NumLumps     int
	InfoTableOfs int
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     int16
}

type Side struct {
	XOffset           float64
	YOffset           float64
	UpperTextureName  string
	LowerTextureName  string
	MiddleTextureName string
	SectorNum         int
	UpperTexture      int // Texture numbers in WAD.Textures, NoTexture if "-"
	LowerTexture      int
	MiddleTexture     int
	Sector            *Sector
}

type Vertex struct {
	X, Y float64
}

type binLineSegment struct {
	V1        int16
	V2        int16
	Angle     int16 // Full circle is -32768 to 32767.
	LineNum   int16
	Direction int16 // 0 - same as linedef, 1 - opposite to linedef
	Offset    int16 // Distance along line to start of segment
}

type LineSegment struct {
	V1Num   int
	V2Num   int
	Angle   float64 // Radians
	LineNum int
	IsSideL bool    // false - same as linedef, true - opposite to linedef
	Offset  float64 // Distance along line to start of segment

	V1          Vertex
	V2          Vertex
	Line        *Line
	Side        *Side
	FrontSector *Sector
	BackSector  *Sector
}

type binSubSector struct {
	NumSegments      int16
	StartLineSegment int16
}

// SubSector is a convex leaf of the BSP tree: a run of line segments that
// all face into one sector.
type SubSector struct {
	NumLineSegments  int
	StartLineSegment int

	LineSegments []LineSegment // Slice of Level.LineSegments
	Sector       *Sector
}

type binBBox struct {
	Top    int16
	Bottom int16
	Left   int16
	Right  int16
}

type binNode struct {
	X, Y                 int16
	DX, DY               int16
	BBoxR, BBoxL         binBBox
	ChildNumR, ChildNumL int16 // Negative marks a subsector, numbered by the low 15 bits
}

// Node splits space by the partition line from (X, Y) along (DX, DY). The
// right child is the side the line faces, side 0.
type Node struct {
	X, Y                 float64
	DX, DY               float64
	BBoxR, BBoxL         BoundBox
	ChildNumR, ChildNumL int
	ChildR, ChildL       BSPMember
}

// Child returns the child on side.
func (n *Node) Child(side int) BSPMember {
	if side == 0 {
		return n.ChildR
	}
	return n.ChildL
}

// BoundBox returns the bounding box of the child on side.
func (n *Node) BoundBox(side int) *BoundBox {
	if side == 0 {
		return &n.BBoxR
	}
	return &n.BBoxL
}

// PointSide returns 0 if (x, y) is on the right of the partition line and
// 1 if it is on the left or on the line.
func (n *Node) PointSide(x, y float64) int {
	if (y-n.Y)*n.DX >= (x-n.X)*n.DY {
		return 1
	}
	return 0
}

type BSPType int

const (
	BSPNode BSPType = iota
	BSPSubSector
)

// BSPMember is a *Node or a *SubSector.
type BSPMember interface {
	BSPType() BSPType
}

func (s *SubSector) BSPType() BSPType {
	return BSPSubSector
}

func (n *Node) BSPType() BSPType {
	return BSPNode
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Type           int16
	TagNum         int16
}

type Sector struct {
	Index              int
	FloorHeight        float64
	CeilingHeight      float64
	FloorTextureName   string
	CeilingTextureName string
	LightLevel         int
	Type               SectorType
	TagNum             int

	FloorTexture   *Flat
	CeilingTexture *Flat
	Lines          []*Line
}

// SectorType is the special of a sector: light effects, damage and
// secrets. Lights are animated by the game, not the renderer, so the value
// is kept raw.
type SectorType int

type binTextureHeader struct {
	TextureName String8
	Masked      int32
	Width       int16
	Height      int16
	Unused      int32 // ColumnDirectory
	NumPatches  int16
}

type binPatch struct {
	XOffset      int16
	YOffset      int16
	PatchNameIdx int16
	Unused1      int16 // StepDir
	Unused2      int16 // ColorMap
}

// A flat is an image that is drawn on the floors and ceilings of sectors.
// Flats are a raw collection of pixel values with no offset or other dimension information; each
// flat is a named lump of 4096 bytes representing a 64x64 square, stored row by row.
type Flat struct {
	Name  string // Flat name and index into flats map
	Index int    // Index into flats list
	Data  []byte
}

const FlatWidth, FlatHeight = 64, 64

type Level struct {
	Name         string
	Things       []Thing
	Lines        []Line
	Sides        []Side
	Vertexes     []Vertex
	LineSegments []LineSegment
	SubSectors   []SubSector
	Nodes        []Node
	Sectors      []Sector

	RootNode *Node // Last node; nil when the level has no nodes
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type Thing struct {
	X, Y            int
	Angle           float64 // Radians
	Type            int
	Skill1and2      bool
	Skill3          bool
	Skill4and5      bool
	Ambush          bool
	MultiplayerOnly bool
}

// Thing types the viewer cares about.
const (
	ThingPlayer1Start = 1
)

type binVertex struct {
	X, Y int16
}

type RGB struct {
	Red, Green, Blue uint8
}

// PLAYPAL lump. A set of color palettes used to set the main graphics colors. The Doom engine can
// only display 256 simultaneous colors, so it performs palette swaps to achieve these effects.
type Palettes [14]Palette

// Each palette in PLAYPAL contains 256 three-ubyte colors totaling 768 bytes (RGB).
type Palette [256]RGB

// The COLORMAP lump contains 34 color maps of indices into the PLAYPAL palette chosen at that time
// through which colors can be remapped for sector lighting, distance fading, and partial screen
// color changes (such as the invulnerability effect).
type ColorMaps [34]ColorMap

// Each color map is a table 256 bytes long. It is indexed using a pixel value (from 0 to 255) and
// yields a new, brightness-adjusted pixel value.
type ColorMap [256]byte

// Colormap numbers with a fixed meaning.
const (
	NumLightColorMaps  = 32 // 0 is full bright, 31 darkest
	InvulnerabilityMap = 32
)

// WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// Special lump names
const SkyFlatName = "F_SKY1"

// /////////////////////////////////////
// NewWAD opens a WAD file and reads its metadata, palettes, colormaps,
// textures and flats to memory. It returns a WAD object that can be used to
// read levels and individual pictures. Close releases the file.
// /////////////////////////////////////
func NewWAD(filename string) (*WAD, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	wad, err := NewWADReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	wad.closer = file
	return wad, nil
}

// NewWADReader reads a WAD archive from r, which must stay readable for as
// long as pictures or levels are read from the WAD.
func NewWADReader(r io.ReadSeeker) (*WAD, error) {
	logger.Println("Start reading WAD")
	wad := &WAD{r: r, Pictures: make(map[string]*Picture)}

	// Read header
	var binHeader binHeader
	if err := binary.Read(r, binary.LittleEndian, &binHeader); err != nil {
		return nil, err
	}
	magic := string(binHeader.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadMagic, binHeader.Magic[:])
	}
	wad.header = &Header{magic, int(binHeader.NumLumps), int(binHeader.InfoTableOfs)}

	// Read info tables
	if err := wad.readInfoTables(); err != nil {
		return nil, err
	}

	// Read PLAYPAL
	playpal, err := wad.readPlaypal()
	if err != nil {
		return nil, err
	}
	wad.Palettes = playpal

	// Read COLORMAP
	colorMaps, err := wad.readColorMaps()
	if err != nil {
		return nil, err
	}
	wad.ColorMaps = colorMaps

	// Read patch names
	wad.patchNames, err = wad.readPatchNames()
	if err != nil {
		return nil, err
	}

	// Read patchPics into Pictures map
	wad.readPatchPics()

	// Read map textures
	// Must be called after readPatchNames and readPatchPics
	textures, err := wad.readTextures()
	if err != nil {
		return nil, err
	}
	wad.Textures = textures

	// Read flat lumps
	flats, flatsList, err := wad.readFlats()
	if err != nil {
		return nil, err
	}
	wad.Flats = flats
	wad.FlatsList = flatsList

	return wad, nil
}

// Close closes the underlying file when the WAD was opened with NewWAD.
func (w *WAD) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Header returns the archive header.
func (w *WAD) Header() Header {
	return *w.header
}

// Lump reads a whole lump by name.
func (w *WAD) Lump(name string) ([]byte, error) {
	lumpNum, ok := w.lumpNums[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%v: %w", name, ErrLumpNotFound)
	}
	return w.readLump(&w.lumpInfos[lumpNum])
}

func (w *WAD) readInfoTables() error {
	if err := w.seek(int64(w.header.InfoTableOfs)); err != nil {
		return err
	}
	if w.header.NumLumps < 0 {
		return fmt.Errorf("bad lump count %v", w.header.NumLumps)
	}
	lumpNums := map[string]int{}
	levels := map[string]int{}
	lumpInfos := make([]LumpInfo, w.header.NumLumps)
	for i := 0; i < w.header.NumLumps; i++ {
		var binInfo binLumpInfo
		if err := binary.Read(w.r, binary.LittleEndian, &binInfo); err != nil {
			return fmt.Errorf("lump directory: %w", err)
		}
		lumpInfo := LumpInfo{strings.ToUpper(binInfo.Name.String()), int(binInfo.Filepos), int(binInfo.Size)}
		if lumpInfo.Name == "THINGS" && i > 0 {
			lumpNum := i - 1
			info := lumpInfos[lumpNum]
			levels[info.Name] = lumpNum
		}
		lumpNums[lumpInfo.Name] = i
		lumpInfos[i] = lumpInfo
	}
	w.levels = levels
	w.lumpNums = lumpNums
	w.lumpInfos = lumpInfos
	return nil
}

// readPlaypal
func (w *WAD) readPlaypal() (*Palettes, error) {
	logger.Println("Loading PLAYPAL ...")
	if err := w.seekLumpName("PLAYPAL"); err != nil {
		return nil, err
	}
	playpal := Palettes{}
	if err := binary.Read(w.r, binary.LittleEndian, &playpal); err != nil {
		return nil, fmt.Errorf("PLAYPAL: %w", err)
	}
	return &playpal, nil
}

// readColorMaps
func (w *WAD) readColorMaps() (*ColorMaps, error) {
	logger.Println("Loading COLORMAP ...")
	if err := w.seekLumpName("COLORMAP"); err != nil {
		return nil, err
	}
	colormaps := ColorMaps{}
	if err := binary.Read(w.r, binary.LittleEndian, &colormaps); err != nil {
		return nil, fmt.Errorf("COLORMAP: %w", err)
	}
	return &colormaps, nil
}

// readPatchNames reads the PNAMES lump to populate a slice of patch names
func (w *WAD) readPatchNames() ([]string, error) {
	logger.Printf("Loading patch names ...\n")
	lump, err := w.Lump("PNAMES")
	if err != nil {
		return nil, err
	}
	reader := bytes.NewReader(lump)

	// Read PNAMES header
	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("PNAMES: %w", err)
	}
	if int64(count)*8 > int64(reader.Len()) {
		return nil, fmt.Errorf("PNAMES: %v names in %v bytes", count, reader.Len())
	}

	// Read and translate PNAMES body
	pnames := make([]String8, count)
	patchNames := make([]string, count)
	if err := binary.Read(reader, binary.LittleEndian, pnames); err != nil {
		return nil, fmt.Errorf("PNAMES: %w", err)
	}
	for i, p := range pnames {
		patchNames[i] = strings.ToUpper(p.String()) // ToUpper required for "w94_1" patch
	}
	return patchNames, nil
}

func (w *WAD) readPatchPics() {
	logger.Println("Loading patch pictures ...")
	for _, pname := range w.patchNames {
		_, err := w.GetPicture(pname) // Also caches picture
		if err != nil {
			logger.Printf("Err: %v", err)
			continue
		}
	}
	logger.Printf("Loaded %v patch pictures", len(w.Pictures))
}

// readTextures composes every TEXTUREx entry from its patches and numbers
// the results in a TextureSet.
func (w *WAD) readTextures() (*TextureSet, error) {
	logger.Println("Loading textures ...")

	textures := NewTextureSet()
	for i := 1; i < 10; i++ {
		name := fmt.Sprintf("TEXTURE%v", i)
		lump, err := w.Lump(name)
		if errors.Is(err, ErrLumpNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Printf("Loading %v ...", name)
		if err := w.parseTextureLump(name, lump, textures); err != nil {
			return nil, err
		}
	}
	logger.Printf("Loaded %v textures", textures.Len()-1)

	return textures, nil
}

func (w *WAD) parseTextureLump(name string, lump []byte, textures *TextureSet) error {
	reader := bytes.NewReader(lump)

	// Read header
	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}
	if int64(count)*4 > int64(reader.Len()) {
		return fmt.Errorf("%v: %v offsets in %v bytes", name, count, reader.Len())
	}
	offsets := make([]int32, count)

	// Read offsets
	if err := binary.Read(reader, binary.LittleEndian, offsets); err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}

	// For each offset...
	for _, offset := range offsets {
		if offset < 0 || int(offset) >= len(lump) {
			return fmt.Errorf("%v: texture offset %v out of range", name, offset)
		}
		entry := bytes.NewReader(lump[offset:])

		// Read header
		var binHeader binTextureHeader
		if err := binary.Read(entry, binary.LittleEndian, &binHeader); err != nil {
			return fmt.Errorf("%v: %w", name, err)
		}
		texName := binHeader.TextureName.String()
		if binHeader.Width <= 0 || binHeader.Height <= 0 || binHeader.NumPatches < 0 {
			logger.Printf("Skipping texture %v: bad size %vx%v", texName, binHeader.Width, binHeader.Height)
			continue
		}

		// Resolve patches
		binPatches := make([]binPatch, binHeader.NumPatches)
		if err := binary.Read(entry, binary.LittleEndian, binPatches); err != nil {
			return fmt.Errorf("%v: %v: %w", name, texName, err)
		}
		patches := make([]Patch, 0, len(binPatches))
		for _, p := range binPatches {
			if p.PatchNameIdx < 0 || int(p.PatchNameIdx) >= len(w.patchNames) {
				logger.Printf("Texture %v: bad patch index %v", texName, p.PatchNameIdx)
				continue
			}
			pic, ok := w.Pictures[w.patchNames[p.PatchNameIdx]]
			if !ok {
				logger.Printf("Texture %v: missing patch %v", texName, w.patchNames[p.PatchNameIdx])
				continue
			}
			patches = append(patches, Patch{
				XOffset: int(p.XOffset),
				YOffset: int(p.YOffset),
				Picture: pic,
			})
		}

		texture := ComposeTexture(texName, int(binHeader.Width), int(binHeader.Height), patches)
		textures.Add(texture)
	}
	return nil
}

// readFlats
func (w *WAD) readFlats() (map[string]*Flat, []*Flat, error) {
	logger.Println("Loading flats ...")

	flats := make(map[string]*Flat)
	flatsList := make([]*Flat, 0)
	startLump, ok := w.lumpNums["F_START"]
	if !ok {
		startLump, ok = w.lumpNums["FF_START"]
	}
	endLump, okEnd := w.lumpNums["F_END"]
	if !okEnd {
		endLump, okEnd = w.lumpNums["FF_END"]
	}
	if !ok || !okEnd {
		logger.Println("No flats found")
		return flats, flatsList, nil
	}

	// For each flat lump
	for i := startLump + 1; i < endLump; i++ {
		lumpInfo := w.lumpInfos[i]

		// Skip marker lumps
		if lumpInfo.Size == 0 {
			continue
		}

		// Read lump and add to slice
		data, err := w.readLump(&lumpInfo)
		if err != nil {
			return nil, nil, fmt.Errorf("%v: %w", lumpInfo.Name, err)
		}
		if len(data) < FlatWidth*FlatHeight {
			logger.Printf("Skipping short flat %v", lumpInfo.Name)
			continue
		}

		flat := &Flat{
			Name:  lumpInfo.Name,
			Index: len(flatsList),
			Data:  data[:FlatWidth*FlatHeight],
		}
		flats[lumpInfo.Name] = flat
		flatsList = append(flatsList, flat)
	}
	logger.Printf("Loaded %v flats", len(flats))
	return flats, flatsList, nil
}

// FlatNum returns the index of a flat in FlatsList, or -1.
func (w *WAD) FlatNum(name string) int {
	if f, ok := w.Flats[strings.ToUpper(name)]; ok {
		return f.Index
	}
	return -1
}

// FlatData returns the texels of flat n, or nil if there is no such flat.
func (w *WAD) FlatData(n int) []byte {
	if n < 0 || n >= len(w.FlatsList) {
		return nil
	}
	return w.FlatsList[n].Data
}

// LevelNames returns the names of all levels in the archive, sorted.
func (w *WAD) LevelNames() []string {
	result := make([]string, 0, len(w.levels))
	for name := range w.levels {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// ReadLevel reads level data from WAD archive and returns a Level struct.
func (w *WAD) ReadLevel(name string) (*Level, error) {
	logger.Printf("Reading Level %v ...", name)

	name = strings.ToUpper(name)
	levelIdx, ok := w.levels[name]
	if !ok {
		return nil, fmt.Errorf("level %v: %w", name, ErrLumpNotFound)
	}
	level := Level{Name: name}
	for i := levelIdx + 1; i < levelIdx+11 && i < len(w.lumpInfos); i++ {
		lumpInfo := w.lumpInfos[i]
		var err error
		switch lumpInfo.Name {
		case "THINGS":
			level.Things, err = w.readThings(&lumpInfo)
		case "SIDEDEFS":
			level.Sides, err = w.readSides(&lumpInfo)
		case "LINEDEFS":
			level.Lines, err = w.readLines(&lumpInfo)
		case "VERTEXES":
			level.Vertexes, err = w.readVertexes(&lumpInfo)
		case "SEGS":
			level.LineSegments, err = w.readLineSegments(&lumpInfo)
		case "SSECTORS":
			level.SubSectors, err = w.readSubSectors(&lumpInfo)
		case "NODES":
			level.Nodes, err = w.readNodes(&lumpInfo)
		case "SECTORS":
			level.Sectors, err = w.readSectors(&lumpInfo)
		default:
			logger.Printf("Unhandled lump %s\n", lumpInfo.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("%v %v: %w", name, lumpInfo.Name, err)
		}
	}

	// Set references
	if err := w.setReferences(&level); err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}

	return &level, nil
}

// setReferences adds pointers to all level assets
func (w *WAD) setReferences(l *Level) error {
	logger.Println("Setting references ...")

	// Sides
	for i := range l.Sides {
		s := &l.Sides[i]
		if s.SectorNum < 0 || s.SectorNum >= len(l.Sectors) {
			return fmt.Errorf("side %v: bad sector %v", i, s.SectorNum)
		}
		s.Sector = &l.Sectors[s.SectorNum]
	}

	// Lines - dependent on Sides
	for i := range l.Lines {
		li := &l.Lines[i] // Point to element
		if li.V1Num < 0 || li.V1Num >= len(l.Vertexes) || li.V2Num < 0 || li.V2Num >= len(l.Vertexes) {
			return fmt.Errorf("line %v: bad vertex", i)
		}
		li.V1 = l.Vertexes[li.V1Num]
		li.V2 = l.Vertexes[li.V2Num]
		li.DX = li.V2.X - li.V1.X
		li.DY = li.V2.Y - li.V1.Y
		if li.SideRNum >= 0 && li.SideRNum < len(l.Sides) { // -1 means no Side
			li.SideR = &l.Sides[li.SideRNum]
			li.FrontSector = li.SideR.Sector
		}
		if li.SideLNum >= 0 && li.SideLNum < len(l.Sides) { // -1 means no Side
			li.SideL = &l.Sides[li.SideLNum]
			li.BackSector = li.SideL.Sector
		}

		// Point to tagged sectors
		for j := range l.Sectors {
			if li.SectorTagNum != 0 && l.Sectors[j].TagNum == li.SectorTagNum {
				li.TaggedSectors = append(li.TaggedSectors, &l.Sectors[j])
			}
		}

		// Set slope type
		if li.DX == 0 {
			li.SlopeType = SlopeTypeVertical
		} else if li.DY == 0 {
			li.SlopeType = SlopeTypeHorizontal
		} else if (li.DY / li.DX) > 0 {
			li.SlopeType = SlopeTypePositive
		} else {
			li.SlopeType = SlopeTypeNegative
		}

		// Set bounding box
		li.BoundingBox.Left = min(li.V1.X, li.V2.X)
		li.BoundingBox.Right = max(li.V1.X, li.V2.X)
		li.BoundingBox.Bottom = min(li.V1.Y, li.V2.Y)
		li.BoundingBox.Top = max(li.V1.Y, li.V2.Y)

		if li.FrontSector != nil {
			li.FrontSector.Lines = append(li.FrontSector.Lines, li)
		}
		if li.BackSector != nil && li.BackSector != li.FrontSector {
			li.BackSector.Lines = append(li.BackSector.Lines, li)
		}
	}

	// Line Segments
	for i := range l.LineSegments {
		s := &l.LineSegments[i] // Point to element
		if s.V1Num < 0 || s.V1Num >= len(l.Vertexes) || s.V2Num < 0 || s.V2Num >= len(l.Vertexes) {
			return fmt.Errorf("seg %v: bad vertex", i)
		}
		if s.LineNum < 0 || s.LineNum >= len(l.Lines) {
			return fmt.Errorf("seg %v: bad line %v", i, s.LineNum)
		}
		s.V1 = l.Vertexes[s.V1Num]
		s.V2 = l.Vertexes[s.V2Num]
		s.Line = &l.Lines[s.LineNum]
		front, back := s.Line.SideR, s.Line.SideL
		if s.IsSideL {
			front, back = back, front
		}
		if front == nil {
			return fmt.Errorf("seg %v: line %v has no side", i, s.LineNum)
		}
		s.Side = front
		s.FrontSector = front.Sector
		if s.Line.TwoSided && back != nil {
			s.BackSector = back.Sector
		}
	}

	// SubSectors - dependent on Line Segments
	for i := range l.SubSectors {
		s := &l.SubSectors[i] // Point to element
		end := s.StartLineSegment + s.NumLineSegments
		if s.NumLineSegments <= 0 || s.StartLineSegment < 0 || end > len(l.LineSegments) {
			return fmt.Errorf("subsector %v: bad segs %v+%v", i, s.StartLineSegment, s.NumLineSegments)
		}
		s.LineSegments = l.LineSegments[s.StartLineSegment:end]
		s.Sector = s.LineSegments[0].FrontSector
	}

	// Nodes - dependent on SubSectors
	if len(l.Nodes) > 0 {
		l.RootNode = &l.Nodes[len(l.Nodes)-1]
	}
	for i := range l.Nodes {
		n := &l.Nodes[i] // Point to element
		var err error
		if n.ChildR, err = l.bspChild(n.ChildNumR); err != nil {
			return fmt.Errorf("node %v: %w", i, err)
		}
		if n.ChildL, err = l.bspChild(n.ChildNumL); err != nil {
			return fmt.Errorf("node %v: %w", i, err)
		}
	}

	return nil
}

// bspChild resolves a node child number.
func (l *Level) bspChild(num int) (BSPMember, error) {
	if num < 0 {
		n := num & math.MaxInt16
		if n >= len(l.SubSectors) {
			return nil, fmt.Errorf("bad subsector %v", n)
		}
		return &l.SubSectors[n], nil
	}
	if num >= len(l.Nodes) {
		return nil, fmt.Errorf("bad child node %v", num)
	}
	return &l.Nodes[num], nil
}

func (w *WAD) readThings(lumpInfo *LumpInfo) ([]Thing, error) {
	logger.Println("Reading Things ...")

	// Read things lump
	binThings, err := readLumpRecords[binThing](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	things := make([]Thing, len(binThings))
	for i, t := range binThings {
		things[i] = Thing{
			X:               int(t.X),
			Y:               int(t.Y),
			Angle:           degreesToRadians(t.Angle),
			Type:            int(t.Type),
			Skill1and2:      t.Options&1 != 0,
			Skill3:          t.Options&2 != 0,
			Skill4and5:      t.Options&4 != 0,
			Ambush:          t.Options&8 != 0,
			MultiplayerOnly: t.Options&0x10 != 0,
		}
	}
	logger.Printf("Read %v things", len(things))
	return things, nil
}

func (w *WAD) readLines(lumpInfo *LumpInfo) ([]Line, error) {
	logger.Println("Reading Lines ...")

	// Read lump
	binLines, err := readLumpRecords[binLine](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	lines := make([]Line, len(binLines))
	for i, line := range binLines {
		lines[i] = Line{
			V1Num:                  int(line.VertexStart),
			V2Num:                  int(line.VertexEnd),
			BlockPlayerAndMonsters: line.Flags&1 != 0,
			BlockMonsters:          line.Flags&2 != 0,
			TwoSided:               line.Flags&4 != 0,
			UpperTextureUnpegged:   line.Flags&8 != 0,
			LowerTextureUnpegged:   line.Flags&0x10 != 0,
			Secret:                 line.Flags&0x20 != 0,
			BlocksSound:            line.Flags&0x40 != 0,
			NeverMap:               line.Flags&0x80 != 0,
			AlwaysMap:              line.Flags&0x100 != 0,
			Type:                   LineType(line.Type),
			SectorTagNum:           int(line.SectorTag),
			SideRNum:               int(line.SideR),
			SideLNum:               int(line.SideL),
		}
	}

	logger.Printf("Read %v lines", len(lines))

	return lines, nil
}

func (w *WAD) readSides(lumpInfo *LumpInfo) ([]Side, error) {
	logger.Println("Reading Sides ...")

	// Read lump
	binSides, err := readLumpRecords[binSide](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	sides := make([]Side, len(binSides))
	for i, s := range binSides {
		sides[i] = Side{
			XOffset:           float64(s.XOffset),
			YOffset:           float64(s.YOffset),
			UpperTextureName:  strings.ToUpper(s.UpperTexture.String()),
			MiddleTextureName: strings.ToUpper(s.MiddleTexture.String()),
			LowerTextureName:  strings.ToUpper(s.LowerTexture.String()),
			SectorNum:         int(s.SectorNum),
		}
		sides[i].UpperTexture = w.textureNum(sides[i].UpperTextureName)
		sides[i].MiddleTexture = w.textureNum(sides[i].MiddleTextureName)
		sides[i].LowerTexture = w.textureNum(sides[i].LowerTextureName)
	}

	logger.Printf("Read %v sides", len(sides))
	return sides, nil
}

func (w *WAD) textureNum(name string) int {
	if name == "" || name == "-" {
		return NoTexture
	}
	n, ok := w.Textures.TextureNum(name)
	if !ok {
		logger.Printf("Unknown texture %v", name)
	}
	return n
}

func (w *WAD) readVertexes(lumpInfo *LumpInfo) ([]Vertex, error) {
	logger.Println("Reading Vertexes ...")

	// Read lump
	binVertexes, err := readLumpRecords[binVertex](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	vertexes := make([]Vertex, len(binVertexes))
	for i, v := range binVertexes {
		vertexes[i] = Vertex{X: float64(v.X), Y: float64(v.Y)}
	}
	logger.Printf("Read %v vertexes", len(vertexes))

	return vertexes, nil
}

func (w *WAD) readLineSegments(lumpInfo *LumpInfo) ([]LineSegment, error) {
	logger.Println("Reading Line Segments ...")

	// Read lump
	binSegments, err := readLumpRecords[binLineSegment](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	segments := make([]LineSegment, len(binSegments))
	for i, s := range binSegments {
		segments[i] = LineSegment{
			V1Num:   int(s.V1),
			V2Num:   int(s.V2),
			Angle:   bamToRadians(s.Angle),
			LineNum: int(s.LineNum),
			IsSideL: s.Direction == 1,
			Offset:  float64(s.Offset),
		}
	}
	logger.Printf("Read %v line segments", len(segments))

	return segments, nil
}

func (w *WAD) readSubSectors(lumpInfo *LumpInfo) ([]SubSector, error) {
	logger.Println("Reading Sub Sectors ...")

	// Read lump
	binSubSectors, err := readLumpRecords[binSubSector](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	subSectors := make([]SubSector, len(binSubSectors))
	for i, s := range binSubSectors {
		subSectors[i] = SubSector{
			NumLineSegments:  int(s.NumSegments),
			StartLineSegment: int(s.StartLineSegment),
		}
	}
	logger.Printf("Read %v sub sectors", len(subSectors))

	return subSectors, nil
}

func (w *WAD) readNodes(lumpInfo *LumpInfo) ([]Node, error) {
	logger.Println("Reading Nodes ...")

	// Read lump
	binNodes, err := readLumpRecords[binNode](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	nodes := make([]Node, len(binNodes))
	for i, n := range binNodes {
		nodes[i] = Node{
			X:         float64(n.X),
			Y:         float64(n.Y),
			DX:        float64(n.DX),
			DY:        float64(n.DY),
			BBoxR:     boundBoxFromBin(n.BBoxR),
			BBoxL:     boundBoxFromBin(n.BBoxL),
			ChildNumR: int(n.ChildNumR),
			ChildNumL: int(n.ChildNumL),
		}
	}
	logger.Printf("Read %v nodes", len(nodes))

	return nodes, nil
}

func boundBoxFromBin(b binBBox) BoundBox {
	return BoundBox{
		Top:    float64(b.Top),
		Bottom: float64(b.Bottom),
		Left:   float64(b.Left),
		Right:  float64(b.Right),
	}
}

func (w *WAD) readSectors(lumpInfo *LumpInfo) ([]Sector, error) {
	logger.Println("Reading Sectors ...")

	// Read lump
	binSectors, err := readLumpRecords[binSector](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	sectors := make([]Sector, len(binSectors))
	for i, s := range binSectors {
		sectors[i] = Sector{
			Index:              i,
			FloorHeight:        float64(s.FloorHeight),
			CeilingHeight:      float64(s.CeilingHeight),
			FloorTextureName:   strings.ToUpper(s.FloorTexture.String()),
			CeilingTextureName: strings.ToUpper(s.CeilingTexture.String()),
			LightLevel:         int(s.LightLevel),
			Type:               SectorType(s.Type),
			TagNum:             int(s.TagNum),
		}
		sectors[i].FloorTexture = w.Flats[sectors[i].FloorTextureName]
		sectors[i].CeilingTexture = w.Flats[sectors[i].CeilingTextureName]
	}
	logger.Printf("Read %v Sectors", len(sectors))

	return sectors, nil
}

// readLumpRecords reads a lump made of fixed-size little-endian records.
// Trailing bytes that do not fill a record are ignored.
func readLumpRecords[T any](w *WAD, lumpInfo *LumpInfo) ([]T, error) {
	var zero T
	count := lumpInfo.Size / binary.Size(zero)
	if err := w.seek(int64(lumpInfo.Filepos)); err != nil {
		return nil, err
	}
	records := make([]T, count)
	if err := binary.Read(w.r, binary.LittleEndian, records); err != nil {
		return nil, err
	}
	return records, nil
}

// seekLumpName
func (w *WAD) seekLumpName(name string) error {
	lumpNum, ok := w.lumpNums[name]
	if !ok {
		return fmt.Errorf("%v: %w", name, ErrLumpNotFound)
	}
	lumpInfo := w.lumpInfos[lumpNum]
	return w.seek(int64(lumpInfo.Filepos))
}

// seek
func (w *WAD) seek(offset int64) error {
	off, err := w.r.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	if off != offset {
		return fmt.Errorf("seek failed")
	}
	return nil
}

// Read entire lump
func (w *WAD) readLump(lumpInfo *LumpInfo) ([]byte, error) {
	if lumpInfo.Size < 0 {
		return nil, fmt.Errorf("%v: bad lump size %v", lumpInfo.Name, lumpInfo.Size)
	}
	if err := w.seek(int64(lumpInfo.Filepos)); err != nil {
		return nil, err
	}
	lump := make([]byte, lumpInfo.Size)
	if _, err := io.ReadFull(w.r, lump); err != nil {
		return nil, fmt.Errorf("truncated lump %v: %w", lumpInfo.Name, err)
	}
	return lump, nil
}

// degreesToRadians
func degreesToRadians[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n) * (math.Pi / 180)
}

const halfScale = 1 << 15

// bamToRadians converts a 16-bit binary angle, where -32768 is -pi.
func bamToRadians[T constraints.Signed](n T) float64 {
	return (float64(n) * math.Pi) / halfScale
}
