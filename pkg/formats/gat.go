// Package formats reads height grids from disk formats and writes the
// derived terrain mesh.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
	ErrInvalidGATDimensions  = errors.New("invalid GAT dimensions")
)

const (
	gatMagic      = "GRAT"
	gatHeaderSize = 14
	gatCellSize   = 20
	gatMaxSide    = 4096

	// GATCellSize is the world size of one GAT cell.
	GATCellSize = 5.0
)

// GATVersion represents the GAT file version.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCellType is the terrain type of a cell.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable      GATCellType = 0
	GATBlocked       GATCellType = 1
	GATWater         GATCellType = 2
	GATWalkableWater GATCellType = 3
	GATSnipeable     GATCellType = 4
	GATBlockedSnipe  GATCellType = 5
)

// String returns a human-readable cell type name.
func (t GATCellType) String() string {
	switch t {
	case GATWalkable:
		return "Walkable"
	case GATBlocked:
		return "Blocked"
	case GATWater:
		return "Water"
	case GATWalkableWater:
		return "Walkable+Water"
	case GATSnipeable:
		return "Snipeable"
	case GATBlockedSnipe:
		return "Blocked+Snipe"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// GATCell is a single cell of a GAT grid.
type GATCell struct {
	// Heights holds the corner altitudes:
	// [0] = bottom-left, [1] = bottom-right, [2] = top-left, [3] = top-right.
	// RO altitudes grow downward, so higher ground is more negative.
	Heights [4]float32
	Type    GATCellType
}

// Elevation returns the cell's mean corner height with the RO sign flipped,
// so that higher ground is larger.
func (c *GATCell) Elevation() float64 {
	sum := float64(c.Heights[0]) + float64(c.Heights[1]) + float64(c.Heights[2]) + float64(c.Heights[3])
	return -sum / 4
}

// GAT is a parsed Ground Altitude Table.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// Cell returns the cell at (x, y), or nil if out of bounds.
func (g *GAT) Cell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// HeightGrid converts the table into a height grid indexed [x][y]. Cell
// elevations are shifted so that the lowest cell sits at zero; that cell
// and any others at the same level carry no geometry.
func (g *GAT) HeightGrid() [][]float64 {
	floor := math.Inf(1)
	for i := range g.Cells {
		floor = math.Min(floor, g.Cells[i].Elevation())
	}

	grid := make([][]float64, g.Width)
	for x := range int(g.Width) {
		grid[x] = make([]float64, g.Height)
		for y := range int(g.Height) {
			grid[x][y] = g.Cell(x, y).Elevation() - floor
		}
	}
	return grid
}

// CountByType returns the number of cells of each type.
func (g *GAT) CountByType() map[GATCellType]int {
	counts := make(map[GATCellType]int)
	for _, cell := range g.Cells {
		counts[cell.Type]++
	}
	return counts
}

// ParseGAT parses a GAT file from raw bytes.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	if string(data[0:4]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}

	// Version is stored as [minor, major].
	version := GATVersion{Major: data[5], Minor: data[4]}
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}

	width := binary.LittleEndian.Uint32(data[6:])
	height := binary.LittleEndian.Uint32(data[10:])
	if width == 0 || height == 0 || width > gatMaxSide || height > gatMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}

	cellCount := int(width * height)
	if len(data)-gatHeaderSize < cellCount*gatCellSize {
		return nil, fmt.Errorf("%w: need %d cells, have %d bytes", ErrTruncatedGATData, cellCount, len(data)-gatHeaderSize)
	}

	gat := &GAT{
		Version: version,
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, cellCount),
	}
	r := bytes.NewReader(data[gatHeaderSize:])
	if err := binary.Read(r, binary.LittleEndian, gat.Cells); err != nil {
		return nil, fmt.Errorf("%w: reading cells: %v", ErrTruncatedGATData, err)
	}

	return gat, nil
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

// WriteGAT encodes g in GAT format.
func WriteGAT(w io.Writer, g *GAT) error {
	if int(g.Width*g.Height) != len(g.Cells) {
		return fmt.Errorf("%w: %dx%d with %d cells", ErrInvalidGATDimensions, g.Width, g.Height, len(g.Cells))
	}

	var buf bytes.Buffer
	buf.WriteString(gatMagic)
	buf.WriteByte(g.Version.Minor)
	buf.WriteByte(g.Version.Major)
	_ = binary.Write(&buf, binary.LittleEndian, g.Width)
	_ = binary.Write(&buf, binary.LittleEndian, g.Height)
	_ = binary.Write(&buf, binary.LittleEndian, g.Cells)

	_, err := w.Write(buf.Bytes())
	return err
}
