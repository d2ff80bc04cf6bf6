package formats

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyGrid is returned for a grid file without height samples.
var ErrEmptyGrid = errors.New("grid file has no heights")

// GridFile is a height grid stored as YAML:
//
//	resolution: 0.5
//	heights:
//	  - [0, 0, 1]
//	  - [2, 3, 0]
//
// Each inner list is one row, indexed by x; position within the row is y.
type GridFile struct {
	Resolution float64     `yaml:"resolution,omitempty"`
	Heights    [][]float64 `yaml:"heights,flow"`
}

// ParseGrid parses a YAML grid file from raw bytes.
func ParseGrid(data []byte) (*GridFile, error) {
	var g GridFile
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing grid: %w", err)
	}
	if len(g.Heights) == 0 {
		return nil, ErrEmptyGrid
	}
	if g.Resolution < 0 {
		return nil, fmt.Errorf("parsing grid: negative resolution %v", g.Resolution)
	}
	return &g, nil
}

// ParseGridFile parses a YAML grid file from disk.
func ParseGridFile(path string) (*GridFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grid file: %w", err)
	}
	return ParseGrid(data)
}

// Marshal encodes the grid as YAML.
func (g *GridFile) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}

// SaveTo writes the grid as YAML to path.
func (g *GridFile) SaveTo(path string) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
