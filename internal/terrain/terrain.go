// Package terrain loads a height grid from the configured source and
// builds its heightfield index.
package terrain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightfield/internal/assets"
	"github.com/Faultbox/heightfield/internal/config"
	"github.com/Faultbox/heightfield/internal/logger"
	"github.com/Faultbox/heightfield/pkg/formats"
	"github.com/Faultbox/heightfield/pkg/heightfield"
)

// Terrain loading errors.
var (
	ErrNoGrid        = errors.New("no grid configured")
	ErrUnknownFormat = errors.New("unknown grid format")
)

// Format identifies a grid source format.
type Format int

// Supported grid formats.
const (
	FormatYAML Format = iota
	FormatGAT
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatGAT:
		return "gat"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// DetectFormat picks the grid format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".gat":
		return FormatGAT, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Grid is a decoded height grid together with its cell size.
type Grid struct {
	Name       string
	Format     Format
	Heights    [][]float64
	Resolution float64
}

// Terrain is a built heightfield and where it came from.
type Terrain struct {
	Name      string
	Format    Format
	Field     *heightfield.HeightField
	BuildTime time.Duration
}

// Decode parses raw grid data. A positive resolution overrides whatever the
// source carries; otherwise YAML files use their own value (default 1) and
// GAT tables use the RO cell size.
func Decode(name string, data []byte, resolution float64) (*Grid, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	g := &Grid{Name: name, Format: format}
	switch format {
	case FormatYAML:
		file, err := formats.ParseGrid(data)
		if err != nil {
			return nil, err
		}
		g.Heights = file.Heights
		g.Resolution = file.Resolution
		if g.Resolution == 0 {
			g.Resolution = 1
		}
	case FormatGAT:
		gat, err := formats.ParseGAT(data)
		if err != nil {
			return nil, err
		}
		g.Heights = gat.HeightGrid()
		g.Resolution = formats.GATCellSize
	}

	if resolution > 0 {
		g.Resolution = resolution
	}
	return g, nil
}

// Load reads the configured grid through m.
func Load(m *assets.Manager, cfg config.GridConfig) (*Grid, error) {
	if cfg.Path == "" {
		return nil, ErrNoGrid
	}

	data, err := m.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("loading grid %s: %w", cfg.Path, err)
	}

	g, err := Decode(cfg.Path, data, cfg.Resolution)
	if err != nil {
		return nil, fmt.Errorf("decoding grid %s: %w", cfg.Path, err)
	}
	return g, nil
}

// Build indexes g, logging and recording how long it took.
func Build(g *Grid) (*Terrain, error) {
	log := logger.Named("terrain")

	start := time.Now()
	field, err := heightfield.FromGrid(g.Heights, g.Resolution)
	elapsed := time.Since(start)
	if err != nil {
		buildErrors.Inc()
		return nil, fmt.Errorf("building %s: %w", g.Name, err)
	}

	stats := field.Stats()
	observeBuild(g.Format, elapsed, stats)

	rows, cols := field.Dims()
	log.Info("terrain built",
		zap.String("grid", g.Name),
		zap.Stringer("format", g.Format),
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("size", field.Size()),
		zap.Float64("resolution", g.Resolution),
		zap.Int("nodes", stats.Nodes),
		zap.Int("leaves", stats.Leaves),
		zap.Int("depth", stats.Depth),
		zap.Int("triangles", stats.Triangles),
		zap.Duration("elapsed", elapsed))

	return &Terrain{
		Name:      g.Name,
		Format:    g.Format,
		Field:     field,
		BuildTime: elapsed,
	}, nil
}

// Read loads the configured grid, from the GRF archive when one is set.
func Read(cfg config.GridConfig) (*Grid, error) {
	m := assets.NewManager()
	defer m.Close()

	if cfg.GRF != "" {
		if err := m.AddArchive(cfg.GRF); err != nil {
			return nil, err
		}
		logger.Named("terrain").Debug("archive opened", zap.String("grf", cfg.GRF))
	}

	return Load(m, cfg)
}

// Open reads and builds the configured grid.
func Open(cfg config.GridConfig) (*Terrain, error) {
	g, err := Read(cfg)
	if err != nil {
		return nil, err
	}
	return Build(g)
}
