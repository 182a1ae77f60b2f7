// Copyright 2025 The photomosaic Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package photomosaic

import (
	"fmt"
	"math"
	"strings"
)

const (
	// Resolution is the fixed print resolution in dots per inch. All
	// user-facing units (inches, millimeters) are converted to pixels
	// through this constant.
	Resolution = 300

	// MillimetersPerInch converts the metric cell size to inches.
	MillimetersPerInch = 25.4
)

// Pattern describes the tile layout of the mosaic.
type Pattern int

const (
	// PatternSquare lays out a uniform grid of square tiles.
	PatternSquare Pattern = iota
	// PatternParquet mixes landscape- and portrait-oriented tiles in a
	// repeating brick-like arrangement.
	PatternParquet
)

func (p Pattern) String() string {
	switch p {
	case PatternSquare:
		return "square"
	case PatternParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Pattern(%d)", int(p))
	}
}

// ParsePattern parses a pattern name, case insensitive.
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return PatternSquare, nil
	case "parquet":
		return PatternParquet, nil
	default:
		return -1, fmt.Errorf("unknown pattern: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so patterns round-trip
// through yaml settings files.
func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	parsed, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PrintSize is the physical size of the output, e.g. a named print format.
type PrintSize struct {
	Label        string  `yaml:"label"`
	WidthInches  float64 `yaml:"width_inches"`
	HeightInches float64 `yaml:"height_inches"`
}

// CellSize is the physical edge length of one square tile unit.
type CellSize struct {
	Label       string  `yaml:"label"`
	Millimeters float64 `yaml:"millimeters"`
}

// ParquetRatio is the landscape:portrait tile count ratio that must hold
// over any complete band of the parquet layout. Both counts must be >= 1.
type ParquetRatio struct {
	Landscape int `yaml:"landscape"`
	Portrait  int `yaml:"portrait"`
}

// MosaicSettings are the user-facing parameters of one generation run.
type MosaicSettings struct {
	PrintSize PrintSize `yaml:"print_size"`
	CellSize  CellSize  `yaml:"cell_size"`

	// ColorChangePercent is the blend weight (0-100) pulling each output
	// tile's pixels toward its target cell's average color.
	ColorChangePercent int `yaml:"color_change_percent"`

	Pattern      Pattern      `yaml:"pattern"`
	ParquetRatio ParquetRatio `yaml:"parquet_ratio"`

	// UseAllImages exhausts the candidate pool before any repeat.
	UseAllImages bool `yaml:"use_all_images"`

	// MirrorImages registers a horizontally mirrored variant of every
	// candidate as a distinct selectable option.
	MirrorImages bool `yaml:"mirror_images"`

	// DuplicateSpacing is the minimum Chebyshev grid distance required
	// between two placements of the same candidate photo.
	DuplicateSpacing int `yaml:"duplicate_spacing"`

	// Quality selects the interpolation quality (0-5) used for image
	// scaling, see GetInterP.
	Quality uint `yaml:"quality"`
}

// ResolvedSettings is the pixel-space form of MosaicSettings produced by
// ResolveSettings. All later stages operate on this.
type ResolvedSettings struct {
	MosaicSettings

	OutputWidth  int
	OutputHeight int
	TileWidth    int
	TileHeight   int

	// BlendFactor is ColorChangePercent normalized to [0, 1].
	BlendFactor float64
}

// ResolveSettings converts the user-facing units into pixel-space
// parameters: output dimensions are printInches * Resolution, tile
// dimensions are cellMillimeters * Resolution / 25.4 rounded to the nearest
// whole pixel with a minimum of 1. It returns an *InvalidSettingsError if
// any derived dimension is not positive, the color change percent is out of
// range, the duplicate spacing is negative or a parquet ratio count is not
// positive.
func ResolveSettings(s MosaicSettings) (ResolvedSettings, error) {
	res := ResolvedSettings{MosaicSettings: s}

	res.OutputWidth = int(math.Round(s.PrintSize.WidthInches * Resolution))
	res.OutputHeight = int(math.Round(s.PrintSize.HeightInches * Resolution))
	if res.OutputWidth <= 0 || res.OutputHeight <= 0 {
		return res, invalidSettings("printSize", "derived canvas %dx%d px must be positive",
			res.OutputWidth, res.OutputHeight)
	}

	tile := int(math.Round(s.CellSize.Millimeters * Resolution / MillimetersPerInch))
	if s.CellSize.Millimeters <= 0 {
		return res, invalidSettings("cellSize", "cell size %.2f mm must be positive", s.CellSize.Millimeters)
	}
	if tile < 1 {
		tile = 1
	}
	res.TileWidth = tile
	res.TileHeight = tile

	if s.ColorChangePercent < 0 || s.ColorChangePercent > 100 {
		return res, invalidSettings("colorChangePercent", "%d out of range [0, 100]", s.ColorChangePercent)
	}
	res.BlendFactor = float64(s.ColorChangePercent) / 100.0

	if s.DuplicateSpacing < 0 {
		return res, invalidSettings("duplicateSpacing", "%d must not be negative", s.DuplicateSpacing)
	}

	if s.Pattern == PatternParquet {
		if s.ParquetRatio.Landscape < 1 || s.ParquetRatio.Portrait < 1 {
			return res, invalidSettings("parquetRatio", "counts %d:%d must both be at least 1",
				s.ParquetRatio.Landscape, s.ParquetRatio.Portrait)
		}
	}

	return res, nil
}
