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
	"image"
)

// Orientation tags the shape of a grid cell (and of candidate photos).
type Orientation int

const (
	// OrientationSquare is a 1x1 tile unit.
	OrientationSquare Orientation = iota
	// OrientationLandscape is a 2x1 tile unit (wider than high).
	OrientationLandscape
	// OrientationPortrait is a 1x2 tile unit (higher than wide).
	OrientationPortrait
)

func (o Orientation) String() string {
	switch o {
	case OrientationSquare:
		return "square"
	case OrientationLandscape:
		return "landscape"
	case OrientationPortrait:
		return "portrait"
	default:
		return "unknown"
	}
}

// GridCell is one rectangular region of the output grid, mapped to exactly
// one candidate photo. Row and Col are the tile-unit coordinates of the
// cell's top left corner; parquet cells span two units in one direction.
type GridCell struct {
	Row, Col    int
	Rect        image.Rectangle
	Orientation Orientation
}

// GridSpec is the computed tile layout covering the output canvas.
// Cells are ordered in row-major scan order (by Row, then Col of the top
// left unit); this order is the canonical processing order for every later
// stage. Rows and Cols count tile units, not cells: a parquet cell occupies
// two units.
type GridSpec struct {
	Rows, Cols int
	// Width and Height are the covered canvas dimensions in pixels. Any
	// remainder of the requested output that no whole tile fits into is
	// clipped, top-left aligned.
	Width, Height int
	Cells         []GridCell
}

// PlanGrid computes the tile layout for the resolved settings. For the
// square pattern rows and columns are the floor division of the canvas by
// the tile size. For the parquet pattern tiles are packed in repeating
// horizontal bands of two tile-unit rows each; every band repeats a segment
// of landscape tiles (stacked in pairs) followed by portrait tiles so the
// configured ratio holds exactly over each complete segment, and a short
// remainder at a band's end is filled with whichever tile type still fits
// the remaining width.
func PlanGrid(rs ResolvedSettings) (*GridSpec, error) {
	switch rs.Pattern {
	case PatternParquet:
		return planParquet(rs)
	default:
		return planSquare(rs)
	}
}

func planSquare(rs ResolvedSettings) (*GridSpec, error) {
	rows := rs.OutputHeight / rs.TileHeight
	cols := rs.OutputWidth / rs.TileWidth
	if rows < 1 || cols < 1 {
		return nil, invalidSettings("cellSize", "tile %dx%d px does not fit canvas %dx%d px",
			rs.TileWidth, rs.TileHeight, rs.OutputWidth, rs.OutputHeight)
	}
	spec := &GridSpec{
		Rows:   rows,
		Cols:   cols,
		Width:  cols * rs.TileWidth,
		Height: rows * rs.TileHeight,
		Cells:  make([]GridCell, 0, rows*cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x0 := j * rs.TileWidth
			y0 := i * rs.TileHeight
			spec.Cells = append(spec.Cells, GridCell{
				Row:         i,
				Col:         j,
				Rect:        image.Rect(x0, y0, x0+rs.TileWidth, y0+rs.TileHeight),
				Orientation: OrientationSquare,
			})
		}
	}
	return spec, nil
}

func planParquet(rs ResolvedSettings) (*GridSpec, error) {
	uw, uh := rs.TileWidth, rs.TileHeight
	cols := rs.OutputWidth / uw
	bands := rs.OutputHeight / (2 * uh)
	if cols < 1 || bands < 1 {
		return nil, invalidSettings("cellSize", "parquet band %dx%d px does not fit canvas %dx%d px",
			uw, 2*uh, rs.OutputWidth, rs.OutputHeight)
	}

	// A landscape tile is 2x1 units, so landscape tiles come in stacked
	// pairs filling a 2x2 unit block. The segment is scaled by two when the
	// landscape count is odd so it stays free of gaps.
	landPerSeg := rs.ParquetRatio.Landscape
	portPerSeg := rs.ParquetRatio.Portrait
	if landPerSeg%2 != 0 {
		landPerSeg *= 2
		portPerSeg *= 2
	}
	segCols := landPerSeg + portPerSeg

	spec := &GridSpec{
		Rows:   bands * 2,
		Cols:   cols,
		Width:  cols * uw,
		Height: bands * 2 * uh,
	}

	for b := 0; b < bands; b++ {
		topRow := 2 * b
		y0 := topRow * uh
		var top, bottom []GridCell

		placeLandscapePair := func(col int) {
			x0 := col * uw
			top = append(top, GridCell{
				Row:         topRow,
				Col:         col,
				Rect:        image.Rect(x0, y0, x0+2*uw, y0+uh),
				Orientation: OrientationLandscape,
			})
			bottom = append(bottom, GridCell{
				Row:         topRow + 1,
				Col:         col,
				Rect:        image.Rect(x0, y0+uh, x0+2*uw, y0+2*uh),
				Orientation: OrientationLandscape,
			})
		}
		placePortrait := func(col int) {
			x0 := col * uw
			top = append(top, GridCell{
				Row:         topRow,
				Col:         col,
				Rect:        image.Rect(x0, y0, x0+uw, y0+2*uh),
				Orientation: OrientationPortrait,
			})
		}

		col := 0
		for cols-col >= segCols {
			for k := 0; k < landPerSeg/2; k++ {
				placeLandscapePair(col)
				col += 2
			}
			for k := 0; k < portPerSeg; k++ {
				placePortrait(col)
				col++
			}
		}
		// Remainder: landscape pairs while two unit columns fit, portraits
		// for the final single column.
		for cols-col >= 2 {
			placeLandscapePair(col)
			col += 2
		}
		if cols-col == 1 {
			placePortrait(col)
		}

		spec.Cells = append(spec.Cells, top...)
		spec.Cells = append(spec.Cells, bottom...)
	}
	return spec, nil
}
