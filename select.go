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
	"context"
)

const (
	// UnusedBonus is subtracted from the cost of candidates that have not
	// been placed yet when UseAllImages is set, driving full-pool coverage
	// before any repeat. It must dominate the color distance range
	// (0..~441.7).
	UnusedBonus = 1000.0

	// SpacingPenalty is added to the cost of candidates whose reuse would
	// violate the duplicate spacing. It must dominate both the color
	// distance range and UnusedBonus so a violating candidate only wins
	// when every candidate violates; in that case the penalty applies
	// uniformly and the spacing constraint is effectively relaxed rather
	// than failing the run.
	SpacingPenalty = 1e6
)

// TileAssignment maps one grid cell (by its index in the canonical scan
// order) to the selected candidate variant.
type TileAssignment struct {
	CellIndex int
	Variant   CandidateVariant
}

// selectorState is the cumulative usage and placement bookkeeping of one
// selection run. It is owned exclusively by one SelectTiles invocation and
// never shared across runs.
type selectorState struct {
	usage      []int
	placements [][]gridPos
}

type gridPos struct {
	row, col int
}

func newSelectorState(numPhotos int) *selectorState {
	return &selectorState{
		usage:      make([]int, numPhotos),
		placements: make([][]gridPos, numPhotos),
	}
}

func (st *selectorState) place(photo *CandidatePhoto, cell GridCell) {
	st.usage[photo.ID]++
	st.placements[photo.ID] = append(st.placements[photo.ID], gridPos{row: cell.Row, col: cell.Col})
}

// violatesSpacing reports whether the photo has a prior placement whose
// Chebyshev distance (max of row and column delta) to the cell is below the
// configured duplicate spacing.
func (st *selectorState) violatesSpacing(photo *CandidatePhoto, cell GridCell, spacing int) bool {
	if spacing <= 0 {
		return false
	}
	for _, p := range st.placements[photo.ID] {
		if chebyshev(p, gridPos{row: cell.Row, col: cell.Col}) < spacing {
			return true
		}
	}
	return false
}

func chebyshev(a, b gridPos) int {
	dr := intAbs(a.row - b.row)
	dc := intAbs(a.col - b.col)
	return max(dr, dc)
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SelectTiles assigns one candidate variant to every grid cell, processing
// cells strictly sequentially in the canonical scan order: each decision
// depends on the cumulative usage and placement state of all prior
// decisions.
//
// Every variant is scored as the Euclidean distance between the cell's
// average color and the candidate's average color, minus UnusedBonus for
// still-unused photos when UseAllImages is set, plus SpacingPenalty if the
// reuse would violate the duplicate spacing. The variant with minimum cost
// wins; ties break toward the lowest discovery index with unmirrored before
// mirrored, so identical inputs always yield the identical assignment.
//
// The stop signal is polled between cells; cellColors must follow the
// grid's scan order. onDone, if non-nil, is called with the number of
// completed cells after each decision.
func SelectTiles(ctx context.Context, grid *GridSpec, cellColors []RGB, index *CellPhotoIndex, rs ResolvedSettings, onDone func(n int)) ([]TileAssignment, error) {
	if len(index.Variants) == 0 {
		return nil, ErrEmptyCellPool
	}

	st := newSelectorState(len(index.Photos))
	assignments := make([]TileAssignment, len(grid.Cells))

	for i, cell := range grid.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		want := cellColors[i]
		best := -1
		bestCost := 0.0
		for v, variant := range index.Variants {
			cost := want.Dist(variant.Photo.Average)
			if rs.UseAllImages && st.usage[variant.Photo.ID] == 0 {
				cost -= UnusedBonus
			}
			if st.violatesSpacing(variant.Photo, cell, rs.DuplicateSpacing) {
				cost += SpacingPenalty
			}
			// Strict less keeps the first variant on ties; variants are
			// ordered by discovery index, unmirrored before mirrored.
			if best < 0 || cost < bestCost {
				best = v
				bestCost = cost
			}
		}

		variant := index.Variants[best]
		st.place(variant.Photo, cell)
		assignments[i] = TileAssignment{CellIndex: i, Variant: variant}
		if onDone != nil {
			onDone(i + 1)
		}
	}
	return assignments, nil
}

// countUsed returns the number of distinct photos with at least one
// placement in the assignment set.
func countUsed(assignments []TileAssignment, numPhotos int) int {
	seen := make([]bool, numPhotos)
	used := 0
	for _, a := range assignments {
		if !seen[a.Variant.Photo.ID] {
			seen[a.Variant.Photo.ID] = true
			used++
		}
	}
	return used
}
