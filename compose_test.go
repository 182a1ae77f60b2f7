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
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeFixture(t *testing.T, blendPercent int) (*GridSpec, []TileAssignment, []RGB, ResolvedSettings) {
	t.Helper()
	grid := mustGrid(t, 200, 200, 100)
	idx := poolIndex(false, NewRGB(10, 20, 30), NewRGB(200, 210, 220))
	assignments := []TileAssignment{
		{CellIndex: 0, Variant: idx.Variants[0]},
		{CellIndex: 1, Variant: idx.Variants[1]},
		{CellIndex: 2, Variant: idx.Variants[1]},
		{CellIndex: 3, Variant: idx.Variants[0]},
	}
	cellColors := []RGB{
		NewRGB(100, 0, 0), NewRGB(0, 100, 0),
		NewRGB(0, 0, 100), NewRGB(50, 50, 50),
	}
	rs := ResolvedSettings{
		MosaicSettings: MosaicSettings{ColorChangePercent: blendPercent},
		BlendFactor:    float64(blendPercent) / 100.0,
	}
	return grid, assignments, cellColors, rs
}

func TestComposeZeroPercentKeepsTilePixels(t *testing.T) {
	grid, assignments, cellColors, rs := composeFixture(t, 0)
	canvas, err := Compose(context.Background(), grid, assignments, cellColors, rs, 2, nil)
	require.NoError(t, err)

	// Every pixel of each cell must equal the (uniform) source tile.
	for i, a := range assignments {
		cell := grid.Cells[i]
		want := a.Variant.Photo.Average
		for _, pt := range []struct{ x, y int }{
			{cell.Rect.Min.X, cell.Rect.Min.Y},
			{cell.Rect.Max.X - 1, cell.Rect.Max.Y - 1},
			{(cell.Rect.Min.X + cell.Rect.Max.X) / 2, (cell.Rect.Min.Y + cell.Rect.Max.Y) / 2},
		} {
			got := ConvertRGB(canvas.At(pt.x, pt.y))
			assert.Equal(t, want, got, "cell %d pixel (%d,%d)", i, pt.x, pt.y)
		}
	}
}

func TestComposeFullPercentPaintsCellAverage(t *testing.T) {
	grid, assignments, cellColors, rs := composeFixture(t, 100)
	canvas, err := Compose(context.Background(), grid, assignments, cellColors, rs, 2, nil)
	require.NoError(t, err)

	for i := range assignments {
		cell := grid.Cells[i]
		for y := cell.Rect.Min.Y; y < cell.Rect.Max.Y; y++ {
			for x := cell.Rect.Min.X; x < cell.Rect.Max.X; x++ {
				require.Equal(t, cellColors[i], ConvertRGB(canvas.At(x, y)),
					"cell %d pixel (%d,%d) must equal the sampled average exactly", i, x, y)
			}
		}
	}
}

func TestComposeCancelled(t *testing.T) {
	grid, assignments, cellColors, rs := composeFixture(t, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compose(ctx, grid, assignments, cellColors, rs, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderTileMirrors(t *testing.T) {
	// A half red, half blue thumbnail must come out side-flipped.
	photo := &CandidatePhoto{ID: 0, Thumb: splitImage(t), Average: RGB{}}
	cache := newTileCache(4)

	plain := renderTile(CandidateVariant{Photo: photo}, 16, 16, cache)
	mirrored := renderTile(CandidateVariant{Photo: photo, Mirrored: true}, 16, 16, cache)

	left := ConvertRGB(plain.At(plain.Bounds().Min.X+1, plain.Bounds().Min.Y+8))
	mirroredLeft := ConvertRGB(mirrored.At(mirrored.Bounds().Min.X+1, mirrored.Bounds().Min.Y+8))
	assert.Greater(t, int(left.R), 200)
	assert.Greater(t, int(mirroredLeft.B), 200)
}

func TestTileCacheEvictsFIFO(t *testing.T) {
	cache := newTileCache(2)
	a := uniformImage(1, 1, colorOf(1))
	b := uniformImage(1, 1, colorOf(2))
	c := uniformImage(1, 1, colorOf(3))

	cache.put("a", a)
	cache.put("b", b)
	cache.put("c", c)

	assert.Nil(t, cache.get("a"), "oldest entry must be evicted first")
	assert.NotNil(t, cache.get("b"))
	assert.NotNil(t, cache.get("c"))
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	canvas := uniformImage(20, 20, colorOf(100))

	path, err := WriteOutput(canvas, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestWriteOutputBadDirectory(t *testing.T) {
	_, err := WriteOutput(uniformImage(2, 2, colorOf(0)), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
