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
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleGridUniformTarget(t *testing.T) {
	grid, err := PlanGrid(gridSettings(300, 300, 100, PatternSquare, ParquetRatio{}))
	require.NoError(t, err)

	target := uniformImage(300, 300, color.RGBA{R: 50, G: 150, B: 250, A: 255})
	colors := SampleGrid(target, grid, nil)
	require.Len(t, colors, len(grid.Cells))
	for i, c := range colors {
		assert.Equal(t, NewRGB(50, 150, 250), c, "cell %d", i)
	}
}

func TestSampleGridHalvedTarget(t *testing.T) {
	// Left half red, right half blue; a 2-column grid must see one color
	// per column.
	grid, err := PlanGrid(gridSettings(200, 100, 100, PatternSquare, ParquetRatio{}))
	require.NoError(t, err)

	target := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if x < 100 {
				target.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
			} else {
				target.SetRGBA(x, y, color.RGBA{B: 200, A: 255})
			}
		}
	}

	colors := SampleGrid(target, grid, nil)
	require.Len(t, colors, 2)
	assert.Greater(t, int(colors[0].R), 150, "left cell should be red")
	assert.Less(t, int(colors[0].B), 50)
	assert.Greater(t, int(colors[1].B), 150, "right cell should be blue")
	assert.Less(t, int(colors[1].R), 50)
}

func TestSampleGridScalesTargetToCanvas(t *testing.T) {
	// A target smaller than the canvas is scaled up to the working bitmap,
	// so sampling still hits every cell.
	grid, err := PlanGrid(gridSettings(400, 400, 200, PatternSquare, ParquetRatio{}))
	require.NoError(t, err)

	target := uniformImage(20, 20, color.RGBA{R: 90, G: 90, B: 90, A: 255})
	colors := SampleGrid(target, grid, nil)
	require.Len(t, colors, 4)
	for _, c := range colors {
		assert.InDelta(t, 90, int(c.R), 2)
		assert.InDelta(t, 90, int(c.G), 2)
		assert.InDelta(t, 90, int(c.B), 2)
	}
}

func TestLoadTargetImageUnreadable(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "not-an-image.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a jpeg"), 0o644))

	_, err := LoadTargetImage(garbage)
	var targetErr *TargetImageError
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, garbage, targetErr.Path)

	_, err = LoadTargetImage(filepath.Join(dir, "missing.png"))
	assert.ErrorAs(t, err, &targetErr)
}
