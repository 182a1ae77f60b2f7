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
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// uniformImage returns a w x h image filled with one color.
func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// writePNG encodes img into dir under name and returns the full path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// writeCandidatePool writes n uniform candidate images with spread-out
// colors and returns their paths in creation order.
func writeCandidatePool(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := color.RGBA{R: uint8(i * 255 / max(1, n-1)), G: uint8(255 - i*255/max(1, n-1)), B: uint8((i * 37) % 256), A: 255}
		img := uniformImage(32, 32, c)
		paths = append(paths, writePNG(t, dir, "cell-"+string(rune('a'+i%26))+string(rune('0'+i/26))+".png", img))
	}
	return paths
}

// colorOf returns an opaque gray of the given intensity.
func colorOf(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// splitImage returns a 16x16 image with a red left half and a blue right
// half.
func splitImage(t *testing.T) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

// testSettings returns settings that resolve to a small, fast grid:
// a 1x1.5 inch print (300x450 px) with 12.7 mm (150 px) tiles.
func testSettings() MosaicSettings {
	return MosaicSettings{
		PrintSize: PrintSize{Label: "1x1.5", WidthInches: 1, HeightInches: 1.5},
		CellSize:  CellSize{Label: "12.7 mm", Millimeters: 12.7},
		Pattern:   PatternSquare,
	}
}
