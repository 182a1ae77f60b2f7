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

const (
	// MaxSamplePointsPerAxis bounds the sample lattice per cell to
	// MaxSamplePointsPerAxis^2 points (64 for 8), enough for stable
	// averages without scanning every pixel on large canvases.
	MaxSamplePointsPerAxis = 8

	// MaxSampleSide caps the long side of the working bitmap the target is
	// scaled to before sampling, bounding cost on very large canvases.
	MaxSampleSide = 4096
)

// LoadTargetImage decodes the target image, returning a *TargetImageError
// if the file can't be read or decoded.
func LoadTargetImage(path string) (image.Image, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, &TargetImageError{Path: path, Err: err}
	}
	return img, nil
}

// SampleGrid reduces the target image to one average color per grid cell,
// in the grid's canonical scan order.
//
// The target is first scaled to a working bitmap at canvas resolution
// (bounded by MaxSampleSide); each cell's color is then the arithmetic mean
// over a small lattice of sample points drawn uniformly from the cell's
// source rectangle.
func SampleGrid(target image.Image, grid *GridSpec, resizer ImageResizer) []RGB {
	if resizer == nil {
		resizer = DefaultResizer
	}

	workW, workH := grid.Width, grid.Height
	scale := 1.0
	if longSide := max(workW, workH); longSide > MaxSampleSide {
		scale = float64(MaxSampleSide) / float64(longSide)
		workW = max(1, int(float64(workW)*scale))
		workH = max(1, int(float64(workH)*scale))
	}
	working := resizer.Resize(uint(workW), uint(workH), target)
	// The resizer output starts at (0,0); the scale factors map canvas
	// coordinates into it.
	fx := float64(workW) / float64(grid.Width)
	fy := float64(workH) / float64(grid.Height)

	colors := make([]RGB, len(grid.Cells))
	for i, cell := range grid.Cells {
		colors[i] = sampleRect(working, cell.Rect, fx, fy)
	}
	return colors
}

// sampleRect averages the working bitmap over a bounded uniform lattice of
// points inside the canvas-space rectangle r.
func sampleRect(working image.Image, r image.Rectangle, fx, fy float64) RGB {
	bounds := working.Bounds()
	stepsX := min(MaxSamplePointsPerAxis, r.Dx())
	stepsY := min(MaxSamplePointsPerAxis, r.Dy())
	if stepsX < 1 || stepsY < 1 {
		return RGB{}
	}

	var sumR, sumG, sumB uint64
	for sy := 0; sy < stepsY; sy++ {
		// Sample at the midpoint of each lattice stripe.
		cy := float64(r.Min.Y) + (float64(sy)+0.5)*float64(r.Dy())/float64(stepsY)
		py := bounds.Min.Y + int(cy*fy)
		if py >= bounds.Max.Y {
			py = bounds.Max.Y - 1
		}
		for sx := 0; sx < stepsX; sx++ {
			cx := float64(r.Min.X) + (float64(sx)+0.5)*float64(r.Dx())/float64(stepsX)
			px := bounds.Min.X + int(cx*fx)
			if px >= bounds.Max.X {
				px = bounds.Max.X - 1
			}
			rgb := ConvertRGB(working.At(px, py))
			sumR += uint64(rgb.R)
			sumG += uint64(rgb.G)
			sumB += uint64(rgb.B)
		}
	}
	n := uint64(stepsX * stepsY)
	return RGB{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
	}
}
