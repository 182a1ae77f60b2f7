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
	"math"
)

// RGB is a color containing r, g and b components. It is the internal
// representation for all color statistics; alpha is ignored everywhere.
type RGB struct {
	R, G, B uint8
}

// NewRGB returns a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// ConvertRGB converts a generic color into the internal RGB representation.
func ConvertRGB(c color.Color) RGB {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return RGB{R: rgba.R, G: rgba.G, B: rgba.B}
}

// Dist returns the Euclidean distance between the two colors in RGB space.
// The result is in the range [0, ~441.7].
func (c RGB) Dist(other RGB) float64 {
	dr := float64(c.R) - float64(other.R)
	dg := float64(c.G) - float64(other.G)
	db := float64(c.B) - float64(other.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Blend mixes the color component-wise toward other: each channel becomes
// c*(1-p) + other*p. p must be in [0, 1]; p = 0 returns c unchanged and
// p = 1 returns other exactly.
func (c RGB) Blend(other RGB, p float64) RGB {
	return RGB{
		R: blendChannel(c.R, other.R, p),
		G: blendChannel(c.G, other.G, p),
		B: blendChannel(c.B, other.B, p),
	}
}

func blendChannel(a, b uint8, p float64) uint8 {
	v := float64(a)*(1.0-p) + float64(b)*p
	return clampChannel(math.Round(v))
}

func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// ComputeAverageColor computes the arithmetic mean color of an image over
// all of its pixels. Empty images yield the zero color.
func ComputeAverageColor(img image.Image) RGB {
	bounds := img.Bounds()
	if bounds.Empty() {
		return RGB{}
	}
	var r, g, b uint64
	numPixels := uint64(bounds.Dx()) * uint64(bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgb := ConvertRGB(img.At(x, y))
			r += uint64(rgb.R)
			g += uint64(rgb.G)
			b += uint64(rgb.B)
		}
	}
	return RGB{
		R: uint8(r / numPixels),
		G: uint8(g / numPixels),
		B: uint8(b / numPixels),
	}
}
