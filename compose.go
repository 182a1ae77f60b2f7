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
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// TileCacheSize is the number of resized tiles kept in the compositor
	// cache. The same photo at the same tile size appears often in a
	// mosaic and resizing is not very fast, so caching pays off.
	TileCacheSize = 64

	// OutputJPEGQuality is the encoder quality for the final canvas.
	OutputJPEGQuality = 90
)

// tileCache caches center-crop-filled tiles during composition, keyed by
// photo, mirror flag and tile dimensions. It is safe for concurrent use and
// evicts in FIFO order.
type tileCache struct {
	mu          sync.Mutex
	size        int
	content     map[string]image.Image
	insertOrder []string
}

func newTileCache(size int) *tileCache {
	if size <= 0 {
		size = 1
	}
	return &tileCache{
		size:        size,
		content:     make(map[string]image.Image, size),
		insertOrder: make([]string, 0, size),
	}
}

func tileCacheKey(photoID int, mirrored bool, width, height int) string {
	return fmt.Sprintf("%d-%t-%d-%d", photoID, mirrored, width, height)
}

func (cache *tileCache) get(key string) image.Image {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.content[key]
}

func (cache *tileCache) put(key string, img image.Image) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if _, has := cache.content[key]; has {
		return
	}
	if len(cache.insertOrder) >= cache.size {
		first := cache.insertOrder[0]
		cache.insertOrder = cache.insertOrder[1:]
		delete(cache.content, first)
	}
	cache.insertOrder = append(cache.insertOrder, key)
	cache.content[key] = img
}

// renderTile produces the pixel content for one cell: the candidate's
// thumbnail, mirrored if requested, center-crop-scaled to exactly fill the
// cell rectangle. The crop-to-fill rule also covers parquet aspect
// coercion, where a photo may end up in an orientation tile it was not
// classified as.
func renderTile(variant CandidateVariant, width, height int, cache *tileCache) image.Image {
	key := tileCacheKey(variant.Photo.ID, variant.Mirrored, width, height)
	if img := cache.get(key); img != nil {
		return img
	}
	src := variant.Photo.Thumb
	if variant.Mirrored {
		src = imaging.FlipH(src)
	}
	filled := imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)
	cache.put(key, filled)
	return filled
}

// Compose renders the assignments into one canvas bitmap. Every tile is
// blended per channel toward its cell's average color by the resolved blend
// factor: out = tile*(1-p) + average*p. Cells do not overlap, so rendering
// is parallelized per cell once the full assignment set exists; the stop
// signal is polled between cells and in-flight pixel work completes.
func Compose(ctx context.Context, grid *GridSpec, assignments []TileAssignment, cellColors []RGB, rs ResolvedSettings, workers int, onDone func(n int)) (*image.RGBA, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	canvas := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	cache := newTileCache(TileCacheSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var done atomic.Int64
	for _, a := range assignments {
		if err := gctx.Err(); err != nil {
			break
		}
		a := a
		g.Go(func() error {
			cell := grid.Cells[a.CellIndex]
			tile := renderTile(a.Variant, cell.Rect.Dx(), cell.Rect.Dy(), cache)
			blendInto(canvas, cell.Rect, tile, cellColors[a.CellIndex], rs.BlendFactor)
			if onDone != nil {
				onDone(int(done.Add(1)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return canvas, nil
}

// blendInto copies the tile into the canvas area, mixing every pixel toward
// the cell average. The tile bounds must match the area dimensions.
func blendInto(canvas *image.RGBA, area image.Rectangle, tile image.Image, average RGB, p float64) {
	tileBounds := tile.Bounds()
	for y := 0; y < area.Dy(); y++ {
		for x := 0; x < area.Dx(); x++ {
			c := ConvertRGB(tile.At(tileBounds.Min.X+x, tileBounds.Min.Y+y))
			out := c.Blend(average, p)
			off := canvas.PixOffset(area.Min.X+x, area.Min.Y+y)
			canvas.Pix[off] = out.R
			canvas.Pix[off+1] = out.G
			canvas.Pix[off+2] = out.B
			canvas.Pix[off+3] = 0xff
		}
	}
}

// WriteOutput encodes the canvas as JPEG into a uniquely named temporary
// file under the caller-supplied cache directory and returns its path. On
// any write or encode error the partial file is removed.
func WriteOutput(canvas image.Image, cacheDir string) (string, error) {
	path := filepath.Join(cacheDir, fmt.Sprintf("mosaic-%s.jpg", uuid.New().String()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("can't create output file: %w", err)
	}
	if err := jpeg.Encode(f, canvas, &jpeg.Options{Quality: OutputJPEGQuality}); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("can't encode output image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("can't write output file: %w", err)
	}
	return path, nil
}
