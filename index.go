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
	"image"
	"runtime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ThumbMaxSide bounds the longer side of candidate thumbnails. Candidates
// are decoded and downscaled exactly once; everything later works on the
// thumbnail.
const ThumbMaxSide = 256

// CandidatePhoto is one successfully indexed candidate: its decoded,
// bounded thumbnail plus the color statistics the selector scores against.
// ID is the photo's discovery index, stable across a run.
type CandidatePhoto struct {
	ID      int
	Path    string
	Thumb   image.Image
	Average RGB
	Aspect  Orientation
}

// CandidateVariant is one selectable option: a candidate photo, optionally
// horizontally mirrored. Mirroring shares the photo's pixel data and average
// color; it only affects rendering, giving the selector an extra, visually
// distinct option from the same source.
type CandidateVariant struct {
	Photo    *CandidatePhoto
	Mirrored bool
}

// IndexFailure records one candidate that was dropped from the pool because
// it could not be decoded. Failures are non-fatal.
type IndexFailure struct {
	Path string
	Err  error
}

// CellPhotoIndex holds the decoded, color-profiled candidate pool.
// Variants are ordered by photo discovery index with the unmirrored variant
// before the mirrored one; the selector's deterministic tie-break relies on
// this order.
type CellPhotoIndex struct {
	Photos   []*CandidatePhoto
	Variants []CandidateVariant
	Failures []IndexFailure
}

// BuildIndex decodes, downsizes and color-profiles every candidate path.
// Decoding runs on a worker pool bounded by workers (defaulting to the
// number of CPUs); the stop signal is checked between candidates, in-flight
// decodes always complete. Decode failures are logged, recorded and the
// candidate is dropped from the pool. If mirror is set a second, mirrored
// variant is registered for every photo.
func BuildIndex(ctx context.Context, paths []string, mirror bool, workers int, resizer ImageResizer, onDone func(n int)) (*CellPhotoIndex, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if resizer == nil {
		resizer = DefaultResizer
	}

	type slot struct {
		photo *CandidatePhoto
		err   error
	}
	slots := make([]slot, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var done atomic.Int64
	for i, path := range paths {
		if err := gctx.Err(); err != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			photo, err := indexCandidate(path, resizer)
			slots[i] = slot{photo: photo, err: err}
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

	idx := &CellPhotoIndex{}
	for i, s := range slots {
		if s.err != nil {
			log.WithFields(log.Fields{
				log.ErrorKey: s.err,
				"path":       paths[i],
			}).Error("Can't decode cell photo, dropping it from the pool")
			idx.Failures = append(idx.Failures, IndexFailure{Path: paths[i], Err: s.err})
			continue
		}
		if s.photo == nil {
			// Slot never ran because the context was cancelled.
			continue
		}
		s.photo.ID = len(idx.Photos)
		idx.Photos = append(idx.Photos, s.photo)
		idx.Variants = append(idx.Variants, CandidateVariant{Photo: s.photo})
		if mirror {
			idx.Variants = append(idx.Variants, CandidateVariant{Photo: s.photo, Mirrored: true})
		}
	}
	return idx, nil
}

func indexCandidate(path string, resizer ImageResizer) (*CandidatePhoto, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	thumb := boundImage(img, ThumbMaxSide, resizer)
	return &CandidatePhoto{
		Path:    path,
		Thumb:   thumb,
		Average: ComputeAverageColor(thumb),
		Aspect:  classifyAspect(thumb.Bounds()),
	}, nil
}

// boundImage downscales img so its longer side is at most maxSide, keeping
// the aspect ratio. Images already within the bound are returned unchanged.
func boundImage(img image.Image, maxSide int, resizer ImageResizer) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}
	if w >= h {
		return resizer.Resize(uint(maxSide), uint(max(1, h*maxSide/w)), img)
	}
	return resizer.Resize(uint(max(1, w*maxSide/h)), uint(maxSide), img)
}

func classifyAspect(bounds image.Rectangle) Orientation {
	switch {
	case bounds.Dx() > bounds.Dy():
		return OrientationLandscape
	case bounds.Dy() > bounds.Dx():
		return OrientationPortrait
	default:
		return OrientationSquare
	}
}
