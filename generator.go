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
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EngineState is the lifecycle state of an Engine:
// Idle -> Running -> {Success, Error, Cancelled} -> Idle (on Reset).
type EngineState int

const (
	StateIdle EngineState = iota
	StateRunning
	StateSuccess
	StateError
	StateCancelled
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EngineState(%d)", int(s))
	}
}

// GenerateRequest carries the inputs of one generation run.
type GenerateRequest struct {
	// TargetPath is the photograph the mosaic reproduces.
	TargetPath string
	// CandidatePaths is the ordered pool of cell photographs. The order
	// defines candidate discovery indices and must be stable for
	// deterministic output.
	CandidatePaths []string
	Settings       MosaicSettings
	// CacheDir is the directory the output file is written to. Ownership
	// of the file passes to the caller on success.
	CacheDir string
	// Progress receives the outbound event stream; may be nil.
	Progress ProgressFunc
}

// MosaicResult is the immutable record of one successful run.
type MosaicResult struct {
	GridRows         int
	GridColumns      int
	OutputWidth      int
	OutputHeight     int
	UsedCellPhotos   int
	TotalCellPhotos  int
	GenerationTimeMs int64
	OutputFilePath   string
}

// Engine runs mosaic generations. One engine never runs two generations at
// once; a Generate call while another is running is rejected with ErrBusy.
// All run-scoped state (grid, index, selection bookkeeping) lives inside
// Generate, so separate engines are fully independent.
type Engine struct {
	mu    sync.Mutex
	state EngineState

	// Workers bounds the candidate decode and compositing pools. Zero
	// means the number of CPUs.
	Workers int
}

// NewEngine returns an idle engine using up to workers goroutines for the
// parallel stages (0 selects the number of CPUs).
func NewEngine(workers int) *Engine {
	if workers < 0 {
		workers = 0
	}
	return &Engine{Workers: workers}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reset moves a terminal engine back to idle. Resetting a running engine is
// not allowed and reports false.
func (e *Engine) Reset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return false
	}
	e.state = StateIdle
	return true
}

// Generate runs the full pipeline synchronously and resolves exactly once:
// with a result on success, with the generation error otherwise, or with
// context.Canceled after cooperative cancellation. Callers that must not
// block invoke it from a goroutine of their own; the engine makes no
// assumption about the caller's execution context.
//
// On cancellation no output file is left behind. Fatal conditions (invalid
// settings, unreadable target, empty pool) abort before any canvas
// allocation.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*MosaicResult, error) {
	e.mu.Lock()
	if e.state == StateRunning {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.state = StateRunning
	e.mu.Unlock()

	start := time.Now()
	result, err := e.run(ctx, req)

	e.mu.Lock()
	switch {
	case err == nil:
		e.state = StateSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		e.state = StateCancelled
	default:
		e.state = StateError
	}
	e.mu.Unlock()

	if result != nil {
		result.GenerationTimeMs = time.Since(start).Milliseconds()
	}
	return result, err
}

func (e *Engine) run(ctx context.Context, req GenerateRequest) (*MosaicResult, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	emitter := newProgressEmitter(req.Progress)

	emitter.begin(StageResolving)
	rs, err := ResolveSettings(req.Settings)
	if err != nil {
		return nil, err
	}
	resizer := NewNfntResizer(GetInterP(rs.Quality))

	emitter.begin(StagePlanning)
	grid, err := PlanGrid(rs)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"pattern": rs.Pattern,
		"rows":    grid.Rows,
		"cols":    grid.Cols,
		"cells":   len(grid.Cells),
	}).Debug("Planned mosaic grid")

	// Sampling the target and indexing the candidate pool are independent,
	// so they run concurrently.
	var cellColors []RGB
	var index *CellPhotoIndex
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emitter.begin(StageSampling)
		target, err := LoadTargetImage(req.TargetPath)
		if err != nil {
			return err
		}
		cellColors = SampleGrid(target, grid, resizer)
		emitter.emit(StageSampling, 1, 1)
		return nil
	})
	g.Go(func() error {
		emitter.begin(StageIndexing)
		var err error
		index, err = BuildIndex(gctx, req.CandidatePaths, rs.MirrorImages, workers, resizer, func(n int) {
			emitter.emit(StageIndexing, n, len(req.CandidatePaths))
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(index.Photos) == 0 {
		return nil, ErrEmptyCellPool
	}

	emitter.begin(StageSelecting)
	assignments, err := SelectTiles(ctx, grid, cellColors, index, rs, func(n int) {
		emitter.emit(StageSelecting, n, len(grid.Cells))
	})
	if err != nil {
		return nil, err
	}

	emitter.begin(StageCompositing)
	canvas, err := Compose(ctx, grid, assignments, cellColors, rs, workers, func(n int) {
		emitter.emit(StageCompositing, n, len(assignments))
	})
	if err != nil {
		return nil, err
	}

	emitter.begin(StageEncoding)
	outPath, err := WriteOutput(canvas, req.CacheDir)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// Cancelled during the encode; the run ends cancelled and must not
		// leave a file behind.
		os.Remove(outPath)
		return nil, err
	}
	emitter.emit(StageEncoding, 1, 1)

	return &MosaicResult{
		GridRows:        grid.Rows,
		GridColumns:     grid.Cols,
		OutputWidth:     grid.Width,
		OutputHeight:    grid.Height,
		UsedCellPhotos:  countUsed(assignments, len(index.Photos)),
		TotalCellPhotos: len(index.Photos),
		OutputFilePath:  outPath,
	}, nil
}
