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
	"fmt"
	"sync"
)

// Stage identifies the pipeline phase a progress event belongs to.
type Stage int

const (
	StageResolving Stage = iota
	StagePlanning
	StageSampling
	StageIndexing
	StageSelecting
	StageCompositing
	StageEncoding
)

func (s Stage) String() string {
	switch s {
	case StageResolving:
		return "resolving"
	case StagePlanning:
		return "planning"
	case StageSampling:
		return "sampling"
	case StageIndexing:
		return "indexing"
	case StageSelecting:
		return "selecting"
	case StageCompositing:
		return "compositing"
	case StageEncoding:
		return "encoding"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// GenerationProgress is one event of the outbound progress stream: the
// current stage and the overall completion percent (0-100). Events are
// transient and never persisted. The engine makes no assumption about how
// the caller marshals events to its own execution context.
type GenerationProgress struct {
	Stage   Stage
	Percent int
}

// ProgressFunc receives progress events. A nil ProgressFunc is valid and
// disables reporting.
type ProgressFunc func(GenerationProgress)

// stageSpan maps each stage onto its slice of the overall 0-100 range.
var stageSpan = map[Stage][2]int{
	StageResolving:   {0, 2},
	StagePlanning:    {2, 5},
	StageSampling:    {5, 20},
	StageIndexing:    {20, 50},
	StageSelecting:   {50, 80},
	StageCompositing: {80, 95},
	StageEncoding:    {95, 100},
}

// progressEmitter serializes events toward the sink. Stages that fan out
// over worker pools report completions from several goroutines; the mutex
// keeps the stream one-way and ordered for the caller.
type progressEmitter struct {
	mu   sync.Mutex
	sink ProgressFunc
	last int
}

func newProgressEmitter(sink ProgressFunc) *progressEmitter {
	return &progressEmitter{sink: sink, last: -1}
}

// emit reports that done of total items of the stage are finished.
func (e *progressEmitter) emit(stage Stage, done, total int) {
	if e.sink == nil {
		return
	}
	span := stageSpan[stage]
	percent := span[0]
	if total > 0 {
		percent += (span[1] - span[0]) * done / total
	}
	if percent > 100 {
		percent = 100
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if percent == e.last {
		return
	}
	e.last = percent
	e.sink(GenerationProgress{Stage: stage, Percent: percent})
}

// begin reports a stage transition at its starting percent.
func (e *progressEmitter) begin(stage Stage) {
	if e.sink == nil {
		return
	}
	span := stageSpan[stage]
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = span[0]
	e.sink(GenerationProgress{Stage: stage, Percent: span[0]})
}
