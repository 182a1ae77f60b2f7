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
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by Engine.Generate if a generation is already
	// running. Concurrent runs are never permitted.
	ErrBusy = errors.New("photomosaic: a generation is already running")

	// ErrEmptyCellPool is returned if not a single candidate photo survives
	// decoding, leaving the selector with nothing to choose from.
	ErrEmptyCellPool = errors.New("photomosaic: no usable cell photos in the pool")
)

// InvalidSettingsError reports settings that cannot be resolved into a valid
// pixel-space configuration, for example a print size of zero inches or a
// color change percent outside [0, 100].
type InvalidSettingsError struct {
	Field  string
	Reason string
}

func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("photomosaic: invalid settings: %s: %s", e.Field, e.Reason)
}

func invalidSettings(field, format string, args ...interface{}) error {
	return &InvalidSettingsError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TargetImageError reports that the target image could not be read or
// decoded. It wraps the underlying decode or IO error.
type TargetImageError struct {
	Path string
	Err  error
}

func (e *TargetImageError) Error() string {
	return fmt.Sprintf("photomosaic: can't read target image %s: %v", e.Path, e.Err)
}

func (e *TargetImageError) Unwrap() error {
	return e.Err
}
