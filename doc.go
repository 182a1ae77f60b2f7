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

// Package photomosaic turns one target photograph and a pool of candidate
// cell photographs into a photomosaic: a grid of tiles, each replaced by a
// candidate photo whose average color matches the corresponding region of
// the target, rendered at a caller-specified print resolution.
//
// The pipeline is: ResolveSettings normalizes print/cell sizes into pixel
// geometry, PlanGrid computes the tile layout (uniform grid or the
// mixed-orientation parquet layout), SampleGrid reduces the target image to
// one average color per grid cell, BuildIndex decodes and color-profiles
// every candidate photo once, SelectTiles assigns one candidate (and
// orientation) per cell under duplicate-avoidance constraints and Compose
// renders the assignments into the final canvas with partial color blending.
//
// The Engine type wires these stages together, reports progress through a
// one-way event stream and supports cooperative cancellation via a
// context.Context.
//
// It ships with an executable program to generate mosaic images from the
// command line.
package photomosaic
