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
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndexProfilesCandidates(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "red.png", uniformImage(40, 20, color.RGBA{R: 255, A: 255})),
		writePNG(t, dir, "green.png", uniformImage(20, 40, color.RGBA{G: 255, A: 255})),
		writePNG(t, dir, "blue.png", uniformImage(30, 30, color.RGBA{B: 255, A: 255})),
	}

	idx, err := BuildIndex(context.Background(), paths, false, 2, nil, nil)
	require.NoError(t, err)
	require.Len(t, idx.Photos, 3)
	require.Len(t, idx.Variants, 3)
	assert.Empty(t, idx.Failures)

	assert.Equal(t, NewRGB(255, 0, 0), idx.Photos[0].Average)
	assert.Equal(t, OrientationLandscape, idx.Photos[0].Aspect)
	assert.Equal(t, NewRGB(0, 255, 0), idx.Photos[1].Average)
	assert.Equal(t, OrientationPortrait, idx.Photos[1].Aspect)
	assert.Equal(t, OrientationSquare, idx.Photos[2].Aspect)

	// IDs follow the caller's path order.
	for i, photo := range idx.Photos {
		assert.Equal(t, i, photo.ID)
		assert.Equal(t, paths[i], photo.Path)
	}
}

func TestBuildIndexMirrorVariants(t *testing.T) {
	dir := t.TempDir()
	paths := writeCandidatePool(t, dir, 2)

	idx, err := BuildIndex(context.Background(), paths, true, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, idx.Variants, 4)

	// Unmirrored before mirrored, per photo, in discovery order.
	assert.Equal(t, 0, idx.Variants[0].Photo.ID)
	assert.False(t, idx.Variants[0].Mirrored)
	assert.Equal(t, 0, idx.Variants[1].Photo.ID)
	assert.True(t, idx.Variants[1].Mirrored)
	assert.Equal(t, 1, idx.Variants[2].Photo.ID)
	assert.False(t, idx.Variants[2].Mirrored)

	// Mirrored variants share pixel data and average color.
	assert.Same(t, idx.Variants[0].Photo, idx.Variants[1].Photo)
}

func TestBuildIndexDropsUndecodable(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "ok.png", uniformImage(10, 10, color.RGBA{R: 1, A: 255}))
	bad := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("junk"), 0o644))

	idx, err := BuildIndex(context.Background(), []string{bad, good}, false, 2, nil, nil)
	require.NoError(t, err, "decode failures are non-fatal")
	require.Len(t, idx.Photos, 1)
	assert.Equal(t, good, idx.Photos[0].Path)
	assert.Equal(t, 0, idx.Photos[0].ID, "surviving photos are reindexed densely")
	require.Len(t, idx.Failures, 1)
	assert.Equal(t, bad, idx.Failures[0].Path)
}

func TestBuildIndexBoundsThumbnails(t *testing.T) {
	dir := t.TempDir()
	big := writePNG(t, dir, "big.png", uniformImage(ThumbMaxSide*2, ThumbMaxSide, color.RGBA{R: 7, G: 7, B: 7, A: 255}))

	idx, err := BuildIndex(context.Background(), []string{big}, false, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, idx.Photos, 1)
	bounds := idx.Photos[0].Thumb.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), ThumbMaxSide)
	assert.LessOrEqual(t, bounds.Dy(), ThumbMaxSide)
	// Aspect classification happens on the bounded thumbnail.
	assert.Equal(t, OrientationLandscape, idx.Photos[0].Aspect)
}

func TestBuildIndexCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := writeCandidatePool(t, dir, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildIndex(ctx, paths, false, 1, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
