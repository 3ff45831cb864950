// Copyright 2026 The greedytile Authors
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

package greedytile

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathHelpers(t *testing.T) {
	source := filepath.Join("images", "brick.bmp")
	assert.Equal(t, filepath.Join("images", "brick_result.bmp"), OutputPath(source))
	assert.Equal(t, filepath.Join("images", "brick_pre.png"), PrefillPath(source))
	assert.Equal(t, filepath.Join("images", "brick_visualization.gif"), VisualizationPath(source))
	assert.Equal(t, filepath.Join("images", "brick_placements.jsonl.zst"), PlacementLogPath(source))

	assert.True(t, IsGeneratedFile(OutputPath(source)))
	assert.True(t, IsGeneratedFile(PrefillPath(source)))
	assert.True(t, IsGeneratedFile(VisualizationPath(source)))
	assert.Equal(t, filepath.Join("images", "brick_analysis.gif"), AnalysisPath(source))
	assert.True(t, IsGeneratedFile(AnalysisPath(source)))
	assert.False(t, IsGeneratedFile(source))
	assert.False(t, IsGeneratedFile("result.png"))
}

func TestSupportedFormats(t *testing.T) {
	assert.True(t, PNGOnly(".PNG"))
	assert.False(t, PNGOnly(".bmp"))
	assert.True(t, LosslessFormats(".bmp"))
	assert.True(t, LosslessFormats(".tiff"))
	assert.False(t, LosslessFormats(".jpg"))
}

func TestSaveLoadImage(t *testing.T) {
	dir := t.TempDir()
	img := imageFromRows("RGB", "KWY")
	for _, name := range []string{"a.png", "a.bmp", "a.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveImage(path, img), name)
		assert.True(t, FileExists(path))
		loaded, err := LoadImage(path)
		require.NoError(t, err, name)
		require.Equal(t, 3, loaded.Bounds().Dx())
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				assert.Equal(t, ConvertColor(img.At(x, y)),
					ConvertColor(loaded.At(loaded.Bounds().Min.X+x, loaded.Bounds().Min.Y+y)), name)
			}
		}
	}
	assert.Error(t, SaveImage(filepath.Join(dir, "a.jpg"), img))
	_, err := LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	img := imageFromRows(uniformSource...)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"b.png", "a.png", "a_result.png", "c.bmp", filepath.Join("sub", "d.png")} {
		require.NoError(t, SaveImage(filepath.Join(dir, name), img))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	set, err := CollectSources(dir, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, set.Paths)

	set, err = CollectSources(dir, false, LosslessFormats)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "c.bmp"}, set.Paths)

	set, err = CollectSources(dir, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", filepath.Join("sub", "d.png")}, set.Paths)
	require.Equal(t, 3, set.NumSources())
	loaded, err := set.LoadImage(2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), loaded.Bounds())
	_, err = set.LoadImage(3)
	assert.Error(t, err)

	set, err = CollectSources(filepath.Join(dir, "b.png"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png"}, set.Paths)
	assert.Equal(t, filepath.Join(dir, "b.png"), set.GetPath(0))

	_, err = CollectSources(filepath.Join(dir, "notes.txt"), false, nil)
	assert.Error(t, err)
	_, err = CollectSources(filepath.Join(dir, "missing"), false, nil)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	res, err := ExpandPath("foo")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(res))
}
