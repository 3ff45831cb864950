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
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	// OutputSuffix is appended to the name of a source to get the name of the
	// synthesized image.
	OutputSuffix = "_result"
	// PrefillSuffix is appended to the name of a source to get the name of
	// its prefill image, prefill images are always png files.
	PrefillSuffix = "_pre"
	// VisualizationSuffix is appended to the name of a source to get the
	// name of the animation.
	VisualizationSuffix = "_visualization"
	// AnalysisSuffix is appended to the name of a source to get the name of
	// the analysis animation.
	AnalysisSuffix = "_analysis"
	// PlacementLogSuffix is appended to the name of a source to get the name
	// of the compressed placement log.
	PlacementLogSuffix = "_placements"
)

// SourceSet is a list of source images on the filesystem.
// The paths are stored relative to the Root directory.
type SourceSet struct {
	Root  string
	Paths []string
}

// NewSourceSet returns an empty set.
func NewSourceSet(root string) *SourceSet {
	return &SourceSet{Root: root, Paths: nil}
}

// GetPath returns the path of the source with index i.
func (set *SourceSet) GetPath(i int) string {
	return filepath.Join(set.Root, set.Paths[i])
}

// NumSources returns the number of sources.
func (set *SourceSet) NumSources() int {
	return len(set.Paths)
}

// LoadImage loads the source with index i.
func (set *SourceSet) LoadImage(i int) (image.Image, error) {
	if i < 0 || i >= set.NumSources() {
		return nil, fmt.Errorf("Invalid source id: Not associated with an image %d", i)
	}
	return LoadImage(set.GetPath(i))
}

// IsGeneratedFile reports whether the file is an output or prefill file,
// these are never used as sources.
func IsGeneratedFile(path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, suffix := range []string{OutputSuffix, PrefillSuffix, VisualizationSuffix, AnalysisSuffix} {
		if strings.HasSuffix(stem, suffix) {
			return true
		}
	}
	return false
}

// CollectSources returns the sources found at target. If target is a file it
// is the only source (it must pass the filter), if it is a directory all files
// accepted by filter are added (files in sub directories only if recursive is
// true). Generated files are ignored. Paths are sorted.
func CollectSources(target string, recursive bool, filter SupportedImageFunc) (*SourceSet, error) {
	target, absErr := filepath.Abs(target)
	if absErr != nil {
		return nil, absErr
	}
	if filter == nil {
		filter = PNGOnly
	}
	info, statErr := os.Stat(target)
	if statErr != nil {
		return nil, statErr
	}
	if !info.IsDir() {
		if !filter(filepath.Ext(target)) {
			return nil, fmt.Errorf("Unsupported file type: %s", target)
		}
		res := NewSourceSet(filepath.Dir(target))
		res.Paths = []string{filepath.Base(target)}
		return res, nil
	}
	var res *SourceSet
	var err error
	if recursive {
		res, err = collectRecursive(target, filter)
	} else {
		res, err = collectNonRecursive(target, filter)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(res.Paths)
	return res, nil
}

func collectRecursive(root string, filter SupportedImageFunc) (*SourceSet, error) {
	result := NewSourceSet(root)
	walkFunc := func(path string, info os.FileInfo, err error) error {
		switch {
		case err != nil:
			return err
		case !info.IsDir() && filter(filepath.Ext(path)) && !IsGeneratedFile(path):
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			result.Paths = append(result.Paths, rel)
			return nil
		default:
			return nil
		}
	}
	if err := filepath.Walk(root, walkFunc); err != nil {
		return nil, err
	}
	return result, nil
}

func collectNonRecursive(root string, filter SupportedImageFunc) (*SourceSet, error) {
	result := NewSourceSet(root)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filter(filepath.Ext(name)) && !IsGeneratedFile(name) {
			result.Paths = append(result.Paths, name)
		}
	}
	return result, nil
}

func withSuffix(input, suffix, ext string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), stem+suffix+ext)
}

// OutputPath returns the path of the synthesized image for a source, it has
// the same extension as the source.
func OutputPath(input string) string {
	return withSuffix(input, OutputSuffix, filepath.Ext(input))
}

// PrefillPath returns the path of the prefill image for a source.
func PrefillPath(input string) string {
	return withSuffix(input, PrefillSuffix, ".png")
}

// VisualizationPath returns the path of the animation for a source.
func VisualizationPath(input string) string {
	return withSuffix(input, VisualizationSuffix, ".gif")
}

// AnalysisPath returns the path of the analysis animation for a source.
func AnalysisPath(input string) string {
	return withSuffix(input, AnalysisSuffix, ".gif")
}

// PlacementLogPath returns the path of the placement log for a source.
func PlacementLogPath(input string) string {
	return withSuffix(input, PlacementLogSuffix, ".jsonl.zst")
}

// ExpandPath expands a leading ~ to the home directory of the user and
// returns the absolute path.
func ExpandPath(path string) (string, error) {
	res, pathErr := homedir.Expand(path)
	if pathErr != nil {
		return "", pathErr
	}
	return filepath.Abs(res)
}

// FileExists reports whether a file exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadImage decodes the image stored at path.
func LoadImage(path string) (image.Image, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer r.Close()
	img, _, decodeErr := image.Decode(r)
	if decodeErr != nil {
		return nil, fmt.Errorf("can't decode %s: %w", path, decodeErr)
	}
	return img, nil
}

// SaveImage encodes img, the format is chosen by the extension of path.
func SaveImage(path string, img image.Image) error {
	outFile, outErr := os.Create(path)
	if outErr != nil {
		return outErr
	}
	var encErr error
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".png":
		encErr = png.Encode(outFile, img)
	case ".bmp":
		encErr = bmp.Encode(outFile, img)
	case ".tif", ".tiff":
		encErr = tiff.Encode(outFile, img, nil)
	case ".gif":
		encErr = gif.Encode(outFile, img, nil)
	default:
		encErr = fmt.Errorf("Unsupported file type: %s, expected .png, .bmp, .tiff or .gif", ext)
	}
	if closeErr := outFile.Close(); encErr == nil {
		encErr = closeErr
	}
	return encErr
}
