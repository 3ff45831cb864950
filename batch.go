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
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RunID identifies a single synthesis run in a batch.
type RunID uuid.UUID

// GenRunID returns a new random run id.
func GenRunID() (RunID, error) {
	id, idErr := uuid.NewRandom()
	return RunID(id), idErr
}

func (id RunID) String() string {
	return uuid.UUID(id).String()
}

// ResultHook is called after a source has been synthesized, for example to
// write an animation.
type ResultHook func(source string, result *Result) error

// BatchOptions controls how a batch of sources is processed.
type BatchOptions struct {
	Config Config
	// Prefill enables loading <source>_pre.png if it exists.
	Prefill bool
	// SkipExisting skips all sources for which the output already exists.
	SkipExisting bool
	// Scale is an integer factor the output is scaled with.
	Scale int
	// Resizer scales the output, DefaultResizer if nil.
	Resizer ImageResizer
	// LogPlacements writes the placement log next to the output.
	LogPlacements bool
	// NumRoutines is the number of sources processed concurrently.
	NumRoutines int
	// Progress returns the progress function for a source, it may be nil.
	Progress func(source string) ProgressFunc
	// Hook is called for each result, it may be nil.
	Hook ResultHook
}

// BatchReport describes the outcome of a single source.
type BatchReport struct {
	Run        RunID
	Source     string
	Output     string
	Skipped    bool
	Status     Status
	Iterations int
	Duration   time.Duration
	Err        error
}

// ProcessSource synthesizes a single source and writes the output.
func ProcessSource(source string, opts BatchOptions) BatchReport {
	report := BatchReport{Source: source, Output: OutputPath(source)}
	id, idErr := GenRunID()
	if idErr != nil {
		report.Err = idErr
		return report
	}
	report.Run = id
	logger := log.WithFields(log.Fields{
		"run":    id.String(),
		"source": source,
	})
	if opts.SkipExisting && FileExists(report.Output) {
		logger.Info("Skipping source, output exists")
		report.Skipped = true
		return report
	}
	start := time.Now()
	img, loadErr := LoadImage(source)
	if loadErr != nil {
		report.Err = loadErr
		return report
	}
	var prefill image.Image
	if opts.Prefill {
		prefillPath := PrefillPath(source)
		if FileExists(prefillPath) {
			var prefillErr error
			prefill, prefillErr = LoadImage(prefillPath)
			if prefillErr != nil {
				report.Err = prefillErr
				return report
			}
		} else {
			logger.WithField("prefill", prefillPath).Warn("No prefill found, continuing without prefill")
		}
	}
	progress := ProgressFunc(ProgressIgnore)
	if opts.Progress != nil {
		progress = opts.Progress(source)
	}
	result, synthErr := Synthesize(img, prefill, opts.Config, progress)
	if synthErr != nil {
		report.Err = fmt.Errorf("%s: %w", source, synthErr)
		return report
	}
	report.Status = result.Status
	report.Iterations = result.Iterations
	resizer := opts.Resizer
	if resizer == nil {
		resizer = DefaultResizer
	}
	if err := SaveImage(report.Output, ScaleImage(resizer, opts.Scale, result.Canvas)); err != nil {
		report.Err = err
		return report
	}
	if opts.LogPlacements {
		if err := writeLogFile(PlacementLogPath(source), result); err != nil {
			report.Err = err
			return report
		}
	}
	if opts.Hook != nil {
		if err := opts.Hook(source, result); err != nil {
			report.Err = err
			return report
		}
	}
	report.Duration = time.Since(start)
	logger.WithFields(log.Fields{
		"status":     result.Status,
		"iterations": result.Iterations,
		"deadlocks":  result.Stats.Deadlocks,
		"duration":   report.Duration,
	}).Info("Source done")
	return report
}

func writeLogFile(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	writeErr := WritePlacementLog(f, Events(result.Placements, result.Erasures))
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	return writeErr
}

// RunBatch processes all sources, up to opts.NumRoutines sources are
// processed concurrently. Runs never share any state.
//
// The returned reports are in the order of the sources. The error is the
// first error that occurred, sources that have not been started when an error
// occurs are not processed.
func RunBatch(ctx context.Context, sources *SourceSet, opts BatchOptions) ([]BatchReport, error) {
	numRoutines := opts.NumRoutines
	if numRoutines <= 0 {
		numRoutines = 1
	}
	reports := make([]BatchReport, sources.NumSources())
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(numRoutines)
	for i := 0; i < sources.NumSources(); i++ {
		i := i
		group.Go(func() error {
			path := sources.GetPath(i)
			if err := ctx.Err(); err != nil {
				reports[i] = BatchReport{Source: path, Err: err}
				return err
			}
			reports[i] = ProcessSource(path, opts)
			return reports[i].Err
		})
	}
	return reports, group.Wait()
}
