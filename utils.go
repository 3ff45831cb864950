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
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// Debug is true if code should be compiled in debug mode, performing
	// expensive invariant checks after every synthesis step.
	Debug = false
)

var (
	// BufferSize is the (default) size of buffers. Some methods create buffered
	// channels, this parameter controls how big such buffers might be.
	// Usually such buffers store no big data (ints, bools etc.).
	BufferSize = 1000
)

// ProgressFunc is a function that is used to inform a caller about the progress
// of a called function.
// For example a synthesis runs for thousands of iterations and we might wish
// to know how far the call is and give feedback to the user.
// The called method calls the process function after each iteration.
type ProgressFunc func(num int)

// ProgressIgnore is a ProgressFunc that does nothing.
func ProgressIgnore(num int) {}

func progressLine(prefix string, num, max int) string {
	percent := (float64(num) / float64(max)) * 100.0
	if percent > 100.0 {
		percent = 100.0
	}
	if prefix == "" {
		return fmt.Sprintf("Progress: %d of %d (%.1f%%)", num, max, percent)
	}
	return fmt.Sprintf("%s: %d of %d (%.1f%%)", prefix, num, max, percent)
}

func reportStep(num, max, step int) bool {
	if step == 0 || max == 0 {
		return false
	}
	return step < 0 || num%step == 0
}

// LoggerProgressFunc is a parameterized ProgressFunc that logs to log.
// The output describes the progress (how many of how many iterations done).
// Log messages may have an addition prefix. max is the total number of elements
// to process and step describes how often to print to the log (for example
// step = 100 every 100 items).
func LoggerProgressFunc(prefix string, max, step int) ProgressFunc {
	return func(num int) {
		if !reportStep(num, max, step) {
			return
		}
		log.Info(progressLine(prefix, num, max))
	}
}

// StdProgressFunc is a parameterized ProgressFunc that writes to the
// specified writer.
// The output describes the progress (how many of how many iterations done).
// Log messages may have an addition prefix. max is the total number of elements
// to process and step describes how often to print (for example
// step = 100 every 100 items).
func StdProgressFunc(w io.Writer, prefix string, max, step int) ProgressFunc {
	return func(num int) {
		if !reportStep(num, max, step) {
			return
		}
		fmt.Fprintln(w, progressLine(prefix, num, max))
	}
}

// ParseDimensionsEmpty parses a string of the form "AxB" where A and B are
// non-negative integers. A and / or B may be empty. That is "1024x" would be valid as well as
// "x768" and "x". Empty values are returned as -1.
func ParseDimensionsEmpty(s string) (int, int, error) {
	split := strings.Split(s, "x")
	if len(split) != 2 {
		return -1, -1, fmt.Errorf("Invalid dimension format: %s. Expect \"AxB\"", s)
	}
	first, second := strings.TrimSpace(split[0]), strings.TrimSpace(split[1])
	firstInt, secondInt := -1, -1
	var parseErr error
	// now parse both ints, but only if not empty
	if len(first) > 0 {
		firstInt, parseErr = strconv.Atoi(first)
		if parseErr != nil {
			return -1, -1, parseErr
		}
		if firstInt < 0 {
			return -1, -1, fmt.Errorf("Dimensions must be positive, got %d", firstInt)
		}
	}

	if len(second) > 0 {
		secondInt, parseErr = strconv.Atoi(second)
		if parseErr != nil {
			return -1, -1, parseErr
		}
		if secondInt < 0 {
			return -1, -1, fmt.Errorf("Dimensions must be positive, got %d", secondInt)
		}
	}
	return firstInt, secondInt, nil
}
