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
	"math"
	"sort"
	"strings"
)

// PointMetric returns the distance between two pixels that are dx columns and
// dy rows apart.
// Metric values must be ≥ 0 and 0 only for dx = dy = 0.
type PointMetric func(dx, dy int) float64

// Euclidean returns sqrt(dx² + dy²).
func Euclidean(dx, dy int) float64 {
	return math.Sqrt(float64(dx*dx + dy*dy))
}

// Chebyshev is the max over both absolute distances, also known as chessboard
// distance.
func Chebyshev(dx, dy int) float64 {
	return float64(IntMax(IntAbs(dx), IntAbs(dy)))
}

// Manhattan returns |dx| + |dy|.
func Manhattan(dx, dy int) float64 {
	return float64(IntAbs(dx) + IntAbs(dy))
}

var (
	pointMetrics map[string]PointMetric
)

// RegisterPointMetric is used to register a named point metric. It will only
// add the metric if the name does not exist yet. The result is true if the
// metric was successfully registered and false otherwise.
// All names must be lowercase strings, the register and get methods will
// always transform a string to lowercase.
func RegisterPointMetric(name string, metric PointMetric) bool {
	name = strings.ToLower(name)
	if _, has := pointMetrics[name]; has {
		return false
	}
	pointMetrics[name] = metric
	return true
}

// GetPointMetricNames returns a sorted list of all registered point metrics.
func GetPointMetricNames() []string {
	res := make([]string, 0, len(pointMetrics))
	for key := range pointMetrics {
		res = append(res, key)
	}
	sort.Strings(res)
	return res
}

// GetPointMetric returns a registered point metric.
// Returns the metric and true on success and nil and false otherwise.
func GetPointMetric(name string) (PointMetric, bool) {
	name = strings.ToLower(name)
	if metric, has := pointMetrics[name]; has {
		return metric, true
	}
	return nil, false
}

func init() {
	pointMetrics = make(map[string]PointMetric)
	RegisterPointMetric("euclid", Euclidean)
	RegisterPointMetric("chebyshev", Chebyshev)
	RegisterPointMetric("manhattan", Manhattan)
}
