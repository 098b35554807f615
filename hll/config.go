/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hll

import "fmt"

const (
	minPrecision     = 4
	maxPrecision     = 16
	defaultPrecision = 14

	// directCounterMaxElements bounds the exact hash set kept alongside the
	// sketch. Once exceeded the set is discarded and never recreated.
	directCounterMaxElements = 100
)

// subAlgorithmSelectionThresholds holds, per precision starting at 4, the
// LinearCounting estimate below which LinearCounting beats the bias-corrected
// HyperLogLog estimate. Empirically derived; covers precisions 4 through 18.
var subAlgorithmSelectionThresholds = []float64{
	10, 20, 40, 80, 220, 400, 900, 1800, 3100,
	6500, 11500, 20000, 50000, 120000, 350000,
}

// sketchConfig is computed once at construction and never mutated.
type sketchConfig struct {
	precision  int // number of hash bits selecting the substream
	m          int // 2^precision, the number of substreams
	bitsForHll int // low hash bits carrying the rank, 64-precision

	alphaM             float64
	selectionThreshold float64
	sparseMaxElements  int
}

func newSketchConfig(precision int) (sketchConfig, error) {
	if err := checkPrecision(precision); err != nil {
		return sketchConfig{}, err
	}
	m := 1 << precision
	return sketchConfig{
		precision:          precision,
		m:                  m,
		bitsForHll:         64 - precision,
		alphaM:             alphaM(m),
		selectionThreshold: subAlgorithmSelectionThresholds[precision-minPrecision],
		sparseMaxElements:  sparseMaxElements(m),
	}, nil
}

// checkPrecision checks the given precision and returns an error if it is
// outside the supported range.
func checkPrecision(precision int) error {
	if precision < minPrecision || precision > maxPrecision {
		return fmt.Errorf("precision must be between 4 and 16, inclusive: %d", precision)
	}
	return nil
}

// alphaM is the bias constant from Flajolet's, et al, 2007 HLL paper, Fig 3.
func alphaM(m int) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	}
	return 0.7213 / (1.0 + 1.079/float64(m))
}

// sparseMaxElements is the occupancy past which the sparse map costs more
// than the m-byte dense array. Small m never benefits from sparse at all.
func sparseMaxElements(m int) int {
	n := m/15 - 10
	if n < 0 {
		return 0
	}
	return n
}
