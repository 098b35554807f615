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

import (
	"fmt"
	"sort"
)

// BiasCorrector adjusts a raw HyperLogLog estimate for the systematic bias
// the algorithm exhibits at low cardinalities. The empirical correction data
// is supplied by the caller; the estimator only consumes the corrected value.
type BiasCorrector interface {
	Correct(rawEstimate float64, precision int) float64
}

// NopBiasCorrector returns raw estimates unchanged. It is the default
// corrector: the empirical bias curves live outside this module.
type NopBiasCorrector struct{}

func (NopBiasCorrector) Correct(rawEstimate float64, _ int) float64 {
	return rawEstimate
}

// BiasCurve is one empirically measured bias curve for a single precision.
// RawEstimates must be strictly increasing and aligned index-for-index with
// Biases.
type BiasCurve struct {
	RawEstimates []float64
	Biases       []float64
}

// InterpolatingBiasCorrector corrects raw estimates by linear interpolation
// between the two curve points straddling the estimate, clamping at both
// curve ends. Precisions without a curve pass through uncorrected.
type InterpolatingBiasCorrector struct {
	curves map[int]BiasCurve
}

func NewInterpolatingBiasCorrector(curves map[int]BiasCurve) (*InterpolatingBiasCorrector, error) {
	for precision, curve := range curves {
		if err := checkPrecision(precision); err != nil {
			return nil, err
		}
		if len(curve.RawEstimates) < 2 || len(curve.RawEstimates) != len(curve.Biases) {
			return nil, fmt.Errorf("bias curve for precision %d needs at least two aligned points: %d raw estimates, %d biases",
				precision, len(curve.RawEstimates), len(curve.Biases))
		}
		for i := 1; i < len(curve.RawEstimates); i++ {
			if curve.RawEstimates[i] <= curve.RawEstimates[i-1] {
				return nil, fmt.Errorf("bias curve for precision %d must have strictly increasing raw estimates", precision)
			}
		}
	}
	return &InterpolatingBiasCorrector{curves: curves}, nil
}

func (c *InterpolatingBiasCorrector) Correct(rawEstimate float64, precision int) float64 {
	curve, ok := c.curves[precision]
	if !ok {
		return rawEstimate
	}
	return rawEstimate - estimateBias(curve, rawEstimate)
}

func estimateBias(curve BiasCurve, rawEstimate float64) float64 {
	rawEstimates, biases := curve.RawEstimates, curve.Biases
	if rawEstimate <= rawEstimates[0] {
		return biases[0]
	}
	last := len(rawEstimates) - 1
	if rawEstimate >= rawEstimates[last] {
		return biases[last]
	}
	i := sort.SearchFloat64s(rawEstimates, rawEstimate)
	e1, b1 := rawEstimates[i-1], biases[i-1]
	e2, b2 := rawEstimates[i], biases[i]
	frac := (rawEstimate - e1) / (e2 - e1)
	return b1*(1-frac) + b2*frac
}
