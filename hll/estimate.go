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
	"math"

	"github.com/Microsoft/CardinalityEstimation/internal"
)

// estimateCount returns the current best cardinality estimate. While direct
// counting is alive the count is exact. Afterwards the estimate is either
// LinearCounting or the bias-corrected HyperLogLog value, selected by the
// per-precision threshold: LinearCounting wins while many substreams remain
// empty, HyperLogLog once few or none do. Never mutates the store.
func (s *store) estimateCount(corrector BiasCorrector) uint64 {
	if s.directCount != nil {
		return uint64(len(s.directCount))
	}

	m := float64(s.cfg.m)
	var zInverse float64 // sum of 2^-rank over all m substreams
	var v float64        // substreams never touched

	if s.mode == curModeSparse {
		untouched := s.cfg.m - len(s.lookupSparse)
		zInverse = float64(untouched) // each contributes 2^0
		v = float64(untouched)
		for _, rank := range s.lookupSparse {
			zInverse += invPow2(rank)
		}
	} else {
		for _, rank := range s.lookupDense {
			if rank == 0 {
				zInverse++
				v++
			} else {
				zInverse += invPow2(rank)
			}
		}
	}

	e := s.cfg.alphaM * m * m / zInverse
	if e <= 5.0*m {
		e = corrector.Correct(e, s.cfg.precision)
	}

	// LinearCounting degenerates to the HLL estimate once no substream is
	// empty.
	h := e
	if v > 0 {
		h = m * math.Log(m/v)
	}

	if h <= s.cfg.selectionThreshold {
		return uint64(math.Round(h))
	}
	return uint64(math.Round(e))
}

func invPow2(rank byte) float64 {
	// rank is at most bitsForHll+1 <= 61, so InvPow2 cannot fail.
	p, _ := internal.InvPow2(int(rank))
	return p
}
