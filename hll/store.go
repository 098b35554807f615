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
	"github.com/Microsoft/CardinalityEstimation/internal"
)

type curMode int

const (
	curModeSparse curMode = 0
	curModeDense  curMode = 1
)

// store holds the active representation of the sketch. The sparse map and
// the dense array are mutually exclusive; exactly one is allocated at any
// time. Direct counting runs alongside either until its element bound is
// exceeded, after which it is discarded and never comes back. All
// transitions are one-way.
type store struct {
	cfg sketchConfig

	mode         curMode
	lookupSparse map[uint16]byte
	lookupDense  []byte

	// directCount is the exact set of raw hashes; nil once discarded.
	directCount map[uint64]struct{}
}

func newStore(cfg sketchConfig) *store {
	s := &store{
		cfg:         cfg,
		directCount: make(map[uint64]struct{}),
	}
	if cfg.sparseMaxElements > 0 {
		s.mode = curModeSparse
		s.lookupSparse = make(map[uint16]byte)
	} else {
		s.mode = curModeDense
		s.lookupDense = make([]byte, cfg.m)
	}
	return s
}

// addHash splits the hash into (substream, sigma) and folds it into the
// active representation.
func (s *store) addHash(hash uint64) {
	substream := uint16(hash >> s.cfg.bitsForHll)
	sigma := getSigma(hash, s.cfg.bitsForHll)

	if s.directCount != nil {
		s.directCount[hash] = struct{}{}
		if len(s.directCount) > directCounterMaxElements {
			s.directCount = nil
		}
	}

	switch s.mode {
	case curModeSparse:
		if sigma > s.lookupSparse[substream] {
			s.lookupSparse[substream] = sigma
		}
		if len(s.lookupSparse) > s.cfg.sparseMaxElements {
			s.switchToDense()
		}
	case curModeDense:
		if sigma > s.lookupDense[substream] {
			s.lookupDense[substream] = sigma
		}
	}
}

// switchToDense copies every (substream, rank) pair into a zero-initialized
// array of m rank bytes and drops the map. One-way.
func (s *store) switchToDense() {
	s.lookupDense = make([]byte, s.cfg.m)
	for substream, rank := range s.lookupSparse {
		s.lookupDense[substream] = rank
	}
	s.lookupSparse = nil
	s.mode = curModeDense
}

func (s *store) copy() *store {
	c := &store{cfg: s.cfg, mode: s.mode}
	if s.directCount != nil {
		c.directCount = make(map[uint64]struct{}, len(s.directCount))
		for hash := range s.directCount {
			c.directCount[hash] = struct{}{}
		}
	}
	if s.lookupSparse != nil {
		c.lookupSparse = make(map[uint16]byte, len(s.lookupSparse))
		for substream, rank := range s.lookupSparse {
			c.lookupSparse[substream] = rank
		}
	}
	if s.lookupDense != nil {
		c.lookupDense = make([]byte, len(s.lookupDense))
		copy(c.lookupDense, s.lookupDense)
	}
	return c
}

// getSigma returns the number of leading zero bits among the lowest
// bitsForHll bits of the hash, plus one. The minimum is 1 (top field bit
// set); an all-zero field gives bitsForHll+1.
func getSigma(hash uint64, bitsForHll int) byte {
	masked := hash & ((uint64(1) << bitsForHll) - 1)
	leadingZeros := int(internal.CountLeadingZerosInU64(masked)) - (64 - bitsForHll)
	return byte(leadingZeros + 1)
}
