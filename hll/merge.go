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

// Merge folds the other estimator into this one in place, as if every
// element ever added to either had been added to this one. Both estimators
// must have been constructed with the same precision; on error this
// estimator is left unmodified. The other estimator is never modified.
func (e *Estimator[T]) Merge(other *Estimator[T]) error {
	if other == nil {
		return fmt.Errorf("cannot merge a nil estimator")
	}
	if other.store.cfg.m != e.store.cfg.m {
		return fmt.Errorf("cannot merge estimators with different precisions: %d, %d",
			e.store.cfg.precision, other.store.cfg.precision)
	}
	e.store.merge(other.store)
	e.additions += other.additions
	return nil
}

// MergeAll merges the given estimators pairwise into a new estimator
// configured like the first one. The input slice must not be empty; none of
// the inputs are modified.
func MergeAll[T any](estimators []*Estimator[T]) (*Estimator[T], error) {
	if len(estimators) == 0 {
		return nil, fmt.Errorf("no estimators given to merge")
	}
	result := estimators[0].Copy()
	for _, other := range estimators[1:] {
		if err := result.Merge(other); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// merge folds the other store into s. Compatibility of m is checked by the
// caller.
func (s *store) merge(other *store) {
	// The result is exact only if both sides stayed within the direct
	// counting bound, so a discarded set on either side discards the target's.
	if s.directCount != nil {
		if other.directCount == nil {
			s.directCount = nil
		} else {
			for hash := range other.directCount {
				s.directCount[hash] = struct{}{}
			}
			if len(s.directCount) > directCounterMaxElements {
				s.directCount = nil
			}
		}
	}

	if s.mode == curModeSparse && other.mode == curModeSparse {
		for substream, rank := range other.lookupSparse {
			if rank > s.lookupSparse[substream] {
				s.lookupSparse[substream] = rank
			}
		}
		if len(s.lookupSparse) > s.cfg.sparseMaxElements {
			s.switchToDense()
		}
		return
	}

	if s.mode == curModeSparse {
		s.switchToDense()
	}
	if other.mode == curModeSparse {
		for substream, rank := range other.lookupSparse {
			if rank > s.lookupDense[substream] {
				s.lookupDense[substream] = rank
			}
		}
		return
	}
	for substream, rank := range other.lookupDense {
		if rank > s.lookupDense[substream] {
			s.lookupDense[substream] = rank
		}
	}
}
