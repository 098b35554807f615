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

// Package hll estimates the number of distinct elements added to a multiset
// without storing the elements themselves, trading exactness for bounded,
// tunable memory.
//
// Estimator is the public facing type. It combines exact direct counting for
// small inputs with a HyperLogLog sketch (sparse or dense) beyond that,
// selecting between LinearCounting and the bias-corrected HyperLogLog
// estimate depending on sketch occupancy. Estimators built with the same
// precision can be merged.
package hll

import (
	"github.com/Microsoft/CardinalityEstimation/common"
)

// Estimator is a cardinality estimator for elements of type T.
//
// An Estimator is not safe for concurrent use: callers must not invoke Add,
// Count or Merge on the same instance from multiple goroutines without
// external synchronization. No operation blocks or performs I/O.
type Estimator[T any] struct {
	store     *store
	toBytes   common.ToBytes[T]
	hasher    Hasher
	corrector BiasCorrector
	additions uint64
}

// Option configures an Estimator at construction.
type Option[T any] func(*Estimator[T])

// WithToBytes sets the element-to-bytes adapter. The default adapter covers
// the common primitive, string and byte-slice types.
func WithToBytes[T any](toBytes common.ToBytes[T]) Option[T] {
	return func(e *Estimator[T]) {
		e.toBytes = toBytes
	}
}

// WithHasher sets the Hasher. The default is 64-bit FNV-1a, whose poor
// high-bit dispersion on short inputs can degrade estimates well beyond the
// usual error bounds; pass Murmur3Hasher when accuracy matters. All
// estimators merged together must share the same Hasher.
func WithHasher[T any](hasher Hasher) Option[T] {
	return func(e *Estimator[T]) {
		e.hasher = hasher
	}
}

// WithBiasCorrector sets the corrector applied to raw HyperLogLog estimates
// in the low-cardinality regime. The default applies no correction.
func WithBiasCorrector[T any](corrector BiasCorrector) Option[T] {
	return func(e *Estimator[T]) {
		e.corrector = corrector
	}
}

// New constructs an estimator with the default precision of 14.
func New[T any](opts ...Option[T]) (*Estimator[T], error) {
	return NewWithPrecision(defaultPrecision, opts...)
}

// NewWithPrecision constructs an estimator with 2^precision substreams.
// The precision must be between 4 and 16, inclusive; higher precision means
// lower estimation error and more memory.
func NewWithPrecision[T any](precision int, opts ...Option[T]) (*Estimator[T], error) {
	cfg, err := newSketchConfig(precision)
	if err != nil {
		return nil, err
	}
	e := &Estimator[T]{
		store:     newStore(cfg),
		toBytes:   common.DefaultToBytes[T](),
		hasher:    Fnv1aHasher{},
		corrector: NopBiasCorrector{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Add presents the given element as a potential unique item.
func (e *Estimator[T]) Add(item T) {
	e.AddHash(e.hasher.HashBytes(e.toBytes(item)))
}

// AddHash presents a pre-computed 64-bit hash as a potential unique item.
// The hash must come from the same Hasher the estimator was built with.
func (e *Estimator[T]) AddHash(hash uint64) {
	e.store.addHash(hash)
	e.additions++
}

// Count returns the current cardinality estimate. It is exact while no more
// than 100 distinct elements have been added, approximate beyond that. Count
// never mutates the estimator and may be called repeatedly.
func (e *Estimator[T]) Count() uint64 {
	return e.store.estimateCount(e.corrector)
}

// CountAdditions returns the total number of Add and AddHash calls observed,
// counting duplicates.
func (e *Estimator[T]) CountAdditions() uint64 {
	return e.additions
}

// Precision returns the configured precision.
func (e *Estimator[T]) Precision() int {
	return e.store.cfg.precision
}

// Copy returns a deep clone of this estimator.
func (e *Estimator[T]) Copy() *Estimator[T] {
	return &Estimator[T]{
		store:     e.store.copy(),
		toBytes:   e.toBytes,
		hasher:    e.hasher,
		corrector: e.corrector,
		additions: e.additions,
	}
}
