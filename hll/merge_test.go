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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenHash generates well-spread deterministic hashes for AddHash tests.
func goldenHash(i int) uint64 {
	return uint64(i) * 0x9E3779B97F4A7C15
}

func TestMergeExactWhileBothDirect(t *testing.T) {
	a, err := New[int]()
	require.NoError(t, err)
	b, err := New[int]()
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		a.Add(i)
	}
	for i := 30; i < 90; i++ {
		b.Add(i)
	}

	require.NoError(t, a.Merge(b))
	assert.Equal(t, uint64(90), a.Count())
	assert.Equal(t, uint64(120), a.CountAdditions())
	// The other operand is untouched.
	assert.Equal(t, uint64(60), b.Count())
}

func TestMergeDiscardsDirectWhenUnionExceedsBound(t *testing.T) {
	a, err := New[int]()
	require.NoError(t, err)
	b, err := New[int]()
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		a.Add(i)
	}
	for i := 60; i < 120; i++ {
		b.Add(i)
	}
	require.NotNil(t, a.store.directCount)
	require.NotNil(t, b.store.directCount)

	require.NoError(t, a.Merge(b))
	assert.Nil(t, a.store.directCount)
	assert.NotNil(t, b.store.directCount)
}

func TestMergeWithDiscardedOperandDiscardsTarget(t *testing.T) {
	a, err := New[int]()
	require.NoError(t, err)
	b, err := New[int]()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		a.Add(i)
	}
	for i := 0; i < 150; i++ {
		b.Add(i)
	}
	require.Nil(t, b.store.directCount)

	require.NoError(t, a.Merge(b))
	assert.Nil(t, a.store.directCount)
}

func TestMergeSelfCopyIsIdempotent(t *testing.T) {
	// Direct case: the union with an identical set stays within the bound.
	a, err := New[string]()
	require.NoError(t, err)
	for i := 0; i < 80; i++ {
		a.Add(fmt.Sprintf("element-%d", i))
	}
	require.NoError(t, a.Merge(a.Copy()))
	assert.Equal(t, uint64(80), a.Count())

	// Sparse case: max with self is a no-op on the sketch.
	b, err := New[string]()
	require.NoError(t, err)
	for i := 0; i < 300; i++ {
		b.AddHash(goldenHash(i))
	}
	sparseBefore := make(map[uint16]byte, len(b.store.lookupSparse))
	for substream, rank := range b.store.lookupSparse {
		sparseBefore[substream] = rank
	}
	require.NoError(t, b.Merge(b.Copy()))
	assert.Equal(t, sparseBefore, b.store.lookupSparse)

	// Dense case.
	c, err := NewWithPrecision[string](4)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		c.AddHash(goldenHash(i))
	}
	denseBefore := append([]byte(nil), c.store.lookupDense...)
	require.NoError(t, c.Merge(c.Copy()))
	assert.Equal(t, denseBefore, c.store.lookupDense)
}

func TestMergeSparseIntoSparseTriggersDense(t *testing.T) {
	cfg := mustConfig(t, 8)
	a, err := NewWithPrecision[int](8)
	require.NoError(t, err)
	b, err := NewWithPrecision[int](8)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		a.AddHash(hashFor(cfg, uint16(i), 1))
	}
	for i := 5; i < 10; i++ {
		b.AddHash(hashFor(cfg, uint16(i), 1))
	}
	require.Equal(t, curModeSparse, a.store.mode)
	require.Equal(t, curModeSparse, b.store.mode)

	require.NoError(t, a.Merge(b))
	assert.Equal(t, curModeDense, a.store.mode)
	for i := 0; i < 10; i++ {
		assert.Equal(t, byte(56), a.store.lookupDense[i])
	}
	assert.Equal(t, curModeSparse, b.store.mode)
}

func TestMergeSparseOperandIntoDenseTarget(t *testing.T) {
	cfg := mustConfig(t, 8)
	a, err := NewWithPrecision[int](8)
	require.NoError(t, err)
	b, err := NewWithPrecision[int](8)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		a.AddHash(hashFor(cfg, uint16(i), 1<<40))
	}
	require.Equal(t, curModeDense, a.store.mode)
	b.AddHash(hashFor(cfg, 3, 1))   // higher rank than a's entry
	b.AddHash(hashFor(cfg, 200, 1)) // substream a never saw

	require.NoError(t, a.Merge(b))
	assert.Equal(t, byte(56), a.store.lookupDense[3])
	assert.Equal(t, byte(56), a.store.lookupDense[200])
	assert.Equal(t, byte(16), a.store.lookupDense[4])
}

func TestMergeDenseOperandForcesTargetDense(t *testing.T) {
	cfg := mustConfig(t, 8)
	a, err := NewWithPrecision[int](8)
	require.NoError(t, err)
	b, err := NewWithPrecision[int](8)
	require.NoError(t, err)

	a.AddHash(hashFor(cfg, 1, 1))
	for i := 0; i < 20; i++ {
		b.AddHash(hashFor(cfg, uint16(i), 1<<40))
	}
	require.Equal(t, curModeSparse, a.store.mode)
	require.Equal(t, curModeDense, b.store.mode)

	require.NoError(t, a.Merge(b))
	assert.Equal(t, curModeDense, a.store.mode)
	assert.Equal(t, byte(56), a.store.lookupDense[1]) // a's higher rank survives
	assert.Equal(t, byte(16), a.store.lookupDense[2])
}

func TestMergePrecisionMismatchLeavesTargetUnmodified(t *testing.T) {
	a, err := NewWithPrecision[int](14)
	require.NoError(t, err)
	b, err := NewWithPrecision[int](12)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		a.Add(i)
		b.Add(i + 1000)
	}
	before, err := a.ToSlice()
	require.NoError(t, err)

	assert.Error(t, a.Merge(b))

	after, err := a.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(40), a.Count())
}

func TestMergeNilOperand(t *testing.T) {
	a, err := New[int]()
	require.NoError(t, err)
	assert.Error(t, a.Merge(nil))
}

func TestMergeAllRejectsEmptyInput(t *testing.T) {
	_, err := MergeAll[int](nil)
	assert.Error(t, err)
	_, err = MergeAll([]*Estimator[int]{})
	assert.Error(t, err)
}

func TestMergeAllSingleEstimatorIsACopy(t *testing.T) {
	a, err := New[int]()
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		a.Add(i)
	}
	merged, err := MergeAll([]*Estimator[int]{a})
	require.NoError(t, err)
	assert.Equal(t, a.Count(), merged.Count())

	merged.Add(1000)
	assert.Equal(t, uint64(30), a.Count())
}

func TestMergeAllOrderIndependent(t *testing.T) {
	build := func(lo, hi int) *Estimator[int] {
		e, err := New[int]()
		require.NoError(t, err)
		for i := lo; i < hi; i++ {
			e.AddHash(goldenHash(i))
		}
		return e
	}
	a := build(0, 500)
	b := build(300, 800)
	c := build(600, 1100)

	orders := [][]*Estimator[int]{
		{a, b, c},
		{c, a, b},
		{b, c, a},
		{c, b, a},
	}
	first, err := MergeAll(orders[0])
	require.NoError(t, err)
	firstBytes, err := first.ToSlice()
	require.NoError(t, err)

	for _, order := range orders[1:] {
		merged, err := MergeAll(order)
		require.NoError(t, err)
		mergedBytes, err := merged.ToSlice()
		require.NoError(t, err)
		assert.Equal(t, firstBytes, mergedBytes)
		assert.Equal(t, first.Count(), merged.Count())
	}

	// 1100 distinct hashes, well past exact counting.
	assert.InEpsilon(t, 1100.0, float64(first.Count()), 0.1)
}

func TestMergeAllFailsOnMixedPrecision(t *testing.T) {
	a, err := NewWithPrecision[int](14)
	require.NoError(t, err)
	b, err := NewWithPrecision[int](12)
	require.NoError(t, err)
	_, err = MergeAll([]*Estimator[int]{a, b})
	assert.Error(t, err)
}
