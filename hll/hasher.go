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
	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
)

// Hasher turns an element's byte form into the 64-bit hash the sketch is
// built on. Implementations must be pure functions. Estimators that will be
// merged together must be constructed with the same Hasher, otherwise the
// merged sketch silently loses accuracy.
type Hasher interface {
	HashBytes(bytes []byte) uint64
}

// Fnv1aHasher is the default Hasher, the 64-bit FNV-1a function. FNV-1a has
// weak dispersion in its high bits on short inputs such as encoded integers,
// which starves the substream index and can push estimates far outside the
// usual error bounds. Prefer Murmur3Hasher for accuracy-sensitive use.
type Fnv1aHasher struct{}

func (Fnv1aHasher) HashBytes(bytes []byte) uint64 {
	return internal.Fnv1aHash64(bytes)
}

// Murmur3Hasher hashes with 64-bit murmur3 under a fixed seed.
type Murmur3Hasher struct {
	Seed uint64
}

func (h Murmur3Hasher) HashBytes(bytes []byte) uint64 {
	return murmur3.SeedSum64(h.Seed, bytes)
}

// XxHasher hashes with xxHash64.
type XxHasher struct{}

func (XxHasher) HashBytes(bytes []byte) uint64 {
	return xxhash.Sum64(bytes)
}
