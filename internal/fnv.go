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

package internal

const (
	fnvOffsetBasis64 = uint64(14695981039346656037)
	fnvPrime64       = uint64(0x100000001b3)
)

// Fnv1aHash64 returns the 64-bit FNV-1a hash of the given bytes: each byte is
// XORed into the low 8 bits of the state, which is then multiplied by the FNV
// prime modulo 2^64.
func Fnv1aHash64(bytes []byte) uint64 {
	hash := fnvOffsetBasis64
	for _, b := range bytes {
		hash ^= uint64(b)
		hash *= fnvPrime64
	}
	return hash
}
