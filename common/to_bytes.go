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

// Package common provides the element-to-bytes adapters that turn typed items
// into the byte sequences the sketches hash. Users with custom types supply
// their own adapter function; built-in adapters cover the common cases.
package common

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// ToBytes converts one item into its canonical byte form. The encoding must
// be deterministic: equal items must produce equal bytes.
type ToBytes[T any] func(item T) []byte

// Uint64ToBytes encodes the value as 8 little-endian bytes.
func Uint64ToBytes(item uint64) []byte {
	bytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(bytes, item)
	return bytes
}

// Int64ToBytes encodes the value as 8 little-endian bytes.
func Int64ToBytes(item int64) []byte {
	return Uint64ToBytes(uint64(item))
}

// Float64ToBytes encodes the IEEE 754 bit pattern as 8 little-endian bytes.
func Float64ToBytes(item float64) []byte {
	return Uint64ToBytes(math.Float64bits(item))
}

// StringToBytes returns a slice aliasing the string data, avoiding a copy to
// the heap. The caller must not mutate the result.
func StringToBytes(item string) []byte {
	return unsafe.Slice(unsafe.StringData(item), len(item))
}

// BytesIdentity passes a byte slice through unchanged.
func BytesIdentity(item []byte) []byte {
	return item
}

// IntegerToBytes encodes any integer type as 8 little-endian bytes. Signed
// values sign-extend to their two's complement pattern, so the encoding stays
// injective within one type.
func IntegerToBytes[T constraints.Integer](item T) []byte {
	return Uint64ToBytes(uint64(item))
}

// DefaultToBytes returns an adapter covering the common primitive, string and
// byte-slice types. Anything else falls back to the fmt representation, which
// is deterministic for value types but slower; supply a dedicated adapter for
// hot paths. Types holding pointers must not rely on the fallback: it formats
// the address, so equal-valued items encode differently and inflate the
// count.
func DefaultToBytes[T any]() ToBytes[T] {
	return func(item T) []byte {
		switch v := any(item).(type) {
		case []byte:
			return v
		case string:
			return StringToBytes(v)
		case int:
			return Int64ToBytes(int64(v))
		case int8:
			return Int64ToBytes(int64(v))
		case int16:
			return Int64ToBytes(int64(v))
		case int32:
			return Int64ToBytes(int64(v))
		case int64:
			return Int64ToBytes(v)
		case uint:
			return Uint64ToBytes(uint64(v))
		case uint8:
			return Uint64ToBytes(uint64(v))
		case uint16:
			return Uint64ToBytes(uint64(v))
		case uint32:
			return Uint64ToBytes(uint64(v))
		case uint64:
			return Uint64ToBytes(v)
		case float32:
			return Float64ToBytes(float64(v))
		case float64:
			return Float64ToBytes(v)
		case bool:
			if v {
				return []byte{1}
			}
			return []byte{0}
		case fmt.Stringer:
			return StringToBytes(v.String())
		default:
			return fmt.Appendf(nil, "%v", v)
		}
	}
}
