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
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/Microsoft/CardinalityEstimation/internal"
	"github.com/cespare/xxhash/v2"
)

// Serialized image layout, little endian throughout:
//
//	byte  0     serialization version
//	byte  1     precision
//	byte  2     flags (bit 0: direct set present, bit 1: dense)
//	byte  3     unused
//	bytes 4-11  additions counter
//	direct payload, when present: uint32 count, then count 8-byte hashes
//	sparse payload: uint32 count, then count (2-byte substream, 1-byte rank)
//	dense payload: m rank bytes
//	trailing 8 bytes: xxHash64 checksum of everything before it
const (
	serVer = 1

	preambleBytes = 12
	checksumBytes = 8

	flagDirectPresent = 1 << 0
	flagDense         = 1 << 1
)

// ToSlice serializes the estimator state: precision, the representation tag,
// the direct set if still alive, and the sparse or dense payload. Payload
// entries are written in sorted order so equal states serialize identically.
func (e *Estimator[T]) ToSlice() ([]byte, error) {
	s := e.store

	size := preambleBytes
	if s.directCount != nil {
		size += 4 + 8*len(s.directCount)
	}
	if s.mode == curModeSparse {
		size += 4 + 3*len(s.lookupSparse)
	} else {
		size += s.cfg.m
	}
	bytes := make([]byte, size, size+checksumBytes)

	bytes[0] = serVer
	bytes[1] = byte(s.cfg.precision)
	flags := byte(0)
	if s.directCount != nil {
		flags |= flagDirectPresent
	}
	if s.mode == curModeDense {
		flags |= flagDense
	}
	bytes[2] = flags
	binary.LittleEndian.PutUint64(bytes[4:], e.additions)

	offset := preambleBytes
	if s.directCount != nil {
		binary.LittleEndian.PutUint32(bytes[offset:], uint32(len(s.directCount)))
		offset += 4
		hashes := make([]uint64, 0, len(s.directCount))
		for hash := range s.directCount {
			hashes = append(hashes, hash)
		}
		slices.Sort(hashes)
		for _, hash := range hashes {
			binary.LittleEndian.PutUint64(bytes[offset:], hash)
			offset += 8
		}
	}

	if s.mode == curModeSparse {
		binary.LittleEndian.PutUint32(bytes[offset:], uint32(len(s.lookupSparse)))
		offset += 4
		substreams := make([]uint16, 0, len(s.lookupSparse))
		for substream := range s.lookupSparse {
			substreams = append(substreams, substream)
		}
		slices.Sort(substreams)
		for _, substream := range substreams {
			internal.PutShortLE(bytes, offset, int(substream))
			bytes[offset+2] = s.lookupSparse[substream]
			offset += 3
		}
	} else {
		copy(bytes[offset:], s.lookupDense)
	}

	checksum := xxhash.Sum64(bytes)
	return binary.LittleEndian.AppendUint64(bytes, checksum), nil
}

// NewEstimatorFromSlice deserializes an estimator image produced by ToSlice.
// The given slice is not modified and not retained. Options configure the
// collaborators the image does not capture: the adapter, the Hasher and the
// bias corrector must match the ones the serialized estimator was built with.
func NewEstimatorFromSlice[T any](bytes []byte, opts ...Option[T]) (*Estimator[T], error) {
	if len(bytes) < preambleBytes+checksumBytes {
		return nil, fmt.Errorf("input slice too small: %d", len(bytes))
	}
	body := bytes[:len(bytes)-checksumBytes]
	checksum := binary.LittleEndian.Uint64(bytes[len(bytes)-checksumBytes:])
	if xxhash.Sum64(body) != checksum {
		return nil, fmt.Errorf("possible corruption: checksum mismatch")
	}
	if body[0] != serVer {
		return nil, fmt.Errorf("possible corruption: invalid serialization version: %d", body[0])
	}

	e, err := NewWithPrecision(int(body[1]), opts...)
	if err != nil {
		return nil, err
	}
	s := e.store
	flags := body[2]
	e.additions = binary.LittleEndian.Uint64(body[4:])

	offset := preambleBytes
	if flags&flagDirectPresent != 0 {
		if len(body) < offset+4 {
			return nil, fmt.Errorf("possible corruption: truncated direct payload")
		}
		n := int(binary.LittleEndian.Uint32(body[offset:]))
		offset += 4
		if n > directCounterMaxElements || len(body) < offset+8*n {
			return nil, fmt.Errorf("possible corruption: invalid direct count: %d", n)
		}
		for i := 0; i < n; i++ {
			s.directCount[binary.LittleEndian.Uint64(body[offset:])] = struct{}{}
			offset += 8
		}
	} else {
		s.directCount = nil
	}

	if flags&flagDense == 0 {
		if s.mode != curModeSparse {
			return nil, fmt.Errorf("possible corruption: sparse payload for precision %d", s.cfg.precision)
		}
		if len(body) < offset+4 {
			return nil, fmt.Errorf("possible corruption: truncated sparse payload")
		}
		n := int(binary.LittleEndian.Uint32(body[offset:]))
		offset += 4
		if n > s.cfg.sparseMaxElements || len(body) != offset+3*n {
			return nil, fmt.Errorf("possible corruption: invalid sparse count: %d", n)
		}
		for i := 0; i < n; i++ {
			substream := internal.GetShortLE(body, offset)
			if substream >= s.cfg.m {
				return nil, fmt.Errorf("possible corruption: substream out of range: %d", substream)
			}
			s.lookupSparse[uint16(substream)] = body[offset+2]
			offset += 3
		}
	} else {
		if s.mode == curModeSparse {
			s.switchToDense()
		}
		if len(body) != offset+s.cfg.m {
			return nil, fmt.Errorf("possible corruption: dense payload length mismatch: %d", len(body)-offset)
		}
		copy(s.lookupDense, body[offset:])
	}
	return e, nil
}
