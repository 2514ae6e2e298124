// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scru128

import (
	"bytes"
	"fmt"
	"time"
)

// ID is a SCRU128 identifier: a 128-bit unsigned integer stored as 16
// bytes in the big-endian (network) byte order.
//
// Layout, most significant field first:
//   - 48 bits: Unix timestamp (milliseconds)
//   - 24 bits: counter_hi (per-second randomized counter)
//   - 24 bits: counter_lo (per-millisecond monotonic counter)
//   - 32 bits: entropy (per-generation random data)
//
// The zero value is the smallest representable ID. IDs are immutable
// values; == compares them byte-wise, and they are usable as map keys.
type ID [16]byte

// FromFields creates an ID from the four field values. Each field must
// fit its bit width: timestamp in 48 bits and both counters in 24 bits
// (the entropy argument spans the full 32-bit field). Out-of-range
// values are rejected with an error wrapping [ErrInvalidArgument];
// nothing is silently truncated.
func FromFields(timestamp uint64, counterHi, counterLo, entropy uint32) (ID, error) {
	var id ID
	if timestamp > MaxTimestamp {
		return id, fmt.Errorf(
			"%w: timestamp %d exceeds 48-bit range", ErrInvalidArgument, timestamp)
	}
	if counterHi > MaxCounterHi {
		return id, fmt.Errorf(
			"%w: counter_hi %d exceeds 24-bit range", ErrInvalidArgument, counterHi)
	}
	if counterLo > MaxCounterLo {
		return id, fmt.Errorf(
			"%w: counter_lo %d exceeds 24-bit range", ErrInvalidArgument, counterLo)
	}

	id[0] = byte(timestamp >> 40)
	id[1] = byte(timestamp >> 32)
	id[2] = byte(timestamp >> 24)
	id[3] = byte(timestamp >> 16)
	id[4] = byte(timestamp >> 8)
	id[5] = byte(timestamp)
	id[6] = byte(counterHi >> 16)
	id[7] = byte(counterHi >> 8)
	id[8] = byte(counterHi)
	id[9] = byte(counterLo >> 16)
	id[10] = byte(counterLo >> 8)
	id[11] = byte(counterLo)
	id[12] = byte(entropy >> 24)
	id[13] = byte(entropy >> 16)
	id[14] = byte(entropy >> 8)
	id[15] = byte(entropy)
	return id, nil
}

// FromBytes creates an ID from a byte slice holding a big-endian
// unsigned integer. Slices shorter than 16 bytes are left-padded with
// zeros; longer slices are accepted only if every extra leading byte is
// zero. Otherwise the value does not fit in 128 bits and an error
// wrapping [ErrInvalidArgument] is returned.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) <= 16 {
		copy(id[16-len(b):], b)
		return id, nil
	}
	for _, e := range b[:len(b)-16] {
		if e != 0 {
			return id, fmt.Errorf("%w: value exceeds 128 bits", ErrInvalidArgument)
		}
	}
	copy(id[:], b[len(b)-16:])
	return id, nil
}

// Min returns the smallest representable ID (all bits zero).
func Min() ID {
	return ID{}
}

// Max returns the largest representable ID (all bits one).
func Max() ID {
	return ID{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
}

// Timestamp returns the 48-bit millisecond Unix timestamp field.
func (id ID) Timestamp() uint64 {
	return uint64(id[0])<<40 | uint64(id[1])<<32 | uint64(id[2])<<24 |
		uint64(id[3])<<16 | uint64(id[4])<<8 | uint64(id[5])
}

// CounterHi returns the 24-bit counter_hi field.
func (id ID) CounterHi() uint32 {
	return uint32(id[6])<<16 | uint32(id[7])<<8 | uint32(id[8])
}

// CounterLo returns the 24-bit counter_lo field.
func (id ID) CounterLo() uint32 {
	return uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11])
}

// Entropy returns the 32-bit per-generation entropy field.
func (id ID) Entropy() uint32 {
	return uint32(id[12])<<24 | uint32(id[13])<<16 | uint32(id[14])<<8 |
		uint32(id[15])
}

// Time returns the timestamp field as a time.Time in the local zone.
func (id ID) Time() time.Time {
	return time.UnixMilli(int64(id.Timestamp()))
}

// Bytes returns a copy of the 16-byte big-endian representation.
func (id ID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

// Compare returns -1, 0, or 1 if id is less than, equal to, or greater
// than other, comparing both as 128-bit unsigned integers.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// IsZero reports whether id is the zero (minimum) ID.
func (id ID) IsZero() bool {
	return id == ID{}
}
