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
	"database/sql/driver"
	"fmt"
)

// digits is the canonical base-36 alphabet. Encoding always emits
// lowercase; decoding accepts both cases.
const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// Parse creates an ID from its 25-digit base-36 text representation.
// Letter case is ignored on input. Errors wrapping [ErrInvalidArgument]
// report a wrong length, the first out-of-alphabet character and its
// position, or a value beyond the 128-bit range.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != 25 {
		return id, fmt.Errorf(
			"%w: invalid length: %d bytes (expected 25)", ErrInvalidArgument, len(s))
	}

	var src [25]byte
	for i := 0; i < len(s); i++ {
		n := decodeDigit(s[i])
		if n == 0xff {
			return id, fmt.Errorf(
				"%w: invalid digit %q at position %d", ErrInvalidArgument, s[i], i)
		}
		src[i] = n
	}

	// Fold the digits into the byte array in groups of ten (the first
	// group has five to align totals), multiplying the partial result
	// by 36^10 and propagating the carry from right to left.
	const pow36x10 = 3_656_158_440_062_976 // 36^10
	minIndex := 99                         // greater than any index of id
	for i := -5; i < len(src); i += 10 {
		var carry uint64
		for _, n := range src[max(0, i) : i+10] {
			carry = carry*36 + uint64(n)
		}

		// Iterate from right to left while the carry is nonzero, but at
		// least up to the leftmost place already filled.
		j := len(id) - 1
		for ; carry > 0 || j > minIndex; j-- {
			if j < 0 {
				return ID{}, fmt.Errorf(
					"%w: out of 128-bit value range", ErrInvalidArgument)
			}
			carry += uint64(id[j]) * pow36x10
			id[j] = byte(carry)
			carry >>= 8
		}
		minIndex = j
	}
	return id, nil
}

// decodeDigit maps a base-36 character to its value, or 0xff if the
// character is outside the alphabet.
func decodeDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'Z':
		return c - 'A' + 10
	case c >= 'a' && c <= 'z':
		return c - 'a' + 10
	default:
		return 0xff
	}
}

// String returns the canonical text representation: exactly 25 base-36
// digits, lowercase, left-padded with zeros. Lexicographic order of the
// output equals numeric order of the IDs.
func (id ID) String() string {
	var buf [25]byte

	// Convert the 128 bits in 56-bit groups (the first group holds the
	// topmost 16), dividing each group by 36 and pushing remainders into
	// the output from right to left.
	minIndex := 99 // greater than any index of buf
	for i := -5; i < len(id); i += 7 {
		var carry uint64
		for _, b := range id[max(0, i) : i+7] {
			carry = carry<<8 | uint64(b)
		}

		j := len(buf) - 1
		for ; carry > 0 || j > minIndex; j-- {
			carry += uint64(buf[j]) << 56
			buf[j] = byte(carry % 36)
			carry /= 36
		}
		minIndex = j
	}

	for i, b := range buf {
		buf[i] = digits[b]
	}
	return string(buf[:])
}

// MarshalText implements encoding.TextMarshaler. It emits the canonical
// 25-digit string and never fails.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the
// case-insensitive 25-digit form recognized by [Parse].
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler. It emits the
// 16-byte big-endian form and never fails.
func (id ID) MarshalBinary() ([]byte, error) {
	return id.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It accepts any
// byte slice recognized by [FromBytes].
func (id *ID) UnmarshalBinary(b []byte) error {
	parsed, err := FromBytes(b)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer, storing the ID in its canonical text
// form so that database collation orders rows by generation time.
func (id ID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements sql.Scanner. It accepts the 25-digit text form (as
// string or []byte) and the 16-byte binary form; NULL leaves the ID at
// its zero value.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 16 {
			return id.UnmarshalBinary(v)
		}
		return id.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into ID", ErrInvalidArgument, src)
	}
}
