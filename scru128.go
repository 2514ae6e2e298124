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

// Package scru128 implements SCRU128: sortable, clock- and random
// number-based unique identifiers.
//
// A SCRU128 ID is a 128-bit unsigned integer composed of a 48-bit
// millisecond Unix timestamp, two 24-bit counters, and 32 bits of
// per-generation entropy. IDs generated by a single [Generator] are
// monotonically ordered, both as integers and in their canonical
// 25-digit base-36 text form, without any coordination between
// generating nodes.
//
// # Usage
//
// Construct a generator once, own it explicitly, and draw IDs from it:
//
//	g := scru128.NewGenerator()
//	id, _, err := g.Generate()
//	if err != nil {
//		// the platform random source failed
//	}
//	fmt.Println(id) // e.g. "036z951mhjikzik2gsl81gr7l"
//
// Deterministic tests can inject a frozen clock and a canned random
// source via [WithClock] and [WithRandomSource].
package scru128

import "errors"

// Field widths of the 128-bit layout, most significant first.
const (
	// MaxTimestamp is the maximum value of the 48-bit timestamp field.
	MaxTimestamp uint64 = 0xffff_ffff_ffff

	// MaxCounterHi is the maximum value of the 24-bit counter_hi field.
	MaxCounterHi uint32 = 0xff_ffff

	// MaxCounterLo is the maximum value of the 24-bit counter_lo field.
	MaxCounterLo uint32 = 0xff_ffff
)

var (
	// ErrInvalidArgument reports caller input that violates the SCRU128
	// format: a field value out of its declared bit range, a malformed
	// or wrongly sized text or byte representation, or a value that
	// exceeds 128 bits. Errors returned by constructors and parsers
	// wrap this sentinel together with the specific cause.
	ErrInvalidArgument = errors.New("scru128: invalid argument")

	// ErrClockRollback reports that the wall clock (or an explicit
	// timestamp argument) moved backward beyond the rollback allowance.
	// It is an expected operating condition of the abort-policy entry
	// points, not a programming error; callers decide whether to retry,
	// alert, or fall back to the reset policy.
	ErrClockRollback = errors.New("scru128: clock moved back beyond allowance")
)
