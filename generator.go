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
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/deep-rent/scru128/clock"
)

// DefaultRollbackAllowance is the backward clock movement, in
// milliseconds, tolerated by [Generator.Generate] and
// [Generator.GenerateOrAbort] before they treat the clock as having
// regressed significantly.
const DefaultRollbackAllowance = 10_000

// counterHiWindow is the interval, in milliseconds, after which the
// counter_hi field is refreshed with fresh random bits.
const counterHiWindow = 1_000

// Transition identifies which branch of the generator's state machine
// produced an ID. It is returned alongside every generated ID, so
// callers never have to read back mutable generator state to learn what
// happened.
type Transition uint8

const (
	// TransitionNone means no ID was produced (an error occurred, or
	// the abort policy refused a significant clock rollback).
	TransitionNone Transition = iota

	// TransitionNewTimestamp means the wall clock advanced and its
	// reading was adopted as the new timestamp.
	TransitionNewTimestamp

	// TransitionCounterLoInc means the timestamp stalled and counter_lo
	// was incremented.
	TransitionCounterLoInc

	// TransitionCounterHiInc means counter_lo overflowed and counter_hi
	// was incremented.
	TransitionCounterHiInc

	// TransitionTimestampInc means both counters overflowed and the
	// timestamp was advanced by one virtual tick.
	TransitionTimestampInc

	// TransitionClockRollback means the clock regressed beyond the
	// allowance and the generator state was reset to resume from the
	// new, earlier timestamp.
	TransitionClockRollback
)

// String returns a short lower-case name for the transition.
func (t Transition) String() string {
	switch t {
	case TransitionNewTimestamp:
		return "new timestamp"
	case TransitionCounterLoInc:
		return "counter_lo increment"
	case TransitionCounterHiInc:
		return "counter_hi increment"
	case TransitionTimestampInc:
		return "timestamp increment"
	case TransitionClockRollback:
		return "clock rollback"
	default:
		return "none"
	}
}

// Generator produces SCRU128 IDs from wall-clock time and monotonic
// counters. Create one with [NewGenerator], own it explicitly, and keep
// it for the lifetime of the owning service; each instance maintains
// wholly independent state.
//
// [Generator.Generate] and [Generator.GenerateOrAbort] serialize access
// to the internal state and are safe for concurrent use. The Core entry
// points are not; see their documentation.
type Generator struct {
	mu        sync.Mutex
	timestamp uint64
	counterHi uint32
	counterLo uint32

	// tsCounterHi is the timestamp at the last counter_hi renewal.
	tsCounterHi uint64

	clock clock.Clock
	rand  io.Reader
}

// config holds the configuration settings for a generator.
type config struct {
	clock clock.Clock
	rand  io.Reader
}

// Option defines a function that modifies the generator configuration.
type Option func(*config)

// WithClock returns an Option that sets the wall-clock source consulted
// by Generate and GenerateOrAbort. If c is nil, it is ignored.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithRandomSource returns an Option that sets the source of random
// bytes used to seed the counters and fill the entropy field. The
// source should be cryptographically strong and is owned exclusively by
// the generator; sharing one unsynchronized source between concurrently
// used generators is not safe unless the source itself is. If r is nil,
// it is ignored.
func WithRandomSource(r io.Reader) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.rand = r
		}
	}
}

// NewGenerator creates a generator backed by the system clock and the
// platform CSPRNG. These defaults can be overridden by passing in one
// or more Option functions.
func NewGenerator(opts ...Option) *Generator {
	c := config{
		clock: clock.SystemClock(),
		rand:  rand.Reader,
	}
	for _, opt := range opts {
		opt(&c)
	}

	return &Generator{
		clock: c.clock,
		rand:  bufio.NewReader(c.rand),
	}
}

// Generate returns a new ID from the current time, resetting the
// generator state if the clock has moved back by more than
// [DefaultRollbackAllowance] milliseconds. In that case the returned
// transition is [TransitionClockRollback] and the ID breaks the
// increasing order of previously issued IDs; monotonicity resumes from
// the new timestamp onward.
//
// Generate is safe for concurrent use.
func (g *Generator) Generate() (ID, Transition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.GenerateOrResetCore(uint64(g.clock().UnixMilli()), DefaultRollbackAllowance)
}

// GenerateOrAbort returns a new ID from the current time, or
// [ErrClockRollback] without touching the generator state if the clock
// has moved back by more than [DefaultRollbackAllowance] milliseconds.
// The caller decides how to handle the condition: retry later, raise an
// alarm, or fall back to [Generator.Generate].
//
// GenerateOrAbort is safe for concurrent use.
func (g *Generator) GenerateOrAbort() (ID, Transition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.GenerateOrAbortCore(uint64(g.clock().UnixMilli()), DefaultRollbackAllowance)
}

// GenerateOrResetCore returns a new ID from an explicit millisecond
// timestamp, resetting the generator state if timestamp precedes the
// last one by more than rollbackAllowance milliseconds. Both arguments
// must fit the 48-bit timestamp range.
//
// Unlike [Generator.Generate], this method is NOT safe for concurrent
// use; callers needing parallel access must hold their own lock around
// each call or use one generator per goroutine.
func (g *Generator) GenerateOrResetCore(timestamp, rollbackAllowance uint64) (ID, Transition, error) {
	id, kind, err := g.GenerateOrAbortCore(timestamp, rollbackAllowance)
	if errors.Is(err, ErrClockRollback) {
		// The clock that jumped backward is trusted: clear the state
		// and resume from the new timestamp.
		g.timestamp = 0
		g.tsCounterHi = 0
		id, _, err = g.GenerateOrAbortCore(timestamp, rollbackAllowance)
		return id, TransitionClockRollback, err
	}
	return id, kind, err
}

// GenerateOrAbortCore returns a new ID from an explicit millisecond
// timestamp, or [ErrClockRollback] without touching the generator state
// if timestamp precedes the last one by more than rollbackAllowance
// milliseconds. Both arguments must fit the 48-bit timestamp range.
//
// Unlike [Generator.GenerateOrAbort], this method is NOT safe for
// concurrent use; callers needing parallel access must hold their own
// lock around each call or use one generator per goroutine.
func (g *Generator) GenerateOrAbortCore(timestamp, rollbackAllowance uint64) (ID, Transition, error) {
	if timestamp > MaxTimestamp {
		return ID{}, TransitionNone, fmt.Errorf(
			"%w: timestamp %d exceeds 48-bit range", ErrInvalidArgument, timestamp)
	}
	if rollbackAllowance > MaxTimestamp {
		return ID{}, TransitionNone, fmt.Errorf(
			"%w: rollback allowance %d exceeds 48-bit range", ErrInvalidArgument, rollbackAllowance)
	}

	var kind Transition
	if timestamp > g.timestamp {
		g.timestamp = timestamp
		n, err := g.randomUint32()
		if err != nil {
			return ID{}, TransitionNone, err
		}
		g.counterLo = n & MaxCounterLo
		kind = TransitionNewTimestamp
	} else if timestamp+rollbackAllowance > g.timestamp {
		// Timestamp stalled or moved back within the allowance: extend
		// the current tick by incrementing the counters.
		g.counterLo++
		kind = TransitionCounterLoInc
		if g.counterLo > MaxCounterLo {
			n, err := g.randomUint32()
			if err != nil {
				return ID{}, TransitionNone, err
			}
			g.counterLo = n & MaxCounterLo
			g.counterHi++
			kind = TransitionCounterHiInc
			if g.counterHi > MaxCounterHi {
				n, err := g.randomUint32()
				if err != nil {
					return ID{}, TransitionNone, err
				}
				g.counterHi = n & MaxCounterHi
				// Borrow a virtual tick from the logical clock instead
				// of blocking until the wall clock catches up.
				g.timestamp++
				n, err = g.randomUint32()
				if err != nil {
					return ID{}, TransitionNone, err
				}
				g.counterLo = n & MaxCounterLo
				kind = TransitionTimestampInc
			}
		}
	} else {
		return ID{}, TransitionNone, ErrClockRollback
	}

	if g.timestamp-g.tsCounterHi >= counterHiWindow || g.tsCounterHi == 0 {
		g.tsCounterHi = g.timestamp
		n, err := g.randomUint32()
		if err != nil {
			return ID{}, TransitionNone, err
		}
		g.counterHi = n & MaxCounterHi
	}

	entropy, err := g.randomUint32()
	if err != nil {
		return ID{}, TransitionNone, err
	}

	id, err := FromFields(g.timestamp, g.counterHi, g.counterLo, entropy)
	if err != nil {
		return ID{}, TransitionNone, err
	}
	return id, kind, nil
}

// Seq returns an endless sequence of IDs drawn from g with the same
// semantics as [Generator.Generate]. Iteration stops only when the
// consumer breaks or the random source fails.
func (g *Generator) Seq() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for {
			id, _, err := g.Generate()
			if err != nil {
				return
			}
			if !yield(id) {
				return
			}
		}
	}
}

// randomUint32 draws four bytes from the random source.
func (g *Generator) randomUint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(g.rand, b[:]); err != nil {
		return 0, fmt.Errorf("scru128: failed to read random bytes: %w", err)
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}
