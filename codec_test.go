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

package scru128_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/deep-rent/scru128"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refEncode converts an ID to its 25-digit base-36 form through
// math/big, serving as an independent reference for the codec.
func refEncode(id scru128.ID) string {
	s := new(big.Int).SetBytes(id.Bytes()).Text(36)
	return strings.Repeat("0", 25-len(s)) + s
}

func TestString_PreparedCases(t *testing.T) {
	tests := []struct {
		name      string
		timestamp uint64
		counterHi uint32
		counterLo uint32
		entropy   uint32
		want      string
	}{
		{
			name: "zero",
			want: "0000000000000000000000000",
		},
		{
			name:    "smallest nonzero",
			entropy: 1,
			want:    "0000000000000000000000001",
		},
		{
			name:    "max entropy",
			entropy: 1<<32 - 1,
			want:    "0000000000000000001z141z3",
		},
		{
			name:      "smallest counter_lo",
			counterLo: 1,
			want:      "0000000000000000001z141z4",
		},
		{
			name:      "max everything",
			timestamp: 1<<48 - 1,
			counterHi: 1<<24 - 1,
			counterLo: 1<<24 - 1,
			entropy:   1<<32 - 1,
			want:      "f5lxx1zz5pnorynqglhzmsp33",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := scru128.FromFields(
				tc.timestamp, tc.counterHi, tc.counterLo, tc.entropy)
			require.NoError(t, err)

			assert.Equal(t, tc.want, id.String())
			assert.Equal(t, refEncode(id), id.String())

			lower, err := scru128.Parse(tc.want)
			require.NoError(t, err)
			upper, err := scru128.Parse(strings.ToUpper(tc.want))
			require.NoError(t, err)
			assert.Equal(t, id, lower)
			assert.Equal(t, id, upper, "decoding must ignore letter case")
		})
	}
}

// TestCodec_AgainstBigInt cross-checks both codec directions against
// math/big for a spread of generated IDs.
func TestCodec_AgainstBigInt(t *testing.T) {
	g := scru128.NewGenerator()
	for range 1_000 {
		id, _, err := g.Generate()
		require.NoError(t, err)

		s := id.String()
		require.Len(t, s, 25)
		assert.Equal(t, strings.ToLower(s), s, "canonical case is lowercase")
		assert.Equal(t, refEncode(id), s)

		n, ok := new(big.Int).SetString(s, 36)
		require.True(t, ok)
		assert.Equal(t, n, new(big.Int).SetBytes(id.Bytes()))

		parsed, err := scru128.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "empty",
			input:  "",
			errMsg: "invalid length",
		},
		{
			name:   "too short",
			input:  "036z8puq4tsxsigk6o19y164",
			errMsg: "invalid length",
		},
		{
			name:   "too long",
			input:  "036z8puq4tsxsigk6o19y164qq",
			errMsg: "invalid length",
		},
		{
			name:   "leading space",
			input:  " 036z8puq4tsxsigk6o19y164q",
			errMsg: "invalid length",
		},
		{
			name:   "trailing space",
			input:  "036z8puq4tsxsigk6o19y164 ",
			errMsg: "invalid digit ' ' at position 24",
		},
		{
			name:   "plus prefix",
			input:  "+36z8puq4tsxsigk6o19y164q",
			errMsg: "invalid digit '+' at position 0",
		},
		{
			name:   "minus prefix",
			input:  "-36z8puq4tsxsigk6o19y164q",
			errMsg: "invalid digit '-' at position 0",
		},
		{
			name:   "underscore",
			input:  "036z8puq4tsxsigk6o19y16_q",
			errMsg: "invalid digit '_' at position 23",
		},
		{
			name:   "hyphen inside",
			input:  "036z8puq-tsxsigk6o19y164q",
			errMsg: "invalid digit '-' at position 8",
		},
		{
			name:   "one above the maximum",
			input:  "f5lxx1zz5pnorynqglhzmsp34",
			errMsg: "out of 128-bit value range",
		},
		{
			name:   "all z",
			input:  "zzzzzzzzzzzzzzzzzzzzzzzzz",
			errMsg: "out of 128-bit value range",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scru128.Parse(tc.input)
			require.ErrorIs(t, err, scru128.ErrInvalidArgument)
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestTextMarshaling(t *testing.T) {
	id, err := scru128.FromFields(0x0123_4567_89ab, 0xcdef01, 0x234567, 0x89abcdef)
	require.NoError(t, err)

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.String(), string(text))

	var decoded scru128.ID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)

	var bad scru128.ID
	err = bad.UnmarshalText([]byte("not an id"))
	require.ErrorIs(t, err, scru128.ErrInvalidArgument)
	assert.True(t, bad.IsZero(), "a failed unmarshal must not modify the receiver")
}

func TestBinaryMarshaling(t *testing.T) {
	id, err := scru128.FromFields(0x0123_4567_89ab, 0xcdef01, 0x234567, 0x89abcdef)
	require.NoError(t, err)

	raw, err := id.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, id.Bytes(), raw)

	var decoded scru128.ID
	require.NoError(t, decoded.UnmarshalBinary(raw))
	assert.Equal(t, id, decoded)

	var bad scru128.ID
	err = bad.UnmarshalBinary(append([]byte{0xff}, raw...))
	require.ErrorIs(t, err, scru128.ErrInvalidArgument)
}

func TestJSON(t *testing.T) {
	type event struct {
		ID      scru128.ID `json:"id"`
		Payload string     `json:"payload"`
	}

	id, err := scru128.FromFields(0x0123_4567_89ab, 0xcdef01, 0x234567, 0x89abcdef)
	require.NoError(t, err)

	data, err := json.Marshal(event{ID: id, Payload: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`","payload":"hello"}`, string(data))

	var decoded event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded.ID)

	var bad event
	err = json.Unmarshal([]byte(`{"id":"0000000000000000000000=00"}`), &bad)
	require.Error(t, err)
}

func TestSQL(t *testing.T) {
	id, err := scru128.FromFields(0x0123_4567_89ab, 0xcdef01, 0x234567, 0x89abcdef)
	require.NoError(t, err)

	v, err := id.Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), v)

	tests := []struct {
		name    string
		src     any
		want    scru128.ID
		wantErr bool
	}{
		{name: "text string", src: id.String(), want: id},
		{name: "text bytes", src: []byte(id.String()), want: id},
		{name: "binary bytes", src: id.Bytes(), want: id},
		{name: "null", src: nil, want: scru128.ID{}},
		{name: "unsupported type", src: 42, wantErr: true},
		{name: "malformed text", src: "definitely not an identifier", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var decoded scru128.ID
			err := decoded.Scan(tc.src)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, decoded)
			}
		})
	}
}

func BenchmarkString(b *testing.B) {
	g := scru128.NewGenerator()
	id, _, err := g.Generate()
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		_ = id.String()
	}
}

func BenchmarkParse(b *testing.B) {
	g := scru128.NewGenerator()
	id, _, err := g.Generate()
	if err != nil {
		b.Fatal(err)
	}
	s := id.String()

	for b.Loop() {
		_, _ = scru128.Parse(s)
	}
}
