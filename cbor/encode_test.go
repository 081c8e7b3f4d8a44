// Copyright 2026 Blink Labs Software
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

package cbor_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gosubstrate/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type encodeTestDefinition struct {
	CborHex string
	Object  any
}

type testArrayStruct struct {
	cbor.StructAsArray
	A uint64
	B string
}

var encodeTests = []encodeTestDefinition{
	// Simple list of numbers
	{
		CborHex: "83010203",
		Object:  []any{1, 2, 3},
	},
	// Map keys are sorted deterministically
	{
		CborHex: "a2616101616202",
		Object:  map[string]int{"b": 2, "a": 1},
	},
	// Struct encoded as array
	{
		CborHex: "82076178",
		Object:  testArrayStruct{A: 7, B: "x"},
	},
}

func TestEncode(t *testing.T) {
	for _, test := range encodeTests {
		cborData, err := cbor.Encode(test.Object)
		require.NoError(t, err, "failed to encode object to CBOR")
		assert.Equal(
			t,
			test.CborHex,
			hex.EncodeToString(cborData),
			"object did not encode to expected CBOR",
		)
	}
}

func TestDecodeStructAsArray(t *testing.T) {
	data, err := hex.DecodeString("82076178")
	require.NoError(t, err)
	var dest testArrayStruct
	n, err := cbor.Decode(data, &dest)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, uint64(7), dest.A)
	assert.Equal(t, "x", dest.B)
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	type small struct {
		A uint64
	}
	// {"A": 1, "Z": 2}
	data, err := hex.DecodeString("a2614101615a02")
	require.NoError(t, err)
	var dest small
	_, err = cbor.Decode(data, &dest)
	assert.Error(t, err)
}
