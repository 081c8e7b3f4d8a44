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

package scale_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gosubstrate/internal/test"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/scale"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRule(t *testing.T, id metadata.TypeID) *scale.TypeRule {
	t.Helper()
	reg := scale.NewRegistry(test.FixtureTypes())
	rule, err := reg.Resolve(id)
	require.NoError(t, err)
	return rule
}

func alice() []byte {
	return test.DecodeHexString(test.AlicePubKeyHex)
}

func bob() []byte {
	return test.DecodeHexString(test.BobPubKeyHex)
}

func TestEncodePrimitives(t *testing.T) {
	testDefs := []struct {
		typeID   metadata.TypeID
		value    *scale.Value
		expected string
	}{
		{typeID: test.TypeU8, value: scale.Uint(255), expected: "ff"},
		{typeID: test.TypeU32, value: scale.Uint(1), expected: "01000000"},
		{typeID: test.TypeU64, value: scale.Uint(0x0102030405060708), expected: "0807060504030201"},
		{typeID: test.TypeU128, value: scale.Uint(7), expected: "07000000000000000000000000000000"},
		{typeID: test.TypeI32, value: scale.Int(-1), expected: "ffffffff"},
		{typeID: test.TypeI32, value: scale.Int(-2147483648), expected: "00000080"},
		{typeID: test.TypeI32, value: scale.Uint(5), expected: "05000000"},
		{typeID: test.TypeU32, value: scale.Int(5), expected: "05000000"},
		{typeID: test.TypeBool, value: scale.Bool(true), expected: "01"},
		{typeID: test.TypeStr, value: scale.String("abc"), expected: "0c616263"},
		{typeID: test.TypeCompactU32, value: scale.Uint(64), expected: "0101"},
		{typeID: test.TypeVecU8, value: scale.Bytes([]byte{1, 2}), expected: "080102"},
		{typeID: test.TypeVecU32, value: scale.Sequence(scale.Uint(1), scale.Uint(2)), expected: "080100000002000000"},
		{typeID: test.TypeUnit, value: scale.Unnamed(), expected: ""},
	}
	for _, testDef := range testDefs {
		encoded, err := scale.Encode(testDef.value, fixtureRule(t, testDef.typeID))
		require.NoError(t, err, "encode %s", testDef.value)
		assert.Equal(t, testDef.expected, hex.EncodeToString(encoded), "encode %s", testDef.value)
	}
}

func TestRoundTrip(t *testing.T) {
	testDefs := []struct {
		name   string
		typeID metadata.TypeID
		value  *scale.Value
	}{
		{name: "u128", typeID: test.TypeU128, value: scale.Uint(1 << 60)},
		{name: "i32 negative", typeID: test.TypeI32, value: scale.Int(-42)},
		{name: "str", typeID: test.TypeStr, value: scale.String("héllo")},
		{name: "compact u128", typeID: test.TypeCompactU128, value: scale.Uint(1 << 40)},
		{name: "account", typeID: test.TypeAccountID, value: scale.Unnamed(scale.Bytes(alice()))},
		{name: "pair", typeID: test.TypeU128Pair, value: scale.Unnamed(scale.Uint(1), scale.Uint(2))},
		{
			name:   "multiaddress id",
			typeID: test.TypeMultiAddress,
			value:  scale.Variant("Id", scale.Unnamed(scale.Bytes(bob()))),
		},
		{
			name:   "multiaddress index",
			typeID: test.TypeMultiAddress,
			value:  scale.Variant("Index", scale.Uint(300)),
		},
		{
			name:   "multiaddress raw",
			typeID: test.TypeMultiAddress,
			value:  scale.Variant("Raw", scale.Bytes([]byte("raw"))),
		},
		{
			name:   "item details",
			typeID: test.TypeItemDetails,
			value: scale.Named(
				scale.NewField("owner", scale.Unnamed(scale.Bytes(alice()))),
				scale.NewField("approved", scale.Variant("Some", scale.Unnamed(scale.Bytes(bob())))),
				scale.NewField("is_frozen", scale.Bool(true)),
				scale.NewField("deposit", scale.Uint(10_000_000_000)),
			),
		},
		{
			name:   "event record",
			typeID: test.TypeEventRecord,
			value: scale.Named(
				scale.NewField("phase", scale.Variant("ApplyExtrinsic", scale.Uint(1))),
				scale.NewField("event", scale.Variant("System", scale.NamedVariant(
					"ExtrinsicFailed",
					scale.NewField("dispatch_error", scale.Variant("Module", scale.Named(
						scale.NewField("index", scale.Uint(40)),
						scale.NewField("error", scale.Bytes([]byte{1, 0, 0, 0})),
					))),
					scale.NewField("dispatch_info", scale.Named(
						scale.NewField("weight", scale.Uint(1000)),
						scale.NewField("pays_fee", scale.Bool(true)),
					)),
				))),
				scale.NewField("topics", scale.Sequence()),
			),
		},
		{
			name:   "item details out of order",
			typeID: test.TypeItemDetails,
			value: scale.Named(
				scale.NewField("deposit", scale.Uint(10_000_000_000)),
				scale.NewField("is_frozen", scale.Bool(false)),
				scale.NewField("approved", scale.Variant("None")),
				scale.NewField("owner", scale.Unnamed(scale.Bytes(alice()))),
			),
		},
		{name: "i32 from uint", typeID: test.TypeI32, value: scale.Uint(5)},
		{name: "u32 from int", typeID: test.TypeU32, value: scale.Int(5)},
		{name: "u128 zero", typeID: test.TypeU128, value: scale.Uint(0)},
		{name: "option none", typeID: test.TypeOptionAccountID, value: scale.Variant("None")},
		{name: "vec u32", typeID: test.TypeVecU32, value: scale.Sequence(scale.Uint(9), scale.Uint(1<<31))},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			rule := fixtureRule(t, testDef.typeID)
			encoded, err := scale.Encode(testDef.value, rule)
			require.NoError(t, err)
			decoded, n, err := scale.Decode(encoded, rule)
			require.NoError(t, err)
			assert.Equal(t, len(encoded), n)
			assert.True(t, testDef.value.Equal(decoded), "expected %s, got %s", testDef.value, decoded)
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, scale.Uint(5).Equal(scale.Int(5)))
	assert.False(t, scale.Int(-1).Equal(scale.UintFrom256(new(uint256.Int).SetAllOne())))
	assert.True(t, scale.Named(
		scale.NewField("a", scale.Uint(1)),
		scale.NewField("b", scale.Bool(true)),
	).Equal(scale.Named(
		scale.NewField("b", scale.Bool(true)),
		scale.NewField("a", scale.Uint(1)),
	)))
	assert.False(t, scale.Named(
		scale.NewField("a", scale.Uint(1)),
		scale.NewField("b", scale.Bool(true)),
	).Equal(scale.Named(
		scale.NewField("a", scale.Uint(1)),
		scale.NewField("c", scale.Bool(true)),
	)))
	assert.False(t, scale.Unnamed(scale.Uint(1), scale.Uint(2)).Equal(scale.Unnamed(scale.Uint(2), scale.Uint(1))))
}

func TestEncodeNewtypeTransparency(t *testing.T) {
	rule := fixtureRule(t, test.TypeAccountID)
	direct, err := scale.Encode(scale.Bytes(alice()), rule)
	require.NoError(t, err)
	wrapped, err := scale.Encode(scale.Unnamed(scale.Bytes(alice())), rule)
	require.NoError(t, err)
	assert.Equal(t, alice(), direct)
	assert.Equal(t, direct, wrapped)
	// MultiAddress::Id built straight from raw key bytes
	addr, err := scale.Encode(
		scale.Variant("Id", scale.Bytes(bob())),
		fixtureRule(t, test.TypeMultiAddress),
	)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x00}, bob()...), addr)
}

func TestEncodeFieldOrder(t *testing.T) {
	rule := fixtureRule(t, test.TypeDispatchInfo)
	inOrder, err := scale.Encode(scale.Named(
		scale.NewField("weight", scale.Uint(5)),
		scale.NewField("pays_fee", scale.Bool(true)),
	), rule)
	require.NoError(t, err)
	reversed, err := scale.Encode(scale.Named(
		scale.NewField("pays_fee", scale.Bool(true)),
		scale.NewField("weight", scale.Uint(5)),
	), rule)
	require.NoError(t, err)
	assert.Equal(t, inOrder, reversed)
	assert.Equal(t, "050000000000000001", hex.EncodeToString(inOrder))
}

func TestEncodeShapeMismatch(t *testing.T) {
	testDefs := []struct {
		name   string
		typeID metadata.TypeID
		value  *scale.Value
	}{
		{name: "u8 overflow", typeID: test.TypeU8, value: scale.Uint(256)},
		{name: "i32 overflow", typeID: test.TypeI32, value: scale.Uint(1 << 31)},
		{name: "i32 underflow", typeID: test.TypeI32, value: scale.Int(-2147483649)},
		{name: "negative unsigned", typeID: test.TypeU32, value: scale.Int(-1)},
		{name: "bool from int", typeID: test.TypeBool, value: scale.Uint(1)},
		{name: "str from bytes", typeID: test.TypeStr, value: scale.Bytes([]byte("x"))},
		{name: "nil value", typeID: test.TypeU32, value: nil},
		{name: "unknown variant", typeID: test.TypeMultiAddress, value: scale.Variant("Nope")},
		{name: "variant name case", typeID: test.TypeMultiAddress, value: scale.Variant("id", scale.Bytes(alice()))},
		{name: "variant field count", typeID: test.TypeMultiAddress, value: scale.Variant("Id")},
		{name: "composite for variant", typeID: test.TypeMultiAddress, value: scale.Unnamed(scale.Bytes(alice()))},
		{name: "array length", typeID: test.TypeBytes32, value: scale.Bytes([]byte{1, 2, 3})},
		{name: "bytes for non-byte sequence", typeID: test.TypeVecU32, value: scale.Bytes([]byte{1})},
		{name: "sequence element", typeID: test.TypeVecU32, value: scale.Sequence(scale.String("x"))},
		{name: "compact overflow", typeID: test.TypeCompactU32, value: scale.Uint(1 << 32)},
		{name: "compact negative", typeID: test.TypeCompactU32, value: scale.Int(-1)},
		{
			name:   "missing field",
			typeID: test.TypeDispatchInfo,
			value:  scale.Named(scale.NewField("weight", scale.Uint(1)), scale.NewField("fee", scale.Bool(true))),
		},
		{
			name:   "field count",
			typeID: test.TypeDispatchInfo,
			value:  scale.Named(scale.NewField("weight", scale.Uint(1))),
		},
		{
			name:   "positional for named",
			typeID: test.TypeDispatchInfo,
			value:  scale.Unnamed(scale.Uint(1), scale.Bool(true)),
		},
		{
			name:   "named for tuple",
			typeID: test.TypeU128Pair,
			value:  scale.Named(scale.NewField("a", scale.Uint(1)), scale.NewField("b", scale.Uint(2))),
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := scale.Encode(testDef.value, fixtureRule(t, testDef.typeID))
			require.Error(t, err)
			assert.ErrorIs(t, err, scale.ErrValueShapeMismatch)
		})
	}
}

func TestEncodeShapeMismatchPath(t *testing.T) {
	_, err := scale.Encode(
		scale.Named(
			scale.NewField("owner", scale.Bytes(alice())),
			scale.NewField("approved", scale.Variant("Some", scale.Bytes([]byte{1}))),
			scale.NewField("is_frozen", scale.Bool(false)),
			scale.NewField("deposit", scale.Uint(0)),
		),
		fixtureRule(t, test.TypeItemDetails),
	)
	var mismatchErr *scale.ShapeMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, "approved.Some[0]", mismatchErr.Path)
}

func TestDecodeErrors(t *testing.T) {
	testDefs := []struct {
		name   string
		typeID metadata.TypeID
		data   string
		err    error
	}{
		{name: "short u32", typeID: test.TypeU32, data: "010203", err: scale.ErrTruncatedInput},
		{name: "short account", typeID: test.TypeAccountID, data: "d43593c7", err: scale.ErrTruncatedInput},
		{name: "short vec", typeID: test.TypeVecU8, data: "0c0102", err: scale.ErrTruncatedInput},
		{name: "empty variant", typeID: test.TypeMultiAddress, data: "", err: scale.ErrTruncatedInput},
		{name: "bad bool", typeID: test.TypeBool, data: "02", err: scale.ErrMalformedInput},
		{name: "bad variant index", typeID: test.TypeMultiAddress, data: "09", err: scale.ErrMalformedInput},
		{name: "invalid utf8", typeID: test.TypeStr, data: "04ff", err: scale.ErrMalformedInput},
		{name: "compact overflow", typeID: test.TypeCompactU32, data: "070000000001", err: scale.ErrMalformedInput},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, _, err := scale.Decode(test.DecodeHexString(testDef.data), fixtureRule(t, testDef.typeID))
			assert.ErrorIs(t, err, testDef.err)
		})
	}
}

func TestDecodeSignExtension(t *testing.T) {
	v, n, err := scale.Decode(test.DecodeHexString("feffffff"), fixtureRule(t, test.TypeI32))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	got, ok := v.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(-2), got)
	assert.True(t, v.Equal(scale.Int(-2)))
}

func TestDecodeExactTrailingBytes(t *testing.T) {
	rule := fixtureRule(t, test.TypeU32)
	v, err := scale.DecodeExact(test.DecodeHexString("0700000001ff"), rule)
	assert.ErrorIs(t, err, scale.ErrTrailingBytes)
	var trailingErr *scale.TrailingBytesError
	require.ErrorAs(t, err, &trailingErr)
	assert.Equal(t, 2, trailingErr.Remaining)
	// The value is still available to the caller
	require.NotNil(t, v)
	got, ok := v.AsUint64()
	require.True(t, ok)
	assert.Equal(t, uint64(7), got)

	v, err = scale.DecodeExact(test.DecodeHexString("07000000"), rule)
	require.NoError(t, err)
	assert.True(t, v.Equal(scale.Uint(7)))
}

func TestDecodeCanonicalForms(t *testing.T) {
	pair, _, err := scale.Decode(
		test.DecodeHexString("0100000000000000000000000000000002000000000000000000000000000000"),
		fixtureRule(t, test.TypeU128Pair),
	)
	require.NoError(t, err)
	assert.Equal(t, scale.KindComposite, pair.Kind())
	assert.False(t, pair.IsNamed())
	assert.Equal(t, 2, pair.Len())

	account, _, err := scale.Decode(alice(), fixtureRule(t, test.TypeAccountID))
	require.NoError(t, err)
	raw, ok := account.At(0).AsBytes()
	require.True(t, ok)
	assert.Equal(t, alice(), raw)
}
