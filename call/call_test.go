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

package call_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gosubstrate/call"
	"github.com/blinklabs-io/gosubstrate/internal/test"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/scale"
	"github.com/blinklabs-io/gosubstrate/ss58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder() *call.Builder {
	md := test.Metadata()
	return call.NewBuilder(md, scale.NewRegistry(md.Types))
}

func TestBuildCollectionsCreate(t *testing.T) {
	owner := test.DecodeHexString(test.AlicePubKeyHex)
	encoded, err := newBuilder().Build(
		"Collections",
		"create",
		[]*scale.Value{scale.Uint(7), scale.Bytes(owner)},
	)
	require.NoError(t, err)
	expected := []byte{test.PalletIndexCollections, 0x00}
	expected = append(expected, 7)
	expected = append(expected, make([]byte, 15)...)
	expected = append(expected, owner...)
	assert.Equal(t, expected, encoded.Bytes())
	assert.Equal(t, test.FixtureSpecVersion, encoded.SpecVersion())
	assert.Equal(t, "Collections", encoded.Pallet())
	assert.Equal(t, "create", encoded.Function())
	assert.Equal(t, "0x"+hex.EncodeToString(expected), encoded.Hex())
}

func TestBuildUniquesCreateWithAddress(t *testing.T) {
	account, _, err := ss58.Decode("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	require.NoError(t, err)
	encoded, err := newBuilder().Build(
		"Uniques",
		"create",
		[]*scale.Value{scale.Uint(1), scale.Variant("Id", account.Value())},
	)
	require.NoError(t, err)
	data := encoded.Bytes()
	require.Len(t, data, 2+16+1+32)
	assert.Equal(t, []byte{test.PalletIndexUniques, 0x00}, data[:2])
	assert.Equal(t, byte(0x00), data[18])
	assert.Equal(t, account.Bytes(), data[19:])
}

func TestBuildIsDeterministic(t *testing.T) {
	args := []*scale.Value{scale.Uint(3), scale.String("kitties")}
	b := newBuilder()
	first, err := b.Build("Collections", "set_name", args)
	require.NoError(t, err)
	second, err := b.Build("Collections", "set_name", args)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first.Bytes(), second.Bytes()))
	// Compact id followed by a length-prefixed string
	assert.Equal(t, "0701"+"0c"+"1c6b697474696573", hex.EncodeToString(first.Bytes()))
}

func TestBuildErrors(t *testing.T) {
	owner := scale.Bytes(test.DecodeHexString(test.AlicePubKeyHex))
	testDefs := []struct {
		name     string
		pallet   string
		function string
		args     []*scale.Value
		err      error
	}{
		{name: "unknown module", pallet: "Colections", function: "create", err: metadata.ErrUnknownModule},
		{name: "module case", pallet: "collections", function: "create", err: metadata.ErrUnknownModule},
		{name: "unknown function", pallet: "Collections", function: "destroy", err: metadata.ErrUnknownFunction},
		{name: "function case", pallet: "Collections", function: "Create", err: metadata.ErrUnknownFunction},
		{
			name:     "too few args",
			pallet:   "Collections",
			function: "create",
			args:     []*scale.Value{scale.Uint(7)},
			err:      metadata.ErrArityMismatch,
		},
		{
			name:     "too many args",
			pallet:   "Collections",
			function: "create",
			args:     []*scale.Value{scale.Uint(7), owner, owner},
			err:      metadata.ErrArityMismatch,
		},
		{
			name:     "wrong argument shape",
			pallet:   "Collections",
			function: "create",
			args:     []*scale.Value{owner, scale.Uint(7)},
			err:      scale.ErrValueShapeMismatch,
		},
		{
			name:     "out of range",
			pallet:   "Collections",
			function: "set_limits",
			args:     []*scale.Value{scale.Sequence(scale.Uint(1 << 33)), scale.Int(0)},
			err:      scale.ErrValueShapeMismatch,
		},
		{
			name:     "unknown variant",
			pallet:   "Uniques",
			function: "create",
			args:     []*scale.Value{scale.Uint(1), scale.Variant("AccountId", owner)},
			err:      scale.ErrValueShapeMismatch,
		},
	}
	b := newBuilder()
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := b.Build(testDef.pallet, testDef.function, testDef.args)
			assert.ErrorIs(t, err, testDef.err)
		})
	}
}

func TestBuildBytesAreCopied(t *testing.T) {
	encoded, err := newBuilder().Build("System", "remark", []*scale.Value{scale.Bytes([]byte("hi"))})
	require.NoError(t, err)
	data := encoded.Bytes()
	data[0] = 0xff
	assert.Equal(t, byte(test.PalletIndexSystem), encoded.Bytes()[0])
	assert.Equal(t, "0000"+"08"+"6869", hex.EncodeToString(encoded.Bytes()))
}
