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

// Package call builds unsigned call payloads from pallet and function names
// and dynamically typed arguments.
package call

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/scale"
)

// EncodedCall is a pallet index, function index and encoded arguments, bound
// to the runtime version of the metadata it was built from
type EncodedCall struct {
	data        []byte
	specVersion uint32
	pallet      string
	function    string
}

// Bytes returns a copy of the encoded call
func (c EncodedCall) Bytes() []byte {
	ret := make([]byte, len(c.data))
	copy(ret, c.data)
	return ret
}

func (c EncodedCall) SpecVersion() uint32 {
	return c.specVersion
}

func (c EncodedCall) Pallet() string {
	return c.pallet
}

func (c EncodedCall) Function() string {
	return c.function
}

func (c EncodedCall) Hex() string {
	return "0x" + hex.EncodeToString(c.data)
}

func (c EncodedCall) String() string {
	return fmt.Sprintf("%s.%s(%s)", c.pallet, c.function, c.Hex())
}

type Builder struct {
	metadata *metadata.Metadata
	registry *scale.Registry
}

func NewBuilder(md *metadata.Metadata, registry *scale.Registry) *Builder {
	return &Builder{
		metadata: md,
		registry: registry,
	}
}

// Build resolves the named function and encodes args against its declared
// parameters, in order. It has no side effects.
func (b *Builder) Build(pallet string, function string, args []*scale.Value) (EncodedCall, error) {
	fn, err := b.metadata.Function(pallet, function)
	if err != nil {
		return EncodedCall{}, err
	}
	if err := fn.CheckArity(len(args)); err != nil {
		return EncodedCall{}, err
	}
	buf := []byte{fn.Pallet.Index, fn.Index}
	for i, param := range fn.Params {
		rule, err := b.registry.Resolve(param.Type)
		if err != nil {
			return EncodedCall{}, fmt.Errorf("%s.%s: parameter %d (%s): %w", pallet, function, i, param.Name, err)
		}
		buf, err = scale.AppendEncode(buf, args[i], rule)
		if err != nil {
			return EncodedCall{}, fmt.Errorf("%s.%s: argument %d (%s): %w", pallet, function, i, param.Name, err)
		}
	}
	return EncodedCall{
		data:        buf,
		specVersion: b.metadata.SpecVersion,
		pallet:      fn.Pallet.Name,
		function:    fn.Name,
	}, nil
}
