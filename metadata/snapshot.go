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

package metadata

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gosubstrate/cbor"
)

const snapshotFormat = 1

var ErrSnapshotFormat = errors.New("unsupported metadata snapshot format")

type snapshot struct {
	cbor.StructAsArray
	Format             uint
	SpecVersion        uint32
	TransactionVersion uint32
	Types              []Type
	Pallets            []Pallet
}

// NewFromCbor loads a metadata snapshot previously produced by Cbor. It
// satisfies the decoder signature expected by metadata sources.
func NewFromCbor(data []byte) (*Metadata, error) {
	var tmp snapshot
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return nil, fmt.Errorf("decode metadata snapshot: %w", err)
	}
	if tmp.Format != snapshotFormat {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotFormat, tmp.Format)
	}
	m := New(tmp.SpecVersion, tmp.Types, tmp.Pallets)
	m.TransactionVersion = tmp.TransactionVersion
	return m, nil
}

// Cbor serializes the document as a snapshot
func (m *Metadata) Cbor() ([]byte, error) {
	tmp := snapshot{
		Format:             snapshotFormat,
		SpecVersion:        m.SpecVersion,
		TransactionVersion: m.TransactionVersion,
		Types:              m.Types,
		Pallets:            m.Pallets,
	}
	return cbor.Encode(&tmp)
}
