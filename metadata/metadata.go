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

// Package metadata models the self-describing runtime metadata served by a
// node: its pallets, their callable functions and storage items, and the
// portable type table every declaration refers to.
//
// A Metadata value is immutable once built with New or NewFromCbor. All name
// lookups are exact and case-sensitive.
package metadata

import (
	"fmt"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/jinzhu/copier"
)

type StorageModifier uint8

const (
	// StorageOptional entries have no value until one is written
	StorageOptional StorageModifier = iota
	// StorageDefault entries read as their declared default when unset
	StorageDefault
)

// StorageEntry declares a storage item. No hashers means a plain value, one
// hasher means a single key of type Key, and N hashers mean Key is an N-tuple
// with one hasher applied to each member.
type StorageEntry struct {
	Name     string
	Modifier StorageModifier
	Hashers  []hashing.Hasher
	Key      TypeID
	Value    TypeID
	Default  []byte
	Docs     []string
}

func (e *StorageEntry) IsPlain() bool {
	return len(e.Hashers) == 0
}

// CheckArity verifies that exactly one argument is supplied per key hasher
func (e *StorageEntry) CheckArity(module string, n int) error {
	if n != len(e.Hashers) {
		return &ArityMismatchError{
			Module:   module,
			Name:     e.Name,
			Expected: len(e.Hashers),
			Got:      n,
		}
	}
	return nil
}

type PalletStorage struct {
	Prefix  string
	Entries []StorageEntry
}

type Pallet struct {
	Name    string
	Index   uint8
	Calls   *TypeID
	Events  *TypeID
	Errors  *TypeID
	Storage *PalletStorage
	Docs    []string
}

// Function is a callable declared by a pallet's call enum
type Function struct {
	Pallet *Pallet
	Name   string
	Index  uint8
	Params []Field
	Docs   []string
}

func (f *Function) CheckArity(n int) error {
	if n != len(f.Params) {
		return &ArityMismatchError{
			Module:   f.Pallet.Name,
			Name:     f.Name,
			Expected: len(f.Params),
			Got:      n,
		}
	}
	return nil
}

type Metadata struct {
	SpecVersion        uint32
	TransactionVersion uint32
	Types              []Type
	Pallets            []Pallet

	typeIdx        map[TypeID]int
	palletByName   map[string]int
	palletByIndex  map[uint8]int
	storageByEntry map[string]map[string]int
}

// New builds a metadata document and its lookup tables
func New(specVersion uint32, types []Type, pallets []Pallet) *Metadata {
	m := &Metadata{
		SpecVersion: specVersion,
		Types:       types,
		Pallets:     pallets,
	}
	m.index()
	return m
}

func (m *Metadata) index() {
	m.typeIdx = make(map[TypeID]int, len(m.Types))
	for i, t := range m.Types {
		m.typeIdx[t.ID] = i
	}
	m.palletByName = make(map[string]int, len(m.Pallets))
	m.palletByIndex = make(map[uint8]int, len(m.Pallets))
	m.storageByEntry = make(map[string]map[string]int, len(m.Pallets))
	for i, p := range m.Pallets {
		m.palletByName[p.Name] = i
		m.palletByIndex[p.Index] = i
		if p.Storage == nil {
			continue
		}
		entries := make(map[string]int, len(p.Storage.Entries))
		for j, e := range p.Storage.Entries {
			entries[e.Name] = j
		}
		m.storageByEntry[p.Name] = entries
	}
}

// Pallet looks up a pallet by its exact name
func (m *Metadata) Pallet(name string) (*Pallet, error) {
	idx, ok := m.palletByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	return &m.Pallets[idx], nil
}

func (m *Metadata) PalletByIndex(index uint8) (*Pallet, bool) {
	idx, ok := m.palletByIndex[index]
	if !ok {
		return nil, false
	}
	return &m.Pallets[idx], true
}

// PalletNames returns the pallet names in declaration order
func (m *Metadata) PalletNames() []string {
	ret := make([]string, 0, len(m.Pallets))
	for _, p := range m.Pallets {
		ret = append(ret, p.Name)
	}
	return ret
}

func (m *Metadata) Type(id TypeID) (*Type, bool) {
	idx, ok := m.typeIdx[id]
	if !ok {
		return nil, false
	}
	return &m.Types[idx], true
}

// Function resolves a callable by pallet and function name
func (m *Metadata) Function(pallet string, name string) (*Function, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	if p.Calls == nil {
		return nil, fmt.Errorf("%w: %s.%s (pallet has no calls)", ErrUnknownFunction, pallet, name)
	}
	t, ok := m.Type(*p.Calls)
	if !ok || t.Def.Kind != TypeDefVariant {
		return nil, fmt.Errorf(
			"%w: %s.%s (call type %d is not an enum)",
			ErrUnknownFunction,
			pallet,
			name,
			*p.Calls,
		)
	}
	for _, v := range t.Def.Variants {
		if v.Name == name {
			return &Function{
				Pallet: p,
				Name:   v.Name,
				Index:  v.Index,
				Params: v.Fields,
				Docs:   v.Docs,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownFunction, pallet, name)
}

// StorageEntry resolves a storage item by pallet and item name
func (m *Metadata) StorageEntry(pallet string, item string) (*Pallet, *StorageEntry, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return nil, nil, err
	}
	idx, ok := m.storageByEntry[pallet][item]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownStorageItem, pallet, item)
	}
	return p, &p.Storage.Entries[idx], nil
}

// ModuleError resolves a module error by pallet index and error discriminant
func (m *Metadata) ModuleError(palletIndex uint8, errorIndex uint8) (*Pallet, *Variant, error) {
	p, ok := m.PalletByIndex(palletIndex)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no pallet with index %d", ErrUnknownError, palletIndex)
	}
	if p.Errors == nil {
		return p, nil, fmt.Errorf("%w: pallet %s declares no errors", ErrUnknownError, p.Name)
	}
	t, ok := m.Type(*p.Errors)
	if !ok || t.Def.Kind != TypeDefVariant {
		return p, nil, fmt.Errorf("%w: pallet %s error type %d is not an enum", ErrUnknownError, p.Name, *p.Errors)
	}
	for i := range t.Def.Variants {
		if t.Def.Variants[i].Index == errorIndex {
			return p, &t.Def.Variants[i], nil
		}
	}
	return p, nil, fmt.Errorf("%w: %s error index %d", ErrUnknownError, p.Name, errorIndex)
}

// Clone returns a deep copy that shares nothing with the original
func (m *Metadata) Clone() (*Metadata, error) {
	ret := &Metadata{}
	if err := copier.CopyWithOption(ret, m, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	ret.index()
	return ret, nil
}
