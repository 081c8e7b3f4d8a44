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

// Package storage builds storage lookup keys from pallet and item names and
// decodes the values read back from them.
package storage

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/scale"
)

// PrefixSize is the length of the pallet and item part of every key
const PrefixSize = 32

type Key []byte

func (k Key) Hex() string {
	return "0x" + hex.EncodeToString(k)
}

func (k Key) String() string {
	return k.Hex()
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

// ItemPrefix returns twox128(pallet prefix) ‖ twox128(item)
func ItemPrefix(palletPrefix string, item string) []byte {
	ret := make([]byte, 0, PrefixSize)
	ret = append(ret, hashing.Twox128([]byte(palletPrefix))...)
	return append(ret, hashing.Twox128([]byte(item))...)
}

// Key builds the full lookup key of a storage item. One argument must be
// supplied per key hasher; plain items take none.
func (b *Builder) Key(pallet string, item string, args []*scale.Value) (Key, error) {
	p, entry, err := b.metadata.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	if err := entry.CheckArity(pallet, len(args)); err != nil {
		return nil, err
	}
	ret := ItemPrefix(p.Storage.Prefix, entry.Name)
	if entry.IsPlain() {
		return ret, nil
	}
	rules, err := b.keyRules(pallet, entry)
	if err != nil {
		return nil, err
	}
	for i, hasher := range entry.Hashers {
		encoded, err := scale.Encode(args[i], rules[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: key %d: %w", pallet, item, i, err)
		}
		ret, err = hasher.Hash(ret, encoded)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: key %d: %w", pallet, item, i, err)
		}
	}
	return ret, nil
}

// keyRules returns one rule per hasher. Multi-key items declare their key as
// a tuple with one member per hasher.
func (b *Builder) keyRules(pallet string, entry *metadata.StorageEntry) ([]*scale.TypeRule, error) {
	rule, err := b.registry.Resolve(entry.Key)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: key type: %w", pallet, entry.Name, err)
	}
	if len(entry.Hashers) == 1 {
		return []*scale.TypeRule{rule}, nil
	}
	fields := rule.Fields()
	isTuple := rule.Kind() == scale.RuleTuple || (rule.Kind() == scale.RuleComposite && !rule.Named())
	if !isTuple || len(fields) != len(entry.Hashers) {
		return nil, fmt.Errorf(
			"%w: %s.%s has %d hashers but key type %s is not a %d-tuple",
			scale.ErrUnsupportedTypeShape,
			pallet,
			entry.Name,
			len(entry.Hashers),
			rule,
			len(entry.Hashers),
		)
	}
	ret := make([]*scale.TypeRule, 0, len(fields))
	for _, f := range fields {
		ret = append(ret, f.Rule)
	}
	return ret, nil
}

// Decode decodes a value read from a storage item. A nil data slice means
// the key holds no value, and yields a nil value and no error. Bytes left
// over after the value are reported with a scale.TrailingBytesError
// alongside the decoded value.
func (b *Builder) Decode(pallet string, item string, data []byte) (*scale.Value, error) {
	_, entry, err := b.metadata.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return b.decodeEntry(pallet, entry, data)
}

// Default returns the declared default of an item, or nil for items that
// have none
func (b *Builder) Default(pallet string, item string) (*scale.Value, error) {
	_, entry, err := b.metadata.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	if entry.Modifier != metadata.StorageDefault {
		return nil, nil
	}
	return b.decodeEntry(pallet, entry, entry.Default)
}

func (b *Builder) decodeEntry(pallet string, entry *metadata.StorageEntry, data []byte) (*scale.Value, error) {
	rule, err := b.registry.Resolve(entry.Value)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: value type: %w", pallet, entry.Name, err)
	}
	v, err := scale.DecodeExact(data, rule)
	if err != nil {
		return v, fmt.Errorf("%s.%s: %w", pallet, entry.Name, err)
	}
	return v, nil
}
