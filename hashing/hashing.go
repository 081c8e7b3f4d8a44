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

// Package hashing provides the digest functions used by runtime storage keys,
// transaction hashes and address checksums.
package hashing

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b128Size = 16
	Blake2b256Size = 32
	Blake2b512Size = 64
)

var ErrInvalidHashLength = errors.New("invalid hash length")

// Blake2b256 is a 32-byte hash, used for block and transaction hashes
type Blake2b256 [Blake2b256Size]byte

func NewBlake2b256(data []byte) Blake2b256 {
	b := Blake2b256{}
	copy(b[:], data)
	return b
}

// ParseBlake2b256 parses a hex string, with or without a 0x prefix
func ParseBlake2b256(s string) (Blake2b256, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Blake2b256{}, err
	}
	if len(data) != Blake2b256Size {
		return Blake2b256{}, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidHashLength,
			Blake2b256Size,
			len(data),
		)
	}
	return NewBlake2b256(data), nil
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

// Hex returns the 0x-prefixed hex form used on the node RPC interface
func (b Blake2b256) Hex() string {
	return "0x" + hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) IsZero() bool {
	return b == Blake2b256{}
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Hex())
}

func (b *Blake2b256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tmp, err := ParseBlake2b256(s)
	if err != nil {
		return err
	}
	*b = tmp
	return nil
}

// Blake2b256Hash generates a Blake2b-256 hash from the provided data
func Blake2b256Hash(data []byte) Blake2b256 {
	return Blake2b256(blake2bSum(Blake2b256Size, data))
}

// Blake2b128Hash generates a Blake2b-128 hash from the provided data
func Blake2b128Hash(data []byte) []byte {
	return blake2bSum(Blake2b128Size, data)
}

// Blake2b512Hash generates a Blake2b-512 hash from the provided data
func Blake2b512Hash(data ...[]byte) []byte {
	tmpHash, err := blake2b.New512(nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	for _, d := range data {
		tmpHash.Write(d)
	}
	return tmpHash.Sum(nil)
}

func blake2bSum(size int, data []byte) []byte {
	tmpHash, err := blake2b.New(size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return tmpHash.Sum(nil)
}

// Twox64 is a single round of xxhash64 with seed 0, little-endian
func Twox64(data []byte) []byte {
	return twox(data, 1)
}

// Twox128 concatenates xxhash64 digests seeded with 0 and 1
func Twox128(data []byte) []byte {
	return twox(data, 2)
}

// Twox256 concatenates xxhash64 digests seeded with 0 through 3
func Twox256(data []byte) []byte {
	return twox(data, 4)
}

func twox(data []byte, rounds int) []byte {
	ret := make([]byte, 0, rounds*8)
	for seed := 0; seed < rounds; seed++ {
		d := xxhash.NewWithSeed(uint64(seed))
		_, _ = d.Write(data)
		ret = binary.LittleEndian.AppendUint64(ret, d.Sum64())
	}
	return ret
}
