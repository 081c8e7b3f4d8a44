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

// Package ss58 encodes and decodes SS58 account addresses
package ss58

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/scale"
	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	AccountIDSize  = 32
	checksumSize   = 2
	maxPrefix      = 16383
	simplePrefixes = 64

	// Generic Substrate prefix, also used by development chains
	PrefixSubstrate uint16 = 42
	PrefixPolkadot  uint16 = 0
	PrefixKusama    uint16 = 2
)

var checksumPreimage = []byte("SS58PRE")

var (
	ErrInvalidAddress  = errors.New("invalid SS58 address")
	ErrInvalidChecksum = errors.New("invalid SS58 checksum")
	ErrInvalidPrefix   = errors.New("invalid SS58 prefix")
)

// AccountID is a 32-byte public key
type AccountID [AccountIDSize]byte

func NewAccountID(data []byte) (AccountID, error) {
	var ret AccountID
	if len(data) != AccountIDSize {
		return ret, fmt.Errorf(
			"%w: account ID must be %d bytes, got %d",
			ErrInvalidAddress,
			AccountIDSize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountID) Bytes() []byte {
	return a[:]
}

// Value returns the account as a byte value suitable for AccountId32 arguments
func (a AccountID) Value() *scale.Value {
	return scale.Bytes(a[:])
}

// Encode renders the account using the given network prefix
func Encode(account AccountID, prefix uint16) (string, error) {
	if prefix > maxPrefix {
		return "", fmt.Errorf("%w: %d", ErrInvalidPrefix, prefix)
	}
	var payload []byte
	if prefix < simplePrefixes {
		payload = append(payload, byte(prefix))
	} else {
		payload = append(
			payload,
			byte((prefix&0xfc)>>2)|0x40,
			byte(prefix>>8)|byte((prefix&0x03)<<6),
		)
	}
	payload = append(payload, account[:]...)
	sum := hashing.Blake2b512Hash(checksumPreimage, payload)
	payload = append(payload, sum[:checksumSize]...)
	return base58.Encode(payload), nil
}

// Decode parses an address and returns the account and its network prefix
func Decode(address string) (AccountID, uint16, error) {
	var account AccountID
	data := base58.Decode(address)
	if len(data) < 2 {
		return account, 0, ErrInvalidAddress
	}
	var prefix uint16
	var prefixLen int
	switch {
	case data[0] < simplePrefixes:
		prefix = uint16(data[0])
		prefixLen = 1
	case data[0] < 128:
		lower := (data[0] << 2) | (data[1] >> 6)
		upper := data[1] & 0x3f
		prefix = uint16(lower) | uint16(upper)<<8
		prefixLen = 2
	default:
		return account, 0, fmt.Errorf("%w: leading byte 0x%02x", ErrInvalidPrefix, data[0])
	}
	if len(data) != prefixLen+AccountIDSize+checksumSize {
		return account, 0, fmt.Errorf(
			"%w: unexpected length %d",
			ErrInvalidAddress,
			len(data),
		)
	}
	body := data[:len(data)-checksumSize]
	sum := hashing.Blake2b512Hash(checksumPreimage, body)
	if !bytes.Equal(sum[:checksumSize], data[len(data)-checksumSize:]) {
		return account, 0, ErrInvalidChecksum
	}
	copy(account[:], body[prefixLen:])
	return account, prefix, nil
}
