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

package scale

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	compactSingleMax = 1<<6 - 1
	compactTwoMax    = 1<<14 - 1
	compactFourMax   = 1<<30 - 1
)

// AppendCompact appends the compact encoding of n to buf
func AppendCompact(buf []byte, n *uint256.Int) []byte {
	if n.IsUint64() {
		x := n.Uint64()
		switch {
		case x <= compactSingleMax:
			return append(buf, byte(x<<2))
		case x <= compactTwoMax:
			return binary.LittleEndian.AppendUint16(buf, uint16(x<<2)|0b01)
		case x <= compactFourMax:
			return binary.LittleEndian.AppendUint32(buf, uint32(x<<2)|0b10)
		}
	}
	size := (n.BitLen() + 7) / 8
	if size < 4 {
		size = 4
	}
	buf = append(buf, byte((size-4)<<2)|0b11)
	be := n.Bytes32()
	for i := 0; i < size; i++ {
		buf = append(buf, be[31-i])
	}
	return buf
}

func AppendCompactUint64(buf []byte, n uint64) []byte {
	return AppendCompact(buf, uint256.NewInt(n))
}

// DecodeCompact decodes a compact integer from the start of data and returns
// it along with the number of bytes consumed. Encodings that are not the
// shortest possible form are rejected.
func DecodeCompact(data []byte) (*uint256.Int, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty compact integer", ErrTruncatedInput)
	}
	switch data[0] & 0b11 {
	case 0b00:
		return uint256.NewInt(uint64(data[0] >> 2)), 1, nil
	case 0b01:
		if len(data) < 2 {
			return nil, 0, fmt.Errorf("%w: compact integer needs 2 bytes", ErrTruncatedInput)
		}
		x := uint64(binary.LittleEndian.Uint16(data) >> 2)
		if x <= compactSingleMax {
			return nil, 0, fmt.Errorf("%w: non-canonical compact integer %d", ErrMalformedInput, x)
		}
		return uint256.NewInt(x), 2, nil
	case 0b10:
		if len(data) < 4 {
			return nil, 0, fmt.Errorf("%w: compact integer needs 4 bytes", ErrTruncatedInput)
		}
		x := uint64(binary.LittleEndian.Uint32(data) >> 2)
		if x <= compactTwoMax {
			return nil, 0, fmt.Errorf("%w: non-canonical compact integer %d", ErrMalformedInput, x)
		}
		return uint256.NewInt(x), 4, nil
	}
	size := int(data[0]>>2) + 4
	if size > 32 {
		return nil, 0, fmt.Errorf("%w: compact integer of %d bytes exceeds 256 bits", ErrMalformedInput, size)
	}
	if len(data) < 1+size {
		return nil, 0, fmt.Errorf("%w: compact integer needs %d bytes", ErrTruncatedInput, 1+size)
	}
	be := make([]byte, size)
	for i := 0; i < size; i++ {
		be[size-1-i] = data[1+i]
	}
	if be[0] == 0 {
		return nil, 0, fmt.Errorf("%w: non-canonical compact integer with leading zero byte", ErrMalformedInput)
	}
	n := new(uint256.Int).SetBytes(be)
	if n.IsUint64() && n.Uint64() <= compactFourMax {
		return nil, 0, fmt.Errorf("%w: non-canonical compact integer %d", ErrMalformedInput, n.Uint64())
	}
	return n, 1 + size, nil
}

// decodeLength decodes a compact length prefix
func decodeLength(data []byte) (uint64, int, error) {
	n, size, err := DecodeCompact(data)
	if err != nil {
		return 0, 0, err
	}
	if !n.IsUint64() {
		return 0, 0, fmt.Errorf("%w: length prefix exceeds 64 bits", ErrMalformedInput)
	}
	return n.Uint64(), size, nil
}
