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

package hashing

import "fmt"

// Hasher is a storage map key hashing mode. The numbering matches the
// discriminants used by runtime metadata.
type Hasher uint8

const (
	HasherBlake2_128 Hasher = iota
	HasherBlake2_256
	HasherBlake2_128Concat
	HasherTwox128
	HasherTwox256
	HasherTwox64Concat
	HasherIdentity
)

var hasherNames = map[Hasher]string{
	HasherBlake2_128:       "Blake2_128",
	HasherBlake2_256:       "Blake2_256",
	HasherBlake2_128Concat: "Blake2_128Concat",
	HasherTwox128:          "Twox128",
	HasherTwox256:          "Twox256",
	HasherTwox64Concat:     "Twox64Concat",
	HasherIdentity:         "Identity",
}

func (h Hasher) String() string {
	if name, ok := hasherNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hasher(%d)", uint8(h))
}

func (h Hasher) Valid() bool {
	_, ok := hasherNames[h]
	return ok
}

// Concat reports whether the hasher output ends with the raw key material
func (h Hasher) Concat() bool {
	switch h {
	case HasherBlake2_128Concat, HasherTwox64Concat, HasherIdentity:
		return true
	}
	return false
}

// Hash appends the hashed form of data to buf
func (h Hasher) Hash(buf []byte, data []byte) ([]byte, error) {
	switch h {
	case HasherBlake2_128:
		return append(buf, Blake2b128Hash(data)...), nil
	case HasherBlake2_256:
		tmp := Blake2b256Hash(data)
		return append(buf, tmp[:]...), nil
	case HasherBlake2_128Concat:
		buf = append(buf, Blake2b128Hash(data)...)
		return append(buf, data...), nil
	case HasherTwox128:
		return append(buf, Twox128(data)...), nil
	case HasherTwox256:
		return append(buf, Twox256(data)...), nil
	case HasherTwox64Concat:
		buf = append(buf, Twox64(data)...)
		return append(buf, data...), nil
	case HasherIdentity:
		return append(buf, data...), nil
	}
	return nil, fmt.Errorf("unknown storage hasher: %d", uint8(h))
}
