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
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

type Kind uint8

const (
	KindBool Kind = iota
	KindUint
	KindInt
	KindBytes
	KindString
	KindComposite
	KindVariant
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindSequence:
		return "sequence"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Field is a composite member. Positional members have an empty name.
type Field struct {
	Name  string
	Value *Value
}

func NewField(name string, v *Value) Field {
	return Field{Name: name, Value: v}
}

// Value is a self-describing value tree. Integers are held as 256-bit
// quantities, in two's complement for KindInt.
type Value struct {
	kind    Kind
	boolean bool
	number  uint256.Int
	bytes   []byte
	str     string
	named   bool
	fields  []Field
	variant string
	payload *Value
	elems   []*Value
}

func Bool(b bool) *Value {
	return &Value{kind: KindBool, boolean: b}
}

func Uint(n uint64) *Value {
	v := &Value{kind: KindUint}
	v.number.SetUint64(n)
	return v
}

// UintFrom256 returns an unsigned integer value holding a copy of n
func UintFrom256(n *uint256.Int) *Value {
	v := &Value{kind: KindUint}
	v.number.Set(n)
	return v
}

// UintFromBig returns an unsigned integer value. The input must be
// non-negative and fit in 256 bits.
func UintFromBig(b *big.Int) (*Value, error) {
	if b.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for unsigned integer", b)
	}
	n, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("value %s exceeds 256 bits", b)
	}
	return UintFrom256(n), nil
}

func Int(n int64) *Value {
	v := &Value{kind: KindInt}
	if n < 0 {
		v.number.SetUint64(^uint64(n))
		v.number.Not(&v.number)
	} else {
		v.number.SetUint64(uint64(n))
	}
	return v
}

// IntFromBig returns a signed integer value. The input must fit in a signed
// 256-bit integer.
func IntFromBig(b *big.Int) (*Value, error) {
	v := &Value{kind: KindInt}
	if b.Sign() >= 0 {
		if b.BitLen() > 255 {
			return nil, fmt.Errorf("value %s exceeds 256 bits", b)
		}
		v.number.SetFromBig(b)
		return v, nil
	}
	mag := new(big.Int).Neg(b)
	mag.Sub(mag, big.NewInt(1))
	if mag.BitLen() > 255 {
		return nil, fmt.Errorf("value %s exceeds 256 bits", b)
	}
	v.number.SetFromBig(mag)
	v.number.Not(&v.number)
	return v, nil
}

// Bytes returns a byte string value holding a copy of b
func Bytes(b []byte) *Value {
	return &Value{kind: KindBytes, bytes: bytes.Clone(b)}
}

func String(s string) *Value {
	return &Value{kind: KindString, str: s}
}

// Named returns a composite whose members are matched by name
func Named(fields ...Field) *Value {
	return &Value{kind: KindComposite, named: true, fields: fields}
}

// Unnamed returns a composite whose members are matched by position
func Unnamed(values ...*Value) *Value {
	fields := make([]Field, 0, len(values))
	for _, v := range values {
		fields = append(fields, Field{Value: v})
	}
	return &Value{kind: KindComposite, fields: fields}
}

// Variant returns an enum value with a positional payload
func Variant(name string, values ...*Value) *Value {
	return &Value{kind: KindVariant, variant: name, payload: Unnamed(values...)}
}

// NamedVariant returns an enum value whose payload members are matched by name
func NamedVariant(name string, fields ...Field) *Value {
	return &Value{kind: KindVariant, variant: name, payload: Named(fields...)}
}

func Sequence(values ...*Value) *Value {
	return &Value{kind: KindSequence, elems: values}
}

func (v *Value) Kind() Kind {
	return v.kind
}

func (v *Value) AsBool() (bool, bool) {
	if v == nil || v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// AsUint64 returns the value of a non-negative integer that fits in 64 bits
func (v *Value) AsUint64() (uint64, bool) {
	if v == nil || (v.kind != KindUint && v.kind != KindInt) {
		return 0, false
	}
	if v.kind == KindInt && v.number.Sign() < 0 {
		return 0, false
	}
	if !v.number.IsUint64() {
		return 0, false
	}
	return v.number.Uint64(), true
}

// AsInt64 returns the value of an integer that fits in a signed 64-bit integer
func (v *Value) AsInt64() (int64, bool) {
	b := v.AsBig()
	if b == nil || !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// AsBig returns the integer value as a big.Int, or nil for non-integers
func (v *Value) AsBig() *big.Int {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindUint:
		return v.number.ToBig()
	case KindInt:
		if v.number.Sign() >= 0 {
			return v.number.ToBig()
		}
		var mag uint256.Int
		mag.Neg(&v.number)
		ret := mag.ToBig()
		return ret.Neg(ret)
	}
	return nil
}

func (v *Value) AsBytes() ([]byte, bool) {
	if v == nil || v.kind != KindBytes {
		return nil, false
	}
	return v.bytes, true
}

func (v *Value) AsString() (string, bool) {
	if v == nil || v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v *Value) IsNamed() bool {
	return v != nil && v.kind == KindComposite && v.named
}

func (v *Value) Fields() []Field {
	if v == nil || v.kind != KindComposite {
		return nil
	}
	return v.fields
}

// Field returns the member with the given name of a named composite
func (v *Value) Field(name string) (*Value, bool) {
	if !v.IsNamed() {
		return nil, false
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// At returns the i-th composite member or sequence element, or nil when out of range
func (v *Value) At(i int) *Value {
	if v == nil || i < 0 {
		return nil
	}
	switch v.kind {
	case KindComposite:
		if i < len(v.fields) {
			return v.fields[i].Value
		}
	case KindSequence:
		if i < len(v.elems) {
			return v.elems[i]
		}
	}
	return nil
}

func (v *Value) VariantName() string {
	if v == nil || v.kind != KindVariant {
		return ""
	}
	return v.variant
}

// Payload returns the composite payload of a variant
func (v *Value) Payload() *Value {
	if v == nil || v.kind != KindVariant {
		return nil
	}
	return v.payload
}

func (v *Value) Elems() []*Value {
	if v == nil || v.kind != KindSequence {
		return nil
	}
	return v.elems
}

// Len returns the number of members, elements or bytes
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindComposite:
		return len(v.fields)
	case KindSequence:
		return len(v.elems)
	case KindBytes:
		return len(v.bytes)
	case KindString:
		return len(v.str)
	case KindVariant:
		return v.payload.Len()
	}
	return 0
}

// Equal reports whether two values carry the same data. Integers compare by
// numeric value regardless of signedness, and named composites compare by
// field name regardless of order.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.isInteger() && o.isInteger() {
		if v.negative() != o.negative() {
			return false
		}
		return v.number.Eq(&o.number)
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.boolean == o.boolean
	case KindBytes:
		return bytes.Equal(v.bytes, o.bytes)
	case KindString:
		return v.str == o.str
	case KindComposite:
		if v.named != o.named || len(v.fields) != len(o.fields) {
			return false
		}
		if v.named {
			for _, f := range v.fields {
				other, ok := o.Field(f.Name)
				if !ok || !f.Value.Equal(other) {
					return false
				}
			}
			return true
		}
		for i := range v.fields {
			if !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case KindVariant:
		return v.variant == o.variant && v.payload.Equal(o.payload)
	case KindSequence:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Value) isInteger() bool {
	return v.kind == KindUint || v.kind == KindInt
}

func (v *Value) negative() bool {
	return v.kind == KindInt && v.number.Sign() < 0
}

func (v *Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v *Value) render(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("<nil>")
		return
	}
	switch v.kind {
	case KindBool:
		fmt.Fprintf(sb, "%t", v.boolean)
	case KindUint, KindInt:
		sb.WriteString(v.AsBig().String())
	case KindBytes:
		sb.WriteString("0x")
		sb.WriteString(hex.EncodeToString(v.bytes))
	case KindString:
		fmt.Fprintf(sb, "%q", v.str)
	case KindComposite:
		v.renderFields(sb)
	case KindVariant:
		sb.WriteString(v.variant)
		if v.payload.Len() > 0 {
			v.payload.renderFields(sb)
		}
	case KindSequence:
		sb.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.render(sb)
		}
		sb.WriteByte(']')
	}
}

func (v *Value) renderFields(sb *strings.Builder) {
	open, closing := byte('('), byte(')')
	if v.named {
		open, closing = '{', '}'
	}
	sb.WriteByte(open)
	for i, f := range v.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		if f.Name != "" {
			sb.WriteString(f.Name)
			sb.WriteString(": ")
		}
		f.Value.render(sb)
	}
	sb.WriteByte(closing)
}
