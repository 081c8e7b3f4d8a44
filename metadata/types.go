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

import "fmt"

// TypeID identifies an entry in the metadata's portable type table
type TypeID = uint32

type Primitive uint8

// The numbering matches the primitive discriminants used by runtime metadata
const (
	PrimitiveBool Primitive = iota
	PrimitiveChar
	PrimitiveStr
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveU128
	PrimitiveU256
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveI128
	PrimitiveI256
)

var primitiveNames = []string{
	"bool", "char", "str",
	"u8", "u16", "u32", "u64", "u128", "u256",
	"i8", "i16", "i32", "i64", "i128", "i256",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("Primitive(%d)", uint8(p))
}

// BitWidth returns the width of integer primitives and 0 for everything else
func (p Primitive) BitWidth() int {
	switch p {
	case PrimitiveU8, PrimitiveI8:
		return 8
	case PrimitiveU16, PrimitiveI16:
		return 16
	case PrimitiveU32, PrimitiveI32:
		return 32
	case PrimitiveU64, PrimitiveI64:
		return 64
	case PrimitiveU128, PrimitiveI128:
		return 128
	case PrimitiveU256, PrimitiveI256:
		return 256
	}
	return 0
}

func (p Primitive) IsInteger() bool {
	return p.BitWidth() > 0
}

func (p Primitive) Signed() bool {
	return p >= PrimitiveI8 && p <= PrimitiveI256
}

type TypeDefKind uint8

const (
	TypeDefComposite TypeDefKind = iota
	TypeDefVariant
	TypeDefSequence
	TypeDefArray
	TypeDefTuple
	TypeDefPrimitive
	TypeDefCompact
	TypeDefBitSequence
)

func (k TypeDefKind) String() string {
	switch k {
	case TypeDefComposite:
		return "composite"
	case TypeDefVariant:
		return "variant"
	case TypeDefSequence:
		return "sequence"
	case TypeDefArray:
		return "array"
	case TypeDefTuple:
		return "tuple"
	case TypeDefPrimitive:
		return "primitive"
	case TypeDefCompact:
		return "compact"
	case TypeDefBitSequence:
		return "bitsequence"
	}
	return fmt.Sprintf("TypeDefKind(%d)", uint8(k))
}

// Field is a member of a composite type or a variant payload. An empty name
// means the field is positional.
type Field struct {
	Name     string
	Type     TypeID
	TypeName string
	Docs     []string
}

type Variant struct {
	Name   string
	Index  uint8
	Fields []Field
	Docs   []string
}

// TypeDef describes the shape of a type. Only the members relevant to Kind
// are populated.
type TypeDef struct {
	Kind      TypeDefKind
	Fields    []Field
	Variants  []Variant
	Elem      TypeID
	Len       uint32
	Tuple     []TypeID
	Primitive Primitive
	// Bit sequences reference their store and order types
	BitStore TypeID
	BitOrder TypeID
}

type Type struct {
	ID   TypeID
	Path []string
	Def  TypeDef
	Docs []string
}

// Composite returns a composite type definition
func Composite(fields ...Field) TypeDef {
	return TypeDef{Kind: TypeDefComposite, Fields: fields}
}

// Enum returns a variant type definition
func Enum(variants ...Variant) TypeDef {
	return TypeDef{Kind: TypeDefVariant, Variants: variants}
}

func SequenceOf(elem TypeID) TypeDef {
	return TypeDef{Kind: TypeDefSequence, Elem: elem}
}

func ArrayOf(length uint32, elem TypeID) TypeDef {
	return TypeDef{Kind: TypeDefArray, Len: length, Elem: elem}
}

func TupleOf(elems ...TypeID) TypeDef {
	return TypeDef{Kind: TypeDefTuple, Tuple: elems}
}

func PrimitiveOf(p Primitive) TypeDef {
	return TypeDef{Kind: TypeDefPrimitive, Primitive: p}
}

func CompactOf(elem TypeID) TypeDef {
	return TypeDef{Kind: TypeDefCompact, Elem: elem}
}
