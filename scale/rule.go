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
	"fmt"

	"github.com/blinklabs-io/gosubstrate/metadata"
)

type RuleKind uint8

const (
	RuleComposite RuleKind = iota
	RuleVariant
	RuleSequence
	RuleArray
	RuleTuple
	RulePrimitive
	RuleCompact
)

func (k RuleKind) String() string {
	switch k {
	case RuleComposite:
		return "composite"
	case RuleVariant:
		return "variant"
	case RuleSequence:
		return "sequence"
	case RuleArray:
		return "array"
	case RuleTuple:
		return "tuple"
	case RulePrimitive:
		return "primitive"
	case RuleCompact:
		return "compact"
	}
	return fmt.Sprintf("RuleKind(%d)", uint8(k))
}

type FieldRule struct {
	Name string
	Rule *TypeRule
}

type VariantRule struct {
	Name   string
	Index  uint8
	Fields []FieldRule
	// Named is set when every payload field carries a name
	Named bool
}

// TypeRule is the resolved encode/decode strategy for one metadata type. Rules
// are immutable once the registry that produced them is built, and may form
// cycles for recursive types.
type TypeRule struct {
	id        metadata.TypeID
	path      []string
	kind      RuleKind
	fields    []FieldRule
	named     bool
	variants  []VariantRule
	byName    map[string]int
	byIndex   map[uint8]int
	elem      *TypeRule
	length    uint32
	primitive metadata.Primitive
	// Bit width of the integer a compact wraps
	compactWidth int
	err          error
}

func (r *TypeRule) ID() metadata.TypeID {
	return r.id
}

func (r *TypeRule) Kind() RuleKind {
	return r.kind
}

func (r *TypeRule) Path() []string {
	return r.path
}

// Fields returns the members of a composite or tuple
func (r *TypeRule) Fields() []FieldRule {
	return r.fields
}

// Named reports whether composite members are matched by name
func (r *TypeRule) Named() bool {
	return r.named
}

func (r *TypeRule) Variants() []VariantRule {
	return r.variants
}

// Variant looks up an enum case by its exact name
func (r *TypeRule) Variant(name string) (*VariantRule, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return &r.variants[idx], true
}

func (r *TypeRule) VariantByIndex(index uint8) (*VariantRule, bool) {
	idx, ok := r.byIndex[index]
	if !ok {
		return nil, false
	}
	return &r.variants[idx], true
}

// Elem returns the element rule of a sequence, array or compact
func (r *TypeRule) Elem() *TypeRule {
	return r.elem
}

func (r *TypeRule) Len() uint32 {
	return r.length
}

func (r *TypeRule) Primitive() metadata.Primitive {
	return r.primitive
}

func (r *TypeRule) String() string {
	if len(r.path) > 0 {
		return fmt.Sprintf("%s(%d)", r.path[len(r.path)-1], r.id)
	}
	return fmt.Sprintf("%s(%d)", r.kind, r.id)
}

func (r *TypeRule) isByteSeq() bool {
	return r.elem != nil &&
		r.elem.kind == RulePrimitive &&
		r.elem.primitive == metadata.PrimitiveU8
}

// newtype returns the single member of a one-field composite or tuple
func (r *TypeRule) newtype() (*TypeRule, bool) {
	if (r.kind == RuleComposite || r.kind == RuleTuple) && len(r.fields) == 1 {
		return r.fields[0].Rule, true
	}
	return nil, false
}

func (r *TypeRule) children() []*TypeRule {
	var ret []*TypeRule
	for _, f := range r.fields {
		ret = append(ret, f.Rule)
	}
	for _, v := range r.variants {
		for _, f := range v.Fields {
			ret = append(ret, f.Rule)
		}
	}
	if r.elem != nil {
		ret = append(ret, r.elem)
	}
	return ret
}

func allNamed(fields []metadata.Field) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if f.Name == "" {
			return false
		}
	}
	return true
}
