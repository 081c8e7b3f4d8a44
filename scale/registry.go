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

// maxNewtypeDepth bounds the search for the integer a compact wraps
const maxNewtypeDepth = 16

// Registry holds the resolved rule of every type declared by one metadata
// document. All resolution happens in NewRegistry, so a Registry is safe for
// concurrent use without locking.
type Registry struct {
	rules map[metadata.TypeID]*TypeRule
}

// NewRegistry resolves every type in the table. Types that cannot be resolved
// do not prevent construction; Resolve reports their error instead, and the
// error also reaches every type that depends on them.
func NewRegistry(types []metadata.Type) *Registry {
	r := &Registry{
		rules: make(map[metadata.TypeID]*TypeRule, len(types)),
	}
	for _, t := range types {
		r.rules[t.ID] = &TypeRule{id: t.ID, path: t.Path}
	}
	for _, t := range types {
		r.link(r.rules[t.ID], t.Def)
	}
	for _, t := range types {
		rule := r.rules[t.ID]
		if rule.err == nil && rule.kind == RuleCompact {
			rule.compactWidth, rule.err = compactTarget(rule)
		}
	}
	r.propagate()
	return r
}

// Resolve returns the rule for a type id
func (r *Registry) Resolve(id metadata.TypeID) (*TypeRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, id)
	}
	if rule.err != nil {
		return nil, rule.err
	}
	return rule, nil
}

// Len returns the number of types known to the registry
func (r *Registry) Len() int {
	return len(r.rules)
}

func (r *Registry) child(parent *TypeRule, id metadata.TypeID) *TypeRule {
	rule, ok := r.rules[id]
	if !ok && parent.err == nil {
		parent.err = fmt.Errorf("%w: %d (referenced by type %d)", ErrUnknownType, id, parent.id)
	}
	return rule
}

func (r *Registry) fieldRules(parent *TypeRule, fields []metadata.Field) []FieldRule {
	ret := make([]FieldRule, 0, len(fields))
	for _, f := range fields {
		ret = append(ret, FieldRule{Name: f.Name, Rule: r.child(parent, f.Type)})
	}
	return ret
}

func (r *Registry) link(rule *TypeRule, def metadata.TypeDef) {
	switch def.Kind {
	case metadata.TypeDefComposite:
		rule.kind = RuleComposite
		rule.fields = r.fieldRules(rule, def.Fields)
		rule.named = allNamed(def.Fields)
	case metadata.TypeDefTuple:
		rule.kind = RuleTuple
		rule.fields = make([]FieldRule, 0, len(def.Tuple))
		for _, id := range def.Tuple {
			rule.fields = append(rule.fields, FieldRule{Rule: r.child(rule, id)})
		}
	case metadata.TypeDefVariant:
		rule.kind = RuleVariant
		rule.variants = make([]VariantRule, 0, len(def.Variants))
		rule.byName = make(map[string]int, len(def.Variants))
		rule.byIndex = make(map[uint8]int, len(def.Variants))
		for i, v := range def.Variants {
			if _, dup := rule.byIndex[v.Index]; dup && rule.err == nil {
				rule.err = fmt.Errorf("%w: type %d declares variant index %d twice", ErrUnsupportedTypeShape, rule.id, v.Index)
			}
			rule.variants = append(rule.variants, VariantRule{
				Name:   v.Name,
				Index:  v.Index,
				Fields: r.fieldRules(rule, v.Fields),
				Named:  allNamed(v.Fields),
			})
			rule.byName[v.Name] = i
			rule.byIndex[v.Index] = i
		}
	case metadata.TypeDefSequence:
		rule.kind = RuleSequence
		rule.elem = r.child(rule, def.Elem)
	case metadata.TypeDefArray:
		rule.kind = RuleArray
		rule.elem = r.child(rule, def.Elem)
		rule.length = def.Len
	case metadata.TypeDefCompact:
		rule.kind = RuleCompact
		rule.elem = r.child(rule, def.Elem)
	case metadata.TypeDefPrimitive:
		rule.kind = RulePrimitive
		rule.primitive = def.Primitive
		if def.Primitive == metadata.PrimitiveChar {
			rule.err = fmt.Errorf("%w: char primitive (type %d)", ErrUnsupportedTypeShape, rule.id)
		} else if def.Primitive > metadata.PrimitiveI256 {
			rule.err = fmt.Errorf("%w: %s (type %d)", ErrUnsupportedTypeShape, def.Primitive, rule.id)
		}
	case metadata.TypeDefBitSequence:
		rule.err = fmt.Errorf("%w: bit sequence (type %d)", ErrUnsupportedTypeShape, rule.id)
	default:
		rule.err = fmt.Errorf("%w: %s (type %d)", ErrUnsupportedTypeShape, def.Kind, rule.id)
	}
}

// compactTarget finds the unsigned integer a compact encodes, looking through
// single-field wrappers
func compactTarget(rule *TypeRule) (int, error) {
	target := rule.elem
	for range_i := 0; range_i < maxNewtypeDepth; range_i++ {
		if target == nil {
			break
		}
		if target.kind == RulePrimitive {
			if target.primitive.IsInteger() && !target.primitive.Signed() {
				return target.primitive.BitWidth(), nil
			}
			break
		}
		inner, ok := target.newtype()
		if !ok {
			break
		}
		target = inner
	}
	return 0, fmt.Errorf("%w: compact over non-integer (type %d)", ErrUnsupportedTypeShape, rule.id)
}

// propagate marks every rule that reaches a failed rule as failed
func (r *Registry) propagate() {
	for changed := true; changed; {
		changed = false
		for _, rule := range r.rules {
			if rule.err != nil {
				continue
			}
			for _, c := range rule.children() {
				if c != nil && c.err != nil {
					rule.err = fmt.Errorf("type %d: %w", rule.id, c.err)
					changed = true
					break
				}
			}
		}
	}
}
