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
	"github.com/holiman/uint256"
)

// Encode returns the wire encoding of v against rule
func Encode(v *Value, rule *TypeRule) ([]byte, error) {
	return AppendEncode(nil, v, rule)
}

// AppendEncode appends the wire encoding of v against rule to buf. On error
// the returned slice is nil and buf is left unmodified.
func AppendEncode(buf []byte, v *Value, rule *TypeRule) ([]byte, error) {
	if rule == nil {
		return nil, fmt.Errorf("%w: nil type rule", ErrUnknownType)
	}
	ret, err := encodeValue(buf, v, rule, "")
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func joinPath(path string, elem string) string {
	if path == "" {
		return elem
	}
	return path + "." + elem
}

func encodeValue(buf []byte, v *Value, rule *TypeRule, path string) ([]byte, error) {
	if v == nil {
		return nil, mismatch(path, "missing value for %s", rule)
	}
	switch rule.kind {
	case RulePrimitive:
		return encodePrimitive(buf, v, rule, path)
	case RuleCompact:
		return encodeCompact(buf, v, rule, path)
	case RuleSequence, RuleArray:
		return encodeSeq(buf, v, rule, path)
	case RuleComposite, RuleTuple:
		if inner, ok := rule.newtype(); ok && !fitsComposite(v, rule) {
			return encodeValue(buf, v, inner, path)
		}
		if v.kind != KindComposite {
			return nil, mismatch(path, "expected composite for %s, got %s", rule, v.kind)
		}
		return encodeFields(buf, v, rule.fields, rule.named, path)
	case RuleVariant:
		if v.kind != KindVariant {
			return nil, mismatch(path, "expected variant for %s, got %s", rule, v.kind)
		}
		variant, ok := rule.Variant(v.variant)
		if !ok {
			return nil, mismatch(path, "%s has no variant %q", rule, v.variant)
		}
		buf = append(buf, variant.Index)
		payload := v.payload
		if payload == nil {
			payload = Unnamed()
		}
		return encodeFields(buf, payload, variant.Fields, variant.Named, joinPath(path, variant.Name))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedTypeShape, rule)
}

// fitsComposite reports whether v is a composite laid out like rule. Anything
// else given for a single-field rule is encoded as that field.
func fitsComposite(v *Value, rule *TypeRule) bool {
	return v.kind == KindComposite && len(v.fields) == len(rule.fields) && v.named == rule.named
}

func encodeFields(buf []byte, v *Value, fields []FieldRule, named bool, path string) ([]byte, error) {
	if len(v.fields) != len(fields) {
		return nil, mismatch(path, "expected %d fields, got %d", len(fields), len(v.fields))
	}
	if len(fields) == 0 {
		return buf, nil
	}
	var err error
	if !named {
		if v.named {
			return nil, mismatch(path, "expected positional fields, got named fields")
		}
		for i, f := range fields {
			buf, err = encodeValue(buf, v.fields[i].Value, f.Rule, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	if !v.named {
		return nil, mismatch(path, "expected named fields, got positional fields")
	}
	for _, f := range fields {
		fv, ok := v.Field(f.Name)
		if !ok {
			return nil, mismatch(path, "missing field %q", f.Name)
		}
		buf, err = encodeValue(buf, fv, f.Rule, joinPath(path, f.Name))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeSeq(buf []byte, v *Value, rule *TypeRule, path string) ([]byte, error) {
	var n int
	switch v.kind {
	case KindBytes:
		if !rule.isByteSeq() {
			return nil, mismatch(path, "bytes given for %s", rule)
		}
		n = len(v.bytes)
	case KindSequence:
		n = len(v.elems)
	default:
		return nil, mismatch(path, "expected sequence for %s, got %s", rule, v.kind)
	}
	if rule.kind == RuleArray {
		if uint64(n) != uint64(rule.length) {
			return nil, mismatch(path, "expected %d elements, got %d", rule.length, n)
		}
	} else {
		buf = AppendCompactUint64(buf, uint64(n))
	}
	if v.kind == KindBytes {
		return append(buf, v.bytes...), nil
	}
	var err error
	for i, e := range v.elems {
		buf, err = encodeValue(buf, e, rule.elem, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodePrimitive(buf []byte, v *Value, rule *TypeRule, path string) ([]byte, error) {
	switch rule.primitive {
	case metadata.PrimitiveBool:
		if v.kind != KindBool {
			return nil, mismatch(path, "expected bool, got %s", v.kind)
		}
		if v.boolean {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case metadata.PrimitiveStr:
		if v.kind != KindString {
			return nil, mismatch(path, "expected string, got %s", v.kind)
		}
		buf = AppendCompactUint64(buf, uint64(len(v.str)))
		return append(buf, v.str...), nil
	}
	if !rule.primitive.IsInteger() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTypeShape, rule.primitive)
	}
	if v.kind != KindUint && v.kind != KindInt {
		return nil, mismatch(path, "expected %s, got %s", rule.primitive, v.kind)
	}
	if !fitsWidth(v, rule.primitive.BitWidth(), rule.primitive.Signed()) {
		return nil, mismatch(path, "%s out of range for %s", v, rule.primitive)
	}
	be := v.number.Bytes32()
	for i, n := 0, rule.primitive.BitWidth()/8; i < n; i++ {
		buf = append(buf, be[31-i])
	}
	return buf, nil
}

// fitsWidth reports whether an integer value is representable in the given width
func fitsWidth(v *Value, width int, signed bool) bool {
	negative := v.kind == KindInt && v.number.Sign() < 0
	if !signed {
		return !negative && v.number.BitLen() <= width
	}
	if negative {
		var mag uint256.Int
		mag.Not(&v.number)
		return mag.BitLen() <= width-1
	}
	return v.number.BitLen() <= width-1
}

func encodeCompact(buf []byte, v *Value, rule *TypeRule, path string) ([]byte, error) {
	// Compacts over single-field wrappers accept the wrapper value too
	for range_i := 0; range_i < maxNewtypeDepth; range_i++ {
		if v.kind != KindComposite || len(v.fields) != 1 {
			break
		}
		v = v.fields[0].Value
		if v == nil {
			return nil, mismatch(path, "missing value for %s", rule)
		}
	}
	if v.kind != KindUint && v.kind != KindInt {
		return nil, mismatch(path, "expected integer for %s, got %s", rule, v.kind)
	}
	if !fitsWidth(v, rule.compactWidth, false) {
		return nil, mismatch(path, "%s out of range for %s", v, rule)
	}
	return AppendCompact(buf, &v.number), nil
}
