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
	"fmt"
	"unicode/utf8"

	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/holiman/uint256"
)

// MaxDepth bounds the nesting of decoded values
const MaxDepth = 256

// Decode decodes one value of the given rule from the start of data and
// returns it along with the number of bytes consumed
func Decode(data []byte, rule *TypeRule) (*Value, int, error) {
	if rule == nil {
		return nil, 0, fmt.Errorf("%w: nil type rule", ErrUnknownType)
	}
	d := decoder{data: data}
	v, err := d.decode(rule)
	if err != nil {
		return nil, 0, err
	}
	return v, d.pos, nil
}

// DecodeExact decodes a value that must span all of data. When bytes remain,
// the decoded value is returned together with a TrailingBytesError.
func DecodeExact(data []byte, rule *TypeRule) (*Value, error) {
	v, n, err := Decode(data, rule)
	if err != nil {
		return nil, err
	}
	if n < len(data) {
		return v, &TrailingBytesError{Remaining: len(data) - n}
	}
	return v, nil
}

type decoder struct {
	data  []byte
	pos   int
	depth int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.pos
}

func (d *decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || d.remaining() < n {
		return nil, fmt.Errorf(
			"%w: %s needs %d bytes at offset %d, %d available",
			ErrTruncatedInput,
			what,
			n,
			d.pos,
			d.remaining(),
		)
	}
	ret := d.data[d.pos : d.pos+n]
	d.pos += n
	return ret, nil
}

func (d *decoder) compact() (*uint256.Int, error) {
	n, size, err := DecodeCompact(d.data[d.pos:])
	if err != nil {
		return nil, fmt.Errorf("offset %d: %w", d.pos, err)
	}
	d.pos += size
	return n, nil
}

func (d *decoder) length(what string) (int, error) {
	n, size, err := decodeLength(d.data[d.pos:])
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", d.pos, err)
	}
	d.pos += size
	// Each element takes at least one byte
	if n > uint64(d.remaining()) {
		return 0, fmt.Errorf(
			"%w: %s of length %d at offset %d, %d bytes available",
			ErrTruncatedInput,
			what,
			n,
			d.pos,
			d.remaining(),
		)
	}
	return int(n), nil
}

func (d *decoder) decode(rule *TypeRule) (*Value, error) {
	switch rule.kind {
	case RulePrimitive:
		return d.primitive(rule)
	case RuleCompact:
		n, err := d.compact()
		if err != nil {
			return nil, err
		}
		if n.BitLen() > rule.compactWidth {
			return nil, fmt.Errorf("%w: compact value %s overflows %s", ErrMalformedInput, n.ToBig(), rule)
		}
		return UintFrom256(n), nil
	}
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > MaxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformedInput, MaxDepth)
	}
	switch rule.kind {
	case RuleSequence:
		n, err := d.length(rule.String())
		if err != nil {
			return nil, err
		}
		return d.elems(rule, n)
	case RuleArray:
		return d.elems(rule, int(rule.length))
	case RuleComposite, RuleTuple:
		return d.fields(rule.fields, rule.named)
	case RuleVariant:
		b, err := d.take(1, rule.String())
		if err != nil {
			return nil, err
		}
		variant, ok := rule.VariantByIndex(b[0])
		if !ok {
			return nil, fmt.Errorf("%w: %s has no variant with index %d", ErrMalformedInput, rule, b[0])
		}
		payload, err := d.fields(variant.Fields, variant.Named)
		if err != nil {
			return nil, err
		}
		return &Value{kind: KindVariant, variant: variant.Name, payload: payload}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedTypeShape, rule)
}

func (d *decoder) fields(fields []FieldRule, named bool) (*Value, error) {
	ret := &Value{kind: KindComposite, named: named, fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		v, err := d.decode(f.Rule)
		if err != nil {
			return nil, err
		}
		ret.fields = append(ret.fields, Field{Name: f.Name, Value: v})
	}
	return ret, nil
}

func (d *decoder) elems(rule *TypeRule, n int) (*Value, error) {
	if rule.isByteSeq() {
		b, err := d.take(n, rule.String())
		if err != nil {
			return nil, err
		}
		return &Value{kind: KindBytes, bytes: bytes.Clone(b)}, nil
	}
	ret := &Value{kind: KindSequence, elems: make([]*Value, 0, min(n, d.remaining()))}
	for range_i := 0; range_i < n; range_i++ {
		v, err := d.decode(rule.elem)
		if err != nil {
			return nil, err
		}
		ret.elems = append(ret.elems, v)
	}
	return ret, nil
}

func (d *decoder) primitive(rule *TypeRule) (*Value, error) {
	switch rule.primitive {
	case metadata.PrimitiveBool:
		b, err := d.take(1, "bool")
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		}
		return nil, fmt.Errorf("%w: invalid bool byte 0x%02x at offset %d", ErrMalformedInput, b[0], d.pos-1)
	case metadata.PrimitiveStr:
		n, err := d.length("str")
		if err != nil {
			return nil, err
		}
		b, err := d.take(n, "str")
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, fmt.Errorf("%w: invalid UTF-8 string at offset %d", ErrMalformedInput, d.pos-n)
		}
		return String(string(b)), nil
	}
	if !rule.primitive.IsInteger() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTypeShape, rule.primitive)
	}
	width := rule.primitive.BitWidth()
	b, err := d.take(width/8, rule.primitive.String())
	if err != nil {
		return nil, err
	}
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	v := &Value{kind: KindUint}
	v.number.SetBytes(be)
	if rule.primitive.Signed() {
		v.kind = KindInt
		// Sign-extend to 256 bits
		if width < 256 && b[len(b)-1]&0x80 != 0 {
			var mask uint256.Int
			mask.Not(&mask)
			mask.Lsh(&mask, uint(width))
			v.number.Or(&v.number, &mask)
		}
	}
	return v, nil
}
