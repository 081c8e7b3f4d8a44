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
	"errors"
	"fmt"
)

var (
	ErrUnknownType          = errors.New("unknown type")
	ErrUnsupportedTypeShape = errors.New("unsupported type shape")
	ErrValueShapeMismatch   = errors.New("value shape mismatch")
	ErrTruncatedInput       = errors.New("truncated input")
	ErrTrailingBytes        = errors.New("trailing bytes")
	ErrMalformedInput       = errors.New("malformed input")
)

// ShapeMismatchError reports a value that does not fit the type it is
// encoded against. Path locates the offending member, e.g. "owner.Id[3]".
type ShapeMismatchError struct {
	Path   string
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	if e.Path == "" {
		return "value shape mismatch: " + e.Reason
	}
	return fmt.Sprintf("value shape mismatch at %s: %s", e.Path, e.Reason)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrValueShapeMismatch
}

func mismatch(path string, format string, args ...any) error {
	return &ShapeMismatchError{
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	}
}

// TrailingBytesError is returned alongside a successfully decoded value when
// the input was not fully consumed
type TrailingBytesError struct {
	Remaining int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("trailing bytes: %d bytes not consumed", e.Remaining)
}

func (e *TrailingBytesError) Is(target error) bool {
	return target == ErrTrailingBytes
}
