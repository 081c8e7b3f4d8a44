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

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownModule      = errors.New("unknown module")
	ErrUnknownFunction    = errors.New("unknown function")
	ErrUnknownStorageItem = errors.New("unknown storage item")
	ErrUnknownError       = errors.New("unknown module error")
	ErrArityMismatch      = errors.New("argument count mismatch")
)

// ArityMismatchError reports a call or storage lookup with the wrong number of arguments
type ArityMismatchError struct {
	Module   string
	Name     string
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf(
		"argument count mismatch for %s.%s: expected %d, got %d",
		e.Module,
		e.Name,
		e.Expected,
		e.Got,
	)
}

func (e *ArityMismatchError) Is(target error) bool {
	return target == ErrArityMismatch
}
