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

package tracker

import (
	"fmt"

	"github.com/blinklabs-io/gosubstrate/hashing"
)

type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeDispatchFailed
	OutcomeInvalid
	OutcomeDroppedOrUsurped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDispatchFailed:
		return "dispatch_failed"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeDroppedOrUsurped:
		return "dropped_or_usurped"
	}
	return fmt.Sprintf("OutcomeKind(%d)", uint8(k))
}

// Outcome is the terminal result of a tracked transaction. Dispatch failure
// is independent of the lifecycle: a DispatchFailed transaction is still
// finalized.
type Outcome struct {
	Kind      OutcomeKind
	TxHash    hashing.Blake2b256
	BlockHash hashing.Blake2b256
	// Events emitted by the transaction, for finalized outcomes
	Events        []Event
	DispatchError *ErrorDetail
	// Reason reported by the node for Invalid and DroppedOrUsurped outcomes
	Reason string
}

// Err returns nil for a successful outcome and a typed error otherwise
func (o *Outcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeDispatchFailed:
		return &DispatchFailedError{Detail: o.DispatchError}
	case OutcomeInvalid:
		return &InvalidError{Reason: o.Reason}
	case OutcomeDroppedOrUsurped:
		return &DroppedOrUsurpedError{Reason: o.Reason}
	}
	return fmt.Errorf("unknown outcome: %s", o.Kind)
}
