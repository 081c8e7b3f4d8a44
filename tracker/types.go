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
	"context"
	"encoding/hex"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/scale"
)

// SignedExtrinsic is a signed, submittable transaction
type SignedExtrinsic []byte

// Hash returns the transaction hash, the Blake2b-256 of the encoded extrinsic
func (e SignedExtrinsic) Hash() hashing.Blake2b256 {
	return hashing.Blake2b256Hash(e)
}

func (e SignedExtrinsic) Hex() string {
	return "0x" + hex.EncodeToString(e)
}

// Notification is one entry of the status stream of a submitted transaction
type Notification struct {
	Status Status
	// Block the transaction was included in or finalized with
	BlockHash hashing.Blake2b256
	// Reason given with Invalid and DroppedOrUsurped statuses
	Reason string
	// Events emitted by the transaction, when the transport provides them
	Events []Event
}

// Event is a runtime event emitted by a transaction
type Event struct {
	Pallet string
	Name   string
	Fields *scale.Value
}

// ErrorDetail describes a runtime dispatch error
type ErrorDetail struct {
	Pallet string
	Name   string
	Docs   []string
	Value  *scale.Value
}

func (d *ErrorDetail) String() string {
	if d.Pallet == "" {
		return d.Name
	}
	return d.Pallet + "." + d.Name
}

// Submitter hands a signed extrinsic to the node and streams its statuses
type Submitter interface {
	SubmitAndWatch(ctx context.Context, ext SignedExtrinsic) (Subscription, error)
}

// Subscription is a status stream. Updates is closed when the stream ends, after
// which Err reports why.
type Subscription interface {
	Updates() <-chan Notification
	Err() error
	Unsubscribe() error
}

// EventSource loads the events a transaction emitted in a block
type EventSource interface {
	ExtrinsicEvents(ctx context.Context, blockHash hashing.Blake2b256, txHash hashing.Blake2b256) ([]Event, error)
}

// DispatchErrorFunc inspects transaction events for a dispatch failure
type DispatchErrorFunc func(events []Event) (*ErrorDetail, bool)

// DefaultDispatchError reports a System.ExtrinsicFailed event as a failure
// without decoding its payload
func DefaultDispatchError(events []Event) (*ErrorDetail, bool) {
	for _, ev := range events {
		if ev.Pallet == "System" && ev.Name == "ExtrinsicFailed" {
			return &ErrorDetail{
				Pallet: ev.Pallet,
				Name:   ev.Name,
				Value:  ev.Fields,
			}, true
		}
	}
	return nil, false
}
