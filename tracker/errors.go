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
	"errors"
	"fmt"
)

var (
	ErrOutOfOrderStatus    = errors.New("out of order transaction status")
	ErrFinalityTimeout     = errors.New("timed out waiting for finality")
	ErrStreamClosed        = errors.New("status stream closed before a terminal state")
	ErrTrackerClosed       = errors.New("tracker closed")
	ErrDuplicateSubmission = errors.New("transaction already in flight")
	ErrEventsUnavailable   = errors.New("transaction events unavailable")
	ErrInvalid             = errors.New("transaction invalid")
	ErrDroppedOrUsurped    = errors.New("transaction dropped or usurped")
	ErrDispatchFailed      = errors.New("transaction dispatch failed")
)

// OutOfOrderStatusError is raised when the status stream moves backward or
// skips into a state it cannot reach. It indicates a defect in the transport.
type OutOfOrderStatusError struct {
	From   State
	Status Status
}

func (e *OutOfOrderStatusError) Error() string {
	return fmt.Sprintf("out of order transaction status: %s received in state %s", e.Status, e.From)
}

func (e *OutOfOrderStatusError) Is(target error) bool {
	return target == ErrOutOfOrderStatus
}

// FinalityTimeoutError is returned when a wait ends before a terminal state.
// The transaction is still tracked and may be waited on again.
type FinalityTimeoutError struct {
	LastState State
}

func (e *FinalityTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for finality in state %s", e.LastState)
}

func (e *FinalityTimeoutError) Is(target error) bool {
	return target == ErrFinalityTimeout
}

type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	if e.Reason == "" {
		return "transaction invalid"
	}
	return "transaction invalid: " + e.Reason
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

type DroppedOrUsurpedError struct {
	Reason string
}

func (e *DroppedOrUsurpedError) Error() string {
	if e.Reason == "" {
		return "transaction dropped or usurped"
	}
	return "transaction dropped or usurped: " + e.Reason
}

func (e *DroppedOrUsurpedError) Is(target error) bool {
	return target == ErrDroppedOrUsurped
}

type DispatchFailedError struct {
	Detail *ErrorDetail
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("transaction dispatch failed: %s", e.Detail)
}

func (e *DispatchFailedError) Is(target error) bool {
	return target == ErrDispatchFailed
}
