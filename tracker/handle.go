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
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/utils"
)

// Handle follows one submitted transaction. Only the tracker mutates it.
type Handle struct {
	hash        hashing.Blake2b256
	submittedAt time.Time
	sub         Subscription
	doneSignal  *utils.DoneSignal

	mutex       sync.Mutex
	state       State
	history     []State
	blockHash   hashing.Blake2b256
	events      []Event
	eventsBlock hashing.Blake2b256
	eventsKnown bool
	outcome     *Outcome
	err         error
}

func newHandle(hash hashing.Blake2b256, sub Subscription) *Handle {
	return &Handle{
		hash:        hash,
		submittedAt: time.Now(),
		sub:         sub,
		doneSignal:  utils.NewDoneSignal(),
		state:       StateSubmitted,
		history:     []State{StateSubmitted},
	}
}

func (h *Handle) Hash() hashing.Blake2b256 {
	return h.hash
}

func (h *Handle) State() State {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.state
}

// History returns every state the transaction went through, in order
func (h *Handle) History() []State {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return slices.Clone(h.history)
}

// BlockHash returns the block currently holding the transaction
func (h *Handle) BlockHash() (hashing.Blake2b256, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.blockHash, !h.blockHash.IsZero()
}

// Done is closed once the transaction reaches a terminal state or tracking fails
func (h *Handle) Done() <-chan struct{} {
	return h.doneSignal.GetCh()
}

// Result returns the outcome of a finished handle without waiting
func (h *Handle) Result() (*Outcome, bool, error) {
	select {
	case <-h.doneSignal.GetCh():
	default:
		return nil, false, nil
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.outcome, true, h.err
}

// AwaitFinal waits for the terminal outcome. A timeout of zero waits until ctx
// is done. Ending the wait early leaves the transaction tracked, so the
// caller may wait again later.
func (h *Handle) AwaitFinal(ctx context.Context, timeout time.Duration) (*Outcome, error) {
	// A finished handle wins over an expired ctx
	if outcome, done, err := h.Result(); done {
		return outcome, err
	}
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case <-h.doneSignal.GetCh():
		outcome, _, err := h.Result()
		return outcome, err
	case <-timeoutCh:
		return nil, &FinalityTimeoutError{LastState: h.State()}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitFinalSuccess waits for the terminal outcome and returns the events of a
// successful transaction, or the outcome's error
func (h *Handle) AwaitFinalSuccess(ctx context.Context, timeout time.Duration) ([]Event, error) {
	outcome, err := h.AwaitFinal(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, err
	}
	return outcome.Events, nil
}

func (h *Handle) finish(outcome *Outcome, err error) {
	h.mutex.Lock()
	h.outcome = outcome
	h.err = err
	h.mutex.Unlock()
	h.doneSignal.Close()
}
