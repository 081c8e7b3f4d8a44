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

// Package tracker follows submitted transactions through their lifecycle and
// determines their terminal outcome.
//
// Each tracked transaction gets a Handle whose state only ever moves forward
// through Submitted, PoolAccepted, IncludedInBlock and Finalized, or ends in
// Invalid or DroppedOrUsurped. Whether the runtime accepted the transaction is
// judged separately, from the events it emitted.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/utils"
)

type Tracker struct {
	config       *Config
	logger       *slog.Logger
	submitter    Submitter
	stateMap     StateMap
	submitMutex  sync.Mutex
	closed       bool
	handlesMutex sync.Mutex
	handles      map[hashing.Blake2b256]*Handle
	ctx          context.Context
	cancel       context.CancelFunc
	doneSignal   *utils.DoneSignal
	waitGroup    sync.WaitGroup
	onceClose    sync.Once
}

// New returns a tracker that submits through submitter
func New(submitter Submitter, cfg *Config) *Tracker {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	if cfg.DispatchErrorFunc == nil {
		cfg.DispatchErrorFunc = DefaultDispatchError
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		config:     cfg,
		logger:     logger.With("component", "tracker"),
		submitter:  submitter,
		stateMap:   LifecycleStateMap.Copy(),
		handles:    make(map[hashing.Blake2b256]*Handle),
		ctx:        ctx,
		cancel:     cancel,
		doneSignal: utils.NewDoneSignal(),
	}
}

// SubmitAndTrack submits a signed extrinsic and starts following its status
// stream. Submissions are handed to the transport one at a time, in call order.
func (t *Tracker) SubmitAndTrack(ctx context.Context, ext SignedExtrinsic) (*Handle, error) {
	t.submitMutex.Lock()
	defer t.submitMutex.Unlock()
	if t.closed {
		return nil, ErrTrackerClosed
	}
	hash := ext.Hash()
	if _, ok := t.Handle(hash); ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSubmission, hash.Hex())
	}
	sub, err := t.submitter.SubmitAndWatch(ctx, ext)
	if err != nil {
		return nil, fmt.Errorf("submit transaction %s: %w", hash.Hex(), err)
	}
	h := newHandle(hash, sub)
	t.handlesMutex.Lock()
	t.handles[hash] = h
	t.handlesMutex.Unlock()
	t.config.Metrics.RecordSubmit()
	t.logger.Debug(
		"transaction submitted",
		"tx_hash",
		hash.Hex(),
	)
	t.waitGroup.Add(1)
	go t.watch(h)
	return h, nil
}

// AwaitFinal waits for the terminal outcome of a handle
func (t *Tracker) AwaitFinal(ctx context.Context, h *Handle, timeout time.Duration) (*Outcome, error) {
	return h.AwaitFinal(ctx, timeout)
}

// Handle returns the in-flight handle for a transaction hash
func (t *Tracker) Handle(hash hashing.Blake2b256) (*Handle, bool) {
	t.handlesMutex.Lock()
	defer t.handlesMutex.Unlock()
	h, ok := t.handles[hash]
	return h, ok
}

// InFlight returns the number of transactions not yet in a terminal state
func (t *Tracker) InFlight() int {
	t.handlesMutex.Lock()
	defer t.handlesMutex.Unlock()
	return len(t.handles)
}

// Close stops tracking. Unfinished handles fail with ErrTrackerClosed. The
// submitted transactions themselves are not affected.
func (t *Tracker) Close() error {
	t.onceClose.Do(func() {
		t.submitMutex.Lock()
		t.closed = true
		t.submitMutex.Unlock()
		t.doneSignal.Close()
		t.cancel()
		t.waitGroup.Wait()
	})
	return nil
}

func (t *Tracker) watch(h *Handle) {
	defer t.waitGroup.Done()
	defer t.release(h)
	updates := h.sub.Updates()
	for {
		select {
		case <-t.doneSignal.GetCh():
			t.unsubscribe(h)
			t.fail(h, ErrTrackerClosed)
			return
		case n, ok := <-updates:
			if !ok {
				err := ErrStreamClosed
				if subErr := h.sub.Err(); subErr != nil {
					err = fmt.Errorf("%w: %w", ErrStreamClosed, subErr)
				}
				t.fail(h, err)
				return
			}
			if done := t.apply(h, n); done {
				t.unsubscribe(h)
				return
			}
		}
	}
}

// apply advances a handle by one notification and reports whether it is finished
func (t *Tracker) apply(h *Handle, n Notification) bool {
	h.mutex.Lock()
	from := h.state
	next, ok := t.stateMap.Next(from, n.Status)
	if !ok {
		h.mutex.Unlock()
		err := &OutOfOrderStatusError{From: from, Status: n.Status}
		t.logger.Error(
			"out of order transaction status",
			"tx_hash",
			h.hash.Hex(),
			"state",
			from.String(),
			"status",
			n.Status.String(),
		)
		t.fail(h, err)
		t.reportError(err)
		return true
	}
	if next != from {
		h.history = append(h.history, next)
	}
	h.state = next
	switch n.Status {
	case StatusRetracted:
		h.blockHash = hashing.Blake2b256{}
		h.events = nil
		h.eventsKnown = false
	case StatusIncludedInBlock, StatusFinalized:
		h.blockHash = n.BlockHash
		if n.Events != nil {
			h.events = n.Events
			h.eventsBlock = n.BlockHash
			h.eventsKnown = true
		}
	}
	needEvents := (n.Status == StatusIncludedInBlock || n.Status == StatusFinalized) &&
		(!h.eventsKnown || h.eventsBlock != n.BlockHash)
	h.mutex.Unlock()
	t.logger.Debug(
		"transaction status",
		"tx_hash",
		h.hash.Hex(),
		"status",
		n.Status.String(),
		"state",
		next.String(),
	)
	if needEvents {
		if err := t.loadEvents(h, n.BlockHash); err != nil {
			if next == StateFinalized {
				t.fail(h, fmt.Errorf("%w: block %s: %w", ErrEventsUnavailable, n.BlockHash.Hex(), err))
				return true
			}
			// Retried on finalization
			t.logger.Warn(
				"failed to load transaction events",
				"tx_hash",
				h.hash.Hex(),
				"block_hash",
				n.BlockHash.Hex(),
				"error",
				err,
			)
		}
	}
	switch next {
	case StateFinalized:
		h.mutex.Lock()
		events := h.events
		h.mutex.Unlock()
		outcome := &Outcome{
			Kind:      OutcomeSuccess,
			TxHash:    h.hash,
			BlockHash: n.BlockHash,
			Events:    events,
		}
		if detail, failed := t.config.DispatchErrorFunc(events); failed {
			outcome.Kind = OutcomeDispatchFailed
			outcome.DispatchError = detail
		}
		t.complete(h, outcome)
		return true
	case StateInvalid:
		t.complete(h, &Outcome{Kind: OutcomeInvalid, TxHash: h.hash, Reason: n.Reason})
		return true
	case StateDroppedOrUsurped:
		t.complete(h, &Outcome{Kind: OutcomeDroppedOrUsurped, TxHash: h.hash, Reason: n.Reason})
		return true
	}
	return false
}

func (t *Tracker) loadEvents(h *Handle, blockHash hashing.Blake2b256) error {
	var events []Event
	if t.config.EventSource != nil {
		ctx := t.ctx
		if t.config.EventTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.config.EventTimeout)
			defer cancel()
		}
		var err error
		events, err = t.config.EventSource.ExtrinsicEvents(ctx, blockHash, h.hash)
		if err != nil {
			return err
		}
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.events = events
	h.eventsBlock = blockHash
	h.eventsKnown = true
	return nil
}

func (t *Tracker) complete(h *Handle, outcome *Outcome) {
	h.finish(outcome, nil)
	t.config.Metrics.RecordOutcome(outcome.Kind, time.Since(h.submittedAt))
	t.logger.Info(
		"transaction finished",
		"tx_hash",
		h.hash.Hex(),
		"outcome",
		outcome.Kind.String(),
	)
}

func (t *Tracker) fail(h *Handle, err error) {
	h.finish(nil, err)
	t.config.Metrics.RecordFailure()
	t.logger.Debug(
		"transaction tracking failed",
		"tx_hash",
		h.hash.Hex(),
		"error",
		err,
	)
}

func (t *Tracker) unsubscribe(h *Handle) {
	if err := h.sub.Unsubscribe(); err != nil {
		t.logger.Debug(
			"failed to unsubscribe from transaction status",
			"tx_hash",
			h.hash.Hex(),
			"error",
			err,
		)
	}
}

// reportError forwards status stream defects to the configured error channel
func (t *Tracker) reportError(err error) {
	if t.config.ErrorChan == nil {
		return
	}
	select {
	case t.config.ErrorChan <- err:
	default:
		t.logger.Error(
			"error channel full, dropping error",
			"error",
			err,
		)
	}
}

func (t *Tracker) release(h *Handle) {
	t.handlesMutex.Lock()
	defer t.handlesMutex.Unlock()
	if t.handles[h.hash] == h {
		delete(t.handles, h.hash)
	}
}
