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

package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/tracker"
	"github.com/blinklabs-io/gosubstrate/utils"
	"github.com/tidwall/gjson"
)

const (
	methodSubmitAndWatch = "author_submitAndWatchExtrinsic"
	methodUnwatch        = "author_unwatchExtrinsic"
	methodSubmit         = "author_submitExtrinsic"
)

// Submit hands an extrinsic to the node without watching it
func (c *Client) Submit(ctx context.Context, ext tracker.SignedExtrinsic) (hashing.Blake2b256, error) {
	result, err := c.Call(ctx, methodSubmit, ext.Hex())
	if err != nil {
		return hashing.Blake2b256{}, err
	}
	hash, err := hashing.ParseBlake2b256(result.String())
	if err != nil {
		return hashing.Blake2b256{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return hash, nil
}

// SubmitAndWatch hands an extrinsic to the node and streams its pool statuses
func (c *Client) SubmitAndWatch(ctx context.Context, ext tracker.SignedExtrinsic) (tracker.Subscription, error) {
	sub, err := c.Subscribe(ctx, methodSubmitAndWatch, methodUnwatch, ext.Hex())
	if err != nil {
		return nil, err
	}
	w := &statusWatch{
		client:  c,
		sub:     sub,
		logger:  c.logger.With("tx", ext.Hash().String()),
		updates: make(chan tracker.Notification),
		stop:    utils.NewDoneSignal(),
	}
	c.waitGroup.Add(1)
	go w.run()
	return w, nil
}

// statusWatch translates the node's transaction status notifications
type statusWatch struct {
	client  *Client
	sub     *Subscription
	logger  *slog.Logger
	updates chan tracker.Notification
	stop    *utils.DoneSignal
	mutex   sync.Mutex
	err     error
}

func (w *statusWatch) Updates() <-chan tracker.Notification {
	return w.updates
}

func (w *statusWatch) Err() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.err
}

func (w *statusWatch) Unsubscribe() error {
	w.stop.Close()
	return w.sub.Unsubscribe()
}

func (w *statusWatch) run() {
	defer w.client.waitGroup.Done()
	defer close(w.updates)
	// Pool statuses re-announced after a retraction are dropped until the
	// transaction lands in a block again
	retracted := false
	for {
		var result gjson.Result
		var ok bool
		select {
		case result, ok = <-w.sub.Notifications():
		case <-w.stop.GetCh():
			return
		}
		if !ok {
			w.setErr(w.sub.Err())
			return
		}
		n, err := parseStatus(result)
		if err != nil {
			w.logger.Warn(
				"transaction status stream ended",
				"error",
				err,
			)
			w.setErr(err)
			_ = w.sub.Unsubscribe()
			return
		}
		switch n.Status {
		case tracker.StatusPoolAccepted:
			if retracted {
				w.logger.Debug("dropping pool status after retraction")
				continue
			}
		case tracker.StatusRetracted:
			retracted = true
		case tracker.StatusIncludedInBlock:
			retracted = false
		}
		select {
		case w.updates <- n:
		case <-w.stop.GetCh():
			return
		case <-w.client.doneSignal.GetCh():
			w.setErr(w.client.Err())
			return
		}
	}
}

func (w *statusWatch) setErr(err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.err = err
}

// parseStatus maps a transaction status notification. Unit statuses are plain
// strings and the others are single-key objects.
func parseStatus(result gjson.Result) (tracker.Notification, error) {
	if result.Type == gjson.String {
		switch result.String() {
		case "future", "ready":
			return tracker.Notification{Status: tracker.StatusPoolAccepted}, nil
		case "dropped":
			return tracker.Notification{
				Status: tracker.StatusDroppedOrUsurped,
				Reason: "dropped from the transaction pool",
			}, nil
		case "invalid":
			return tracker.Notification{
				Status: tracker.StatusInvalid,
				Reason: "rejected by the transaction pool",
			}, nil
		}
		return tracker.Notification{}, fmt.Errorf("%w: %q", ErrUnknownStatus, result.String())
	}
	if !result.IsObject() {
		return tracker.Notification{}, fmt.Errorf("%w: %s", ErrUnknownStatus, result.Raw)
	}
	var name string
	var value gjson.Result
	result.ForEach(func(k, v gjson.Result) bool {
		name = k.String()
		value = v
		return false
	})
	if name == "broadcast" {
		return tracker.Notification{Status: tracker.StatusPoolAccepted}, nil
	}
	var status tracker.Status
	switch name {
	case "inBlock":
		status = tracker.StatusIncludedInBlock
	case "retracted":
		status = tracker.StatusRetracted
	case "finalized":
		status = tracker.StatusFinalized
	case "usurped":
		status = tracker.StatusDroppedOrUsurped
	case "finalityTimeout":
		return tracker.Notification{}, fmt.Errorf("%w: block %s", ErrNodeFinalityTimeout, value.String())
	default:
		return tracker.Notification{}, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
	}
	hash, err := hashing.ParseBlake2b256(value.String())
	if err != nil {
		return tracker.Notification{}, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, name, err)
	}
	n := tracker.Notification{Status: status}
	if status == tracker.StatusDroppedOrUsurped {
		n.Reason = "usurped by " + hash.Hex()
	} else {
		n.BlockHash = hash
	}
	return n, nil
}
