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

package substrate

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/scale"
	"github.com/blinklabs-io/gosubstrate/tracker"
	"golang.org/x/sync/errgroup"
)

const (
	systemPallet = "System"
	eventsItem   = "Events"
)

// eventSource loads a transaction's events from the block it was included in
type eventSource struct {
	session *Session
	reader  BlockReader
}

func (e *eventSource) ExtrinsicEvents(
	ctx context.Context,
	blockHash hashing.Blake2b256,
	txHash hashing.Blake2b256,
) ([]tracker.Event, error) {
	rt, err := e.session.active()
	if err != nil {
		return nil, err
	}
	key, err := rt.storage.Key(systemPallet, eventsItem, nil)
	if err != nil {
		return nil, err
	}
	var extrinsics [][]byte
	var raw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		extrinsics, err = e.reader.BlockExtrinsics(gctx, blockHash)
		return err
	})
	g.Go(func() error {
		var err error
		raw, err = e.reader.ReadStorageAt(gctx, key, blockHash)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	index := -1
	for i, ext := range extrinsics {
		if hashing.Blake2b256Hash(ext) == txHash {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotInBlock, txHash, blockHash)
	}
	var records *scale.Value
	if raw == nil {
		records, err = rt.storage.Default(systemPallet, eventsItem)
	} else {
		records, err = rt.storage.Decode(systemPallet, eventsItem, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode block events: %w", err)
	}
	return extrinsicEvents(records, uint64(index))
}

// extrinsicEvents picks the records emitted while applying the extrinsic at
// index. Each record's event is the runtime's outer enum: its variant names
// the pallet and wraps the pallet's own event enum.
func extrinsicEvents(records *scale.Value, index uint64) ([]tracker.Event, error) {
	var ret []tracker.Event
	for i, record := range records.Elems() {
		phase, ok := record.Field("phase")
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no phase", ErrUnexpectedEvent, i)
		}
		if phase.VariantName() != "ApplyExtrinsic" {
			continue
		}
		if applied, ok := phase.Payload().At(0).AsUint64(); !ok || applied != index {
			continue
		}
		outer, ok := record.Field("event")
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no event", ErrUnexpectedEvent, i)
		}
		inner := outer.Payload().At(0)
		if inner.VariantName() == "" {
			return nil, fmt.Errorf("%w: record %d event %s", ErrUnexpectedEvent, i, outer)
		}
		ret = append(ret, tracker.Event{
			Pallet: outer.VariantName(),
			Name:   inner.VariantName(),
			Fields: inner.Payload(),
		})
	}
	return ret, nil
}
