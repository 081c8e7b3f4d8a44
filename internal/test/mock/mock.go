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

// Package mock provides scripted stand-ins for the node collaborators used in tests
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/blinklabs-io/gosubstrate/call"
	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/storage"
	"github.com/blinklabs-io/gosubstrate/tracker"
	"github.com/blinklabs-io/gosubstrate/utils"
)

var ErrNotFound = errors.New("not found")

// Subscription is a status stream driven by the test
type Subscription struct {
	updates chan tracker.Notification
	stop    *utils.DoneSignal
	mutex   sync.Mutex
	err     error
	ended   bool
}

func NewSubscription() *Subscription {
	return &Subscription{
		updates: make(chan tracker.Notification),
		stop:    utils.NewDoneSignal(),
	}
}

func (s *Subscription) Updates() <-chan tracker.Notification {
	return s.updates
}

func (s *Subscription) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.err
}

func (s *Subscription) Unsubscribe() error {
	s.stop.Close()
	return nil
}

func (s *Subscription) Unsubscribed() bool {
	return s.stop.IsClosed()
}

// Send delivers a notification. It returns false when the consumer has unsubscribed.
func (s *Subscription) Send(n tracker.Notification) bool {
	select {
	case s.updates <- n:
		return true
	case <-s.stop.GetCh():
		return false
	}
}

// End closes the stream with the given reason
func (s *Subscription) End(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.ended {
		return
	}
	s.err = err
	s.ended = true
	close(s.updates)
}

// Script is the status stream played back for one submission
type Script struct {
	Notifications []tracker.Notification
	// End closes the stream once all notifications are delivered
	End    bool
	EndErr error
}

// Submitter plays back one script per submission, in order. Submissions
// beyond the scripts get a stream the test drives through Subscription.
type Submitter struct {
	Scripts   []Script
	SubmitErr error

	mutex     sync.Mutex
	submitted []tracker.SignedExtrinsic
	subs      []*Subscription
	waitGroup sync.WaitGroup
}

func (m *Submitter) SubmitAndWatch(ctx context.Context, ext tracker.SignedExtrinsic) (tracker.Subscription, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	sub := NewSubscription()
	m.submitted = append(m.submitted, ext)
	m.subs = append(m.subs, sub)
	if len(m.Scripts) > 0 {
		script := m.Scripts[0]
		m.Scripts = m.Scripts[1:]
		m.waitGroup.Add(1)
		go func() {
			defer m.waitGroup.Done()
			for _, n := range script.Notifications {
				if !sub.Send(n) {
					return
				}
			}
			if script.End {
				sub.End(script.EndErr)
			}
		}()
	}
	return sub, nil
}

// Submitted returns the submitted extrinsics in submission order
func (m *Submitter) Submitted() []tracker.SignedExtrinsic {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ret := make([]tracker.SignedExtrinsic, len(m.submitted))
	copy(ret, m.submitted)
	return ret
}

func (m *Submitter) Subscription(idx int) *Subscription {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if idx >= len(m.subs) {
		return nil
	}
	return m.subs[idx]
}

// Wait blocks until every script has been played back
func (m *Submitter) Wait() {
	m.waitGroup.Wait()
}

// EventSource serves canned events per block
type EventSource struct {
	Events map[hashing.Blake2b256][]tracker.Event
	// Errs is consumed one entry per call before Events is consulted
	Errs []error

	mutex sync.Mutex
	calls []hashing.Blake2b256
}

func (e *EventSource) ExtrinsicEvents(
	ctx context.Context,
	blockHash hashing.Blake2b256,
	txHash hashing.Blake2b256,
) ([]tracker.Event, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.calls = append(e.calls, blockHash)
	if len(e.Errs) > 0 {
		err := e.Errs[0]
		e.Errs = e.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	events, ok := e.Events[blockHash]
	if !ok {
		return nil, ErrNotFound
	}
	return events, nil
}

// Calls returns the blocks events were requested for
func (e *EventSource) Calls() []hashing.Blake2b256 {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	ret := make([]hashing.Blake2b256, len(e.calls))
	copy(ret, e.calls)
	return ret
}

// Transport is a Submitter that also serves storage from a map keyed by the
// hex storage key
type Transport struct {
	*Submitter
	Storage map[string][]byte
	ReadErr error

	storageMutex sync.Mutex
	reads        []storage.Key
}

func (t *Transport) ReadStorage(ctx context.Context, key storage.Key) ([]byte, error) {
	t.storageMutex.Lock()
	defer t.storageMutex.Unlock()
	t.reads = append(t.reads, key)
	if t.ReadErr != nil {
		return nil, t.ReadErr
	}
	return t.Storage[key.Hex()], nil
}

// Reads returns the storage keys read so far
func (t *Transport) Reads() []storage.Key {
	t.storageMutex.Lock()
	defer t.storageMutex.Unlock()
	ret := make([]storage.Key, len(t.reads))
	copy(ret, t.reads)
	return ret
}

// Node is a Transport that also serves block bodies and per-block storage
type Node struct {
	Transport
	Blocks       map[hashing.Blake2b256][][]byte
	BlockStorage map[hashing.Blake2b256]map[string][]byte
}

func (n *Node) BlockExtrinsics(ctx context.Context, block hashing.Blake2b256) ([][]byte, error) {
	exts, ok := n.Blocks[block]
	if !ok {
		return nil, ErrNotFound
	}
	return exts, nil
}

func (n *Node) ReadStorageAt(ctx context.Context, key storage.Key, block hashing.Blake2b256) ([]byte, error) {
	values, ok := n.BlockStorage[block]
	if !ok {
		return nil, ErrNotFound
	}
	return values[key.Hex()], nil
}

// Signer prefixes the call bytes with a fixed header instead of signing
type Signer struct {
	Header []byte
	Err    error

	mutex sync.Mutex
	calls []call.EncodedCall
}

func (s *Signer) Sign(ctx context.Context, c call.EncodedCall) (tracker.SignedExtrinsic, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.calls = append(s.calls, c)
	ret := make([]byte, 0, len(s.Header)+len(c.Bytes()))
	ret = append(ret, s.Header...)
	ret = append(ret, c.Bytes()...)
	return tracker.SignedExtrinsic(ret), nil
}

func (s *Signer) Calls() []call.EncodedCall {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ret := make([]call.EncodedCall, len(s.calls))
	copy(ret, s.calls)
	return ret
}

// MetadataSource returns its documents in order, repeating the last one
type MetadataSource struct {
	Docs []*metadata.Metadata
	Err  error

	mutex sync.Mutex
	calls int
}

func (m *MetadataSource) Metadata(ctx context.Context) (*metadata.Metadata, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Docs) == 0 {
		return nil, ErrNotFound
	}
	idx := min(m.calls, len(m.Docs)) - 1
	return m.Docs[idx], nil
}

// Calls returns how many times metadata was requested
func (m *MetadataSource) Calls() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.calls
}
