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

// Package substrate is a client engine for chains whose runtime describes
// itself through metadata. A Session owns one metadata document and the
// encoding rules resolved from it, and exposes call building, storage key
// building, storage value decoding and transaction tracking on top of them.
//
// Transport, signing and metadata parsing are collaborators supplied through
// the interfaces in this package. The rpc package provides a transport that
// also serves as a metadata source.
package substrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gosubstrate/call"
	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/scale"
	"github.com/blinklabs-io/gosubstrate/storage"
	"github.com/blinklabs-io/gosubstrate/tracker"
	"github.com/blinklabs-io/gosubstrate/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// MetadataSource fetches the runtime metadata of the connected node
type MetadataSource interface {
	Metadata(ctx context.Context) (*metadata.Metadata, error)
}

// Signer turns an encoded call into a signed extrinsic. Nonce and mortality
// are the signer's concern.
type Signer interface {
	Sign(ctx context.Context, c call.EncodedCall) (tracker.SignedExtrinsic, error)
}

// StorageReader reads raw storage values. A nil value with no error means
// nothing is stored under the key.
type StorageReader interface {
	ReadStorage(ctx context.Context, key storage.Key) ([]byte, error)
}

// Transport submits extrinsics and reads storage
type Transport interface {
	tracker.Submitter
	StorageReader
}

// BlockReader reads block bodies and historical storage
type BlockReader interface {
	BlockExtrinsics(ctx context.Context, block hashing.Blake2b256) ([][]byte, error)
	ReadStorageAt(ctx context.Context, key storage.Key, block hashing.Blake2b256) ([]byte, error)
}

// runtime holds everything derived from one metadata document
type runtime struct {
	md       *metadata.Metadata
	registry *scale.Registry
	calls    *call.Builder
	storage  *storage.Builder
}

func newRuntime(md *metadata.Metadata) *runtime {
	registry := scale.NewRegistry(md.Types)
	return &runtime{
		md:       md,
		registry: registry,
		calls:    call.NewBuilder(md, registry),
		storage:  storage.NewBuilder(md, registry),
	}
}

// Session is a client for one runtime, with its metadata and in-flight transactions
type Session struct {
	logger            *slog.Logger
	errorChan         chan error
	trackerErrorChan  chan error
	source            MetadataSource
	initialMetadata   *metadata.Metadata
	transport         Transport
	signer            Signer
	finalityTimeout   time.Duration
	metricsRegisterer prometheus.Registerer
	runtime           atomic.Pointer[runtime]
	reloadMutex       sync.Mutex
	tracker           *tracker.Tracker
	failMutex         sync.Mutex
	failErr           error
	closers           []func() error
	doneSignal        *utils.DoneSignal
	waitGroup         sync.WaitGroup
	onceClose         sync.Once
}

// New returns a session for the runtime described by the configured metadata,
// fetching it from the metadata source when none is given directly
func New(ctx context.Context, options ...SessionOptionFunc) (*Session, error) {
	s := &Session{
		trackerErrorChan: make(chan error, 10),
		doneSignal:       utils.NewDoneSignal(),
	}
	// Apply provided options functions
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "session")
	if s.errorChan == nil {
		s.errorChan = make(chan error, 10)
	}
	md := s.initialMetadata
	if md == nil {
		if s.source == nil {
			return nil, ErrNoMetadata
		}
		var err error
		md, err = s.source.Metadata(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch metadata: %w", err)
		}
	}
	s.runtime.Store(newRuntime(md))
	if s.transport != nil {
		if err := s.setupTracker(); err != nil {
			return nil, err
		}
	}
	s.logger.Debug(
		"session ready",
		"spec_version",
		md.SpecVersion,
		"pallets",
		len(md.Pallets),
		"types",
		len(md.Types),
	)
	return s, nil
}

func (s *Session) setupTracker() error {
	trackerOptions := []tracker.TrackerOptionFunc{
		tracker.WithLogger(s.logger),
		tracker.WithErrorChan(s.trackerErrorChan),
		tracker.WithDispatchErrorFunc(s.dispatchError),
	}
	if reader, ok := s.transport.(BlockReader); ok {
		trackerOptions = append(
			trackerOptions,
			tracker.WithEventSource(&eventSource{session: s, reader: reader}),
		)
	}
	if s.metricsRegisterer != nil {
		metrics, err := tracker.NewMetrics(s.metricsRegisterer)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		trackerOptions = append(trackerOptions, tracker.WithMetrics(metrics))
	}
	cfg := tracker.NewConfig(trackerOptions...)
	s.tracker = tracker.New(s.transport, &cfg)
	s.waitGroup.Add(1)
	go s.watchErrors()
	return nil
}

// watchErrors fails the session on status stream defects and forwards them
// to the error channel
func (s *Session) watchErrors() {
	defer s.waitGroup.Done()
	for {
		select {
		case <-s.doneSignal.GetCh():
			return
		case err := <-s.trackerErrorChan:
			if errors.Is(err, tracker.ErrOutOfOrderStatus) {
				s.failMutex.Lock()
				if s.failErr == nil {
					s.failErr = err
				}
				s.failMutex.Unlock()
			}
			select {
			case s.errorChan <- err:
			default:
				s.logger.Warn(
					"error channel full, dropping error",
					"error",
					err,
				)
			}
		}
	}
}

// ErrorChan returns the channel for asynchronous errors
func (s *Session) ErrorChan() chan error {
	return s.errorChan
}

// Err returns the defect that failed the session, if any
func (s *Session) Err() error {
	s.failMutex.Lock()
	defer s.failMutex.Unlock()
	return s.failErr
}

func (s *Session) view() *runtime {
	return s.runtime.Load()
}

func (s *Session) usable() error {
	if s.doneSignal.IsClosed() {
		return ErrSessionClosed
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}
	return nil
}

// active returns the current runtime if the session can still be used
func (s *Session) active() (*runtime, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	rt := s.view()
	if rt.registry == nil {
		return nil, ErrSessionClosed
	}
	return rt, nil
}

// Metadata returns a copy of the current metadata document
func (s *Session) Metadata() (*metadata.Metadata, error) {
	return s.view().md.Clone()
}

// Pallets returns the names of the runtime's pallets in declaration order
func (s *Session) Pallets() []string {
	return s.view().md.PalletNames()
}

func (s *Session) SpecVersion() uint32 {
	return s.view().md.SpecVersion
}

// Registry returns the encoding rules of the current runtime. It is nil once
// the session is closed.
func (s *Session) Registry() *scale.Registry {
	return s.view().registry
}

// BuildCall encodes a call to a pallet function with positional arguments
func (s *Session) BuildCall(pallet string, function string, args ...*scale.Value) (call.EncodedCall, error) {
	rt, err := s.active()
	if err != nil {
		return call.EncodedCall{}, err
	}
	return rt.calls.Build(pallet, function, args)
}

// BuildStorageKey returns the full key of a storage item. Maps take one
// argument per key hasher.
func (s *Session) BuildStorageKey(pallet string, item string, args ...*scale.Value) (storage.Key, error) {
	rt, err := s.active()
	if err != nil {
		return nil, err
	}
	return rt.storage.Key(pallet, item, args)
}

// DecodeStorageValue decodes raw storage bytes as the item's value type. Nil
// data decodes to a nil value.
func (s *Session) DecodeStorageValue(pallet string, item string, data []byte) (*scale.Value, error) {
	rt, err := s.active()
	if err != nil {
		return nil, err
	}
	return rt.storage.Decode(pallet, item, data)
}

// FetchStorage reads and decodes a storage item. It returns nil when nothing
// is stored.
func (s *Session) FetchStorage(ctx context.Context, pallet string, item string, args ...*scale.Value) (*scale.Value, error) {
	data, err := s.fetchStorage(ctx, pallet, item, args)
	if err != nil || data == nil {
		return nil, err
	}
	return s.DecodeStorageValue(pallet, item, data)
}

// FetchStorageOrDefault is FetchStorage falling back to the item's declared default
func (s *Session) FetchStorageOrDefault(ctx context.Context, pallet string, item string, args ...*scale.Value) (*scale.Value, error) {
	data, err := s.fetchStorage(ctx, pallet, item, args)
	if err != nil {
		return nil, err
	}
	if data == nil {
		rt, err := s.active()
		if err != nil {
			return nil, err
		}
		return rt.storage.Default(pallet, item)
	}
	return s.DecodeStorageValue(pallet, item, data)
}

func (s *Session) fetchStorage(ctx context.Context, pallet string, item string, args []*scale.Value) ([]byte, error) {
	key, err := s.BuildStorageKey(pallet, item, args...)
	if err != nil {
		return nil, err
	}
	if s.transport == nil {
		return nil, ErrNoTransport
	}
	data, err := s.transport.ReadStorage(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", pallet, item, err)
	}
	return data, nil
}

// Sign asks the signer to sign a call built against the current runtime
func (s *Session) Sign(ctx context.Context, c call.EncodedCall) (tracker.SignedExtrinsic, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if s.signer == nil {
		return nil, ErrNoSigner
	}
	if current := s.SpecVersion(); c.SpecVersion() != current {
		return nil, fmt.Errorf(
			"%w: %s built for spec version %d, runtime is at %d",
			ErrStaleEncoding,
			c,
			c.SpecVersion(),
			current,
		)
	}
	return s.signer.Sign(ctx, c)
}

// SubmitAndTrack submits a signed extrinsic and returns a handle tracking it.
// Submissions reach the transport in call order.
func (s *Session) SubmitAndTrack(ctx context.Context, ext tracker.SignedExtrinsic) (*tracker.Handle, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, ErrNoTransport
	}
	return s.tracker.SubmitAndTrack(ctx, ext)
}

// SignAndSubmit signs a call and submits it
func (s *Session) SignAndSubmit(ctx context.Context, c call.EncodedCall) (*tracker.Handle, error) {
	ext, err := s.Sign(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.SubmitAndTrack(ctx, ext)
}

// AwaitFinal waits for a transaction's outcome. An optional timeout overrides
// the session's finality timeout for this call; zero waits until ctx is done.
// Timing out leaves the transaction tracked, so the call may be repeated.
func (s *Session) AwaitFinal(
	ctx context.Context,
	h *tracker.Handle,
	timeout ...time.Duration,
) (*tracker.Outcome, error) {
	return h.AwaitFinal(ctx, s.awaitTimeout(timeout))
}

// AwaitFinalSuccess waits for a transaction to finalize and returns its events,
// or the error describing why it did not succeed. The optional timeout works as
// in AwaitFinal.
func (s *Session) AwaitFinalSuccess(
	ctx context.Context,
	h *tracker.Handle,
	timeout ...time.Duration,
) ([]tracker.Event, error) {
	return h.AwaitFinalSuccess(ctx, s.awaitTimeout(timeout))
}

func (s *Session) awaitTimeout(timeout []time.Duration) time.Duration {
	if len(timeout) > 0 {
		return timeout[0]
	}
	return s.finalityTimeout
}

// Reload fetches metadata again and replaces the current document, e.g. after a
// runtime upgrade. Calls built before the reload can no longer be signed if the
// spec version changed.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.source == nil {
		return ErrNoMetadata
	}
	s.reloadMutex.Lock()
	defer s.reloadMutex.Unlock()
	md, err := s.source.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("fetch metadata: %w", err)
	}
	previous := s.view().md.SpecVersion
	s.runtime.Store(newRuntime(md))
	s.logger.Info(
		"metadata reloaded",
		"previous_spec_version",
		previous,
		"spec_version",
		md.SpecVersion,
	)
	return nil
}

// Close stops tracking all transactions and releases the session's resources.
// Transactions still in flight end with tracker.ErrTrackerClosed.
func (s *Session) Close() error {
	var err error
	s.onceClose.Do(func() {
		s.doneSignal.Close()
		if s.tracker != nil {
			err = s.tracker.Close()
		}
		// Wait for other goroutines to finish
		s.waitGroup.Wait()
		// Drop the resolved type rules, keeping only the document
		s.reloadMutex.Lock()
		s.runtime.Store(&runtime{md: s.view().md})
		s.reloadMutex.Unlock()
		for _, closer := range s.closers {
			if closeErr := closer(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		close(s.errorChan)
	})
	return err
}
