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
	"log/slog"
	"time"

	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/prometheus/client_golang/prometheus"
)

// SessionOptionFunc is a type that represents functions that modify the Session config
type SessionOptionFunc func(*Session)

// WithMetadataSource specifies where metadata is fetched from, at creation and on Reload
func WithMetadataSource(source MetadataSource) SessionOptionFunc {
	return func(s *Session) {
		s.source = source
	}
}

// WithMetadata specifies an already loaded metadata document. It takes
// precedence over the metadata source at creation.
func WithMetadata(md *metadata.Metadata) SessionOptionFunc {
	return func(s *Session) {
		s.initialMetadata = md
	}
}

// WithTransport specifies the node transport used for submission and storage
// reads. If it also implements BlockReader, transaction events are loaded
// from the blocks it serves.
func WithTransport(transport Transport) SessionOptionFunc {
	return func(s *Session) {
		s.transport = transport
	}
}

func WithSigner(signer Signer) SessionOptionFunc {
	return func(s *Session) {
		s.signer = signer
	}
}

// WithLogger specifies the logger. slog.Default() is used otherwise
func WithLogger(logger *slog.Logger) SessionOptionFunc {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithErrorChan specifies the error channel to use. If none is provided, one will be created
func WithErrorChan(errorChan chan error) SessionOptionFunc {
	return func(s *Session) {
		s.errorChan = errorChan
	}
}

// WithFinalityTimeout specifies how long AwaitFinal waits. Zero waits until the
// context is done
func WithFinalityTimeout(timeout time.Duration) SessionOptionFunc {
	return func(s *Session) {
		s.finalityTimeout = timeout
	}
}

// WithMetricsRegisterer enables transaction metrics on the given registry
func WithMetricsRegisterer(reg prometheus.Registerer) SessionOptionFunc {
	return func(s *Session) {
		s.metricsRegisterer = reg
	}
}
