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
	"log/slog"
	"time"

	"github.com/blinklabs-io/gosubstrate/metadata"
)

// MetadataDecoder parses the metadata document served by the node
type MetadataDecoder func(data []byte) (*metadata.Metadata, error)

// Config is used to configure a Client
type Config struct {
	Logger             *slog.Logger
	MetadataDecoder    MetadataDecoder
	HandshakeTimeout   time.Duration
	RequestTimeout     time.Duration
	UnsubscribeTimeout time.Duration
	SubscriptionBuffer int
}

// ClientOptionFunc represents a function used to modify the client config
type ClientOptionFunc func(*Config)

// NewConfig returns a new client config object with the provided options
func NewConfig(options ...ClientOptionFunc) Config {
	c := Config{
		HandshakeTimeout:   10 * time.Second,
		UnsubscribeTimeout: 5 * time.Second,
		SubscriptionBuffer: 64,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithLogger specifies the logger. slog.Default() is used otherwise
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetadataDecoder specifies the parser for the node's metadata document
func WithMetadataDecoder(decoder MetadataDecoder) ClientOptionFunc {
	return func(c *Config) {
		c.MetadataDecoder = decoder
	}
}

func WithHandshakeTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Config) {
		c.HandshakeTimeout = timeout
	}
}

// WithRequestTimeout bounds every request. Zero leaves requests bounded only by
// their context
func WithRequestTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// WithUnsubscribeTimeout specifies how long an unsubscribe request may take
func WithUnsubscribeTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Config) {
		c.UnsubscribeTimeout = timeout
	}
}

// WithSubscriptionBuffer specifies how many notifications a subscription
// holds before it is ended with ErrSubscriptionOverflow
func WithSubscriptionBuffer(size int) ClientOptionFunc {
	return func(c *Config) {
		c.SubscriptionBuffer = size
	}
}
