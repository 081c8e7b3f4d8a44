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
	"log/slog"
	"time"
)

// Config is used to configure a Tracker
type Config struct {
	Logger            *slog.Logger
	EventSource       EventSource
	DispatchErrorFunc DispatchErrorFunc
	ErrorChan         chan error
	Metrics           *Metrics
	EventTimeout      time.Duration
}

// TrackerOptionFunc represents a function used to modify the tracker config
type TrackerOptionFunc func(*Config)

// NewConfig returns a new tracker config object with the provided options
func NewConfig(options ...TrackerOptionFunc) Config {
	c := Config{
		DispatchErrorFunc: DefaultDispatchError,
		EventTimeout:      30 * time.Second,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithLogger specifies the logger. slog.Default() is used otherwise
func WithLogger(logger *slog.Logger) TrackerOptionFunc {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEventSource specifies where transaction events are loaded from when
// status notifications do not carry them
func WithEventSource(source EventSource) TrackerOptionFunc {
	return func(c *Config) {
		c.EventSource = source
	}
}

// WithDispatchErrorFunc specifies how dispatch failures are detected in events
func WithDispatchErrorFunc(fn DispatchErrorFunc) TrackerOptionFunc {
	return func(c *Config) {
		c.DispatchErrorFunc = fn
	}
}

// WithErrorChan specifies a channel that receives status stream defects
func WithErrorChan(errorChan chan error) TrackerOptionFunc {
	return func(c *Config) {
		c.ErrorChan = errorChan
	}
}

func WithMetrics(metrics *Metrics) TrackerOptionFunc {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithEventTimeout specifies the timeout for loading the events of one block
func WithEventTimeout(timeout time.Duration) TrackerOptionFunc {
	return func(c *Config) {
		c.EventTimeout = timeout
	}
}
