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
	"sync"

	"github.com/tidwall/gjson"
)

// Subscription receives the notifications of a subscribe request
type Subscription struct {
	client            *Client
	id                string
	unsubscribeMethod string
	notifications     chan gjson.Result
	mutex             sync.Mutex
	ended             bool
	err               error
	onceUnsubscribe   sync.Once
}

func newSubscription(client *Client, unsubscribeMethod string, buffer int) *Subscription {
	return &Subscription{
		client:            client,
		unsubscribeMethod: unsubscribeMethod,
		notifications:     make(chan gjson.Result, buffer),
	}
}

// ID returns the id the node assigned
func (s *Subscription) ID() string {
	s.client.mutex.Lock()
	defer s.client.mutex.Unlock()
	return s.id
}

// Notifications returns the notification results. The channel is closed when
// the subscription ends.
func (s *Subscription) Notifications() <-chan gjson.Result {
	return s.notifications
}

// Err returns why the subscription ended. It is nil after Unsubscribe.
func (s *Subscription) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.err
}

// Unsubscribe ends the subscription and tells the node to stop sending
func (s *Subscription) Unsubscribe() error {
	var err error
	s.onceUnsubscribe.Do(func() {
		s.end(nil)
		if !s.client.removeSubscription(s.ID()) {
			// Already dropped by the client
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.client.config.UnsubscribeTimeout)
		defer cancel()
		_, err = s.client.Call(ctx, s.unsubscribeMethod, s.ID())
	})
	return err
}

// deliver never blocks the read loop. A subscriber that falls a full buffer
// behind loses the subscription.
func (s *Subscription) deliver(result gjson.Result) {
	s.mutex.Lock()
	if s.ended {
		s.mutex.Unlock()
		return
	}
	select {
	case s.notifications <- result:
		s.mutex.Unlock()
		return
	default:
	}
	s.ended = true
	s.err = ErrSubscriptionOverflow
	close(s.notifications)
	s.mutex.Unlock()
	s.client.logger.Warn(
		"subscription overflowed",
		"method",
		s.unsubscribeMethod,
	)
	s.client.waitGroup.Add(1)
	go func() {
		defer s.client.waitGroup.Done()
		_ = s.Unsubscribe()
	}()
}

func (s *Subscription) end(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.err = err
	close(s.notifications)
}
