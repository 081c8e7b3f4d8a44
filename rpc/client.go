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

// Package rpc is a JSON-RPC 2.0 client for a node's websocket endpoint. It
// implements the transaction submitter, storage reader and block reader
// interfaces used by the session.
//
// A single goroutine reads every message from the connection and routes it to
// the pending request with the matching id or to the subscription named in a
// notification. Subscriptions are registered by that same goroutine when the
// subscribe response arrives, so no notification can precede its registration.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gosubstrate/utils"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	result gjson.Result
	err    error
}

type pendingCall struct {
	method string
	result chan response
	// Set for subscribe requests
	subscription *Subscription
}

// Client is a JSON-RPC connection to a node
type Client struct {
	config       Config
	logger       *slog.Logger
	conn         *websocket.Conn
	nextID       atomic.Uint64
	writeMutex   sync.Mutex
	mutex        sync.Mutex
	pending      map[uint64]*pendingCall
	subs         map[string]*Subscription
	closing      bool
	err          error
	doneSignal   *utils.DoneSignal
	waitGroup    sync.WaitGroup
	onceClose    sync.Once
	onceShutdown sync.Once
}

// Dial connects to a node's websocket endpoint
func Dial(ctx context.Context, url string, options ...ClientOptionFunc) (*Client, error) {
	cfg := NewConfig(options...)
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newClient(conn, cfg), nil
}

// NewClient wraps an established websocket connection
func NewClient(conn *websocket.Conn, options ...ClientOptionFunc) *Client {
	return newClient(conn, NewConfig(options...))
}

func newClient(conn *websocket.Conn, cfg Config) *Client {
	c := &Client{
		config:     cfg,
		logger:     cfg.Logger,
		conn:       conn,
		pending:    make(map[uint64]*pendingCall),
		subs:       make(map[string]*Subscription),
		doneSignal: utils.NewDoneSignal(),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "rpc")
	c.waitGroup.Add(1)
	go c.readLoop()
	return c
}

// Done returns a channel that is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.doneSignal.GetCh()
}

// Err returns the reason the connection ended, or nil while it is open
func (c *Client) Err() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.err
}

// Close shuts down the connection. Pending requests and open subscriptions end
// with ErrClientClosed.
func (c *Client) Close() error {
	c.onceClose.Do(func() {
		c.mutex.Lock()
		c.closing = true
		c.mutex.Unlock()
		c.writeMutex.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMutex.Unlock()
		_ = c.conn.Close()
		c.waitGroup.Wait()
	})
	return nil
}

// Call sends a request and waits for its result
func (c *Client) Call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	return c.do(ctx, &pendingCall{method: method, result: make(chan response, 1)}, params)
}

// Subscribe sends a subscribe request. Notifications for the returned
// subscription arrive until Unsubscribe is called or the connection ends.
// The unsubscribe method is called with the subscription id.
func (c *Client) Subscribe(
	ctx context.Context,
	method string,
	unsubscribeMethod string,
	params ...any,
) (*Subscription, error) {
	sub := newSubscription(c, unsubscribeMethod, c.config.SubscriptionBuffer)
	pc := &pendingCall{
		method:       method,
		result:       make(chan response, 1),
		subscription: sub,
	}
	if _, err := c.do(ctx, pc, params); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Client) do(ctx context.Context, pc *pendingCall, params []any) (gjson.Result, error) {
	if params == nil {
		params = []any{}
	}
	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}
	id := c.nextID.Add(1)
	c.mutex.Lock()
	if c.err != nil || c.closing {
		err := c.err
		c.mutex.Unlock()
		if err == nil {
			err = ErrClientClosed
		}
		return gjson.Result{}, err
	}
	c.pending[id] = pc
	c.mutex.Unlock()
	req := request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  pc.method,
		Params:  params,
	}
	c.writeMutex.Lock()
	err := c.conn.WriteJSON(&req)
	c.writeMutex.Unlock()
	if err != nil {
		c.mutex.Lock()
		delete(c.pending, id)
		c.mutex.Unlock()
		return gjson.Result{}, fmt.Errorf("%s: %w", pc.method, err)
	}
	c.logger.Debug(
		"sent request",
		"method",
		pc.method,
		"id",
		id,
	)
	select {
	case resp := <-pc.result:
		if resp.err != nil {
			return gjson.Result{}, fmt.Errorf("%s: %w", pc.method, resp.err)
		}
		return resp.result, nil
	case <-ctx.Done():
		c.abandon(id, pc)
		return gjson.Result{}, ctx.Err()
	case <-c.doneSignal.GetCh():
		return gjson.Result{}, c.Err()
	}
}

// abandon forgets a request whose caller went away. A subscription whose
// response already arrived is unsubscribed so it does not linger on the node.
func (c *Client) abandon(id uint64, pc *pendingCall) {
	c.mutex.Lock()
	_, stillPending := c.pending[id]
	delete(c.pending, id)
	c.mutex.Unlock()
	if stillPending || pc.subscription == nil {
		return
	}
	select {
	case resp := <-pc.result:
		if resp.err == nil {
			_ = pc.subscription.Unsubscribe()
		}
	case <-c.doneSignal.GetCh():
	}
}

func (c *Client) readLoop() {
	defer c.waitGroup.Done()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg []byte) {
	if !gjson.ValidBytes(msg) {
		c.logger.Warn(
			"discarding invalid message from node",
			"length",
			len(msg),
		)
		return
	}
	parsed := gjson.ParseBytes(msg)
	if id := parsed.Get("id"); id.Exists() {
		c.handleResponse(id.Uint(), parsed)
		return
	}
	if parsed.Get("method").Exists() {
		subID := parsed.Get("params.subscription").String()
		c.mutex.Lock()
		sub, ok := c.subs[subID]
		c.mutex.Unlock()
		if !ok {
			c.logger.Debug(
				"notification for unknown subscription",
				"method",
				parsed.Get("method").String(),
				"subscription",
				subID,
			)
			return
		}
		sub.deliver(parsed.Get("params.result"))
		return
	}
	c.logger.Warn("discarding unexpected message from node")
}

func (c *Client) handleResponse(id uint64, parsed gjson.Result) {
	var resp response
	if rpcErr := parsed.Get("error"); rpcErr.Exists() {
		resp.err = &Error{
			Code:    rpcErr.Get("code").Int(),
			Message: rpcErr.Get("message").String(),
			Data:    rpcErr.Get("data").String(),
		}
	} else {
		resp.result = parsed.Get("result")
	}
	c.mutex.Lock()
	pc, ok := c.pending[id]
	delete(c.pending, id)
	if ok && pc.subscription != nil && resp.err == nil {
		subID := resp.result.String()
		if subID == "" {
			resp.err = fmt.Errorf("%w: empty subscription id", ErrInvalidResponse)
		} else {
			pc.subscription.id = subID
			c.subs[subID] = pc.subscription
		}
	}
	c.mutex.Unlock()
	if !ok {
		c.logger.Debug(
			"response for unknown request",
			"id",
			id,
		)
		return
	}
	pc.result <- resp
}

func (c *Client) removeSubscription(id string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.subs[id]; !ok {
		return false
	}
	delete(c.subs, id)
	return true
}

func (c *Client) shutdown(readErr error) {
	c.onceShutdown.Do(func() {
		c.mutex.Lock()
		if c.closing {
			c.err = ErrClientClosed
		} else {
			c.err = fmt.Errorf("%w: %w", ErrConnectionClosed, readErr)
			c.logger.Error(
				"connection to node lost",
				"error",
				readErr,
			)
		}
		err := c.err
		subs := c.subs
		c.subs = make(map[string]*Subscription)
		c.pending = make(map[uint64]*pendingCall)
		c.mutex.Unlock()
		c.doneSignal.Close()
		for _, sub := range subs {
			sub.end(err)
		}
		if !errors.Is(err, ErrClientClosed) {
			_ = c.conn.Close()
		}
	})
}
