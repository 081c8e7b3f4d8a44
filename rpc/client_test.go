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

package rpc_test

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/internal/test"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/rpc"
	"github.com/blinklabs-io/gosubstrate/storage"
	"github.com/blinklabs-io/gosubstrate/tracker"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/goleak"
)

const testTimeout = 2 * time.Second

var (
	block1 = hashing.Blake2b256Hash([]byte("block1"))
	block2 = hashing.Blake2b256Hash([]byte("block2"))

	testExtrinsic = tracker.SignedExtrinsic{0x84, 0x00, 0x01, 0x02, 0x03}
)

type handlerFunc func(conn *fakeConn, id uint64, params gjson.Result)

// fakeNode serves JSON-RPC over a websocket the way a node does
type fakeNode struct {
	server   *httptest.Server
	mutex    sync.Mutex
	handlers map[string]handlerFunc
	requests []gjson.Result
}

type fakeConn struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (c *fakeConn) send(msg any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_ = c.conn.WriteJSON(msg)
}

func (c *fakeConn) result(id uint64, result any) {
	c.send(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func (c *fakeConn) fail(id uint64, code int, message string) {
	c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
}

func (c *fakeConn) notify(method string, subscription string, result any) {
	c.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  map[string]any{"subscription": subscription, "result": result},
	})
}

func newFakeNode() *fakeNode {
	n := &fakeNode{
		handlers: make(map[string]handlerFunc),
	}
	upgrader := websocket.Upgrader{}
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		conn := &fakeConn{conn: ws}
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			req := gjson.ParseBytes(msg)
			method := req.Get("method").String()
			n.mutex.Lock()
			n.requests = append(n.requests, req)
			handler, ok := n.handlers[method]
			n.mutex.Unlock()
			if !ok {
				conn.fail(req.Get("id").Uint(), -32601, "Method not found")
				continue
			}
			handler(conn, req.Get("id").Uint(), req.Get("params"))
		}
	}))
	return n
}

func (n *fakeNode) handle(method string, fn handlerFunc) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.handlers[method] = fn
}

func (n *fakeNode) requested(method string) []gjson.Result {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	var ret []gjson.Result
	for _, req := range n.requests {
		if req.Get("method").String() == method {
			ret = append(ret, req)
		}
	}
	return ret
}

func (n *fakeNode) url() string {
	return "ws" + strings.TrimPrefix(n.server.URL, "http")
}

// watchHandler answers a submission with a subscription and plays back statuses
func watchHandler(statuses ...any) handlerFunc {
	return func(conn *fakeConn, id uint64, params gjson.Result) {
		conn.result(id, "watch-1")
		for _, s := range statuses {
			conn.notify("author_extrinsicUpdate", "watch-1", s)
		}
	}
}

func runTest(t *testing.T, setup func(*fakeNode), innerFunc func(*testing.T, *rpc.Client, *fakeNode)) {
	defer goleak.VerifyNone(t)
	node := newFakeNode()
	defer node.server.Close()
	if setup != nil {
		setup(node)
	}
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	client, err := rpc.Dial(
		ctx,
		node.url(),
		rpc.WithMetadataDecoder(metadata.NewFromCbor),
	)
	require.NoError(t, err)
	innerFunc(t, client, node)
	require.NoError(t, client.Close())
}

func collect(t *testing.T, sub tracker.Subscription, count int) []tracker.Notification {
	t.Helper()
	var ret []tracker.Notification
	for len(ret) < count {
		select {
		case n, ok := <-sub.Updates():
			require.True(t, ok, "stream ended after %d notifications: %v", len(ret), sub.Err())
			ret = append(ret, n)
		case <-time.After(testTimeout):
			t.Fatalf("timed out after %d notifications", len(ret))
		}
	}
	return ret
}

func waitClosed(t *testing.T, sub tracker.Subscription) {
	t.Helper()
	select {
	case _, ok := <-sub.Updates():
		require.False(t, ok, "unexpected notification")
	case <-time.After(testTimeout):
		t.Fatal("stream did not end")
	}
}

func TestCall(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("system_name", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.result(id, "fake-node")
			})
		},
		func(t *testing.T, client *rpc.Client, node *fakeNode) {
			ctx := context.Background()
			result, err := client.Call(ctx, "system_name")
			require.NoError(t, err)
			assert.Equal(t, "fake-node", result.String())
			reqs := node.requested("system_name")
			require.Len(t, reqs, 1)
			assert.Equal(t, "2.0", reqs[0].Get("jsonrpc").String())
			assert.True(t, reqs[0].Get("params").IsArray())

			_, err = client.Call(ctx, "system_bogus")
			var rpcErr *rpc.Error
			require.True(t, errors.As(err, &rpcErr), "got %v", err)
			assert.Equal(t, int64(-32601), rpcErr.Code)
			assert.Equal(t, "Method not found", rpcErr.Message)
		},
	)
}

func TestCallContextCancel(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("system_health", func(*fakeConn, uint64, gjson.Result) {})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err := client.Call(ctx, "system_health")
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		},
	)
}

func TestReadStorage(t *testing.T) {
	key := storage.Key(test.DecodeHexString("26aa394eea5630e07c48ae0c9558cef702a5c1b19ab7a04f536c519aca4983ac"))
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("state_getStorage", func(conn *fakeConn, id uint64, params gjson.Result) {
				switch {
				case params.Get("0").String() != key.Hex():
					conn.result(id, nil)
				case params.Get("1").String() == block1.Hex():
					conn.result(id, "0x07000000")
				default:
					conn.result(id, "0x2a000000")
				}
			})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			ctx := context.Background()
			data, err := client.ReadStorage(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte{0x2a, 0, 0, 0}, data)

			data, err = client.ReadStorageAt(ctx, key, block1)
			require.NoError(t, err)
			assert.Equal(t, []byte{0x07, 0, 0, 0}, data)

			data, err = client.ReadStorage(ctx, storage.Key{0x01})
			require.NoError(t, err)
			assert.Nil(t, data)
		},
	)
}

func TestBlockExtrinsics(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("chain_getBlock", func(conn *fakeConn, id uint64, params gjson.Result) {
				if params.Get("0").String() != block1.Hex() {
					conn.result(id, nil)
					return
				}
				conn.result(id, map[string]any{
					"block": map[string]any{
						"header":     map[string]any{"number": "0x10"},
						"extrinsics": []string{"0x0400", "0x" + hex.EncodeToString(testExtrinsic)},
					},
				})
			})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			ctx := context.Background()
			exts, err := client.BlockExtrinsics(ctx, block1)
			require.NoError(t, err)
			require.Len(t, exts, 2)
			assert.Equal(t, []byte{0x04, 0x00}, exts[0])
			assert.Equal(t, []byte(testExtrinsic), exts[1])

			_, err = client.BlockExtrinsics(ctx, block2)
			assert.ErrorIs(t, err, rpc.ErrBlockNotFound)
		},
	)
}

func TestRuntimeVersionAndMetadata(t *testing.T) {
	md := test.Metadata()
	snapshot, err := md.Cbor()
	require.NoError(t, err)
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("state_getRuntimeVersion", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.result(id, map[string]any{
					"specName":           "fixture",
					"implName":           "fixture-node",
					"specVersion":        test.FixtureSpecVersion,
					"transactionVersion": 1,
				})
			})
			n.handle("state_getMetadata", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.result(id, "0x"+hex.EncodeToString(snapshot))
			})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			ctx := context.Background()
			version, err := client.RuntimeVersion(ctx)
			require.NoError(t, err)
			assert.Equal(t, rpc.RuntimeVersion{
				SpecName:           "fixture",
				ImplName:           "fixture-node",
				SpecVersion:        test.FixtureSpecVersion,
				TransactionVersion: 1,
			}, version)

			got, err := client.Metadata(ctx)
			require.NoError(t, err)
			assert.Equal(t, md.SpecVersion, got.SpecVersion)
			assert.Equal(t, md.PalletNames(), got.PalletNames())
		},
	)
}

func TestMetadataWithoutDecoder(t *testing.T) {
	defer goleak.VerifyNone(t)
	node := newFakeNode()
	defer node.server.Close()
	client, err := rpc.Dial(context.Background(), node.url())
	require.NoError(t, err)
	defer client.Close()
	_, err = client.Metadata(context.Background())
	assert.ErrorIs(t, err, rpc.ErrNoMetadataDecoder)
}

func TestSubscriptionOverflow(t *testing.T) {
	defer goleak.VerifyNone(t)
	node := newFakeNode()
	defer node.server.Close()
	node.handle("chain_subscribeNewHeads", func(conn *fakeConn, id uint64, _ gjson.Result) {
		conn.result(id, "heads-1")
		for i := 0; i < 3; i++ {
			conn.notify("chain_newHead", "heads-1", i)
		}
	})
	node.handle("chain_unsubscribeNewHeads", func(conn *fakeConn, id uint64, _ gjson.Result) {
		conn.result(id, true)
	})
	client, err := rpc.Dial(context.Background(), node.url(), rpc.WithSubscriptionBuffer(1))
	require.NoError(t, err)
	sub, err := client.Subscribe(context.Background(), "chain_subscribeNewHeads", "chain_unsubscribeNewHeads")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return errors.Is(sub.Err(), rpc.ErrSubscriptionOverflow)
	}, testTimeout, 10*time.Millisecond)
	first, ok := <-sub.Notifications()
	require.True(t, ok)
	assert.Equal(t, int64(0), first.Int())
	_, ok = <-sub.Notifications()
	assert.False(t, ok)
	require.Eventually(t, func() bool {
		return len(node.requested("chain_unsubscribeNewHeads")) == 1
	}, testTimeout, 10*time.Millisecond)
	require.NoError(t, client.Close())
}

func TestSubmitAndWatch(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("author_submitAndWatchExtrinsic", watchHandler(
				"ready",
				map[string]any{"broadcast": []string{"peer-1"}},
				map[string]any{"inBlock": block1.Hex()},
				map[string]any{"finalized": block1.Hex()},
			))
			n.handle("author_unwatchExtrinsic", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.result(id, true)
			})
		},
		func(t *testing.T, client *rpc.Client, node *fakeNode) {
			sub, err := client.SubmitAndWatch(context.Background(), testExtrinsic)
			require.NoError(t, err)
			got := collect(t, sub, 4)
			assert.Equal(t, []tracker.Notification{
				{Status: tracker.StatusPoolAccepted},
				{Status: tracker.StatusPoolAccepted},
				{Status: tracker.StatusIncludedInBlock, BlockHash: block1},
				{Status: tracker.StatusFinalized, BlockHash: block1},
			}, got)
			require.NoError(t, sub.Unsubscribe())
			waitClosed(t, sub)

			submits := node.requested("author_submitAndWatchExtrinsic")
			require.Len(t, submits, 1)
			assert.Equal(t, testExtrinsic.Hex(), submits[0].Get("params.0").String())
			unwatches := node.requested("author_unwatchExtrinsic")
			require.Len(t, unwatches, 1)
			assert.Equal(t, "watch-1", unwatches[0].Get("params.0").String())
		},
	)
}

func TestSubmitAndWatchRetracted(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("author_submitAndWatchExtrinsic", watchHandler(
				"ready",
				map[string]any{"inBlock": block1.Hex()},
				map[string]any{"retracted": block1.Hex()},
				"ready",
				map[string]any{"broadcast": []string{"peer-1"}},
				map[string]any{"inBlock": block2.Hex()},
				map[string]any{"finalized": block2.Hex()},
			))
			n.handle("author_unwatchExtrinsic", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.result(id, true)
			})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			sub, err := client.SubmitAndWatch(context.Background(), testExtrinsic)
			require.NoError(t, err)
			got := collect(t, sub, 5)
			assert.Equal(t, []tracker.Notification{
				{Status: tracker.StatusPoolAccepted},
				{Status: tracker.StatusIncludedInBlock, BlockHash: block1},
				{Status: tracker.StatusRetracted, BlockHash: block1},
				{Status: tracker.StatusIncludedInBlock, BlockHash: block2},
				{Status: tracker.StatusFinalized, BlockHash: block2},
			}, got)
			require.NoError(t, sub.Unsubscribe())
		},
	)
}

func TestSubmitAndWatchTerminalStatuses(t *testing.T) {
	testDefs := []struct {
		name     string
		statuses []any
		expected []tracker.Notification
		err      error
	}{
		{
			name:     "invalid",
			statuses: []any{"invalid"},
			expected: []tracker.Notification{
				{Status: tracker.StatusInvalid, Reason: "rejected by the transaction pool"},
			},
		},
		{
			name:     "dropped",
			statuses: []any{"future", "dropped"},
			expected: []tracker.Notification{
				{Status: tracker.StatusPoolAccepted},
				{Status: tracker.StatusDroppedOrUsurped, Reason: "dropped from the transaction pool"},
			},
		},
		{
			name:     "usurped",
			statuses: []any{"ready", map[string]any{"usurped": block2.Hex()}},
			expected: []tracker.Notification{
				{Status: tracker.StatusPoolAccepted},
				{Status: tracker.StatusDroppedOrUsurped, Reason: "usurped by " + block2.Hex()},
			},
		},
		{
			name:     "node finality timeout",
			statuses: []any{map[string]any{"inBlock": block1.Hex()}, map[string]any{"finalityTimeout": block1.Hex()}},
			expected: []tracker.Notification{
				{Status: tracker.StatusIncludedInBlock, BlockHash: block1},
			},
			err: rpc.ErrNodeFinalityTimeout,
		},
		{
			name:     "unknown status",
			statuses: []any{"ready", "teleported"},
			expected: []tracker.Notification{
				{Status: tracker.StatusPoolAccepted},
			},
			err: rpc.ErrUnknownStatus,
		},
		{
			name:     "bad block hash",
			statuses: []any{map[string]any{"inBlock": "0x1234"}},
			err:      rpc.ErrInvalidResponse,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			runTest(
				t,
				func(n *fakeNode) {
					n.handle("author_submitAndWatchExtrinsic", watchHandler(testDef.statuses...))
					n.handle("author_unwatchExtrinsic", func(conn *fakeConn, id uint64, _ gjson.Result) {
						conn.result(id, true)
					})
				},
				func(t *testing.T, client *rpc.Client, _ *fakeNode) {
					sub, err := client.SubmitAndWatch(context.Background(), testExtrinsic)
					require.NoError(t, err)
					got := collect(t, sub, len(testDef.expected))
					if len(testDef.expected) > 0 {
						assert.Equal(t, testDef.expected, got)
					}
					if testDef.err != nil {
						waitClosed(t, sub)
						assert.ErrorIs(t, sub.Err(), testDef.err)
					}
					require.NoError(t, sub.Unsubscribe())
				},
			)
		})
	}
}

func TestSubmitRejected(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("author_submitAndWatchExtrinsic", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.fail(id, 1010, "Invalid Transaction")
			})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			_, err := client.SubmitAndWatch(context.Background(), testExtrinsic)
			var rpcErr *rpc.Error
			require.True(t, errors.As(err, &rpcErr), "got %v", err)
			assert.Equal(t, int64(1010), rpcErr.Code)
			assert.Contains(t, err.Error(), "author_submitAndWatchExtrinsic")
		},
	)
}

func TestTrackerOverRPC(t *testing.T) {
	runTest(
		t,
		func(n *fakeNode) {
			n.handle("author_submitAndWatchExtrinsic", watchHandler(
				"ready",
				map[string]any{"inBlock": block1.Hex()},
				map[string]any{"finalized": block1.Hex()},
			))
			n.handle("author_unwatchExtrinsic", func(conn *fakeConn, id uint64, _ gjson.Result) {
				conn.result(id, true)
			})
		},
		func(t *testing.T, client *rpc.Client, _ *fakeNode) {
			cfg := tracker.NewConfig()
			tr := tracker.New(client, &cfg)
			defer tr.Close()
			h, err := tr.SubmitAndTrack(context.Background(), testExtrinsic)
			require.NoError(t, err)
			outcome, err := tr.AwaitFinal(context.Background(), h, testTimeout)
			require.NoError(t, err)
			assert.Equal(t, tracker.OutcomeSuccess, outcome.Kind)
			assert.Equal(t, block1, outcome.BlockHash)
			assert.Equal(t, testExtrinsic.Hash(), outcome.TxHash)
		},
	)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	defer goleak.VerifyNone(t)
	node := newFakeNode()
	defer node.server.Close()
	node.handle("author_submitAndWatchExtrinsic", watchHandler("ready"))
	client, err := rpc.Dial(context.Background(), node.url())
	require.NoError(t, err)
	sub, err := client.SubmitAndWatch(context.Background(), testExtrinsic)
	require.NoError(t, err)
	collect(t, sub, 1)

	require.NoError(t, client.Close())
	waitClosed(t, sub)
	assert.ErrorIs(t, sub.Err(), rpc.ErrClientClosed)
	assert.ErrorIs(t, client.Err(), rpc.ErrClientClosed)
	_, err = client.Call(context.Background(), "system_name")
	assert.ErrorIs(t, err, rpc.ErrClientClosed)
	// Unsubscribe after the client is gone is a no-op
	assert.NoError(t, sub.Unsubscribe())
}

func TestConnectionLost(t *testing.T) {
	defer goleak.VerifyNone(t)
	node := newFakeNode()
	defer node.server.Close()
	node.handle("system_health", func(conn *fakeConn, _ uint64, _ gjson.Result) {
		conn.conn.Close()
	})
	client, err := rpc.Dial(context.Background(), node.url())
	require.NoError(t, err)
	defer client.Close()
	_, err = client.Call(context.Background(), "system_health")
	assert.ErrorIs(t, err, rpc.ErrConnectionClosed)
	select {
	case <-client.Done():
	case <-time.After(testTimeout):
		t.Fatal("client did not notice the lost connection")
	}
	assert.ErrorIs(t, client.Err(), rpc.ErrConnectionClosed)
}
