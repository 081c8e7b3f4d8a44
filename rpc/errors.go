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
	"errors"
	"fmt"
)

var (
	ErrClientClosed         = errors.New("rpc client closed")
	ErrConnectionClosed     = errors.New("rpc connection closed")
	ErrSubscriptionOverflow = errors.New("subscription buffer overflow")
	ErrNodeFinalityTimeout  = errors.New("node gave up waiting for finality")
	ErrUnknownStatus        = errors.New("unknown transaction status")
	ErrNoMetadataDecoder    = errors.New("no metadata decoder configured")
	ErrBlockNotFound        = errors.New("block not found")
	ErrInvalidResponse      = errors.New("invalid rpc response")
)

// Error is an error object returned by the node
type Error struct {
	Code    int64
	Message string
	Data    string
}

func (e *Error) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, e.Data)
}
