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

import "errors"

var (
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionFailed   = errors.New("session failed")
	ErrNoSigner        = errors.New("no signer configured")
	ErrNoTransport     = errors.New("no transport configured")
	ErrNoMetadata      = errors.New("no metadata or metadata source configured")
	ErrStaleEncoding   = errors.New("call was built against a different runtime version")
	ErrNotInBlock      = errors.New("extrinsic not found in block")
	ErrUnexpectedEvent = errors.New("unexpected event record shape")
)
