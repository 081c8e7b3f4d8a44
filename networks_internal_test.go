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
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptionsShareLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := rpc.NewConfig(clientOptions(
		metadata.NewFromCbor,
		[]SessionOptionFunc{WithLogger(logger), WithFinalityTimeout(0)},
	)...)
	assert.Same(t, logger, cfg.Logger)
	require.NotNil(t, cfg.MetadataDecoder)

	cfg = rpc.NewConfig(clientOptions(metadata.NewFromCbor, nil)...)
	assert.Nil(t, cfg.Logger)
}
