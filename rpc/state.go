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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/metadata"
	"github.com/blinklabs-io/gosubstrate/storage"
	"github.com/tidwall/gjson"
)

// RuntimeVersion identifies the runtime a node is executing
type RuntimeVersion struct {
	SpecName           string
	ImplName           string
	SpecVersion        uint32
	TransactionVersion uint32
}

// ReadStorage returns the raw value stored under key at the best block. A
// missing value is returned as nil.
func (c *Client) ReadStorage(ctx context.Context, key storage.Key) ([]byte, error) {
	result, err := c.Call(ctx, "state_getStorage", key.Hex())
	if err != nil {
		return nil, err
	}
	return optionalHex(result)
}

// ReadStorageAt returns the raw value stored under key as of the given block
func (c *Client) ReadStorageAt(ctx context.Context, key storage.Key, block hashing.Blake2b256) ([]byte, error) {
	result, err := c.Call(ctx, "state_getStorage", key.Hex(), block.Hex())
	if err != nil {
		return nil, err
	}
	return optionalHex(result)
}

// BlockExtrinsics returns the encoded extrinsics of a block in block order
func (c *Client) BlockExtrinsics(ctx context.Context, block hashing.Blake2b256) ([][]byte, error) {
	result, err := c.Call(ctx, "chain_getBlock", block.Hex())
	if err != nil {
		return nil, err
	}
	if result.Type == gjson.Null {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, block.Hex())
	}
	items := result.Get("block.extrinsics").Array()
	ret := make([][]byte, 0, len(items))
	for i, item := range items {
		data, err := decodeHex(item.String())
		if err != nil {
			return nil, fmt.Errorf("%w: extrinsic %d: %w", ErrInvalidResponse, i, err)
		}
		ret = append(ret, data)
	}
	return ret, nil
}

// FinalizedHead returns the hash of the latest finalized block
func (c *Client) FinalizedHead(ctx context.Context) (hashing.Blake2b256, error) {
	result, err := c.Call(ctx, "chain_getFinalizedHead")
	if err != nil {
		return hashing.Blake2b256{}, err
	}
	hash, err := hashing.ParseBlake2b256(result.String())
	if err != nil {
		return hashing.Blake2b256{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return hash, nil
}

func (c *Client) RuntimeVersion(ctx context.Context) (RuntimeVersion, error) {
	result, err := c.Call(ctx, "state_getRuntimeVersion")
	if err != nil {
		return RuntimeVersion{}, err
	}
	if !result.IsObject() {
		return RuntimeVersion{}, fmt.Errorf("%w: runtime version is not an object", ErrInvalidResponse)
	}
	return RuntimeVersion{
		SpecName:           result.Get("specName").String(),
		ImplName:           result.Get("implName").String(),
		SpecVersion:        uint32(result.Get("specVersion").Uint()),
		TransactionVersion: uint32(result.Get("transactionVersion").Uint()),
	}, nil
}

// MetadataBytes returns the node's raw metadata document
func (c *Client) MetadataBytes(ctx context.Context) ([]byte, error) {
	result, err := c.Call(ctx, "state_getMetadata")
	if err != nil {
		return nil, err
	}
	data, err := decodeHex(result.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return data, nil
}

// Metadata fetches and parses the node's metadata with the configured decoder
func (c *Client) Metadata(ctx context.Context) (*metadata.Metadata, error) {
	if c.config.MetadataDecoder == nil {
		return nil, ErrNoMetadataDecoder
	}
	data, err := c.MetadataBytes(ctx)
	if err != nil {
		return nil, err
	}
	return c.config.MetadataDecoder(data)
}

func optionalHex(result gjson.Result) ([]byte, error) {
	if result.Type == gjson.Null {
		return nil, nil
	}
	data, err := decodeHex(result.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return data, nil
}

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("missing 0x prefix in %q", s)
	}
	return hex.DecodeString(s[2:])
}
