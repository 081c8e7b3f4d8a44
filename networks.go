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
	"context"

	"github.com/blinklabs-io/gosubstrate/rpc"
)

// Network describes a public chain and an RPC endpoint for it
type Network struct {
	Name       string
	URL        string
	SS58Prefix uint16
}

// Network definitions
var (
	NetworkPolkadot = Network{
		Name:       "polkadot",
		URL:        "wss://rpc.polkadot.io",
		SS58Prefix: 0,
	}
	NetworkKusama = Network{
		Name:       "kusama",
		URL:        "wss://kusama-rpc.polkadot.io",
		SS58Prefix: 2,
	}
	NetworkWestend = Network{
		Name:       "westend",
		URL:        "wss://westend-rpc.polkadot.io",
		SS58Prefix: 42,
	}
	NetworkLocal = Network{
		Name:       "local",
		URL:        "ws://127.0.0.1:9944",
		SS58Prefix: 42,
	}

	NetworkInvalid = Network{
		Name: "invalid",
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkPolkadot,
	NetworkKusama,
	NetworkWestend,
	NetworkLocal,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// Dial connects to a node and returns a session using it as transport and
// metadata source. The connection is closed with the session.
func Dial(
	ctx context.Context,
	url string,
	decoder rpc.MetadataDecoder,
	options ...SessionOptionFunc,
) (*Session, error) {
	client, err := rpc.Dial(ctx, url, clientOptions(decoder, options)...)
	if err != nil {
		return nil, err
	}
	sessionOptions := append(
		[]SessionOptionFunc{
			WithMetadataSource(client),
			WithTransport(client),
		},
		options...,
	)
	s, err := New(ctx, sessionOptions...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	s.closers = append(s.closers, client.Close)
	return s, nil
}

// clientOptions carries session settings the RPC client shares
func clientOptions(decoder rpc.MetadataDecoder, options []SessionOptionFunc) []rpc.ClientOptionFunc {
	var s Session
	for _, option := range options {
		option(&s)
	}
	ret := []rpc.ClientOptionFunc{rpc.WithMetadataDecoder(decoder)}
	if s.logger != nil {
		ret = append(ret, rpc.WithLogger(s.logger))
	}
	return ret
}

// DialNetwork is Dial using a network's endpoint
func DialNetwork(
	ctx context.Context,
	network Network,
	decoder rpc.MetadataDecoder,
	options ...SessionOptionFunc,
) (*Session, error) {
	return Dial(ctx, network.URL, decoder, options...)
}
