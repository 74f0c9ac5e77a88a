// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package valsync

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meshlock/warden/kv"
)

// Ordering is the packet delivery ordering of a channel.
type Ordering uint8

const (
	// OrderingUnordered delivers packets in any order. The sync protocol
	// requires it; the validator set absorbs reordering.
	OrderingUnordered Ordering = iota
	// OrderingOrdered delivers packets strictly in sequence.
	OrderingOrdered
)

func (o Ordering) String() string {
	switch o {
	case OrderingUnordered:
		return "unordered"
	case OrderingOrdered:
		return "ordered"
	default:
		return "unknown"
	}
}

// Endpoint identifies one side of a channel.
type Endpoint struct {
	PortID    string
	ChannelID string
}

// AuthorizedEndpoint pins the only counterparty allowed to open the sync
// channel: its connection and its port.
type AuthorizedEndpoint struct {
	ConnectionID string
	PortID       string
}

// Channel is the sync channel's metadata.
type Channel struct {
	Local        Endpoint
	Counterparty Endpoint
	ConnectionID string
	Ordering     Ordering
	Version      string
}

const channelBucket kv.Bucket = "cc"

var (
	keyChannel  = []byte("channel")
	keyEndpoint = []byte("auth-endpoint")
)

type storage struct {
	store kv.Store
}

func newStorage(store kv.Store) *storage {
	return &storage{store: channelBucket.NewStore(store)}
}

// loadChannel returns nil before the handshake completed.
func (s *storage) loadChannel() (*Channel, error) {
	data, err := s.store.Get(keyChannel)
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ch Channel
	if err := rlp.DecodeBytes(data, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *storage) saveChannel(ch *Channel) error {
	data, err := rlp.EncodeToBytes(ch)
	if err != nil {
		return err
	}
	return s.store.Put(keyChannel, data)
}

func (s *storage) loadEndpoint() (*AuthorizedEndpoint, error) {
	data, err := s.store.Get(keyEndpoint)
	if err != nil {
		return nil, err
	}
	var ep AuthorizedEndpoint
	if err := rlp.DecodeBytes(data, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

func (s *storage) saveEndpoint(ep *AuthorizedEndpoint) error {
	data, err := rlp.EncodeToBytes(ep)
	if err != nil {
		return err
	}
	return s.store.Put(keyEndpoint, data)
}
