// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package valsync drives the home side of the cross-chain validator sync
// channel. This side never initiates: the handshake must arrive from the
// pinned counterparty endpoint, exactly one channel may ever open, and
// outbound packets do not exist. Inbound packets apply to the valset
// registry, whose CRDT semantics make redelivery and reordering harmless.
package valsync

import (
	"github.com/ethereum/go-ethereum/event"
	lru "github.com/hashicorp/golang-lru"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/metrics"
	"github.com/meshlock/warden/valset"
	"github.com/meshlock/warden/warden"
)

var (
	logger = log.WithContext("pkg", "valsync")

	metricPacketCount    = metrics.LazyLoadCounterVec("valsync_packet_count", []string{"kind"})
	metricDuplicateCount = metrics.LazyLoadCounter("valsync_duplicate_packet_count")
)

// knownPacketsCacheLimit bounds the digest cache used to spot redelivered
// packets. Duplicates are only counted; the registry absorbs them anyway.
const knownPacketsCacheLimit = 1024

// SetUpdate is one applied sync packet, as published to subscribers.
type SetUpdate struct {
	Added   []AddValidator
	Removed []string
}

// Sync handles the sync channel lifecycle and applies inbound packets.
type Sync struct {
	storage  *storage
	registry *valset.Registry
	versions Versions
	known    *lru.Cache

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates the handler and pins the authorized counterparty endpoint.
func New(store kv.Store, registry *valset.Registry, endpoint AuthorizedEndpoint, versions Versions) (*Sync, error) {
	known, err := lru.New(knownPacketsCacheLimit)
	if err != nil {
		return nil, err
	}
	s := &Sync{
		storage:  newStorage(store),
		registry: registry,
		versions: versions,
		known:    known,
	}
	if err := s.storage.saveEndpoint(&endpoint); err != nil {
		return nil, err
	}
	return s, nil
}

// Close unsubscribes all update listeners.
func (s *Sync) Close() {
	s.scope.Close()
	logger.Debug("closed")
}

// Channel returns the open channel's metadata, or nil before the handshake
// completed.
func (s *Sync) Channel() (*Channel, error) {
	return s.storage.loadChannel()
}

// Endpoint returns the authorized counterparty endpoint.
func (s *Sync) Endpoint() (*AuthorizedEndpoint, error) {
	return s.storage.loadEndpoint()
}

// SubscribeUpdates adds a channel receiving every applied set update.
func (s *Sync) SubscribeUpdates(ch chan *SetUpdate) event.Subscription {
	return s.scope.Track(s.feed.Subscribe(ch))
}

// OnOpenInit rejects the active handshake role: the home chain only ever
// responds.
func (s *Sync) OnOpenInit(*Channel) error {
	return errMustBePassive
}

// OnOpenTry validates a counterparty-initiated handshake and returns the
// negotiated version payload. Nothing is stored yet; that happens at
// OnOpenConfirm.
func (s *Sync) OnOpenTry(proposed *Channel, counterpartyVersion string) (string, error) {
	logger.Debug("channel open try", "counterparty", proposed.Counterparty.ChannelID,
		"version", counterpartyVersion)
	existing, err := s.storage.loadChannel()
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", errChannelExists
	}
	if proposed.Ordering != OrderingUnordered {
		return "", errWrongOrdering
	}
	authorized, err := s.storage.loadEndpoint()
	if err != nil {
		return "", err
	}
	if authorized.ConnectionID != proposed.ConnectionID || authorized.PortID != proposed.Counterparty.PortID {
		logger.Info("channel open try rejected", "connection", proposed.ConnectionID,
			"counterpartyPort", proposed.Counterparty.PortID)
		return "", errUnauthorizedEndpoint
	}
	version, err := s.versions.negotiate(counterpartyVersion)
	if err != nil {
		return "", err
	}
	logger.Info("channel open try accepted", "counterparty", proposed.Counterparty.ChannelID,
		"version", version)
	return version, nil
}

// OnOpenAck rejects the active handshake role.
func (s *Sync) OnOpenAck(*Channel, string) error {
	return errMustBePassive
}

// OnOpenConfirm stores the established channel. Version negotiation is
// already over at this step.
func (s *Sync) OnOpenConfirm(channel *Channel) error {
	existing, err := s.storage.loadChannel()
	if err != nil {
		return err
	}
	if existing != nil {
		return errChannelExists
	}
	if err := s.storage.saveChannel(channel); err != nil {
		return err
	}
	logger.Info("sync channel established", "channel", channel.Local.ChannelID,
		"counterparty", channel.Counterparty.ChannelID, "version", channel.Version)
	return nil
}

// OnCloseInit rejects closing: the sync channel is permanent.
func (s *Sync) OnCloseInit(*Channel) error {
	return errClosingNotAllowed
}

// OnCloseConfirm rejects closing.
func (s *Sync) OnCloseConfirm(*Channel) error {
	return errClosingNotAllowed
}

// OnRecvPacket applies one inbound packet and returns the acknowledgement.
// Undecodable data is a delivery error for the transport to surface;
// well-formed packets always ack success, application being total.
func (s *Sync) OnRecvPacket(data []byte) ([]byte, error) {
	digest := warden.Blake2b(data)
	if s.known.Contains(digest) {
		metricDuplicateCount().Add(1)
		logger.Debug("redelivered packet", "digest", digest.AbbrevString())
	} else {
		s.known.Add(digest, struct{}{})
	}

	packet, err := decodePacket(data)
	if err != nil {
		logger.Info("malformed packet rejected", "error", err)
		return nil, err
	}

	update := &SetUpdate{}
	switch {
	case packet.AddValidators != nil:
		for _, add := range packet.AddValidators {
			if err := s.registry.Add(add.OperatorID, add.PubKey, add.StartHeight, add.StartTime); err != nil {
				return nil, err
			}
		}
		update.Added = packet.AddValidators
		metricPacketCount().AddWithLabel(1, map[string]string{"kind": "add"})
	default:
		for _, operator := range packet.RemoveValidators {
			if err := s.registry.Remove(operator); err != nil {
				return nil, err
			}
		}
		update.Removed = packet.RemoveValidators
		metricPacketCount().AddWithLabel(1, map[string]string{"kind": "remove"})
	}

	s.feed.Send(update)
	logger.Debug("packet applied", "added", len(update.Added), "removed", len(update.Removed))
	return successAck, nil
}

// OnAcknowledgement handles an ack for a self-sent packet. This side sends
// nothing, so it only logs.
func (s *Sync) OnAcknowledgement(ack []byte) {
	logger.Warn("unexpected packet acknowledgement", "ack", string(ack))
}

// OnTimeout handles a timeout for a self-sent packet. This side sends
// nothing, so it only logs.
func (s *Sync) OnTimeout() {
	logger.Warn("unexpected packet timeout")
}
