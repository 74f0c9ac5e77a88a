// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node runs the long-lived side of the daemon: it watches the sync
// channel for applied validator updates and keeps the health monitor and
// the wall clock honest.
package node

import (
	"context"

	"github.com/meshlock/warden/co"
	"github.com/meshlock/warden/health"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/valset"
	"github.com/meshlock/warden/valsync"
)

var logger = log.WithContext("pkg", "node")

type Node struct {
	goes     co.Goes
	sync     *valsync.Sync
	registry *valset.Registry
	health   *health.Health
}

func New(sync *valsync.Sync, registry *valset.Registry, health *health.Health) *Node {
	return &Node{
		sync:     sync,
		registry: registry,
		health:   health,
	}
}

// Run blocks until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	channel, err := n.sync.Channel()
	if err != nil {
		return err
	}
	n.health.ChannelStatus(channel != nil)

	n.goes.Go(func() { n.houseKeeping(ctx) })
	n.goes.Wait()
	return nil
}
