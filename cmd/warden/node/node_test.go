// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlock/warden/health"
	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/valset"
	"github.com/meshlock/warden/valsync"
)

func TestNodeAppliesUpdates(t *testing.T) {
	store := kv.NewMem()
	t.Cleanup(func() { store.Close() })

	registry := valset.New(store)
	sync, err := valsync.New(store, registry, valsync.AuthorizedEndpoint{
		ConnectionID: "connection-0",
		PortID:       "provider-port",
	}, valsync.DefaultVersions())
	require.NoError(t, err)
	t.Cleanup(sync.Close)

	healthMon := health.New(store, time.Hour)

	n := New(sync, registry, healthMon)
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- n.Run(ctx) }()

	// give house keeping a moment to subscribe
	time.Sleep(50 * time.Millisecond)

	status, err := healthMon.Status()
	require.NoError(t, err)
	assert.Nil(t, status.LastUpdate)
	assert.False(t, status.ChannelOpen)

	_, err = sync.OnRecvPacket([]byte(`{
		"add_validators": [
			{"operator_id": "cosmosvaloper1aaa", "pub_key": "key1", "start_height": 100, "start_time": 1000}
		]
	}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := healthMon.Status()
		return err == nil && status.LastUpdate != nil
	}, time.Second, 10*time.Millisecond)

	status, err = healthMon.Status()
	require.NoError(t, err)
	assert.True(t, status.ChannelOpen)
	assert.True(t, status.Healthy)

	cancel()
	require.NoError(t, <-runErr)
}
