// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package localstake

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/test/datagen"
)

func newTestBackend() *Backend {
	return New(kv.NewMem(), decimal.RequireFromString("1"))
}

func TestSlashRatio(t *testing.T) {
	b := New(kv.NewMem(), decimal.RequireFromString("0.1"))
	ratio, err := b.SlashRatio()
	require.NoError(t, err)
	assert.True(t, ratio.Equal(decimal.RequireFromString("0.1")))
}

func TestReceiveStake(t *testing.T) {
	b := newTestBackend()
	account := datagen.RandAddress()

	require.NoError(t, b.ReceiveStake(account, big.NewInt(100), nil))
	require.NoError(t, b.ReceiveStake(account, big.NewInt(50), []byte(`{"validator":"warden1xyz"}`)))

	staked, err := b.StakedOf(account)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), staked)

	assert.Error(t, b.ReceiveStake(account, big.NewInt(10), []byte("not-json")))
	assert.Error(t, b.ReceiveStake(account, big.NewInt(0), nil))
}

func TestUnstake(t *testing.T) {
	b := newTestBackend()
	account := datagen.RandAddress()

	require.NoError(t, b.ReceiveStake(account, big.NewInt(100), nil))
	assert.True(t, IsErrInsufficientStake(b.Unstake(account, big.NewInt(101))))
	require.NoError(t, b.Unstake(account, big.NewInt(40)))

	staked, err := b.StakedOf(account)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), staked)
}

func TestReleaseStake(t *testing.T) {
	b := newTestBackend()
	account := datagen.RandAddress()

	require.NoError(t, b.ReceiveStake(account, big.NewInt(100), nil))

	released, err := b.ReleaseStake(account, big.NewInt(70))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), released)

	// release caps at whatever is still staked
	released, err = b.ReleaseStake(account, big.NewInt(70))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), released)

	staked, err := b.StakedOf(account)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int), staked)
}
