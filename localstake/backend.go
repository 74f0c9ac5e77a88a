// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package localstake is the local chain's staking backend. Toward the vault
// it is just another lienholder, priced at a fixed, configured slash ratio.
package localstake

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/metrics"
	"github.com/meshlock/warden/vault"
	"github.com/meshlock/warden/warden"
)

var (
	logger = log.WithContext("pkg", "localstake")

	metricOperationCount = metrics.LazyLoadCounterVec("localstake_operation_count", []string{"op"})
)

var (
	errInvalidAmount     = errors.New("amount must be positive")
	errInsufficientStake = errors.New("insufficient local stake")
)

func IsErrInsufficientStake(err error) bool {
	return errors.Cause(err) == errInsufficientStake
}

const stakesBucket kv.Bucket = "ls"

// StakeMsg is the payload a pledge forwards to the local backend. Validator
// optionally names the local validator to delegate to; the delegation itself
// is carried out by the host.
type StakeMsg struct {
	Validator string `json:"validator,omitempty"`
}

// Backend books locally staked collateral per account.
type Backend struct {
	store kv.Store
	ratio decimal.Decimal
}

var _ vault.Lienholder = (*Backend)(nil)

// New creates the local backend with its configured slash ratio.
func New(store kv.Store, ratio decimal.Decimal) *Backend {
	return &Backend{
		store: stakesBucket.NewStore(store),
		ratio: ratio,
	}
}

// SlashRatio prices liens pledged to the local chain.
func (b *Backend) SlashRatio() (decimal.Decimal, error) {
	return b.ratio, nil
}

// ReceiveStake books freshly pledged collateral.
func (b *Backend) ReceiveStake(account warden.Address, amount *big.Int, msg []byte) error {
	logger.Debug("receiving local stake", "account", account, "amount", amount)
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if len(msg) > 0 {
		var sm StakeMsg
		if err := json.Unmarshal(msg, &sm); err != nil {
			return errors.WithMessage(err, "decode stake msg")
		}
	}
	staked, err := b.StakedOf(account)
	if err != nil {
		return err
	}
	if err := b.save(account, new(big.Int).Add(staked, amount)); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "receive_stake"})
	logger.Info("local stake received", "account", account, "amount", amount)
	return nil
}

// Unstake starts withdrawing the account's local stake. The matching vault
// lien is released by the host once the native unbonding period has passed.
func (b *Backend) Unstake(account warden.Address, amount *big.Int) error {
	logger.Debug("unstaking locally", "account", account, "amount", amount)
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	staked, err := b.StakedOf(account)
	if err != nil {
		return err
	}
	if amount.Cmp(staked) > 0 {
		return errInsufficientStake
	}
	if err := b.save(account, new(big.Int).Sub(staked, amount)); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "unstake"})
	logger.Info("local stake withdrawn", "account", account, "amount", amount)
	return nil
}

// ReleaseStake gives back up to amount of the account's stake and reports
// how much was actually released.
func (b *Backend) ReleaseStake(account warden.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, errInvalidAmount
	}
	staked, err := b.StakedOf(account)
	if err != nil {
		return nil, err
	}
	released := amount
	if staked.Cmp(amount) < 0 {
		released = staked
	}
	if err := b.save(account, new(big.Int).Sub(staked, released)); err != nil {
		return nil, err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "release_stake"})
	logger.Info("local stake released", "account", account, "amount", released)
	return released, nil
}

// StakedOf returns the account's locally staked total.
func (b *Backend) StakedOf(account warden.Address) (*big.Int, error) {
	data, err := b.store.Get(account.Bytes())
	if err != nil {
		if b.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	total := new(big.Int)
	if err := rlp.DecodeBytes(data, total); err != nil {
		return nil, err
	}
	return total, nil
}

func (b *Backend) save(account warden.Address, total *big.Int) error {
	data, err := rlp.EncodeToBytes(total)
	if err != nil {
		return err
	}
	return b.store.Put(account.Bytes(), data)
}
