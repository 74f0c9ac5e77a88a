// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking keeps the cross-chain stake ledger: which user delegates
// how much to which remote validator, the pending unbonds awaiting release,
// and the per-validator reward distribution.
//
// Rewards use scaled points. An injected amount becomes amount × scale
// points split across the total stake; each position tracks an alignment so
// that stake changes never shift rewards earned before them. Like the
// vault, mutating entry points expect to run fully serialized by the host.
package staking

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/metrics"
	"github.com/meshlock/warden/warden"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricOperationCount = metrics.LazyLoadCounterVec("staking_operation_count", []string{"op"})
)

// ValidatorGate tells whether a remote validator may receive new stake.
type ValidatorGate interface {
	Active(validator string) (bool, error)
}

// Ledger is the cross-chain stake ledger.
type Ledger struct {
	storage         *storage
	gate            ValidatorGate
	scale           *uint256.Int
	unbondingPeriod uint64
}

// New creates the ledger. scale is the reward fixed-point factor, normally
// warden.RewardScale; unbondingPeriod is the release delay of unstakes in
// seconds.
func New(store kv.Store, gate ValidatorGate, scale *uint256.Int, unbondingPeriod uint64) *Ledger {
	return &Ledger{
		storage:         newStorage(store),
		gate:            gate,
		scale:           scale,
		unbondingPeriod: unbondingPeriod,
	}
}

// Stake books amount of new delegation from user to validator. Only
// validators active in the synced set accept new stake.
func (l *Ledger) Stake(user warden.Address, validator string, amount *big.Int) error {
	logger.Debug("staking", "user", user, "validator", validator, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return err
	}
	active, err := l.gate.Active(validator)
	if err != nil {
		return err
	}
	if !active {
		logger.Info("stake rejected", "user", user, "validator", validator, "amount", amount)
		return errValidatorInactive
	}
	stake, err := l.storage.loadStake(user, validator)
	if err != nil {
		return err
	}
	dist, err := l.storage.loadDistribution(validator)
	if err != nil {
		return err
	}
	stake.stakeIn(amount, dist.PointsPerStake)
	dist.stakeChanged(amount)
	if err := l.commit(user, validator, stake, dist); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "stake"})
	logger.Info("staked", "user", user, "validator", validator, "amount", amount, "staked", stake.Staked)
	return nil
}

// Unstake schedules amount of the position for release one unbonding period
// after now. The validator does not have to be active to exit.
func (l *Ledger) Unstake(user warden.Address, validator string, amount *big.Int, now uint64) error {
	logger.Debug("unstaking", "user", user, "validator", validator, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return err
	}
	stake, err := l.storage.loadStake(user, validator)
	if err != nil {
		return err
	}
	if amount.Cmp(stake.Staked) > 0 {
		return errInsufficientStake
	}
	dist, err := l.storage.loadDistribution(validator)
	if err != nil {
		return err
	}
	stake.stakeOut(amount, dist.PointsPerStake, now+l.unbondingPeriod)
	dist.stakeChanged(new(big.Int).Neg(amount))
	if err := l.commit(user, validator, stake, dist); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "unstake"})
	logger.Info("unstaked", "user", user, "validator", validator, "amount", amount,
		"staked", stake.Staked, "releaseAt", now+l.unbondingPeriod)
	return nil
}

// Inject books a reward payment for the validator's stakers.
func (l *Ledger) Inject(validator string, amount *big.Int) error {
	logger.Debug("injecting rewards", "validator", validator, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return err
	}
	dist, err := l.storage.loadDistribution(validator)
	if err != nil {
		return err
	}
	dist.inject(amount, l.scale)
	if err := l.storage.saveDistribution(l.storage.store, validator, dist); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "inject"})
	logger.Info("rewards injected", "validator", validator, "amount", amount,
		"pointsPerStake", dist.PointsPerStake, "leftover", dist.PointsLeftover)
	return nil
}

// WithdrawRewards marks every pending reward of the position withdrawn and
// returns the amount for the host to pay out.
func (l *Ledger) WithdrawRewards(user warden.Address, validator string) (*big.Int, error) {
	stake, err := l.storage.loadStake(user, validator)
	if err != nil {
		return nil, err
	}
	dist, err := l.storage.loadDistribution(validator)
	if err != nil {
		return nil, err
	}
	pending := stake.pending(dist.PointsPerStake, l.scale)
	if pending.Sign() == 0 {
		return pending, nil
	}
	stake.Withdrawn = new(big.Int).Add(stake.Withdrawn, pending)
	if err := l.persistOrPrune(user, validator, stake, dist); err != nil {
		return nil, err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "withdraw_rewards"})
	logger.Info("rewards withdrawn", "user", user, "validator", validator, "amount", pending)
	return pending, nil
}

// ReleaseMatured releases every unbond of the position due at now and
// returns the total. The host forwards it to the vault as a lien release.
func (l *Ledger) ReleaseMatured(user warden.Address, validator string, now uint64) (*big.Int, error) {
	stake, err := l.storage.loadStake(user, validator)
	if err != nil {
		return nil, err
	}
	released := stake.releaseMatured(now)
	if released.Sign() == 0 {
		return released, nil
	}
	dist, err := l.storage.loadDistribution(validator)
	if err != nil {
		return nil, err
	}
	if err := l.persistOrPrune(user, validator, stake, dist); err != nil {
		return nil, err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "release_matured"})
	logger.Info("matured unbonds released", "user", user, "validator", validator, "amount", released)
	return released, nil
}

// StakeSummary is one user↔validator position as reported by queries.
type StakeSummary struct {
	Validator string
	Staked    *big.Int
	Rewards   *big.Int
	Unbonds   []*PendingUnbond
}

// StakeOf returns the position of user with validator. Unknown pairs yield
// an all-zero summary.
func (l *Ledger) StakeOf(user warden.Address, validator string) (*StakeSummary, error) {
	stake, err := l.storage.loadStake(user, validator)
	if err != nil {
		return nil, err
	}
	dist, err := l.storage.loadDistribution(validator)
	if err != nil {
		return nil, err
	}
	return &StakeSummary{
		Validator: validator,
		Staked:    stake.Staked,
		Rewards:   stake.pending(dist.PointsPerStake, l.scale),
		Unbonds:   stake.Unbonds,
	}, nil
}

// StakesOf pages through the user's positions in ascending validator order.
// startAfter is exclusive.
func (l *Ledger) StakesOf(user warden.Address, startAfter string, limit uint32) ([]*StakeSummary, error) {
	limit = warden.ClampPageLimit(limit)

	var (
		list     []*StakeSummary
		innerErr error
	)
	if err := l.storage.iterateStakes(user, startAfter, func(validator string, stake *Stake) bool {
		dist, err := l.storage.loadDistribution(validator)
		if err != nil {
			innerErr = err
			return false
		}
		list = append(list, &StakeSummary{
			Validator: validator,
			Staked:    stake.Staked,
			Rewards:   stake.pending(dist.PointsPerStake, l.scale),
			Unbonds:   stake.Unbonds,
		})
		return uint32(len(list)) < limit
	}); err != nil {
		return nil, err
	}
	if innerErr != nil {
		return nil, innerErr
	}
	return list, nil
}

// UnbondsOf returns the position's pending unbonds in release order.
func (l *Ledger) UnbondsOf(user warden.Address, validator string) ([]*PendingUnbond, error) {
	stake, err := l.storage.loadStake(user, validator)
	if err != nil {
		return nil, err
	}
	return stake.Unbonds, nil
}

// DistributionOf returns the validator's reward book.
func (l *Ledger) DistributionOf(validator string) (*Distribution, error) {
	return l.storage.loadDistribution(validator)
}

// commit writes the stake and distribution records in one batch.
func (l *Ledger) commit(user warden.Address, validator string, stake *Stake, dist *Distribution) error {
	bulk := l.storage.store.Bulk()
	if err := l.storage.saveStake(bulk, user, validator, stake); err != nil {
		return err
	}
	if err := l.storage.saveDistribution(bulk, validator, dist); err != nil {
		return err
	}
	return bulk.Write()
}

// persistOrPrune saves the stake record, or removes it once it carries
// nothing: no stake, no pending unbonds, no unwithdrawn rewards.
func (l *Ledger) persistOrPrune(user warden.Address, validator string, stake *Stake, dist *Distribution) error {
	if stake.empty(dist.PointsPerStake, l.scale) {
		return l.storage.deleteStake(l.storage.store, user, validator)
	}
	return l.storage.saveStake(l.storage.store, user, validator, stake)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	return nil
}
