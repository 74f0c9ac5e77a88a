// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/warden"
)

const (
	stakesBucket                  = "ss"
	distributionsBucket kv.Bucket = "sd"
)

type storage struct {
	store         kv.Store
	distributions kv.Store
}

func newStorage(store kv.Store) *storage {
	return &storage{
		store:         store,
		distributions: distributionsBucket.NewStore(store),
	}
}

// stakeStore scopes stake records to one user, keyed by validator.
func (s *storage) stakeStore(user warden.Address) kv.Store {
	return kv.Bucket(stakesBucket + string(user.Bytes())).NewStore(s.store)
}

func (s *storage) stakePutter(p kv.Putter, user warden.Address) kv.Putter {
	return kv.Bucket(stakesBucket + string(user.Bytes())).NewPutter(p)
}

// loadStake returns a fresh zero record when none is stored.
func (s *storage) loadStake(user warden.Address, validator string) (*Stake, error) {
	data, err := s.stakeStore(user).Get([]byte(validator))
	if err != nil {
		if s.store.IsNotFound(err) {
			return newStake(), nil
		}
		return nil, err
	}
	var stake Stake
	if err := rlp.DecodeBytes(data, &stake); err != nil {
		return nil, err
	}
	return &stake, nil
}

func (s *storage) saveStake(p kv.Putter, user warden.Address, validator string, stake *Stake) error {
	data, err := rlp.EncodeToBytes(stake)
	if err != nil {
		return err
	}
	return s.stakePutter(p, user).Put([]byte(validator), data)
}

func (s *storage) deleteStake(p kv.Putter, user warden.Address, validator string) error {
	return s.stakePutter(p, user).Delete([]byte(validator))
}

// iterateStakes walks a user's stake records in ascending validator order,
// starting just after startAfter when given.
func (s *storage) iterateStakes(user warden.Address, startAfter string, fn func(validator string, stake *Stake) bool) error {
	var rng kv.Range
	if startAfter != "" {
		rng.Start = append([]byte(startAfter), 0)
	}
	iter := s.stakeStore(user).Iterate(rng)
	defer iter.Release()

	for ok := iter.First(); ok; ok = iter.Next() {
		var stake Stake
		if err := rlp.DecodeBytes(iter.Value(), &stake); err != nil {
			return err
		}
		if !fn(string(iter.Key()), &stake) {
			break
		}
	}
	return iter.Error()
}

// loadDistribution returns a fresh zero record when none is stored.
func (s *storage) loadDistribution(validator string) (*Distribution, error) {
	data, err := s.distributions.Get([]byte(validator))
	if err != nil {
		if s.store.IsNotFound(err) {
			return newDistribution(), nil
		}
		return nil, err
	}
	var dist Distribution
	if err := rlp.DecodeBytes(data, &dist); err != nil {
		return nil, err
	}
	return &dist, nil
}

func (s *storage) saveDistribution(p kv.Putter, validator string, dist *Distribution) error {
	data, err := rlp.EncodeToBytes(dist)
	if err != nil {
		return err
	}
	return distributionsBucket.NewPutter(p).Put([]byte(validator), data)
}
