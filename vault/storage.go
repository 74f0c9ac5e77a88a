// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/warden"
)

const (
	accountsBucket kv.Bucket = "va"
	liensBucket              = "vl"
)

type storage struct {
	store    kv.Store
	accounts kv.Store
}

func newStorage(store kv.Store) *storage {
	return &storage{
		store:    store,
		accounts: accountsBucket.NewStore(store),
	}
}

// lienStore scopes lien records to one account, keyed by lienholder.
func (s *storage) lienStore(account warden.Address) kv.Store {
	return kv.Bucket(liensBucket + string(account.Bytes())).NewStore(s.store)
}

func (s *storage) loadAccount(addr warden.Address) (*Account, error) {
	data, err := s.accounts.Get(addr.Bytes())
	if err != nil {
		if s.accounts.IsNotFound(err) {
			return newAccount(), nil
		}
		return nil, err
	}
	var acct Account
	if err := rlp.DecodeBytes(data, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *storage) saveAccount(addr warden.Address, acct *Account) error {
	data, err := rlp.EncodeToBytes(acct)
	if err != nil {
		return err
	}
	return s.accounts.Put(addr.Bytes(), data)
}

// loadLien returns nil without error if the lien does not exist.
func (s *storage) loadLien(account, lienholder warden.Address) (*Lien, error) {
	data, err := s.lienStore(account).Get(lienholder.Bytes())
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var lien Lien
	if err := rlp.DecodeBytes(data, &lien); err != nil {
		return nil, err
	}
	return &lien, nil
}

func (s *storage) saveLien(account, lienholder warden.Address, lien *Lien) error {
	data, err := rlp.EncodeToBytes(lien)
	if err != nil {
		return err
	}
	return s.lienStore(account).Put(lienholder.Bytes(), data)
}

// iterateLiens walks an account's liens in ascending lienholder order,
// starting just after startAfter when given.
func (s *storage) iterateLiens(account warden.Address, startAfter *warden.Address, fn func(lienholder warden.Address, lien *Lien) bool) error {
	var rng kv.Range
	if startAfter != nil {
		rng.Start = append(startAfter.Bytes(), 0)
	}
	iter := s.lienStore(account).Iterate(rng)
	defer iter.Release()

	for ok := iter.First(); ok; ok = iter.Next() {
		var lien Lien
		if err := rlp.DecodeBytes(iter.Value(), &lien); err != nil {
			return err
		}
		if !fn(warden.BytesToAddress(iter.Key()), &lien) {
			break
		}
	}
	return iter.Error()
}

func (s *storage) loadLiens(account warden.Address) ([]*Lien, error) {
	var liens []*Lien
	if err := s.iterateLiens(account, nil, func(_ warden.Address, lien *Lien) bool {
		liens = append(liens, lien)
		return true
	}); err != nil {
		return nil, err
	}
	return liens, nil
}

// iterateAccounts walks all accounts in ascending address order, starting
// just after startAfter when given.
func (s *storage) iterateAccounts(startAfter *warden.Address, fn func(addr warden.Address, acct *Account) bool) error {
	var rng kv.Range
	if startAfter != nil {
		rng.Start = append(startAfter.Bytes(), 0)
	}
	iter := s.accounts.Iterate(rng)
	defer iter.Release()

	for ok := iter.First(); ok; ok = iter.Next() {
		var acct Account
		if err := rlp.DecodeBytes(iter.Value(), &acct); err != nil {
			return err
		}
		if !fn(warden.BytesToAddress(iter.Key()), &acct) {
			break
		}
	}
	return iter.Error()
}
