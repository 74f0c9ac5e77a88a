// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault tracks bonded collateral and the liens pledged against it.
//
// Users bond collateral once and pledge it to one or more staking backends
// (lienholders). Each pledge opens or increases a lien priced at the
// backend's current slash ratio. A configurable policy aggregates the
// slashable exposures into the account's collateral usage; only collateral
// above the usage is free to withdraw.
//
// Mutating operations are expected to run fully serialized by the host.
// Side effects toward backends are never performed inline: operations
// return instruction values the host executes after the ledger update has
// been committed.
package vault

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/metrics"
	"github.com/meshlock/warden/warden"
)

var (
	logger = log.WithContext("pkg", "vault")

	metricOperationCount = metrics.LazyLoadCounterVec("vault_operation_count", []string{"op"})
)

// Lienholder is the capability a staking backend exposes to the vault. The
// vault calls SlashRatio to price a lien increase and emits instructions
// that make the host invoke ReceiveStake and ReleaseStake.
type Lienholder interface {
	// SlashRatio is the fraction of a lien the backend may slash, in [0, 1].
	SlashRatio() (decimal.Decimal, error)
	// ReceiveStake hands newly pledged collateral to the backend. msg is an
	// opaque payload forwarded untouched from the pledging user.
	ReceiveStake(account warden.Address, amount *big.Int, msg []byte) error
	// ReleaseStake asks the backend to give back up to amount of pledged
	// collateral and reports how much was actually released.
	ReleaseStake(account warden.Address, amount *big.Int) (*big.Int, error)
}

// Registry resolves lienholder addresses to their backends.
type Registry interface {
	Lienholder(addr warden.Address) (Lienholder, bool)
}

// Backends is a static Registry.
type Backends map[warden.Address]Lienholder

func (b Backends) Lienholder(addr warden.Address) (Lienholder, bool) {
	lh, ok := b[addr]
	return lh, ok
}

// Vault is the collateral ledger.
type Vault struct {
	storage  *storage
	registry Registry
	policy   Policy
}

// New creates a vault on the given store.
func New(store kv.Store, registry Registry, policy Policy) *Vault {
	return &Vault{
		storage:  newStorage(store),
		registry: registry,
		policy:   policy,
	}
}

// Policy returns the active lien policy.
func (v *Vault) Policy() Policy {
	return v.policy
}

// Bond adds amount to the account's bonded collateral.
func (v *Vault) Bond(account warden.Address, amount *big.Int) error {
	logger.Debug("bonding collateral", "account", account, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return err
	}
	acct, err := v.storage.loadAccount(account)
	if err != nil {
		return err
	}
	acct.Bonded = new(big.Int).Add(acct.Bonded, amount)
	if err := v.storage.saveAccount(account, acct); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "bond"})
	logger.Info("collateral bonded", "account", account, "amount", amount, "bonded", acct.Bonded)
	return nil
}

// Unbond withdraws amount of free collateral from the account. The returned
// instruction tells the host to hand the funds back to the user once the
// ledger update is committed.
func (v *Vault) Unbond(account warden.Address, amount *big.Int) (*ReleaseFundsInstruction, error) {
	logger.Debug("unbonding collateral", "account", account, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	acct, err := v.storage.loadAccount(account)
	if err != nil {
		return nil, err
	}
	free, err := v.free(account, acct)
	if err != nil {
		return nil, err
	}
	if amount.Cmp(free) > 0 {
		logger.Info("unbond rejected", "account", account, "amount", amount, "free", free)
		return nil, &ClaimsLockedError{Max: free}
	}
	acct.Bonded = new(big.Int).Sub(acct.Bonded, amount)
	if err := v.storage.saveAccount(account, acct); err != nil {
		return nil, err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "unbond"})
	logger.Info("collateral unbonded", "account", account, "amount", amount, "bonded", acct.Bonded)
	return &ReleaseFundsInstruction{Account: account, Amount: amount}, nil
}

// Pledge opens or increases the account's lien toward the lienholder. The
// lien's slash ratio is re-captured from the backend, and acceptance
// requires the projected collateral usage to stay within the bonded amount.
// The returned instruction carries the pledged stake to the backend.
func (v *Vault) Pledge(account, lienholder warden.Address, amount *big.Int, msg []byte) (*StakeInstruction, error) {
	logger.Debug("pledging collateral", "account", account, "lienholder", lienholder, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	backend, ok := v.registry.Lienholder(lienholder)
	if !ok {
		return nil, errUnknownLienholder
	}
	ratio, err := backend.SlashRatio()
	if err != nil {
		return nil, errors.WithMessage(err, "query slash ratio")
	}
	if ratio.IsNegative() || ratio.GreaterThan(decimal.New(1, 0)) {
		return nil, errInvalidSlashRatio
	}

	acct, err := v.storage.loadAccount(account)
	if err != nil {
		return nil, err
	}
	lien, err := v.storage.loadLien(account, lienholder)
	if err != nil {
		return nil, err
	}
	if lien == nil {
		lien = &Lien{Amount: new(big.Int)}
	}
	lien.Amount = new(big.Int).Add(lien.Amount, amount)
	lien.SlashRatio = ratio

	projected, err := v.projectedLiens(account, lienholder, lien)
	if err != nil {
		return nil, err
	}
	usage := v.policy.Usage(projected)
	if usage.Cmp(acct.Bonded) > 0 {
		logger.Info("pledge rejected", "account", account, "lienholder", lienholder,
			"amount", amount, "usage", usage, "bonded", acct.Bonded)
		return nil, errInsufficientBalance
	}
	if err := v.storage.saveLien(account, lienholder, lien); err != nil {
		return nil, err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "pledge"})
	logger.Info("collateral pledged", "account", account, "lienholder", lienholder,
		"amount", amount, "lien", lien.Amount, "ratio", ratio)
	return &StakeInstruction{
		Lienholder: lienholder,
		Account:    account,
		Amount:     amount,
		Msg:        msg,
	}, nil
}

// ReleaseLien shrinks the lien the lienholder holds against the account.
// The lien record survives at zero amount.
func (v *Vault) ReleaseLien(account, lienholder warden.Address, amount *big.Int) error {
	logger.Debug("releasing lien", "account", account, "lienholder", lienholder, "amount", amount)
	if err := checkAmount(amount); err != nil {
		return err
	}
	lien, err := v.storage.loadLien(account, lienholder)
	if err != nil {
		return err
	}
	if lien == nil {
		return errUnknownLienholder
	}
	if amount.Cmp(lien.Amount) > 0 {
		return errInsufficientLien
	}
	lien.Amount = new(big.Int).Sub(lien.Amount, amount)
	if err := v.storage.saveLien(account, lienholder, lien); err != nil {
		return err
	}

	metricOperationCount().AddWithLabel(1, map[string]string{"op": "release_lien"})
	logger.Info("lien released", "account", account, "lienholder", lienholder,
		"amount", amount, "lien", lien.Amount)
	return nil
}

// AccountSummary is the collateral book of one account.
type AccountSummary struct {
	Address warden.Address
	Bonded  *big.Int
	Usage   *big.Int
	Free    *big.Int
}

// GetAccount summarizes the account's collateral under the active policy.
// Unknown addresses yield an all-zero summary.
func (v *Vault) GetAccount(addr warden.Address) (*AccountSummary, error) {
	acct, err := v.storage.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	liens, err := v.storage.loadLiens(addr)
	if err != nil {
		return nil, err
	}
	usage := v.policy.Usage(liens)
	return &AccountSummary{
		Address: addr,
		Bonded:  acct.Bonded,
		Usage:   usage,
		Free:    new(big.Int).Sub(acct.Bonded, usage),
	}, nil
}

// Claim is one lien of an account, as reported by queries.
type Claim struct {
	Lienholder warden.Address
	Amount     *big.Int
	SlashRatio decimal.Decimal
}

// Claims pages through the account's liens in ascending lienholder order.
// startAfter is exclusive.
func (v *Vault) Claims(addr warden.Address, startAfter *warden.Address, limit uint32) ([]*Claim, error) {
	limit = warden.ClampPageLimit(limit)

	var claims []*Claim
	if err := v.storage.iterateLiens(addr, startAfter, func(holder warden.Address, lien *Lien) bool {
		claims = append(claims, &Claim{holder, lien.Amount, lien.SlashRatio})
		return uint32(len(claims)) < limit
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

// Accounts pages through all accounts in ascending address order. With
// withCollateral, accounts whose bonded collateral is zero are skipped and
// do not count toward the limit. startAfter is exclusive.
func (v *Vault) Accounts(withCollateral bool, startAfter *warden.Address, limit uint32) ([]*AccountSummary, error) {
	limit = warden.ClampPageLimit(limit)

	var (
		list     []*AccountSummary
		innerErr error
	)
	if err := v.storage.iterateAccounts(startAfter, func(addr warden.Address, acct *Account) bool {
		if withCollateral && acct.Bonded.Sign() == 0 {
			return true
		}
		liens, err := v.storage.loadLiens(addr)
		if err != nil {
			innerErr = err
			return false
		}
		usage := v.policy.Usage(liens)
		list = append(list, &AccountSummary{
			Address: addr,
			Bonded:  acct.Bonded,
			Usage:   usage,
			Free:    new(big.Int).Sub(acct.Bonded, usage),
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

func (v *Vault) free(account warden.Address, acct *Account) (*big.Int, error) {
	liens, err := v.storage.loadLiens(account)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(acct.Bonded, v.policy.Usage(liens)), nil
}

func (v *Vault) projectedLiens(account, lienholder warden.Address, updated *Lien) ([]*Lien, error) {
	var (
		liens []*Lien
		found bool
	)
	if err := v.storage.iterateLiens(account, nil, func(holder warden.Address, lien *Lien) bool {
		if holder == lienholder {
			lien = updated
			found = true
		}
		liens = append(liens, lien)
		return true
	}); err != nil {
		return nil, err
	}
	if !found {
		liens = append(liens, updated)
	}
	return liens, nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	return nil
}
