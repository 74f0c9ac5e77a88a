// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/meshlock/warden/warden"
)

// StakeInstruction tells the host to hand pledged collateral to a backend.
// It must be executed only after the lien update has been committed; the
// vault does not await or observe the outcome.
type StakeInstruction struct {
	Lienholder warden.Address
	Account    warden.Address
	Amount     *big.Int
	Msg        []byte
}

// ReleaseFundsInstruction tells the host to transfer unbonded collateral
// back to the account owner.
type ReleaseFundsInstruction struct {
	Account warden.Address
	Amount  *big.Int
}

// Execute dispatches stake instructions to their backends through the
// registry. Hosts call it after committing the ledger mutation that
// produced the instructions.
func Execute(registry Registry, instructions ...*StakeInstruction) error {
	for _, in := range instructions {
		backend, ok := registry.Lienholder(in.Lienholder)
		if !ok {
			return errUnknownLienholder
		}
		if err := backend.ReceiveStake(in.Account, in.Amount, in.Msg); err != nil {
			return err
		}
	}
	return nil
}
