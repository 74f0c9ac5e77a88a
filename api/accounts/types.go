// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"

	"github.com/meshlock/warden/vault"
	"github.com/meshlock/warden/warden"
)

// Account is the collateral view of a bonding account. Amounts are
// decimal strings.
type Account struct {
	Bonded *math.Decimal256 `json:"bonded"`
	Usage  *math.Decimal256 `json:"usage"`
	Free   *math.Decimal256 `json:"free"`
}

// AccountEntry is one row of the account listing.
type AccountEntry struct {
	Address warden.Address `json:"address"`
	Account
}

// Claim is one lien seen from the account side.
type Claim struct {
	Lienholder warden.Address   `json:"lienholder"`
	Amount     *math.Decimal256 `json:"amount"`
	SlashRatio decimal.Decimal  `json:"slashRatio"`
}

func convertAccount(summary *vault.AccountSummary) *Account {
	return &Account{
		Bonded: (*math.Decimal256)(summary.Bonded),
		Usage:  (*math.Decimal256)(summary.Usage),
		Free:   (*math.Decimal256)(summary.Free),
	}
}

func convertAccountEntry(summary *vault.AccountSummary) *AccountEntry {
	return &AccountEntry{
		Address: summary.Address,
		Account: *convertAccount(summary),
	}
}

func convertClaim(claim *vault.Claim) *Claim {
	return &Claim{
		Lienholder: claim.Lienholder,
		Amount:     (*math.Decimal256)(claim.Amount),
		SlashRatio: claim.SlashRatio,
	}
}
