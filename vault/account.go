// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/shopspring/decimal"
)

// Account records the bonded collateral of a single user. Accounts are never
// deleted; one with zero bonded collateral and no liens is indistinguishable
// from one that never existed.
type Account struct {
	Bonded *big.Int
}

func newAccount() *Account {
	return &Account{Bonded: new(big.Int)}
}

// Lien is a slashable claim a lienholder holds against an account's
// collateral. SlashRatio is re-captured from the lienholder on every
// increase, so it reflects the backend's ratio as of the last pledge.
type Lien struct {
	Amount     *big.Int
	SlashRatio decimal.Decimal
}

// Exposure is the slashable portion of the lien, ⌊amount × ratio⌋.
func (l *Lien) Exposure() *big.Int {
	return decimal.NewFromBigInt(l.Amount, 0).Mul(l.SlashRatio).BigInt()
}

type lienBody struct {
	Amount *big.Int
	Ratio  string
}

// EncodeRLP implements rlp.Encoder.
func (l *Lien) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &lienBody{l.Amount, l.SlashRatio.String()})
}

// DecodeRLP implements rlp.Decoder.
func (l *Lien) DecodeRLP(s *rlp.Stream) error {
	var body lienBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	ratio, err := decimal.NewFromString(body.Ratio)
	if err != nil {
		return err
	}
	*l = Lien{Amount: body.Amount, SlashRatio: ratio}
	return nil
}
