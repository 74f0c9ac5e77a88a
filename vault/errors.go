// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

var (
	errInvalidAmount       = errors.New("amount must be positive")
	errInsufficientBalance = errors.New("insufficient bonded collateral")
	errUnknownLienholder   = errors.New("unknown lienholder")
	errInsufficientLien    = errors.New("insufficient lien")
	errInvalidSlashRatio   = errors.New("slash ratio out of range")
)

// ClaimsLockedError is returned when an unbond would cut into collateral
// still backing active liens. Max is the largest amount the account can
// withdraw right now.
type ClaimsLockedError struct {
	Max *big.Int
}

func (e *ClaimsLockedError) Error() string {
	return fmt.Sprintf("claims locked, max withdrawable %v", e.Max)
}

func IsClaimsLocked(err error) bool {
	var locked *ClaimsLockedError
	return errors.As(err, &locked)
}

func IsErrInvalidAmount(err error) bool {
	return errors.Cause(err) == errInvalidAmount
}

func IsErrInsufficientBalance(err error) bool {
	return errors.Cause(err) == errInsufficientBalance
}

func IsErrUnknownLienholder(err error) bool {
	return errors.Cause(err) == errUnknownLienholder
}

func IsErrInsufficientLien(err error) bool {
	return errors.Cause(err) == errInsufficientLien
}
