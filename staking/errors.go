// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/pkg/errors"

var (
	errInvalidAmount     = errors.New("amount must be positive")
	errValidatorInactive = errors.New("validator not active")
	errInsufficientStake = errors.New("insufficient stake")
)

func IsErrInvalidAmount(err error) bool {
	return errors.Cause(err) == errInvalidAmount
}

func IsErrValidatorInactive(err error) bool {
	return errors.Cause(err) == errValidatorInactive
}

func IsErrInsufficientStake(err error) bool {
	return errors.Cause(err) == errInsufficientStake
}
