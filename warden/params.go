// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package warden

import "github.com/holiman/uint256"

// Constants of the restaking protocol.
const (
	DefaultUnbondingPeriod uint64 = 60 * 60 * 24 * 21 // (unit: second) release delay of cross-chain unstakes.

	DefaultPageLimit uint32 = 30  // page size of listing queries when the caller gives none.
	MaxPageLimit     uint32 = 100 // hard cap of listing query page size.
)

// RewardScale is the fixed-point factor applied to reward amounts before
// splitting them into per-stake points. 2^32 keeps the rounding loss of a
// distribution below one coin per 4 billion stake units.
var RewardScale = uint256.NewInt(1 << 32)

// ClampPageLimit normalizes the page size of a listing query.
func ClampPageLimit(limit uint32) uint32 {
	if limit == 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}
