// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Distribution is the reward book of one remote validator.
type Distribution struct {
	TotalStake     *big.Int
	PointsPerStake *uint256.Int
	PointsLeftover *uint256.Int
}

func newDistribution() *Distribution {
	return &Distribution{
		TotalStake:     new(big.Int),
		PointsPerStake: new(uint256.Int),
		PointsLeftover: new(uint256.Int),
	}
}

// inject spreads a reward across the current total stake. The amount is
// widened by scale into points; whatever does not divide evenly stays in
// the leftover and rides along with the next injection. With zero total
// stake the whole injection becomes leftover.
func (d *Distribution) inject(amount *big.Int, scale *uint256.Int) {
	points := new(uint256.Int).Mul(uint256.MustFromBig(amount), scale)
	points.Add(points, d.PointsLeftover)
	if d.TotalStake.Sign() == 0 {
		d.PointsLeftover = points
		return
	}
	perStake := new(uint256.Int)
	leftover := new(uint256.Int)
	perStake.DivMod(points, uint256.MustFromBig(d.TotalStake), leftover)
	d.PointsPerStake = new(uint256.Int).Add(d.PointsPerStake, perStake)
	d.PointsLeftover = leftover
}

// stakeChanged moves the total stake by delta, which is negative on
// unstakes. Later injections split against the new total; points already
// distributed are untouched.
func (d *Distribution) stakeChanged(delta *big.Int) {
	d.TotalStake = new(big.Int).Add(d.TotalStake, delta)
}
