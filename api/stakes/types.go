// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/meshlock/warden/staking"
)

// Stake is the cross-chain delegation of one user towards one validator.
type Stake struct {
	Validator string           `json:"validator"`
	Staked    *math.Decimal256 `json:"staked"`
	Rewards   *math.Decimal256 `json:"rewards"`
	Unbonds   []*Unbond        `json:"unbonds"`
}

// Unbond is one pending unbonding tranche.
type Unbond struct {
	Amount    *math.Decimal256 `json:"amount"`
	ReleaseAt uint64           `json:"releaseAt"`
}

func convertStake(s *staking.StakeSummary) *Stake {
	return &Stake{
		Validator: s.Validator,
		Staked:    (*math.Decimal256)(s.Staked),
		Rewards:   (*math.Decimal256)(s.Rewards),
		Unbonds:   convertUnbonds(s.Unbonds),
	}
}

func convertUnbonds(list []*staking.PendingUnbond) []*Unbond {
	out := make([]*Unbond, len(list))
	for i, u := range list {
		out[i] = &Unbond{
			Amount:    (*math.Decimal256)(u.Amount),
			ReleaseAt: u.ReleaseAt,
		}
	}
	return out
}
