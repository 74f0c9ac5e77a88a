// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/pkg/errors"
)

// Policy aggregates an account's slashable exposures into collateral usage.
// Usage caps what an account may withdraw: free = bonded − usage.
type Policy interface {
	// Usage returns the collateral consumed by the given liens.
	Usage(liens []*Lien) *big.Int
	// Name identifies the policy in config and query responses.
	Name() string
}

// MaxExposure takes the largest single exposure as the usage. Collateral can
// back several lienholders at once, as long as no single one of them could
// slash more than the bonded amount.
type MaxExposure struct{}

func (MaxExposure) Usage(liens []*Lien) *big.Int {
	max := new(big.Int)
	for _, l := range liens {
		if e := l.Exposure(); e.Cmp(max) > 0 {
			max = e
		}
	}
	return max
}

func (MaxExposure) Name() string { return "max" }

// SumExposure adds every exposure together, so the total slashable claim
// across all lienholders stays within the bonded amount.
type SumExposure struct{}

func (SumExposure) Usage(liens []*Lien) *big.Int {
	sum := new(big.Int)
	for _, l := range liens {
		sum.Add(sum, l.Exposure())
	}
	return sum
}

func (SumExposure) Name() string { return "sum" }

// ParsePolicy resolves a policy by its config name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "max":
		return MaxExposure{}, nil
	case "sum":
		return SumExposure{}, nil
	default:
		return nil, errors.Errorf("unknown lien policy %q", name)
	}
}
