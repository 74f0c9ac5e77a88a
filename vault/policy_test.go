// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lien(amount int64, ratio string) *Lien {
	return &Lien{Amount: big.NewInt(amount), SlashRatio: decimal.RequireFromString(ratio)}
}

func TestPolicyUsage(t *testing.T) {
	tests := []struct {
		name  string
		liens []*Lien
		max   int64
		sum   int64
	}{
		{"no liens", nil, 0, 0},
		{"single full ratio", []*Lien{lien(100, "1")}, 100, 100},
		{"single fractional", []*Lien{lien(5, "0.5")}, 2, 2},
		{"two holders", []*Lien{lien(300, "1"), lien(200, "0.6")}, 300, 420},
		{"three holders", []*Lien{lien(300, "1"), lien(200, "0.6"), lien(100, "0.6")}, 300, 480},
		{"zero ratio", []*Lien{lien(100, "0")}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, big.NewInt(tt.max), MaxExposure{}.Usage(tt.liens))
			assert.Equal(t, big.NewInt(tt.sum), SumExposure{}.Usage(tt.liens))
		})
	}
}

func TestLienExposure(t *testing.T) {
	// exposures round down
	assert.Equal(t, big.NewInt(66), lien(111, "0.6").Exposure())
	assert.Equal(t, big.NewInt(0), lien(1, "0.9").Exposure())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, "max", p.Name())

	p, err = ParsePolicy("sum")
	require.NoError(t, err)
	assert.Equal(t, "sum", p.Name())

	_, err = ParsePolicy("median")
	assert.Error(t, err)
}
