// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"io"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// PendingUnbond is one scheduled release of unstaked tokens.
type PendingUnbond struct {
	Amount    *big.Int
	ReleaseAt uint64 // unix seconds
}

// Stake is the position one user holds with one remote validator.
//
// Alignment offsets the reward points the position did not witness: staking
// adds amount × points-per-stake, unstaking subtracts it, so the rewards
// formula stays exact across stake changes. It can go negative when
// unstakes happen at a higher points-per-stake than the stakes before them.
type Stake struct {
	Staked    *big.Int
	Unbonds   []*PendingUnbond
	Alignment *big.Int
	Withdrawn *big.Int
}

func newStake() *Stake {
	return &Stake{
		Staked:    new(big.Int),
		Alignment: new(big.Int),
		Withdrawn: new(big.Int),
	}
}

// empty reports whether the record carries no value at the given
// points-per-stake and can be pruned.
func (s *Stake) empty(pps *uint256.Int, scale *uint256.Int) bool {
	return s.Staked.Sign() == 0 && len(s.Unbonds) == 0 && s.pending(pps, scale).Sign() == 0
}

// pending is the withdrawable reward amount:
// ⌊(staked × pps − alignment) / scale⌋ − withdrawn.
func (s *Stake) pending(pps *uint256.Int, scale *uint256.Int) *big.Int {
	points := new(big.Int).Mul(s.Staked, pps.ToBig())
	points.Sub(points, s.Alignment)
	points.Div(points, scale.ToBig())
	return points.Sub(points, s.Withdrawn)
}

// stakeIn books a stake increase at the current points-per-stake.
func (s *Stake) stakeIn(amount *big.Int, pps *uint256.Int) {
	s.Staked = new(big.Int).Add(s.Staked, amount)
	s.Alignment = new(big.Int).Add(s.Alignment, new(big.Int).Mul(amount, pps.ToBig()))
}

// stakeOut books a stake decrease and schedules its release.
func (s *Stake) stakeOut(amount *big.Int, pps *uint256.Int, releaseAt uint64) {
	s.Staked = new(big.Int).Sub(s.Staked, amount)
	s.Alignment = new(big.Int).Sub(s.Alignment, new(big.Int).Mul(amount, pps.ToBig()))
	s.Unbonds = append(s.Unbonds, &PendingUnbond{Amount: amount, ReleaseAt: releaseAt})
}

// releaseMatured drains every unbond due at now and returns the released
// total. The queue is sorted by release time, so the due entries form a
// prefix located by binary search.
func (s *Stake) releaseMatured(now uint64) *big.Int {
	released := new(big.Int)
	if len(s.Unbonds) == 0 || s.Unbonds[0].ReleaseAt > now {
		return released
	}
	idx := sort.Search(len(s.Unbonds), func(i int) bool {
		return s.Unbonds[i].ReleaseAt > now
	})
	for _, u := range s.Unbonds[:idx] {
		released.Add(released, u.Amount)
	}
	s.Unbonds = append([]*PendingUnbond(nil), s.Unbonds[idx:]...)
	return released
}

type stakeBody struct {
	Staked    *big.Int
	Unbonds   []*PendingUnbond
	AlignNeg  bool
	AlignAbs  *big.Int
	Withdrawn *big.Int
}

// EncodeRLP implements rlp.Encoder. Alignment is signed and RLP integers
// are not, so it travels as a sign flag plus magnitude.
func (s *Stake) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &stakeBody{
		Staked:    s.Staked,
		Unbonds:   s.Unbonds,
		AlignNeg:  s.Alignment.Sign() < 0,
		AlignAbs:  new(big.Int).Abs(s.Alignment),
		Withdrawn: s.Withdrawn,
	})
}

// DecodeRLP implements rlp.Decoder.
func (s *Stake) DecodeRLP(st *rlp.Stream) error {
	var body stakeBody
	if err := st.Decode(&body); err != nil {
		return err
	}
	alignment := body.AlignAbs
	if body.AlignNeg {
		alignment = new(big.Int).Neg(alignment)
	}
	*s = Stake{
		Staked:    body.Staked,
		Unbonds:   body.Unbonds,
		Alignment: alignment,
		Withdrawn: body.Withdrawn,
	}
	return nil
}
