// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package valset

// Status is the lifecycle state of a remote validator.
type Status uint8

const (
	// StatusActive marks a validator eligible for new stake.
	StatusActive Status = iota
	// StatusTombstoned marks a validator permanently removed. Tombstones
	// are never reused; a later add for the same operator is absorbed.
	StatusTombstoned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusTombstoned:
		return "tombstoned"
	default:
		return "unknown"
	}
}

// Record is the replicated state of one remote validator. Tombstones carry
// no metadata, whichever order add and remove arrived in.
type Record struct {
	PubKey      string
	StartHeight uint64
	StartTime   uint64
	Status      Status
}

// Entry pairs a record with its operator for listings.
type Entry struct {
	Operator string
	*Record
}
