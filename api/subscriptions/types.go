// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import "github.com/meshlock/warden/valsync"

// ValidatorMessage is one applied set update, as streamed to subscribers.
type ValidatorMessage struct {
	Added   []AddedValidator `json:"added,omitempty"`
	Removed []string         `json:"removed,omitempty"`
}

// AddedValidator describes one operator joining the set.
type AddedValidator struct {
	Operator    string `json:"operator"`
	PubKey      string `json:"pubKey"`
	StartHeight uint64 `json:"startHeight"`
	StartTime   uint64 `json:"startTime"`
}

func convertUpdate(update *valsync.SetUpdate) *ValidatorMessage {
	msg := &ValidatorMessage{Removed: update.Removed}
	for _, add := range update.Added {
		msg.Added = append(msg.Added, AddedValidator{
			Operator:    add.OperatorID,
			PubKey:      add.PubKey,
			StartHeight: add.StartHeight,
			StartTime:   add.StartTime,
		})
	}
	return msg
}
