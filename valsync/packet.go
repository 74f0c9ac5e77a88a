// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package valsync

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// AddValidator is one validator joining the remote active set.
type AddValidator struct {
	OperatorID  string `json:"operator_id"`
	PubKey      string `json:"pub_key"`
	StartHeight uint64 `json:"start_height"`
	StartTime   uint64 `json:"start_time"`
}

// Packet is one inbound sync message. Exactly one of the two lists is set.
type Packet struct {
	AddValidators    []AddValidator `json:"add_validators,omitempty"`
	RemoveValidators []string       `json:"remove_validators,omitempty"`
}

func decodePacket(data []byte) (*Packet, error) {
	var p Packet
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.WithMessage(err, "decode packet")
	}
	if (p.AddValidators == nil) == (p.RemoveValidators == nil) {
		return nil, errMalformedPacket
	}
	return &p, nil
}

// successAck is the only acknowledgement this side ever writes: packet
// application is total, so there is no failure to report. The result is the
// base64 of an empty JSON object, matching the counterparty's envelope.
var successAck = []byte(`{"result":"e30="}`)
