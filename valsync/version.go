// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package valsync

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ProtocolName identifies the sync protocol in handshake payloads.
const ProtocolName = "warden"

const (
	// SupportedVersion is the highest protocol version this side speaks.
	SupportedVersion = "1.0.0"
	// MinVersion is the lowest counterparty version still accepted.
	MinVersion = "1.0.0"
)

// ProtocolVersion is the version payload exchanged during the handshake.
type ProtocolVersion struct {
	Protocol string `json:"protocol"`
	Version  string `json:"version"`
}

// Versions bounds the negotiable protocol version range.
type Versions struct {
	Min       string
	Supported string
}

// DefaultVersions is the range this release negotiates.
func DefaultVersions() Versions {
	return Versions{Min: MinVersion, Supported: SupportedVersion}
}

// negotiate builds the version response to a counterparty proposal: below
// the minimum fails, above the supported version caps at supported, and in
// between the proposal is echoed.
func (v Versions) negotiate(counterparty string) (string, error) {
	var proposal ProtocolVersion
	if err := json.Unmarshal([]byte(counterparty), &proposal); err != nil {
		return "", errors.WithMessage(err, "decode counterparty version")
	}
	if proposal.Protocol != ProtocolName {
		return "", errWrongProtocol
	}
	proposed, err := parseVersion(proposal.Version)
	if err != nil {
		return "", err
	}
	minVer, err := parseVersion(v.Min)
	if err != nil {
		return "", err
	}
	supported, err := parseVersion(v.Supported)
	if err != nil {
		return "", err
	}
	if compareVersions(proposed, minVer) < 0 {
		return "", &VersionError{Proposed: proposal.Version, Min: v.Min}
	}
	version := proposal.Version
	if compareVersions(proposed, supported) > 0 {
		version = v.Supported
	}
	data, err := json.Marshal(&ProtocolVersion{Protocol: ProtocolName, Version: version})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type version [3]uint64

func parseVersion(s string) (version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return version{}, errors.Errorf("malformed version %q", s)
	}
	var v version
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return version{}, errors.Errorf("malformed version %q", s)
		}
		v[i] = n
	}
	return v, nil
}

func compareVersions(a, b version) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
