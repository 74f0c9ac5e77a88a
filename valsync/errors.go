// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package valsync

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	errMustBePassive        = errors.New("handshake must be initiated by the counterparty")
	errChannelExists        = errors.New("sync channel already open")
	errWrongOrdering        = errors.New("sync channel must be unordered")
	errUnauthorizedEndpoint = errors.New("unauthorized counterparty endpoint")
	errClosingNotAllowed    = errors.New("sync channel cannot be closed")
	errWrongProtocol        = errors.New("wrong protocol name")
	errMalformedPacket      = errors.New("packet must carry exactly one message kind")
)

// VersionError reports a counterparty protocol version below the minimum.
type VersionError struct {
	Proposed string
	Min      string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported protocol version %s, minimum %s", e.Proposed, e.Min)
}

func IsVersionError(err error) bool {
	var ve *VersionError
	return errors.As(err, &ve)
}

func IsErrMustBePassive(err error) bool {
	return errors.Cause(err) == errMustBePassive
}

func IsErrChannelExists(err error) bool {
	return errors.Cause(err) == errChannelExists
}

func IsErrUnauthorizedEndpoint(err error) bool {
	return errors.Cause(err) == errUnauthorizedEndpoint
}

func IsErrMalformedPacket(err error) bool {
	return errors.Cause(err) == errMalformedPacket
}
