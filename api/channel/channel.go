// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package channel

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meshlock/warden/api/restutil"
	"github.com/meshlock/warden/valsync"
)

// Endpoint is one side of the sync channel.
type Endpoint struct {
	PortID    string `json:"portId"`
	ChannelID string `json:"channelId,omitempty"`
}

// AuthorizedEndpoint is the only counterparty allowed to open the channel.
type AuthorizedEndpoint struct {
	ConnectionID string `json:"connectionId"`
	PortID       string `json:"portId"`
}

// OpenChannel is the established channel's metadata.
type OpenChannel struct {
	Local        Endpoint `json:"local"`
	Counterparty Endpoint `json:"counterparty"`
	ConnectionID string   `json:"connectionId"`
	Ordering     string   `json:"ordering"`
	Version      string   `json:"version"`
}

// Info is the full channel view: the pinned authorization plus the open
// channel once the handshake completed.
type Info struct {
	Authorized *AuthorizedEndpoint `json:"authorized"`
	Channel    *OpenChannel        `json:"channel"`
}

type Channel struct {
	sync *valsync.Sync
}

func New(sync *valsync.Sync) *Channel {
	return &Channel{sync}
}

func (c *Channel) handleGetChannel(w http.ResponseWriter, _ *http.Request) error {
	info := &Info{}

	ep, err := c.sync.Endpoint()
	if err != nil {
		return err
	}
	if ep != nil {
		info.Authorized = &AuthorizedEndpoint{
			ConnectionID: ep.ConnectionID,
			PortID:       ep.PortID,
		}
	}

	ch, err := c.sync.Channel()
	if err != nil {
		return err
	}
	if ch != nil {
		info.Channel = &OpenChannel{
			Local:        Endpoint{PortID: ch.Local.PortID, ChannelID: ch.Local.ChannelID},
			Counterparty: Endpoint{PortID: ch.Counterparty.PortID, ChannelID: ch.Counterparty.ChannelID},
			ConnectionID: ch.ConnectionID,
			Ordering:     ch.Ordering.String(),
			Version:      ch.Version,
		}
	}
	return restutil.WriteJSON(w, info)
}

func (c *Channel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("channel_get_channel").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetChannel))
}
