// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/meshlock/warden/api/restutil"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/valsync"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Queued updates per subscriber before broadcasts start skipping it.
	updateQueueSize = 32
)

type Subscriptions struct {
	stream   *validatorStream
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the subscription endpoints and starts the update dispatcher.
func New(sync *valsync.Sync, allowedOrigins []string) *Subscriptions {
	sub := &Subscriptions{
		stream: newValidatorStream(sync),
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}

	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		sub.stream.DispatchLoop(sub.done)
	}()
	return sub
}

func (s *Subscriptions) handleSubscribeValidators(w http.ResponseWriter, req *http.Request) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "upgrade"))
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	// the connection is hijacked from here on, errors can only be logged
	updates := make(chan *valsync.SetUpdate, updateQueueSize)
	s.stream.Subscribe(updates)
	defer s.stream.Unsubscribe(updates)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Debug("failed to set read deadline", "err", err)
		return nil
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// drain inbound frames to learn when the peer goes away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case update := <-updates:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return nil
			}
			if err := conn.WriteJSON(convertUpdate(update)); err != nil {
				logger.Debug("failed to write update", "err", err)
				return nil
			}
		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return nil
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-s.done:
			return nil
		}
	}
}

// Close stops the dispatcher and lets every open connection unwind.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("subscriptions_validators").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeValidators))
}
