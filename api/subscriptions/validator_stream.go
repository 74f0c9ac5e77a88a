// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"sync"

	"github.com/meshlock/warden/valsync"
)

// validatorStream fans applied set updates out to websocket listeners.
// Broadcast is non-blocking, so a stalled connection drops updates instead
// of backing up the sync feed.
type validatorStream struct {
	sync      *valsync.Sync
	listeners map[chan *valsync.SetUpdate]struct{}
	mu        sync.RWMutex
}

func newValidatorStream(sync *valsync.Sync) *validatorStream {
	return &validatorStream{
		sync:      sync,
		listeners: make(map[chan *valsync.SetUpdate]struct{}),
	}
}

func (v *validatorStream) Subscribe(ch chan *valsync.SetUpdate) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.listeners[ch] = struct{}{}
}

func (v *validatorStream) Unsubscribe(ch chan *valsync.SetUpdate) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.listeners, ch)
}

func (v *validatorStream) DispatchLoop(done <-chan struct{}) {
	updateCh := make(chan *valsync.SetUpdate, updateQueueSize)
	sub := v.sync.SubscribeUpdates(updateCh)
	defer sub.Unsubscribe()

	for {
		select {
		case update := <-updateCh:
			v.mu.RLock()
			func() {
				for lsn := range v.listeners {
					select {
					case lsn <- update:
					case <-done:
						return
					default: // slow subscriber, skip
					}
				}
			}()
			v.mu.RUnlock()
		case <-done:
			return
		}
	}
}
