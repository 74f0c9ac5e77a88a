// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meshlock/warden/kv"
)

// DefaultActivityWindow is how long the node may go without an applied
// validator update before it reports unhealthy.
const DefaultActivityWindow = time.Hour

var probeKey = []byte("health-probe")

// Status is the admin health view.
type Status struct {
	Healthy     bool       `json:"healthy"`
	Storage     bool       `json:"storage"`
	ChannelOpen bool       `json:"channelOpen"`
	LastUpdate  *time.Time `json:"lastValidatorUpdate"`
}

// Health tracks storage reachability and sync channel activity.
type Health struct {
	lock           sync.RWMutex
	store          kv.Store
	startedAt      time.Time
	lastUpdate     time.Time
	channelOpen    bool
	activityWindow time.Duration
	probes         singleflight.Group
}

func New(store kv.Store, activityWindow time.Duration) *Health {
	if activityWindow <= 0 {
		activityWindow = DefaultActivityWindow
	}
	return &Health{
		store:          store,
		startedAt:      time.Now(),
		activityWindow: activityWindow,
	}
}

// NewUpdate marks a just-applied validator update.
func (h *Health) NewUpdate() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastUpdate = time.Now()
}

// ChannelStatus records whether the sync channel is established.
func (h *Health) ChannelStatus(open bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.channelOpen = open
}

func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	storageOK := h.pingStorage()

	// the activity clock starts at boot; every applied update rewinds it
	last := h.lastUpdate
	if last.IsZero() {
		last = h.startedAt
	}
	healthy := storageOK && time.Since(last) <= h.activityWindow

	var lastUpdate *time.Time
	if !h.lastUpdate.IsZero() {
		ts := h.lastUpdate
		lastUpdate = &ts
	}
	return &Status{
		Healthy:     healthy,
		Storage:     storageOK,
		ChannelOpen: h.channelOpen,
		LastUpdate:  lastUpdate,
	}, nil
}

// pingStorage issues a read to prove the backend still answers. A missing
// probe key is a healthy answer. Concurrent pollers share a single probe.
func (h *Health) pingStorage() bool {
	if h.store == nil {
		return false
	}
	ok, _, _ := h.probes.Do("ping", func() (any, error) {
		if _, err := h.store.Get(probeKey); err != nil && !h.store.IsNotFound(err) {
			return false, nil
		}
		return true, nil
	})
	return ok.(bool)
}
