// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var g Goes
	var ran atomic.Int32

	for range 4 {
		g.Go(func() { ran.Add(1) })
	}
	g.Wait()
	assert.Equal(t, int32(4), ran.Load())

	release := make(chan struct{})
	g.Go(func() { <-release })

	select {
	case <-g.Done():
		t.Fatal("done before goroutine exited")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("done never closed")
	}
}
