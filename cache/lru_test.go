// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoad(t *testing.T) {
	_, err := NewLRU(0)
	require.Error(t, err)

	c, err := NewLRU(16)
	require.NoError(t, err)

	loads := 0
	loader := func(key interface{}) (interface{}, error) {
		loads++
		return key.(int) * 10, nil
	}

	v, err := c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	// second lookup is served from the cache
	v, err = c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, loads)

	// a failed load caches nothing
	_, err = c.GetOrLoad(2, func(interface{}) (interface{}, error) {
		return nil, errors.New("load failed")
	})
	require.Error(t, err)
	_, ok := c.Get(2)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	c, err := NewLRU(16)
	require.NoError(t, err)

	loader := func(key interface{}) (interface{}, error) { return key, nil }
	for range 2 {
		_, err := c.GetOrLoad("k", loader)
		require.NoError(t, err)
	}

	hit, miss, changed := c.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
	assert.True(t, changed)

	_, _, changed = c.Stats()
	assert.False(t, changed)
}
