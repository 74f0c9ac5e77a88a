// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package valset

import (
	"fmt"
	mathrand "math/rand/v2"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlock/warden/kv"
)

func TestAdd(t *testing.T) {
	r := New(kv.NewMem())

	require.NoError(t, r.Add("val1", "pubkey1", 100, 1000))
	rec, err := r.Get("val1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StatusActive, rec.Status)
	assert.Equal(t, "pubkey1", rec.PubKey)
	assert.Equal(t, uint64(100), rec.StartHeight)

	// a duplicate add is absorbed, even with different data
	require.NoError(t, r.Add("val1", "other", 999, 9999))
	rec, err = r.Get("val1")
	require.NoError(t, err)
	assert.Equal(t, "pubkey1", rec.PubKey)
	assert.Equal(t, uint64(100), rec.StartHeight)
}

func TestRemove(t *testing.T) {
	r := New(kv.NewMem())

	require.NoError(t, r.Add("val1", "pubkey1", 100, 1000))
	require.NoError(t, r.Remove("val1"))

	rec, err := r.Get("val1")
	require.NoError(t, err)
	assert.Equal(t, StatusTombstoned, rec.Status)

	// tombstones are permanent
	require.NoError(t, r.Remove("val1"))
	require.NoError(t, r.Add("val1", "pubkey1", 100, 1000))
	active, err := r.Active("val1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRemoveBeforeAdd(t *testing.T) {
	r := New(kv.NewMem())

	// the remove outran its add; it must still win
	require.NoError(t, r.Remove("val1"))
	require.NoError(t, r.Add("val1", "pubkey1", 100, 1000))

	rec, err := r.Get("val1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StatusTombstoned, rec.Status)
}

func TestActive(t *testing.T) {
	r := New(kv.NewMem())

	active, err := r.Active("val1")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, r.Add("val1", "pubkey1", 100, 1000))
	active, err = r.Active("val1")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, r.Remove("val1"))
	active, err = r.Active("val1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestList(t *testing.T) {
	r := New(kv.NewMem())

	for i := 1; i <= 5; i++ {
		require.NoError(t, r.Add(fmt.Sprintf("val%d", i), "pk", uint64(i), 0))
	}
	require.NoError(t, r.Remove("val2"))
	require.NoError(t, r.Remove("val4"))

	all, err := r.List(false, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "val1", all[0].Operator)
	assert.Equal(t, StatusTombstoned, all[1].Status)

	// tombstoned operators do not count toward the page limit
	active, err := r.List(true, "", 2)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "val1", active[0].Operator)
	assert.Equal(t, "val3", active[1].Operator)

	active, err = r.List(true, "val3", 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "val5", active[0].Operator)
}

type update struct {
	add      bool
	operator string
	pubKey   string
	height   uint64
	time     uint64
}

func applyAll(t *testing.T, r *Registry, updates []update) {
	t.Helper()
	for _, u := range updates {
		if u.add {
			require.NoError(t, r.Add(u.operator, u.pubKey, u.height, u.time))
		} else {
			require.NoError(t, r.Remove(u.operator))
		}
	}
}

func snapshot(t *testing.T, r *Registry) []*Entry {
	t.Helper()
	entries, err := r.List(false, "", 100)
	require.NoError(t, err)
	return entries
}

// Every permutation of one update multiset must converge to the same set,
// duplicates included: the transport redelivers and reorders at will.
func TestConvergence(t *testing.T) {
	f := fuzz.New()

	var updates []update
	for i := range 6 {
		operator := fmt.Sprintf("cosmosvaloper1%03d", i)
		var u update
		f.Fuzz(&u.pubKey)
		f.Fuzz(&u.height)
		f.Fuzz(&u.time)
		u.add = true
		u.operator = operator

		updates = append(updates, u)
		if i%2 == 0 {
			updates = append(updates, u) // redelivered add
		}
		if i%3 != 0 {
			updates = append(updates, update{operator: operator}) // remove
		}
		if i%3 == 2 {
			updates = append(updates, update{operator: operator}) // redelivered remove
		}
	}

	reference := New(kv.NewMem())
	applyAll(t, reference, updates)
	want := snapshot(t, reference)
	require.NotEmpty(t, want)

	for range 25 {
		shuffled := append([]update(nil), updates...)
		mathrand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		r := New(kv.NewMem())
		applyAll(t, r, shuffled)
		assert.Equal(t, want, snapshot(t, r))
	}
}

func TestIdempotence(t *testing.T) {
	f := fuzz.New()
	var pubKey string
	f.Fuzz(&pubKey)

	once := New(kv.NewMem())
	require.NoError(t, once.Add("val1", pubKey, 7, 11))
	require.NoError(t, once.Remove("val2"))

	twice := New(kv.NewMem())
	for range 2 {
		require.NoError(t, twice.Add("val1", pubKey, 7, 11))
		require.NoError(t, twice.Remove("val2"))
	}

	assert.Equal(t, snapshot(t, once), snapshot(t, twice))
}
