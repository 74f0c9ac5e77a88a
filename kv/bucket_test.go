// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errors.New("not found")
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}
func (m mem) IsNotFound(err error) bool {
	return true
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Get([]byte(tt.key)); !reflect.DeepEqual(string(got), tt.want) {
				t.Errorf("Bucket.NewGetter.Get = %v, want %v", string(got), tt.want)
			}
		})
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket(""), "k2", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k"), "2", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Has([]byte(tt.key)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bucket.NewGetter.Has = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket_Store(t *testing.T) {
	store := NewMem()
	defer store.Close()

	b1 := Bucket("b1").NewStore(store)
	b2 := Bucket("b2").NewStore(store)

	assert.NoError(t, b1.Put([]byte("k"), []byte("v1")))
	assert.NoError(t, b2.Put([]byte("k"), []byte("v2")))

	got, err := b1.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// buckets are disjoint
	assert.NoError(t, b1.Delete([]byte("k")))
	has, err := b1.Has([]byte("k"))
	assert.NoError(t, err)
	assert.False(t, has)

	got, err = b2.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	_, err = b1.Get([]byte("k"))
	assert.True(t, b1.IsNotFound(err))
}

func TestBucket_Iterate(t *testing.T) {
	store := NewMem()
	defer store.Close()

	bucket := Bucket("pfx").NewStore(store)
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.NoError(t, bucket.Put([]byte(k), []byte("v-"+k)))
	}
	// outside the bucket, must stay invisible
	assert.NoError(t, store.Put([]byte("zzz"), []byte("v")))

	var keys []string
	iter := bucket.Iterate(Range{})
	defer iter.Release()
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"a", "b", "c", "d"}, keys)

	// bounded range, start included, limit excluded
	keys = keys[:0]
	iter2 := bucket.Iterate(Range{Start: []byte("b"), Limit: []byte("d")})
	defer iter2.Release()
	for iter2.Next() {
		keys = append(keys, string(iter2.Key()))
	}
	assert.Equal(t, []string{"b", "c"}, keys)
}

func TestBucket_Snapshot(t *testing.T) {
	store := NewMem()
	defer store.Close()

	bucket := Bucket("s").NewStore(store)
	assert.NoError(t, bucket.Put([]byte("k"), []byte("v0")))

	snap := bucket.Snapshot()
	defer snap.Release()

	assert.NoError(t, bucket.Put([]byte("k"), []byte("v1")))

	got, err := snap.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v0"), got)
}
