// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package warden

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	// without prefix
	addr2, err := ParseAddress("7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.NoError(t, err)
	assert.Equal(t, *addr, *addr2)

	_, err = ParseAddress("0x7567")
	assert.Error(t, err)

	_, err = ParseAddress("zz67d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	addr := MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")

	data, err := json.Marshal(&addr)
	assert.NoError(t, err)
	assert.Equal(t, `"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"`, string(data))

	var decoded Address
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
}

func TestBytesToAddress(t *testing.T) {
	// short input extends from the left
	assert.Equal(t, MustParseAddress("0x0000000000000000000000000000000000000001"), BytesToAddress([]byte{1}))

	// long input crops from the left
	long := make([]byte, 32)
	long[31] = 2
	assert.Equal(t, MustParseAddress("0x0000000000000000000000000000000000000002"), BytesToAddress(long))

	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte{1}).IsZero())
}
