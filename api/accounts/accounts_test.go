// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts_test

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlock/warden/api/accounts"
	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/localstake"
	"github.com/meshlock/warden/vault"
	"github.com/meshlock/warden/warden"
)

var (
	bonder     = warden.BytesToAddress([]byte("bonder"))
	lienholder = warden.BytesToAddress([]byte("staking"))
)

func initAccountServer(t *testing.T) *httptest.Server {
	store := kv.NewMem()
	t.Cleanup(func() { store.Close() })

	backend := localstake.New(store, decimal.RequireFromString("0.5"))
	v := vault.New(store, vault.Backends{lienholder: backend}, vault.MaxExposure{})

	require.NoError(t, v.Bond(bonder, big.NewInt(1000)))
	_, err := v.Pledge(bonder, lienholder, big.NewInt(400), []byte(`{"validator":"v1"}`))
	require.NoError(t, err)

	router := mux.NewRouter()
	accounts.New(v).Mount(router, "/accounts")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	return body, res.StatusCode
}

func TestGetAccount(t *testing.T) {
	ts := initAccountServer(t)

	body, status := httpGet(t, ts.URL+"/accounts/"+bonder.String())
	require.Equal(t, http.StatusOK, status)

	var acc accounts.Account
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, "1000", acc.Bonded.String())
	assert.Equal(t, "200", acc.Usage.String())
	assert.Equal(t, "800", acc.Free.String())

	// absent accounts read as zero
	body, status = httpGet(t, ts.URL+"/accounts/"+warden.BytesToAddress([]byte("nobody")).String())
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, "0", acc.Bonded.String())

	_, status = httpGet(t, ts.URL+"/accounts/0xnotanaddress")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetClaims(t *testing.T) {
	ts := initAccountServer(t)

	body, status := httpGet(t, ts.URL+"/accounts/"+bonder.String()+"/claims")
	require.Equal(t, http.StatusOK, status)

	var claims []*accounts.Claim
	require.NoError(t, json.Unmarshal(body, &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, lienholder, claims[0].Lienholder)
	assert.Equal(t, "400", claims[0].Amount.String())
	assert.True(t, claims[0].SlashRatio.Equal(decimal.RequireFromString("0.5")))

	_, status = httpGet(t, ts.URL+"/accounts/"+bonder.String()+"/claims?limit=nope")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListAccounts(t *testing.T) {
	ts := initAccountServer(t)

	body, status := httpGet(t, ts.URL+"/accounts")
	require.Equal(t, http.StatusOK, status)

	var entries []*accounts.AccountEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, bonder, entries[0].Address)
	assert.Equal(t, "1000", entries[0].Bonded.String())

	body, status = httpGet(t, ts.URL+"/accounts?withCollateral=true&limit=10")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &entries))
	assert.Len(t, entries, 1)

	_, status = httpGet(t, ts.URL+"/accounts?withCollateral=huh")
	assert.Equal(t, http.StatusBadRequest, status)
}
