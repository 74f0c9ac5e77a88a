// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlock/warden/api/validators"
	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/valset"
)

func initValidatorServer(t *testing.T) *httptest.Server {
	store := kv.NewMem()
	t.Cleanup(func() { store.Close() })

	registry := valset.New(store)
	require.NoError(t, registry.Add("valoper1", "pubkey1", 10, 1000))
	require.NoError(t, registry.Add("valoper2", "pubkey2", 20, 2000))
	require.NoError(t, registry.Remove("valoper2"))
	require.NoError(t, registry.Remove("valoper3"))

	router := mux.NewRouter()
	validators.New(registry).Mount(router, "/validators")
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

func TestGetValidator(t *testing.T) {
	ts := initValidatorServer(t)

	body, status := httpGet(t, ts.URL+"/validators/valoper1")
	require.Equal(t, http.StatusOK, status)

	var val validators.Validator
	require.NoError(t, json.Unmarshal(body, &val))
	assert.Equal(t, "valoper1", val.Operator)
	assert.Equal(t, "pubkey1", val.PubKey)
	assert.Equal(t, uint64(10), val.StartHeight)
	assert.Equal(t, uint64(1000), val.StartTime)
	assert.Equal(t, "active", val.Status)

	// removed validators stay visible as tombstones
	body, status = httpGet(t, ts.URL+"/validators/valoper2")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &val))
	assert.Equal(t, "tombstoned", val.Status)

	// unknown validators read as null
	body, status = httpGet(t, ts.URL+"/validators/valoper9")
	require.Equal(t, http.StatusOK, status)
	var unknown *validators.Validator
	require.NoError(t, json.Unmarshal(body, &unknown))
	assert.Nil(t, unknown)
}

func TestListValidators(t *testing.T) {
	ts := initValidatorServer(t)

	body, status := httpGet(t, ts.URL+"/validators")
	require.Equal(t, http.StatusOK, status)

	var list []*validators.Validator
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "valoper1", list[0].Operator)
	assert.Equal(t, "valoper3", list[2].Operator)

	body, status = httpGet(t, ts.URL+"/validators?activeOnly=true")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "valoper1", list[0].Operator)

	body, status = httpGet(t, ts.URL+"/validators?startAfter=valoper1&limit=1")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "valoper2", list[0].Operator)

	_, status = httpGet(t, ts.URL+"/validators?activeOnly=sure")
	assert.Equal(t, http.StatusBadRequest, status)
}
