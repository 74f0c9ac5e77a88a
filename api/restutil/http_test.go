// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name       string
		handler    HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			"no error",
			func(w http.ResponseWriter, _ *http.Request) error {
				return WriteJSON(w, M{"ok": true})
			},
			http.StatusOK,
			`{"ok":true}`,
		},
		{
			"bad request",
			func(http.ResponseWriter, *http.Request) error {
				return BadRequest(errors.New("address: invalid length"))
			},
			http.StatusBadRequest,
			"address: invalid length",
		},
		{
			"forbidden",
			func(http.ResponseWriter, *http.Request) error {
				return Forbidden(errors.New("nope"))
			},
			http.StatusForbidden,
			"nope",
		},
		{
			"status only",
			func(http.ResponseWriter, *http.Request) error {
				return HTTPError(nil, http.StatusTeapot)
			},
			http.StatusTeapot,
			"",
		},
		{
			"plain error",
			func(http.ResponseWriter, *http.Request) error {
				return errors.New("boom")
			},
			http.StatusInternalServerError,
			"boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(tt.handler)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Level string `json:"level"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"level":"debug"}`), &v))
	assert.Equal(t, "debug", v.Level)

	assert.Error(t, ParseJSON(strings.NewReader(`{"unknown":"field"}`), &v))
}

func TestParseLimitQuery(t *testing.T) {
	limit, err := ParseLimitQuery(url.Values{})
	require.NoError(t, err)
	assert.Zero(t, limit)

	limit, err = ParseLimitQuery(url.Values{"limit": {"42"}})
	require.NoError(t, err)
	assert.Equal(t, uint32(42), limit)

	_, err = ParseLimitQuery(url.Values{"limit": {"-1"}})
	assert.Error(t, err)

	_, err = ParseLimitQuery(url.Values{"limit": {"4294967296"}})
	assert.Error(t, err)
}

func TestParseBoolQuery(t *testing.T) {
	v, err := ParseBoolQuery(url.Values{}, "activeOnly")
	require.NoError(t, err)
	assert.False(t, v)

	v, err = ParseBoolQuery(url.Values{"activeOnly": {"true"}}, "activeOnly")
	require.NoError(t, err)
	assert.True(t, v)

	_, err = ParseBoolQuery(url.Values{"activeOnly": {"yep"}}, "activeOnly")
	assert.Error(t, err)
}
