// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshlock/warden/log"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRequestLoggerHandler(t *testing.T) {
	var out syncBuffer
	logger := log.NewLogger(log.LogfmtHandler(&out))

	var enabled atomic.Bool
	enabled.Store(true)

	handler := RequestLoggerHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), logger, &enabled)

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"test":1}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, out.String(), "API Request")
	assert.Contains(t, out.String(), "/accounts")

	// the toggle is live
	enabled.Store(false)
	before := len(out.String())
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/accounts", nil))
	assert.Equal(t, before, len(out.String()))

	// body must still reach the wrapped handler
	var got string
	echo := RequestLoggerHandler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err == nil {
			got = string(body)
		}
	}), logger, &enabled)
	enabled.Store(true)
	echo.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString("payload")))
	assert.Equal(t, "payload", got)
}
