// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/meshlock/warden/api/accounts"
	"github.com/meshlock/warden/api/channel"
	"github.com/meshlock/warden/api/distributions"
	"github.com/meshlock/warden/api/doc"
	"github.com/meshlock/warden/api/stakes"
	"github.com/meshlock/warden/api/subscriptions"
	"github.com/meshlock/warden/api/validators"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/staking"
	"github.com/meshlock/warden/valset"
	"github.com/meshlock/warden/valsync"
	"github.com/meshlock/warden/vault"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	PprofOn        bool
	EnableMetrics  bool
	LogRequests    *atomic.Bool
}

// New return api router
func New(
	vault *vault.Vault,
	ledger *staking.Ledger,
	registry *valset.Registry,
	sync *valsync.Sync,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// to serve the api docs
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)

	// redirect to the openapi document
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/warden.yaml", http.StatusTemporaryRedirect)
		})

	accounts.New(vault).Mount(router, "/accounts")
	stakes.New(ledger).Mount(router, "/stakes")
	distributions.New(ledger).Mount(router, "/distributions")
	validators.New(registry).Mount(router, "/validators")
	channel.New(sync).Mount(router, "/channel")
	subs := subscriptions.New(sync, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsHandler)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.LogRequests != nil {
		handler = RequestLoggerHandler(handler, logger, opts.LogRequests)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
