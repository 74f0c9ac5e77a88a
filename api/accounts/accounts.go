// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meshlock/warden/api/restutil"
	"github.com/meshlock/warden/vault"
	"github.com/meshlock/warden/warden"
)

type Accounts struct {
	vault *vault.Vault
}

func New(vault *vault.Vault) *Accounts {
	return &Accounts{vault}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := warden.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	summary, err := a.vault.GetAccount(*addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertAccount(summary))
}

func (a *Accounts) handleGetClaims(w http.ResponseWriter, req *http.Request) error {
	addr, err := warden.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	query := req.URL.Query()
	startAfter, err := parseStartAfter(query)
	if err != nil {
		return err
	}
	limit, err := restutil.ParseLimitQuery(query)
	if err != nil {
		return err
	}
	claims, err := a.vault.Claims(*addr, startAfter, limit)
	if err != nil {
		return err
	}
	out := make([]*Claim, len(claims))
	for i, c := range claims {
		out[i] = convertClaim(c)
	}
	return restutil.WriteJSON(w, out)
}

func (a *Accounts) handleListAccounts(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	withCollateral, err := restutil.ParseBoolQuery(query, "withCollateral")
	if err != nil {
		return err
	}
	startAfter, err := parseStartAfter(query)
	if err != nil {
		return err
	}
	limit, err := restutil.ParseLimitQuery(query)
	if err != nil {
		return err
	}
	summaries, err := a.vault.Accounts(withCollateral, startAfter, limit)
	if err != nil {
		return err
	}
	out := make([]*AccountEntry, len(summaries))
	for i, s := range summaries {
		out[i] = convertAccountEntry(s)
	}
	return restutil.WriteJSON(w, out)
}

func parseStartAfter(query url.Values) (*warden.Address, error) {
	raw := query.Get("startAfter")
	if raw == "" {
		return nil, nil
	}
	addr, err := warden.ParseAddress(raw)
	if err != nil {
		return nil, restutil.BadRequest(errors.WithMessage(err, "startAfter"))
	}
	return addr, nil
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("accounts_list_accounts").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleListAccounts))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("accounts_get_account").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/claims").
		Methods(http.MethodGet).
		Name("accounts_get_claims").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetClaims))
}
