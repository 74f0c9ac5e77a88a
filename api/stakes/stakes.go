// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meshlock/warden/api/restutil"
	"github.com/meshlock/warden/staking"
	"github.com/meshlock/warden/warden"
)

type Stakes struct {
	ledger *staking.Ledger
}

func New(ledger *staking.Ledger) *Stakes {
	return &Stakes{ledger}
}

func (s *Stakes) handleListStakes(w http.ResponseWriter, req *http.Request) error {
	user, err := warden.ParseAddress(mux.Vars(req)["user"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "user"))
	}
	query := req.URL.Query()
	limit, err := restutil.ParseLimitQuery(query)
	if err != nil {
		return err
	}
	summaries, err := s.ledger.StakesOf(*user, query.Get("startAfter"), limit)
	if err != nil {
		return err
	}
	out := make([]*Stake, len(summaries))
	for i, sum := range summaries {
		out[i] = convertStake(sum)
	}
	return restutil.WriteJSON(w, out)
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	user, err := warden.ParseAddress(mux.Vars(req)["user"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "user"))
	}
	summary, err := s.ledger.StakeOf(*user, mux.Vars(req)["validator"])
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertStake(summary))
}

func (s *Stakes) handleGetUnbonds(w http.ResponseWriter, req *http.Request) error {
	user, err := warden.ParseAddress(mux.Vars(req)["user"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "user"))
	}
	unbonds, err := s.ledger.UnbondsOf(*user, mux.Vars(req)["validator"])
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertUnbonds(unbonds))
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{user}").
		Methods(http.MethodGet).
		Name("stakes_list_stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleListStakes))
	sub.Path("/{user}/{validator}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{user}/{validator}/unbonds").
		Methods(http.MethodGet).
		Name("stakes_get_unbonds").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetUnbonds))
}
