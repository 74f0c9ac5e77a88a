// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meshlock/warden/api/restutil"
	"github.com/meshlock/warden/valset"
)

// Validator is one replicated validator record.
type Validator struct {
	Operator    string `json:"operator"`
	PubKey      string `json:"pubKey,omitempty"`
	StartHeight uint64 `json:"startHeight,omitempty"`
	StartTime   uint64 `json:"startTime,omitempty"`
	Status      string `json:"status"`
}

type Validators struct {
	registry *valset.Registry
}

func New(registry *valset.Registry) *Validators {
	return &Validators{registry}
}

func (v *Validators) handleListValidators(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	activeOnly, err := restutil.ParseBoolQuery(query, "activeOnly")
	if err != nil {
		return err
	}
	limit, err := restutil.ParseLimitQuery(query)
	if err != nil {
		return err
	}
	entries, err := v.registry.List(activeOnly, query.Get("startAfter"), limit)
	if err != nil {
		return err
	}
	out := make([]*Validator, len(entries))
	for i, e := range entries {
		out[i] = convertRecord(e.Operator, e.Record)
	}
	return restutil.WriteJSON(w, out)
}

func (v *Validators) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	operator := mux.Vars(req)["valoper"]
	rec, err := v.registry.Get(operator)
	if err != nil {
		return err
	}
	if rec == nil {
		return restutil.WriteJSON(w, nil)
	}
	return restutil.WriteJSON(w, convertRecord(operator, rec))
}

func convertRecord(operator string, rec *valset.Record) *Validator {
	return &Validator{
		Operator:    operator,
		PubKey:      rec.PubKey,
		StartHeight: rec.StartHeight,
		StartTime:   rec.StartTime,
		Status:      rec.Status.String(),
	}
}

func (v *Validators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("validators_list_validators").
		HandlerFunc(restutil.WrapHandlerFunc(v.handleListValidators))
	sub.Path("/{valoper}").
		Methods(http.MethodGet).
		Name("validators_get_validator").
		HandlerFunc(restutil.WrapHandlerFunc(v.handleGetValidator))
}
