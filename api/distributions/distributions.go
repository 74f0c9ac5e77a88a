// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributions

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/meshlock/warden/api/restutil"
	"github.com/meshlock/warden/staking"
)

// Distribution is the reward pool state of one validator. Point values are
// scaled by the ledger's reward scale.
type Distribution struct {
	Validator      string           `json:"validator"`
	TotalStake     *math.Decimal256 `json:"totalStake"`
	PointsPerStake *math.Decimal256 `json:"pointsPerStake"`
	PointsLeftover *math.Decimal256 `json:"pointsLeftover"`
}

type Distributions struct {
	ledger *staking.Ledger
}

func New(ledger *staking.Ledger) *Distributions {
	return &Distributions{ledger}
}

func (d *Distributions) handleGetDistribution(w http.ResponseWriter, req *http.Request) error {
	validator := mux.Vars(req)["validator"]
	dist, err := d.ledger.DistributionOf(validator)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Distribution{
		Validator:      validator,
		TotalStake:     (*math.Decimal256)(dist.TotalStake),
		PointsPerStake: (*math.Decimal256)(dist.PointsPerStake.ToBig()),
		PointsLeftover: (*math.Decimal256)(dist.PointsLeftover.ToBig()),
	})
}

func (d *Distributions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{validator}").
		Methods(http.MethodGet).
		Name("distributions_get_distribution").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetDistribution))
}
