// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopService discards everything. It is the default backend so that meters
// can be touched freely before metrics collection is enabled.
type noopService struct{}

func newNoopService() Service { return &noopService{} }

func (*noopService) GetOrCreateCountMeter(string) CountMeter           { return noopMeter{} }
func (*noopService) GetOrCreateCountVecMeter(string, []string) CountVecMeter {
	return noopMeter{}
}
func (*noopService) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }
func (*noopService) GetOrCreateGaugeVecMeter(string, []string) GaugeVecMeter {
	return noopMeter{}
}
func (*noopService) GetOrCreateHistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return noopMeter{}
}
func (*noopService) GetOrCreateHandler() http.Handler { return nil }

// noopMeter satisfies every meter interface.
type noopMeter struct{}

func (noopMeter) Add(int64)                                  {}
func (noopMeter) Set(int64)                                  {}
func (noopMeter) AddWithLabel(int64, map[string]string)      {}
func (noopMeter) SetWithLabel(int64, map[string]string)      {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
