// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meshlock/warden/log"
)

const namespace = "warden_metrics"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the metrics backend to prometheus.
// Meters created before the switch stay no-ops; lazy-loaded ones pick up the
// new backend. The switch is one-way.
func InitializePrometheusMetrics() {
	if _, ok := service.(*prometheusService); !ok {
		service = newPrometheusService()
		registerIOCollector()
	}
}

type prometheusService struct {
	counters      sync.Map
	counterVecs   sync.Map
	gauges        sync.Map
	gaugeVecs     sync.Map
	histogramVecs sync.Map
}

func newPrometheusService() Service {
	return &prometheusService{}
}

// getOrCreate returns the meter registered under name, creating it on first
// use. Races between concurrent creators settle on the stored meter.
func getOrCreate[T any](meters *sync.Map, name string, create func() T) T {
	if v, ok := meters.Load(name); ok {
		return v.(T)
	}
	v, _ := meters.LoadOrStore(name, create())
	return v.(T)
}

// register warns instead of failing: a name collision with mismatched options
// yields a dead meter, not a dead node.
func register(meter prometheus.Collector, name string) {
	if err := prometheus.Register(meter); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
}

func (p *prometheusService) GetOrCreateCountMeter(name string) CountMeter {
	return getOrCreate(&p.counters, name, func() CountMeter {
		meter := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		})
		register(meter, name)
		return &promCountMeter{counter: meter}
	})
}

func (p *prometheusService) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return getOrCreate(&p.counterVecs, name, func() CountVecMeter {
		meter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		}, labels)
		register(meter, name)
		return &promCountVecMeter{counter: meter}
	})
}

func (p *prometheusService) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return getOrCreate(&p.gauges, name, func() GaugeMeter {
		meter := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		})
		register(meter, name)
		return &promGaugeMeter{gauge: meter}
	})
}

func (p *prometheusService) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return getOrCreate(&p.gaugeVecs, name, func() GaugeVecMeter {
		meter := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		}, labels)
		register(meter, name)
		return &promGaugeVecMeter{gauge: meter}
	})
}

func (p *prometheusService) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return getOrCreate(&p.histogramVecs, name, func() HistogramVecMeter {
		floatBuckets := make([]float64, len(buckets))
		for i, bucket := range buckets {
			floatBuckets[i] = float64(bucket)
		}
		meter := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets,
		}, labels)
		register(meter, name)
		return &promHistogramVecMeter{histogram: meter}
	})
}

func (p *prometheusService) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (g *promGaugeMeter) Add(i int64) {
	g.gauge.Add(float64(i))
}

func (g *promGaugeMeter) Set(i int64) {
	g.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (g *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Add(float64(i))
}

func (g *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Set(float64(i))
}

type promHistogramVecMeter struct {
	histogram *prometheus.HistogramVec
}

func (h *promHistogramVecMeter) ObserveWithLabels(i int64, labels map[string]string) {
	h.histogram.With(labels).Observe(float64(i))
}
