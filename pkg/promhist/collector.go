// Package promhist exposes a live histogram as a Prometheus summary.
package promhist

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Meesho/BharatMLStack/loghist/pkg/histogram"
)

// DefaultQuantiles are emitted when the caller does not choose their
// own.
var DefaultQuantiles = []float64{0.5, 0.9, 0.99}

// Collector wraps a live histogram. Every Collect takes a snapshot, so
// the emitted quantiles are internally consistent even while writers
// keep recording.
type Collector struct {
	hist      *histogram.Histogram
	desc      *prometheus.Desc
	quantiles []float64
}

// NewCollector builds a collector publishing the histogram under the
// given fully qualified metric name.
func NewCollector(name, help string, h *histogram.Histogram, labels prometheus.Labels) *Collector {
	return &Collector{
		hist:      h,
		desc:      prometheus.NewDesc(name, help, nil, labels),
		quantiles: DefaultQuantiles,
	}
}

// WithQuantiles replaces the published quantile set.
func (c *Collector) WithQuantiles(quantiles []float64) *Collector {
	c.quantiles = quantiles
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	hs := c.hist.Snapshot()
	quantiles := make(map[float64]float64, len(c.quantiles))
	for _, q := range c.quantiles {
		quantiles[q] = float64(hs.ValueAtQuantile(q))
	}
	// the sum is estimated from bucket midpoints; an empty histogram
	// reports zero rather than NaN
	sum := 0.0
	if mean, _ := c.hist.MeanVariance(); !math.IsNaN(mean) {
		sum = mean * float64(hs.Population())
	}
	ch <- prometheus.MustNewConstSummary(c.desc, hs.Population(), sum, quantiles)
}
