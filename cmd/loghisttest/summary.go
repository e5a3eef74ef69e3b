package main

import (
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/loghist/pkg/histogram"
)

// bucketStats walks the allocated buckets once and returns how many
// hold a count, plus the largest single count.
func bucketStats(h *histogram.Histogram) (buckets int, largest uint64) {
	for k := uint(0); k < h.Keys(); k = h.Next(k) {
		_, _, count, _ := h.Get(k)
		if count != 0 {
			buckets++
		}
		if count > largest {
			largest = count
		}
	}
	return buckets, largest
}

func summarize(h *histogram.Histogram, hs *histogram.Snapshot) {
	buckets, largest := bucketStats(h)
	mean, variance := h.MeanVariance()
	log.Info().
		Str("resident", humanize.Bytes(h.Size())).
		Int("buckets", buckets).
		Str("largest", humanize.Comma(int64(largest))).
		Str("population", humanize.Comma(int64(hs.Population()))).
		Float64("mean", mean).
		Float64("variance", variance).
		Uint64("p50", hs.ValueAtQuantile(0.50)).
		Uint64("p90", hs.ValueAtQuantile(0.90)).
		Uint64("p99", hs.ValueAtQuantile(0.99)).
		Msg("histogram summary")
}
