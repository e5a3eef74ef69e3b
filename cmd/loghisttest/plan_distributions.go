package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/loghist/internal/workload"
	"github.com/Meesho/BharatMLStack/loghist/pkg/histogram"
)

// planDistributions loads one histogram per shaped workload and prints
// its summary statistics. Float samples are scaled to a fixed point so
// the tails stay visible in integer buckets.
func planDistributions() {
	var (
		sigbits int
		samples int
		scale   float64
	)
	flag.IntVar(&sigbits, "sigbits", 7, "significant bits per binary decade")
	flag.IntVar(&samples, "samples", 1_000_000, "samples per distribution")
	flag.Float64Var(&scale, "scale", 1_000_000, "multiplier from float sample to bucket value")
	flag.Parse()

	shapes := []struct {
		name string
		draw func(*workload.Source) float64
	}{
		{"exponential", (*workload.Source).Exponential},
		{"pareto", (*workload.Source).Pareto},
		{"lognormal", (*workload.Source).LogNormal},
		{"gamma4", func(s *workload.Source) float64 { return s.Gamma(4) }},
		{"chisquared3", func(s *workload.Source) float64 { return s.ChiSquared(3) }},
	}
	for _, shape := range shapes {
		h, err := histogram.New(uint(sigbits))
		if err != nil {
			log.Fatal().Err(err).Msg("could not create histogram")
		}
		src := workload.Stream("distributions-"+shape.name, 0)
		start := time.Now()
		for i := 0; i < samples; i++ {
			h.Inc(uint64(shape.draw(src) * scale))
		}
		elapsed := time.Since(start)
		if err := h.Validate(); err != nil {
			log.Fatal().Err(err).Msg("grid validation failed")
		}
		log.Info().Msgf("%s: %d samples in %v", shape.name, samples, elapsed)
		summarize(h, h.Snapshot())
	}
}
