package main

import (
	"flag"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/loghist/internal/metrics"
	"github.com/Meesho/BharatMLStack/loghist/internal/sigfigs"
	"github.com/Meesho/BharatMLStack/loghist/internal/workload"
	"github.com/Meesho/BharatMLStack/loghist/pkg/histogram"
)

// planUniform soaks one histogram with uniform samples from many
// workers, validates the grid, and compares estimated quantiles
// against the sorted reference data.
func planUniform() {
	var (
		sigbits  int
		sigfigsN int
		workers  int
		samples  int
		limit    uint64
		csvPath  string
		verify   bool
	)
	flag.IntVar(&sigbits, "sigbits", 5, "significant bits per binary decade")
	flag.IntVar(&sigfigsN, "sigfigs", 0, "significant decimal digits, overrides -sigbits")
	flag.IntVar(&workers, "workers", 9, "number of load workers")
	flag.IntVar(&samples, "samples", 1_000_000, "samples per worker")
	flag.Uint64Var(&limit, "limit", 1_000_000_000, "samples are uniform in [0, limit)")
	flag.StringVar(&csvPath, "csv", "", "append run results to this CSV file")
	flag.BoolVar(&verify, "verify", true, "compare quantiles against sorted reference data")
	flag.Parse()

	if sigfigsN > 0 {
		sigbits = int(sigfigs.BitsForDigits(uint(sigfigsN)))
		log.Info().Msgf("using %d sigbits for %d significant digits", sigbits, sigfigsN)
	}
	h, err := histogram.New(uint(sigbits))
	if err != nil {
		log.Fatal().Err(err).Msg("could not create histogram")
	}

	reference := make([][]uint64, workers)
	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			src := workload.Stream("uniform", worker)
			var data []uint64
			if verify {
				data = make([]uint64, 0, samples)
			}
			for i := 0; i < samples; i++ {
				v := uint64(src.Uint32n(uint32(limit)))
				h.Inc(v)
				if verify {
					data = append(data, v)
				}
			}
			reference[worker] = data
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)
	total := workers * samples
	log.Info().Msgf("loaded %d samples in %v, %.2f ns per item",
		total, elapsed, float64(elapsed.Nanoseconds())/float64(total))

	if err := h.Validate(); err != nil {
		log.Fatal().Err(err).Msg("grid validation failed")
	}

	hs := h.Snapshot()
	summarize(h, hs)
	if verify {
		compareQuantiles(hs, reference)
	}

	buckets, _ := bucketStats(h)
	result := metrics.RunResult{
		Plan:       "uniform",
		Sigbits:    uint(sigbits),
		Workers:    workers,
		Samples:    uint64(total),
		Population: hs.Population(),
		Buckets:    buckets,
		Bytes:      h.Size(),
		NsPerOp:    float64(elapsed.Nanoseconds()) / float64(total),
		P50:        hs.ValueAtQuantile(0.50),
		P90:        hs.ValueAtQuantile(0.90),
		P99:        hs.ValueAtQuantile(0.99),
		Elapsed:    elapsed,
	}
	result.LogConsole()
	if csvPath != "" {
		if err := metrics.AppendCSV(csvPath, result); err != nil {
			log.Error().Err(err).Msg("could not append CSV results")
		}
	}
	metrics.Publish(result)
	metrics.LogProcessStats()
}

func compareQuantiles(hs *histogram.Snapshot, reference [][]uint64) {
	var all []uint64
	for _, data := range reference {
		all = append(all, data...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	for _, q := range []float64{0.5, 0.9, 0.99, 0.999} {
		estimated := hs.ValueAtQuantile(q)
		exact := all[int(q*float64(len(all)))]
		errPct := 0.0
		if exact != 0 {
			errPct = (float64(estimated) - float64(exact)) * 100 / float64(exact)
		}
		log.Info().
			Float64("q", q).
			Uint64("estimated", estimated).
			Uint64("exact", exact).
			Float64("error_pct", errPct).
			Msg("quantile vs reference")
	}
}
