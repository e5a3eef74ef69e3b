package main

import (
	"flag"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/loghist/internal/metrics"
	"github.com/Meesho/BharatMLStack/loghist/internal/workload"
	"github.com/Meesho/BharatMLStack/loghist/pkg/histogram"
)

// planFreecache hammers a freecache instance and records per-operation
// latencies into two histograms, one for reads and one for writes, then
// reports their percentiles. Doubles as a realistic mixed-key workload
// for the sketch itself.
func planFreecache() {
	var (
		sigbits      int
		cacheMB      int
		totalKeys    int
		readWorkers  int
		writeWorkers int
		iterations   int
		csvPath      string
	)
	flag.IntVar(&sigbits, "sigbits", 5, "significant bits per binary decade")
	flag.IntVar(&cacheMB, "cache-mb", 256, "freecache size in MiB")
	flag.IntVar(&totalKeys, "keys", 1_000_000, "distinct keys")
	flag.IntVar(&readWorkers, "readers", 4, "number of read workers")
	flag.IntVar(&writeWorkers, "writers", 2, "number of write workers")
	flag.IntVar(&iterations, "iterations", 2_000_000, "operations per worker")
	flag.StringVar(&csvPath, "csv", "", "append run results to this CSV file")
	flag.Parse()

	readLat, err := histogram.New(uint(sigbits))
	if err != nil {
		log.Fatal().Err(err).Msg("could not create histogram")
	}
	writeLat, err := histogram.New(uint(sigbits))
	if err != nil {
		log.Fatal().Err(err).Msg("could not create histogram")
	}

	cache := freecache.NewCache(cacheMB * 1024 * 1024)
	value := []byte(strings.Repeat("a", 1024))

	// prepopulate so readers mostly hit
	log.Info().Msgf("prepopulating %d keys", totalKeys)
	for k := 0; k < totalKeys; k++ {
		key := fmt.Sprintf("key%d", k)
		if err := cache.Set([]byte(key), value, 3600); err != nil {
			log.Fatal().Err(err).Msg("prepopulate failed")
		}
	}

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < writeWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			src := workload.Stream("freecache-write", worker)
			for i := 0; i < iterations; i++ {
				key := fmt.Sprintf("key%d", src.Uint32n(uint32(totalKeys)))
				t0 := time.Now()
				if err := cache.Set([]byte(key), value, 3600); err != nil {
					log.Fatal().Err(err).Msg("set failed")
				}
				writeLat.Inc(uint64(time.Since(t0).Nanoseconds()))
			}
		}(w)
	}
	for r := 0; r < readWorkers; r++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			src := workload.Stream("freecache-read", worker)
			misses := 0
			for i := 0; i < iterations; i++ {
				key := fmt.Sprintf("key%d", src.Uint32n(uint32(totalKeys)))
				t0 := time.Now()
				if _, err := cache.Get([]byte(key)); err != nil {
					misses++
				}
				readLat.Inc(uint64(time.Since(t0).Nanoseconds()))
			}
			log.Info().Msgf("reader %d finished with %d misses", worker, misses)
		}(r)
	}
	wg.Wait()
	elapsed := time.Since(start)

	log.Info().Msg("read latency")
	readSnap := readLat.Snapshot()
	summarize(readLat, readSnap)
	log.Info().Msg("write latency")
	writeSnap := writeLat.Snapshot()
	summarize(writeLat, writeSnap)

	if csvPath != "" {
		buckets, _ := bucketStats(readLat)
		result := metrics.RunResult{
			Plan:       "freecache",
			Sigbits:    uint(sigbits),
			Workers:    readWorkers + writeWorkers,
			Samples:    readSnap.Population() + writeSnap.Population(),
			Population: readSnap.Population(),
			Buckets:    buckets,
			Bytes:      readLat.Size() + writeLat.Size(),
			NsPerOp:    float64(elapsed.Nanoseconds()) / float64(readSnap.Population()+writeSnap.Population()),
			P50:        readSnap.ValueAtQuantile(0.50),
			P90:        readSnap.ValueAtQuantile(0.90),
			P99:        readSnap.ValueAtQuantile(0.99),
			Elapsed:    elapsed,
		}
		if err := metrics.AppendCSV(csvPath, result); err != nil {
			log.Error().Err(err).Msg("could not append CSV results")
		}
	}
	metrics.LogProcessStats()
}
