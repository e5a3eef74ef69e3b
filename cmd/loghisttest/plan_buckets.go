package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/loghist/pkg/histogram"
)

// planBuckets dumps the bucket grid as CSV for a value range, so the
// precision of a sigbits setting can be inspected before committing to
// it: key,pmin,pmax,error,error_percent per bucket, then a short error
// report.
func planBuckets() {
	var (
		sigbits  int
		rangeMin uint64
		rangeMax uint64
	)
	flag.IntVar(&sigbits, "sigbits", 5, "significant bits per binary decade")
	flag.Uint64Var(&rangeMin, "min", 0, "lowest value of interest")
	flag.Uint64Var(&rangeMax, "max", math.MaxUint64, "highest value of interest")
	flag.Parse()
	if rangeMin >= rangeMax {
		log.Fatal().Msgf("bad range [%d, %d]", rangeMin, rangeMax)
	}

	h, err := histogram.New(uint(sigbits))
	if err != nil {
		log.Fatal().Err(err).Msg("could not create histogram")
	}

	var (
		keyCount             int
		minErrKey, maxErrKey uint
		lastExactKey         uint
		lastExactVal         uint64
		minPerc, maxPerc     = 101.0, -1.0
		sawExact             bool
	)
	fmt.Println("key,pmin,pmax,error,error_percent")
	for key := uint(0); ; key++ {
		pmin, pmax, _, ok := h.Get(key)
		if !ok {
			break
		}
		if pmin < rangeMin || pmax > rangeMax {
			continue
		}
		keyCount++
		width := pmax - pmin
		perc := 0.0
		if width == 0 {
			sawExact = true
			lastExactKey = key
			lastExactVal = pmin
		} else {
			perc = float64(width) * 100 / float64(pmin)
			if perc > maxPerc {
				maxPerc = perc
				maxErrKey = key
			}
			if perc < minPerc {
				minPerc = perc
				minErrKey = key
			}
		}
		fmt.Printf("%d,%d,%d,%d,%.02f\n", key, pmin, pmax, width, perc)
	}

	log.Info().Msgf("%d sigbits: %d keys within range (%d - %d)",
		sigbits, keyCount, rangeMin, rangeMax)
	if sawExact {
		log.Info().Msgf("last value with 0 error: %d, key %d", lastExactVal, lastExactKey)
	}
	if maxPerc >= 0 {
		pmin, pmax, _, _ := h.Get(minErrKey)
		log.Info().Msgf("min error for non-precise bucket: %0.2f %% (range %d - %d, key %d)",
			minPerc, pmin, pmax, minErrKey)
		pmin, pmax, _, _ = h.Get(maxErrKey)
		log.Info().Msgf("max error: %0.2f %% (range %d - %d, key %d)",
			maxPerc, pmin, pmax, maxErrKey)
	}
}
