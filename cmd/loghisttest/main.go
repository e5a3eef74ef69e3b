package main

import (
	"os"

	_ "net/http/pprof"

	"github.com/rs/zerolog"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// pick plan from the environment variable
	plan := os.Getenv("PLAN")
	if plan == "" || plan == "uniform" {
		planUniform()
	} else if plan == "distributions" {
		planDistributions()
	} else if plan == "buckets" {
		planBuckets()
	} else if plan == "freecache" {
		planFreecache()
	} else {
		panic("invalid plan")
	}
}
