package metrics

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Gauge keys published per run.
const (
	KEY_LOAD_NS_PER_OP = "loghist_load_ns_per_op"
	KEY_POPULATION     = "loghist_population"
	KEY_RESIDENT_BYTES = "loghist_resident_bytes"
	KEY_P50            = "loghist_p50"
	KEY_P90            = "loghist_p90"
	KEY_P99            = "loghist_p99"

	TAG_PLAN    = "plan"
	TAG_SIGBITS = "sigbits"
)

var (
	statsdClient *statsd.Client
	statsdOnce   sync.Once

	// When unset, Publish is a no-op. Controlled by
	// LOGHIST_METRICS_ENABLED ("true"/"1" to enable).
	statsdEnabled = loadStatsdEnabled()
)

func loadStatsdEnabled() bool {
	v := os.Getenv("LOGHIST_METRICS_ENABLED")
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func initStatsd() {
	statsdOnce.Do(func() {
		viper.AutomaticEnv()
		address := viper.GetString("STATSD_ADDRESS")
		if address == "" {
			address = "localhost:8125"
		}
		var err error
		statsdClient, err = statsd.New(address)
		if err != nil {
			log.Warn().Err(err).Msg("statsd client initialization failed")
			return
		}
		log.Info().Msgf("statsd client initialized with address - %s", address)
	})
}

// Publish sends the run result as statsd gauges. No-op unless
// LOGHIST_METRICS_ENABLED is set.
func Publish(r RunResult) {
	if !statsdEnabled {
		return
	}
	initStatsd()
	if statsdClient == nil {
		return
	}
	tags := []string{
		TAG_PLAN + ":" + r.Plan,
		TAG_SIGBITS + ":" + strconv.Itoa(int(r.Sigbits)),
	}
	gauge(KEY_LOAD_NS_PER_OP, r.NsPerOp, tags)
	gauge(KEY_POPULATION, float64(r.Population), tags)
	gauge(KEY_RESIDENT_BYTES, float64(r.Bytes), tags)
	gauge(KEY_P50, float64(r.P50), tags)
	gauge(KEY_P90, float64(r.P90), tags)
	gauge(KEY_P99, float64(r.P99), tags)
}

func gauge(name string, value float64, tags []string) {
	if err := statsdClient.Gauge(name, value, tags, 1); err != nil {
		log.Warn().AnErr("error occurred while doing statsd gauge", err)
	}
}
