// Package metrics records load-plan outcomes and fans them out to
// console, CSV, and statsd sinks.
package metrics

import (
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// RunResult is one load-plan outcome.
type RunResult struct {
	Plan       string
	Sigbits    uint
	Workers    int
	Samples    uint64
	Population uint64
	Buckets    int
	Bytes      uint64
	NsPerOp    float64
	P50        uint64
	P90        uint64
	P99        uint64
	Elapsed    time.Duration
}

// LogConsole writes the result through the global logger.
func (r RunResult) LogConsole() {
	log.Info().
		Str("plan", r.Plan).
		Uint("sigbits", r.Sigbits).
		Int("workers", r.Workers).
		Str("samples", humanize.Comma(int64(r.Samples))).
		Str("population", humanize.Comma(int64(r.Population))).
		Int("buckets", r.Buckets).
		Str("resident", humanize.Bytes(r.Bytes)).
		Float64("ns_per_op", r.NsPerOp).
		Uint64("p50", r.P50).
		Uint64("p90", r.P90).
		Uint64("p99", r.P99).
		Dur("elapsed", r.Elapsed).
		Msg("run complete")
}

// LogProcessStats logs memory and CPU accounting for the whole run.
func LogProcessStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	user, system, maxRSS := rusage()
	log.Info().
		Str("alloc", humanize.Bytes(m.Alloc)).
		Str("total_alloc", humanize.Bytes(m.TotalAlloc)).
		Str("sys", humanize.Bytes(m.Sys)).
		Uint32("num_gc", m.NumGC).
		Float64("cpu_user_secs", user).
		Float64("cpu_system_secs", system).
		Str("max_rss", humanize.Bytes(maxRSS)).
		Msg("process statistics")
}

// rusage returns user and system CPU seconds plus the peak resident set
// for the current process.
func rusage() (userSecs, systemSecs float64, maxRSS uint64) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		log.Warn().Err(err).Msg("getrusage failed")
		return 0, 0, 0
	}
	user := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond
	system := time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
	// ru_maxrss is reported in KiB on Linux
	return user.Seconds(), system.Seconds(), uint64(ru.Maxrss) * 1024
}
