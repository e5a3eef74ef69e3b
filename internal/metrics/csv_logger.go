package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppendCSV appends the result as one row to path, writing the header
// first when the file is new or empty.
func AppendCSV(path string, r RunResult) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"PLAN", "SIGBITS", "WORKERS", "SAMPLES", "POPULATION", "BUCKETS",
		"BYTES", "NS_PER_OP", "P50", "P90", "P99", "ELAPSED_SECS", "TIME",
	}
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat CSV file: %w", err)
	}
	if info.Size() == 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
	}

	row := []string{
		r.Plan,
		strconv.Itoa(int(r.Sigbits)),
		strconv.Itoa(r.Workers),
		strconv.FormatUint(r.Samples, 10),
		strconv.FormatUint(r.Population, 10),
		strconv.Itoa(r.Buckets),
		strconv.FormatUint(r.Bytes, 10),
		fmt.Sprintf("%.2f", r.NsPerOp),
		strconv.FormatUint(r.P50, 10),
		strconv.FormatUint(r.P90, 10),
		strconv.FormatUint(r.P99, 10),
		fmt.Sprintf("%.3f", r.Elapsed.Seconds()),
		time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("error writing CSV data row: %w", err)
	}
	return nil
}
