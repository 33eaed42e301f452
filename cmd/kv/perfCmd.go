package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for sKV servers",
		Long:    "Runs a fixed number of operations per benchmark with concurrent workers and reports throughput and latency percentiles. Benchmarks: set, set-large, get, delete, has, has-not, keys, mixed",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix      = "__test"
	perfLargeValueSize = 1024
	perfNumThreads     = 10
	perfKeySpread      = 100
	perfOps            = 10000
	perfSkip           = make([]string, 0)

	// perfRegistry holds the latency timers and error counters of all benchmarks
	perfRegistry = gometrics.NewRegistry()
)

// perfPercentiles are the latency percentiles reported per benchmark
var perfPercentiles = []float64{0.5, 0.9, 0.99}

// benchmark describes a single perf test
type benchmark struct {
	name string
	// prepare runs before the timer starts (optional)
	prepare func(keys []string)
	// op is executed perfOps times, i is the global operation index
	op func(i int, key string) error
}

// benchmarkResult is the outcome of a single benchmark
type benchmarkResult struct {
	name    string
	skipped bool
	elapsed time.Duration
	latency gometrics.Timer
	errors  gometrics.Counter
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers to use for the benchmark"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of operations per benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1024, util.WrapString("How large the value for the set-large test should be (in bytes). Key and value must fit into one frame"))
	key = "key-count"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSize = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("key-count")
	perfNumThreads = viper.GetInt("threads")
	perfOps = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfNumThreads < 1 || perfOps < 1 || perfKeySpread < 1 {
		return fmt.Errorf("threads, ops and key-count must be positive")
	}

	// opcode + key + separator + value must fit into one frame
	longestKey := len(makeKeys("set-large")[perfKeySpread-1])
	if frameSize := 2 + longestKey + perfLargeValueSize; frameSize > viper.GetInt("max-frame-size") {
		return fmt.Errorf("large-value-size of %d bytes does not fit into a frame of %d bytes (need %d)",
			perfLargeValueSize, viper.GetInt("max-frame-size"), frameSize)
	}

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for sKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d, Ops: %d, Keys: %d\n", perfNumThreads, perfOps, perfKeySpread)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := strings.Repeat("x", perfLargeValueSize)

	setKeys := func(keys []string) {
		for _, k := range keys {
			if err := rpcStore.Set(k, "test"); err != nil {
				log.Printf("(prepare) - error setting key: %v\n", err)
			}
		}
	}

	benchmarks := []benchmark{
		{
			name: "set",
			op: func(_ int, key string) error {
				return rpcStore.Set(key, "test")
			},
		},
		{
			name: "set-large",
			op: func(_ int, key string) error {
				return rpcStore.Set(key, largeValue)
			},
		},
		{
			name:    "get",
			prepare: setKeys,
			op: func(_ int, key string) error {
				_, _, err := rpcStore.Get(key)
				return err
			},
		},
		{
			name:    "delete",
			prepare: setKeys,
			op: func(_ int, key string) error {
				_, _, err := rpcStore.Delete(key)
				return err
			},
		},
		{
			name:    "has",
			prepare: setKeys,
			op: func(_ int, key string) error {
				_, err := rpcStore.Exists(key)
				return err
			},
		},
		{
			name: "has-not",
			op: func(i int, _ string) error {
				_, err := rpcStore.Exists(fmt.Sprintf("%s-has-not-%d", perfKeyPrefix, i%100))
				return err
			},
		},
		{
			name:    "keys",
			prepare: setKeys,
			op: func(_ int, _ string) error {
				_, err := rpcStore.Keys()
				return err
			},
		},
		{
			name:    "mixed",
			prepare: setKeys,
			op: func(i int, key string) error {
				var err error
				switch i % 4 {
				case 0: // set
					err = rpcStore.Set(key, "test")
				case 1: // get
					_, _, err = rpcStore.Get(key)
				case 2: // delete
					_, _, err = rpcStore.Delete(key)
				case 3: // has
					_, err = rpcStore.Exists(key)
				}
				return err
			},
		},
	}

	results := make([]benchmarkResult, 0, len(benchmarks))
	for _, b := range benchmarks {
		result := runBenchmark(b)
		results = append(results, result)
		printResult(result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runBenchmark executes perfOps operations of a benchmark with perfNumThreads workers
func runBenchmark(b benchmark) benchmarkResult {
	if shouldSkip(b.name) {
		return benchmarkResult{name: b.name, skipped: true}
	}

	keys := makeKeys(b.name)
	if b.prepare != nil {
		b.prepare(keys)
	}

	// cleanup
	defer func() {
		for _, k := range keys {
			if _, _, err := rpcStore.Delete(k); err != nil {
				log.Printf("(%s) - error deleting key: %v\n", b.name, err)
			}
		}
	}()

	latency := gometrics.GetOrRegisterTimer(b.name+".latency", perfRegistry)
	errCount := gometrics.GetOrRegisterCounter(b.name+".errors", perfRegistry)

	var next atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= perfOps {
					return
				}

				opStart := time.Now()
				err := b.op(i, keys[i%len(keys)])
				latency.UpdateSince(opStart)

				if err != nil {
					errCount.Inc(1)
					log.Printf("(%s) - error performing operation: %v\n", b.name, err)
				}
			}
		}()
	}
	wg.Wait()

	return benchmarkResult{
		name:    b.name,
		elapsed: time.Since(start),
		latency: latency.Snapshot(),
		errors:  errCount.Snapshot(),
	}
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// makeKeys creates the test keys of a benchmark
func makeKeys(prefix string) []string {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	return keys
}

// opsPerSec returns the throughput of a benchmark
func (r benchmarkResult) opsPerSec() float64 {
	if r.skipped || r.elapsed <= 0 {
		return 0
	}
	return float64(r.latency.Count()) / r.elapsed.Seconds()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(result benchmarkResult) {
	if result.skipped {
		fmt.Printf("%-12sskipped\n", result.name)
		return
	}

	ps := result.latency.Percentiles(perfPercentiles)

	// Print the formatted result
	fmt.Printf("%-12s%8.0f ops/sec\tmean %-10s p50 %-10s p90 %-10s p99 %-10s max %-10s errors %d\n",
		result.name,
		result.opsPerSec(),
		time.Duration(result.latency.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		time.Duration(result.latency.Max()),
		result.errors.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []benchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Write header
	header := []string{
		"Test", "Ops", "OpsPerSec", "MeanNs", "P50Ns", "P90Ns", "P99Ns", "MaxNs", "Errors", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint", "Transport",
		"Threads", "LargeValueSize", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, result := range results {
		row := []string{result.name}

		if result.skipped {
			row = append(row, "0", "0", "0", "0", "0", "0", "0", "0", "true")
		} else {
			ps := result.latency.Percentiles(perfPercentiles)
			row = append(row,
				strconv.FormatInt(result.latency.Count(), 10),
				fmt.Sprintf("%.0f", result.opsPerSec()),
				fmt.Sprintf("%.0f", result.latency.Mean()),
				fmt.Sprintf("%.0f", ps[0]),
				fmt.Sprintf("%.0f", ps[1]),
				fmt.Sprintf("%.0f", ps[2]),
				strconv.FormatInt(result.latency.Max(), 10),
				strconv.FormatInt(result.errors.Count(), 10),
				"false",
			)
		}

		row = append(row,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSize),
			strconv.Itoa(perfKeySpread),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", result.name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
