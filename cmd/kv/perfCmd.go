package kv

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/ValentinKolb/localdb/lib/common"
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/ValentinKolb/localdb/lib/store/middleware"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the configured store",
		Long:    "Runs set/get/rm/keys benchmarks through the full store (pipelines, middleware, encoding) and reports latencies.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 1
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 1, util.WrapString("Number of goroutines to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfResult is the outcome of one benchmark
type perfResult struct {
	name   string
	bench  testing.BenchmarkResult
	timer  gometrics.Timer
	failed int64
}

// perfCase describes one benchmark: prepare runs before the timer starts,
// op is called once per iteration with the iteration's key
type perfCase struct {
	name    string
	prepare func(keys []string)
	op      func(key string, i int) error
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for localdb")

	conf, err := util.GetStoreConfig()
	if err != nil {
		return err
	}

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	// count every call that passes the middleware chains
	counters := middleware.NewMetrics(nil)
	for _, dir := range []store.Direction{store.DirGet, store.DirSet} {
		id, err := kvStore.AddMiddleware(dir, counters)
		if err != nil {
			return err
		}
		defer kvStore.RemoveMiddleware(dir, id)
	}

	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)
	setAll := func(keys []string) {
		for _, k := range keys {
			if err := kvStore.Set(k, map[string]any{"value": k}); err != nil {
				log.Printf("error preparing key %s: %v\n", k, err)
			}
		}
	}

	cases := []perfCase{
		{
			name: "set",
			op: func(key string, i int) error {
				return kvStore.Set(key, map[string]any{"n": i, "key": key})
			},
		},
		{
			name: "set-large",
			op: func(key string, _ int) error {
				return kvStore.Set(key, largeValue)
			},
		},
		{
			name:    "get",
			prepare: setAll,
			op: func(key string, _ int) error {
				if kvStore.Get(key) == nil {
					return fmt.Errorf("key %s not found", key)
				}
				return nil
			},
		},
		{
			name:    "rm",
			prepare: setAll,
			op: func(key string, _ int) error {
				kvStore.Remove(key)
				return nil
			},
		},
		{
			name:    "keys",
			prepare: setAll,
			op: func(_ string, i int) error {
				if n := kvStore.Length(); n > 0 {
					kvStore.Key(i % n)
				}
				return nil
			},
		},
		{
			name:    "mixed",
			prepare: setAll,
			op: func(key string, i int) error {
				switch i % 3 {
				case 0:
					return kvStore.Set(key, map[string]any{"n": i})
				case 1:
					kvStore.Get(key)
				case 2:
					kvStore.Remove(key)
				}
				return nil
			},
		},
	}

	fmt.Println("starting tests...")
	registry := gometrics.NewRegistry()
	results := make([]perfResult, 0, len(cases))
	for _, c := range cases {
		if shouldSkip(c.name) {
			printSkipped(c.name)
			continue
		}
		result := runCase(c, registry)
		results = append(results, result)
		printResult(result)
	}

	fmt.Println()
	fmt.Printf("%-20s%d gets, %d sets, %d failed sets\n", "middleware", counters.Ops(store.DirGet), counters.Ops(store.DirSet), counters.Errors(store.DirSet))

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, conf.Medium); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runCase benchmarks one case and records every call in a timer
func runCase(c perfCase, registry gometrics.Registry) perfResult {
	timer := gometrics.GetOrRegisterTimer(c.name, registry)
	failed := gometrics.GetOrRegisterCounter(c.name+".failed", registry)

	bench := testing.Benchmark(func(b *testing.B) {
		getKey, keys := getKeys(c.name)
		if c.prepare != nil {
			c.prepare(keys)
		}

		// cleanup
		b.Cleanup(func() {
			for _, k := range keys {
				kvStore.Remove(k)
			}
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				err := c.op(getKey(counter), counter)
				timer.UpdateSince(start)
				if err != nil {
					failed.Inc(1)
				}
				counter++
			}
		})
	})

	return perfResult{name: c.name, bench: bench, timer: timer, failed: failed.Count()}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// creates the test keys of a benchmark and a function to pick one by index (with wraparound)
func getKeys(prefix string) (func(int) string, []string) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}
	return getKey, keys
}

func opsPerSec(result testing.BenchmarkResult) (float64, float64) {
	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1.0 / (nsPerOp / 1e9)
}

func printSkipped(test string) {
	fmt.Printf("%-20sskipped\n", test)
}

// printResult prints the result of a benchmark in a formatted way
func printResult(r perfResult) {
	nsPerOp, perSec := opsPerSec(r.bench)
	snapshot := r.timer.Snapshot()

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s",
		r.name, nsPerOp, time.Duration(nsPerOp), perSec,
		time.Duration(snapshot.Percentile(0.5)), time.Duration(snapshot.Percentile(0.99)))
	if r.failed > 0 {
		fmt.Printf("\t%d failed", r.failed)
	}
	fmt.Println()
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult, mediumType common.MediumType) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns", "Failed",
		"Medium", "Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, r := range results {
		nsPerOp, perSec := opsPerSec(r.bench)
		snapshot := r.timer.Snapshot()

		row := []string{
			r.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", perSec),
			fmt.Sprintf("%.0f", snapshot.Percentile(0.5)),
			fmt.Sprintf("%.0f", snapshot.Percentile(0.99)),
			strconv.FormatInt(r.failed, 10),
			string(mediumType),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
