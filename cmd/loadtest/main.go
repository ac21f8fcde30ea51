// Command loadtest drives concurrent Filter RPCs against a filterservice
// instance and reports latency percentiles, the same worker-pool load
// pattern used to stress the rest of the platform's HTTP services.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rsavio/attrfilter/pkg/grpc"
	"github.com/rsavio/attrfilter/pkg/proto"
)

type Config struct {
	Addr        string
	Concurrency int
	Duration    time.Duration
	ListSize    int
	K           uint16
	Metric      string
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
}

func NewStats() *Stats {
	return &Stats{latencies: make([]time.Duration, 0, 100000)}
}

func (s *Stats) RecordRequest(duration time.Duration, err error) {
	s.totalRequests.Add(1)
	if err != nil {
		s.errorCount.Add(1)
		return
	}
	s.successCount.Add(1)
	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()
}

func main() {
	addr := flag.String("addr", "localhost:9100", "filterservice RPC address")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	listSize := flag.Int("list-size", 200, "length of each synthetic relevance list")
	k := flag.Int("k", 10, "k value for the Filter RPC")
	metric := flag.String("metric", "dcg", "metric for the Filter RPC")
	flag.Parse()

	cfg := Config{
		Addr:        *addr,
		Concurrency: *concurrency,
		Duration:    *duration,
		ListSize:    *listSize,
		K:           uint16(*k),
		Metric:      *metric,
	}

	fmt.Println("=== Filtering Service Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.Addr)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("List size:   %d, k=%d, metric=%s\n", cfg.ListSize, cfg.K, cfg.Metric)
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	deadline := time.Now().Add(cfg.Duration)

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			client, err := grpc.Dial(cfg.Addr)
			if err != nil {
				stats.RecordRequest(0, err)
				return
			}
			defer client.Close()

			rng := rand.New(rand.NewSource(int64(workerID) + 1))
			req := randomFilterRequest(rng, cfg)

			for time.Now().Before(deadline) {
				start := time.Now()
				var resp proto.FilterResponse
				err := client.Call("Filtering.Filter", req, &resp)
				stats.RecordRequest(time.Since(start), err)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	close(stop)
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func randomFilterRequest(rng *rand.Rand, cfg Config) proto.FilterRequest {
	relevances := make([]float32, cfg.ListSize)
	for i := range relevances {
		relevances[i] = rng.Float32() * 10
	}
	return proto.FilterRequest{
		Relevances: relevances,
		K:          cfg.K,
		Metric:     cfg.Metric,
	}
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", errors)

	if total > 0 {
		errorRate := float64(errors) / float64(total) * 100
		fmt.Printf("Error Rate:      %.2f%%\n", errorRate)
		rps := float64(total) / duration.Seconds()
		fmt.Printf("Requests/sec:    %.2f\n", rps)
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])

		var sumSquared float64
		avgFloat := float64(avg)
		for _, l := range latencies {
			diff := float64(l) - avgFloat
			sumSquared += diff * diff
		}
		stddev := time.Duration(math.Sqrt(sumSquared / float64(len(latencies))))
		fmt.Printf("StdDev: %s\n", stddev)
	}

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
