// Command filterbench sweeps the Filtering@k grid benchmark over a set of
// TSV result lists and writes the aggregated report as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rsavio/attrfilter/internal/affinity"
	"github.com/rsavio/attrfilter/internal/benchrun"
	"github.com/rsavio/attrfilter/internal/filterevents"
	"github.com/rsavio/attrfilter/internal/filtering"
	"github.com/rsavio/attrfilter/internal/progress"
	"github.com/rsavio/attrfilter/internal/report"
	"github.com/rsavio/attrfilter/internal/reportstore"
	"github.com/rsavio/attrfilter/internal/resultsio"
	"github.com/rsavio/attrfilter/pkg/config"
	"github.com/rsavio/attrfilter/pkg/kafka"
	"github.com/rsavio/attrfilter/pkg/logger"
	"github.com/rsavio/attrfilter/pkg/metrics"
	"github.com/rsavio/attrfilter/pkg/postgres"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	nCutFlag := flag.String("n-cut-list", "0", "comma-separated list of n_cut values (0 = no cut)")
	kFlag := flag.String("k-list", "", "comma-separated list of k values (required)")
	epsilonFlag := flag.String("epsilon-list", "", "comma-separated list of epsilon values for EpsFiltering (overrides config)")
	metricFlag := flag.String("metric", "", "dcg or dcglz (overrides config)")
	skipShorter := flag.Bool("skip-shorter-lists", false, "skip lists shorter than a given n_cut instead of using the full list")
	cutoff := flag.Bool("cutoff", true, "include the Cutoff pruner in the sweep")
	topk := flag.Bool("topk", true, "include the Top-k pruner in the sweep")
	epsFiltering := flag.Bool("eps-filtering", true, "include Eps-Pruning in the sweep")
	out := flag.String("out", "", "output report path (default: stdout)")
	persistLabel := flag.String("persist-label", "", "if set, also persist the report to Postgres under this label")
	publishEvents := flag.Bool("publish-events", false, "publish a run-completed event to Kafka when the sweep finishes")
	metricsPort := flag.Int("metrics-port", 0, "Prometheus metrics port (0 disables the metrics server)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := affinity.Pin(cfg.Filtering.CPUAffinity); err != nil {
		slog.Warn("cpu affinity pin failed, continuing unpinned", "error", err)
	}

	metricName := cfg.Filtering.Metric
	if *metricFlag != "" {
		metricName = *metricFlag
	}
	metricKind, ok := filtering.ParseMetricKind(metricName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown metric %q\n", metricName)
		os.Exit(1)
	}

	nCutList, err := parseIntList(*nCutFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -n-cut-list: %v\n", err)
		os.Exit(1)
	}
	kList, err := parseIntList(*kFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -k-list: %v\n", err)
		os.Exit(1)
	}
	if len(kList) == 0 {
		fmt.Fprintln(os.Stderr, "-k-list is required")
		os.Exit(1)
	}
	epsilonList, err := parseFloatList(*epsilonFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -epsilon-list: %v\n", err)
		os.Exit(1)
	}
	if len(epsilonList) == 0 {
		epsilonList = []float64{cfg.Filtering.Epsilon}
	}

	benchCfg, err := benchrun.NewConfig(metricKind, nCutList, kList, epsilonList, *skipShorter, cfg.Filtering.CheckSolutions, cfg.Filtering.NumRuns, *cutoff, *topk, *epsFiltering)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid grid configuration: %v\n", err)
		os.Exit(1)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "at least one input TSV file is required")
		os.Exit(1)
	}

	lists, err := readLists(paths, cfg.Filtering.ParallelLists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	slog.Info("benchmark starting", "num_lists", len(lists), "metric", metricName, "k_list", kList, "n_cut_list", nCutList)

	m := metrics.New()
	if *metricsPort > 0 {
		shutdownMetrics := metrics.StartServer(*metricsPort)
		defer shutdownMetrics(context.Background())
	}

	start := time.Now()
	reports, err := benchrun.Run(benchCfg, lists, m, progress.Bar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nbenchmark run failed: %v\n", err)
		os.Exit(1)
	}
	slog.Info("benchmark finished", "duration", time.Since(start), "num_combinations", len(reports))

	if err := writeReport(*out, reports); err != nil {
		fmt.Fprintf(os.Stderr, "writing report: %v\n", err)
		os.Exit(1)
	}

	if *persistLabel != "" {
		if err := persistReport(cfg, *persistLabel, reports); err != nil {
			slog.Error("persisting report failed", "error", err)
			os.Exit(1)
		}
	}

	if *publishEvents {
		label := *persistLabel
		if label == "" {
			label = "filterbench"
		}
		publishRunCompleted(cfg, label, reports, time.Since(start))
	}
}

func publishRunCompleted(cfg *config.Config, label string, reports []report.ListReport, elapsed time.Duration) {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.FilteringEvents)
	defer producer.Close()
	publisher := filterevents.NewPublisher(producer)

	numLists := 0
	if len(reports) > 0 {
		numLists = reports[0].NumListsAssessed
	}
	event := filterevents.RunCompletedEvent{
		Type:             filterevents.EventRunCompleted,
		Label:            label,
		NumListsAssessed: numLists,
		NumCombinations:  len(reports),
		DurationMs:       elapsed.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
	if err := publisher.PublishRunCompleted(context.Background(), event); err != nil {
		slog.Error("publishing run-completed event failed", "error", err)
	}
}

func writeReport(path string, reports []report.ListReport) error {
	if path == "" {
		return report.Write(os.Stdout, reports)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return report.Write(f, reports)
}

func persistReport(cfg *config.Config, label string, reports []report.ListReport) error {
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	store := reportstore.NewStore(db)
	return store.Save(context.Background(), label, reports)
}

// readLists loads every TSV path concurrently, bounded by parallelLists
// in-flight reads, and returns them in the same order as paths.
func readLists(paths []string, parallelLists int) ([]benchrun.List, error) {
	lists := make([]benchrun.List, len(paths))

	g := new(errgroup.Group)
	if parallelLists > 0 {
		g.SetLimit(parallelLists)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rl, err := resultsio.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			lists[i] = benchrun.List{Name: path, Relevances: rl.Relevances}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

func parseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
