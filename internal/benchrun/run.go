package benchrun

import (
	"fmt"
	"time"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"

	"github.com/rsavio/attrfilter/internal/filtering"
	"github.com/rsavio/attrfilter/internal/report"
	"github.com/rsavio/attrfilter/pkg/metrics"
)

// List is one input list's relevances, identified for diagnostics. Ids and
// attributes are not needed by the filtering core itself; callers extract
// Relevances from a resultsio.ResultsList before calling Run.
type List struct {
	Name       string
	Relevances []filtering.Relevance
}

// strategy pairs a report-facing name with the composition that produces
// it and the approximation bound CheckSolution should enforce against OPT.
// OPT itself is tracked separately since it has no external optimum to
// compare against.
type strategy struct {
	name        string
	composition *filtering.Composition
	epsilon     float64
}

// gridCell accumulates one (n_cut, k) combination across every list
// processed.
type gridCell struct {
	nCut             int
	k                int
	numListsAssessed int
	avgReadingTime   float64
	opt              filtering.AggregateOutcome
	others           []filtering.AggregateOutcome // parallel to strategies, excludes OPT
}

// Run sweeps cfg's (n_cut, k) grid over lists, invoking onProgress (if
// non-nil) after each list is processed, and returns the aggregated
// report. If cfg.CheckSolutions is set, a guarantee breach aborts the run
// with an error wrapping ErrInvariantViolation that names the offending
// strategy, combination, and list. m is optional: when non-nil, every
// composition's stage timings feed FilterStageDuration and each processed
// list increments ListsAssessedTotal.
func Run(cfg *Config, lists []List, m *metrics.Metrics, onProgress func(done, total int)) ([]report.ListReport, error) {
	metric := filtering.NewMetric(cfg.Metric, cfg.MaxK())

	filters := make(map[int]*filtering.FilterSpirin, len(cfg.KList))
	for _, k := range cfg.KList {
		filters[k] = filtering.NewFilterSpirin(filtering.K(k), metric)
	}

	optComps := make(map[int]*filtering.Composition, len(cfg.KList))
	strategiesByK := make(map[int][]strategy, len(cfg.KList))
	for _, k := range cfg.KList {
		optComp, err := filtering.NewComposition("OPT", nil, filters[k], cfg.NumRuns, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("building OPT composition for k=%d: %w", k, err)
		}
		optComp.SetMetrics(m)
		optComps[k] = optComp

		var strategies []strategy
		if cfg.TestCutoff {
			comp, err := filtering.NewComposition("Cutoff-OPT", filtering.NewPrunerCutoff(), filters[k], cfg.NumRuns, 1.0, 0)
			if err != nil {
				return nil, fmt.Errorf("building Cutoff-OPT composition for k=%d: %w", k, err)
			}
			comp.SetMetrics(m)
			strategies = append(strategies, strategy{name: "Cutoff-OPT", composition: comp, epsilon: 1.0})
		}
		if cfg.TestTopk {
			comp, err := filtering.NewComposition("Topk-OPT", filtering.NewPrunerTopk(filtering.K(k)), filters[k], cfg.NumRuns, 0.5, 0)
			if err != nil {
				return nil, fmt.Errorf("building Topk-OPT composition for k=%d: %w", k, err)
			}
			comp.SetMetrics(m)
			strategies = append(strategies, strategy{name: "Topk-OPT", composition: comp, epsilon: 0.5})
		}
		if cfg.TestEpsFiltering {
			for _, epsilon := range cfg.EpsilonList {
				name := fmt.Sprintf("EpsFiltering (epsilon=%g)", epsilon)
				pruner := filtering.NewPrunerEpsPruning(filtering.K(k), epsilon, metric)
				comp, err := filtering.NewComposition(name, pruner, filters[k], cfg.NumRuns, epsilon, 0)
				if err != nil {
					return nil, fmt.Errorf("building %s composition for k=%d: %w", name, k, err)
				}
				comp.SetMetrics(m)
				strategies = append(strategies, strategy{name: name, composition: comp, epsilon: epsilon})
			}
		}
		strategiesByK[k] = strategies
	}

	cells := make(map[[2]int]*gridCell)
	for _, nCut := range cfg.NCutList {
		for _, k := range cfg.KList {
			if nCut > 0 && k > nCut {
				continue
			}
			cells[[2]int{nCut, k}] = &gridCell{
				nCut:   nCut,
				k:      k,
				others: make([]filtering.AggregateOutcome, len(strategiesByK[k])),
			}
		}
	}

	sink := filtering.NewSink()

	for listIdx, list := range lists {
		for _, nCut := range cfg.NCutList {
			n := len(list.Relevances)
			if nCut > 0 && nCut < n {
				n = nCut
			}
			if cfg.SkipShorterLists && nCut > 0 && nCut > len(list.Relevances) {
				continue
			}
			if n == 0 {
				continue
			}

			rel := list.Relevances[:n]
			minMax := minMaxOf(rel)

			readingTime := timeReading(rel, cfg.NumRuns, sink)

			for _, k := range cfg.KList {
				if nCut > 0 && k > nCut {
					continue
				}
				c := cells[[2]int{nCut, k}]

				outcome := optComps[k].Run(rel, n, minMax)
				optimalScore := outcome.Score

				if cfg.CheckSolutions {
					if err := checkOutcome(m, rel, outcome, metric, filtering.CheckOptions{}, "OPT", nCut, k, list.Name); err != nil {
						return nil, err
					}
				}
				c.opt.Update(outcome, nil)

				for i, s := range strategiesByK[k] {
					strategyOutcome := s.composition.Run(rel, n, minMax)
					if cfg.CheckSolutions {
						opts := filtering.CheckOptions{
							Epsilon:      s.epsilon,
							AllowBelow:   true,
							AllowAbove:   false,
							OptimalScore: &optimalScore,
						}
						if err := checkOutcome(m, rel, strategyOutcome, metric, opts, s.name, nCut, k, list.Name); err != nil {
							return nil, err
						}
					}
					c.others[i].Update(strategyOutcome, &optimalScore)
				}

				newMultiplier := 1.0 / float64(c.numListsAssessed+1)
				oldMultiplier := float64(c.numListsAssessed) * newMultiplier
				c.avgReadingTime = oldMultiplier*c.avgReadingTime + newMultiplier*readingTime
				c.numListsAssessed++
				if m != nil {
					m.ListsAssessedTotal.Inc()
				}
			}
		}

		if onProgress != nil {
			onProgress(listIdx+1, len(lists))
		}
	}

	var reports []report.ListReport
	for _, nCut := range cfg.NCutList {
		for _, k := range cfg.KList {
			if nCut > 0 && k > nCut {
				continue
			}
			c := cells[[2]int{nCut, k}]
			strategiesOut := map[string]report.StrategyOutcome{
				"OPT": toStrategyOutcome(c.opt),
			}
			for i, s := range strategiesByK[k] {
				strategiesOut[s.name] = toStrategyOutcome(c.others[i])
			}
			reports = append(reports, report.ListReport{
				NCut:             nCut,
				K:                k,
				AvgReadingTime:   c.avgReadingTime,
				NumListsAssessed: c.numListsAssessed,
				Strategies:       strategiesOut,
			})
		}
	}

	return reports, nil
}

func checkOutcome(m *metrics.Metrics, rel []filtering.Relevance, outcome filtering.TestOutcome, metric *filtering.Metric, opts filtering.CheckOptions, name string, nCut, k int, listName string) error {
	if err := filtering.CheckSolution(rel, outcome.Score, outcome.Indices, metric, opts); err != nil {
		if m != nil {
			m.InvariantViolations.WithLabelValues(name).Inc()
		}
		return fmt.Errorf("%w: strategy %q, n_cut=%d, k=%d, list %q: %v", apperrors.ErrInvariantViolation, name, nCut, k, listName, err)
	}
	return nil
}

func toStrategyOutcome(agg filtering.AggregateOutcome) report.StrategyOutcome {
	return report.StrategyOutcome{
		AvgScore:                agg.AvgScore,
		MaxApproximationError:   agg.MaxApproximationError,
		AvgApproximationError:   agg.AvgApproximationError,
		AvgNumElementsPruned:    agg.AvgNumElementsPruned,
		AvgNumElementsNotPruned: agg.AvgNumElementsNotPruned,
		AvgFirstStageTime:       agg.AvgFirstStageTime,
		AvgSecondStageTime:      agg.AvgSecondStageTime,
		AvgTotalTime:            agg.AvgTotalTime,
	}
}

func minMaxOf(rel []filtering.Relevance) filtering.MinMax {
	mm := filtering.MinMax{Min: rel[0], Max: rel[0]}
	for _, r := range rel[1:] {
		if r < mm.Min {
			mm.Min = r
		}
		if r > mm.Max {
			mm.Max = r
		}
	}
	return mm
}

// timeReading emulates the reference benchmark's cost-of-reading baseline:
// it walks the list numRuns times, folding each value into sink so the
// compiler cannot elide the loop, and returns the average per-run duration
// in milliseconds.
func timeReading(rel []filtering.Relevance, numRuns int, sink *filtering.Sink) float64 {
	start := time.Now()
	for attempt := 0; attempt < numRuns; attempt++ {
		for _, r := range rel {
			sink.Consume(uint64(r))
		}
	}
	elapsed := time.Since(start)
	return float64(elapsed.Microseconds()) / 1000.0 / float64(numRuns)
}
