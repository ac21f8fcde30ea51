package filtering

import (
	"context"
	"fmt"
	"time"

	"github.com/rsavio/attrfilter/pkg/metrics"
	"github.com/rsavio/attrfilter/pkg/tracing"
)

// TestOutcome is the result of running one Composition against one list:
// the filtering solution plus the timings and pruning counts that produced
// it.
type TestOutcome struct {
	Score                Score
	Indices              []Index
	NumElementsPruned    int
	NumElementsNotPruned int
	FirstStageTime       time.Duration
	SecondStageTime      time.Duration
	TotalTime            time.Duration
}

// AggregateOutcome accumulates TestOutcome values across many lists into
// running averages, without retaining every individual outcome. Each update
// mixes in the new sample with weight 1/(n+1) against the running average
// weighted (n)/(n+1), so memory stays O(1) regardless of how many lists are
// assessed.
type AggregateOutcome struct {
	NumListsAssessed        int
	AvgScore                float64
	MaxApproximationError   float64
	AvgApproximationError   float64
	AvgNumElementsPruned    float64
	AvgNumElementsNotPruned float64
	AvgFirstStageTime       float64
	AvgSecondStageTime      float64
	AvgTotalTime            float64
}

// Update folds outcome into the running averages. optimalScore, when
// non-nil, is used to compute this list's approximation error; otherwise
// the error contribution for this list is 0.
func (a *AggregateOutcome) Update(outcome TestOutcome, optimalScore *Score) {
	newMultiplier := 1.0 / float64(a.NumListsAssessed+1)
	oldMultiplier := float64(a.NumListsAssessed) * newMultiplier

	var approximationError float64
	if optimalScore != nil && *optimalScore >= 0 {
		approximationError = 1.0 - float64(outcome.Score)/float64(*optimalScore)
	}
	if approximationError > a.MaxApproximationError {
		a.MaxApproximationError = approximationError
	}

	a.AvgScore = newMultiplier*float64(outcome.Score) + oldMultiplier*a.AvgScore
	a.AvgApproximationError = newMultiplier*approximationError + oldMultiplier*a.AvgApproximationError
	a.AvgNumElementsPruned = newMultiplier*float64(outcome.NumElementsPruned) + oldMultiplier*a.AvgNumElementsPruned
	a.AvgNumElementsNotPruned = newMultiplier*float64(outcome.NumElementsNotPruned) + oldMultiplier*a.AvgNumElementsNotPruned
	a.AvgFirstStageTime = newMultiplier*outcome.FirstStageTime.Seconds()*1000 + oldMultiplier*a.AvgFirstStageTime
	a.AvgSecondStageTime = newMultiplier*outcome.SecondStageTime.Seconds()*1000 + oldMultiplier*a.AvgSecondStageTime
	a.AvgTotalTime = newMultiplier*outcome.TotalTime.Seconds()*1000 + oldMultiplier*a.AvgTotalTime

	a.NumListsAssessed++
}

// Composition chains an optional Pruner into a required Filter and measures
// each stage's wall-clock cost, averaged over NumRuns repetitions to damp
// measurement noise. EpsilonBelow/EpsilonAbove document the approximation
// guarantee the pair provides; nothing in this package reads them.
type Composition struct {
	Name         string
	Pruner       Pruner // nil runs the filter directly over the whole list
	Filter       Filter
	NumRuns      int
	EpsilonBelow float64
	EpsilonAbove float64
	sink         *Sink
	metrics      *metrics.Metrics
}

// NewComposition builds a Composition. filter must be non-nil and numRuns
// must be strictly positive.
func NewComposition(name string, pruner Pruner, filter Filter, numRuns int, epsilonBelow, epsilonAbove float64) (*Composition, error) {
	if filter == nil {
		return nil, fmt.Errorf("filtering: filter must not be nil")
	}
	if numRuns <= 0 {
		return nil, fmt.Errorf("filtering: numRuns must be strictly positive")
	}
	if epsilonBelow < 0 || epsilonAbove < 0 {
		return nil, fmt.Errorf("filtering: epsilon values must be non-negative")
	}
	return &Composition{
		Name:         name,
		Pruner:       pruner,
		Filter:       filter,
		NumRuns:      numRuns,
		EpsilonBelow: epsilonBelow,
		EpsilonAbove: epsilonAbove,
		sink:         NewSink(),
	}, nil
}

// SetMetrics attaches a Metrics collector so Run records each stage's
// duration into FilterStageDuration. A nil Composition.metrics (the
// default) skips recording rather than requiring every caller, including
// tests, to supply one.
func (c *Composition) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// Run executes the pruner (if any) followed by the filter over
// relevances[0:n], timing each stage's average cost over NumRuns
// repetitions, and remaps the filter's local indices back to indices into
// the original list.
func (c *Composition) Run(relevances []Relevance, n int, minMax MinMax) TestOutcome {
	var outcome TestOutcome
	var filtered FilterSolution

	ctx := context.Background()

	if c.Pruner != nil {
		_, pruneSpan := tracing.StartSpan(ctx, c.Name+".prune", c.Name)
		start := time.Now()
		pruned := c.Pruner.Apply(relevances, n, minMax)
		for run := 1; run < c.NumRuns; run++ {
			repeat := c.Pruner.Apply(relevances, n, minMax)
			c.sink.Consume(uint64(repeat.Len()))
		}
		outcome.FirstStageTime = time.Since(start) / time.Duration(c.NumRuns)
		pruneSpan.SetAttr("num_pruned", n-pruned.Len())
		pruneSpan.End()
		c.observeStage("prune", outcome.FirstStageTime)

		n2 := pruned.Len()
		outcome.NumElementsPruned = n - n2
		outcome.NumElementsNotPruned = n2

		subList := make([]Relevance, n2)
		for i, idx := range pruned.Indices {
			subList[i] = relevances[idx]
		}

		_, exactSpan := tracing.StartSpan(ctx, c.Name+".exact", c.Name)
		start = time.Now()
		filtered = c.Filter.Apply(subList, n2)
		for run := 1; run < c.NumRuns; run++ {
			repeat := c.Filter.Apply(subList, n2)
			c.sink.Consume(uint64(repeat.Len()))
		}
		outcome.SecondStageTime = time.Since(start) / time.Duration(c.NumRuns)
		exactSpan.End()
		c.observeStage("exact", outcome.SecondStageTime)

		remapped := make([]Index, len(filtered.Indices))
		for i, localIdx := range filtered.Indices {
			remapped[i] = pruned.Indices[localIdx]
		}
		filtered.Indices = remapped
	} else {
		_, exactSpan := tracing.StartSpan(ctx, c.Name+".exact", c.Name)
		start := time.Now()
		filtered = c.Filter.Apply(relevances, n)
		for run := 1; run < c.NumRuns; run++ {
			repeat := c.Filter.Apply(relevances, n)
			c.sink.Consume(uint64(repeat.Len()))
		}
		outcome.SecondStageTime = time.Since(start) / time.Duration(c.NumRuns)
		exactSpan.End()
		c.observeStage("exact", outcome.SecondStageTime)
	}

	outcome.Score = filtered.Score
	outcome.Indices = filtered.Indices
	outcome.TotalTime = outcome.FirstStageTime + outcome.SecondStageTime

	return outcome
}

// observeStage records a stage's duration into FilterStageDuration when a
// Metrics collector has been attached via SetMetrics.
func (c *Composition) observeStage(stage string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.FilterStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
