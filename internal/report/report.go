// Package report defines the JSON shape written by the filtering benchmark
// driver: one object per (n_cut, k) combination, holding the aggregated
// outcome of every strategy exercised against that combination.
package report

import (
	"encoding/json"
	"io"
)

// StrategyOutcome mirrors filtering.AggregateOutcome in the units the
// report is expected to carry: times in milliseconds, everything else a
// direct copy of the running averages.
type StrategyOutcome struct {
	AvgScore                float64 `json:"avg_score"`
	MaxApproximationError   float64 `json:"max_approximation_error"`
	AvgApproximationError   float64 `json:"avg_approximation_error"`
	AvgNumElementsPruned    float64 `json:"avg_num_elements_pruned"`
	AvgNumElementsNotPruned float64 `json:"avg_num_elements_not_pruned"`
	AvgFirstStageTime       float64 `json:"avg_first_stage_time"`
	AvgSecondStageTime      float64 `json:"avg_second_stage_time"`
	AvgTotalTime            float64 `json:"avg_total_time"`
}

// ListReport is one (n_cut, k) combination's aggregated results across every
// list assessed at that combination.
type ListReport struct {
	NCut             int                        `json:"n_cut"`
	K                int                        `json:"k"`
	AvgReadingTime   float64                    `json:"avg_reading_time"`
	NumListsAssessed int                        `json:"num_lists_assessed"`
	Strategies       map[string]StrategyOutcome `json:"strategies"`
}

// Write marshals reports as a JSON array and writes it to w, indented the
// way a human-reviewed benchmark artifact should be.
func Write(w io.Writer, reports []ListReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
