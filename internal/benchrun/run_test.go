package benchrun

import (
	"errors"
	"testing"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"

	"github.com/rsavio/attrfilter/internal/filtering"
)

func mustConfig(t *testing.T, metric filtering.MetricKind, nCut, k []int, eps []float64, testCutoff, testTopk, testEps bool) *Config {
	t.Helper()
	cfg, err := NewConfig(metric, nCut, k, eps, false, true, 3, testCutoff, testTopk, testEps)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestNewConfigNormalizesNCutList(t *testing.T) {
	cfg := mustConfig(t, filtering.DCG, []int{10, 0, 5}, []int{2}, []float64{0.1}, false, false, false)
	want := []int{5, 10, 0}
	for i, v := range want {
		if cfg.NCutList[i] != v {
			t.Errorf("NCutList[%d] = %d, want %d", i, cfg.NCutList[i], v)
		}
	}
}

func TestNewConfigRejectsDuplicateNCut(t *testing.T) {
	_, err := NewConfig(filtering.DCG, []int{5, 5}, []int{2}, []float64{0.1}, false, true, 3, false, false, false)
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestNewConfigRejectsTwoNonPositiveNCut(t *testing.T) {
	_, err := NewConfig(filtering.DCG, []int{0, -1}, []int{2}, []float64{0.1}, false, true, 3, false, false, false)
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestNewConfigRejectsKGreaterThanSmallestNCut(t *testing.T) {
	_, err := NewConfig(filtering.DCG, []int{5}, []int{10}, []float64{0.1}, false, true, 3, false, false, false)
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestNewConfigSortsEpsilonDescending(t *testing.T) {
	cfg := mustConfig(t, filtering.DCG, []int{0}, []int{2}, []float64{0.1, 0.5, 0.2}, false, false, true)
	want := []float64{0.5, 0.2, 0.1}
	for i, v := range want {
		if cfg.EpsilonList[i] != v {
			t.Errorf("EpsilonList[%d] = %v, want %v", i, cfg.EpsilonList[i], v)
		}
	}
}

func TestNewConfigRejectsEpsilonOutOfRange(t *testing.T) {
	_, err := NewConfig(filtering.DCG, []int{0}, []int{2}, []float64{1.0}, false, true, 3, false, false, true)
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestNewConfigRejectsNonPositiveNumRuns(t *testing.T) {
	_, err := NewConfig(filtering.DCG, []int{0}, []int{2}, []float64{0.1}, false, true, 0, false, false, false)
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestRunProducesReportForEveryCombination(t *testing.T) {
	cfg := mustConfig(t, filtering.DCG, []int{0, 4}, []int{2, 4}, []float64{0.3}, true, true, true)

	lists := []List{
		{Name: "list-a", Relevances: []filtering.Relevance{3, 1, 4, 1, 5, 9, 2, 6}},
		{Name: "list-b", Relevances: []filtering.Relevance{2, 7, 1, 8, 2, 8}},
	}

	var progressed []int
	reports, err := Run(cfg, lists, nil, func(done, total int) {
		progressed = append(progressed, done)
		if total != len(lists) {
			t.Errorf("total = %d, want %d", total, len(lists))
		}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(progressed) != len(lists) {
		t.Errorf("onProgress called %d times, want %d", len(progressed), len(lists))
	}

	wantCombos := map[[2]int]bool{
		{0, 2}: true, {0, 4}: true, {4, 2}: true, {4, 4}: true,
	}
	if len(reports) != len(wantCombos) {
		t.Fatalf("len(reports) = %d, want %d", len(reports), len(wantCombos))
	}
	for _, r := range reports {
		if !wantCombos[[2]int{r.NCut, r.K}] {
			t.Errorf("unexpected combination n_cut=%d k=%d", r.NCut, r.K)
		}
		if r.NumListsAssessed != len(lists) {
			t.Errorf("NumListsAssessed = %d, want %d", r.NumListsAssessed, len(lists))
		}
		for _, name := range []string{"OPT", "Cutoff-OPT", "Topk-OPT", "EpsFiltering (epsilon=0.3)"} {
			if _, ok := r.Strategies[name]; !ok {
				t.Errorf("n_cut=%d k=%d: missing strategy %q", r.NCut, r.K, name)
			}
		}
		if r.Strategies["OPT"].AvgScore <= 0 {
			t.Errorf("n_cut=%d k=%d: OPT avg score = %v, want > 0", r.NCut, r.K, r.Strategies["OPT"].AvgScore)
		}
	}
}

func TestRunSkipsShorterListsWhenRequested(t *testing.T) {
	cfg, err := NewConfig(filtering.DCG, []int{10}, []int{2}, []float64{0.1}, true, true, 2, false, false, false)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	lists := []List{{Name: "short", Relevances: []filtering.Relevance{1, 2, 3}}}
	reports, err := Run(cfg, lists, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].NumListsAssessed != 0 {
		t.Errorf("NumListsAssessed = %d, want 0 (list shorter than n_cut should be skipped)", reports[0].NumListsAssessed)
	}
}

func TestRunOnEmptyListsYieldsZeroAssessedCells(t *testing.T) {
	cfg := mustConfig(t, filtering.DCG, []int{0}, []int{2}, []float64{0.1}, false, false, false)
	reports, err := Run(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].NumListsAssessed != 0 {
		t.Errorf("NumListsAssessed = %d, want 0", reports[0].NumListsAssessed)
	}
}
