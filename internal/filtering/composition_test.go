package filtering

import "testing"

func TestCompositionRunWithoutPrunerMatchesDirectFilter(t *testing.T) {
	metric := NewMetric(DCG, 10)
	rel := []Relevance{3, 1, 5, 2, 4}
	filter := NewFilterSpirin(3, metric)

	comp, err := NewComposition("exact", nil, filter, 2, 0, 0)
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}

	outcome := comp.Run(rel, len(rel), minMaxOf(rel))
	direct := filter.Apply(rel, len(rel))

	if outcome.Score != direct.Score {
		t.Errorf("Run().Score = %v, want %v", outcome.Score, direct.Score)
	}
	if !equalIndices(outcome.Indices, direct.Indices) {
		t.Errorf("Run().Indices = %v, want %v", outcome.Indices, direct.Indices)
	}
	if outcome.NumElementsPruned != 0 {
		t.Errorf("NumElementsPruned = %v, want 0 with no pruner", outcome.NumElementsPruned)
	}
}

func TestCompositionRunRemapsPrunedIndices(t *testing.T) {
	metric := NewMetric(DCG, 10)
	rel := []Relevance{3, 1, 5, 2, 4}
	k := K(2)

	pruner := NewPrunerTopk(3)
	filter := NewFilterSpirin(k, metric)
	comp, err := NewComposition("topk+spirin", pruner, filter, 1, 0.5, 0)
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}

	outcome := comp.Run(rel, len(rel), minMaxOf(rel))

	for i := 1; i < len(outcome.Indices); i++ {
		if outcome.Indices[i-1] >= outcome.Indices[i] {
			t.Errorf("remapped indices not strictly increasing: %v", outcome.Indices)
		}
	}
	recomputed, err := ScoreSolution(rel, outcome.Indices, metric)
	if err != nil {
		t.Fatalf("ScoreSolution: %v", err)
	}
	if recomputed != outcome.Score {
		t.Errorf("recomputed score %v over remapped indices %v does not match reported score %v", recomputed, outcome.Indices, outcome.Score)
	}
}

func TestCompositionRejectsInvalidConfig(t *testing.T) {
	metric := NewMetric(DCG, 10)
	filter := NewFilterSpirin(2, metric)

	if _, err := NewComposition("x", nil, nil, 1, 0, 0); err == nil {
		t.Error("expected error for nil filter")
	}
	if _, err := NewComposition("x", nil, filter, 0, 0, 0); err == nil {
		t.Error("expected error for non-positive numRuns")
	}
	if _, err := NewComposition("x", nil, filter, 1, -0.1, 0); err == nil {
		t.Error("expected error for negative epsilon")
	}
}

func TestAggregateOutcomeUpdateIsRunningAverage(t *testing.T) {
	var agg AggregateOutcome
	outcomes := []TestOutcome{
		{Score: 10},
		{Score: 20},
		{Score: 30},
	}
	for _, o := range outcomes {
		agg.Update(o, nil)
	}
	want := (10.0 + 20.0 + 30.0) / 3.0
	if agg.AvgScore != want {
		t.Errorf("AvgScore = %v, want %v", agg.AvgScore, want)
	}
	if agg.NumListsAssessed != 3 {
		t.Errorf("NumListsAssessed = %v, want 3", agg.NumListsAssessed)
	}
}

func TestAggregateOutcomeApproximationError(t *testing.T) {
	var agg AggregateOutcome
	optimal := Score(100)
	agg.Update(TestOutcome{Score: 80}, &optimal)
	if got, want := agg.AvgApproximationError, 0.2; absDiff(got, want) > 1e-9 {
		t.Errorf("AvgApproximationError = %v, want %v", got, want)
	}
	if got, want := agg.MaxApproximationError, 0.2; absDiff(got, want) > 1e-9 {
		t.Errorf("MaxApproximationError = %v, want %v", got, want)
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
