package report

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteProducesExpectedShape(t *testing.T) {
	reports := []ListReport{
		{
			NCut:             0,
			K:                3,
			AvgReadingTime:   1.5,
			NumListsAssessed: 10,
			Strategies: map[string]StrategyOutcome{
				"OPT": {AvgScore: 42.0},
				"Cutoff-OPT": {
					AvgScore:              30.0,
					AvgApproximationError: 0.28,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, reports); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding written report: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}
	entry := decoded[0]
	for _, key := range []string{"n_cut", "k", "avg_reading_time", "num_lists_assessed", "strategies"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("missing key %q in written report", key)
		}
	}

	strategies, ok := entry["strategies"].(map[string]any)
	if !ok {
		t.Fatalf("strategies is not an object: %T", entry["strategies"])
	}
	opt, ok := strategies["OPT"].(map[string]any)
	if !ok {
		t.Fatalf("strategies.OPT is not an object: %T", strategies["OPT"])
	}
	if opt["avg_score"] != 42.0 {
		t.Errorf("OPT.avg_score = %v, want 42.0", opt["avg_score"])
	}
}

func TestWriteEmptyReportsYieldsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var decoded []ListReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("len(decoded) = %d, want 0", len(decoded))
	}
}
