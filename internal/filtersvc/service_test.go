package filtersvc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rsavio/attrfilter/pkg/proto"
)

func TestHandleFilterSolvesExactly(t *testing.T) {
	s := New(nil, nil)
	req := proto.FilterRequest{
		Relevances: []float32{3, 1, 4, 1, 5, 9, 2, 6},
		K:          4,
		Metric:     "dcg",
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp, err := s.handleFilter(context.Background(), raw)
	if err != nil {
		t.Fatalf("handleFilter: %v", err)
	}

	out, ok := resp.(*proto.FilterResponse)
	if !ok {
		t.Fatalf("response type = %T, want *proto.FilterResponse", resp)
	}
	if len(out.Indices) > int(req.K) {
		t.Errorf("len(Indices) = %d, want <= %d", len(out.Indices), req.K)
	}
	if out.Score <= 0 {
		t.Errorf("Score = %v, want > 0", out.Score)
	}
	for i := 1; i < len(out.Indices); i++ {
		if out.Indices[i-1] >= out.Indices[i] {
			t.Errorf("indices not strictly increasing: %v", out.Indices)
		}
	}
}

func TestHandleFilterWithTopkPrunerRemapsIndices(t *testing.T) {
	s := New(nil, nil)
	req := proto.FilterRequest{
		Relevances: []float32{3, 1, 4, 1, 5, 9, 2, 6},
		K:          3,
		Metric:     "dcg",
		Pruner:     "topk",
	}
	raw, _ := json.Marshal(req)

	resp, err := s.handleFilter(context.Background(), raw)
	if err != nil {
		t.Fatalf("handleFilter: %v", err)
	}
	out := resp.(*proto.FilterResponse)
	for _, idx := range out.Indices {
		if int(idx) >= len(req.Relevances) {
			t.Errorf("index %d out of range for input of length %d", idx, len(req.Relevances))
		}
	}
}

func TestHandleFilterRejectsUnknownMetric(t *testing.T) {
	s := New(nil, nil)
	req := proto.FilterRequest{Relevances: []float32{1, 2}, K: 1, Metric: "bogus"}
	raw, _ := json.Marshal(req)
	if _, err := s.handleFilter(context.Background(), raw); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestHandleFilterRejectsZeroK(t *testing.T) {
	s := New(nil, nil)
	req := proto.FilterRequest{Relevances: []float32{1, 2}, K: 0, Metric: "dcg"}
	raw, _ := json.Marshal(req)
	if _, err := s.handleFilter(context.Background(), raw); err == nil {
		t.Error("expected error for k=0")
	}
}
