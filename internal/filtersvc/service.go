// Package filtersvc exposes Filtering@k over the platform's JSON-over-TCP
// RPC layer (pkg/grpc), the same Register/HandlerFunc pattern the other
// services use to expose their operations.
package filtersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rsavio/attrfilter/internal/filtering"
	"github.com/rsavio/attrfilter/internal/optcache"
	"github.com/rsavio/attrfilter/pkg/grpc"
	"github.com/rsavio/attrfilter/pkg/metrics"
	"github.com/rsavio/attrfilter/pkg/proto"
	"github.com/rsavio/attrfilter/pkg/tracing"
)

// Service wraps the filtering package behind RPC handlers. cache is
// optional: when nil, every request is solved fresh. m is optional: when
// nil, FilterRequestsTotal is not reported.
type Service struct {
	cache   *optcache.Cache
	metrics *metrics.Metrics
}

// New creates a Service. cache may be nil to disable OPT memoization. m may
// be nil to disable metrics reporting.
func New(cache *optcache.Cache, m *metrics.Metrics) *Service {
	return &Service{cache: cache, metrics: m}
}

var requestSeq atomic.Int64

func nextTraceID() string {
	return fmt.Sprintf("filter-%d", requestSeq.Add(1))
}

// Register adds the Filtering RPC methods to an RPC server.
func (s *Service) Register(server *grpc.Server) {
	server.Register("Filtering.Filter", s.handleFilter)
}

func (s *Service) handleFilter(ctx context.Context, req json.RawMessage) (_ any, err error) {
	ctx, span := tracing.StartSpan(ctx, "filtersvc.Filter", nextTraceID())
	var in proto.FilterRequest
	defer func() {
		span.End()
		span.Log()
		if s.metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			s.metrics.FilterRequestsTotal.WithLabelValues(in.Metric, in.Pruner, status).Inc()
		}
	}()

	if err := json.Unmarshal(req, &in); err != nil {
		return nil, fmt.Errorf("decoding filter request: %w", err)
	}
	span.SetAttr("metric", in.Metric)
	span.SetAttr("k", in.K)
	span.SetAttr("pruner", in.Pruner)
	span.SetAttr("list_size", len(in.Relevances))

	metricKind, ok := filtering.ParseMetricKind(in.Metric)
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", in.Metric)
	}
	if in.K == 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(in.Relevances) == 0 {
		return nil, fmt.Errorf("relevances must be non-empty")
	}

	relevances := in.Relevances
	n := len(relevances)

	memoize := s.cache != nil && (in.Pruner == "" || in.Pruner == "none")
	var cacheKey string
	if memoize {
		cacheKey = optcache.Key(metricKind, filtering.K(in.K), relevances)
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			outIndices := make([]uint32, len(cached.Indices))
			copy(outIndices, cached.Indices)
			return &proto.FilterResponse{Score: cached.Score, Indices: outIndices}, nil
		}
	}

	metric := filtering.NewMetric(metricKind, int(in.K))
	filter := filtering.NewFilterSpirin(filtering.K(in.K), metric)

	var pruner filtering.Pruner
	switch in.Pruner {
	case "", "none":
	case "cutoff":
		pruner = filtering.NewPrunerCutoff()
	case "topk":
		pruner = filtering.NewPrunerTopk(filtering.K(in.K))
	case "epspruning":
		if in.Epsilon <= 0 || in.Epsilon >= 1 {
			return nil, fmt.Errorf("epsilon must be strictly between 0 and 1, got %v", in.Epsilon)
		}
		pruner = filtering.NewPrunerEpsPruning(filtering.K(in.K), in.Epsilon, metric)
	default:
		return nil, fmt.Errorf("unknown pruner %q", in.Pruner)
	}

	_, solveSpan := tracing.StartChildSpan(ctx, "filtersvc.solve")
	var solution filtering.FilterSolution
	if pruner == nil {
		solution = filter.Apply(relevances, n)
	} else {
		minMax := minMaxOf(relevances)
		pruned := pruner.Apply(relevances, n, minMax)
		solveSpan.SetAttr("num_pruned", n-len(pruned.Indices))
		prunedRelevances := make([]filtering.Relevance, len(pruned.Indices))
		for i, idx := range pruned.Indices {
			prunedRelevances[i] = relevances[idx]
		}
		local := filter.Apply(prunedRelevances, len(prunedRelevances))
		remapped := make([]filtering.Index, len(local.Indices))
		for i, localIdx := range local.Indices {
			remapped[i] = pruned.Indices[localIdx]
		}
		solution = filtering.FilterSolution{Score: local.Score, Indices: remapped}
	}
	solveSpan.End()

	if memoize {
		if err := s.cache.Put(ctx, cacheKey, solution); err != nil {
			slog.Warn("optcache put failed", "error", err)
		}
	}

	outIndices := make([]uint32, len(solution.Indices))
	copy(outIndices, solution.Indices)

	return &proto.FilterResponse{
		Score:   solution.Score,
		Indices: outIndices,
	}, nil
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
