// Package benchrun drives the Filtering@k grid benchmark: for every
// (n_cut, k) combination it runs the exact filter plus every enabled
// pruning strategy over each input list, checks solutions against the
// guarantees each strategy claims, and aggregates the results into the
// report shape consumed by cmd/filterbench.
package benchrun

import (
	"fmt"
	"sort"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"

	"github.com/rsavio/attrfilter/internal/filtering"
)

// Config is the validated grid of parameters a benchmark run sweeps. Build
// it with NewConfig, which normalises and validates the raw CLI lists the
// same way the reference assessment tool does.
type Config struct {
	Metric           filtering.MetricKind
	NCutList         []int
	KList            []int
	EpsilonList      []float64
	SkipShorterLists bool
	CheckSolutions   bool
	NumRuns          int
	TestCutoff       bool
	TestTopk         bool
	TestEpsFiltering bool
}

// NewConfig normalises the raw parameter lists (sorting, deduplicating,
// rotating the lone non-positive n_cut to the end) and validates every
// cross-parameter constraint the grid must satisfy. It returns an error
// wrapping ErrConfig on the first violation.
func NewConfig(metric filtering.MetricKind, nCutList []int, kList []int, epsilonList []float64, skipShorterLists, checkSolutions bool, numRuns int, testCutoff, testTopk, testEpsFiltering bool) (*Config, error) {
	nCut, err := normalizeNCutList(nCutList)
	if err != nil {
		return nil, err
	}
	k, err := normalizeKList(kList)
	if err != nil {
		return nil, err
	}
	if nCut[0] > 0 && k[0] > nCut[0] {
		return nil, fmt.Errorf("%w: k_list cannot be greater than the smallest positive n_cut", apperrors.ErrConfig)
	}
	eps, err := normalizeEpsilonList(epsilonList)
	if err != nil {
		return nil, err
	}
	if numRuns <= 0 {
		return nil, fmt.Errorf("%w: num_runs must be strictly positive", apperrors.ErrConfig)
	}

	return &Config{
		Metric:           metric,
		NCutList:         nCut,
		KList:            k,
		EpsilonList:      eps,
		SkipShorterLists: skipShorterLists,
		CheckSolutions:   checkSolutions,
		NumRuns:          numRuns,
		TestCutoff:       testCutoff,
		TestTopk:         testTopk,
		TestEpsFiltering: testEpsFiltering,
	}, nil
}

// normalizeNCutList sorts n_cut_list ascending, rejects duplicates, allows
// at most one non-positive entry (meaning "full list"), and rotates it to
// the end so 0 always sorts last.
func normalizeNCutList(raw []int) ([]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: n_cut_list is empty", apperrors.ErrConfig)
	}
	list := append([]int(nil), raw...)
	sort.Ints(list)

	nonPositiveCount := 0
	for i, v := range list {
		if i > 0 && list[i-1] == v {
			return nil, fmt.Errorf("%w: n_cut_list contains duplicate %d", apperrors.ErrConfig, v)
		}
		if v <= 0 {
			nonPositiveCount++
		}
	}
	if nonPositiveCount > 1 {
		return nil, fmt.Errorf("%w: n_cut_list can contain only one non-positive entry", apperrors.ErrConfig)
	}
	if nonPositiveCount == 1 && list[0] <= 0 {
		rotated := append(list[1:], 0)
		list = rotated
	}
	return list, nil
}

// normalizeKList sorts k_list ascending, rejects duplicates and non-positive
// values.
func normalizeKList(raw []int) ([]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: k_list is empty", apperrors.ErrConfig)
	}
	list := append([]int(nil), raw...)
	sort.Ints(list)
	for i, v := range list {
		if v <= 0 {
			return nil, fmt.Errorf("%w: k_list must contain values strictly greater than 0", apperrors.ErrConfig)
		}
		if i > 0 && list[i-1] == v {
			return nil, fmt.Errorf("%w: k_list contains duplicate %d", apperrors.ErrConfig, v)
		}
	}
	return list, nil
}

// normalizeEpsilonList sorts epsilon_list descending, rejects duplicates
// and values outside (0, 1).
func normalizeEpsilonList(raw []float64) ([]float64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: epsilon_list is empty", apperrors.ErrConfig)
	}
	list := append([]float64(nil), raw...)
	sort.Sort(sort.Reverse(sort.Float64Slice(list)))
	for i, v := range list {
		if v <= 0 || v >= 1 {
			return nil, fmt.Errorf("%w: epsilon_list must contain values strictly between 0 and 1", apperrors.ErrConfig)
		}
		if i > 0 && list[i-1] == v {
			return nil, fmt.Errorf("%w: epsilon_list contains duplicate %v", apperrors.ErrConfig, v)
		}
	}
	return list, nil
}

// MaxK returns the largest k in the grid, the size a shared Metric must be
// built for.
func (c *Config) MaxK() int {
	max := c.KList[0]
	for _, k := range c.KList[1:] {
		if k > max {
			max = k
		}
	}
	return max
}
