package filtering

import (
	"fmt"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"
)

// numericalSlack absorbs floating-point rounding when comparing reported and
// recomputed scores; it mirrors the 1e-12 tolerance of the reference checker.
const numericalSlack = 1.0e-12

// ErrInvariantViolation marks a solution that fails its score or ordering
// guarantees. It wraps the shared application sentinel so callers across the
// module can test for it with a single errors.Is check.
var ErrInvariantViolation = apperrors.ErrInvariantViolation

// ScoreSolution recomputes the score of indices over relevances under
// metric, independent of whichever filter or pruner produced them. It also
// verifies indices is strictly increasing.
func ScoreSolution(relevances []Relevance, indices []Index, metric *Metric) (Score, error) {
	var score Score
	for i, idx := range indices {
		score += metric.Score(relevances[idx], i+1)
	}
	for i := 1; i < len(indices); i++ {
		if indices[i-1] >= indices[i] {
			return 0, fmt.Errorf("%w: indices not strictly increasing at position %d", ErrInvariantViolation, i)
		}
	}
	return score, nil
}

// CheckOptions bounds the approximation error a checked solution is allowed
// to exhibit relative to a recomputed or externally supplied optimal score.
type CheckOptions struct {
	// Epsilon is the maximum relative approximation error tolerated.
	Epsilon float64
	// AllowBelow permits the solution to score lower than the reference by
	// up to Epsilon. True unless the filter is exact.
	AllowBelow bool
	// AllowAbove permits the solution to score higher than the reference by
	// up to Epsilon.
	AllowAbove bool
	// OptimalScore, when non-nil, is compared against the recomputed real
	// score in addition to the reported one.
	OptimalScore *Score
}

// CheckSolution verifies that solutionScore matches the score obtained by
// reapplying solutionIndices to relevances, and that both fall within the
// bounds described by opts. It returns a non-nil error wrapping
// ErrInvariantViolation on the first violation found.
func CheckSolution(relevances []Relevance, solutionScore Score, solutionIndices []Index, metric *Metric, opts CheckOptions) error {
	realScore, err := ScoreSolution(relevances, solutionIndices, metric)
	if err != nil {
		return err
	}

	if err := boundsCheck("solution", float64(solutionScore), float64(realScore), opts); err != nil {
		return err
	}

	if opts.OptimalScore != nil {
		if err := boundsCheck("real", float64(realScore), float64(*opts.OptimalScore), opts); err != nil {
			return err
		}
	}

	return nil
}

func boundsCheck(label string, got, reference float64, opts CheckOptions) error {
	if opts.AllowBelow && got+numericalSlack < (1.0-opts.Epsilon)*reference {
		return fmt.Errorf("%w: %s score is less than (1-eps) times the reference score", ErrInvariantViolation, label)
	}
	if !opts.AllowBelow && got+numericalSlack < reference {
		return fmt.Errorf("%w: %s score is less than the reference score", ErrInvariantViolation, label)
	}
	if opts.AllowAbove && got-numericalSlack > (1.0+opts.Epsilon)*reference {
		return fmt.Errorf("%w: %s score is greater than (1+eps) times the reference score", ErrInvariantViolation, label)
	}
	if !opts.AllowAbove && got-numericalSlack > reference {
		return fmt.Errorf("%w: %s score is greater than the reference score", ErrInvariantViolation, label)
	}
	return nil
}
