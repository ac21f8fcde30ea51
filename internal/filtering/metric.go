package filtering

import "math"

// MetricKind selects a search quality metric family.
type MetricKind int

const (
	// DCG is the standard discounted cumulative gain metric:
	// gain(r) = 2^r - 1, discount(i) = 1/log2(i+1).
	DCG MetricKind = iota
	// DCGLinear is the linear-gain variant: gain(r) = r, discount(i) = 1/i.
	DCGLinear
)

// String names the metric the way it appears in CLI flags and report keys.
func (k MetricKind) String() string {
	switch k {
	case DCG:
		return "dcg"
	case DCGLinear:
		return "dcglz"
	default:
		return "unknown"
	}
}

// ParseMetricKind parses the CLI metric flag value.
func ParseMetricKind(s string) (MetricKind, bool) {
	switch s {
	case "dcg":
		return DCG, true
	case "dcglz":
		return DCGLinear, true
	default:
		return 0, false
	}
}

// Metric holds the immutable discount tables for one metric family, sized to
// the largest position (k) a run will query. It is built once per benchmark
// configuration and shared by reference across every pruner and filter.
type Metric struct {
	kind         MetricKind
	discounts    []Score // discounts[i] = discount(i), 0 <= i <= maxPosition
	discountSums []Score // discountSums[i] = sum_{j=1..i} discount(j)
	maxPosition  int
}

// NewMetric precomputes the discount and discount-sum tables up to
// maxPosition. Callers must not query positions greater than maxPosition.
func NewMetric(kind MetricKind, maxPosition int) *Metric {
	if maxPosition < 0 {
		maxPosition = 0
	}
	discounts := make([]Score, maxPosition+1)
	discountSums := make([]Score, maxPosition+1)
	discounts[0] = 0
	discountSums[0] = 0
	for i := 1; i <= maxPosition; i++ {
		discounts[i] = discountOf(kind, i)
		discountSums[i] = discountSums[i-1] + discounts[i]
	}
	return &Metric{kind: kind, discounts: discounts, discountSums: discountSums, maxPosition: maxPosition}
}

func discountOf(kind MetricKind, i int) Score {
	switch kind {
	case DCGLinear:
		return Score(1.0 / float64(i))
	default:
		return Score(1.0 / math.Log2(float64(i)+1.0))
	}
}

// Kind reports which metric family this table was built for.
func (m *Metric) Kind() MetricKind {
	return m.kind
}

// MaxPosition reports the largest position this metric's tables support.
func (m *Metric) MaxPosition() int {
	return m.maxPosition
}

// Gain returns the gain factor for a relevance value.
func (m *Metric) Gain(r Relevance) Score {
	switch m.kind {
	case DCGLinear:
		return Score(r)
	default:
		return Score(math.Pow(2, float64(r)) - 1.0)
	}
}

// GainInverse inverts Gain: GainInverse(Gain(r)) ~= r.
func (m *Metric) GainInverse(g Score) Relevance {
	switch m.kind {
	case DCGLinear:
		return Relevance(g)
	default:
		return Relevance(math.Log2(float64(g) + 1.0))
	}
}

// Discount returns the discount factor for a 1-based position; Discount(0)
// is 0 by convention.
func (m *Metric) Discount(position int) Score {
	return m.discounts[position]
}

// DiscountSum returns sum_{i=leftIncluded..rightIncluded} discount(i), with
// 1 <= leftIncluded <= rightIncluded <= MaxPosition.
func (m *Metric) DiscountSum(leftIncluded, rightIncluded int) Score {
	return m.discountSums[rightIncluded] - m.discountSums[leftIncluded-1]
}

// Score returns gain(relevance) * discount(position).
func (m *Metric) Score(relevance Relevance, position int) Score {
	return m.Gain(relevance) * m.Discount(position)
}
