package filtering

import "math"

// PrunerEpsPruning implements the (1-epsilon)-optimal pruning strategy of
// Nardini et al., "Fast Approximate Filtering of Search Results Sorted by
// Attribute". It partitions the gain range into geometrically shrinking
// intervals and keeps, for every interval, the k right-most elements whose
// gain falls in or above it, so that the final filter can never lose more
// than a factor epsilon of the true optimum.
type PrunerEpsPruning struct {
	k       K
	epsilon float64
	metric  *Metric
}

// NewPrunerEpsPruning constructs an Eps-Pruning pruner for the given metric,
// solution size bound k and approximation budget epsilon (0 < epsilon < 1).
func NewPrunerEpsPruning(k K, epsilon float64, metric *Metric) *PrunerEpsPruning {
	return &PrunerEpsPruning{k: k, epsilon: epsilon, metric: metric}
}

// Name identifies this pruner for reporting.
func (p *PrunerEpsPruning) Name() string {
	return "EpsPruning"
}

// Apply keeps enough of the list, in order, that a downstream exact filter
// applied to the survivors loses at most a factor of epsilon relative to the
// optimum over the whole list.
func (p *PrunerEpsPruning) Apply(relevances []Relevance, n int, minMax MinMax) PrunerSolution {
	if n == 0 {
		return PrunerSolution{}
	}
	k := int(p.k)
	delta := 1.0 - p.epsilon

	maxGain := float64(p.metric.Gain(minMax.Max))
	minGainCandidate := float64(p.metric.Gain(minMax.Min))
	tailBound := (p.epsilon * maxGain * float64(p.metric.Discount(1))) /
		(delta * float64(p.metric.DiscountSum(2, k)))
	minGain := math.Max(minGainCandidate, tailBound) * (1.0 - 1e-16)

	minThreshold := p.metric.GainInverse(Score(minGain))
	for i := 16; i > 0 && float64(p.metric.Gain(minThreshold)) > minGain; i-- {
		minThreshold = p.metric.GainInverse(Score(minGain - math.Pow(0.1, float64(i))))
	}

	boundaryCount := 1 + (1 + int(math.Ceil(math.Log2(minGain/maxGain)/math.Log2(delta))))
	boundaries := make([]Relevance, boundaryCount)
	v := maxGain
	for i := len(boundaries); i > 0; i-- {
		boundaries[i-1] = p.metric.GainInverse(Score(v))
		v *= delta
	}
	boundaries[len(boundaries)-1] = minMax.Max

	capacity := boundaryCount * k
	if capacity > n {
		capacity = n
	}
	indices := make([]Index, 0, capacity)

	heapData := make([]Relevance, 0, k)
	i := n
	for i > 0 {
		i--
		if relevances[i] >= minThreshold {
			indices = append(indices, Index(i))
			heapData = append(heapData, relevances[i])
			if len(heapData) == k {
				break
			}
		}
	}

	h := NewHeap(heapData, relevanceLess)
	if h.Len() == 0 {
		reverseIndices(indices)
		return PrunerSolution{Indices: indices}
	}

	minIntervalID := 0
	for boundaries[minIntervalID] < h.Root() {
		minIntervalID++
	}
	minThreshold = boundaries[minIntervalID]

	for i > 0 {
		i--
		if relevances[i] <= minThreshold {
			continue
		}
		indices = append(indices, Index(i))
		h.Replace(relevances[i])

		if boundaries[minIntervalID] < h.Root() {
			minIntervalID++
			for boundaries[minIntervalID] < h.Root() {
				minIntervalID++
			}
			if minIntervalID == len(boundaries)-1 {
				break
			}
			minThreshold = boundaries[minIntervalID]
		}
	}

	reverseIndices(indices)
	return PrunerSolution{Indices: indices}
}

func reverseIndices(indices []Index) {
	for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
		indices[i], indices[j] = indices[j], indices[i]
	}
}
