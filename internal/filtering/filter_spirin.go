package filtering

// FilterSpirin is the lossless Filter@k algorithm of Spirin et al.,
// "Relevance-aware Filtering of Tuples Sorted by an Attribute Value via
// Direct Optimization of Search Quality Metrics". It solves Filtering@k
// exactly via a 2-D dynamic program over (position, chosen-so-far), stored
// in a single flat buffer: a triangular prefix for the first k rows and a
// rectangular tail of width k for the rest.
type FilterSpirin struct {
	k      K
	metric *Metric
}

// NewFilterSpirin builds an exact filter bounded to at most k elements,
// scored with metric.
func NewFilterSpirin(k K, metric *Metric) *FilterSpirin {
	return &FilterSpirin{k: k, metric: metric}
}

// K returns the configured maximum solution size.
func (f *FilterSpirin) K() K {
	return f.k
}

// Apply runs the DP over relevances[0:n] and returns the optimal solution.
// n = 0 or k = 0 yields the empty solution with score 0. k > n is clamped
// to n.
func (f *FilterSpirin) Apply(relevances []Relevance, n int) FilterSolution {
	if n == 0 || f.k == 0 {
		return FilterSolution{}
	}
	k := int(f.k)
	if k > n {
		k = n
	}

	triangleSize := k * (k + 1) / 2
	tailRows := n - k
	m := make([]Score, triangleSize+k*tailRows)

	gains := make([]Score, n)
	discounts := make([]Score, k)
	for i := 0; i < k; i++ {
		gains[i] = f.metric.Gain(relevances[i])
		discounts[i] = f.metric.Discount(i + 1)
	}
	for i := k; i < n; i++ {
		gains[i] = f.metric.Gain(relevances[i])
	}

	m[0] = gains[0] * discounts[0]
	prevShift, currShift := 0, 0

	// Triangular block: rows 0..k-1, row r occupies r+1 columns.
	for row := 1; row < k; row++ {
		currShift = prevShift + row
		m[currShift] = max32(m[prevShift], gains[row]*discounts[0])
		for col := 1; col < row; col++ {
			m[currShift+col] = max32(m[prevShift+col], m[prevShift+col-1]+gains[row]*discounts[col])
		}
		m[currShift+row] = m[prevShift+row-1] + gains[row]*discounts[row]
		prevShift = currShift
	}

	// Rectangular block: rows k..n-1, fixed width k.
	for row := k; row < n; row++ {
		currShift = prevShift + k
		m[currShift] = max32(m[prevShift], gains[row]*discounts[0])
		for col := 1; col < k; col++ {
			m[currShift+col] = max32(m[prevShift+col], m[prevShift+col-1]+gains[row]*discounts[col])
		}
		prevShift = currShift
	}

	var best Score
	bestColumn := 0
	for col := 0; col < k; col++ {
		if m[currShift+col] > best {
			best = m[currShift+col]
			bestColumn = col
		}
	}

	indices := make([]Index, 0, k)
	col := bestColumn
	done := false
	for row := n - 1; row > 0 && !done; row-- {
		width := row
		if row >= k {
			width = k
		}
		prevShift = currShift - width
		if m[currShift+col] > m[prevShift+col] {
			indices = append(indices, Index(row))
			if col == 0 {
				done = true
			} else {
				col--
			}
		}
		if !done {
			currShift = prevShift
		}
	}
	if currShift == 0 {
		indices = append(indices, 0)
	}

	for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
		indices[i], indices[j] = indices[j], indices[i]
	}

	return FilterSolution{Score: best, Indices: indices}
}

func max32(a, b Score) Score {
	if a > b {
		return a
	}
	return b
}
