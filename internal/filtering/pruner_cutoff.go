package filtering

// PrunerCutoff keeps every item whose relevance is at least the midpoint
// between the list's minimum and maximum relevance. It gives no quality
// guarantee and exists as a cheap baseline against the guaranteed pruners.
type PrunerCutoff struct{}

// NewPrunerCutoff constructs a Cutoff pruner. It carries no state.
func NewPrunerCutoff() *PrunerCutoff {
	return &PrunerCutoff{}
}

// Name identifies this pruner for reporting.
func (PrunerCutoff) Name() string {
	return "Cutoff"
}

// Apply keeps indices whose relevance is >= (min+max)/2, in order.
func (PrunerCutoff) Apply(relevances []Relevance, n int, minMax MinMax) PrunerSolution {
	cutoff := 0.5*minMax.Min + 0.5*minMax.Max
	indices := make([]Index, 0, n)
	for i := 0; i < n; i++ {
		if relevances[i] >= cutoff {
			indices = append(indices, Index(i))
		}
	}
	return PrunerSolution{Indices: indices}
}
