// Package filtering implements the Filtering@k problem: selecting at most k
// items from an attribute-sorted, relevance-scored list to maximise a
// position-discounted search quality metric (the DCG family). It provides an
// exact dynamic-programming filter, three pruning strategies with different
// optimality guarantees, and a composition harness that chains a pruner into
// a filter while tracking timings and approximation error.
package filtering

// Relevance is a non-negative relevance score for a single item. Values are
// assumed to already have been filtered upstream so that Relevance >= 0.
type Relevance = float32

// Score is the output of a search quality metric: a gain factor discounted
// by rank position, summed over a solution.
type Score = float32

// Index is a zero-based position in the attribute-sorted input list.
type Index = uint32

// K is the maximum number of elements a Filter solution keeps, and the k
// that a Pruner selects or prunes for.
type K = uint16

// MinMax carries the minimum and maximum relevance over the active prefix,
// supplied by the caller to avoid recomputation inside a Pruner.
type MinMax struct {
	Min Relevance
	Max Relevance
}

// PrunerSolution is the ordered, strictly-increasing set of indices a Pruner
// kept from the original list. It preserves attribute order.
type PrunerSolution struct {
	Indices []Index
}

// Len reports the number of elements retained by the pruner.
func (s PrunerSolution) Len() int {
	return len(s.Indices)
}

// Equal reports whether two pruner solutions contain the same indices in the
// same order.
func (s PrunerSolution) Equal(o PrunerSolution) bool {
	if len(s.Indices) != len(o.Indices) {
		return false
	}
	for i := range s.Indices {
		if s.Indices[i] != o.Indices[i] {
			return false
		}
	}
	return true
}

// FilterSolution is the result of a Filter@k run: a score and the
// strictly-increasing indices composing it, with |Indices| <= k.
type FilterSolution struct {
	Score   Score
	Indices []Index
}

// Len reports the number of elements composing the solution.
func (s FilterSolution) Len() int {
	return len(s.Indices)
}

// Equal reports whether two filter solutions have the same score and the
// same composing indices.
func (s FilterSolution) Equal(o FilterSolution) bool {
	if s.Score != o.Score || len(s.Indices) != len(o.Indices) {
		return false
	}
	for i := range s.Indices {
		if s.Indices[i] != o.Indices[i] {
			return false
		}
	}
	return true
}

// Pruner reduces the input list before filtering while preserving attribute
// order. Implementations provide different quality guarantees: Cutoff gives
// none, Top-k gives 0.5-optimality, Eps-Pruning gives (1-epsilon)-optimality.
type Pruner interface {
	// Apply prunes relevances[0:n] and returns the kept indices, in order.
	Apply(relevances []Relevance, n int, minMax MinMax) PrunerSolution
	// Name identifies the pruner for reporting purposes.
	Name() string
}

// Filter solves Filtering@k over a (possibly already pruned) relevance list.
type Filter interface {
	// Apply returns the optimal-for-this-filter solution over relevances[0:n].
	Apply(relevances []Relevance, n int) FilterSolution
	// K returns the configured maximum solution size.
	K() K
}
