package filtering

import "sync/atomic"

// Sink accumulates values that must be observed somewhere so that the
// compiler cannot prove a repeated benchmark call is dead and elide it. Go
// has no portable inline-assembly escape hatch, so an atomic accumulator that
// a caller can read back stands in for one: the accumulation is a genuine
// side effect the compiler cannot remove.
type Sink struct {
	total uint64
}

// NewSink returns a ready-to-use sink.
func NewSink() *Sink {
	return &Sink{}
}

// Consume folds x into the running total. Safe for concurrent use.
func (s *Sink) Consume(x uint64) {
	atomic.AddUint64(&s.total, x)
}

// Total returns the accumulated value.
func (s *Sink) Total() uint64 {
	return atomic.LoadUint64(&s.total)
}
