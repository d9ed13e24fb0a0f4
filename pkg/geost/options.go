package geost

// options.go: behaviour switches of the placement constraint

import "slices"

// ObjectPair names two objects by id. Pairs are unordered.
type ObjectPair struct{ A, B int }

func (p ObjectPair) normalized() ObjectPair {
	if p.A > p.B {
		return ObjectPair{p.B, p.A}
	}
	return p
}

// Options holds the behaviour switches. It is a value: the constraint
// keeps its own copy and never changes it.
type Options struct {
	// Memoisation reuses external frames while the variables they read
	// are unchanged.
	Memoisation bool
	// Increment resumes greedy placement at the first object that was not
	// pinned by a previous episode on the same branch.
	Increment bool
	// Greedy tries to place every object directly before pruning.
	Greedy bool
	// ControlVectors drive greedy placement; object i uses entry i mod len.
	ControlVectors []ControlVector
	// IncludedPairs lists pairs whose separation the caller guarantees;
	// non-overlap generates nothing between them.
	IncludedPairs []ObjectPair
}

// Option adjusts Options.
type Option func(*Options)

// DefaultOptions returns plain pruning with memoisation.
func DefaultOptions() Options {
	return Options{Memoisation: true}
}

// NewOptions applies opts on top of DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMemoisation toggles frame reuse.
func WithMemoisation(on bool) Option {
	return func(o *Options) { o.Memoisation = on }
}

// WithIncrement toggles incremental greedy placement.
func WithIncrement(on bool) Option {
	return func(o *Options) { o.Increment = on }
}

// WithGreedy enables greedy placement driven by the given control vectors.
func WithGreedy(vectors ...ControlVector) Option {
	return func(o *Options) {
		o.Greedy = true
		o.ControlVectors = make([]ControlVector, len(vectors))
		for i, cv := range vectors {
			o.ControlVectors[i] = slices.Clone(cv)
		}
	}
}

// WithIncludedPairs records pairs whose separation is guaranteed elsewhere.
func WithIncludedPairs(pairs ...ObjectPair) Option {
	return func(o *Options) { o.IncludedPairs = slices.Clone(pairs) }
}

// clone detaches o from any slices the caller still holds.
func (o Options) clone() Options {
	out := o
	out.ControlVectors = make([]ControlVector, len(o.ControlVectors))
	for i, cv := range o.ControlVectors {
		out.ControlVectors[i] = slices.Clone(cv)
	}
	out.IncludedPairs = slices.Clone(o.IncludedPairs)
	return out
}

// pairSet indexes IncludedPairs.
func (o Options) pairSet() map[ObjectPair]bool {
	set := make(map[ObjectPair]bool, len(o.IncludedPairs))
	for _, p := range o.IncludedPairs {
		set[p.normalized()] = true
	}
	return set
}

// controlVector returns the vector driving the i-th object.
func (o Options) controlVector(i int) ControlVector {
	return o.ControlVectors[i%len(o.ControlVectors)]
}
