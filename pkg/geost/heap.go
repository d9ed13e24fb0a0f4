package geost

// Heap is an array-backed binary heap ordered by a single three-way
// comparator. The ascending flavour pops the smallest element first, the
// descending one the largest.
type Heap[T any] struct {
	items []T
	cmp   func(a, b T) int
	sign  int
}

// NewAscendingHeap returns a min-heap under cmp.
func NewAscendingHeap[T any](cmp func(a, b T) int) *Heap[T] {
	return &Heap[T]{cmp: cmp, sign: 1}
}

// NewDescendingHeap returns a max-heap under cmp.
func NewDescendingHeap[T any](cmp func(a, b T) int) *Heap[T] {
	return &Heap[T]{cmp: cmp, sign: -1}
}

// Len returns the number of elements.
func (h *Heap[T]) Len() int { return len(h.items) }

// before reports whether items[i] must sit above items[j].
func (h *Heap[T]) before(i, j int) bool {
	return h.sign*h.cmp(h.items[i], h.items[j]) < 0
}

// Push inserts x in O(log n).
func (h *Heap[T]) Push(x T) {
	h.items = append(h.items, x)
	h.up(len(h.items) - 1)
}

// Peek returns the top element without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Pop removes and returns the top element in O(log n).
func (h *Heap[T]) Pop() (T, bool) {
	var zero T
	n := len(h.items)
	if n == 0 {
		return zero, false
	}
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.down(0)
	}
	return top, true
}

// Heapify replaces the content with items in O(n). The slice is adopted,
// not copied.
func (h *Heap[T]) Heapify(items []T) {
	h.items = items
	for i := len(items)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.before(i, parent) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap[T]) down(i int) {
	n := len(h.items)
	for {
		best := i
		if l := 2*i + 1; l < n && h.before(l, best) {
			best = l
		}
		if r := 2*i + 2; r < n && h.before(r, best) {
			best = r
		}
		if best == i {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}
