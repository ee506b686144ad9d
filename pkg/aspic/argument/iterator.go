package argument

// Iterator is a single-pass, pull-based sequence. HasNext performs the search
// for the next item and caches it; Next hands the cached item over. Calling
// Next without a cached item is a programming error and panics.
type Iterator[T any] interface {
	HasNext() bool
	Next() T
}

// Lookahead is an Iterator with a one-slot cache in front of a search
// function. advance returns false once the search space is exhausted; it is
// not called again afterwards.
type Lookahead[T any] struct {
	advance func() (T, bool)
	cached  T
	queued  bool
	done    bool
}

// NewLookahead wraps advance in a lookahead iterator.
func NewLookahead[T any](advance func() (T, bool)) *Lookahead[T] {
	return &Lookahead[T]{advance: advance}
}

func (it *Lookahead[T]) HasNext() bool {
	if it.queued {
		return true
	}
	if it.done {
		return false
	}
	item, ok := it.advance()
	if !ok {
		it.done = true
		it.advance = nil
		return false
	}
	it.cached, it.queued = item, true
	return true
}

func (it *Lookahead[T]) Next() T {
	if !it.queued {
		panic("argument: Next called without a pending item")
	}
	item := it.cached
	var zero T
	it.cached, it.queued = zero, false
	return item
}

// Empty returns an exhausted iterator.
func Empty[T any]() Iterator[T] {
	return NewLookahead(func() (T, bool) {
		var zero T
		return zero, false
	})
}

// Single returns an iterator over exactly one item.
func Single[T any](item T) Iterator[T] {
	used := false
	return NewLookahead(func() (T, bool) {
		if used {
			var zero T
			return zero, false
		}
		used = true
		return item, true
	})
}

// FromSlice iterates over items in order.
func FromSlice[T any](items []T) Iterator[T] {
	i := 0
	return NewLookahead(func() (T, bool) {
		if i >= len(items) {
			var zero T
			return zero, false
		}
		i++
		return items[i-1], true
	})
}

// Collect drains it. A limit of zero or less collects everything.
func Collect[T any](it Iterator[T], limit int) []T {
	var out []T
	for it.HasNext() {
		out = append(out, it.Next())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
