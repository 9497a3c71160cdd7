package publisher

import (
	"fmt"

	"github.com/c360/rstream/errors"
)

// iterator yields the elements of one subscription. Each subscription gets
// its own instance, consumed only from inside the serialized drain, so
// implementations need no locking.
type iterator[T any] interface {
	// HasNext reports whether another element can be pulled. It has no side
	// effects and may be called repeatedly.
	HasNext() bool

	// Next pulls the next element. It is only called after HasNext reported
	// true. A non-nil error is a source fault and terminates the stream.
	Next() (T, error)
}

type sliceIterator[T any] struct {
	items []T
	pos   int
}

func (it *sliceIterator[T]) HasNext() bool {
	return it.pos < len(it.items)
}

func (it *sliceIterator[T]) Next() (T, error) {
	v := it.items[it.pos]
	it.pos++
	return v, nil
}

type rangeIterator struct {
	next      int64
	remaining int64
}

func (it *rangeIterator) HasNext() bool {
	return it.remaining > 0
}

func (it *rangeIterator) Next() (int64, error) {
	v := it.next
	it.next++
	it.remaining--
	return v, nil
}

// generateIterator pulls elements from a user function. The function runs
// inside the drain, so a panic there would otherwise unwind through the
// subscriber's call stack; it is recovered and surfaced as a source fault
// instead.
type generateIterator[T any] struct {
	fn   func(i int64) (T, bool, error)
	i    int64
	done bool

	// one element of lookahead, filled by HasNext
	pending    T
	hasPending bool
	err        error
}

func (it *generateIterator[T]) HasNext() bool {
	if it.hasPending || it.err != nil {
		return true
	}
	if it.done {
		return false
	}

	v, ok, err := it.generate()
	if err != nil {
		it.err = err
		it.done = true
		return true
	}
	if !ok {
		it.done = true
		return false
	}
	it.pending = v
	it.hasPending = true
	return true
}

func (it *generateIterator[T]) Next() (T, error) {
	if it.err != nil {
		var zero T
		err := it.err
		it.err = nil
		return zero, err
	}
	v := it.pending
	var zero T
	it.pending = zero
	it.hasPending = false
	it.i++
	return v, nil
}

func (it *generateIterator[T]) generate() (v T, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = errors.WrapProducer(
				fmt.Errorf("%w: %v", errors.ErrSourcePanic, r),
				"publisher", "Generate", "produce element")
		}
	}()
	return it.fn(it.i)
}
