package keyboard

// queue is a FIFO with a backpressure threshold. The decode loop stops
// pulling bytes once full() reports true, so a slow consumer pauses
// the producer instead of losing events. Keys decoded from bytes that
// were already read are still enqueued; the bound gates reads, not
// pushes.
type queue[T any] struct {
	items []T
	max   int
}

func newQueue[T any](max int) *queue[T] {
	return &queue[T]{
		items: make([]T, 0, max),
		max:   max,
	}
}

func (q *queue[T]) push(item T) {
	q.items = append(q.items, item)
}

func (q *queue[T]) pop() (T, bool) {
	var item T
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	copy(q.items, q.items[1:])
	q.items = q.items[:len(q.items)-1]
	return item, true
}

func (q *queue[T]) len() int {
	return len(q.items)
}

func (q *queue[T]) full() bool {
	return len(q.items) >= q.max
}

func (q *queue[T]) empty() bool {
	return len(q.items) == 0
}
