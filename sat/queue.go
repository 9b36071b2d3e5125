package sat

// queue is a FIFO queue backed by a growable ring buffer. The propagation
// engine uses it as its work queue of newly assigned literals.
type queue[T any] struct {
	ring  []T
	mask  int
	start int
	end   int
	size  int
}

// newQueue returns a queue with at least the given capacity. The actual
// capacity is rounded up to the next power of two so that positions can be
// wrapped with a mask.
func newQueue[T any](capa int) *queue[T] {
	capa = nextPower2(capa)
	return &queue[T]{
		ring: make([]T, capa),
		mask: capa - 1,
	}
}

func nextPower2(i int) int {
	i |= i >> 1
	i |= i >> 2
	i |= i >> 4
	i |= i >> 8
	i |= i >> 16
	i |= i >> 32
	return i + 1
}

func (q *queue[T]) isEmpty() bool {
	return q.size == 0
}

func (q *queue[T]) len() int {
	return q.size
}

func (q *queue[T]) clear() {
	q.start = 0
	q.end = 0
	q.size = 0
}

func (q *queue[T]) push(elem T) {
	if q.size == len(q.ring) {
		q.grow()
	}
	q.ring[q.end] = elem
	q.end = (q.end + 1) & q.mask
	q.size++
}

func (q *queue[T]) grow() {
	newRing := make([]T, len(q.ring)*2)
	if q.start == 0 {
		copy(newRing, q.ring)
	} else {
		l := len(q.ring) - q.start
		copy(newRing[:l], q.ring[q.start:])
		copy(newRing[l:], q.ring[:q.end])
	}
	q.start = 0
	q.end = q.size
	q.ring = newRing
	q.mask = len(newRing) - 1
}

func (q *queue[T]) pop() T {
	if q.size == 0 {
		panic("pop on an empty queue")
	}
	elem := q.ring[q.start]
	q.start = (q.start + 1) & q.mask
	q.size--
	return elem
}
