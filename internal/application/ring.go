package application

// ring is a fixed-capacity FIFO that drops its oldest element when full.
type ring[T any] struct {
	items    []T
	start    int
	size     int
	capacity int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{items: make([]T, capacity), capacity: capacity}
}

func (r *ring[T]) Push(item T) {
	if r.size < r.capacity {
		r.items[(r.start+r.size)%r.capacity] = item
		r.size++
		return
	}

	r.items[r.start] = item
	r.start = (r.start + 1) % r.capacity
}

// clone returns a copy that later pushes to r do not affect.
func (r *ring[T]) clone() *ring[T] {
	c := *r
	c.items = append([]T(nil), r.items...)
	return &c
}

func (r *ring[T]) Len() int {
	return r.size
}

// Slice returns the elements oldest first.
func (r *ring[T]) Slice() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.items[(r.start+i)%r.capacity])
	}
	return out
}

func (r *ring[T]) Each(fn func(T)) {
	for i := 0; i < r.size; i++ {
		fn(r.items[(r.start+i)%r.capacity])
	}
}
