package sat

import (
	"reflect"
	"testing"
)

func TestQueue_PushWithResizeAndRotation(t *testing.T) {
	q := &queue[int]{
		ring:  []int{3, 4, 1, 2},
		start: 2,
		end:   2,
		size:  4,
		mask:  0b11,
	}
	want := &queue[int]{
		ring:  []int{1, 2, 3, 4, 5, 0, 0, 0},
		start: 0,
		end:   5,
		size:  5,
		mask:  0b111,
	}

	q.push(5)

	if !reflect.DeepEqual(want, q) {
		t.Errorf("Mismatch: want %#v, got %#v", want, q)
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[int](2)
	for i := 0; i < 100; i++ {
		q.push(i)
	}
	if got := q.len(); got != 100 {
		t.Fatalf("len(): got %d, want 100", got)
	}
	for i := 0; i < 100; i++ {
		if got := q.pop(); got != i {
			t.Fatalf("pop(): got %d, want %d", got, i)
		}
	}
	if !q.isEmpty() {
		t.Errorf("queue should be empty")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := newQueue[int](4)
	q.push(1)
	q.push(2)

	q.clear()

	if !q.isEmpty() {
		t.Errorf("queue should be empty after clear")
	}
}
