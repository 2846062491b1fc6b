package queue

import (
	"sync"
	"testing"
)

// row stands in for a pending database row
type row struct {
	Index int
	Label string
}

func indexes(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueue_New(t *testing.T) {
	q := New[row]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Pop(t *testing.T) {
	q := New[row]()

	if _, ok := q.Pop(); ok {
		t.Error("expected ok=false on empty queue")
	}

	q.Push(row{Index: 1, Label: "first"}, row{Index: 2, Label: "second"})
	first, ok := q.Pop()
	if !ok || first.Index != 1 || first.Label != "first" {
		t.Errorf("expected {1, first}, got %+v (ok=%v)", first, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
	if q.Taken() != 1 {
		t.Errorf("expected 1 taken, got %d", q.Taken())
	}
}

func TestQueue_PopN(t *testing.T) {
	q := New[row]()
	if got := q.PopN(3); got != nil {
		t.Errorf("expected nil from empty queue, got %v", got)
	}

	for i := 1; i <= 5; i++ {
		q.Push(row{Index: i})
	}

	chunk := q.PopN(2)
	if !equalInts(indexes(chunk), []int{1, 2}) {
		t.Errorf("expected [1 2], got %v", indexes(chunk))
	}
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}

	rest := q.PopN(10)
	if !equalInts(indexes(rest), []int{3, 4, 5}) {
		t.Errorf("expected [3 4 5], got %v", indexes(rest))
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Taken() != 5 {
		t.Errorf("expected 5 taken, got %d", q.Taken())
	}
}

func TestQueue_PopN_All(t *testing.T) {
	q := New[row]()
	q.Push(row{Index: 1}, row{Index: 2}, row{Index: 3})

	all := q.PopN(0)
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
}

func TestQueue_PopN_DoesNotAlias(t *testing.T) {
	q := New[row]()
	q.Push(row{Index: 1}, row{Index: 2})
	chunk := q.PopN(1)
	chunk[0].Label = "changed"
	q.Push(row{Index: 3})

	next, _ := q.Pop()
	if next.Index != 2 || next.Label != "" {
		t.Errorf("expected untouched {2}, got %+v", next)
	}
}

func TestQueue_Requeue(t *testing.T) {
	q := New[row]()
	q.Push(row{Index: 1}, row{Index: 2}, row{Index: 3})

	failed := q.PopN(2)
	q.Push(row{Index: 4})
	q.Requeue(failed...)

	got := indexes(q.PopN(0))
	if !equalInts(got, []int{1, 2, 3, 4}) {
		t.Errorf("expected [1 2 3 4], got %v", got)
	}
	if q.Taken() != 4 {
		t.Errorf("expected 4 taken, got %d", q.Taken())
	}

	q.Requeue()
	if !q.Empty() {
		t.Error("requeue of nothing should leave the queue empty")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[row]()
	q.Push(row{Index: 1}, row{Index: 2}, row{Index: 3})

	q.Clear()
	if !q.Empty() {
		t.Error("expected empty queue after clear")
	}

	q.Push(row{Index: 4})
	if q.Len() != 1 {
		t.Errorf("expected length 1 after push, got %d", q.Len())
	}
}

func TestQueue_ConcurrentPushPopN(t *testing.T) {
	q := New[row]()
	const producers = 8
	const perProducer = 250

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.Push(row{Index: p*perProducer + i})
			}
		}()
	}

	seen := make(map[int]bool)
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			for _, r := range q.PopN(16) {
				mu.Lock()
				seen[r.Index] = true
				mu.Unlock()
			}
			mu.Lock()
			n := len(seen)
			mu.Unlock()
			if n == producers*perProducer {
				return
			}
		}
	}()

	wg.Wait()
	<-done

	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct rows, got %d", producers*perProducer, len(seen))
	}
	if q.Taken() != producers*perProducer {
		t.Errorf("expected %d taken, got %d", producers*perProducer, q.Taken())
	}
}
