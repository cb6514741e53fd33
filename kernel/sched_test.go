package kernel

import (
	"testing"

	"mos/internal/list"
)

func newTestTCB(id TaskID, pri Priority) *TCB {
	t := &TCB{id: id, pri: pri, status: Ready}
	list.Init(&t.link, t)
	return t
}

func TestPreemptPriPicksHighestBand(t *testing.T) {
	q := newPreemptPriQueue(5)
	low := newTestTCB(1, 10)
	high := newTestTCB(2, 1)
	q.insert(low)
	q.insert(high)

	cur := newTestTCB(0, 20)
	cur.status = Running
	next := q.pickNext(cur)
	if next != high {
		t.Fatalf("expected highest-priority task picked, got %v", next.id)
	}
}

func TestPreemptPriRotatesWithinBand(t *testing.T) {
	q := newPreemptPriQueue(5)
	a := newTestTCB(1, 10)
	b := newTestTCB(2, 10)
	q.insert(a)
	q.insert(b)

	cur := newTestTCB(0, 10)
	cur.status = Running
	first := q.pickNext(cur) // cur (pri 10, not ready) stays out; a was front
	if first != a {
		t.Fatalf("expected a picked first, got %v", first.id)
	}

	a.status = Ready // a is now the outgoing task on the next switch
	second := q.pickNext(a)
	if second != b {
		t.Fatalf("expected b picked second, got %v", second.id)
	}
}

func TestPreemptPriAnyHigherThan(t *testing.T) {
	q := newPreemptPriQueue(5)
	if q.anyHigherThan(5) {
		t.Fatal("empty queue should report no higher task")
	}
	q.insert(newTestTCB(1, 2))
	if !q.anyHigherThan(5) {
		t.Fatal("pri 2 is higher than pri 5 (lower number == higher priority)")
	}
	if q.anyHigherThan(2) {
		t.Fatal("pri 2 is not higher than itself")
	}
}

func TestPreemptPriOnTickPreemptsForHigherPriority(t *testing.T) {
	q := newPreemptPriQueue(5)
	q.insert(newTestTCB(1, 0))
	cur := &TCB{pri: 10, slice: 5}
	if !q.onTick(cur) {
		t.Fatal("expected preemption when a strictly higher priority task is ready")
	}
}

func TestPreemptPriOnTickRotatesOnSliceExhaustion(t *testing.T) {
	q := newPreemptPriQueue(1)
	q.insert(newTestTCB(1, 10)) // peer at the same priority
	cur := &TCB{pri: 10, slice: 1}
	if !q.onTick(cur) {
		t.Fatal("expected a switch request once the slice reaches zero with a peer present")
	}
}

func TestPreemptPriOnTickRenewsSliceWhenAlone(t *testing.T) {
	q := newPreemptPriQueue(1)
	cur := &TCB{pri: 10, slice: 1}
	if q.onTick(cur) {
		t.Fatal("a lone task at its priority should not be switched out")
	}
	if cur.slice != 1 {
		t.Fatalf("slice should have been renewed to timeSlice, got %d", cur.slice)
	}
}

func TestRoundRobinIgnoresPriority(t *testing.T) {
	q := newRoundRobinQueue(5)
	low := newTestTCB(1, 50)
	high := newTestTCB(2, 0)
	q.insert(low)
	q.insert(high)

	if q.anyHigherThan(0) {
		t.Fatal("round robin never reports a higher-priority task")
	}

	cur := &TCB{status: Running}
	first := q.pickNext(cur)
	if first != low {
		t.Fatalf("round robin should pick in FIFO order regardless of priority, got %v", first.id)
	}
}

func TestRoundRobinRotatesEverySwitch(t *testing.T) {
	q := newRoundRobinQueue(5)
	a := newTestTCB(1, 0)
	b := newTestTCB(2, 0)
	c := newTestTCB(3, 0)
	q.insert(a)
	q.insert(b)
	q.insert(c)

	cur := &TCB{status: Running}
	order := []TaskID{}
	next := q.pickNext(cur)
	order = append(order, next.id)
	for i := 0; i < 4; i++ {
		next.status = Ready
		next = q.pickNext(next)
		order = append(order, next.id)
	}
	want := []TaskID{1, 2, 3, 1, 2}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("rotation order mismatch at %d: want %d got %d", i, id, order[i])
		}
	}
}
