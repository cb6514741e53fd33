package kernel

import "mos/internal/list"

// readyQueue is the scheduler's pluggable selection policy (spec.md §4.3,
// §9: "a tagged variant or a statically dispatched trait with two
// implementations" — MOS picks the trait/interface form since Go has no
// deep-inheritance story to avoid in the first place).
//
// A TCB's ready-band membership is tied to whichever TCB is currently
// "current": the running TCB is not linked into any ready band while it
// runs, so pickNext both decides whether the outgoing TCB re-enters the
// ready set (only if its Status is still Ready — Blocked/Terminated
// outgoing TCBs were already moved to their own list by the caller) and
// picks the incoming one, in one step. That single step is what naturally
// implements "rotate within the band on slice exhaustion": requeuing the
// outgoing TCB at the back of its band and popping the band's front is a
// round-robin rotation by construction.
type readyQueue interface {
	insert(t *TCB)
	remove(t *TCB)
	pickNext(outgoing *TCB) *TCB
	anyHigherThan(pri Priority) bool
	// onTick updates slice bookkeeping for the current TCB and reports
	// whether the tick ISR should request a context switch.
	onTick(current *TCB) (preempt bool)
	empty() bool
	// popHighest pops the next TCB to run with no outgoing task to
	// consider re-queuing — used at boot (spec.md §4.4's os_start) and by
	// readyRaw when it dispatches a task on an idle kernel.
	popHighest() *TCB
}

// --- PreemptPri -------------------------------------------------------

type preemptPriQueue struct {
	bands     [numPriorityBands]list.List[TCB]
	timeSlice int
}

func newPreemptPriQueue(timeSlice int) *preemptPriQueue {
	return &preemptPriQueue{timeSlice: timeSlice}
}

func (q *preemptPriQueue) insert(t *TCB) { q.bands[t.pri].PushBack(&t.link) }
func (q *preemptPriQueue) remove(t *TCB) { q.bands[t.pri].Remove(&t.link) }

func (q *preemptPriQueue) highestNonEmpty() (Priority, bool) {
	for p := 0; p < numPriorityBands; p++ {
		if !q.bands[p].Empty() {
			return Priority(p), true
		}
	}
	return 0, false
}

func (q *preemptPriQueue) empty() bool {
	_, ok := q.highestNonEmpty()
	return !ok
}

func (q *preemptPriQueue) anyHigherThan(pri Priority) bool {
	for p := 0; p < int(pri); p++ {
		if !q.bands[p].Empty() {
			return true
		}
	}
	return false
}

// pickNext requeues outgoing (if it is still eligible to run again) and
// then pops the next TCB to run. It returns nil if there is genuinely
// nothing ready — outgoing was not Ready and no other task is either —
// which the caller must treat as the kernel going idle, not as
// "outgoing keeps running".
func (q *preemptPriQueue) pickNext(outgoing *TCB) *TCB {
	if outgoing.status == Ready {
		q.insert(outgoing)
	}
	hp, ok := q.highestNonEmpty()
	if !ok {
		return nil
	}
	next := q.bands[hp].PopFront().Value()
	next.status = Running
	next.slice = q.timeSlice
	return next
}

func (q *preemptPriQueue) popHighest() *TCB {
	hp, ok := q.highestNonEmpty()
	if !ok {
		return nil
	}
	return q.bands[hp].PopFront().Value()
}

func (q *preemptPriQueue) onTick(cur *TCB) bool {
	if q.anyHigherThan(cur.pri) {
		return true
	}
	cur.slice--
	if cur.slice > 0 {
		return false
	}
	if q.bands[cur.pri].Empty() {
		// No peer at this priority to rotate in; just renew the slice.
		cur.slice = q.timeSlice
		return false
	}
	return true
}

// --- RoundRobin --------------------------------------------------------

// roundRobinQueue ignores priority entirely: the whole ready set rotates
// by one slot on every pickNext call, with a TimeSlice quantum per task
// (spec.md §4.3, §8 scenario 6).
type roundRobinQueue struct {
	flat      list.List[TCB]
	timeSlice int
}

func newRoundRobinQueue(timeSlice int) *roundRobinQueue {
	return &roundRobinQueue{timeSlice: timeSlice}
}

func (q *roundRobinQueue) insert(t *TCB) { q.flat.PushBack(&t.link) }
func (q *roundRobinQueue) remove(t *TCB) { q.flat.Remove(&t.link) }
func (q *roundRobinQueue) empty() bool   { return q.flat.Empty() }

func (q *roundRobinQueue) anyHigherThan(Priority) bool { return false }

func (q *roundRobinQueue) pickNext(outgoing *TCB) *TCB {
	if outgoing.status == Ready {
		q.insert(outgoing)
	}
	front := q.flat.PopFront()
	if front == nil {
		return nil
	}
	next := front.Value()
	next.status = Running
	next.slice = q.timeSlice
	return next
}

func (q *roundRobinQueue) popHighest() *TCB {
	n := q.flat.PopFront()
	if n == nil {
		return nil
	}
	return n.Value()
}

func (q *roundRobinQueue) onTick(cur *TCB) bool {
	cur.slice--
	if cur.slice > 0 {
		return false
	}
	return true
}

func newReadyQueue(policy Policy, timeSlice int) readyQueue {
	if policy == RoundRobin {
		return newRoundRobinQueue(timeSlice)
	}
	return newPreemptPriQueue(timeSlice)
}
