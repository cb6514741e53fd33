package sync

import (
	"mos/internal/list"
	"mos/kernel"
)

// Mutex is a recursive, priority-inheriting lock (spec.md §4.5). A task
// already holding it may re-enter; a task blocked on it boosts the
// owner's priority to its own for as long as it's blocked, so a
// low-priority holder can't stall a high-priority waiter behind an
// unrelated medium-priority task preempting it (the classic priority
// inversion this primitive exists to prevent).
//
// This implements simple, boost-only priority inheritance — TCB.StorePri
// remembers only the first pre-boost priority across nested boosts —
// rather than tracking a full priority ceiling per spec.md §9's resolved
// Open Question.
type Mutex struct {
	owner   *kernel.TCB
	depth   int
	waiters list.List[kernel.TCB]
}

// NewMutex constructs an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock acquires the mutex, boosting the current owner's priority first
// if the mutex is contended.
func (m *Mutex) Lock() {
	k := kernel.Current()
	k.AssertIRQEnabled()
	release := k.IRQGuard()
	cur := k.CurrentRaw()

	if m.owner == nil {
		m.owner = cur
		m.depth = 1
		release()
		kernel.Checkpoint()
		return
	}
	if m.owner == cur {
		m.depth++
		release()
		return
	}

	m.owner.StorePri(cur.Priority())
	k.BlockOnRaw(cur, &m.waiters)
	release()
	k.ParkCurrent(cur)
	// Woken by Unlock's direct hand-off: we are already the owner.
}

// Unlock releases one level of recursion. On the last level it restores
// the caller's pre-boost priority (if it had been boosted) and, if a
// task is waiting, hands ownership to it directly rather than dropping
// the mutex to "unowned" and letting whoever gets scheduled next race
// for it — the window that direct ownership transfer exists to close.
func (m *Mutex) Unlock() {
	k := kernel.Current()
	release := k.IRQGuard()
	cur := k.CurrentRaw()
	kernel.Assert(m.owner == cur, kernel.InvariantViolation, "Mutex.Unlock called by non-owner")

	m.depth--
	if m.depth > 0 {
		release()
		return
	}

	m.owner.RestorePri()
	next := k.WakeOneRaw(&m.waiters)
	if next == nil {
		m.owner = nil
		release()
		kernel.Checkpoint()
		return
	}

	m.owner = next
	m.depth = 1
	toWake := k.ReadyRaw(next)
	release()

	if toWake != nil {
		k.Wake(toWake)
		return
	}
	k.MaybePreempt(cur)
}

// Owner returns the TCB currently holding the mutex, or nil if it is
// free. Diagnostic only.
func (m *Mutex) Owner() *kernel.TCB {
	k := kernel.Current()
	defer k.IRQGuard()()
	return m.owner
}
