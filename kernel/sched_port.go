package kernel

import "mos/internal/list"

// This file is the surface mos/sync and mos/async build their blocking
// primitives on. Every exported method here requires the caller to
// already hold the guard returned by IRQGuard — same "Raw" convention
// the rest of this package uses — except ParkCurrent, Wake, and
// MaybePreempt, which must be called with the guard already released
// (they do their own locking and, for ParkCurrent, block).

// CurrentRaw returns the running TCB. Caller must hold the guard.
func (k *Kernel) CurrentRaw() *TCB { return k.current }

// TicksRaw returns the tick count. Caller must hold the guard.
func (k *Kernel) TicksRaw() uint32 { return k.ticks }

// BlockOnRaw marks t BLOCKED and links it onto wait, a wait list owned
// by a sync primitive (a Sema's or CondVar's waiter queue, a Mutex's
// blocked-on-owner queue, ...). Caller must hold the guard.
func (k *Kernel) BlockOnRaw(t *TCB, wait *list.List[TCB]) {
	t.status = Blocked
	wait.PushBack(&t.link)
}

// WakeOneRaw pops and returns the front of wait, marking it READY but
// not yet inserting it into the scheduler's ready queue — every caller
// in mos/sync passes the result to ReadyRaw, after any bookkeeping of its
// own (Mutex records the woken task as the new owner first). Returns nil
// if wait is empty. Caller must hold the guard.
func (k *Kernel) WakeOneRaw(wait *list.List[TCB]) *TCB {
	n := wait.PopFront()
	if n == nil {
		return nil
	}
	t := n.Value()
	t.status = Ready
	return t
}

// ReadyRaw inserts t into the ready queue, dispatching it immediately if
// the kernel was idle. Caller must hold the guard; see readyRaw.
func (k *Kernel) ReadyRaw(t *TCB) *TCB { return k.readyRaw(t) }

// Wake signals t's goroutine. Must be called with the guard released.
func (k *Kernel) Wake(t *TCB) { k.wake(t) }

// ParkCurrent switches away from cur, which must already reflect
// whatever status the caller wants to leave it in (Blocked if it just
// queued itself on a wait list, Ready if it is merely yielding
// priority). Must be called with the guard released; it parks until cur
// is scheduled again.
func (k *Kernel) ParkCurrent(cur *TCB) { k.switchFrom(cur) }

// MaybePreempt switches away from cur immediately if a strictly
// higher-priority task is now ready — the synchronous counterpart to
// Tick's cooperative preemption, used after a wakeup might have made a
// higher-priority peer runnable. Must be called with the guard
// released.
func (k *Kernel) MaybePreempt(cur *TCB) { k.maybePreempt(cur) }
