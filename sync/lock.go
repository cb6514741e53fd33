package sync

import "mos/kernel"

// TryDown attempts Down without blocking, reporting whether it
// succeeded.
func (s *Sema) TryDown() bool {
	k := kernel.Current()
	release := k.IRQGuard()
	if s.count > 0 {
		s.count--
		release()
		kernel.Checkpoint()
		return true
	}
	release()
	return false
}

// Lock is a non-recursive binary lock built directly on a Sema(1)
// (spec.md §4.4). Unlike Mutex it carries no priority-inheritance
// logic — owner is recorded only for the re-entry and non-owner-release
// assertions, and
// is deliberately assigned after the underlying Down() call returns
// rather than before, per spec.md §9: assigning it first would make a
// task that is still blocked in Down briefly look like the owner to
// anyone inspecting Lock concurrently.
type Lock struct {
	sem   Sema
	owner *kernel.TCB
}

// NewLock constructs an unlocked Lock.
func NewLock() *Lock {
	return &Lock{sem: Sema{count: 1}}
}

// Acquire blocks until the lock is free, then takes it. Lock is
// non-recursive: a task that already owns it calling Acquire again
// would otherwise block forever on its own semaphore, so this is
// asserted instead (spec.md §7's "non-recursive lock re-entered"
// InvariantViolation example; §8 scenario 5's `L.acquire(); L.acquire();`).
func (l *Lock) Acquire() {
	cur := kernel.Current().CurrentTask()
	kernel.Assert(l.owner != cur, kernel.InvariantViolation, "Lock.Acquire called re-entrantly by its own owner")
	l.sem.Down()
	l.owner = cur
}

// TryAcquire attempts Acquire without blocking.
func (l *Lock) TryAcquire() bool {
	if !l.sem.TryDown() {
		return false
	}
	l.owner = kernel.Current().CurrentTask()
	return true
}

// Release hands the lock back. Panics via kernel.Assert if called by
// anything other than the current owner.
func (l *Lock) Release() {
	kernel.Assert(l.owner == kernel.Current().CurrentTask(), kernel.InvariantViolation, "Lock.Release called by non-owner")
	l.owner = nil
	l.sem.Up()
}
