// Package sync implements MOS's blocking synchronization primitives —
// a counting semaphore, a binary lock, a priority-inheriting recursive
// mutex, a condition variable, and a generation barrier — on top of the
// scheduler hooks mos/kernel exposes for exactly this purpose.
package sync

import (
	"mos/internal/list"
	"mos/kernel"
)

// Sema is a counting semaphore with a FIFO wait queue (spec.md §4.4). A
// positive count means that many Downs can proceed before the next one
// blocks; a negative count means its absolute value is the number of
// tasks currently queued on waiters (spec.md §8's "cnt < 0 iff
// |waiting_list| = -cnt" property).
type Sema struct {
	count   int
	waiters list.List[kernel.TCB]
}

// NewSema constructs a Sema with the given initial count.
func NewSema(initial int) *Sema {
	return &Sema{count: initial}
}

// Down decrements the count unconditionally, blocking the calling task
// if that takes the count negative (spec.md §4.4: "cnt -= 1; if cnt < 0
// block caller... Asserts IRQs were enabled on entry").
func (s *Sema) Down() {
	k := kernel.Current()
	k.AssertIRQEnabled()
	release := k.IRQGuard()
	s.count--
	if s.count >= 0 {
		release()
		kernel.Checkpoint()
		return
	}

	cur := k.CurrentRaw()
	k.BlockOnRaw(cur, &s.waiters)
	release()
	k.ParkCurrent(cur)
}

// Up increments the count unconditionally and, if the count was
// negative before the increment (there was a waiter), wakes the
// longest-waiting task — spec.md §4.4: "if cnt < 0 resume the first
// waiter; cnt += 1".
func (s *Sema) Up() {
	k := kernel.Current()
	release := k.IRQGuard()
	hadWaiter := s.count < 0
	s.count++
	if !hadWaiter {
		release()
		kernel.Checkpoint()
		return
	}

	woken := k.WakeOneRaw(&s.waiters)
	toWake := k.ReadyRaw(woken)
	cur := k.CurrentRaw()
	release()

	if toWake != nil {
		k.Wake(toWake)
		return
	}
	if cur != nil {
		k.MaybePreempt(cur)
	}
}

// Count returns the current signed count. Racy against concurrent
// Up/Down by design — it's a diagnostic, not something to branch
// scheduling logic on.
func (s *Sema) Count() int {
	k := kernel.Current()
	defer k.IRQGuard()()
	return s.count
}
