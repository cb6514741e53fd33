package sync

import (
	"mos/internal/list"
	"mos/kernel"
)

// Barrier is a reusable generation barrier (spec.md §4.4): total tasks
// must call Wait before any of them proceeds past it, after which the
// barrier resets for its next generation.
type Barrier struct {
	total   int
	cnt     int
	gen     int
	waiters list.List[kernel.TCB]
}

// NewBarrier constructs a Barrier that releases once total tasks have
// called Wait.
func NewBarrier(total int) *Barrier {
	kernel.Assert(total > 0, kernel.InvariantViolation, "Barrier requires a positive party count")
	return &Barrier{total: total}
}

// Wait blocks until total tasks (across every living generation) have
// called it, then releases them all together and starts the next
// generation.
func (b *Barrier) Wait() {
	k := kernel.Current()
	k.AssertIRQEnabled()
	release := k.IRQGuard()
	b.cnt++
	if b.cnt < b.total {
		cur := k.CurrentRaw()
		k.BlockOnRaw(cur, &b.waiters)
		release()
		k.ParkCurrent(cur)
		return
	}

	b.cnt = 0
	b.gen++
	var woken []*kernel.TCB
	for {
		t := k.WakeOneRaw(&b.waiters)
		if t == nil {
			break
		}
		woken = append(woken, t)
	}
	var toDispatch []*kernel.TCB
	for _, t := range woken {
		if w := k.ReadyRaw(t); w != nil {
			toDispatch = append(toDispatch, w)
		}
	}
	cur := k.CurrentRaw()
	release()

	for _, w := range toDispatch {
		k.Wake(w)
	}
	if cur != nil {
		k.MaybePreempt(cur)
	}
}

// Generation returns how many times the barrier has released its
// parties.
func (b *Barrier) Generation() int {
	k := kernel.Current()
	defer k.IRQGuard()()
	return b.gen
}
