package sync

import (
	"mos/internal/list"
	"mos/kernel"
)

// CondVar is a Mesa-style condition variable (spec.md §4.4): Wait
// releases the associated Mutex while parked and reacquires it before
// returning, so pred is always evaluated with the mutex held.
type CondVar struct {
	waiters list.List[kernel.TCB]
}

// NewCondVar constructs an empty CondVar.
func NewCondVar() *CondVar {
	return &CondVar{}
}

// Wait blocks until pred reports true, re-checking it after every
// wakeup (a Notify can have more than one cause, so a woken task must
// never assume its own condition is the one that became true). m must
// be held by the caller on entry and is held again on return.
func (c *CondVar) Wait(m *Mutex, pred func() bool) {
	k := kernel.Current()
	k.AssertIRQEnabled()
	for !pred() {
		release := k.IRQGuard()
		cur := k.CurrentRaw()
		k.BlockOnRaw(cur, &c.waiters)
		release()

		m.Unlock()
		k.ParkCurrent(cur)
		m.Lock()
	}
}

// Notify wakes the longest-waiting task, if any.
func (c *CondVar) Notify() {
	k := kernel.Current()
	release := k.IRQGuard()
	woken := k.WakeOneRaw(&c.waiters)
	if woken == nil {
		release()
		kernel.Checkpoint()
		return
	}
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

// NotifyAll wakes every waiting task.
func (c *CondVar) NotifyAll() {
	for {
		k := kernel.Current()
		release := k.IRQGuard()
		empty := c.waiters.Empty()
		release()
		if empty {
			return
		}
		c.Notify()
	}
}
