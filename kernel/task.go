package kernel

import (
	"fmt"
	"sort"

	"mos/internal/list"
)

// CreateTask allocates a TCB and a stack page, links the task into the
// ready queue, and starts its goroutine (parked until the scheduler
// gives it its first turn). Mirrors spec.md §4.2's Task::create: a
// truncated name, a fresh TaskID, and the parent link recorded from
// whichever task is current at creation time.
func (k *Kernel) CreateTask(entry EntryFunc, arg any, pri Priority, name string) (*TCB, error) {
	return k.createTask(entry, arg, pri, name, PagePool, 0)
}

// CreateTaskDynamic is Task::create under spec.md §4.1's DYNAMIC page
// policy: rather than drawing from the fixed-size preallocated pool,
// the task's stack page is a fresh allocation of sizeWords words,
// bypassing the pool (and its OOM failure mode) entirely; the MaxTaskNum
// limit (CAPACITY_EXCEEDED) still applies. Intended for a task whose stack needs don't fit the pool's
// uniform PageWords size, mirroring palloc(DYNAMIC, size_words).
func (k *Kernel) CreateTaskDynamic(entry EntryFunc, arg any, pri Priority, name string, sizeWords int) (*TCB, error) {
	return k.createTask(entry, arg, pri, name, PageDynamic, sizeWords)
}

func (k *Kernel) createTask(entry EntryFunc, arg any, pri Priority, name string, policy PagePolicy, sizeWords int) (*TCB, error) {
	Assert(entry != nil, InvariantViolation, "CreateTask requires a non-nil entry function")
	if len(name) > k.cfg.UserNameSize {
		name = name[:k.cfg.UserNameSize]
	}

	release := k.IRQGuard()
	if len(k.tasks) >= k.cfg.MaxTaskNum {
		release()
		return nil, &KernelError{Kind: CapacityExceeded, Msg: "max task count reached"}
	}
	if _, exists := k.byName[name]; exists {
		release()
		return nil, &KernelError{Kind: InvariantViolation, Msg: "task name already in use: " + name}
	}

	var page *Page
	if policy == PageDynamic {
		page = allocDynamic(sizeWords)
	} else {
		page = k.pages.alloc()
		if page == nil {
			release()
			return nil, &KernelError{Kind: OOM, Msg: "stack page pool exhausted"}
		}
	}

	id := k.nextID
	k.nextID++
	var parent TaskID
	if k.current != nil {
		parent = k.current.id
	}

	t := &TCB{
		id:     id,
		name:   name,
		parent: parent,
		page:   page,
		entry:  entry,
		arg:    arg,
		pri:    pri,
		status: Ready,
		slice:  k.cfg.TimeSlice,
		wake:   make(chan struct{}, 1),
	}
	list.Init(&t.link, t)
	k.tasks[id] = t
	k.byName[name] = t
	toWake := k.readyRaw(t)
	release()

	go k.runTask(t)
	if toWake != nil {
		k.wake(toWake)
	}
	return t, nil
}

// Find looks a task up by name, returning nil if none exists (spec.md
// §4.2's Task::find — a miss is not treated as fatal here; only the
// out-of-scope shell surfaces a failed lookup as a user-facing error).
func (k *Kernel) Find(name string) *TCB {
	defer k.IRQGuard()()
	return k.byName[name]
}

// Yield gives up the remainder of the calling task's turn without
// changing its READY status, letting the scheduler pick whoever is next
// (spec.md §4.2's Task::yield).
func (k *Kernel) Yield() {
	k.AssertIRQEnabled()
	release := k.IRQGuard()
	cur := k.current
	Assert(cur != nil, InvariantViolation, "Yield called with no running task")
	cur.status = Ready
	k.preemptPending = false
	release()

	k.switchFrom(cur)
}

// Delay parks the calling task for the given number of ticks, or yields
// once if ticks is zero. Woken by Tick's sleeping-list sweep.
func (k *Kernel) Delay(ticks uint32) {
	k.AssertIRQEnabled()
	if ticks == 0 {
		k.Yield()
		return
	}

	release := k.IRQGuard()
	cur := k.current
	Assert(cur != nil, InvariantViolation, "Delay called with no running task")
	cur.status = Blocked
	cur.delaying = true
	cur.delayTick = k.ticks + ticks
	k.preemptPending = false
	k.sleeping.PushBack(&cur.link)
	release()

	k.switchFrom(cur)
}

// Block suspends t. If t is the calling task itself, Block switches
// away immediately; if t is some other READY task, Block simply removes
// it from the ready queue. Blocking any other task that is not READY
// (already BLOCKED or TERMINATED) fails an assertion and panics with
// InvariantViolation.
func (k *Kernel) Block(t *TCB) {
	k.AssertIRQEnabled()
	release := k.IRQGuard()
	selfBlock := t == k.current
	Assert(t.status == Ready || selfBlock, InvariantViolation, "Block called on a task that is neither READY nor the caller")
	if !selfBlock {
		k.sched.remove(t)
	}
	t.status = Blocked
	k.blocked.PushBack(&t.link)
	release()

	if selfBlock {
		k.switchFrom(t)
	}
}

// Resume undoes Block, making t READY again and, if t now outranks the
// caller, switching to it immediately (spec.md §8's "a release that
// wakes a higher-priority task switches right away" property, applied
// uniformly to explicit Resume as well as the sync package's wakeups).
func (k *Kernel) Resume(t *TCB) {
	release := k.IRQGuard()
	Assert(t.status == Blocked, InvariantViolation, "Resume called on a task that is not BLOCKED")
	k.blocked.Remove(&t.link)
	t.status = Ready
	toWake := k.readyRaw(t)
	cur := k.current
	release()

	if toWake != nil {
		k.wake(toWake)
		return
	}
	if cur != nil {
		k.maybePreempt(cur)
	}
}

// terminateRaw removes t from whichever list currently holds it, frees
// its stack page, and drops it from the task tables. Caller must hold
// the guard.
func (k *Kernel) terminateRaw(t *TCB) {
	switch {
	case t.status == Blocked && t.delaying:
		k.sleeping.Remove(&t.link)
	case t.status == Blocked:
		k.blocked.Remove(&t.link)
	case t.status == Ready:
		k.sched.remove(t)
	}
	t.status = Terminated
	if t.page != nil {
		t.page.release()
	}
	delete(k.tasks, t.id)
	delete(k.byName, t.name)
}

// terminate is the self-termination path: a task's entry function
// returned, so its goroutine is about to exit for good. Unlike every
// other switch in this package, there is no parking afterwards — the
// goroutine that calls this never gets another turn.
func (k *Kernel) terminate(t *TCB) {
	release := k.IRQGuard()
	k.terminateRaw(t)
	release()
	k.switchAway(t)
}

// Terminate forcibly ends t, which must not be the calling task (let its
// entry function return instead — see terminate). t's goroutine is not
// interrupted, since Go offers no way to abort a goroutine from outside:
// it stays parked, and a task taken off the kernel's ready, blocked or
// sleeping list is never woken again.
func (k *Kernel) Terminate(t *TCB) {
	release := k.IRQGuard()
	if t == k.current {
		release()
		panic(&KernelError{Kind: InvariantViolation, Msg: "Terminate(current) — return from the task's entry function instead"})
	}
	k.terminateRaw(t)
	release()
}

// TaskInfo is a point-in-time snapshot of one TCB, returned by PrintAll.
type TaskInfo struct {
	ID       TaskID
	Name     string
	Parent   TaskID
	Priority Priority
	Status   Status
	Stack    int
}

// PrintAll logs a line per live task (spec.md §4.2's diagnostic dump)
// and returns the same data as a slice, ordered by TaskID, for tests
// that want to assert on it without scraping the logger.
func (k *Kernel) PrintAll() []TaskInfo {
	release := k.IRQGuard()
	infos := make([]TaskInfo, 0, len(k.tasks))
	for _, t := range k.tasks {
		infos = append(infos, TaskInfo{
			ID:       t.id,
			Name:     t.name,
			Parent:   t.parent,
			Priority: t.pri,
			Status:   t.status,
			Stack:    t.stackWatermark(),
		})
	}
	release()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	for _, info := range infos {
		k.log.WriteLine(fmt.Sprintf("%-4d %-16s pri=%-3d %-10s stack=%d",
			info.ID, info.Name, info.Priority, info.Status, info.Stack))
	}
	return infos
}

// Checkpoint lets the calling goroutine yield to a pending tick-driven
// preemption without otherwise changing its own state. mos/sync calls
// this on the non-blocking paths of its primitives, so a CPU-bound run
// of non-blocking sync calls still gives PreemptPri a chance to act.
func Checkpoint() {
	k := Current()
	if k == nil {
		return
	}
	cur := k.CurrentTask()
	if cur == nil {
		return
	}
	k.checkpoint(cur)
}
