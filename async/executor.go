// Package async implements MOS's single-task cooperative executor: a
// ping-pong buffered ready queue, a wake-tick min-heap for delayed work,
// and the coroutine-style glue (Future/Promise/Await) that
// turns callback-based APIs into suspension points. Everything here runs
// on top of exactly one kernel task — "async/exec" — the same way
// spec.md describes a single-threaded executor layered on one TCB rather
// than a pool of worker goroutines.
package async

import (
	"container/heap"
	"sync"

	"mos/kernel"
)

// Config mirrors the ASYNC_* compile-time knobs spec.md §6.3 lists.
type Config struct {
	// TaskMax bounds the size of each ping-pong buffer and of the
	// sleeper heap. Default 256.
	TaskMax int
	// UsePool, when true, routes the small job wrapper values Post and
	// Delay create through a sync.Pool (see jobPool) — the idiomatic Go
	// answer to spec.md §4.9's optional fixed-block coroutine-frame pool
	// (see DESIGN.md for why a literal frame pool has no analog here).
	UsePool bool
}

// DefaultConfig returns spec.md §6.3's ASYNC_TASK_MAX default, pooling
// left off.
func DefaultConfig() Config {
	return Config{TaskMax: 256}
}

// job is one posted continuation. Wrapping it in a named type (rather
// than a bare func() element) gives Executor a pool-recyclable value and
// a place to hang the FixedFn capacity story without changing the public
// Post/Delay signatures.
type job struct {
	fn FixedFn
}

// sleeperEntry is one (wake_tick, job) pair in the min-heap, spec.md's
// "Sleeping structure (async)".
type sleeperEntry struct {
	wake uint32
	j    job
}

type sleeperHeap []sleeperEntry

func (h sleeperHeap) Len() int { return len(h) }

// Less uses signed-difference comparison so a single wraparound between
// two wake ticks never makes an overdue entry look like it is still in
// the future — the same rule kernel.tickDue applies to Task.Delay.
func (h sleeperHeap) Less(i, j int) bool { return int32(h[i].wake-h[j].wake) < 0 }
func (h sleeperHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *sleeperHeap) Push(x any) { *h = append(*h, x.(sleeperEntry)) }
func (h *sleeperHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Executor is a ping-pong buffered ready queue plus a sleeper heap. It
// has no concurrency primitive of its own beyond a plain mutex: the
// buffers and heap are touched from whichever kernel task happens to be
// running (the executor task draining, any other task or an ISR-style
// callback posting), never from more than one goroutine truly
// concurrently thanks to the kernel's own single-running-task invariant,
// but a mutex keeps that honest without coupling Executor to
// kernel.IRQGuard, which is reserved for scheduler/TCB state.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	bufs     [2][]job
	writeIdx int
	sleepers sleeperHeap

	pool *jobPool
}

// NewExecutor constructs an Executor. It does not start running; see
// StartTask to wire it into a dedicated kernel task.
func NewExecutor(cfg Config) *Executor {
	if cfg.TaskMax <= 0 {
		cfg.TaskMax = DefaultConfig().TaskMax
	}
	ex := &Executor{cfg: cfg}
	ex.bufs[0] = make([]job, 0, cfg.TaskMax)
	ex.bufs[1] = make([]job, 0, cfg.TaskMax)
	if cfg.UsePool {
		ex.pool = newJobPool()
	}
	return ex
}

func (ex *Executor) lock()   { ex.mu.Lock() }
func (ex *Executor) unlock() { ex.mu.Unlock() }

// Post enqueues fn on the buffer currently accepting writes. If Post is
// called by code already inside a posted continuation, fn lands in the
// *other* buffer and will not run until the *next* Poll — spec.md §5's
// "a coroutine that posts more work sees that work run on the next
// poll, not the current one."
func (ex *Executor) Post(fn func()) {
	ex.lock()
	defer ex.unlock()
	ex.postRaw(fn)
}

func (ex *Executor) postRaw(fn func()) {
	buf := ex.bufs[ex.writeIdx]
	kernel.Assert(len(buf) < ex.cfg.TaskMax, kernel.CapacityExceeded, "async ready buffer full")
	ex.bufs[ex.writeIdx] = append(buf, ex.newJob(fn))
}

// Yield is an alias for Post (spec.md §4.9's yield(fn)).
func (ex *Executor) Yield(fn func()) { ex.Post(fn) }

// Delay schedules fn to run no earlier than ticks ticks from now,
// spec.md §4.9's delay_ms (expressed in kernel ticks rather than
// milliseconds, since mos/kernel has no wall-clock notion of its own).
func (ex *Executor) Delay(ticks uint32, fn func()) {
	k := kernel.Current()
	now := k.Ticks()

	ex.lock()
	defer ex.unlock()
	kernel.Assert(len(ex.sleepers) < ex.cfg.TaskMax, kernel.CapacityExceeded, "async sleeper heap full")
	heap.Push(&ex.sleepers, sleeperEntry{wake: now + ticks, j: ex.newJob(fn)})
}

// Poll is the executor task's main-loop body: drain due sleepers into
// the write buffer, then swap and drain whichever buffer was being
// written to. Returns false when there was nothing to do, the signal
// StartTask's loop uses to fall back to Task.Yield.
func (ex *Executor) Poll() bool {
	now := kernel.Current().Ticks()

	ex.lock()
	ex.drainDueSleepersRaw(now)
	if len(ex.bufs[ex.writeIdx]) == 0 {
		ex.unlock()
		return false
	}
	readIdx := ex.writeIdx
	ex.writeIdx ^= 1
	toRun := ex.bufs[readIdx]
	ex.bufs[readIdx] = ex.bufs[readIdx][:0]
	ex.unlock()

	for _, j := range toRun {
		j.fn.Call()
		ex.releaseJob(j)
	}
	return true
}

// drainDueSleepersRaw moves every due sleeper into the write buffer.
// Caller must hold ex.mu.
func (ex *Executor) drainDueSleepersRaw(now uint32) {
	for len(ex.sleepers) > 0 {
		top := ex.sleepers[0]
		if int32(now-top.wake) < 0 {
			return
		}
		heap.Pop(&ex.sleepers)
		kernel.Assert(len(ex.bufs[ex.writeIdx]) < ex.cfg.TaskMax, kernel.CapacityExceeded, "async ready buffer full")
		ex.bufs[ex.writeIdx] = append(ex.bufs[ex.writeIdx], top.j)
	}
}

// StartTask creates the dedicated "async/exec" kernel task spec.md §4.9
// describes: `while(true){ if(!poll()) task_yield(); }`. pri should be
// the lowest-but-nonzero priority in the application's scheme, leaving
// PriMin free for anything that genuinely wants to run last of all.
func (ex *Executor) StartTask(k *kernel.Kernel, pri kernel.Priority) (*kernel.TCB, error) {
	return k.CreateTask(func(any) {
		for {
			if !ex.Poll() {
				k.Yield()
			}
		}
	}, nil, pri, "async/exec")
}
