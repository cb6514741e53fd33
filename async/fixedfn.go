package async

import "sync"

// FixedFn is MOS's rendition of spec.md §4.9's small-object polymorphic
// callable: a plain value wrapping a single closure; the closure's
// captured environment lives wherever Go puts it. Go has no way to bound a closure's captured
// environment to a byte count at compile time the way the original's
// inline-storage trampoline does (no sizeof, no placement-new), so
// FixedFn does not attempt to replicate the byte-capacity assertion —
// see DESIGN.md for why that half of the spec is inexpressible in Go.
// What it does carry forward is the *shape*: a single named value type
// (zero value is the empty callable, never a nil func that needs a nil
// check at every call site) that the ping-pong buffers and sleeper heap
// store by value.
type FixedFn struct {
	fn func()
}

// NewFixedFn wraps fn. A nil fn is a valid, callable no-op — the "zeroed
// empty state" spec.md calls for.
func NewFixedFn(fn func()) FixedFn { return FixedFn{fn: fn} }

// Call invokes the stored closure, doing nothing if FixedFn is the zero
// value.
func (f FixedFn) Call() {
	if f.fn != nil {
		f.fn()
	}
}

// jobPool is used when Config.UsePool is set: newJob takes a *job from
// the pool and copies its value into the buffers, and releaseJob puts a
// pointer to a cleared copy back after the job has run. Since jobs are
// stored by value, this does not avoid a heap allocation per job. It is
// the idiomatic Go stand-in for spec.md §4.9's optional fixed-block
// coroutine-frame pool, built on the standard library's own answer to
// "pool of short-lived same-shaped objects" rather than a hand-rolled
// free list.
type jobPool struct {
	pool sync.Pool
}

func newJobPool() *jobPool {
	return &jobPool{pool: sync.Pool{New: func() any { return new(job) }}}
}

func (ex *Executor) newJob(fn func()) job {
	if ex.pool == nil {
		return job{fn: NewFixedFn(fn)}
	}
	j := ex.pool.pool.Get().(*job)
	j.fn = NewFixedFn(fn)
	return *j
}

func (ex *Executor) releaseJob(j job) {
	if ex.pool == nil {
		return
	}
	j.fn = FixedFn{}
	ex.pool.pool.Put(&j)
}
