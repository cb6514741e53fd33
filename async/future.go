package async

import "sync"

// Future and Promise are MOS's idiomatic-Go stand-in for spec.md §4.9's
// stackless coroutine handle: a resumable frame with a continuation
// slot. Go has no compiler-supported coroutine (no co_await, no
// generator frame the runtime suspends and resumes), so rather than
// fake one with a goroutine-per-coroutine scheme — which would quietly
// reintroduce the N-goroutines-as-N-tasks model the single-task executor
// is specifically meant to avoid — a coroutine here is just a callback
// chain: a Future holds either a resolved value or the list of
// continuations waiting on one, and every continuation runs as a
// Post'd job on the same Executor the awaiting code is already running
// on. "Awaiting" a Future is registering a continuation and returning;
// there is no stack to suspend because there never was one to begin
// with, only the Executor's own job buffers playing the role of the
// original's continuation slot.
type Future[T any] struct {
	ex *Executor

	mu    sync.Mutex
	done  bool
	value T
	conts []func(T)
}

// Promise is the write side of a Future: exactly one of Resolve may
// meaningfully take effect per Promise, mirroring a coroutine's single
// final-suspend transfer to its continuation.
type Promise[T any] struct {
	f *Future[T]
}

// NewFuture creates a Future/Promise pair bound to ex. Every
// continuation OnComplete registers, and every call Resolve triggers,
// runs as a job on ex — so code on one Executor never has its
// continuations silently run on another.
func NewFuture[T any](ex *Executor) (*Future[T], *Promise[T]) {
	f := &Future[T]{ex: ex}
	return f, &Promise[T]{f: f}
}

// Resolve completes the future with v, running every already-registered
// continuation as a job on the owning Executor. A Future may only be
// resolved once; subsequent calls are no-ops, matching spec.md §5's
// "coroutine's final suspend transfers control at most once."
func (p *Promise[T]) Resolve(v T) {
	f := p.f
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.value = v
	conts := f.conts
	f.conts = nil
	f.mu.Unlock()

	for _, c := range conts {
		c := c
		f.ex.Post(func() { c(v) })
	}
}

// OnComplete registers cb to run (as a job on the Future's Executor)
// once the Future resolves — immediately, on the next poll, if it
// already has. This is the whole of Go's "await": there is no blocking
// call here, cb is the continuation the original language would resume
// via co_await.
func (f *Future[T]) OnComplete(cb func(T)) {
	f.mu.Lock()
	if f.done {
		v := f.value
		f.mu.Unlock()
		f.ex.Post(func() { cb(v) })
		return
	}
	f.conts = append(f.conts, cb)
	f.mu.Unlock()
}

// Await registers register to be called with a resolve function and
// returns the Future that resolve completes — the Go shape of spec.md
// §4.9's CallbackAwaiter<T>: "converts any callback-taking function
// f(cb) into a suspension." Whatever callback-based API register wraps
// (a hardware completion interrupt, an external event source) calls the
// resolve function it's handed exactly once, from wherever it likes;
// Resolve itself is safe to call from any task.
func Await[T any](ex *Executor, register func(resolve func(T))) *Future[T] {
	f, p := NewFuture[T](ex)
	register(func(v T) { p.Resolve(v) })
	return f
}

// Delay returns a Future that resolves once ticks ticks have elapsed —
// the Go shape of spec.md §4.9's `delay(ticks)`, built directly on
// Executor.Delay rather than reimplementing the sleeper heap.
func Delay(ex *Executor, ticks uint32) *Future[struct{}] {
	f, p := NewFuture[struct{}](ex)
	ex.Delay(ticks, func() { p.Resolve(struct{}{}) })
	return f
}

// Then chains a transformation onto a Future, returning a new Future
// that resolves with fn's result once f resolves — the composition
// operator that makes the callback-chain model usable for more than one
// step, since spec.md's own coroutine glue gets this for free from the
// language's co_await chaining.
func Then[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	out, p := NewFuture[U](f.ex)
	f.OnComplete(func(v T) { p.Resolve(fn(v)) })
	return out
}
