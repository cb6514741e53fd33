//go:build !tinygo

package arch

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SimPort is a host-side stand-in for real Cortex-M silicon. It gives the
// kernel core something to drive in tests and in a host demo without the
// hand-written PendSV/SVC assembly a real port needs (see
// original_source/arch/cortex_m4.hpp) — exactly the role hostHAL plays for
// the teacher's display/GPIO port, just applied to the architecture port
// instead.
//
// Go cannot hand-roll a stack-pointer swap the way the real handler does,
// so SimPort models "one hardware thread" with a real concurrency
// primitive instead of a convention: each task runs on its own goroutine,
// but only the goroutine holding cpuToken is allowed to execute kernel or
// task code at any instant. RequestContextSwitch/StartFirstTask don't move
// registers or wake anyone; they only invoke the handler installed with
// SetContextSwitchHandler. The goroutine hand-off itself is done by the
// kernel, which wakes the chosen task's goroutine directly.
type SimPort struct {
	mu      sync.Mutex
	enabled atomic.Bool

	cpuToken *semaphore.Weighted

	mu2      sync.Mutex
	switchFn func()
	rebootFn func()
}

// NewSim constructs a host-simulated port. Interrupts start enabled.
func NewSim() *SimPort {
	p := &SimPort{cpuToken: semaphore.NewWeighted(1)}
	p.enabled.Store(true)
	return p
}

func (p *SimPort) IRQEnabled() bool { return p.enabled.Load() }

func (p *SimPort) IRQDisable() bool {
	p.mu.Lock()
	return p.enabled.Swap(false)
}

func (p *SimPort) IRQEnable(wasEnabled bool) {
	p.enabled.Store(wasEnabled)
	p.mu.Unlock()
}

// SetContextSwitchHandler installs the callback RequestContextSwitch
// invokes; kernel.New installs one that logs the request. Exported so
// kernel can plug itself in without arch depending on kernel (which
// would be an import cycle).
func (p *SimPort) SetContextSwitchHandler(fn func()) {
	p.mu2.Lock()
	p.switchFn = fn
	p.mu2.Unlock()
}

func (p *SimPort) SetRebootHandler(fn func()) {
	p.mu2.Lock()
	p.rebootFn = fn
	p.mu2.Unlock()
}

func (p *SimPort) RequestContextSwitch() {
	p.mu2.Lock()
	fn := p.switchFn
	p.mu2.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *SimPort) StartFirstTask() {
	p.RequestContextSwitch()
}

func (p *SimPort) NOP() {}

func (p *SimPort) WFI() {}

func (p *SimPort) Reboot() {
	p.mu2.Lock()
	fn := p.rebootFn
	p.mu2.Unlock()
	if fn != nil {
		fn()
		return
	}
	panic("arch: reboot requested, no handler installed")
}

// AcquireCPU blocks until the calling goroutine is the sole holder of the
// simulated single hardware thread. kernel's task runner calls this right
// before running a task body.
func (p *SimPort) AcquireCPU() { _ = p.cpuToken.Acquire(context.Background(), 1) }

// ReleaseCPU gives the token back. Called right before a task's goroutine
// parks waiting for its next turn, and when a finished task's goroutine
// exits.
func (p *SimPort) ReleaseCPU() { p.cpuToken.Release(1) }

// TryAcquireCPU takes the token if it is free right now, without
// blocking, and reports whether it did — used by tests to assert the single-RUNNING-TCB invariant
// holds even while a task is mid-execution on another goroutine.
func (p *SimPort) TryAcquireCPU() bool { return p.cpuToken.TryAcquire(1) }
