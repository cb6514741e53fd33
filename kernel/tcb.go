package kernel

import "mos/internal/list"

// TaskID is a small integer task identifier.
type TaskID uint32

// Status is a TCB's lifecycle state (spec.md §3).
type Status int

const (
	Ready Status = iota
	Running
	Blocked
	Terminated
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Blocked:
		return "BLOCKED"
	case Terminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// EntryFunc is a task body. It receives its single opaque argument and
// runs to completion (or forever) on its own goroutine — see kernel.go
// for how that goroutine is scheduled onto the simulated single hardware
// thread.
type EntryFunc func(arg any)

// TCB is the kernel's per-task control block (spec.md §3). The zero value
// is not usable; TCBs are constructed by (*Kernel).CreateTask and
// CreateTaskDynamic.
type TCB struct {
	// identity
	id     TaskID
	name   string
	parent TaskID

	// execution
	page  *Page
	entry EntryFunc
	arg   any

	// scheduling
	pri       Priority
	storedPri *Priority // non-nil while priority-boosted; first boost only
	status    Status
	slice     int    // time-slice remainder
	delayTick uint32 // delay-until-tick, valid while status == Blocked via Delay
	delaying  bool

	// linkage: exactly one of {a ready band, a blocked list, the
	// sleeping list} at a time (spec.md §3 invariant).
	link list.Node[TCB]

	// goroutine plumbing for the simulated single hardware thread.
	wake    chan struct{}
	started bool
}

// ID returns the task's id.
func (t *TCB) ID() TaskID { return t.id }

// Name returns the task's (possibly truncated) name.
func (t *TCB) Name() string { return t.name }

// Parent returns the id of the task that created this one.
func (t *TCB) Parent() TaskID { return t.parent }

// Priority returns the task's current (possibly boosted) priority.
func (t *TCB) Priority() Priority { return t.pri }

// Status returns the task's lifecycle state.
func (t *TCB) Status() Status { return t.status }

// StackPolicy reports whether the task's stack page came from the pool
// or a dynamic allocation (spec.md §4.1's POOL/DYNAMIC page policy).
func (t *TCB) StackPolicy() PagePolicy { return t.page.Policy() }

// StorePri raises t's priority to pri if pri is numerically smaller
// (higher) than its current priority, remembering the pre-boost priority
// the first time this happens. A later boost to an even higher priority
// while already boosted does not overwrite the remembered original —
// this is what makes nested boosts idempotent with respect to restore
// (spec.md §4.6, §8 round-trip property).
func (t *TCB) StorePri(pri Priority) {
	if !Higher(pri, t.pri) {
		return
	}
	if t.storedPri == nil {
		orig := t.pri
		t.storedPri = &orig
	}
	t.pri = pri
}

// RestorePri undoes the effect of the first StorePri call since the last
// RestorePri, or does nothing if the task was never boosted.
func (t *TCB) RestorePri() {
	if t.storedPri == nil {
		return
	}
	t.pri = *t.storedPri
	t.storedPri = nil
}

// stackWatermark reports how much of the page looks used: the number of
// non-zero words, the same "zero == untouched" convention the page
// allocator uses to recognize a never-used page. This repo runs task bodies as Go closures
// rather than writing real register frames into the page, so the figure
// is illustrative only — print_all reports it as a diagnostic, never as
// something the kernel itself acts on.
func (t *TCB) stackWatermark() int {
	if t.page == nil {
		return 0
	}
	used := 0
	for _, w := range t.page.words {
		if w != 0 {
			used++
		}
	}
	return used
}
