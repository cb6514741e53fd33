package kernel

import "fmt"

// ErrorKind names one of the error categories spec.md §7 enumerates.
// The kernel core never tries to recover from them locally. Most are
// raised through Assert, which halts (panics) and lets a host harness
// recover() and inspect Kind in tests; CreateTask and CreateTaskDynamic
// instead return a *KernelError for CapacityExceeded, OOM and a
// duplicate task name.
type ErrorKind int

const (
	// CapacityExceeded: MaxTaskNum / PoolSize / async capacity reached.
	CapacityExceeded ErrorKind = iota
	// InvariantViolation: e.g. release by non-holder, non-recursive lock
	// re-entered, a blocking API called with interrupts disabled.
	InvariantViolation
	// Oversize: a FixedFn or coroutine frame exceeds its configured
	// capacity.
	Oversize
	// OOM: the page allocator returned no page.
	OOM
	// UnknownName: Task.Find found nothing (the shell boundary surfaces
	// this; the core itself never treats a find-miss as fatal).
	UnknownName
)

func (k ErrorKind) String() string {
	switch k {
	case CapacityExceeded:
		return "capacity exceeded"
	case InvariantViolation:
		return "invariant violation"
	case Oversize:
		return "oversize"
	case OOM:
		return "out of memory"
	case UnknownName:
		return "unknown name"
	default:
		return "unknown kernel error"
	}
}

// KernelError is the value Assert panics with.
type KernelError struct {
	Kind ErrorKind
	Msg  string
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("mos: %s: %s", e.Kind, e.Msg)
}

// Assert panics with a *KernelError of the given kind if cond is false.
// This is the Go shape of MOS_ASSERT in original_source/config.h's
// MOS_CONF_ASSERT path. Task creation failures are the exception: they
// come back from CreateTask as a returned *KernelError (see ErrorKind).
func Assert(cond bool, kind ErrorKind, msg string) {
	if !cond {
		panic(&KernelError{Kind: kind, Msg: msg})
	}
}
