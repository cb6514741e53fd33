package kernel

// Priority is a task's scheduling priority. Numerically smaller is higher
// priority; the closed range is [PriMax, PriMin].
type Priority uint8

const (
	// PriMax is the highest possible priority (spec.md §6.3: PRI_MAX).
	PriMax Priority = 0
	// PriMin is the lowest possible priority (spec.md §6.3: PRI_MIN).
	PriMin Priority = 127

	numPriorityBands = int(PriMin) + 1
)

// Higher reports whether a is strictly higher priority than b.
func Higher(a, b Priority) bool { return a < b }

// Policy selects the scheduler's task-selection strategy (spec.md §4.3).
type Policy int

const (
	// PreemptPri always runs the highest-priority ready TCB, round-robining
	// within a priority band once its time slice is exhausted.
	PreemptPri Policy = iota
	// RoundRobin ignores priority entirely and rotates the whole ready set
	// by one slot every TimeSlice ticks.
	RoundRobin
)

// Config is the kernel's compile-time tunable surface (spec.md §6.3),
// expressed as a constructor argument instead of preprocessor defines —
// the struct-of-tunables pattern the teacher uses for hal.HeadlessConfig
// and app.Config.
type Config struct {
	// MaxTaskNum bounds the number of live TCBs. Default 16.
	MaxTaskNum int
	// PoolSize is the number of preallocated stack pages. Default 16.
	PoolSize int
	// PageWords is a stack page's size in 32-bit words. Default 256
	// words (1024 bytes), matching spec.md's default PAGE_SIZE.
	PageWords int
	// SystemTickHz is the timer ISR frequency. Default 1000.
	SystemTickHz int
	// TimeSlice is the round-robin quantum, in ticks, for a priority
	// band (or, under RoundRobin, for the whole ready set). Default 50.
	TimeSlice int
	// SchedPolicy selects RoundRobin or PreemptPri. Default PreemptPri.
	SchedPolicy Policy
	// UserNameSize is the max task name length before truncation,
	// exclusive of the NUL terminator implied by spec.md §6.3's
	// USER_NAME_SIZE default of 8; MOS keeps the slightly larger 16
	// bytes spec.md §3 specifies for the TCB's own name field.
	UserNameSize int
}

// DefaultConfig returns the defaults spec.md §6.3 lists.
func DefaultConfig() Config {
	return Config{
		MaxTaskNum:   16,
		PoolSize:     16,
		PageWords:    1024 / 4,
		SystemTickHz: 1000,
		TimeSlice:    50,
		SchedPolicy:  PreemptPri,
		UserNameSize: 16,
	}
}
