// Package arch defines the narrow contract MOS's kernel core expects from
// the architecture port: bootstrapping the first task, requesting and
// servicing a context switch, and the interrupt primitives the core's IRQ
// guard is built on. Nothing in this package knows about ARM registers or
// exception frames — that lives in the concrete Port implementations
// (arch/sim for host/test builds, arch/cortexm for on-device builds),
// exactly as spec.md §1 and §6.1 describe it: an external collaborator
// named only by its interface. The context-switch handler itself (the one
// piece of real Cortex-M assembly, see original_source/arch/cortex_m4.hpp)
// is out of scope; Port is the seam the kernel core calls through instead.
package arch

// Port is implemented once per target and handed to kernel.New. The kernel
// core never reaches for global assembly symbols directly except through
// this interface — the one exception, forced by how a real context-switch
// ISR has to locate its data without a receiver to call through, is
// documented on kernel.Current in package kernel.
type Port interface {
	// IRQDisable disables interrupts and returns the prior enabled state,
	// so a nested guard can restore exactly what it found.
	IRQDisable() (wasEnabled bool)

	// IRQEnable restores interrupts to the state IRQDisable reported.
	IRQEnable(wasEnabled bool)

	// IRQEnabled reports whether interrupts are currently enabled.
	IRQEnabled() bool

	// RequestContextSwitch arms a pending switch. On real hardware this
	// sets PendSV; the handler runs once interrupts are next enabled and
	// calls back into the scheduler's NextTCB chooser to decide who runs.
	RequestContextSwitch()

	// StartFirstTask transfers control to whichever TCB the kernel has
	// already chosen as current, and never returns.
	StartFirstTask()

	// NOP is a one-cycle no-op, used by busy-wait loops that want to
	// yield silicon without yielding the scheduler.
	NOP()

	// WFI waits for the next interrupt (wait-for-interrupt / idle).
	WFI()

	// Reboot resets the target.
	Reboot()
}
