//go:build tinygo

package arch

// CortexMPort is the on-device counterpart to SimPort. A real build
// replaces the bodies below with the hand-written PendSV/SVC/SysTick
// handlers and PRIMASK primitives documented in
// original_source/arch/cortex_m4.hpp — that assembly is out of scope for
// this repository (spec.md §1), so this file only keeps the Port contract
// satisfiable on a `tinygo build -target=<board>` invocation.
type CortexMPort struct{}

// NewCortexM returns an on-device port. Left unimplemented: wiring PendSV
// to next_tcb and formatting the initial exception frame requires the
// assembly this repository intentionally does not carry.
func NewCortexM() *CortexMPort { return &CortexMPort{} }

func (p *CortexMPort) IRQDisable() bool           { panic("arch: cortexm port not implemented") }
func (p *CortexMPort) IRQEnable(wasEnabled bool)  { panic("arch: cortexm port not implemented") }
func (p *CortexMPort) IRQEnabled() bool           { panic("arch: cortexm port not implemented") }
func (p *CortexMPort) RequestContextSwitch()      { panic("arch: cortexm port not implemented") }
func (p *CortexMPort) StartFirstTask()            { panic("arch: cortexm port not implemented") }
func (p *CortexMPort) NOP()                       {}
func (p *CortexMPort) WFI()                       {}
func (p *CortexMPort) Reboot()                    { panic("arch: cortexm port not implemented") }
