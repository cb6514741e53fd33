package kernel

// PagePolicy selects where a stack page's backing memory comes from.
type PagePolicy int

const (
	// PagePool draws from the kernel's preallocated, recyclable pool.
	PagePool PagePolicy = iota
	// PageDynamic allocates a fresh page from general storage.
	PageDynamic
)

// Page is a contiguous 32-bit-aligned region used as a task's stack.
// Pool pages live in a static array; a pool page is "unused" iff its
// first word is either zero (never used) or equal to its own selfTag
// (freed — Task.Terminate writes selfTag back into word 0 on release,
// exactly as spec.md §4.1 requires: "termination must write the base
// into the head word before freeing").
type Page struct {
	words   []uint32
	policy  PagePolicy
	selfTag uint32 // stand-in for "the page's own base address" (§3/§4.1)
	index   int    // position in the pool, -1 for dynamic pages
}

// Words returns the page's backing storage.
func (p *Page) Words() []uint32 { return p.words }

// Policy reports whether the page came from the pool or dynamic storage.
func (p *Page) Policy() PagePolicy { return p.policy }

func (p *Page) unused() bool {
	return p.words[0] == 0 || p.words[0] == p.selfTag
}

// release marks the page recycled. Called by Task.Terminate.
func (p *Page) release() {
	p.words[0] = p.selfTag
}

// pagePool is the process-wide (per-Kernel) stack-page allocator
// (spec.md §4.1). Every operation runs under the kernel's IRQ guard: a
// pool scan that raced with a task terminating mid-scan could hand out a
// page that looks free but is about to be reused by its own owner.
type pagePool struct {
	pages []Page
}

func newPagePool(size, pageWords int) *pagePool {
	pp := &pagePool{pages: make([]Page, size)}
	for i := range pp.pages {
		pp.pages[i] = Page{
			words:   make([]uint32, pageWords),
			policy:  PagePool,
			selfTag: uint32(i) + 1,
			index:   i,
		}
	}
	return pp
}

// pageInUse is the head word alloc writes into a page it hands out: it is
// neither zero nor any pool page's selfTag, so the page reads as in use
// until release writes its selfTag back.
const pageInUse = ^uint32(0)

// alloc returns a recycled or never-used pool page, or nil if the pool is
// exhausted, and marks the returned page's head word as in use. Callers
// must already hold the kernel's IRQ guard.
func (pp *pagePool) alloc() *Page {
	for i := range pp.pages {
		if pp.pages[i].unused() {
			pp.pages[i].words[0] = pageInUse
			return &pp.pages[i]
		}
	}
	return nil
}

// allocDynamic returns a freshly allocated page of sizeWords words,
// bypassing the pool entirely.
func allocDynamic(sizeWords int) *Page {
	return &Page{
		words:   make([]uint32, sizeWords),
		policy:  PageDynamic,
		selfTag: 0,
		index:   -1,
	}
}
