package kernel

import "testing"

func TestPagePoolAllocAndRelease(t *testing.T) {
	pp := newPagePool(2, 4)

	a := pp.alloc()
	if a == nil {
		t.Fatal("expected a page from a fresh pool")
	}
	a.words[0] = 0xdeadbeef // pretend it's in use

	b := pp.alloc()
	if b == nil {
		t.Fatal("expected a second distinct page")
	}
	if a == b {
		t.Fatal("alloc returned the same page twice while both are in use")
	}

	if pp.alloc() != nil {
		t.Fatal("pool of size 2 should be exhausted after two allocations")
	}

	a.release()
	recycled := pp.alloc()
	if recycled != a {
		t.Fatalf("expected the released page to be recycled, got a different page")
	}
}

func TestPageUnusedRecognizesZeroAndSelfTag(t *testing.T) {
	pp := newPagePool(1, 4)
	p := &pp.pages[0]
	if !p.unused() {
		t.Fatal("a never-used page should report unused")
	}
	p.words[0] = 7
	if p.unused() {
		t.Fatal("a page with a non-zero, non-tag head word should not report unused")
	}
	p.release()
	if !p.unused() {
		t.Fatal("a released page should report unused again")
	}
	if p.words[0] != p.selfTag {
		t.Fatalf("release should write the page's own tag into word 0, got %#x", p.words[0])
	}
}

func TestAllocDynamicBypassesPool(t *testing.T) {
	p := allocDynamic(8)
	if p.Policy() != PageDynamic {
		t.Fatalf("expected PageDynamic, got %v", p.Policy())
	}
	if len(p.Words()) != 8 {
		t.Fatalf("expected 8 words, got %d", len(p.Words()))
	}
}
