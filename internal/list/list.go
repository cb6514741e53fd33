// Package list implements an intrusive doubly-linked list: the link node
// lives inside the owning value instead of being allocated by the list, so
// threading a TCB through a ready/blocked/sleeping list costs no allocation
// and is safe to do from an ISR.
package list

// Node is the link embedded in a value that wants to be threaded through a
// List. A Node must belong to at most one List at a time.
type Node[T any] struct {
	prev, next *Node[T]
	list       *List[T]
	value      *T
}

// Value returns the value that owns this node.
func (n *Node[T]) Value() *T { return n.value }

// Linked reports whether the node is currently a member of some list.
func (n *Node[T]) Linked() bool { return n.list != nil }

// List is a FIFO doubly-linked list of Nodes, ordered front-to-back.
type List[T any] struct {
	head, tail *Node[T]
	len        int
}

// Init binds a Node to the value it lives inside of. Must be called once
// before the node is ever pushed onto a List (TCB construction does this).
func Init[T any](n *Node[T], owner *T) {
	n.value = owner
	n.prev, n.next, n.list = nil, nil, nil
}

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.head == nil }

// Len returns the number of elements currently linked.
func (l *List[T]) Len() int { return l.len }

// Front returns the first node, or nil if the list is empty.
func (l *List[T]) Front() *Node[T] { return l.head }

// PushBack appends n to the tail of the list. Panics if n is already
// linked into a list — membership in two lists simultaneously is forbidden.
func (l *List[T]) PushBack(n *Node[T]) {
	if n.list != nil {
		panic("list: node already linked")
	}
	n.list = l
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.len++
}

// PushFront prepends n to the head of the list.
func (l *List[T]) PushFront(n *Node[T]) {
	if n.list != nil {
		panic("list: node already linked")
	}
	n.list = l
	n.next = l.head
	n.prev = nil
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
}

// InsertBefore links n immediately before mark. If mark is nil or does not
// belong to l, n is appended instead. Suited to priority-ordered
// insertion: walk the list for the first node with strictly lower
// priority and insert before it.
func (l *List[T]) InsertBefore(n, mark *Node[T]) {
	if n.list != nil {
		panic("list: node already linked")
	}
	if mark == nil || mark.list != l {
		l.PushBack(n)
		return
	}
	n.list = l
	n.next = mark
	n.prev = mark.prev
	if mark.prev != nil {
		mark.prev.next = n
	} else {
		l.head = n
	}
	mark.prev = n
	l.len++
}

// Remove unlinks n from l. A no-op if n is not currently linked into l
// (including when it belongs to a different list), so callers can
// unconditionally call Remove during teardown without checking
// membership first.
func (l *List[T]) Remove(n *Node[T]) {
	if n.list != l {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.list = nil, nil, nil
	l.len--
}

// PopFront removes and returns the first node, or nil if the list is empty.
func (l *List[T]) PopFront() *Node[T] {
	n := l.head
	if n == nil {
		return nil
	}
	l.Remove(n)
	return n
}

// RotateFront moves the current front node to the back, cycling the list
// by one slot.
func (l *List[T]) RotateFront() {
	n := l.head
	if n == nil || n.next == nil {
		return
	}
	l.Remove(n)
	l.PushBack(n)
}

// Each calls fn for every node from front to back. fn must not mutate the
// list's linkage (use Remove via a separate pass, or PopFront in a loop).
func (l *List[T]) Each(fn func(*Node[T])) {
	for n := l.head; n != nil; n = n.next {
		fn(n)
	}
}
