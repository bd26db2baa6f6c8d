// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ringlist provides the unused/que list pair eventtable.Queue
// needs: a fixed-cardinality pool of values that moves between a free
// list and an in-flight list without ever allocating in steady state.
// It is the Go equivalent of the std::list<epicsTime> splice dance in
// eventTable.cpp: entries move between unused and que, but the pair's
// combined cardinality never changes.
//
// A plain container/list.List cannot do this: moving a value between
// two distinct *list.List instances always allocates a fresh Element
// (only same-list MoveToFront/MoveToBack/MoveBefore/MoveAfter preserve
// node identity). So List is its own small intrusive doubly-linked
// list: a Node popped from one List is relinked into another by
// pointer surgery alone, with its Value overwritten in place by the
// caller, matching std::list::splice's node-identity-preserving move.
package ringlist // import "github.com/go-lpc/evrtime/internal/ringlist"

// Node is one pooled slot. Its Value is overwritten in place by
// callers moving it between lists; the Node itself is only ever
// allocated once, by Grow.
type Node struct {
	Value any

	prev, next *Node
}

// List is an intrusive doubly-linked list of *Node. The zero value is
// an empty list.
type List struct {
	head, tail *Node
	len        int
}

// Len returns the number of elements.
func (r *List) Len() int { return r.len }

// Front returns the value at the front of the list and true, or the
// zero value and false if the list is empty.
func (r *List) Front() (any, bool) {
	if r.head == nil {
		return nil, false
	}
	return r.head.Value, true
}

// PopFront detaches and returns the front node, or nil if the list is
// empty. The returned node's Value is left untouched; its prev/next
// are cleared so it is safe to hand to PushBack on any List.
func (r *List) PopFront() *Node {
	n := r.head
	if n == nil {
		return nil
	}
	r.head = n.next
	if r.head != nil {
		r.head.prev = nil
	} else {
		r.tail = nil
	}
	n.prev, n.next = nil, nil
	r.len--
	return n
}

// PushBack relinks an already-detached node onto the back of r. No
// allocation occurs; n must not currently belong to any list.
func (r *List) PushBack(n *Node) {
	n.prev, n.next = r.tail, nil
	if r.tail != nil {
		r.tail.next = n
	} else {
		r.head = n
	}
	r.tail = n
	r.len++
}

// MoveAllToBack splices the whole of src onto the back of r, in order,
// leaving src empty. Pure pointer relinking; no allocation.
func (r *List) MoveAllToBack(src *List) {
	if src.len == 0 {
		return
	}
	if r.tail != nil {
		r.tail.next = src.head
		src.head.prev = r.tail
	} else {
		r.head = src.head
	}
	r.tail = src.tail
	r.len += src.len

	src.head, src.tail, src.len = nil, nil, 0
}

// MovePrefixToBack splices the first n nodes of src (or all of them,
// if src has fewer than n) onto the back of r, in order, and returns
// how many were moved. Pure pointer relinking; no allocation.
func (r *List) MovePrefixToBack(src *List, n int) int {
	if n <= 0 || src.len == 0 {
		return 0
	}
	if n >= src.len {
		moved := src.len
		r.MoveAllToBack(src)
		return moved
	}

	start := src.head
	end := start
	for i := 1; i < n; i++ {
		end = end.next
	}

	src.head = end.next
	src.head.prev = nil
	src.len -= n

	end.next = nil
	start.prev = r.tail
	if r.tail != nil {
		r.tail.next = start
	} else {
		r.head = start
	}
	r.tail = end
	r.len += n

	return n
}

// Walk calls fn for every element from front to back, in order,
// stopping early if fn returns false.
func (r *List) Walk(fn func(v any) bool) {
	for n := r.head; n != nil; n = n.next {
		if !fn(n.Value) {
			return
		}
	}
}

// Grow appends n newly allocated nodes holding values built by zero.
// This is the only place a Node is ever allocated: callers size the
// pool once (InitOutBuf), after which nodes only move between lists.
func (r *List) Grow(n int, zero func() any) {
	for i := 0; i < n; i++ {
		r.PushBack(&Node{Value: zero()})
	}
}
