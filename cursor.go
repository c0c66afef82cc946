// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import "bytes"

// frame is one step of the root-to-leaf path. For inner nodes slot is the
// child taken (termSlot or a branch byte); base is the length of the
// reconstructed key before the node's own bytes were appended.
type frame struct {
	id   nodeID
	slot int
	base int
}

// cursor records the path to the most recently visited leaf and the key
// bytes along it, so that stepping to a neighbour does not re-descend
// from the root.
type cursor struct {
	stack []frame
	key   []byte
	state CursorState
}

func (c *cursor) reset(state CursorState) {
	c.stack = c.stack[:0]
	c.key = c.key[:0]
	c.state = state
}

func (c *cursor) clone() cursor {
	return cursor{
		stack: append([]frame(nil), c.stack...),
		key:   append([]byte(nil), c.key...),
		state: c.state,
	}
}

// leafID returns the leaf the cursor is positioned at.
func (c *cursor) leafID() nodeID {
	if c.state != Positioned {
		return nilNode
	}
	return c.stack[len(c.stack)-1].id
}

// pushLeaf positions the cursor at a leaf.
func (c *cursor) pushLeaf(s *store, id nodeID) {
	c.stack = append(c.stack, frame{id: id, base: len(c.key)})
	c.key = append(c.key, s.at(id).leaf().suffix...)
	c.state = Positioned
}

// pushInner enters an inner node and takes slot.
func (c *cursor) pushInner(s *store, id nodeID, slot int) {
	c.stack = append(c.stack, frame{id: id, slot: slot, base: len(c.key)})
	c.key = append(c.key, s.at(id).node().prefix...)
	if slot != termSlot {
		c.key = append(c.key, byte(slot))
	}
}

// retake moves the top frame to another slot of the same node.
func (c *cursor) retake(s *store, slot int) {
	top := &c.stack[len(c.stack)-1]
	top.slot = slot
	c.key = c.key[:top.base+len(s.at(top.id).node().prefix)]
	if slot != termSlot {
		c.key = append(c.key, byte(slot))
	}
}

func (c *cursor) pop() {
	top := c.stack[len(c.stack)-1]
	c.key = c.key[:top.base]
	c.stack = c.stack[:len(c.stack)-1]
}

// descendMin walks to the smallest key below id.
func (c *cursor) descendMin(s *store, id nodeID) {
	for {
		n := s.at(id)
		if n.isLeaf() {
			c.pushLeaf(s, id)
			return
		}
		slot, child, _ := n.nextSlot(beforeFirst)
		c.pushInner(s, id, slot)
		id = child
	}
}

// descendMax walks to the largest key below id.
func (c *cursor) descendMax(s *store, id nodeID) {
	for {
		n := s.at(id)
		if n.isLeaf() {
			c.pushLeaf(s, id)
			return
		}
		slot, child, _ := n.prevSlot(afterLast)
		c.pushInner(s, id, slot)
		id = child
	}
}

// advance moves to the first leaf after the subtree selected by the top
// frame. The stack must hold inner frames only.
func (c *cursor) advance(s *store) bool {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if slot, child, ok := s.at(top.id).nextSlot(top.slot); ok {
			c.retake(s, slot)
			c.descendMin(s, child)
			return true
		}
		c.pop()
	}
	c.state = Boundary
	return false
}

// retreat moves to the last leaf before the subtree selected by the top
// frame. The stack must hold inner frames only.
func (c *cursor) retreat(s *store) bool {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if slot, child, ok := s.at(top.id).prevSlot(top.slot); ok {
			c.retake(s, slot)
			c.descendMax(s, child)
			return true
		}
		c.pop()
	}
	c.state = Boundary
	return false
}

func (c *cursor) first(s *store, root nodeID) bool {
	c.reset(Boundary)
	if root == nilNode {
		return false
	}
	c.descendMin(s, root)
	return true
}

func (c *cursor) last(s *store, root nodeID) bool {
	c.reset(Boundary)
	if root == nilNode {
		return false
	}
	c.descendMax(s, root)
	return true
}

func (c *cursor) next(s *store, root nodeID) bool {
	switch c.state {
	case Empty:
		return c.first(s, root)
	case Boundary:
		return false
	}
	c.pop()
	return c.advance(s)
}

func (c *cursor) prev(s *store, root nodeID) bool {
	switch c.state {
	case Empty:
		return c.last(s, root)
	case Boundary:
		return false
	}
	c.pop()
	return c.retreat(s)
}

// seek positions the cursor at key. On a miss the cursor is left at
// Boundary.
func (c *cursor) seek(s *store, root nodeID, key []byte) bool {
	c.reset(Boundary)
	id, depth := root, 0
	for id != nilNode {
		n := s.at(id)
		if n.isLeaf() {
			if !bytes.Equal(n.leaf().suffix, key[depth:]) {
				break
			}
			c.pushLeaf(s, id)
			return true
		}

		prefix := n.node().prefix
		if !bytes.HasPrefix(key[depth:], prefix) {
			break
		}
		depth += len(prefix)

		slot := termSlot
		if depth < len(key) {
			slot = int(key[depth])
			depth++
		}
		child := n.child(slot)
		if child == nilNode {
			break
		}
		c.pushInner(s, id, slot)
		id = child
	}
	c.reset(Boundary)
	return false
}

// ceil positions the cursor at the smallest key greater than or equal to
// key. If there is none the cursor is left at Boundary.
func (c *cursor) ceil(s *store, root nodeID, key []byte) bool {
	c.reset(Boundary)
	if root == nilNode {
		return false
	}

	id, depth := root, 0
	for {
		n := s.at(id)
		rest := key[depth:]

		if n.isLeaf() {
			if bytes.Compare(n.leaf().suffix, rest) >= 0 {
				c.pushLeaf(s, id)
				return true
			}
			return c.advance(s)
		}

		prefix := n.node().prefix
		m := commonPrefix(prefix, rest)
		if m < len(prefix) {
			if m == len(rest) || rest[m] < prefix[m] {
				// Every key below n is greater.
				c.descendMin(s, id)
				return true
			}
			return c.advance(s)
		}
		depth += m

		if depth == len(key) {
			// The term key equals key, anything else below n is greater.
			c.descendMin(s, id)
			return true
		}

		b := key[depth]
		if child := n.child(int(b)); child != nilNode {
			c.pushInner(s, id, int(b))
			id, depth = child, depth+1
			continue
		}
		if slot, child, ok := n.nextSlot(int(b)); ok {
			c.pushInner(s, id, slot)
			c.descendMin(s, child)
			return true
		}
		return c.advance(s)
	}
}

// copyKey copies the current key into buf.
func (c *cursor) copyKey(buf []byte) (int, error) {
	if c.state != Positioned {
		return 0, ErrNotFound
	}
	if len(buf) < len(c.key) {
		return 0, ErrShortBuffer
	}
	return copy(buf, c.key), nil
}
