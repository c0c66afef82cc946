// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

// store is the arena owning every node of an array. Parents refer to their
// children by nodeID, so replacing a node's representation rewrites one
// arena slot and leaves every reference intact.
type store struct {
	nodes []artNode
	free  []nodeID
	live  int
	limit int
}

func newStore(limit int) *store {
	return &store{nodes: make([]artNode, 1, 16), limit: limit}
}

func (s *store) at(id nodeID) *artNode {
	return &s.nodes[id]
}

// reserve makes room for n allocations. Once it succeeds the next n calls
// to alloc neither fail nor move the arena, so pointers returned by at stay
// valid for the rest of the mutation.
func (s *store) reserve(n int) error {
	if s.limit > 0 && s.live+n > s.limit {
		return ErrAllocation
	}
	if uint64(len(s.nodes))+uint64(n) > 1<<32 {
		return ErrAllocation
	}
	if len(s.free)+cap(s.nodes)-len(s.nodes) >= n {
		return nil
	}
	grown := make([]artNode, len(s.nodes), 2*cap(s.nodes)+n)
	copy(grown, s.nodes)
	s.nodes = grown
	return nil
}

func (s *store) alloc(n *artNode) nodeID {
	s.live++
	if k := len(s.free); k > 0 {
		id := s.free[k-1]
		s.free = s.free[:k-1]
		s.nodes[id] = *n
		return id
	}
	s.nodes = append(s.nodes, *n)
	return nodeID(len(s.nodes) - 1)
}

func (s *store) allocLeaf(suffix []byte, value Value) nodeID {
	return s.alloc(newLeafNode(suffix, value))
}

// release returns a single arena slot to the free list.
func (s *store) release(id nodeID) {
	s.nodes[id] = artNode{}
	s.free = append(s.free, id)
	s.live--
}

// move makes dst hold the node stored in src and releases src, so that
// references to dst now reach src's node.
func (s *store) move(dst, src nodeID) {
	s.nodes[dst] = s.nodes[src]
	s.release(src)
}

// freeTree releases id and everything below it.
func (s *store) freeTree(id nodeID) {
	if id == nilNode {
		return
	}
	stack := []nodeID{id}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n := s.at(top); !n.isLeaf() {
			n.eachChild(func(_ int, child nodeID) {
				stack = append(stack, child)
			})
		}
		s.release(top)
	}
}

// clone deep copies the arena. Ids are preserved so that a cursor stack
// copied alongside stays valid in the copy.
func (s *store) clone() *store {
	c := &store{
		nodes: make([]artNode, len(s.nodes), cap(s.nodes)),
		free:  append([]nodeID(nil), s.free...),
		live:  s.live,
		limit: s.limit,
	}
	for i := 1; i < len(s.nodes); i++ {
		if s.nodes[i].ref != nil {
			c.nodes[i] = s.nodes[i].copyPayload()
		}
	}
	return c
}
