// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"math/bits"
	"sort"
	"unsafe"
)

const (
	// Inner nodes of type Node4 hold up to 4 byte children. Together with the
	// term slot they must have at least 2 entries, otherwise they are merged
	// into their remaining child.
	node4Min = 2
	node4Max = 4

	// Inner nodes of type Node16 must have between 5 and 16 children.
	node16Min = 5
	node16Max = 16

	// Inner nodes of type Node48 must have between 17 and 48 children.
	node48Min = 17
	node48Max = 48

	// Inner nodes of type Node256 must have between 49 and 256 children.
	node256Min = 49
	node256Max = 256
)

// termSlot addresses the child holding the key that ends right after the
// node prefix. It orders before every byte slot.
const termSlot = -1

// Sentinels for nextSlot and prevSlot that lie outside every real slot.
const (
	beforeFirst = -2
	afterLast   = 256
)

// nodeID indexes the node store. The zero id is never allocated.
type nodeID uint32

const nilNode nodeID = 0

type node struct {
	size   int
	prefix []byte
	term   nodeID
}

type node4 struct {
	node
	keys     [node4Max]byte
	children [node4Max]nodeID
}

// Node with 16 children
type node16 struct {
	node
	keys     [node16Max]byte
	children [node16Max]nodeID
}

// Node with 48 children, packed in branch byte order.
type node48 struct {
	node
	present  [4]uint64
	children [node48Max]nodeID
}

// Node with 256 children
type node256 struct {
	node
	children [node256Max]nodeID
}

// Leaf holds the key bytes below its parent's branch byte.
type leaf struct {
	suffix []byte
	value  Value
}

// Defines a single artNode and its attributes.
type artNode struct {
	kind Kind
	ref  unsafe.Pointer
}

func newLeafNode(suffix []byte, value Value) *artNode {
	var s []byte
	if len(suffix) > 0 {
		s = make([]byte, len(suffix))
		copy(s, suffix)
	}
	return &artNode{kind: Leaf, ref: unsafe.Pointer(&leaf{suffix: s, value: value})}
}

// The smallest node type stores up to 4 children with their branch bytes in
// a sorted array of the same length.
func newNode4(prefix []byte) *artNode {
	n := &node4{}
	n.prefix = clonePrefix(prefix)
	return &artNode{kind: Node4, ref: unsafe.Pointer(n)}
}

func newNode16() *artNode {
	return &artNode{kind: Node16, ref: unsafe.Pointer(&node16{})}
}

// Node48 does not store branch bytes explicitly. A bit per byte value
// marks presence and the rank of the bit is the index into children.
func newNode48() *artNode {
	return &artNode{kind: Node48, ref: unsafe.Pointer(&node48{})}
}

func newNode256() *artNode {
	return &artNode{kind: Node256, ref: unsafe.Pointer(&node256{})}
}

func (n *artNode) isLeaf() bool { return n.kind == Leaf }

// entries counts the byte children and the term slot.
func (n *artNode) entries() int {
	nd := n.node()
	if nd.term != nilNode {
		return nd.size + 1
	}
	return nd.size
}

func (n *artNode) isFull() bool {
	return n.node().size == n.maxSize()
}

// findChild returns a reference to the child stored under the branch byte,
// or nil if not present.
func (n *artNode) findChild(key byte) *nodeID {
	switch n.kind {
	case Node4:
		node := n.node4()
		for i := 0; i < node.size; i++ {
			if node.keys[i] == key {
				return &node.children[i]
			}
		}
	case Node16:
		node := n.node16()
		i := sort.Search(node.size, func(i int) bool { return node.keys[i] >= key })
		if i < node.size && node.keys[i] == key {
			return &node.children[i]
		}
	case Node48:
		node := n.node48()
		if node.has(key) {
			return &node.children[node.rank(key)]
		}
	case Node256:
		node := n.node256()
		if node.children[key] != nilNode {
			return &node.children[key]
		}
	}
	return nil
}

// child returns the node stored in slot, or nilNode.
func (n *artNode) child(slot int) nodeID {
	if slot == termSlot {
		return n.node().term
	}
	if ref := n.findChild(byte(slot)); ref != nil {
		return *ref
	}
	return nilNode
}

// addChild adds the passed in node under the branch byte. The node grows
// to the next representation if it is full.
func (n *artNode) addChild(key byte, child nodeID) {
	if n.isFull() {
		n.grow()
	}

	switch n.kind {
	case Node4:
		node := n.node4()
		index := 0
		for ; index < node.size; index++ {
			if key < node.keys[index] {
				break
			}
		}
		copy(node.keys[index+1:node.size+1], node.keys[index:node.size])
		copy(node.children[index+1:node.size+1], node.children[index:node.size])
		node.keys[index] = key
		node.children[index] = child
		node.size++

	case Node16:
		node := n.node16()
		index := sort.Search(node.size, func(i int) bool { return key <= node.keys[i] })
		copy(node.keys[index+1:node.size+1], node.keys[index:node.size])
		copy(node.children[index+1:node.size+1], node.children[index:node.size])
		node.keys[index] = key
		node.children[index] = child
		node.size++

	case Node48:
		node := n.node48()
		index := node.rank(key)
		copy(node.children[index+1:node.size+1], node.children[index:node.size])
		node.children[index] = child
		node.present[key>>6] |= 1 << (key & 63)
		node.size++

	case Node256:
		n.node256().children[key] = child
		n.node().size++
	}
}

// place stores child in the slot selected by rest at offset c: the term slot
// when rest ends at c, the byte rest[c] otherwise.
func (n *artNode) place(rest []byte, c int, child nodeID) {
	if c == len(rest) {
		n.node().term = child
		return
	}
	n.addChild(rest[c], child)
}

// removeChild removes the child stored under the branch byte. The node
// shrinks if it falls below the minimum size of its representation.
func (n *artNode) removeChild(key byte) {
	switch n.kind {
	case Node4:
		node := n.node4()
		index := n.index(key)
		if index < 0 {
			return
		}
		copy(node.keys[index:], node.keys[index+1:node.size])
		copy(node.children[index:], node.children[index+1:node.size])
		node.keys[node.size-1] = 0
		node.children[node.size-1] = nilNode
		node.size--

	case Node16:
		node := n.node16()
		index := n.index(key)
		if index < 0 {
			return
		}
		copy(node.keys[index:], node.keys[index+1:node.size])
		copy(node.children[index:], node.children[index+1:node.size])
		node.keys[node.size-1] = 0
		node.children[node.size-1] = nilNode
		node.size--

	case Node48:
		node := n.node48()
		if !node.has(key) {
			return
		}
		index := node.rank(key)
		copy(node.children[index:], node.children[index+1:node.size])
		node.children[node.size-1] = nilNode
		node.present[key>>6] &^= 1 << (key & 63)
		node.size--

	case Node256:
		node := n.node256()
		if node.children[key] == nilNode {
			return
		}
		node.children[key] = nilNode
		node.size--
	}

	if n.kind != Node4 && n.node().size < n.minSize() {
		n.shrink()
	}
}

// index returns the position of the branch byte in the children array,
// or -1 if absent.
func (n *artNode) index(key byte) int {
	switch n.kind {
	case Node4:
		node := n.node4()
		for i := 0; i < node.size; i++ {
			if node.keys[i] == key {
				return i
			}
		}
	case Node16:
		node := n.node16()
		i := sort.Search(node.size, func(i int) bool { return node.keys[i] >= key })
		if i < node.size && node.keys[i] == key {
			return i
		}
	case Node48:
		node := n.node48()
		if node.has(key) {
			return node.rank(key)
		}
	case Node256:
		if n.node256().children[key] != nilNode {
			return int(key)
		}
	}
	return -1
}

// nextSlot returns the smallest occupied slot greater than after together
// with its child. ok is false if there is none.
func (n *artNode) nextSlot(after int) (slot int, child nodeID, ok bool) {
	if after < termSlot && n.node().term != nilNode {
		return termSlot, n.node().term, true
	}
	from := after + 1
	if from < 0 {
		from = 0
	}
	if from > 255 {
		return 0, nilNode, false
	}

	switch n.kind {
	case Node4:
		node := n.node4()
		for i := 0; i < node.size; i++ {
			if int(node.keys[i]) >= from {
				return int(node.keys[i]), node.children[i], true
			}
		}
	case Node16:
		node := n.node16()
		i := sort.Search(node.size, func(i int) bool { return int(node.keys[i]) >= from })
		if i < node.size {
			return int(node.keys[i]), node.children[i], true
		}
	case Node48:
		node := n.node48()
		for w := from >> 6; w < len(node.present); w++ {
			word := node.present[w]
			if w == from>>6 {
				word &^= (1 << uint(from&63)) - 1
			}
			if word != 0 {
				b := byte(w<<6 | bits.TrailingZeros64(word))
				return int(b), node.children[node.rank(b)], true
			}
		}
	case Node256:
		node := n.node256()
		for i := from; i < node256Max; i++ {
			if node.children[i] != nilNode {
				return i, node.children[i], true
			}
		}
	}
	return 0, nilNode, false
}

// prevSlot returns the largest occupied slot smaller than before together
// with its child. ok is false if there is none.
func (n *artNode) prevSlot(before int) (slot int, child nodeID, ok bool) {
	from := before - 1
	if from > 255 {
		from = 255
	}

	if from >= 0 {
		switch n.kind {
		case Node4:
			node := n.node4()
			for i := node.size - 1; i >= 0; i-- {
				if int(node.keys[i]) <= from {
					return int(node.keys[i]), node.children[i], true
				}
			}
		case Node16:
			node := n.node16()
			i := sort.Search(node.size, func(i int) bool { return int(node.keys[i]) > from }) - 1
			if i >= 0 {
				return int(node.keys[i]), node.children[i], true
			}
		case Node48:
			node := n.node48()
			for w := from >> 6; w >= 0; w-- {
				word := node.present[w]
				if w == from>>6 && from&63 != 63 {
					word &= (1 << uint(from&63+1)) - 1
				}
				if word != 0 {
					b := byte(w<<6 | (63 - bits.LeadingZeros64(word)))
					return int(b), node.children[node.rank(b)], true
				}
			}
		case Node256:
			node := n.node256()
			for i := from; i >= 0; i-- {
				if node.children[i] != nilNode {
					return i, node.children[i], true
				}
			}
		}
	}

	if before > termSlot && n.node().term != nilNode {
		return termSlot, n.node().term, true
	}
	return 0, nilNode, false
}

// eachChild calls fn for every child in slot order, the term slot first.
func (n *artNode) eachChild(fn func(slot int, child nodeID)) {
	for slot, child, ok := n.nextSlot(beforeFirst); ok; slot, child, ok = n.nextSlot(slot) {
		fn(slot, child)
	}
}

// Grows the current artNode to the next biggest size.
// artNodes of type Node4 will grow to Node16
// artNodes of type Node16 will grow to Node48.
// artNodes of type Node48 will grow to Node256.
// artNodes of type Node256 will not grow, as they are the biggest type of artNodes
func (n *artNode) grow() {
	switch n.kind {
	case Node4:
		other := newNode16()
		other.copyMeta(n)
		n4, n16 := n.node4(), other.node16()
		copy(n16.keys[:], n4.keys[:n4.size])
		copy(n16.children[:], n4.children[:n4.size])
		n.replaceWith(other)

	case Node16:
		other := newNode48()
		other.copyMeta(n)
		n16, n48 := n.node16(), other.node48()
		for i := 0; i < n16.size; i++ {
			b := n16.keys[i]
			n48.present[b>>6] |= 1 << (b & 63)
			n48.children[i] = n16.children[i]
		}
		n.replaceWith(other)

	case Node48:
		other := newNode256()
		other.copyMeta(n)
		n256 := other.node256()
		n.eachChild(func(slot int, child nodeID) {
			if slot != termSlot {
				n256.children[slot] = child
			}
		})
		n.replaceWith(other)

	case Node256:
		// Can't get no bigger
	}
}

// Shrinks the current artNode to the next smallest size.
// artNodes of type Node256 will shrink to Node48
// artNodes of type Node48 will shrink to Node16.
// artNodes of type Node16 will shrink to Node4.
// A Node4 left with a single entry is merged into its child by the tree,
// since that needs the node store.
func (n *artNode) shrink() {
	var other *artNode
	switch n.kind {
	case Node16:
		other = &artNode{kind: Node4, ref: unsafe.Pointer(&node4{})}
	case Node48:
		other = newNode16()
	case Node256:
		other = newNode48()
	default:
		return
	}

	other.copyMeta(n)
	other.node().size = 0
	n.eachChild(func(slot int, child nodeID) {
		if slot != termSlot {
			other.addChild(byte(slot), child)
		}
	})
	n.replaceWith(other)
}

// Returns the minimum number of children for the current node.
func (n *artNode) minSize() int {
	switch n.kind {
	case Node4:
		return node4Min
	case Node16:
		return node16Min
	case Node48:
		return node48Min
	case Node256:
		return node256Min
	}
	return 0
}

// Returns the maximum number of children for the current node.
func (n *artNode) maxSize() int {
	switch n.kind {
	case Node4:
		return node4Max
	case Node16:
		return node16Max
	case Node48:
		return node48Max
	case Node256:
		return node256Max
	}
	return 0
}

// copyPayload returns an artNode with its own copy of the payload.
func (n *artNode) copyPayload() artNode {
	switch n.kind {
	case Leaf:
		l := *n.leaf()
		l.suffix = clonePrefix(l.suffix)
		return artNode{kind: Leaf, ref: unsafe.Pointer(&l)}
	case Node4:
		c := *n.node4()
		c.prefix = clonePrefix(c.prefix)
		return artNode{kind: Node4, ref: unsafe.Pointer(&c)}
	case Node16:
		c := *n.node16()
		c.prefix = clonePrefix(c.prefix)
		return artNode{kind: Node16, ref: unsafe.Pointer(&c)}
	case Node48:
		c := *n.node48()
		c.prefix = clonePrefix(c.prefix)
		return artNode{kind: Node48, ref: unsafe.Pointer(&c)}
	case Node256:
		c := *n.node256()
		c.prefix = clonePrefix(c.prefix)
		return artNode{kind: Node256, ref: unsafe.Pointer(&c)}
	}
	return artNode{}
}

func (n *node48) has(key byte) bool {
	return n.present[key>>6]&(1<<(key&63)) != 0
}

// rank counts the children stored under branch bytes smaller than key.
func (n *node48) rank(key byte) int {
	w := int(key >> 6)
	r := 0
	for i := 0; i < w; i++ {
		r += bits.OnesCount64(n.present[i])
	}
	return r + bits.OnesCount64(n.present[w]&(1<<(key&63)-1))
}

func (n *artNode) node() *node {
	return (*node)(n.ref)
}

func (n *artNode) node4() *node4 {
	return (*node4)(n.ref)
}

func (n *artNode) node16() *node16 {
	return (*node16)(n.ref)
}

func (n *artNode) node48() *node48 {
	return (*node48)(n.ref)
}

func (n *artNode) node256() *node256 {
	return (*node256)(n.ref)
}

func (n *artNode) leaf() *leaf {
	return (*leaf)(n.ref)
}

// Replaces the current node with the passed in artNode.
func (n *artNode) replaceWith(other *artNode) {
	*n = *other
}

// Copies the prefix, term and size metadata from the passed in artNode
// to the current node.
func (n *artNode) copyMeta(src *artNode) {
	to := n.node()
	from := src.node()
	to.size = from.size
	to.prefix = from.prefix
	to.term = from.term
}

func clonePrefix(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}
	c := make([]byte, len(p))
	copy(c, p)
	return c
}

// join returns a fresh slice holding a followed by b.
func join(a []byte, b ...byte) []byte {
	c := make([]byte, 0, len(a)+len(b))
	c = append(c, a...)
	return append(c, b...)
}

// Returns the number of leading bytes shared by a and b.
func commonPrefix(a, b []byte) int {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	i := 0
	for ; i < limit; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return i
}
