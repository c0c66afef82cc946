// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"bytes"

	log "github.com/sirupsen/logrus"
)

// Array is an ordered map from byte-string keys to non-zero words.
type Array struct {
	codec  Codec
	store  *store
	root   nodeID
	size   int
	cursor cursor
	log    log.FieldLogger
	closed bool
}

// Option configures an Array.
type Option func(*options)

type options struct {
	logger   log.FieldLogger
	maxNodes int
}

// WithLogger sets the logger used for lifecycle and node representation
// changes. The default is the logrus standard logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxNodes caps the number of nodes the array may hold. A new key is
// refused with ErrAllocation unless two nodes are still available, which
// covers its leaf and a possible split. Zero means no cap.
func WithMaxNodes(n int) Option {
	return func(o *options) { o.maxNodes = n }
}

// Open creates an empty array. A zero depth selects variable length keys
// of up to maxKeyLen bytes; otherwise keys are fixed width, see Codec.
func Open(maxKeyLen, depth int, opts ...Option) (*Array, error) {
	codec, err := NewCodec(maxKeyLen, depth)
	if err != nil {
		return nil, err
	}

	o := options{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxNodes < 0 {
		return nil, ErrInvalidConfig
	}

	a := &Array{
		codec: codec,
		store: newStore(o.maxNodes),
		log:   o.logger,
	}
	a.log.WithFields(log.Fields{
		"max_key_len": maxKeyLen,
		"depth":       depth,
		"max_nodes":   o.maxNodes,
	}).Debug("judy: array opened")
	return a, nil
}

// Codec returns the key codec of the array.
func (a *Array) Codec() Codec { return a.codec }

// MaxKeyLen returns the longest key the array accepts.
func (a *Array) MaxKeyLen() int { return a.codec.maxKeyLen }

// Depth returns the word width of fixed width keys, or 0.
func (a *Array) Depth() int { return a.codec.depth }

// Len returns the number of keys.
func (a *Array) Len() int { return a.size }

// State returns the cursor state.
func (a *Array) State() CursorState { return a.cursor.state }

// Cell finds or creates the slot for key and positions the cursor on it.
// A newly created slot holds zero until the caller stores a value in it;
// the slot pointer is valid until the key is deleted or the array closed.
func (a *Array) Cell(key Key) (*Value, error) {
	if a.closed {
		return nil, ErrClosed
	}
	key, err := a.codec.Encode(key)
	if err != nil {
		return nil, err
	}
	if a.cursor.seek(a.store, a.root, key) {
		return a.current(), nil
	}
	// An insertion allocates at most a leaf and one inner node.
	if err := a.store.reserve(2); err != nil {
		return nil, err
	}

	id := a.insert(&a.root, key, 0)
	a.cursor.seek(a.store, a.root, key)
	return &a.store.at(id).leaf().value, nil
}

// Insert stores value under key, overwriting any previous value.
func (a *Array) Insert(key Key, value Value) error {
	if value == 0 {
		return ErrInvalidValue
	}
	slot, err := a.Cell(key)
	if err != nil {
		return err
	}
	*slot = value
	return nil
}

// insert is the recursive helper that traverses the tree until an insertion
// point is found and returns the leaf of key. There are four cases:
//
// An empty reference gets a new leaf.
//
// A leaf holding another key is replaced by a Node4 over the longest
// common prefix of both keys, holding the old and the new leaf.
//
// A node whose compressed path differs from the key is put below a new
// Node4 holding the shared part of the path and the new leaf.
//
// Otherwise the key continues into the child at its next byte, or ends in
// the node's term slot; missing children are created.
func (a *Array) insert(ref *nodeID, key Key, depth int) nodeID {
	if *ref == nilNode {
		*ref = a.store.allocLeaf(key[depth:], 0)
		a.size++
		return *ref
	}

	current := a.store.at(*ref)
	rest := key[depth:]

	if current.isLeaf() {
		l := current.leaf()
		if bytes.Equal(l.suffix, rest) {
			return *ref
		}

		c := commonPrefix(l.suffix, rest)
		split := newNode4(rest[:c])
		split.place(l.suffix, c, *ref)
		l.suffix = tail(l.suffix, c)

		id := a.store.allocLeaf(tail(rest, c), 0)
		split.place(rest, c, id)
		*ref = a.store.alloc(split)
		a.size++
		return id
	}

	nd := current.node()
	if m := commonPrefix(nd.prefix, rest); m < len(nd.prefix) {
		split := newNode4(nd.prefix[:m])
		split.addChild(nd.prefix[m], *ref)
		nd.prefix = clonePrefix(nd.prefix[m+1:])

		id := a.store.allocLeaf(tail(rest, m), 0)
		split.place(rest, m, id)
		*ref = a.store.alloc(split)
		a.size++
		return id
	}
	depth += len(nd.prefix)

	if depth == len(key) {
		if nd.term == nilNode {
			nd.term = a.store.allocLeaf(nil, 0)
			a.size++
		}
		return nd.term
	}

	if next := current.findChild(key[depth]); next != nil {
		return a.insert(next, key, depth+1)
	}

	id := a.store.allocLeaf(key[depth+1:], 0)
	kind := current.kind
	current.addChild(key[depth], id)
	a.traceKind(*ref, kind)
	a.size++
	return id
}

// tail returns the bytes of rest below the branch taken at offset c.
func tail(rest []byte, c int) []byte {
	if c >= len(rest) {
		return nil
	}
	return rest[c+1:]
}

// Slot returns the slot of key, or nil if key is absent. The cursor is
// positioned on key, or left at Boundary on a miss.
func (a *Array) Slot(key Key) *Value {
	key, err := a.codec.Encode(key)
	if err != nil {
		a.cursor.reset(Boundary)
		return nil
	}
	if !a.cursor.seek(a.store, a.root, key) {
		return nil
	}
	return a.current()
}

// Find returns the value stored under key. Slots still holding zero count
// as absent.
func (a *Array) Find(key Key) (Value, bool) {
	slot := a.Slot(key)
	if slot == nil || *slot == 0 {
		return 0, false
	}
	return *slot, true
}

// Search returns the value stored under key, or zero.
func (a *Array) Search(key Key) Value {
	v, _ := a.Find(key)
	return v
}

// Start positions the cursor at the smallest key greater than or equal to
// key and returns its slot, or nil if there is none.
func (a *Array) Start(key Key) *Value {
	key, ok := a.orderable(key)
	if !ok {
		a.cursor.reset(Boundary)
		return nil
	}
	if !a.cursor.ceil(a.store, a.root, key) {
		return nil
	}
	return a.current()
}

// orderable returns the form of key used for ceiling lookups. Variable
// length keys longer than MaxKeyLen still order against stored keys; a
// too long fixed width key has no ceiling.
func (a *Array) orderable(key Key) (Key, bool) {
	enc, err := a.codec.Encode(key)
	if err == nil {
		return enc, true
	}
	return key, !a.codec.Fixed()
}

// First positions the cursor at the smallest key.
func (a *Array) First() *Value {
	if !a.cursor.first(a.store, a.root) {
		return nil
	}
	return a.current()
}

// End positions the cursor at the largest key.
func (a *Array) End() *Value {
	if !a.cursor.last(a.store, a.root) {
		return nil
	}
	return a.current()
}

// Next moves the cursor to the following key. From an Empty cursor it
// behaves as First; from Boundary it reports absence.
func (a *Array) Next() *Value {
	if !a.cursor.next(a.store, a.root) {
		return nil
	}
	return a.current()
}

// Prev moves the cursor to the preceding key. From an Empty cursor it
// behaves as End; from Boundary it reports absence.
func (a *Array) Prev() *Value {
	if !a.cursor.prev(a.store, a.root) {
		return nil
	}
	return a.current()
}

// Key copies the key at the cursor into buf and returns its length. buf
// must hold at least MaxKeyLen bytes to fit every key; the array keeps no
// reference to it.
func (a *Array) Key(buf []byte) (int, error) {
	return a.cursor.copyKey(buf)
}

// CurrentKey returns a copy of the key at the cursor, or nil.
func (a *Array) CurrentKey() Key {
	if a.cursor.state != Positioned {
		return nil
	}
	return append(Key{}, a.cursor.key...)
}

func (a *Array) current() *Value {
	return &a.store.at(a.cursor.leafID()).leaf().value
}

// Del removes the key at the cursor. The cursor is left at Boundary.
func (a *Array) Del() error {
	if a.cursor.state != Positioned {
		return ErrNotFound
	}

	stack := a.cursor.stack
	leafID := stack[len(stack)-1].id
	if len(stack) == 1 {
		a.root = nilNode
	} else {
		parent := stack[len(stack)-2]
		a.removeEntry(parent.id, parent.slot)
	}
	a.store.release(leafID)
	a.size--
	a.cursor.reset(Boundary)
	return nil
}

// Delete removes key and reports whether it was present.
func (a *Array) Delete(key Key) bool {
	if a.Slot(key) == nil {
		return false
	}
	return a.Del() == nil
}

// removeEntry empties slot of an inner node. A node left with a single
// entry is merged into it: the node's prefix and branch byte are prepended
// to the remaining child, which takes over the node's id.
func (a *Array) removeEntry(id nodeID, slot int) {
	n := a.store.at(id)
	kind := n.kind
	if slot == termSlot {
		n.node().term = nilNode
	} else {
		n.removeChild(byte(slot))
	}
	a.traceKind(id, kind)

	if n.entries() > 1 {
		return
	}

	nd := n.node()
	slot, childID, _ := n.nextSlot(beforeFirst)
	path := nd.prefix
	if slot != termSlot {
		path = join(nd.prefix, byte(slot))
	}

	child := a.store.at(childID)
	if child.isLeaf() {
		child.leaf().suffix = join(path, child.leaf().suffix...)
	} else {
		child.node().prefix = join(path, child.node().prefix...)
	}
	a.log.WithFields(log.Fields{"node": id, "from": n.kind, "to": child.kind}).Trace("judy: node merged")
	a.store.move(id, childID)
}

func (a *Array) traceKind(id nodeID, before Kind) {
	if after := a.store.at(id).kind; after != before {
		a.log.WithFields(log.Fields{
			"node": id,
			"from": before,
			"to":   after,
			"size": a.store.at(id).node().size,
		}).Trace("judy: node representation changed")
	}
}

// Clone returns an independent deep copy of the array, cursor included.
func (a *Array) Clone() (*Array, error) {
	if a.closed {
		return nil, ErrClosed
	}
	c := &Array{
		codec:  a.codec,
		store:  a.store.clone(),
		root:   a.root,
		size:   a.size,
		cursor: a.cursor.clone(),
		log:    a.log,
	}
	a.log.WithFields(log.Fields{"keys": a.size, "nodes": a.store.live}).Debug("judy: array cloned")
	return c, nil
}

// Close frees every node. A closed array is empty and refuses insertions.
func (a *Array) Close() {
	if a.closed {
		return
	}
	a.store.freeTree(a.root)
	a.log.WithFields(log.Fields{"keys": a.size}).Debug("judy: array closed")
	a.root = nilNode
	a.size = 0
	a.store = newStore(0)
	a.cursor.reset(Empty)
	a.closed = true
}

// Each calls cb for every key in ascending order until cb returns false.
// The key passed to cb is only valid during the call. The array must not
// be modified from cb.
func (a *Array) Each(cb func(key Key, value Value) bool) {
	var c cursor
	for ok := c.first(a.store, a.root); ok; ok = c.next(a.store, a.root) {
		if !cb(c.key, a.store.at(c.leafID()).leaf().value) {
			return
		}
	}
}

// EachFrom is Each starting at the smallest key greater than or equal to
// start.
func (a *Array) EachFrom(start Key, cb func(key Key, value Value) bool) {
	start, ok := a.orderable(start)
	if !ok {
		return
	}
	var c cursor
	for ok := c.ceil(a.store, a.root, start); ok; ok = c.next(a.store, a.root) {
		if !cb(c.key, a.store.at(c.leafID()).leaf().value) {
			return
		}
	}
}

// EachReverse calls cb for every key in descending order until cb returns
// false.
func (a *Array) EachReverse(cb func(key Key, value Value) bool) {
	var c cursor
	for ok := c.last(a.store, a.root); ok; ok = c.prev(a.store, a.root) {
		if !cb(c.key, a.store.at(c.leafID()).leaf().value) {
			return
		}
	}
}
