// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"bytes"
	"fmt"
	"math/bits"
)

// Stats describes the shape of an array.
type Stats struct {
	Keys  int
	Nodes map[Kind]int
	// Arena is the number of node slots allocated, free ones included.
	Arena int
	// KeyBytes counts the prefix and suffix bytes held by the nodes.
	KeyBytes int
}

// Stats walks the array and counts its nodes per kind.
func (a *Array) Stats() Stats {
	st := Stats{Keys: a.size, Nodes: make(map[Kind]int), Arena: len(a.store.nodes) - 1}
	a.walk(a.root, func(n *artNode) {
		st.Nodes[n.kind]++
		if n.isLeaf() {
			st.KeyBytes += len(n.leaf().suffix)
		} else {
			st.KeyBytes += len(n.node().prefix)
		}
	})
	return st
}

// walk visits every node below id in preorder.
func (a *Array) walk(id nodeID, fn func(n *artNode)) {
	if id == nilNode {
		return
	}
	n := a.store.at(id)
	fn(n)
	if !n.isLeaf() {
		n.eachChild(func(_ int, child nodeID) {
			a.walk(child, fn)
		})
	}
}

// InvariantError describes a structural inconsistency.
type InvariantError struct {
	Path        []byte
	Description string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("judy: invariant violation at %x: %s", e.Path, e.Description)
}

// Check verifies the structure of the array: node populations match their
// representation, inner nodes hold at least two entries, keys come out in
// strictly ascending order within MaxKeyLen, and the key count and node
// store agree with the tree. It returns the first violation found.
func (a *Array) Check() error {
	v := checker{a: a}
	if err := v.check(a.root, nil); err != nil {
		return err
	}
	if v.keys != a.size {
		return &InvariantError{Description: fmt.Sprintf("%d leaves, size says %d", v.keys, a.size)}
	}
	if v.nodes != a.store.live {
		return &InvariantError{Description: fmt.Sprintf("%d nodes reachable, store holds %d", v.nodes, a.store.live)}
	}
	return nil
}

type checker struct {
	a     *Array
	last  []byte
	keys  int
	nodes int
}

func (v *checker) check(id nodeID, path []byte) error {
	if id == nilNode {
		return nil
	}
	if int(id) >= len(v.a.store.nodes) {
		return &InvariantError{Path: path, Description: fmt.Sprintf("node %d outside the store", id)}
	}
	n := v.a.store.at(id)
	if n.ref == nil {
		return &InvariantError{Path: path, Description: fmt.Sprintf("node %d was released", id)}
	}
	v.nodes++

	if n.isLeaf() {
		key := join(path, n.leaf().suffix...)
		if len(key) > v.a.codec.maxKeyLen {
			return &InvariantError{Path: key, Description: "key longer than the maximum"}
		}
		if v.a.codec.Fixed() && len(key) != v.a.codec.maxKeyLen {
			return &InvariantError{Path: key, Description: "fixed width key of the wrong length"}
		}
		if v.keys > 0 && bytes.Compare(v.last, key) >= 0 {
			return &InvariantError{Path: key, Description: fmt.Sprintf("key follows %x", v.last)}
		}
		v.last = key
		v.keys++
		return nil
	}

	if err := v.population(n, path); err != nil {
		return err
	}

	base := join(path, n.node().prefix...)
	var err error
	n.eachChild(func(slot int, child nodeID) {
		if err != nil {
			return
		}
		if slot == termSlot {
			if c := v.a.store.at(child); !c.isLeaf() || len(c.leaf().suffix) != 0 {
				err = &InvariantError{Path: base, Description: "term slot holds more than the key end"}
				return
			}
			err = v.check(child, base)
			return
		}
		err = v.check(child, join(base, byte(slot)))
	})
	return err
}

func (v *checker) population(n *artNode, path []byte) error {
	size := n.node().size
	if n.entries() < node4Min {
		return &InvariantError{Path: path, Description: fmt.Sprintf("%s with %d entries", n.kind, n.entries())}
	}

	lo := n.minSize()
	if n.kind == Node4 {
		lo = 0
	}
	if size < lo || size > n.maxSize() {
		return &InvariantError{Path: path, Description: fmt.Sprintf("%s holding %d children", n.kind, size)}
	}

	count := 0
	switch n.kind {
	case Node48:
		nd := n.node48()
		for _, w := range nd.present {
			count += bits.OnesCount64(w)
		}
	default:
		n.eachChild(func(slot int, _ nodeID) {
			if slot != termSlot {
				count++
			}
		})
	}
	if count != size {
		return &InvariantError{Path: path, Description: fmt.Sprintf("%s counts %d children, size says %d", n.kind, count, size)}
	}
	return nil
}
