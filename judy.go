// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

// Package judy implements an ordered associative array over byte-string keys.
//
// Keys are stored in an adaptive radix trie: inner nodes switch between
// sparse, dense (bitmap) and full representations as their population
// changes, and paths with a single child are compressed into a prefix.
// Every Array carries a cursor which is positioned by Cell, Slot, Start,
// First, End, Next and Prev; Key and Del operate on the cursor position.
//
// An Array is not safe for concurrent use. Clone produces an independent
// deep copy that another goroutine may own.
package judy

import "fmt"

// Kind - radix tree node type.
type Kind uint8

// Types of node.
const (
	Leaf Kind = iota
	// Node4 and Node16 keep their branch bytes in a sorted list.
	Node4
	Node16
	// Node48 keeps a 256-bit presence bitmap and packs children by rank.
	Node48
	// Node256 materializes every child slot.
	Node256
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Node4:
		return "node4"
	case Node16:
		return "node16"
	case Node48:
		return "node48"
	case Node256:
		return "node256"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Key type. Any sequence of bytes, zero bytes included.
type Key = []byte

// Value type. A single machine word; zero means "no value".
type Value = uint64

// CursorState describes where the cursor of an Array stands.
type CursorState uint8

// Cursor states.
const (
	// Empty: nothing has positioned the cursor yet.
	Empty CursorState = iota
	// Positioned: the cursor points at a stored key.
	Positioned
	// Boundary: the last positioning call found no key. Next and Prev
	// report absence until the cursor is positioned again.
	Boundary
)

func (s CursorState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Positioned:
		return "positioned"
	case Boundary:
		return "boundary"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}
