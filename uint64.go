// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

// Pair is a key and its value.
type Pair struct {
	Key   uint64
	Value Value
}

// Uint64Array is an Array keyed by unsigned integers. Keys are stored big
// endian, so iteration follows numeric order.
type Uint64Array struct {
	a   *Array
	buf [8]byte
}

// NewUint64Array creates an empty integer keyed array.
func NewUint64Array(opts ...Option) (*Uint64Array, error) {
	a, err := Open(8, 8, opts...)
	if err != nil {
		return nil, err
	}
	return &Uint64Array{a: a}, nil
}

func (u *Uint64Array) key(k uint64) Key {
	putWord(u.buf[:], k)
	return u.buf[:]
}

// Insert stores value under k.
func (u *Uint64Array) Insert(k uint64, value Value) error {
	return u.a.Insert(u.key(k), value)
}

// Find returns the value stored under k.
func (u *Uint64Array) Find(k uint64) (Value, bool) {
	return u.a.Find(u.key(k))
}

// AtOrAfter returns the pair with the smallest key greater than or equal to k.
func (u *Uint64Array) AtOrAfter(k uint64) (Pair, bool) {
	return u.pair(u.a.Start(u.key(k)))
}

// First returns the pair with the smallest key.
func (u *Uint64Array) First() (Pair, bool) { return u.pair(u.a.First()) }

// End returns the pair with the largest key.
func (u *Uint64Array) End() (Pair, bool) { return u.pair(u.a.End()) }

// Next returns the pair following the most recent one.
func (u *Uint64Array) Next() (Pair, bool) { return u.pair(u.a.Next()) }

// Previous returns the pair preceding the most recent one.
func (u *Uint64Array) Previous() (Pair, bool) { return u.pair(u.a.Prev()) }

// MostRecentPair returns the pair at the cursor.
func (u *Uint64Array) MostRecentPair() (Pair, bool) {
	if u.a.State() != Positioned {
		return Pair{}, false
	}
	return u.pair(u.a.current())
}

// RemoveEntry deletes the pair at the cursor.
func (u *Uint64Array) RemoveEntry() error { return u.a.Del() }

// Len returns the number of keys.
func (u *Uint64Array) Len() int { return u.a.Len() }

// Clone returns an independent copy.
func (u *Uint64Array) Clone() (*Uint64Array, error) {
	c, err := u.a.Clone()
	if err != nil {
		return nil, err
	}
	return &Uint64Array{a: c}, nil
}

// Close frees the array.
func (u *Uint64Array) Close() { u.a.Close() }

func (u *Uint64Array) pair(slot *Value) (Pair, bool) {
	if slot == nil {
		return Pair{}, false
	}
	var buf [8]byte
	if _, err := u.a.Key(buf[:]); err != nil {
		return Pair{}, false
	}
	return Pair{Key: getWord(buf[:]), Value: *slot}, true
}
