// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUint64Array(t *testing.T) *Uint64Array {
	t.Helper()
	u, err := NewUint64Array(WithLogger(quietLogger()))
	require.NoError(t, err)
	return u
}

func TestUint64ArrayOrder(t *testing.T) {
	u := newTestUint64Array(t)
	numbers := []uint64{1 << 63, 0, 256, 255, 1, 1<<64 - 1, 65536}
	for i, n := range numbers {
		require.NoError(t, u.Insert(n, Value(i+1)))
	}
	assert.Equal(t, len(numbers), u.Len())

	var got []uint64
	for p, ok := u.First(); ok; p, ok = u.Next() {
		got = append(got, p.Key)
	}
	assert.Equal(t, []uint64{0, 1, 255, 256, 65536, 1 << 63, 1<<64 - 1}, got)

	p, ok := u.End()
	require.True(t, ok)
	assert.Equal(t, Pair{Key: 1<<64 - 1, Value: 6}, p)
	p, ok = u.Previous()
	require.True(t, ok)
	assert.Equal(t, uint64(1<<63), p.Key)
}

func TestUint64ArrayFindAndAtOrAfter(t *testing.T) {
	u := newTestUint64Array(t)
	for _, n := range []uint64{10, 20, 30} {
		require.NoError(t, u.Insert(n, Value(n)))
	}

	v, ok := u.Find(20)
	assert.True(t, ok)
	assert.Equal(t, Value(20), v)
	_, ok = u.Find(21)
	assert.False(t, ok)

	p, ok := u.AtOrAfter(11)
	require.True(t, ok)
	assert.Equal(t, Pair{Key: 20, Value: 20}, p)

	recent, ok := u.MostRecentPair()
	require.True(t, ok)
	assert.Equal(t, p, recent)

	_, ok = u.AtOrAfter(31)
	assert.False(t, ok)
	_, ok = u.MostRecentPair()
	assert.False(t, ok)

	assert.True(t, errors.Is(u.Insert(40, 0), ErrInvalidValue))
}

func TestUint64ArrayRemoveEntry(t *testing.T) {
	u := newTestUint64Array(t)
	for n := uint64(0); n < 100; n++ {
		require.NoError(t, u.Insert(n*n, Value(n+1)))
	}

	// Remove the even squares.
	for p, ok := u.First(); ok; {
		key := p.Key
		if key%2 == 0 {
			require.NoError(t, u.RemoveEntry())
			p, ok = u.AtOrAfter(key)
			continue
		}
		p, ok = u.Next()
	}
	assert.Equal(t, 50, u.Len())

	for p, ok := u.First(); ok; p, ok = u.Next() {
		assert.Equal(t, uint64(1), p.Key%2)
	}
	assert.True(t, errors.Is(u.RemoveEntry(), ErrNotFound))
}

func TestUint64ArrayCloneAndClose(t *testing.T) {
	u := newTestUint64Array(t)
	require.NoError(t, u.Insert(7, 1))

	c, err := u.Clone()
	require.NoError(t, err)
	require.NoError(t, c.Insert(8, 2))

	u.Close()
	assert.Zero(t, u.Len())
	_, ok := u.First()
	assert.False(t, ok)

	assert.Equal(t, 2, c.Len())
	_, err = u.Clone()
	assert.True(t, errors.Is(err, ErrClosed))
}
