// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/k33nice/judy/internal/test"
)

func TestCloneIsIndependent(t *testing.T) {
	a := newTestArray(t, 8, 0)
	for i, k := range []string{"apple", "apricot", "banana", "cherry"} {
		require.NoError(t, a.Insert(Key(k), Value(i+1)))
	}

	c, err := a.Clone()
	require.NoError(t, err)

	require.NoError(t, c.Insert(Key("apex"), 9))
	require.NoError(t, c.Insert(Key("banana"), 42))
	assert.True(t, a.Delete(Key("cherry")))

	assert.Equal(t, []string{"apple", "apricot", "banana"}, forward(a))
	assert.Equal(t, []string{"apex", "apple", "apricot", "banana", "cherry"}, forward(c))
	assert.Equal(t, Value(3), a.Search(Key("banana")))
	assert.Equal(t, Value(42), c.Search(Key("banana")))
	assert.NoError(t, a.Check())
	assert.NoError(t, c.Check())

	c.Close()
	assert.Equal(t, 3, a.Len())
	assert.NoError(t, a.Check())
}

func TestCloneKeepsCursor(t *testing.T) {
	a := newTestArray(t, 8, 0)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, a.Insert(Key(k), 1))
	}
	require.NotNil(t, a.Slot(Key("b")))

	c, err := a.Clone()
	require.NoError(t, err)
	assert.Equal(t, Positioned, c.State())
	assert.Equal(t, Key("b"), c.CurrentKey())

	require.NotNil(t, c.Next())
	assert.Equal(t, Key("c"), c.CurrentKey())
	assert.Equal(t, Key("b"), a.CurrentKey(), "moving the clone's cursor must not move the original")

	// The clone's slots are its own.
	*c.Slot(Key("a")) = 7
	assert.Equal(t, Value(1), a.Search(Key("a")))
}

// Clones may be used from their own goroutines while the original is left
// untouched.
func TestClonesInParallel(t *testing.T) {
	a := newTestArray(t, 16, 0)
	words := test.LoadTestFile("testdata/words.txt")
	for i, w := range words {
		require.NoError(t, a.Insert(w, Value(i+1)))
	}
	want := forward(a)

	const workers = 8
	clones := make([]*Array, workers)
	for i := range clones {
		c, err := a.Clone()
		require.NoError(t, err)
		clones[i] = c
	}

	var g errgroup.Group
	for i, c := range clones {
		i, c := i, c
		g.Go(func() error {
			removed := 0
			for j, w := range words {
				if j%workers != i {
					continue
				}
				if !c.Delete(w) {
					return fmt.Errorf("clone %d: %q not found", i, w)
				}
				removed++
			}
			if c.Len() != len(words)-removed {
				return fmt.Errorf("clone %d: %d keys, want %d", i, c.Len(), len(words)-removed)
			}
			for j, w := range words {
				_, ok := c.Find(w)
				if ok != (j%workers != i) {
					return fmt.Errorf("clone %d: %q present=%v", i, w, ok)
				}
			}
			return c.Check()
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, want, forward(a))
	assert.NoError(t, a.Check())
}
