// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/btree"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestArray(t testing.TB, maxKeyLen, depth int, opts ...Option) *Array {
	t.Helper()
	a, err := Open(maxKeyLen, depth, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return a
}

// forward lists the keys met by First and repeated Next.
func forward(a *Array) []string {
	var keys []string
	for v := a.First(); v != nil; v = a.Next() {
		keys = append(keys, string(a.CurrentKey()))
	}
	return keys
}

// backward lists the keys met by End and repeated Prev.
func backward(a *Array) []string {
	var keys []string
	for v := a.End(); v != nil; v = a.Prev() {
		keys = append(keys, string(a.CurrentKey()))
	}
	return keys
}

// kv is the reference model entry kept in a google/btree.
type kv struct {
	key   []byte
	value Value
}

func (e kv) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(kv).key) < 0
}

func modelKeys(model *btree.BTree) []string {
	keys := make([]string, 0, model.Len())
	model.Ascend(func(i btree.Item) bool {
		keys = append(keys, string(i.(kv).key))
		return true
	})
	return keys
}
