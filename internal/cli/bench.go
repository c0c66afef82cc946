// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/btree"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/k33nice/judy"
)

var errMismatch = errors.New("array and btree disagree")

// entry is a key of the reference btree.
type entry struct {
	key   judy.Key
	value judy.Value
}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

type benchResult struct {
	name   string
	insert time.Duration
	walk   time.Duration
}

func (a *app) benchCommand() *cobra.Command {
	var (
		keys   int
		seed   int64
		clones int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the array against a btree on random keys",
		Long: `Insert random keys into an array and into a btree, check that both walk
the same pairs in the same order and report the timings. The array is then
cloned and every clone is verified and emptied on its own goroutine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.cfg.Open(a.log)
			if err != nil {
				return err
			}
			defer arr.Close()

			input, err := randomKeys(arr.Codec(), rand.New(rand.NewSource(seed)), keys)
			if err != nil {
				return err
			}

			var results []benchResult
			res, err := benchArray(arr, input)
			if err != nil {
				return err
			}
			results = append(results, res)

			tree := btree.New(32)
			res, want := benchBTree(tree, input)
			results = append(results, res)

			if err := verify(arr, want); err != nil {
				return err
			}
			if err := verifyClones(cmd.Context(), arr, want, clones); err != nil {
				return err
			}

			a.log.WithFields(log.Fields{
				"keys":   arr.Len(),
				"clones": clones,
				"seed":   seed,
			}).Info("bench verified")
			printBench(cmd.OutOrStdout(), results, arr.Len(), clones)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&keys, "keys", 10000, "number of random keys to insert")
	fs.Int64Var(&seed, "seed", 1, "random seed")
	fs.IntVar(&clones, "clones", 4, "number of clones verified in parallel")
	return cmd
}

// randomKeys returns n keys of lowercase letters in their stored form.
// Duplicates are possible.
func randomKeys(codec judy.Codec, rng *rand.Rand, n int) ([]judy.Key, error) {
	maxLen := codec.MaxKeyLen()
	if maxLen > 16 {
		maxLen = 16
	}

	keys := make([]judy.Key, n)
	for i := range keys {
		raw := make([]byte, rng.Intn(maxLen+1))
		for j := range raw {
			raw[j] = byte('a' + rng.Intn(26))
		}
		key, err := codec.Encode(raw)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return keys, nil
}

func benchArray(arr *judy.Array, input []judy.Key) (benchResult, error) {
	res := benchResult{name: "judy"}

	start := time.Now()
	for i, k := range input {
		if err := arr.Insert(k, judy.Value(i+1)); err != nil {
			return res, err
		}
	}
	res.insert = time.Since(start)

	start = time.Now()
	n := 0
	for v := arr.First(); v != nil; v = arr.Next() {
		n++
	}
	res.walk = time.Since(start)
	if n != arr.Len() {
		return res, fmt.Errorf("%w: walked %d of %d keys", errMismatch, n, arr.Len())
	}
	return res, nil
}

// benchBTree fills tree with input and returns its entries in order.
func benchBTree(tree *btree.BTree, input []judy.Key) (benchResult, []entry) {
	res := benchResult{name: "btree"}

	start := time.Now()
	for i, k := range input {
		tree.ReplaceOrInsert(entry{key: k, value: judy.Value(i + 1)})
	}
	res.insert = time.Since(start)

	start = time.Now()
	want := make([]entry, 0, tree.Len())
	tree.Ascend(func(i btree.Item) bool {
		want = append(want, i.(entry))
		return true
	})
	res.walk = time.Since(start)
	return res, want
}

// verify walks arr and compares it with want.
func verify(arr *judy.Array, want []entry) error {
	if arr.Len() != len(want) {
		return fmt.Errorf("%w: %d keys, want %d", errMismatch, arr.Len(), len(want))
	}
	i := 0
	for v := arr.First(); v != nil; v = arr.Next() {
		if i >= len(want) || !bytes.Equal(arr.CurrentKey(), want[i].key) || *v != want[i].value {
			return fmt.Errorf("%w: at position %d", errMismatch, i)
		}
		i++
	}
	return arr.Check()
}

// verifyClones checks n clones of arr in parallel, then deletes every key
// from each of them. arr is left untouched.
func verifyClones(ctx context.Context, arr *judy.Array, want []entry, n int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		c, err := arr.Clone()
		if err != nil {
			return err
		}
		i := i
		g.Go(func() error {
			defer c.Close()
			if err := verify(c, want); err != nil {
				return fmt.Errorf("clone %d: %w", i, err)
			}
			for _, e := range want {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !c.Delete(e.key) {
					return fmt.Errorf("clone %d: %w: %q missing", i, errMismatch, e.key)
				}
			}
			if c.Len() != 0 {
				return fmt.Errorf("clone %d: %w: %d keys left", i, errMismatch, c.Len())
			}
			return c.Check()
		})
	}
	return g.Wait()
}

func printBench(w io.Writer, results []benchResult, keys, clones int) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader([]string{"structure", "insert", "walk"})
	for _, r := range results {
		tw.Append([]string{r.name, r.insert.String(), r.walk.String()})
	}
	tw.Render()
	fmt.Fprintf(w, "%d keys, %d clones verified\n", keys, clones)
}
