// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k33nice/judy"
)

func (a *app) scanCommand() *cobra.Command {
	var (
		from    string
		limit   int
		reverse bool
	)

	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "List keys in order",
		Long: `Load keys from files and list them with their values in ascending order,
or descending with --reverse. --from starts the listing at the first key not
before (or, reversed, not after) the given key.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.loadArray(args)
			if err != nil {
				return err
			}
			defer arr.Close()

			var start judy.Key
			if cmd.Flags().Changed("from") {
				if start, err = parseKey(arr.Codec(), from); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			buf := make([]byte, arr.MaxKeyLen())
			v := position(arr, start, reverse)
			for n := 0; v != nil && (limit <= 0 || n < limit); n++ {
				k, err := arr.Key(buf)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d\n", formatKey(arr.Codec(), buf[:k]), *v)

				if reverse {
					v = arr.Prev()
				} else {
					v = arr.Next()
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "`key` to start at")
	fs.IntVar(&limit, "limit", 0, "list at most `n` keys, 0 for all")
	fs.BoolVarP(&reverse, "reverse", "r", false, "list in descending order")
	return cmd
}

// position moves the cursor to the first key of a scan.
func position(arr *judy.Array, start judy.Key, reverse bool) *judy.Value {
	switch {
	case start == nil && !reverse:
		return arr.First()
	case start == nil:
		return arr.End()
	case !reverse:
		return arr.Start(start)
	}

	// The largest key not after start.
	v := arr.Start(start)
	if v == nil {
		return arr.End()
	}
	if enc, err := arr.Codec().Encode(start); err == nil && bytes.Equal(arr.CurrentKey(), enc) {
		return v
	}
	return arr.Prev()
}
