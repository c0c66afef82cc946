// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/k33nice/judy"
)

func (a *app) loadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load FILE...",
		Short: "Load keys from files and print the shape of the array",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.loadArray(args)
			if err != nil {
				return err
			}
			defer arr.Close()

			if err := arr.Check(); err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), arr.Stats())
			return nil
		},
	}
}

func printStats(w io.Writer, st judy.Stats) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader([]string{"stat", "count"})

	tw.Append([]string{"keys", strconv.Itoa(st.Keys)})
	for _, kind := range []judy.Kind{judy.Leaf, judy.Node4, judy.Node16, judy.Node48, judy.Node256} {
		tw.Append([]string{kind.String(), strconv.Itoa(st.Nodes[kind])})
	}
	tw.Append([]string{"arena", strconv.Itoa(st.Arena)})
	tw.Append([]string{"key bytes", strconv.Itoa(st.KeyBytes)})
	tw.Render()
}
