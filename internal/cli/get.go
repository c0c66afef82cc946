// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errKeyNotFound = errors.New("key not found")

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE... KEY",
		Short: "Print the value of a key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.loadArray(args[:len(args)-1])
			if err != nil {
				return err
			}
			defer arr.Close()

			text := args[len(args)-1]
			key, err := parseKey(arr.Codec(), text)
			if err != nil {
				return err
			}
			v, ok := arr.Find(key)
			if !ok {
				return fmt.Errorf("%q: %w", text, errKeyNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}
