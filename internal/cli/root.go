// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

// Package cli implements the judy command.
package cli

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/k33nice/judy/internal/config"
)

// Version of the judy command.
var Version = "0.1.0"

// app holds the state shared by the commands of one invocation.
type app struct {
	v         *viper.Viper
	cfgFile   string
	cfg       *config.Config
	log       *log.Logger
	logWriter io.WriteCloser
}

// NewRootCommand returns the judy command with all its subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New(), log: log.New()}
	a.log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
	})

	cmd := &cobra.Command{
		Use:   "judy",
		Short: "An ordered associative array over byte-string keys",
		Long: `judy loads keys into a compressed radix trie and queries it: ordered
scans from any key in both directions, point lookups, shape statistics and a
comparison against a B-tree.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.preRun,
		PersistentPostRun: a.postRun,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&a.cfgFile, "config", "", "`file` to load config from")
	fs.Int("max-key-len", 256, "longest key in bytes")
	fs.Int("depth", 0, "word width of fixed width keys in bytes: 1, 2, 4 or 8; 0 for variable length keys")
	fs.Int("max-nodes", 0, "cap on the number of trie nodes, 0 for none")
	fs.String("log-level", "info", "log level: trace, debug, info, warn, error, fatal, or panic")
	fs.String("log-file", "", "`file` to use for logging")
	fs.BoolP("log-stderr", "s", false, "log to standard error")

	cmd.AddCommand(
		a.loadCommand(),
		a.scanCommand(),
		a.getCommand(),
		a.benchCommand(),
		versionCommand(),
	)
	return cmd
}

// Execute runs the judy command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) preRun(cmd *cobra.Command, args []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("judy: %w", err)
	}
	a.cfg = cfg

	a.log.SetOutput(cmd.ErrOrStderr())
	if !cfg.Log.Stderr && cfg.Log.File != "" {
		w, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return fmt.Errorf("judy: %w", err)
		}
		a.logWriter = w
		a.log.SetOutput(w)
	}

	ll, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("judy: %w", err)
	}
	a.log.SetLevel(ll)

	a.log.WithFields(log.Fields{
		"command":     cmd.Name(),
		"max_key_len": cfg.MaxKeyLen,
		"depth":       cfg.Depth,
	}).Debug("judy starting")
	return nil
}

func (a *app) postRun(cmd *cobra.Command, args []string) {
	a.log.WithField("command", cmd.Name()).Debug("judy done")

	if a.logWriter != nil {
		a.logWriter.Close()
		a.logWriter = nil
	}
}
