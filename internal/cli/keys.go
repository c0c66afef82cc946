// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/k33nice/judy"
)

// parseKey turns a line of input into a key. Variable length keys are
// taken verbatim; fixed width keys are written as whitespace separated
// unsigned integers, one per word.
func parseKey(codec judy.Codec, text string) (judy.Key, error) {
	if !codec.Fixed() {
		return judy.Key(text), nil
	}

	fields := strings.Fields(text)
	words := make([]uint64, len(fields))
	for i, f := range fields {
		w, err := strconv.ParseUint(f, 0, 64)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return codec.EncodeWords(words...)
}

// formatKey is the inverse of parseKey.
func formatKey(codec judy.Codec, key judy.Key) string {
	if !codec.Fixed() {
		return string(key)
	}
	words, err := codec.DecodeWords(key)
	if err != nil {
		return fmt.Sprintf("%x", key)
	}
	fields := make([]string, len(words))
	for i, w := range words {
		fields[i] = strconv.FormatUint(w, 10)
	}
	return strings.Join(fields, " ")
}

// loadArray opens an array and inserts the non-empty lines of every file,
// each under its line number counted across all files.
func (a *app) loadArray(paths []string) (*judy.Array, error) {
	arr, err := a.cfg.Open(a.log)
	if err != nil {
		return nil, err
	}

	var line judy.Value
	for _, path := range paths {
		if err := a.loadFile(arr, path, &line); err != nil {
			arr.Close()
			return nil, err
		}
	}

	a.log.WithFields(log.Fields{
		"files": len(paths),
		"lines": line,
		"keys":  arr.Len(),
	}).Info("keys loaded")
	return arr, nil
}

func (a *app) loadFile(arr *judy.Array, path string, line *judy.Value) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), arr.MaxKeyLen()+bufio.MaxScanTokenSize)
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if text == "" {
			continue
		}
		key, err := parseKey(arr.Codec(), text)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
		*line++
		if err := arr.Insert(key, *line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
	}
	return sc.Err()
}
