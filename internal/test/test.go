// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

// Package test holds helpers shared by the tests of the module.
package test

import (
	"bufio"
	"math/rand"
	"os"
)

// LoadTestFile returns the non-empty lines of the file at path. It panics
// if the file cannot be read.
func LoadTestFile(path string) [][]byte {
	f, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Bytes(); len(line) > 0 {
			lines = append(lines, append([]byte(nil), line...))
		}
	}
	if err := scanner.Err(); err != nil {
		panic(err)
	}
	return lines
}

// RandomKeys returns n random keys of 0 to maxLen bytes drawn from an
// alphabet of the given size starting at byte 0, so that keys share
// prefixes and contain zero bytes. Duplicates are possible.
func RandomKeys(rng *rand.Rand, n, maxLen, alphabet int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		key := make([]byte, rng.Intn(maxLen+1))
		for j := range key {
			key[j] = byte(rng.Intn(alphabet))
		}
		keys[i] = key
	}
	return keys
}
