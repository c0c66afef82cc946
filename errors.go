// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import "errors"

// Errors returned by the array. Lookup misses and the end of iteration
// are not errors: they are reported as nil slots or false results.
var (
	ErrKeyTooLong    = errors.New("judy: key exceeds maximum key length")
	ErrInvalidValue  = errors.New("judy: zero value cannot be stored")
	ErrAllocation    = errors.New("judy: node store exhausted")
	ErrNotFound      = errors.New("judy: cursor is not positioned")
	ErrShortBuffer   = errors.New("judy: key buffer too small")
	ErrInvalidConfig = errors.New("judy: invalid array configuration")
	ErrWordOverflow  = errors.New("judy: word does not fit key width")
	ErrClosed        = errors.New("judy: array is closed")
)
