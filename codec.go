// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package judy

import (
	"encoding/binary"
	"fmt"
)

// Codec maps caller keys onto the byte paths stored in the trie.
//
// With a zero depth keys are variable length strings of at most maxKeyLen
// bytes; the length always comes from the slice, never from a terminator,
// so zero bytes are legal inside a key.
//
// With a non-zero depth keys are fixed width: every stored key is exactly
// maxKeyLen bytes, made of maxKeyLen/depth big-endian words of depth bytes
// each. Shorter keys are left-padded with zero bytes, which keeps the
// numeric order of the words.
type Codec struct {
	maxKeyLen int
	depth     int
}

// NewCodec validates the key geometry.
func NewCodec(maxKeyLen, depth int) (Codec, error) {
	if maxKeyLen < 0 {
		return Codec{}, fmt.Errorf("%w: negative max key length %d", ErrInvalidConfig, maxKeyLen)
	}
	switch depth {
	case 0:
	case 1, 2, 4, 8:
		if maxKeyLen == 0 || maxKeyLen%depth != 0 {
			return Codec{}, fmt.Errorf("%w: max key length %d is not a multiple of depth %d",
				ErrInvalidConfig, maxKeyLen, depth)
		}
	default:
		return Codec{}, fmt.Errorf("%w: depth %d, want 0, 1, 2, 4 or 8", ErrInvalidConfig, depth)
	}
	return Codec{maxKeyLen: maxKeyLen, depth: depth}, nil
}

// MaxKeyLen returns the longest key the codec accepts.
func (c Codec) MaxKeyLen() int { return c.maxKeyLen }

// Depth returns the word width in bytes, or 0 for variable length keys.
func (c Codec) Depth() int { return c.depth }

// Fixed reports whether keys are fixed width.
func (c Codec) Fixed() bool { return c.depth > 0 }

// Encode validates key and returns its stored form. Variable length keys
// are returned as is.
func (c Codec) Encode(key []byte) (Key, error) {
	if len(key) > c.maxKeyLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrKeyTooLong, len(key), c.maxKeyLen)
	}
	if !c.Fixed() || len(key) == c.maxKeyLen {
		return key, nil
	}
	padded := make([]byte, c.maxKeyLen)
	copy(padded[c.maxKeyLen-len(key):], key)
	return padded, nil
}

// EncodeWords packs words into a fixed width key.
func (c Codec) EncodeWords(words ...uint64) (Key, error) {
	if !c.Fixed() {
		return nil, fmt.Errorf("%w: words need a fixed width codec", ErrInvalidConfig)
	}
	if len(words)*c.depth > c.maxKeyLen {
		return nil, fmt.Errorf("%w: %d words of %d bytes", ErrKeyTooLong, len(words), c.depth)
	}

	key := make([]byte, c.maxKeyLen)
	off := c.maxKeyLen - len(words)*c.depth
	for _, w := range words {
		if c.depth < 8 && w>>(8*uint(c.depth)) != 0 {
			return nil, fmt.Errorf("%w: %#x in %d bytes", ErrWordOverflow, w, c.depth)
		}
		putWord(key[off:off+c.depth], w)
		off += c.depth
	}
	return key, nil
}

// DecodeWords splits a fixed width key into its words.
func (c Codec) DecodeWords(key []byte) ([]uint64, error) {
	if !c.Fixed() {
		return nil, fmt.Errorf("%w: words need a fixed width codec", ErrInvalidConfig)
	}
	key, err := c.Encode(key)
	if err != nil {
		return nil, err
	}

	words := make([]uint64, 0, c.maxKeyLen/c.depth)
	for off := 0; off < len(key); off += c.depth {
		words = append(words, getWord(key[off:off+c.depth]))
	}
	return words, nil
}

// EncodeUint64 returns the key of a single integer.
func (c Codec) EncodeUint64(v uint64) (Key, error) {
	return c.EncodeWords(v)
}

// DecodeUint64 returns the integer held in the trailing 8 bytes of key.
func (c Codec) DecodeUint64(key []byte) (uint64, error) {
	key, err := c.Encode(key)
	if err != nil {
		return 0, err
	}
	if len(key) < 8 {
		var buf [8]byte
		copy(buf[8-len(key):], key)
		return binary.BigEndian.Uint64(buf[:]), nil
	}
	return binary.BigEndian.Uint64(key[len(key)-8:]), nil
}

func putWord(dst []byte, w uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(w)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(w))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(w))
	case 8:
		binary.BigEndian.PutUint64(dst, w)
	}
}

func getWord(src []byte) uint64 {
	switch len(src) {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(src))
	case 4:
		return uint64(binary.BigEndian.Uint32(src))
	case 8:
		return binary.BigEndian.Uint64(src)
	}
	return 0
}
