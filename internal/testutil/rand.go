// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand implements a deterministic pseudo-random number generator.
// This differs from the math.Rand in that the exact output will be consistent
// across different versions of Go.
type Rand struct {
	cipher.Block
	blk [aes.BlockSize]byte
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	r, _ := aes.NewCipher(key[:])
	return &Rand{Block: r}
}

func (r *Rand) Int() (x int) {
	r.Encrypt(r.blk[:], r.blk[:])
	x |= int(r.blk[0]) << 0
	x |= int(r.blk[1]) << 8
	x |= int(r.blk[2]) << 16
	x |= int(r.blk[3]) << 24
	x |= int(r.blk[4]) << 32
	x |= int(r.blk[5]) << 40
	x |= int(r.blk[6]) << 48
	x |= int(r.blk[7]&0x3f) << 56
	return x
}

func (r *Rand) Intn(n int) int {
	return r.Int() % n
}

// Letters returns n letters drawn uniformly from letters.
func (r *Rand) Letters(n int, letters string) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[r.Intn(len(letters))]
	}
	return b
}

// DNA returns a random nucleotide sequence over "acgt".
func (r *Rand) DNA(n int) []byte {
	return r.Letters(n, "acgt")
}

// Repeats returns a sequence of length n over letters built mostly from
// copies of earlier parts of itself. Such sequences have long runs of shared
// prefixes between suffixes, which stresses suffix sorting.
func (r *Rand) Repeats(n int, letters string) []byte {
	b := make([]byte, 0, n)
	for len(b) < n {
		if len(b) < 8 || r.Intn(4) == 0 {
			b = append(b, letters[r.Intn(len(letters))])
			continue
		}
		dist := 1 + r.Intn(len(b))
		cnt := 1 + r.Intn(64)
		for i := 0; i < cnt && len(b) < n; i++ {
			b = append(b, b[len(b)-dist])
		}
	}
	return b
}

// Sample returns a random substring of b with length n.
func (r *Rand) Sample(b []byte, n int) []byte {
	if n > len(b) {
		n = len(b)
	}
	i := r.Intn(len(b) - n + 1)
	return b[i : i+n]
}
