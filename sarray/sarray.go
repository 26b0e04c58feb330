// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package sarray implements a suffix array index for exact pattern search.
//
// An Index holds a coded text, terminated by the alphabet's sentinel, along
// with its suffix array. The suffix array is built in linear time using the
// SA-IS algorithm. Once built, an Index is immutable and may be queried
// concurrently by multiple goroutines.
package sarray

import (
	"math"

	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/sarray/internal/sais"
)

// MaxLen is the maximum number of letters that an Index may hold.
const MaxLen = math.MaxInt32 - 1

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "sarray: " + string(e) }

var (
	ErrCorrupt          error = Error("index is corrupted")
	ErrTooLarge         error = Error("sequence is too large")
	ErrNoSentinel       error = Error("text is not terminated by a unique sentinel")
	ErrAlphabetMismatch error = Error("alphabet mismatch")
)

// Index is an immutable suffix array over a coded text.
type Index struct {
	alpha *alphabet.Alphabet
	text  []byte  // Coded text; text[len(text)-1] is the sentinel
	sa    []int32 // Suffix array of text
}

// New encodes seq using alpha and builds an Index over it.
// If seq contains a letter outside of alpha, then New returns an error
// matching alphabet.ErrInvalidSymbol and no Index.
func New(alpha *alphabet.Alphabet, seq []byte) (*Index, error) {
	if len(seq) > MaxLen {
		return nil, ErrTooLarge
	}
	text, err := alpha.EncodeText(seq)
	if err != nil {
		return nil, err
	}
	return build(alpha, text), nil
}

// NewCoded builds an Index over a text that is already coded by alpha and
// terminated by alphabet.Sentinel. The Index takes ownership of text.
func NewCoded(alpha *alphabet.Alphabet, text []byte) (*Index, error) {
	if err := checkText(alpha, text); err != nil {
		return nil, err
	}
	return build(alpha, text), nil
}

func build(alpha *alphabet.Alphabet, text []byte) *Index {
	sa := make([]int32, len(text))
	sais.ComputeSA(text, sa, alpha.Size())
	return &Index{alpha: alpha, text: text, sa: sa}
}

func checkText(alpha *alphabet.Alphabet, text []byte) error {
	if len(text) == 0 || text[len(text)-1] != alphabet.Sentinel {
		return ErrNoSentinel
	}
	if len(text)-1 > MaxLen {
		return ErrTooLarge
	}
	for i, c := range text[:len(text)-1] {
		if c == alphabet.Sentinel {
			return ErrNoSentinel
		}
		if int(c) > alpha.Len() {
			return &alphabet.InvalidSymbolError{Symbol: c, Offset: i}
		}
	}
	return nil
}

// Len reports the number of letters in the indexed sequence.
func (x *Index) Len() int { return len(x.text) - 1 }

// Alphabet reports the alphabet used to code the sequence.
func (x *Index) Alphabet() *alphabet.Alphabet { return x.alpha }

// At reports the offset of the i-th smallest suffix, for i in [0, Len()].
func (x *Index) At(i int) int { return int(x.sa[i]) }

// Sequence appends the decoded letters of the indexed sequence to dst.
func (x *Index) Sequence(dst []byte) []byte {
	dst, err := x.alpha.Decode(dst, x.text)
	if err != nil {
		panic(err) // Guaranteed valid by construction
	}
	return dst
}

// Size reports the approximate number of bytes held by the index.
func (x *Index) Size() int64 {
	return int64(len(x.text)) + 4*int64(len(x.sa))
}

// Verify checks that the suffix array is a permutation of all offsets into
// the text, that the sentinel suffix comes first, and that all suffixes are
// in lexicographic order. It runs in linear time by comparing each adjacent
// pair of suffixes only by their first symbol and the rank of their
// remainders.
//
// A failed verification reports ErrCorrupt and always indicates a defect.
func (x *Index) Verify() error {
	m := len(x.text)
	if m == 0 || len(x.sa) != m {
		return ErrCorrupt
	}
	if err := checkText(x.alpha, x.text); err != nil {
		return ErrCorrupt
	}
	rank := make([]int32, m)
	for i := range rank {
		rank[i] = -1
	}
	for i, p := range x.sa {
		if p < 0 || int(p) >= m || rank[p] >= 0 {
			return ErrCorrupt // Not a permutation
		}
		rank[p] = int32(i)
	}
	if int(x.sa[0]) != m-1 {
		return ErrCorrupt
	}
	for i := 1; i < m; i++ {
		a, b := x.sa[i-1], x.sa[i]
		switch ca, cb := x.text[a], x.text[b]; {
		case ca > cb:
			return ErrCorrupt
		case ca == cb && rank[a+1] > rank[b+1]:
			// Equal non-sentinel symbols; neither a nor b is the last offset.
			return ErrCorrupt
		}
	}
	return nil
}
