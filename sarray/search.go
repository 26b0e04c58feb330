// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sarray

import "sort"

// Lookup finds all occurrences of the raw pattern in the indexed sequence.
// The pattern is coded by the alphabet of the Index; if it contains a letter
// outside of the alphabet, then Lookup returns an error matching
// alphabet.ErrInvalidSymbol.
func (x *Index) Lookup(pattern []byte) (Matches, error) {
	p, err := x.alpha.Encode(make([]byte, 0, len(pattern)), pattern)
	if err != nil {
		return Matches{}, err
	}
	return x.LookupCoded(p), nil
}

// LookupCoded finds all occurrences of a pattern already coded by the
// alphabet of the Index.
//
// The empty pattern is a prefix of every suffix, including the suffix that
// consists only of the sentinel, so it matches every offset in [0, Len()].
func (x *Index) LookupCoded(p []byte) Matches {
	lo, hi := x.Range(p)
	return Matches{sa: x.sa[lo:hi], lo: lo}
}

// Range reports the span [lo, hi) of suffix array entries whose suffixes
// have the coded pattern p as a prefix. The span is empty when lo == hi.
// It runs in O(len(p) * log(Len())) time.
func (x *Index) Range(p []byte) (lo, hi int) {
	lo = sort.Search(len(x.sa), func(i int) bool {
		return x.compare(int(x.sa[i]), p) >= 0
	})
	hi = lo + sort.Search(len(x.sa)-lo, func(i int) bool {
		return x.compare(int(x.sa[lo+i]), p) > 0
	})
	return lo, hi
}

// compare compares the suffix at offset s, truncated to len(p) symbols,
// against p. A suffix shorter than p that agrees on all of its symbols is
// the smaller of the two.
func (x *Index) compare(s int, p []byte) int {
	t := x.text[s:]
	for i, c := range p {
		switch {
		case i >= len(t):
			return -1
		case t[i] < c:
			return -1
		case t[i] > c:
			return +1
		}
	}
	return 0
}

// Matches is a restartable sequence of the offsets at which a pattern occurs.
//
// Offsets are reported in suffix array order, which is generally not the
// order in which they appear in the sequence.
type Matches struct {
	sa  []int32 // Suffix array entries within the match range
	lo  int     // Suffix array index of sa[0]
	pos int     // Index into sa of the next offset to report
}

// Next reports the next offset. It reports false once all offsets have been
// reported.
func (m *Matches) Next() (int, bool) {
	if m.pos >= len(m.sa) {
		return -1, false
	}
	p := m.sa[m.pos]
	m.pos++
	return int(p), true
}

// Reset restarts the sequence from the first offset.
func (m *Matches) Reset() { m.pos = 0 }

// Len reports the total number of offsets.
func (m *Matches) Len() int { return len(m.sa) }

// Range reports the span [lo, hi) of suffix array indexes that matched.
func (m *Matches) Range() (lo, hi int) { return m.lo, m.lo + len(m.sa) }

// AppendTo appends all offsets to dst, regardless of the position of Next.
func (m *Matches) AppendTo(dst []int) []int {
	for _, p := range m.sa {
		dst = append(dst, int(p))
	}
	return dst
}
