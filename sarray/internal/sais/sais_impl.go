// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sais

type symbol interface {
	~byte | ~int32
}

// computeSA fills sa with the suffix array of text, whose symbols are all
// within [0, k) and whose final symbol is the unique minimum.
//
// The slice sa doubles as the working memory for the reduced problem: the
// reduced text lives in the tail of sa while its suffix array is computed in
// the head. Since no two LMS positions are adjacent, the reduced text is at
// most half the length of text and the two halves never overlap.
func computeSA[T symbol](text []T, sa []int32, k int) {
	n := len(text)
	switch n {
	case 0:
		return
	case 1:
		sa[0] = 0
		return
	}

	// Classify each suffix as S-type (true) or L-type (false).
	stype := make([]bool, n)
	stype[n-1] = true
	for i := n - 2; i >= 0; i-- {
		stype[i] = text[i] < text[i+1] || (text[i] == text[i+1] && stype[i+1])
	}

	cnt := make([]int32, k)
	bkt := make([]int32, k)
	for _, c := range text {
		cnt[int(c)]++
	}

	// Stage 1: sort all LMS-substrings by induction from their bucket ends.
	for i := range sa {
		sa[i] = -1
	}
	bucketEnds(cnt, bkt)
	for i := 1; i < n; i++ {
		if isLMS(stype, i) {
			c := int(text[i])
			bkt[c]--
			sa[bkt[c]] = int32(i)
		}
	}
	induce(text, sa, stype, cnt, bkt)

	// Stage 2: name the sorted LMS-substrings and solve the reduced problem.
	var n1 int
	for i := 0; i < n; i++ {
		if isLMS(stype, int(sa[i])) {
			sa[n1] = sa[i]
			n1++
		}
	}
	for i := n1; i < n; i++ {
		sa[i] = -1
	}
	var name int32
	prev := -1
	for i := 0; i < n1; i++ {
		pos := int(sa[i])
		if prev < 0 || !equalLMS(text, stype, pos, prev) {
			name++
			prev = pos
		}
		sa[n1+pos/2] = name - 1
	}
	j := n - 1
	for i := n - 1; i >= n1; i-- {
		if sa[i] >= 0 {
			sa[j] = sa[i]
			j--
		}
	}

	s1, sa1 := sa[n-n1:], sa[:n1]
	if int(name) < n1 {
		computeSA(s1, sa1, int(name))
	} else {
		for i, c := range s1 {
			sa1[c] = int32(i)
		}
	}

	// Stage 3: induce the full suffix array from the sorted LMS-suffixes.
	j = 0
	for i := 1; i < n; i++ {
		if isLMS(stype, i) {
			s1[j] = int32(i)
			j++
		}
	}
	for i := range sa1 {
		sa1[i] = s1[sa1[i]]
	}
	for i := n1; i < n; i++ {
		sa[i] = -1
	}
	bucketEnds(cnt, bkt)
	for i := n1 - 1; i >= 0; i-- {
		p := sa[i]
		sa[i] = -1
		c := int(text[p])
		bkt[c]--
		sa[bkt[c]] = p
	}
	induce(text, sa, stype, cnt, bkt)
}

// induce places the L-type suffixes with a forward scan from the bucket
// starts, and then the S-type suffixes with a backward scan from the bucket
// ends.
func induce[T symbol](text []T, sa []int32, stype []bool, cnt, bkt []int32) {
	bucketStarts(cnt, bkt)
	for i := 0; i < len(sa); i++ {
		if j := sa[i] - 1; j >= 0 && !stype[j] {
			c := int(text[j])
			sa[bkt[c]] = j
			bkt[c]++
		}
	}
	bucketEnds(cnt, bkt)
	for i := len(sa) - 1; i >= 0; i-- {
		if j := sa[i] - 1; j >= 0 && stype[j] {
			c := int(text[j])
			bkt[c]--
			sa[bkt[c]] = j
		}
	}
}

// equalLMS reports whether the LMS-substrings starting at a and b are equal.
// The unique sentinel guarantees a mismatch before either runs off the end.
func equalLMS[T symbol](text []T, stype []bool, a, b int) bool {
	for d := 0; ; d++ {
		if text[a+d] != text[b+d] || stype[a+d] != stype[b+d] {
			return false
		}
		if d > 0 && (isLMS(stype, a+d) || isLMS(stype, b+d)) {
			return true
		}
	}
}

func isLMS(stype []bool, i int) bool {
	return i > 0 && stype[i] && !stype[i-1]
}

func bucketStarts(cnt, bkt []int32) {
	var sum int32
	for i, c := range cnt {
		bkt[i] = sum
		sum += c
	}
}

func bucketEnds(cnt, bkt []int32) {
	var sum int32
	for i, c := range cnt {
		sum += c
		bkt[i] = sum
	}
}
