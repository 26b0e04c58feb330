// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package sais implements a linear time suffix array algorithm.
package sais

// This package implements the Suffix Array by Induced Sorting (SA-IS)
// methodology by Nong, Zhang, and Chan. A single generic implementation in
// sais_impl.go serves both the byte-coded input texts and the int32-coded
// reduced texts produced during recursion.
//
// References:
//	https://sites.google.com/site/yuta256/sais
//	https://ge-nong.googlecode.com/files/Linear%20Time%20Suffix%20Array%20Construction%20Using%20D-Critical%20Substrings.pdf
//	https://ge-nong.googlecode.com/files/Two%20Efficient%20Algorithms%20for%20Linear%20Time%20Suffix%20Array%20Construction.pdf

// ComputeSA computes the suffix array of T and places the result in SA.
// Both T and SA must be the same length.
//
// Every symbol of T must be less than k. The final symbol of T must be a
// sentinel, strictly smaller than every other symbol in T.
func ComputeSA(T []byte, SA []int32, k int) {
	if len(SA) != len(T) {
		panic("mismatching sizes")
	}
	computeSA(T, SA, k)
}
