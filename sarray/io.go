// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sarray

import (
	"encoding/binary"
	"io"

	"github.com/dsnet/golib/errs"
	"github.com/dsnet/saalign/alphabet"
)

// The serialized form of an Index is:
//	n    uint64            Number of letters
//	text [n+1]byte         Coded text, including the sentinel
//	sa   [n+1]int32        Suffix array
// All integers are little-endian.

const chunkSize = 1 << 12 // Suffix array entries per write

// WriteTo writes the serialized Index to w.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	var cnt int64
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(x.Len()))
	n, err := w.Write(hdr[:])
	cnt += int64(n)
	if err != nil {
		return cnt, err
	}
	n, err = w.Write(x.text)
	cnt += int64(n)
	if err != nil {
		return cnt, err
	}

	var buf [4 * chunkSize]byte
	for sa := x.sa; len(sa) > 0; {
		k := len(sa)
		if k > chunkSize {
			k = chunkSize
		}
		for i, p := range sa[:k] {
			binary.LittleEndian.PutUint32(buf[4*i:], uint32(p))
		}
		n, err = w.Write(buf[:4*k])
		cnt += int64(n)
		if err != nil {
			return cnt, err
		}
		sa = sa[k:]
	}
	return cnt, nil
}

// ReadIndex reads an Index written by WriteTo. The text must be coded by
// alpha. The loaded Index is verified before it is returned; any structural
// inconsistency is reported as ErrCorrupt.
func ReadIndex(r io.Reader, alpha *alphabet.Alphabet) (x *Index, err error) {
	defer func() {
		if err != nil {
			x = nil
		}
	}()
	defer errs.Recover(&err)

	var hdr [8]byte
	readFull(r, hdr[:])
	n := binary.LittleEndian.Uint64(hdr[:])
	errs.Assert(n <= MaxLen, ErrCorrupt)

	// Grow only as data arrives; a corrupt length fails with EOF.
	x = &Index{alpha: alpha}
	for m := int(n) + 1; len(x.text) < m; {
		k := min(m-len(x.text), 1<<20)
		x.text = append(x.text, make([]byte, k)...)
		readFull(r, x.text[len(x.text)-k:])
	}

	var buf [4 * chunkSize]byte
	for m := int(n) + 1; len(x.sa) < m; {
		k := min(m-len(x.sa), chunkSize)
		readFull(r, buf[:4*k])
		for i := 0; i < k; i++ {
			x.sa = append(x.sa, int32(binary.LittleEndian.Uint32(buf[4*i:])))
		}
	}
	errs.Panic(x.Verify())
	return x, nil
}

func readFull(r io.Reader, b []byte) {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		errs.Panic(err)
	}
}
