// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package fasta reads FASTA formatted reference sequences.
//
// A FASTA file is a series of records, each a header line starting with '>'
// followed by any number of sequence lines:
//
//	>chr7 some description
//	ACGTAC
//	GAGGAC
//	>chr8
//	ACGT
//
// The name of a record is the header text up to the first whitespace; any
// remaining text is its description. Blank lines are ignored.
//
// Records are parsed by the biogo FASTA reader. This package feeds it one
// cleaned line at a time so that errors can name the offending line.
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/pkg/errors"
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "fasta: " + string(e) }

var ErrFormat error = Error("malformed input")

// Record is a single named sequence.
type Record struct {
	Name string
	Desc string
	Seq  []byte
}

// Reader reads records from an underlying io.Reader.
type Reader struct {
	lf  *lineFeeder
	br  *biofasta.Reader
	err error // Persistent error
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	lf := &lineFeeder{rd: bufio.NewReaderSize(r, 1<<16)}
	return &Reader{lf: lf, br: biofasta.NewReader(lf, linear.NewSeq("", nil, alphabet.DNA))}
}

// Next returns the next record. It returns io.EOF when no records remain.
// The returned record does not alias any internal buffers.
func (fr *Reader) Next() (Record, error) {
	if fr.err != nil {
		return Record{}, fr.err
	}
	rec, err := fr.next()
	if err != nil {
		fr.err = err
	}
	return rec, err
}

func (fr *Reader) next() (Record, error) {
	s, err := fr.br.Read()
	if fr.lf.err != nil && fr.lf.err != io.EOF {
		return Record{}, fr.lf.err // Any partial record is dropped
	}
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, errors.Wrapf(ErrFormat, "line %d: %v", fr.lf.line, err)
	}
	ls, ok := s.(*linear.Seq)
	if !ok || len(fr.lf.hdrs) == 0 {
		return Record{}, errors.Wrapf(ErrFormat, "line %d: unexpected record", fr.lf.line)
	}
	hdrLine := fr.lf.hdrs[0]
	fr.lf.hdrs = fr.lf.hdrs[1:]

	rec := Record{
		Name: ls.Name(),
		Desc: strings.TrimSpace(ls.Description()),
		Seq:  make([]byte, len(ls.Seq)),
	}
	for i, l := range ls.Seq {
		rec.Seq[i] = byte(l)
	}
	if len(rec.Name) == 0 {
		return Record{}, errors.Wrapf(ErrFormat, "line %d: empty record name", hdrLine)
	}
	return rec, nil
}

// lineFeeder is the io.Reader consumed by the biogo reader.
// Each Read returns at most one line, so the count of lines handed out
// is the line being parsed. Blank lines are dropped, trailing whitespace
// is trimmed, and headers are rewritten as ">name desc".
type lineFeeder struct {
	rd   *bufio.Reader
	line int   // Number of lines consumed
	hdrs []int // Line numbers of headers not yet returned as records
	seen bool  // Whether any header was read
	buf  []byte
	hdr  []byte
	pend []byte // Unread remainder of the current line
	err  error  // Persistent error
}

func (lf *lineFeeder) Read(p []byte) (int, error) {
	for len(lf.pend) == 0 {
		if lf.err != nil {
			return 0, lf.err
		}
		lf.advance()
	}
	n := copy(p, lf.pend)
	lf.pend = lf.pend[n:]
	return n, nil
}

// advance loads the next line into pend. Blank lines leave pend empty.
func (lf *lineFeeder) advance() {
	lf.buf = lf.buf[:0]
	for {
		line, err := lf.rd.ReadSlice('\n')
		lf.buf = append(lf.buf, line...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(lf.buf) > 0 {
			err = nil
		}
		if err != nil {
			lf.err = err
			return
		}
		break
	}
	lf.line++

	line := bytes.TrimRight(lf.buf, " \t\r\n")
	switch {
	case len(line) == 0:
	case line[0] == '>':
		name, desc := splitHeader(line[1:])
		b := append(append(lf.hdr[:0], '>'), name...)
		if len(desc) > 0 {
			b = append(append(b, ' '), desc...)
		}
		lf.hdr = append(b, '\n')
		lf.hdrs = append(lf.hdrs, lf.line)
		lf.seen = true
		lf.pend = lf.hdr
	case !lf.seen:
		lf.err = errors.Wrapf(ErrFormat, "line %d: sequence data before header", lf.line)
	default:
		lf.pend = append(line, '\n')
	}
}

func splitHeader(hdr []byte) (name, desc []byte) {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return hdr[:i], bytes.TrimSpace(hdr[i:])
	}
	return hdr, nil
}

// ReadAll reads all remaining records from r.
func ReadAll(r io.Reader) ([]Record, error) {
	fr := NewReader(r)
	var recs []Record
	for {
		rec, err := fr.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}
