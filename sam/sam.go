// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package sam writes alignment records in the SAM text format.
//
// Every record is written as an unpaired, forward-strand alignment:
//
//	QNAME  0  RNAME  POS  0  CIGAR  *  0  0  SEQ  QUAL
//
// where POS is 1-based and QUAL is "*" when the read has no qualities.
// Header lines and records are formatted by the biogo hts SAM package, so
// SEQ is written in upper case and letters outside the SAM nucleotide set
// are written as 'N'.
//
// The simple format instead writes only the five columns
//
//	QNAME  RNAME  POS  CIGAR  SEQ
//
// with the same 1-based POS and SEQ exactly as read.
package sam

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	htssam "github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"github.com/dsnet/saalign/align"
	"github.com/dsnet/saalign/refset"
)

// Version is the SAM format version written in the header.
const Version = "1.6"

// nucleotides is the set of SEQ letters SAM can represent.
const nucleotides = "=ACMGRSVTWYHKDBN"

// Options configures a Writer.
type Options struct {
	// Simple selects the five column format.
	Simple bool

	// BufferSize is the size of the output buffer. If zero, a default is used.
	BufferSize int

	// Program, if set, is recorded as the @PG line of the header.
	Program, ProgramVersion, CommandLine string
}

// Reference describes a reference sequence in the header.
type Reference struct {
	Name string
	Len  int
}

// Writer writes records to an underlying io.Writer.
// Output is buffered; Flush must be called once writing is done.
type Writer struct {
	bw   *bufio.Writer
	opts Options
	hdr  *htssam.Header
	refs map[string]*htssam.Reference
	buf  []byte
	seq  []byte
	qual []byte
	err  error // Persistent error
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer, opts Options) *Writer {
	size := opts.BufferSize
	if size <= 0 {
		size = 1 << 16
	}
	hdr, _ := htssam.NewHeader(nil, nil) // Never fails without text
	hdr.Version = Version
	hdr.SortOrder = htssam.Unsorted
	return &Writer{
		bw:   bufio.NewWriterSize(w, size),
		opts: opts,
		hdr:  hdr,
		refs: make(map[string]*htssam.Reference),
	}
}

// WriteHeader writes the header lines describing refs.
// References of zero length and repeated names are not listed, since SAM
// requires a positive LN and unique SN.
// The simple format has no header and WriteHeader writes nothing.
func (sw *Writer) WriteHeader(refs []Reference) error {
	if sw.opts.Simple {
		return nil
	}
	if sw.err != nil {
		return sw.err
	}
	for _, r := range refs {
		if r.Len <= 0 || sw.refs[r.Name] != nil {
			continue
		}
		if _, err := sw.reference(r.Name, r.Len); err != nil {
			return err
		}
	}
	if sw.opts.Program != "" {
		p := htssam.NewProgram(sw.opts.Program, sw.opts.Program, sw.opts.CommandLine, "", sw.opts.ProgramVersion)
		if err := sw.hdr.AddProgram(p); err != nil {
			return errors.Wrap(err, "sam: invalid program")
		}
	}
	b, err := sw.hdr.MarshalText()
	if err != nil {
		return errors.Wrap(err, "sam: invalid header")
	}
	return sw.write(b)
}

// reference returns the header reference called name, adding it if needed.
func (sw *Writer) reference(name string, length int) (*htssam.Reference, error) {
	if ref := sw.refs[name]; ref != nil {
		return ref, nil
	}
	ref, err := htssam.NewReference(name, "", "", length, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "sam: invalid reference %q", name)
	}
	if err := sw.hdr.AddReference(ref); err != nil {
		return nil, errors.Wrapf(err, "sam: invalid reference %q", name)
	}
	sw.refs[name] = ref
	return ref, nil
}

// WriteRecord writes a single record.
func (sw *Writer) WriteRecord(r *align.Record) error {
	if sw.opts.Simple {
		return sw.writeSimple(r)
	}
	if sw.err != nil {
		return sw.err
	}

	// References unknown to the header only need to cover the record.
	ref, err := sw.reference(r.RefName, r.Pos+len(r.Seq))
	if err != nil {
		return err
	}
	cigar, err := htssam.ParseCigar([]byte(r.Cigar))
	if err != nil {
		return errors.Wrapf(err, "sam: invalid cigar %q", r.Cigar)
	}

	sw.seq = sw.seq[:0]
	for _, c := range r.Seq {
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		if strings.IndexByte(nucleotides, c) < 0 {
			c = 'N'
		}
		sw.seq = append(sw.seq, c)
	}
	var qual []byte
	if len(r.Qual) > 0 {
		sw.qual = sw.qual[:0]
		for _, q := range r.Qual {
			sw.qual = append(sw.qual, q-33)
		}
		qual = sw.qual
	}

	rec, err := htssam.NewRecord(r.ReadName, ref, nil, r.Pos, -1, 0, 0, cigar, sw.seq, qual, nil)
	if err != nil {
		return errors.Wrapf(err, "sam: invalid record %q", r.ReadName)
	}
	b, err := rec.MarshalText()
	if err != nil {
		return errors.Wrapf(err, "sam: invalid record %q", r.ReadName)
	}
	return sw.write(append(b, '\n'))
}

// writeSimple writes the five column form of r.
func (sw *Writer) writeSimple(r *align.Record) error {
	b := append(sw.buf[:0], r.ReadName...)
	b = append(b, '\t')
	b = append(b, r.RefName...)
	b = append(b, '\t')
	b = strconv.AppendInt(b, int64(r.Pos)+1, 10)
	b = append(b, '\t')
	b = append(b, r.Cigar...)
	b = append(b, '\t')
	b = append(b, r.Seq...)
	b = append(b, '\n')
	sw.buf = b
	return sw.write(b)
}

func (sw *Writer) write(b []byte) error {
	if sw.err != nil {
		return sw.err
	}
	_, sw.err = sw.bw.Write(b)
	return sw.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (sw *Writer) Flush() error {
	if sw.err != nil {
		return sw.err
	}
	sw.err = sw.bw.Flush()
	return sw.err
}

// References describes every entry of c, in order.
func References(c *refset.Collection) []Reference {
	refs := make([]Reference, c.Len())
	for i := range refs {
		e := c.At(i)
		refs[i] = Reference{Name: e.Name, Len: e.Index.Len()}
	}
	return refs
}
