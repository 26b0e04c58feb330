// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package align reports the exact occurrences of reads within a collection
// of indexed reference sequences.
//
// Every read is searched for in every reference, in collection order, and
// one Record is produced per occurrence. Occurrences are not deduplicated:
// a read found k times yields k records. Only full-length exact matches are
// reported, so the CIGAR string of every record is "<len>M".
package align

import (
	"context"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/fastq"
	"github.com/dsnet/saalign/refset"
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "align: " + string(e) }

var ErrEmptyRead error = Error("empty read")

// Record is a single exact occurrence of a read.
type Record struct {
	ReadName string
	RefName  string
	Pos      int    // 0-based offset of the occurrence in the reference
	Cigar    string // Always the full read length as matches
	Seq      []byte // Read sequence as given
	Qual     []byte // Read qualities as given; may be nil
}

// Cigar returns the CIGAR string of an exact, full-length match of n letters.
func Cigar(n int) string { return strconv.Itoa(n) + "M" }

// ReadSource is a source of reads, such as a *fastq.Reader.
type ReadSource interface {
	// Next returns the next read or io.EOF when no reads remain.
	Next() (fastq.Record, error)
}

// RecordWriter is a destination of records, such as a *sam.Writer.
type RecordWriter interface {
	WriteRecord(*Record) error
}

// Options configures an Aligner.
type Options struct {
	// Logger receives messages about skipped reads.
	// If nil, nothing is logged.
	Logger *log.Logger
}

// Stats summarizes a run of an Aligner.
type Stats struct {
	Reads   int64 // Reads consumed
	Aligned int64 // Reads with at least one occurrence
	Skipped int64 // Reads rejected as empty or containing invalid letters
	Records int64 // Records produced
}

// Aligner searches for reads in a Collection.
// An Aligner must not be used concurrently; the underlying Collection may be
// shared by any number of Aligners.
type Aligner struct {
	refs *refset.Collection
	lg   *log.Logger
	buf  []byte // Coded read
}

// New returns an Aligner over refs.
func New(refs *refset.Collection, opts Options) *Aligner {
	lg := opts.Logger
	if lg == nil {
		lg = log.New(io.Discard)
	}
	return &Aligner{refs: refs, lg: lg}
}

// Align calls emit once for every occurrence of read in every reference and
// reports the number of records emitted.
//
// A read that is empty or that contains letters outside of the alphabet of
// the collection emits nothing and reports ErrEmptyRead or an error matching
// alphabet.ErrInvalidSymbol. The Record passed to emit is reused between
// calls and must not be retained. An error from emit stops the search and is
// returned as is.
func (a *Aligner) Align(read fastq.Record, emit func(*Record) error) (int, error) {
	if len(read.Seq) == 0 {
		return 0, ErrEmptyRead
	}
	p, err := a.refs.Alphabet().Encode(a.buf[:0], read.Seq)
	if err != nil {
		return 0, err
	}
	a.buf = p

	var cnt int
	rec := Record{ReadName: read.Name, Cigar: Cigar(len(read.Seq)), Seq: read.Seq, Qual: read.Qual}
	for i := 0; i < a.refs.Len(); i++ {
		e := a.refs.At(i)
		m := e.Index.LookupCoded(p)
		for pos, ok := m.Next(); ok; pos, ok = m.Next() {
			rec.RefName, rec.Pos = e.Name, pos
			if err := emit(&rec); err != nil {
				return cnt, err
			}
			cnt++
		}
	}
	return cnt, nil
}

// Run aligns every read from src and writes the records to dst.
//
// Reads rejected by Align are skipped and the run continues. Errors reading
// from src or writing to dst, as well as cancellation of ctx, stop the run.
func (a *Aligner) Run(ctx context.Context, src ReadSource, dst RecordWriter) (Stats, error) {
	var st Stats
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		read, err := src.Next()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, errors.Wrapf(err, "reading read %d", st.Reads+1)
		}
		st.Reads++

		n, err := a.Align(read, dst.WriteRecord)
		switch {
		case err == ErrEmptyRead:
			a.lg.Debug("skipping empty read", "read", read.Name)
			st.Skipped++
			continue
		case errors.Is(err, alphabet.ErrInvalidSymbol):
			a.lg.Warn("skipping read", "read", read.Name, "err", err)
			st.Skipped++
			continue
		case err != nil:
			return st, errors.Wrapf(err, "writing records for %s", read.Name)
		}
		st.Records += int64(n)
		if n > 0 {
			st.Aligned++
		}
	}
}
