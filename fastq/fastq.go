// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package fastq reads FASTQ formatted sequencing reads.
//
// Each record occupies four lines: a header starting with '@', the read
// sequence, a separator starting with '+', and a quality string of the same
// length as the sequence. The name of a read is the header text up to the
// first whitespace.
//
// Each record is checked for this layout and then decoded by the biogo FASTQ
// reader, with qualities interpreted in the Sanger encoding.
package fastq

import (
	"bufio"
	"bytes"
	"io"

	"github.com/biogo/biogo/alphabet"
	biofastq "github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/pkg/errors"
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "fastq: " + string(e) }

var ErrFormat error = Error("malformed input")

// Record is a single read.
type Record struct {
	Name string
	Seq  []byte
	Qual []byte // Nil when the source carries no qualities
}

// Reader reads records from an underlying io.Reader.
type Reader struct {
	rd   *bufio.Reader
	line int // Number of lines consumed
	rf   recordFeeder
	br   *biofastq.Reader
	err  error // Persistent error
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	qr := &Reader{rd: bufio.NewReaderSize(r, 1<<16)}
	qr.br = biofastq.NewReader(&qr.rf, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	return qr
}

// Next returns the next record. It returns io.EOF when no records remain.
// The returned record does not alias any internal buffers.
func (qr *Reader) Next() (Record, error) {
	if qr.err != nil {
		return Record{}, qr.err
	}
	rec, err := qr.next()
	if err != nil {
		qr.err = err
	}
	return rec, err
}

func (qr *Reader) next() (Record, error) {
	var hdr []byte
	for len(hdr) == 0 {
		line, err := qr.readLine()
		if err != nil {
			return Record{}, err // io.EOF only between records
		}
		hdr = line
	}
	if hdr[0] != '@' {
		return Record{}, qr.formatError("header line must start with '@'")
	}

	name := bytes.TrimSpace(hdr[1:])
	if i := bytes.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	b := append(append(qr.rf.buf[:0], '@'), name...)
	b = append(b, '\n')
	hlen := len(b)

	seq, err := qr.readRecordLine()
	if err != nil {
		return Record{}, err
	}
	b = append(append(b, seq...), "\n+\n"...)
	n := len(seq)

	sep, err := qr.readRecordLine()
	if err != nil {
		return Record{}, err
	}
	if len(sep) == 0 || sep[0] != '+' {
		return Record{}, qr.formatError("separator line must start with '+'")
	}

	qual, err := qr.readRecordLine()
	if err != nil {
		return Record{}, err
	}
	if len(qual) != n {
		return Record{}, qr.formatError("sequence and quality lengths differ")
	}
	for _, c := range qual {
		if c < '!' || c > '~' {
			return Record{}, qr.formatError("invalid quality character")
		}
	}
	if n == 0 {
		return Record{Name: string(b[1 : hlen-1]), Seq: []byte{}, Qual: []byte{}}, nil
	}
	b = append(append(b, qual...), '\n')
	qr.rf.buf, qr.rf.pend = b, b
	return qr.decode()
}

// decode parses the record held by the feeder.
func (qr *Reader) decode() (Record, error) {
	s, err := qr.br.Read()
	qr.rf.pend = nil
	if err != nil {
		return Record{}, qr.formatError(err.Error())
	}
	qs, ok := s.(*linear.QSeq)
	if !ok {
		return Record{}, qr.formatError("unexpected record")
	}
	rec := Record{
		Name: qs.Name(),
		Seq:  make([]byte, len(qs.Seq)),
		Qual: make([]byte, len(qs.Seq)),
	}
	for i, ql := range qs.Seq {
		rec.Seq[i] = byte(ql.L)
		rec.Qual[i] = ql.Q.Encode(alphabet.Sanger)
	}
	return rec, nil
}

// recordFeeder is the io.Reader consumed by the biogo reader.
// It holds exactly one validated record at a time.
type recordFeeder struct {
	buf  []byte
	pend []byte
}

func (rf *recordFeeder) Read(p []byte) (int, error) {
	if len(rf.pend) == 0 {
		return 0, io.EOF
	}
	n := copy(p, rf.pend)
	rf.pend = rf.pend[n:]
	return n, nil
}

func (qr *Reader) formatError(msg string) error {
	return errors.Wrapf(ErrFormat, "line %d: %s", qr.line, msg)
}

// readRecordLine reads a line within a record, where EOF is unexpected.
func (qr *Reader) readRecordLine() ([]byte, error) {
	line, err := qr.readLine()
	if err == io.EOF {
		return nil, qr.formatError("truncated record")
	}
	return line, err
}

// readLine reads a single line without its line terminator.
// The returned slice is only valid until the next call.
func (qr *Reader) readLine() ([]byte, error) {
	line, err := qr.rd.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		buf := append([]byte(nil), line...)
		for err == bufio.ErrBufferFull {
			line, err = qr.rd.ReadSlice('\n')
			buf = append(buf, line...)
		}
		line = buf
	}
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	qr.line++
	return bytes.TrimRight(line, "\r\n"), nil
}

// ReadAll reads all remaining records from r.
func ReadAll(r io.Reader) ([]Record, error) {
	qr := NewReader(r)
	var recs []Record
	for {
		rec, err := qr.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}
