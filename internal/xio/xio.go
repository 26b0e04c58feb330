// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package xio opens files with transparent compression.
//
// Reading detects gzip, zstd, xz, and bzip2 streams by their magic bytes.
// Writing selects a compressor by file extension. The path "-" refers to
// standard input or standard output.
package xio

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Format identifies a compression format.
type Format int

const (
	Raw Format = iota
	Gzip
	Zstd
	XZ
	BZip2
)

var formatNames = [...]string{"raw", "gzip", "zstd", "xz", "bzip2"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

var magics = []struct {
	format Format
	magic  []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{XZ, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{BZip2, []byte("BZh")},
}

// Detect reports the compression format of a stream beginning with b.
func Detect(b []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(b, m.magic) {
			return m.format
		}
	}
	return Raw
}

// FormatOf reports the compression format implied by the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".bgz":
		return Gzip
	case ".zst":
		return Zstd
	case ".xz":
		return XZ
	case ".bz2":
		return BZip2
	}
	return Raw
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() (err error) {
	for _, c := range rc.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens the named file for reading, decompressing it if needed.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return NewReader(io.NopCloser(os.Stdin))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return rc, nil
}

// NewReader returns a reader of the decompressed contents of r.
// Closing the returned reader closes r.
func NewReader(r io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	hdr, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, err
	}

	rc := &readCloser{closers: []io.Closer{r}}
	switch Detect(hdr) {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		rc.Reader = zr
		rc.closers = append([]io.Closer{zr}, rc.closers...)
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		zrc := zr.IOReadCloser()
		rc.Reader = zrc
		rc.closers = append([]io.Closer{zrc}, rc.closers...)
	case XZ:
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, err
		}
		rc.Reader = zr
	case BZip2:
		zr, err := bzip2.NewReader(br, nil)
		if err != nil {
			return nil, err
		}
		rc.Reader = zr
		rc.closers = append([]io.Closer{zr}, rc.closers...)
	default:
		rc.Reader = br
	}
	return rc, nil
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() (err error) {
	for _, c := range wc.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Create creates the named file for writing, compressing its contents in the
// format implied by its extension. The caller must Close the returned writer
// to flush all output.
func Create(path string) (io.WriteCloser, error) {
	if path == "-" {
		return NewWriter(nopWriteCloser{os.Stdout}, Raw)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wc, err := NewWriter(f, FormatOf(path))
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return wc, nil
}

// NewWriter returns a writer that compresses to w using format f.
// Closing the returned writer closes w.
func NewWriter(w io.WriteCloser, f Format) (io.WriteCloser, error) {
	wc := &writeCloser{closers: []io.Closer{w}}
	var zw io.WriteCloser
	switch f {
	case Raw:
		wc.Writer = w
		return wc, nil
	case Gzip:
		zw = gzip.NewWriter(w)
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		zw = enc
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, err
		}
		zw = xw
	case BZip2:
		bw, err := bzip2.NewWriter(w, nil)
		if err != nil {
			return nil, err
		}
		zw = bw
	default:
		return nil, errors.Errorf("xio: unknown format %d", int(f))
	}
	wc.Writer = zw
	wc.closers = append([]io.Closer{zw}, wc.closers...)
	return wc, nil
}
