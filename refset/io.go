// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package refset

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"

	"github.com/dsnet/golib/errs"
	"github.com/dsnet/golib/hashutil"

	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/sarray"
)

// The index file format is:
//	magic    [4]byte         "SAIX"
//	version  uint8           Currently 1
//	flags    uint8           Bit 0 set if the alphabet folds case
//	nletters uint8
//	letters  [nletters]byte
//	count    uint32          Number of entries
//	entries  [count]entry
//	crc      uint32          CRC-32 of all entry bytes, excluding entry CRCs
//
// Each entry is:
//	nname    uint16
//	name     [nname]byte
//	index    ...             See sarray.Index.WriteTo
//	crc      uint32          CRC-32 of the entry bytes above
//
// All integers are little-endian.

const (
	magic   = "SAIX"
	version = 1

	flagFoldCase = 1 << 0
)

// IsIndexFile reports whether b begins with the index file magic.
func IsIndexFile(b []byte) bool {
	return len(b) >= len(magic) && string(b[:len(magic)]) == magic
}

// WriteTo writes the Collection in the index file format to w.
func (c *Collection) WriteTo(w io.Writer) (n int64, err error) {
	cw := &countWriter{w: w}
	defer func() { n = cw.n }()
	defer errs.Recover(&err)

	var flags byte
	if c.alpha.FoldsCase() {
		flags |= flagFoldCase
	}
	letters := c.alpha.Letters()
	hdr := append([]byte(magic), version, flags, byte(len(letters)))
	hdr = append(hdr, letters...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(c.entries)))
	writeFull(cw, hdr)

	var total uint32
	h := crc32.NewIEEE()
	for _, e := range c.entries {
		errs.Assert(len(e.Name) <= math.MaxUint16, Error("name too long: "+e.Name))
		h.Reset()
		hw := &countWriter{w: io.MultiWriter(cw, h)}
		var nb [2]byte
		binary.LittleEndian.PutUint16(nb[:], uint16(len(e.Name)))
		writeFull(hw, nb[:])
		writeFull(hw, []byte(e.Name))
		_, err := e.Index.WriteTo(hw)
		errs.Panic(err)

		crc := h.Sum32()
		total = hashutil.CombineCRC32(crc32.IEEE, total, crc, hw.n)
		writeFull(cw, binary.LittleEndian.AppendUint32(nil, crc))
	}
	writeFull(cw, binary.LittleEndian.AppendUint32(nil, total))
	return cw.n, nil
}

// ReadCollection reads a Collection in the index file format from r.
// The alphabet recorded in the file must equal alpha.
// Every entry is checksummed and verified before it is used.
func ReadCollection(r io.Reader, alpha *alphabet.Alphabet) (c *Collection, err error) {
	defer func() {
		if err != nil {
			c = nil
		}
	}()
	defer errs.Recover(&err)

	br := bufio.NewReaderSize(r, 1<<16)
	var hdr [7]byte
	readFull(br, hdr[:])
	errs.Assert(IsIndexFile(hdr[:]), ErrFormat)
	errs.Assert(hdr[4] == version, ErrVersion)
	letters := make([]byte, hdr[6])
	readFull(br, letters)

	var opts []alphabet.Option
	if hdr[5]&flagFoldCase != 0 {
		opts = append(opts, alphabet.FoldCase())
	}
	fileAlpha, err := alphabet.New(string(letters), opts...)
	errs.Assert(err == nil, ErrFormat)
	errs.Assert(fileAlpha.Equal(alpha), sarray.ErrAlphabetMismatch)

	count := readUint32(br)
	c = &Collection{alpha: alpha}
	var total uint32
	h := crc32.NewIEEE()
	for i := uint32(0); i < count; i++ {
		h.Reset()
		hr := &countReader{r: io.TeeReader(br, h)}
		var nb [2]byte
		readFull(hr, nb[:])
		name := make([]byte, binary.LittleEndian.Uint16(nb[:]))
		readFull(hr, name)
		x, err := sarray.ReadIndex(hr, alpha)
		errs.Panic(err)

		crc := h.Sum32()
		errs.Assert(readUint32(br) == crc, ErrChecksum)
		total = hashutil.CombineCRC32(crc32.IEEE, total, crc, hr.n)
		c.entries = append(c.entries, Entry{Name: string(name), Index: x})
	}
	errs.Assert(readUint32(br) == total, ErrChecksum)
	return c, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(b []byte) (int, error) {
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	return n, err
}

type countReader struct {
	r io.Reader
	n int64
}

func (cr *countReader) Read(b []byte) (int, error) {
	n, err := cr.r.Read(b)
	cr.n += int64(n)
	return n, err
}

func writeFull(w io.Writer, b []byte) {
	_, err := w.Write(b)
	errs.Panic(err)
}

func readFull(r io.Reader, b []byte) {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		errs.Panic(err)
	}
}

func readUint32(r io.Reader) uint32 {
	var b [4]byte
	readFull(r, b[:])
	return binary.LittleEndian.Uint32(b[:])
}
