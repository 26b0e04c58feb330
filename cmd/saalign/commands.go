// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/dsnet/saalign/align"
	"github.com/dsnet/saalign/fastq"
	"github.com/dsnet/saalign/internal/xio"
	"github.com/dsnet/saalign/refset"
	"github.com/dsnet/saalign/sam"
)

// runAlign aligns every read in the reads file against genome and writes
// the records to out.
func runAlign(ctx context.Context, cfg Config, lg *log.Logger, genome, reads, out, cmdline string) (st align.Stats, err error) {
	start := time.Now()
	refs, err := loadReferences(ctx, cfg, lg, genome)
	if err != nil {
		return st, err
	}
	size, err := cfg.bufferSize()
	if err != nil {
		return st, err
	}

	rc, err := xio.Open(reads)
	if err != nil {
		return st, err
	}
	defer rc.Close()

	wc, err := xio.Create(out)
	if err != nil {
		return st, err
	}
	defer func() {
		if cerr := wc.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", out)
		}
	}()

	sw := sam.NewWriter(wc, sam.Options{
		Simple:         cfg.Format == formatSimple,
		BufferSize:     size,
		Program:        "saalign",
		ProgramVersion: version,
		CommandLine:    cmdline,
	})
	if cfg.Header {
		if err := sw.WriteHeader(sam.References(refs)); err != nil {
			return st, errors.Wrapf(err, "writing %s", out)
		}
	}

	a := align.New(refs, align.Options{Logger: lg})
	st, err = a.Run(ctx, fastq.NewReader(rc), sw)
	if err != nil {
		return st, err
	}
	if err := sw.Flush(); err != nil {
		return st, errors.Wrapf(err, "writing %s", out)
	}
	lg.Info("aligned reads",
		"reads", humanize.Comma(st.Reads),
		"aligned", humanize.Comma(st.Aligned),
		"skipped", humanize.Comma(st.Skipped),
		"records", humanize.Comma(st.Records),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return st, nil
}

// runIndex builds the references in genome and writes them as an index file.
func runIndex(ctx context.Context, cfg Config, lg *log.Logger, genome, out string) (err error) {
	refs, err := loadReferences(ctx, cfg, lg, genome)
	if err != nil {
		return err
	}
	wc, err := xio.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", out)
		}
	}()

	bw := bufio.NewWriterSize(wc, 1<<16)
	n, err := refs.WriteTo(bw)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", out)
	}
	lg.Info("wrote index", "path", out, "size", humanize.Bytes(uint64(n)))
	return nil
}

// runStats writes a table describing every reference in genome to w.
func runStats(ctx context.Context, cfg Config, lg *log.Logger, genome string, w io.Writer) error {
	refs, err := loadReferences(ctx, cfg, lg, genome)
	if err != nil {
		return err
	}
	writeStats(w, refs)
	return nil
}

func writeStats(w io.Writer, refs *refset.Collection) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Name", "Length", "Index Size"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := 0; i < refs.Len(); i++ {
		e := refs.At(i)
		table.Append([]string{
			strconv.Itoa(i + 1),
			e.Name,
			humanize.Comma(int64(e.Index.Len())),
			humanize.Bytes(uint64(e.Index.Size())),
		})
	}
	table.SetFooter([]string{
		"",
		"Total",
		humanize.Comma(refs.TotalLen()),
		humanize.Bytes(uint64(refs.Size())),
	})
	table.Render()
}
