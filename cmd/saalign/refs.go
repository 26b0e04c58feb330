// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bufio"
	"context"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/dsnet/saalign/fasta"
	"github.com/dsnet/saalign/internal/xio"
	"github.com/dsnet/saalign/refset"
)

var errNoReferences = errors.New("no reference sequence was indexed")

// loadReferences reads the genome at path, which is either a FASTA file or
// an index file written by the index command, possibly compressed.
func loadReferences(ctx context.Context, cfg Config, lg *log.Logger, path string) (*refset.Collection, error) {
	alpha, err := cfg.alphabet()
	if err != nil {
		return nil, err
	}
	rc, err := xio.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 1<<16)
	hdr, _ := br.Peek(4)

	var c *refset.Collection
	if refset.IsIndexFile(hdr) {
		c, err = refset.ReadCollection(br, alpha)
		if err != nil {
			return nil, errors.Wrapf(err, "reading index %s", path)
		}
		lg.Info("loaded reference index", "path", path,
			"references", c.Len(),
			"letters", humanize.Comma(c.TotalLen()))
	} else {
		opts := refset.Options{Workers: cfg.workers(), Logger: lg}
		c, _, err = refset.Load(ctx, alpha, fasta.NewReader(br), opts)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
	}
	if c.Len() == 0 {
		return nil, errors.Wrap(errNoReferences, path)
	}
	return c, nil
}
