// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package refset implements an ordered collection of indexed reference
// sequences.
//
// A Collection is populated exactly once by a Builder and is read-only from
// then on. Names need not be unique; a Collection is a list, not a map.
package refset

import (
	"context"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/sarray"
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "refset: " + string(e) }

var (
	ErrSealed   error = Error("builder already built")
	ErrFormat   error = Error("not an index file")
	ErrVersion  error = Error("unsupported index file version")
	ErrChecksum error = Error("index file checksum mismatch")
)

// Entry is a named, indexed reference sequence.
type Entry struct {
	Name  string
	Index *sarray.Index
}

// Collection is an ordered, immutable list of indexed reference sequences
// that share a single alphabet.
type Collection struct {
	alpha   *alphabet.Alphabet
	entries []Entry
}

// Len reports the number of entries.
func (c *Collection) Len() int { return len(c.entries) }

// At reports the i-th entry.
func (c *Collection) At(i int) Entry { return c.entries[i] }

// Alphabet reports the alphabet shared by all entries.
func (c *Collection) Alphabet() *alphabet.Alphabet { return c.alpha }

// Names reports the names of all entries in order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// TotalLen reports the total number of letters over all entries.
func (c *Collection) TotalLen() (n int64) {
	for _, e := range c.entries {
		n += int64(e.Index.Len())
	}
	return n
}

// Size reports the approximate number of bytes held by all indexes.
func (c *Collection) Size() (n int64) {
	for _, e := range c.entries {
		n += e.Index.Size()
	}
	return n
}

// Rejection records a reference sequence that could not be indexed.
type Rejection struct {
	Name string
	Err  error
}

func (r Rejection) Error() string { return "refset: rejected " + r.Name + ": " + r.Err.Error() }

func (r Rejection) Unwrap() error { return r.Err }

// Options configures construction of a Collection.
type Options struct {
	// Workers is the maximum number of indexes built concurrently.
	// If zero, runtime.GOMAXPROCS(0) is used.
	Workers int

	// Logger receives progress and rejection messages.
	// If nil, nothing is logged.
	Logger *log.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

type pending struct {
	name string
	seq  []byte
}

// Builder accumulates reference sequences and builds a Collection once.
type Builder struct {
	alpha   *alphabet.Alphabet
	opts    Options
	pending []pending
	sealed  bool
}

// NewBuilder returns a Builder for sequences over alpha.
func NewBuilder(alpha *alphabet.Alphabet, opts Options) *Builder {
	return &Builder{alpha: alpha, opts: opts}
}

// Add queues a reference sequence. The Builder retains seq until Build.
func (b *Builder) Add(name string, seq []byte) error {
	if b.sealed {
		return ErrSealed
	}
	b.pending = append(b.pending, pending{name, seq})
	return nil
}

// Build indexes all queued sequences, in parallel, and returns them as a
// Collection in the order they were added.
//
// A sequence that contains letters outside of the alphabet, or that is too
// large to index, is left out of the Collection and reported as a Rejection.
// Any other failure, including cancellation of ctx, aborts the build.
// The Builder cannot be used again after Build.
func (b *Builder) Build(ctx context.Context) (*Collection, []Rejection, error) {
	if b.sealed {
		return nil, nil, ErrSealed
	}
	b.sealed = true
	defer func() { b.pending = nil }()

	lg := b.opts.logger()
	idxs := make([]*sarray.Index, len(b.pending))
	fails := make([]error, len(b.pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.workers())
	for i := range b.pending {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := b.pending[i]
			x, err := sarray.New(b.alpha, p.seq)
			switch {
			case errors.Is(err, alphabet.ErrInvalidSymbol), errors.Is(err, sarray.ErrTooLarge):
				fails[i] = err
				return nil
			case err != nil:
				return errors.Wrapf(err, "indexing %s", p.name)
			}
			idxs[i] = x
			lg.Debug("indexed reference", "name", p.name, "length", humanize.Comma(int64(x.Len())))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	c := &Collection{alpha: b.alpha}
	var rejects []Rejection
	for i, p := range b.pending {
		if fails[i] != nil {
			lg.Warn("skipping reference", "name", p.name, "err", fails[i])
			rejects = append(rejects, Rejection{Name: p.name, Err: fails[i]})
			continue
		}
		c.entries = append(c.entries, Entry{Name: p.name, Index: idxs[i]})
	}
	lg.Info("built reference index",
		"references", len(c.entries),
		"rejected", len(rejects),
		"letters", humanize.Comma(c.TotalLen()),
		"size", humanize.Bytes(uint64(c.Size())))
	return c, rejects, nil
}
