// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package refset

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/fasta"
)

// RecordSource is a source of reference sequences, such as a *fasta.Reader.
type RecordSource interface {
	// Next returns the next record or io.EOF when no records remain.
	Next() (fasta.Record, error)
}

// Load reads every record from src and builds a Collection over them.
// See Builder.Build for the handling of sequences that cannot be indexed.
// Cancellation of ctx stops reading from src.
func Load(ctx context.Context, alpha *alphabet.Alphabet, src RecordSource, opts Options) (*Collection, []Rejection, error) {
	b := NewBuilder(alpha, opts)
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading references")
		}
		if err := b.Add(rec.Name, rec.Seq); err != nil {
			return nil, nil, err
		}
	}
	return b.Build(ctx)
}
