// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package align

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"testing"

	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/fastq"
	"github.com/dsnet/saalign/internal/testutil"
	"github.com/dsnet/saalign/refset"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCollection(t testing.TB, alpha *alphabet.Alphabet, refs ...string) *refset.Collection {
	b := refset.NewBuilder(alpha, refset.Options{})
	for i := 0; i+1 < len(refs); i += 2 {
		require.NoError(t, b.Add(refs[i], []byte(refs[i+1])))
	}
	c, _, err := b.Build(context.Background())
	require.NoError(t, err)
	return c
}

type readSlice []fastq.Record

func (rs *readSlice) Next() (fastq.Record, error) {
	if len(*rs) == 0 {
		return fastq.Record{}, io.EOF
	}
	r := (*rs)[0]
	*rs = (*rs)[1:]
	return r, nil
}

type recordSink struct {
	recs  []Record
	limit int // Fail once this many records are written, if positive
}

var errSinkFull = errors.New("sink full")

func (rs *recordSink) WriteRecord(r *Record) error {
	if rs.limit > 0 && len(rs.recs) >= rs.limit {
		return errSinkFull
	}
	rs.recs = append(rs.recs, *r)
	return nil
}

func read(name, seq string) fastq.Record {
	return fastq.Record{Name: name, Seq: []byte(seq)}
}

func TestAlign(t *testing.T) {
	refs := mustCollection(t, alphabet.DNA, "chr1", "acgt", "chr2", "acgt", "chr3", "aacaac")

	var vectors = []struct {
		read   fastq.Record
		output []Record
		err    error
	}{{
		read: read("r1", "ac"),
		output: []Record{
			{ReadName: "r1", RefName: "chr1", Pos: 0, Cigar: "2M", Seq: []byte("ac")},
			{ReadName: "r1", RefName: "chr2", Pos: 0, Cigar: "2M", Seq: []byte("ac")},
			{ReadName: "r1", RefName: "chr3", Pos: 1, Cigar: "2M", Seq: []byte("ac")},
			{ReadName: "r1", RefName: "chr3", Pos: 4, Cigar: "2M", Seq: []byte("ac")},
		},
	}, {
		read:   read("r2", "tt"),
		output: nil,
	}, {
		read:   read("r3", "acgtacgt"),
		output: nil,
	}, {
		read:   read("r4", "acgn"),
		output: nil,
		err:    alphabet.ErrInvalidSymbol,
	}, {
		read:   read("r5", ""),
		output: nil,
		err:    ErrEmptyRead,
	}, {
		read: fastq.Record{Name: "r6", Seq: []byte("cgt"), Qual: []byte("#I5")},
		output: []Record{
			{ReadName: "r6", RefName: "chr1", Pos: 1, Cigar: "3M", Seq: []byte("cgt"), Qual: []byte("#I5")},
			{ReadName: "r6", RefName: "chr2", Pos: 1, Cigar: "3M", Seq: []byte("cgt"), Qual: []byte("#I5")},
		},
	}}

	a := New(refs, Options{})
	for i, v := range vectors {
		var sink recordSink
		n, err := a.Align(v.read, sink.WriteRecord)
		if !errors.Is(err, v.err) {
			t.Errorf("test %d, error mismatch: got %v, want %v", i, err, v.err)
		}
		if n != len(sink.recs) {
			t.Errorf("test %d, count mismatch: got %d, want %d", i, n, len(sink.recs))
		}
		sortRecords(sink.recs)
		if !cmp.Equal(sink.recs, v.output) {
			t.Errorf("test %d, output mismatch (-got +want):\n%s", i, cmp.Diff(sink.recs, v.output))
		}
	}
}

// sortRecords orders records by reference name and then position.
// Every test collection names its references in ascending order.
func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].RefName != recs[j].RefName {
			return recs[i].RefName < recs[j].RefName
		}
		return recs[i].Pos < recs[j].Pos
	})
}

func TestAlignFoldCase(t *testing.T) {
	alpha := alphabet.MustNew("acgt", alphabet.FoldCase())
	refs := mustCollection(t, alpha, "chr1", "ACGTacgt")

	var sink recordSink
	n, err := New(refs, Options{}).Align(read("r1", "GTa"), sink.WriteRecord)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, 2, sink.recs[0].Pos)
	assert.Equal(t, "GTa", string(sink.recs[0].Seq))
}

func TestAlignRandom(t *testing.T) {
	rand := testutil.NewRand(0)
	var refs []string
	var seqs [][]byte
	for i := 0; i < 4; i++ {
		seq := rand.Repeats(1000+rand.Intn(1000), "acgt")
		seqs = append(seqs, seq)
		refs = append(refs, "chr"+strconv.Itoa(i+1), string(seq))
	}
	a := New(mustCollection(t, alphabet.DNA, refs...), Options{})

	for i := 0; i < 200; i++ {
		seq := rand.Sample(seqs[rand.Intn(len(seqs))], 1+rand.Intn(12))
		var want []Record
		for j, ref := range seqs {
			for _, pos := range testutil.Occurrences(ref, seq) {
				want = append(want, Record{
					ReadName: "r", RefName: "chr" + strconv.Itoa(j+1), Pos: pos,
					Cigar: Cigar(len(seq)), Seq: seq,
				})
			}
		}

		var sink recordSink
		n, err := a.Align(fastq.Record{Name: "r", Seq: seq}, sink.WriteRecord)
		if err != nil {
			t.Fatalf("test %d, unexpected error: %v", i, err)
		}
		sortRecords(sink.recs)
		if n != len(want) || !cmp.Equal(sink.recs, want) {
			t.Errorf("test %d, output mismatch for %q (-got +want):\n%s", i, seq, cmp.Diff(sink.recs, want))
		}
	}
}

func TestRun(t *testing.T) {
	refs := mustCollection(t, alphabet.DNA, "chr1", "acgt", "chr2", "acgt")
	src := readSlice{read("r1", "ac"), read("r2", "acn"), read("r3", ""), read("r4", "tt"), read("r5", "gt")}

	var sink recordSink
	st, err := New(refs, Options{}).Run(context.Background(), &src, &sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{Reads: 5, Aligned: 2, Skipped: 2, Records: 4}, st)

	var got []string
	for _, r := range sink.recs {
		got = append(got, r.ReadName+":"+r.RefName+":"+strconv.Itoa(r.Pos))
	}
	want := []string{"r1:chr1:0", "r1:chr2:0", "r5:chr1:2", "r5:chr2:2"}
	if !cmp.Equal(got, want) {
		t.Errorf("output mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}

func TestRunCollectionOrder(t *testing.T) {
	refs := mustCollection(t, alphabet.DNA, "chrB", "ggac", "chrA", "acgg", "chrC", "tacg")
	src := readSlice{read("r1", "ac"), read("r2", "gg")}

	var sink recordSink
	st, err := New(refs, Options{}).Run(context.Background(), &src, &sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{Reads: 2, Aligned: 2, Records: 5}, st)

	var got []string
	for _, r := range sink.recs {
		got = append(got, r.ReadName+":"+r.RefName+":"+strconv.Itoa(r.Pos))
	}
	want := []string{"r1:chrB:2", "r1:chrA:0", "r1:chrC:1", "r2:chrB:0", "r2:chrA:2"}
	if !cmp.Equal(got, want) {
		t.Errorf("output mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}

func TestRunWriteError(t *testing.T) {
	refs := mustCollection(t, alphabet.DNA, "chr1", "aaaa")
	src := readSlice{read("r1", "a"), read("r2", "a")}

	sink := recordSink{limit: 6}
	st, err := New(refs, Options{}).Run(context.Background(), &src, &sink)
	assert.True(t, errors.Is(err, errSinkFull), "got %v", err)
	assert.Equal(t, int64(2), st.Reads)
	assert.Equal(t, int64(4), st.Records)
	assert.Len(t, sink.recs, 6)
}

type failSource struct{ err error }

func (fs failSource) Next() (fastq.Record, error) { return fastq.Record{}, fs.err }

func TestRunReadError(t *testing.T) {
	refs := mustCollection(t, alphabet.DNA, "chr1", "acgt")
	_, err := New(refs, Options{}).Run(context.Background(), failSource{fastq.ErrFormat}, &recordSink{})
	assert.True(t, errors.Is(err, fastq.ErrFormat), "got %v", err)
}

func TestRunCanceled(t *testing.T) {
	refs := mustCollection(t, alphabet.DNA, "chr1", "acgt")
	src := readSlice{read("r1", "ac")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sink recordSink
	st, err := New(refs, Options{}).Run(ctx, &src, &sink)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, Stats{}, st)
	assert.Empty(t, sink.recs)
}

func BenchmarkAlign(b *testing.B) {
	rand := testutil.NewRand(0)
	seq := rand.Repeats(1<<20, "acgt")
	a := New(mustCollection(b, alphabet.DNA, "chr1", string(seq)), Options{})
	reads := make([]fastq.Record, 1024)
	for i := range reads {
		reads[i] = fastq.Record{Name: "r", Seq: rand.Sample(seq, 36)}
	}
	emit := func(*Record) error { return nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Align(reads[i%len(reads)], emit); err != nil {
			b.Fatal(err)
		}
	}
}
