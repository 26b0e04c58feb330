// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnet/saalign/align"
	"github.com/dsnet/saalign/alphabet"
	"github.com/dsnet/saalign/fasta"
	"github.com/dsnet/saalign/fastq"
	"github.com/dsnet/saalign/internal/testutil"
	"github.com/dsnet/saalign/internal/xio"
	"github.com/dsnet/saalign/sarray"
)

const (
	testGenome = ">chr1 first\nacgt\n>chr2\nac\ngt\n>chr3 rejected\nacgnt\n"
	testReads  = "@r1\nac\n+\nII\n@r2 has n\nacn\n+\nIII\n@r3\ngt\n+\nII\n"
)

var discard = log.New(io.Discard)

func readLines(t *testing.T, path string) []string {
	rc, err := xio.Open(path)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

func TestRunAlign(t *testing.T) {
	dir := t.TempDir()
	genome := filepath.Join(dir, "genome.fa")
	reads := filepath.Join(dir, "reads.fq")
	out := filepath.Join(dir, "out.sam.gz")
	require.NoError(t, os.WriteFile(genome, []byte(testGenome), 0644))
	require.NoError(t, os.WriteFile(reads, []byte(testReads), 0644))

	cfg := defaultConfig()
	st, err := runAlign(context.Background(), cfg, discard, genome, reads, out, "saalign align")
	require.NoError(t, err)
	assert.Equal(t, align.Stats{Reads: 3, Aligned: 2, Skipped: 1, Records: 4}, st)

	want := []string{
		"@HD\tVN:1.6\tSO:unsorted",
		"@SQ\tSN:chr1\tLN:4",
		"@SQ\tSN:chr2\tLN:4",
		"@PG\tCL:saalign align\tID:saalign\tPN:saalign\tVN:head",
		"r1\t0\tchr1\t1\t0\t2M\t*\t0\t0\tAC\tII",
		"r1\t0\tchr2\t1\t0\t2M\t*\t0\t0\tAC\tII",
		"r3\t0\tchr1\t3\t0\t2M\t*\t0\t0\tGT\tII",
		"r3\t0\tchr2\t3\t0\t2M\t*\t0\t0\tGT\tII",
	}
	got := readLines(t, out)
	for i, l := range got {
		if strings.HasPrefix(l, "@PG\t") {
			f := strings.Split(l, "\t")
			sort.Strings(f[1:])
			got[i] = strings.Join(f, "\t")
		}
	}
	if !cmp.Equal(got, want) {
		t.Errorf("output mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}

func TestRunIndex(t *testing.T) {
	dir := t.TempDir()
	genome := filepath.Join(dir, "genome.fa")
	index := filepath.Join(dir, "genome.saix.zst")
	reads := filepath.Join(dir, "reads.fq")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(genome, []byte(testGenome), 0644))
	require.NoError(t, os.WriteFile(reads, []byte(testReads), 0644))

	cfg := defaultConfig()
	require.NoError(t, runIndex(context.Background(), cfg, discard, genome, index))

	cfg.Format = formatSimple
	st, err := runAlign(context.Background(), cfg, discard, index, reads, out, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Records)

	want := []string{
		"r1\tchr1\t1\t2M\tac",
		"r1\tchr2\t1\t2M\tac",
		"r3\tchr1\t3\t2M\tgt",
		"r3\tchr2\t3\t2M\tgt",
	}
	if got := readLines(t, out); !cmp.Equal(got, want) {
		t.Errorf("output mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}

	// An index is only usable with the alphabet it was built with.
	cfg.Alphabet = "acgtn"
	_, err = runAlign(context.Background(), cfg, discard, index, reads, out, "")
	assert.True(t, errors.Is(err, sarray.ErrAlphabetMismatch), "got %v", err)
}

func TestRunNoReferences(t *testing.T) {
	dir := t.TempDir()
	genome := filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(genome, []byte(">chrN\nnnnn\n"), 0644))

	err := runIndex(context.Background(), defaultConfig(), discard, genome, filepath.Join(dir, "g.saix"))
	assert.True(t, errors.Is(err, errNoReferences), "got %v", err)
	_, err = runAlign(context.Background(), defaultConfig(), discard, genome, "-", "-", "")
	assert.True(t, errors.Is(err, errNoReferences), "got %v", err)
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := runAlign(context.Background(), defaultConfig(), discard, filepath.Join(dir, "missing.fa"), "-", "-", "")
	assert.True(t, os.IsNotExist(errors.Cause(err)), "got %v", err)
}

func TestRunStats(t *testing.T) {
	genome := writeFile(t, "genome.fa", testGenome)
	var buf bytes.Buffer
	require.NoError(t, runStats(context.Background(), defaultConfig(), discard, genome, &buf))
	got := buf.String()
	for _, s := range []string{"chr1", "chr2", "NAME", "LENGTH"} {
		assert.Contains(t, got, s)
	}
	assert.NotContains(t, got, "chr3")
}

func TestAlignTestdata(t *testing.T) {
	const genome, reads = "../../testdata/genome.fa", "../../testdata/reads.fq"
	refs, err := fasta.ReadAll(bytes.NewReader(testutil.MustLoadFile(genome)))
	require.NoError(t, err)
	qs, err := fastq.ReadAll(bytes.NewReader(testutil.MustLoadFile(reads)))
	require.NoError(t, err)

	var want []string
	var aligned int64
	for _, q := range qs {
		var hit bool
		for _, r := range refs {
			if _, err := alphabet.DNA.Encode(nil, r.Seq); err != nil {
				continue
			}
			for _, pos := range testutil.Occurrences(r.Seq, q.Seq) {
				want = append(want, fmt.Sprintf("%s\t%s\t%d\t%dM\t%s", q.Name, r.Name, pos+1, len(q.Seq), q.Seq))
				hit = true
			}
		}
		if hit {
			aligned++
		}
	}
	require.NotEmpty(t, want)

	cfg := defaultConfig()
	cfg.Format = formatSimple
	out := filepath.Join(t.TempDir(), "out.txt.bz2")
	st, err := runAlign(context.Background(), cfg, discard, genome, reads, out, "")
	require.NoError(t, err)
	assert.Equal(t, int64(len(qs)), st.Reads)
	assert.Equal(t, int64(1), st.Skipped)
	assert.Equal(t, aligned, st.Aligned)
	assert.Equal(t, int64(len(want)), st.Records)

	got := readLines(t, out)
	sort.Strings(got)
	sort.Strings(want)
	if !cmp.Equal(got, want) {
		t.Errorf("output mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}
