// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package fastq

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	var vectors = []struct {
		input  string
		output []Record
		errf   string // Substring of the expected error, if any
	}{{
		input:  "",
		output: nil,
	}, {
		input:  "@r1\nacgt\n+\nIIII\n",
		output: []Record{{Name: "r1", Seq: []byte("acgt"), Qual: []byte("IIII")}},
	}, {
		input: "@r1 extra words\nac\n+r1\n#I\n\n@r2\tx\r\ngtt\r\n+\r\nII5",
		output: []Record{
			{Name: "r1", Seq: []byte("ac"), Qual: []byte("#I")},
			{Name: "r2", Seq: []byte("gtt"), Qual: []byte("II5")},
		},
	}, {
		input:  "@empty\n\n+\n\n",
		output: []Record{{Name: "empty", Seq: []byte{}, Qual: []byte{}}},
	}, {
		input: ">r1\nacgt\n+\nIIII\n",
		errf:  "line 1: header line must start with '@'",
	}, {
		input: "@r1\nacgt\n-\nIIII\n",
		errf:  "line 3: separator line must start with '+'",
	}, {
		input: "@r1\nacgt\n+\nIII\n",
		errf:  "line 4: sequence and quality lengths differ",
	}, {
		input: "@r1\nac\n+\nI \n",
		errf:  "line 4: invalid quality character",
	}, {
		input:  "@r1\nac\n+\nII\n@r2\nacgt\n",
		output: []Record{{Name: "r1", Seq: []byte("ac"), Qual: []byte("II")}},
		errf:   "line 6: truncated record",
	}}

	for i, v := range vectors {
		got, err := ReadAll(strings.NewReader(v.input))
		if v.errf == "" {
			if err != nil {
				t.Errorf("test %d, unexpected error: %v", i, err)
			}
		} else {
			if !errors.Is(err, ErrFormat) || !strings.Contains(err.Error(), v.errf) {
				t.Errorf("test %d, error mismatch: got %v, want %q", i, err, v.errf)
			}
		}
		if !cmp.Equal(got, v.output) {
			t.Errorf("test %d, output mismatch (-got +want):\n%s", i, cmp.Diff(got, v.output))
		}
	}
}

func TestReaderNoAlias(t *testing.T) {
	qr := NewReader(strings.NewReader("@r1\nac\n+\nII\n@r2\ngt\n+\n##\n"))
	r1, err := qr.Next()
	require.NoError(t, err)
	r2, err := qr.Next()
	require.NoError(t, err)
	assert.Equal(t, "ac", string(r1.Seq))
	assert.Equal(t, "II", string(r1.Qual))
	assert.Equal(t, "gt", string(r2.Seq))

	for i := 0; i < 2; i++ {
		_, err = qr.Next()
		assert.Equal(t, io.EOF, err)
	}
}

func TestReaderQualityRange(t *testing.T) {
	var seq, qual []byte
	for c := byte('!'); c <= '~'; c++ {
		seq = append(seq, "ACGTNacgtnRY"[int(c)%12])
		qual = append(qual, c)
	}
	input := "@full\n" + string(seq) + "\n+full\n" + string(qual) + "\n"
	recs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	want := []Record{{Name: "full", Seq: seq, Qual: qual}}
	if !cmp.Equal(recs, want) {
		t.Errorf("output mismatch (-got +want):\n%s", cmp.Diff(recs, want))
	}
}
