// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package alphabet maps sequences of letters to dense integer codes.
//
// An Alphabet assigns the codes 1..k to its k letters in the order they were
// given. The code 0 is reserved as the sentinel, which is strictly smaller
// than every letter's code. Coded texts passed to suffix array construction
// carry exactly one sentinel, as their final element.
package alphabet

import "strconv"

// Sentinel is the code reserved for the unique terminator of a coded text.
const Sentinel = 0

// MaxLetters is the largest number of letters an Alphabet may have.
const MaxLetters = 255

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "alphabet: " + string(e) }

var (
	ErrEmpty         error = Error("no letters")
	ErrDuplicate     error = Error("duplicate letter")
	ErrTooMany       error = Error("too many letters")
	ErrReserved      error = Error("NUL is reserved")
	ErrInvalidSymbol error = Error("invalid symbol")
)

// InvalidSymbolError reports a symbol that is not a member of the alphabet.
// It matches ErrInvalidSymbol with errors.Is.
type InvalidSymbolError struct {
	Symbol byte // The offending raw symbol or code
	Offset int  // Offset of the symbol in the input
}

func (e *InvalidSymbolError) Error() string {
	return "alphabet: invalid symbol " + strconv.QuoteRune(rune(e.Symbol)) +
		" at offset " + strconv.Itoa(e.Offset)
}

func (e *InvalidSymbolError) Unwrap() error { return ErrInvalidSymbol }

// Option configures an Alphabet.
type Option func(*Alphabet)

// FoldCase makes Encode accept both the upper and lower case form of every
// ASCII letter in the alphabet. Decode always produces the letters as given.
func FoldCase() Option {
	return func(a *Alphabet) { a.fold = true }
}

// Alphabet is an immutable bijection between letters and codes.
// It is safe for concurrent use.
type Alphabet struct {
	letters []byte
	codes   [256]byte // Letter to code; Sentinel if not a member
	fold    bool
}

// DNA is the nucleotide alphabet "acgt".
var DNA = MustNew("acgt")

// New returns an Alphabet whose letters are the bytes of letters, in order.
func New(letters string, opts ...Option) (*Alphabet, error) {
	switch {
	case len(letters) == 0:
		return nil, ErrEmpty
	case len(letters) > MaxLetters:
		return nil, ErrTooMany
	}

	a := &Alphabet{letters: []byte(letters)}
	for _, opt := range opts {
		opt(a)
	}
	for i, b := range a.letters {
		if b == 0 {
			return nil, ErrReserved
		}
		if a.codes[b] != Sentinel {
			return nil, ErrDuplicate
		}
		a.codes[b] = byte(i + 1)
	}
	if a.fold {
		for i, b := range a.letters {
			f := swapCase(b)
			if f == b {
				continue
			}
			if c := a.codes[f]; c != Sentinel && int(c) != i+1 {
				return nil, ErrDuplicate // e.g., "aA" with folding
			}
			a.codes[f] = byte(i + 1)
		}
	}
	return a, nil
}

// MustNew is like New, but panics on error.
func MustNew(letters string, opts ...Option) *Alphabet {
	a, err := New(letters, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

func swapCase(b byte) byte {
	switch {
	case 'a' <= b && b <= 'z':
		return b - 'a' + 'A'
	case 'A' <= b && b <= 'Z':
		return b - 'A' + 'a'
	}
	return b
}

// Letters reports the letters of the alphabet in code order.
func (a *Alphabet) Letters() string { return string(a.letters) }

// Len reports the number of letters.
func (a *Alphabet) Len() int { return len(a.letters) }

// Size reports the number of distinct codes, including the sentinel.
func (a *Alphabet) Size() int { return len(a.letters) + 1 }

// FoldsCase reports whether the alphabet was created with FoldCase.
func (a *Alphabet) FoldsCase() bool { return a.fold }

// Equal reports whether a and b encode identically.
func (a *Alphabet) Equal(b *Alphabet) bool {
	return a.codes == b.codes && string(a.letters) == string(b.letters)
}

// Code reports the code of letter b.
func (a *Alphabet) Code(b byte) (byte, bool) {
	c := a.codes[b]
	return c, c != Sentinel
}

// Letter reports the letter for code c. The sentinel has no letter.
func (a *Alphabet) Letter(c byte) (byte, bool) {
	if c == Sentinel || int(c) > len(a.letters) {
		return 0, false
	}
	return a.letters[c-1], true
}

// Encode appends the codes of src to dst and returns the extended slice.
// If src contains a symbol outside the alphabet, then Encode returns dst
// unmodified in length along with an *InvalidSymbolError.
func (a *Alphabet) Encode(dst, src []byte) ([]byte, error) {
	n := len(dst)
	for i, b := range src {
		c := a.codes[b]
		if c == Sentinel {
			return dst[:n], &InvalidSymbolError{Symbol: b, Offset: i}
		}
		dst = append(dst, c)
	}
	return dst, nil
}

// EncodeText returns the codes of src followed by the sentinel.
func (a *Alphabet) EncodeText(src []byte) ([]byte, error) {
	dst, err := a.Encode(make([]byte, 0, len(src)+1), src)
	if err != nil {
		return nil, err
	}
	return append(dst, Sentinel), nil
}

// Decode appends the letters for the codes in src to dst.
// A sentinel is only permitted as the final code of src and produces no
// letter.
func (a *Alphabet) Decode(dst, src []byte) ([]byte, error) {
	n := len(dst)
	for i, c := range src {
		if c == Sentinel && i == len(src)-1 {
			break
		}
		b, ok := a.Letter(c)
		if !ok {
			return dst[:n], &InvalidSymbolError{Symbol: c, Offset: i}
		}
		dst = append(dst, b)
	}
	return dst, nil
}

func (a *Alphabet) String() string {
	return "alphabet(" + strconv.Quote(string(a.letters)) + ")"
}
