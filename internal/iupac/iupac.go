// Package iupac maps sets of nucleotides to IUPAC ambiguity letters and back.
package iupac

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGroup is returned for an empty nucleotide group or one containing
	// letters other than A, C, G and T.
	ErrInvalidGroup = errors.New("invalid nucleotide group")
	// ErrUnknownAmbiguityLetter is returned for a letter outside the 15 IUPAC codes.
	ErrUnknownAmbiguityLetter = errors.New("unknown ambiguity letter")
)

// Nucleotides lists the four concrete bases in canonical order.
const Nucleotides = "ACGT"

// 4-bit mask per base
const (
	maskA uint8 = 1 << iota
	maskC
	maskG
	maskT
)

// letterByMask is indexed by the nucleotide mask; index 0 is the empty group.
var letterByMask = [16]byte{
	0,
	maskA:                         'A',
	maskC:                         'C',
	maskA | maskC:                 'M',
	maskG:                         'G',
	maskA | maskG:                 'R',
	maskC | maskG:                 'S',
	maskA | maskC | maskG:         'V',
	maskT:                         'T',
	maskA | maskT:                 'W',
	maskC | maskT:                 'Y',
	maskA | maskC | maskT:         'H',
	maskG | maskT:                 'K',
	maskA | maskG | maskT:         'D',
	maskC | maskG | maskT:         'B',
	maskA | maskC | maskG | maskT: 'N',
}

var maskByLetter map[byte]uint8

func init() {
	maskByLetter = make(map[byte]uint8, len(letterByMask)-1)
	for m, l := range letterByMask {
		if l != 0 {
			maskByLetter[l] = uint8(m)
		}
	}
}

func baseMask(b byte) uint8 {
	switch b {
	case 'A', 'a':
		return maskA
	case 'C', 'c':
		return maskC
	case 'G', 'g':
		return maskG
	case 'T', 't':
		return maskT
	}
	return 0
}

// Mask returns the 4-bit mask of a nucleotide group. Letter order and
// repeated letters are ignored.
func Mask(group string) (uint8, error) {
	if group == "" {
		return 0, fmt.Errorf("%w: empty group", ErrInvalidGroup)
	}
	var m uint8
	for i := 0; i < len(group); i++ {
		bm := baseMask(group[i])
		if bm == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
		}
		m |= bm
	}
	return m, nil
}

// GroupOf renders a mask as its sorted nucleotide letters.
func GroupOf(m uint8) string {
	var sb strings.Builder
	sb.Grow(4)
	for i := 0; i < len(Nucleotides); i++ {
		if m&(1<<i) != 0 {
			sb.WriteByte(Nucleotides[i])
		}
	}
	return sb.String()
}

// LetterOfMask returns the IUPAC letter for a 4-bit mask, or 0 for the
// empty mask.
func LetterOfMask(m uint8) byte {
	return letterByMask[m&0xf]
}

// LetterFor returns the IUPAC letter for a nucleotide group such as "AG".
func LetterFor(group string) (byte, error) {
	m, err := Mask(group)
	if err != nil {
		return 0, err
	}
	return letterByMask[m], nil
}

// GroupFor returns the canonical (sorted) nucleotide group for an IUPAC letter.
func GroupFor(letter byte) (string, error) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	m, ok := maskByLetter[letter]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAmbiguityLetter, letter)
	}
	return GroupOf(m), nil
}

// Letters returns all 15 IUPAC nucleotide letters ordered by mask.
func Letters() []byte {
	out := make([]byte, 0, len(letterByMask)-1)
	for _, l := range letterByMask {
		if l != 0 {
			out = append(out, l)
		}
	}
	return out
}

// Encode converts a sequence of nucleotide groups into an ambiguous sequence,
// one letter per group.
func Encode(groups ...string) (string, error) {
	buf := make([]byte, len(groups))
	for i, g := range groups {
		l, err := LetterFor(g)
		if err != nil {
			return "", err
		}
		buf[i] = l
	}
	return string(buf), nil
}

// Decode returns the nucleotide group of every letter in an ambiguous sequence.
func Decode(seq string) ([]string, error) {
	groups := make([]string, len(seq))
	for i := 0; i < len(seq); i++ {
		g, err := GroupFor(seq[i])
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return groups, nil
}

// Expand returns every concrete sequence matched by an ambiguous sequence.
// Earlier positions vary slowest and bases within a position follow ACGT order.
func Expand(seq string) ([]string, error) {
	groups, err := Decode(seq)
	if err != nil {
		return nil, err
	}
	return Product(groups), nil
}

// Product returns the cartesian product of the letters of each group.
func Product(groups []string) []string {
	if len(groups) == 0 {
		return nil
	}
	n := 1
	for _, g := range groups {
		n *= len(g)
	}
	out := make([]string, 0, n)
	buf := make([]byte, len(groups))
	var rec func(int)
	rec = func(pos int) {
		if pos == len(groups) {
			out = append(out, string(buf))
			return
		}
		for i := 0; i < len(groups[pos]); i++ {
			buf[pos] = groups[pos][i]
			rec(pos + 1)
		}
	}
	rec(0)
	return out
}
