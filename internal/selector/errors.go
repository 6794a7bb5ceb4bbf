package selector

import "errors"

var (
	// ErrUnknownAminoAcid is returned for an amino acid letter with no codon template.
	ErrUnknownAminoAcid = errors.New("unknown amino acid")
	// ErrInvalidCodon is returned for an ambiguous codon that is not three letters long.
	ErrInvalidCodon = errors.New("ambiguous codon must be three letters")
	// ErrInvalidEditSyntax is returned for an edit token that does not match
	// <OriginalAA><position>[-]<NewAAs>.
	ErrInvalidEditSyntax = errors.New("invalid edit syntax")
	// ErrInvalidEdit is returned when an edit does not match the source sequence.
	ErrInvalidEdit = errors.New("invalid edit")
	// ErrEmptyExpansion is returned when an ambiguous codon expands to no codons.
	ErrEmptyExpansion = errors.New("ambiguous codon has an empty expansion")
)
