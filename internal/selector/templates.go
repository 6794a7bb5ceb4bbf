package selector

import "github.com/inodb/codon-genie/internal/gcode"

// StandardAminoAcids lists the 20 standard amino acid codes.
const StandardAminoAcids = "ACDEFGHIKLMNPQRSTVWY"

// Template is a synonymous codon family: one nucleotide group per codon position.
type Template [3]string

// templates maps each amino acid to its synonymous codon families. Leucine,
// arginine, serine and Stop have two families that cannot be merged into a
// single template without admitting other amino acids.
var templates = map[byte][]Template{
	'A':        {{"G", "C", "ACGT"}},
	'C':        {{"T", "G", "CT"}},
	'D':        {{"G", "A", "CT"}},
	'E':        {{"G", "A", "AG"}},
	'F':        {{"T", "T", "CT"}},
	'G':        {{"G", "G", "ACGT"}},
	'H':        {{"C", "A", "CT"}},
	'I':        {{"A", "T", "ACT"}},
	'K':        {{"A", "A", "AG"}},
	'L':        {{"C", "T", "ACGT"}, {"T", "T", "AG"}},
	'M':        {{"A", "T", "G"}},
	'N':        {{"A", "A", "CT"}},
	'P':        {{"C", "C", "ACGT"}},
	'Q':        {{"C", "A", "AG"}},
	'R':        {{"C", "G", "ACGT"}, {"A", "G", "AG"}},
	'S':        {{"T", "C", "ACGT"}, {"A", "G", "CT"}},
	'T':        {{"A", "C", "ACGT"}},
	'V':        {{"G", "T", "ACGT"}},
	'W':        {{"T", "G", "G"}},
	'Y':        {{"T", "A", "CT"}},
	gcode.Stop: {{"T", "A", "AG"}, {"T", "G", "A"}},
}

// Templates returns the codon families for an amino acid, or nil if the
// code is unknown.
func Templates(aa byte) []Template {
	return templates[aa]
}

// AminoAcidName returns the display name of an amino acid code: the code
// itself, or "Stop" for the stop sentinel.
func AminoAcidName(aa byte) string {
	if aa == gcode.Stop {
		return "Stop"
	}
	return string(aa)
}
