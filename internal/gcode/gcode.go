// Package gcode provides NCBI genetic code tables keyed by table id.
//
// Relevant documentation:
//
//	https://www.ncbi.nlm.nih.gov/Taxonomy/Utils/wprintgc.cgi
package gcode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/codon-genie/internal/iupac"
)

// Stop is the amino acid code used for termination codons.
const Stop byte = '*'

// StandardID is the NCBI id of the standard genetic code.
const StandardID = 1

// ErrUnknownTable is returned for a table id without a known genetic code.
var ErrUnknownTable = errors.New("unknown genetic code table")

// Standard genetic code: DNA codon to amino acid (single letter).
var standard = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

type variant struct {
	name string
	diff map[string]byte
}

// Differences from the standard code for each NCBI table.
var variants = map[int]variant{
	1:  {"Standard", nil},
	2:  {"Vertebrate Mitochondrial", map[string]byte{"AGA": '*', "AGG": '*', "ATA": 'M', "TGA": 'W'}},
	3:  {"Yeast Mitochondrial", map[string]byte{"ATA": 'M', "CTT": 'T', "CTC": 'T', "CTA": 'T', "CTG": 'T', "TGA": 'W'}},
	4:  {"Mold, Protozoan, and Coelenterate Mitochondrial; Mycoplasma; Spiroplasma", map[string]byte{"TGA": 'W'}},
	5:  {"Invertebrate Mitochondrial", map[string]byte{"AGA": 'S', "AGG": 'S', "ATA": 'M', "TGA": 'W'}},
	6:  {"Ciliate, Dasycladacean and Hexamita Nuclear", map[string]byte{"TAA": 'Q', "TAG": 'Q'}},
	9:  {"Echinoderm and Flatworm Mitochondrial", map[string]byte{"AAA": 'N', "AGA": 'S', "AGG": 'S', "TGA": 'W'}},
	10: {"Euplotid Nuclear", map[string]byte{"TGA": 'C'}},
	11: {"Bacterial, Archaeal and Plant Plastid", nil},
	12: {"Alternative Yeast Nuclear", map[string]byte{"CTG": 'S'}},
	13: {"Ascidian Mitochondrial", map[string]byte{"AGA": 'G', "AGG": 'G', "ATA": 'M', "TGA": 'W'}},
	14: {"Alternative Flatworm Mitochondrial", map[string]byte{"AAA": 'N', "AGA": 'S', "AGG": 'S', "TAA": 'Y', "TGA": 'W'}},
	16: {"Chlorophycean Mitochondrial", map[string]byte{"TAG": 'L'}},
	21: {"Trematode Mitochondrial", map[string]byte{"TGA": 'W', "ATA": 'M', "AGA": 'S', "AGG": 'S', "AAA": 'N'}},
	22: {"Scenedesmus obliquus Mitochondrial", map[string]byte{"TCA": '*', "TAG": 'L'}},
	23: {"Thraustochytrium Mitochondrial", map[string]byte{"TTA": '*'}},
	24: {"Rhabdopleuridae Mitochondrial", map[string]byte{"AGA": 'S', "AGG": 'K', "TGA": 'W'}},
	25: {"Candidate Division SR1 and Gracilibacteria", map[string]byte{"TGA": 'G'}},
	26: {"Pachysolen tannophilus Nuclear", map[string]byte{"CTG": 'A'}},
	29: {"Mesodinium Nuclear", map[string]byte{"TAA": 'Y', "TAG": 'Y'}},
	30: {"Peritrich Nuclear", map[string]byte{"TAA": 'E', "TAG": 'E'}},
}

// Table is an immutable codon to amino acid mapping.
type Table struct {
	id       int
	name     string
	codons   map[string]byte
	synonyms map[byte][]string
}

// ByID returns the genetic code with the given NCBI table id.
func ByID(id int) (*Table, error) {
	v, ok := variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTable, id)
	}

	codons := make(map[string]byte, len(standard))
	for codon, aa := range standard {
		codons[codon] = aa
	}
	for codon, aa := range v.diff {
		codons[codon] = aa
	}

	t := &Table{
		id:       id,
		name:     v.name,
		codons:   make(map[string]byte, len(codons)),
		synonyms: make(map[byte][]string, 21),
	}
	for _, codon := range Codons() {
		aa := codons[codon]
		if aa != Stop {
			t.codons[codon] = aa
		}
		t.synonyms[aa] = append(t.synonyms[aa], codon)
	}
	return t, nil
}

// Standard returns the standard genetic code (table 1).
func Standard() *Table {
	t, err := ByID(StandardID)
	if err != nil {
		panic(err)
	}
	return t
}

// IDs returns the supported table ids in ascending order.
func IDs() []int {
	ids := make([]int, 0, len(variants))
	for id := range variants {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ID returns the NCBI table id.
func (t *Table) ID() int { return t.id }

// Name returns the NCBI table name.
func (t *Table) Name() string { return t.name }

// AminoAcid returns the amino acid encoded by a concrete codon. The boolean
// is false for codons absent from the table, which denote Stop.
func (t *Table) AminoAcid(codon string) (byte, bool) {
	aa, ok := t.codons[codon]
	return aa, ok
}

// Translate returns the amino acid for a codon, or Stop when the codon is
// absent from the table.
func (t *Table) Translate(codon string) byte {
	if aa, ok := t.codons[codon]; ok {
		return aa
	}
	return Stop
}

// TranslateSequence translates a DNA or RNA coding sequence to amino acids.
// A trailing partial codon is ignored; codons with letters other than A, C,
// G, T or U translate to 'X'.
func (t *Table) TranslateSequence(seq string) string {
	seq = strings.ReplaceAll(strings.ToUpper(seq), "U", "T")
	n := (len(seq) / 3) * 3

	var result strings.Builder
	result.Grow(n / 3)

	for i := 0; i < n; i += 3 {
		codon := seq[i : i+3]
		if strings.Trim(codon, iupac.Nucleotides) != "" {
			result.WriteByte('X')
			continue
		}
		result.WriteByte(t.Translate(codon))
	}

	return result.String()
}

// Synonyms returns the codons encoding aa in ACGT order. Stop codons are
// synonyms of each other.
func (t *Table) Synonyms(aa byte) []string {
	return t.synonyms[aa]
}

// Codons returns all 64 concrete codons in ACGT order.
func Codons() []string {
	return iupac.Product([]string{iupac.Nucleotides, iupac.Nucleotides, iupac.Nucleotides})
}
