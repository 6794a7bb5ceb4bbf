package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/codon-genie/internal/gcode"
	"github.com/inodb/codon-genie/internal/iupac"
)

// Classification ranks an amino acid relative to the requested set.
type Classification int

const (
	ClassStop      Classification = -1
	ClassOffTarget Classification = 0
	ClassTarget    Classification = 1
)

func (c Classification) String() string {
	switch c {
	case ClassStop:
		return "stop"
	case ClassTarget:
		return "target"
	default:
		return "off-target"
	}
}

// CodonUsage holds the usage facts of one concrete codon.
type CodonUsage struct {
	Codon       string
	Probability float64
	CAI         float64
}

// AminoAcidResult groups the concrete codons of an expansion encoding one amino acid.
type AminoAcidResult struct {
	AminoAcid byte
	Class     Classification
	Codons    []CodonUsage
}

// AnalysisResult describes one ambiguous codon.
type AnalysisResult struct {
	AmbiguousCodon string
	// Nucleotides holds the decoded group of each codon position.
	Nucleotides [3]string
	Expansion   []string
	AminoAcids  []AminoAcidResult
	// Score is set only when the codon was analysed against requested amino acids.
	Score *float64
}

// scoreKey is the score used for ranking; a missing score counts as zero.
func (r *AnalysisResult) scoreKey() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// AnalyzeCodon analyses a single ambiguous codon without a requested amino
// acid set. The result is returned as a one-element slice.
func (s *Selector) AnalyzeCodon(codon, organismID string) ([]*AnalysisResult, error) {
	r, err := s.Analyze(strings.ToUpper(codon), organismID, nil)
	if err != nil {
		return nil, err
	}
	return []*AnalysisResult{r}, nil
}

// Analyze expands an ambiguous codon, classifies the amino acids it encodes
// against requested and, when requested is non-empty, scores it by the mean
// CAI over all codons of the expansion, counting non-target codons as zero.
func (s *Selector) Analyze(codon, organismID string, requested map[byte]bool) (*AnalysisResult, error) {
	if len(codon) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCodon, codon)
	}
	groups, err := iupac.Decode(codon)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", codon, err)
	}

	p, err := s.Provider(organismID)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		AmbiguousCodon: codon,
		Nucleotides:    [3]string{groups[0], groups[1], groups[2]},
		Expansion:      iupac.Product(groups),
	}
	if len(result.Expansion) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyExpansion, codon)
	}

	byAA := make(map[byte]*AminoAcidResult)
	for _, c := range result.Expansion {
		aa := s.code.Translate(c)
		group, ok := byAA[aa]
		if !ok {
			group = &AminoAcidResult{AminoAcid: aa, Class: classify(aa, requested)}
			byAA[aa] = group
		}
		group.Codons = append(group.Codons, CodonUsage{
			Codon:       c,
			Probability: p.Probability(c),
			CAI:         p.CAI(c),
		})
	}

	result.AminoAcids = make([]AminoAcidResult, 0, len(byAA))
	for _, group := range byAA {
		result.AminoAcids = append(result.AminoAcids, *group)
	}
	sort.Slice(result.AminoAcids, func(i, j int) bool {
		a, b := result.AminoAcids[i], result.AminoAcids[j]
		if a.Class != b.Class {
			return a.Class > b.Class
		}
		return a.AminoAcid < b.AminoAcid
	})

	if len(requested) > 0 {
		sc := score(result.AminoAcids)
		result.Score = &sc
	}

	return result, nil
}

func classify(aa byte, requested map[byte]bool) Classification {
	if aa == gcode.Stop {
		return ClassStop
	}
	if requested[aa] {
		return ClassTarget
	}
	return ClassOffTarget
}

// score sorts each group's codons by descending CAI and returns the CAI sum
// of target codons divided by the total number of codons.
func score(aminoAcids []AminoAcidResult) float64 {
	var sum float64
	var n int
	for i := range aminoAcids {
		codons := aminoAcids[i].Codons
		sort.SliceStable(codons, func(a, b int) bool {
			return codons[a].CAI > codons[b].CAI
		})
		for _, c := range codons {
			if aminoAcids[i].Class == ClassTarget {
				sum += c.CAI
			}
			n++
		}
	}
	return sum / float64(n)
}
