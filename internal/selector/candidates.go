package selector

import (
	"fmt"
	"iter"
	"math/bits"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/codon-genie/internal/iupac"
)

// OptimizeCodons returns every candidate ambiguous codon for the requested
// amino acids (case-insensitive, duplicates ignored), most specific first:
// ascending by expansion size, then descending by score.
func (s *Selector) OptimizeCodons(aminoAcids, organismID string) ([]*AnalysisResult, error) {
	list, requested, err := requestedSet(aminoAcids)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	var results []*AnalysisResult
	for codon, err := range AmbiguousCodons(list) {
		if err != nil {
			return nil, err
		}
		r, err := s.Analyze(codon, organismID, requested)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	Rank(results)

	s.logger.Debug("optimized codons",
		zap.String("amino_acids", string(list)),
		zap.String("organism", organismID),
		zap.Int("candidates", len(results)))
	return results, nil
}

// Rank orders results by ascending expansion size, then descending score
// (missing scores count as zero). Equal results keep their relative order.
func Rank(results []*AnalysisResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if len(a.Expansion) != len(b.Expansion) {
			return len(a.Expansion) < len(b.Expansion)
		}
		return a.scoreKey() > b.scoreKey()
	})
}

// requestedSet upper-cases and deduplicates amino acid letters, returning
// them sorted along with a membership set.
func requestedSet(aminoAcids string) ([]byte, map[byte]bool, error) {
	set := make(map[byte]bool, len(aminoAcids))
	for i := 0; i < len(aminoAcids); i++ {
		aa := aminoAcids[i]
		if aa >= 'a' && aa <= 'z' {
			aa -= 'a' - 'A'
		}
		if _, ok := templates[aa]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownAminoAcid, aminoAcids[i])
		}
		set[aa] = true
	}

	list := make([]byte, 0, len(set))
	for aa := range set {
		list = append(list, aa)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list, set, nil
}

// Combinations yields every way of picking one codon template per amino
// acid, varying the last amino acid fastest. Each yielded slice is fresh.
// Unknown amino acids contribute no templates, so nothing is yielded.
func Combinations(aminoAcids []byte) iter.Seq[[]Template] {
	return func(yield func([]Template) bool) {
		if len(aminoAcids) == 0 {
			return
		}
		families := make([][]Template, len(aminoAcids))
		for i, aa := range aminoAcids {
			families[i] = templates[aa]
			if len(families[i]) == 0 {
				return
			}
		}

		idx := make([]int, len(families))
		for {
			combo := make([]Template, len(families))
			for i, f := range families {
				combo[i] = f[idx[i]]
			}
			if !yield(combo) {
				return
			}

			// odometer
			i := len(idx) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(families[i]) {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}

// AmbiguousCodons lazily yields the candidate ambiguous codons of every
// template combination for the given amino acids.
func AmbiguousCodons(aminoAcids []byte) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for combo := range Combinations(aminoAcids) {
			codons, err := MergeTemplates(combo)
			if err != nil {
				yield("", err)
				return
			}
			for _, c := range codons {
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}

// MergeTemplates merges a template combination into ambiguous codons. The
// first two positions take the union of the templates' groups; the third
// position yields one codon per grouping from OptimizeThirdPosition.
func MergeTemplates(combo []Template) ([]string, error) {
	var first, second uint8
	thirds := make([]string, len(combo))
	for i, t := range combo {
		m, err := iupac.Mask(t[0])
		if err != nil {
			return nil, err
		}
		first |= m
		if m, err = iupac.Mask(t[1]); err != nil {
			return nil, err
		}
		second |= m
		thirds[i] = t[2]
	}

	groups, err := OptimizeThirdPosition(thirds)
	if err != nil {
		return nil, err
	}

	codons := make([]string, 0, len(groups))
	for _, g := range groups {
		third, err := iupac.LetterFor(g)
		if err != nil {
			return nil, err
		}
		codons = append(codons, string([]byte{
			iupac.LetterOfMask(first),
			iupac.LetterOfMask(second),
			third,
		}))
	}
	return codons, nil
}

// OptimizeThirdPosition returns the distinct nucleotide sets obtained by
// picking one letter from each third-position group, smallest first (ties
// in lexicographic order). Duplicate letter sets are collapsed after each
// group, so the work is bounded by the 15 possible sets.
func OptimizeThirdPosition(groups []string) ([]string, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	reachable := map[uint8]bool{0: true}
	for _, g := range groups {
		gm, err := iupac.Mask(g)
		if err != nil {
			return nil, err
		}
		next := make(map[uint8]bool, len(reachable)*2)
		for r := range reachable {
			for b := uint8(1); b < 16; b <<= 1 {
				if gm&b != 0 {
					next[r|b] = true
				}
			}
		}
		reachable = next
	}

	masks := make([]uint8, 0, len(reachable))
	for m := range reachable {
		masks = append(masks, m)
	}
	sort.Slice(masks, func(i, j int) bool {
		ci, cj := bits.OnesCount8(masks[i]), bits.OnesCount8(masks[j])
		if ci != cj {
			return ci < cj
		}
		return iupac.GroupOf(masks[i]) < iupac.GroupOf(masks[j])
	})

	out := make([]string, len(masks))
	for i, m := range masks {
		out[i] = iupac.GroupOf(m)
	}
	return out, nil
}
