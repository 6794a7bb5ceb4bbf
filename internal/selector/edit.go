package selector

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Edit is a parsed sequence edit such as "A5VW" or "A5-VW".
type Edit struct {
	Token    string
	Original byte
	// Position is 0-based.
	Position int
	Invert   bool
	// Replacement holds the distinct replacement amino acids, sorted. For an
	// inverted edit it is every standard amino acid not listed.
	Replacement string
}

// Edit: original residue, 1-based position, optional invert flag, new residues.
var reEdit = regexp.MustCompile(`^([A-Z])(\d+)(-?)([A-Z]+)$`)

// ParseEdit parses a single edit token.
func ParseEdit(token string) (Edit, error) {
	m := reEdit.FindStringSubmatch(token)
	if m == nil {
		return Edit{}, fmt.Errorf("%w: %q", ErrInvalidEditSyntax, token)
	}
	pos, err := strconv.Atoi(m[2])
	if err != nil || pos < 1 {
		return Edit{}, fmt.Errorf("%w: %q (position must be a positive integer)", ErrInvalidEditSyntax, token)
	}

	e := Edit{
		Token:    token,
		Original: m[1][0],
		Position: pos - 1,
		Invert:   m[3] == "-",
	}

	listed := make(map[byte]bool, len(m[4]))
	for i := 0; i < len(m[4]); i++ {
		listed[m[4][i]] = true
	}

	var repl []byte
	if e.Invert {
		for i := 0; i < len(StandardAminoAcids); i++ {
			if !listed[StandardAminoAcids[i]] {
				repl = append(repl, StandardAminoAcids[i])
			}
		}
	} else {
		for aa := range listed {
			repl = append(repl, aa)
		}
		sort.Slice(repl, func(i, j int) bool { return repl[i] < repl[j] })
	}
	e.Replacement = string(repl)

	return e, nil
}

// ParseEdits parses a comma-separated list of edits. Tokens are trimmed and
// empty tokens are ignored.
func ParseEdits(edits string) ([]Edit, error) {
	var out []Edit
	for _, token := range strings.Split(edits, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		e, err := ParseEdit(token)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ApplyEdits validates edits against an amino acid sequence and returns the
// replacement amino acids per 0-based position. Edits at the same position
// are concatenated.
func ApplyEdits(sequence string, edits []Edit) (map[int]string, error) {
	edited := make(map[int]string, len(edits))
	for _, e := range edits {
		if e.Position >= len(sequence) || sequence[e.Position] != e.Original {
			return nil, fmt.Errorf("%w: %q does not match the sequence", ErrInvalidEdit, e.Token)
		}
		if e.Replacement == "" {
			return nil, fmt.Errorf("%w: %q leaves no replacement amino acids", ErrInvalidEdit, e.Token)
		}
		edited[e.Position] += e.Replacement
	}
	return edited, nil
}

// OptimizeSequence returns the best ambiguous codon for every position of an
// amino acid sequence, using the edited amino acids where edits apply and the
// original residue elsewhere. When edits contains no edit the result is empty,
// meaning there is nothing to optimize. Any invalid edit fails the whole call.
func (s *Selector) OptimizeSequence(sequence, edits, organismID string) ([]string, error) {
	sequence = strings.ToUpper(strings.TrimSpace(sequence))

	parsed, err := ParseEdits(edits)
	if err != nil {
		return nil, err
	}
	edited, err := ApplyEdits(sequence, parsed)
	if err != nil {
		return nil, err
	}
	if len(edited) == 0 {
		return nil, nil
	}

	codons := make([]string, 0, len(sequence))
	for pos := 0; pos < len(sequence); pos++ {
		aminoAcids, ok := edited[pos]
		if !ok {
			aminoAcids = sequence[pos : pos+1]
		}
		results, err := s.OptimizeCodons(aminoAcids, organismID)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", pos+1, err)
		}
		codons = append(codons, results[0].AmbiguousCodon)
	}

	s.logger.Debug("optimized sequence",
		zap.Int("length", len(sequence)),
		zap.Int("edited_positions", len(edited)))
	return codons, nil
}
