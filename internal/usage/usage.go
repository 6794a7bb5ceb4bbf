// Package usage provides organism-specific codon usage statistics: the
// probability of each codon within its synonymous family and its codon
// adaptation index weight (relative adaptiveness).
package usage

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/codon-genie/internal/gcode"
	"github.com/inodb/codon-genie/internal/iupac"
)

// ErrUnknownOrganism is returned by a Factory that has no usage data for an organism.
var ErrUnknownOrganism = errors.New("unknown organism")

// Provider exposes per-codon usage facts for one organism.
type Provider interface {
	Probability(codon string) float64
	CAI(codon string) float64
}

// Factory builds the Provider for an organism or taxonomy id.
type Factory func(organismID string) (Provider, error)

// Table is a Provider computed from codon counts.
type Table struct {
	organism    string
	probability map[string]float64
	cai         map[string]float64
}

// NewTable computes usage statistics from raw codon counts (or frequencies
// per thousand; only ratios matter). Codons missing from counts are treated
// as unobserved.
func NewTable(organism string, counts map[string]float64, code *gcode.Table) (*Table, error) {
	for codon, n := range counts {
		if len(codon) != 3 || strings.Trim(codon, iupac.Nucleotides) != "" {
			return nil, fmt.Errorf("invalid codon %q for organism %s", codon, organism)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %g for codon %s (organism %s)", n, codon, organism)
		}
	}

	t := &Table{
		organism:    organism,
		probability: make(map[string]float64, 64),
		cai:         make(map[string]float64, 64),
	}

	seen := make(map[byte]bool, 21)
	for _, codon := range gcode.Codons() {
		aa := code.Translate(codon)
		if seen[aa] {
			continue
		}
		seen[aa] = true

		syns := code.Synonyms(aa)
		var total, best float64
		for _, syn := range syns {
			total += counts[syn]
			best = max(best, counts[syn])
		}
		for _, syn := range syns {
			if total > 0 {
				t.probability[syn] = counts[syn] / total
			}
			if best > 0 {
				t.cai[syn] = counts[syn] / best
			}
		}
	}
	return t, nil
}

// Organism returns the organism id the table was built for.
func (t *Table) Organism() string { return t.organism }

// Probability returns the share of the codon within its synonymous family.
func (t *Table) Probability(codon string) float64 { return t.probability[codon] }

// CAI returns the codon's usage relative to the most used synonymous codon.
func (t *Table) CAI(codon string) float64 { return t.cai[codon] }

// ReadCounts reads a two column codon usage table: codon and count (or
// frequency). Lines starting with '#' and a leading "codon" header are
// skipped. RNA codons are accepted.
func ReadCounts(r io.Reader) (map[string]float64, error) {
	counts := make(map[string]float64, 64)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected codon and count, got %q", lineNum, line)
		}
		if strings.EqualFold(fields[0], "codon") {
			continue
		}
		codon := strings.ReplaceAll(strings.ToUpper(fields[0]), "U", "T")
		n, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse count: %w", lineNum, err)
		}
		counts[codon] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read codon usage: %w", err)
	}
	return counts, nil
}

//go:embed data/*.tsv
var builtinData embed.FS

// Taxonomy aliases for the embedded tables.
var builtinAliases = map[string]string{
	"83333":   "83333",
	"562":     "83333",
	"ecoli":   "83333",
	"e.coli":  "83333",
	"e. coli": "83333",
}

// Builtins returns the organism ids with embedded usage tables.
func Builtins() []string {
	ids := make([]string, 0, len(builtinAliases))
	for id := range builtinAliases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Builtin returns a Factory serving the embedded usage tables.
func Builtin(code *gcode.Table) Factory {
	return func(organismID string) (Provider, error) {
		name, ok := builtinAliases[strings.ToLower(strings.TrimSpace(organismID))]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrganism, organismID)
		}
		f, err := builtinData.Open("data/" + name + ".tsv")
		if err != nil {
			return nil, fmt.Errorf("open builtin usage table: %w", err)
		}
		defer f.Close()

		counts, err := ReadCounts(f)
		if err != nil {
			return nil, fmt.Errorf("builtin usage table %s: %w", name, err)
		}
		return NewTable(organismID, counts, code)
	}
}

// Chain returns a Factory that tries each factory in order, moving on only
// when a factory reports ErrUnknownOrganism.
func Chain(factories ...Factory) Factory {
	return func(organismID string) (Provider, error) {
		for _, f := range factories {
			p, err := f(organismID)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, ErrUnknownOrganism) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownOrganism, organismID)
	}
}
