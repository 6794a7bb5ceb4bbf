// Package output provides result output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/codon-genie/internal/selector"
)

// Writer defines the interface for writing selector results.
type Writer interface {
	WriteHeader() error
	Write(r *selector.AnalysisResult) error
	WriteSequence(sequence string, codons []string) error
	Flush() error
}

// TabWriter writes results in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Ambiguous_codon",
			"Nucleotides",
			"Expansion_size",
			"Score",
			"Targets",
			"Off_targets",
			"Stops",
			"Expansion",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single analysis result.
func (tw *TabWriter) Write(r *selector.AnalysisResult) error {
	score := "-"
	if r.Score != nil {
		score = formatFloat(*r.Score)
	}

	var targets, offTargets []string
	stops := 0
	for _, aa := range r.AminoAcids {
		switch aa.Class {
		case selector.ClassTarget:
			targets = append(targets, formatAminoAcid(aa))
		case selector.ClassOffTarget:
			offTargets = append(offTargets, formatAminoAcid(aa))
		case selector.ClassStop:
			stops += len(aa.Codons)
		}
	}

	values := []string{
		r.AmbiguousCodon,
		strings.Join(r.Nucleotides[:], "/"),
		strconv.Itoa(len(r.Expansion)),
		score,
		joinOrDash(targets),
		joinOrDash(offTargets),
		strconv.Itoa(stops),
		strings.Join(r.Expansion, ","),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteSequence writes one row per sequence position with its chosen codon,
// followed by a comment line with the concatenated degenerate DNA.
func (tw *TabWriter) WriteSequence(sequence string, codons []string) error {
	if len(codons) == 0 {
		_, err := tw.w.WriteString("# no edits to optimize\n")
		return err
	}
	if _, err := tw.w.WriteString("#Position\tAmino_acid\tAmbiguous_codon\n"); err != nil {
		return err
	}
	for i, c := range codons {
		aa := "-"
		if i < len(sequence) {
			aa = sequence[i : i+1]
		}
		if _, err := tw.w.WriteString(strconv.Itoa(i+1) + "\t" + aa + "\t" + c + "\n"); err != nil {
			return err
		}
	}
	_, err := tw.w.WriteString("# DNA: " + strings.Join(codons, "") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatAminoAcid renders an amino acid with its codons, e.g. "L(CTG:1.0000,CTA:0.0741)".
func formatAminoAcid(aa selector.AminoAcidResult) string {
	var sb strings.Builder
	sb.WriteString(selector.AminoAcidName(aa.AminoAcid))
	sb.WriteByte('(')
	for i, c := range aa.Codons {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.Codon)
		sb.WriteByte(':')
		sb.WriteString(formatFloat(c.CAI))
	}
	sb.WriteByte(')')
	return sb.String()
}

// formatFloat formats a float64 as a 4-decimal string without fmt.Sprintf.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ";")
}
