package output

import (
	"encoding/json"
	"io"

	"github.com/inodb/codon-genie/internal/selector"
)

// jsonCodon, jsonAminoAcid and jsonResult use the field names of the
// CodonGenie web payload.
type jsonCodon struct {
	Codon       string  `json:"codon"`
	Probability float64 `json:"probability"`
	CAI         float64 `json:"cai"`
}

type jsonAminoAcid struct {
	AminoAcid string      `json:"amino_acid"`
	Type      int         `json:"type"`
	Codons    []jsonCodon `json:"codons"`
}

type jsonResult struct {
	AmbiguousCodon string          `json:"ambiguous_codon"`
	Nucleotides    [3]string       `json:"ambiguous_codon_nucleotides"`
	Expansion      []string        `json:"ambiguous_codon_expansion"`
	AminoAcids     []jsonAminoAcid `json:"amino_acids"`
	Score          *float64        `json:"score,omitempty"`
}

type jsonSequence struct {
	Sequence string   `json:"sequence"`
	Codons   []string `json:"codons"`
}

// JSONWriter collects results and writes them as a single JSON array on Flush.
type JSONWriter struct {
	w        io.Writer
	results  []jsonResult
	sequence *jsonSequence
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w, results: []jsonResult{}}
}

// WriteHeader is a no-op; JSON output has no header.
func (jw *JSONWriter) WriteHeader() error {
	return nil
}

// Write buffers a single analysis result.
func (jw *JSONWriter) Write(r *selector.AnalysisResult) error {
	jw.results = append(jw.results, toJSON(r))
	return nil
}

// WriteSequence buffers an optimized sequence; Flush then writes it as an
// object instead of the result array.
func (jw *JSONWriter) WriteSequence(sequence string, codons []string) error {
	if codons == nil {
		codons = []string{}
	}
	jw.sequence = &jsonSequence{Sequence: sequence, Codons: codons}
	return nil
}

// Flush encodes the buffered output.
func (jw *JSONWriter) Flush() error {
	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	if jw.sequence != nil {
		return enc.Encode(jw.sequence)
	}
	return enc.Encode(jw.results)
}

func toJSON(r *selector.AnalysisResult) jsonResult {
	out := jsonResult{
		AmbiguousCodon: r.AmbiguousCodon,
		Nucleotides:    r.Nucleotides,
		Expansion:      r.Expansion,
		AminoAcids:     make([]jsonAminoAcid, 0, len(r.AminoAcids)),
		Score:          r.Score,
	}
	for _, aa := range r.AminoAcids {
		ja := jsonAminoAcid{
			AminoAcid: selector.AminoAcidName(aa.AminoAcid),
			Type:      int(aa.Class),
			Codons:    make([]jsonCodon, 0, len(aa.Codons)),
		}
		for _, c := range aa.Codons {
			ja.Codons = append(ja.Codons, jsonCodon{Codon: c.Codon, Probability: c.Probability, CAI: c.CAI})
		}
		out.AminoAcids = append(out.AminoAcids, ja)
	}
	return out
}
