package selector

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeCodonsMethionine(t *testing.T) {
	s := newTestSelector(t, fakeUsage{"ATG": 0.7})

	first, err := s.OptimizeCodons("M", testOrganism)
	require.NoError(t, err)
	second, err := s.OptimizeCodons("M", testOrganism)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 1)
	r := first[0]
	assert.Equal(t, "ATG", r.AmbiguousCodon)
	assert.Equal(t, []string{"ATG"}, r.Expansion)
	require.NotNil(t, r.Score)
	assert.InDelta(t, 0.7, *r.Score, 1e-12)
}

func TestOptimizeCodonsCaseAndDuplicates(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	upper, err := s.OptimizeCodons("DE", testOrganism)
	require.NoError(t, err)
	mixed, err := s.OptimizeCodons("eDde", testOrganism)
	require.NoError(t, err)
	assert.Equal(t, upper, mixed)
}

func TestOptimizeCodonsUnknownAminoAcid(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	for _, aas := range []string{"MX", "B", "M1"} {
		_, err := s.OptimizeCodons(aas, testOrganism)
		assert.ErrorIs(t, err, ErrUnknownAminoAcid, aas)
	}
}

func TestOptimizeCodonsEmpty(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})
	results, err := s.OptimizeCodons("", testOrganism)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOptimizeCodonsRanking(t *testing.T) {
	s := newTestSelector(t, fakeUsage{
		"CTG": 1.0, "CTA": 0.1, "TTA": 0.2, "CGT": 0.9, "AGA": 0.05, "TCT": 0.3,
	})

	for _, aas := range []string{"LRS", "DE", "ACDEFGHIKLMNPQRSTVWY", "L*"} {
		t.Run(aas, func(t *testing.T) {
			results, err := s.OptimizeCodons(aas, testOrganism)
			require.NoError(t, err)
			require.NotEmpty(t, results)

			for i := 1; i < len(results); i++ {
				prev, cur := results[i-1], results[i]
				require.LessOrEqual(t, len(prev.Expansion), len(cur.Expansion))
				if len(prev.Expansion) == len(cur.Expansion) {
					require.GreaterOrEqual(t, *prev.Score, *cur.Score)
				}
			}
		})
	}
}

func TestOptimizeCodonsClassification(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	results, err := s.OptimizeCodons("LR", testOrganism)
	require.NoError(t, err)

	for _, r := range results {
		require.NotNil(t, r.Score)
		for _, aa := range r.AminoAcids {
			switch aa.AminoAcid {
			case 'L', 'R':
				assert.Equal(t, ClassTarget, aa.Class, r.AmbiguousCodon)
			case '*':
				assert.Equal(t, ClassStop, aa.Class, r.AmbiguousCodon)
			default:
				assert.Equal(t, ClassOffTarget, aa.Class, r.AmbiguousCodon)
			}
		}
	}
}

func TestOptimizeCodonsPrefersHigherUsage(t *testing.T) {
	s := newTestSelector(t, fakeUsage{"GGG": 0.9})

	results, err := s.OptimizeCodons("G", testOrganism)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "GGG", results[0].AmbiguousCodon)
	// remaining ties keep generation order
	assert.Equal(t, "GGA", results[1].AmbiguousCodon)
	assert.Equal(t, "GGC", results[2].AmbiguousCodon)
	assert.Equal(t, "GGT", results[3].AmbiguousCodon)
}

func TestOptimizeCodonsStop(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	results, err := s.OptimizeCodons("*", testOrganism)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Len(t, results[0].Expansion, 1)
	// stop is never a target, even when requested
	assert.Equal(t, ClassStop, results[0].AminoAcids[0].Class)
	assert.Zero(t, *results[0].Score)
}

func TestCombinations(t *testing.T) {
	var got [][]Template
	for combo := range Combinations([]byte("LR")) {
		got = append(got, combo)
	}
	require.Len(t, got, 4)
	assert.Equal(t, []Template{templates['L'][0], templates['R'][0]}, got[0])
	assert.Equal(t, []Template{templates['L'][0], templates['R'][1]}, got[1])
	assert.Equal(t, []Template{templates['L'][1], templates['R'][0]}, got[2])
	assert.Equal(t, []Template{templates['L'][1], templates['R'][1]}, got[3])

	n := 0
	for range Combinations([]byte("ALRS*")) {
		n++
	}
	assert.Equal(t, 16, n)

	// restartable
	seq := Combinations([]byte("M"))
	assert.Len(t, slices.Collect(seq), 1)
	assert.Len(t, slices.Collect(seq), 1)

	assert.Empty(t, slices.Collect(Combinations(nil)))
	assert.Empty(t, slices.Collect(Combinations([]byte("X"))))
}

func TestCombinationsEarlyStop(t *testing.T) {
	n := 0
	for range Combinations([]byte("LRS")) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestMergeTemplates(t *testing.T) {
	codons, err := MergeTemplates([]Template{templates['M'][0]})
	require.NoError(t, err)
	assert.Equal(t, []string{"ATG"}, codons)

	codons, err = MergeTemplates([]Template{templates['L'][0], templates['R'][1]})
	require.NoError(t, err)
	assert.Equal(t, []string{"MKA", "MKG", "MKM", "MKR", "MKW", "MKS", "MKK"}, codons)

	codons, err = MergeTemplates([]Template{templates['C'][0], templates['D'][0]})
	require.NoError(t, err)
	assert.Equal(t, []string{"KRC", "KRT", "KRY"}, codons)

	_, err = MergeTemplates([]Template{{"A", "X", "G"}})
	assert.Error(t, err)
}

func TestOptimizeThirdPosition(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   []string
	}{
		{"single letter", []string{"G"}, []string{"G"}},
		{"single group", []string{"CT"}, []string{"C", "T"}},
		{"shared letter", []string{"CT", "CT"}, []string{"C", "T", "CT"}},
		{"wobble and purine", []string{"ACGT", "AG"}, []string{"A", "G", "AC", "AG", "AT", "CG", "GT"}},
		{"disjoint", []string{"A", "C", "G", "T"}, []string{"ACGT"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OptimizeThirdPosition(tt.groups)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := OptimizeThirdPosition([]string{"AX"})
	assert.Error(t, err)
}

func TestRankMissingScore(t *testing.T) {
	score := 0.4
	a := &AnalysisResult{AmbiguousCodon: "a", Expansion: []string{"x", "y"}}
	b := &AnalysisResult{AmbiguousCodon: "b", Expansion: []string{"x", "y"}, Score: &score}
	c := &AnalysisResult{AmbiguousCodon: "c", Expansion: []string{"x"}}

	results := []*AnalysisResult{a, b, c}
	Rank(results)
	assert.Equal(t, []*AnalysisResult{c, b, a}, results)
}
