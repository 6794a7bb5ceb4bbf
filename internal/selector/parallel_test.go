package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(codons []string) <-chan WorkItem {
	ch := make(chan WorkItem, len(codons))
	for i, c := range codons {
		ch <- WorkItem{Seq: i, Codon: c}
	}
	close(ch)
	return ch
}

func TestParallelAnalyze_OrderPreservation(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	var codons []string
	for _, c := range []string{"NNK", "TRR", "ATG", "gaw", "MKA"} {
		for range 40 {
			codons = append(codons, c)
		}
	}

	results := s.ParallelAnalyze(makeItems(codons), testOrganism, 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		assert.Equal(t, codons[r.Seq], r.Codon)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, collected, len(codons))
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelAnalyze_SingleWorker(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	results := s.ParallelAnalyze(makeItems([]string{"trr", "ATG"}), testOrganism, 1)

	var got []string
	err := OrderedCollect(results, func(r WorkResult) error {
		got = append(got, r.Result.AmbiguousCodon)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TRR", "ATG"}, got)
}

func TestParallelAnalyze_ErrorPerItem(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	results := s.ParallelAnalyze(makeItems([]string{"ATG", "AT", "XYZ"}), testOrganism, 0)

	var errs []error
	err := OrderedCollect(results, func(r WorkResult) error {
		errs = append(errs, r.Err)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrInvalidCodon)
	assert.Error(t, errs[2])
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	s := newTestSelector(t, fakeUsage{})

	codons := make([]string, 100)
	for i := range codons {
		codons[i] = "NNN"
	}
	results := s.ParallelAnalyze(makeItems(codons), testOrganism, 4)

	stop := errors.New("stop")
	n := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		n++
		if n == 10 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 10, n)
}
