package selector

import (
	"runtime"
	"strings"
	"sync"
)

// WorkItem holds an ambiguous codon queued for analysis.
type WorkItem struct {
	Seq   int
	Codon string
}

// WorkResult holds the analysis of a single work item.
type WorkResult struct {
	Seq    int
	Codon  string
	Result *AnalysisResult
	Err    error
}

// ParallelAnalyze analyses work items for one organism using a pool of
// workers. Results arrive in completion order; use OrderedCollect to consume
// them in sequence-number order. If workers is 0, runtime.NumCPU() is used.
func (s *Selector) ParallelAnalyze(items <-chan WorkItem, organismID string, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				r, err := s.Analyze(strings.ToUpper(item.Codon), organismID, nil)
				results <- WorkResult{
					Seq:    item.Seq,
					Codon:  item.Codon,
					Result: r,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// Out-of-order results wait in a pending map until their turn.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
