package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/codon-genie/internal/duckdb"
	"github.com/inodb/codon-genie/internal/gcode"
	"github.com/inodb/codon-genie/internal/output"
	"github.com/inodb/codon-genie/internal/selector"
	"github.com/inodb/codon-genie/internal/usage"
)

func newOptimizeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "optimize <amino-acids>",
		Short: "Rank ambiguous codons encoding a set of amino acids",
		Long: `Generate every ambiguous codon that covers the requested amino acids and rank
them by expansion size, then by the summed CAI of their target codons.
Use '*' to request a stop codon.`,
		Example: `  codon-genie optimize LRS
  codon-genie optimize --limit 1 DE
  codon-genie optimize -f json --organism 562 ACDEFGHIKLMNPQRSTVWY`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("%w: --limit must not be negative", errUsage)
			}
			return withSelector(func(sel *selector.Selector, logger *zap.Logger) error {
				results, err := sel.OptimizeCodons(args[0], viper.GetString("organism"))
				if err != nil {
					return err
				}
				logger.Info("optimized codons",
					zap.String("amino_acids", args[0]),
					zap.Int("candidates", len(results)))
				if limit > 0 && len(results) > limit {
					results = results[:limit]
				}
				return writeResults(cmd.OutOrStdout(), results)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only report the best n codons (0 = all)")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		inputFile string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "analyze <ambiguous-codon>...",
		Short: "Show the amino acids ambiguous codons encode",
		Long: `Expand each ambiguous codon and report the amino acids it encodes with their
codon usage. Codons are analysed in parallel and reported in input order.`,
		Example: `  codon-genie analyze NNK
  codon-genie analyze -f json TRR NNS
  codon-genie analyze --input codons.txt --workers 4`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && inputFile == "" {
				return fmt.Errorf("%w: requires at least one codon or --input", errUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			codons := args
			if inputFile != "" {
				fromFile, err := readCodons(inputFile)
				if err != nil {
					return err
				}
				codons = append(codons, fromFile...)
			}

			return withSelector(func(sel *selector.Selector, logger *zap.Logger) error {
				w, err := newWriter(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := w.WriteHeader(); err != nil {
					return fmt.Errorf("writing header: %w", err)
				}

				items := make(chan selector.WorkItem, len(codons))
				for i, c := range codons {
					items <- selector.WorkItem{Seq: i, Codon: c}
				}
				close(items)

				results := sel.ParallelAnalyze(items, viper.GetString("organism"), workers)
				err = selector.OrderedCollect(results, func(r selector.WorkResult) error {
					if r.Err != nil {
						return r.Err
					}
					return w.Write(r.Result)
				})
				if err != nil {
					return err
				}
				logger.Info("analyzed codons", zap.Int("count", len(codons)))
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "File with one ambiguous codon per line ('-' for stdin)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of parallel workers (0 = all CPUs)")
	return cmd
}

// readCodons reads one codon per line, skipping blank lines and '#' comments.
func readCodons(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open codon list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var codons []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codons = append(codons, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read codon list: %w", err)
	}
	return codons, nil
}

func newSequenceCmd() *cobra.Command {
	var dna bool

	cmd := &cobra.Command{
		Use:   "sequence <protein-sequence> <edits>",
		Short: "Pick ambiguous codons for edited positions of a protein",
		Long: `Apply comma-separated edits to a protein sequence and choose one ambiguous
codon per position. Each edit is <original><position><replacements>, e.g.
A5VW allows V or W at position 5; A5-VW allows every amino acid except V and W.
With --dna the sequence is a coding DNA sequence translated with --table.`,
		Example: `  codon-genie sequence MAGK A2CD
  codon-genie sequence MAGK A2CD,K4-P
  codon-genie sequence --dna ATGGCAGGTAAA A2CD`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSelector(func(sel *selector.Selector, logger *zap.Logger) error {
				protein := args[0]
				if dna {
					protein = sel.GeneticCode().TranslateSequence(args[0])
					logger.Debug("translated coding sequence",
						zap.Int("nucleotides", len(args[0])),
						zap.String("protein", protein))
				}

				codons, err := sel.OptimizeSequence(protein, args[1], viper.GetString("organism"))
				if err != nil {
					return err
				}
				w, err := newWriter(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := w.WriteSequence(protein, codons); err != nil {
					return err
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&dna, "dna", false, "Treat the sequence as coding DNA")
	return cmd
}

// withSelector builds a logger and a selector from the current configuration,
// runs fn and releases any opened usage database.
func withSelector(fn func(*selector.Selector, *zap.Logger) error) error {
	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	code, err := gcode.ByID(viper.GetInt("table"))
	if err != nil {
		return err
	}

	factory := usage.Builtin(code)
	if path := viper.GetString("usage.db"); path != "" {
		store, err := duckdb.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		store.SetLogger(logger)
		factory = usage.Chain(store.Factory(code), factory)
		logger.Debug("using codon usage database", zap.String("path", path))
	}

	sel := selector.New(code, factory)
	sel.SetLogger(logger)
	return fn(sel, logger)
}

// newWriter creates the output writer selected by the format setting.
func newWriter(out io.Writer) (output.Writer, error) {
	switch format := viper.GetString("format"); format {
	case "tab", "":
		return output.NewTabWriter(out), nil
	case "json":
		return output.NewJSONWriter(out), nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", errUsage, format)
	}
}

func writeResults(out io.Writer, results []*selector.AnalysisResult) error {
	w, err := newWriter(out)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return w.Flush()
}
