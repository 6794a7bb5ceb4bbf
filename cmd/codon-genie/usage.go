package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/codon-genie/internal/duckdb"
	"github.com/inodb/codon-genie/internal/gcode"
	"github.com/inodb/codon-genie/internal/selector"
	"github.com/inodb/codon-genie/internal/usage"
)

func newUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Manage codon usage tables",
		Long: `Import, list and inspect codon usage tables. Imported tables are stored in the
DuckDB file given by --usage-db (config key usage.db).`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newUsageLoadCmd())
	cmd.AddCommand(newUsageListCmd())
	cmd.AddCommand(newUsageShowCmd())

	return cmd
}

func newUsageLoadCmd() *cobra.Command {
	var organismID string

	cmd := &cobra.Command{
		Use:   "load <tsv-file>",
		Short: "Import codon counts into the usage database",
		Long: `Import codon counts from a tab-separated file.

Without --organism-id the file has a header line and three columns:
  organism_id  codon  count
With --organism-id the file has two columns (codon, count) for that organism,
as exported by the Kazusa or CoCoPUTs databases.`,
		Example: `  codon-genie --usage-db usage.duckdb usage load cocoputs.tsv
  codon-genie --usage-db usage.duckdb usage load --organism-id 4932 yeast.tsv`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *duckdb.Store) error {
				out := cmd.OutOrStdout()
				if organismID != "" {
					return loadOrganism(store, organismID, args[0], out)
				}
				loaded, err := store.Load(args[0])
				if err != nil {
					return err
				}
				if !loaded {
					fmt.Fprintf(out, "%s is unchanged since the last load\n", args[0])
					return nil
				}
				fmt.Fprintf(out, "Loaded %s into %s\n", args[0], store.Path())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&organismID, "organism-id", "", "Organism id for a two-column codon/count file")
	return cmd
}

func loadOrganism(store *duckdb.Store, organismID, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open usage file: %w", err)
	}
	defer f.Close()

	counts, err := usage.ReadCounts(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := store.Insert(organismID, counts); err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d codons for organism %s into %s\n", len(counts), organismID, store.Path())
	return nil
}

func newUsageListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organisms with codon usage tables",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "#Organism\tSource\tCodons\tTotal")
			for _, id := range usage.Builtins() {
				fmt.Fprintf(out, "%s\tbuiltin\t-\t-\n", id)
			}
			if viper.GetString("usage.db") == "" {
				return nil
			}
			return withStore(func(store *duckdb.Store) error {
				organisms, err := store.Organisms()
				if err != nil {
					return err
				}
				for _, o := range organisms {
					fmt.Fprintf(out, "%s\tduckdb\t%d\t%s\n", o.ID, o.Codons,
						strconv.FormatFloat(o.Total, 'f', -1, 64))
				}
				return nil
			})
		},
	}
}

func newUsageShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [organism]",
		Short: "Print probability and CAI of every codon for an organism",
		Long: `Print the usage facts the selector sees for each of the 64 codons. The
organism defaults to the --organism setting.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			organismID := viper.GetString("organism")
			if len(args) == 1 {
				organismID = args[0]
			}
			return withProvider(organismID, func(code *gcode.Table, p usage.Provider) error {
				w := bufio.NewWriter(cmd.OutOrStdout())
				fmt.Fprintln(w, "#Codon\tAmino_acid\tProbability\tCAI")
				for _, codon := range gcode.Codons() {
					fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\n", codon,
						selector.AminoAcidName(code.Translate(codon)),
						p.Probability(codon), p.CAI(codon))
				}
				return w.Flush()
			})
		},
	}
}

// withStore opens the configured usage database.
func withStore(fn func(*duckdb.Store) error) error {
	path := viper.GetString("usage.db")
	if path == "" {
		return fmt.Errorf("%w: --usage-db (or config key usage.db) is required", errUsage)
	}

	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	store.SetLogger(logger)
	logger.Debug("opened usage database", zap.String("path", path))

	return fn(store)
}

// withProvider resolves the usage provider for an organism the same way the
// selector does: the usage database first, then the builtin tables.
func withProvider(organismID string, fn func(*gcode.Table, usage.Provider) error) error {
	return withSelector(func(sel *selector.Selector, _ *zap.Logger) error {
		p, err := sel.Provider(organismID)
		if err != nil {
			return err
		}
		return fn(sel.GeneticCode(), p)
	})
}
