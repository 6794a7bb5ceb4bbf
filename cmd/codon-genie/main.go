// Package main provides the codon-genie command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".codon-genie.yaml"

// errUsage marks command-line mistakes that exit with ExitUsage.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if isUsageError(err) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func isUsageError(err error) bool {
	if errors.Is(err, errUsage) {
		return true
	}
	// cobra reports unknown subcommands as plain errors
	return strings.HasPrefix(err.Error(), "unknown command")
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "codon-genie",
		Short: "Design degenerate codons for a set of amino acids",
		Long: `codon-genie selects ambiguous (IUPAC) codons that encode a requested set of
amino acids as specifically as possible, ranked by organism codon usage.`,
		Example: `  codon-genie optimize LRS                 # best codons for Leu, Arg, Ser
  codon-genie analyze NNK                  # break down an ambiguous codon
  codon-genie sequence MAGK A2CD,K4-P      # degenerate codons for edited positions
  codon-genie usage load counts.tsv        # import codon counts into DuckDB`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("%w: a command is required", errUsage)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ~/"+configName+")")
	flags.String("organism", "83333", "NCBI taxonomy id of the organism whose codon usage is used")
	flags.Int("table", 1, "NCBI genetic code table id")
	flags.String("usage-db", "", "DuckDB file with imported codon usage (default: builtin tables only)")
	flags.StringP("format", "f", "tab", "Output format: tab, json")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	viper.SetDefault("organism", "83333")
	viper.SetDefault("table", 1)
	viper.SetDefault("format", "tab")
	mustBind("organism", flags.Lookup("organism"))
	mustBind("table", flags.Lookup("table"))
	mustBind("usage.db", flags.Lookup("usage-db"))
	mustBind("format", flags.Lookup("format"))
	mustBind("verbose", flags.Lookup("verbose"))

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	cmd.AddCommand(newOptimizeCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newSequenceCmd())
	cmd.AddCommand(newUsageCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "codon-genie version %s (%s) built %s\n", version, commit, date)
			return nil
		},
	}
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// initConfig reads the config file and environment into viper. A missing
// default config file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, configName))
		}
	}
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("CODON_GENIE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if cfgFile != "" || !missing {
			return fmt.Errorf("reading config %s: %w", viper.ConfigFileUsed(), err)
		}
	}
	return nil
}

// newLogger builds a stderr logger; verbose switches to a development
// config at debug level.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
