package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain keeps tests away from the user's ~/.codon-genie.yaml.
func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "codon-genie-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}

// runCLI executes the command line with a clean viper state.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "codon-genie version dev")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"missing argument", []string{"optimize"}},
		{"extra argument", []string{"sequence", "MAG", "A2C", "G3W"}},
		{"analyze without codons", []string{"analyze"}},
		{"unknown flag", []string{"optimize", "--bogus", "M"}},
		{"unknown format", []string{"optimize", "-f", "xml", "M"}},
		{"negative limit", []string{"optimize", "--limit", "-1", "M"}},
		{"load without database", []string{"usage", "load", "counts.tsv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, ExitUsage, code, stderr)
		})
	}
}

func TestOptimize(t *testing.T) {
	code, stdout, stderr := runCLI(t, "optimize", "M")
	require.Equal(t, ExitSuccess, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "#Ambiguous_codon"))
	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, "ATG", fields[0])
	assert.Equal(t, "1", fields[2])
	assert.Equal(t, "1.0000", fields[3])
}

func TestOptimizeJSONLimit(t *testing.T) {
	code, stdout, stderr := runCLI(t, "optimize", "--format", "json", "--limit", "1", "DE")
	require.Equal(t, ExitSuccess, code, stderr)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "GAW", results[0]["ambiguous_codon"])
}

func TestOptimizeFormatFromEnv(t *testing.T) {
	t.Setenv("CODON_GENIE_FORMAT", "json")
	code, stdout, stderr := runCLI(t, "optimize", "M")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "["))
}

func TestOptimizeUnknownAminoAcid(t *testing.T) {
	code, _, stderr := runCLI(t, "optimize", "MX")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "unknown amino acid")
}

func TestOptimizeUnknownOrganismAndTable(t *testing.T) {
	code, _, stderr := runCLI(t, "optimize", "--organism", "4932", "M")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "4932")

	code, _, _ = runCLI(t, "optimize", "--table", "7", "M")
	assert.Equal(t, ExitError, code)
}

func TestAnalyze(t *testing.T) {
	code, stdout, stderr := runCLI(t, "analyze", "trr")
	require.Equal(t, ExitSuccess, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, "TRR", fields[0])
	assert.Equal(t, "4", fields[2])
	assert.Equal(t, "-", fields[3])
	assert.Equal(t, "3", fields[6])
	assert.Equal(t, "TAA,TAG,TGA,TGG", fields[7])
}

func TestAnalyzeMany(t *testing.T) {
	list := filepath.Join(t.TempDir(), "codons.txt")
	require.NoError(t, os.WriteFile(list, []byte("# library\nNNK\n\nGAW\n"), 0644))

	code, stdout, stderr := runCLI(t, "analyze", "--workers", "2", "--input", list, "TRR", "ATG")
	require.Equal(t, ExitSuccess, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	var got []string
	for _, line := range lines[1:] {
		got = append(got, strings.SplitN(line, "\t", 2)[0])
	}
	assert.Equal(t, []string{"TRR", "ATG", "NNK", "GAW"}, got)

	code, _, stderr = runCLI(t, "analyze", "ATG", "XYZ")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "XYZ")
}

func TestAnalyzeMitochondrialTable(t *testing.T) {
	code, stdout, stderr := runCLI(t, "analyze", "--table", "2", "TGA")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "W(TGA:")
}

func TestSequence(t *testing.T) {
	code, stdout, stderr := runCLI(t, "sequence", "MAG", "A2C")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "1\tM\tATG")
	assert.Contains(t, stdout, "# DNA: ATG")

	code, stdout, stderr = runCLI(t, "sequence", "MAG", "")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "# no edits to optimize\n", stdout)
}

func TestSequenceFromDNA(t *testing.T) {
	code, stdout, stderr := runCLI(t, "sequence", "--dna", "atggcaggt", "A2C")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "3\tG\t")
}

func TestSequenceInvalidEdit(t *testing.T) {
	code, _, stderr := runCLI(t, "sequence", "MAG", "A1C")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "A1C")
}

func TestUsageLoadListShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "usage.duckdb")
	counts := filepath.Join(dir, "yeast.tsv")
	require.NoError(t, os.WriteFile(counts, []byte("codon\tcount\nATG\t10\nGGG\t3\nGGA\t6\n"), 0644))

	code, stdout, stderr := runCLI(t, "--usage-db", db, "usage", "load", "--organism-id", "4932", counts)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Loaded 3 codons for organism 4932")

	code, stdout, stderr = runCLI(t, "--usage-db", db, "usage", "list")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "83333\tbuiltin")
	assert.Contains(t, stdout, "4932\tduckdb\t3\t19")

	code, stdout, stderr = runCLI(t, "--usage-db", db, "usage", "show", "4932")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "GGA\tG\t0.6667\t1.0000")
	assert.Contains(t, stdout, "GGG\tG\t0.3333\t0.5000")

	code, stdout, stderr = runCLI(t, "--usage-db", db, "--organism", "4932", "optimize", "G")
	require.Equal(t, ExitSuccess, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[1], "GGA\t"))

	// builtin tables remain reachable through the database
	code, _, stderr = runCLI(t, "--usage-db", db, "optimize", "M")
	assert.Equal(t, ExitSuccess, code, stderr)
}

func TestUsageLoadThreeColumn(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "usage.duckdb")
	counts := filepath.Join(dir, "counts.tsv")
	require.NoError(t, os.WriteFile(counts, []byte("organism_id\tcodon\tcount\n9606\tATG\t22\n9606\tTGG\t13\n"), 0644))

	code, stdout, stderr := runCLI(t, "--usage-db", db, "usage", "load", counts)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Loaded")

	code, stdout, stderr = runCLI(t, "--usage-db", db, "usage", "load", counts)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "unchanged")
}

func TestConfigSetGet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	code, stdout, stderr := runCLI(t, "config", "set", "organism", "4932")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, filepath.Join(home, configName))

	code, stdout, stderr = runCLI(t, "config", "get", "organism")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "4932\n", stdout)

	code, stdout, stderr = runCLI(t, "config")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "organism: \"4932\"")

	code, _, _ = runCLI(t, "config", "set", "table", "mito")
	assert.Equal(t, ExitUsage, code)

	code, _, _ = runCLI(t, "config", "get", "no.such.key")
	assert.Equal(t, ExitError, code)
}

func TestExplicitConfigMissing(t *testing.T) {
	code, _, stderr := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "reading config")
}
