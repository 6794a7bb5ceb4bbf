package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/codon-genie/internal/gcode"
	"github.com/inodb/codon-genie/internal/usage"
)

// OrganismSummary describes the usage data stored for one organism.
type OrganismSummary struct {
	ID     string
	Codons int64
	Total  float64
}

// Load bulk-loads codon counts from a tab-separated file using DuckDB's read_csv.
// The file has a header line followed by rows of:
//
//	organism_id  codon  count
//
// RNA codons are converted to DNA. Rows for an organism/codon pair already in
// the store are replaced. A file whose size and modification time match a
// previous load is skipped; the returned bool reports whether data was loaded.
func (s *Store) Load(tsvPath string) (bool, error) {
	fp, err := StatFile(tsvPath)
	if err != nil {
		return false, fmt.Errorf("stat usage file: %w", err)
	}
	loaded, err := s.sourceLoaded(fp)
	if err != nil {
		return false, err
	}
	if loaded {
		s.logger.Info("usage file unchanged, skipping", zap.String("path", fp.Path))
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT OR REPLACE INTO codon_usage
		SELECT organism_id, replace(upper(trim(codon)), 'U', 'T'), count
		FROM read_csv('%s', delim='\t', header=true,
			columns={
				'organism_id': 'VARCHAR',
				'codon': 'VARCHAR',
				'count': 'DOUBLE'
			})`, strings.ReplaceAll(fp.Path, "'", "''"))

	res, err := tx.Exec(query)
	if err != nil {
		return false, fmt.Errorf("loading codon usage data: %w", err)
	}
	if err := s.recordSource(tx, fp); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit load: %w", err)
	}

	n, _ := res.RowsAffected()
	s.logger.Info("loaded codon usage", zap.String("path", fp.Path), zap.Int64("rows", n))
	return true, nil
}

// Insert replaces the codon counts stored for an organism using the Appender API.
func (s *Store) Insert(organismID string, counts map[string]float64) error {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `DELETE FROM codon_usage WHERE organism_id=?`, organismID); err != nil {
		return fmt.Errorf("clear codon usage for %s: %w", organismID, err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "codon_usage")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	codons := make([]string, 0, len(counts))
	for codon := range counts {
		codons = append(codons, codon)
	}
	sort.Strings(codons)

	for _, codon := range codons {
		if err := appender.AppendRow(organismID, codon, counts[codon]); err != nil {
			return fmt.Errorf("append codon usage: %w", err)
		}
	}

	return appender.Flush()
}

// Counts returns the codon counts stored for an organism. The map is empty
// when the organism is unknown.
func (s *Store) Counts(organismID string) (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT codon, count FROM codon_usage WHERE organism_id=?`, organismID)
	if err != nil {
		return nil, fmt.Errorf("query codon usage: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]float64, 64)
	for rows.Next() {
		var codon string
		var n float64
		if err := rows.Scan(&codon, &n); err != nil {
			return nil, fmt.Errorf("scan codon usage: %w", err)
		}
		counts[codon] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codon usage: %w", err)
	}
	return counts, nil
}

// Organisms lists the organisms with stored usage data, ordered by id.
func (s *Store) Organisms() ([]OrganismSummary, error) {
	rows, err := s.db.Query(`SELECT organism_id, COUNT(*), SUM(count)
		FROM codon_usage GROUP BY organism_id ORDER BY organism_id`)
	if err != nil {
		return nil, fmt.Errorf("query organisms: %w", err)
	}
	defer rows.Close()

	var out []OrganismSummary
	for rows.Next() {
		var o OrganismSummary
		if err := rows.Scan(&o.ID, &o.Codons, &o.Total); err != nil {
			return nil, fmt.Errorf("scan organism: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organisms: %w", err)
	}
	return out, nil
}

// Factory returns a usage.Factory that builds providers from the stored
// counts. Organisms without rows report usage.ErrUnknownOrganism so the
// factory can be chained with usage.Builtin.
func (s *Store) Factory(code *gcode.Table) usage.Factory {
	return func(organismID string) (usage.Provider, error) {
		counts, err := s.Counts(organismID)
		if err != nil {
			return nil, err
		}
		if len(counts) == 0 {
			return nil, fmt.Errorf("%w: %s", usage.ErrUnknownOrganism, organismID)
		}
		s.logger.Debug("building usage table from store",
			zap.String("organism", organismID),
			zap.Int("codons", len(counts)))
		return usage.NewTable(organismID, counts, code)
	}
}
