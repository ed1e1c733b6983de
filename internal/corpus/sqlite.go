package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/ddcquery/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	source      TEXT    NOT NULL,
	ord         INTEGER NOT NULL,
	number      TEXT    NOT NULL,
	heading     TEXT    NOT NULL DEFAULT '',
	description TEXT    NOT NULL DEFAULT '',
	table_id    TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (source, ord)
);
`

// sqliteDSN builds a file: URI for path. Characters such as '?' and '#' in
// the path are escaped so they are not read as URI syntax.
func sqliteDSN(path, mode string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=" + mode}
	return u.String(), nil
}

// LoadSQLite reads the documents table of a corpus database. Rows are
// grouped by source tag, compared case-insensitively, in ord order. Rows
// with an unknown source are skipped and counted.
func LoadSQLite(ctx context.Context, path string) (*Corpus, *LoadReport, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, errors.IOError("corpus database not found", err).
			WithDetail("path", path)
	}

	dsn, err := sqliteDSN(path, "ro")
	if err != nil {
		return nil, nil, errors.IOError("invalid corpus database path", err).
			WithDetail("path", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, errors.New(errors.ErrCodeDatabase, "failed to open corpus database", err).
			WithDetail("path", path)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT source, number, heading, description, table_id
		   FROM documents
		  ORDER BY ord, source`)
	if err != nil {
		return nil, nil, errors.New(errors.ErrCodeDatabase, "failed to query corpus database", err).
			WithDetail("path", path)
	}
	defer rows.Close()

	var grouped [numSources][]Document
	report := newLoadReport()
	unknown := make(map[string]int)
	for rows.Next() {
		var source string
		var d Document
		if err := rows.Scan(&source, &d.Number, &d.Heading, &d.Description, &d.TableID); err != nil {
			return nil, nil, errors.New(errors.ErrCodeCorpusMalformed, "failed to scan document row", err)
		}
		tag, ok := ParseSourceTag(source)
		if !ok {
			unknown[source]++
			report.SkippedDocs++
			continue
		}
		if d.Number == "" {
			report.SkippedDocs++
			continue
		}
		grouped[tag] = append(grouped[tag], d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.New(errors.ErrCodeDatabase, "failed to read corpus database", err)
	}

	for source, n := range unknown {
		slog.Warn("corpus_unknown_source",
			slog.String("source", source),
			slog.Int("rows", n))
	}

	c := &Corpus{}
	for tag, docs := range grouped {
		if len(docs) == 0 {
			continue
		}
		c.Add(NewIndex(SourceTag(tag), docs))
		report.Loaded[SourceTag(tag)] = len(docs)
	}
	return c, report, nil
}

// SaveSQLite writes every loaded source of c into a corpus database at path,
// replacing rows of the same sources in any letter case. Sources are stored
// under their canonical tag names.
func SaveSQLite(ctx context.Context, path string, c *Corpus) error {
	dsn, err := sqliteDSN(path, "rwc")
	if err != nil {
		return errors.IOError("invalid corpus database path", err).
			WithDetail("path", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return errors.New(errors.ErrCodeDatabase, "failed to open corpus database", err).
			WithDetail("path", path)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return errors.New(errors.ErrCodeDatabase, "failed to initialize schema", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteStmt, err := tx.PrepareContext(ctx, `DELETE FROM documents WHERE source = ? COLLATE NOCASE`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents(source, ord, number, heading, description, table_id)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer insertStmt.Close()

	for _, tag := range c.Sources() {
		idx, _ := c.Index(tag)
		if _, err := deleteStmt.ExecContext(ctx, tag.String()); err != nil {
			return fmt.Errorf("failed to clear source %s: %w", tag, err)
		}
		for ord := 0; ord < idx.Len(); ord++ {
			d := idx.Doc(ord)
			if _, err := insertStmt.ExecContext(ctx, tag.String(), ord, d.Number, d.Heading, d.Description, d.TableID); err != nil {
				return fmt.Errorf("failed to insert %s/%d: %w", tag, ord, err)
			}
		}
	}

	return tx.Commit()
}
