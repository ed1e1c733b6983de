package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/output"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <corpus-dir> <database>",
		Short: "Import a corpus directory into a SQLite database",
		Long: `Import the per-source JSON/YAML files of a corpus directory into a
SQLite database. Sources present in the directory replace the same sources
in the database; other sources are kept.

Set corpus.sqlite_path (or pass --db) to query the database afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1])
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, dir, dbPath string) error {
	out := output.New(cmd.OutOrStdout())

	c, report, err := corpus.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, tag := range report.FailedSources() {
		out.Warningf("%s skipped: %s", tag, report.Failed[tag])
	}
	if c.Len() == 0 {
		return errors.New(errors.ErrCodeCorpusMalformed, "no documents to import", nil).
			WithDetail("path", dir)
	}

	sources := c.Sources()
	for i, tag := range sources {
		out.Progress(i+1, len(sources), tag.String())
	}
	if err := corpus.SaveSQLite(cmd.Context(), dbPath, c); err != nil {
		return err
	}
	out.Successf("Imported %d documents from %d sources into %s", c.Len(), len(sources), dbPath)
	if report.SkippedDocs > 0 {
		out.Warningf("%d records without a notation were skipped", report.SkippedDocs)
	}
	return nil
}
