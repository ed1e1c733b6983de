// Package cmd provides the CLI commands for ddcquery.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ddcquery/internal/config"
	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/logging"
	"github.com/Aman-CERP/ddcquery/pkg/version"
)

// state is shared by the subcommands of one root command.
type state struct {
	dir        string
	corpusDir  string
	corpusDB   string
	debug      bool
	cfg        *config.Config
	logCleanup func()
}

// NewRootCmd creates the root command for the ddcquery CLI.
func NewRootCmd() *cobra.Command {
	st := &state{}

	cmd := &cobra.Command{
		Use:   "ddcquery",
		Short: "Dewey Decimal reference retrieval",
		Long: `ddcquery retrieves Dewey Decimal Classification reference documents
(schedules, manual notes and auxiliary tables) for candidate numbers and
keywords, scoring every hit with explainable signals.

It runs as a CLI or as an MCP server for AI assistants.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: st.setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) { st.teardown() },
	}
	cmd.SetVersionTemplate("ddcquery version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&st.dir, "dir", ".", "Project directory holding .ddcquery.yaml")
	cmd.PersistentFlags().StringVar(&st.corpusDir, "corpus", "", "Corpus directory (overrides config)")
	cmd.PersistentFlags().StringVar(&st.corpusDB, "db", "", "Corpus SQLite database (overrides config)")
	cmd.PersistentFlags().BoolVar(&st.debug, "debug", false, "Enable debug logging to stderr")

	cmd.AddCommand(newQueryCmd(st))
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newSourcesCmd(st))
	cmd.AddCommand(newServeCmd(st))
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newConfigCmd(st))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and installs the CLI logger. serve installs its
// own file-only logger.
func (st *state) setup(cmd *cobra.Command, _ []string) error {
	root, err := config.FindProjectRoot(st.dir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if st.corpusDir != "" {
		cfg.Corpus.Dir = st.corpusDir
		cfg.Corpus.SQLitePath = ""
	}
	if st.corpusDB != "" {
		cfg.Corpus.SQLitePath = st.corpusDB
	}
	st.cfg = cfg

	if cmd.Name() == "serve" {
		return nil
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.FilePath,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxFiles:      cfg.Logging.MaxFiles,
		WriteToStderr: st.debug,
	}
	if st.debug {
		logCfg.Level = "debug"
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	st.logCleanup = cleanup
	slog.Debug("cli_started",
		slog.String("command", cmd.Name()),
		slog.String("project_root", root))
	return nil
}

func (st *state) teardown() {
	if st.logCleanup != nil {
		st.logCleanup()
		st.logCleanup = nil
	}
}

// Execute runs the root command, printing any error with its code and hint.
func Execute() error {
	root := NewRootCmd()
	ran, err := root.ExecuteC()
	if err != nil {
		writeError(root.ErrOrStderr(), ran, err)
	}
	return err
}

// writeError prints err as a JSON object when the failed command was asked
// for JSON output, otherwise in the terminal form.
func writeError(w io.Writer, cmd *cobra.Command, err error) {
	if wantsJSON(cmd) {
		if data, jerr := errors.FormatJSON(err); jerr == nil {
			fmt.Fprintln(w, string(data))
			return
		}
	}
	fmt.Fprint(w, errors.FormatForCLI(err))
}

// wantsJSON reports whether cmd was run with --format json or --json.
func wantsJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Value.String() == "json" {
		return true
	}
	if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
		return true
	}
	return false
}
