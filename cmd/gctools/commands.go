package main

import (
	"errors"
	"io"

	"game_collection/config"
	"game_collection/tools"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(out io.Writer, logger *zap.Logger) *cobra.Command {
	var t *tools.Tools

	root := &cobra.Command{
		Use:           "gctools",
		Short:         "Maintenance tools for the game collection data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			t, err = tools.New(cfg.DataDir, out, logger)
			return err
		},
	}
	root.SetOut(out)
	root.PersistentFlags().String("data-dir", config.DefaultDataDir, "data directory path")

	// report logs a failed command and hands the error back so the exit
	// status is non-zero. A missing document is only a message.
	report := func(name string, err error) error {
		if err == nil || errors.Is(err, tools.ErrNoDocument) {
			return nil
		}
		logger.Error(name+" failed", zap.Error(err))
		return err
	}

	var targetDir string
	optimize := &cobra.Command{
		Use:   "optimize <source_dir>",
		Short: "Batch optimize images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := t.Optimize(args[0], targetDir)
			return report("optimize", err)
		},
	}
	optimize.Flags().StringVar(&targetDir, "target-dir", "", "target directory (default: the image directory)")

	createSample := &cobra.Command{
		Use:   "create-sample",
		Short: "Create sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report("create-sample", t.CreateSample())
		},
	}

	var exportOutput string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export game data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := t.Export(exportOutput)
			return report("export", err)
		},
	}
	export.Flags().StringVar(&exportOutput, "output", "", "output file name")

	importCmd := &cobra.Command{
		Use:   "import <input_file>",
		Short: "Import game data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report("import", t.Import(args[0]))
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove unused images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := t.Cleanup()
			return report("cleanup", err)
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := t.Stats()
			if errors.Is(err, tools.ErrNoDocument) {
				cmd.Println("No game data file found")
				return nil
			}
			if err != nil {
				return report("stats", err)
			}
			tools.PrintStatistics(cmd.OutOrStdout(), s)
			return nil
		},
	}

	var backupOutput string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Archive games.json and images into a zip file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := t.Backup(backupOutput)
			return report("backup", err)
		},
	}
	backup.Flags().StringVar(&backupOutput, "output", "", "archive file name")

	var dbOutput string
	exportDB := &cobra.Command{
		Use:   "export-db",
		Short: "Write a SQLite snapshot of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := t.ExportSQLite(dbOutput)
			return report("export-db", err)
		},
	}
	exportDB.Flags().StringVar(&dbOutput, "output", "", "database file name")

	root.AddCommand(optimize, createSample, export, importCmd, cleanup, stats, backup, exportDB)
	return root
}
