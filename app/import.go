package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/biblia-online/biblia/internal/daemon"
	"github.com/biblia-online/biblia/internal/importer"
)

func init() { //nolint: gochecknoinits
	importCmd.PersistentFlags().StringVar(&importBible, "bible", "", "bible id, defaults to Scripture.DefaultBibleID")
	importChaptersCmd.Flags().StringVar(&importBook, "book", "", "book id, e.g. GEN")
	importVersesCmd.Flags().StringVar(&importChapter, "chapter", "", "chapter id, e.g. GEN.1")

	importCmd.AddCommand(importBooksCmd, importChaptersCmd, importVersesCmd)
	rootCmd.AddCommand(importCmd)
}

var (
	importBible   string
	importBook    string
	importChapter string

	importCmd = &cobra.Command{
		Use:               "import",
		Short:             "Import bible content from the scripture api into the database",
		PersistentPreRunE: loadConfig,
	}

	importBooksCmd = &cobra.Command{
		Use:   "books",
		Short: "Import the books of a bible",
		Args:  cobra.NoArgs,
		RunE: runImport(func(ctx context.Context, imp *importer.Importer, bibleID string) (*importer.Result, error) {
			return imp.ImportBooks(ctx, bibleID)
		}),
	}

	importChaptersCmd = &cobra.Command{
		Use:   "chapters",
		Short: "Import the chapters of a book",
		Args:  cobra.NoArgs,
		RunE: runImport(func(ctx context.Context, imp *importer.Importer, bibleID string) (*importer.Result, error) {
			return imp.ImportChapters(ctx, bibleID, importBook)
		}),
	}

	importVersesCmd = &cobra.Command{
		Use:   "verses",
		Short: "Import the verses of a chapter",
		Args:  cobra.NoArgs,
		RunE: runImport(func(ctx context.Context, imp *importer.Importer, bibleID string) (*importer.Result, error) {
			return imp.ImportVerses(ctx, bibleID, importChapter)
		}),
	}
)

var errImportFailed = errors.New("import failed")

type importFunc func(ctx context.Context, imp *importer.Importer, bibleID string) (*importer.Result, error)

func runImport(run importFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		deps, err := daemon.Open(&cfg)
		if err != nil {
			return err
		}

		bibleID := importBible
		if bibleID == "" {
			bibleID = deps.Scripture.DefaultBibleID()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := run(ctx, deps.Importer, bibleID)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode import result: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if !res.Success {
			return fmt.Errorf("%w: %s", errImportFailed, res.Message)
		}

		return nil
	}
}
