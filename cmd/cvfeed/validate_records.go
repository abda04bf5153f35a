package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cvfeed/internal/db"
	"github.com/jonathan/cvfeed/internal/observability"
	"github.com/jonathan/cvfeed/internal/schemas"
)

var validateRecordsCmd = &cobra.Command{
	Use:   "validate-records",
	Short: "Validate stored candidate documents",
	Long:  "Checks the data document of every cv_profiles row against the candidate document schema. Exits non-zero when any record fails.",
	RunE:  runValidateRecords,
}

func init() {
	rootCmd.AddCommand(validateRecordsCmd)
}

type documentLister interface {
	ListCandidateDocuments(ctx context.Context) ([]db.Document, error)
}

func runValidateRecords(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signalContext()
	defer stop()

	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	return validateRecords(ctx, database, observability.NewPrinter(os.Stdout))
}

func validateRecords(ctx context.Context, l documentLister, printer *observability.Printer) error {
	docs, err := l.ListCandidateDocuments(ctx)
	if err != nil {
		return err
	}

	var failures []observability.RecordFailure
	for _, doc := range docs {
		err := schemas.ValidateCandidateDocument(doc.Raw)
		if err == nil {
			continue
		}

		var validationErr *schemas.ValidationError
		if !errors.As(err, &validationErr) {
			return err
		}
		failures = append(failures, observability.RecordFailure{ID: doc.ID, Errors: validationErr.Errors})
	}

	printer.PrintValidationReport(len(docs), failures)
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d records failed validation", len(failures), len(docs))
	}
	return nil
}
