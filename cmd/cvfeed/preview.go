package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cvfeed/internal/db"
	"github.com/jonathan/cvfeed/internal/observability"
	"github.com/jonathan/cvfeed/internal/rendering"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the card of one candidate",
	Long:  "Formats a candidate exactly as the bot would send it and prints it without sending.",
	RunE:  runPreview,
}

var previewID int64

func init() {
	previewCmd.Flags().Int64Var(&previewID, "id", 0, "Candidate id (required)")
	if err := previewCmd.MarkFlagRequired("id"); err != nil {
		panic(fmt.Sprintf("failed to mark id flag as required: %v", err))
	}
	rootCmd.AddCommand(previewCmd)
}

type candidateGetter interface {
	GetCandidate(ctx context.Context, id int64) (*db.Candidate, error)
}

func runPreview(_ *cobra.Command, _ []string) error {
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

	return preview(ctx, database, previewID, cfg.Notifier.CardBaseURL, observability.NewPrinter(os.Stdout))
}

func preview(ctx context.Context, g candidateGetter, id int64, linkBase string, printer *observability.Printer) error {
	candidate, err := g.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	if candidate == nil {
		return fmt.Errorf("candidate %d not found", id)
	}
	printer.PrintCard(candidate.ID, rendering.FormatCard(candidate.ID, candidate.Data, linkBase))
	return nil
}
