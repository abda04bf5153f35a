package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cvfeed/internal/observability"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Delete duplicate candidates by full name",
	Long:  "Keeps the lowest-id record for every candidate full name and deletes the rest in one transaction. Records without a name are never deleted.",
	RunE:  runDedupe,
}

var dedupeYes bool

func init() {
	dedupeCmd.Flags().BoolVarP(&dedupeYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(dedupeCmd)
}

// confirm asks a yes/no question on the terminal.
var confirm = func(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type deduper interface {
	DeduplicateByFullName(ctx context.Context) (int64, error)
}

func runDedupe(_ *cobra.Command, _ []string) error {
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

	return dedupe(ctx, database, dedupeYes, observability.NewPrinter(os.Stdout), log)
}

func dedupe(ctx context.Context, d deduper, yes bool, printer *observability.Printer, log *zap.Logger) error {
	if !yes {
		ok, err := confirm("Delete duplicate candidates, keeping the oldest record per name")
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			log.Info("deduplication cancelled")
			return nil
		}
	}

	removed, err := d.DeduplicateByFullName(ctx)
	if err != nil {
		return err
	}
	log.Info("deduplication finished", zap.Int64("removed", removed))
	printer.PrintDedupeSummary(removed)
	return nil
}
