package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cvfeed/internal/config"
	"github.com/jonathan/cvfeed/internal/notifier"
	"github.com/jonathan/cvfeed/internal/observability"
	"github.com/jonathan/cvfeed/internal/telegram"
	"github.com/jonathan/cvfeed/internal/watermark"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Send candidate cards to Telegram",
	Long: `Send candidate cards to the configured Telegram chat.

--poll watches the table for new candidates and sends each one, remembering
the last delivered id. --send-all sends the first --limit candidates (one per
full name) once and exits.`,
	RunE: runBot,
}

var (
	botPoll    bool
	botSendAll bool
	botLimit   int
)

func init() {
	botCmd.Flags().BoolVar(&botPoll, "poll", false, "Poll for new candidates until interrupted")
	botCmd.Flags().BoolVar(&botSendAll, "send-all", false, "Send the first --limit candidates and exit")
	botCmd.Flags().IntVar(&botLimit, "limit", config.DefaultSendAllLimit, "Number of candidates for --send-all")
	rootCmd.AddCommand(botCmd)
}

// validateBotFlags checks that exactly one mode is selected.
func validateBotFlags(poll, sendAll bool, limit int) error {
	switch {
	case poll && sendAll:
		return errors.New("--poll and --send-all are mutually exclusive")
	case !poll && !sendAll:
		return errors.New("one of --poll or --send-all is required")
	case sendAll && limit < 1:
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}
	return nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	if err := validateBotFlags(botPoll, botSendAll, botLimit); err != nil {
		return err
	}
	if botPoll && cmd.Flags().Changed("limit") {
		return errors.New("--limit only applies to --send-all")
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if botPoll && !cfg.Notifier.AutoSend {
		log.Info("auto-send is disabled, not polling", zap.String("hint", "set AUTO_SEND_ENABLED=true"))
		return nil
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	sender := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, &telegram.Options{
		APIURL:  cfg.Telegram.APIURL,
		Timeout: telegram.DefaultTimeout,
	})

	if botSendAll {
		n := notifier.New(database, sender, nil, notifierConfig(cfg), log)
		return sendAll(ctx, n, botLimit, observability.NewPrinter(os.Stdout))
	}

	store, closeStore, err := openWatermarkStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	return notifier.New(database, sender, store, notifierConfig(cfg), log).Run(ctx)
}

func notifierConfig(cfg *config.Config) notifier.Config {
	return notifier.Config{
		PollInterval: cfg.Notifier.PollInterval(),
		LinkBase:     cfg.Notifier.CardBaseURL,
	}
}

// openWatermarkStore selects Redis when WATERMARK_REDIS_URL is set and the
// tracking file otherwise.
func openWatermarkStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (watermark.Store, func(), error) {
	if cfg.Notifier.RedisURL == "" {
		log.Info("using file watermark", zap.String("path", cfg.Notifier.TrackFile))
		return watermark.NewFileStore(cfg.Notifier.TrackFile), func() {}, nil
	}

	rdb, err := watermark.NewRedisClient(ctx, cfg.Notifier.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis watermark", zap.String("key", cfg.Notifier.RedisKey))
	return watermark.NewRedisStore(rdb, cfg.Notifier.RedisKey), func() { _ = rdb.Close() }, nil
}

// firstSender is the one-shot side of the notifier.
type firstSender interface {
	SendFirst(ctx context.Context, limit int) (notifier.SendReport, error)
}

func sendAll(ctx context.Context, n firstSender, limit int, printer *observability.Printer) error {
	report, err := n.SendFirst(ctx, limit)
	printer.PrintSendSummary(report.Sent, report.Failed, report.FailedIDs)
	if err != nil {
		return fmt.Errorf("failed to send candidates: %w", err)
	}
	if report.Failed > 0 {
		return fmt.Errorf("failed to send %d of %d candidates", report.Failed, report.Sent+report.Failed)
	}
	return nil
}
