// Package notifier pushes newly added candidates to a chat. It polls the
// candidate table above a persisted watermark and delivers each record at
// least once.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cvfeed/internal/db"
	"github.com/jonathan/cvfeed/internal/logger"
	"github.com/jonathan/cvfeed/internal/rendering"
	"github.com/jonathan/cvfeed/internal/telegram"
	"github.com/jonathan/cvfeed/internal/watermark"
)

// DefaultPollInterval is the sleep between cycles when none is configured.
const DefaultPollInterval = 60 * time.Second

// Source is the slice of the data access layer the notifier reads from.
type Source interface {
	FetchNewCandidates(ctx context.Context, minID int64) ([]*db.Candidate, error)
	FetchFirstCandidates(ctx context.Context, limit int) ([]*db.Candidate, error)
}

// Sender delivers one formatted card.
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// Config tunes the notifier.
type Config struct {
	PollInterval time.Duration
	LinkBase     string
}

// CycleReport summarizes one poll cycle.
type CycleReport struct {
	Fetched   int
	Sent      int
	Skipped   int
	Failed    int
	Watermark int64
}

// SendReport summarizes a one-shot send.
type SendReport struct {
	Sent      int
	Failed    int
	FailedIDs []int64
}

// Notifier is the poll loop. It is not safe for concurrent use; run one per
// watermark.
type Notifier struct {
	source Source
	sender Sender
	store  watermark.Store
	cfg    Config
	logger *zap.Logger

	watermark int64
	// sent holds ids delivered above the watermark during this process
	sent map[int64]struct{}
}

// New creates a notifier. A nil logger discards output.
func New(source Source, sender Sender, store watermark.Store, cfg Config, log *zap.Logger) *Notifier {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.LinkBase == "" {
		cfg.LinkBase = rendering.DefaultLinkBase
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		source: source,
		sender: sender,
		store:  store,
		cfg:    cfg,
		logger: log.With(zap.String("component", "notifier")),
		sent:   make(map[int64]struct{}),
	}
}

// Watermark returns the highest id delivered in order.
func (n *Notifier) Watermark() int64 {
	return n.watermark
}

// Load reads the persisted watermark into the notifier.
func (n *Notifier) Load(ctx context.Context) error {
	id, err := n.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load watermark: %w", err)
	}
	n.watermark = id
	return nil
}

// Run loads the watermark and polls until ctx is cancelled. Cancellation is
// a normal stop and returns nil.
func (n *Notifier) Run(ctx context.Context) error {
	if err := n.Load(ctx); err != nil {
		return err
	}
	n.logger.Info("polling for new candidates",
		zap.Int64("watermark", n.watermark),
		zap.Duration("interval", n.cfg.PollInterval),
	)

	for {
		if ctx.Err() != nil {
			break
		}

		report, err := n.PollOnce(ctx)
		if err != nil {
			n.logger.Error("poll cycle failed", zap.Error(err), zap.Bool("db_unavailable", db.IsUnavailable(err)))
		} else if report.Fetched > 0 {
			n.logger.Info("poll cycle finished",
				zap.Int("fetched", report.Fetched),
				zap.Int("sent", report.Sent),
				zap.Int("skipped", report.Skipped),
				zap.Int("failed", report.Failed),
				zap.Int64("watermark", report.Watermark),
			)
		}

		if err := waitFor(ctx, n.cfg.PollInterval); err != nil {
			break
		}
	}

	n.logger.Info("notifier stopped", zap.Int64("watermark", n.watermark))
	return nil
}

// PollOnce runs a single cycle: fetch every record above the watermark and
// dispatch them in id order. The watermark only moves across records that
// are all delivered, so a failed record is retried next cycle; records after
// it that did go out are remembered and not sent twice.
func (n *Notifier) PollOnce(ctx context.Context) (CycleReport, error) {
	candidates, err := n.source.FetchNewCandidates(ctx, n.watermark)
	if err != nil {
		return CycleReport{Watermark: n.watermark}, err
	}

	report := CycleReport{Fetched: len(candidates)}
	inOrder := true
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		if _, done := n.sent[c.ID]; done {
			report.Skipped++
		} else if err := n.dispatch(ctx, c); err != nil {
			report.Failed++
			inOrder = false
			continue
		} else {
			n.sent[c.ID] = struct{}{}
			report.Sent++
		}

		if inOrder && c.ID > n.watermark {
			n.advance(ctx, c.ID)
		}
	}

	report.Watermark = n.watermark
	return report, nil
}

// SendFirst sends the first limit candidates, one per distinct name, without
// reading or moving the watermark.
func (n *Notifier) SendFirst(ctx context.Context, limit int) (SendReport, error) {
	var report SendReport

	candidates, err := n.source.FetchFirstCandidates(ctx, limit)
	if err != nil {
		return report, err
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := n.dispatch(ctx, c); err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, c.ID)
			continue
		}
		report.Sent++
	}
	return report, nil
}

func (n *Notifier) dispatch(ctx context.Context, c *db.Candidate) error {
	card := rendering.FormatCard(c.ID, c.Data, n.cfg.LinkBase)
	if err := n.sender.SendMessage(ctx, card); err != nil {
		var tgErr *telegram.Error
		if errors.As(err, &tgErr) && tgErr.StatusCode == http.StatusBadRequest {
			// The same card is rejected again on every retry.
			n.logger.Error("telegram rejected candidate card",
				zap.Int64("id", c.ID),
				zap.String("description", tgErr.Description),
				zap.String("card", logger.TruncateForLog(card, logger.CardLogLimit)),
			)
			return err
		}
		n.logger.Warn("failed to send candidate",
			zap.Int64("id", c.ID),
			zap.Error(err),
		)
		return err
	}
	n.logger.Debug("candidate sent",
		zap.Int64("id", c.ID),
		zap.String("card", logger.TruncateForLog(card, logger.CardLogLimit)),
	)
	return nil
}

// advance moves the watermark to id and persists it. A failed save keeps
// the new value in memory; the next save rewrites it.
func (n *Notifier) advance(ctx context.Context, id int64) {
	n.watermark = id
	delete(n.sent, id)
	if err := n.store.Save(ctx, id); err != nil {
		n.logger.Error("failed to persist watermark", zap.Int64("watermark", id), zap.Error(err))
	}
}
