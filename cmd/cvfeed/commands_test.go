package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/cvfeed/internal/db"
	"github.com/jonathan/cvfeed/internal/notifier"
	"github.com/jonathan/cvfeed/internal/observability"
	"github.com/jonathan/cvfeed/internal/types"
)

func TestValidateBotFlags(t *testing.T) {
	tests := []struct {
		name    string
		poll    bool
		sendAll bool
		limit   int
		wantErr string
	}{
		{name: "poll", poll: true, limit: 10},
		{name: "send all", sendAll: true, limit: 3},
		{name: "both", poll: true, sendAll: true, limit: 10, wantErr: "mutually exclusive"},
		{name: "neither", limit: 10, wantErr: "one of --poll or --send-all is required"},
		{name: "zero limit", sendAll: true, limit: 0, wantErr: "--limit must be at least 1"},
		{name: "zero limit ignored when polling", poll: true, limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBotFlags(tt.poll, tt.sendAll, tt.limit)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type fakeFirstSender struct {
	report notifier.SendReport
	err    error
	limit  int
}

func (f *fakeFirstSender) SendFirst(_ context.Context, limit int) (notifier.SendReport, error) {
	f.limit = limit
	return f.report, f.err
}

func TestSendAll(t *testing.T) {
	t.Run("all delivered", func(t *testing.T) {
		var out bytes.Buffer
		f := &fakeFirstSender{report: notifier.SendReport{Sent: 3}}

		require.NoError(t, sendAll(context.Background(), f, 3, observability.NewPrinter(&out)))
		assert.Equal(t, 3, f.limit)
		assert.Contains(t, out.String(), "Sent:    3")
	})

	t.Run("partial failure", func(t *testing.T) {
		var out bytes.Buffer
		f := &fakeFirstSender{report: notifier.SendReport{Sent: 1, Failed: 2, FailedIDs: []int64{4, 9}}}

		err := sendAll(context.Background(), f, 3, observability.NewPrinter(&out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send 2 of 3 candidates")
		assert.Contains(t, out.String(), "Failed ids: 4, 9")
	})

	t.Run("fetch error", func(t *testing.T) {
		var out bytes.Buffer
		f := &fakeFirstSender{err: errors.New("db down")}

		err := sendAll(context.Background(), f, 3, observability.NewPrinter(&out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

type fakeDeduper struct {
	removed int64
	err     error
	calls   int
}

func (f *fakeDeduper) DeduplicateByFullName(context.Context) (int64, error) {
	f.calls++
	return f.removed, f.err
}

func stubConfirm(t *testing.T, answer bool, err error) *int {
	t.Helper()
	asked := 0
	orig := confirm
	confirm = func(string) (bool, error) {
		asked++
		return answer, err
	}
	t.Cleanup(func() { confirm = orig })
	return &asked
}

func TestDedupe(t *testing.T) {
	t.Run("yes skips the prompt", func(t *testing.T) {
		asked := stubConfirm(t, false, nil)
		var out bytes.Buffer
		d := &fakeDeduper{removed: 2}

		require.NoError(t, dedupe(context.Background(), d, true, observability.NewPrinter(&out), zap.NewNop()))
		assert.Equal(t, 0, *asked)
		assert.Equal(t, 1, d.calls)
		assert.Contains(t, out.String(), "Removed 2 duplicate candidate record(s)")
	})

	t.Run("confirmed", func(t *testing.T) {
		asked := stubConfirm(t, true, nil)
		var out bytes.Buffer
		d := &fakeDeduper{}

		require.NoError(t, dedupe(context.Background(), d, false, observability.NewPrinter(&out), zap.NewNop()))
		assert.Equal(t, 1, *asked)
		assert.Equal(t, 1, d.calls)
		assert.Contains(t, out.String(), "No duplicate candidates found")
	})

	t.Run("declined", func(t *testing.T) {
		stubConfirm(t, false, nil)
		var out bytes.Buffer
		d := &fakeDeduper{}

		require.NoError(t, dedupe(context.Background(), d, false, observability.NewPrinter(&out), zap.NewNop()))
		assert.Zero(t, d.calls)
		assert.Empty(t, out.String())
	})

	t.Run("prompt error", func(t *testing.T) {
		stubConfirm(t, false, errors.New("no tty"))
		d := &fakeDeduper{}

		err := dedupe(context.Background(), d, false, observability.NewPrinter(&bytes.Buffer{}), zap.NewNop())
		require.Error(t, err)
		assert.Zero(t, d.calls)
	})

	t.Run("delete error", func(t *testing.T) {
		d := &fakeDeduper{err: errors.New("rolled back")}

		err := dedupe(context.Background(), d, true, observability.NewPrinter(&bytes.Buffer{}), zap.NewNop())
		assert.EqualError(t, err, "rolled back")
	})
}

type fakeGetter struct {
	candidates map[int64]*db.Candidate
}

func (f *fakeGetter) GetCandidate(_ context.Context, id int64) (*db.Candidate, error) {
	return f.candidates[id], nil
}

func TestPreview(t *testing.T) {
	var data types.CandidateData
	require.NoError(t, json.Unmarshal([]byte(`{"candidate":{"fullName":"Ada Lovelace","primaryProfession":"Engineer"}}`), &data))
	g := &fakeGetter{candidates: map[int64]*db.Candidate{7: {ID: 7, Data: data}}}

	t.Run("found", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, preview(context.Background(), g, 7, "https://cv.example.com", observability.NewPrinter(&out)))
		assert.Contains(t, out.String(), "CARD PREVIEW #7")
		assert.Contains(t, out.String(), "Ada Lovelace")
		assert.Contains(t, out.String(), "https://cv.example.com/candidate/7")
	})

	t.Run("missing", func(t *testing.T) {
		err := preview(context.Background(), g, 8, "", observability.NewPrinter(&bytes.Buffer{}))
		assert.EqualError(t, err, "candidate 8 not found")
	})
}

type fakeLister struct {
	docs []db.Document
	err  error
}

func (f *fakeLister) ListCandidateDocuments(context.Context) ([]db.Document, error) {
	return f.docs, f.err
}

func TestValidateRecords(t *testing.T) {
	valid := db.Document{ID: 1, Raw: json.RawMessage(`{"candidate":{"fullName":"Ada"}}`)}
	invalid := db.Document{ID: 2, Raw: json.RawMessage(`{"skills":"go"}`)}

	t.Run("all valid", func(t *testing.T) {
		var out bytes.Buffer
		l := &fakeLister{docs: []db.Document{valid}}

		require.NoError(t, validateRecords(context.Background(), l, observability.NewPrinter(&out)))
		assert.Contains(t, out.String(), "Valid:    1")
	})

	t.Run("failures reported", func(t *testing.T) {
		var out bytes.Buffer
		l := &fakeLister{docs: []db.Document{valid, invalid}}

		err := validateRecords(context.Background(), l, observability.NewPrinter(&out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 records failed validation")
		assert.Contains(t, out.String(), "#2")
		assert.Contains(t, out.String(), "Invalid:  1")
	})

	t.Run("list error", func(t *testing.T) {
		l := &fakeLister{err: errors.New("db down")}
		err := validateRecords(context.Background(), l, observability.NewPrinter(&bytes.Buffer{}))
		assert.EqualError(t, err, "db down")
	})
}
