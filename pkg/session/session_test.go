package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/mail"
	"github.com/harrisonrobin/smartflow/pkg/mail/imap"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/store"
	"github.com/harrisonrobin/smartflow/pkg/urgency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = civil.Date{Year: 2026, Month: time.October, Day: 19}

func messages(subjects ...string) mail.Fetcher {
	return mail.FetcherFunc(func(ctx context.Context) ([]model.Message, error) {
		var msgs []model.Message
		for i, s := range subjects {
			msgs = append(msgs, model.Message{ID: string(rune('a' + i)), Subject: s})
		}
		return msgs, nil
	})
}

func actions(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Action
	}
	return out
}

func TestSeedRanksByUrgency(t *testing.T) {
	s := New(config.Default(), nil, model.SourceManual)
	s.Seed(today)

	pending, completed := s.Agenda(store.Filter{}, today)
	assert.Empty(t, completed)
	require.Len(t, pending, 4)
	assert.Equal(t, []string{
		"Review status of tax clearance certificates",
		"Finish last month's reconciliation",
		"Call supplier X about pending invoice",
		"Gather productivity data for the home office proposal",
	}, actions(pending))
	assert.Equal(t, urgency.Critical, pending[0].Tier)
	assert.Equal(t, urgency.Warning, pending[1].Tier)
	assert.Equal(t, urgency.OK, pending[2].Tier)
	assert.Equal(t, urgency.OK, pending[3].Tier)

	for _, task := range pending {
		assert.Equal(t, model.SourceSeed, task.Source)
	}
}

func TestSeedUsesProjectCatalog(t *testing.T) {
	cfg := config.Default()
	s := New(cfg, nil, model.SourceManual)
	s.Seed(today)

	pending, _ := s.Agenda(store.Filter{Project: cfg.Projects[0]}, today)
	require.Len(t, pending, 1)
	assert.Equal(t, "Finish last month's reconciliation", pending[0].Action)
}

func TestSyncCapturesDemands(t *testing.T) {
	s := New(config.Default(), messages("[DEMANDA] Conferir NF", "  "), model.SourceIMAP)

	res, err := s.Sync(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Dropped)

	pending, _ := s.Agenda(store.Filter{}, today)
	require.Len(t, pending, 1)
	assert.Equal(t, urgency.Unscheduled, pending[0].Tier)
	assert.Equal(t, model.AtComputer, pending[0].Context)
	assert.Equal(t, 3, pending[0].Priority)
	assert.True(t, pending[0].IsDemand())

	res, err = s.Sync(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, s.Store().Len())
}

func TestSyncFailureAddsNothing(t *testing.T) {
	failing := mail.FetcherFunc(func(ctx context.Context) ([]model.Message, error) {
		return nil, errors.New("connection refused")
	})
	s := New(config.Default(), failing, model.SourceIMAP)
	s.Seed(today)

	res, err := s.Sync(context.Background(), today)
	assert.Error(t, err)
	assert.Zero(t, res.Added)
	assert.Equal(t, 4, s.Store().Len())
}

func TestSyncAppliesFetchTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.FetchTimeoutSeconds = 1
	var deadline time.Time
	f := mail.FetcherFunc(func(ctx context.Context) ([]model.Message, error) {
		deadline, _ = ctx.Deadline()
		return nil, nil
	})

	_, err := New(cfg, f, model.SourceIMAP).Sync(context.Background(), today)
	require.NoError(t, err)
	assert.False(t, deadline.IsZero())
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestSyncWithoutFetcher(t *testing.T) {
	res, err := New(config.Default(), nil, model.SourceManual).Sync(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
}

func TestAddValidatesInput(t *testing.T) {
	cfg := config.Default()
	s := New(cfg, nil, model.SourceManual)

	_, _, err := s.Add(model.Fields{Action: "x", Context: "@garden", Priority: 2}, today)
	assert.Error(t, err)

	_, _, err = s.Add(model.Fields{Action: "x", Context: model.AtOffice, Priority: 9}, today)
	assert.Error(t, err)

	_, _, err = s.Add(model.Fields{Action: "x", Project: "Unknown", Context: model.AtOffice, Priority: 2}, today)
	assert.Error(t, err)

	task, ok, err := s.Add(model.Fields{Action: "x", Project: cfg.Projects[2], Context: model.AtOffice, Priority: 2}, today)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.SourceManual, task.Source)

	_, ok, err = s.Add(model.Fields{Action: "   ", Context: model.AtOffice, Priority: 2}, today)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Store().Len())
}

func TestAddRejectsDisabledContext(t *testing.T) {
	cfg := config.Default()
	cfg.Contexts = []model.Context{model.AtComputer}
	s := New(cfg, nil, model.SourceManual)

	_, _, err := s.Add(model.Fields{Action: "call", Context: model.PhoneCalls, Priority: 2}, today)
	assert.Error(t, err)
}

func TestSetCompletedByPrefix(t *testing.T) {
	s := New(config.Default(), nil, model.SourceManual)
	task, _, err := s.Add(model.Fields{Action: "x", Context: model.AtOffice, Priority: 2}, today)
	require.NoError(t, err)

	done, err := s.SetCompleted(task.ID[:8], true)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	pending, completed := s.Agenda(store.Filter{}, today)
	assert.Empty(t, pending)
	require.Len(t, completed, 1)

	_, err = s.SetCompleted("zzzz", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSnapshotRecomputesTiers(t *testing.T) {
	s := New(config.Default(), nil, model.SourceManual)
	s.Seed(today)

	want := map[string]urgency.Tier{
		"Review status of tax clearance certificates":           urgency.Critical,
		"Finish last month's reconciliation":                    urgency.Critical,
		"Call supplier X about pending invoice":                 urgency.Critical,
		"Gather productivity data for the home office proposal": urgency.Warning,
	}
	for _, task := range s.Snapshot(today.AddDays(10)) {
		assert.Equal(t, want[task.Action], task.Tier, task.Action)
	}

	for _, task := range s.Store().Tasks() {
		assert.Equal(t, urgency.Classify(task.Due, today), task.Tier)
	}
}

func TestRefreshRestampsStoredTiers(t *testing.T) {
	s := New(config.Default(), nil, model.SourceManual)
	s.Seed(today)

	later := today.AddDays(10)
	s.Refresh(later)
	for _, task := range s.Store().Tasks() {
		assert.Equal(t, urgency.Classify(task.Due, later), task.Tier, task.Action)
	}
}

func TestNewFetcher(t *testing.T) {
	cfg := config.Default()

	f, err := NewFetcher(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, f)

	cfg.Source = config.SourceIMAP
	cfg.IMAP.Host = "imap.example.com"
	f, err = NewFetcher(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &imap.Fetcher{}, f)

	cfg.Source = "pop3"
	_, err = NewFetcher(context.Background(), cfg)
	assert.Error(t, err)
}
