// Package session owns the state of one logical triage session: its task
// store, the capture of inbound demands and the mail fetcher feeding it.
package session

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/capture"
	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/mail"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/store"
)

type Session struct {
	cfg      *config.Config
	store    *store.Store
	capturer *capture.Capturer
	fetcher  mail.Fetcher
}

// New creates a session with an empty store. fetcher may be nil when no
// mail source is configured.
func New(cfg *config.Config, fetcher mail.Fetcher, source string) *Session {
	return &Session{
		cfg:   cfg,
		store: store.New(),
		capturer: capture.NewCapturer(capture.Defaults{
			Context:  cfg.DefaultContext,
			Priority: cfg.DefaultPriority,
		}, source),
		fetcher: fetcher,
	}
}

func (s *Session) Config() *config.Config { return s.cfg }

func (s *Session) Store() *store.Store { return s.store }

// Seed adds the example actions a new session starts with.
func (s *Session) Seed(today civil.Date) {
	project := func(i int) string {
		if i < len(s.cfg.Projects) {
			return s.cfg.Projects[i]
		}
		return ""
	}
	due := func(days int) *civil.Date {
		d := today.AddDays(days)
		return &d
	}

	seeds := []model.Fields{
		{Action: "Gather productivity data for the home office proposal", Project: project(1), Context: model.AtComputer, Due: due(15), Priority: 4},
		{Action: "Review status of tax clearance certificates", Context: model.AtOffice, Due: due(1), Priority: 1},
		{Action: "Call supplier X about pending invoice", Context: model.PhoneCalls, Due: due(6), Priority: 2},
		{Action: "Finish last month's reconciliation", Project: project(0), Context: model.AtComputer, Due: due(2), Priority: 3},
	}
	for _, f := range seeds {
		f.Source = model.SourceSeed
		s.store.Add(f, today)
	}
}

// Sync fetches unread demands and captures them. A failed fetch admits
// nothing and leaves the store as it was.
func (s *Session) Sync(ctx context.Context, today civil.Date) (capture.Result, error) {
	if s.fetcher == nil {
		return capture.Result{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout())
	defer cancel()

	msgs, err := s.fetcher.Fetch(ctx)
	if err != nil {
		log.Printf("sync: fetch failed: %v", err)
		return capture.Result{}, fmt.Errorf("fetch failed: %w", err)
	}
	res := s.capturer.Capture(s.store, msgs, today)
	log.Printf("sync: %d messages, %s", len(msgs), res)
	return res, nil
}

// Add validates manual input and admits it. The bool is false when the
// action was blank and the task was dropped.
func (s *Session) Add(f model.Fields, today civil.Date) (model.Task, bool, error) {
	if f.Source == "" {
		f.Source = model.SourceManual
	}
	if err := capture.Validate(f); err != nil {
		return model.Task{}, false, err
	}
	if !s.cfg.HasContext(f.Context) {
		return model.Task{}, false, fmt.Errorf("context %s is not enabled", f.Context)
	}
	if f.Project != "" && !s.cfg.HasProject(f.Project) {
		return model.Task{}, false, fmt.Errorf("unknown project %q", f.Project)
	}
	t, ok := s.store.Add(f, today)
	return t, ok, nil
}

// SetCompleted resolves an id or unique id prefix and sets completion.
func (s *Session) SetCompleted(idOrPrefix string, completed bool) (model.Task, error) {
	id, err := s.store.Resolve(idOrPrefix)
	if err != nil {
		return model.Task{}, fmt.Errorf("%s: %w", idOrPrefix, err)
	}
	s.store.SetCompleted(id, completed)
	t, _ := s.store.Get(id)
	return t, nil
}

// Agenda returns the ranked pending tasks and the completed tasks that
// match f, as of today.
func (s *Session) Agenda(f store.Filter, today civil.Date) (pending, completed []model.Task) {
	tasks := s.store.Filter(f)
	return store.RankPending(tasks, today), store.ListCompleted(tasks)
}

// Refresh restamps the stored tiers as of today.
func (s *Session) Refresh(today civil.Date) { s.store.Refresh(today) }

// Snapshot returns every task in store order with tiers as of today. The
// store itself is not restamped.
func (s *Session) Snapshot(today civil.Date) []model.Task {
	tasks := s.store.Tasks()
	for i := range tasks {
		tasks[i].Classify(today)
	}
	return tasks
}
