// Package store keeps the tasks of one session in memory and orders them
// for the agenda. Nothing is persisted; a Store lives as long as its session.
package store

import (
	"errors"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/harrisonrobin/smartflow/pkg/model"
)

var (
	ErrNotFound  = errors.New("task not found")
	ErrAmbiguous = errors.New("task id prefix is ambiguous")
)

const (
	// AllContexts is the Filter sentinel that matches every context.
	AllContexts model.Context = ""
	// AllProjects is the Filter sentinel that matches every project.
	AllProjects = ""
)

// Filter selects tasks by context and project. A zero field matches all.
type Filter struct {
	Context model.Context
	Project string
}

func (f Filter) match(t *model.Task) bool {
	if f.Context != AllContexts && t.Context != f.Context {
		return false
	}
	if f.Project != AllProjects && t.Project != f.Project {
		return false
	}
	return true
}

// Store holds tasks newest first. Tasks are addressed by the id assigned in Add.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
	order []string // newest first
}

func New() *Store {
	return &Store{
		tasks: make(map[string]*model.Task),
	}
}

// Add admits a task and stamps its tier against today. A blank action is
// dropped without error and Add reports false.
func (s *Store) Add(f model.Fields, today civil.Date) (model.Task, bool) {
	action := strings.TrimSpace(f.Action)
	if action == "" {
		return model.Task{}, false
	}

	source := f.Source
	if source == "" {
		source = model.SourceManual
	}

	t := &model.Task{
		ID:         uuid.NewString(),
		Action:     action,
		Project:    f.Project,
		Context:    f.Context,
		Priority:   f.Priority,
		Source:     source,
		MessageID:  f.MessageID,
		Sender:     f.Sender,
		ReceivedAt: f.ReceivedAt,
		CreatedOn:  today,
	}
	if f.Due != nil {
		due := *f.Due
		t.Due = &due
	}
	t.Classify(today)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	s.order = append([]string{t.ID}, s.order...)
	return t.Clone(), true
}

// SetCompleted marks a task done or pending again. It reports false when id
// does not resolve. Position in the store is unchanged.
func (s *Store) SetCompleted(id string, completed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	t.Completed = completed
	return true
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return t.Clone(), true
}

// Resolve expands a unique id prefix into the full task id.
func (s *Store) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tasks[prefix]; ok {
		return prefix, nil
	}

	var found string
	for _, id := range s.order {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if found != "" {
			return "", ErrAmbiguous
		}
		found = id
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Tasks returns a copy of every task in store order.
func (s *Store) Tasks() []model.Task {
	return s.Filter(Filter{})
}

// Filter returns copies of the tasks matching f, in store order.
func (s *Store) Filter(f Filter) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		if !f.match(t) {
			continue
		}
		result = append(result, t.Clone())
	}
	return result
}

// Refresh restamps the stored tier of every task against today.
func (s *Store) Refresh(today civil.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		t.Classify(today)
	}
}
