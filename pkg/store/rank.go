package store

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/urgency"
)

// RankPending returns the pending tasks ordered for the agenda: most severe
// tier first, then priority ascending, then earliest due date with undated
// tasks last. Tiers are recomputed against today on the returned copies.
// Ties keep their input order.
func RankPending(tasks []model.Task, today civil.Date) []model.Task {
	pending := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		t = t.Clone()
		t.Classify(today)
		pending = append(pending, t)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return rankLess(&pending[i], &pending[j])
	})
	return pending
}

// ListCompleted returns the completed tasks in input order.
func ListCompleted(tasks []model.Task) []model.Task {
	done := make([]model.Task, 0)
	for _, t := range tasks {
		if t.Completed {
			done = append(done, t.Clone())
		}
	}
	return done
}

// AtLeast keeps the ranked tasks whose tier is floor or more severe.
func AtLeast(ranked []model.Task, floor urgency.Tier) []model.Task {
	out := make([]model.Task, 0, len(ranked))
	for _, t := range ranked {
		if t.Tier.Severity() >= floor.Severity() {
			out = append(out, t)
		}
	}
	return out
}

func rankLess(a, b *model.Task) bool {
	if a.Tier != b.Tier {
		return a.Tier.MoreSevere(b.Tier)
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return dueBefore(a.Due, b.Due)
}

// dueBefore orders dates ascending with nil after any date.
func dueBefore(a, b *civil.Date) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
