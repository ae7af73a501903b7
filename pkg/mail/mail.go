// Package mail defines how unread messages reach the capture step.
package mail

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/harrisonrobin/smartflow/pkg/model"
)

// DefaultPreviewLength is the number of characters kept from a message body.
const DefaultPreviewLength = 200

// Fetcher returns the unread messages that match its subject filter.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Message, error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.Message, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]model.Message, error) {
	return f(ctx)
}

// MatchSubject reports whether subject contains filter, ignoring case.
// An empty filter matches everything.
func MatchSubject(subject, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(subject), strings.ToLower(filter))
}

// FilterSubjects keeps the messages whose subject matches filter. Servers
// do substring search with their own folding rules, so results are checked
// again locally.
func FilterSubjects(msgs []model.Message, filter string) []model.Message {
	out := msgs[:0:0]
	for _, m := range msgs {
		if MatchSubject(m.Subject, filter) {
			out = append(out, m)
		}
	}
	return out
}

// Preview collapses whitespace in text and cuts it to at most n runes.
func Preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
