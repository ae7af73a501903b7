// Package capture turns inbound messages into tasks. It is the boundary where
// task fields are validated before they reach the store.
package capture

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/store"
)

// Defaults are applied to every task converted from a message.
type Defaults struct {
	Context  model.Context
	Priority int
}

// Result counts what happened to a batch of messages.
type Result struct {
	Added      int
	Duplicates int
	Dropped    int // blank subject
	Invalid    int
}

func (r Result) String() string {
	return fmt.Sprintf("%d added, %d already captured, %d without subject, %d invalid",
		r.Added, r.Duplicates, r.Dropped, r.Invalid)
}

// FromMessage maps a message to task fields. The subject becomes the action;
// project and due date are left empty for the user to clarify later.
func FromMessage(m model.Message, d Defaults, source string) model.Fields {
	return model.Fields{
		Action:     strings.TrimSpace(m.Subject),
		Context:    d.Context,
		Priority:   d.Priority,
		Source:     source,
		MessageID:  m.ID,
		Sender:     m.Sender,
		ReceivedAt: m.ReceivedAt,
	}
}

// Validate checks the fields a caller is responsible for. A blank action is
// not an error here; the store drops it.
func Validate(f model.Fields) error {
	if err := model.ValidateStruct(f); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	return nil
}

// Capturer admits messages into a store once per message id.
type Capturer struct {
	defaults Defaults
	source   string

	mu   sync.Mutex
	seen map[string]bool
}

func NewCapturer(d Defaults, source string) *Capturer {
	return &Capturer{
		defaults: d,
		source:   source,
		seen:     make(map[string]bool),
	}
}

// Capture converts msgs and adds them to st, skipping messages already
// captured by this Capturer.
func (c *Capturer) Capture(st *store.Store, msgs []model.Message, today civil.Date) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res Result
	for _, m := range msgs {
		if m.ID != "" && c.seen[m.ID] {
			res.Duplicates++
			continue
		}

		f := FromMessage(m, c.defaults, c.source)
		if err := Validate(f); err != nil {
			log.Printf("capture: skipping message %s: %v", m.ID, err)
			res.Invalid++
			continue
		}

		if _, ok := st.Add(f, today); !ok {
			res.Dropped++
			continue
		}
		if m.ID != "" {
			c.seen[m.ID] = true
		}
		res.Added++
	}
	return res
}
