package model

import (
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/urgency"
)

const (
	SourceManual = "manual"
	SourceSeed   = "seed"
	SourceIMAP   = "imap"
	SourceGmail  = "gmail"
)

// Fields is what a caller supplies to create a task. The store assigns
// identity, completion state and the urgency tier.
type Fields struct {
	Action     string
	Project    string
	Context    Context `validate:"required,gtdcontext"`
	Due        *civil.Date
	Priority   int    `validate:"min=1,max=4"`
	Source     string `validate:"omitempty,oneof=manual seed imap gmail"`
	MessageID  string
	Sender     string
	ReceivedAt time.Time
}

// Task is a next action on the agenda. A task whose Source is a mail
// fetcher is a demand.
type Task struct {
	ID        string       `json:"id"`
	Action    string       `json:"action"`
	Project   string       `json:"project,omitempty"`
	Context   Context      `json:"context"`
	Due       *civil.Date  `json:"due_date,omitempty"`
	Priority  int          `json:"priority"`
	Completed bool         `json:"completed"`
	Tier      urgency.Tier `json:"urgency_tier"`

	Source     string     `json:"source"`
	MessageID  string     `json:"message_id,omitempty"`
	Sender     string     `json:"sender,omitempty"`
	ReceivedAt time.Time  `json:"received_at,omitempty"`
	CreatedOn  civil.Date `json:"created_on"`
}

// IsDemand reports whether the task came from an inbound message.
func (t Task) IsDemand() bool {
	return t.Source == SourceIMAP || t.Source == SourceGmail
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.Due != nil {
		due := *t.Due
		t.Due = &due
	}
	return t
}

// Classify restamps the tier against today.
func (t *Task) Classify(today civil.Date) {
	t.Tier = urgency.Classify(t.Due, today)
}

// ExportHeader is the stable column order of an exported task.
var ExportHeader = []string{
	"id",
	"action",
	"project",
	"context",
	"due_date",
	"priority",
	"completed",
	"urgency_tier",
}

// Record returns the task fields in ExportHeader order.
func (t Task) Record() []string {
	due := ""
	if t.Due != nil {
		due = t.Due.String()
	}
	return []string{
		t.ID,
		t.Action,
		t.Project,
		string(t.Context),
		due,
		strconv.Itoa(t.Priority),
		strconv.FormatBool(t.Completed),
		t.Tier.String(),
	}
}
