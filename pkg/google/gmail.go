package google

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/harrisonrobin/smartflow/pkg/mail"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"google.golang.org/api/gmail/v1"
)

const (
	// Me is the Gmail user id of the authenticated account.
	Me = "me"

	DefaultMaxResults = 50
)

// Config selects which messages the Gmail client reports.
type Config struct {
	User          string
	SubjectFilter string
	MaxResults    int64
	PreviewLength int
}

// GmailClient is a Gmail API client that lists unread demands.
type GmailClient struct {
	srv *gmail.Service
	cfg Config
}

// NewGmailClient creates a new Gmail client.
func NewGmailClient(srv *gmail.Service, cfg Config) *GmailClient {
	if cfg.User == "" {
		cfg.User = Me
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = mail.DefaultPreviewLength
	}
	return &GmailClient{srv: srv, cfg: cfg}
}

// Query returns the Gmail search expression for unread messages whose
// subject matches the filter.
func Query(subjectFilter string) string {
	q := "is:unread"
	if s := strings.TrimSpace(subjectFilter); s != "" {
		q += fmt.Sprintf(" subject:%q", s)
	}
	return q
}

// Fetch implements mail.Fetcher.
func (c *GmailClient) Fetch(ctx context.Context) ([]model.Message, error) {
	list, err := c.srv.Users.Messages.List(c.cfg.User).
		Q(Query(c.cfg.SubjectFilter)).
		MaxResults(c.cfg.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	msgs := make([]model.Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		full, err := c.srv.Users.Messages.Get(c.cfg.User, ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From").
			Context(ctx).
			Do()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("gmail: could not get message %s: %v", ref.Id, err)
			continue
		}
		msgs = append(msgs, c.toMessage(full))
	}
	return mail.FilterSubjects(msgs, c.cfg.SubjectFilter), nil
}

func (c *GmailClient) toMessage(m *gmail.Message) model.Message {
	msg := model.Message{
		ID:          m.Id,
		BodyPreview: mail.Preview(m.Snippet, c.cfg.PreviewLength),
	}
	if m.InternalDate > 0 {
		msg.ReceivedAt = time.UnixMilli(m.InternalDate).UTC()
	}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "subject":
				msg.Subject = h.Value
			case "from":
				msg.Sender = h.Value
				if addr, err := gomail.ParseAddress(h.Value); err == nil {
					msg.Sender = addr.Address
				}
			}
		}
	}
	return msg
}
