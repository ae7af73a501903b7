package session

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/google"
	"github.com/harrisonrobin/smartflow/pkg/mail"
	"github.com/harrisonrobin/smartflow/pkg/mail/imap"
)

// NewFetcher builds the fetcher for cfg.Source. It returns nil for
// config.SourceNone. Gmail runs the OAuth flow when no token is cached.
func NewFetcher(ctx context.Context, cfg *config.Config) (mail.Fetcher, error) {
	switch cfg.Source {
	case config.SourceNone, "":
		return nil, nil
	case config.SourceIMAP:
		return imap.NewFetcher(imap.Config{
			Host:          cfg.IMAP.Host,
			Port:          cfg.IMAP.Port,
			Username:      cfg.IMAP.Username,
			Password:      cfg.IMAP.Password,
			Mailbox:       cfg.IMAP.Mailbox,
			SubjectFilter: cfg.SubjectFilter,
			PreviewLength: cfg.PreviewLength,
			MaxMessages:   cfg.IMAP.MaxMessages,
		}), nil
	case config.SourceGmail:
		client, err := google.NewClient(ctx, google.Config{
			User:          cfg.Gmail.User,
			SubjectFilter: cfg.SubjectFilter,
			MaxResults:    cfg.Gmail.MaxResults,
			PreviewLength: cfg.PreviewLength,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown mail source %q", cfg.Source)
	}
}
