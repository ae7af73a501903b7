package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/smartflow/pkg/auth"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewClient creates a Gmail fetcher authenticated with the cached OAuth token.
func NewClient(ctx context.Context, cfg Config) (*GmailClient, error) {
	client, err := auth.GetClient(ctx, auth.GmailScopes)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Gmail client: %w", err)
	}

	return NewGmailClient(srv, cfg), nil
}
