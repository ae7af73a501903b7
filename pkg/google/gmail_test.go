package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *GmailClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	srv, err := gmail.NewService(context.Background(),
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	require.NoError(t, err)
	return NewGmailClient(srv, cfg)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "is:unread", Query(""))
	assert.Equal(t, `is:unread subject:"[DEMANDA]"`, Query(" [DEMANDA] "))
}

func TestFetch(t *testing.T) {
	var gotQuery string
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			gotQuery = r.URL.Query().Get("q")
			writeJSON(w, map[string]interface{}{
				"messages": []map[string]string{{"id": "a"}, {"id": "b"}, {"id": "gone"}},
			})
		case strings.HasSuffix(r.URL.Path, "/users/me/messages/a"):
			writeJSON(w, map[string]interface{}{
				"id":           "a",
				"snippet":      "Please   check the certificates",
				"internalDate": "1760860800000",
				"payload": map[string]interface{}{
					"headers": []map[string]string{
						{"name": "Subject", "value": "[DEMANDA] Certidões"},
						{"name": "From", "value": "Ana <ana@example.com>"},
					},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/users/me/messages/b"):
			writeJSON(w, map[string]interface{}{
				"id": "b",
				"payload": map[string]interface{}{
					"headers": []map[string]string{{"name": "Subject", "value": "Weekly newsletter"}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}

	c := newTestClient(t, handler, Config{SubjectFilter: "[DEMANDA]"})
	msgs, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `is:unread subject:"[DEMANDA]"`, gotQuery)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, "a", m.ID)
	assert.Equal(t, "[DEMANDA] Certidões", m.Subject)
	assert.Equal(t, "ana@example.com", m.Sender)
	assert.Equal(t, "Please check the certificates", m.BodyPreview)
	assert.Equal(t, time.UnixMilli(1760860800000).UTC(), m.ReceivedAt)
}

func TestFetchListError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}, Config{})

	msgs, err := c.Fetch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, msgs)
}

func TestFetchNoMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"resultSizeEstimate": 0})
	}, Config{})

	msgs, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestNewGmailClientDefaults(t *testing.T) {
	c := NewGmailClient(nil, Config{})
	assert.Equal(t, Me, c.cfg.User)
	assert.Equal(t, int64(DefaultMaxResults), c.cfg.MaxResults)
}
