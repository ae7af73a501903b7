// Package imap fetches unread messages over IMAP.
package imap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net"
	"strconv"
	"strings"

	goimap "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
	"github.com/harrisonrobin/smartflow/pkg/mail"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"golang.org/x/net/html"
)

const (
	DefaultPort    = 993
	DefaultMailbox = "INBOX"
)

// Config holds what is needed to reach one mailbox.
type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	Mailbox       string
	SubjectFilter string
	PreviewLength int
	MaxMessages   int
}

// Fetcher reads unread messages without marking them as seen.
type Fetcher struct {
	cfg Config
}

func NewFetcher(cfg Config) *Fetcher {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = DefaultMailbox
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = mail.DefaultPreviewLength
	}
	return &Fetcher{cfg: cfg}
}

// Fetch implements mail.Fetcher. The connection is closed when ctx is done.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Message, error) {
	if f.cfg.Host == "" {
		return nil, errors.New("imap host is not configured")
	}

	addr := net.JoinHostPort(f.cfg.Host, strconv.Itoa(f.cfg.Port))
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		WordDecoder: &mime.WordDecoder{CharsetReader: charset.Reader},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer c.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	if err := c.Login(f.cfg.Username, f.cfg.Password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil && ctx.Err() == nil {
			log.Printf("imap: logout: %v", err)
		}
	}()

	mbox, err := c.Select(f.cfg.Mailbox, &goimap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", f.cfg.Mailbox, err)
	}
	if mbox.NumMessages == 0 {
		return nil, nil
	}

	searchData, err := c.UIDSearch(searchCriteria(f.cfg.SubjectFilter), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search failed: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if f.cfg.MaxMessages > 0 && len(uids) > f.cfg.MaxMessages {
		uids = uids[len(uids)-f.cfg.MaxMessages:]
	}

	bodySection := &goimap.FetchItemBodySection{Peek: true}
	fetchOptions := &goimap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*goimap.FetchItemBodySection{bodySection},
	}
	bufs, err := c.Fetch(goimap.UIDSetNum(uids...), fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}

	msgs := make([]model.Message, 0, len(bufs))
	for _, buf := range bufs {
		msgs = append(msgs, toMessage(buf, mbox.UIDValidity, buf.FindBodySection(bodySection), f.cfg.PreviewLength))
	}
	return mail.FilterSubjects(msgs, f.cfg.SubjectFilter), nil
}

func searchCriteria(subjectFilter string) *goimap.SearchCriteria {
	criteria := &goimap.SearchCriteria{
		NotFlag: []goimap.Flag{goimap.FlagSeen},
	}
	if s := strings.TrimSpace(subjectFilter); s != "" {
		criteria.Header = []goimap.SearchCriteriaHeaderField{{Key: "Subject", Value: s}}
	}
	return criteria
}

func toMessage(buf *imapclient.FetchMessageBuffer, uidValidity uint32, raw []byte, previewLength int) model.Message {
	m := model.Message{
		ID:         fmt.Sprintf("%d:%d", uidValidity, buf.UID),
		ReceivedAt: buf.InternalDate,
	}
	if env := buf.Envelope; env != nil {
		m.Subject = env.Subject
		if len(env.From) > 0 {
			m.Sender = env.From[0].Addr()
		}
		if m.ReceivedAt.IsZero() {
			m.ReceivedAt = env.Date
		}
	}
	if len(raw) > 0 {
		text, err := bodyText(raw)
		if err != nil {
			log.Printf("imap: message %s: %v", m.ID, err)
		}
		m.BodyPreview = mail.Preview(text, previewLength)
	}
	return m
}

// bodyText returns the first text/plain part of a raw message, falling back
// to the first text/html part with tags removed.
func bodyText(raw []byte) (string, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}
	defer mr.Close()

	var fallback string
	for {
		part, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fallback, err
		}
		h, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return fallback, err
		}
		switch contentType {
		case "text/plain", "":
			return string(body), nil
		case "text/html":
			if fallback == "" {
				fallback = htmlText(body)
			}
		}
	}
	return fallback, nil
}

// htmlText returns the visible text of an HTML body. Entities are decoded
// and script and style contents are dropped.
func htmlText(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style" || tag == "head"
}
