package model

import "time"

// Message is an unread inbound email as handed over by a mail fetcher.
type Message struct {
	ID          string
	Subject     string
	Sender      string
	ReceivedAt  time.Time
	BodyPreview string
}
