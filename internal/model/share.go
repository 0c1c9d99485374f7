package model

import "time"

// SharedMessage is the stored projection of a chat message. Timestamp is kept
// verbatim as sent by the client.
type SharedMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SharedRecord is a read-only snapshot of a conversation behind a share id.
// TotalMessages is fixed at creation time.
type SharedRecord struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Messages      []SharedMessage `json:"messages"`
	CreatedAt     string          `json:"createdAt"`
	TotalMessages int             `json:"totalMessages"`
	ExpiresAt     time.Time       `json:"-"`
}

func (r *SharedRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// ShareArchiveEvent is the queue payload for a record headed to the archive.
// It carries the expiry that the record's JSON form omits.
type ShareArchiveEvent struct {
	Record    SharedRecord `json:"record"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

func NewShareArchiveEvent(record SharedRecord) ShareArchiveEvent {
	event := ShareArchiveEvent{Record: record}
	if !record.ExpiresAt.IsZero() {
		expires := record.ExpiresAt.UTC()
		event.ExpiresAt = &expires
	}
	return event
}

// SharedRecord returns the record with its expiry restored.
func (e ShareArchiveEvent) SharedRecord() SharedRecord {
	record := e.Record
	if e.ExpiresAt != nil {
		record.ExpiresAt = *e.ExpiresAt
	}
	return record
}
