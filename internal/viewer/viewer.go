// Package viewer loads a shared conversation and renders it read-only.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stocksage/internal/model"
	"stocksage/internal/shareapi"
)

const (
	NotFoundText    = "This shared conversation could not be found. It may have expired or been removed."
	FetchFailedText = "Failed to load the shared conversation. Please try again."
	ConnectionText  = "Failed to load the shared conversation. Please check your connection."

	dateLayout        = "January 2, 2006 at 03:04 PM"
	messageTimeLayout = "3:04:05 PM"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseFailed
	PhaseLoaded
)

// State is one of the three terminal render states of the viewer.
type State struct {
	Phase    Phase
	NotFound bool
	Message  string
	Record   *model.SharedRecord
}

type Fetcher interface {
	Get(ctx context.Context, id string) (*model.SharedRecord, error)
}

func Loading() State {
	return State{Phase: PhaseLoading}
}

func Loaded(record *model.SharedRecord) State {
	return State{Phase: PhaseLoaded, Record: record}
}

func NotFound() State {
	return State{Phase: PhaseFailed, NotFound: true, Message: NotFoundText}
}

// Failed maps a fetch error to the error state. Only a 404 counts as not found.
func Failed(err error) State {
	var statusErr *shareapi.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusNotFound {
			return NotFound()
		}
		return State{Phase: PhaseFailed, Message: FetchFailedText}
	}
	return State{Phase: PhaseFailed, Message: ConnectionText}
}

func Load(ctx context.Context, fetcher Fetcher, id string) State {
	record, err := fetcher.Get(ctx, id)
	if err != nil {
		return Failed(err)
	}
	return Loaded(record)
}

// ParseShareID accepts either a bare id or a share URL ending in /shared/<id>.
func ParseShareID(arg string) string {
	arg = strings.TrimSpace(arg)
	if i := strings.LastIndex(arg, "/shared/"); i >= 0 {
		arg = arg[i+len("/shared/"):]
	}
	if i := strings.IndexAny(arg, "?#/"); i >= 0 {
		arg = arg[:i]
	}
	return arg
}

// FormatDate renders an ISO timestamp for people; unparsable input is returned as is.
func FormatDate(raw string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.In(loc).Format(dateLayout)
}

func FormatMessageTime(raw string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.In(loc).Format(messageTimeLayout)
}

// Render writes a plain-text view of state.
func Render(w io.Writer, state State, loc *time.Location) error {
	var b strings.Builder
	switch state.Phase {
	case PhaseLoading:
		b.WriteString("Loading Shared Conversation...\nPlease wait while we fetch the conversation data.\n")
	case PhaseFailed:
		b.WriteString("Conversation Not Found\n")
		b.WriteString(state.Message + "\n")
	case PhaseLoaded:
		r := state.Record
		fmt.Fprintf(&b, "%s\n", r.Title)
		fmt.Fprintf(&b, "Shared on %s | %d messages | Read-only view\n", FormatDate(r.CreatedAt, loc), r.TotalMessages)
		b.WriteString(strings.Repeat("=", 60) + "\n")
		for _, m := range r.Messages {
			speaker := "STOCKSAGE AI"
			if m.Role == model.RoleUser {
				speaker = "YOU"
			}
			fmt.Fprintf(&b, "\n[%s] %s:\n%s\n", FormatMessageTime(m.Timestamp, loc), speaker, m.Content)
		}
		b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
		b.WriteString("This is a read-only view of a StockSage AI conversation.\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
