package viewer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksage/internal/model"
	"stocksage/internal/shareapi"
)

type fakeFetcher struct {
	record *model.SharedRecord
	err    error
}

func (f fakeFetcher) Get(ctx context.Context, id string) (*model.SharedRecord, error) {
	return f.record, f.err
}

func sampleRecord() *model.SharedRecord {
	return &model.SharedRecord{
		ID:    "abc",
		Title: "StockSage AI Conversation",
		Messages: []model.SharedMessage{
			{Role: "user", Content: "Hi", Timestamp: "2025-03-01T09:30:00.000Z"},
			{Role: "assistant", Content: "Hello <b>there</b>", Timestamp: "2025-03-01T14:31:05.000Z"},
		},
		CreatedAt:     "2025-03-01T14:32:00.000Z",
		TotalMessages: 2,
	}
}

func TestLoad_States(t *testing.T) {
	ctx := context.Background()

	loaded := Load(ctx, fakeFetcher{record: sampleRecord()}, "abc")
	assert.Equal(t, PhaseLoaded, loaded.Phase)
	assert.Equal(t, "abc", loaded.Record.ID)

	notFound := Load(ctx, fakeFetcher{err: &shareapi.StatusError{Code: http.StatusNotFound}}, "abc")
	assert.Equal(t, PhaseFailed, notFound.Phase)
	assert.True(t, notFound.NotFound)
	assert.Equal(t, NotFoundText, notFound.Message)

	serverErr := Load(ctx, fakeFetcher{err: &shareapi.StatusError{Code: http.StatusInternalServerError}}, "abc")
	assert.False(t, serverErr.NotFound)
	assert.Equal(t, FetchFailedText, serverErr.Message)

	offline := Load(ctx, fakeFetcher{err: errors.New("connection refused")}, "abc")
	assert.Equal(t, ConnectionText, offline.Message)

	assert.Equal(t, PhaseLoading, Loading().Phase)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 1, 2025 at 02:32 PM", FormatDate("2025-03-01T14:32:00.000Z", time.UTC))
	assert.Equal(t, "garbage", FormatDate("garbage", time.UTC))
	assert.Equal(t, "9:30:00 AM", FormatMessageTime("2025-03-01T09:30:00.000Z", time.UTC))
}

func TestParseShareID(t *testing.T) {
	assert.Equal(t, "abc123", ParseShareID("abc123"))
	assert.Equal(t, "abc123", ParseShareID("https://stocksage.example.com/shared/abc123"))
	assert.Equal(t, "abc123", ParseShareID(" http://localhost:8080/shared/abc123?ref=x "))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Loaded(sampleRecord()), time.UTC))
	out := buf.String()

	assert.Contains(t, out, "Shared on March 1, 2025 at 02:32 PM | 2 messages")
	assert.Less(t, strings.Index(out, "YOU:\nHi"), strings.Index(out, "STOCKSAGE AI:\nHello"))

	buf.Reset()
	require.NoError(t, Render(&buf, Failed(&shareapi.StatusError{Code: 404}), time.UTC))
	assert.Contains(t, buf.String(), NotFoundText)
}

func TestPageTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PageTemplate.Execute(&buf, NewPage(Loaded(sampleRecord()), time.UTC)))
	out := buf.String()
	assert.Contains(t, out, "Shared on March 1, 2025 at 02:32 PM")
	assert.Contains(t, out, "Hello &lt;b&gt;there&lt;/b&gt;")

	buf.Reset()
	require.NoError(t, PageTemplate.Execute(&buf, NewPage(Failed(&shareapi.StatusError{Code: 404}), time.UTC)))
	assert.Contains(t, buf.String(), "It may have expired or been removed.")
}
