package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksage/internal/model"
)

var (
	t0  = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	now = time.Date(2025, 3, 2, 14, 5, 9, 0, time.UTC)
)

func sampleMessages() []model.Message {
	return []model.Message{
		{ID: "1", Role: model.RoleUser, Content: "What about AAPL?", Timestamp: t0},
		{ID: "2", Role: model.RoleAssistant, Content: "Apple is <strong> & stable.", Timestamp: t0.Add(2 * time.Second)},
	}
}

func TestEmptyConversationIsRejected(t *testing.T) {
	_, err := JSON(nil, now)
	assert.ErrorIs(t, err, ErrNoMessages)
	_, err = CSV(nil)
	assert.ErrorIs(t, err, ErrNoMessages)
	_, err = Text(nil, now)
	assert.ErrorIs(t, err, ErrNoMessages)
	_, err = ClipboardText(nil, now)
	assert.ErrorIs(t, err, ErrNoMessages)
	_, err = SharedMessages(nil)
	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleMessages(), now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "{\n  \"exportDate\": \"2025-03-02T14:05:09.000Z\","))
	assert.Contains(t, string(data), "<strong> & stable")

	var doc struct {
		ExportDate    string `json:"exportDate"`
		Chatbot       string `json:"chatbot"`
		TotalMessages int    `json:"totalMessages"`
		Conversation  []struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			Timestamp string `json:"timestamp"`
		} `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, ChatbotLabel, doc.Chatbot)
	assert.Equal(t, 2, doc.TotalMessages)
	require.Len(t, doc.Conversation, 2)
	assert.Equal(t, "user", doc.Conversation[0].Role)
	assert.Equal(t, "2025-03-01T09:30:02.000Z", doc.Conversation[1].Timestamp)
}

func TestCSV_EscapesQuotesAndNewlines(t *testing.T) {
	msgs := []model.Message{
		{Role: model.RoleUser, Content: "He said \"buy\"\nthen\r\nsold", Timestamp: t0},
	}

	data, err := CSV(msgs)
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Role,Content,Timestamp", lines[0])
	assert.Equal(t, `"user","He said ""buy"" then sold","2025-03-01T09:30:00.000Z"`, lines[1])
}

func TestCSV_OneRowPerMessage(t *testing.T) {
	data, err := CSV(sampleMessages())
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 3)
}

func TestText(t *testing.T) {
	data, err := Text(sampleMessages(), now)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "StockSage AI - Stock Market Analysis Conversation\nExport Date: 3/2/2025, 2:05:09 PM\nTotal Messages: 2\n"))
	assert.Contains(t, out, "[3/1/2025, 9:30:00 AM] YOU:\nWhat about AAPL?\n\n"+strings.Repeat("─", 40)+"\n")
	assert.Contains(t, out, "[3/1/2025, 9:30:02 AM] STOCKSAGE AI:\n")
	assert.True(t, strings.HasSuffix(out, "Visit: https://platform.openai.com for more AI tools"))

	clip, err := ClipboardText(sampleMessages(), now)
	require.NoError(t, err)
	assert.NotContains(t, clip, "End of conversation export")
	assert.True(t, strings.HasPrefix(out, clip))
}

func TestSharedMessages(t *testing.T) {
	shared, err := SharedMessages(sampleMessages())
	require.NoError(t, err)
	assert.Equal(t, []model.SharedMessage{
		{Role: "user", Content: "What about AAPL?", Timestamp: "2025-03-01T09:30:00.000Z"},
		{Role: "assistant", Content: "Apple is <strong> & stable.", Timestamp: "2025-03-01T09:30:02.000Z"},
	}, shared)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	msgs := sampleMessages()

	path, err := WriteFile(dir, FormatCSV, msgs, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stocksage-conversation-2025-03-02.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Role,Content,Timestamp\n"))
	assert.Len(t, msgs, 2)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" TEXT ")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
