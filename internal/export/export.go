// Package export turns a conversation into downloadable transcripts. Every
// function is a pure transformation of the message slice it is given.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stocksage/internal/model"
)

const (
	ChatbotLabel = "StockSage AI - Stock Market Analysis"

	isoLayout    = "2006-01-02T15:04:05.000Z"
	localeLayout = "1/2/2006, 3:04:05 PM"
)

var (
	ErrNoMessages    = errors.New("conversation has no messages")
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// ISOTime renders t the way the share API and JSON export expect.
func ISOTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

type jsonMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type jsonExport struct {
	ExportDate    string        `json:"exportDate"`
	Chatbot       string        `json:"chatbot"`
	TotalMessages int           `json:"totalMessages"`
	Conversation  []jsonMessage `json:"conversation"`
}

func JSON(messages []model.Message, now time.Time) ([]byte, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	doc := jsonExport{
		ExportDate:    ISOTime(now),
		Chatbot:       ChatbotLabel,
		TotalMessages: len(messages),
		Conversation:  make([]jsonMessage, 0, len(messages)),
	}
	for _, m := range messages {
		doc.Conversation = append(doc.Conversation, jsonMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: ISOTime(m.Timestamp),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode json export failed: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var csvNewlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// CSV writes one fully quoted row per message. Quotes are doubled and line
// breaks become spaces so a record never spans lines.
func CSV(messages []model.Message) ([]byte, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	rows := make([]string, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, fmt.Sprintf(`"%s","%s","%s"`,
			csvField(m.Role),
			csvField(m.Content),
			ISOTime(m.Timestamp),
		))
	}
	return []byte("Role,Content,Timestamp\n" + strings.Join(rows, "\n")), nil
}

func csvField(s string) string {
	return csvNewlines.Replace(strings.ReplaceAll(s, `"`, `""`))
}

func Text(messages []model.Message, now time.Time) ([]byte, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	footer := "\n" + strings.Repeat("=", 60) +
		"\nEnd of conversation export from StockSage AI" +
		"\nVisit: https://platform.openai.com for more AI tools"
	return []byte(textHeader(len(messages), now) + textBody(messages) + footer), nil
}

// ClipboardText is the text transcript without the closing banner.
func ClipboardText(messages []model.Message, now time.Time) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	return textHeader(len(messages), now) + textBody(messages), nil
}

func textHeader(total int, now time.Time) string {
	return "StockSage AI - Stock Market Analysis Conversation\n" +
		"Export Date: " + now.Format(localeLayout) + "\n" +
		fmt.Sprintf("Total Messages: %d\n", total) +
		strings.Repeat("=", 60) + "\n\n"
}

func textBody(messages []model.Message) string {
	blocks := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "STOCKSAGE AI"
		if m.Role == model.RoleUser {
			speaker = "YOU"
		}
		blocks = append(blocks, fmt.Sprintf("[%s] %s:\n%s\n\n%s\n",
			m.Timestamp.Format(localeLayout), speaker, m.Content, strings.Repeat("─", 40)))
	}
	return strings.Join(blocks, "\n")
}

// SharedMessages projects the conversation onto the share API payload.
func SharedMessages(messages []model.Message) ([]model.SharedMessage, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	out := make([]model.SharedMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, model.SharedMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: ISOTime(m.Timestamp),
		})
	}
	return out, nil
}

func Filename(format Format, now time.Time) string {
	return fmt.Sprintf("stocksage-conversation-%s.%s", now.UTC().Format("2006-01-02"), format)
}

func Encode(format Format, messages []model.Message, now time.Time) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(messages, now)
	case FormatCSV:
		return CSV(messages)
	case FormatText:
		return Text(messages, now)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteFile encodes the conversation into dir and returns the written path.
func WriteFile(dir string, format Format, messages []model.Message, now time.Time) (string, error) {
	data, err := Encode(format, messages, now)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(format, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file failed: %w", err)
	}
	return path, nil
}
