package viewer

import (
	"html/template"
	"time"

	"stocksage/internal/model"
)

const PageTemplateName = "shared.html"

type PageMessage struct {
	Role    string
	Speaker string
	Content string
	Time    string
}

// Page is the view model consumed by PageTemplate.
type Page struct {
	Failed   bool
	NotFound bool
	Message  string
	Title    string
	SharedOn string
	Count    int
	Messages []PageMessage
}

func NewPage(state State, loc *time.Location) Page {
	if state.Phase != PhaseLoaded || state.Record == nil {
		return Page{Failed: true, NotFound: state.NotFound, Message: state.Message}
	}

	r := state.Record
	page := Page{
		Title:    r.Title,
		SharedOn: FormatDate(r.CreatedAt, loc),
		Count:    r.TotalMessages,
		Messages: make([]PageMessage, 0, len(r.Messages)),
	}
	for _, m := range r.Messages {
		speaker := "StockSage AI"
		if m.Role == model.RoleUser {
			speaker = "You"
		}
		page.Messages = append(page.Messages, PageMessage{
			Role:    m.Role,
			Speaker: speaker,
			Content: m.Content,
			Time:    FormatMessageTime(m.Timestamp, loc),
		})
	}
	return page
}

var PageTemplate = template.Must(template.New(PageTemplateName).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Failed}}Conversation Not Found{{else}}{{.Title}}{{end}} - StockSage AI</title>
<style>
body { font-family: system-ui, sans-serif; background: #0f172a; color: #e2e8f0; margin: 0; }
.chat-container { max-width: 860px; margin: 0 auto; padding: 24px; }
.shared-meta span { margin-right: 16px; color: #94a3b8; }
.message { margin: 12px 0; display: flex; }
.message.user { justify-content: flex-end; }
.message-bubble { max-width: 75%; padding: 12px 16px; border-radius: 12px; background: #1e293b; white-space: pre-wrap; }
.message-bubble.user { background: #2563eb; }
.message-timestamp { font-size: 12px; color: #94a3b8; margin-top: 6px; }
a { color: #60a5fa; }
</style>
</head>
<body>
<div class="chat-container">
{{if .Failed}}
  <div class="empty-state">
    <h2>Conversation Not Found</h2>
    <p>{{.Message}}</p>
    <p><a href="/">Go to StockSage AI</a></p>
  </div>
{{else}}
  <header class="chat-header"><h1>StockSage AI <span class="subtitle">- Shared Analysis</span></h1></header>
  <div class="shared-info">
    <h3>{{.Title}}</h3>
    <div class="shared-meta">
      <span>Shared on {{.SharedOn}}</span>
      <span>{{.Count}} messages</span>
      <span>Read-only view</span>
    </div>
  </div>
  <div class="messages-container">
  {{range .Messages}}
    <div class="message {{.Role}}">
      <div class="message-bubble {{.Role}}">
        <div class="message-content">{{.Content}}</div>
        <div class="message-timestamp">{{.Speaker}} · {{.Time}}</div>
      </div>
    </div>
  {{end}}
  </div>
  <div class="shared-footer">
    <p>This is a read-only view of a StockSage AI conversation. <a href="/">Start your own analysis</a></p>
  </div>
{{end}}
</div>
</body>
</html>
`
