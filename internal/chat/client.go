package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"stocksage/internal/ai"
	"stocksage/internal/model"
)

const (
	NoResponseText   = "No response received."
	QuotaText        = "⚠️ API quota exceeded. Please check your OpenAI billing and usage limits at platform.openai.com/usage. You may need to upgrade your plan or wait for your quota to reset."
	InvalidKeyText   = "🔑 Invalid API key. Please check your API key and try again."
	TimeoutText      = "⏱️ Request timed out. Please try again."
	genericErrPrefix = "❌ Error: "
)

var ErrCredentialEmpty = errors.New("please enter a valid API key")

// View is the screen the client currently shows.
type View int

const (
	ViewCredential View = iota
	ViewChat
)

// Completer issues one completion request on behalf of the key holder.
type Completer interface {
	Complete(ctx context.Context, apiKey string, messages []ai.ChatMessage) (string, error)
}

// CredentialStore remembers the API key between runs.
type CredentialStore interface {
	Load() (string, error)
	Save(key string) error
	Clear() error
}

// Turn is a completion request that has been started but not finished.
type Turn struct {
	APIKey   string
	Messages []ai.ChatMessage
}

// Client is the chat state machine. It is not safe for concurrent use; every
// call is expected from a single event loop.
type Client struct {
	completer    Completer
	store        CredentialStore
	systemPrompt string
	now          func() time.Time
	newID        func() string

	messages   []model.Message
	input      string
	busy       bool
	credential string
	view       View
}

type Option func(*Client)

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Client) { c.newID = newID }
}

// New reads the stored credential once and picks the initial view from it.
func New(completer Completer, store CredentialStore, systemPrompt string, opts ...Option) (*Client, error) {
	c := &Client{
		completer:    completer,
		store:        store,
		systemPrompt: systemPrompt,
		now:          time.Now,
		newID:        uuid.NewString,
		view:         ViewCredential,
	}
	for _, opt := range opts {
		opt(c)
	}

	key, err := store.Load()
	if err != nil {
		return nil, err
	}
	if key != "" {
		c.credential = key
		c.view = ViewChat
	}
	return c, nil
}

func (c *Client) View() View { return c.view }

func (c *Client) Busy() bool { return c.busy }

func (c *Client) Input() string { return c.input }

func (c *Client) Credential() string { return c.credential }

func (c *Client) SetInput(text string) {
	c.input = text
}

// Messages returns a copy of the conversation in chronological order.
func (c *Client) Messages() []model.Message {
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Client) SaveCredential(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrCredentialEmpty
	}
	if err := c.store.Save(key); err != nil {
		return err
	}
	c.credential = key
	c.view = ViewChat
	return nil
}

// ClearCredential forgets the key and discards the conversation.
func (c *Client) ClearCredential() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	c.credential = ""
	c.view = ViewCredential
	c.messages = nil
	return nil
}

// Begin records the user message and marks the client busy. It reports false
// without touching state when text is blank, no key is set, or a request is
// already in flight.
func (c *Client) Begin(text string) (Turn, bool) {
	if strings.TrimSpace(text) == "" || c.credential == "" || c.busy {
		return Turn{}, false
	}

	prompt := make([]ai.ChatMessage, 0, len(c.messages)+2)
	prompt = append(prompt, ai.ChatMessage{Role: "system", Content: c.systemPrompt})
	for _, m := range c.messages {
		prompt = append(prompt, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, ai.ChatMessage{Role: model.RoleUser, Content: text})

	c.append(model.RoleUser, text)
	c.input = ""
	c.busy = true
	return Turn{APIKey: c.credential, Messages: prompt}, true
}

// Finish appends exactly one assistant message for the outcome of a turn and
// clears the busy flag.
func (c *Client) Finish(reply string, err error) {
	defer func() { c.busy = false }()

	if err != nil {
		c.append(model.RoleAssistant, ErrorText(err))
		return
	}
	if reply == "" {
		reply = NoResponseText
	}
	c.append(model.RoleAssistant, reply)
}

// Submit runs a whole turn synchronously.
func (c *Client) Submit(ctx context.Context, text string) bool {
	turn, ok := c.Begin(text)
	if !ok {
		return false
	}

	reply, err := c.Complete(ctx, turn)
	c.Finish(reply, err)
	return true
}

// Complete sends a started turn. It reads no client state and may run off the
// event loop.
func (c *Client) Complete(ctx context.Context, turn Turn) (string, error) {
	return c.completer.Complete(ctx, turn.APIKey, turn.Messages)
}

// ErrorText maps a completion failure to the notice shown in the conversation.
func ErrorText(err error) string {
	switch ai.KindOf(err) {
	case ai.KindQuota:
		return QuotaText
	case ai.KindUnauthorized:
		return InvalidKeyText
	case ai.KindTimeout:
		return TimeoutText
	default:
		return genericErrPrefix + err.Error()
	}
}

func (c *Client) append(role, content string) {
	c.messages = append(c.messages, model.Message{
		ID:        c.newID(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	})
}
