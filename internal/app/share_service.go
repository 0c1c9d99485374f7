package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stocksage/internal/model"
)

var (
	ErrShareMessagesInvalid = errors.New("invalid messages data")
	ErrShareIDMissing       = errors.New("share id is required")
	ErrShareNotFound        = errors.New("conversation not found")
	ErrShareStore           = errors.New("share storage failed")
)

const createdAtLayout = "2006-01-02T15:04:05.000Z"

// ShareStore is the storage port for shared records. Get returns nil, nil
// when no live record exists under id.
type ShareStore interface {
	Put(ctx context.Context, record *model.SharedRecord) error
	Get(ctx context.Context, id string) (*model.SharedRecord, error)
}

// SharePublisher hands a freshly created record to the archive pipeline.
type SharePublisher interface {
	Publish(ctx context.Context, record model.SharedRecord) error
}

type ShareOptions struct {
	DefaultTitle string
	// PublicHost overrides the request origin when building share URLs.
	PublicHost string
	// TTL of zero keeps records until the process (or backend) drops them.
	TTL time.Duration
}

type ShareService struct {
	store     ShareStore
	archive   ShareStore
	publisher SharePublisher
	opts      ShareOptions
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

type CreateShareInput struct {
	// Messages must be non-nil; an empty slice is a valid (empty) share.
	Messages []model.SharedMessage
	Title    string
	// Origin is scheme://host of the incoming request.
	Origin string
}

type CreateShareOutput struct {
	ID        string
	URL       string
	ExpiresIn string
}

// NewShareService wires the primary store. archive and publisher are optional
// and must be given together.
func NewShareService(
	store ShareStore,
	archive ShareStore,
	publisher SharePublisher,
	opts ShareOptions,
	log zerolog.Logger,
) *ShareService {
	if strings.TrimSpace(opts.DefaultTitle) == "" {
		opts.DefaultTitle = "StockSage AI Conversation"
	}
	return &ShareService{
		store:     store,
		archive:   archive,
		publisher: publisher,
		opts:      opts,
		log:       log,
		now:       time.Now,
		newID:     GenerateShareID,
	}
}

func (s *ShareService) Create(ctx context.Context, input CreateShareInput) (*CreateShareOutput, error) {
	if input.Messages == nil {
		return nil, ErrShareMessagesInvalid
	}
	for _, m := range input.Messages {
		if !model.ValidRole(m.Role) {
			return nil, ErrShareMessagesInvalid
		}
	}

	title := input.Title
	if title == "" {
		title = s.opts.DefaultTitle
	}

	messages := make([]model.SharedMessage, len(input.Messages))
	copy(messages, input.Messages)

	now := s.now().UTC()
	record := &model.SharedRecord{
		ID:            s.newID(),
		Title:         title,
		Messages:      messages,
		CreatedAt:     now.Format(createdAtLayout),
		TotalMessages: len(messages),
	}
	if s.opts.TTL > 0 {
		record.ExpiresAt = now.Add(s.opts.TTL)
	}

	if err := s.store.Put(ctx, record); err != nil {
		s.log.Error().Err(err).Str("share_id", record.ID).Msg("store shared conversation failed")
		return nil, fmt.Errorf("%w: %v", ErrShareStore, err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, *record); err != nil {
			s.log.Warn().Err(err).Str("share_id", record.ID).Msg("publish shared conversation to archive failed")
		}
	}

	return &CreateShareOutput{
		ID:        record.ID,
		URL:       s.shareURL(input.Origin, record.ID),
		ExpiresIn: FormatExpiresIn(s.opts.TTL),
	}, nil
}

func (s *ShareService) Retrieve(ctx context.Context, id string) (*model.SharedRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrShareIDMissing
	}

	record, err := s.store.Get(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("share_id", id).Msg("load shared conversation failed")
		return nil, fmt.Errorf("%w: %v", ErrShareStore, err)
	}

	if record == nil && s.archive != nil {
		record, err = s.archive.Get(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Str("share_id", id).Msg("load archived conversation failed")
			return nil, fmt.Errorf("%w: %v", ErrShareStore, err)
		}
		if record != nil {
			if err := s.store.Put(ctx, record); err != nil {
				s.log.Warn().Err(err).Str("share_id", id).Msg("rewarm shared conversation failed")
			}
		}
	}

	if record == nil || record.Expired(s.now()) {
		return nil, ErrShareNotFound
	}
	return record, nil
}

func (s *ShareService) shareURL(origin, id string) string {
	base := strings.TrimRight(origin, "/")
	if host := strings.TrimSpace(s.opts.PublicHost); host != "" {
		base = strings.TrimRight(host, "/")
		if !strings.Contains(base, "://") {
			base = "https://" + base
		}
	}
	return base + "/shared/" + id
}

// GenerateShareID concatenates two random base-36 fragments. Collisions are
// not checked; a repeated id overwrites the earlier record.
func GenerateShareID() string {
	return idFragment() + idFragment()
}

func idFragment() string {
	fragment := strconv.FormatUint(rand.Uint64(), 36)
	if len(fragment) > 11 {
		fragment = fragment[:11]
	}
	return fragment
}

// FormatExpiresIn renders ttl for the create response.
func FormatExpiresIn(ttl time.Duration) string {
	switch {
	case ttl <= 0:
		return "never"
	case ttl%(24*time.Hour) == 0:
		return plural(int(ttl/(24*time.Hour)), "day")
	case ttl%time.Hour == 0:
		return plural(int(ttl/time.Hour), "hour")
	default:
		return ttl.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
