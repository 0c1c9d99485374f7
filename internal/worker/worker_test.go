package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksage/internal/model"
	"stocksage/internal/repository"
)

func TestShareArchiveWorker_Handle(t *testing.T) {
	ctx := context.Background()
	archive := repository.NewMemoryShareStore()
	w := NewShareArchiveWorker(nil, archive, "share.archive", zerolog.Nop())

	expires := time.Now().Add(time.Hour).UTC()
	body, err := json.Marshal(model.NewShareArchiveEvent(model.SharedRecord{
		ID:            "abc",
		Title:         "title",
		Messages:      []model.SharedMessage{{Role: "user", Content: "Hi", Timestamp: "t1"}},
		TotalMessages: 1,
		ExpiresAt:     expires,
	}))
	require.NoError(t, err)

	require.NoError(t, w.Handle(ctx, body))

	got, err := archive.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalMessages)
	assert.True(t, expires.Equal(got.ExpiresAt))
}

func TestShareArchiveWorker_HandleRejectsBadPayload(t *testing.T) {
	w := NewShareArchiveWorker(nil, repository.NewMemoryShareStore(), "q", zerolog.Nop())

	assert.Error(t, w.Handle(context.Background(), []byte("not json")))
	assert.Error(t, w.Handle(context.Background(), []byte(`{"record":{"title":"no id"}}`)))
}

type fakePurger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePurger) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func TestExpirySweeper_Sweep(t *testing.T) {
	purger := &fakePurger{}
	s := NewExpirySweeper(purger, time.Minute, zerolog.Nop())
	assert.Equal(t, int64(2), s.Sweep(context.Background()))

	purger.err = errors.New("db down")
	assert.Zero(t, s.Sweep(context.Background()))
}

func TestExpirySweeper_RunsOnTicker(t *testing.T) {
	purger := &fakePurger{}
	s := NewExpirySweeper(purger, 5*time.Millisecond, zerolog.Nop())
	s.Start(context.Background())

	require.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Close()
}
