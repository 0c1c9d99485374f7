package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedRecord_JSONShape(t *testing.T) {
	record := SharedRecord{
		ID:            "abc",
		Title:         "t",
		Messages:      []SharedMessage{{Role: RoleUser, Content: "Hi", Timestamp: "t1"}},
		CreatedAt:     "2025-03-01T09:30:00.000Z",
		TotalMessages: 1,
		ExpiresAt:     time.Now(),
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","title":"t","messages":[{"role":"user","content":"Hi","timestamp":"t1"}],"createdAt":"2025-03-01T09:30:00.000Z","totalMessages":1}`, string(data))
}

func TestSharedRecord_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, (&SharedRecord{}).Expired(now))
	assert.True(t, (&SharedRecord{ExpiresAt: now}).Expired(now))
	assert.False(t, (&SharedRecord{ExpiresAt: now.Add(time.Second)}).Expired(now))
}

func TestShareArchiveEvent_KeepsExpiry(t *testing.T) {
	expires := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	event := NewShareArchiveEvent(SharedRecord{ID: "abc", ExpiresAt: expires})

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded ShareArchiveEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	record := decoded.SharedRecord()
	assert.Equal(t, "abc", record.ID)
	assert.True(t, expires.Equal(record.ExpiresAt))

	assert.Nil(t, NewShareArchiveEvent(SharedRecord{ID: "forever"}).ExpiresAt)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("user"))
	assert.True(t, ValidRole("assistant"))
	assert.False(t, ValidRole("system"))
}
