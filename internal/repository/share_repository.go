package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stocksage/internal/model"
)

// SharedConversation is the MySQL row behind a shared record. Messages are
// kept as a JSON document so order is preserved verbatim.
type SharedConversation struct {
	ID            string     `gorm:"primaryKey;size:32"`
	Title         string     `gorm:"type:text;not null"`
	Messages      string     `gorm:"type:longtext;not null"`
	TotalMessages int        `gorm:"not null"`
	CreatedAt     string     `gorm:"size:32;not null"`
	ExpiresAt     *time.Time `gorm:"index"`
	StoredAt      time.Time  `gorm:"autoCreateTime"`
}

func (SharedConversation) TableName() string {
	return "shared_conversations"
}

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&SharedConversation{}); err != nil {
		return fmt.Errorf("auto migrate shared conversations failed: %w", err)
	}
	return nil
}

// Put upserts so a repeated id replaces the earlier row.
func (r *ShareRepository) Put(ctx context.Context, record *model.SharedRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	if err := upsert(r.db.WithContext(ctx), row).Error; err != nil {
		return fmt.Errorf("save shared conversation failed: %w", err)
	}
	return nil
}

func (r *ShareRepository) Get(ctx context.Context, id string) (*model.SharedRecord, error) {
	var row SharedConversation
	err := liveByID(r.db.WithContext(ctx), id, time.Now()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shared conversation failed: %w", err)
	}
	return fromRow(&row)
}

func (r *ShareRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := expiredAt(r.db.WithContext(ctx), now).Delete(&SharedConversation{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired shared conversations failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// upsert replaces any row already stored under the same id.
func upsert(tx *gorm.DB, row *SharedConversation) *gorm.DB {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(row)
}

func liveByID(tx *gorm.DB, id string, now time.Time) *gorm.DB {
	return tx.Where("id = ? AND (expires_at IS NULL OR expires_at > ?)", id, now.UTC())
}

func expiredAt(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.Where("expires_at IS NOT NULL AND expires_at <= ?", now.UTC())
}

func toRow(record *model.SharedRecord) (*SharedConversation, error) {
	messages, err := json.Marshal(record.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshal shared messages failed: %w", err)
	}
	row := &SharedConversation{
		ID:            record.ID,
		Title:         record.Title,
		Messages:      string(messages),
		TotalMessages: record.TotalMessages,
		CreatedAt:     record.CreatedAt,
	}
	if !record.ExpiresAt.IsZero() {
		expires := record.ExpiresAt.UTC()
		row.ExpiresAt = &expires
	}
	return row, nil
}

func fromRow(row *SharedConversation) (*model.SharedRecord, error) {
	var messages []model.SharedMessage
	if err := json.Unmarshal([]byte(row.Messages), &messages); err != nil {
		return nil, fmt.Errorf("unmarshal shared messages failed: %w", err)
	}
	if messages == nil {
		messages = []model.SharedMessage{}
	}
	record := &model.SharedRecord{
		ID:            row.ID,
		Title:         row.Title,
		Messages:      messages,
		CreatedAt:     row.CreatedAt,
		TotalMessages: row.TotalMessages,
	}
	if row.ExpiresAt != nil {
		record.ExpiresAt = *row.ExpiresAt
	}
	return record, nil
}
