package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Event is one stored mini app telemetry event. Events that carry a
// transfer id are upserted per (transfer_id, event_type); anonymous events
// are plain inserts.
type Event struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TransferID        string    `gorm:"size:128;uniqueIndex:idx_transfer_event,where:transfer_id <> ''" json:"transfer_id"`
	EventType         string    `gorm:"size:64;uniqueIndex:idx_transfer_event,where:transfer_id <> ''" json:"event_type"`
	BankID            string    `gorm:"size:64" json:"bank_id"`
	Page              string    `gorm:"size:32" json:"page"`
	InlinePayloadJSON string    `json:"inline_payload_json"`
	InlineContextJSON string    `json:"inline_context_json"`
	OpenerTgUserID    *int64    `json:"opener_tg_user_id"`
	OpenerJSON        string    `json:"opener_json"`
	RawInitData       string    `json:"raw_init_data"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName keeps the historical table name.
func (Event) TableName() string {
	return "webapp_events"
}

// FromPayload builds an Event row from the raw collected payload, packing
// the inline context the same way the event writer always has.
func FromPayload(payload map[string]any) Event {
	e := Event{
		ID:         uuid.New(),
		TransferID: getString(payload, "transfer_id"),
		EventType:  getString(payload, "event_type"),
		BankID:     getString(payload, "bank_id"),
		Page:       getString(payload, "page"),
		CreatedAt:  time.Now().UTC(),
	}

	inlinePayload := payload["transfer_payload"]
	if inlinePayload == nil {
		inlinePayload = map[string]any{}
	}
	e.InlinePayloadJSON = marshalLossy(inlinePayload)

	e.InlineContextJSON = marshalLossy(map[string]any{
		"creator_tg_user_id": payload["inline_creator_tg_user_id"],
		"generated_at":       payload["inline_generated_at"],
		"parsed":             orEmptyObject(payload["inline_parsed"]),
		"option":             orEmptyObject(payload["inline_option"]),
	})

	if unsafe, ok := payload["initDataUnsafe"].(map[string]any); ok {
		if user, ok := unsafe["user"].(map[string]any); ok {
			e.OpenerJSON = marshalLossy(user)
			if id, ok := user["id"].(float64); ok {
				tgID := int64(id)
				e.OpenerTgUserID = &tgID
			}
		}
	}

	e.RawInitData = getString(payload, "initData")

	return e
}

// EventsRepository stores collected events through GORM.
type EventsRepository struct {
	db *gorm.DB
}

// NewEventsRepository creates the repository and ensures the schema.
func NewEventsRepository(db *gorm.DB) (*EventsRepository, error) {
	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("migrate events: %w", err)
	}
	return &EventsRepository{db: db}, nil
}

// Save persists one event. Rows keyed by transfer id are upserted: the
// inline payload is refreshed while opener fields and created_at keep their
// first non-null value.
func (r *EventsRepository) Save(ctx context.Context, e *Event) error {
	tx := r.db.WithContext(ctx)

	if e.TransferID == "" {
		if err := tx.Create(e).Error; err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "transfer_id"}, {Name: "event_type"}},
		// the unique index is partial, the conflict target must match it
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "transfer_id <> ''"}}},
		DoUpdates: clause.Assignments(map[string]any{
			"inline_payload_json": e.InlinePayloadJSON,
			"inline_context_json": e.InlineContextJSON,
			"bank_id":             e.BankID,
			"page":                e.Page,
			"opener_tg_user_id":   gorm.Expr("COALESCE(excluded.opener_tg_user_id, webapp_events.opener_tg_user_id)"),
			"opener_json":         gorm.Expr("CASE WHEN excluded.opener_json <> '' THEN excluded.opener_json ELSE webapp_events.opener_json END"),
			"raw_init_data":       gorm.Expr("CASE WHEN excluded.raw_init_data <> '' THEN excluded.raw_init_data ELSE webapp_events.raw_init_data END"),
		}),
	}).Create(e).Error
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// ListRecent returns the latest events, newest first.
func (r *EventsRepository) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []Event
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func orEmptyObject(v any) any {
	if v == nil {
		return map[string]any{}
	}
	return v
}

// marshalLossy serializes without failing the write path; a value that
// cannot be marshaled becomes an empty object.
func marshalLossy(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
