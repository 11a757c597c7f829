package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventStats contains aggregated event counters for the operations view.
type EventStats struct {
	TotalEvents   int            `json:"total_events"`
	TodayEvents   int            `json:"today_events"`
	UniqueOpeners int            `json:"unique_openers"`
	ByEventType   map[string]int `json:"by_event_type"`
	ByBank        map[string]int `json:"by_bank"`
}

// StatsRepository aggregates event statistics with raw SQL. It needs a
// postgres pool; in the sqlite fallback mode there is none and stats are
// unavailable.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetStats retrieves aggregated event statistics.
func (r *StatsRepository) GetStats(ctx context.Context) (*EventStats, error) {
	stats := &EventStats{
		ByEventType: make(map[string]int),
		ByBank:      make(map[string]int),
	}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN created_at >= CURRENT_DATE THEN 1 END) as today,
			COUNT(DISTINCT opener_tg_user_id) as openers
		FROM webapp_events
	`).Scan(&stats.TotalEvents, &stats.TodayEvents, &stats.UniqueOpeners)
	if err != nil {
		return nil, fmt.Errorf("get event totals: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT event_type, COUNT(*) FROM webapp_events GROUP BY event_type
	`)
	if err != nil {
		return nil, fmt.Errorf("get event type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		stats.ByEventType[eventType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event type counts: %w", err)
	}

	bankRows, err := r.pool.Query(ctx, `
		SELECT bank_id, COUNT(*) FROM webapp_events
		WHERE bank_id <> '' GROUP BY bank_id
	`)
	if err != nil {
		return nil, fmt.Errorf("get bank counts: %w", err)
	}
	defer bankRows.Close()

	for bankRows.Next() {
		var bankID string
		var count int
		if err := bankRows.Scan(&bankID, &count); err != nil {
			return nil, fmt.Errorf("scan bank count: %w", err)
		}
		stats.ByBank[bankID] = count
	}
	if err := bankRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank counts: %w", err)
	}

	return stats, nil
}
