// internal/database/rounds.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/cardparty/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS round_results (
		id           BIGSERIAL PRIMARY KEY,
		room_id      TEXT        NOT NULL,
		room_name    TEXT        NOT NULL,
		round        INTEGER     NOT NULL,
		prompt       TEXT        NOT NULL,
		pick         INTEGER     NOT NULL,
		judge_name   TEXT        NOT NULL,
		winner_id    UUID        NOT NULL,
		winner_name  TEXT        NOT NULL,
		cards        TEXT[]      NOT NULL,
		timeout      BOOLEAN     NOT NULL DEFAULT FALSE,
		submissions  INTEGER     NOT NULL,
		resolved_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (room_id, round, resolved_at)
	);
	CREATE INDEX IF NOT EXISTS round_results_room_idx ON round_results (room_id, round);
`

// Store writes the round archive.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the round_results table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertRoundResults writes a batch of rounds in one transaction. A record that
// was already archived (same room, round and resolution time) is skipped, so a
// batch replayed after a failed commit does not duplicate rows.
func (s *Store) InsertRoundResults(ctx context.Context, records []models.RoundRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO round_results (
				room_id, room_name, round, prompt, pick, judge_name,
				winner_id, winner_name, cards, timeout, submissions, resolved_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (room_id, round, resolved_at) DO NOTHING
		`
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(q,
				rec.RoomID, rec.RoomName, rec.Round, rec.Prompt, rec.Pick, rec.JudgeName,
				rec.WinnerID, rec.WinnerName, rec.Cards, rec.Timeout, rec.Submissions, rec.ResolvedAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("insert %d round results: %w", len(records), err)
	}
	return nil
}

// RoundsForRoom returns the archived rounds of a room, oldest first.
func (s *Store) RoundsForRoom(ctx context.Context, roomID string) ([]models.RoundRecord, error) {
	q := `
		SELECT room_id, room_name, round, prompt, pick, judge_name,
			winner_id, winner_name, cards, timeout, submissions, resolved_at
		FROM round_results
		WHERE room_id = $1
		ORDER BY resolved_at, round
	`
	rows, err := s.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("query round results: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RoundRecord, error) {
		var rec models.RoundRecord
		err := row.Scan(
			&rec.RoomID, &rec.RoomName, &rec.Round, &rec.Prompt, &rec.Pick, &rec.JudgeName,
			&rec.WinnerID, &rec.WinnerName, &rec.Cards, &rec.Timeout, &rec.Submissions, &rec.ResolvedAt,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan round results: %w", err)
	}
	return records, nil
}
