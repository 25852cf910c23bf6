package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Repository on the exchange_records table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new exchange record repository.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListRecent(ctx context.Context, conversationID string, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_context, assistant_reply, created_at
		 FROM exchange_records
		 WHERE conversation_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying exchange records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.User, &rec.Assistant, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchange records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Append(ctx context.Context, conversationID string, rec Record) error {
	stamp(&rec)
	key := Key(conversationID, rec.CreatedAt)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO exchange_records (record_key, conversation_id, user_context, assistant_reply, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (record_key) DO UPDATE
		 SET user_context = EXCLUDED.user_context,
		     assistant_reply = EXCLUDED.assistant_reply,
		     created_at = EXCLUDED.created_at`,
		key, conversationID, rec.User, rec.Assistant, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting exchange record %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
