package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateErrorEvent persiste um erro reportado pelo frontend.
// metadata is stored as raw JSON; nil means no metadata.
func CreateErrorEvent(ctx context.Context, pool *pgxpool.Pool, clinicID *uuid.UUID, userID *uuid.UUID, message, stack, url, userAgent string, metadata []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO error_events (clinic_id, user_id, message, stack, url, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
	`, clinicID, userID, message, stack, url, userAgent, metadata).Scan(&id)
	return id, err
}
