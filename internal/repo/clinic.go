package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Clinic struct {
	ID   uuid.UUID
	Name string
}

func ClinicByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Clinic, error) {
	var c Clinic
	err := pool.QueryRow(ctx, `SELECT id, name FROM clinics WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func ClinicExists(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clinics WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
