package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Room struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Active      bool
}

func CreateRoom(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, name string, description *string) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO rooms (clinic_id, name, description) VALUES ($1, $2, $3) RETURNING id
	`, clinicID, name, description).Scan(&id)
	return id, err
}

func RoomsByClinic(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID) ([]Room, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, name, description, active FROM rooms
		WHERE clinic_id = $1 AND active
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Active); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func DeactivateRoom(ctx context.Context, pool *pgxpool.Pool, clinicID, roomID uuid.UUID) (bool, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE rooms SET active = false WHERE id = $1 AND clinic_id = $2
	`, roomID, clinicID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
