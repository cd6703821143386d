package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Interaction is one CRM record on a patient (ligação, retorno, etc).
type Interaction struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	AuthorID  *uuid.UUID
	Kind      string
	Summary   string
	CreatedAt time.Time
}

func CreateInteraction(ctx context.Context, pool *pgxpool.Pool, clinicID, patientID uuid.UUID, authorID *uuid.UUID, kind, summary string) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO crm_interactions (clinic_id, patient_id, author_id, kind, summary)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, clinicID, patientID, authorID, kind, summary).Scan(&id)
	return id, err
}

func InteractionsByPatient(ctx context.Context, pool *pgxpool.Pool, clinicID, patientID uuid.UUID) ([]Interaction, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, patient_id, author_id, kind, summary, created_at
		FROM crm_interactions
		WHERE clinic_id = $1 AND patient_id = $2
		ORDER BY created_at DESC
	`, clinicID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.PatientID, &it.AuthorID, &it.Kind, &it.Summary, &it.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
