package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RevenueEntry struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	Description string
	Amount      decimal.Decimal
	ReceivedAt  time.Time
}

func CreateRevenueEntry(ctx context.Context, pool *pgxpool.Pool, clinicID, doctorID uuid.UUID, description string, amount decimal.Decimal, receivedAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO revenue_entries (clinic_id, doctor_id, description, amount, received_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, clinicID, doctorID, description, amount, receivedAt).Scan(&id)
	return id, err
}

func RevenueByDoctor(ctx context.Context, pool *pgxpool.Pool, clinicID, doctorID uuid.UUID, from, to time.Time) ([]RevenueEntry, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, doctor_id, description, amount, received_at
		FROM revenue_entries
		WHERE clinic_id = $1 AND doctor_id = $2
		  AND received_at >= $3 AND received_at < $4
		ORDER BY received_at
	`, clinicID, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []RevenueEntry
	for rows.Next() {
		var e RevenueEntry
		if err := rows.Scan(&e.ID, &e.DoctorID, &e.Description, &e.Amount, &e.ReceivedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// SumRevenueForDoctor soma o faturamento bruto do médico no período.
func SumRevenueForDoctor(ctx context.Context, pool *pgxpool.Pool, clinicID, doctorID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM revenue_entries
		WHERE clinic_id = $1 AND doctor_id = $2
		  AND received_at >= $3 AND received_at < $4
	`, clinicID, doctorID, from, to).Scan(&total)
	return total, err
}
