package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.Decimal
	IncurredAt  time.Time
}

func CreateExpense(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, description string, amount decimal.Decimal, incurredAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO clinic_expenses (clinic_id, description, amount, incurred_at)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, clinicID, description, amount, incurredAt).Scan(&id)
	return id, err
}

func ExpensesByRange(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, from, to time.Time) ([]Expense, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, description, amount, incurred_at
		FROM clinic_expenses
		WHERE clinic_id = $1 AND incurred_at >= $2 AND incurred_at < $3
		ORDER BY incurred_at
	`, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.IncurredAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func DeleteExpense(ctx context.Context, pool *pgxpool.Pool, clinicID, expenseID uuid.UUID) (bool, error) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM clinic_expenses WHERE id = $1 AND clinic_id = $2
	`, expenseID, clinicID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
