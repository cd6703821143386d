package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("produto não encontrado")
	ErrInsufficientStock = errors.New("estoque insuficiente")
)

type ConsumptionEvent struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	DoctorID       uuid.UUID
	PatientID      *uuid.UUID
	ProductName    string
	PatientName    *string
	Quantity       int64
	FrozenUnitCost decimal.Decimal
	CreatedAt      time.Time
}

// RegisterConsumption grava o consumo e baixa o estoque na mesma transação.
// The unit cost is frozen at registration time: distributor cost plus the
// clinic markup, so later price changes never rewrite past closings.
func RegisterConsumption(ctx context.Context, pool *pgxpool.Pool, clinicID, productID, doctorID uuid.UUID, patientID *uuid.UUID, quantity int64, markupPct decimal.Decimal) (uuid.UUID, error) {
	var id uuid.UUID
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var distributorCost decimal.Decimal
		var stock int64
		err := tx.QueryRow(ctx, `
			SELECT distributor_cost, stock FROM products
			WHERE id = $1 AND clinic_id = $2 AND active
			FOR UPDATE
		`, productID, clinicID).Scan(&distributorCost, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		if stock < quantity {
			return ErrInsufficientStock
		}

		unitCost := distributorCost.Mul(decimal.NewFromInt(100).Add(markupPct)).Div(decimal.NewFromInt(100))

		if err := tx.QueryRow(ctx, `
			INSERT INTO consumption_events (clinic_id, product_id, doctor_id, patient_id, quantity, frozen_unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
		`, clinicID, productID, doctorID, patientID, quantity, unitCost).Scan(&id); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE products SET stock = stock - $3 WHERE id = $1 AND clinic_id = $2
		`, productID, clinicID, quantity)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func ConsumptionByDoctor(ctx context.Context, pool *pgxpool.Pool, clinicID, doctorID uuid.UUID, from, to time.Time) ([]ConsumptionEvent, error) {
	rows, err := pool.Query(ctx, `
		SELECT c.id, c.product_id, c.doctor_id, c.patient_id, p.name, pa.full_name,
		       c.quantity, c.frozen_unit_cost, c.created_at
		FROM consumption_events c
		JOIN products p ON p.id = c.product_id
		LEFT JOIN patients pa ON pa.id = c.patient_id
		WHERE c.clinic_id = $1 AND c.doctor_id = $2
		  AND c.created_at >= $3 AND c.created_at < $4
		ORDER BY c.created_at
	`, clinicID, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ConsumptionEvent
	for rows.Next() {
		var e ConsumptionEvent
		if err := rows.Scan(&e.ID, &e.ProductID, &e.DoctorID, &e.PatientID, &e.ProductName, &e.PatientName, &e.Quantity, &e.FrozenUnitCost, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
