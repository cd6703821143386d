package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID              uuid.UUID
	Name            string
	DistributorCost decimal.Decimal
	Stock           int64
	Active          bool
}

func CreateProduct(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, name string, distributorCost decimal.Decimal, stock int64) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO products (clinic_id, name, distributor_cost, stock)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, clinicID, name, distributorCost, stock).Scan(&id)
	return id, err
}

func ProductsByClinic(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID) ([]Product, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, name, distributor_cost, stock, active
		FROM products
		WHERE clinic_id = $1 AND active
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.DistributorCost, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func UpdateProduct(ctx context.Context, pool *pgxpool.Pool, clinicID, productID uuid.UUID, name *string, distributorCost *decimal.Decimal, stock *int64) (bool, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE products SET
			name = COALESCE($3, name),
			distributor_cost = COALESCE($4, distributor_cost),
			stock = COALESCE($5, stock)
		WHERE id = $1 AND clinic_id = $2
	`, productID, clinicID, name, distributorCost, stock)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func DeactivateProduct(ctx context.Context, pool *pgxpool.Pool, clinicID, productID uuid.UUID) (bool, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE products SET active = false WHERE id = $1 AND clinic_id = $2
	`, productID, clinicID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
