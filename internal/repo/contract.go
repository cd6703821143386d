package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DoctorContract is the doctor's contract term with the clinic.
// Kind: ALUGUEL (rate = valor/hora) ou PARCERIA (rate = percentual 0-100).
type DoctorContract struct {
	ID       uuid.UUID
	ClinicID uuid.UUID
	DoctorID uuid.UUID
	Kind     string
	Rate     decimal.Decimal
}

// UpsertDoctorContract cria ou substitui o contrato vigente do médico
// (UNIQUE (clinic_id, doctor_id) garante no máximo um por clínica).
func UpsertDoctorContract(ctx context.Context, pool *pgxpool.Pool, clinicID, doctorID uuid.UUID, kind string, rate decimal.Decimal) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO doctor_contracts (clinic_id, doctor_id, kind, rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (clinic_id, doctor_id)
		DO UPDATE SET kind = EXCLUDED.kind, rate = EXCLUDED.rate, updated_at = now()
	`, clinicID, doctorID, kind, rate)
	return err
}

func ListActiveContracts(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID) ([]DoctorContract, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, clinic_id, doctor_id, kind, rate
		FROM doctor_contracts WHERE clinic_id = $1
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []DoctorContract
	for rows.Next() {
		var c DoctorContract
		if err := rows.Scan(&c.ID, &c.ClinicID, &c.DoctorID, &c.Kind, &c.Rate); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func DeleteDoctorContract(ctx context.Context, pool *pgxpool.Pool, clinicID, doctorID uuid.UUID) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM doctor_contracts WHERE clinic_id = $1 AND doctor_id = $2`, clinicID, doctorID)
	return tag.RowsAffected(), err
}
