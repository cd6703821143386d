package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Patient struct {
	ID       uuid.UUID
	ClinicID uuid.UUID
	FullName string
	CPF      *string
	Phone    *string
	Email    *string
	Status   string
	Notes    *string
}

// CreatePatient insere o paciente; cpfHash (SHA-256 do CPF normalizado) é
// usado para deduplicação por clínica, quando o CPF é informado.
func CreatePatient(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, fullName string, cpf, cpfHash, phone, email *string) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO patients (clinic_id, full_name, cpf, cpf_hash, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, clinicID, fullName, cpf, cpfHash, phone, email).Scan(&id)
	return id, err
}

func PatientsByClinic(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, search string, limit, offset int) ([]Patient, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, clinic_id, full_name, cpf, phone, email, status, notes
		FROM patients
		WHERE clinic_id = $1 AND ($2 = '' OR full_name ILIKE '%' || $2 || '%')
		ORDER BY full_name
		LIMIT $3 OFFSET $4
	`, clinicID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.ClinicID, &p.FullName, &p.CPF, &p.Phone, &p.Email, &p.Status, &p.Notes); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func PatientByIDAndClinic(ctx context.Context, pool *pgxpool.Pool, id, clinicID uuid.UUID) (*Patient, error) {
	var p Patient
	err := pool.QueryRow(ctx, `
		SELECT id, clinic_id, full_name, cpf, phone, email, status, notes
		FROM patients WHERE id = $1 AND clinic_id = $2
	`, id, clinicID).Scan(&p.ID, &p.ClinicID, &p.FullName, &p.CPF, &p.Phone, &p.Email, &p.Status, &p.Notes)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePatient aplica atualização parcial: campos nil não mudam.
func UpdatePatient(ctx context.Context, pool *pgxpool.Pool, id, clinicID uuid.UUID, fullName, phone, email, status, notes *string) (int64, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE patients SET
			full_name = COALESCE($3, full_name),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			status = COALESCE($6, status),
			notes = COALESCE($7, notes),
			updated_at = now()
		WHERE id = $1 AND clinic_id = $2
	`, id, clinicID, fullName, phone, email, status, notes)
	return tag.RowsAffected(), err
}

func DeletePatient(ctx context.Context, pool *pgxpool.Pool, id, clinicID uuid.UUID) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM patients WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	return tag.RowsAffected(), err
}
