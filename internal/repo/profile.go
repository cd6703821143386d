package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Profile is a clinic user: ADMIN or MEDICO.
type Profile struct {
	ID           uuid.UUID
	ClinicID     uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
}

func ProfileByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (*Profile, error) {
	var p Profile
	err := pool.QueryRow(ctx, `
		SELECT id, clinic_id, email, password_hash, full_name, role
		FROM profiles WHERE lower(email) = lower($1)
	`, email).Scan(&p.ID, &p.ClinicID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func ProfileByIDAndClinic(ctx context.Context, pool *pgxpool.Pool, id, clinicID uuid.UUID) (*Profile, error) {
	var p Profile
	err := pool.QueryRow(ctx, `
		SELECT id, clinic_id, email, password_hash, full_name, role
		FROM profiles WHERE id = $1 AND clinic_id = $2
	`, id, clinicID).Scan(&p.ID, &p.ClinicID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile insere o usuário (antes uma função serverless create-user;
// aqui é um INSERT direto, dentro da transação do chamador quando houver).
func CreateProfile(ctx context.Context, db pgx.Tx, clinicID uuid.UUID, email, passwordHash, fullName, role string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO profiles (clinic_id, email, password_hash, full_name, role)
		VALUES ($1, lower($2), $3, $4, $5) RETURNING id
	`, clinicID, email, passwordHash, fullName, role).Scan(&id)
	return id, err
}

// DeleteProfile remove o usuário; dados dependentes caem por ON DELETE CASCADE.
func DeleteProfile(ctx context.Context, pool *pgxpool.Pool, id, clinicID uuid.UUID) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	return tag.RowsAffected(), err
}

// DoctorWithContract is the doctor listing row (the old medicos_view): profile
// plus the active contract, when any.
type DoctorWithContract struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	ContractKind *string
	ContractRate *decimal.Decimal
}

func ListDoctorsWithContract(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID) ([]DoctorWithContract, error) {
	rows, err := pool.Query(ctx, `
		SELECT p.id, p.full_name, p.email, c.kind, c.rate
		FROM profiles p
		LEFT JOIN doctor_contracts c ON c.doctor_id = p.id AND c.clinic_id = p.clinic_id
		WHERE p.clinic_id = $1 AND p.role = 'MEDICO'
		ORDER BY p.full_name
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []DoctorWithContract
	for rows.Next() {
		var d DoctorWithContract
		if err := rows.Scan(&d.ID, &d.FullName, &d.Email, &d.ContractKind, &d.ContractRate); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func ResolveDoctorNames(ctx context.Context, pool *pgxpool.Pool, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := pool.Query(ctx, `SELECT id, full_name FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}
