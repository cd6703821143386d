package seed

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gestaoclinica/backend/internal/auth"
)

// Run popula o banco vazio com uma clínica de exemplo, um ADMIN, dois médicos
// com contratos (um de cada tipo), salas e produtos. Idempotente: se já houver
// clínicas, não faz nada.
func Run(ctx context.Context, pool *pgxpool.Pool) error {
	var n int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM clinics").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		log.Printf("seed: clínicas existem, nada a fazer")
		return nil
	}

	clinicID := uuid.New()
	if _, err := pool.Exec(ctx, `INSERT INTO clinics (id, name) VALUES ($1, 'Clínica Exemplo')`, clinicID); err != nil {
		return err
	}

	adminHash, err := auth.HashPassword("Admin123!")
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO profiles (clinic_id, email, password_hash, full_name, role)
		VALUES ($1, 'admin@clinica.local', $2, 'Administração', 'ADMIN')
	`, clinicID, adminHash); err != nil {
		return err
	}

	doctorHash, err := auth.HashPassword("ChangeMe123!")
	if err != nil {
		return err
	}
	d1, d2 := uuid.New(), uuid.New()
	if _, err := pool.Exec(ctx, `
		INSERT INTO profiles (id, clinic_id, email, password_hash, full_name, role)
		VALUES ($1, $2, 'ana@clinica.local', $3, 'Dra. Ana Souza', 'MEDICO'),
		       ($4, $2, 'bruno@clinica.local', $3, 'Dr. Bruno Lima', 'MEDICO')
	`, d1, clinicID, doctorHash, d2); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO doctor_contracts (clinic_id, doctor_id, kind, rate)
		VALUES ($1, $2, 'ALUGUEL', $3), ($1, $4, 'PARCERIA', $5)
	`, clinicID, d1, decimal.RequireFromString("150.00"), d2, decimal.RequireFromString("30.00")); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO rooms (clinic_id, name)
		VALUES ($1, 'Sala 1'), ($1, 'Sala 2')
	`, clinicID); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO products (clinic_id, name, distributor_cost, stock)
		VALUES ($1, 'Toxina botulínica 100U', $2, 20),
		       ($1, 'Ácido hialurônico 1ml', $3, 30)
	`, clinicID, decimal.RequireFromString("380.00"), decimal.RequireFromString("220.00")); err != nil {
		return err
	}

	log.Printf("seed: clínica de exemplo criada (%s)", clinicID)
	return nil
}
