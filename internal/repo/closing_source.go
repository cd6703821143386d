package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gestaoclinica/backend/internal/closing"
)

// ClosingSource implementa closing.Source sobre o banco. Every query is
// clinic-scoped so one tenant never sees another's numbers.
type ClosingSource struct {
	Pool *pgxpool.Pool
}

var _ closing.Source = (*ClosingSource)(nil)

func (s *ClosingSource) ClinicExists(ctx context.Context, clinicID uuid.UUID) (bool, error) {
	return ClinicExists(ctx, s.Pool, clinicID)
}

func (s *ClosingSource) ListActiveContracts(ctx context.Context, clinicID uuid.UUID) ([]closing.Contract, error) {
	contracts, err := ListActiveContracts(ctx, s.Pool, clinicID)
	if err != nil {
		return nil, err
	}
	out := make([]closing.Contract, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, closing.Contract{
			DoctorID: c.DoctorID,
			Kind:     closing.ContractKind(c.Kind),
			Rate:     c.Rate,
		})
	}
	return out, nil
}

func (s *ClosingSource) ListRoomBookings(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]closing.Booking, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT doctor_id, start_at, end_at
		FROM room_bookings
		WHERE clinic_id = $1 AND start_at >= $2 AND start_at < $3
	`, clinicID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []closing.Booking
	for rows.Next() {
		var b closing.Booking
		if err := rows.Scan(&b.DoctorID, &b.Start, &b.End); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (s *ClosingSource) ListConsumptionEvents(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]closing.Consumption, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT doctor_id, quantity, frozen_unit_cost
		FROM consumption_events
		WHERE clinic_id = $1 AND created_at >= $2 AND created_at < $3
	`, clinicID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []closing.Consumption
	for rows.Next() {
		var c closing.Consumption
		if err := rows.Scan(&c.DoctorID, &c.Quantity, &c.FrozenUnitCost); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *ClosingSource) ListSharedExpenses(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]closing.Expense, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT amount
		FROM clinic_expenses
		WHERE clinic_id = $1 AND incurred_at >= $2 AND incurred_at < $3
	`, clinicID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []closing.Expense
	for rows.Next() {
		var e closing.Expense
		if err := rows.Scan(&e.Amount); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (s *ClosingSource) ResolveDoctorNames(ctx context.Context, doctorIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	return ResolveDoctorNames(ctx, s.Pool, doctorIDs)
}

func (s *ClosingSource) GrossRevenueForDoctor(ctx context.Context, clinicID, doctorID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	return SumRevenueForDoctor(ctx, s.Pool, clinicID, doctorID, start, end)
}
