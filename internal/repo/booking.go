package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Booking struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	DoctorID  uuid.UUID
	PatientID *uuid.UUID
	StartAt   time.Time
	EndAt     time.Time
	Notes     *string
}

// AgendaEntry carrega os nomes já resolvidos para a listagem da agenda.
type AgendaEntry struct {
	Booking
	RoomName   string
	DoctorName string
}

func CreateBooking(ctx context.Context, pool *pgxpool.Pool, clinicID, roomID, doctorID uuid.UUID, patientID *uuid.UUID, startAt, endAt time.Time, notes *string) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO room_bookings (clinic_id, room_id, doctor_id, patient_id, start_at, end_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
	`, clinicID, roomID, doctorID, patientID, startAt, endAt, notes).Scan(&id)
	return id, err
}

// HasBookingOverlap reports whether the room already has a booking
// intersecting [startAt, endAt).
func HasBookingOverlap(ctx context.Context, pool *pgxpool.Pool, clinicID, roomID uuid.UUID, startAt, endAt time.Time) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM room_bookings
			WHERE clinic_id = $1 AND room_id = $2
			  AND start_at < $4 AND end_at > $3
		)
	`, clinicID, roomID, startAt, endAt).Scan(&exists)
	return exists, err
}

func AgendaByRange(ctx context.Context, pool *pgxpool.Pool, clinicID uuid.UUID, from, to time.Time) ([]AgendaEntry, error) {
	rows, err := pool.Query(ctx, `
		SELECT b.id, b.room_id, b.doctor_id, b.patient_id, b.start_at, b.end_at, b.notes,
		       r.name, p.full_name
		FROM room_bookings b
		JOIN rooms r ON r.id = b.room_id
		JOIN profiles p ON p.id = b.doctor_id
		WHERE b.clinic_id = $1 AND b.start_at >= $2 AND b.start_at < $3
		ORDER BY b.start_at
	`, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []AgendaEntry
	for rows.Next() {
		var e AgendaEntry
		if err := rows.Scan(&e.ID, &e.RoomID, &e.DoctorID, &e.PatientID, &e.StartAt, &e.EndAt, &e.Notes, &e.RoomName, &e.DoctorName); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func DeleteBooking(ctx context.Context, pool *pgxpool.Pool, clinicID, bookingID uuid.UUID) (bool, error) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM room_bookings WHERE id = $1 AND clinic_id = $2
	`, bookingID, clinicID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
