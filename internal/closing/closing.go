// Package closing computes the monthly financial close-out (fechamento mensal)
// of a clinic: for each billed doctor, room rental cost or partnership revenue
// share, product consumption cost, an equal share of the clinic's shared
// expenses, and the final invoice amount. The computation is a pure
// read-and-reduce over a Source snapshot; it performs no writes and either
// returns the complete report or an error, never a partial result.
package closing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractKind são os tipos de contrato do médico com a clínica.
type ContractKind string

const (
	// KindAluguel: a clínica cobra do médico por hora de uso de sala.
	KindAluguel ContractKind = "ALUGUEL"
	// KindParceria: a clínica fica com um percentual da receita gerada pelo médico.
	KindParceria ContractKind = "PARCERIA"
)

// PartnershipMode defines the sign convention for partnership revenue on the
// final invoice. The source behavior is ambiguous, so both conventions are
// supported and selected by configuration.
type PartnershipMode string

const (
	// PartnershipCredit: a receita de parceria abate da fatura do médico.
	PartnershipCredit PartnershipMode = "credit"
	// PartnershipCharge: a receita de parceria soma na fatura do médico.
	PartnershipCharge PartnershipMode = "charge"
)

// ParsePartnershipMode returns the mode for a config string, defaulting to credit.
func ParsePartnershipMode(s string) PartnershipMode {
	if s == string(PartnershipCharge) {
		return PartnershipCharge
	}
	return PartnershipCredit
}

// Contract is a doctor's active contract term. Rate is currency/hour for
// ALUGUEL and a percentage (0-100) of gross revenue for PARCERIA.
type Contract struct {
	DoctorID uuid.UUID
	Kind     ContractKind
	Rate     decimal.Decimal
}

// Booking is one room reservation. Attribution to a billing period is by
// Start only (half-open period, no proration of bookings crossing the edge).
type Booking struct {
	DoctorID uuid.UUID
	Start    time.Time
	End      time.Time
}

// Consumption is one product consumption event. FrozenUnitCost is the unit
// cost recorded at consumption time; later product repricing never changes it.
type Consumption struct {
	DoctorID       uuid.UUID
	Quantity       int64
	FrozenUnitCost decimal.Decimal
}

// Expense is a clinic-wide expense (condomínio) inside the billing period.
type Expense struct {
	Amount decimal.Decimal
}

// Row is the computed close-out for one doctor in one period. Values carry
// full decimal precision; rounding to 2 digits happens at presentation only.
type Row struct {
	DoctorID           uuid.UUID
	DoctorName         string
	BookedHours        decimal.Decimal
	RoomCost           decimal.Decimal
	PartnershipRevenue decimal.Decimal
	ProductCost        decimal.Decimal
	SharedExpenseShare decimal.Decimal
	FinalInvoiceAmount decimal.Decimal
}

var (
	// ErrInvalidPeriod: month outside 1-12 or non-positive year.
	ErrInvalidPeriod = errors.New("invalid billing period")
	// ErrTenantNotFound: clinic id resolves to no tenant.
	ErrTenantNotFound = errors.New("clinic not found")
)

// DataUnavailableError wraps a failed collaborator read. The whole computation
// is abandoned; the caller may retry, the operation is idempotent.
type DataUnavailableError struct {
	Op  string
	Err error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("closing data unavailable (%s): %v", e.Op, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// Period returns the half-open billing interval [start, end) for (month, year)
// in UTC: first instant of the month up to the first instant of the next one.
func Period(month, year int) (start, end time.Time, err error) {
	if month < 1 || month > 12 || year <= 0 {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}
