package closing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Source supplies the read snapshot for one computation. Implementations must
// scope every query to the given clinic (tenant isolation happens here, not in
// the calculator).
type Source interface {
	ClinicExists(ctx context.Context, clinicID uuid.UUID) (bool, error)
	ListActiveContracts(ctx context.Context, clinicID uuid.UUID) ([]Contract, error)
	ListRoomBookings(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]Booking, error)
	ListConsumptionEvents(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]Consumption, error)
	ListSharedExpenses(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]Expense, error)
	ResolveDoctorNames(ctx context.Context, doctorIDs []uuid.UUID) (map[uuid.UUID]string, error)
	// GrossRevenueForDoctor é a receita bruta gerada pelo médico no período,
	// vinda do livro de receitas (externo ao cálculo do fechamento).
	GrossRevenueForDoctor(ctx context.Context, clinicID, doctorID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
}

// Calculator computes close-out reports. Safe for concurrent use: each Compute
// call operates only on its own snapshot.
type Calculator struct {
	src  Source
	mode PartnershipMode
}

func New(src Source, mode PartnershipMode) *Calculator {
	return &Calculator{src: src, mode: mode}
}

var oneHundred = decimal.NewFromInt(100)

// Compute generates one Row per billed doctor for the clinic and period,
// ordered by doctor name (case-insensitive, pt-BR collation). Doctors with no
// activity in the period are omitted, not zeroed.
func (c *Calculator) Compute(ctx context.Context, clinicID uuid.UUID, month, year int) ([]Row, error) {
	start, end, err := Period(month, year)
	if err != nil {
		return nil, err
	}

	ok, err := c.src.ClinicExists(ctx, clinicID)
	if err != nil {
		return nil, &DataUnavailableError{Op: "clinic", Err: err}
	}
	if !ok {
		return nil, ErrTenantNotFound
	}

	contracts, err := c.src.ListActiveContracts(ctx, clinicID)
	if err != nil {
		return nil, &DataUnavailableError{Op: "contracts", Err: err}
	}
	if len(contracts) == 0 {
		return []Row{}, nil
	}

	// Um médico sem contrato ativo não entra no fechamento, mesmo com
	// reservas ou consumo no período.
	rows := make(map[uuid.UUID]*Row, len(contracts))
	terms := make(map[uuid.UUID]Contract, len(contracts))
	for _, ct := range contracts {
		terms[ct.DoctorID] = ct
		rows[ct.DoctorID] = &Row{
			DoctorID:           ct.DoctorID,
			BookedHours:        decimal.Zero,
			RoomCost:           decimal.Zero,
			PartnershipRevenue: decimal.Zero,
			ProductCost:        decimal.Zero,
			SharedExpenseShare: decimal.Zero,
			FinalInvoiceAmount: decimal.Zero,
		}
	}

	bookings, err := c.src.ListRoomBookings(ctx, clinicID, start, end)
	if err != nil {
		return nil, &DataUnavailableError{Op: "bookings", Err: err}
	}
	for _, b := range bookings {
		row, ok := rows[b.DoctorID]
		if !ok {
			continue
		}
		// Guarda do intervalo semiaberto: start dentro de [start, end).
		// Reserva começando exatamente no fim do período não conta; reserva
		// atravessando o início conta inteira no mês anterior (sem rateio).
		if b.Start.Before(start) || !b.Start.Before(end) {
			continue
		}
		if !b.End.After(b.Start) {
			continue
		}
		row.BookedHours = row.BookedHours.Add(hoursBetween(b.Start, b.End))
	}

	events, err := c.src.ListConsumptionEvents(ctx, clinicID, start, end)
	if err != nil {
		return nil, &DataUnavailableError{Op: "consumption", Err: err}
	}
	for _, ev := range events {
		row, ok := rows[ev.DoctorID]
		if !ok || ev.Quantity <= 0 {
			continue
		}
		row.ProductCost = row.ProductCost.Add(ev.FrozenUnitCost.Mul(decimal.NewFromInt(ev.Quantity)))
	}

	for id, ct := range terms {
		row := rows[id]
		switch ct.Kind {
		case KindAluguel:
			row.RoomCost = ct.Rate.Mul(row.BookedHours)
		case KindParceria:
			gross, err := c.src.GrossRevenueForDoctor(ctx, clinicID, id, start, end)
			if err != nil {
				return nil, &DataUnavailableError{Op: "gross revenue", Err: err}
			}
			row.PartnershipRevenue = ct.Rate.Div(oneHundred).Mul(gross)
		}
	}

	// Médico faturado no período: tem horas de sala, consumo de produtos ou
	// receita de parceria. Só esses dividem as despesas de condomínio.
	var billed []*Row
	for _, ct := range contracts {
		row := rows[ct.DoctorID]
		if row.BookedHours.IsPositive() || row.ProductCost.IsPositive() || !row.PartnershipRevenue.IsZero() {
			billed = append(billed, row)
		}
	}
	if len(billed) == 0 {
		return []Row{}, nil
	}

	expenses, err := c.src.ListSharedExpenses(ctx, clinicID, start, end)
	if err != nil {
		return nil, &DataUnavailableError{Op: "shared expenses", Err: err}
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}
	if !totalExpenses.IsZero() {
		// Divisão igual entre os médicos faturados, não proporcional ao uso.
		share := totalExpenses.Div(decimal.NewFromInt(int64(len(billed))))
		for _, row := range billed {
			row.SharedExpenseShare = share
		}
	}

	for _, row := range billed {
		row.FinalInvoiceAmount = row.RoomCost.Add(row.ProductCost).Add(row.SharedExpenseShare)
		if c.mode == PartnershipCharge {
			row.FinalInvoiceAmount = row.FinalInvoiceAmount.Add(row.PartnershipRevenue)
		} else {
			row.FinalInvoiceAmount = row.FinalInvoiceAmount.Sub(row.PartnershipRevenue)
		}
	}

	ids := make([]uuid.UUID, len(billed))
	for i, row := range billed {
		ids[i] = row.DoctorID
	}
	names, err := c.src.ResolveDoctorNames(ctx, ids)
	if err != nil {
		return nil, &DataUnavailableError{Op: "doctor names", Err: err}
	}
	for _, row := range billed {
		row.DoctorName = names[row.DoctorID]
	}

	// Collator por invocação: collate.Collator não é seguro para uso concorrente.
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.Slice(billed, func(i, j int) bool {
		if cmp := col.CompareString(billed[i].DoctorName, billed[j].DoctorName); cmp != 0 {
			return cmp < 0
		}
		return billed[i].DoctorID.String() < billed[j].DoctorID.String()
	})

	out := make([]Row, len(billed))
	for i, row := range billed {
		out[i] = *row
	}
	return out, nil
}

func hoursBetween(start, end time.Time) decimal.Decimal {
	seconds := int64(end.Sub(start) / time.Second)
	return decimal.New(seconds, 0).Div(decimal.NewFromInt(3600))
}
