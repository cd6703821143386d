package closing

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeSource is an in-memory Source. errOn, when set, fails the matching read.
type fakeSource struct {
	clinic    uuid.UUID
	contracts []Contract
	bookings  []Booking
	events    []Consumption
	expenses  []Expense
	names     map[uuid.UUID]string
	revenue   map[uuid.UUID]decimal.Decimal
	errOn     string
}

var errBoom = errors.New("boom")

func (f *fakeSource) ClinicExists(_ context.Context, clinicID uuid.UUID) (bool, error) {
	if f.errOn == "clinic" {
		return false, errBoom
	}
	return clinicID == f.clinic, nil
}

func (f *fakeSource) ListActiveContracts(_ context.Context, _ uuid.UUID) ([]Contract, error) {
	if f.errOn == "contracts" {
		return nil, errBoom
	}
	return f.contracts, nil
}

func (f *fakeSource) ListRoomBookings(_ context.Context, _ uuid.UUID, start, end time.Time) ([]Booking, error) {
	if f.errOn == "bookings" {
		return nil, errBoom
	}
	return f.bookings, nil
}

func (f *fakeSource) ListConsumptionEvents(_ context.Context, _ uuid.UUID, start, end time.Time) ([]Consumption, error) {
	if f.errOn == "consumption" {
		return nil, errBoom
	}
	return f.events, nil
}

func (f *fakeSource) ListSharedExpenses(_ context.Context, _ uuid.UUID, start, end time.Time) ([]Expense, error) {
	if f.errOn == "expenses" {
		return nil, errBoom
	}
	return f.expenses, nil
}

func (f *fakeSource) ResolveDoctorNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.errOn == "names" {
		return nil, errBoom
	}
	return f.names, nil
}

func (f *fakeSource) GrossRevenueForDoctor(_ context.Context, _, doctorID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	if f.errOn == "revenue" {
		return decimal.Zero, errBoom
	}
	return f.revenue[doctorID], nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustEqual(t *testing.T, got, want decimal.Decimal, field string) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", field, got, want)
	}
}

func TestPeriodHalfOpen(t *testing.T) {
	start, end, err := Period(12, 2024)
	if err != nil {
		t.Fatalf("Period: %v", err)
	}
	if !start.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}
}

func TestPeriodInvalid(t *testing.T) {
	for _, c := range []struct{ month, year int }{{0, 2024}, {13, 2024}, {-1, 2024}, {3, 0}, {3, -5}} {
		if _, _, err := Period(c.month, c.year); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("Period(%d, %d): want ErrInvalidPeriod, got %v", c.month, c.year, err)
		}
	}
}

func TestComputeInvalidPeriod(t *testing.T) {
	calc := New(&fakeSource{}, PartnershipCredit)
	if _, err := calc.Compute(context.Background(), uuid.New(), 13, 2024); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("want ErrInvalidPeriod, got %v", err)
	}
}

func TestComputeUnknownClinic(t *testing.T) {
	calc := New(&fakeSource{clinic: uuid.New()}, PartnershipCredit)
	if _, err := calc.Compute(context.Background(), uuid.New(), 3, 2024); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("want ErrTenantNotFound, got %v", err)
	}
}

func TestComputeEmptyPeriod(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: doctor, Kind: KindAluguel, Rate: dec("150")}},
		names:     map[uuid.UUID]string{doctor: "Dra. Ana"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("want empty result for period without activity, got %d rows", len(rows))
	}
}

// Médico sem atividade não entra no rateio nem gera linha zerada, mesmo com
// despesas lançadas no período.
func TestComputeNoBilledDoctorsDespiteExpenses(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: doctor, Kind: KindAluguel, Rate: dec("150")}},
		expenses:  []Expense{{Amount: dec("500")}},
		names:     map[uuid.UUID]string{doctor: "Dra. Ana"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("want no rows, got %d", len(rows))
	}
}

func TestComputeHourlyRentalScenario(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: doctor, Kind: KindAluguel, Rate: dec("150.00")}},
		bookings: []Booking{{
			DoctorID: doctor,
			Start:    time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		}},
		names: map[uuid.UUID]string{doctor: "Dr. Bruno"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	r := rows[0]
	mustEqual(t, r.BookedHours, dec("2"), "BookedHours")
	mustEqual(t, r.RoomCost, dec("300.00"), "RoomCost")
	mustEqual(t, r.ProductCost, dec("0"), "ProductCost")
	mustEqual(t, r.SharedExpenseShare, dec("0"), "SharedExpenseShare")
	mustEqual(t, r.PartnershipRevenue, dec("0"), "PartnershipRevenue")
	mustEqual(t, r.FinalInvoiceAmount, dec("300.00"), "FinalInvoiceAmount")
	if r.DoctorName != "Dr. Bruno" {
		t.Fatalf("DoctorName = %q", r.DoctorName)
	}
}

// Reserva começando exatamente no fim do período contribui zero horas.
func TestComputeBoundaryStartAtPeriodEnd(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: doctor, Kind: KindAluguel, Rate: dec("100")}},
		bookings: []Booking{{
			DoctorID: doctor,
			Start:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC),
		}},
		names: map[uuid.UUID]string{doctor: "Dra. Ana"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("booking at period end must not bill: got %d rows", len(rows))
	}
}

// Reserva atravessando o início do período não é rateada: conta inteira no mês
// em que começa.
func TestComputeBookingCrossingStartNotProrated(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: doctor, Kind: KindAluguel, Rate: dec("100")}},
		bookings: []Booking{{
			DoctorID: doctor,
			Start:    time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		}},
		names: map[uuid.UUID]string{doctor: "Dra. Ana"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("booking starting before the period must not bill into it: got %d rows", len(rows))
	}
}

func TestComputeProductCost(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: doctor, Kind: KindAluguel, Rate: dec("100")}},
		events: []Consumption{
			{DoctorID: doctor, Quantity: 3, FrozenUnitCost: dec("10.50")},
			{DoctorID: doctor, Quantity: 1, FrozenUnitCost: dec("2.10")},
		},
		names: map[uuid.UUID]string{doctor: "Dra. Ana"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	mustEqual(t, rows[0].ProductCost, dec("33.60"), "ProductCost")
	mustEqual(t, rows[0].FinalInvoiceAmount, dec("33.60"), "FinalInvoiceAmount")
}

func TestComputeSharedExpenseEqualSplit(t *testing.T) {
	clinic := uuid.New()
	d1, d2 := uuid.New(), uuid.New()
	src := &fakeSource{
		clinic: clinic,
		contracts: []Contract{
			{DoctorID: d1, Kind: KindAluguel, Rate: dec("100")},
			{DoctorID: d2, Kind: KindAluguel, Rate: dec("100")},
		},
		bookings: []Booking{
			{DoctorID: d1, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
			{DoctorID: d2, Start: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		},
		expenses: []Expense{{Amount: dec("200.00")}},
		names:    map[uuid.UUID]string{d1: "Ana", d2: "Bruno"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		mustEqual(t, r.SharedExpenseShare, dec("100.00"), "SharedExpenseShare")
	}
}

// A soma das cotas volta ao total das despesas dentro da tolerância de
// arredondamento, mesmo com divisão não exata.
func TestComputeSharedExpenseSumBack(t *testing.T) {
	clinic := uuid.New()
	doctors := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	src := &fakeSource{
		clinic: clinic,
		names:  map[uuid.UUID]string{},
		expenses: []Expense{
			{Amount: dec("100.00")},
			{Amount: dec("0.01")},
		},
	}
	for i, d := range doctors {
		src.contracts = append(src.contracts, Contract{DoctorID: d, Kind: KindAluguel, Rate: dec("50")})
		src.bookings = append(src.bookings, Booking{
			DoctorID: d,
			Start:    time.Date(2024, 3, 4+i, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 3, 4+i, 10, 0, 0, 0, time.UTC),
		})
		src.names[d] = "Dr " + d.String()[:8]
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.SharedExpenseShare)
	}
	diff := sum.Sub(dec("100.01")).Abs()
	if diff.GreaterThan(dec("0.01")) {
		t.Fatalf("shares sum %s, want 100.01 within 0.01", sum)
	}
}

func TestComputePartnershipModes(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	newSrc := func() *fakeSource {
		return &fakeSource{
			clinic:    clinic,
			contracts: []Contract{{DoctorID: doctor, Kind: KindParceria, Rate: dec("20")}},
			names:     map[uuid.UUID]string{doctor: "Dra. Carla"},
			revenue:   map[uuid.UUID]decimal.Decimal{doctor: dec("1000.00")},
		}
	}

	rows, err := New(newSrc(), PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute credit: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	mustEqual(t, rows[0].PartnershipRevenue, dec("200.00"), "PartnershipRevenue")
	mustEqual(t, rows[0].RoomCost, dec("0"), "RoomCost")
	mustEqual(t, rows[0].FinalInvoiceAmount, dec("-200.00"), "FinalInvoiceAmount (credit)")

	rows, err = New(newSrc(), PartnershipCharge).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute charge: %v", err)
	}
	mustEqual(t, rows[0].FinalInvoiceAmount, dec("200.00"), "FinalInvoiceAmount (charge)")
}

func TestComputeIgnoresDoctorsWithoutContract(t *testing.T) {
	clinic := uuid.New()
	contracted, stranger := uuid.New(), uuid.New()
	src := &fakeSource{
		clinic:    clinic,
		contracts: []Contract{{DoctorID: contracted, Kind: KindAluguel, Rate: dec("80")}},
		bookings: []Booking{
			{DoctorID: contracted, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
			{DoctorID: stranger, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)},
		},
		names: map[uuid.UUID]string{contracted: "Ana", stranger: "Intruso"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 1 || rows[0].DoctorID != contracted {
		t.Fatalf("only the contracted doctor should be billed: %+v", rows)
	}
}

func TestComputeOrderingCaseInsensitive(t *testing.T) {
	clinic := uuid.New()
	d1, d2, d3 := uuid.New(), uuid.New(), uuid.New()
	src := &fakeSource{
		clinic: clinic,
		contracts: []Contract{
			{DoctorID: d1, Kind: KindAluguel, Rate: dec("10")},
			{DoctorID: d2, Kind: KindAluguel, Rate: dec("10")},
			{DoctorID: d3, Kind: KindAluguel, Rate: dec("10")},
		},
		bookings: []Booking{
			{DoctorID: d1, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
			{DoctorID: d2, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
			{DoctorID: d3, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
		},
		names: map[uuid.UUID]string{d1: "bruno", d2: "Álvaro", d3: "Ana"},
	}
	rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.DoctorName)
	}
	want := []string{"Álvaro", "Ana", "bruno"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestComputeIdempotent(t *testing.T) {
	clinic := uuid.New()
	d1, d2 := uuid.New(), uuid.New()
	src := &fakeSource{
		clinic: clinic,
		contracts: []Contract{
			{DoctorID: d1, Kind: KindAluguel, Rate: dec("150.00")},
			{DoctorID: d2, Kind: KindParceria, Rate: dec("30")},
		},
		bookings: []Booking{
			{DoctorID: d1, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 11, 30, 0, 0, time.UTC)},
		},
		events:   []Consumption{{DoctorID: d2, Quantity: 2, FrozenUnitCost: dec("5.25")}},
		expenses: []Expense{{Amount: dec("90.00")}},
		names:    map[uuid.UUID]string{d1: "Ana", d2: "Bruno"},
		revenue:  map[uuid.UUID]decimal.Decimal{d2: dec("700.00")},
	}
	calc := New(src, PartnershipCredit)
	first, err := calc.Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := calc.Compute(context.Background(), clinic, 3, 2024)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between identical invocations:\n%v\n%v", first, second)
	}
}

func TestComputeDataUnavailable(t *testing.T) {
	clinic := uuid.New()
	doctor := uuid.New()
	for _, op := range []string{"clinic", "contracts", "bookings", "consumption", "expenses", "revenue", "names"} {
		src := &fakeSource{
			clinic: clinic,
			contracts: []Contract{
				{DoctorID: doctor, Kind: KindParceria, Rate: dec("10")},
			},
			bookings: []Booking{
				{DoctorID: doctor, Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
			},
			names:   map[uuid.UUID]string{doctor: "Ana"},
			revenue: map[uuid.UUID]decimal.Decimal{doctor: dec("100")},
			errOn:   op,
		}
		rows, err := New(src, PartnershipCredit).Compute(context.Background(), clinic, 3, 2024)
		var du *DataUnavailableError
		if !errors.As(err, &du) {
			t.Fatalf("errOn=%s: want DataUnavailableError, got %v", op, err)
		}
		if !errors.Is(err, errBoom) {
			t.Fatalf("errOn=%s: cause not wrapped", op)
		}
		if rows != nil {
			t.Fatalf("errOn=%s: partial result must not be returned", op)
		}
	}
}
