package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/cache"
	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/config"
)

type fakeClosingSource struct {
	contracts []closing.Contract
	bookings  []closing.Booking
	names     map[uuid.UUID]string
}

func (f *fakeClosingSource) ClinicExists(ctx context.Context, clinicID uuid.UUID) (bool, error) {
	return true, nil
}
func (f *fakeClosingSource) ListActiveContracts(ctx context.Context, clinicID uuid.UUID) ([]closing.Contract, error) {
	return f.contracts, nil
}
func (f *fakeClosingSource) ListRoomBookings(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]closing.Booking, error) {
	return f.bookings, nil
}
func (f *fakeClosingSource) ListConsumptionEvents(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]closing.Consumption, error) {
	return nil, nil
}
func (f *fakeClosingSource) ListSharedExpenses(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]closing.Expense, error) {
	return nil, nil
}
func (f *fakeClosingSource) ResolveDoctorNames(ctx context.Context, doctorIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	return f.names, nil
}
func (f *fakeClosingSource) GrossRevenueForDoctor(ctx context.Context, clinicID, doctorID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func newClosingHandler(src closing.Source) *Handler {
	return &Handler{
		Cfg:   &config.Config{},
		Cache: cache.New(time.Minute),
		Calc:  closing.New(src, closing.PartnershipCredit),
	}
}

func authedRequest(t *testing.T, target string, clinicID uuid.UUID) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	cid := clinicID.String()
	claims := &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleAdmin, ClinicID: &cid}
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

func TestMonthlyClosingJSONFields(t *testing.T) {
	clinicID := uuid.New()
	doctorID := uuid.New()
	src := &fakeClosingSource{
		contracts: []closing.Contract{{DoctorID: doctorID, Kind: closing.KindAluguel, Rate: decimal.RequireFromString("150.00")}},
		bookings: []closing.Booking{{
			DoctorID: doctorID,
			Start:    time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC),
		}},
		names: map[uuid.UUID]string{doctorID: "Dra. Ana"},
	}
	h := newClosingHandler(src)

	w := httptest.NewRecorder()
	h.MonthlyClosing(w, authedRequest(t, "/api/financeiro/fechamento?mes=3&ano=2025", clinicID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, corpo %s", w.Code, w.Body.String())
	}

	var resp struct {
		Mes        int              `json:"mes"`
		Ano        int              `json:"ano"`
		Fechamento []ClosingRowJSON `json:"fechamento"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decodificando resposta: %v", err)
	}
	if resp.Mes != 3 || resp.Ano != 2025 {
		t.Errorf("período = %d/%d; esperava 3/2025", resp.Mes, resp.Ano)
	}
	if len(resp.Fechamento) != 1 {
		t.Fatalf("linhas = %d; esperava 1", len(resp.Fechamento))
	}
	row := resp.Fechamento[0]
	if row.NomeMedico != "Dra. Ana" {
		t.Errorf("nome_medico = %q", row.NomeMedico)
	}
	if row.TotalHorasSala != "2.00" {
		t.Errorf("total_horas_sala = %q; esperava 2.00", row.TotalHorasSala)
	}
	if row.CustoAluguelSala != "300.00" {
		t.Errorf("custo_aluguel_sala = %q; esperava 300.00", row.CustoAluguelSala)
	}
	if row.ValorFinalFatura != "300.00" {
		t.Errorf("valor_final_fatura = %q; esperava 300.00", row.ValorFinalFatura)
	}
}

func TestMonthlyClosingInvalidPeriod(t *testing.T) {
	h := newClosingHandler(&fakeClosingSource{})
	w := httptest.NewRecorder()
	h.MonthlyClosing(w, authedRequest(t, "/api/financeiro/fechamento?mes=13&ano=2025", uuid.New()))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; esperava 400", w.Code)
	}
}

func TestMonthlyClosingRequiresClinic(t *testing.T) {
	h := newClosingHandler(&fakeClosingSource{})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/financeiro/fechamento?mes=3&ano=2025", nil)
	h.MonthlyClosing(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status sem JWT = %d; esperava 403", w.Code)
	}
}

func TestMonthlyClosingUsesCache(t *testing.T) {
	clinicID := uuid.New()
	src := &fakeClosingSource{}
	h := newClosingHandler(src)

	w := httptest.NewRecorder()
	h.MonthlyClosing(w, authedRequest(t, "/api/financeiro/fechamento?mes=3&ano=2025", clinicID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	first := w.Body.String()

	// Segunda chamada sai do cache mesmo com a fonte mudando.
	doctorID := uuid.New()
	src.contracts = []closing.Contract{{DoctorID: doctorID, Kind: closing.KindAluguel, Rate: decimal.NewFromInt(100)}}
	src.bookings = []closing.Booking{{
		DoctorID: doctorID,
		Start:    time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC),
	}}
	src.names = map[uuid.UUID]string{doctorID: "Dr. Caio"}
	w = httptest.NewRecorder()
	h.MonthlyClosing(w, authedRequest(t, "/api/financeiro/fechamento?mes=3&ano=2025", clinicID))
	if w.Body.String() != first {
		t.Fatal("resposta não veio do cache")
	}

	h.Cache.Invalidate("fechamento:" + clinicID.String() + ":")
	w = httptest.NewRecorder()
	h.MonthlyClosing(w, authedRequest(t, "/api/financeiro/fechamento?mes=3&ano=2025", clinicID))
	if w.Body.String() == first {
		t.Fatal("cache não foi invalidado")
	}
}
