package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/pdf"
	"github.com/gestaoclinica/backend/internal/repo"
)

type CreateExpenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	IncurredAt  string `json:"incurred_at"` // YYYY-MM-DD
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		http.Error(w, `{"error":"description obrigatória"}`, http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		http.Error(w, `{"error":"amount inválido"}`, http.StatusBadRequest)
		return
	}
	incurredAt, err := time.ParseInLocation("2006-01-02", req.IncurredAt, time.UTC)
	if err != nil {
		http.Error(w, `{"error":"incurred_at inválido"}`, http.StatusBadRequest)
		return
	}
	id, err := repo.CreateExpense(r.Context(), h.Pool, cid, req.Description, amount, incurredAt)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	month, year, err := ParseMonthYear(r)
	if err != nil {
		http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		return
	}
	start, end, err := closing.Period(month, year)
	if err != nil {
		http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		return
	}
	list, err := repo.ExpensesByRange(r.Context(), h.Pool, cid, start, end)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type expenseResp struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		IncurredAt  string `json:"incurred_at"`
	}
	out := make([]expenseResp, len(list))
	total := decimal.Zero
	for i, e := range list {
		out[i] = expenseResp{
			ID:          e.ID.String(),
			Description: e.Description,
			Amount:      e.Amount.StringFixed(2),
			IncurredAt:  e.IncurredAt.UTC().Format("2006-01-02"),
		}
		total = total.Add(e.Amount)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": out,
		"total":    total.StringFixed(2),
	})
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	expenseID, err := uuid.Parse(mux.Vars(r)["expenseId"])
	if err != nil {
		http.Error(w, `{"error":"invalid expense_id"}`, http.StatusBadRequest)
		return
	}
	found, err := repo.DeleteExpense(r.Context(), h.Pool, cid, expenseID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

type CreateRevenueRequest struct {
	DoctorID    string `json:"doctor_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	ReceivedAt  string `json:"received_at"` // YYYY-MM-DD
}

// CreateRevenue lança receita bruta de um médico no livro de receitas. É a
// base do repasse de PARCERIA no fechamento.
func (h *Handler) CreateRevenue(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreateRevenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		http.Error(w, `{"error":"invalid doctor_id"}`, http.StatusBadRequest)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		http.Error(w, `{"error":"description obrigatória"}`, http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		http.Error(w, `{"error":"amount inválido"}`, http.StatusBadRequest)
		return
	}
	receivedAt, err := time.ParseInLocation("2006-01-02", req.ReceivedAt, time.UTC)
	if err != nil {
		http.Error(w, `{"error":"received_at inválido"}`, http.StatusBadRequest)
		return
	}
	if _, err := repo.ProfileByIDAndClinic(r.Context(), h.Pool, doctorID, cid); err != nil {
		http.Error(w, `{"error":"médico não encontrado"}`, http.StatusNotFound)
		return
	}
	id, err := repo.CreateRevenueEntry(r.Context(), h.Pool, cid, doctorID, req.Description, amount, receivedAt)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) ListRevenue(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		http.Error(w, `{"error":"invalid doctor_id"}`, http.StatusBadRequest)
		return
	}
	if !auth.IsAdmin(r.Context()) && auth.UserIDFrom(r.Context()) != doctorID.String() {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	month, year, err := ParseMonthYear(r)
	if err != nil {
		http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		return
	}
	start, end, err := closing.Period(month, year)
	if err != nil {
		http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		return
	}
	list, err := repo.RevenueByDoctor(r.Context(), h.Pool, cid, doctorID, start, end)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type revenueResp struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		ReceivedAt  string `json:"received_at"`
	}
	out := make([]revenueResp, len(list))
	total := decimal.Zero
	for i, e := range list {
		out[i] = revenueResp{
			ID:          e.ID.String(),
			Description: e.Description,
			Amount:      e.Amount.StringFixed(2),
			ReceivedAt:  e.ReceivedAt.UTC().Format("2006-01-02"),
		}
		total = total.Add(e.Amount)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": out,
		"total":   total.StringFixed(2),
	})
}

// ClosingRowJSON usa os nomes de campo consumidos pelo frontend.
type ClosingRowJSON struct {
	MedicoID             string `json:"medico_id"`
	NomeMedico           string `json:"nome_medico"`
	TotalHorasSala       string `json:"total_horas_sala"`
	CustoAluguelSala     string `json:"custo_aluguel_sala"`
	ReceitaParceria      string `json:"receita_parceria"`
	CustoConsumoProdutos string `json:"custo_consumo_produtos"`
	CustoCondominio      string `json:"custo_condominio"`
	ValorFinalFatura     string `json:"valor_final_fatura"`
}

func closingRowsJSON(rows []closing.Row) []ClosingRowJSON {
	out := make([]ClosingRowJSON, len(rows))
	for i, row := range rows {
		out[i] = ClosingRowJSON{
			MedicoID:             row.DoctorID.String(),
			NomeMedico:           row.DoctorName,
			TotalHorasSala:       row.BookedHours.StringFixed(2),
			CustoAluguelSala:     row.RoomCost.StringFixed(2),
			ReceitaParceria:      row.PartnershipRevenue.StringFixed(2),
			CustoConsumoProdutos: row.ProductCost.StringFixed(2),
			CustoCondominio:      row.SharedExpenseShare.StringFixed(2),
			ValorFinalFatura:     row.FinalInvoiceAmount.StringFixed(2),
		}
	}
	return out
}

func (h *Handler) computeClosing(r *http.Request, w http.ResponseWriter) (uuid.UUID, int, int, []closing.Row, bool) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return uuid.Nil, 0, 0, nil, false
	}
	month, year, err := ParseMonthYear(r)
	if err != nil {
		http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		return uuid.Nil, 0, 0, nil, false
	}
	rows, err := h.Calc.Compute(r.Context(), cid, month, year)
	if err != nil {
		var unavailable *closing.DataUnavailableError
		switch {
		case errors.Is(err, closing.ErrInvalidPeriod):
			http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		case errors.Is(err, closing.ErrTenantNotFound):
			http.Error(w, `{"error":"clínica não encontrada"}`, http.StatusNotFound)
		case errors.As(err, &unavailable):
			log.Printf("[fechamento] dados indisponíveis (%s): %v", unavailable.Op, unavailable.Err)
			http.Error(w, `{"error":"dados indisponíveis, tente novamente"}`, http.StatusServiceUnavailable)
		default:
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		}
		return uuid.Nil, 0, 0, nil, false
	}
	return cid, month, year, rows, true
}

// MonthlyClosing devolve o fechamento do mês em JSON (?mes=&ano=).
func (h *Handler) MonthlyClosing(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	month, year, err := ParseMonthYear(r)
	if err != nil {
		http.Error(w, `{"error":"período inválido"}`, http.StatusBadRequest)
		return
	}
	cacheKey := fmt.Sprintf("fechamento:%s:%d-%d:json", cid, month, year)
	if b := h.Cache.Get(cacheKey); b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
		return
	}
	_, _, _, rows, ok := h.computeClosing(r, w)
	if !ok {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"mes":          month,
		"ano":          year,
		"fechamento":   closingRowsJSON(rows),
		"total_linhas": len(rows),
	})
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Set(cacheKey, body)
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// MonthlyClosingPDF devolve o fechamento como PDF para download.
func (h *Handler) MonthlyClosingPDF(w http.ResponseWriter, r *http.Request) {
	cid, month, year, rows, ok := h.computeClosing(r, w)
	if !ok {
		return
	}
	clinic, err := repo.ClinicByID(r.Context(), h.Pool, cid)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	report := pdf.ClosingReport{
		ClinicName:   clinic.Name,
		Month:        month,
		Year:         year,
		Rows:         rows,
		GeneratedAt:  time.Now().UTC().Format("02/01/2006 15:04 UTC"),
		AppPublicURL: h.Cfg.AppPublicURL,
	}
	b, err := pdf.BuildClosingPDF(report)
	if err != nil {
		log.Printf("[fechamento] erro gerando PDF: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fechamento-%d-%d.pdf"`, month, year))
	w.Write(b)
}
