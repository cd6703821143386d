package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/repo"
)

type CreateProductRequest struct {
	Name            string `json:"name"`
	DistributorCost string `json:"distributor_cost"`
	Stock           int64  `json:"stock"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, `{"error":"name obrigatório"}`, http.StatusBadRequest)
		return
	}
	cost, err := decimal.NewFromString(strings.TrimSpace(req.DistributorCost))
	if err != nil || cost.IsNegative() {
		http.Error(w, `{"error":"distributor_cost inválido"}`, http.StatusBadRequest)
		return
	}
	if req.Stock < 0 {
		http.Error(w, `{"error":"stock inválido"}`, http.StatusBadRequest)
		return
	}
	id, err := repo.CreateProduct(r.Context(), h.Pool, cid, req.Name, cost, req.Stock)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	list, err := repo.ProductsByClinic(r.Context(), h.Pool, cid)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type productResp struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		DistributorCost string `json:"distributor_cost"`
		Stock           int64  `json:"stock"`
	}
	out := make([]productResp, len(list))
	for i, p := range list {
		out[i] = productResp{
			ID:              p.ID.String(),
			Name:            p.Name,
			DistributorCost: p.DistributorCost.StringFixed(2),
			Stock:           p.Stock,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": out})
}

type UpdateProductRequest struct {
	Name            *string `json:"name,omitempty"`
	DistributorCost *string `json:"distributor_cost,omitempty"`
	Stock           *int64  `json:"stock,omitempty"`
}

// UpdateProduct altera o cadastro. Mudança de preço não afeta consumos já
// registrados: o custo unitário deles foi congelado na hora do registro.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		http.Error(w, `{"error":"invalid product_id"}`, http.StatusBadRequest)
		return
	}
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	var cost *decimal.Decimal
	if req.DistributorCost != nil {
		c, err := decimal.NewFromString(strings.TrimSpace(*req.DistributorCost))
		if err != nil || c.IsNegative() {
			http.Error(w, `{"error":"distributor_cost inválido"}`, http.StatusBadRequest)
			return
		}
		cost = &c
	}
	if req.Stock != nil && *req.Stock < 0 {
		http.Error(w, `{"error":"stock inválido"}`, http.StatusBadRequest)
		return
	}
	found, err := repo.UpdateProduct(r.Context(), h.Pool, cid, productID, req.Name, cost, req.Stock)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *Handler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		http.Error(w, `{"error":"invalid product_id"}`, http.StatusBadRequest)
		return
	}
	found, err := repo.DeactivateProduct(r.Context(), h.Pool, cid, productID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

type RegisterConsumptionRequest struct {
	ProductID string  `json:"product_id"`
	DoctorID  string  `json:"doctor_id"`
	PatientID *string `json:"patient_id,omitempty"`
	Quantity  int64   `json:"quantity"`
}

// RegisterConsumption registra o consumo congelando o custo unitário com o
// markup da clínica e baixando o estoque.
func (h *Handler) RegisterConsumption(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req RegisterConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		http.Error(w, `{"error":"invalid product_id"}`, http.StatusBadRequest)
		return
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		http.Error(w, `{"error":"invalid doctor_id"}`, http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, `{"error":"quantity deve ser positiva"}`, http.StatusBadRequest)
		return
	}
	if !auth.IsAdmin(r.Context()) && auth.UserIDFrom(r.Context()) != doctorID.String() {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var patientID *uuid.UUID
	if req.PatientID != nil && *req.PatientID != "" {
		pid, err := uuid.Parse(*req.PatientID)
		if err != nil {
			http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
			return
		}
		patientID = &pid
	}
	markup, err := decimal.NewFromString(h.Cfg.ConsumptionMarkupPct)
	if err != nil {
		markup = decimal.NewFromInt(5)
	}
	id, err := repo.RegisterConsumption(r.Context(), h.Pool, cid, productID, doctorID, patientID, req.Quantity, markup)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrProductNotFound):
			http.Error(w, `{"error":"produto não encontrado"}`, http.StatusNotFound)
		case errors.Is(err, repo.ErrInsufficientStock):
			http.Error(w, `{"error":"estoque insuficiente"}`, http.StatusConflict)
		default:
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		}
		return
	}
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// DoctorConsumption lista o consumo de um médico no mês (?mes=&ano=).
func (h *Handler) DoctorConsumption(w http.ResponseWriter, r *http.Request) {
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
	events, err := repo.ConsumptionByDoctor(r.Context(), h.Pool, cid, doctorID, start, end)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type eventResp struct {
		ID             string  `json:"id"`
		ProductName    string  `json:"product_name"`
		PatientName    *string `json:"patient_name,omitempty"`
		Quantity       int64   `json:"quantity"`
		FrozenUnitCost string  `json:"frozen_unit_cost"`
		Total          string  `json:"total"`
		CreatedAt      string  `json:"created_at"`
	}
	out := make([]eventResp, len(events))
	total := decimal.Zero
	for i, e := range events {
		line := e.FrozenUnitCost.Mul(decimal.NewFromInt(e.Quantity))
		total = total.Add(line)
		out[i] = eventResp{
			ID:             e.ID.String(),
			ProductName:    e.ProductName,
			PatientName:    e.PatientName,
			Quantity:       e.Quantity,
			FrozenUnitCost: e.FrozenUnitCost.StringFixed(2),
			Total:          line.StringFixed(2),
			CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": out,
		"total":  total.StringFixed(2),
	})
}
