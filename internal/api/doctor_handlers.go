package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/repo"
)

type CreateDoctorRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	// Contrato opcional na criação.
	ContractKind *string `json:"contract_kind,omitempty"`
	ContractRate *string `json:"contract_rate,omitempty"`
}

// CreateDoctor cria o perfil MEDICO e, se informado, o contrato, na mesma
// transação.
func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := ValidateEmail(req.Email); err != nil {
		http.Error(w, `{"error":"email inválido"}`, http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, `{"error":"senha deve ter ao menos 8 caracteres"}`, http.StatusBadRequest)
		return
	}
	if req.FullName == "" {
		http.Error(w, `{"error":"full_name obrigatório"}`, http.StatusBadRequest)
		return
	}

	var kind string
	var rate decimal.Decimal
	hasContract := req.ContractKind != nil
	if hasContract {
		var err error
		kind, rate, err = parseContractTerms(*req.ContractKind, req.ContractRate)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}

	var doctorID uuid.UUID
	err = pgx.BeginFunc(r.Context(), h.Pool, func(tx pgx.Tx) error {
		id, err := repo.CreateProfile(r.Context(), tx, cid, req.Email, hash, req.FullName, auth.RoleDoctor)
		if err != nil {
			return err
		}
		doctorID = id
		if hasContract {
			_, err = tx.Exec(r.Context(), `
				INSERT INTO doctor_contracts (clinic_id, doctor_id, kind, rate)
				VALUES ($1, $2, $3, $4)
			`, cid, doctorID, kind, rate)
		}
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "profiles_email") {
			http.Error(w, `{"error":"e-mail já cadastrado"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate("medicos:" + cid.String())
	writeJSON(w, http.StatusCreated, map[string]string{"id": doctorID.String()})
}

type DoctorResponse struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	ContractKind *string `json:"contract_kind,omitempty"`
	ContractRate *string `json:"contract_rate,omitempty"`
}

func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	cacheKey := "medicos:" + cid.String()
	if b := h.Cache.Get(cacheKey); b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
		return
	}
	list, err := repo.ListDoctorsWithContract(r.Context(), h.Pool, cid)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]DoctorResponse, len(list))
	for i, d := range list {
		out[i] = DoctorResponse{
			ID:           d.ID.String(),
			FullName:     d.FullName,
			Email:        d.Email,
			ContractKind: d.ContractKind,
		}
		if d.ContractRate != nil {
			s := d.ContractRate.StringFixed(2)
			out[i].ContractRate = &s
		}
	}
	body, err := json.Marshal(map[string]interface{}{"doctors": out})
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Set(cacheKey, body)
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

type UpsertContractRequest struct {
	Kind string  `json:"kind"`
	Rate *string `json:"rate"`
}

// UpsertContract cria ou troca o contrato do médico. A troca vale para os
// fechamentos seguintes; meses já fechados não são recalculados.
func (h *Handler) UpsertContract(w http.ResponseWriter, r *http.Request) {
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
	var req UpsertContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	kind, rate, err := parseContractTerms(req.Kind, req.Rate)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if _, err := repo.ProfileByIDAndClinic(r.Context(), h.Pool, doctorID, cid); err != nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err := repo.UpsertDoctorContract(r.Context(), h.Pool, cid, doctorID, kind, rate); err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate("medicos:" + cid.String())
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
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
	if doctorID.String() == auth.UserIDFrom(r.Context()) {
		http.Error(w, `{"error":"não é possível remover o próprio usuário"}`, http.StatusBadRequest)
		return
	}
	n, err := repo.DeleteProfile(r.Context(), h.Pool, doctorID, cid)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if n == 0 {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	h.Cache.Invalidate("medicos:" + cid.String())
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// parseContractTerms valida tipo e taxa do contrato. ALUGUEL: taxa por hora,
// >= 0. PARCERIA: percentual em [0, 100].
func parseContractTerms(kindRaw string, rateRaw *string) (string, decimal.Decimal, error) {
	kind := strings.ToUpper(strings.TrimSpace(kindRaw))
	if kind != string(closing.KindAluguel) && kind != string(closing.KindParceria) {
		return "", decimal.Zero, errContractKind
	}
	if rateRaw == nil {
		return "", decimal.Zero, errContractRate
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(*rateRaw))
	if err != nil || rate.IsNegative() {
		return "", decimal.Zero, errContractRate
	}
	if kind == string(closing.KindParceria) && rate.GreaterThan(decimal.NewFromInt(100)) {
		return "", decimal.Zero, errContractRate
	}
	return kind, rate, nil
}

var (
	errContractKind = jsonSafeError("kind deve ser ALUGUEL ou PARCERIA")
	errContractRate = jsonSafeError("rate inválido")
)

type jsonSafeError string

func (e jsonSafeError) Error() string { return string(e) }
