package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/crypto"
	"github.com/gestaoclinica/backend/internal/repo"
)

type CreatePatientRequest struct {
	FullName string  `json:"full_name"`
	CPF      *string `json:"cpf,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type PatientResponse struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	CPF      *string `json:"cpf,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Status   string  `json:"status"`
	Notes    *string `json:"notes,omitempty"`
}

func patientResponse(p *repo.Patient) PatientResponse {
	return PatientResponse{
		ID:       p.ID.String(),
		FullName: p.FullName,
		CPF:      p.CPF,
		Phone:    p.Phone,
		Email:    p.Email,
		Status:   p.Status,
		Notes:    p.Notes,
	}
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		http.Error(w, `{"error":"full_name obrigatório"}`, http.StatusBadRequest)
		return
	}
	if req.Email != nil && *req.Email != "" {
		if err := ValidateEmail(*req.Email); err != nil {
			http.Error(w, `{"error":"email inválido"}`, http.StatusBadRequest)
			return
		}
	}
	var cpf, cpfHash *string
	if req.CPF != nil && strings.TrimSpace(*req.CPF) != "" {
		normalized, err := crypto.NormalizeCPF(*req.CPF)
		if err != nil {
			http.Error(w, `{"error":"cpf inválido"}`, http.StatusBadRequest)
			return
		}
		hash := crypto.CPFHash(normalized)
		cpf, cpfHash = &normalized, &hash
	}
	id, err := repo.CreatePatient(r.Context(), h.Pool, cid, req.FullName, cpf, cpfHash, req.Phone, req.Email)
	if err != nil {
		// Índice único por clínica no cpf_hash.
		if strings.Contains(err.Error(), "patients_clinic_cpf_hash") {
			http.Error(w, `{"error":"paciente com este CPF já cadastrado"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	limit, offset := ParseLimitOffset(r)
	search := strings.TrimSpace(r.URL.Query().Get("busca"))
	list, err := repo.PatientsByClinic(r.Context(), h.Pool, cid, search, limit, offset)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]PatientResponse, len(list))
	for i := range list {
		out[i] = patientResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patients": out,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
		return
	}
	p, err := repo.PatientByIDAndClinic(r.Context(), h.Pool, patientID, cid)
	if err != nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, patientResponse(p))
}

type UpdatePatientRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Status   *string `json:"status,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
		return
	}
	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if req.Email != nil && *req.Email != "" {
		if err := ValidateEmail(*req.Email); err != nil {
			http.Error(w, `{"error":"email inválido"}`, http.StatusBadRequest)
			return
		}
	}
	n, err := repo.UpdatePatient(r.Context(), h.Pool, patientID, cid, req.FullName, req.Phone, req.Email, req.Status, req.Notes)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if n == 0 {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
		return
	}
	n, err := repo.DeletePatient(r.Context(), h.Pool, patientID, cid)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if n == 0 {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

type CreateInteractionRequest struct {
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
}

func (h *Handler) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
		return
	}
	// Garante que o paciente pertence à clínica antes de gravar.
	if _, err := repo.PatientByIDAndClinic(r.Context(), h.Pool, patientID, cid); err != nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	var req CreateInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Kind = strings.TrimSpace(req.Kind)
	req.Summary = strings.TrimSpace(req.Summary)
	if req.Kind == "" || req.Summary == "" {
		http.Error(w, `{"error":"kind e summary obrigatórios"}`, http.StatusBadRequest)
		return
	}
	var authorID *uuid.UUID
	if uid, err := uuid.Parse(auth.UserIDFrom(r.Context())); err == nil {
		authorID = &uid
	}
	id, err := repo.CreateInteraction(r.Context(), h.Pool, cid, patientID, authorID, req.Kind, req.Summary)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
		return
	}
	list, err := repo.InteractionsByPatient(r.Context(), h.Pool, cid, patientID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type interactionResp struct {
		ID        string  `json:"id"`
		AuthorID  *string `json:"author_id,omitempty"`
		Kind      string  `json:"kind"`
		Summary   string  `json:"summary"`
		CreatedAt string  `json:"created_at"`
	}
	out := make([]interactionResp, len(list))
	for i, it := range list {
		out[i] = interactionResp{
			ID:        it.ID.String(),
			Kind:      it.Kind,
			Summary:   it.Summary,
			CreatedAt: it.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if it.AuthorID != nil {
			s := it.AuthorID.String()
			out[i].AuthorID = &s
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"interactions": out})
}
