package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/repo"
)

type FrontendErrorRequest struct {
	Message  string                 `json:"message"`
	Stack    string                 `json:"stack,omitempty"`
	URL      string                 `json:"url,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// IngestFrontendError grava erros reportados pelo frontend. Aceita chamadas
// sem JWT; com JWT, associa clínica e usuário.
func (h *Handler) IngestFrontendError(w http.ResponseWriter, r *http.Request) {
	var req FrontendErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		msg = "frontend error"
	}
	if len(msg) > 2000 {
		msg = msg[:2000]
	}

	var clinicID, userID *uuid.UUID
	if c := auth.ClaimsFrom(r.Context()); c != nil {
		if uid, err := uuid.Parse(c.UserID); err == nil {
			userID = &uid
		}
		if c.ClinicID != nil {
			if cidVal, err := uuid.Parse(*c.ClinicID); err == nil {
				clinicID = &cidVal
			}
		}
	}

	var metadata []byte
	if req.Metadata != nil {
		metadata, _ = json.Marshal(req.Metadata)
	}

	// Falha ao gravar não vira erro para o cliente; o endpoint é best-effort.
	_, _ = repo.CreateErrorEvent(r.Context(), h.Pool, clinicID, userID, msg, req.Stack, req.URL, r.UserAgent(), metadata)
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
