package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/repo"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	ClinicID *string `json:"clinic_id,omitempty"`
}

// Login autentica ADMIN ou MEDICO pelo e-mail. Resposta genérica em qualquer
// falha para não revelar se o e-mail existe.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}

	prof, err := repo.ProfileByEmail(r.Context(), h.Pool, req.Email)
	if err != nil {
		genericLoginError(w)
		return
	}
	if !auth.CheckPassword(prof.PasswordHash, req.Password) {
		genericLoginError(w)
		return
	}
	clinicID := prof.ClinicID.String()
	tok, err := auth.BuildJWT(h.Cfg.JWTSecret, prof.ID.String(), prof.Role, &clinicID, 24*time.Hour)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     tok,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		User: UserInfo{
			ID:       prof.ID.String(),
			Email:    prof.Email,
			FullName: prof.FullName,
			Role:     prof.Role,
			ClinicID: &clinicID,
		},
	})
}

// Me devolve o perfil do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	uid, err := uuid.Parse(auth.UserIDFrom(r.Context()))
	if err != nil {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	prof, err := repo.ProfileByIDAndClinic(r.Context(), h.Pool, uid, cid)
	if err != nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	clinicID := prof.ClinicID.String()
	writeJSON(w, http.StatusOK, UserInfo{
		ID:       prof.ID.String(),
		Email:    prof.Email,
		FullName: prof.FullName,
		Role:     prof.Role,
		ClinicID: &clinicID,
	})
}

func genericLoginError(w http.ResponseWriter) {
	http.Error(w, `{"error":"credenciais inválidas"}`, http.StatusUnauthorized)
}
