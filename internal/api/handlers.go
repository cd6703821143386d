package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/cache"
	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/config"
)

// Handler agrupa as dependências dos endpoints HTTP.
type Handler struct {
	Pool  *pgxpool.Pool
	Cfg   *config.Config
	Cache *cache.TTL
	Calc  *closing.Calculator
}

// clinicUUID extrai e valida o clinic_id do JWT no contexto.
func clinicUUID(r *http.Request) (uuid.UUID, bool) {
	clinicID := auth.ClinicIDFrom(r.Context())
	if clinicID == nil || *clinicID == "" {
		return uuid.Nil, false
	}
	cid, err := uuid.Parse(*clinicID)
	if err != nil {
		return uuid.Nil, false
	}
	return cid, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
