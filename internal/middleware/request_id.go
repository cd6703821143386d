package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDFromContext devolve o id da request corrente, ou "" fora de uma.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// RequestID aceita o X-Request-ID enviado pelo cliente ou gera um uuid novo,
// e o propaga no context e no header da resposta. Recover inclui esse id no
// log e no corpo de erro quando um handler entra em pânico.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(headerRequestID)
		if rid == "" {
			rid = uuid.New().String()
			r.Header.Set(headerRequestID, rid)
		}
		w.Header().Set(headerRequestID, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}
