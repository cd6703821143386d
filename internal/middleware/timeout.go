package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout limita a duração de cada request cancelando o context; as queries
// pgx abortam junto. O fechamento mensal e a geração de PDF são as rotas mais
// lentas, então o teto vem de REQUEST_TIMEOUT_SEC. Com valor <= 0 vira no-op.
func Timeout(timeoutSec int) func(http.Handler) http.Handler {
	if timeoutSec <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	d := time.Duration(timeoutSec) * time.Second
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
