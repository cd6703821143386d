package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestaoclinica/backend/internal/auth"
)

func TestRequireAdmin(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := RequireAdmin(okHandler)

	cases := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"admin passa", &auth.Claims{Role: auth.RoleAdmin}, http.StatusOK},
		{"medico barrado", &auth.Claims{Role: auth.RoleDoctor}, http.StatusForbidden},
		{"sem claims", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.claims != nil {
				req = req.WithContext(auth.WithClaims(req.Context(), tc.claims))
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d; esperava %d", rec.Code, tc.want)
			}
		})
	}
}
