package api

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ParseLimitOffset lê ?limit= e ?offset= para as listagens paginadas
// (pacientes, principalmente). Valor ausente ou inválido cai no padrão;
// limit é truncado em 100 para a busca por nome não virar full scan.
func ParseLimitOffset(r *http.Request) (limit, offset int) {
	limit, offset = defaultLimit, 0
	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = n
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n >= 0 {
		offset = n
	}
	return limit, offset
}
