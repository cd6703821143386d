package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrInvalidPeriod = errors.New("invalid period")
)

// emailRegex valida formato de e-mail (uma @ e domínio com ponto).
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ParseMonthYear lê mes e ano da query string (?mes=3&ano=2025).
func ParseMonthYear(r *http.Request) (month, year int, err error) {
	month, err = strconv.Atoi(r.URL.Query().Get("mes"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, ErrInvalidPeriod
	}
	year, err = strconv.Atoi(r.URL.Query().Get("ano"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, ErrInvalidPeriod
	}
	return month, year, nil
}
