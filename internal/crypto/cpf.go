package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidCPF = errors.New("CPF inválido")

// NormalizeCPF strips formatting (pontos e traço) and validates length.
// Não valida os dígitos verificadores; isso fica com o frontend.
func NormalizeCPF(cpf string) (string, error) {
	var b strings.Builder
	for _, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", ErrInvalidCPF
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", ErrInvalidCPF
	}
	return digits, nil
}

// CPFHash returns the hex SHA-256 of the normalized CPF, used for the
// per-clinic uniqueness index without indexing the raw document.
func CPFHash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
