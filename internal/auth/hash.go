package auth

import "golang.org/x/crypto/bcrypt"

// Custo 12: lento o bastante para senha de portal administrativo sem
// atrapalhar o login do dia a dia.
const passwordCost = 12

// HashPassword gera o hash bcrypt guardado em profiles.password_hash.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword retorna false para qualquer divergência ou hash malformado.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
