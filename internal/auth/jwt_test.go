package auth

import (
	"testing"
	"time"
)

func TestBuildAndParseJWT(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	userID := "user-123"
	role := RoleDoctor
	clinicID := "clinic-456"
	tok, err := BuildJWT(secret, userID, role, &clinicID, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	claims, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != userID || claims.Role != role || claims.ClinicID == nil || *claims.ClinicID != clinicID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	tok, err := BuildJWT([]byte("test-secret-min-32-chars!!"), "u1", RoleAdmin, nil, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	if _, err := ParseJWT([]byte("another-secret-entirely-32-chars!"), tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	tok, err := BuildJWT(secret, "u1", RoleDoctor, nil, -time.Minute)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	if _, err := ParseJWT(secret, tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}
