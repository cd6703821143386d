package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         []byte
	CORSOrigins       []string
	DBMaxConns        int
	DBMinConns        int
	DBMaxConnLifetime time.Duration
	RequestTimeoutSec int
	AppPublicURL      string
	// Fechamento mensal: convenção de sinal da receita de parceria.
	// "credit" abate da fatura do médico; "charge" soma (ver internal/closing).
	PartnershipMode string
	// Percentual de markup aplicado sobre o custo do distribuidor no momento
	// do consumo (valor congelado no evento). Padrão 5.
	ConsumptionMarkupPct string
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		jwtSecret = "default-secret-min-32-chars-required!!"
	}
	cors := os.Getenv("CORS_ORIGINS")
	if cors == "" {
		cors = "http://localhost:5173"
	}
	var origins []string
	for _, o := range strings.Split(cors, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("PARTNERSHIP_MODE")))
	if mode != "charge" {
		mode = "credit"
	}
	return &Config{
		Port:                 port,
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            []byte(jwtSecret),
		CORSOrigins:          origins,
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 0),
		DBMinConns:           getEnvInt("DB_MIN_CONNS", 0),
		DBMaxConnLifetime:    time.Duration(getEnvInt("DB_MAX_CONN_LIFETIME_MIN", 0)) * time.Minute,
		RequestTimeoutSec:    getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		AppPublicURL:         getEnv("APP_PUBLIC_URL", "http://localhost:5173"),
		PartnershipMode:      mode,
		ConsumptionMarkupPct: getEnv("CONSUMPTION_MARKUP_PCT", "5"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
