// Job de linha de comando: gera o PDF de fechamento de um mês para todas as
// clínicas e grava em disco. Pensado para rodar via cron no início do mês.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/config"
	"github.com/gestaoclinica/backend/internal/migrate"
	"github.com/gestaoclinica/backend/internal/pdf"
	"github.com/gestaoclinica/backend/internal/repo"
)

func main() {
	lastMonth := time.Now().UTC().AddDate(0, -1, 0)
	month := flag.Int("mes", int(lastMonth.Month()), "mês do fechamento (1-12)")
	year := flag.Int("ano", lastMonth.Year(), "ano do fechamento")
	outDir := flag.String("saida", ".", "diretório de saída dos PDFs")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	if err := migrate.Run(ctx, pool, "migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	calc := closing.New(&repo.ClosingSource{Pool: pool}, closing.ParsePartnershipMode(cfg.PartnershipMode))

	rows, err := pool.Query(ctx, `SELECT id, name FROM clinics ORDER BY name`)
	if err != nil {
		log.Fatalf("clinics: %v", err)
	}
	type clinic struct {
		id   uuid.UUID
		name string
	}
	var clinics []clinic
	for rows.Next() {
		var c clinic
		if err := rows.Scan(&c.id, &c.name); err != nil {
			log.Fatalf("clinics: %v", err)
		}
		clinics = append(clinics, c)
	}
	rows.Close()

	generated := 0
	for _, c := range clinics {
		report, err := calc.Compute(ctx, c.id, *month, *year)
		if err != nil {
			log.Printf("[fechamento] %s: %v", c.name, err)
			continue
		}
		b, err := pdf.BuildClosingPDF(pdf.ClosingReport{
			ClinicName:   c.name,
			Month:        *month,
			Year:         *year,
			Rows:         report,
			GeneratedAt:  time.Now().UTC().Format("02/01/2006 15:04 UTC"),
			AppPublicURL: cfg.AppPublicURL,
		})
		if err != nil {
			log.Printf("[fechamento] %s: PDF: %v", c.name, err)
			continue
		}
		path := fmt.Sprintf("%s/fechamento-%s-%d-%d.pdf", *outDir, c.id, *month, *year)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			log.Printf("[fechamento] %s: gravando %s: %v", c.name, path, err)
			continue
		}
		log.Printf("[fechamento] %s: %d linha(s), %s", c.name, len(report), path)
		generated++
	}
	log.Printf("[fechamento] done: %d/%d clínicas, período %d/%d", generated, len(clinics), *month, *year)
}
