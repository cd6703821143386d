package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/gestaoclinica/backend/internal/closing"
)

// ClosingReport agrega o que o PDF de fechamento precisa além das linhas.
type ClosingReport struct {
	ClinicName   string
	Month        int
	Year         int
	Rows         []closing.Row
	GeneratedAt  string
	AppPublicURL string
}

// ContentHash é o SHA-256 hex do conteúdo canônico do relatório (clínica,
// período e valores linha a linha). É o que vai estampado no bloco de
// autenticidade e no link de verificação.
func ContentHash(r ClosingReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d/%d\n", r.ClinicName, r.Month, r.Year)
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s|%s\n",
			row.DoctorID, row.DoctorName,
			row.RoomCost.StringFixed(2), row.PartnershipRevenue.StringFixed(2),
			row.ProductCost.StringFixed(2), row.SharedExpenseShare.StringFixed(2),
			row.FinalInvoiceAmount.StringFixed(2))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// BuildClosingPDF gera o relatório mensal de fechamento: tabela por médico e
// bloco de autenticidade com hash SHA-256 e QR code.
func BuildClosingPDF(r ClosingReport) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	// Fontes core são cp1252; tr converte os acentos do português.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Relatório de Fechamento - %d/%d", r.Month, r.Year)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(r.ClinicName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Gerado em: "+r.GeneratedAt, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{90, 35, 35, 35, 35, 40}
	headers := []string{"Médico", "Aluguel", "Parceria", "Produtos", "Condomínio", "FATURA FINAL"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	totalFinal := decimal.Zero
	for _, row := range r.Rows {
		pdf.CellFormat(widths[0], 6, tr(row.DoctorName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, money(row.RoomCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, money(row.PartnershipRevenue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, money(row.ProductCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, money(row.SharedExpenseShare), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, money(row.FinalInvoiceAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		totalFinal = totalFinal.Add(row.FinalInvoiceAmount)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3]+widths[4], 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 7, money(totalFinal), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if len(r.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Ln(2)
		pdf.CellFormat(0, 6, tr("Nenhum médico faturado no período."), "", 1, "L", false, 0, "")
	}

	hash := ContentHash(r)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, "Autenticidade", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr("Hash SHA-256 do relatório: ")+hash, "", 1, "L", false, 0, "")
	if r.AppPublicURL != "" {
		verURL := fmt.Sprintf("%s/verify/%s", r.AppPublicURL, hash)
		if qrPNG, err := qrcode.Encode(verURL, qrcode.Medium, 128); err == nil {
			tmpFile, err := os.CreateTemp("", "qr-*.png")
			if err == nil {
				tmpFile.Write(qrPNG)
				path := tmpFile.Name()
				tmpFile.Close()
				defer os.Remove(path)
				pdf.RegisterImage(path, "PNG")
				pdf.Image(path, 12, pdf.GetY(), 25, 25, false, "", 0, "")
				pdf.SetY(pdf.GetY() + 27)
			}
		}
		pdf.CellFormat(0, 5, "Link para verificacao: "+verURL, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
