package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/textilia/contracts-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a printable contract summary with party and
// signature blocks.
func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Supply Contract", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %s dated %s", doc.Contract.ContractNumber, formatDate(doc.Contract.ContractDate)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Term: %s to %s", formatDate(doc.Contract.StartDate), formatDate(doc.Contract.EndDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addPartyBlock(pdf, g.fontName, "Supplier", doc.SupplierName)
	pdf.Ln(2)
	addPartyBlock(pdf, g.fontName, "Customer", doc.CustomerName)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Terms", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"PO No.", "SO No.", "Quantity", "Cone weight", "Rate"}
	colWidths := []float64{36, 36, 36, 36, 36}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	row := []string{
		safeValue(doc.Contract.PONumber),
		safeValue(doc.Contract.SONumber),
		safeValue(doc.Contract.Quantity),
		fmt.Sprintf("%.2f", doc.Contract.ConeWeight),
		fmt.Sprintf("%.2f", doc.Contract.Rate),
	}
	drawTableRow(pdf, g.fontName, row, colWidths, false)

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("Specification: %s", safeValue(doc.Contract.Specs)), "", "L", false)

	if doc.Contract.AllocationNumber != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Allocation No.: %s", *doc.Contract.AllocationNumber), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)

	signatureBlock(pdf, g.fontName, "Supplier", doc.Contract.ESignatures.Supplier, doc.SupplierName)
	signatureBlock(pdf, g.fontName, "Customer", doc.Contract.ESignatures.Customer, doc.CustomerName)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, fontName, title, name string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 5, safeValue(name), "", "L", false)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label string, sig model.Signature, fallbackName string) {
	name := sig.Name
	if strings.TrimSpace(name) == "" {
		name = fallbackName
	}
	line := fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name))
	if sig.SignedAt != nil {
		line += fmt.Sprintf(" signed %s", formatDate(*sig.SignedAt))
	}
	pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
