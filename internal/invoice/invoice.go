// Package invoice renders fixed-layout PDF invoices for workshop payments.
// Rendering is pure: it reads the invoice model and writes bytes, nothing
// else.
package invoice

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/lewismosage/acna-sub000/internal/model"
)

const issuerName = "African Child Neurology Association"

// Render writes a single-page A4 invoice: header, invoice metadata,
// billed-to block, one line item and the total.
func Render(w io.Writer, inv model.Invoice) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Payment.ProviderSessionID, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, issuerName)
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "INVOICE")
	pdf.Ln(12)

	// Invoice metadata
	pdf.SetFont("Helvetica", "", 10)
	metaRow(pdf, "Invoice reference:", inv.Payment.ProviderSessionID)
	metaRow(pdf, "Payment date:", inv.Payment.CreatedAt.Format("2 January 2006"))
	metaRow(pdf, "Payment status:", inv.Payment.Status)
	pdf.Ln(6)

	// Billed-to block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Billed to")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, inv.AttendeeName)
	pdf.Ln(5)
	pdf.Cell(0, 5, inv.AttendeeEmail)
	pdf.Ln(5)
	if inv.Organization != "" {
		pdf.Cell(0, 5, inv.Organization)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Line item table
	amount := formatAmount(inv.Payment.AmountCents, inv.Payment.Currency)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(140, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	desc := fmt.Sprintf("Workshop registration: %s (%s)",
		inv.WorkshopTitle, inv.WorkshopDate.Format("2 Jan 2006"))
	pdf.CellFormat(140, 8, desc, "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, amount, "1", 1, "R", false, 0, "")

	// Total
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, amount, "1", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice pdf: %w", err)
	}
	return nil
}

func metaRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(45, 5, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, value, "", 1, "L", false, 0, "")
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, strings.ToUpper(currency))
}
