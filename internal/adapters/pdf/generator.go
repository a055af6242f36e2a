// Package pdf generates a printable statement of an employee's bills.
// The statement lists every bill, latest first, with its date, type, name,
// amount and status, followed by the total per status.
package pdf

import (
	"context"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/billed/internal/dates"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
)

var _ ports.StatementGenerator = Generator{}

// Generator writes bill statements.
type Generator struct{}

// Generate writes the statement of bills for user to w.
func (Generator) Generate(_ context.Context, user domain.StoredUser, bills []domain.Bill, w io.Writer) error {
	return build(user, bills).Output(w)
}

// build lays out the statement. The header bar and employee line repeat on
// every page.
func build(user domain.StoredUser, bills []domain.Bill) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetHeaderFunc(func() { drawHeader(pdf, tr, user) })

	sorted := append([]domain.Bill(nil), bills...)
	dates.SortDescending(sorted, func(b domain.Bill) string { return b.Date })

	pdf.AddPage()
	drawBills(pdf, tr, sorted)
	drawTotals(pdf, tr, sorted)
	return pdf
}

func drawHeader(pdf *fpdf.Fpdf, tr func(string) string, user domain.StoredUser) {
	pageW, _ := pdf.GetPageSize()
	marginL, marginT, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(27, 35, 48)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, tr("BILLED  RELEVÉ DES NOTES DE FRAIS"), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 7, "Page "+strconv.Itoa(pdf.PageNo())+" / {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetXY(marginL, marginT+14)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 6, tr("Employé : "+user.Email), "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func drawBills(pdf *fpdf.Fpdf, tr func(string) string, bills []domain.Bill) {
	pageW, _ := pdf.GetPageSize()
	marginL, _, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	widths := []float64{contentW * 0.16, contentW * 0.24, contentW * 0.30, contentW * 0.14, contentW * 0.16}
	headers := []string{"Date", "Type", "Nom", "Montant", "Statut"}

	pdf.SetFillColor(27, 35, 48)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, h, "1", ln, "L", true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8.5)

	if len(bills) == 0 {
		pdf.CellFormat(contentW, 7, tr("Aucune note de frais."), "1", 1, "C", false, 0, "")
		return
	}
	for i, b := range bills {
		// Alternating row background
		if i%2 == 0 {
			pdf.SetFillColor(246, 247, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		cells := []string{
			dates.FormatDate(b.Date),
			b.Type,
			b.Name,
			formatAmount(b.Amount),
			b.Status.Label(),
		}
		for j, c := range cells {
			ln, align := 0, "L"
			if j == len(cells)-1 {
				ln = 1
			}
			if j == 3 {
				align = "R"
			}
			pdf.CellFormat(widths[j], 6.5, tr(c), "1", ln, align, true, 0, "")
		}
	}
}

func drawTotals(pdf *fpdf.Fpdf, tr func(string) string, bills []domain.Bill) {
	totals := map[domain.BillStatus]float64{}
	for _, b := range bills {
		totals[b.Status] += b.Amount
	}

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 9)
	for _, s := range []domain.BillStatus{domain.StatusPending, domain.StatusAccepted, domain.StatusRefused} {
		pdf.CellFormat(60, 6, tr(s.Label()), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(formatAmount(totals[s])), "", 1, "R", false, 0, "")
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " €"
}
