package bookings

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// renderInvoice строит PDF квитанцию по одному платежу
func renderInvoice(b *domain.Booking, inv domain.Invoice) (*models.InvoiceDocument, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Invoice No   : INV-%d-%d", b.ID, inv.InstallmentIndex),
		fmt.Sprintf("Booking No   : %d", b.ID),
		fmt.Sprintf("Payment date : %s", inv.PaymentDate.Format("2006-01-02 15:04")),
		fmt.Sprintf("Payment ID   : %s", safe(inv.GatewayPaymentID)),
		fmt.Sprintf("Method       : %s", safe(inv.PaymentMethod)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	desc := fmt.Sprintf("%s for %s on %s", safe(b.PackageName), safe(b.EventDetails.EventName), safe(b.EventDetails.EventDate))
	pdf.MultiCell(0, 6, desc, "", "", false)
	pdf.Ln(2)

	pdf.Cell(0, 6, fmt.Sprintf("Package total       : %s", money.Format(b.TotalAmount, b.Currency)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Installment         : %d of %d", inv.InstallmentIndex, b.InstallmentPlan))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Paid: "+money.Format(inv.PaidAmount, b.Currency))
	pdf.Ln(8)
	pdf.Cell(0, 8, "Balance due: "+money.Format(inv.DueAmount, b.Currency))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return &models.InvoiceDocument{
		FileName: fmt.Sprintf("invoice-%d-%d.pdf", b.ID, inv.InstallmentIndex),
		Content:  buf.Bytes(),
	}, nil
}

func safe(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
