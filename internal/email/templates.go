package email

import (
	"fmt"
	"strings"
)

// OrderLine is the slice of an order a notice needs to render
type OrderLine struct {
	Title          string
	Quantity       int64
	UnitPriceCents int64
}

func BuildShipmentNoticeBody(orderID string, totalCents int64, lines []OrderLine) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>Your order has shipped</h2>")
	fmt.Fprintf(&b, "<p>Order number: %s</p>", orderID)
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Title</th><th>Qty</th><th>Unit price</th></tr>")
	for _, line := range lines {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			line.Title, line.Quantity, formatCents(line.UnitPriceCents))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>Total: <strong>%s</strong></p>", formatCents(totalCents))
	b.WriteString("<p>Thank you for shopping with us.</p>")
	b.WriteString("</body></html>")
	return b.String()
}

func BuildCancellationNoticeBody(orderID, reason string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>Your order was cancelled</h2>")
	fmt.Fprintf(&b, "<p>Order number: %s</p>", orderID)
	if reason != "" {
		fmt.Fprintf(&b, "<p>Reason: %s</p>", reason)
	}
	b.WriteString("<p>No charge was made for this order.</p>")
	b.WriteString("</body></html>")
	return b.String()
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
