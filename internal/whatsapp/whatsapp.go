// Package whatsapp formats a finalised order as a pre-filled WhatsApp
// message and builds the wa.me deep link the storefront hands the customer.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"granel-store/internal/model"
)

// Builder renders order hand-off messages for a configured WhatsApp number.
// The number is country code plus digits, no spaces or dashes.
type Builder struct {
	number string
}

// NewBuilder creates a message builder for the given WhatsApp number.
func NewBuilder(number string) *Builder {
	return &Builder{number: number}
}

// FormatPrice renders an amount the way the storefront does for es-AR:
// dot-separated thousands, comma decimals, e.g. $4.600,00.
func FormatPrice(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2) // "4600.00"

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s,%s", sign, b.String(), fracPart)
}

// Message builds the order summary text: customer, itemised lines, total
// and the delivery block.
func (b *Builder) Message(order *model.Order) string {
	var lines []string
	for _, item := range order.Items {
		name := item.ProductName
		if item.VariantName != nil && *item.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", name, *item.VariantName)
		}
		lines = append(lines, fmt.Sprintf("- %s x%d = %s", name, item.Quantity, FormatPrice(item.Subtotal)))
	}

	delivery := "Retiro en local"
	if order.DeliveryOption == model.DeliveryDelivery {
		delivery = "Envío a domicilio"
	}

	var sb strings.Builder
	sb.WriteString("*Nuevo Pedido*\n\n")
	fmt.Fprintf(&sb, "*Pedido:* %s\n", order.OrderNumber)
	fmt.Fprintf(&sb, "*Cliente:* %s\n\n", order.CustomerName)
	sb.WriteString("*Productos:*\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "*Total:* %s\n\n", FormatPrice(order.Total))
	fmt.Fprintf(&sb, "*Entrega:* %s\n", delivery)
	if order.DeliveryOption == model.DeliveryDelivery && order.CustomerAddress != nil {
		fmt.Fprintf(&sb, "*Dirección:* %s\n", *order.CustomerAddress)
	}
	sb.WriteString("\nGracias por tu pedido!")

	return sb.String()
}

// URL returns the wa.me deep link with the message percent-encoded.
// Spaces must come out as %20, not +; some WhatsApp clients render a
// plus-encoded text parameter with literal plus signs.
func (b *Builder) URL(order *model.Order) string {
	encoded := strings.ReplaceAll(url.QueryEscape(b.Message(order)), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", b.number, encoded)
}
