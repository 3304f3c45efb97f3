package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/kendall-kelly/cnc-shop-api/utils"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one billed item.
type InvoiceLine struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Rate        decimal.Decimal  `json:"rate"`
	Amount      decimal.Decimal  `json:"amount"`
}

// Invoice is the printable summary of one order.
type Invoice struct {
	Number            string           `json:"number"`
	OrderID           uint             `json:"order_id"`
	IssuedAt          time.Time        `json:"issued_at"`
	ClientName        string           `json:"client_name"`
	Phone             *string          `json:"phone"`
	Location          *string          `json:"location"`
	Lines             []InvoiceLine    `json:"lines"`
	BasePrice         decimal.Decimal  `json:"base_price"`
	AdditionalCharges decimal.Decimal  `json:"additional_charges"`
	FinalPrice        decimal.Decimal  `json:"final_price"`
	TotalPaid         decimal.Decimal  `json:"total_paid"`
	BalanceDue        decimal.Decimal  `json:"balance_due"`
	Payments          []models.Payment `json:"payments"`
}

// BuildInvoice assembles the invoice for an order from its current data.
func (s *OrderService) BuildInvoice(ctx context.Context, id uint) (*Invoice, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	material, err := findMaterial(db, view.MaterialID, false)
	if err != nil {
		return nil, err
	}
	service, err := findService(db, view.ServiceID, false)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Number:            fmt.Sprintf("INV-%06d", view.ID),
		OrderID:           view.ID,
		IssuedAt:          s.now(),
		ClientName:        view.ClientName,
		Phone:             view.Phone,
		Location:          view.Location,
		Lines:             []InvoiceLine{},
		BasePrice:         view.BasePrice,
		AdditionalCharges: view.AdditionalCharges,
		FinalPrice:        view.FinalPrice,
		TotalPaid:         view.TotalPaid,
		BalanceDue:        view.Remaining,
		Payments:          view.Payments,
	}
	if material != nil && view.MaterialQty != nil {
		desc := material.Name
		if material.Thickness != nil && *material.Thickness != "" {
			desc += " (" + *material.Thickness + ")"
		}
		inv.Lines = append(inv.Lines, InvoiceLine{
			Description: desc,
			Quantity:    view.MaterialQty,
			Rate:        material.SellingPrice,
			Amount:      material.SellingPrice.Mul(*view.MaterialQty).Round(2),
		})
	}
	if service != nil {
		one := decimal.NewFromInt(1)
		inv.Lines = append(inv.Lines, InvoiceLine{
			Description: service.Name,
			Quantity:    &one,
			Rate:        service.Price,
			Amount:      service.Price,
		})
	}
	return inv, nil
}

// Text renders the invoice as a plain-text document.
func (inv *Invoice) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "INVOICE %s\n", inv.Number)
	fmt.Fprintf(&b, "Order #%d  Date: %s\n\n", inv.OrderID, inv.IssuedAt.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Client:   %s\n", inv.ClientName)
	fmt.Fprintf(&b, "Phone:    %s\n", orNA(inv.Phone))
	fmt.Fprintf(&b, "Location: %s\n\n", orNA(inv.Location))

	fmt.Fprintf(&b, "%-30s %8s %14s %14s\n", "Item", "Qty", "Rate", "Amount")
	for _, l := range inv.Lines {
		qty := ""
		if l.Quantity != nil {
			qty = l.Quantity.String()
		}
		fmt.Fprintf(&b, "%-30s %8s %14s %14s\n", l.Description, qty, utils.FormatINR(l.Rate), utils.FormatINR(l.Amount))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-20s %s\n", "Base Price:", utils.FormatINR(inv.BasePrice))
	fmt.Fprintf(&b, "%-20s %s\n", "Additional Charges:", utils.FormatINR(inv.AdditionalCharges))
	fmt.Fprintf(&b, "%-20s %s\n", "Total Amount:", utils.FormatINR(inv.FinalPrice))
	fmt.Fprintf(&b, "%-20s %s\n", "Paid Amount:", utils.FormatINR(inv.TotalPaid))
	fmt.Fprintf(&b, "%-20s %s\n", "Balance Due:", utils.FormatINR(inv.BalanceDue))
	return b.String()
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
