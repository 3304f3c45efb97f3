package services

import (
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
)

// Quote is the price breakdown for a set of order selections.
type Quote struct {
	MaterialCost      decimal.Decimal `json:"material_cost"`
	ServiceCost       decimal.Decimal `json:"service_cost"`
	BasePrice         decimal.Decimal `json:"base_price"`
	AdditionalCharges decimal.Decimal `json:"additional_charges"`
	FinalPrice        decimal.Decimal `json:"final_price"`
}

// ComputeBasePrice returns material selling price times quantity plus the
// service price. A missing material, quantity or service contributes zero.
func ComputeBasePrice(material *models.Material, qty *decimal.Decimal, service *models.Service) decimal.Decimal {
	return materialCost(material, qty).Add(serviceCost(service)).Round(2)
}

// ComputeFinalPrice adds the manual surcharge to the base price. A nil
// surcharge counts as zero.
func ComputeFinalPrice(base decimal.Decimal, additional *decimal.Decimal) decimal.Decimal {
	if additional == nil {
		return base.Round(2)
	}
	return base.Add(*additional).Round(2)
}

// BuildQuote computes the full breakdown without touching an order.
func BuildQuote(material *models.Material, qty *decimal.Decimal, service *models.Service, additional *decimal.Decimal) Quote {
	base := ComputeBasePrice(material, qty, service)
	extra := decimal.Zero
	if additional != nil {
		extra = *additional
	}
	return Quote{
		MaterialCost:      materialCost(material, qty).Round(2),
		ServiceCost:       serviceCost(service).Round(2),
		BasePrice:         base,
		AdditionalCharges: extra.Round(2),
		FinalPrice:        ComputeFinalPrice(base, additional),
	}
}

// ApplyPricing rewrites the derived price fields of order from its current
// selections. Every write path that touches material, quantity, service or
// additional charges goes through here.
func ApplyPricing(order *models.Order, material *models.Material, service *models.Service) {
	order.BasePrice = ComputeBasePrice(material, order.MaterialQty, service)
	order.FinalPrice = ComputeFinalPrice(order.BasePrice, &order.AdditionalCharges)
}

// HasMoneyScale reports whether d fits the two-decimal columns money and
// quantities are stored in.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func materialCost(material *models.Material, qty *decimal.Decimal) decimal.Decimal {
	if material == nil || qty == nil {
		return decimal.Zero
	}
	return material.SellingPrice.Mul(*qty)
}

func serviceCost(service *models.Service) decimal.Decimal {
	if service == nil {
		return decimal.Zero
	}
	return service.Price
}
