package services

import (
	"fmt"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/collection"
)

// Size multipliers applied to a drink's base price.
var sizeMultipliers = map[string]float64{
	models.SizeSmall:  0.8,
	models.SizeMedium: 1.0,
	models.SizeLarge:  1.2,
}

var sugarLevels = map[string]bool{
	"0%": true, "25%": true, "50%": true, "75%": true, "100%": true,
}

var iceLevels = map[string]bool{
	"no ice": true, "less ice": true, "normal ice": true, "extra ice": true,
}

// OrderItemInput is one requested line of an order before pricing.
type OrderItemInput struct {
	DrinkID    uint   `json:"drinkId" validate:"required"`
	Quantity   int    `json:"quantity"`
	Size       string `json:"size"`
	SugarLevel string `json:"sugarLevel"`
	IceLevel   string `json:"iceLevel"`
}

// ValidateItem checks quantity and option enum membership. The returned map
// is keyed with the item index so the client can point at the failing line.
func ValidateItem(idx int, item OrderItemInput) map[string]string {
	errs := map[string]string{}
	key := func(field string) string { return fmt.Sprintf("items.%d.%s", idx, field) }

	if item.Quantity < 1 {
		errs[key("quantity")] = "Quantity must be at least 1."
	}
	if _, ok := sizeMultipliers[item.Size]; !ok {
		errs[key("size")] = "Size must be one of: small, medium, large."
	}
	if !sugarLevels[item.SugarLevel] {
		errs[key("sugarLevel")] = "Sugar level must be one of: 0%, 25%, 50%, 75%, 100%."
	}
	if !iceLevels[item.IceLevel] {
		errs[key("iceLevel")] = "Ice level must be one of: no ice, less ice, normal ice, extra ice."
	}
	return errs
}

// ItemUnitPrice is the per-unit price for a drink at the given size.
func ItemUnitPrice(basePrice float64, size string) float64 {
	return basePrice * sizeMultipliers[size]
}

// LinePrice is the priced total of one order line.
func LinePrice(basePrice float64, size string, quantity int) float64 {
	return ItemUnitPrice(basePrice, size) * float64(quantity)
}

// OrderTotal sums the line prices of already-priced items.
func OrderTotal(items []models.OrderItem) float64 {
	return collection.Sum(items, func(it models.OrderItem) float64 {
		return it.Price * float64(it.Quantity)
	})
}
