package services_test

import (
	"testing"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/stretchr/testify/assert"
)

func TestItemUnitPrice(t *testing.T) {
	assert.InDelta(t, 4.0, services.ItemUnitPrice(5.0, models.SizeSmall), 1e-9)
	assert.InDelta(t, 5.0, services.ItemUnitPrice(5.0, models.SizeMedium), 1e-9)
	assert.InDelta(t, 6.0, services.ItemUnitPrice(5.0, models.SizeLarge), 1e-9)
}

func TestLinePrice(t *testing.T) {
	// Two large drinks at 5.00 base: 5.00 * 1.2 * 2 = 12.00.
	assert.InDelta(t, 12.0, services.LinePrice(5.0, models.SizeLarge, 2), 1e-9)
}

func TestOrderTotalSumsPricedLines(t *testing.T) {
	items := []models.OrderItem{
		{Price: 4.0, Quantity: 2}, // 8.00
		{Price: 5.4, Quantity: 1}, // 5.40
	}
	assert.InDelta(t, 13.4, services.OrderTotal(items), 1e-9)
}

func TestValidateItemAccepts(t *testing.T) {
	errs := services.ValidateItem(0, services.OrderItemInput{
		DrinkID: 1, Quantity: 1, Size: "small", SugarLevel: "50%", IceLevel: "less ice",
	})
	assert.Empty(t, errs)
}

func TestValidateItemRejects(t *testing.T) {
	tests := []struct {
		name  string
		item  services.OrderItemInput
		field string
	}{
		{"zero quantity", services.OrderItemInput{Quantity: 0, Size: "medium", SugarLevel: "0%", IceLevel: "no ice"}, "items.2.quantity"},
		{"negative quantity", services.OrderItemInput{Quantity: -1, Size: "medium", SugarLevel: "0%", IceLevel: "no ice"}, "items.2.quantity"},
		{"bad size", services.OrderItemInput{Quantity: 1, Size: "venti", SugarLevel: "0%", IceLevel: "no ice"}, "items.2.size"},
		{"bad sugar", services.OrderItemInput{Quantity: 1, Size: "medium", SugarLevel: "10%", IceLevel: "no ice"}, "items.2.sugarLevel"},
		{"bad ice", services.OrderItemInput{Quantity: 1, Size: "medium", SugarLevel: "0%", IceLevel: "crushed"}, "items.2.iceLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := services.ValidateItem(2, tt.item)
			assert.Contains(t, errs, tt.field)
		})
	}
}
