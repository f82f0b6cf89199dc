package seeders

import (
	"github.com/kopisahaja/kopisahaja/app/models"
	"gorm.io/gorm"
)

func init() {
	Register("drinks", SeedDrinks)
}

// menu is the launch catalogue. Seeding is idempotent: existing names are
// left untouched.
var menu = []models.Drink{
	{Name: "Kopi O", Description: "Traditional black coffee, bold and aromatic", Price: 4.50, Category: "coffee", ImageURL: "/images/kopi-o.jpg", Available: true},
	{Name: "Kopi Susu", Description: "Coffee with sweet condensed milk", Price: 5.00, Category: "coffee", ImageURL: "/images/kopi-susu.jpg", Available: true},
	{Name: "Caramel Latte", Description: "Espresso with steamed milk and caramel drizzle", Price: 8.50, Category: "coffee", ImageURL: "/images/caramel-latte.jpg", Available: true},
	{Name: "Teh Tarik", Description: "Pulled milk tea with a frothy top", Price: 4.50, Category: "tea", ImageURL: "/images/teh-tarik.jpg", Available: true},
	{Name: "Green Tea Latte", Description: "Matcha green tea with creamy milk", Price: 7.50, Category: "tea", ImageURL: "/images/green-tea-latte.jpg", Available: true},
	{Name: "Iced Lemon Tea", Description: "Refreshing tea with fresh lemon", Price: 5.50, Category: "tea", ImageURL: "/images/iced-lemon-tea.jpg", Available: true},
	{Name: "Chocolate Frappe", Description: "Blended iced chocolate with whipped cream", Price: 9.00, Category: "specialty", ImageURL: "/images/chocolate-frappe.jpg", Available: true},
	{Name: "Avocado Smoothie", Description: "Creamy avocado blended with milk and honey", Price: 9.50, Category: "specialty", ImageURL: "/images/avocado-smoothie.jpg", Available: true},
}

// SeedDrinks inserts the launch menu.
func SeedDrinks(db *gorm.DB) error {
	for _, drink := range menu {
		d := drink
		err := db.Where(models.Drink{Name: d.Name}).FirstOrCreate(&d).Error
		if err != nil {
			return err
		}
	}
	return nil
}
