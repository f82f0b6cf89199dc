package models

import "gorm.io/gorm"

// Drink is a purchasable menu item. The catalogue is seeded and read-only at
// runtime from the application's perspective.
type Drink struct {
	gorm.Model
	Name        string  `gorm:"size:100;not null"      json:"name"`
	Description string  `gorm:"type:text"              json:"description"`
	Price       float64 `gorm:"not null"               json:"price"`
	Category    string  `gorm:"size:50;index"          json:"category"`
	ImageURL    string  `gorm:"size:255"               json:"image_url"`
	Available   bool    `json:"available"`
}
