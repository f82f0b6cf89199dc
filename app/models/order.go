package models

import (
	"time"
)

// Status is the closed set of order states. Transitions are enforced by
// CanTransition; the persistence layer never writes a status that did not
// pass through it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions maps each status to the set of statuses reachable from it.
// completed and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Drink sizes accepted on an order line.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether the order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a customer order. The customer fields are a snapshot taken at
// creation time; TotalAmount is fixed at creation and never recomputed.
type Order struct {
	ID             string    `gorm:"primaryKey;size:36"  json:"id"`
	UserID         *uint     `gorm:"index"               json:"user_id"`
	CustomerName   string    `gorm:"size:100;not null"   json:"customer_name"`
	CustomerPhone  string    `gorm:"size:20;not null"    json:"customer_phone"`
	CustomerEmail  string    `gorm:"size:100"            json:"customer_email"`
	TelegramChatID string    `gorm:"size:50"             json:"telegram_chat_id,omitempty"`
	Status         Status    `gorm:"size:20;default:pending" json:"status"`
	TotalAmount    float64   `gorm:"not null"            json:"total_amount"`
	Notes          string    `gorm:"type:text"           json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	User  *User       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// OrderItem is one customized line of an order. Price is the unit price
// after the size multiplier, fixed at creation.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey"        json:"id"`
	OrderID    string  `gorm:"size:36;index;not null" json:"order_id"`
	DrinkID    uint    `gorm:"index;not null"    json:"drink_id"`
	Quantity   int     `gorm:"not null"          json:"quantity"`
	Size       string  `gorm:"size:10;not null"  json:"size"`
	SugarLevel string  `gorm:"size:10;not null"  json:"sugar_level"`
	IceLevel   string  `gorm:"size:15;not null"  json:"ice_level"`
	Price      float64 `gorm:"not null"          json:"price"`

	DrinkName string `gorm:"-" json:"drink_name,omitempty"`
}
