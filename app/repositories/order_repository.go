package repositories

import (
	"time"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/metrics"
	"github.com/kopisahaja/kopisahaja/pkg/orm"
)

// OrderRepository handles database operations for Order and its items.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Create persists the order and all of its items in one transaction.
// Either everything commits or nothing does.
func (r *OrderRepository) Create(order *models.Order) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return orm.Transaction(func(tx *orm.Query) error {
		return tx.Create(order)
	})
}

// FindByID loads an order with its items and fills each item's drink name.
func (r *OrderRepository) FindByID(id string) (models.Order, error) {
	var order models.Order
	err := orm.DB().
		Model(&models.Order{}).
		Preload("Items").
		Where("id = ?", id).
		First(&order)
	if err != nil {
		return order, err
	}
	if err := r.fillDrinkNames(order.Items); err != nil {
		return order, err
	}
	return order, nil
}

// UpdateStatus persists a status change. The caller has already checked the
// transition table.
func (r *OrderRepository) UpdateStatus(id string, status models.Status) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return orm.DB().Model(&models.Order{}).Where("id = ?", id).Update("status", status)
}

// SetTelegramChatID links a Telegram chat to an order. Idempotent.
func (r *OrderRepository) SetTelegramChatID(id, chatID string) error {
	return orm.DB().Model(&models.Order{}).Where("id = ?", id).Update("telegram_chat_id", chatID)
}

// AllNewestFirst returns every order with items and owner, newest first.
func (r *OrderRepository) AllNewestFirst() ([]models.Order, error) {
	var orders []models.Order
	err := orm.DB().
		Model(&models.Order{}).
		Preload("Items").
		Preload("User").
		Order("created_at DESC").
		Get(&orders)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := r.fillDrinkNames(o.Items); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// AnalyticsRow is one flattened order/item/drink/user record for export.
type AnalyticsRow struct {
	OrderID       string    `json:"order_id"`
	OrderDate     time.Time `json:"order_date"`
	Status        string    `json:"status"`
	TotalAmount   float64   `json:"total_amount"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Username      string    `json:"username,omitempty"`
	DrinkName     string    `json:"drink_name"`
	Category      string    `json:"category"`
	Quantity      int       `json:"quantity"`
	Size          string    `json:"size"`
	SugarLevel    string    `json:"sugar_level"`
	IceLevel      string    `json:"ice_level"`
	ItemPrice     float64   `json:"item_price"`
}

// Analytics returns one row per order item joined with drink and owner data.
func (r *OrderRepository) Analytics() ([]AnalyticsRow, error) {
	var rows []AnalyticsRow
	err := orm.DB().
		Model(&models.OrderItem{}).
		Select(`orders.id AS order_id, orders.created_at AS order_date,
			orders.status, orders.total_amount, orders.customer_name,
			orders.customer_email, users.username,
			drinks.name AS drink_name, drinks.category,
			order_items.quantity, order_items.size,
			order_items.sugar_level, order_items.ice_level,
			order_items.price AS item_price`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN drinks ON drinks.id = order_items.drink_id").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Scan(&rows)
	return rows, err
}

// fillDrinkNames resolves the display name for each item's drink.
func (r *OrderRepository) fillDrinkNames(items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.DrinkID)
	}

	var drinks []models.Drink
	if err := orm.DB().Model(&models.Drink{}).Where("id IN ?", ids).Get(&drinks); err != nil {
		return err
	}

	names := make(map[uint]string, len(drinks))
	for _, d := range drinks {
		names[d.ID] = d.Name
	}
	for i := range items {
		items[i].DrinkName = names[items[i].DrinkID]
	}
	return nil
}
