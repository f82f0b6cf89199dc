package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kopisahaja/kopisahaja/app/jobs"
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
	"github.com/kopisahaja/kopisahaja/pkg/metrics"
	"github.com/kopisahaja/kopisahaja/pkg/queue"
	"gorm.io/gorm"
)

// Broadcaster pushes real-time events to connected clients. The staff
// channel carries new-order events; order channels carry status updates.
type Broadcaster interface {
	ToStaff(data []byte)
	ToOrder(orderID string, data []byte)
}

// Dispatcher enqueues a background job. Normally queue.Dispatch.
type Dispatcher func(job queue.Job) error

// OrderInput is the request payload for placing an order. The customer
// fields are only required when no authenticated user supplies them.
type OrderInput struct {
	CustomerName  string           `json:"customerName"`
	CustomerPhone string           `json:"customerPhone"`
	CustomerEmail string           `json:"customerEmail"`
	Notes         string           `json:"notes"`
	Items         []OrderItemInput `json:"items"`
}

// OrderService owns the order lifecycle. All collaborators are injected so
// tests can run it against an in-memory database and a fake broadcaster.
type OrderService struct {
	orders   *repositories.OrderRepository
	drinks   *repositories.DrinkRepository
	hub      Broadcaster
	dispatch Dispatcher
}

func NewOrderService(
	orders *repositories.OrderRepository,
	drinks *repositories.DrinkRepository,
	hub Broadcaster,
	dispatch Dispatcher,
) *OrderService {
	return &OrderService{orders: orders, drinks: drinks, hub: hub, dispatch: dispatch}
}

// Create validates and prices the input, persists order plus items in one
// transaction, and announces the new order to the staff channel.
func (s *OrderService) Create(input OrderInput, user *models.User) (models.Order, error) {
	name, phone, email := resolveCustomer(input, user)

	errs := map[string]string{}
	if name == "" {
		errs["customerName"] = "The customerName field is required."
	}
	if phone == "" {
		errs["customerPhone"] = "The customerPhone field is required."
	}
	if len(input.Items) == 0 {
		errs["items"] = "At least one item is required."
	}
	for i, item := range input.Items {
		for k, v := range ValidateItem(i, item) {
			errs[k] = v
		}
	}
	if len(errs) > 0 {
		return models.Order{}, &ValidationError{Fields: errs}
	}

	ids := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.DrinkID)
	}
	catalogue, err := s.drinks.FindByIDs(ids)
	if err != nil {
		return models.Order{}, fmt.Errorf("load drinks: %w", err)
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for i, item := range input.Items {
		drink, ok := catalogue[item.DrinkID]
		if !ok || !drink.Available {
			return models.Order{}, NewValidationError(
				fmt.Sprintf("items.%d.drinkId", i), "Drink is not available.")
		}
		items = append(items, models.OrderItem{
			DrinkID:    item.DrinkID,
			Quantity:   item.Quantity,
			Size:       item.Size,
			SugarLevel: item.SugarLevel,
			IceLevel:   item.IceLevel,
			Price:      ItemUnitPrice(drink.Price, item.Size),
		})
	}

	order := models.Order{
		ID:            uuid.NewString(),
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: email,
		Status:        models.StatusPending,
		TotalAmount:   OrderTotal(items),
		Notes:         input.Notes,
		Items:         items,
	}
	if user != nil {
		id := user.ID
		order.UserID = &id
	}

	if err := s.orders.Create(&order); err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}

	metrics.OrdersCreated.Inc()
	s.announce(s.hub.ToStaff, map[string]any{
		"event":        "new-order",
		"orderId":      order.ID,
		"customerName": order.CustomerName,
		"totalAmount":  order.TotalAmount,
	})

	return order, nil
}

// UpdateStatus moves an order along the state machine, notifies the order's
// WebSocket room, and queues a Telegram notification when a chat is linked.
// Notification failures never fail the update.
func (s *OrderService) UpdateStatus(id string, next models.Status) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, NewValidationError("status",
			"Status must be one of: pending, preparing, ready, completed, cancelled.")
	}

	order, err := s.orders.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("load order: %w", err)
	}

	if !order.Status.CanTransition(next) {
		return models.Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.orders.UpdateStatus(id, next); err != nil {
		return models.Order{}, fmt.Errorf("update status: %w", err)
	}

	metrics.StatusTransitions.WithLabelValues(string(order.Status), string(next)).Inc()
	order.Status = next

	s.announce(func(data []byte) { s.hub.ToOrder(id, data) }, map[string]any{
		"event":  "status-update",
		"status": next,
	})

	if order.TelegramChatID != "" {
		job := jobs.NewOrderStatus(order)
		if err := s.dispatch(job); err != nil {
			logger.Error("order: notification dispatch failed", "order_id", id, "error", err)
		}
	}

	return order, nil
}

// LinkTelegram attaches a Telegram chat to an order so future status
// changes reach it. Linking the same chat twice is a no-op.
func (s *OrderService) LinkTelegram(id, chatID string) (models.Order, error) {
	if chatID == "" {
		return models.Order{}, NewValidationError("telegramChatId",
			"The telegramChatId field is required.")
	}

	order, err := s.orders.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("load order: %w", err)
	}

	if order.TelegramChatID != chatID {
		if err := s.orders.SetTelegramChatID(id, chatID); err != nil {
			return models.Order{}, fmt.Errorf("link telegram: %w", err)
		}
		order.TelegramChatID = chatID
	}
	return order, nil
}

// Get returns an order with its items and drink names.
func (s *OrderService) Get(id string) (models.Order, error) {
	order, err := s.orders.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	return order, err
}

// ListAll returns every order for the staff dashboard, newest first.
func (s *OrderService) ListAll() ([]models.Order, error) {
	return s.orders.AllNewestFirst()
}

// Analytics returns the flattened order/item export rows.
func (s *OrderService) Analytics() ([]repositories.AnalyticsRow, error) {
	return s.orders.Analytics()
}

// announce marshals and sends a real-time event. Push failures only get a
// log line; the HTTP path is already committed.
func (s *OrderService) announce(send func([]byte), payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("order: marshal event", "error", err)
		return
	}
	send(data)
}

// resolveCustomer merges authenticated profile data with request fields.
// Each field independently falls back to the request value.
func resolveCustomer(input OrderInput, user *models.User) (name, phone, email string) {
	name, phone, email = input.CustomerName, input.CustomerPhone, input.CustomerEmail
	if user == nil {
		return name, phone, email
	}
	if n := user.DisplayName(); n != "" {
		name = n
	}
	if user.Phone != "" {
		phone = user.Phone
	}
	if user.Email != "" {
		email = user.Email
	}
	return name, phone, email
}
