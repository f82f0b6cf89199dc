package services_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kopisahaja/kopisahaja/app/jobs"
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(t *testing.T) (*services.OrderService, *fakeHub, *fakeDispatch) {
	t.Helper()
	setupDB(t)
	hub := newFakeHub()
	dispatch := &fakeDispatch{}
	svc := services.NewOrderService(
		repositories.NewOrderRepository(),
		repositories.NewDrinkRepository(),
		hub,
		dispatch.Dispatch,
	)
	return svc, hub, dispatch
}

func validInput(drinkID uint) services.OrderInput {
	return services.OrderInput{
		CustomerName:  "Adit",
		CustomerPhone: "0812000111",
		CustomerEmail: "adit@example.com",
		Items: []services.OrderItemInput{
			{DrinkID: drinkID, Quantity: 2, Size: "large", SugarLevel: "50%", IceLevel: "less ice"},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	svc, hub, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi Susu", Price: 5.0, Category: "coffee", Available: true})

	order, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	// 5.00 * 1.2 * 2 = 12.00
	assert.InDelta(t, 12.0, order.TotalAmount, 1e-9)
	require.Len(t, order.Items, 1)
	assert.InDelta(t, 6.0, order.Items[0].Price, 1e-9)

	// Order and items land in the same transaction.
	stored, err := svc.Get(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Kopi Susu", stored.Items[0].DrinkName)

	// Staff channel gets the new-order event.
	require.Len(t, hub.staff, 1)
	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(hub.staff[0]), &event))
	assert.Equal(t, "new-order", event["event"])
	assert.Equal(t, order.ID, event["orderId"])
	assert.Equal(t, "Adit", event["customerName"])
	assert.InDelta(t, 12.0, event["totalAmount"].(float64), 1e-9)
}

func TestCreateOrderSnapshotsProfile(t *testing.T) {
	svc, _, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Teh Tarik", Price: 4.5, Available: true})

	user := models.User{
		Username:  "siti",
		Email:     "siti@example.com",
		FirstName: "Siti",
		LastName:  "Rahma",
		Phone:     "0812999888",
	}
	require.NoError(t, database.DB.Create(&user).Error)

	input := validInput(drink.ID)
	order, err := svc.Create(input, &user)
	require.NoError(t, err)

	// Profile fields win over request fields.
	assert.Equal(t, "Siti Rahma", order.CustomerName)
	assert.Equal(t, "0812999888", order.CustomerPhone)
	assert.Equal(t, "siti@example.com", order.CustomerEmail)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
}

func TestCreateOrderProfileFallsBackPerField(t *testing.T) {
	svc, _, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Teh Tarik", Price: 4.5, Available: true})

	// No phone on the profile: the request value fills the gap.
	user := models.User{Username: "budi", Email: "budi@example.com"}
	require.NoError(t, database.DB.Create(&user).Error)

	order, err := svc.Create(validInput(drink.ID), &user)
	require.NoError(t, err)
	assert.Equal(t, "budi", order.CustomerName)
	assert.Equal(t, "0812000111", order.CustomerPhone)
	assert.Equal(t, "budi@example.com", order.CustomerEmail)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, hub, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	tests := []struct {
		name   string
		mutate func(*services.OrderInput)
		field  string
	}{
		{"missing name", func(in *services.OrderInput) { in.CustomerName = "" }, "customerName"},
		{"missing phone", func(in *services.OrderInput) { in.CustomerPhone = "" }, "customerPhone"},
		{"no items", func(in *services.OrderInput) { in.Items = nil }, "items"},
		{"bad size", func(in *services.OrderInput) { in.Items[0].Size = "grande" }, "items.0.size"},
		{"zero quantity", func(in *services.OrderInput) { in.Items[0].Quantity = 0 }, "items.0.quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(drink.ID)
			tt.mutate(&input)

			_, err := svc.Create(input, nil)
			ve, ok := services.AsValidation(err)
			require.True(t, ok, "want validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	// Nothing reached the staff channel and nothing was persisted.
	assert.Empty(t, hub.staff)
	var n int64
	require.NoError(t, database.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateOrderUnavailableDrink(t *testing.T) {
	svc, _, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Seasonal", Price: 9.0, Available: false})

	_, err := svc.Create(validInput(drink.ID), nil)
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "items.0.drinkId")

	_, err = svc.Create(validInput(9999), nil)
	_, ok = services.AsValidation(err)
	assert.True(t, ok)
}

func TestCreateOrderConcurrent(t *testing.T) {
	svc, hub, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi Susu", Price: 5.0, Available: true})

	const workers = 8

	var wg sync.WaitGroup
	ids := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := validInput(drink.ID)
			input.CustomerName = fmt.Sprintf("Customer %d", i)
			order, err := svc.Create(input, nil)
			ids[i], errs[i] = order.ID, err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		assert.False(t, seen[ids[i]], "order id %s assigned twice", ids[i])
		seen[ids[i]] = true

		stored, err := svc.Get(ids[i])
		require.NoError(t, err)
		assert.InDelta(t, 12.0, stored.TotalAmount, 1e-9)
		require.Len(t, stored.Items, 1)
	}

	orders, err := svc.ListAll()
	require.NoError(t, err)
	assert.Len(t, orders, workers)
	assert.Len(t, hub.staff, workers)
}

func TestUpdateStatusWalksLifecycle(t *testing.T) {
	svc, hub, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	order, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)

	for _, next := range []models.Status{
		models.StatusPreparing, models.StatusReady, models.StatusCompleted,
	} {
		updated, err := svc.UpdateStatus(order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// Each hop pushed a status-update into the order's room.
	require.Len(t, hub.rooms[order.ID], 3)
	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(hub.rooms[order.ID][0]), &event))
	assert.Equal(t, "status-update", event["event"])
	assert.Equal(t, "preparing", event["status"])

	// Total is untouched by status changes.
	stored, err := svc.Get(order.ID)
	require.NoError(t, err)
	assert.InDelta(t, order.TotalAmount, stored.TotalAmount, 1e-9)
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	svc, _, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	order, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)

	// pending cannot jump the queue.
	for _, next := range []models.Status{models.StatusReady, models.StatusCompleted, models.StatusPending} {
		_, err := svc.UpdateStatus(order.ID, next)
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
	}

	// Terminal states accept nothing.
	_, err = svc.UpdateStatus(order.ID, models.StatusCancelled)
	require.NoError(t, err)
	for _, next := range []models.Status{
		models.StatusPending, models.StatusPreparing, models.StatusReady, models.StatusCompleted,
	} {
		_, err := svc.UpdateStatus(order.ID, next)
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
	}
}

func TestUpdateStatusUnknownInputs(t *testing.T) {
	svc, _, _ := newOrderService(t)

	_, err := svc.UpdateStatus("no-such-order", models.StatusPreparing)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.UpdateStatus("no-such-order", models.Status("brewing"))
	_, ok := services.AsValidation(err)
	assert.True(t, ok)
}

func TestUpdateStatusQueuesTelegramNotification(t *testing.T) {
	svc, _, dispatch := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	order, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)

	// No chat linked: no job.
	_, err = svc.UpdateStatus(order.ID, models.StatusPreparing)
	require.NoError(t, err)
	assert.Empty(t, dispatch.jobs)

	_, err = svc.LinkTelegram(order.ID, "424242")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.ID, models.StatusReady)
	require.NoError(t, err)
	require.Len(t, dispatch.jobs, 1)

	job, ok := dispatch.jobs[0].(*jobs.OrderStatusNotification)
	require.True(t, ok)
	assert.Equal(t, order.ID, job.OrderID)
	assert.Equal(t, "424242", job.ChatID)
	assert.Equal(t, models.StatusReady, job.Status)
}

func TestUpdateStatusSurvivesDispatchFailure(t *testing.T) {
	svc, _, dispatch := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	order, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)
	_, err = svc.LinkTelegram(order.ID, "99")
	require.NoError(t, err)

	dispatch.err = errors.New("queue down")
	updated, err := svc.UpdateStatus(order.ID, models.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)
}

func TestLinkTelegram(t *testing.T) {
	svc, _, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	order, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)

	linked, err := svc.LinkTelegram(order.ID, "777")
	require.NoError(t, err)
	assert.Equal(t, "777", linked.TelegramChatID)

	// Idempotent.
	linked, err = svc.LinkTelegram(order.ID, "777")
	require.NoError(t, err)
	assert.Equal(t, "777", linked.TelegramChatID)

	_, err = svc.LinkTelegram("missing", "777")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.LinkTelegram(order.ID, "")
	_, ok := services.AsValidation(err)
	assert.True(t, ok)
}

func TestListAllNewestFirst(t *testing.T) {
	svc, _, _ := newOrderService(t)
	drink := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Available: true})

	first, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)
	second, err := svc.Create(validInput(drink.ID), nil)
	require.NoError(t, err)

	// Force distinct timestamps.
	require.NoError(t, database.DB.Model(&models.Order{}).
		Where("id = ?", second.ID).
		Update("created_at", first.CreatedAt.Add(time.Second)).Error)

	orders, err := svc.ListAll()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestAnalyticsFlattensItems(t *testing.T) {
	svc, _, _ := newOrderService(t)
	kopi := seedDrink(t, models.Drink{Name: "Kopi O", Price: 4.5, Category: "coffee", Available: true})
	teh := seedDrink(t, models.Drink{Name: "Teh Tarik", Price: 4.5, Category: "tea", Available: true})

	input := validInput(kopi.ID)
	input.Items = append(input.Items, services.OrderItemInput{
		DrinkID: teh.ID, Quantity: 1, Size: "medium", SugarLevel: "0%", IceLevel: "no ice",
	})
	order, err := svc.Create(input, nil)
	require.NoError(t, err)

	rows, err := svc.Analytics()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	names := []string{rows[0].DrinkName, rows[1].DrinkName}
	assert.ElementsMatch(t, []string{"Kopi O", "Teh Tarik"}, names)
	for _, row := range rows {
		assert.Equal(t, order.ID, row.OrderID)
		assert.Equal(t, "pending", row.Status)
		assert.InDelta(t, order.TotalAmount, row.TotalAmount, 1e-9)
	}
}
