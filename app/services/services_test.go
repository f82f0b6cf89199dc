package services_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/kopisahaja/kopisahaja/pkg/queue"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB points the shared handle at a fresh in-memory sqlite database
// with the full schema migrated.
func setupDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Drink{},
		&models.Order{},
		&models.OrderItem{},
	))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func seedDrink(t *testing.T, drink models.Drink) models.Drink {
	t.Helper()
	require.NoError(t, database.DB.Create(&drink).Error)
	return drink
}

// fakeHub records broadcast traffic instead of pushing to sockets.
type fakeHub struct {
	mu    sync.Mutex
	staff []string
	rooms map[string][]string
}

func newFakeHub() *fakeHub {
	return &fakeHub{rooms: map[string][]string{}}
}

func (h *fakeHub) ToStaff(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.staff = append(h.staff, string(data))
}

func (h *fakeHub) ToOrder(orderID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[orderID] = append(h.rooms[orderID], string(data))
}

// fakeDispatch collects dispatched jobs.
type fakeDispatch struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (d *fakeDispatch) Dispatch(job queue.Job) error {
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	return nil
}
