package routes_test

import (
	"fmt"
	"testing"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/internal/server"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/kopisahaja/kopisahaja/pkg/testkit"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp builds the full application against a fresh in-memory database
// with one known drink (id 1) on the menu.
func setupApp(t *testing.T) *server.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.PasswordReset{},
		&models.Drink{}, &models.Order{}, &models.OrderItem{},
	))
	require.NoError(t, db.Create(&models.Drink{
		Name: "Kopi Susu", Price: 5.0, Category: "coffee", Available: true,
	}).Error)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return server.New()
}

func TestAPIScenarios(t *testing.T) {
	app := setupApp(t)
	testkit.RunDir(t, app.Router.Handler(), "testdata")
}
