package repositories_test

import (
	"testing"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableFlagPersists(t *testing.T) {
	setupDB(t)
	repo := repositories.NewDrinkRepository()

	sold := models.Drink{Name: "Kopi O", Price: 3.0, Category: "coffee", Available: true}
	pulled := models.Drink{Name: "Seasonal Durian Latte", Price: 6.5, Category: "coffee", Available: false}
	require.NoError(t, database.DB.Create(&sold).Error)
	require.NoError(t, database.DB.Create(&pulled).Error)

	got, err := repo.FindByID(pulled.ID)
	require.NoError(t, err)
	assert.False(t, got.Available, "a drink created as unavailable must read back unavailable")

	menu, err := repo.Available()
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Kopi O", menu[0].Name)
}

func TestAvailableOrdersByCategoryThenName(t *testing.T) {
	setupDB(t)
	repo := repositories.NewDrinkRepository()

	for _, d := range []models.Drink{
		{Name: "Teh Tarik", Price: 3.5, Category: "tea", Available: true},
		{Name: "Kopi Peng", Price: 4.0, Category: "coffee", Available: true},
		{Name: "Kopi C", Price: 3.5, Category: "coffee", Available: true},
	} {
		require.NoError(t, database.DB.Create(&d).Error)
	}

	menu, err := repo.Available()
	require.NoError(t, err)
	require.Len(t, menu, 3)
	assert.Equal(t, "Kopi C", menu[0].Name)
	assert.Equal(t, "Kopi Peng", menu[1].Name)
	assert.Equal(t, "Teh Tarik", menu[2].Name)
}
