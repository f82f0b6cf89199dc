package repositories

import (
	"time"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/orm"
)

const menuCacheKey = "kopisahaja:menu:available"

// DrinkRepository handles database operations for Drink.
type DrinkRepository struct{}

func NewDrinkRepository() *DrinkRepository {
	return &DrinkRepository{}
}

// Available returns the purchasable menu, cached for a minute. The menu is
// seeded data, so a short TTL is plenty.
func (r *DrinkRepository) Available() ([]models.Drink, error) {
	var drinks []models.Drink
	err := orm.DB().
		Model(&models.Drink{}).
		Where("available = ?", true).
		Order("category, name").
		Cache(menuCacheKey, time.Minute, &drinks)
	return drinks, err
}

// FindByID looks up a drink by primary key.
func (r *DrinkRepository) FindByID(id uint) (models.Drink, error) {
	var drink models.Drink
	err := orm.DB().Model(&models.Drink{}).Where("id = ?", id).First(&drink)
	return drink, err
}

// FindByIDs loads several drinks at once, keyed by id.
func (r *DrinkRepository) FindByIDs(ids []uint) (map[uint]models.Drink, error) {
	var drinks []models.Drink
	if err := orm.DB().Model(&models.Drink{}).Where("id IN ?", ids).Get(&drinks); err != nil {
		return nil, err
	}
	out := make(map[uint]models.Drink, len(drinks))
	for _, d := range drinks {
		out[d.ID] = d
	}
	return out, nil
}
