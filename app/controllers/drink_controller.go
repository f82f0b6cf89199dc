package controllers

import (
	"net/http"

	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/pkg/ctx"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
)

type DrinkController struct {
	drinks *repositories.DrinkRepository
}

func NewDrinkController(drinks *repositories.DrinkRepository) *DrinkController {
	return &DrinkController{drinks: drinks}
}

// Index lists the available menu.
func (d *DrinkController) Index(c *ctx.Context) {
	drinks, err := d.drinks.Available()
	if err != nil {
		logger.WithCtx(c.Context()).Error("menu load failed", "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Success(drinks)
}
