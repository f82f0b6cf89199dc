package models_test

import (
	"testing"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/stretchr/testify/assert"
)

var all = []models.Status{
	models.StatusPending,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusCompleted,
	models.StatusCancelled,
}

func TestTransitionTable(t *testing.T) {
	allowed := map[models.Status][]models.Status{
		models.StatusPending:   {models.StatusPreparing, models.StatusCancelled},
		models.StatusPreparing: {models.StatusReady, models.StatusCancelled},
		models.StatusReady:     {models.StatusCompleted},
		models.StatusCompleted: {},
		models.StatusCancelled: {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, models.StatusCompleted.Terminal())
	assert.True(t, models.StatusCancelled.Terminal())
	assert.False(t, models.StatusPending.Terminal())
	assert.False(t, models.StatusPreparing.Terminal())
	assert.False(t, models.StatusReady.Terminal())
}

func TestValid(t *testing.T) {
	for _, s := range all {
		assert.True(t, s.Valid())
	}
	assert.False(t, models.Status("brewing").Valid())
	assert.False(t, models.Status("").Valid())
}
