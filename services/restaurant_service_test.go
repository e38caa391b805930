package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

func TestRestaurantNameIsDisplayName(t *testing.T) {
	db, _ := setup(t)
	restaurants := services.NewRestaurantService(db)

	_, err := restaurants.Create(ctx, services.RestaurantInput{Name: "Joe's Diner"})
	require.NoError(t, err)

	for _, name := range []string{"", "X", "Cafe 21", "-Dash", "Double  Space"} {
		_, err := restaurants.Create(ctx, services.RestaurantInput{Name: name})
		require.Error(t, err, name)
		_, ok := utils.AsValidationError(err)
		assert.True(t, ok, name)
	}
}

func TestDeleteRestaurantCascadesToTablesAndSeats(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	root, err := f.Table(ctx, r.ID, nil)
	require.NoError(t, err)
	sub, err := f.Table(ctx, r.ID, root)
	require.NoError(t, err)
	_, err = f.Seat(ctx, sub.ID)
	require.NoError(t, err)
	_, err = f.Employee(ctx, r.ID)
	require.NoError(t, err)
	item, err := f.MenuItem(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, services.NewRestaurantService(db).Delete(ctx, r.ID))

	var tables, seats int64
	require.NoError(t, db.Model(&models.Table{}).Count(&tables).Error)
	require.NoError(t, db.Model(&models.Seat{}).Count(&seats).Error)
	assert.Zero(t, tables)
	assert.Zero(t, seats)

	// Menu items outlive the restaurant but lose its availability.
	got, err := services.NewMenuItemService(db).Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AvailableAtRestaurants)

	_, err = services.NewRestaurantService(db).Get(ctx, r.ID)
	assert.True(t, services.IsNotFound(err))
}

func TestDeleteRestaurantWithBookingsIsProtected(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)

	err = services.NewRestaurantService(db).Delete(ctx, fx.Restaurant.ID)
	assert.ErrorIs(t, err, utils.ErrProtected)
}

func TestRestaurantTablesOrderedByNumber(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	tables := services.NewTableService(db, nil)
	for _, n := range []uint{7, 2, 5} {
		_, err := tables.Create(ctx, services.TableInput{RestaurantID: r.ID, Number: n})
		require.NoError(t, err)
	}

	got, err := services.NewRestaurantService(db).Tables(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint{2, 5, 7}, []uint{got[0].Number, got[1].Number, got[2].Number})
}

func TestIsDisplayName(t *testing.T) {
	valid := []string{"Anne", "Anne-Marie", "O'Brien", "Mary Jane", "de la Cruz"}
	invalid := []string{"", " Anne", "Anne ", "Anne--Marie", "R2D2", "Anne_Marie", "Zoë"}
	for _, s := range valid {
		assert.True(t, services.IsDisplayName(s), s)
	}
	for _, s := range invalid {
		assert.False(t, services.IsDisplayName(s), s)
	}
}
