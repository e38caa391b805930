package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

func TestBookingWindowMustBeOrdered(t *testing.T) {
	db, _ := setup(t)
	bookings := services.NewBookingService(db, nil)

	_, err := bookings.Create(ctx, services.BookingInput{Start: ten, End: ten})
	requireFieldError(t, err, "end", utils.CodeInvalid)

	_, err = bookings.Create(ctx, services.BookingInput{Start: ten, End: ten.Add(-time.Minute)})
	requireFieldError(t, err, "end", utils.CodeInvalid)

	_, err = bookings.Create(ctx, services.BookingInput{Start: ten})
	requireFieldError(t, err, "end", utils.CodeRequired)
}

func TestOverlappingBookingAtSameTable(t *testing.T) {
	_, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)
	other, err := f.Seat(ctx, fx.Table.ID)
	require.NoError(t, err)

	// 10:30 - 11:30 collides with 10:00 - 11:00 even on another seat.
	clashing, err := f.Booking(ctx, ten.Add(30*time.Minute), time.Hour)
	require.NoError(t, err)
	_, err = f.SeatBooking(ctx, other.ID, clashing.ID, nil)
	requireFieldError(t, err, "seat_id", utils.CodeUnique)

	// 11:00 - 12:00 only touches the end point.
	adjacent, err := f.Booking(ctx, ten.Add(time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = f.SeatBooking(ctx, other.ID, adjacent.ID, nil)
	require.NoError(t, err)
}

func TestOverlapIsScopedToTable(t *testing.T) {
	_, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)
	otherTable, err := f.Table(ctx, fx.Restaurant.ID, nil)
	require.NoError(t, err)
	seat, err := f.Seat(ctx, otherTable.ID)
	require.NoError(t, err)

	b, err := f.Booking(ctx, ten, time.Hour)
	require.NoError(t, err)
	_, err = f.SeatBooking(ctx, seat.ID, b.ID, nil)
	assert.NoError(t, err)
}

func TestUpdateBookingRechecksOverlap(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)
	other, err := f.Seat(ctx, fx.Table.ID)
	require.NoError(t, err)

	later, err := f.Booking(ctx, ten.Add(2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = f.SeatBooking(ctx, other.ID, later.ID, nil)
	require.NoError(t, err)

	bookings := services.NewBookingService(db, nil)
	_, err = bookings.Update(ctx, later.ID, services.BookingInput{Start: ten.Add(30 * time.Minute), End: ten.Add(90 * time.Minute)})
	requireFieldError(t, err, "start", utils.CodeUnique)

	updated, err := bookings.Update(ctx, later.ID, services.BookingInput{Start: ten.Add(time.Hour), End: ten.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, updated.Start.Equal(ten.Add(time.Hour)))
}

func TestSeatBookingsOfOneBookingShareRestaurant(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)

	r2, err := f.Restaurant(ctx)
	require.NoError(t, err)
	t2, err := f.Table(ctx, r2.ID, nil)
	require.NoError(t, err)
	s2, err := f.Seat(ctx, t2.ID)
	require.NoError(t, err)

	_, err = f.SeatBooking(ctx, s2.ID, fx.Booking.ID, nil)
	requireFieldError(t, err, "seat_id", utils.CodeInvalid)

	detail, err := services.NewBookingService(db, nil).Get(ctx, fx.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.RestaurantID)
	assert.Equal(t, fx.Restaurant.ID, *detail.RestaurantID)
	assert.Equal(t, []uint{fx.Table.ID}, detail.TableIDs)
}

func TestSeatBookingUniqueness(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)

	_, err = f.SeatBooking(ctx, fx.Seat.ID, fx.Booking.ID, nil)
	requireFieldError(t, err, "seat_id", utils.CodeUnique)

	face, err := f.Face(ctx, models.GenderFemale, models.SkinColourAsian, models.AgeAdult)
	require.NoError(t, err)
	_, err = services.NewSeatBookingService(db, nil).Update(ctx, fx.SeatBooking.ID, services.SeatBookingInput{
		SeatID: fx.Seat.ID, BookingID: fx.Booking.ID, FaceID: &face.ID,
	})
	require.NoError(t, err)

	second, err := f.Seat(ctx, fx.Table.ID)
	require.NoError(t, err)
	_, err = f.SeatBooking(ctx, second.ID, fx.Booking.ID, &face.ID)
	requireFieldError(t, err, "face_id", utils.CodeUnique)
}

func TestDeleteBookingCascades(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)
	item, err := f.MenuItem(ctx, fx.Restaurant.ID)
	require.NoError(t, err)
	_, err = f.Order(ctx, fx.SeatBooking.ID, item.ID, models.CourseMainCourse)
	require.NoError(t, err)

	pub := &queue.MemoryPublisher{}
	require.NoError(t, services.NewBookingService(db, pub).Delete(ctx, fx.Booking.ID))

	var seatBookings, orders int64
	require.NoError(t, db.Model(&models.SeatBooking{}).Count(&seatBookings).Error)
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, seatBookings)
	assert.Zero(t, orders)

	// The seat itself survives and is no longer protected.
	require.NoError(t, services.NewSeatService(db).Delete(ctx, fx.Seat.ID))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, queue.BookingDeleted, msgs[0].RoutingKey)
	event := msgs[0].Event.(queue.BookingEvent)
	assert.Equal(t, fx.Booking.ID, event.BookingID)
	assert.Equal(t, []uint{fx.Seat.ID}, event.SeatIDs)
}

func TestSeatDeleteProtectedWhileBooked(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)

	err = services.NewSeatService(db).Delete(ctx, fx.Seat.ID)
	assert.ErrorIs(t, err, utils.ErrProtected)

	_, err = services.NewSeatService(db).Update(ctx, fx.Seat.ID, services.SeatInput{
		TableID: fx.Table.ID + 100, LocationIndex: uintPtr(0),
	})
	requireFieldError(t, err, "table_id", utils.CodeInvalid)
}

func TestSeatLocationUniquePerTable(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	tbl, err := f.Table(ctx, r.ID, nil)
	require.NoError(t, err)

	seats := services.NewSeatService(db)
	_, err = seats.Create(ctx, services.SeatInput{TableID: tbl.ID, LocationIndex: uintPtr(2)})
	require.NoError(t, err)
	_, err = seats.Create(ctx, services.SeatInput{TableID: tbl.ID, LocationIndex: uintPtr(2)})
	requireFieldError(t, err, "location_index", utils.CodeUnique)
	_, err = seats.Create(ctx, services.SeatInput{TableID: tbl.ID})
	requireFieldError(t, err, "location_index", utils.CodeRequired)
}

func TestBookingEventsArePublishedAfterCommit(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	tbl, err := f.Table(ctx, r.ID, nil)
	require.NoError(t, err)
	_, err = f.Seat(ctx, tbl.ID)
	require.NoError(t, err)

	pub := &queue.MemoryPublisher{}
	booking, err := services.NewTableService(db, pub).CreateBooking(ctx, tbl.ID, services.BookingInput{Start: ten, End: ten.Add(time.Hour)})
	require.NoError(t, err)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, queue.BookingCreated, msgs[0].RoutingKey)
	event := msgs[0].Event.(queue.BookingEvent)
	assert.Equal(t, booking.ID, event.BookingID)
	require.NotNil(t, event.RestaurantID)
	assert.Equal(t, r.ID, *event.RestaurantID)
	assert.Equal(t, []uint{tbl.ID}, event.TableIDs)

	// A rejected booking publishes nothing.
	_, err = services.NewTableService(db, pub).CreateBooking(ctx, tbl.ID, services.BookingInput{Start: ten, End: ten.Add(time.Hour)})
	require.Error(t, err)
	assert.Len(t, pub.Messages(), 1)
}
