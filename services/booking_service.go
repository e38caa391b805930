package services

import (
	"context"
	"time"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgBookingWindow  = "Start Date & Time must be before End Date & Time."
	msgBookingOverlap = "A booking for this seat's table already exists within these start & end points."
)

// BookingInput is the time window of a booking.
type BookingInput struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

type BookingFilter struct {
	RestaurantID *uint
	StartAfter   *time.Time
	EndBefore    *time.Time
}

// BookingDetail is a booking with the values derived from its seats.
type BookingDetail struct {
	models.Booking
	RestaurantID *uint  `json:"restaurant_id"`
	TableIDs     []uint `json:"table_ids"`
}

type BookingService struct {
	DB        *gorm.DB
	Publisher queue.Publisher
}

func NewBookingService(db *gorm.DB, publisher queue.Publisher) *BookingService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &BookingService{DB: db, Publisher: publisher}
}

func (s *BookingService) List(ctx context.Context, f BookingFilter, page utils.PageRequest) (utils.Page[models.Booking], error) {
	q := s.DB.WithContext(ctx).Model(&models.Booking{}).Order("starts_at, id")
	if f.RestaurantID != nil {
		q = q.Where("id IN (?)", s.DB.Model(&models.SeatBooking{}).
			Select("seat_bookings.booking_id").
			Joins("JOIN seats ON seats.id = seat_bookings.seat_id").
			Joins("JOIN tables ON tables.id = seats.table_id").
			Where("tables.restaurant_id = ?", *f.RestaurantID))
	}
	if f.StartAfter != nil {
		q = q.Where("starts_at >= ?", f.StartAfter.UTC())
	}
	if f.EndBefore != nil {
		q = q.Where("ends_at <= ?", f.EndBefore.UTC())
	}
	return utils.Paginate[models.Booking](q, page)
}

func (s *BookingService) Get(ctx context.Context, id uint) (*BookingDetail, error) {
	db := s.DB.WithContext(ctx)
	var b models.Booking
	if err := first(db.Preload("SeatBookings"), &b, "booking", id); err != nil {
		return nil, err
	}
	restaurantID, err := BookingRestaurantID(db, id)
	if err != nil {
		return nil, err
	}
	tableIDs, err := BookingTableIDs(db, id)
	if err != nil {
		return nil, err
	}
	return &BookingDetail{Booking: b, RestaurantID: restaurantID, TableIDs: tableIDs}, nil
}

func (s *BookingService) Create(ctx context.Context, in BookingInput) (*models.Booking, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	b := models.Booking{Start: in.Start.UTC(), End: in.End.UTC()}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := validateBooking(tx, &b); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&b).Error
	})
	if err != nil {
		return nil, err
	}
	publishBookingEvent(ctx, s.DB, s.Publisher, queue.BookingCreated, &b)
	return &b, nil
}

// Update changes the booking window. Every seat already attached to the
// booking is checked again for overlaps at its table.
func (s *BookingService) Update(ctx context.Context, id uint, in BookingInput) (*models.Booking, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var b models.Booking
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &b, "booking", id); err != nil {
			return err
		}
		b.Start = in.Start.UTC()
		b.End = in.End.UTC()
		if err := validateBooking(tx, &b); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	publishBookingEvent(ctx, s.DB, s.Publisher, queue.BookingUpdated, &b)
	return &b, nil
}

// Delete removes the booking together with its seat bookings and their orders.
func (s *BookingService) Delete(ctx context.Context, id uint) error {
	var b models.Booking
	var event queue.BookingEvent
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &b, "booking", id); err != nil {
			return err
		}
		var err error
		if event, err = bookingEvent(tx, &b); err != nil {
			return err
		}
		sbIDs := tx.Model(&models.SeatBooking{}).Select("id").Where("booking_id = ?", id)
		if err := tx.Where("seat_booking_id IN (?)", sbIDs).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Delete(&models.SeatBooking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&b).Error
	})
	if err != nil {
		return err
	}
	queue.PublishLogged(ctx, s.Publisher, queue.BookingDeleted, event)
	return nil
}

// Tables returns the tables whose seats are part of the booking.
func (s *BookingService) Tables(ctx context.Context, id uint) ([]models.Table, error) {
	db := s.DB.WithContext(ctx)
	if err := first(db, &models.Booking{}, "booking", id); err != nil {
		return nil, err
	}
	ids, err := BookingTableIDs(db, id)
	if err != nil {
		return nil, err
	}
	tables := []models.Table{}
	if len(ids) == 0 {
		return tables, nil
	}
	err = db.Where("id IN ?", ids).Order("number").Find(&tables).Error
	return tables, err
}

// Orders returns every order placed by a seat of the booking.
func (s *BookingService) Orders(ctx context.Context, id uint) ([]models.Order, error) {
	db := s.DB.WithContext(ctx)
	if err := first(db, &models.Booking{}, "booking", id); err != nil {
		return nil, err
	}
	ids, err := BookingOrderIDs(db, id)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if len(ids) == 0 {
		return orders, nil
	}
	err = db.Preload("MenuItem").Where("id IN ?", ids).Order("course, id").Find(&orders).Error
	return orders, err
}

// Restaurant returns the restaurant of the booking, or nil when no seat has
// been attached yet.
func (s *BookingService) Restaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	db := s.DB.WithContext(ctx)
	if err := first(db, &models.Booking{}, "booking", id); err != nil {
		return nil, err
	}
	rid, err := BookingRestaurantID(db, id)
	if err != nil || rid == nil {
		return nil, err
	}
	var r models.Restaurant
	if err := first(db, &r, "restaurant", *rid); err != nil {
		return nil, err
	}
	return &r, nil
}

// validateBooking checks the window and, for a stored booking, that the new
// window does not collide with other bookings at any of its seats' tables.
func validateBooking(tx *gorm.DB, b *models.Booking) error {
	verr := &utils.ValidationError{}
	if !b.Start.Before(b.End) {
		verr.Add("end", msgBookingWindow, utils.CodeInvalid)
		return verr
	}
	if b.ID == 0 {
		return nil
	}
	tableIDs, err := BookingTableIDs(tx, b.ID)
	if err != nil {
		return err
	}
	for _, tableID := range tableIDs {
		clash, err := overlappingBookingExists(tx, tableID, b.ID, b.Start, b.End)
		if err != nil {
			return err
		}
		if clash {
			verr.Add("start", msgBookingOverlap, utils.CodeUnique)
			break
		}
	}
	return verr.OrNil()
}

// overlappingBookingExists reports whether a seat of tableID is held by a
// booking other than bookingID whose window intersects [start, end). Windows
// that only touch at an end point do not overlap.
func overlappingBookingExists(tx *gorm.DB, tableID, bookingID uint, start, end time.Time) (bool, error) {
	var count int64
	err := tx.Model(&models.SeatBooking{}).
		Joins("JOIN seats ON seats.id = seat_bookings.seat_id").
		Joins("JOIN bookings ON bookings.id = seat_bookings.booking_id").
		Where("seats.table_id = ? AND seat_bookings.booking_id <> ?", tableID, bookingID).
		Where("bookings.starts_at < ? AND bookings.ends_at > ?", end.UTC(), start.UTC()).
		Count(&count).Error
	return count > 0, err
}

func bookingEvent(db *gorm.DB, b *models.Booking) (queue.BookingEvent, error) {
	event := queue.BookingEvent{
		BookingID:  b.ID,
		Start:      b.Start,
		End:        b.End,
		OccurredAt: time.Now().UTC(),
	}
	var err error
	if event.RestaurantID, err = BookingRestaurantID(db, b.ID); err != nil {
		return event, err
	}
	if event.TableIDs, err = BookingTableIDs(db, b.ID); err != nil {
		return event, err
	}
	err = db.Model(&models.SeatBooking{}).Where("booking_id = ?", b.ID).Order("seat_id").Pluck("seat_id", &event.SeatIDs).Error
	return event, err
}

func publishBookingEvent(ctx context.Context, db *gorm.DB, p queue.Publisher, routingKey string, b *models.Booking) {
	event, err := bookingEvent(db.WithContext(ctx), b)
	if err != nil {
		utils.ErrorLogger.Printf("build %s event for booking %d: %v", routingKey, b.ID, err)
		return
	}
	queue.PublishLogged(ctx, p, routingKey, event)
}
