package services

import (
	"context"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgSeatBookingRestaurant = "The tables within this Booking must all be at the same restaurant."
	msgSeatBookingUnique     = "Seat Booking with this Seat and Booking already exists."
	msgSeatBookingFaceUnique = "Seat Booking with this Booking and Face already exists."
)

type SeatBookingInput struct {
	SeatID    uint  `json:"seat_id" validate:"required"`
	BookingID uint  `json:"booking_id" validate:"required"`
	FaceID    *uint `json:"face_id"`
}

type SeatBookingFilter struct {
	BookingID       *uint
	RestaurantID    *uint
	GenderValue     *models.GenderValue
	SkinColourValue *models.SkinColourValue
	AgeCategory     *models.AgeCategory
}

type SeatBookingService struct {
	DB        *gorm.DB
	Publisher queue.Publisher
}

func NewSeatBookingService(db *gorm.DB, publisher queue.Publisher) *SeatBookingService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &SeatBookingService{DB: db, Publisher: publisher}
}

func (s *SeatBookingService) List(ctx context.Context, f SeatBookingFilter, page utils.PageRequest) (utils.Page[models.SeatBooking], error) {
	q := s.DB.WithContext(ctx).Model(&models.SeatBooking{}).Order("seat_bookings.booking_id, seat_bookings.id")
	if f.BookingID != nil {
		q = q.Where("seat_bookings.booking_id = ?", *f.BookingID)
	}
	if f.RestaurantID != nil {
		q = q.Joins("JOIN seats ON seats.id = seat_bookings.seat_id").
			Joins("JOIN tables ON tables.id = seats.table_id").
			Where("tables.restaurant_id = ?", *f.RestaurantID)
	}
	if f.GenderValue != nil || f.SkinColourValue != nil || f.AgeCategory != nil {
		q = q.Joins("JOIN faces ON faces.id = seat_bookings.face_id")
		if f.GenderValue != nil {
			q = q.Where("faces.gender_value = ?", *f.GenderValue)
		}
		if f.SkinColourValue != nil {
			q = q.Where("faces.skin_colour_value = ?", *f.SkinColourValue)
		}
		if f.AgeCategory != nil {
			q = q.Where("faces.age_category = ?", *f.AgeCategory)
		}
	}
	return utils.Paginate[models.SeatBooking](q, page)
}

func (s *SeatBookingService) Get(ctx context.Context, id uint) (*models.SeatBooking, error) {
	var sb models.SeatBooking
	db := s.DB.WithContext(ctx).Preload("Seat").Preload("Booking").Preload("Face").Preload("Orders")
	if err := first(db, &sb, "seat booking", id); err != nil {
		return nil, err
	}
	return &sb, nil
}

func (s *SeatBookingService) Create(ctx context.Context, in SeatBookingInput) (*models.SeatBooking, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	sb := models.SeatBooking{SeatID: in.SeatID, BookingID: in.BookingID, FaceID: in.FaceID}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := validateSeatBooking(tx, &sb); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&sb).Error
	})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, sb.BookingID)
	return &sb, nil
}

func (s *SeatBookingService) Update(ctx context.Context, id uint, in SeatBookingInput) (*models.SeatBooking, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var sb models.SeatBooking
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &sb, "seat booking", id); err != nil {
			return err
		}
		sb.SeatID = in.SeatID
		sb.BookingID = in.BookingID
		sb.FaceID = in.FaceID
		if err := validateSeatBooking(tx, &sb); err != nil {
			return err
		}
		if err := validateSeatBookingOrders(tx, &sb); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&sb).Error
	})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, sb.BookingID)
	return &sb, nil
}

// Delete removes the seat booking and its orders.
func (s *SeatBookingService) Delete(ctx context.Context, id uint) error {
	var sb models.SeatBooking
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &sb, "seat booking", id); err != nil {
			return err
		}
		if err := tx.Where("seat_booking_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sb).Error
	})
	if err != nil {
		return err
	}
	s.publishUpdated(ctx, sb.BookingID)
	return nil
}

func (s *SeatBookingService) publishUpdated(ctx context.Context, bookingID uint) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).First(&b, bookingID).Error; err != nil {
		utils.ErrorLogger.Printf("load booking %d for event: %v", bookingID, err)
		return
	}
	publishBookingEvent(ctx, s.DB, s.Publisher, queue.BookingUpdated, &b)
}

// validateSeatBooking enforces that every seat of a booking is at one
// restaurant and that the seat's table is free for the booking's window.
func validateSeatBooking(tx *gorm.DB, sb *models.SeatBooking) error {
	verr := &utils.ValidationError{}

	var seat models.Seat
	if err := tx.First(&seat, sb.SeatID).Error; err != nil {
		if !IsNotFound(err) {
			return err
		}
		referenceError(verr, "seat_id", sb.SeatID)
	}
	var booking models.Booking
	if err := tx.First(&booking, sb.BookingID).Error; err != nil {
		if !IsNotFound(err) {
			return err
		}
		referenceError(verr, "booking_id", sb.BookingID)
	}
	if sb.FaceID != nil {
		ok, err := exists(tx, &models.Face{}, "id = ?", *sb.FaceID)
		if err != nil {
			return err
		}
		if !ok {
			referenceError(verr, "face_id", *sb.FaceID)
		}
	}
	if verr.HasErrors() {
		return verr
	}

	taken, err := exists(tx, &models.SeatBooking{}, "seat_id = ? AND booking_id = ? AND id <> ?", sb.SeatID, sb.BookingID, sb.ID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("seat_id", msgSeatBookingUnique, utils.CodeUnique)
	}
	if sb.FaceID != nil {
		taken, err := exists(tx, &models.SeatBooking{}, "booking_id = ? AND face_id = ? AND id <> ?", sb.BookingID, *sb.FaceID, sb.ID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("face_id", msgSeatBookingFaceUnique, utils.CodeUnique)
		}
	}
	if verr.HasErrors() {
		return verr
	}

	restaurantID, err := seatRestaurantID(tx, seat.ID)
	if err != nil {
		return err
	}
	var others int64
	err = tx.Model(&models.SeatBooking{}).
		Joins("JOIN seats ON seats.id = seat_bookings.seat_id").
		Joins("JOIN tables ON tables.id = seats.table_id").
		Where("seat_bookings.booking_id = ? AND seat_bookings.id <> ?", booking.ID, sb.ID).
		Where("tables.restaurant_id <> ?", restaurantID).
		Count(&others).Error
	if err != nil {
		return err
	}
	if others > 0 {
		verr.Add("seat_id", msgSeatBookingRestaurant, utils.CodeInvalid)
		return verr
	}

	clash, err := overlappingBookingExists(tx, seat.TableID, booking.ID, booking.Start, booking.End)
	if err != nil {
		return err
	}
	if clash {
		verr.Add("seat_id", msgBookingOverlap, utils.CodeUnique)
	}
	return verr.OrNil()
}

// validateSeatBookingOrders re-checks menu availability of existing orders
// when a seat booking moves to a seat at another restaurant.
func validateSeatBookingOrders(tx *gorm.DB, sb *models.SeatBooking) error {
	restaurantID, err := seatRestaurantID(tx, sb.SeatID)
	if err != nil {
		return err
	}
	var unavailable int64
	err = tx.Model(&models.Order{}).
		Where("seat_booking_id = ?", sb.ID).
		Where("menu_item_id NOT IN (?)", tx.Table("menu_item_restaurants").
			Select("menu_item_id").
			Where("restaurant_id = ?", restaurantID)).
		Count(&unavailable).Error
	if err != nil {
		return err
	}
	if unavailable > 0 {
		return utils.NewValidationError("seat_id", msgOrderAvailability, utils.CodeInvalid)
	}
	return nil
}
