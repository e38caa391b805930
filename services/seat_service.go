package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgSeatLocationUnique = "A seat with that location index already exists at this table."
	msgSeatMoveBooked     = "A seat that has bookings cannot be moved to another table."
)

type SeatInput struct {
	TableID       uint  `json:"table_id" validate:"required"`
	LocationIndex *uint `json:"location_index" validate:"required"`
}

type SeatFilter struct {
	TableID      *uint
	RestaurantID *uint
}

type SeatService struct {
	DB *gorm.DB
}

func NewSeatService(db *gorm.DB) *SeatService {
	return &SeatService{DB: db}
}

func (s *SeatService) List(ctx context.Context, f SeatFilter, page utils.PageRequest) (utils.Page[models.Seat], error) {
	q := s.DB.WithContext(ctx).Model(&models.Seat{}).Order("seats.table_id, seats.location_index")
	if f.TableID != nil {
		q = q.Where("seats.table_id = ?", *f.TableID)
	}
	if f.RestaurantID != nil {
		q = q.Joins("JOIN tables ON tables.id = seats.table_id").Where("tables.restaurant_id = ?", *f.RestaurantID)
	}
	return utils.Paginate[models.Seat](q, page)
}

func (s *SeatService) Get(ctx context.Context, id uint) (*models.Seat, error) {
	var seat models.Seat
	if err := first(s.DB.WithContext(ctx), &seat, "seat", id); err != nil {
		return nil, err
	}
	return &seat, nil
}

func (s *SeatService) Create(ctx context.Context, in SeatInput) (*models.Seat, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	seat := models.Seat{TableID: in.TableID, LocationIndex: *in.LocationIndex}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := validateSeat(tx, &seat); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&seat).Error
	})
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (s *SeatService) Update(ctx context.Context, id uint, in SeatInput) (*models.Seat, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var seat models.Seat
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &seat, "seat", id); err != nil {
			return err
		}
		if seat.TableID != in.TableID {
			booked, err := exists(tx, &models.SeatBooking{}, "seat_id = ?", id)
			if err != nil {
				return err
			}
			if booked {
				return utils.NewValidationError("table_id", msgSeatMoveBooked, utils.CodeInvalid)
			}
		}
		seat.TableID = in.TableID
		seat.LocationIndex = *in.LocationIndex
		if err := validateSeat(tx, &seat); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&seat).Error
	})
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// Delete is refused while the seat is held by any seat booking.
func (s *SeatService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var seat models.Seat
		if err := first(tx, &seat, "seat", id); err != nil {
			return err
		}
		booked, err := exists(tx, &models.SeatBooking{}, "seat_id = ?", id)
		if err != nil {
			return err
		}
		if booked {
			return fmt.Errorf("seat %d: %w", id, utils.ErrProtected)
		}
		return tx.Delete(&seat).Error
	})
}

func validateSeat(tx *gorm.DB, seat *models.Seat) error {
	verr := &utils.ValidationError{}
	ok, err := exists(tx, &models.Table{}, "id = ?", seat.TableID)
	if err != nil {
		return err
	}
	if !ok {
		referenceError(verr, "table_id", seat.TableID)
		return verr
	}
	taken, err := exists(tx, &models.Seat{}, "table_id = ? AND location_index = ? AND id <> ?", seat.TableID, seat.LocationIndex, seat.ID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("location_index", msgSeatLocationUnique, utils.CodeUnique)
	}
	return verr.OrNil()
}
