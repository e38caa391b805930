package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgContainerSelf          = "The parent container table cannot be this own table."
	msgContainerRestaurant    = "Only tables at the same restaurant can be used as a parent container table."
	msgContainerSubTable      = "The parent container table cannot be a sub-table of this table."
	msgTableNumberUnique      = "A table with that number already exists at this restaurant."
	msgTableMoveWithSubTables = "A table that contains sub-tables cannot be moved to another restaurant."
	msgTableMoveBooked        = "A table whose seats have bookings cannot be moved to another restaurant."
)

type TableInput struct {
	RestaurantID     uint  `json:"restaurant_id" validate:"required"`
	Number           uint  `json:"number" validate:"min=1"`
	ContainerTableID *uint `json:"container_table_id"`
}

type TableFilter struct {
	RestaurantID *uint
	IsSubTable   *bool
}

// TableDetail is a table with its derived values.
type TableDetail struct {
	models.Table
	TrueNumber uint `json:"true_number"`
}

type TableService struct {
	DB        *gorm.DB
	Publisher queue.Publisher
}

func NewTableService(db *gorm.DB, publisher queue.Publisher) *TableService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &TableService{DB: db, Publisher: publisher}
}

func (s *TableService) List(ctx context.Context, f TableFilter, page utils.PageRequest) (utils.Page[models.Table], error) {
	q := s.DB.WithContext(ctx).Model(&models.Table{}).Order("restaurant_id, number")
	if f.RestaurantID != nil {
		q = q.Where("restaurant_id = ?", *f.RestaurantID)
	}
	if f.IsSubTable != nil {
		if *f.IsSubTable {
			q = q.Where("container_table_id IS NOT NULL")
		} else {
			q = q.Where("container_table_id IS NULL")
		}
	}
	return utils.Paginate[models.Table](q, page)
}

func (s *TableService) Get(ctx context.Context, id uint) (*TableDetail, error) {
	db := s.DB.WithContext(ctx)
	var t models.Table
	if err := first(db, &t, "table", id); err != nil {
		return nil, err
	}
	n, err := TrueNumber(db, &t)
	if err != nil {
		return nil, err
	}
	return &TableDetail{Table: t, TrueNumber: n}, nil
}

func (s *TableService) TrueNumber(ctx context.Context, id uint) (uint, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return d.TrueNumber, nil
}

func (s *TableService) Create(ctx context.Context, in TableInput) (*models.Table, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	t := models.Table{
		RestaurantID:     in.RestaurantID,
		Number:           in.Number,
		ContainerTableID: in.ContainerTableID,
	}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := validateTable(tx, &t, nil); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table %d created at restaurant %d", t.Number, t.RestaurantID)
	return &t, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in TableInput) (*models.Table, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var t models.Table
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &t, "table", id); err != nil {
			return err
		}
		previous := t
		t.RestaurantID = in.RestaurantID
		t.Number = in.Number
		t.ContainerTableID = in.ContainerTableID
		if err := validateTable(tx, &t, &previous); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the table and its seats. Sub-tables are detached and become
// root tables. Deletion is refused while any seat of the table is booked.
func (s *TableService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var t models.Table
		if err := first(tx, &t, "table", id); err != nil {
			return err
		}
		booked, err := exists(tx, &models.SeatBooking{},
			"seat_id IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&models.Seat{}).Select("id").Where("table_id = ?", id))
		if err != nil {
			return err
		}
		if booked {
			return fmt.Errorf("table %d: %w", id, utils.ErrProtected)
		}
		if err := tx.Model(&models.Table{}).Where("container_table_id = ?", id).Update("container_table_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", id).Delete(&models.Seat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
}

// Seats returns the effective seats of the table.
func (s *TableService) Seats(ctx context.Context, id uint) ([]models.Seat, error) {
	db := s.DB.WithContext(ctx)
	seats, err := EffectiveSeats(db, id)
	if IsNotFound(err) {
		return nil, notFound("table", id)
	}
	return seats, err
}

// Bookings returns the bookings holding any effective seat of the table.
func (s *TableService) Bookings(ctx context.Context, id uint) ([]models.Booking, error) {
	db := s.DB.WithContext(ctx)
	ids, err := EffectiveBookingIDs(db, id)
	if IsNotFound(err) {
		return nil, notFound("table", id)
	}
	if err != nil {
		return nil, err
	}
	bookings := []models.Booking{}
	if len(ids) == 0 {
		return bookings, nil
	}
	err = db.Where("id IN ?", ids).Order("starts_at, id").Find(&bookings).Error
	return bookings, err
}

// CreateBooking books every effective seat of the table for [start, end) in
// one transaction.
func (s *TableService) CreateBooking(ctx context.Context, id uint, in BookingInput) (*models.Booking, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var booking models.Booking
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		seatIDs, err := EffectiveSeatIDs(tx, id)
		if IsNotFound(err) {
			return notFound("table", id)
		}
		if err != nil {
			return err
		}
		if len(seatIDs) == 0 {
			return utils.NewValidationError("table", "This table has no seats to book.", utils.CodeInvalid)
		}

		booking = models.Booking{Start: in.Start.UTC(), End: in.End.UTC()}
		if err := validateBooking(tx, &booking); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return err
		}
		for _, seatID := range seatIDs {
			sb := models.SeatBooking{SeatID: seatID, BookingID: booking.ID}
			if err := validateSeatBooking(tx, &sb); err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Create(&sb).Error; err != nil {
				return err
			}
		}
		return tx.Preload("SeatBookings").First(&booking, booking.ID).Error
	})
	if err != nil {
		return nil, err
	}
	publishBookingEvent(ctx, s.DB, s.Publisher, queue.BookingCreated, &booking)
	return &booking, nil
}

// validateTable checks the table against persisted state. previous is the
// stored row when updating.
func validateTable(tx *gorm.DB, t *models.Table, previous *models.Table) error {
	verr := &utils.ValidationError{}

	ok, err := exists(tx, &models.Restaurant{}, "id = ?", t.RestaurantID)
	if err != nil {
		return err
	}
	if !ok {
		referenceError(verr, "restaurant_id", t.RestaurantID)
		return verr
	}

	taken, err := exists(tx, &models.Table{}, "restaurant_id = ? AND number = ? AND id <> ?", t.RestaurantID, t.Number, t.ID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("number", msgTableNumberUnique, utils.CodeUnique)
	}

	if previous != nil && previous.RestaurantID != t.RestaurantID {
		hasSubs, err := exists(tx, &models.Table{}, "container_table_id = ?", t.ID)
		if err != nil {
			return err
		}
		if hasSubs {
			verr.Add("restaurant_id", msgTableMoveWithSubTables, utils.CodeInvalid)
		}
		booked, err := exists(tx, &models.SeatBooking{}, "seat_id IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&models.Seat{}).Select("id").Where("table_id = ?", t.ID))
		if err != nil {
			return err
		}
		if booked {
			verr.Add("restaurant_id", msgTableMoveBooked, utils.CodeInvalid)
		}
	}

	if t.ContainerTableID != nil {
		if err := validateContainerTable(tx, t, verr); err != nil {
			return err
		}
	}
	return verr.OrNil()
}

// validateContainerTable rejects a container that is the table itself, sits
// at another restaurant or is already one of the table's sub-tables.
func validateContainerTable(tx *gorm.DB, t *models.Table, verr *utils.ValidationError) error {
	containerID := *t.ContainerTableID

	if t.ID != 0 && containerID == t.ID {
		verr.Add("container_table_id", msgContainerSelf, utils.CodeInvalid)
		return nil
	}

	var container models.Table
	if err := tx.Select("id", "restaurant_id").First(&container, containerID).Error; err != nil {
		if IsNotFound(err) {
			referenceError(verr, "container_table_id", containerID)
			return nil
		}
		return err
	}
	if container.RestaurantID != t.RestaurantID {
		verr.Add("container_table_id", msgContainerRestaurant, utils.CodeInvalid)
		return nil
	}

	if t.ID == 0 {
		return nil
	}
	subIDs, err := SubTableIDs(tx, t.ID)
	if err != nil {
		return err
	}
	for _, sub := range subIDs {
		if sub == containerID {
			verr.Add("container_table_id", msgContainerSubTable, utils.CodeInvalid)
			break
		}
	}
	return nil
}
