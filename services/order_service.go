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
	msgOrderAvailability = "Only menu items available at this booking's restaurant can be ordered."
	msgOrderCourse       = "Select a valid choice. That choice is not one of the available choices."
)

type OrderInput struct {
	MenuItemID    uint           `json:"menu_item_id" validate:"required"`
	SeatBookingID uint           `json:"seat_booking_id" validate:"required"`
	Course        *models.Course `json:"course" validate:"required"`
	Notes         string         `json:"notes" validate:"max=200"`
}

type OrderFilter struct {
	SeatBookingID *uint
	BookingID     *uint
	Course        *models.Course
}

type OrderService struct {
	DB        *gorm.DB
	Publisher queue.Publisher
}

func NewOrderService(db *gorm.DB, publisher queue.Publisher) *OrderService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &OrderService{DB: db, Publisher: publisher}
}

func (s *OrderService) List(ctx context.Context, f OrderFilter, page utils.PageRequest) (utils.Page[models.Order], error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{}).Preload("MenuItem").Order("orders.created_at, orders.id")
	if f.SeatBookingID != nil {
		q = q.Where("orders.seat_booking_id = ?", *f.SeatBookingID)
	}
	if f.BookingID != nil {
		q = q.Joins("JOIN seat_bookings ON seat_bookings.id = orders.seat_booking_id").
			Where("seat_bookings.booking_id = ?", *f.BookingID)
	}
	if f.Course != nil {
		q = q.Where("orders.course = ?", *f.Course)
	}
	return utils.Paginate[models.Order](q, page)
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := first(s.DB.WithContext(ctx).Preload("MenuItem").Preload("SeatBooking"), &o, "order", id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	o := models.Order{
		MenuItemID:    in.MenuItemID,
		SeatBookingID: in.SeatBookingID,
		Course:        *in.Course,
		Notes:         in.Notes,
	}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := validateOrder(tx, &o); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&o).Error; err != nil {
			return err
		}
		return tx.Preload("MenuItem").First(&o, o.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderCreated, &o)
	return &o, nil
}

func (s *OrderService) Update(ctx context.Context, id uint, in OrderInput) (*models.Order, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var o models.Order
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &o, "order", id); err != nil {
			return err
		}
		o.MenuItemID = in.MenuItemID
		o.SeatBookingID = in.SeatBookingID
		o.Course = *in.Course
		o.Notes = in.Notes
		if err := validateOrder(tx, &o); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&o).Error; err != nil {
			return err
		}
		return tx.Preload("MenuItem").First(&o, o.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderUpdated, &o)
	return &o, nil
}

func (s *OrderService) Delete(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx.Preload("MenuItem"), &o, "order", id); err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderDeleted, &o)
	return &o, nil
}

func (s *OrderService) publish(ctx context.Context, routingKey string, o *models.Order) {
	event := queue.OrderEvent{
		OrderID:       o.ID,
		SeatBookingID: o.SeatBookingID,
		MenuItemID:    o.MenuItemID,
		Course:        o.Course.String(),
		Notes:         o.Notes,
		OccurredAt:    time.Now().UTC(),
	}
	if o.MenuItem != nil {
		event.MenuItemName = o.MenuItem.Name
	}
	var sb models.SeatBooking
	if err := s.DB.WithContext(ctx).Select("id", "booking_id").First(&sb, o.SeatBookingID).Error; err == nil {
		event.BookingID = sb.BookingID
	}
	queue.PublishLogged(ctx, s.Publisher, routingKey, event)
}

// validateOrder enforces that the ordered menu item is available at the
// restaurant of the seat booking's table.
func validateOrder(tx *gorm.DB, o *models.Order) error {
	verr := &utils.ValidationError{}
	if !o.Course.Valid() {
		verr.Add("course", msgOrderCourse, utils.CodeInvalid)
	}

	var sb models.SeatBooking
	if err := tx.First(&sb, o.SeatBookingID).Error; err != nil {
		if !IsNotFound(err) {
			return err
		}
		referenceError(verr, "seat_booking_id", o.SeatBookingID)
	}
	ok, err := exists(tx, &models.MenuItem{}, "id = ?", o.MenuItemID)
	if err != nil {
		return err
	}
	if !ok {
		referenceError(verr, "menu_item_id", o.MenuItemID)
	}
	if verr.HasErrors() {
		return verr
	}

	restaurantID, err := seatRestaurantID(tx, sb.SeatID)
	if err != nil {
		return err
	}
	available, err := menuItemAvailableAt(tx, o.MenuItemID, restaurantID)
	if err != nil {
		return err
	}
	if !available {
		verr.Add("menu_item_id", msgOrderAvailability, utils.CodeInvalid)
	}
	return verr.OrNil()
}

func menuItemAvailableAt(tx *gorm.DB, menuItemID, restaurantID uint) (bool, error) {
	var count int64
	err := tx.Table("menu_item_restaurants").
		Where("menu_item_id = ? AND restaurant_id = ?", menuItemID, restaurantID).
		Count(&count).Error
	return count > 0, err
}
