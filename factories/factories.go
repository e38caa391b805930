// Package factories creates valid test records through the services, drawing
// names and other free text from a pool of test values.
package factories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"gorm.io/gorm"
)

// TestDataEnv names the environment variable holding the path of a JSON pool.
const TestDataEnv = "TEST_DATA_JSON_FILE_PATH"

// DefaultPassword is set on every user created by a Factory unless overridden.
const DefaultPassword = "Kx!7mQ#pZ2vw"

// Pool maps model name to field name to the values handed out for that field.
type Pool map[string]map[string][]string

// NotEnoughTestDataError is returned once every value of a pool field has
// been used.
type NotEnoughTestDataError struct {
	Model string
	Field string
}

func (e *NotEnoughTestDataError) Error() string {
	return fmt.Sprintf("not enough test data values were available to generate one for %s.%s", e.Model, e.Field)
}

// LoadPool reads a pool from a JSON file shaped {"model": {"field": [...]}}.
func LoadPool(path string) (Pool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test data %s: %w", path, err)
	}
	var pool Pool
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, fmt.Errorf("parse test data %s: %w", path, err)
	}
	return pool, nil
}

// PoolFromEnv loads the pool named by TEST_DATA_JSON_FILE_PATH, falling back
// to DefaultPool when the variable is unset.
func PoolFromEnv() (Pool, error) {
	path := os.Getenv(TestDataEnv)
	if path == "" {
		return DefaultPool(), nil
	}
	return LoadPool(path)
}

// Factory is scoped to one test. It remembers which pool values it has
// handed out and which table numbers and seat indexes it has used, so two
// factories never share state.
type Factory struct {
	DB      *gorm.DB
	Fetcher *StubImageFetcher

	pool         Pool
	used         map[string]int
	tableNumbers map[uint]uint
	seatIndexes  map[uint]uint

	users       *services.UserService
	restaurants *services.RestaurantService
	tables      *services.TableService
	seats       *services.SeatService
	bookings    *services.BookingService
	seatBooks   *services.SeatBookingService
	menuItems   *services.MenuItemService
	orders      *services.OrderService
	faces       *services.FaceService
	employees   *services.EmployeeService
}

// New builds a Factory over db using pool. The services it drives publish
// nothing and fetch face images from an in-memory stub.
func New(db *gorm.DB, pool Pool) *Factory {
	fetcher := &StubImageFetcher{}
	return &Factory{
		DB:           db,
		Fetcher:      fetcher,
		pool:         pool,
		used:         map[string]int{},
		tableNumbers: map[uint]uint{},
		seatIndexes:  map[uint]uint{},
		users:        services.NewUserService(db, 0.627),
		restaurants:  services.NewRestaurantService(db),
		tables:       services.NewTableService(db, nil),
		seats:        services.NewSeatService(db),
		bookings:     services.NewBookingService(db, nil),
		seatBooks:    services.NewSeatBookingService(db, nil),
		menuItems:    services.NewMenuItemService(db),
		orders:       services.NewOrderService(db, nil),
		faces:        services.NewFaceService(db, fetcher),
		employees:    services.NewEmployeeService(db, ""),
	}
}

// Value returns the next unused pool value for model.field.
func (f *Factory) Value(model, field string) (string, error) {
	key := model + "." + field
	values := f.pool[model][field]
	i := f.used[key]
	if i >= len(values) {
		return "", &NotEnoughTestDataError{Model: model, Field: field}
	}
	f.used[key] = i + 1
	return values[i], nil
}

// snapshot and restore let a failed create give its pool values back.
func (f *Factory) snapshot() map[string]int {
	saved := make(map[string]int, len(f.used))
	for k, v := range f.used {
		saved[k] = v
	}
	return saved
}

func (f *Factory) restore(saved map[string]int) {
	f.used = saved
}

// User creates an active, non-staff user with pool names. edit may change
// the input before it is saved.
func (f *Factory) User(ctx context.Context, edit ...func(*services.UserCreateInput)) (*models.User, error) {
	saved := f.snapshot()
	first, err := f.Value("user", "first_name")
	if err != nil {
		return nil, err
	}
	last, err := f.Value("user", "last_name")
	if err != nil {
		f.restore(saved)
		return nil, err
	}
	in := services.UserCreateInput{
		UserInput: services.UserInput{FirstName: first, LastName: last},
		Password:  DefaultPassword,
	}
	for _, fn := range edit {
		fn(&in)
	}
	u, err := f.users.Create(ctx, in)
	if err != nil {
		f.restore(saved)
		return nil, err
	}
	return u, nil
}

func (f *Factory) Restaurant(ctx context.Context) (*models.Restaurant, error) {
	saved := f.snapshot()
	name, err := f.Value("restaurant", "name")
	if err != nil {
		return nil, err
	}
	r, err := f.restaurants.Create(ctx, services.RestaurantInput{Name: name})
	if err != nil {
		f.restore(saved)
		return nil, err
	}
	return r, nil
}

// Employee creates a user and assigns it to restaurantID.
func (f *Factory) Employee(ctx context.Context, restaurantID uint) (*models.User, error) {
	u, err := f.User(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := f.employees.AddEmployees(ctx, restaurantID, []uint{u.ID}); err != nil {
		return nil, err
	}
	return u, nil
}

// Table creates a table at restaurantID with the next free number. A non nil
// container makes it a sub-table.
func (f *Factory) Table(ctx context.Context, restaurantID uint, container *models.Table) (*models.Table, error) {
	number := f.tableNumbers[restaurantID] + 1
	in := services.TableInput{RestaurantID: restaurantID, Number: number}
	if container != nil {
		id := container.ID
		in.ContainerTableID = &id
	}
	t, err := f.tables.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	f.tableNumbers[restaurantID] = number
	return t, nil
}

// Seat creates a seat at tableID with the next free location index.
func (f *Factory) Seat(ctx context.Context, tableID uint) (*models.Seat, error) {
	index := f.seatIndexes[tableID]
	seat, err := f.seats.Create(ctx, services.SeatInput{TableID: tableID, LocationIndex: &index})
	if err != nil {
		return nil, err
	}
	f.seatIndexes[tableID] = index + 1
	return seat, nil
}

// Booking creates a booking over [start, start+length).
func (f *Factory) Booking(ctx context.Context, start time.Time, length time.Duration) (*models.Booking, error) {
	return f.bookings.Create(ctx, services.BookingInput{Start: start, End: start.Add(length)})
}

func (f *Factory) SeatBooking(ctx context.Context, seatID, bookingID uint, faceID *uint) (*models.SeatBooking, error) {
	return f.seatBooks.Create(ctx, services.SeatBookingInput{SeatID: seatID, BookingID: bookingID, FaceID: faceID})
}

// MenuItem creates a menu item available at the given restaurants.
func (f *Factory) MenuItem(ctx context.Context, restaurantIDs ...uint) (*models.MenuItem, error) {
	saved := f.snapshot()
	name, err := f.Value("menu_item", "name")
	if err != nil {
		return nil, err
	}
	description, err := f.Value("menu_item", "description")
	var short *NotEnoughTestDataError
	if errors.As(err, &short) {
		description, err = "", nil
	}
	if err != nil {
		f.restore(saved)
		return nil, err
	}
	m, err := f.menuItems.Create(ctx, services.MenuItemInput{
		Name:                     name,
		Description:              description,
		AvailableAtRestaurantIDs: restaurantIDs,
	})
	if err != nil {
		f.restore(saved)
		return nil, err
	}
	return m, nil
}

func (f *Factory) Order(ctx context.Context, seatBookingID, menuItemID uint, course models.Course) (*models.Order, error) {
	return f.orders.Create(ctx, services.OrderInput{
		MenuItemID:    menuItemID,
		SeatBookingID: seatBookingID,
		Course:        &course,
	})
}

// Face creates a face from the next pool image URL. The stub fetcher returns
// distinct bytes for distinct URLs.
func (f *Factory) Face(ctx context.Context, gender models.GenderValue, skin models.SkinColourValue, age models.AgeCategory) (*models.Face, error) {
	saved := f.snapshot()
	url, err := f.Value("face", "image_url")
	if err != nil {
		return nil, err
	}
	face, err := f.faces.Create(ctx, services.FaceInput{
		ImageURL:        url,
		GenderValue:     &gender,
		SkinColourValue: &skin,
		AgeCategory:     &age,
	})
	if err != nil {
		f.restore(saved)
		return nil, err
	}
	return face, nil
}

// BookedSeat is the common fixture of a restaurant with one table, one seat
// and a booking holding that seat.
type BookedSeat struct {
	Restaurant  *models.Restaurant
	Table       *models.Table
	Seat        *models.Seat
	Booking     *models.Booking
	SeatBooking *models.SeatBooking
}

func (f *Factory) BookedSeat(ctx context.Context, start time.Time, length time.Duration) (*BookedSeat, error) {
	r, err := f.Restaurant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := f.Table(ctx, r.ID, nil)
	if err != nil {
		return nil, err
	}
	seat, err := f.Seat(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	b, err := f.Booking(ctx, start, length)
	if err != nil {
		return nil, err
	}
	sb, err := f.SeatBooking(ctx, seat.ID, b.ID, nil)
	if err != nil {
		return nil, err
	}
	return &BookedSeat{Restaurant: r, Table: t, Seat: seat, Booking: b, SeatBooking: sb}, nil
}
