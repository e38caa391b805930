package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/config"
	"github.com/yeremiapane/smartserve/factories"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

// namesakes creates two users called Amelia Smith.
func namesakes(t *testing.T, f *factories.Factory) (*models.User, *models.User) {
	t.Helper()
	rename := func(in *services.UserCreateInput) {
		in.FirstName = "Amelia"
		in.LastName = "Smith"
	}
	u1, err := f.User(ctx, rename)
	require.NoError(t, err)
	u2, err := f.User(ctx, rename)
	require.NoError(t, err)
	return u1, u2
}

func TestEmployeeNameUniquePerRestaurant(t *testing.T) {
	policies := []string{
		config.EmployeePolicyRejectBeforeAdd,
		config.EmployeePolicyRemoveAfterAdd,
		config.EmployeePolicyRaiseOnAdd,
	}
	for _, policy := range policies {
		t.Run(policy, func(t *testing.T) {
			db, f := setup(t)
			employees := services.NewEmployeeService(db, policy)
			r, err := f.Restaurant(ctx)
			require.NoError(t, err)
			u1, u2 := namesakes(t, f)

			res, err := employees.AddEmployees(ctx, r.ID, []uint{u1.ID})
			require.NoError(t, err)
			assert.Equal(t, []services.Assignment{{RestaurantID: r.ID, UserID: u1.ID}}, res.Added)

			res, err = employees.AddEmployees(ctx, r.ID, []uint{u2.ID})
			switch policy {
			case config.EmployeePolicyRejectBeforeAdd:
				requireFieldError(t, err, "first_name", utils.CodeUnique)
				requireFieldError(t, err, "last_name", utils.CodeUnique)
			case config.EmployeePolicyRemoveAfterAdd:
				require.NoError(t, err)
				assert.Empty(t, res.Added)
				assert.Equal(t, []services.Assignment{{RestaurantID: r.ID, UserID: u2.ID}}, res.Rejected)
			case config.EmployeePolicyRaiseOnAdd:
				assert.ErrorIs(t, err, utils.ErrIntegrity)
			}

			staff, err := employees.Employees(ctx, r.ID)
			require.NoError(t, err)
			require.Len(t, staff, 1)
			assert.Equal(t, u1.ID, staff[0].ID)
		})
	}
}

func TestEmployeeNamesakesAtDifferentRestaurants(t *testing.T) {
	db, f := setup(t)
	employees := services.NewEmployeeService(db, "")
	r1, err := f.Restaurant(ctx)
	require.NoError(t, err)
	r2, err := f.Restaurant(ctx)
	require.NoError(t, err)
	u1, u2 := namesakes(t, f)

	_, err = employees.AddEmployees(ctx, r1.ID, []uint{u1.ID})
	require.NoError(t, err)
	_, err = employees.AddEmployees(ctx, r2.ID, []uint{u2.ID})
	require.NoError(t, err)
}

func TestEmployeeBatchFirstWins(t *testing.T) {
	db, f := setup(t)
	employees := services.NewEmployeeService(db, config.EmployeePolicyRemoveAfterAdd)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	u1, u2 := namesakes(t, f)

	res, err := employees.AddEmployees(ctx, r.ID, []uint{u2.ID, u1.ID})
	require.NoError(t, err)
	assert.Equal(t, []services.Assignment{{RestaurantID: r.ID, UserID: u2.ID}}, res.Added)
	assert.Equal(t, []services.Assignment{{RestaurantID: r.ID, UserID: u1.ID}}, res.Rejected)

	// Under the default policy the whole batch is refused.
	r2, err := f.Restaurant(ctx)
	require.NoError(t, err)
	_, err = services.NewEmployeeService(db, "").AddEmployees(ctx, r2.ID, []uint{u1.ID, u2.ID})
	requireFieldError(t, err, "first_name", utils.CodeUnique)
	staff, err := employees.Employees(ctx, r2.ID)
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestAddEmployeesUnknownUser(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	_, err = services.NewEmployeeService(db, "").AddEmployees(ctx, r.ID, []uint{4242})
	requireFieldError(t, err, "user_ids", utils.CodeInvalid)
}

func TestRemoveEmployee(t *testing.T) {
	db, f := setup(t)
	employees := services.NewEmployeeService(db, "")
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	u, err := f.Employee(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, employees.RemoveEmployee(ctx, r.ID, u.ID))
	err = employees.RemoveEmployee(ctx, r.ID, u.ID)
	assert.True(t, services.IsNotFound(err))

	// The user itself is kept.
	_, err = services.NewUserService(db, 0.627).Get(ctx, u.ID)
	assert.NoError(t, err)
}

func TestSetUserRestaurants(t *testing.T) {
	db, f := setup(t)
	employees := services.NewEmployeeService(db, "")
	r1, err := f.Restaurant(ctx)
	require.NoError(t, err)
	r2, err := f.Restaurant(ctx)
	require.NoError(t, err)
	r3, err := f.Restaurant(ctx)
	require.NoError(t, err)
	u, err := f.Employee(ctx, r1.ID)
	require.NoError(t, err)

	res, err := employees.SetUserRestaurants(ctx, u.ID, []uint{r2.ID, r3.ID})
	require.NoError(t, err)
	assert.Len(t, res.Added, 2)

	got, err := services.NewUserService(db, 0.627).Get(ctx, u.ID)
	require.NoError(t, err)
	ids := make([]uint, 0, len(got.Restaurants))
	for _, r := range got.Restaurants {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []uint{r2.ID, r3.ID}, ids)

	_, err = employees.SetUserRestaurants(ctx, u.ID, nil)
	require.NoError(t, err)
	got, err = services.NewUserService(db, 0.627).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Restaurants)
}

func TestRenameCollidesWithColleague(t *testing.T) {
	db, f := setup(t)
	users := services.NewUserService(db, 0.627)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	colleague, err := f.Employee(ctx, r.ID)
	require.NoError(t, err)
	u, err := f.Employee(ctx, r.ID)
	require.NoError(t, err)

	_, err = users.Update(ctx, u.ID, services.UserInput{FirstName: colleague.FirstName, LastName: colleague.LastName})
	requireFieldError(t, err, "first_name", utils.CodeUnique)

	// A user elsewhere may take the same name.
	outsider, err := f.User(ctx)
	require.NoError(t, err)
	_, err = users.Update(ctx, outsider.ID, services.UserInput{FirstName: colleague.FirstName, LastName: colleague.LastName})
	assert.NoError(t, err)
}
