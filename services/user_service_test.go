package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/factories"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

func TestCreateUserGeneratesEmployeeID(t *testing.T) {
	db, _ := setup(t)
	users := services.NewUserService(db, 0.627)

	u, err := users.Create(ctx, services.UserCreateInput{
		UserInput: services.UserInput{FirstName: "Grace", LastName: "Hopper"},
		Password:  factories.DefaultPassword,
	})
	require.NoError(t, err)
	assert.Len(t, u.EmployeeID, 6)
	assert.Regexp(t, `^[0-9]{6}$`, u.EmployeeID)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.NotEqual(t, factories.DefaultPassword, u.Password)
	assert.True(t, utils.VerifyPassword(u.Password, factories.DefaultPassword))

	found, err := users.GetByEmployeeID(ctx, u.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestNewEmployeeIDIsSixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Regexp(t, `^[0-9]{6}$`, services.NewEmployeeID())
	}
}

func TestEmployeeIDIsUnique(t *testing.T) {
	db, f := setup(t)
	existing, err := f.User(ctx)
	require.NoError(t, err)

	_, err = f.User(ctx, func(in *services.UserCreateInput) { in.EmployeeID = existing.EmployeeID })
	requireFieldError(t, err, "employee_id", utils.CodeUnique)

	_, err = services.NewUserService(db, 0.627).Create(ctx, services.UserCreateInput{
		UserInput: services.UserInput{EmployeeID: "12ab56", FirstName: "Ada", LastName: "Byron"},
		Password:  factories.DefaultPassword,
	})
	requireFieldError(t, err, "employee_id", utils.CodeInvalid)
}

func TestPasswordRules(t *testing.T) {
	db, _ := setup(t)
	users := services.NewUserService(db, 0.627)
	cases := map[string]string{
		"too short":        "Ab1!",
		"too common":       "password123",
		"entirely numeric": "4815162342",
		"like the name":    "Wilhelmina1",
	}
	for name, password := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := users.Create(ctx, services.UserCreateInput{
				UserInput: services.UserInput{FirstName: "Wilhelmina", LastName: "Bright"},
				Password:  password,
			})
			requireFieldError(t, err, "password", utils.CodePassword)
		})
	}
}

func TestSuperuserIsStaff(t *testing.T) {
	_, f := setup(t)
	u, err := f.User(ctx, func(in *services.UserCreateInput) { in.IsSuperuser = true })
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsStaff)
}

func TestEnsureSuperuserIsIdempotent(t *testing.T) {
	db, _ := setup(t)
	users := services.NewUserService(db, 0.627)

	u, created, err := users.EnsureSuperuser(ctx, "100001", "Root", "Admin", factories.DefaultPassword)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsSuperuser)

	again, created, err := users.EnsureSuperuser(ctx, "100001", "Root", "Admin", factories.DefaultPassword)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}

func TestSetPasswordRevokesTokens(t *testing.T) {
	db, f := setup(t)
	u, err := f.User(ctx)
	require.NoError(t, err)
	auth := services.NewAuthService(db, time.Hour, time.Minute)
	_, err = auth.Login(ctx, u.EmployeeID, factories.DefaultPassword)
	require.NoError(t, err)

	users := services.NewUserService(db, 0.627)
	err = users.SetPassword(ctx, u.ID, "short")
	requireFieldError(t, err, "password", utils.CodePassword)

	require.NoError(t, users.SetPassword(ctx, u.ID, "N3w-Secr3t-Phrase"))
	var tokens int64
	require.NoError(t, db.Model(&models.AuthToken{}).Where("user_id = ?", u.ID).Count(&tokens).Error)
	assert.Zero(t, tokens)

	_, err = auth.Login(ctx, u.EmployeeID, factories.DefaultPassword)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = auth.Login(ctx, u.EmployeeID, "N3w-Secr3t-Phrase")
	assert.NoError(t, err)
}

func TestDeleteUserClearsAssignments(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	u, err := f.Employee(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, services.NewUserService(db, 0.627).Delete(ctx, u.ID))
	staff, err := services.NewEmployeeService(db, "").Employees(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestListUsersByRestaurant(t *testing.T) {
	db, f := setup(t)
	r, err := f.Restaurant(ctx)
	require.NoError(t, err)
	employee, err := f.Employee(ctx, r.ID)
	require.NoError(t, err)
	_, err = f.User(ctx)
	require.NoError(t, err)

	page, err := services.NewUserService(db, 0.627).List(ctx, services.UserFilter{RestaurantID: &r.ID}, utils.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, employee.ID, page.Items[0].ID)
	assert.EqualValues(t, 1, page.Total)
}
