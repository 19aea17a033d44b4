package services

import (
	"context"
	"testing"

	"salonpos-backend/config"
	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, zap.NewNop())
	ctx := context.Background()

	user, err := svc.Create(ctx, f.identity(f.manager), CreateUserInput{
		Email:    "New.Stylist@Salon.pe",
		Password: "password123",
		Name:     "Nadia",
		Role:     models.RoleStylist,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.stylist@salon.pe", user.Email)
	assert.Equal(t, f.shop.ID, user.ShopID)
	assert.True(t, utils.CheckPasswordHash("password123", user.Password))

	_, err = svc.Create(ctx, f.identity(f.manager), CreateUserInput{
		Email: "new.stylist@salon.pe", Password: "password123", Name: "Dup", Role: models.RoleStylist,
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(ctx, f.identity(f.cashier), CreateUserInput{
		Email: "x@salon.pe", Password: "password123", Name: "X", Role: models.RoleStylist,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(ctx, f.identity(f.manager), CreateUserInput{
		Email: "boss@salon.pe", Password: "password123", Name: "Boss", Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(ctx, f.identity(f.manager), CreateUserInput{
		Email: "y@salon.pe", Password: "password123", Name: "Y", Role: "Janitor",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdminCreatesUserInAnotherShop(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, zap.NewNop())
	ctx := context.Background()
	branch := models.Shop{Name: "Branch"}
	require.NoError(t, f.db.Create(&branch).Error)

	admin := f.identity(f.manager)
	admin.Role = models.RoleAdmin
	user, err := svc.Create(ctx, admin, CreateUserInput{
		Email: "op@branch.pe", Password: "password123", Name: "Op", Role: models.RoleOperator, ShopID: &branch.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, branch.ID, user.ShopID)

	_, err = svc.Create(ctx, f.identity(f.manager), CreateUserInput{
		Email: "op2@branch.pe", Password: "password123", Name: "Op2", Role: models.RoleOperator, ShopID: &branch.ID,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	missing := uuid.New()
	_, err = svc.Create(ctx, admin, CreateUserInput{
		Email: "op3@nowhere.pe", Password: "password123", Name: "Op3", Role: models.RoleOperator, ShopID: &missing,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, zap.NewNop())
	ctx := context.Background()

	name := "Carla M."
	password := "brand-new-pass"
	updated, err := svc.Update(ctx, f.identity(f.cashier), f.cashier.ID, UpdateUserInput{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Carla M.", updated.Name)
	assert.True(t, utils.CheckPasswordHash(password, updated.Password))

	role := models.RoleManager
	_, err = svc.Update(ctx, f.identity(f.cashier), f.cashier.ID, UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Update(ctx, f.identity(f.cashier), f.stylist.ID, UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	inactive := false
	updated, err = svc.Update(ctx, f.identity(f.manager), f.stylist.ID, UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	email := f.operator.Email
	_, err = svc.Update(ctx, f.identity(f.manager), f.cashier.ID, UpdateUserInput{Email: &email})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Update(ctx, f.identity(f.manager), uuid.New(), UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerCannotEditAdmin(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, zap.NewNop())
	ctx := context.Background()

	hash, err := utils.HashPassword("admin-original")
	require.NoError(t, err)
	admin := models.User{Email: "root@salon.pe", Password: hash, Name: "Root", Role: models.RoleAdmin, ShopID: f.shop.ID, IsActive: true}
	require.NoError(t, f.db.Create(&admin).Error)

	password := "managerowns1"
	demoted := models.RoleStylist
	_, err = svc.Update(ctx, f.identity(f.manager), admin.ID, UpdateUserInput{Password: &password, Role: &demoted})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stored, err := svc.GetByID(ctx, f.shop.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.True(t, utils.CheckPasswordHash("admin-original", stored.Password))

	name := "Root Admin"
	updated, err := svc.Update(ctx, f.identity(admin), admin.ID, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Root Admin", updated.Name)
}

func TestListByRole(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, zap.NewNop())
	ctx := context.Background()

	cashiers, err := svc.ListByRole(ctx, f.shop.ID, models.RoleCashier, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f.cashier.ID, f.manager.ID}, userIDs(cashiers))

	cashiers, err = svc.ListByRole(ctx, f.shop.ID, models.RoleCashier, true)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.cashier.ID}, userIDs(cashiers))

	stylists, err := svc.ListByRole(ctx, f.shop.ID, models.RoleStylist, false)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.stylist.ID}, userIDs(stylists))

	none, err := svc.ListByRole(ctx, uuid.New(), models.RoleStylist, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func userIDs(users []models.User) []uuid.UUID {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestSeedAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, config.SeedConfig{ShopName: "Main Shop"}))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count, "no credentials, no seed")

	seed := config.SeedConfig{AdminEmail: "Admin@Salon.pe", AdminPassword: "change-me-now", ShopName: "Main Shop"}
	require.NoError(t, svc.SeedAdmin(ctx, seed))
	require.NoError(t, svc.SeedAdmin(ctx, seed))

	var users []models.User
	require.NoError(t, db.Preload("Shop").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@salon.pe", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	require.NotNil(t, users[0].Shop)
	assert.Equal(t, "Main Shop", users[0].Shop.Name)
}

func TestShopService(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.db)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.identity(f.manager), ShopInput{Name: "Branch"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	admin := f.identity(f.manager)
	admin.Role = models.RoleAdmin
	shop, err := svc.Create(ctx, admin, ShopInput{Name: " Branch ", RUC: "20999999999"})
	require.NoError(t, err)
	assert.Equal(t, "Branch", shop.Name)
	assert.Equal(t, "S/", shop.CurrencySymbol)

	shops, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Branch", shops[0].Name)
}
