package services

import (
	"context"
	"testing"

	"salonpos-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreatmentCatalog(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTreatmentService(db)
	ctx := context.Background()
	shop := models.Shop{Name: "Salon"}
	require.NoError(t, db.Create(&shop).Error)

	cut, err := svc.Create(ctx, shop.ID, TreatmentInput{Name: " Corte ", Price: dec("45.555"), Percentage: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, "Corte", cut.Name)
	assert.True(t, cut.Price.Equal(dec("45.56")))

	_, err = svc.Create(ctx, shop.ID, TreatmentInput{Name: "Tinte", Price: dec("30"), Percentage: dec("101")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, shop.ID, TreatmentInput{Name: "Tinte", Price: dec("-1"), Percentage: dec("5")})
	assert.ErrorIs(t, err, ErrValidation)

	color, err := svc.Create(ctx, shop.ID, TreatmentInput{Name: "Alisado", Price: dec("120"), Percentage: dec("15")})
	require.NoError(t, err)

	list, err := svc.List(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alisado", list[0].Name)

	inactive := false
	pct := dec("25")
	updated, err := svc.Update(ctx, shop.ID, color.ID, TreatmentPatch{IsActive: &inactive, Percentage: &pct})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.Percentage.Equal(pct))

	list, err = svc.List(ctx, shop.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Update(ctx, uuid.New(), cut.ID, TreatmentPatch{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateTreatmentIDs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTreatmentService(db)
	shop := models.Shop{Name: "Salon"}
	require.NoError(t, db.Create(&shop).Error)
	cut, err := svc.Create(context.Background(), shop.ID, TreatmentInput{Name: "Corte", Price: dec("40"), Percentage: dec("10")})
	require.NoError(t, err)

	found, err := svc.ValidateTreatmentIDs(db, shop.ID, []uuid.UUID{cut.ID, cut.ID})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	a, b := uuid.New(), uuid.New()
	_, err = svc.ValidateTreatmentIDs(db, shop.ID, []uuid.UUID{cut.ID, a, b})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), a.String())
	assert.Contains(t, err.Error(), b.String())
}
