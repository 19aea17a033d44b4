package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonpos-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryClientLookup(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		if r.URL.Path == "/dni/00000000" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"nombres":"MARIA DEL PILAR","apellidoPaterno":"QUISPE","apellidoMaterno":"ÑAHUI"}`))
	}))
	defer srv.Close()

	client := NewRegistryClient(srv.URL+"/dni/", "secret")
	person, err := client.LookupDNI(context.Background(), "45678912")
	require.NoError(t, err)
	assert.Equal(t, "/dni/45678912", gotPath)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "Maria Del Pilar Quispe Ñahui", person.FullName)

	_, err = client.LookupDNI(context.Background(), "00000000")
	assert.Error(t, err)

	_, err = NewRegistryClient("", "").LookupDNI(context.Background(), "45678912")
	assert.Error(t, err)
}

func TestFindByDNI(t *testing.T) {
	db := setupTestDB(t)
	registry := &fakeRegistry{people: map[string]string{"45678912": "Maria Quispe"}}
	svc := NewClientService(db, registry, testCalendar(t), zap.NewNop())
	ctx := context.Background()

	shop := models.Shop{Name: "Salon"}
	require.NoError(t, db.Create(&shop).Error)
	require.NoError(t, db.Create(&models.Client{ShopID: shop.ID, DNI: "12345678", Name: "Ana Torres", Email: "ana@example.com"}).Error)

	local, err := svc.FindByDNI(ctx, "12345678")
	require.NoError(t, err)
	assert.Equal(t, ClientSourceLocal, local.Source)
	require.NotNil(t, local.ID)
	assert.Equal(t, "ana@example.com", local.Email)
	assert.Zero(t, registry.calls)

	remote, err := svc.FindByDNI(ctx, "45678912")
	require.NoError(t, err)
	assert.Equal(t, ClientSourceRegistry, remote.Source)
	assert.Nil(t, remote.ID)
	assert.Equal(t, "Maria Quispe", remote.Name)

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "registry hits are not persisted")

	_, err = svc.FindByDNI(ctx, "99999999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.FindByDNI(ctx, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.FindByDNI(ctx, "../45678912")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, registry.calls, "malformed DNIs never reach the registry")
}

func TestListClients(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientService(db, nil, testCalendar(t), zap.NewNop())
	ctx := context.Background()

	shop := models.Shop{Name: "Salon"}
	other := models.Shop{Name: "Other"}
	require.NoError(t, db.Create(&shop).Error)
	require.NoError(t, db.Create(&other).Error)

	for _, c := range []models.Client{
		{ShopID: shop.ID, DNI: "10000001", Name: "Ana Torres", Phone: "987000001"},
		{ShopID: shop.ID, DNI: "10000002", Name: "Bruno Díaz", Email: "bruno@example.com"},
		{ShopID: shop.ID, DNI: "10000003", Name: "Carmen Ruiz"},
		{ShopID: other.ID, DNI: "20000001", Name: "Diana Soto"},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error)
	}
	old := models.Client{ShopID: shop.ID, DNI: "10000004", Name: "Elena Paz"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&old).UpdateColumn("created_at", time.Now().UTC().AddDate(-1, 0, 0)).Error)

	page, err := svc.List(ctx, shop.ID, ClientQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Meta.Total)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.Meta.HasNext)

	page, err = svc.List(ctx, shop.ID, ClientQuery{Search: "BRUNO"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "10000002", page.Data[0].DNI)

	page, err = svc.List(ctx, shop.ID, ClientQuery{Search: "987000"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	today := time.Now().In(testCalendar(t).Location()).Format("2006-01-02")
	page, err = svc.List(ctx, shop.ID, ClientQuery{EndDate: today})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Meta.Total)

	all, err := svc.All(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Diana Soto", all[0].Name)
}

func TestUpsertOrderClient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientService(db, nil, testCalendar(t), zap.NewNop())
	shop := models.Shop{Name: "Salon"}
	require.NoError(t, db.Create(&shop).Error)

	created, err := svc.UpsertOrderClient(db, shop.ID, ClientInput{DNI: " 12345678 ", Name: "Ana", Phone: "999", Email: "a@x.pe"})
	require.NoError(t, err)
	assert.Equal(t, "12345678", created.DNI)

	updated, err := svc.UpsertOrderClient(db, shop.ID, ClientInput{DNI: "12345678", Name: "Ana Torres"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	var stored models.Client
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "Ana Torres", stored.Name)
	assert.Empty(t, stored.Phone)
	assert.Empty(t, stored.Email)

	_, err = svc.UpsertOrderClient(db, shop.ID, ClientInput{DNI: "12345678"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpsertOrderClient(db, shop.ID, ClientInput{DNI: "not-a-dni!!", Name: "Ana"})
	assert.ErrorIs(t, err, ErrValidation)
}
