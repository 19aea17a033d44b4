package services

import (
	"context"
	"testing"
	"time"

	"salonpos-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Freeze "now" mid-month on a Wednesday so the windows are unambiguous.
	loc := f.calendar.Location()
	now := time.Date(2025, 3, 19, 15, 0, 0, 0, loc)
	f.calendar.Now = func() time.Time { return now }

	secondStylist := models.User{Email: "lu@salon.pe", Password: "x", Name: "Lucia", Role: models.RoleStylist, ShopID: f.shop.ID, IsActive: true}
	require.NoError(t, f.db.Create(&secondStylist).Error)

	place := func(at time.Time, complete bool, stylist models.User) {
		in := f.orderInput()
		in.StylistID = stylist.ID
		order, err := f.orders.CreateOrder(ctx, f.identity(f.operator), in)
		require.NoError(t, err)
		if complete {
			_, err = f.orders.CompleteOrder(ctx, f.identity(f.cashier), order.ID, CompleteOrderInput{
				PaymentMethod: models.PaymentCash,
				TicketNumber:  "T",
			})
			require.NoError(t, err)
		}
		f.backdate(t, order.ID, at)
	}

	place(now.Add(-time.Hour), true, f.stylist)        // today
	place(now.Add(-2*time.Hour), false, f.stylist)     // today, open
	place(now.AddDate(0, 0, -2), true, secondStylist)  // this week (Monday)
	place(now.AddDate(0, 0, -10), true, secondStylist) // this month
	place(now.AddDate(0, 0, -11), true, secondStylist) // this month
	place(now.AddDate(0, -2, 0), true, secondStylist)  // older

	stats, err := NewDashboardService(f.db, f.calendar).GetStats(ctx, f.shop.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.TotalClients)
	assert.EqualValues(t, 2, stats.Orders.Today)
	assert.EqualValues(t, 3, stats.Orders.Week)
	assert.EqualValues(t, 5, stats.Orders.Month)
	assert.True(t, stats.Revenue.Today.Equal(dec("80")), "today %s", stats.Revenue.Today)
	assert.True(t, stats.Revenue.Week.Equal(dec("160")), "week %s", stats.Revenue.Week)
	assert.True(t, stats.Revenue.Month.Equal(dec("320")), "month %s", stats.Revenue.Month)

	require.NotNil(t, stats.TopStylistWeek)
	assert.Equal(t, f.stylist.ID, stats.TopStylistWeek.StylistID)
	assert.Equal(t, "Sofia", stats.TopStylistWeek.StylistName)
	assert.EqualValues(t, 2, stats.TopStylistWeek.Orders)
}

func TestDashboardStatsEmptyShop(t *testing.T) {
	f := newFixture(t)
	stats, err := NewDashboardService(f.db, f.calendar).GetStats(context.Background(), f.shop.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalClients)
	assert.True(t, stats.Revenue.Month.IsZero())
	assert.Nil(t, stats.TopStylistWeek)
}
