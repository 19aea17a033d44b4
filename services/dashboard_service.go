package services

import (
	"context"
	"fmt"
	"time"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type PeriodCounts struct {
	Today int64 `json:"today"`
	Week  int64 `json:"week"`
	Month int64 `json:"month"`
}

type PeriodRevenue struct {
	Today decimal.Decimal `json:"today"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
}

type TopStylist struct {
	StylistID   uuid.UUID `json:"stylistId"`
	StylistName string    `json:"stylistName"`
	Orders      int64     `gorm:"column:order_count" json:"orders"`
}

type DashboardStats struct {
	TotalClients   int64         `json:"totalClients"`
	Orders         PeriodCounts  `json:"orders"`
	Revenue        PeriodRevenue `json:"revenue"`
	TopStylistWeek *TopStylist   `json:"topStylistWeek"`
}

type DashboardService struct {
	db       *gorm.DB
	calendar *utils.Calendar
}

func NewDashboardService(db *gorm.DB, calendar *utils.Calendar) *DashboardService {
	return &DashboardService{db: db, calendar: calendar}
}

// GetStats runs the independent aggregates concurrently and fails if any of them does.
func (s *DashboardService) GetStats(ctx context.Context, shopID uuid.UUID) (*DashboardStats, error) {
	now := s.calendar.Now()
	startOfDay := s.calendar.StartOfDay(now)
	startOfWeek := s.calendar.StartOfWeek(now)
	startOfMonth := s.calendar.StartOfMonth(now)

	stats := &DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)
	orders := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Order{}).Where("orders.shop_id = ?", shopID)
	}

	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.Client{}).
			Where("shop_id = ?", shopID).
			Count(&stats.TotalClients).Error
	})

	windows := []struct {
		since   time.Time
		count   *int64
		revenue *decimal.Decimal
	}{
		{startOfDay, &stats.Orders.Today, &stats.Revenue.Today},
		{startOfWeek, &stats.Orders.Week, &stats.Revenue.Week},
		{startOfMonth, &stats.Orders.Month, &stats.Revenue.Month},
	}
	for _, w := range windows {
		w := w
		g.Go(func() error {
			return orders().Where("orders.created_at >= ?", w.since).Count(w.count).Error
		})
		g.Go(func() error {
			var row struct{ Total decimal.Decimal }
			err := orders().
				Select("COALESCE(SUM(orders.total_price), 0) AS total").
				Where("orders.status = ? AND orders.created_at >= ?", models.OrderCompleted, w.since).
				Scan(&row).Error
			*w.revenue = row.Total
			return err
		})
	}

	g.Go(func() error {
		var rows []TopStylist
		err := orders().
			Select("orders.stylist_id AS stylist_id, users.name AS stylist_name, COUNT(orders.id) AS order_count").
			Joins("JOIN users ON users.id = orders.stylist_id").
			Where("orders.created_at >= ?", startOfWeek).
			Group("orders.stylist_id, users.name").
			Order("order_count DESC").
			Limit(1).
			Scan(&rows).Error
		if err == nil && len(rows) > 0 {
			stats.TopStylistWeek = &rows[0]
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}
