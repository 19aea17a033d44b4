package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderQuery struct {
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
	StylistID     string `form:"stylistId"`
	OperatorID    string `form:"operatorId"`
	CashierID     string `form:"cashierId"`
	Status        string `form:"status" binding:"omitempty,oneof=Created Completed Cancelled"`
	OrderNumber   int    `form:"orderNumber" binding:"omitempty,min=1"`
	PaymentMethod string `form:"paymentMethod" binding:"omitempty,oneof=Cash Card Yape"`
	ClientName    string `form:"clientName" binding:"omitempty,max=50"`
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
}

type OrderPage struct {
	Data        []models.Order  `json:"data"`
	Meta        utils.PageMeta  `json:"meta"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type PaymentBreakdown struct {
	Cash decimal.Decimal `json:"cash"`
	Card decimal.Decimal `json:"card"`
	Yape decimal.Decimal `json:"yape"`
}

type StylistOrderCount struct {
	StylistID   uuid.UUID `json:"stylistId"`
	StylistName string    `json:"stylistName"`
	Orders      int       `json:"orders"`
}

type DailySummary struct {
	Date            string              `json:"date"`
	TotalEarnings   decimal.Decimal     `json:"totalEarnings"`
	TotalOrders     int                 `json:"totalOrders"`
	Payments        PaymentBreakdown    `json:"payments"`
	OrdersByStylist []StylistOrderCount `json:"ordersByStylist"`
}

func withOrderRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").
		Preload("Stylist").
		Preload("Operator").
		Preload("Cashier").
		Preload("Treatments.Treatment")
}

// scopeToActor keeps the orders the actor handles: a cashier's own, an operator's own,
// and for every other role the union of both.
func scopeToActor(db *gorm.DB, actor utils.Identity) *gorm.DB {
	switch actor.Role {
	case models.RoleCashier:
		return db.Where("orders.cashier_id = ?", actor.UserID)
	case models.RoleOperator:
		return db.Where("orders.operator_id = ?", actor.UserID)
	default:
		return db.Where("(orders.cashier_id = ? OR orders.operator_id = ?)", actor.UserID, actor.UserID)
	}
}

func parseOptionalID(field, raw string) (uuid.UUID, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: %s must be a valid id", ErrValidation, field)
	}
	return id, true, nil
}

func (s *OrderService) GetOrder(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := withOrderRelations(s.db.WithContext(ctx)).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// GetOrders pages through the shop's orders. Every filter is optional and they combine with AND.
// The date window always applies and defaults to the last 30 days.
func (s *OrderService) GetOrders(ctx context.Context, shopID uuid.UUID, q OrderQuery) (*OrderPage, error) {
	page, limit := utils.NormalizePage(q.Page, q.Limit)

	r, err := s.calendar.BuildDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	filters := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB {
			return db.Where("orders.shop_id = ? AND orders.created_at BETWEEN ? AND ?", shopID, r.Start, r.End)
		},
	}
	for _, f := range []struct{ name, column, raw string }{
		{"stylistId", "orders.stylist_id", q.StylistID},
		{"operatorId", "orders.operator_id", q.OperatorID},
		{"cashierId", "orders.cashier_id", q.CashierID},
	} {
		id, ok, err := parseOptionalID(f.name, f.raw)
		if err != nil {
			return nil, err
		}
		if ok {
			column := f.column
			filters = append(filters, func(db *gorm.DB) *gorm.DB { return db.Where(column+" = ?", id) })
		}
	}
	if q.Status != "" {
		filters = append(filters, func(db *gorm.DB) *gorm.DB { return db.Where("orders.status = ?", q.Status) })
	}
	if q.OrderNumber > 0 {
		filters = append(filters, func(db *gorm.DB) *gorm.DB { return db.Where("orders.order_number = ?", q.OrderNumber) })
	}
	if q.PaymentMethod != "" {
		filters = append(filters, func(db *gorm.DB) *gorm.DB { return db.Where("orders.payment_method = ?", q.PaymentMethod) })
	}
	if name := strings.ToLower(strings.TrimSpace(q.ClientName)); name != "" {
		filters = append(filters, func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN clients ON clients.id = orders.client_id").
				Where("LOWER(clients.name) LIKE ?", "%"+name+"%")
		})
	}

	query := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.Order{})
		for _, f := range filters {
			db = f(db)
		}
		return db
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	var sum struct{ Total decimal.Decimal }
	if err := query().Select("COALESCE(SUM(orders.total_price), 0) AS total").Scan(&sum).Error; err != nil {
		return nil, fmt.Errorf("sum orders: %w", err)
	}

	orders := []models.Order{}
	if err := withOrderRelations(query()).
		Order("orders.created_at DESC").
		Order("orders.order_number DESC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &OrderPage{
		Data:        orders,
		Meta:        utils.NewPageMeta(page, limit, total),
		TotalAmount: sum.Total,
	}, nil
}

// GetPendingOrdersForUser lists today's orders in the given statuses that the actor handles.
func (s *OrderService) GetPendingOrdersForUser(ctx context.Context, actor utils.Identity, statuses []models.OrderStatus) ([]models.Order, error) {
	if len(statuses) == 0 {
		statuses = []models.OrderStatus{models.OrderCreated}
	}
	today := s.calendar.Today()

	db := s.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Stylist").
		Preload("Client").
		Where("orders.shop_id = ? AND orders.status IN ?", actor.ShopID, statuses).
		Where("orders.created_at BETWEEN ? AND ?", today.Start, today.End)

	orders := []models.Order{}
	if err := scopeToActor(db, actor).Order("orders.created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return orders, nil
}

// GetDailySummary totals one local day of completed orders handled by the actor.
// An empty date means today.
func (s *OrderService) GetDailySummary(ctx context.Context, actor utils.Identity, date string) (*DailySummary, error) {
	var (
		day utils.DateRange
		err error
	)
	if strings.TrimSpace(date) == "" {
		day = s.calendar.Today()
	} else if day, err = s.calendar.Day(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	db := s.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Stylist").
		Where("orders.shop_id = ? AND orders.status = ?", actor.ShopID, models.OrderCompleted).
		Where("orders.created_at BETWEEN ? AND ?", day.Start, day.End)

	var orders []models.Order
	if err := scopeToActor(db, actor).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	summary := &DailySummary{
		Date:            s.calendar.Local(day.Start).Format(utils.DateLayout),
		TotalEarnings:   decimal.Zero,
		TotalOrders:     len(orders),
		Payments:        PaymentBreakdown{Cash: decimal.Zero, Card: decimal.Zero, Yape: decimal.Zero},
		OrdersByStylist: []StylistOrderCount{},
	}

	byStylist := make(map[uuid.UUID]int)
	for _, o := range orders {
		amount := o.TotalPrice
		if o.PaidAmount != nil {
			amount = *o.PaidAmount
		}
		summary.TotalEarnings = summary.TotalEarnings.Add(amount)

		if o.PaymentMethod != nil {
			switch *o.PaymentMethod {
			case models.PaymentCash:
				summary.Payments.Cash = summary.Payments.Cash.Add(amount)
			case models.PaymentCard:
				summary.Payments.Card = summary.Payments.Card.Add(amount)
			case models.PaymentYape:
				summary.Payments.Yape = summary.Payments.Yape.Add(amount)
			}
		}

		i, ok := byStylist[o.StylistID]
		if !ok {
			name := ""
			if o.Stylist != nil {
				name = o.Stylist.Name
			}
			i = len(summary.OrdersByStylist)
			byStylist[o.StylistID] = i
			summary.OrdersByStylist = append(summary.OrdersByStylist, StylistOrderCount{StylistID: o.StylistID, StylistName: name})
		}
		summary.OrdersByStylist[i].Orders++
	}

	sort.SliceStable(summary.OrdersByStylist, func(a, b int) bool {
		x, y := summary.OrdersByStylist[a], summary.OrdersByStylist[b]
		if x.Orders != y.Orders {
			return x.Orders > y.Orders
		}
		return x.StylistName < y.StylistName
	})
	return summary, nil
}
