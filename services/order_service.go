package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Concurrent creates in one shop can race for the same order number; the unique
// (shop_id, order_number) index rejects the loser, which retries.
const orderNumberAttempts = 3

type OrderLineInput struct {
	TreatmentID uuid.UUID       `json:"treatmentId" binding:"required"`
	Price       decimal.Decimal `json:"price"`
}

type OrderInput struct {
	Treatments  []OrderLineInput `json:"treatments" binding:"required,min=1,dive"`
	ClientDNI   string           `json:"clientDni" binding:"required"`
	ClientName  string           `json:"clientName" binding:"required"`
	ClientPhone string           `json:"clientPhone"`
	ClientEmail string           `json:"clientEmail" binding:"omitempty,email"`
	StylistID   uuid.UUID        `json:"stylistId" binding:"required"`
	CashierID   uuid.UUID        `json:"cashierId" binding:"required"`
}

func (in OrderInput) client() ClientInput {
	return ClientInput{DNI: in.ClientDNI, Name: in.ClientName, Phone: in.ClientPhone, Email: in.ClientEmail}
}

func (in OrderInput) validate() error {
	if len(in.Treatments) == 0 {
		return fmt.Errorf("%w: at least one treatment is required", ErrValidation)
	}
	for i, line := range in.Treatments {
		if line.TreatmentID == uuid.Nil {
			return fmt.Errorf("%w: treatments[%d].treatmentId is required", ErrValidation, i)
		}
		if !line.Price.IsPositive() {
			return fmt.Errorf("%w: treatments[%d].price must be greater than 0", ErrValidation, i)
		}
	}
	if strings.TrimSpace(in.ClientDNI) == "" || strings.TrimSpace(in.ClientName) == "" {
		return fmt.Errorf("%w: clientDni and clientName are required", ErrValidation)
	}
	if !utils.ValidateDNI(in.ClientDNI) {
		return fmt.Errorf("%w: clientDni must be 8 digits", ErrValidation)
	}
	if in.StylistID == uuid.Nil || in.CashierID == uuid.Nil {
		return fmt.Errorf("%w: stylistId and cashierId are required", ErrValidation)
	}
	return nil
}

// CompleteOrderInput carries the payment details. PaidAmount is accepted for older
// clients but ignored: a completed order is always paid in full.
type CompleteOrderInput struct {
	PaidAmount    *decimal.Decimal     `json:"paidAmount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required,oneof=Cash Card Yape"`
	TicketNumber  string               `json:"ticketNumber" binding:"required"`
}

type OrderService struct {
	db         *gorm.DB
	clients    *ClientService
	treatments *TreatmentService
	notifier   *OrderNotifier
	receipts   ReceiptDelivery
	calendar   *utils.Calendar
	logger     *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	clients *ClientService,
	treatments *TreatmentService,
	notifier *OrderNotifier,
	receipts ReceiptDelivery,
	calendar *utils.Calendar,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:         db,
		clients:    clients,
		treatments: treatments,
		notifier:   notifier,
		receipts:   receipts,
		calendar:   calendar,
		logger:     logger,
	}
}

func canEditOrders(actor utils.Identity) bool {
	return actor.HasRole(models.RoleOperator, models.RoleManager)
}

func lineTreatmentIDs(lines []OrderLineInput) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.TreatmentID
	}
	return ids
}

func buildOrderLines(orderID uuid.UUID, lines []OrderLineInput) []models.OrderTreatment {
	out := make([]models.OrderTreatment, len(lines))
	for i, l := range lines {
		out[i] = models.OrderTreatment{OrderID: orderID, TreatmentID: l.TreatmentID, Price: l.Price.Round(2)}
	}
	return out
}

// SumLines is the order total: the sum of the charged line prices.
func SumLines(lines []models.OrderTreatment) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	return total
}

// StylistEarnings is the commission owed on the lines: price x percentage / 100, to the cent.
func StylistEarnings(lines []models.OrderTreatment) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Treatment == nil {
			continue
		}
		total = total.Add(l.Price.Mul(l.Treatment.Percentage).Div(hundred))
	}
	return total.Round(2)
}

func nextOrderNumber(tx *gorm.DB, shopID uuid.UUID) (int, error) {
	var row struct{ N int }
	err := tx.Model(&models.Order{}).
		Select("COALESCE(MAX(order_number), 0) AS n").
		Where("shop_id = ?", shopID).
		Scan(&row).Error
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return row.N + 1, nil
}

func (s *OrderService) checkStaff(tx *gorm.DB, shopID, stylistID, cashierID uuid.UUID) error {
	var users []models.User
	if err := tx.Where("shop_id = ? AND id IN ?", shopID, []uuid.UUID{stylistID, cashierID}).
		Find(&users).Error; err != nil {
		return fmt.Errorf("load staff: %w", err)
	}
	found := make(map[uuid.UUID]models.Role, len(users))
	for _, u := range users {
		found[u.ID] = u.Role
	}
	stylistRole, ok := found[stylistID]
	if !ok {
		return fmt.Errorf("%w: stylist %s", ErrNotFound, stylistID)
	}
	if stylistRole != models.RoleStylist {
		return fmt.Errorf("%w: user %s is not a stylist", ErrValidation, stylistID)
	}
	cashierRole, ok := found[cashierID]
	if !ok {
		return fmt.Errorf("%w: cashier %s", ErrNotFound, cashierID)
	}
	if cashierRole != models.RoleCashier && cashierRole != models.RoleManager {
		return fmt.Errorf("%w: user %s cannot take payments", ErrValidation, cashierID)
	}
	return nil
}

func loadOrder(tx *gorm.DB, shopID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.Where("shop_id = ? AND id = ?", shopID, id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// transition applies updates only while the order is still in the expected status.
func transition(tx *gorm.DB, orderID uuid.UUID, from models.OrderStatus, updates map[string]interface{}) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order changed concurrently", ErrInvalidState)
	}
	return nil
}

// CreateOrder resolves the client, prices the order from the submitted lines and
// persists it with its lines in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, actor utils.Identity, in OrderInput) (*models.Order, error) {
	if !canEditOrders(actor) {
		return nil, fmt.Errorf("%w: only operators and managers can create orders", ErrPermissionDenied)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		orderID uuid.UUID
		eff     orderEffects
		err     error
	)
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := s.treatments.ValidateTreatmentIDs(tx, actor.ShopID, lineTreatmentIDs(in.Treatments)); err != nil {
				return err
			}
			if err := s.checkStaff(tx, actor.ShopID, in.StylistID, in.CashierID); err != nil {
				return err
			}
			client, err := s.clients.UpsertOrderClient(tx, actor.ShopID, in.client())
			if err != nil {
				return err
			}
			number, err := nextOrderNumber(tx, actor.ShopID)
			if err != nil {
				return err
			}

			order := models.Order{
				ID:          uuid.New(),
				ShopID:      actor.ShopID,
				OrderNumber: number,
				Status:      models.OrderCreated,
				ClientID:    client.ID,
				StylistID:   in.StylistID,
				OperatorID:  actor.UserID,
				CashierID:   in.CashierID,
			}
			order.Treatments = buildOrderLines(order.ID, in.Treatments)
			order.TotalPrice = SumLines(order.Treatments)
			if err := tx.Create(&order).Error; err != nil {
				return fmt.Errorf("create order: %w", err)
			}

			outbox, err := s.notifier.stageCashierPush(tx, &order, pushKindNewOrder)
			if err != nil {
				return err
			}
			orderID = order.ID
			eff = orderEffects{
				orderID: order.ID,
				refresh: []uuid.UUID{order.CashierID, order.OperatorID},
				outbox:  outbox,
			}
			return nil
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Debug("order create conflict, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, eff)
	return s.GetOrder(ctx, actor.ShopID, orderID)
}

// UpdateOrder re-resolves the client, replaces every line and recomputes the total.
// When the DNI changes the order is repointed to the client owning the new DNI.
func (s *OrderService) UpdateOrder(ctx context.Context, actor utils.Identity, id uuid.UUID, in OrderInput) (*models.Order, error) {
	if !canEditOrders(actor) {
		return nil, fmt.Errorf("%w: only operators and managers can update orders", ErrPermissionDenied)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var eff orderEffects
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, actor.ShopID, id)
		if err != nil {
			return err
		}
		if order.Status != models.OrderCreated {
			return fmt.Errorf("%w: cannot update a %s order", ErrInvalidState, strings.ToLower(string(order.Status)))
		}
		if _, err := s.treatments.ValidateTreatmentIDs(tx, actor.ShopID, lineTreatmentIDs(in.Treatments)); err != nil {
			return err
		}
		if err := s.checkStaff(tx, actor.ShopID, in.StylistID, in.CashierID); err != nil {
			return err
		}
		client, err := s.clients.UpsertOrderClient(tx, actor.ShopID, in.client())
		if err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderTreatment{}).Error; err != nil {
			return fmt.Errorf("delete order lines: %w", err)
		}
		lines := buildOrderLines(order.ID, in.Treatments)
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("create order lines: %w", err)
		}

		previousCashier := order.CashierID
		order.TotalPrice = SumLines(lines)
		order.ClientID = client.ID
		order.StylistID = in.StylistID
		order.CashierID = in.CashierID
		if err := transition(tx, order.ID, models.OrderCreated, map[string]interface{}{
			"total_price": order.TotalPrice,
			"client_id":   order.ClientID,
			"stylist_id":  order.StylistID,
			"cashier_id":  order.CashierID,
		}); err != nil {
			return err
		}

		outbox, err := s.notifier.stageCashierPush(tx, order, pushKindOrderUpdated)
		if err != nil {
			return err
		}
		eff = orderEffects{
			orderID: order.ID,
			refresh: []uuid.UUID{order.CashierID, previousCashier, order.OperatorID},
			outbox:  outbox,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, eff)
	return s.GetOrder(ctx, actor.ShopID, id)
}

// CompleteOrder records payment and stylist earnings. The paid amount is the stored total.
func (s *OrderService) CompleteOrder(ctx context.Context, actor utils.Identity, id uuid.UUID, in CompleteOrderInput) (*models.Order, error) {
	if in.PaymentMethod.Code() == "" {
		return nil, fmt.Errorf("%w: paymentMethod must be Cash, Card or Yape", ErrValidation)
	}
	ticket := strings.TrimSpace(in.TicketNumber)
	if ticket == "" {
		return nil, fmt.Errorf("%w: ticketNumber is required", ErrValidation)
	}

	var eff orderEffects
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Treatments.Treatment").Preload("Client").
			Where("shop_id = ? AND id = ?", actor.ShopID, id).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		switch order.Status {
		case models.OrderCompleted:
			return fmt.Errorf("%w: order is already completed", ErrInvalidState)
		case models.OrderCancelled:
			return fmt.Errorf("%w: cancelled orders cannot be completed", ErrInvalidState)
		}

		paid := order.TotalPrice
		earnings := StylistEarnings(order.Treatments)
		method := in.PaymentMethod
		completedAt := time.Now().UTC()
		if err := transition(tx, order.ID, models.OrderCreated, map[string]interface{}{
			"status":           models.OrderCompleted,
			"paid_amount":      paid,
			"payment_method":   method,
			"ticket_number":    ticket,
			"stylist_earnings": earnings,
			"completed_at":     completedAt,
		}); err != nil {
			return err
		}
		order.PaidAmount = &paid

		var shop models.Shop
		if err := tx.First(&shop, "id = ?", order.ShopID).Error; err != nil {
			return fmt.Errorf("load shop: %w", err)
		}
		outbox, err := s.notifier.stageCompletionSMS(tx, &order, order.Client, shop.Name)
		if err != nil {
			return err
		}

		recipients := []uuid.UUID{order.CashierID, order.OperatorID}
		eff = orderEffects{orderID: order.ID, complete: recipients, refresh: recipients, outbox: outbox}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, eff)
	return s.GetOrder(ctx, actor.ShopID, id)
}

func (s *OrderService) CancelOrder(ctx context.Context, actor utils.Identity, id uuid.UUID) (*models.Order, error) {
	var eff orderEffects
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, actor.ShopID, id)
		if err != nil {
			return err
		}
		if order.Status != models.OrderCreated {
			return fmt.Errorf("%w: only created orders can be cancelled", ErrInvalidState)
		}
		if err := transition(tx, order.ID, models.OrderCreated, map[string]interface{}{
			"status": models.OrderCancelled,
		}); err != nil {
			return err
		}
		eff = orderEffects{orderID: order.ID, refresh: []uuid.UUID{order.CashierID, order.OperatorID}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, eff)
	return s.GetOrder(ctx, actor.ShopID, id)
}

// RestoreOrder reopens a completed order. Payment fields and earnings are left as they were.
func (s *OrderService) RestoreOrder(ctx context.Context, actor utils.Identity, id uuid.UUID) (*models.Order, error) {
	var eff orderEffects
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, actor.ShopID, id)
		if err != nil {
			return err
		}
		if order.Status != models.OrderCompleted {
			return fmt.Errorf("%w: only completed orders can be restored", ErrInvalidState)
		}
		if err := transition(tx, order.ID, models.OrderCompleted, map[string]interface{}{
			"status": models.OrderCreated,
		}); err != nil {
			return err
		}
		recipients := []uuid.UUID{order.CashierID, order.OperatorID}
		eff = orderEffects{orderID: order.ID, complete: recipients, refresh: recipients}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, eff)
	return s.GetOrder(ctx, actor.ShopID, id)
}

// SendOrderReceipt builds a receipt snapshot of a completed order and hands it to the
// configured receipt channel.
func (s *OrderService) SendOrderReceipt(ctx context.Context, actor utils.Identity, id uuid.UUID) error {
	order, err := s.GetOrder(ctx, actor.ShopID, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderCompleted {
		return fmt.Errorf("%w: receipts are only sent for completed orders", ErrInvalidState)
	}
	if order.Client == nil || strings.TrimSpace(order.Client.Email) == "" {
		return fmt.Errorf("%w: client has no email on file", ErrMissingData)
	}
	if s.receipts == nil {
		return fmt.Errorf("%w: receipt delivery is not configured", ErrExternalService)
	}

	var shop models.Shop
	if err := s.db.WithContext(ctx).First(&shop, "id = ?", order.ShopID).Error; err != nil {
		return fmt.Errorf("load shop: %w", err)
	}

	snap := BuildReceiptSnapshot(order, &shop, s.calendar)
	if err := s.receipts.Deliver(ctx, snap); err != nil {
		s.logger.Error("deliver receipt", zap.String("order_id", id.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return nil
}
