package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"salonpos-backend/config"
	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	utils.BcryptCost = bcrypt.MinCost
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCalendar(t *testing.T) *utils.Calendar {
	t.Helper()
	cal, err := utils.LoadCalendar("America/Lima")
	require.NoError(t, err)
	return cal
}

type fakePush struct {
	mu    sync.Mutex
	sent  []string
	fails int
}

func (f *fakePush) SendToTopic(_ context.Context, topic, title, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("fcm unavailable")
	}
	f.sent = append(f.sent, topic+"|"+title)
	return nil
}

func (f *fakePush) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSMS) SendSMS(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type fakeReceipts struct {
	delivered []ReceiptSnapshot
	err       error
}

func (f *fakeReceipts) Deliver(_ context.Context, snap ReceiptSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, snap)
	return nil
}

type fakeRegistry struct {
	people map[string]string
	calls  int
}

func (f *fakeRegistry) LookupDNI(_ context.Context, dni string) (*RegistryPerson, error) {
	f.calls++
	name, ok := f.people[dni]
	if !ok {
		return nil, errors.New("registry: not found")
	}
	return &RegistryPerson{DNI: dni, FullName: name}, nil
}

// fixture is a shop with one user per staff role and two catalog treatments.
type fixture struct {
	db       *gorm.DB
	calendar *utils.Calendar

	shop     models.Shop
	manager  models.User
	operator models.User
	cashier  models.User
	stylist  models.User

	cut   models.Treatment
	color models.Treatment

	hub      *RealtimeHub
	push     *fakePush
	sms      *fakeSMS
	receipts *fakeReceipts
	orders   *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db, calendar: testCalendar(t)}

	f.shop = models.Shop{Name: "Salon Lima", AddressLine1: "Av. Larco 123", RUC: "20123456789", CurrencySymbol: "S/"}
	require.NoError(t, db.Create(&f.shop).Error)

	mk := func(name string, role models.Role) models.User {
		u := models.User{
			Email:    strings.ToLower(name) + "@salon.pe",
			Password: "x",
			Name:     name,
			Role:     role,
			ShopID:   f.shop.ID,
			IsActive: true,
		}
		require.NoError(t, db.Create(&u).Error)
		return u
	}
	f.manager = mk("Marta", models.RoleManager)
	f.operator = mk("Oscar", models.RoleOperator)
	f.cashier = mk("Carla", models.RoleCashier)
	f.stylist = mk("Sofia", models.RoleStylist)

	f.cut = models.Treatment{ShopID: f.shop.ID, Name: "Corte", Price: dec("50"), Percentage: dec("10"), IsActive: true}
	f.color = models.Treatment{ShopID: f.shop.ID, Name: "Tinte", Price: dec("30"), Percentage: dec("20"), IsActive: true}
	require.NoError(t, db.Create(&f.cut).Error)
	require.NoError(t, db.Create(&f.color).Error)

	logger := zap.NewNop()
	f.hub = NewRealtimeHub()
	f.push = &fakePush{}
	f.sms = &fakeSMS{}
	f.receipts = &fakeReceipts{}
	outbox := NewOutboxDispatcher(db, f.push, f.sms, 3, logger)
	notifier := NewOrderNotifier(f.hub, outbox, logger)
	notifier.SyncDispatch = true

	clients := NewClientService(db, &fakeRegistry{}, f.calendar, logger)
	f.orders = NewOrderService(db, clients, NewTreatmentService(db), notifier, f.receipts, f.calendar, logger)
	return f
}

func (f *fixture) identity(u models.User) utils.Identity {
	return utils.Identity{UserID: u.ID, ShopID: u.ShopID, Email: u.Email, Role: u.Role}
}

func (f *fixture) orderInput(lines ...OrderLineInput) OrderInput {
	if len(lines) == 0 {
		lines = []OrderLineInput{
			{TreatmentID: f.cut.ID, Price: dec("50.00")},
			{TreatmentID: f.color.ID, Price: dec("30.00")},
		}
	}
	return OrderInput{
		Treatments:  lines,
		ClientDNI:   "12345678",
		ClientName:  "Ana Torres",
		ClientPhone: "987654321",
		ClientEmail: "ana@example.com",
		StylistID:   f.stylist.ID,
		CashierID:   f.cashier.ID,
	}
}

func (f *fixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), f.identity(f.operator), f.orderInput())
	require.NoError(t, err)
	return order
}

// backdate moves an order's creation time, stored in UTC like every timestamp.
func (f *fixture) backdate(t *testing.T, orderID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", orderID).
		UpdateColumn("created_at", at.UTC()).Error)
}
