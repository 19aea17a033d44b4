package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ClientSourceLocal    = "local"
	ClientSourceRegistry = "registry"
)

// ClientView is returned by DNI lookups. ID is nil when the client only exists in the registry.
type ClientView struct {
	ID     *uuid.UUID `json:"id"`
	DNI    string     `json:"dni"`
	Name   string     `json:"name"`
	Phone  string     `json:"phone,omitempty"`
	Email  string     `json:"email,omitempty"`
	Source string     `json:"source"`
}

// ClientInput is the client portion of an order request.
type ClientInput struct {
	DNI   string
	Name  string
	Phone string
	Email string
}

type ClientQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Search    string `form:"search"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

type ClientPage struct {
	Data []models.Client `json:"data"`
	Meta utils.PageMeta  `json:"meta"`
}

type ClientService struct {
	db       *gorm.DB
	registry RegistryLookup
	calendar *utils.Calendar
	logger   *zap.Logger
}

func NewClientService(db *gorm.DB, registry RegistryLookup, calendar *utils.Calendar, logger *zap.Logger) *ClientService {
	return &ClientService{db: db, registry: registry, calendar: calendar, logger: logger}
}

// FindByDNI looks the DNI up locally, then in the national registry. Registry hits are not persisted.
func (s *ClientService) FindByDNI(ctx context.Context, dni string) (*ClientView, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return nil, fmt.Errorf("%w: dni is required", ErrValidation)
	}
	if !utils.ValidateDNI(dni) {
		return nil, fmt.Errorf("%w: dni must be 8 digits", ErrValidation)
	}

	var client models.Client
	err := s.db.WithContext(ctx).Where("dni = ?", dni).First(&client).Error
	if err == nil {
		return &ClientView{
			ID:     &client.ID,
			DNI:    client.DNI,
			Name:   client.Name,
			Phone:  client.Phone,
			Email:  client.Email,
			Source: ClientSourceLocal,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find client by dni: %w", err)
	}

	if s.registry == nil {
		return nil, fmt.Errorf("%w: client not found locally or in registry", ErrNotFound)
	}
	person, err := s.registry.LookupDNI(ctx, dni)
	if err != nil {
		s.logger.Warn("registry lookup failed", zap.String("dni", dni), zap.Error(err))
		return nil, fmt.Errorf("%w: client not found locally or in registry", ErrNotFound)
	}
	return &ClientView{DNI: dni, Name: person.FullName, Source: ClientSourceRegistry}, nil
}

// UpsertOrderClient creates the client on first sight of a DNI, otherwise overwrites
// name, phone and email with the incoming values. It must run inside the caller's transaction.
func (s *ClientService) UpsertOrderClient(tx *gorm.DB, shopID uuid.UUID, in ClientInput) (*models.Client, error) {
	in.DNI = strings.TrimSpace(in.DNI)
	in.Name = strings.TrimSpace(in.Name)
	if in.DNI == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: client dni and name are required", ErrValidation)
	}
	if !utils.ValidateDNI(in.DNI) {
		return nil, fmt.Errorf("%w: client dni must be 8 digits", ErrValidation)
	}

	var client models.Client
	err := tx.Where("dni = ?", in.DNI).First(&client).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		client = models.Client{
			ShopID: shopID,
			DNI:    in.DNI,
			Name:   in.Name,
			Phone:  strings.TrimSpace(in.Phone),
			Email:  strings.TrimSpace(in.Email),
		}
		if err := tx.Create(&client).Error; err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		return &client, nil
	case err != nil:
		return nil, fmt.Errorf("find client by dni: %w", err)
	}

	client.Name = in.Name
	client.Phone = strings.TrimSpace(in.Phone)
	client.Email = strings.TrimSpace(in.Email)
	if err := tx.Model(&client).Select("Name", "Phone", "Email").Updates(&client).Error; err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return &client, nil
}

// scoped limits clients to those registered by the shop or that have ordered there.
func (s *ClientService) scoped(ctx context.Context, shopID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Client{}).
		Where("clients.shop_id = ? OR clients.id IN (?)", shopID,
			s.db.Model(&models.Order{}).Select("client_id").Where("shop_id = ?", shopID))
}

func (s *ClientService) List(ctx context.Context, shopID uuid.UUID, q ClientQuery) (*ClientPage, error) {
	page, limit := utils.NormalizePage(q.Page, q.Limit)

	query := func() *gorm.DB {
		db := s.scoped(ctx, shopID)
		if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
			like := "%" + search + "%"
			db = db.Where("LOWER(clients.name) LIKE ? OR clients.dni LIKE ? OR clients.phone LIKE ? OR LOWER(clients.email) LIKE ?",
				like, like, like, like)
		}
		return db
	}

	if q.StartDate != "" || q.EndDate != "" {
		r, err := s.calendar.BuildDateRange(q.StartDate, q.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		base := query
		query = func() *gorm.DB {
			return base().Where("clients.created_at BETWEEN ? AND ?", r.Start, r.End)
		}
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}

	clients := []models.Client{}
	if err := query().Order("clients.created_at DESC").
		Offset(utils.Offset(page, limit)).Limit(limit).
		Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	return &ClientPage{Data: clients, Meta: utils.NewPageMeta(page, limit, total)}, nil
}

func (s *ClientService) All(ctx context.Context, shopID uuid.UUID) ([]models.Client, error) {
	clients := []models.Client{}
	if err := s.scoped(ctx, shopID).Order("clients.name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}
