package server

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/creeeasy/online-store-sub000/internal/events"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	BulkUpdateProducts(ctx context.Context, update models.ProductBulkUpdate) (int, error)
	ProductStats(ctx context.Context) (*models.ProductStats, error)
}

type InquiryStore interface {
	CreateInquiry(ctx context.Context, q *models.OrderInquiry) (*models.OrderInquiry, error)
	GetInquiry(ctx context.Context, id string) (*models.OrderInquiry, error)
	ListInquiries(ctx context.Context, filter models.InquiryFilter) ([]models.OrderInquiry, int, error)
	UpdateInquiry(ctx context.Context, q *models.OrderInquiry) (*models.OrderInquiry, error)
	UpdateInquiryStatus(ctx context.Context, id string, update models.InquiryStatusUpdate) (*models.OrderInquiry, error)
	DeleteInquiry(ctx context.Context, id string) error
	BulkUpdateInquiryStatus(ctx context.Context, update models.InquiryBulkStatusUpdate) (int, error)
	BulkDeleteInquiries(ctx context.Context, ids []string) (int, error)
	InquiryStats(ctx context.Context) (*models.InquiryStats, error)
}

type AuthStore interface {
	CreateUser(ctx context.Context, email, username, password string) (*models.AuthUser, error)
	Authenticate(ctx context.Context, email, password string) (*models.AuthUser, error)
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error)
	UserByToken(ctx context.Context, token string) (*models.AuthUser, error)
	RefreshSession(ctx context.Context, token string, ttl time.Duration) (string, *models.AuthUser, error)
	DeleteSession(ctx context.Context, token string) error
}

// EventPublisher pushes inquiry lifecycle events out to the event bus.
type EventPublisher interface {
	PublishInquiryCreated(event events.InquiryCreatedEvent) error
	PublishInquiryStatusChanged(event events.InquiryStatusChangedEvent) error
}

// Broadcaster fans messages out to connected admin dashboard clients.
type Broadcaster interface {
	Broadcast(messageType string, data interface{}, source string)
}

// Handler holds every dependency the HTTP layer needs. Producer and hub are
// optional; a nil value disables that side channel.
type Handler struct {
	products  ProductStore
	inquiries InquiryStore
	auth      AuthStore
	producer  EventPublisher
	hub       Broadcaster
	logger    *logrus.Logger
	tokenTTL  time.Duration
}

func NewHandler(products ProductStore, inquiries InquiryStore, auth AuthStore, logger *logrus.Logger, tokenTTL time.Duration) *Handler {
	return &Handler{
		products:  products,
		inquiries: inquiries,
		auth:      auth,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}
}

func (h *Handler) SetEventPublisher(p EventPublisher) {
	h.producer = p
}

func (h *Handler) SetBroadcaster(b Broadcaster) {
	h.hub = b
}
