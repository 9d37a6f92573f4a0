package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/internal/events"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

type fakeProductStore struct {
	products map[string]*models.Product
	list     []models.Product
	total    int
}

func (f *fakeProductStore) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = "prod-1"
	return p, nil
}

func (f *fakeProductStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductStore) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	return f.list, f.total, nil
}

func (f *fakeProductStore) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return nil, database.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductStore) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return database.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) BulkUpdateProducts(ctx context.Context, update models.ProductBulkUpdate) (int, error) {
	return len(update.IDs), nil
}

func (f *fakeProductStore) ProductStats(ctx context.Context) (*models.ProductStats, error) {
	return &models.ProductStats{TotalProducts: len(f.products)}, nil
}

type fakeInquiryStore struct {
	inquiries  map[string]*models.OrderInquiry
	list       []models.OrderInquiry
	total      int
	bulkStatus *models.InquiryBulkStatusUpdate
	bulkDelete []string
}

func (f *fakeInquiryStore) CreateInquiry(ctx context.Context, q *models.OrderInquiry) (*models.OrderInquiry, error) {
	q.ID = "inq-1"
	q.Status = models.InquiryPending
	q.CreatedAt = time.Now()
	return q, nil
}

func (f *fakeInquiryStore) GetInquiry(ctx context.Context, id string) (*models.OrderInquiry, error) {
	q, ok := f.inquiries[id]
	if !ok {
		return nil, database.ErrInquiryNotFound
	}
	return q, nil
}

func (f *fakeInquiryStore) ListInquiries(ctx context.Context, filter models.InquiryFilter) ([]models.OrderInquiry, int, error) {
	return f.list, f.total, nil
}

func (f *fakeInquiryStore) UpdateInquiry(ctx context.Context, q *models.OrderInquiry) (*models.OrderInquiry, error) {
	if _, ok := f.inquiries[q.ID]; !ok {
		return nil, database.ErrInquiryNotFound
	}
	return q, nil
}

func (f *fakeInquiryStore) UpdateInquiryStatus(ctx context.Context, id string, update models.InquiryStatusUpdate) (*models.OrderInquiry, error) {
	q, ok := f.inquiries[id]
	if !ok {
		return nil, database.ErrInquiryNotFound
	}
	q.Status = update.Status
	return q, nil
}

func (f *fakeInquiryStore) DeleteInquiry(ctx context.Context, id string) error {
	if _, ok := f.inquiries[id]; !ok {
		return database.ErrInquiryNotFound
	}
	delete(f.inquiries, id)
	return nil
}

func (f *fakeInquiryStore) BulkUpdateInquiryStatus(ctx context.Context, update models.InquiryBulkStatusUpdate) (int, error) {
	f.bulkStatus = &update
	return len(update.IDs), nil
}

func (f *fakeInquiryStore) BulkDeleteInquiries(ctx context.Context, ids []string) (int, error) {
	f.bulkDelete = ids
	return len(ids), nil
}

func (f *fakeInquiryStore) InquiryStats(ctx context.Context) (*models.InquiryStats, error) {
	return &models.InquiryStats{Total: f.total}, nil
}

type fakeAuthStore struct {
	user       *models.AuthUser
	validToken string
	emailTaken bool
}

func (f *fakeAuthStore) CreateUser(ctx context.Context, email, username, password string) (*models.AuthUser, error) {
	if f.emailTaken {
		return nil, database.ErrEmailTaken
	}
	return &models.AuthUser{ID: "u1", Email: email, Username: username, Role: models.RoleAdmin}, nil
}

func (f *fakeAuthStore) Authenticate(ctx context.Context, email, password string) (*models.AuthUser, error) {
	if f.user == nil || f.user.Email != email || password != "correct-password" {
		return nil, database.ErrInvalidCredentials
	}
	return f.user, nil
}

func (f *fakeAuthStore) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	return "session-token", nil
}

func (f *fakeAuthStore) UserByToken(ctx context.Context, token string) (*models.AuthUser, error) {
	if f.user == nil || token != f.validToken {
		return nil, database.ErrInvalidToken
	}
	return f.user, nil
}

func (f *fakeAuthStore) RefreshSession(ctx context.Context, token string, ttl time.Duration) (string, *models.AuthUser, error) {
	if f.user == nil || token != f.validToken {
		return "", nil, database.ErrInvalidToken
	}
	return "rotated-token", f.user, nil
}

func (f *fakeAuthStore) DeleteSession(ctx context.Context, token string) error {
	return nil
}

type recordingPublisher struct {
	created []events.InquiryCreatedEvent
	status  []events.InquiryStatusChangedEvent
}

func (r *recordingPublisher) PublishInquiryCreated(event events.InquiryCreatedEvent) error {
	r.created = append(r.created, event)
	return nil
}

func (r *recordingPublisher) PublishInquiryStatusChanged(event events.InquiryStatusChangedEvent) error {
	r.status = append(r.status, event)
	return nil
}

type recordingBroadcaster struct {
	messages []string
}

func (r *recordingBroadcaster) Broadcast(messageType string, data interface{}, source string) {
	r.messages = append(r.messages, messageType)
}

type testEnv struct {
	handler   *Handler
	products  *fakeProductStore
	inquiries *fakeInquiryStore
	auth      *fakeAuthStore
	router    http.Handler
}

func newTestEnv() *testEnv {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	products := &fakeProductStore{products: map[string]*models.Product{}}
	inquiries := &fakeInquiryStore{inquiries: map[string]*models.OrderInquiry{}}
	auth := &fakeAuthStore{
		user:       &models.AuthUser{ID: "u1", Email: "admin@store.dz", Username: "admin", Role: models.RoleAdmin},
		validToken: "valid-token",
	}

	handler := NewHandler(products, inquiries, auth, logger, time.Hour)
	return &testEnv{
		handler:   handler,
		products:  products,
		inquiries: inquiries,
		auth:      auth,
		router:    handler.Router(logger),
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, models.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestListProductsPageBeyondEnd(t *testing.T) {
	env := newTestEnv()
	env.products.list = []models.Product{}
	env.products.total = 35

	rec, envelope := doJSON(t, env.router, "GET", "/api/products?page=9&limit=10", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 9, envelope.Pagination.CurrentPage)
	assert.Equal(t, 4, envelope.Pagination.TotalPages)
	assert.False(t, envelope.Pagination.HasNextPage)

	var items []models.Product
	require.NoError(t, json.Unmarshal(envelope.Data, &items))
	assert.Empty(t, items)
}

func TestCreateProductRequiresAuth(t *testing.T) {
	env := newTestEnv()

	rec, envelope := doJSON(t, env.router, "POST", "/api/products", "", models.Product{Name: "Hoodie"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Authentication required", envelope.Message)
}

func TestCreateProductRejectsBadToken(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.router, "POST", "/api/products", "stale-token", models.Product{Name: "Hoodie"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv()

	product := models.Product{Name: "Hoodie", Price: decimal.RequireFromString("-5")}
	rec, envelope := doJSON(t, env.router, "POST", "/api/products", "valid-token", product)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, envelope.Success)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "price", envelope.Errors[0].Field)
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv()

	product := models.Product{Name: "Hoodie", Price: decimal.RequireFromString("45.00")}
	rec, envelope := doJSON(t, env.router, "POST", "/api/products", "valid-token", product)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, envelope.Success)

	var created models.Product
	require.NoError(t, json.Unmarshal(envelope.Data, &created))
	assert.Equal(t, "prod-1", created.ID)
}

func TestCreateInquiryUnknownProduct(t *testing.T) {
	env := newTestEnv()

	inquiry := models.OrderInquiry{
		ProductID: "missing",
		Customer:  models.CustomerData{Name: "Sara", Phone: "0550000000"},
	}
	rec, envelope := doJSON(t, env.router, "POST", "/api/order-inquiries/create", "", inquiry)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "productId", envelope.Errors[0].Field)
}

func TestCreateInquiryDenormalizesProductName(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &models.Product{ID: "p1", Name: "Hoodie", Price: decimal.RequireFromString("45.00")}

	publisher := &recordingPublisher{}
	broadcaster := &recordingBroadcaster{}
	env.handler.SetEventPublisher(publisher)
	env.handler.SetBroadcaster(broadcaster)

	inquiry := models.OrderInquiry{
		ProductID: "p1",
		Customer:  models.CustomerData{Name: "Sara", Phone: "0550000000"},
	}
	rec, envelope := doJSON(t, env.router, "POST", "/api/order-inquiries/create", "", inquiry)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.OrderInquiry
	require.NoError(t, json.Unmarshal(envelope.Data, &created))
	assert.Equal(t, "Hoodie", created.ProductName)
	assert.Equal(t, models.InquiryPending, created.Status)

	require.Len(t, publisher.created, 1)
	assert.Equal(t, "inq-1", publisher.created[0].InquiryID)
	assert.Equal(t, []string{"inquiry_created"}, broadcaster.messages)
}

func TestCreateInquiryRateLimited(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &models.Product{ID: "p1", Name: "Hoodie", Price: decimal.RequireFromString("45.00")}

	inquiry := models.OrderInquiry{
		ProductID: "p1",
		Customer:  models.CustomerData{Name: "Sara", Phone: "0550000000"},
	}

	rec, _ := doJSON(t, env.router, "POST", "/api/order-inquiries/create", "", inquiry)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, envelope := doJSON(t, env.router, "POST", "/api/order-inquiries/create", "", inquiry)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, envelope.Success)
}

func TestBulkUpdateInquiryStatus(t *testing.T) {
	env := newTestEnv()

	update := models.InquiryBulkStatusUpdate{
		IDs:    []string{"a", "b", "c"},
		Status: models.InquiryContacted,
	}
	rec, envelope := doJSON(t, env.router, "PATCH", "/api/order-inquiries/bulk/status", "valid-token", update)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result map[string]int
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	assert.Equal(t, 3, result["affected"])

	require.NotNil(t, env.inquiries.bulkStatus)
	assert.Equal(t, update.IDs, env.inquiries.bulkStatus.IDs)
	assert.Equal(t, models.InquiryContacted, env.inquiries.bulkStatus.Status)
}

func TestBulkUpdateInquiryStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv()

	update := models.InquiryBulkStatusUpdate{IDs: []string{"a"}, Status: "shipped"}
	rec, envelope := doJSON(t, env.router, "PATCH", "/api/order-inquiries/bulk/status", "valid-token", update)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "status", envelope.Errors[0].Field)
	assert.Nil(t, env.inquiries.bulkStatus)
}

func TestBulkDeleteInquiries(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.router, "DELETE", "/api/order-inquiries/bulk/delete", "valid-token",
		models.InquiryBulkDelete{IDs: []string{"a", "b"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b"}, env.inquiries.bulkDelete)
}

func TestBulkDeleteRequiresIDs(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.router, "DELETE", "/api/order-inquiries/bulk/delete", "valid-token",
		models.InquiryBulkDelete{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateInquiryStatusPublishesEvent(t *testing.T) {
	env := newTestEnv()
	env.inquiries.inquiries["inq-1"] = &models.OrderInquiry{
		ID:        "inq-1",
		ProductID: "p1",
		Status:    models.InquiryPending,
	}

	publisher := &recordingPublisher{}
	env.handler.SetEventPublisher(publisher)

	rec, _ := doJSON(t, env.router, "PATCH", "/api/order-inquiries/inq-1/status", "valid-token",
		models.InquiryStatusUpdate{Status: models.InquiryConverted})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, publisher.status, 1)
	assert.Equal(t, "converted", publisher.status[0].Status)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv()

	rec, envelope := doJSON(t, env.router, "POST", "/api/auth/login", "",
		models.LoginRequest{Email: "admin@store.dz", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", envelope.Message)
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv()

	rec, envelope := doJSON(t, env.router, "POST", "/api/auth/login", "",
		models.LoginRequest{Email: "admin@store.dz", Password: "correct-password"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var payload models.AuthPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "session-token", payload.Token)
	assert.Equal(t, "admin@store.dz", payload.User.Email)
}

func TestRegisterConflict(t *testing.T) {
	env := newTestEnv()
	env.auth.emailTaken = true

	rec, _ := doJSON(t, env.router, "POST", "/api/auth/register", "",
		models.RegisterRequest{Email: "admin@store.dz", Username: "admin", Password: "longenough"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv()

	rec, envelope := doJSON(t, env.router, "POST", "/api/auth/refresh", "valid-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var payload models.AuthPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "rotated-token", payload.Token)
}

func TestMe(t *testing.T) {
	env := newTestEnv()

	rec, envelope := doJSON(t, env.router, "GET", "/api/auth/me", "valid-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.AuthUser
	require.NoError(t, json.Unmarshal(envelope.Data, &user))
	assert.Equal(t, "admin", user.Username)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()

	rec, envelope := doJSON(t, env.router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}
