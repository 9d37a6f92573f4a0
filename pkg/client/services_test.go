package client

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

type apiRecorder struct {
	*httptest.Server
	mux      *http.ServeMux
	requests []string
}

func (a *apiRecorder) count(method, path string) int {
	n := 0
	for _, r := range a.requests {
		if r == method+" "+path {
			n++
		}
	}
	return n
}

func newAPIRecorder(t *testing.T) *apiRecorder {
	t.Helper()
	rec := &apiRecorder{mux: http.NewServeMux()}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.requests = append(rec.requests, r.Method+" "+r.URL.Path)
		rec.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(rec.Close)
	return rec
}

func newProductsService(t *testing.T, srv *apiRecorder) (*Products, *Cache) {
	t.Helper()
	cache := NewCache()
	c := New(srv.URL, NewMemCredentialStore(), testLogger())
	return NewProducts(c, cache, NopNotifier{}), cache
}

func newInquiriesService(t *testing.T, srv *apiRecorder) (*Inquiries, *Cache) {
	t.Helper()
	cache := NewCache()
	c := New(srv.URL, NewMemCredentialStore(), testLogger())
	return NewInquiries(c, cache, NopNotifier{}), cache
}

func TestProductsListCachesPerFilter(t *testing.T) {
	srv := newAPIRecorder(t)
	srv.mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal([]models.Product{{ID: "p1", Name: "Hoodie"}})
		writeTestEnvelope(w, http.StatusOK, models.Response{
			Success:    true,
			Data:       data,
			Pagination: models.NewPagination(1, 10, 1),
		})
	})

	products, _ := newProductsService(t, srv)

	page, err := products.List(context.Background(), models.ProductFilter{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Pagination)

	_, err = products.List(context.Background(), models.ProductFilter{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, srv.count("GET", "/products"), "second identical list answers from cache")

	_, err = products.List(context.Background(), models.ProductFilter{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, srv.count("GET", "/products"), "different filter is a different cache key")
}

func TestProductsCreateBlocksInvalidBeforeNetwork(t *testing.T) {
	srv := newAPIRecorder(t)
	products, _ := newProductsService(t, srv)

	_, err := products.Create(context.Background(), &models.Product{
		Name:  "Hoodie",
		Price: decimal.RequireFromString("-5"),
	})

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "price", apiErr.Fields[0].Field)
	assert.Empty(t, srv.requests, "invalid drafts never reach the network")
}

func TestProductsCreateInvalidatesReads(t *testing.T) {
	srv := newAPIRecorder(t)
	srv.mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			data, _ := json.Marshal(models.Product{ID: "p-new", Name: "Hoodie"})
			writeTestEnvelope(w, http.StatusCreated, models.Response{Success: true, Data: data})
			return
		}
		data, _ := json.Marshal([]models.Product{})
		writeTestEnvelope(w, http.StatusOK, models.Response{Success: true, Data: data, Pagination: models.NewPagination(1, 10, 0)})
	})
	srv.mux.HandleFunc("/products/stats/overview", func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(models.ProductStats{TotalProducts: 1})
		writeTestEnvelope(w, http.StatusOK, models.Response{Success: true, Data: data})
	})

	products, cache := newProductsService(t, srv)

	_, err := products.List(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	_, err = products.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	_, err = products.Create(context.Background(), &models.Product{
		Name:  "Hoodie",
		Price: decimal.RequireFromString("45.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, cache.Len(), "list and stats entries are dropped after a create")
}

func TestInquiriesBulkStatusSingleCall(t *testing.T) {
	srv := newAPIRecorder(t)

	var gotBody models.InquiryBulkStatusUpdate
	srv.mux.HandleFunc("/order-inquiries/bulk/status", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		data, _ := json.Marshal(map[string]int{"affected": len(gotBody.IDs)})
		writeTestEnvelope(w, http.StatusOK, models.Response{Success: true, Data: data})
	})

	inquiries, cache := newInquiriesService(t, srv)

	// Seed cache entries that must be invalidated by the bulk call.
	cache.Put(inquiryListPrefix+"page=1", &InquiryPage{})
	cache.Put(inquiryStatsKey, &models.InquiryStats{})
	cache.Put(inquiryItemPrefix+"a", &models.OrderInquiry{ID: "a"})
	cache.Put(inquiryItemPrefix+"b", &models.OrderInquiry{ID: "b"})
	cache.Put(inquiryItemPrefix+"untouched", &models.OrderInquiry{ID: "untouched"})

	ids := []string{"a", "b", "c"}
	affected, err := inquiries.BulkUpdateStatus(context.Background(), models.InquiryBulkStatusUpdate{
		IDs:    ids,
		Status: models.InquiryContacted,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, affected)

	assert.Equal(t, 1, srv.count("PATCH", "/order-inquiries/bulk/status"), "one call for the whole selection")
	assert.Equal(t, ids, gotBody.IDs)
	assert.Equal(t, models.InquiryContacted, gotBody.Status)

	assert.Equal(t, 1, cache.Len(), "only the unselected item entry survives")
}

func TestInquiriesBulkDeleteSingleCall(t *testing.T) {
	srv := newAPIRecorder(t)

	var gotBody models.InquiryBulkDelete
	srv.mux.HandleFunc("/order-inquiries/bulk/delete", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		data, _ := json.Marshal(map[string]int{"affected": len(gotBody.IDs)})
		writeTestEnvelope(w, http.StatusOK, models.Response{Success: true, Data: data})
	})

	inquiries, _ := newInquiriesService(t, srv)

	affected, err := inquiries.BulkDelete(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, affected)
	assert.Equal(t, 1, srv.count("DELETE", "/order-inquiries/bulk/delete"))
	assert.Equal(t, []string{"a", "b"}, gotBody.IDs)
}

func TestInquiriesBulkStatusFailureKeepsCache(t *testing.T) {
	srv := newAPIRecorder(t)
	srv.mux.HandleFunc("/order-inquiries/bulk/status", func(w http.ResponseWriter, r *http.Request) {
		writeTestEnvelope(w, http.StatusInternalServerError, models.Response{Success: false, Message: "Failed to update inquiries"})
	})

	inquiries, cache := newInquiriesService(t, srv)
	cache.Put(inquiryStatsKey, &models.InquiryStats{})

	_, err := inquiries.BulkUpdateStatus(context.Background(), models.InquiryBulkStatusUpdate{
		IDs:    []string{"a"},
		Status: models.InquiryContacted,
	})
	require.Error(t, err)
	assert.Equal(t, 1, cache.Len(), "a failed mutation leaves cached reads alone")
}

func exportTestInquiry(id, name, phone, notes string) models.OrderInquiry {
	qty := 2
	total := decimal.RequireFromString("90.00")
	return models.OrderInquiry{
		ID:          id,
		ProductID:   "p1",
		ProductName: "Hoodie",
		Customer:    models.CustomerData{Name: name, Phone: phone, Reference: "near the market"},
		Quantity:    &qty,
		TotalPrice:  &total,
		Status:      models.InquiryPending,
		Notes:       notes,
		CreatedAt:   time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestExportCSV(t *testing.T) {
	srv := newAPIRecorder(t)
	srv.mux.HandleFunc("/order-inquiries/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/order-inquiries/")
		if id == "missing" {
			writeTestEnvelope(w, http.StatusNotFound, models.Response{Success: false, Message: "Inquiry not found"})
			return
		}
		data, _ := json.Marshal(exportTestInquiry(id, "Sara \"S\"", "0550000000", "call after 6pm, please"))
		writeTestEnvelope(w, http.StatusOK, models.Response{Success: true, Data: data})
	})

	inquiries, _ := newInquiriesService(t, srv)

	var buf bytes.Buffer
	exported, err := inquiries.ExportCSV(context.Background(), []string{"a", "missing", "b"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, exported, "a record that fails to load is skipped, not fatal")

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")

	assert.Equal(t, []string{
		"id", "productName", "customerName", "phone", "reference",
		"quantity", "totalPrice", "status", "createdAt", "notes",
	}, records[0])

	row := records[1]
	assert.Equal(t, "a", row[0])
	assert.Equal(t, "Hoodie", row[1])
	assert.Equal(t, `Sara "S"`, row[2], "embedded quotes survive the round trip")
	assert.Equal(t, "2", row[5])
	assert.Equal(t, "90", row[6])
	assert.Equal(t, "pending", row[7])
	assert.Equal(t, "2025-06-15T10:30:00Z", row[8])
	assert.Equal(t, "call after 6pm, please", row[9], "commas inside fields stay in one column")

	// Every field is individually quoted in the raw output.
	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(firstLine, `"id","productName"`))
}

func TestExportCSVUsesCachedDetail(t *testing.T) {
	srv := newAPIRecorder(t)
	srv.mux.HandleFunc("/order-inquiries/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/order-inquiries/")
		data, _ := json.Marshal(exportTestInquiry(id, "Sara", "0550000000", ""))
		writeTestEnvelope(w, http.StatusOK, models.Response{Success: true, Data: data})
	})

	inquiries, _ := newInquiriesService(t, srv)

	_, err := inquiries.Get(context.Background(), "a")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = inquiries.ExportCSV(context.Background(), []string{"a"}, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, srv.count("GET", "/order-inquiries/a"), "detail already in cache is not refetched")
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "order-inquiries-2025-06-15.csv", ExportFilename(now))
}
