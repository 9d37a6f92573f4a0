package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Router wires the full REST surface under /api. Admin routes sit behind the
// bearer-token middleware; the storefront endpoints stay public.
func (h *Handler) Router(logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	api.HandleFunc("/auth/refresh", h.Refresh).Methods("POST")
	api.Handle("/auth/me", h.requireAuth(http.HandlerFunc(h.Me))).Methods("GET")
	api.Handle("/auth/validate", h.requireAuth(http.HandlerFunc(h.ValidateToken))).Methods("GET")

	// Storefront (public)
	api.HandleFunc("/products", h.ListProducts).Methods("GET")
	api.HandleFunc("/products/stats/overview", h.ProductStats).Methods("GET")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")

	limiter := newRateLimiter(2*time.Second, logger)
	api.HandleFunc("/order-inquiries/create", limiter.middleware(h.CreateInquiry)).Methods("POST")

	// Admin (authenticated)
	api.Handle("/products", h.requireAuth(http.HandlerFunc(h.CreateProduct))).Methods("POST")
	api.Handle("/products/bulk", h.requireAuth(http.HandlerFunc(h.BulkUpdateProducts))).Methods("PATCH")
	api.Handle("/products/{id}", h.requireAuth(http.HandlerFunc(h.UpdateProduct))).Methods("PUT")
	api.Handle("/products/{id}", h.requireAuth(http.HandlerFunc(h.DeleteProduct))).Methods("DELETE")

	api.Handle("/order-inquiries", h.requireAuth(http.HandlerFunc(h.ListInquiries))).Methods("GET")
	api.Handle("/order-inquiries/stats", h.requireAuth(http.HandlerFunc(h.InquiryStats))).Methods("GET")
	api.Handle("/order-inquiries/bulk/status", h.requireAuth(http.HandlerFunc(h.BulkUpdateInquiryStatus))).Methods("PATCH")
	api.Handle("/order-inquiries/bulk/delete", h.requireAuth(http.HandlerFunc(h.BulkDeleteInquiries))).Methods("DELETE")
	api.Handle("/order-inquiries/{id}", h.requireAuth(http.HandlerFunc(h.GetInquiry))).Methods("GET")
	api.Handle("/order-inquiries/{id}", h.requireAuth(http.HandlerFunc(h.UpdateInquiry))).Methods("PUT")
	api.Handle("/order-inquiries/{id}/status", h.requireAuth(http.HandlerFunc(h.UpdateInquiryStatus))).Methods("PATCH")
	api.Handle("/order-inquiries/{id}", h.requireAuth(http.HandlerFunc(h.DeleteInquiry))).Methods("DELETE")

	return router
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, "healthy", map[string]string{
		"status":  "healthy",
		"service": "store-api",
	}, nil)
}
