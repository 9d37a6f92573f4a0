package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/internal/validate"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := parseProductFilter(r)

	products, total, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	h.respond(w, http.StatusOK, "Products fetched", products,
		models.NewPagination(filter.Page, filter.Limit, total))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get product")
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	h.respond(w, http.StatusOK, "Product fetched", product, nil)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.logger.WithError(err).Error("Failed to decode product request")
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validate.Product(&product); len(errs) > 0 {
		h.respondValidation(w, errs)
		return
	}

	created, err := h.products.CreateProduct(r.Context(), &product)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create product")
		h.respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"product_id": created.ID,
		"name":       created.Name,
	}).Info("Product created")

	h.respond(w, http.StatusCreated, "Product created", created, nil)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.logger.WithError(err).Error("Failed to decode product request")
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	product.ID = id

	if errs := validate.Product(&product); len(errs) > 0 {
		h.respondValidation(w, errs)
		return
	}

	updated, err := h.products.UpdateProduct(r.Context(), &product)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update product")
		h.respondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	h.respond(w, http.StatusOK, "Product updated", updated, nil)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete product")
		h.respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	h.logger.WithField("product_id", id).Info("Product deleted")
	h.respond(w, http.StatusOK, "Product deleted", nil, nil)
}

func (h *Handler) BulkUpdateProducts(w http.ResponseWriter, r *http.Request) {
	var update models.ProductBulkUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(update.IDs) == 0 {
		h.respondValidation(w, []models.FieldError{
			{Field: "ids", Message: "at least one product id is required", Location: "body"},
		})
		return
	}
	if update.DiscountPercent != nil && (*update.DiscountPercent < 1 || *update.DiscountPercent > 99) {
		h.respondValidation(w, []models.FieldError{
			{Field: "discountPercent", Message: "discount percent must be between 1 and 99",
				Value: *update.DiscountPercent, Location: "body"},
		})
		return
	}

	affected, err := h.products.BulkUpdateProducts(r.Context(), update)
	if err != nil {
		h.logger.WithError(err).Error("Failed to bulk update products")
		h.respondError(w, http.StatusInternalServerError, "Failed to update products")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"ids":      len(update.IDs),
		"affected": affected,
	}).Info("Products bulk updated")

	h.respond(w, http.StatusOK, "Products updated", map[string]int{"affected": affected}, nil)
}

func (h *Handler) ProductStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.products.ProductStats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute product stats")
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch product stats")
		return
	}
	h.respond(w, http.StatusOK, "Product stats fetched", stats, nil)
}
