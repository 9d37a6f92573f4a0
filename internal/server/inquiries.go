package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/internal/events"
	"github.com/creeeasy/online-store-sub000/internal/validate"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

// CreateInquiry is the public lead-capture endpoint. The product name is
// denormalized onto the inquiry at creation time.
func (h *Handler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var inquiry models.OrderInquiry
	if err := json.NewDecoder(r.Body).Decode(&inquiry); err != nil {
		h.logger.WithError(err).Error("Failed to decode inquiry request")
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validate.Inquiry(&inquiry); len(errs) > 0 {
		h.respondValidation(w, errs)
		return
	}

	product, err := h.products.GetProduct(r.Context(), inquiry.ProductID)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			h.respondValidation(w, []models.FieldError{
				{Field: "productId", Message: "unknown product", Value: inquiry.ProductID, Location: "body"},
			})
			return
		}
		h.logger.WithError(err).Error("Failed to resolve inquiry product")
		h.respondError(w, http.StatusInternalServerError, "Failed to create inquiry")
		return
	}
	inquiry.ProductName = product.Name

	created, err := h.inquiries.CreateInquiry(r.Context(), &inquiry)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create inquiry")
		h.respondError(w, http.StatusInternalServerError, "Failed to create inquiry")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"inquiry_id": created.ID,
		"product_id": created.ProductID,
		"customer":   created.Customer.Name,
	}).Info("Inquiry created")

	if h.producer != nil {
		event := events.InquiryCreatedEvent{
			InquiryID:    created.ID,
			ProductID:    created.ProductID,
			ProductName:  created.ProductName,
			CustomerName: created.Customer.Name,
			CreatedAt:    created.CreatedAt,
		}
		if err := h.producer.PublishInquiryCreated(event); err != nil {
			// Event delivery is best effort; the inquiry is already stored.
			h.logger.WithError(err).Error("Failed to publish inquiry created event")
		}
	}
	if h.hub != nil {
		h.hub.Broadcast("inquiry_created", created, "api")
	}

	h.respond(w, http.StatusCreated, "Inquiry created", created, nil)
}

func (h *Handler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	filter := parseInquiryFilter(r)

	inquiries, total, err := h.inquiries.ListInquiries(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list inquiries")
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch inquiries")
		return
	}

	h.respond(w, http.StatusOK, "Inquiries fetched", inquiries,
		models.NewPagination(filter.Page, filter.Limit, total))
}

func (h *Handler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	inquiry, err := h.inquiries.GetInquiry(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			h.respondError(w, http.StatusNotFound, "Inquiry not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get inquiry")
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch inquiry")
		return
	}

	h.respond(w, http.StatusOK, "Inquiry fetched", inquiry, nil)
}

func (h *Handler) UpdateInquiry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var inquiry models.OrderInquiry
	if err := json.NewDecoder(r.Body).Decode(&inquiry); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	inquiry.ID = id

	if errs := validate.Inquiry(&inquiry); len(errs) > 0 {
		h.respondValidation(w, errs)
		return
	}

	updated, err := h.inquiries.UpdateInquiry(r.Context(), &inquiry)
	if err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			h.respondError(w, http.StatusNotFound, "Inquiry not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update inquiry")
		h.respondError(w, http.StatusInternalServerError, "Failed to update inquiry")
		return
	}

	h.respond(w, http.StatusOK, "Inquiry updated", updated, nil)
}

func (h *Handler) UpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var update models.InquiryStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !update.Status.Valid() {
		h.respondValidation(w, []models.FieldError{
			{Field: "status", Message: "unknown status", Value: string(update.Status), Location: "body"},
		})
		return
	}

	updated, err := h.inquiries.UpdateInquiryStatus(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			h.respondError(w, http.StatusNotFound, "Inquiry not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update inquiry status")
		h.respondError(w, http.StatusInternalServerError, "Failed to update inquiry status")
		return
	}

	h.publishStatusChange(updated)
	h.respond(w, http.StatusOK, "Inquiry status updated", updated, nil)
}

func (h *Handler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.inquiries.DeleteInquiry(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			h.respondError(w, http.StatusNotFound, "Inquiry not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete inquiry")
		h.respondError(w, http.StatusInternalServerError, "Failed to delete inquiry")
		return
	}

	h.logger.WithField("inquiry_id", id).Info("Inquiry deleted")
	h.respond(w, http.StatusOK, "Inquiry deleted", nil, nil)
}

// BulkUpdateInquiryStatus moves the whole selection in one call; clients
// never loop over ids.
func (h *Handler) BulkUpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	var update models.InquiryBulkStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(update.IDs) == 0 {
		h.respondValidation(w, []models.FieldError{
			{Field: "ids", Message: "at least one inquiry id is required", Location: "body"},
		})
		return
	}
	if !update.Status.Valid() {
		h.respondValidation(w, []models.FieldError{
			{Field: "status", Message: "unknown status", Value: string(update.Status), Location: "body"},
		})
		return
	}

	affected, err := h.inquiries.BulkUpdateInquiryStatus(r.Context(), update)
	if err != nil {
		h.logger.WithError(err).Error("Failed to bulk update inquiry status")
		h.respondError(w, http.StatusInternalServerError, "Failed to update inquiries")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"ids":      len(update.IDs),
		"affected": affected,
		"status":   update.Status,
	}).Info("Inquiries bulk status updated")

	if h.hub != nil {
		h.hub.Broadcast("inquiry_bulk_status", update, "api")
	}

	h.respond(w, http.StatusOK, "Inquiries updated", map[string]int{"affected": affected}, nil)
}

func (h *Handler) BulkDeleteInquiries(w http.ResponseWriter, r *http.Request) {
	var req models.InquiryBulkDelete
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		h.respondValidation(w, []models.FieldError{
			{Field: "ids", Message: "at least one inquiry id is required", Location: "body"},
		})
		return
	}

	affected, err := h.inquiries.BulkDeleteInquiries(r.Context(), req.IDs)
	if err != nil {
		h.logger.WithError(err).Error("Failed to bulk delete inquiries")
		h.respondError(w, http.StatusInternalServerError, "Failed to delete inquiries")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"ids":      len(req.IDs),
		"affected": affected,
	}).Info("Inquiries bulk deleted")

	h.respond(w, http.StatusOK, "Inquiries deleted", map[string]int{"affected": affected}, nil)
}

func (h *Handler) InquiryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inquiries.InquiryStats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute inquiry stats")
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch inquiry stats")
		return
	}
	h.respond(w, http.StatusOK, "Inquiry stats fetched", stats, nil)
}

func (h *Handler) publishStatusChange(inquiry *models.OrderInquiry) {
	if h.producer != nil {
		event := events.InquiryStatusChangedEvent{
			InquiryID: inquiry.ID,
			ProductID: inquiry.ProductID,
			Status:    string(inquiry.Status),
			UpdatedAt: inquiry.UpdatedAt,
		}
		if err := h.producer.PublishInquiryStatusChanged(event); err != nil {
			h.logger.WithError(err).Error("Failed to publish status change event")
		}
	}
	if h.hub != nil {
		h.hub.Broadcast("inquiry_status_changed", inquiry, "api")
	}
}
