package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/invoice"
	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/service"
)

// maxWebhookBody bounds how much of a webhook payload is read. Stripe
// events are small; anything larger is not a legitimate event.
const maxWebhookBody = 1 << 20

// PaymentHandler holds the HTTP handlers for the checkout and webhook flows.
type PaymentHandler struct {
	svc     *service.PaymentService
	metrics *Metrics
	logger  *zap.Logger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc *service.PaymentService, metrics *Metrics, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, metrics: metrics, logger: logger}
}

// CreateCheckout handles POST /payments/checkout
// Opens a hosted checkout session for a paid workshop registration.
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.svc.CreateCheckout(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Webhook handles POST /payments/webhook
// The raw body and Stripe-Signature header are passed through untouched so
// signature verification sees exactly the bytes the provider signed. A 200
// tells the provider to stop retrying; 400 means the event was unusable.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	finalized, err := h.svc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if finalized {
		h.metrics.RecordRegistration("paid")
		h.metrics.RecordPaymentFinalized()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// Invoice handles GET /payments/{sessionID}/invoice
// Streams the PDF invoice for a finalized payment.
func (h *PaymentHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	inv, err := h.svc.Invoice(r.Context(), sessionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := invoice.Render(&buf, *inv); err != nil {
		respondError(w, h.logger, fmt.Errorf("render invoice: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+sessionID+".pdf"))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	_, _ = buf.WriteTo(w)
}
