package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/mail"
	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/payments"
	"github.com/lewismosage/acna-sub000/internal/repository"
)

// PaymentStore is the persistence surface PaymentService needs.
type PaymentStore interface {
	FinalizeCheckout(ctx context.Context, p repository.FinalizeParams) (*model.Registration, *model.Payment, bool, error)
	InvoiceBySessionID(ctx context.Context, sessionID string) (*model.Invoice, error)
}

// PaymentService owns the checkout session and webhook flows.
type PaymentService struct {
	workshops WorkshopStore
	payments  PaymentStore
	provider  payments.Provider
	mailer    mail.Mailer
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService with its dependencies.
func NewPaymentService(workshops WorkshopStore, store PaymentStore, provider payments.Provider, mailer mail.Mailer, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		workshops: workshops,
		payments:  store,
		provider:  provider,
		mailer:    mailer,
		logger:    logger,
	}
}

// CreateCheckout asks the provider for a hosted checkout session. The
// workshop is re-fetched as a defense against stale client state, and the
// attendee payload is serialized into the session metadata because no
// database row exists yet to reference by id.
func (s *PaymentService) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if req.WorkshopID == "" {
		return nil, invalidf("workshopId is required")
	}
	if err := validateAttendee(&req.Registration); err != nil {
		return nil, err
	}

	w, err := s.workshops.GetByID(ctx, req.WorkshopID)
	if err != nil {
		return nil, err
	}
	if w.Status != model.WorkshopOpen {
		return nil, repository.ErrWorkshopNotOpen
	}
	if w.IsFull() {
		return nil, repository.ErrWorkshopFull
	}
	if w.IsFree() {
		return nil, invalidf("workshop is free, no payment is required")
	}
	if req.AmountCents != w.PriceCents {
		return nil, invalidf("amount does not match the workshop price")
	}

	regJSON, err := json.Marshal(req.Registration)
	if err != nil {
		return nil, fmt.Errorf("encode registration payload: %w", err)
	}

	sess, err := s.provider.CreateSession(ctx, payments.SessionParams{
		Title:       w.Title,
		Description: w.Description,
		AmountCents: w.PriceCents,
		Currency:    w.Currency,
		Metadata: map[string]string{
			payments.MetaWorkshopID:   w.ID,
			payments.MetaRegistration: string(regJSON),
		},
	})
	if err != nil {
		s.logger.Error("checkout session creation failed",
			zap.String("workshop_id", w.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: create session", ErrProvider)
	}
	return sess, nil
}

// HandleWebhook verifies and processes one provider event. It reports
// whether a new payment was finalized by this delivery.
//
// checkout.session.completed is the commit point of a paid registration:
// registration row, payment row and counter increment happen together in
// one transaction keyed by the session id, so webhook redelivery is a
// no-op. Any other event type is acknowledged and ignored. Verification or
// decode failures return ErrInvalidEvent before anything is touched.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (bool, error) {
	evt, err := s.provider.ParseEvent(payload, sigHeader)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if evt.Type != payments.EventCheckoutCompleted {
		s.logger.Debug("ignoring webhook event", zap.String("type", evt.Type))
		return false, nil
	}

	workshopID := evt.Metadata[payments.MetaWorkshopID]
	regData := evt.Metadata[payments.MetaRegistration]
	if workshopID == "" || regData == "" || evt.SessionID == "" {
		return false, fmt.Errorf("%w: missing session metadata", ErrInvalidEvent)
	}
	var att model.AttendeeRequest
	if err := json.Unmarshal([]byte(regData), &att); err != nil {
		return false, fmt.Errorf("%w: bad registration payload: %v", ErrInvalidEvent, err)
	}
	if err := validateAttendee(&att); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	reg, pay, alreadyProcessed, err := s.payments.FinalizeCheckout(ctx, repository.FinalizeParams{
		SessionID:   evt.SessionID,
		WorkshopID:  workshopID,
		Attendee:    att,
		AmountCents: evt.AmountCents,
		Currency:    evt.Currency,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			// The attendee registered through another path while checkout
			// was in flight. Acknowledge so the provider stops retrying; a
			// retry cannot resolve this.
			s.logger.Warn("paid session for already-registered email",
				zap.String("session_id", evt.SessionID),
				zap.String("workshop_id", workshopID))
			return false, nil
		}
		if errors.Is(err, repository.ErrWorkshopFull) {
			// The last seats went to other attendees while checkout was in
			// flight. Acknowledge and flag for a manual refund; a retry
			// cannot free a seat.
			s.logger.Warn("paid session for full workshop, refund required",
				zap.String("session_id", evt.SessionID),
				zap.String("workshop_id", workshopID))
			return false, nil
		}
		return false, fmt.Errorf("finalize checkout %s: %w", evt.SessionID, err)
	}
	if alreadyProcessed {
		s.logger.Info("webhook redelivery for finalized session",
			zap.String("session_id", evt.SessionID))
		return false, nil
	}

	s.logger.Info("paid registration finalized",
		zap.String("session_id", evt.SessionID),
		zap.String("workshop_id", workshopID),
		zap.Int64("amount_cents", pay.AmountCents))

	if w, err := s.workshops.GetByID(ctx, workshopID); err == nil {
		if err := s.mailer.SendPaymentReceipt(*reg, *w, *pay); err != nil {
			s.logger.Warn("receipt email failed",
				zap.String("email", reg.Email), zap.Error(err))
		}
	}
	return true, nil
}

// Invoice loads the invoice read model for a provider session id.
func (s *PaymentService) Invoice(ctx context.Context, sessionID string) (*model.Invoice, error) {
	if sessionID == "" {
		return nil, invalidf("session id is required")
	}
	return s.payments.InvoiceBySessionID(ctx, sessionID)
}
