package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/mail"
	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/repository"
)

// WorkshopStore is the persistence surface WorkshopService needs.
type WorkshopStore interface {
	Create(ctx context.Context, req model.CreateWorkshopRequest) (*model.Workshop, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.Workshop, error)
	GetByID(ctx context.Context, id string) (*model.Workshop, error)
	TransitionStatus(ctx context.Context, id string, from, to model.WorkshopStatus) error
	ToggleFeatured(ctx context.Context, id string) (bool, error)
}

// RegistrationStore is the persistence surface for registrations.
type RegistrationStore interface {
	RegisterFree(ctx context.Context, workshopID string, att model.AttendeeRequest) (*model.Registration, error)
	Exists(ctx context.Context, workshopID, email string) (bool, error)
	ListByWorkshop(ctx context.Context, workshopID string) ([]model.Registration, error)
}

// WorkshopService orchestrates workshop and registration operations.
type WorkshopService struct {
	workshops     WorkshopStore
	registrations RegistrationStore
	mailer        mail.Mailer
	logger        *zap.Logger
}

// NewWorkshopService constructs a WorkshopService with its dependencies.
func NewWorkshopService(workshops WorkshopStore, registrations RegistrationStore, mailer mail.Mailer, logger *zap.Logger) *WorkshopService {
	return &WorkshopService{
		workshops:     workshops,
		registrations: registrations,
		mailer:        mailer,
		logger:        logger,
	}
}

// Create validates the request and delegates to the repository. New
// workshops always start in draft.
func (s *WorkshopService) Create(ctx context.Context, req model.CreateWorkshopRequest) (*model.Workshop, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalidf("title is required")
	}
	if req.Capacity <= 0 {
		return nil, invalidf("capacity must be a positive integer")
	}
	if req.Capacity > 100_000 {
		return nil, invalidf("capacity cannot exceed 100,000")
	}
	if req.Date.IsZero() {
		return nil, invalidf("date is required")
	}
	if req.PriceCents < 0 {
		return nil, invalidf("price cannot be negative")
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}
	req.Currency = strings.ToLower(req.Currency)
	return s.workshops.Create(ctx, req)
}

// List returns workshops, optionally filtered by status and featured flag.
func (s *WorkshopService) List(ctx context.Context, status string, featured *bool) ([]model.Workshop, error) {
	var f repository.ListFilter
	if status != "" {
		st, err := model.ParseWorkshopStatus(status)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		f.Status = &st
	}
	f.Featured = featured
	return s.workshops.List(ctx, f)
}

// Get returns a single workshop by ID.
func (s *WorkshopService) Get(ctx context.Context, id string) (*model.Workshop, error) {
	if id == "" {
		return nil, invalidf("workshop id is required")
	}
	return s.workshops.GetByID(ctx, id)
}

// UpdateStatus moves a workshop through its lifecycle after checking the
// transition allow-list.
func (s *WorkshopService) UpdateStatus(ctx context.Context, id, status string) (*model.Workshop, error) {
	to, err := model.ParseWorkshopStatus(status)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	w, err := s.workshops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionWorkshop(w.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, w.Status, to)
	}
	if err := s.workshops.TransitionStatus(ctx, id, w.Status, to); err != nil {
		return nil, err
	}
	return s.workshops.GetByID(ctx, id)
}

// ToggleFeatured flips the featured flag and returns the new value.
func (s *WorkshopService) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	return s.workshops.ToggleFeatured(ctx, id)
}

// ListRegistrations returns all registrations for a workshop.
func (s *WorkshopService) ListRegistrations(ctx context.Context, workshopID string) ([]model.Registration, error) {
	if _, err := s.workshops.GetByID(ctx, workshopID); err != nil {
		return nil, err
	}
	return s.registrations.ListByWorkshop(ctx, workshopID)
}

// Register is the registration intake. Free workshops are finalized
// synchronously: the registration row is created and the counter
// incremented inside one locked transaction, then a confirmation email is
// attempted best-effort. Paid workshops persist nothing; the validated
// attendee payload is returned with the amount so the client can open a
// checkout session, and the webhook performs the real writes later.
func (s *WorkshopService) Register(ctx context.Context, workshopID string, att model.AttendeeRequest) (*model.Registration, *model.PaymentRequired, error) {
	if err := validateAttendee(&att); err != nil {
		return nil, nil, err
	}

	w, err := s.workshops.GetByID(ctx, workshopID)
	if err != nil {
		return nil, nil, err
	}
	if w.Status != model.WorkshopOpen {
		return nil, nil, repository.ErrWorkshopNotOpen
	}
	if w.IsFull() {
		return nil, nil, repository.ErrWorkshopFull
	}
	dup, err := s.registrations.Exists(ctx, workshopID, att.Email)
	if err != nil {
		return nil, nil, err
	}
	if dup {
		return nil, nil, repository.ErrAlreadyRegistered
	}

	if !w.IsFree() {
		return nil, &model.PaymentRequired{
			PaymentRequired: true,
			AmountCents:     w.PriceCents,
			Currency:        w.Currency,
			Registration:    att,
		}, nil
	}

	// The repository re-runs the checks above inside the locked
	// transaction; that run is the authoritative one.
	reg, err := s.registrations.RegisterFree(ctx, workshopID, att)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrWorkshopFull) ||
			errors.Is(err, repository.ErrWorkshopNotOpen) ||
			errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("register for workshop: %w", err)
	}

	if err := s.mailer.SendRegistrationConfirmation(*reg, *w); err != nil {
		s.logger.Warn("confirmation email failed",
			zap.String("workshop_id", workshopID),
			zap.String("email", reg.Email),
			zap.Error(err))
	}
	return reg, nil, nil
}

// validateAttendee normalizes and checks the attendee payload in place.
func validateAttendee(att *model.AttendeeRequest) error {
	att.FullName = strings.TrimSpace(att.FullName)
	att.Email = normalizeEmail(att.Email)
	if att.FullName == "" {
		return invalidf("fullName is required")
	}
	if att.Email == "" {
		return invalidf("email is required")
	}
	if !isValidEmail(att.Email) {
		return invalidf("email is not a valid email address")
	}
	return nil
}
