package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lewismosage/acna-sub000/internal/model"
)

// PaymentRepository handles persistence for workshop payments.
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FinalizeParams carries everything the webhook learned from the provider.
type FinalizeParams struct {
	SessionID   string
	WorkshopID  string
	Attendee    model.AttendeeRequest
	AmountCents int64
	Currency    string
}

// FinalizeCheckout is the commit point of a paid registration: it creates the
// registration row, the payment row, and increments the workshop counter in
// one transaction, keyed by the provider session id.
//
// The method is idempotent. If the session id has already been finalized
// (webhook redelivery), the previously recorded rows are returned with
// alreadyProcessed = true and nothing is written. The workshops row lock
// serialises the counter increment with concurrent free registrations, and a
// unique index on provider_session_id backstops the in-transaction check.
func (r *PaymentRepository) FinalizeCheckout(ctx context.Context, p FinalizeParams) (reg *model.Registration, pay *model.Payment, alreadyProcessed bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Redelivery check first, before any write.
	pay, reg, err = paymentBySessionTx(ctx, tx, p.SessionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, false, err
	}
	if err == nil {
		return reg, pay, true, nil
	}

	// Lock the workshop row so the counter increment serialises with the
	// free-registration path.
	var capacity, registered int
	err = tx.QueryRow(ctx,
		`SELECT capacity, registered FROM workshops WHERE id = $1 FOR UPDATE`,
		p.WorkshopID,
	).Scan(&capacity, &registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, false, ErrNotFound
		}
		return nil, nil, false, fmt.Errorf("lock workshop row: %w", err)
	}

	// The charge already went through on the provider side, but the seat
	// invariant still holds: a full workshop refuses the write and the
	// caller flags the session for a refund. Same for a duplicate email.
	if registered >= capacity {
		return nil, nil, false, ErrWorkshopFull
	}
	dup, err := registrationExistsTx(ctx, tx, p.WorkshopID, p.Attendee.Email)
	if err != nil {
		return nil, nil, false, err
	}
	if dup {
		return nil, nil, false, ErrAlreadyRegistered
	}

	reg, err = insertRegistrationTx(ctx, tx, p.WorkshopID, p.Attendee, model.PaymentPaid, p.AmountCents)
	if err != nil {
		return nil, nil, false, err
	}

	pay = &model.Payment{
		ID:                uuid.New().String(),
		RegistrationID:    reg.ID,
		WorkshopID:        p.WorkshopID,
		ProviderSessionID: p.SessionID,
		AmountCents:       p.AmountCents,
		Currency:          p.Currency,
		Status:            model.PaymentSucceeded,
		CreatedAt:         time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO workshop_payments
		    (id, registration_id, workshop_id, provider_session_id,
		     amount_cents, currency, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pay.ID, pay.RegistrationID, pay.WorkshopID, pay.ProviderSessionID,
		pay.AmountCents, pay.Currency, pay.Status, pay.CreatedAt,
	)
	if err != nil {
		return nil, nil, false, fmt.Errorf("insert payment: %w", err)
	}

	if _, err = tx.Exec(ctx,
		`UPDATE workshops SET registered = registered + 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), p.WorkshopID,
	); err != nil {
		return nil, nil, false, fmt.Errorf("increment registered: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, false, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, pay, false, nil
}

// InvoiceBySessionID loads the read model for invoice rendering.
func (r *PaymentRepository) InvoiceBySessionID(ctx context.Context, sessionID string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.QueryRow(ctx,
		`SELECT p.id, p.registration_id, p.workshop_id, p.provider_session_id,
		        p.amount_cents, p.currency, p.status, p.created_at,
		        reg.full_name, reg.email, reg.organization,
		        w.title, w.date
		 FROM workshop_payments p
		 JOIN workshop_registrations reg ON reg.id = p.registration_id
		 JOIN workshops w ON w.id = p.workshop_id
		 WHERE p.provider_session_id = $1`,
		sessionID,
	).Scan(
		&inv.Payment.ID, &inv.Payment.RegistrationID, &inv.Payment.WorkshopID,
		&inv.Payment.ProviderSessionID, &inv.Payment.AmountCents,
		&inv.Payment.Currency, &inv.Payment.Status, &inv.Payment.CreatedAt,
		&inv.AttendeeName, &inv.AttendeeEmail, &inv.Organization,
		&inv.WorkshopTitle, &inv.WorkshopDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &inv, nil
}

func paymentBySessionTx(ctx context.Context, tx pgx.Tx, sessionID string) (*model.Payment, *model.Registration, error) {
	var pay model.Payment
	err := tx.QueryRow(ctx,
		`SELECT id, registration_id, workshop_id, provider_session_id,
		        amount_cents, currency, status, created_at
		 FROM workshop_payments WHERE provider_session_id = $1`,
		sessionID,
	).Scan(
		&pay.ID, &pay.RegistrationID, &pay.WorkshopID, &pay.ProviderSessionID,
		&pay.AmountCents, &pay.Currency, &pay.Status, &pay.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("load payment: %w", err)
	}

	var reg model.Registration
	err = tx.QueryRow(ctx,
		`SELECT id, workshop_id, full_name, email, phone, organization,
		        registration_type, payment_status, amount_cents, created_at
		 FROM workshop_registrations WHERE id = $1`,
		pay.RegistrationID,
	).Scan(
		&reg.ID, &reg.WorkshopID, &reg.FullName, &reg.Email, &reg.Phone,
		&reg.Organization, &reg.RegistrationType, &reg.PaymentStatus,
		&reg.AmountCents, &reg.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load registration for payment: %w", err)
	}
	return &pay, &reg, nil
}
