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

// RegistrationRepository handles persistence for workshop registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// RegisterFree finalizes a free registration inside a single transaction.
//
// The workshop row is locked with SELECT ... FOR UPDATE so that concurrent
// attempts serialise: the capacity check, the duplicate check, the counter
// increment and the insert all see and produce consistent state. Two
// simultaneous registrations for the last seat cannot both succeed.
func (r *RegistrationRepository) RegisterFree(ctx context.Context, workshopID string, att model.AttendeeRequest) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.WorkshopStatus
	var capacity, registered int
	err = tx.QueryRow(ctx,
		`SELECT status, capacity, registered FROM workshops WHERE id = $1 FOR UPDATE`,
		workshopID,
	).Scan(&status, &capacity, &registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock workshop row: %w", err)
	}

	if status != model.WorkshopOpen {
		return nil, ErrWorkshopNotOpen
	}
	if registered >= capacity {
		return nil, ErrWorkshopFull
	}

	dup, err := registrationExistsTx(ctx, tx, workshopID, att.Email)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrAlreadyRegistered
	}

	reg, err := insertRegistrationTx(ctx, tx, workshopID, att, model.PaymentFree, 0)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE workshops SET registered = registered + 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), workshopID,
	); err != nil {
		return nil, fmt.Errorf("increment registered: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// Exists reports whether an email is already registered for a workshop.
// Used by intake for the paid path, which validates without persisting; the
// authoritative check re-runs inside the webhook transaction.
func (r *RegistrationRepository) Exists(ctx context.Context, workshopID, email string) (bool, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM workshop_registrations WHERE workshop_id = $1 AND email = $2`,
		workshopID, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return count > 0, nil
}

// ListByWorkshop returns all registrations for a workshop, oldest first.
func (r *RegistrationRepository) ListByWorkshop(ctx context.Context, workshopID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, workshop_id, full_name, email, phone, organization,
		        registration_type, payment_status, amount_cents, created_at
		 FROM workshop_registrations
		 WHERE workshop_id = $1
		 ORDER BY created_at ASC`,
		workshopID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(
			&reg.ID, &reg.WorkshopID, &reg.FullName, &reg.Email, &reg.Phone,
			&reg.Organization, &reg.RegistrationType, &reg.PaymentStatus,
			&reg.AmountCents, &reg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// registrationExistsTx is the in-transaction duplicate check shared by the
// free intake and webhook finalization paths.
func registrationExistsTx(ctx context.Context, tx pgx.Tx, workshopID, email string) (bool, error) {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM workshop_registrations WHERE workshop_id = $1 AND email = $2`,
		workshopID, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return count > 0, nil
}

func insertRegistrationTx(ctx context.Context, tx pgx.Tx, workshopID string, att model.AttendeeRequest, state model.PaymentState, amountCents int64) (*model.Registration, error) {
	reg := &model.Registration{
		ID:               uuid.New().String(),
		WorkshopID:       workshopID,
		FullName:         att.FullName,
		Email:            att.Email,
		Phone:            att.Phone,
		Organization:     att.Organization,
		RegistrationType: att.RegistrationType,
		PaymentStatus:    state,
		AmountCents:      amountCents,
		CreatedAt:        time.Now().UTC(),
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO workshop_registrations
		    (id, workshop_id, full_name, email, phone, organization,
		     registration_type, payment_status, amount_cents, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reg.ID, reg.WorkshopID, reg.FullName, reg.Email, reg.Phone,
		reg.Organization, reg.RegistrationType, reg.PaymentStatus,
		reg.AmountCents, reg.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}
