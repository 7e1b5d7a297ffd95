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

const workshopColumns = `id, title, description, date, duration_minutes, capacity,
	registered, price_cents, currency, status, featured, created_at, updated_at`

// WorkshopRepository handles persistence for workshops.
type WorkshopRepository struct {
	db *pgxpool.Pool
}

// NewWorkshopRepository constructs a WorkshopRepository.
func NewWorkshopRepository(db *pgxpool.Pool) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

func scanWorkshop(row pgx.Row) (*model.Workshop, error) {
	var w model.Workshop
	err := row.Scan(
		&w.ID, &w.Title, &w.Description, &w.Date, &w.DurationMinutes, &w.Capacity,
		&w.Registered, &w.PriceCents, &w.Currency, &w.Status, &w.Featured,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan workshop: %w", err)
	}
	return &w, nil
}

// Create inserts a new workshop in draft status with a generated UUID.
func (r *WorkshopRepository) Create(ctx context.Context, req model.CreateWorkshopRequest) (*model.Workshop, error) {
	now := time.Now().UTC()
	w := &model.Workshop{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
		Status:          model.WorkshopDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO workshops (id, title, description, date, duration_minutes, capacity,
		    registered, price_cents, currency, status, featured, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, false, $10, $10)`,
		w.ID, w.Title, w.Description, w.Date, w.DurationMinutes, w.Capacity,
		w.PriceCents, w.Currency, w.Status, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workshop: %w", err)
	}
	return w, nil
}

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	Status   *model.WorkshopStatus
	Featured *bool
}

// List returns workshops matching the filter, newest first.
func (r *WorkshopRepository) List(ctx context.Context, f ListFilter) ([]model.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops WHERE 1=1`
	args := []any{}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Featured != nil {
		args = append(args, *f.Featured)
		query += fmt.Sprintf(" AND featured = $%d", len(args))
	}
	query += " ORDER BY date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workshops: %w", err)
	}
	defer rows.Close()

	var out []model.Workshop
	for rows.Next() {
		var w model.Workshop
		if err := rows.Scan(
			&w.ID, &w.Title, &w.Description, &w.Date, &w.DurationMinutes, &w.Capacity,
			&w.Registered, &w.PriceCents, &w.Currency, &w.Status, &w.Featured,
			&w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workshop: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetByID returns a single workshop or ErrNotFound.
func (r *WorkshopRepository) GetByID(ctx context.Context, id string) (*model.Workshop, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+workshopColumns+` FROM workshops WHERE id = $1`, id)
	return scanWorkshop(row)
}

// TransitionStatus moves a workshop from one lifecycle state to another.
// The WHERE clause on the old status makes the change race-safe: a
// concurrent transition loses and reports ErrInvalidTransition.
func (r *WorkshopRepository) TransitionStatus(ctx context.Context, id string, from, to model.WorkshopStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE workshops SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return fmt.Errorf("transition workshop status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return model.ErrInvalidTransition
	}
	return nil
}

// ToggleFeatured flips the featured flag and returns the new value.
func (r *WorkshopRepository) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	var featured bool
	err := r.db.QueryRow(ctx,
		`UPDATE workshops SET featured = NOT featured, updated_at = $1
		 WHERE id = $2
		 RETURNING featured`,
		time.Now().UTC(), id,
	).Scan(&featured)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle featured: %w", err)
	}
	return featured, nil
}
