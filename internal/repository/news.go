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

const newsColumns = `id, title, body, status, featured, view_count, published_at, created_at, updated_at`

// NewsRepository handles persistence for news posts.
type NewsRepository struct {
	db *pgxpool.Pool
}

// NewNewsRepository constructs a NewsRepository.
func NewNewsRepository(db *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{db: db}
}

func scanNews(row pgx.Row) (*model.NewsPost, error) {
	var n model.NewsPost
	err := row.Scan(
		&n.ID, &n.Title, &n.Body, &n.Status, &n.Featured, &n.ViewCount,
		&n.PublishedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan news post: %w", err)
	}
	return &n, nil
}

// Create inserts a new draft post.
func (r *NewsRepository) Create(ctx context.Context, req model.CreateNewsRequest) (*model.NewsPost, error) {
	now := time.Now().UTC()
	n := &model.NewsPost{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Body:      req.Body,
		Status:    model.NewsDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO news_posts (id, title, body, status, featured, view_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, false, 0, $5, $5)`,
		n.ID, n.Title, n.Body, n.Status, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert news post: %w", err)
	}
	return n, nil
}

// NewsFilter narrows List results. Nil fields match everything.
type NewsFilter struct {
	Status   *model.NewsStatus
	Featured *bool
}

// List returns posts matching the filter, newest first.
func (r *NewsRepository) List(ctx context.Context, f NewsFilter) ([]model.NewsPost, error) {
	query := `SELECT ` + newsColumns + ` FROM news_posts WHERE 1=1`
	args := []any{}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Featured != nil {
		args = append(args, *f.Featured)
		query += fmt.Sprintf(" AND featured = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list news posts: %w", err)
	}
	defer rows.Close()

	var posts []model.NewsPost
	for rows.Next() {
		var n model.NewsPost
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Body, &n.Status, &n.Featured, &n.ViewCount,
			&n.PublishedAt, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan news post: %w", err)
		}
		posts = append(posts, n)
	}
	return posts, rows.Err()
}

// GetAndCountView returns a post and bumps its view counter in the same
// statement. The single UPDATE is atomic, so concurrent reads never lose a
// count the way read-then-write would.
func (r *NewsRepository) GetAndCountView(ctx context.Context, id string) (*model.NewsPost, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE news_posts SET view_count = view_count + 1
		 WHERE id = $1
		 RETURNING `+newsColumns, id)
	return scanNews(row)
}

// GetByID returns a post without touching the view counter.
func (r *NewsRepository) GetByID(ctx context.Context, id string) (*model.NewsPost, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+newsColumns+` FROM news_posts WHERE id = $1`, id)
	return scanNews(row)
}

// Update edits title and body.
func (r *NewsRepository) Update(ctx context.Context, id string, req model.UpdateNewsRequest) (*model.NewsPost, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE news_posts SET title = $1, body = $2, updated_at = $3
		 WHERE id = $4
		 RETURNING `+newsColumns,
		req.Title, req.Body, time.Now().UTC(), id)
	return scanNews(row)
}

// TransitionStatus moves a post through its lifecycle. Publishing stamps
// published_at on first publish. The WHERE clause on the old status makes
// concurrent transitions race-safe.
func (r *NewsRepository) TransitionStatus(ctx context.Context, id string, from, to model.NewsStatus) (*model.NewsPost, error) {
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx,
		`UPDATE news_posts
		 SET status = $1,
		     published_at = CASE WHEN $1 = 'published' AND published_at IS NULL THEN $2 ELSE published_at END,
		     updated_at = $2
		 WHERE id = $3 AND status = $4
		 RETURNING `+newsColumns,
		to, now, id, from)
	n, err := scanNews(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, model.ErrInvalidTransition
		}
		return nil, err
	}
	return n, nil
}

// ToggleFeatured flips the featured flag and returns the new value.
func (r *NewsRepository) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	var featured bool
	err := r.db.QueryRow(ctx,
		`UPDATE news_posts SET featured = NOT featured, updated_at = $1
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
