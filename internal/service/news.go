package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/repository"
)

// NewsStore is the persistence surface NewsService needs.
type NewsStore interface {
	Create(ctx context.Context, req model.CreateNewsRequest) (*model.NewsPost, error)
	List(ctx context.Context, f repository.NewsFilter) ([]model.NewsPost, error)
	GetAndCountView(ctx context.Context, id string) (*model.NewsPost, error)
	GetByID(ctx context.Context, id string) (*model.NewsPost, error)
	Update(ctx context.Context, id string, req model.UpdateNewsRequest) (*model.NewsPost, error)
	TransitionStatus(ctx context.Context, id string, from, to model.NewsStatus) (*model.NewsPost, error)
	ToggleFeatured(ctx context.Context, id string) (bool, error)
}

// NewsService orchestrates news post operations.
type NewsService struct {
	news NewsStore
}

// NewNewsService constructs a NewsService.
func NewNewsService(news NewsStore) *NewsService {
	return &NewsService{news: news}
}

// Create validates and inserts a new draft post.
func (s *NewsService) Create(ctx context.Context, req model.CreateNewsRequest) (*model.NewsPost, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalidf("title is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, invalidf("body is required")
	}
	return s.news.Create(ctx, req)
}

// List returns posts, optionally filtered. When publishedOnly is set the
// status filter is forced to published regardless of the query parameter;
// this is the public listing.
func (s *NewsService) List(ctx context.Context, status string, featured *bool, publishedOnly bool) ([]model.NewsPost, error) {
	var f repository.NewsFilter
	if publishedOnly {
		st := model.NewsPublished
		f.Status = &st
	} else if status != "" {
		st, err := model.ParseNewsStatus(status)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		f.Status = &st
	}
	f.Featured = featured
	return s.news.List(ctx, f)
}

// Get returns one post and atomically bumps its view counter.
func (s *NewsService) Get(ctx context.Context, id string) (*model.NewsPost, error) {
	if id == "" {
		return nil, invalidf("news id is required")
	}
	return s.news.GetAndCountView(ctx, id)
}

// Update edits title and body.
func (s *NewsService) Update(ctx context.Context, id string, req model.UpdateNewsRequest) (*model.NewsPost, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalidf("title is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, invalidf("body is required")
	}
	return s.news.Update(ctx, id, req)
}

// UpdateStatus moves a post through its lifecycle after checking the
// transition allow-list.
func (s *NewsService) UpdateStatus(ctx context.Context, id, status string) (*model.NewsPost, error) {
	to, err := model.ParseNewsStatus(status)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionNews(n.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, n.Status, to)
	}
	return s.news.TransitionStatus(ctx, id, n.Status, to)
}

// ToggleFeatured flips the featured flag and returns the new value.
func (s *NewsService) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	return s.news.ToggleFeatured(ctx, id)
}
