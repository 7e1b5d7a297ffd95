package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a lifecycle change is not in the
// allow-list for the resource.
var ErrInvalidTransition = errors.New("invalid status transition")

// WorkshopStatus is the lifecycle state of a workshop.
type WorkshopStatus string

const (
	WorkshopDraft    WorkshopStatus = "draft"
	WorkshopOpen     WorkshopStatus = "open"
	WorkshopClosed   WorkshopStatus = "closed"
	WorkshopArchived WorkshopStatus = "archived"
)

// NewsStatus is the lifecycle state of a news post.
type NewsStatus string

const (
	NewsDraft     NewsStatus = "draft"
	NewsPublished NewsStatus = "published"
	NewsArchived  NewsStatus = "archived"
)

// Lifecycle transitions are validated centrally against these allow-lists
// rather than ad hoc in each handler. Anything not listed is rejected,
// including re-drafting a published post.
var workshopTransitions = map[WorkshopStatus][]WorkshopStatus{
	WorkshopDraft:    {WorkshopOpen, WorkshopArchived},
	WorkshopOpen:     {WorkshopClosed, WorkshopArchived},
	WorkshopClosed:   {WorkshopOpen, WorkshopArchived},
	WorkshopArchived: {},
}

var newsTransitions = map[NewsStatus][]NewsStatus{
	NewsDraft:     {NewsPublished, NewsArchived},
	NewsPublished: {NewsArchived},
	NewsArchived:  {},
}

// ParseWorkshopStatus validates a wire value.
func ParseWorkshopStatus(s string) (WorkshopStatus, error) {
	switch st := WorkshopStatus(s); st {
	case WorkshopDraft, WorkshopOpen, WorkshopClosed, WorkshopArchived:
		return st, nil
	}
	return "", fmt.Errorf("unknown workshop status %q", s)
}

// ParseNewsStatus validates a wire value.
func ParseNewsStatus(s string) (NewsStatus, error) {
	switch st := NewsStatus(s); st {
	case NewsDraft, NewsPublished, NewsArchived:
		return st, nil
	}
	return "", fmt.Errorf("unknown news status %q", s)
}

// CanTransitionWorkshop reports whether from -> to is a legal workshop
// lifecycle change.
func CanTransitionWorkshop(from, to WorkshopStatus) bool {
	for _, next := range workshopTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionNews reports whether from -> to is a legal news lifecycle
// change.
func CanTransitionNews(from, to NewsStatus) bool {
	for _, next := range newsTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
