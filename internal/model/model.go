// Package model defines the core domain types for the association platform API.
package model

import "time"

// Workshop is a bookable training session. PriceCents of zero means the
// workshop is free and registrations are finalized synchronously; a positive
// price defers the registration to the payment webhook.
type Workshop struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Date            time.Time      `json:"date"`
	DurationMinutes int            `json:"durationMinutes"`
	Capacity        int            `json:"capacity"`
	Registered      int            `json:"registered"`
	PriceCents      int64          `json:"priceCents"`
	Currency        string         `json:"currency"`
	Status          WorkshopStatus `json:"status"`
	Featured        bool           `json:"featured"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// IsFree reports whether no payment is required to register.
func (w *Workshop) IsFree() bool {
	return w.PriceCents <= 0
}

// IsFull reports whether no seats remain.
func (w *Workshop) IsFull() bool {
	return w.Registered >= w.Capacity
}

// Remaining returns the number of available seats.
func (w *Workshop) Remaining() int {
	return w.Capacity - w.Registered
}

// PaymentState is the payment lifecycle state of a registration.
type PaymentState string

const (
	PaymentFree    PaymentState = "free"
	PaymentPaid    PaymentState = "paid"
	PaymentPending PaymentState = "pending"
	PaymentFailed  PaymentState = "failed"
)

// Registration is one attendee's registration for a workshop. The
// (workshop, email) pair is unique.
type Registration struct {
	ID               string       `json:"id"`
	WorkshopID       string       `json:"workshopId"`
	FullName         string       `json:"fullName"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone,omitempty"`
	Organization     string       `json:"organization,omitempty"`
	RegistrationType string       `json:"registrationType,omitempty"`
	PaymentStatus    PaymentState `json:"paymentStatus"`
	AmountCents      int64        `json:"amountCents"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// Payment records a completed provider transaction for a registration.
// Rows are created only by the webhook handler, together with the
// registration, once the provider confirms the charge.
type Payment struct {
	ID                string    `json:"id"`
	RegistrationID    string    `json:"registrationId"`
	WorkshopID        string    `json:"workshopId"`
	ProviderSessionID string    `json:"providerSessionId"`
	AmountCents       int64     `json:"amountCents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PaymentSucceeded is the provider status recorded for a finalized charge.
const PaymentSucceeded = "succeeded"

// Invoice is the read model for invoice rendering: one payment joined with
// its registration and workshop.
type Invoice struct {
	Payment       Payment
	AttendeeName  string
	AttendeeEmail string
	Organization  string
	WorkshopTitle string
	WorkshopDate  time.Time
}

// NewsPost is the representative content resource: draft/publish lifecycle,
// featured flag and an atomically maintained view counter.
type NewsPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      NewsStatus `json:"status"`
	Featured    bool       `json:"featured"`
	ViewCount   int64      `json:"viewCount"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// User is a registered member account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Request / response payloads.

// CreateWorkshopRequest is the payload for creating a workshop.
type CreateWorkshopRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"durationMinutes"`
	Capacity        int       `json:"capacity"`
	PriceCents      int64     `json:"priceCents"`
	Currency        string    `json:"currency"`
}

// AttendeeRequest is the attendee payload for a registration attempt. For
// paid workshops this exact payload is echoed back to the client and later
// carried through the checkout session metadata.
type AttendeeRequest struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Organization     string `json:"organization,omitempty"`
	RegistrationType string `json:"registrationType,omitempty"`
}

// PaymentRequired is returned from intake when the workshop is paid: nothing
// has been persisted and the client must open a checkout session.
type PaymentRequired struct {
	PaymentRequired bool            `json:"paymentRequired"`
	AmountCents     int64           `json:"amountCents"`
	Currency        string          `json:"currency"`
	Registration    AttendeeRequest `json:"registrationData"`
}

// CheckoutRequest is the payload for creating a checkout session.
type CheckoutRequest struct {
	WorkshopID   string          `json:"workshopId"`
	Registration AttendeeRequest `json:"registrationData"`
	AmountCents  int64           `json:"amountCents"`
}

// CheckoutSession is the provider session the client redirects to.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// StatusUpdateRequest carries a requested lifecycle transition.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// CreateNewsRequest is the payload for creating a news post (always a draft).
type CreateNewsRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdateNewsRequest is the payload for editing a news post.
type UpdateNewsRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RegisterUserRequest is the payload for creating a member account.
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UploadResponse carries the public URL of a stored file.
type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
