// Package payments wraps the payment provider behind a small interface so
// services stay testable and provider types do not leak into the rest of
// the codebase.
package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lewismosage/acna-sub000/internal/model"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// EventCheckoutCompleted is the provider event that finalizes a paid
// registration.
const EventCheckoutCompleted = "checkout.session.completed"

// Metadata keys carried through the checkout session. The registration
// payload rides in the metadata because no database row exists until the
// webhook commits.
const (
	MetaWorkshopID   = "workshop_id"
	MetaRegistration = "registration_data"
)

// SessionParams describes one hosted checkout session to create.
type SessionParams struct {
	Title       string
	Description string
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// Event is the provider-neutral view of a verified webhook event.
type Event struct {
	Type        string
	SessionID   string
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// Provider creates checkout sessions and verifies webhook events.
type Provider interface {
	CreateSession(ctx context.Context, in SessionParams) (*model.CheckoutSession, error)
	ParseEvent(payload []byte, sigHeader string) (*Event, error)
}

// StripeGateway implements Provider against the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeGateway constructs a gateway with its own API client.
func NewStripeGateway(apiKey, webhookSecret, successURL, cancelURL string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

// CreateSession asks Stripe for a hosted checkout session with a single
// line item priced in minor units.
func (g *StripeGateway) CreateSession(ctx context.Context, in SessionParams) (*model.CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(in.Title),
	}
	if in.Description != "" {
		product.Description = stripe.String(in.Description)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(in.Currency),
				UnitAmount:  stripe.Int64(in.AmountCents),
				ProductData: product,
			},
		}},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &model.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// ParseEvent verifies the signature header against the webhook secret and,
// only then, decodes the event. Nothing in the payload is trusted before
// verification succeeds.
func (g *StripeGateway) ParseEvent(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook event: %w", err)
	}

	evt := &Event{Type: string(event.Type)}
	if evt.Type != EventCheckoutCompleted {
		return evt, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	evt.SessionID = sess.ID
	evt.AmountCents = sess.AmountTotal
	evt.Currency = string(sess.Currency)
	evt.Metadata = sess.Metadata
	return evt, nil
}
