package controllers

import (
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/dopelist/api-go/config"
)

// CheckoutSession is the slice of a payment-provider session the payment
// flows care about.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	CustomerID      string
}

type CreateSessionParams struct {
	PriceID      string
	Mode         string // "payment" or "subscription"
	CustomerID   string
	UserID       string
	Intent       string // "post", "renew", "subscription"
	TargetPostID string
	SuccessURL   string
	CancelURL    string
}

// CheckoutClient abstracts the payment provider so handlers can be tested
// against a fake. A nil client means no provider is configured and only
// demo_ tokens are accepted.
type CheckoutClient interface {
	CreateSession(params CreateSessionParams) (*CheckoutSession, error)
	RetrieveSession(id string) (*CheckoutSession, error)
}

type stripeCheckoutClient struct{}

// NewStripeCheckoutClient wires the live Stripe integration. Returns nil
// when no secret key is configured.
func NewStripeCheckoutClient(cfg *config.StripeConfig) CheckoutClient {
	if !cfg.LiveMode() {
		return nil
	}
	stripe.Key = cfg.SecretKey
	return &stripeCheckoutClient{}
}

func (sc *stripeCheckoutClient) CreateSession(p CreateSessionParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(p.Mode),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.UserID),
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	params.AddMetadata("user_id", p.UserID)
	params.AddMetadata("intent", p.Intent)
	if p.TargetPostID != "" {
		params.AddMetadata("post_id", p.TargetPostID)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(s), nil
}

func (sc *stripeCheckoutClient) RetrieveSession(id string) (*CheckoutSession, error) {
	s, err := session.Get(id, nil)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(s), nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out
}
