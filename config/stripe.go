package config

import (
	"os"
)

// StripeConfig carries everything the payment flows need. An empty SecretKey
// means no live Stripe integration: checkout falls back to demo sessions and
// verification trusts demo_ tokens, matching local/seed-data usage.
type StripeConfig struct {
	SecretKey           string
	WebhookSecret       string
	PostPriceID         string
	SubscriptionPriceID string
	SuccessURL          string
	CancelURL           string
}

func GetStripeConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:           os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret:       os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PostPriceID:         os.Getenv("STRIPE_POST_PRICE_ID"),
		SubscriptionPriceID: os.Getenv("STRIPE_SUBSCRIPTION_PRICE_ID"),
		SuccessURL:          os.Getenv("STRIPE_SUCCESS_URL"),
		CancelURL:           os.Getenv("STRIPE_CANCEL_URL"),
	}
}

func (sc *StripeConfig) LiveMode() bool {
	return sc.SecretKey != ""
}
