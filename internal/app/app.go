package app

import (
	"context"
	"fmt"
	"strings"

	"booknet/internal/paypal"
	"booknet/pkg/ai"
	"booknet/pkg/store"
)

const (
	// xuPerUSD is the platform exchange rate for coin top-ups.
	xuPerUSD = 100
	// authorShare is the fraction of a VIP coin total paid out to the
	// author; the remainder is retained by the platform.
	authorShare = 0.65
)

// PaymentGateway abstracts the payment provider's redirect flow.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, in paypal.CreatePaymentInput) (paypal.CreatedPayment, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string, amountUSD float64) error
}

// Config holds runtime configuration for the core application.
type Config struct {
	Store store.Store
	// Gateway handles payment creation and execution.
	Gateway PaymentGateway
	// Generator answers platform questions. May be nil when no API key is
	// configured; /ai-ask then fails while everything else keeps serving.
	Generator ai.TextGenerator
	// PublicBaseURL is the externally reachable base for payment redirects.
	PublicBaseURL string
}

// App wires storage, the payment gateway, and the language model behind the
// HTTP handlers.
type App struct {
	store         store.Store
	gateway       PaymentGateway
	generator     ai.TextGenerator
	publicBaseURL string
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("public base URL required")
	}
	return &App{
		store:         cfg.Store,
		gateway:       cfg.Gateway,
		generator:     cfg.Generator,
		publicBaseURL: base,
	}, nil
}
