package app

import "errors"

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoPayoutEmail indicates an author has no payout email on file.
	ErrNoPayoutEmail = errors.New("payout email not set")
	// ErrPaymentFailed indicates the payment provider reported an
	// execution failure for an otherwise well-formed request.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrAssistantUnavailable indicates no language-model generator is
	// configured (missing API key at startup).
	ErrAssistantUnavailable = errors.New("assistant not configured")
)
