package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"booknet/internal/paypal"
	"booknet/pkg/domain"
)

// CreateTopUp opens a coin top-up payment and returns the approval URL the
// client redirects the reader to.
func (a *App) CreateTopUp(ctx context.Context, userID string, amountUSD float64) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user id required")
	}
	if amountUSD <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	total := strconv.FormatFloat(amountUSD, 'f', 2, 64)
	created, err := a.gateway.CreatePayment(ctx, paypal.CreatePaymentInput{
		AmountUSD:   amountUSD,
		ItemName:    "Booknet coin top-up",
		Description: fmt.Sprintf("Coin top-up for user %s", userID),
		ReturnURL:   fmt.Sprintf("%s/success?userId=%s&amount=%s", a.publicBaseURL, url.QueryEscape(userID), total),
		CancelURL:   a.publicBaseURL + "/cancel",
	})
	if err != nil {
		return "", fmt.Errorf("create payment: %w", err)
	}
	return created.ApprovalURL, nil
}

// TopUpResult reports a confirmed coin top-up.
type TopUpResult struct {
	XuAdded    int64
	NewBalance int64
}

// ConfirmTopUp executes the approved payment, credits the coins, and writes
// the payment and transaction audit records. A provider-reported execution
// failure surfaces as ErrPaymentFailed.
func (a *App) ConfirmTopUp(ctx context.Context, payerID, paymentID, userID string, amountUSD float64) (TopUpResult, error) {
	if err := a.gateway.ExecutePayment(ctx, paymentID, payerID, amountUSD); err != nil {
		slog.Error("payment execution failed", "payment_id", paymentID, "err", err)
		return TopUpResult{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	xuAdded := int64(math.Round(amountUSD * xuPerUSD))
	before, after, err := a.store.CreditXu(userID, xuAdded)
	if err != nil {
		return TopUpResult{}, fmt.Errorf("credit balance: %w", err)
	}

	now := time.Now().UnixMilli()
	if err := a.store.AppendPayment(domain.Payment{
		ID:         uuid.NewString(),
		UserID:     userID,
		PaymentID:  paymentID,
		PayerID:    payerID,
		Amount:     amountUSD,
		XuReceived: xuAdded,
		Status:     "success",
		Method:     "paypal",
		Time:       now,
	}); err != nil {
		// The balance is already credited; the request still succeeds.
		slog.Error("append payment record failed", "payment_id", paymentID, "err", err)
	}
	if err := a.store.AppendTransaction(domain.Transaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   "topup",
		Method: "paypal",
		Amount: xuAdded,
		Before: before,
		After:  after,
		Time:   now,
	}); err != nil {
		slog.Error("append transaction record failed", "payment_id", paymentID, "err", err)
	}

	return TopUpResult{XuAdded: xuAdded, NewBalance: after}, nil
}

// CreateAuthorPayout opens a payout payment to the author's payout email.
// The author receives 65% of the VIP coin total converted at the platform
// rate; the remaining share is not recorded here.
func (a *App) CreateAuthorPayout(ctx context.Context, userID string, totalXuVIP int64) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user id required")
	}
	if totalXuVIP <= 0 {
		return "", fmt.Errorf("xu total must be positive")
	}
	user, ok, err := a.store.GetUser(userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return "", ErrUserNotFound
	}
	if strings.TrimSpace(user.PayoutEmail) == "" {
		return "", ErrNoPayoutEmail
	}

	payoutUSD := math.Round(float64(totalXuVIP)*authorShare) / xuPerUSD
	total := strconv.FormatFloat(payoutUSD, 'f', 2, 64)
	created, err := a.gateway.CreatePayment(ctx, paypal.CreatePaymentInput{
		AmountUSD:   payoutUSD,
		ItemName:    "Booknet author payout",
		Description: fmt.Sprintf("VIP earnings payout for author %s", userID),
		ReturnURL:   fmt.Sprintf("%s/success-author?userId=%s&amount=%s", a.publicBaseURL, url.QueryEscape(userID), total),
		CancelURL:   a.publicBaseURL + "/cancel",
		PayeeEmail:  user.PayoutEmail,
	})
	if err != nil {
		return "", fmt.Errorf("create payout payment: %w", err)
	}
	return created.ApprovalURL, nil
}

// PayoutResult reports a confirmed author payout.
type PayoutResult struct {
	AmountUSD float64
	BooksPaid int
}

// ConfirmAuthorPayout executes the approved payout, marks the author's VIP
// books as paid, and records the payout and a notification for the author.
func (a *App) ConfirmAuthorPayout(ctx context.Context, payerID, paymentID, userID string, amountUSD float64) (PayoutResult, error) {
	if err := a.gateway.ExecutePayment(ctx, paymentID, payerID, amountUSD); err != nil {
		slog.Error("payout execution failed", "payment_id", paymentID, "err", err)
		return PayoutResult{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	booksPaid, err := a.store.MarkAuthorBooksPaid(userID)
	if err != nil {
		return PayoutResult{}, fmt.Errorf("mark books paid: %w", err)
	}

	now := time.Now().UnixMilli()
	if err := a.store.AppendPayment(domain.Payment{
		ID:         uuid.NewString(),
		UserID:     userID,
		PaymentID:  paymentID,
		PayerID:    payerID,
		Amount:     amountUSD,
		Status:     "success",
		Method:     "paypal",
		AuthorID:   userID,
		XuToAuthor: int64(math.Round(amountUSD * xuPerUSD)),
		Time:       now,
	}); err != nil {
		slog.Error("append payout record failed", "payment_id", paymentID, "err", err)
	}
	if err := a.store.AppendNotification(domain.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    "payout",
		Message: fmt.Sprintf("Your payout of $%.2f was sent; %d books are now marked paid.", amountUSD, booksPaid),
		Time:    now,
	}); err != nil {
		slog.Error("append payout notification failed", "payment_id", paymentID, "err", err)
	}

	return PayoutResult{AmountUSD: amountUSD, BooksPaid: booksPaid}, nil
}
