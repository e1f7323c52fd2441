package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"booknet/internal/paypal"
	"booknet/pkg/domain"
	"booknet/pkg/store"
)

type fakeGateway struct {
	createCalls  []paypal.CreatePaymentInput
	executeCalls int
	createErr    error
	executeErr   error
}

func (f *fakeGateway) CreatePayment(_ context.Context, in paypal.CreatePaymentInput) (paypal.CreatedPayment, error) {
	f.createCalls = append(f.createCalls, in)
	if f.createErr != nil {
		return paypal.CreatedPayment{}, f.createErr
	}
	return paypal.CreatedPayment{ID: "PAY-1", ApprovalURL: "https://paypal.example/approve"}, nil
}

func (f *fakeGateway) ExecutePayment(_ context.Context, _, _ string, _ float64) error {
	f.executeCalls++
	return f.executeErr
}

type fakeGenerator struct {
	calls      int
	lastSystem string
	lastUser   string
	answer     string
	err        error
}

func (f *fakeGenerator) GenerateText(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestApp(t *testing.T, m *store.MemoryStore, gw *fakeGateway, gen *fakeGenerator) *App {
	t.Helper()
	cfg := Config{
		Store:         m,
		Gateway:       gw,
		PublicBaseURL: "https://booknet.example",
	}
	if gen != nil {
		cfg.Generator = gen
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestCreateTopUpBuildsRedirects(t *testing.T) {
	m := store.NewMemoryStore()
	gw := &fakeGateway{}
	a := newTestApp(t, m, gw, nil)

	url, err := a.CreateTopUp(context.Background(), "u-1", 5)
	if err != nil {
		t.Fatalf("create top-up: %v", err)
	}
	if url != "https://paypal.example/approve" {
		t.Fatalf("approval url = %q", url)
	}
	if len(gw.createCalls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(gw.createCalls))
	}
	in := gw.createCalls[0]
	if in.AmountUSD != 5 || in.PayeeEmail != "" {
		t.Fatalf("create input = %+v", in)
	}
	if !strings.Contains(in.ReturnURL, "/success?userId=u-1&amount=5.00") {
		t.Fatalf("return url = %q", in.ReturnURL)
	}
	if !strings.Contains(in.Description, "u-1") {
		t.Fatalf("description = %q, want user reference", in.Description)
	}
}

func TestCreateTopUpValidation(t *testing.T) {
	a := newTestApp(t, store.NewMemoryStore(), &fakeGateway{}, nil)
	if _, err := a.CreateTopUp(context.Background(), "", 5); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, err := a.CreateTopUp(context.Background(), "u-1", 0); err == nil {
		t.Fatalf("expected error for non-positive amount")
	}
}

func TestConfirmTopUpCreditsCoins(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "u-1", Xu: 100}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	a := newTestApp(t, m, &fakeGateway{}, nil)

	res, err := a.ConfirmTopUp(context.Background(), "PAYER-1", "PAY-1", "u-1", 5.00)
	if err != nil {
		t.Fatalf("confirm top-up: %v", err)
	}
	if res.XuAdded != 500 || res.NewBalance != 600 {
		t.Fatalf("result = %+v, want 500 added / 600 balance", res)
	}

	payments, err := m.ListPayments()
	if err != nil || len(payments) != 1 {
		t.Fatalf("payments = %v (err %v), want one record", payments, err)
	}
	p := payments[0]
	if p.UserID != "u-1" || p.PaymentID != "PAY-1" || p.PayerID != "PAYER-1" {
		t.Fatalf("payment = %+v", p)
	}
	if p.Amount != 5.00 || p.XuReceived != 500 || p.Status != "success" || p.Method != "paypal" {
		t.Fatalf("payment = %+v", p)
	}

	txs := m.Transactions()
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	tx := txs[0]
	if tx.Type != "topup" || tx.Amount != 500 {
		t.Fatalf("transaction = %+v", tx)
	}
	if tx.After != tx.Before+500 {
		t.Fatalf("transaction after = %d, want before %d + 500", tx.After, tx.Before)
	}
}

func TestConfirmTopUpProviderFailure(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "u-1", Xu: 100}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	a := newTestApp(t, m, &fakeGateway{executeErr: errors.New("declined")}, nil)

	_, err := a.ConfirmTopUp(context.Background(), "PAYER-1", "PAY-1", "u-1", 5)
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("err = %v, want ErrPaymentFailed", err)
	}
	u, _, _ := m.GetUser("u-1")
	if u.Xu != 100 {
		t.Fatalf("balance = %d, want unchanged 100", u.Xu)
	}
	if payments, _ := m.ListPayments(); len(payments) != 0 {
		t.Fatalf("payments = %d, want none", len(payments))
	}
}

func TestCreateAuthorPayout(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "author-1", PayoutEmail: "author@example.com"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	gw := &fakeGateway{}
	a := newTestApp(t, m, gw, nil)

	if _, err := a.CreateAuthorPayout(context.Background(), "missing", 1000); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}

	if err := m.SaveUser(domain.User{ID: "author-2"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if _, err := a.CreateAuthorPayout(context.Background(), "author-2", 1000); !errors.Is(err, ErrNoPayoutEmail) {
		t.Fatalf("missing email err = %v, want ErrNoPayoutEmail", err)
	}

	url, err := a.CreateAuthorPayout(context.Background(), "author-1", 1000)
	if err != nil {
		t.Fatalf("create payout: %v", err)
	}
	if url == "" {
		t.Fatalf("approval url empty")
	}
	in := gw.createCalls[len(gw.createCalls)-1]
	// 65% of 1000 xu at 100 xu per USD.
	if in.AmountUSD != 6.5 {
		t.Fatalf("payout amount = %v, want 6.5", in.AmountUSD)
	}
	if in.PayeeEmail != "author@example.com" {
		t.Fatalf("payee = %q", in.PayeeEmail)
	}
	if !strings.Contains(in.ReturnURL, "/success-author?userId=author-1") {
		t.Fatalf("return url = %q", in.ReturnURL)
	}
}

func TestConfirmAuthorPayout(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "author-1", PayoutEmail: "author@example.com"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	for _, b := range []domain.Book{
		{ID: "b-1", AuthorID: "author-1", IsVIP: true},
		{ID: "b-2", AuthorID: "author-1", IsVIP: true, IsPaid: true},
		{ID: "b-3", AuthorID: "author-1"},
	} {
		if err := m.SaveBook(b); err != nil {
			t.Fatalf("save book: %v", err)
		}
	}
	a := newTestApp(t, m, &fakeGateway{}, nil)

	res, err := a.ConfirmAuthorPayout(context.Background(), "PAYER-1", "PAY-2", "author-1", 6.5)
	if err != nil {
		t.Fatalf("confirm payout: %v", err)
	}
	if res.BooksPaid != 1 {
		t.Fatalf("books paid = %d, want 1", res.BooksPaid)
	}

	payments, _ := m.ListPayments()
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments))
	}
	p := payments[0]
	if p.AuthorID != "author-1" || p.XuToAuthor != 650 {
		t.Fatalf("payout record = %+v, want author-1 / 650 xu", p)
	}

	notes := m.Notifications()
	if len(notes) != 1 || notes[0].UserID != "author-1" || notes[0].Type != "payout" {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestAskUnknownUserSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{answer: "hi"}
	a := newTestApp(t, store.NewMemoryStore(), &fakeGateway{}, gen)

	_, err := a.Ask(context.Background(), "missing", "how many books?")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}

func TestAskWithoutGenerator(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "u-1", Role: "user"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	a := newTestApp(t, m, &fakeGateway{}, nil)
	if _, err := a.Ask(context.Background(), "u-1", "hi"); !errors.Is(err, ErrAssistantUnavailable) {
		t.Fatalf("err = %v, want ErrAssistantUnavailable", err)
	}
}

func TestAskUserRolePipeline(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "u-1", Role: "user"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := m.SaveBook(domain.Book{ID: string(rune('a' + i)), Title: string(rune('A' + i)), Views: int64(i)}); err != nil {
			t.Fatalf("save book: %v", err)
		}
	}
	gen := &fakeGenerator{answer: "three books"}
	a := newTestApp(t, m, &fakeGateway{}, gen)

	res, err := a.Ask(context.Background(), "u-1", "how many books?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if res.Role != domain.RoleUser || res.Answer != "three books" {
		t.Fatalf("result = %+v", res)
	}
	if res.Summary.Books.Total != 3 {
		t.Fatalf("summary books = %d, want 3", res.Summary.Books.Total)
	}
	if res.Summary.Books.Detailed != nil || res.Summary.Revenue != nil {
		t.Fatalf("user summary leaks detail: %+v", res.Summary)
	}
	if len(res.Summary.SuggestedBooks) != 3 {
		t.Fatalf("suggestions = %v", res.Summary.SuggestedBooks)
	}
	if !strings.Contains(gen.lastUser, "how many books?") {
		t.Fatalf("user prompt missing question: %q", gen.lastUser)
	}
	if strings.Contains(gen.lastUser, `"detailed"`) {
		t.Fatalf("user prompt leaks detailed records: %q", gen.lastUser)
	}

	logs := m.AILogs()
	if len(logs) != 1 || logs[0].UserID != "u-1" || logs[0].Role != domain.RoleUser {
		t.Fatalf("ai logs = %+v", logs)
	}
}

func TestAskAdminRolePipeline(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "admin-1", Role: "Admin"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if err := m.SaveBook(domain.Book{ID: "b-1", Title: "B", IsVIP: true, Views: 2}); err != nil {
		t.Fatalf("save book: %v", err)
	}
	gen := &fakeGenerator{answer: "one quiet VIP book"}
	a := newTestApp(t, m, &fakeGateway{}, gen)

	res, err := a.Ask(context.Background(), "admin-1", "any problems?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if res.Role != domain.RoleAdmin {
		t.Fatalf("role = %q, want admin", res.Role)
	}
	if len(res.Summary.Books.Detailed) != 1 {
		t.Fatalf("admin summary missing detail: %+v", res.Summary.Books)
	}
	if res.Summary.AdminWarnings == nil || len(res.Summary.AdminWarnings.Warnings) == 0 {
		t.Fatalf("admin warnings missing: %+v", res.Summary.AdminWarnings)
	}
	if gen.lastSystem == "" || strings.Contains(gen.lastSystem, "Never reveal") {
		t.Fatalf("admin received restricted prompt: %q", gen.lastSystem)
	}
}
