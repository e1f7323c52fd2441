package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
)

// Client calls the PayPal REST payments API (create + execute redirect flow).
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient constructs a client for the given mode ("live" or "sandbox";
// anything else falls back to sandbox).
func NewClient(mode, clientID, clientSecret string) *Client {
	baseURL := sandboxBaseURL
	if strings.EqualFold(strings.TrimSpace(mode), "live") {
		baseURL = liveBaseURL
	}
	return newClient(baseURL, clientID, clientSecret)
}

// NewClientWithBaseURL constructs a client against a custom API endpoint.
// Used by tests to point at a stub server.
func NewClientWithBaseURL(baseURL, clientID, clientSecret string) *Client {
	return newClient(strings.TrimRight(baseURL, "/"), clientID, clientSecret)
}

func newClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// CreatePaymentInput describes one sale payment to create.
type CreatePaymentInput struct {
	AmountUSD   float64
	ItemName    string
	Description string
	ReturnURL   string
	CancelURL   string
	// PayeeEmail directs the payment to another account (author payouts).
	// Empty means the platform account receives it.
	PayeeEmail string
}

// CreatedPayment holds the provider payment id and the approval redirect.
type CreatedPayment struct {
	ID          string
	ApprovalURL string
}

// CreatePayment creates a sale payment and returns its approval URL.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (CreatedPayment, error) {
	total := formatUSD(in.AmountUSD)
	reqBody := paymentRequest{
		Intent: "sale",
		Payer:  payer{PaymentMethod: "paypal"},
		RedirectURLs: redirectURLs{
			ReturnURL: in.ReturnURL,
			CancelURL: in.CancelURL,
		},
		Transactions: []transaction{{
			ItemList: &itemList{Items: []item{{
				Name:     in.ItemName,
				Price:    total,
				Currency: "USD",
				Quantity: 1,
			}}},
			Amount:      amount{Currency: "USD", Total: total},
			Description: in.Description,
		}},
	}
	if in.PayeeEmail != "" {
		reqBody.Transactions[0].Payee = &payee{Email: in.PayeeEmail}
	}

	var resp paymentResponse
	if err := c.doJSON(ctx, "/v1/payments/payment", reqBody, &resp); err != nil {
		return CreatedPayment{}, err
	}
	for _, link := range resp.Links {
		if link.Rel == "approval_url" {
			return CreatedPayment{ID: resp.ID, ApprovalURL: link.Href}, nil
		}
	}
	return CreatedPayment{}, fmt.Errorf("payment %s has no approval url", resp.ID)
}

// ExecutePayment completes a previously approved payment.
func (c *Client) ExecutePayment(ctx context.Context, paymentID, payerID string, amountUSD float64) error {
	reqBody := executeRequest{
		PayerID: payerID,
		Transactions: []executeTransaction{{
			Amount: amount{Currency: "USD", Total: formatUSD(amountUSD)},
		}},
	}
	var resp paymentResponse
	path := "/v1/payments/payment/" + url.PathEscape(paymentID) + "/execute"
	if err := c.doJSON(ctx, path, reqBody, &resp); err != nil {
		return err
	}
	if resp.State != "" && !strings.EqualFold(resp.State, "approved") {
		return fmt.Errorf("payment %s not approved, state %q", paymentID, resp.State)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, path string, in, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("paypal api error (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paypal decode: %w", err)
	}
	return nil
}

// token returns a cached OAuth access token, refreshing when close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("paypal token error (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("paypal token decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func formatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// PayPal REST request/response types.

type payer struct {
	PaymentMethod string `json:"payment_method"`
}

type redirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type item struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type itemList struct {
	Items []item `json:"items"`
}

type amount struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type payee struct {
	Email string `json:"email"`
}

type transaction struct {
	ItemList    *itemList `json:"item_list,omitempty"`
	Amount      amount    `json:"amount"`
	Description string    `json:"description,omitempty"`
	Payee       *payee    `json:"payee,omitempty"`
}

type paymentRequest struct {
	Intent       string        `json:"intent"`
	Payer        payer         `json:"payer"`
	RedirectURLs redirectURLs  `json:"redirect_urls"`
	Transactions []transaction `json:"transactions"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paymentResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Links []link `json:"links"`
}

type executeTransaction struct {
	Amount amount `json:"amount"`
}

type executeRequest struct {
	PayerID      string               `json:"payer_id"`
	Transactions []executeTransaction `json:"transactions"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}
