package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"booknet/internal/app"
	"booknet/internal/ratelimit"
	"booknet/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// AskLimiter throttles /ai-ask per user. Nil disables throttling.
	AskLimiter *ratelimit.FixedWindowLimiter
}

// Server exposes the payment and assistant endpoints consumed by the
// mobile client.
type Server struct {
	app        *app.App
	askLimiter *ratelimit.FixedWindowLimiter
	mux        *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	s := &Server{
		app:        cfg.App,
		askLimiter: cfg.AskLimiter,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("booknet", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/create-payment", s.handleCreatePayment)
	s.mux.HandleFunc("/success", s.handleSuccess)
	s.mux.HandleFunc("/cancel", s.handleCancel)
	s.mux.HandleFunc("/pay-author", s.handlePayAuthor)
	s.mux.HandleFunc("/success-author", s.handleSuccessAuthor)
	s.mux.HandleFunc("/ai-ask", s.handleAsk)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeText(w, http.StatusOK, "Booknet backend is running")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPaymentRequest struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

type paymentURLResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "userId and a positive amount are required")
		return
	}
	approvalURL, err := s.app.CreateTopUp(r.Context(), req.UserID, req.Amount)
	if err != nil {
		slog.Error("create payment failed", "user_id", req.UserID, "err", err)
		writeText(w, http.StatusInternalServerError, "could not create payment")
		return
	}
	writeJSON(w, http.StatusOK, paymentURLResponse{PaymentURL: approvalURL})
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	payerID, paymentID, userID, amount, ok := redirectParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "PayerID, paymentId, userId and amount are required")
		return
	}
	res, err := s.app.ConfirmTopUp(r.Context(), payerID, paymentID, userID, amount)
	if err != nil {
		if errors.Is(err, app.ErrPaymentFailed) {
			// Redirect-flow convention: the provider page expects a 200.
			writeText(w, http.StatusOK, "payment failed")
			return
		}
		slog.Error("confirm payment failed", "user_id", userID, "err", err)
		writeText(w, http.StatusInternalServerError, "could not confirm payment")
		return
	}
	renderSuccessPage(w, successPageData{
		Heading:  "Thanh toán thành công!",
		Lines:    []string{fmt.Sprintf("Bạn đã nạp %d xu.", res.XuAdded), fmt.Sprintf("Tổng xu mới: %d", res.NewBalance)},
		DeepLink: "booknet://home",
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeText(w, http.StatusOK, "Bạn đã hủy thanh toán!")
}

type payAuthorRequest struct {
	UserID     string `json:"userId"`
	TotalXuVIP int64  `json:"totalXuVIP"`
}

func (s *Server) handlePayAuthor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req payAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || req.TotalXuVIP <= 0 {
		writeError(w, http.StatusBadRequest, "userId and a positive totalXuVIP are required")
		return
	}
	approvalURL, err := s.app.CreateAuthorPayout(r.Context(), req.UserID, req.TotalXuVIP)
	switch {
	case errors.Is(err, app.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, app.ErrNoPayoutEmail):
		writeError(w, http.StatusBadRequest, "author has no payout email on file")
		return
	case err != nil:
		slog.Error("create payout failed", "user_id", req.UserID, "err", err)
		writeText(w, http.StatusInternalServerError, "could not create payout")
		return
	}
	writeJSON(w, http.StatusOK, paymentURLResponse{PaymentURL: approvalURL})
}

func (s *Server) handleSuccessAuthor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	payerID, paymentID, userID, amount, ok := redirectParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "PayerID, paymentId, userId and amount are required")
		return
	}
	res, err := s.app.ConfirmAuthorPayout(r.Context(), payerID, paymentID, userID, amount)
	if err != nil {
		if errors.Is(err, app.ErrPaymentFailed) {
			writeText(w, http.StatusOK, "payment failed")
			return
		}
		slog.Error("confirm payout failed", "user_id", userID, "err", err)
		writeText(w, http.StatusInternalServerError, "could not confirm payout")
		return
	}
	renderSuccessPage(w, successPageData{
		Heading:  "Thanh toán tác giả thành công!",
		Lines:    []string{fmt.Sprintf("Đã chuyển $%.2f cho tác giả.", res.AmountUSD), fmt.Sprintf("%d truyện VIP đã được đánh dấu đã trả.", res.BooksPaid)},
		DeepLink: "booknet://home",
	})
}

type askRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "userId and question are required")
		return
	}
	if s.askLimiter != nil && !s.askLimiter.Allow(req.UserID) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "too many questions, slow down")
		return
	}
	res, err := s.app.Ask(r.Context(), req.UserID, req.Question)
	switch {
	case errors.Is(err, app.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		slog.Error("ai ask failed", "user_id", req.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "assistant is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func redirectParams(r *http.Request) (payerID, paymentID, userID string, amount float64, ok bool) {
	q := r.URL.Query()
	payerID = strings.TrimSpace(q.Get("PayerID"))
	paymentID = strings.TrimSpace(q.Get("paymentId"))
	userID = strings.TrimSpace(q.Get("userId"))
	amountRaw := strings.TrimSpace(q.Get("amount"))
	if payerID == "" || paymentID == "" || userID == "" || amountRaw == "" {
		return "", "", "", 0, false
	}
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil || amount <= 0 {
		return "", "", "", 0, false
	}
	return payerID, paymentID, userID, amount, true
}

type successPageData struct {
	Heading  string
	Lines    []string
	DeepLink string
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Heading}}</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #6EE7B7, #3B82F6);
            color: #fff;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
        }
        .container {
            text-align: center;
            background: rgba(0,0,0,0.3);
            padding: 40px 60px;
            border-radius: 20px;
            box-shadow: 0 8px 16px rgba(0,0,0,0.3);
        }
        h1 { font-size: 48px; margin-bottom: 10px; }
        p { font-size: 20px; margin: 10px 0; }
        .btn {
            display: inline-block;
            margin-top: 20px;
            padding: 12px 30px;
            font-size: 18px;
            color: #fff;
            background-color: #10B981;
            border-radius: 10px;
            text-decoration: none;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Heading}}</h1>
{{- range .Lines}}
        <p>{{.}}</p>
{{- end}}
        <a class="btn" href="{{.DeepLink}}">Quay lại ứng dụng</a>
    </div>
</body>
</html>
`))

func renderSuccessPage(w http.ResponseWriter, data successPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := successPage.Execute(w, data); err != nil {
		slog.Error("render success page failed", "err", err)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}
