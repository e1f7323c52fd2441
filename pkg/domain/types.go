package domain

import "strings"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// ParseRole resolves the free-text role tag stored on a user record to the
// closed role set. The boolean is false when a non-empty tag was not
// recognized; callers are expected to log the anomaly. Absent tags resolve
// to RoleUser.
func ParseRole(raw string) (UserRole, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return RoleUser, true
	case string(RoleUser):
		return RoleUser, true
	case string(RoleAdmin):
		return RoleAdmin, true
	default:
		return RoleUser, false
	}
}

// Avatar frame type tags as stored by the content subsystem.
const (
	FrameTypeVIP    = "vip"
	FrameTypeNormal = "thuong"
)

// Book is owned by the content-management subsystem. This backend only reads
// it, except that a successful author payout flips IsPaid.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	AuthorID  string `json:"authorId"`
	IsVIP     bool   `json:"isVIP"`
	IsPaid    bool   `json:"isPaid"`
	Completed bool   `json:"completed"`
	Views     int64  `json:"views"`
}

type Chapter struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	BookID string `json:"bookId"`
}

type Comment struct {
	ID     string `json:"id"`
	BookID string `json:"bookId"`
	UserID string `json:"userId"`
}

type Rating struct {
	ID     string `json:"id"`
	BookID string `json:"bookId"`
	UserID string `json:"userId"`
}

// Favorite links a user to a book they marked.
type Favorite struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	BookID string `json:"bookId"`
}

type ReadingHistory struct {
	ID        string `json:"id"`
	BookID    string `json:"bookId"`
	Completed bool   `json:"completed"`
}

type AvatarFrame struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Xu          int64  `json:"xu"`
	PayoutEmail string `json:"payoutEmail,omitempty"`
}

// Payment is appended exactly once per confirmed provider payment, never
// mutated. AuthorID/XuToAuthor are set only on author payouts.
type Payment struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	PaymentID  string  `json:"paymentId"`
	PayerID    string  `json:"payerId"`
	Amount     float64 `json:"amount"`
	XuReceived int64   `json:"xuReceived"`
	Status     string  `json:"status"`
	Method     string  `json:"method"`
	AuthorID   string  `json:"authorId,omitempty"`
	XuToAuthor int64   `json:"xuToAuthor,omitempty"`
	Time       int64   `json:"time"`
}

// Transaction is the append-only balance audit entry written alongside each
// Payment. Amounts are in xu; Time is epoch milliseconds.
type Transaction struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Type   string `json:"type"`
	Method string `json:"method"`
	Amount int64  `json:"amount"`
	Before int64  `json:"before"`
	After  int64  `json:"after"`
	Time   int64  `json:"time"`
}

// AILog records one assistant question for auditing.
type AILog struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Role     UserRole `json:"role"`
	Question string   `json:"question"`
	Time     int64    `json:"time"`
}

type Notification struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Time    int64  `json:"time"`
}
