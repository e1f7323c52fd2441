package store

import "booknet/pkg/domain"

// Store defines persistence operations over the platform collections. Raw
// collections are owned by other subsystems and fetched wholesale; this
// backend appends payments, transactions, notifications, and AI audit logs,
// adjusts coin balances, and flips the paid flag on payout.
type Store interface {
	// users
	GetUser(id string) (domain.User, bool, error)
	SaveUser(domain.User) error
	// CreditXu atomically adjusts a user's coin balance and returns the
	// balance before and after the adjustment.
	CreditXu(userID string, delta int64) (before int64, after int64, err error)

	// books
	ListBooks() ([]domain.Book, error)
	SaveBook(domain.Book) error
	// MarkAuthorBooksPaid flips IsPaid on every VIP, unpaid book uploaded
	// by the author and reports how many books changed.
	MarkAuthorBooksPaid(authorID string) (int, error)

	// raw collections
	ListChapters() ([]domain.Chapter, error)
	ListComments() ([]domain.Comment, error)
	ListRatings() ([]domain.Rating, error)
	ListFavorites() ([]domain.Favorite, error)
	ListReadingHistory() ([]domain.ReadingHistory, error)
	ListAvatarFrames() ([]domain.AvatarFrame, error)

	// payments and audit trail (append-only)
	ListPayments() ([]domain.Payment, error)
	AppendPayment(domain.Payment) error
	AppendTransaction(domain.Transaction) error
	AppendAILog(domain.AILog) error
	AppendNotification(domain.Notification) error
}
