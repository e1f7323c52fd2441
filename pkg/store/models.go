package store

import "booknet/pkg/domain"

// GORM models used for persistence.
type UserModel struct {
	ID          string `gorm:"primaryKey"`
	Username    string
	Role        string
	Xu          int64 `gorm:"not null;default:0"`
	PayoutEmail string
}

type BookModel struct {
	ID        string `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	AuthorID  string `gorm:"index"`
	IsVIP     bool
	IsPaid    bool
	Completed bool
	Views     int64 `gorm:"not null;default:0"`
}

type ChapterModel struct {
	ID     string `gorm:"primaryKey"`
	Title  string
	BookID string `gorm:"index"`
}

type CommentModel struct {
	ID     string `gorm:"primaryKey"`
	BookID string `gorm:"index"`
	UserID string
}

type RatingModel struct {
	ID     string `gorm:"primaryKey"`
	BookID string `gorm:"index"`
	UserID string
}

type FavoriteModel struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"index"`
	BookID string
}

type ReadingHistoryModel struct {
	ID        string `gorm:"primaryKey"`
	BookID    string `gorm:"index"`
	Completed bool
}

type AvatarFrameModel struct {
	ID   string `gorm:"primaryKey"`
	Type string
}

type PaymentModel struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index;not null"`
	PaymentID  string
	PayerID    string
	Amount     float64
	XuReceived int64
	Status     string
	Method     string
	AuthorID   string `gorm:"index"`
	XuToAuthor int64
	Time       int64
}

type TransactionModel struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"index;not null"`
	Type   string
	Method string
	Amount int64
	Before int64
	After  int64
	Time   int64
}

type AILogModel struct {
	ID       string `gorm:"primaryKey"`
	UserID   string `gorm:"index;not null"`
	Role     string
	Question string
	Time     int64
}

type NotificationModel struct {
	ID      string `gorm:"primaryKey"`
	UserID  string `gorm:"index;not null"`
	Type    string
	Message string
	Time    int64
}

func userToModel(u domain.User) UserModel {
	return UserModel{ID: u.ID, Username: u.Username, Role: u.Role, Xu: u.Xu, PayoutEmail: u.PayoutEmail}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{ID: m.ID, Username: m.Username, Role: m.Role, Xu: m.Xu, PayoutEmail: m.PayoutEmail}
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{ID: b.ID, Title: b.Title, AuthorID: b.AuthorID, IsVIP: b.IsVIP, IsPaid: b.IsPaid, Completed: b.Completed, Views: b.Views}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{ID: m.ID, Title: m.Title, AuthorID: m.AuthorID, IsVIP: m.IsVIP, IsPaid: m.IsPaid, Completed: m.Completed, Views: m.Views}
}

func paymentToModel(p domain.Payment) PaymentModel {
	return PaymentModel{
		ID:         p.ID,
		UserID:     p.UserID,
		PaymentID:  p.PaymentID,
		PayerID:    p.PayerID,
		Amount:     p.Amount,
		XuReceived: p.XuReceived,
		Status:     p.Status,
		Method:     p.Method,
		AuthorID:   p.AuthorID,
		XuToAuthor: p.XuToAuthor,
		Time:       p.Time,
	}
}

func paymentFromModel(m PaymentModel) domain.Payment {
	return domain.Payment{
		ID:         m.ID,
		UserID:     m.UserID,
		PaymentID:  m.PaymentID,
		PayerID:    m.PayerID,
		Amount:     m.Amount,
		XuReceived: m.XuReceived,
		Status:     m.Status,
		Method:     m.Method,
		AuthorID:   m.AuthorID,
		XuToAuthor: m.XuToAuthor,
		Time:       m.Time,
	}
}
