package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booknet/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&ChapterModel{},
		&CommentModel{},
		&RatingModel{},
		&FavoriteModel{},
		&ReadingHistoryModel{},
		&AvatarFrameModel{},
		&PaymentModel{},
		&TransactionModel{},
		&AILogModel{},
		&NotificationModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// GetUser returns a user by ID.
func (s *GormStore) GetUser(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveUser stores or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "role", "xu", "payout_email"}),
	}).Create(&model).Error
}

// CreditXu adjusts the balance inside a transaction holding a row lock, so
// concurrent top-ups for the same user serialize instead of losing updates.
func (s *GormStore) CreditXu(userID string, delta int64) (int64, int64, error) {
	var before, after int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "id = ?", userID).Error; err != nil {
			return err
		}
		before = model.Xu
		after = before + delta
		return tx.Model(&UserModel{}).Where("id = ?", userID).Update("xu", after).Error
	})
	if err != nil {
		return 0, 0, fmt.Errorf("credit xu for user %s: %w", userID, err)
	}
	return before, after, nil
}

// ListBooks returns all books.
func (s *GormStore) ListBooks() ([]domain.Book, error) {
	var models []BookModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// SaveBook stores or updates a book.
func (s *GormStore) SaveBook(b domain.Book) error {
	model := bookToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "author_id", "is_vip", "is_paid", "completed", "views"}),
	}).Create(&model).Error
}

// MarkAuthorBooksPaid flips IsPaid on the author's VIP, unpaid books.
func (s *GormStore) MarkAuthorBooksPaid(authorID string) (int, error) {
	res := s.db.Model(&BookModel{}).
		Where("author_id = ? AND is_vip = ? AND is_paid = ?", authorID, true, false).
		Update("is_paid", true)
	return int(res.RowsAffected), res.Error
}

// ListChapters returns all chapters.
func (s *GormStore) ListChapters() ([]domain.Chapter, error) {
	var models []ChapterModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Chapter, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Chapter{ID: m.ID, Title: m.Title, BookID: m.BookID})
	}
	return res, nil
}

// ListComments returns all comments.
func (s *GormStore) ListComments() ([]domain.Comment, error) {
	var models []CommentModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Comment, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Comment{ID: m.ID, BookID: m.BookID, UserID: m.UserID})
	}
	return res, nil
}

// ListRatings returns all ratings.
func (s *GormStore) ListRatings() ([]domain.Rating, error) {
	var models []RatingModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Rating, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Rating{ID: m.ID, BookID: m.BookID, UserID: m.UserID})
	}
	return res, nil
}

// ListFavorites returns all favorites.
func (s *GormStore) ListFavorites() ([]domain.Favorite, error) {
	var models []FavoriteModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Favorite, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Favorite{ID: m.ID, UserID: m.UserID, BookID: m.BookID})
	}
	return res, nil
}

// ListReadingHistory returns all reading-history records.
func (s *GormStore) ListReadingHistory() ([]domain.ReadingHistory, error) {
	var models []ReadingHistoryModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ReadingHistory, 0, len(models))
	for _, m := range models {
		res = append(res, domain.ReadingHistory{ID: m.ID, BookID: m.BookID, Completed: m.Completed})
	}
	return res, nil
}

// ListAvatarFrames returns all avatar frames.
func (s *GormStore) ListAvatarFrames() ([]domain.AvatarFrame, error) {
	var models []AvatarFrameModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.AvatarFrame, 0, len(models))
	for _, m := range models {
		res = append(res, domain.AvatarFrame{ID: m.ID, Type: m.Type})
	}
	return res, nil
}

// ListPayments returns all payments ordered by time.
func (s *GormStore) ListPayments() ([]domain.Payment, error) {
	var models []PaymentModel
	if err := s.db.Order("time ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Payment, 0, len(models))
	for _, m := range models {
		res = append(res, paymentFromModel(m))
	}
	return res, nil
}

// AppendPayment records a confirmed payment.
func (s *GormStore) AppendPayment(p domain.Payment) error {
	model := paymentToModel(p)
	return s.db.Create(&model).Error
}

// AppendTransaction records a balance audit entry.
func (s *GormStore) AppendTransaction(t domain.Transaction) error {
	model := TransactionModel{
		ID:     t.ID,
		UserID: t.UserID,
		Type:   t.Type,
		Method: t.Method,
		Amount: t.Amount,
		Before: t.Before,
		After:  t.After,
		Time:   t.Time,
	}
	return s.db.Create(&model).Error
}

// AppendAILog records an assistant audit entry.
func (s *GormStore) AppendAILog(l domain.AILog) error {
	model := AILogModel{ID: l.ID, UserID: l.UserID, Role: string(l.Role), Question: l.Question, Time: l.Time}
	return s.db.Create(&model).Error
}

// AppendNotification records a user notification.
func (s *GormStore) AppendNotification(n domain.Notification) error {
	model := NotificationModel{ID: n.ID, UserID: n.UserID, Type: n.Type, Message: n.Message, Time: n.Time}
	return s.db.Create(&model).Error
}
