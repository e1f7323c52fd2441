package store

import (
	"fmt"
	"sync"

	"booknet/pkg/domain"
)

// MemoryStore keeps all collections in-process. It backs tests and local
// development without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	books         map[string]domain.Book
	bookOrder     []string
	chapters      []domain.Chapter
	comments      []domain.Comment
	ratings       []domain.Rating
	favorites     []domain.Favorite
	history       []domain.ReadingHistory
	frames        []domain.AvatarFrame
	payments      []domain.Payment
	transactions  []domain.Transaction
	aiLogs        []domain.AILog
	notifications []domain.Notification
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		books: make(map[string]domain.Book),
	}
}

// GetUser returns a user by ID.
func (m *MemoryStore) GetUser(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SaveUser stores or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// CreditXu adjusts the balance under the store lock.
func (m *MemoryStore) CreditXu(userID string, delta int64) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, 0, fmt.Errorf("credit xu: user %s not found", userID)
	}
	before := u.Xu
	u.Xu = before + delta
	m.users[userID] = u
	return before, u.Xu, nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.bookOrder))
	for _, id := range m.bookOrder {
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// SaveBook stores or replaces a book and tracks insertion order.
func (m *MemoryStore) SaveBook(b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.books[b.ID]; !exists {
		m.bookOrder = append(m.bookOrder, b.ID)
	}
	m.books[b.ID] = b
	return nil
}

// MarkAuthorBooksPaid flips IsPaid on the author's VIP, unpaid books.
func (m *MemoryStore) MarkAuthorBooksPaid(authorID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := 0
	for id, b := range m.books {
		if b.AuthorID == authorID && b.IsVIP && !b.IsPaid {
			b.IsPaid = true
			m.books[id] = b
			changed++
		}
	}
	return changed, nil
}

// SeedChapters replaces the chapter collection (test fixture helper).
func (m *MemoryStore) SeedChapters(chapters []domain.Chapter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chapters = append([]domain.Chapter(nil), chapters...)
}

// SeedComments replaces the comment collection.
func (m *MemoryStore) SeedComments(comments []domain.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append([]domain.Comment(nil), comments...)
}

// SeedRatings replaces the rating collection.
func (m *MemoryStore) SeedRatings(ratings []domain.Rating) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings = append([]domain.Rating(nil), ratings...)
}

// SeedFavorites replaces the favorite collection.
func (m *MemoryStore) SeedFavorites(favorites []domain.Favorite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites = append([]domain.Favorite(nil), favorites...)
}

// SeedReadingHistory replaces the reading-history collection.
func (m *MemoryStore) SeedReadingHistory(history []domain.ReadingHistory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]domain.ReadingHistory(nil), history...)
}

// SeedAvatarFrames replaces the avatar-frame collection.
func (m *MemoryStore) SeedAvatarFrames(frames []domain.AvatarFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append([]domain.AvatarFrame(nil), frames...)
}

// ListChapters returns all chapters.
func (m *MemoryStore) ListChapters() ([]domain.Chapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Chapter(nil), m.chapters...), nil
}

// ListComments returns all comments.
func (m *MemoryStore) ListComments() ([]domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Comment(nil), m.comments...), nil
}

// ListRatings returns all ratings.
func (m *MemoryStore) ListRatings() ([]domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Rating(nil), m.ratings...), nil
}

// ListFavorites returns all favorites.
func (m *MemoryStore) ListFavorites() ([]domain.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Favorite(nil), m.favorites...), nil
}

// ListReadingHistory returns all reading-history records.
func (m *MemoryStore) ListReadingHistory() ([]domain.ReadingHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ReadingHistory(nil), m.history...), nil
}

// ListAvatarFrames returns all avatar frames.
func (m *MemoryStore) ListAvatarFrames() ([]domain.AvatarFrame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.AvatarFrame(nil), m.frames...), nil
}

// ListPayments returns payments in append order.
func (m *MemoryStore) ListPayments() ([]domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Payment(nil), m.payments...), nil
}

// AppendPayment records a confirmed payment.
func (m *MemoryStore) AppendPayment(p domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, p)
	return nil
}

// AppendTransaction records a balance audit entry.
func (m *MemoryStore) AppendTransaction(t domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, t)
	return nil
}

// AppendAILog records an assistant audit entry.
func (m *MemoryStore) AppendAILog(l domain.AILog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aiLogs = append(m.aiLogs, l)
	return nil
}

// AppendNotification records a user notification.
func (m *MemoryStore) AppendNotification(n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

// Transactions returns the appended transactions (test helper).
func (m *MemoryStore) Transactions() []domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Transaction(nil), m.transactions...)
}

// AILogs returns the appended AI audit entries (test helper).
func (m *MemoryStore) AILogs() []domain.AILog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.AILog(nil), m.aiLogs...)
}

// Notifications returns the appended notifications (test helper).
func (m *MemoryStore) Notifications() []domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Notification(nil), m.notifications...)
}
