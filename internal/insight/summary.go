package insight

import (
	"sort"

	"booknet/pkg/domain"
)

const topViewedCount = 5

// Collections holds the raw record sets fetched wholesale for one request.
// Any slice may be nil; absent collections aggregate to zero counts.
type Collections struct {
	Books          []domain.Book
	Chapters       []domain.Chapter
	Comments       []domain.Comment
	Ratings        []domain.Rating
	Favorites      []domain.Favorite
	ReadingHistory []domain.ReadingHistory
	Payments       []domain.Payment
	AvatarFrames   []domain.AvatarFrame
}

type ChapterRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type BookDetail struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	AuthorID  string       `json:"authorId"`
	IsVIP     bool         `json:"isVIP"`
	IsPaid    bool         `json:"isPaid"`
	Completed bool         `json:"completed"`
	Views     int64        `json:"views"`
	Chapters  []ChapterRef `json:"chapters"`
}

type BookSummary struct {
	Total     int          `json:"total"`
	VIP       int          `json:"vip"`
	Paid      int          `json:"paid"`
	Completed int          `json:"completed"`
	TopViewed []string     `json:"topViewed"`
	Detailed  []BookDetail `json:"detailed,omitempty"`
}

type ChapterSummary struct {
	Total    int              `json:"total"`
	Detailed []domain.Chapter `json:"detailed,omitempty"`
}

type InteractionSummary struct {
	Comments  int `json:"comments"`
	Ratings   int `json:"ratings"`
	Favorites int `json:"favorites"`
}

type HistorySummary struct {
	Total     int                     `json:"total"`
	Completed int                     `json:"completed"`
	Detailed  []domain.ReadingHistory `json:"detailed,omitempty"`
}

type RevenueSummary struct {
	TotalUSD float64          `json:"totalUSD"`
	TotalXu  int64            `json:"totalXu"`
	Payments int              `json:"payments"`
	Detailed []domain.Payment `json:"detailed,omitempty"`
}

type FrameSummary struct {
	Total  int `json:"total"`
	VIP    int `json:"vip"`
	Normal int `json:"normal"`
}

type AdminInsights struct {
	Warnings   []string `json:"warnings"`
	TopAuthors []string `json:"topAuthors"`
}

// Summary is the request-scoped aggregate handed to the language model.
// Revenue and AvatarFrames are pointers so the non-admin projection can drop
// the subtrees entirely.
type Summary struct {
	Books          BookSummary        `json:"books"`
	Chapters       ChapterSummary     `json:"chapters"`
	Interactions   InteractionSummary `json:"interactions"`
	ReadingHistory HistorySummary     `json:"readingHistory"`
	Revenue        *RevenueSummary    `json:"revenue,omitempty"`
	AvatarFrames   *FrameSummary      `json:"avatarFrames,omitempty"`
	SuggestedBooks []string           `json:"suggestedBooks,omitempty"`
	AdminWarnings  *AdminInsights     `json:"adminWarnings,omitempty"`
}

// Summarize aggregates the raw collections into the full summary. It is pure:
// the same input always yields the same output and nothing is mutated.
func Summarize(c Collections) Summary {
	chaptersByBook := make(map[string][]ChapterRef, len(c.Books))
	for _, ch := range c.Chapters {
		chaptersByBook[ch.BookID] = append(chaptersByBook[ch.BookID], ChapterRef{ID: ch.ID, Title: ch.Title})
	}

	books := BookSummary{
		Total:     len(c.Books),
		TopViewed: topViewedTitles(c.Books),
		Detailed:  make([]BookDetail, 0, len(c.Books)),
	}
	for _, b := range c.Books {
		if b.IsVIP {
			books.VIP++
		}
		if b.IsPaid {
			books.Paid++
		}
		if b.Completed {
			books.Completed++
		}
		books.Detailed = append(books.Detailed, BookDetail{
			ID:        b.ID,
			Title:     b.Title,
			AuthorID:  b.AuthorID,
			IsVIP:     b.IsVIP,
			IsPaid:    b.IsPaid,
			Completed: b.Completed,
			Views:     b.Views,
			Chapters:  chaptersByBook[b.ID],
		})
	}

	history := HistorySummary{
		Total:    len(c.ReadingHistory),
		Detailed: c.ReadingHistory,
	}
	for _, h := range c.ReadingHistory {
		if h.Completed {
			history.Completed++
		}
	}

	revenue := RevenueSummary{
		Payments: len(c.Payments),
		Detailed: c.Payments,
	}
	for _, p := range c.Payments {
		revenue.TotalUSD += p.Amount
		revenue.TotalXu += p.XuReceived
	}

	frames := FrameSummary{Total: len(c.AvatarFrames)}
	for _, f := range c.AvatarFrames {
		switch f.Type {
		case domain.FrameTypeVIP:
			frames.VIP++
		case domain.FrameTypeNormal:
			frames.Normal++
		}
	}

	return Summary{
		Books: books,
		Chapters: ChapterSummary{
			Total:    len(c.Chapters),
			Detailed: c.Chapters,
		},
		Interactions: InteractionSummary{
			Comments:  len(c.Comments),
			Ratings:   len(c.Ratings),
			Favorites: len(c.Favorites),
		},
		ReadingHistory: history,
		Revenue:        &revenue,
		AvatarFrames:   &frames,
	}
}

// topViewedTitles returns up to five titles ordered by view count,
// descending. The sort is stable so ties keep the stored order.
func topViewedTitles(books []domain.Book) []string {
	ranked := make([]domain.Book, len(books))
	copy(ranked, books)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views > ranked[j].Views
	})
	n := topViewedCount
	if len(ranked) < n {
		n = len(ranked)
	}
	titles := make([]string, 0, n)
	for _, b := range ranked[:n] {
		titles = append(titles, b.Title)
	}
	return titles
}
