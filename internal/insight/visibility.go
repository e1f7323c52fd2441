package insight

import "booknet/pkg/domain"

// FilterByRole projects the summary for the caller's role. Admins see the
// full summary unchanged. Every other role gets a freshly built projection
// that copies an explicit allow-list of coarse fields: detailed sublists,
// raw payments, raw reading-history records, revenue, and avatar frames are
// never carried over. Fields added to Summary later stay hidden here until
// someone copies them in.
func FilterByRole(s Summary, role domain.UserRole) Summary {
	if role == domain.RoleAdmin {
		return s
	}
	return Summary{
		Books: BookSummary{
			Total:     s.Books.Total,
			VIP:       s.Books.VIP,
			Paid:      s.Books.Paid,
			Completed: s.Books.Completed,
			TopViewed: s.Books.TopViewed,
		},
		Chapters: ChapterSummary{
			Total: s.Chapters.Total,
		},
		Interactions: s.Interactions,
		ReadingHistory: HistorySummary{
			Total:     s.ReadingHistory.Total,
			Completed: s.ReadingHistory.Completed,
		},
	}
}
