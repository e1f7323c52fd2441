package insight

import (
	"fmt"
	"sort"

	"booknet/pkg/domain"
)

const (
	suggestionCount       = 5
	favoriteScoreBoost    = 50
	lowEngagementVIPViews = 10
	lowRevenueUSD         = 50
	topAuthorCount        = 3
)

// Enrich extends a role-filtered summary with role-specific insights
// computed from the raw collections. Users get book suggestions, admins get
// warnings and the top-earning authors. Any other role passes through
// unchanged.
func Enrich(s Summary, role domain.UserRole, c Collections) Summary {
	switch role {
	case domain.RoleUser:
		s.SuggestedBooks = suggestBooks(c)
	case domain.RoleAdmin:
		s.AdminWarnings = adminInsights(c)
	}
	return s
}

// suggestBooks ranks unread books by view count with a flat boost for
// favorited titles and returns the top five.
func suggestBooks(c Collections) []string {
	read := make(map[string]bool, len(c.ReadingHistory))
	for _, h := range c.ReadingHistory {
		read[h.BookID] = true
	}
	favorited := make(map[string]bool, len(c.Favorites))
	for _, f := range c.Favorites {
		favorited[f.BookID] = true
	}

	type scoredBook struct {
		title string
		score int64
	}
	candidates := make([]scoredBook, 0, len(c.Books))
	for _, b := range c.Books {
		if read[b.ID] {
			continue
		}
		score := b.Views
		if favorited[b.ID] {
			score += favoriteScoreBoost
		}
		candidates = append(candidates, scoredBook{title: b.Title, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	n := suggestionCount
	if len(candidates) < n {
		n = len(candidates)
	}
	titles := make([]string, 0, n)
	for _, cand := range candidates[:n] {
		titles = append(titles, cand.title)
	}
	return titles
}

func adminInsights(c Collections) *AdminInsights {
	insights := &AdminInsights{
		Warnings:   []string{},
		TopAuthors: []string{},
	}

	lowVIP := 0
	for _, b := range c.Books {
		if b.IsVIP && b.Views < lowEngagementVIPViews {
			lowVIP++
		}
	}
	if lowVIP > 0 {
		insights.Warnings = append(insights.Warnings,
			fmt.Sprintf("%d VIP books have fewer than %d views", lowVIP, lowEngagementVIPViews))
	}

	var totalUSD float64
	for _, p := range c.Payments {
		totalUSD += p.Amount
	}
	if totalUSD < lowRevenueUSD {
		insights.Warnings = append(insights.Warnings,
			fmt.Sprintf("total revenue is low: $%.2f", totalUSD))
	}

	insights.TopAuthors = topAuthors(c.Payments)
	return insights
}

// topAuthors sums the xu directed to each author across payout payments and
// formats the top three earners. Authors are ranked stably in first-seen
// order so equal totals stay deterministic.
func topAuthors(payments []domain.Payment) []string {
	totals := make(map[string]int64)
	order := make([]string, 0)
	for _, p := range payments {
		if p.AuthorID == "" {
			continue
		}
		if _, seen := totals[p.AuthorID]; !seen {
			order = append(order, p.AuthorID)
		}
		totals[p.AuthorID] += p.XuToAuthor
	}
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})
	n := topAuthorCount
	if len(order) < n {
		n = len(order)
	}
	formatted := make([]string, 0, n)
	for _, authorID := range order[:n] {
		formatted = append(formatted, fmt.Sprintf("author %s received %d coins", authorID, totals[authorID]))
	}
	return formatted
}
