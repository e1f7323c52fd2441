package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"booknet/internal/insight"
	"booknet/pkg/domain"
)

// AskResult carries the assistant answer plus the summary it was shown.
type AskResult struct {
	Role    domain.UserRole `json:"role"`
	Answer  string          `json:"answer"`
	Summary insight.Summary `json:"summary"`
}

// Ask answers a natural-language question about platform statistics. The
// raw collections are fetched concurrently, aggregated, filtered for the
// caller's role, enriched, and handed to the language model together with a
// role-scoped system prompt. Every answered question is audit-logged.
func (a *App) Ask(ctx context.Context, userID, question string) (AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AskResult{}, fmt.Errorf("question required")
	}
	user, ok, err := a.store.GetUser(userID)
	if err != nil {
		return AskResult{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return AskResult{}, ErrUserNotFound
	}
	if a.generator == nil {
		return AskResult{}, ErrAssistantUnavailable
	}

	role, recognized := domain.ParseRole(user.Role)
	if !recognized {
		slog.Warn("unrecognized role tag, treating as user", "user_id", userID, "role", user.Role)
	}

	collections, err := a.fetchCollections(ctx)
	if err != nil {
		return AskResult{}, err
	}

	summary := insight.Enrich(
		insight.FilterByRole(insight.Summarize(collections), role),
		role,
		collections,
	)

	stats, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return AskResult{}, fmt.Errorf("encode summary: %w", err)
	}
	userPrompt := fmt.Sprintf("Platform statistics:\n%s\n\nQuestion: %s", stats, question)

	answer, err := a.generator.GenerateText(ctx, insight.SystemPrompt(role), userPrompt)
	if err != nil {
		return AskResult{}, fmt.Errorf("generate answer: %w", err)
	}

	if err := a.store.AppendAILog(domain.AILog{
		ID:       uuid.NewString(),
		UserID:   userID,
		Role:     role,
		Question: question,
		Time:     time.Now().UnixMilli(),
	}); err != nil {
		slog.Error("append ai log failed", "user_id", userID, "err", err)
	}

	return AskResult{Role: role, Answer: answer, Summary: summary}, nil
}

// fetchCollections loads the eight raw collections concurrently and joins
// them before aggregation.
func (a *App) fetchCollections(ctx context.Context) (insight.Collections, error) {
	var c insight.Collections
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Books, err = a.store.ListBooks()
		return err
	})
	g.Go(func() (err error) {
		c.Chapters, err = a.store.ListChapters()
		return err
	})
	g.Go(func() (err error) {
		c.Comments, err = a.store.ListComments()
		return err
	})
	g.Go(func() (err error) {
		c.Ratings, err = a.store.ListRatings()
		return err
	})
	g.Go(func() (err error) {
		c.Favorites, err = a.store.ListFavorites()
		return err
	})
	g.Go(func() (err error) {
		c.ReadingHistory, err = a.store.ListReadingHistory()
		return err
	})
	g.Go(func() (err error) {
		c.Payments, err = a.store.ListPayments()
		return err
	})
	g.Go(func() (err error) {
		c.AvatarFrames, err = a.store.ListAvatarFrames()
		return err
	})
	if err := g.Wait(); err != nil {
		return insight.Collections{}, fmt.Errorf("fetch collections: %w", err)
	}
	return c, nil
}
