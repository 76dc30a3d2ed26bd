// Package review keeps product reviews in the local session ledger. Review
// text never leaves the client; only the numeric rating is pushed to the
// remote catalog, best-effort.
package review

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// defaultText fills in for reviews submitted without a comment.
const defaultText = "No comment provided"

// API is the slice of the remote client the review service needs.
type API interface {
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	RateProduct(ctx context.Context, productID string, rate int) error
}

// Service manages the local review ledger.
type Service struct {
	api      API
	sessions *session.Manager
	logger   *slog.Logger
}

func NewService(apiClient API, sessions *session.Manager, logger *slog.Logger) *Service {
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger,
	}
}

// Submit records a review for a product the signed-in user has purchased.
// The rating is forwarded to the remote aggregate; a failure there is
// logged and swallowed because the local ledger is the source of truth
// for the user's own view.
func (s *Service) Submit(ctx context.Context, productID string, score int, text string) (*domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if score < 1 || score > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	user, ok := s.sessions.User(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("sign in to review products")
	}
	if !s.hasPurchased(ctx, productID) {
		return nil, apperrors.Forbidden("only purchased products can be reviewed")
	}

	product, err := s.api.ProductByID(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading product for review")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = defaultText
	}
	review := domain.Review{
		ID:              uuid.NewString(),
		ProductID:       product.ID,
		ProductTitle:    product.Title,
		ProductImage:    product.Thumbnail,
		ProductCategory: product.Category.Name,
		Rating:          score,
		Text:            text,
		AuthorName:      user.FullName(),
		AuthorID:        user.ID,
		CreatedAt:       time.Now().UTC(),
	}

	ledger := append(s.sessions.Reviews(ctx), review)
	if err := s.sessions.SaveReviews(ctx, ledger); err != nil {
		return nil, apperrors.Wrap(err, "saving review")
	}

	if err := s.api.RateProduct(ctx, productID, score); err != nil {
		s.logger.WarnContext(ctx, "failed to push rating to remote aggregate",
			slog.String("product_id", productID),
			slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("product_id", productID),
		slog.Int("rating", score))
	return &review, nil
}

// ForProduct returns every review recorded for a product.
func (s *Service) ForProduct(ctx context.Context, productID string) []domain.Review {
	return domain.ReviewsForProduct(s.sessions.Reviews(ctx), productID)
}

// Mine returns the signed-in user's reviews.
func (s *Service) Mine(ctx context.Context) ([]domain.Review, error) {
	user, ok := s.sessions.User(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("sign in to list reviews")
	}
	var mine []domain.Review
	for _, review := range s.sessions.Reviews(ctx) {
		if review.AuthorID == user.ID {
			mine = append(mine, review)
		}
	}
	return mine, nil
}

// Edit replaces the rating and text of one of the caller's own reviews.
func (s *Service) Edit(ctx context.Context, reviewID string, score int, text string) (*domain.Review, error) {
	if score < 1 || score > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	user, ok := s.sessions.User(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("sign in to edit reviews")
	}

	ledger := s.sessions.Reviews(ctx)
	for i := range ledger {
		if ledger[i].ID != reviewID {
			continue
		}
		if ledger[i].AuthorID != user.ID {
			return nil, apperrors.Forbidden("reviews can only be edited by their author")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			text = defaultText
		}
		ledger[i].Rating = score
		ledger[i].Text = text
		if err := s.sessions.SaveReviews(ctx, ledger); err != nil {
			return nil, apperrors.Wrap(err, "saving review")
		}
		updated := ledger[i]
		return &updated, nil
	}
	return nil, apperrors.NotFound("review", reviewID)
}

// Delete removes one of the caller's own reviews.
func (s *Service) Delete(ctx context.Context, reviewID string) error {
	user, ok := s.sessions.User(ctx)
	if !ok {
		return apperrors.Unauthorized("sign in to delete reviews")
	}

	ledger := s.sessions.Reviews(ctx)
	for i := range ledger {
		if ledger[i].ID != reviewID {
			continue
		}
		if ledger[i].AuthorID != user.ID {
			return apperrors.Forbidden("reviews can only be deleted by their author")
		}
		ledger = append(ledger[:i], ledger[i+1:]...)
		if err := s.sessions.SaveReviews(ctx, ledger); err != nil {
			return apperrors.Wrap(err, "saving reviews")
		}
		s.logger.InfoContext(ctx, "review deleted", slog.String("review_id", reviewID))
		return nil
	}
	return apperrors.NotFound("review", reviewID)
}

// DeleteAllMine drops every review the signed-in user wrote.
func (s *Service) DeleteAllMine(ctx context.Context) error {
	user, ok := s.sessions.User(ctx)
	if !ok {
		return apperrors.Unauthorized("sign in to delete reviews")
	}

	ledger := s.sessions.Reviews(ctx)
	kept := ledger[:0]
	for _, review := range ledger {
		if review.AuthorID != user.ID {
			kept = append(kept, review)
		}
	}
	if err := s.sessions.SaveReviews(ctx, kept); err != nil {
		return apperrors.Wrap(err, "saving reviews")
	}
	s.logger.InfoContext(ctx, "reviews deleted", slog.String("user_id", user.ID))
	return nil
}

// PurchasedProducts lists the distinct product ids across the order
// ledger, the set eligible for review.
func (s *Service) PurchasedProducts(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, order := range s.sessions.Orders(ctx) {
		for _, line := range order.Lines {
			if _, ok := seen[line.Product.ID]; ok {
				continue
			}
			seen[line.Product.ID] = struct{}{}
			ids = append(ids, line.Product.ID)
		}
	}
	return ids
}

func (s *Service) hasPurchased(ctx context.Context, productID string) bool {
	for _, order := range s.sessions.Orders(ctx) {
		if order.Contains(productID) {
			return true
		}
	}
	return false
}
