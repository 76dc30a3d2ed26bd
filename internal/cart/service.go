// Package cart reconciles the remote cart with local intent: quantities
// merge instead of racing, lost carts are recreated transparently, and the
// session's cart summary tracks every mutation.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

var cartCreateFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "storefront_cart_create_fallback_total",
	Help: "Times a cart create was answered with 'already exists' and retried as an update.",
})

func init() {
	prometheus.MustRegister(cartCreateFallbackTotal)
}

// API is the slice of the remote client the cart service needs.
type API interface {
	Cart(ctx context.Context) (*domain.Cart, error)
	AddCartLine(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	UpdateCartLine(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveCartLine(ctx context.Context, productID string) (*domain.Cart, error)
	ClearCart(ctx context.Context) error
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns cart mutations. Mutations are serialized with a busy flag
// rather than a queue: a second mutation arriving while one is in flight
// is rejected, matching the remote API's single-cart-per-user model.
type Service struct {
	api      API
	sessions *session.Manager
	logger   *slog.Logger
	busy     atomic.Bool
}

func NewService(apiClient API, sessions *session.Manager, logger *slog.Logger) *Service {
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *Service) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		return apperrors.MutationInFlight("another cart update is in progress")
	}
	return nil
}

func (s *Service) release() {
	s.busy.Store(false)
}

// Fetch returns the current cart and refreshes the session summary count.
func (s *Service) Fetch(ctx context.Context) (*domain.Cart, error) {
	cart, err := s.api.Cart(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching cart")
	}
	if err := s.sessions.SetCartSummary(ctx, cart.ItemCount()); err != nil {
		s.logger.WarnContext(ctx, "failed to sync cart summary", slog.Any("error", err))
	}
	return cart, nil
}

// AddOrIncrement adds quantity of a product to the cart. When the product
// is already in the cart the quantities merge into one line. When the
// remote insists a cart already exists for a create, the call falls back
// to an update against that cart.
func (s *Service) AddOrIncrement(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	current, err := s.api.Cart(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching cart")
	}

	var updated *domain.Cart
	if line := current.FindLine(productID); line != nil {
		updated, err = s.api.UpdateCartLine(ctx, productID, line.Quantity+quantity)
	} else {
		updated, err = s.createOrUpdate(ctx, productID, quantity)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "adding to cart")
	}

	s.syncSummary(ctx, updated, true)
	s.logger.InfoContext(ctx, "cart line added",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
		slog.Int("item_count", updated.ItemCount()))
	return updated, nil
}

// createOrUpdate adds a line the local fetch did not see. The remote
// answers 400 or 409 when a concurrent writer got there first; the add
// then retries as an update with the requested quantity.
func (s *Service) createOrUpdate(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.api.AddCartLine(ctx, productID, quantity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrInvalidInput) && !errors.Is(err, apperrors.ErrConflict) {
		return nil, err
	}
	cartCreateFallbackTotal.Inc()
	s.logger.InfoContext(ctx, "cart create rejected, retrying as update",
		slog.String("product_id", productID))
	return s.api.UpdateCartLine(ctx, productID, quantity)
}

// SetQuantity replaces a line's quantity outright.
func (s *Service) SetQuantity(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	updated, err := s.api.UpdateCartLine(ctx, productID, quantity)
	if err != nil {
		return nil, apperrors.Wrap(err, "updating cart line")
	}
	s.syncSummary(ctx, updated, false)
	return updated, nil
}

// Increment raises a line's quantity by one.
func (s *Service) Increment(ctx context.Context, productID string) (*domain.Cart, error) {
	return s.step(ctx, productID, 1)
}

// Decrement lowers a line's quantity by one, removing the line when it
// would drop below one.
func (s *Service) Decrement(ctx context.Context, productID string) (*domain.Cart, error) {
	return s.step(ctx, productID, -1)
}

func (s *Service) step(ctx context.Context, productID string, delta int) (*domain.Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	current, err := s.api.Cart(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching cart")
	}
	line := current.FindLine(productID)
	if line == nil {
		return nil, apperrors.NotFound("cart line", productID)
	}

	var updated *domain.Cart
	if next := line.Quantity + delta; next < 1 {
		updated, err = s.api.RemoveCartLine(ctx, productID)
	} else {
		updated, err = s.api.UpdateCartLine(ctx, productID, next)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "updating cart line")
	}
	s.syncSummary(ctx, updated, false)
	return updated, nil
}

// Remove deletes a product line from the cart.
func (s *Service) Remove(ctx context.Context, productID string) (*domain.Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	updated, err := s.api.RemoveCartLine(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap(err, "removing cart line")
	}
	s.syncSummary(ctx, updated, false)
	s.logger.InfoContext(ctx, "cart line removed", slog.String("product_id", productID))
	return updated, nil
}

// Clear deletes the whole cart and resets the session summary.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if err := s.api.ClearCart(ctx); err != nil {
		return apperrors.Wrap(err, "clearing cart")
	}
	if err := s.sessions.ClearCartSummary(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to reset cart summary", slog.Any("error", err))
	}
	s.logger.InfoContext(ctx, "cart cleared")
	return nil
}

// Detailed resolves each cart line against the catalog so callers get
// titles and prices, not just product ids. Lookups run in parallel.
func (s *Service) Detailed(ctx context.Context) (*domain.Cart, []domain.DetailedLine, error) {
	cart, err := s.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	if cart.IsEmpty() {
		return cart, nil, nil
	}

	lines := make([]domain.DetailedLine, len(cart.Lines))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for i, line := range cart.Lines {
		i, line := i, line
		group.Go(func() error {
			product, err := s.api.ProductByID(groupCtx, line.ProductID)
			if err != nil {
				return err
			}
			lines[i] = domain.DetailedLine{Product: *product, Quantity: line.Quantity}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, apperrors.Wrap(err, "resolving cart products")
	}
	return cart, lines, nil
}

// syncSummary mirrors the given cart into the session summary, optionally
// flagging the unseen-change notification.
func (s *Service) syncSummary(ctx context.Context, cart *domain.Cart, notify bool) {
	if err := s.sessions.SetCartSummary(ctx, cart.ItemCount()); err != nil {
		s.logger.WarnContext(ctx, "failed to sync cart summary", slog.Any("error", err))
	}
	if notify {
		if err := s.sessions.SetCartNotification(ctx, true); err != nil {
			s.logger.WarnContext(ctx, "failed to set cart notification", slog.Any("error", err))
		}
	}
}
