// Package checkout turns the remote cart into a local order receipt. The
// remote API clears the cart on checkout but keeps no order history, so
// the session's order ledger is the only record of past purchases.
package checkout

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// Flat shipping rates by method.
var shippingRates = map[string]float64{
	domain.ShippingStandard:  15,
	domain.ShippingExpress:   30,
	domain.ShippingOvernight: 50,
}

// API is the slice of the remote client the checkout service needs.
type API interface {
	Checkout(ctx context.Context) error
}

// Carts resolves the current cart with product details.
type Carts interface {
	Detailed(ctx context.Context) (*domain.Cart, []domain.DetailedLine, error)
}

// Service computes checkout summaries and places orders.
type Service struct {
	api      API
	carts    Carts
	sessions *session.Manager
	logger   *slog.Logger
}

func NewService(apiClient API, carts Carts, sessions *session.Manager, logger *slog.Logger) *Service {
	return &Service{
		api:      apiClient,
		carts:    carts,
		sessions: sessions,
		logger:   logger,
	}
}

// Summary is the priced breakdown shown before an order is placed.
type Summary struct {
	Lines    []domain.DetailedLine
	Subtotal float64
	Shipping float64
	Total    float64
	Currency string
}

// ShippingRate returns the flat rate for a shipping method.
func ShippingRate(method string) (float64, error) {
	rate, ok := shippingRates[method]
	if !ok {
		return 0, apperrors.InvalidInput("unknown shipping method: " + method)
	}
	return rate, nil
}

// Summarize prices the current cart under the given shipping method.
func (s *Service) Summarize(ctx context.Context, shippingMethod string) (*Summary, error) {
	rate, err := ShippingRate(shippingMethod)
	if err != nil {
		return nil, err
	}
	cart, lines, err := s.carts.Detailed(ctx)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	var subtotal float64
	currency := ""
	for _, line := range lines {
		subtotal += line.Product.Price.Current * float64(line.Quantity)
		if currency == "" {
			currency = line.Product.Price.Currency
		}
	}
	return &Summary{
		Lines:    lines,
		Subtotal: subtotal,
		Shipping: rate,
		Total:    subtotal + rate,
		Currency: currency,
	}, nil
}

// PlaceOrder checks out the remote cart and records the receipt in the
// order ledger. The session's cart summary resets to empty once the
// remote confirms.
func (s *Service) PlaceOrder(ctx context.Context, paymentMethod, shippingMethod string) (*domain.Order, error) {
	if paymentMethod == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}
	summary, err := s.Summarize(ctx, shippingMethod)
	if err != nil {
		return nil, err
	}

	if err := s.api.Checkout(ctx); err != nil {
		return nil, apperrors.Wrap(err, "checking out")
	}

	order := domain.Order{
		ID:             uuid.NewString(),
		Lines:          summary.Lines,
		Subtotal:       summary.Subtotal,
		Shipping:       summary.Shipping,
		Total:          summary.Total,
		Currency:       summary.Currency,
		PaymentMethod:  paymentMethod,
		ShippingMethod: shippingMethod,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.sessions.AppendOrder(ctx, order); err != nil {
		return nil, apperrors.Wrap(err, "recording order")
	}

	if err := s.sessions.ClearCartSummary(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to reset cart summary", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Float64("total", order.Total),
		slog.String("shipping_method", shippingMethod))
	return &order, nil
}

// Orders returns the order ledger, newest first.
func (s *Service) Orders(ctx context.Context) []domain.Order {
	orders := s.sessions.Orders(ctx)
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}
