package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
)

// Manager exposes typed accessors over a raw Store. Every token check in the
// client goes through this type, so the empty-sentinel normalization lives in
// exactly one place instead of being repeated at each call site.
type Manager struct {
	store  Store
	logger *slog.Logger
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
	}
}

// IsValidToken reports whether a stored token value is usable. Absent values
// are handled by the caller; this rejects the literal junk values that end up
// in web storage: empty strings, whitespace, "undefined" and "null".
func IsValidToken(v string) bool {
	t := strings.TrimSpace(v)
	return t != "" && t != "undefined" && t != "null"
}

func (m *Manager) token(ctx context.Context, key string) (string, bool) {
	v, err := m.store.Get(ctx, key)
	if err != nil || !IsValidToken(v) {
		return "", false
	}
	return v, true
}

// AccessToken returns the stored access token, if valid.
func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	return m.token(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, if valid.
func (m *Manager) RefreshToken(ctx context.Context) (string, bool) {
	return m.token(ctx, KeyRefreshToken)
}

// HasValidSession reports whether both tokens are present and valid.
func (m *Manager) HasValidSession(ctx context.Context) bool {
	_, accessOK := m.AccessToken(ctx)
	_, refreshOK := m.RefreshToken(ctx)
	return accessOK && refreshOK
}

// SetTokens stores a new access/refresh token pair. Token writes only happen
// from sign-in and the single-flight refresh, so no concurrent writer can
// interleave between the two sets.
func (m *Manager) SetTokens(ctx context.Context, access, refresh string) error {
	if err := m.store.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := m.store.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// User returns the cached profile, if present and parseable.
func (m *Manager) User(ctx context.Context) (*domain.User, bool) {
	raw, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, false
	}

	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.logger.WarnContext(ctx, "cached profile is corrupt, ignoring",
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return &u, true
}

// SetUser caches the profile snapshot.
func (m *Manager) SetUser(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := m.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// CartSummary returns the denormalized cart badge state.
func (m *Manager) CartSummary(ctx context.Context) domain.CartSummary {
	var s domain.CartSummary

	if v, err := m.store.Get(ctx, KeyHasCart); err == nil {
		s.HasCart = v == "true"
	}
	if v, err := m.store.Get(ctx, KeyCartCount); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			s.ItemCount = n
		}
	}
	if v, err := m.store.Get(ctx, KeyCartNotification); err == nil {
		s.HasUnseenNotification = v == "true"
	}
	return s
}

// SetCartSummary records the item count and the derived has-cart flag.
func (m *Manager) SetCartSummary(ctx context.Context, itemCount int) error {
	if err := m.store.Set(ctx, KeyHasCart, strconv.FormatBool(itemCount > 0)); err != nil {
		return fmt.Errorf("store has-cart flag: %w", err)
	}
	if err := m.store.Set(ctx, KeyCartCount, strconv.Itoa(itemCount)); err != nil {
		return fmt.Errorf("store cart count: %w", err)
	}
	return nil
}

// SetCartNotification records whether the cart badge should show an unseen
// change.
func (m *Manager) SetCartNotification(ctx context.Context, unseen bool) error {
	if err := m.store.Set(ctx, KeyCartNotification, strconv.FormatBool(unseen)); err != nil {
		return fmt.Errorf("store cart notification flag: %w", err)
	}
	return nil
}

// ClearCartSummary removes all three cart badge keys in one store
// operation. Used when the cart is emptied or checked out.
func (m *Manager) ClearCartSummary(ctx context.Context) error {
	return m.store.Remove(ctx, KeyHasCart, KeyCartCount, KeyCartNotification)
}

// Reviews returns the local review ledger. A corrupt ledger is treated as
// empty: the UI must survive bad local state.
func (m *Manager) Reviews(ctx context.Context) []domain.Review {
	raw, err := m.store.Get(ctx, KeyReviews)
	if err != nil {
		return nil
	}

	var ledger []domain.Review
	if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
		m.logger.WarnContext(ctx, "review ledger is corrupt, treating as empty",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return ledger
}

// SaveReviews replaces the review ledger.
func (m *Manager) SaveReviews(ctx context.Context, ledger []domain.Review) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal review ledger: %w", err)
	}
	if err := m.store.Set(ctx, KeyReviews, string(raw)); err != nil {
		return fmt.Errorf("store review ledger: %w", err)
	}
	return nil
}

// Orders returns the local order ledger, newest entries in insertion order.
// Corrupt state reads as empty, same as the review ledger.
func (m *Manager) Orders(ctx context.Context) []domain.Order {
	raw, err := m.store.Get(ctx, KeyOrders)
	if err != nil {
		return nil
	}

	var ledger []domain.Order
	if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
		m.logger.WarnContext(ctx, "order ledger is corrupt, treating as empty",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return ledger
}

// AppendOrder adds a receipt to the order ledger.
func (m *Manager) AppendOrder(ctx context.Context, order domain.Order) error {
	ledger := append(m.Orders(ctx), order)
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal order ledger: %w", err)
	}
	if err := m.store.Set(ctx, KeyOrders, string(raw)); err != nil {
		return fmt.Errorf("store order ledger: %w", err)
	}
	return nil
}

// ClearAuth removes the tokens, the cached profile and the cart summary flags
// in a single store operation. Logout, account deletion and forced
// re-authentication all use this one clear-set so no path can forget a key.
func (m *Manager) ClearAuth(ctx context.Context) error {
	return m.store.Remove(ctx,
		KeyAccessToken,
		KeyRefreshToken,
		KeyUser,
		KeyHasCart,
		KeyCartCount,
		KeyCartNotification,
	)
}

// Clear wipes the entire store, review and order ledgers included. Used by
// account deletion.
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}
