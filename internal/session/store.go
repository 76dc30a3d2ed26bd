package session

import "context"

// Keys used in the persisted session store. These are the only keys the
// storefront writes; everything else in the store is foreign and left alone.
const (
	KeyAccessToken      = "accessToken"
	KeyRefreshToken     = "refreshToken"
	KeyUser             = "user"
	KeyHasCart          = "hasCart"
	KeyCartCount        = "cartCount"
	KeyCartNotification = "hasCartNotification"
	KeyReviews          = "reviews"
	KeyOrders           = "orders"
)

// Store is a key-value store that survives restarts. Get returns
// apperrors.ErrNotFound for absent keys. Remove accepts multiple keys and
// removes them as one step: no reader may observe some of them removed and
// others still present.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
