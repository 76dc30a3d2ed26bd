package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// Cart fetches the caller's cart. The remote answers 404 when the user has
// never had a cart and 409 after a checkout emptied it; both are normal
// states and map to an empty cart rather than an error.
func (c *Client) Cart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, call{
		name:       "cart.get",
		method:     http.MethodGet,
		path:       "/shop/cart",
		authorized: true,
	}, &cart)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) {
			return domain.EmptyCart(), nil
		}
		return nil, err
	}
	return &cart, nil
}

// AddCartLine creates a cart containing the given product line.
func (c *Client) AddCartLine(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, call{
		name:       "cart.add",
		method:     http.MethodPost,
		path:       "/shop/cart/product",
		body:       map[string]any{"id": productID, "quantity": quantity},
		authorized: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartLine sets the quantity of an existing cart line.
func (c *Client) UpdateCartLine(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, call{
		name:       "cart.update",
		method:     http.MethodPatch,
		path:       "/shop/cart/product",
		body:       map[string]any{"id": productID, "quantity": quantity},
		authorized: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartLine deletes one product line from the cart.
func (c *Client) RemoveCartLine(ctx context.Context, productID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, call{
		name:       "cart.remove",
		method:     http.MethodDelete,
		path:       "/shop/cart/product",
		body:       map[string]any{"id": productID},
		authorized: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart deletes the whole cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{
		name:       "cart.clear",
		method:     http.MethodDelete,
		path:       "/shop/cart",
		authorized: true,
	}, nil)
}

// Checkout converts the current cart into an order on the remote side.
func (c *Client) Checkout(ctx context.Context) error {
	return c.do(ctx, call{
		name:       "cart.checkout",
		method:     http.MethodPost,
		path:       "/shop/cart/checkout",
		body:       map[string]any{},
		authorized: true,
	}, nil)
}
