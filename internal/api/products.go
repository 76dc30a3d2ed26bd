package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/pkg/pagination"
)

// SearchParams are the query parameters of the catalog search endpoint.
// Empty fields are omitted from the query string.
type SearchParams struct {
	Query         string
	Page          pagination.Params
	SortBy        string
	SortDirection string
}

// ProductByID fetches a single product.
func (c *Client) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, call{
		name:       "products.by_id",
		method:     http.MethodGet,
		path:       "/shop/products/id/" + url.PathEscape(id),
		viaCatalog: true,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchProducts queries the catalog search endpoint.
func (c *Client) SearchProducts(ctx context.Context, params SearchParams) (*domain.ProductPage, error) {
	page := params.Page.Clamp()
	query := url.Values{
		"page":  []string{strconv.Itoa(page.Page)},
		"limit": []string{strconv.Itoa(page.Limit)},
	}
	if params.Query != "" {
		query.Set("search", params.Query)
	}
	if params.SortBy != "" {
		query.Set("sortBy", params.SortBy)
	}
	if params.SortDirection != "" {
		query.Set("sortDirection", params.SortDirection)
	}

	var result domain.ProductPage
	err := c.do(ctx, call{
		name:       "products.search",
		method:     http.MethodGet,
		path:       "/shop/products/search",
		query:      query,
		viaCatalog: true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := c.do(ctx, call{
		name:       "products.categories",
		method:     http.MethodGet,
		path:       "/shop/products/categories",
		viaCatalog: true,
	}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ProductsByCategory fetches one page of a category listing.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID string, page pagination.Params) (*domain.ProductPage, error) {
	page = page.Clamp()
	query := url.Values{
		"page":  []string{strconv.Itoa(page.Page)},
		"limit": []string{strconv.Itoa(page.Limit)},
	}

	var result domain.ProductPage
	err := c.do(ctx, call{
		name:       "products.by_category",
		method:     http.MethodGet,
		path:       "/shop/products/category/" + url.PathEscape(categoryID),
		query:      query,
		viaCatalog: true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Brands lists the catalog brands.
func (c *Client) Brands(ctx context.Context) ([]string, error) {
	var brands []string
	err := c.do(ctx, call{
		name:       "products.brands",
		method:     http.MethodGet,
		path:       "/shop/products/brands",
		viaCatalog: true,
	}, &brands)
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// ProductsByBrand fetches one page of a brand listing.
func (c *Client) ProductsByBrand(ctx context.Context, brand string, page pagination.Params) (*domain.ProductPage, error) {
	page = page.Clamp()
	query := url.Values{
		"page":  []string{strconv.Itoa(page.Page)},
		"limit": []string{strconv.Itoa(page.Limit)},
	}

	var result domain.ProductPage
	err := c.do(ctx, call{
		name:       "products.by_brand",
		method:     http.MethodGet,
		path:       "/shop/products/brand/" + url.PathEscape(brand),
		query:      query,
		viaCatalog: true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RateProduct submits a numeric rating for a product. This is the one-way
// side effect of a local review; the review text never leaves the client.
func (c *Client) RateProduct(ctx context.Context, productID string, rate int) error {
	return c.do(ctx, call{
		name:       "products.rate",
		method:     http.MethodPost,
		path:       "/shop/products/rate",
		body:       map[string]any{"productId": productID, "rate": rate},
		authorized: true,
	}, nil)
}
