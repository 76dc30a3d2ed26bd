// Package catalog loads products from the remote commerce API and serves
// filtered, rating-adjusted views of them.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ElizabetLu/Online-Tech/internal/api"
	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/rating"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
	"github.com/ElizabetLu/Online-Tech/pkg/pagination"
)

// CatalogAPI is the slice of the remote client the catalog service needs.
type CatalogAPI interface {
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, params api.SearchParams) (*domain.ProductPage, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	ProductsByCategory(ctx context.Context, categoryID string, page pagination.Params) (*domain.ProductPage, error)
	Brands(ctx context.Context) ([]string, error)
}

// Service loads and queries the catalog.
type Service struct {
	api      CatalogAPI
	sessions *session.Manager
	logger   *slog.Logger
}

func NewService(apiClient CatalogAPI, sessions *session.Manager, logger *slog.Logger) *Service {
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger,
	}
}

// Categories lists the catalog categories.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.api.Categories(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading categories")
	}
	return categories, nil
}

// LoadAll walks every category in parallel and returns the union of their
// products, rating-adjusted by the local review ledger and sorted by title
// for a stable listing.
func (s *Service) LoadAll(ctx context.Context) ([]domain.Product, error) {
	categories, err := s.api.Categories(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading categories")
	}

	var (
		mu       sync.Mutex
		products []domain.Product
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, category := range categories {
		category := category
		group.Go(func() error {
			loaded, err := s.loadCategory(groupCtx, category.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			products = append(products, loaded...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, apperrors.Wrap(err, "loading catalog")
	}

	products = dedupeByID(products)
	sort.Slice(products, func(i, j int) bool {
		return products[i].Title < products[j].Title
	})
	s.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("categories", len(categories)),
		slog.Int("products", len(products)))
	return s.withOverlay(ctx, products), nil
}

// ByCategory returns all products of one category, rating-adjusted.
func (s *Service) ByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	if categoryID == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}
	products, err := s.loadCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading category")
	}
	return s.withOverlay(ctx, products), nil
}

func (s *Service) loadCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var products []domain.Product
	params := pagination.DefaultParams()
	for {
		page, err := s.api.ProductsByCategory(ctx, categoryID, params)
		if err != nil {
			return nil, err
		}
		products = append(products, page.Products...)
		if len(page.Products) == 0 || !params.HasMore(page.Total, len(products)) {
			return products, nil
		}
		params = params.Next()
	}
}

// Search queries the remote search endpoint and overlays local ratings on
// the returned page.
func (s *Service) Search(ctx context.Context, params api.SearchParams) (*domain.ProductPage, error) {
	page, err := s.api.SearchProducts(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(err, "searching products")
	}
	page.Products = s.withOverlay(ctx, page.Products)
	return page, nil
}

// Brands lists catalog brands with blank entries dropped, since the remote
// data contains products without a brand.
func (s *Service) Brands(ctx context.Context) ([]string, error) {
	brands, err := s.api.Brands(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading brands")
	}
	named := make([]string, 0, len(brands))
	for _, brand := range brands {
		if strings.TrimSpace(brand) != "" {
			named = append(named, brand)
		}
	}
	return named, nil
}

// Product fetches a single product with the local rating overlay applied.
func (s *Service) Product(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	product, err := s.api.ProductByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "loading product")
	}
	reviews := domain.ReviewsForProduct(s.sessions.Reviews(ctx), id)
	product.Rating = rating.Combined(product.Rating, reviews)
	return product, nil
}

func (s *Service) withOverlay(ctx context.Context, products []domain.Product) []domain.Product {
	return rating.Overlay(products, s.sessions.Reviews(ctx))
}

func dedupeByID(products []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(products))
	out := products[:0]
	for _, product := range products {
		if _, ok := seen[product.ID]; ok {
			continue
		}
		seen[product.ID] = struct{}{}
		out = append(out, product)
	}
	return out
}
