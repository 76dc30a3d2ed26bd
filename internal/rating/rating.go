// Package rating folds locally stored reviews into the ratings reported by
// the catalog, so products a user reviewed reflect their own opinion
// immediately instead of waiting for the remote aggregate to catch up.
package rating

import (
	"github.com/ElizabetLu/Online-Tech/internal/domain"
)

// Combined merges the remote aggregate rating with local review scores,
// weighting the remote value as a single vote alongside each local one.
func Combined(remote float64, reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return remote
	}
	sum := remote
	for _, review := range reviews {
		sum += float64(review.Rating)
	}
	return sum / float64(1+len(reviews))
}

// Overlay returns a copy of products with each product's rating replaced by
// the combined rating derived from the review ledger. Products without
// local reviews pass through unchanged.
func Overlay(products []domain.Product, ledger []domain.Review) []domain.Product {
	if len(products) == 0 {
		return products
	}
	byProduct := make(map[string][]domain.Review)
	for _, review := range ledger {
		byProduct[review.ProductID] = append(byProduct[review.ProductID], review)
	}

	merged := make([]domain.Product, len(products))
	copy(merged, products)
	if len(byProduct) == 0 {
		return merged
	}
	for i := range merged {
		if reviews, ok := byProduct[merged[i].ID]; ok {
			merged[i].Rating = Combined(merged[i].Rating, reviews)
		}
	}
	return merged
}
