package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
)

// SortDirection orders a sorted dimension.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Criteria is the in-memory filter and sort state applied to a loaded
// product set. Zero values mean "no constraint" for every field except
// RatingBucket, where 0 explicitly selects unrated products.
type Criteria struct {
	SearchText string
	Brand      string
	MinPrice   float64
	MaxPrice   float64
	// RatingBucket selects products whose rating truncates to this value;
	// bucket 5 matches exact fives only. Negative means no rating filter.
	RatingBucket int
	PriceSort    SortDirection
	RatingSort   SortDirection
}

// NewCriteria returns criteria with no constraints active.
func NewCriteria() Criteria {
	return Criteria{RatingBucket: -1}
}

// Reset clears every constraint and restores the price range to the
// bounds of the given product set. Applying reset criteria returns the
// set unchanged aside from copying.
func (c *Criteria) Reset(products []domain.Product) {
	*c = NewCriteria()
	c.MinPrice, c.MaxPrice = PriceBounds(products)
}

// Apply runs the filters and then the sorts over products, returning a new
// slice. Filters are conjunctive. Sorts apply sequentially with stable
// ordering, so when both dimensions are set the one applied last decides
// the primary order: rating wins over price.
func (c Criteria) Apply(products []domain.Product) []domain.Product {
	result := make([]domain.Product, 0, len(products))
	search := strings.ToLower(strings.TrimSpace(c.SearchText))
	for _, product := range products {
		if search != "" && !strings.Contains(strings.ToLower(product.Title), search) {
			continue
		}
		if c.Brand != "" && product.Brand != c.Brand {
			continue
		}
		if c.MinPrice > 0 && product.Price.Current < c.MinPrice {
			continue
		}
		if c.MaxPrice > 0 && product.Price.Current > c.MaxPrice {
			continue
		}
		if c.RatingBucket >= 0 && !inRatingBucket(product.Rating, c.RatingBucket) {
			continue
		}
		result = append(result, product)
	}

	if c.PriceSort != SortNone {
		asc := c.PriceSort == SortAsc
		sort.SliceStable(result, func(i, j int) bool {
			if asc {
				return result[i].Price.Current < result[j].Price.Current
			}
			return result[i].Price.Current > result[j].Price.Current
		})
	}
	if c.RatingSort != SortNone {
		asc := c.RatingSort == SortAsc
		sort.SliceStable(result, func(i, j int) bool {
			if asc {
				return result[i].Rating < result[j].Rating
			}
			return result[i].Rating > result[j].Rating
		})
	}
	return result
}

// inRatingBucket reports whether rating falls in [bucket, bucket+1), with
// the top bucket closed so a 4.9 product is a four, not a five.
func inRatingBucket(rating float64, bucket int) bool {
	if bucket >= 5 {
		return rating >= 5
	}
	return rating >= float64(bucket) && rating < float64(bucket+1)
}

// PriceBounds returns the floor and ceiling of current prices across
// products, widened outward to whole units. An empty set yields [0, 1000]
// so price sliders have something to render.
func PriceBounds(products []domain.Product) (min, max float64) {
	if len(products) == 0 {
		return 0, 1000
	}
	min, max = products[0].Price.Current, products[0].Price.Current
	for _, product := range products[1:] {
		if product.Price.Current < min {
			min = product.Price.Current
		}
		if product.Price.Current > max {
			max = product.Price.Current
		}
	}
	return math.Floor(min), math.Ceil(max)
}
