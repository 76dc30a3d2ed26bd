package domain

import "time"

// Review is a locally authored product review. Reviews live only in the
// client's persisted ledger; only the numeric rating is also sent to the
// remote API, as a one-way side effect.
type Review struct {
	ID              string    `json:"_id"`
	ProductID       string    `json:"productId"`
	ProductTitle    string    `json:"productTitle"`
	ProductImage    string    `json:"productImage"`
	ProductCategory string    `json:"productCategory"`
	Rating          int       `json:"rating"`
	Text            string    `json:"review"`
	AuthorName      string    `json:"userName"`
	AuthorID        string    `json:"userId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ReviewsForProduct returns the subset of the ledger for one product.
func ReviewsForProduct(ledger []Review, productID string) []Review {
	var out []Review
	for _, r := range ledger {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}
