package domain

// Product is a catalog entry as served by the remote commerce API. Products
// are immutable from the client's perspective except for Rating, which the
// rating overlay recomputes from the local review ledger and never persists.
type Product struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       Price    `json:"price"`
	Category    Category `json:"category"`
	Brand       string   `json:"brand"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock"`
	Rating      float64  `json:"rating"`
	Warranty    int      `json:"warranty"`
	IssueDate   string   `json:"issueDate"`
}

// Price carries the current price plus pre-discount context.
type Price struct {
	Current            float64 `json:"current"`
	Currency           string  `json:"currency"`
	BeforeDiscount     float64 `json:"beforeDiscount"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// Category is a product grouping in the remote catalog.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ProductPage is one page of a paginated catalog listing.
type ProductPage struct {
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Page     int       `json:"page"`
	Skip     int       `json:"skip"`
	Products []Product `json:"products"`
}

// InStock reports whether the product can be added to a cart.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
