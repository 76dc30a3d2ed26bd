package domain

// Cart is the server-authoritative shopping cart. Lines are keyed uniquely by
// product ID; the reconciliation service upholds that invariant even when
// mutations race.
type Cart struct {
	ID      string     `json:"_id"`
	OwnerID string     `json:"userId"`
	Lines   []CartLine `json:"products"`
	Total   CartTotal  `json:"total"`
}

// CartLine is a single product entry in the server cart.
type CartLine struct {
	ID        string `json:"_id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartTotal is the server-computed total for the cart.
type CartTotal struct {
	Price Price `json:"price"`
}

// DetailedLine pairs a cart line with its resolved product, for screens that
// need titles and prices rather than bare product IDs.
type DetailedLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartSummary is the denormalized local cache of cart state used by UI badges
// without a network round trip.
type CartSummary struct {
	HasCart               bool `json:"hasCart"`
	ItemCount             int  `json:"itemCount"`
	HasUnseenNotification bool `json:"hasUnseenNotification"`
}

// EmptyCart returns the value used in place of a cart the server does not
// have yet (404) or reports as empty (409).
func EmptyCart() *Cart {
	return &Cart{Lines: []CartLine{}}
}

// FindLine returns the line for the given product ID, or nil.
func (c *Cart) FindLine(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}
