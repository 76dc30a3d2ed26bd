package pagination

// Params holds the page/limit pair sent to the remote catalog endpoints.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns the defaults used when walking a remote collection.
func DefaultParams() Params {
	return Params{
		Page:  1,
		Limit: 100,
	}
}

// Next returns the params for the following page.
func (p Params) Next() Params {
	return Params{
		Page:  p.Page + 1,
		Limit: p.Limit,
	}
}

// HasMore reports whether another page remains given the server-reported
// total and the number of items fetched so far. A non-positive total after
// at least one fetch means the server does not report totals; treat the
// collection as exhausted once a short page arrives.
func (p Params) HasMore(total, fetched int) bool {
	if total <= 0 {
		return false
	}
	return fetched < total
}

// Clamp normalizes out-of-range values to safe defaults.
func (p Params) Clamp() Params {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 || out.Limit > 1000 {
		out.Limit = DefaultParams().Limit
	}
	return out
}
