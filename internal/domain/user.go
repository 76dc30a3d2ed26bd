package domain

// User is the remote account profile, cached locally after sign-in.
type User struct {
	ID            string `json:"_id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Verified      bool   `json:"verified"`
	Age           int    `json:"age"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Zipcode       string `json:"zipcode"`
	Avatar        string `json:"avatar"`
	Gender        string `json:"gender"`
}

// FullName returns the display name used on reviews.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsVerified reports whether the account passed email verification. The API
// has reported this under two different field names over time, so either
// counts.
func (u *User) IsVerified() bool {
	return u.EmailVerified || u.Verified
}

// AuthTokens is the token pair returned by sign-in and refresh.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}
