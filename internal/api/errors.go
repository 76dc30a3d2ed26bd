package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// Error is a structured failure from the remote commerce API.
type Error struct {
	Status    int
	Message   string
	ErrorKeys []string
	Endpoint  string
}

func (e *Error) Error() string {
	if len(e.ErrorKeys) > 0 {
		return fmt.Sprintf("%s returned %d: %s [%s]", e.Endpoint, e.Status, e.Message, strings.Join(e.ErrorKeys, ", "))
	}
	return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.Status, e.Message)
}

// Unwrap maps the HTTP status onto the shared sentinel errors so callers can
// use errors.Is without knowing about this type.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case e.Status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case e.Status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Status == http.StatusConflict:
		return apperrors.ErrConflict
	case e.Status == http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	case e.Status >= 500:
		return apperrors.ErrInternal
	default:
		return nil
	}
}

// remoteErrorBody matches the error envelope of the commerce API. Different
// endpoints use different field names, so all three are tried.
type remoteErrorBody struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	ErrorKeys []string `json:"errorKeys"`
}

// decodeError reads a non-2xx response body into an *Error. The body is
// fully consumed and closed.
func decodeError(resp *http.Response, endpoint string) error {
	defer func() { _ = resp.Body.Close() }()

	apiErr := &Error{
		Status:   resp.StatusCode,
		Endpoint: endpoint,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		apiErr.Message = fmt.Sprintf("failed to read error body: %v", err)
		return apiErr
	}

	var body remoteErrorBody
	if json.Unmarshal(raw, &body) == nil {
		apiErr.ErrorKeys = body.ErrorKeys
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Message != "":
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// IsAuthFailure reports whether the error is a transient authorization
// failure: a 401, or the API's quirkier 400 whose message mentions an
// expired token.
func IsAuthFailure(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == http.StatusUnauthorized {
		return true
	}
	return apiErr.Status == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "token expired")
}

// statusIs reports whether err is a remote *Error with one of the given
// status codes.
func statusIs(err error, codes ...int) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.Status == code {
			return true
		}
	}
	return false
}
