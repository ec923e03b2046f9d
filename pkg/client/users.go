package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// UserProfile is the subset of the user service record the booking engine displays.
type UserProfile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*UserProfile, error)
}

// NewUserDirectory returns an HTTP-backed directory, or one that never finds
// anybody when baseURL is empty.
func NewUserDirectory(baseURL string, timeout time.Duration) UserDirectory {
	if baseURL == "" {
		return noopUserDirectory{}
	}
	return &httpUserDirectory{upstream: newJSONGetter(baseURL, timeout)}
}

type httpUserDirectory struct {
	upstream *jsonGetter
}

func (d *httpUserDirectory) GetUser(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	err := d.upstream.get(ctx, "/api/users/"+url.PathEscape(userID), &profile)
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if profile.ID == "" {
		profile.ID = userID
	}
	return &profile, nil
}

type noopUserDirectory struct{}

func (noopUserDirectory) GetUser(context.Context, string) (*UserProfile, error) {
	return nil, ErrUserNotFound
}
