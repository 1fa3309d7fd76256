// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Session is the credential state of one signed-in client.
type Session struct {
	AccessToken  string
	RefreshToken string
	// Expiry is when AccessToken stops being accepted. Zero means
	// unknown.
	Expiry time.Time
}

// Refresher exchanges a session for a fresh one.
type Refresher interface {
	RefreshSession(ctx context.Context, current Session) (Session, error)
}

// ErrNoRefreshToken is returned when a session cannot be refreshed
// because it carries no refresh token.
var ErrNoRefreshToken = errors.New("auth: session has no refresh token")

// OAuth2Refresher refreshes sessions with the OAuth 2.0 refresh-token
// grant against Config's token endpoint.
type OAuth2Refresher struct {
	Config *oauth2.Config
	// HTTPClient is used for the token request. If nil, the oauth2
	// package default is used.
	HTTPClient *http.Client
}

// RefreshSession performs the refresh-token grant. A server that does
// not rotate refresh tokens keeps the current one.
func (r *OAuth2Refresher) RefreshSession(ctx context.Context, current Session) (Session, error) {
	if current.RefreshToken == "" {
		return Session{}, ErrNoRefreshToken
	}
	if r.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.HTTPClient)
	}

	// A token without an access token is never valid, so the source
	// goes straight to the refresh grant.
	source := r.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return Session{}, fmt.Errorf("auth: refreshing session: %w", err)
	}
	if token.AccessToken == "" {
		return Session{}, fmt.Errorf("auth: token endpoint returned no access token")
	}

	refreshed := Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = current.RefreshToken
	}
	return refreshed, nil
}
