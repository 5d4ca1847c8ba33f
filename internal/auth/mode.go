// Package auth implements the sign-in callback core: response-mode
// resolution and the one-shot exchange of an authorization response for a
// login result.
package auth

import (
	"errors"
	"fmt"
	"net/url"
)

// Mode is which of the two completion behaviors the callback performs.
type Mode string

const (
	// ModeLogin finalizes a first-party session on the identity server.
	ModeLogin Mode = "login"
	// ModeCode mints an authorization code and hands it back to a
	// third-party relying application.
	ModeCode Mode = "code"
)

// ErrMalformedRedirectURI marks a redirect_uri that cannot be parsed as an
// absolute URL. Fatal for the current callback pass; no mode is resolved.
var ErrMalformedRedirectURI = errors.New("malformed redirect_uri")

// ResolveMode decides, from the server's canonical origin and the
// redirect_uri supplied by the original authorization request, whether a
// completed external sign-in targets the server's own session (login) or a
// relying application (code). One callback endpoint serves both consumers
// using only information already present in the redirect.
func ResolveMode(serverOrigin, redirectURIParam string) (Mode, error) {
	u, err := url.Parse(redirectURIParam)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedRedirectURI, redirectURIParam, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q: missing scheme or host", ErrMalformedRedirectURI, redirectURIParam)
	}

	origin := u.Scheme + "://" + u.Host
	if origin == serverOrigin {
		return ModeLogin, nil
	}
	return ModeCode, nil
}
