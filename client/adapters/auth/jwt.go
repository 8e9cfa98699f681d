package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"yadro.com/comicsearch/client/core"
)

// Source hands out a token issued by the search API login endpoint.
// The signature is checked by the server; here only the expiry is.
type Source struct {
	token   string
	expires time.Time
	clock   core.Clock
}

func New(token string) (*Source, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, &core.Error{Kind: core.KindUnauthorized, Msg: "malformed token", Err: err}
	}
	s := &Source{token: token, clock: time.Now}
	if claims.ExpiresAt != nil {
		s.expires = claims.ExpiresAt.Time
	}
	return s, nil
}

func (s *Source) Token() (string, error) {
	if !s.expires.IsZero() && !s.clock().Before(s.expires) {
		return "", &core.Error{Kind: core.KindUnauthorized, Msg: "token expired"}
	}
	return s.token, nil
}

func (s *Source) Expires() time.Time {
	return s.expires
}
