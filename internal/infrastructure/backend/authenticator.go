package backend

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/usermgmt/admin-console/internal/core/ports"
)

// HeaderRequestID correlates console logs with backend logs.
const HeaderRequestID = "X-Request-ID"

// publicPaths reach the backend without credentials.
var publicPaths = []string{"/user/login", "/user/register", "/user/resetPassword"}

const publicPrefix = "/resetPassword/"

// Authenticator attaches the session's bearer token to outbound requests.
// Login, register and password-reset requests pass through untouched. There
// is no retry and no refresh on 401.
type Authenticator struct {
	next     http.RoundTripper
	tokens   ports.TokenSource
	basePath string
}

// NewAuthenticator wraps next. basePath is the path component of the API
// base URL, stripped before public paths are matched.
func NewAuthenticator(next http.RoundTripper, tokens ports.TokenSource, basePath string) *Authenticator {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Authenticator{next: next, tokens: tokens, basePath: strings.TrimRight(basePath, "/")}
}

func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	if a.isPublic(req.URL.Path) {
		return a.next.RoundTrip(req)
	}

	token, err := a.tokens.CurrentToken(req.Context())
	if err != nil {
		return nil, err
	}
	if token == "" {
		return a.next.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	return a.next.RoundTrip(authed)
}

func (a *Authenticator) isPublic(path string) bool {
	rel := strings.TrimPrefix(path, a.basePath)
	for _, p := range publicPaths {
		if rel == p {
			return true
		}
	}
	return strings.HasPrefix(rel, publicPrefix)
}

// requestID stamps every request with a fresh X-Request-ID unless the
// caller already set one.
type requestID struct {
	next http.RoundTripper
}

func (r requestID) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) != "" {
		return r.next.RoundTrip(req)
	}
	tagged := req.Clone(req.Context())
	tagged.Header.Set(HeaderRequestID, uuid.NewString())
	return r.next.RoundTrip(tagged)
}
