package smartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orderwatch/backend/internal/domain/integration"
)

// ErrTokenRequestFailed indicates the token endpoint rejected the request
var ErrTokenRequestFailed = errors.New("smartstore: token request failed")

// TokenProvider supplies a valid bearer token for seller API calls.
// Token acquisition mechanics are opaque to the fetcher; it only ever
// asks for a token or forces a refresh after a 401.
type TokenProvider interface {
	// Token returns a currently valid bearer token
	Token(ctx context.Context) (string, error)

	// ForceRefresh discards the cached token and obtains a new one
	ForceRefresh(ctx context.Context) (string, error)
}

// ---------------------------------------------------------------------------
// StaticTokenProvider
// ---------------------------------------------------------------------------

// StaticTokenProvider returns a fixed token. Used in tests and for
// long-lived personal access tokens.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider around a fixed token
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Token returns the fixed token
func (p *StaticTokenProvider) Token(_ context.Context) (string, error) {
	return p.token, nil
}

// ForceRefresh returns the fixed token; there is nothing to refresh
func (p *StaticTokenProvider) ForceRefresh(_ context.Context) (string, error) {
	return p.token, nil
}

// ---------------------------------------------------------------------------
// OAuthTokenProvider
// ---------------------------------------------------------------------------

// OAuthTokenProvider obtains bearer tokens via the client-credentials
// grant and caches them until shortly before expiry. Expiry is read from
// the token's JWT exp claim when present (unverified parse; the vendor
// signs with its own key), otherwise from expires_in or a configured TTL.
type OAuthTokenProvider struct {
	config     *Config
	httpClient *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// expirySkew refreshes tokens slightly before they actually expire
const expirySkew = 60 * time.Second

// NewOAuthTokenProvider creates a token provider for the given config
func NewOAuthTokenProvider(config *Config) (*OAuthTokenProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OAuthTokenProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Token returns the cached token, refreshing it when expired
func (p *OAuthTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiresAt.Add(-expirySkew)) {
		return p.token, nil
	}
	return p.refreshLocked(ctx)
}

// ForceRefresh discards the cached token and obtains a new one
func (p *OAuthTokenProvider) ForceRefresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	return p.refreshLocked(ctx)
}

// refreshLocked fetches a new token. Caller must hold p.mu.
func (p *OAuthTokenProvider) refreshLocked(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.config.ClientID)
	form.Set("client_secret", p.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", integration.ErrAuthExpired, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequestFailed, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: HTTP %d", integration.ErrAuthExpired, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("%w: malformed token response", ErrTokenRequestFailed)
	}

	p.token = tr.AccessToken
	p.expiresAt = p.tokenExpiry(tr)
	return p.token, nil
}

// tokenExpiry determines when the token expires: JWT exp claim first,
// then expires_in, then the configured fallback TTL
func (p *OAuthTokenProvider) tokenExpiry(tr tokenResponse) time.Time {
	if claims := parseJWTClaims(tr.AccessToken); claims != nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if tr.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return time.Now().Add(time.Duration(p.config.TokenTTLSeconds) * time.Second)
}

// parseJWTClaims decodes claims without verifying the signature.
// Returns nil for opaque (non-JWT) tokens.
func parseJWTClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
