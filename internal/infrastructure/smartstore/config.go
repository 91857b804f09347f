package smartstore

import "errors"

// Config holds configuration for the SmartStore seller API integration
type Config struct {
	// APIBaseURL is the base URL for the seller API
	APIBaseURL string
	// TokenURL is the OAuth token endpoint
	TokenURL string
	// ClientID is the application client ID
	ClientID string
	// ClientSecret is the application client secret
	ClientSecret string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// TokenTTLSeconds is the fallback token lifetime when the bearer
	// token is opaque (not a parseable JWT)
	TokenTTLSeconds int
}

const (
	// DefaultAPIBaseURL is the production seller API endpoint
	DefaultAPIBaseURL = "https://api.commerce.naver.com/external"
	// defaultTimeoutSeconds bounds each API request
	defaultTimeoutSeconds = 30
	// defaultTokenTTLSeconds is used when token expiry cannot be read
	defaultTokenTTLSeconds = 1800
)

// Errors for SmartStore configuration
var (
	ErrConfigMissingClientID     = errors.New("smartstore: client ID is required")
	ErrConfigMissingClientSecret = errors.New("smartstore: client secret is required")
	ErrConfigMissingTokenURL     = errors.New("smartstore: token URL is required")
)

// NewConfig creates a SmartStore configuration with defaults
func NewConfig(clientID, clientSecret string) *Config {
	return &Config{
		APIBaseURL:      DefaultAPIBaseURL,
		TokenURL:        DefaultAPIBaseURL + "/v1/oauth2/token",
		ClientID:        clientID,
		ClientSecret:    clientSecret,
		TimeoutSeconds:  defaultTimeoutSeconds,
		TokenTTLSeconds: defaultTokenTTLSeconds,
	}
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrConfigMissingClientSecret
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TokenURL == "" {
		return ErrConfigMissingTokenURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.TokenTTLSeconds <= 0 {
		c.TokenTTLSeconds = defaultTokenTTLSeconds
	}
	return nil
}
