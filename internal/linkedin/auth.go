package linkedin

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	defaultAuthURL  = "https://www.linkedin.com/oauth/v2/authorization"
	defaultTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"

	// DefaultRedirectURI is used when no redirect URI is configured.
	DefaultRedirectURI = "http://localhost:8000/callback"

	scopeMemberSocial = "w_member_social"
)

// AuthConfig holds the OAuth application credentials. AuthURL and
// TokenURL default to LinkedIn's endpoints and exist for tests.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
}

// Validate checks the credentials needed for the authorization flow.
func (c AuthConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("linkedin client id and client secret are required; set LINKEDIN_CLIENT_ID and LINKEDIN_CLIENT_SECRET")
	}
	return nil
}

func (c AuthConfig) redirectURI() string {
	if c.RedirectURI == "" {
		return DefaultRedirectURI
	}
	return c.RedirectURI
}

// OAuthConfig builds the oauth2 configuration for LinkedIn's
// three-legged flow. LinkedIn wants the client credentials in the
// token request body, hence AuthStyleInParams.
func (c AuthConfig) OAuthConfig() *oauth2.Config {
	authURL := c.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.redirectURI(),
		Scopes:       []string{scopeMemberSocial},
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL returns the URL the member must visit to grant access.
func (c AuthConfig) AuthorizeURL(state string) string {
	return c.OAuthConfig().AuthCodeURL(state)
}

// GenerateState returns a random CSRF token for the authorization URL.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
