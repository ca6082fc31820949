// Package federation implements the identity-provider side of federated
// login. Only the authorization-code flow is supported; the provider vouches
// for the user and we map its subject to a local account.
package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// ErrProvider wraps every provider-side failure so callers can treat the
// whole exchange as a single fallible step.
var ErrProvider = errors.New("federation: provider failure")

// Profile is what we keep from the provider: a stable subject and a display
// name. Everything else the provider offers is discarded.
type Profile struct {
	Subject     string
	DisplayName string
}

// GoogleProvider drives the Google OAuth2 authorization-code flow.
type GoogleProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides for tests; empty means the real Google endpoints.
	AuthURL     string
	TokenURL    string
	UserinfoURL string

	HTTP *http.Client
}

// Enabled reports whether federated login is configured at all. When it is
// not, the federation routes respond 404.
func (p *GoogleProvider) Enabled() bool {
	return p != nil && p.ClientID != "" && p.ClientSecret != ""
}

func (p *GoogleProvider) httpClient() *http.Client {
	if p.HTTP != nil {
		return p.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// AuthCodeURL builds the provider consent URL. The state value is the
// caller's CSRF token and is echoed back on the callback.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	base := p.AuthURL
	if base == "" {
		base = googleAuthURL
	}

	q := url.Values{
		"client_id":     {p.ClientID},
		"redirect_uri":  {p.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid profile"},
		"state":         {state},
	}
	return base + "?" + q.Encode()
}

// Exchange trades the callback code for an access token and fetches the
// user's profile with it.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	tokenURL := p.TokenURL
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}

	form := url.Values{
		"client_id":     {p.ClientID},
		"client_secret": {p.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {p.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("%w: token exchange status %d: %s", ErrProvider, resp.StatusCode, snippet)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return Profile{}, fmt.Errorf("%w: decode token: %v", ErrProvider, err)
	}
	if token.AccessToken == "" {
		return Profile{}, fmt.Errorf("%w: empty access token", ErrProvider)
	}

	return p.fetchProfile(ctx, token.AccessToken)
}

func (p *GoogleProvider) fetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	userinfoURL := p.UserinfoURL
	if userinfoURL == "" {
		userinfoURL = googleUserinfoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%w: userinfo status %d", ErrProvider, resp.StatusCode)
	}

	var info struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Profile{}, fmt.Errorf("%w: decode userinfo: %v", ErrProvider, err)
	}
	if info.Sub == "" {
		return Profile{}, fmt.Errorf("%w: userinfo missing subject", ErrProvider)
	}

	return Profile{
		Subject:     "google:" + info.Sub,
		DisplayName: info.Name,
	}, nil
}
