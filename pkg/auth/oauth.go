// Package auth implements the Google OAuth authorization-code flow for
// the web app and resolves the signed-in user's profile. Tokens are
// opaque to the rest of the system: the web layer stores them in the
// session and hands them back as token sources for Drive access.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Scopes: identity plus per-file Drive access for the task backup.
var scopes = []string{
	"openid",
	drive.DriveFileScope,
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// UserInfo is the subset of the Google profile the app displays.
type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Service drives the OAuth exchange for one configured client.
type Service struct {
	config *oauth2.Config
}

// New builds the service from the app's client credentials and the
// registered redirect URL.
func New(clientID, clientSecret, redirectURL string) *Service {
	return &Service{config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}}
}

// AuthURL returns the consent-screen URL for the given anti-forgery
// state. Offline access is requested so a refresh token comes back.
func (s *Service) AuthURL(state string) string {
	return s.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades the callback's authorization code for a token.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

// TokenSource wraps a stored token with automatic refresh.
func (s *Service) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return s.config.TokenSource(ctx, tok)
}

// UserInfo fetches the signed-in user's profile.
func (s *Service) UserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(s.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	return &UserInfo{Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

// NewState returns a random URL-safe anti-forgery token.
func NewState() (string, error) {
	var buf [24]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}
