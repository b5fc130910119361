package lights

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

// Parameter names in the secret store.
const (
	SecretClientID       = "hue-client-id"
	SecretClientSecret   = "hue-client-secret"
	SecretRefreshToken   = "hue-refresh-token"
	SecretAccessToken    = "hue-access-token"
	SecretBridgeAddress  = "hue-bridge-ip-address"
	SecretUsername       = "hue-username"
	SecretRemoteUsername = "hue-remote-username"
)

const (
	DefaultTokenURL   = "https://api.meethue.com/v2/oauth2/token"
	DefaultRemoteBase = "https://api.meethue.com"
)

// ErrMissingCredentials marks a required secret that is absent or empty.
var ErrMissingCredentials = crerr.New("missing hue credentials")

func IsMissingCredentials(err error) bool {
	return crerr.Is(err, ErrMissingCredentials)
}

// SecretStore is a name/value parameter store with overwrite semantics.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, bool, error)
	Put(ctx context.Context, name, value string) error
}

func requireSecret(ctx context.Context, secrets SecretStore, name string) (string, error) {
	value, ok, err := secrets.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingCredentials, name)
	}
	return value, nil
}

// TokenRefresher exchanges the stored refresh token for a new token pair and
// writes both back.
type TokenRefresher struct {
	Secrets    SecretStore
	HTTPClient *http.Client
	TokenURL   string
}

func (r *TokenRefresher) Refresh(ctx context.Context) (*oauth2.Token, error) {
	clientID, err := requireSecret(ctx, r.Secrets, SecretClientID)
	if err != nil {
		return nil, err
	}
	clientSecret, err := requireSecret(ctx, r.Secrets, SecretClientSecret)
	if err != nil {
		return nil, err
	}
	refreshToken, err := requireSecret(ctx, r.Secrets, SecretRefreshToken)
	if err != nil {
		return nil, err
	}

	tokenURL := r.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	httpClient := r.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	// A token with only a refresh token is never valid, so Token() always
	// runs the refresh grant.
	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh hue token: %w", err)
	}

	if err := r.Secrets.Put(ctx, SecretAccessToken, tok.AccessToken); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	if err := r.Secrets.Put(ctx, SecretRefreshToken, tok.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return tok, nil
}

// Mode selects how the bridge is reached.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// NewBridgeFromSecrets builds the configured bridge from stored credentials.
func NewBridgeFromSecrets(ctx context.Context, mode Mode, secrets SecretStore, client *http.Client, remoteBase string) (Bridge, error) {
	switch mode {
	case ModeLocal, "":
		address, err := requireSecret(ctx, secrets, SecretBridgeAddress)
		if err != nil {
			return nil, err
		}
		username, err := requireSecret(ctx, secrets, SecretUsername)
		if err != nil {
			return nil, err
		}
		return &LocalBridge{Address: address, Username: username, HTTPClient: client}, nil
	case ModeRemote:
		username, err := requireSecret(ctx, secrets, SecretRemoteUsername)
		if err != nil {
			return nil, err
		}
		token, err := requireSecret(ctx, secrets, SecretAccessToken)
		if err != nil {
			return nil, err
		}
		if remoteBase == "" {
			remoteBase = DefaultRemoteBase
		}
		return &RemoteBridge{BaseURL: remoteBase, Username: username, AccessToken: token, HTTPClient: client}, nil
	}
	return nil, fmt.Errorf("unknown hue mode %q", mode)
}
