package lights

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

const DefaultTimeout = 30 * time.Second

// Bridge sets the state of one fixture.
type Bridge interface {
	SetState(ctx context.Context, fixtureID int, state State) error
}

// StatusError is returned when the bridge answers outside 2xx.
type StatusError struct {
	FixtureID  int
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("light %d: bridge answered %d: %s", e.FixtureID, e.StatusCode, e.Body)
}

// LocalBridge talks to a bridge on the local network without auth.
type LocalBridge struct {
	Address    string
	Username   string
	HTTPClient *http.Client
}

func (b *LocalBridge) SetState(ctx context.Context, fixtureID int, state State) error {
	url := fmt.Sprintf("http://%s/api/%s/lights/%d/state", strings.TrimPrefix(b.Address, "http://"), b.Username, fixtureID)
	return putState(ctx, b.HTTPClient, url, "", fixtureID, state)
}

// RemoteBridge goes through the vendor cloud with a bearer token.
type RemoteBridge struct {
	BaseURL     string
	Username    string
	AccessToken string
	HTTPClient  *http.Client
}

func (b *RemoteBridge) SetState(ctx context.Context, fixtureID int, state State) error {
	url := fmt.Sprintf("%s/route/api/%s/lights/%d/state", strings.TrimSuffix(b.BaseURL, "/"), b.Username, fixtureID)
	return putState(ctx, b.HTTPClient, url, b.AccessToken, fixtureID, state)
}

func putState(ctx context.Context, client *http.Client, url, token string, fixtureID int, state State) error {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	body, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode light state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build light request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("light %d: %w", fixtureID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{FixtureID: fixtureID, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
