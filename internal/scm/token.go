// Package scm implements the GitHub app credential issuer and the REST
// calls the reconciliation core depends on.
package scm

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/jacobboykin/kots/config"
	"github.com/jacobboykin/kots/internal/entities"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const appTokenTTL = 60 * time.Second

// Client talks to the GitHub REST API as an app. Installation tokens are
// issued fresh per operation; nothing is cached.
type Client struct {
	log  *zap.SugaredLogger
	cfg  config.GitHubConfig
	http *http.Client
}

// New constructs a GitHub client from app configuration.
func New(log *zap.SugaredLogger, cfg config.GitHubConfig) *Client {
	return &Client{
		log:  log.Named("scm.github"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// AppToken signs a short-lived RS256 app JWT: issued now, expiring in
// 60s, issuer set to the platform-assigned app id.
func (c *Client) AppToken() (string, error) {
	key, err := c.signingKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appTokenTTL)),
		Issuer:    strconv.FormatInt(c.cfg.AppID, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign app token: %w", err)
	}
	return signed, nil
}

// InstallationToken exchanges a fresh app token for an installation-scoped
// token via the token-exchange endpoint.
func (c *Client) InstallationToken(ctx context.Context, installationID int64) (string, time.Time, error) {
	appToken, err := c.AppToken()
	if err != nil {
		return "", time.Time{}, err
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", c.baseURL(), installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+appToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("exchange token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", time.Time{}, fmt.Errorf("exchange token: unexpected status %d: %s", resp.StatusCode, body)
	}

	var tok struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}
	return tok.Token, tok.ExpiresAt, nil
}

// signingKey loads the app private key from inline config or the
// configured file path, per call.
func (c *Client) signingKey() (*rsa.PrivateKey, error) {
	pemBytes := []byte(c.cfg.PrivateKey)
	if len(pemBytes) == 0 {
		if c.cfg.PrivateKeyPath == "" {
			return nil, entities.ErrNoSigningKey
		}
		b, err := os.ReadFile(c.cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
		pemBytes = b
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	return key, nil
}

func (c *Client) baseURL() string {
	if c.cfg.APIBaseURL != "" {
		return c.cfg.APIBaseURL
	}
	return "https://api.github.com"
}
