// Package sso provides optional OIDC social login.
package sso

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"challengehub-backend/internal/config"
)

var ErrInvalidState = errors.New("unknown or expired OIDC state")

// Client wraps the go-oidc provider for OIDC authentication
type Client struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier

	mu     sync.Mutex
	states map[string]*pendingState
}

type pendingState struct {
	nonce     string
	createdAt time.Time
}

const stateTTL = 10 * time.Minute

// UserInfo represents user information extracted from OIDC claims
type UserInfo struct {
	Subject     string
	Email       string
	DisplayName string
}

// NewClient initializes an OIDC provider client from configuration
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.OIDCIssuerURL == "" {
		return nil, fmt.Errorf("issuer URL is required")
	}
	if cfg.OIDCClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(initCtx, cfg.OIDCIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.OIDCClientID,
	})

	return &Client{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		states:       make(map[string]*pendingState),
	}, nil
}

// Begin registers a fresh state+nonce pair and returns the provider
// authorization URL to redirect the user to
func (c *Client) Begin() (authURL, state string) {
	state = randomValue()
	nonce := randomValue()

	c.mu.Lock()
	c.states[state] = &pendingState{nonce: nonce, createdAt: time.Now()}
	// Drop stale entries while we hold the lock; abandoned logins would
	// otherwise accumulate
	for s, p := range c.states {
		if time.Since(p.createdAt) > stateTTL {
			delete(c.states, s)
		}
	}
	c.mu.Unlock()

	return c.oauth2Config.AuthCodeURL(state, oidc.Nonce(nonce)), state
}

// consumeState validates and removes a state, returning its nonce.
// States are single use.
func (c *Client) consumeState(state string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.states[state]
	if !ok {
		return "", ErrInvalidState
	}
	delete(c.states, state)

	if time.Since(p.createdAt) > stateTTL {
		return "", ErrInvalidState
	}
	return p.nonce, nil
}

// Authenticate finishes the login: checks the state, exchanges the code,
// verifies the ID token and nonce, and extracts the user's claims.
func (c *Client) Authenticate(ctx context.Context, state, code string) (*UserInfo, error) {
	nonce, err := c.consumeState(state)
	if err != nil {
		return nil, err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := c.oauth2Config.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("token response contained no id_token")
	}

	idToken, err := c.verifier.Verify(exchangeCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, fmt.Errorf("ID token nonce mismatch")
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	userInfo := &UserInfo{Subject: idToken.Subject}

	if email, ok := claims["email"].(string); ok {
		userInfo.Email = email
	}
	if userInfo.Email == "" {
		return nil, fmt.Errorf("provider returned no email claim")
	}

	if name, ok := claims["name"].(string); ok {
		userInfo.DisplayName = name
	} else if preferred, ok := claims["preferred_username"].(string); ok {
		userInfo.DisplayName = preferred
	} else {
		userInfo.DisplayName = userInfo.Email
	}

	return userInfo, nil
}

// randomValue generates a random state/nonce parameter
func randomValue() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
